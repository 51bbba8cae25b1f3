package domain

import "fmt"

// Status is the application lifecycle state.
type Status string

const (
	StatusPendingPayment  Status = "pending_payment"
	StatusPaymentReceived Status = "payment_received"
	StatusProcessing      Status = "processing"
	StatusApproved        Status = "approved"
	StatusRejected        Status = "rejected"
	StatusDelivered       Status = "delivered"
)

// Payment status values (separate from the application lifecycle).
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
)

// Entry types.
const (
	EntrySingle   = "single"
	EntryMultiple = "multiple"
)

// Visa processing speeds.
const (
	SpeedStandard = "standard"
	SpeedUrgent   = "urgent"
)

// Staff roles.
const (
	RoleAdmin = "ADMIN"
	RoleStaff = "STAFF"
)

// transitions is the authoritative table of allowed status moves. Anything
// not listed here is rejected.
var transitions = map[Status][]Status{
	StatusPendingPayment:  {StatusPaymentReceived},
	StatusPaymentReceived: {StatusProcessing, StatusRejected},
	StatusProcessing:      {StatusApproved, StatusRejected},
	StatusApproved:        {StatusDelivered},
	StatusRejected:        {},
	StatusDelivered:       {},
}

// ValidStatus reports whether s is a member of the enumerated status set.
func ValidStatus(s Status) bool {
	_, ok := transitions[s]
	return ok
}

// CanTransition reports whether from -> to is in the transition table.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// InvalidTransitionError names the rejected (current, requested) pair.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from %q to %q", e.From, e.To)
}
