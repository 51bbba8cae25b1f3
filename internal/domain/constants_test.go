package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		to      Status
		allowed bool
	}{
		{"pending to payment received", StatusPendingPayment, StatusPaymentReceived, true},
		{"payment received to processing", StatusPaymentReceived, StatusProcessing, true},
		{"payment received to rejected", StatusPaymentReceived, StatusRejected, true},
		{"processing to approved", StatusProcessing, StatusApproved, true},
		{"processing to rejected", StatusProcessing, StatusRejected, true},
		{"approved to delivered", StatusApproved, StatusDelivered, true},

		{"pending cannot skip to processing", StatusPendingPayment, StatusProcessing, false},
		{"pending cannot skip to approved", StatusPendingPayment, StatusApproved, false},
		{"payment received cannot skip to approved", StatusPaymentReceived, StatusApproved, false},
		{"approved cannot go back to processing", StatusApproved, StatusProcessing, false},
		{"rejected is terminal", StatusRejected, StatusProcessing, false},
		{"delivered is terminal", StatusDelivered, StatusApproved, false},
		{"no self transition", StatusProcessing, StatusProcessing, false},
		{"unknown target", StatusProcessing, Status("archived"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanTransition(tt.from, tt.to))
		})
	}
}

func TestValidStatus(t *testing.T) {
	for _, s := range []Status{
		StatusPendingPayment, StatusPaymentReceived, StatusProcessing,
		StatusApproved, StatusRejected, StatusDelivered,
	} {
		assert.True(t, ValidStatus(s), string(s))
	}
	assert.False(t, ValidStatus(Status("archived")))
	assert.False(t, ValidStatus(Status("")))
	assert.False(t, ValidStatus(Status("PENDING_PAYMENT")))
}

func TestInvalidTransitionError(t *testing.T) {
	err := &InvalidTransitionError{From: StatusApproved, To: StatusProcessing}
	assert.Equal(t, `invalid status transition from "approved" to "processing"`, err.Error())
}
