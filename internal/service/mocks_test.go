package service

import (
	"context"
	"sync"

	"github.com/stripe/stripe-go/v76"
	"gorm.io/gorm"

	"vietvisa/internal/domain"
	"vietvisa/internal/models"
)

// stubAppStore holds a single application and mimics the conditional update
// semantics of the real repository.
type stubAppStore struct {
	app *models.Application

	createErr       error
	markPaidErr     error
	markPaidCalls   int
	intentID        string
	transitionErr   error
	denyTransition  bool
	transitionCalls []transitionCall
	updatedFields   map[string]interface{}
}

type transitionCall struct {
	from, to domain.Status
	extra    map[string]interface{}
}

func (s *stubAppStore) CreateWithApplicants(app *models.Application) error {
	if s.createErr != nil {
		return s.createErr
	}
	if app.ID == "" {
		app.ID = "app-1"
	}
	for i := range app.Applicants {
		if app.Applicants[i].ID == "" {
			app.Applicants[i].ID = "applicant-1"
		}
		app.Applicants[i].ApplicationID = app.ID
	}
	s.app = app
	return nil
}

func (s *stubAppStore) GetByID(id string) (*models.Application, error) {
	if s.app == nil || s.app.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s.app
	return &cp, nil
}

func (s *stubAppStore) GetDetail(id string) (*models.Application, error) {
	return s.GetByID(id)
}

func (s *stubAppStore) SetPaymentIntentID(id, intentID string) error {
	if s.app == nil || s.app.ID != id {
		return gorm.ErrRecordNotFound
	}
	s.intentID = intentID
	s.app.PaymentIntentID = intentID
	return nil
}

func (s *stubAppStore) MarkPaid(id, method string) (bool, error) {
	s.markPaidCalls++
	if s.markPaidErr != nil {
		return false, s.markPaidErr
	}
	if s.app == nil || s.app.ID != id || s.app.PaymentStatus == domain.PaymentCompleted {
		return false, nil
	}
	s.app.PaymentStatus = domain.PaymentCompleted
	s.app.Status = domain.StatusPaymentReceived
	s.app.PaymentMethod = method
	return true, nil
}

func (s *stubAppStore) MarkPaymentFailed(id string) error {
	if s.app == nil || s.app.ID != id {
		return nil
	}
	s.app.PaymentStatus = domain.PaymentFailed
	return nil
}

func (s *stubAppStore) TransitionStatus(id string, from, to domain.Status, extra map[string]interface{}) (bool, error) {
	s.transitionCalls = append(s.transitionCalls, transitionCall{from: from, to: to, extra: extra})
	if s.transitionErr != nil {
		return false, s.transitionErr
	}
	if s.denyTransition {
		return false, nil
	}
	if s.app == nil || s.app.ID != id || s.app.Status != from {
		return false, nil
	}
	s.app.Status = to
	return true, nil
}

func (s *stubAppStore) UpdateFields(id string, updates map[string]interface{}) error {
	if s.app == nil || s.app.ID != id {
		return gorm.ErrRecordNotFound
	}
	if s.updatedFields == nil {
		s.updatedFields = map[string]interface{}{}
	}
	for k, v := range updates {
		s.updatedFields[k] = v
	}
	return nil
}

type stubApplicantStore struct {
	applicant *models.Applicant
}

func (s *stubApplicantStore) GetByID(id string) (*models.Applicant, error) {
	if s.applicant == nil || s.applicant.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s.applicant
	return &cp, nil
}

type stubDocStore struct {
	doc           *models.VisaDocument
	waMarkErr     error
	emailMarkErr  error
	waMarked      bool
	emailMarked   bool
	waMarkCalls   int
	emailMarkCall int
}

func (s *stubDocStore) GetByID(id string) (*models.VisaDocument, error) {
	if s.doc == nil || s.doc.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s.doc
	return &cp, nil
}

func (s *stubDocStore) MarkWhatsAppSent(id string) error {
	s.waMarkCalls++
	if s.waMarkErr != nil {
		return s.waMarkErr
	}
	s.waMarked = true
	s.doc.SentToWhatsApp = true
	return nil
}

func (s *stubDocStore) MarkEmailSent(id string) error {
	s.emailMarkCall++
	if s.emailMarkErr != nil {
		return s.emailMarkErr
	}
	s.emailMarked = true
	s.doc.SentToEmail = true
	return nil
}

type stubInquiryStore struct {
	created *models.TourInquiry
	err     error
}

func (s *stubInquiryStore) Create(i *models.TourInquiry) error {
	if s.err != nil {
		return s.err
	}
	i.ID = 7
	s.created = i
	return nil
}

type stubAdminStore struct {
	user    *models.AdminUser
	updated *models.AdminUser
	touched uint
}

func (s *stubAdminStore) GetByEmail(email string) (*models.AdminUser, error) {
	if s.user == nil || s.user.Email != email {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s.user
	return &cp, nil
}

func (s *stubAdminStore) GetByID(id uint) (*models.AdminUser, error) {
	if s.user == nil || s.user.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s.user
	return &cp, nil
}

func (s *stubAdminStore) GetByGoogleID(googleID string) (*models.AdminUser, error) {
	if s.user == nil || s.user.GoogleID == nil || *s.user.GoogleID != googleID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s.user
	return &cp, nil
}

func (s *stubAdminStore) Update(u *models.AdminUser) error {
	s.updated = u
	s.user = u
	return nil
}

func (s *stubAdminStore) TouchLogin(id uint) error {
	s.touched = id
	return nil
}

type fakeIntents struct {
	pi     *stripe.PaymentIntent
	err    error
	params *stripe.PaymentIntentParams
	calls  int
}

func (f *fakeIntents) New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	f.calls++
	f.params = params
	if f.err != nil {
		return nil, f.err
	}
	return f.pi, nil
}

type fakeWhatsApp struct {
	err   error
	calls int
	to    string
	body  string
	media string
}

func (f *fakeWhatsApp) SendMessage(ctx context.Context, toNumber, body string, mediaURL string) error {
	f.calls++
	f.to = toNumber
	f.body = body
	f.media = mediaURL
	return f.err
}

// fakeMailer signals each send on a channel so fire-and-forget callers can be
// observed without sleeping.
type fakeMailer struct {
	mu    sync.Mutex
	err   error
	calls int
	to    string
	sub   string
	att   string
	done  chan struct{}
}

func newFakeMailer(err error) *fakeMailer {
	return &fakeMailer{err: err, done: make(chan struct{}, 4)}
}

func (f *fakeMailer) SendEmail(ctx context.Context, to, subject, htmlBody string, attachmentURL string) error {
	f.mu.Lock()
	f.calls++
	f.to = to
	f.sub = subject
	f.att = attachmentURL
	f.mu.Unlock()
	f.done <- struct{}{}
	return f.err
}

type recordedEvent struct {
	eventType     string
	applicationID string
}

type fakeEvents struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (f *fakeEvents) Publish(eventType, applicationID string, data map[string]interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, recordedEvent{eventType: eventType, applicationID: applicationID})
}

func (f *fakeEvents) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.eventType)
	}
	return out
}
