package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"vietvisa/internal/domain"
	"vietvisa/internal/models"
)

func dispatchFixture(waErr error, mailErr error) (*stubAppStore, *stubDocStore, *fakeWhatsApp, *fakeMailer, *fakeEvents, *DispatchService) {
	apps := &stubAppStore{app: &models.Application{
		ID:              "app-1",
		ReferenceNumber: "VN-ABCD1234",
		Email:           "traveler@example.com",
		WhatsApp:        "+447700900123",
		Status:          domain.StatusApproved,
	}}
	applicants := &stubApplicantStore{applicant: &models.Applicant{
		ID:            "applicant-1",
		ApplicationID: "app-1",
		FullName:      "Jane Traveler",
	}}
	docs := &stubDocStore{doc: &models.VisaDocument{
		ID:            "doc-1",
		ApplicantID:   "applicant-1",
		ApplicationID: "app-1",
		DocumentURL:   "https://cdn.example.com/visa.pdf",
	}}
	wa := &fakeWhatsApp{err: waErr}
	mail := newFakeMailer(mailErr)
	events := &fakeEvents{}
	svc := NewDispatchService(apps, applicants, docs, wa, mail, events, zap.NewNop())
	return apps, docs, wa, mail, events, svc
}

func TestDispatch_BothChannelsSucceed(t *testing.T) {
	apps, docs, wa, mail, events, svc := dispatchFixture(nil, nil)

	result, err := svc.Dispatch(context.Background(), "app-1", "applicant-1", "doc-1")
	require.NoError(t, err)

	assert.True(t, result.WhatsApp.Success)
	assert.True(t, result.Email.Success)
	assert.True(t, result.Delivered)

	assert.Equal(t, "+447700900123", wa.to)
	assert.Equal(t, "https://cdn.example.com/visa.pdf", wa.media)
	assert.Equal(t, "traveler@example.com", mail.to)
	assert.Equal(t, "https://cdn.example.com/visa.pdf", mail.att)

	assert.True(t, docs.waMarked)
	assert.True(t, docs.emailMarked)
	assert.Equal(t, domain.StatusDelivered, apps.app.Status)
	assert.Equal(t, []string{"application.dispatched"}, events.types())
}

func TestDispatch_WhatsAppFailureDoesNotAbortEmail(t *testing.T) {
	apps, docs, _, _, events, svc := dispatchFixture(errors.New("twilio down"), nil)

	result, err := svc.Dispatch(context.Background(), "app-1", "applicant-1", "doc-1")
	require.NoError(t, err)

	assert.False(t, result.WhatsApp.Success)
	assert.Contains(t, result.WhatsApp.Error, "twilio down")
	assert.True(t, result.Email.Success)
	assert.False(t, result.Delivered)

	assert.False(t, docs.waMarked)
	assert.True(t, docs.emailMarked)
	// Application stays approved until both channels succeed.
	assert.Equal(t, domain.StatusApproved, apps.app.Status)
	assert.Empty(t, events.types())
}

func TestDispatch_EmailFailureKeepsApproved(t *testing.T) {
	apps, docs, _, _, _, svc := dispatchFixture(nil, errors.New("resend down"))

	result, err := svc.Dispatch(context.Background(), "app-1", "applicant-1", "doc-1")
	require.NoError(t, err)

	assert.True(t, result.WhatsApp.Success)
	assert.False(t, result.Email.Success)
	assert.False(t, result.Delivered)
	assert.True(t, docs.waMarked)
	assert.Equal(t, domain.StatusApproved, apps.app.Status)
}

func TestDispatch_RetrySkipsSentChannel(t *testing.T) {
	apps, docs, wa, mail, _, svc := dispatchFixture(nil, nil)
	// First attempt delivered WhatsApp but not email.
	docs.doc.SentToWhatsApp = true

	result, err := svc.Dispatch(context.Background(), "app-1", "applicant-1", "doc-1")
	require.NoError(t, err)

	assert.True(t, result.WhatsApp.Success)
	assert.True(t, result.Email.Success)
	assert.True(t, result.Delivered)
	// No duplicate WhatsApp message goes out.
	assert.Equal(t, 0, wa.calls)
	assert.Equal(t, 1, mail.calls)
	assert.Equal(t, domain.StatusDelivered, apps.app.Status)
}

func TestDispatch_InconsistentReferences(t *testing.T) {
	_, docs, wa, mail, _, svc := dispatchFixture(nil, nil)
	docs.doc.ApplicantID = "someone-else"

	_, err := svc.Dispatch(context.Background(), "app-1", "applicant-1", "doc-1")
	assert.ErrorIs(t, err, ErrInconsistentReference)
	assert.Equal(t, 0, wa.calls)
	assert.Equal(t, 0, mail.calls)
}

func TestDispatch_UnknownRecords(t *testing.T) {
	_, _, _, _, _, svc := dispatchFixture(nil, nil)

	_, err := svc.Dispatch(context.Background(), "app-1", "applicant-1", "no-such-doc")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Dispatch(context.Background(), "no-such-app", "applicant-1", "doc-1")
	assert.ErrorIs(t, err, ErrNotFound)
}
