package notifier

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/lib/smtp"
	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/models"
)

type fakeWriteCloser struct {
	bytes.Buffer
}

func (f *fakeWriteCloser) Close() error { return nil }

type fakeClient struct {
	from string
	rcpt []string
	body *fakeWriteCloser
}

func (f *fakeClient) Mail(from string) error        { f.from = from; return nil }
func (f *fakeClient) Rcpt(to string) error          { f.rcpt = append(f.rcpt, to); return nil }
func (f *fakeClient) Data() (io.WriteCloser, error) { return f.body, nil }
func (f *fakeClient) Quit() error                   { return nil }
func (f *fakeClient) Close() error                  { return nil }

type fakeTransport struct {
	client *fakeClient
}

func (f *fakeTransport) Connect() (smtp.Client, error) { return f.client, nil }
func (f *fakeTransport) GetSMTPUser() string           { return "noreply@example.com" }

func newTestService(transport smtp.TransportInterface) *Service {
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return New(transport, log)
}

func marshalEvent(t *testing.T, event models.BillingEvent) []byte {
	t.Helper()
	body, err := json.Marshal(event)
	require.NoError(t, err)
	return body
}

func TestHandleBillingEventSendsEmail(t *testing.T) {
	client := &fakeClient{body: &fakeWriteCloser{}}
	svc := newTestService(&fakeTransport{client: client})

	body := marshalEvent(t, models.BillingEvent{
		Kind:    models.BillingEventSubscribed,
		UserUID: "u-1",
		Email:   "pastor@example.com",
	})
	require.NoError(t, svc.HandleBillingEvent(body))

	assert.Equal(t, "noreply@example.com", client.from)
	assert.Equal(t, []string{"pastor@example.com"}, client.rcpt)
	assert.Contains(t, client.body.String(), "Subject: Your subscription is active")
	assert.Contains(t, client.body.String(), "unlimited sermon")
}

func TestHandleBillingEventWithoutEmailSkips(t *testing.T) {
	client := &fakeClient{body: &fakeWriteCloser{}}
	svc := newTestService(&fakeTransport{client: client})

	body := marshalEvent(t, models.BillingEvent{
		Kind:    models.BillingEventCanceled,
		UserUID: "u-1",
	})
	require.NoError(t, svc.HandleBillingEvent(body))
	assert.Empty(t, client.rcpt)
}

func TestHandleBillingEventMalformedBody(t *testing.T) {
	svc := newTestService(&fakeTransport{client: &fakeClient{body: &fakeWriteCloser{}}})
	assert.Error(t, svc.HandleBillingEvent([]byte("{broken")))
}

func TestHandleBillingEventUnknownKindSkips(t *testing.T) {
	client := &fakeClient{body: &fakeWriteCloser{}}
	svc := newTestService(&fakeTransport{client: client})

	body := marshalEvent(t, models.BillingEvent{
		Kind:  "subscription.mystery",
		Email: "pastor@example.com",
	})
	require.NoError(t, svc.HandleBillingEvent(body))
	assert.Empty(t, client.rcpt)
}
