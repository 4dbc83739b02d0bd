package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	perr "newsletter/internal/platform/errors"
	"newsletter/internal/platform/logger"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var welcome = Message{
	To:      "ursula_le_guin@gmail.com",
	Subject: "Welcome!",
	HTML:    "<p>hi</p>",
	Text:    "hi",
}

func TestHTTPTransport_SendsProviderPayload(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v3/smtp/email", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("api-key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tr, err := NewHTTP(srv.URL, "news@example.com", "secret", time.Second)
	require.NoError(t, err)
	require.NoError(t, tr.Send(context.Background(), welcome))

	assert.Equal(t, map[string]any{"email": "news@example.com"}, got["sender"])
	assert.Equal(t, []any{map[string]any{"email": welcome.To}}, got["to"])
	assert.Equal(t, welcome.Subject, got["subject"])
	assert.Equal(t, welcome.HTML, got["htmlContent"])
	assert.Equal(t, welcome.Text, got["textContent"])
}

func TestHTTPTransport_Failures(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusInternalServerError) }},
		{"client error", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusBadRequest) }},
		{"too slow", func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-time.After(2 * time.Second):
			case <-r.Context().Done():
			}
			w.WriteHeader(http.StatusOK)
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			tr, err := NewHTTP(srv.URL, "news@example.com", "secret", 200*time.Millisecond)
			require.NoError(t, err)

			start := time.Now()
			err = tr.Send(context.Background(), welcome)
			require.Error(t, err)
			assert.True(t, perr.IsCode(err, perr.ErrorCodeGateway), "got %v", err)
			assert.Less(t, time.Since(start), 2*time.Second)
		})
	}
}

func TestNewHTTP_RequiresSender(t *testing.T) {
	_, err := NewHTTP("http://localhost", "", "k", time.Second)
	require.Error(t, err)
}

type doerFunc func(*http.Request) (*http.Response, error)

func (f doerFunc) Do(r *http.Request) (*http.Response, error) { return f(r) }

func TestHTTPTransport_DoerErrorIsGateway(t *testing.T) {
	tr, err := NewHTTP("http://mail.invalid", "news@example.com", "k", time.Second,
		WithDoer(doerFunc(func(*http.Request) (*http.Response, error) { return nil, errors.New("dns") })))
	require.NoError(t, err)
	err = tr.Send(context.Background(), welcome)
	assert.True(t, perr.IsCode(err, perr.ErrorCodeGateway))
}

type fakeSES struct {
	in  *sesv2.SendEmailInput
	err error
}

func (f *fakeSES) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.in = in
	return &sesv2.SendEmailOutput{}, f.err
}

func TestSESTransport(t *testing.T) {
	fake := &fakeSES{}
	tr := newSES(fake, "news@example.com", time.Second)
	require.NoError(t, tr.Send(context.Background(), welcome))

	require.NotNil(t, fake.in)
	assert.Equal(t, "news@example.com", *fake.in.FromEmailAddress)
	assert.Equal(t, []string{welcome.To}, fake.in.Destination.ToAddresses)
	assert.Equal(t, welcome.Subject, *fake.in.Content.Simple.Subject.Data)
	assert.Equal(t, welcome.HTML, *fake.in.Content.Simple.Body.Html.Data)
	assert.Equal(t, welcome.Text, *fake.in.Content.Simple.Body.Text.Data)

	fake.err = errors.New("throttled")
	err := tr.Send(context.Background(), welcome)
	assert.True(t, perr.IsCode(err, perr.ErrorCodeGateway))
}

func TestLogTransport(t *testing.T) {
	var buf bytes.Buffer
	ctx := logger.Into(context.Background(), logger.New(logger.Options{Format: "json", Writer: &buf}))
	msg := welcome
	msg.Text = "Visit http://127.0.0.1:8000/subscriptions/confirm?subscription_token=abcDEF123 to confirm"
	msg.HTML = `<a href="http://127.0.0.1:8000/subscriptions/confirm?subscription_token=abcDEF123">here</a>`
	require.NoError(t, NewLog("news@example.com").Send(ctx, msg))
	assert.Contains(t, buf.String(), `"to":"ursula_le_guin@gmail.com"`)
	assert.Contains(t, buf.String(), `"subject":"Welcome!"`)
	assert.NotContains(t, buf.String(), "abcDEF123")
}

func TestNew_SelectsTransport(t *testing.T) {
	tr, err := New(context.Background(), Config{Kind: KindLog, Sender: "a@b.c"})
	require.NoError(t, err)
	assert.IsType(t, &LogTransport{}, tr)

	tr, err = New(context.Background(), Config{Kind: KindHTTP, BaseURL: "http://x", Sender: "a@b.c", Timeout: time.Second})
	require.NoError(t, err)
	assert.IsType(t, &HTTPTransport{}, tr)

	_, err = New(context.Background(), Config{Kind: "smtp"})
	require.Error(t, err)
}
