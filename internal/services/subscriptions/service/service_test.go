package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"newsletter/internal/modkit/repokit"
	perr "newsletter/internal/platform/errors"
	"newsletter/internal/platform/logger"
	"newsletter/internal/platform/metrics"
	"newsletter/internal/platform/testkit"
	"newsletter/internal/services/subscriptions/domain"
	"newsletter/internal/services/subscriptions/repo"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

const baseURL = "https://api.example.com"

type harness struct {
	svc      *Svc
	subs     *fakeSubs
	tokens   *fakeTokens
	notifier *fakeNotifier
	events   *fakeEvents
	metrics  *metrics.Metrics
	spans    *tracetest.SpanRecorder
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		subs:     newFakeSubs(),
		tokens:   newFakeTokens(),
		notifier: &fakeNotifier{},
		events:   &fakeEvents{},
		metrics:  metrics.New(),
		spans:    tracetest.NewSpanRecorder(),
	}
	h.svc = newSvc(h.subs, h.tokens, Options{Notifier: h.notifier, Events: h.events, Metrics: h.metrics})
	h.svc.tracer = sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(h.spans)).Tracer("test")
	return h
}

func logCtx(buf *bytes.Buffer) context.Context {
	ctx := logger.Into(context.Background(), zerolog.New(buf))
	return logger.WithRequest(ctx, "req-42")
}

func validRequest() domain.SubscribeRequest {
	return domain.SubscribeRequest{Name: "le guin", Email: "ursula_le_guin@gmail.com"}
}

func TestNew_RequiresCollaborators(t *testing.T) {
	testkit.MustPanic(t, func() { New(nil, repo.NewPG(), Options{Notifier: &fakeNotifier{}}) })
	testkit.MustPanic(t, func() {
		var b repokit.Binder[repo.Storage]
		New(nopTx{}, b, Options{Notifier: &fakeNotifier{}})
	})
	testkit.MustPanic(t, func() { New(nopTx{}, repo.NewPG(), Options{}) })
	testkit.MustNotPanic(t, func() { New(nopTx{}, repo.NewPG(), Options{Notifier: &fakeNotifier{}}) })
}

func TestRegister_HappyPath(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.svc.Register(context.Background(), validRequest(), baseURL))

	row := h.subs.only()
	assert.Equal(t, domain.StatusPending, row.Status)
	assert.Equal(t, "le guin", row.Name)
	assert.Equal(t, "ursula_le_guin@gmail.com", row.Email)

	require.Len(t, h.tokens.m, 1)
	var token string
	for tok, id := range h.tokens.m {
		token = tok
		assert.Equal(t, row.ID, id)
	}
	assert.Len(t, token, domain.TokenLength)

	require.Len(t, h.notifier.sent, 1)
	assert.Equal(t, "ursula_le_guin@gmail.com", h.notifier.sent[0].To)
	assert.Equal(t, baseURL+"/subscriptions/confirm?subscription_token="+token, h.notifier.sent[0].Link)

	require.Len(t, h.events.got, 1)
	assert.Equal(t, SubjectRegistered, h.events.got[0].Subject)
	assert.Equal(t, row.ID, h.events.got[0].Value.(domain.Registered).SubscriberID)

	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.Registrations.WithLabelValues("done", "ok")))

	spans := h.spans.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "subscriptions.Register", spans[0].Name())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
}

func TestRegister_ValidationFailuresHaveNoSideEffects(t *testing.T) {
	cases := map[string]domain.SubscribeRequest{
		"empty name":      {Name: "", Email: "ursula_le_guin@gmail.com"},
		"blank name":      {Name: "   ", Email: "ursula_le_guin@gmail.com"},
		"forbidden char":  {Name: "Ursula <script>", Email: "ursula_le_guin@gmail.com"},
		"too long":        {Name: strings.Repeat("a", 257), Email: "ursula_le_guin@gmail.com"},
		"empty email":     {Name: "Ursula", Email: ""},
		"no at sign":      {Name: "Ursula", Email: "definitely-not-an-email"},
		"missing subject": {Name: "Ursula", Email: "@domain.com"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t)
			err := h.svc.Register(context.Background(), in, baseURL)
			require.Error(t, err)
			assert.True(t, perr.IsCode(err, perr.ErrorCodeValidation))
			assert.Equal(t, domain.StageValidating, domain.StageOf(err))
			assert.Empty(t, h.subs.rows)
			assert.Empty(t, h.tokens.m)
			assert.Empty(t, h.notifier.sent)
			assert.Empty(t, h.events.got)
			assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.Registrations.WithLabelValues("validating", "error")))
		})
	}
}

func TestRegister_PersistFailureStopsBeforeToken(t *testing.T) {
	h := newHarness(t)
	h.subs.insertErr = perr.Conflictf("insert subscriber")

	var buf bytes.Buffer
	err := h.svc.Register(logCtx(&buf), validRequest(), baseURL)
	require.Error(t, err)
	assert.Equal(t, domain.StagePersisting, domain.StageOf(err))
	assert.True(t, perr.IsCode(err, perr.ErrorCodeConflict))
	assert.Empty(t, h.tokens.m)
	assert.Empty(t, h.notifier.sent)

	out := buf.String()
	testkit.MustContain(t, out, `"stage":"persisting"`)
	testkit.MustContain(t, out, `"request_id":"req-42"`)
	testkit.MustContain(t, out, `"level":"error"`)
	testkit.MustContain(t, out, `"retryable":false`)

	spans := h.spans.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
}

func TestRegister_TokenStoreFailureKeepsSubscriber(t *testing.T) {
	h := newHarness(t)
	h.tokens.storeErr = perr.Unavailablef("store token")

	var buf bytes.Buffer
	err := h.svc.Register(logCtx(&buf), validRequest(), baseURL)
	require.Error(t, err)
	assert.Equal(t, domain.StageTokenIssued, domain.StageOf(err))
	assert.Len(t, h.subs.rows, 1)
	assert.Empty(t, h.notifier.sent)
	testkit.MustContain(t, buf.String(), `"subscriber_id":"`+h.subs.only().ID.String()+`"`)
	testkit.MustContain(t, buf.String(), `"retryable":true`)
}

func TestRegister_TokenGenerationFailure(t *testing.T) {
	h := newHarness(t)
	h.svc.newToken = func() (string, error) { return "", errors.New("entropy exhausted") }

	err := h.svc.Register(context.Background(), validRequest(), baseURL)
	require.Error(t, err)
	assert.Equal(t, domain.StageTokenIssued, domain.StageOf(err))
	assert.Empty(t, h.tokens.m)
}

func TestRegister_NotifyFailureLeavesTokenUsable(t *testing.T) {
	h := newHarness(t)
	h.notifier.err = perr.Gatewayf(errors.New("502"), "send confirmation email")

	err := h.svc.Register(context.Background(), validRequest(), baseURL)
	require.Error(t, err)
	assert.Equal(t, domain.StageNotifying, domain.StageOf(err))
	assert.True(t, perr.IsCode(err, perr.ErrorCodeGateway))
	assert.Empty(t, h.events.got)

	require.Len(t, h.tokens.m, 1)
	for tok := range h.tokens.m {
		require.NoError(t, h.svc.Confirm(context.Background(), tok))
	}
	assert.Equal(t, domain.StatusConfirmed, h.subs.only().Status)
}

func TestRegister_PublishFailureIsIgnored(t *testing.T) {
	h := newHarness(t)
	h.events.err = errors.New("nats down")

	var buf bytes.Buffer
	require.NoError(t, h.svc.Register(logCtx(&buf), validRequest(), baseURL))
	testkit.MustContain(t, buf.String(), "event publish failed")
}

func TestRegister_WithoutOptionalCollaborators(t *testing.T) {
	n := &fakeNotifier{}
	svc := newSvc(newFakeSubs(), newFakeTokens(), Options{Notifier: n})
	require.NoError(t, svc.Register(context.Background(), validRequest(), baseURL))
	require.Len(t, n.sent, 1)
}

func TestRegister_WrapTokens(t *testing.T) {
	inner := newFakeTokens()
	wrapped := false
	svc := newSvc(newFakeSubs(), inner, Options{
		Notifier: &fakeNotifier{},
		WrapTokens: func(ts domain.TokenStore) domain.TokenStore {
			wrapped = true
			return ts
		},
	})
	require.NoError(t, svc.Register(context.Background(), validRequest(), baseURL))
	assert.True(t, wrapped)
	assert.Len(t, inner.m, 1)
}

func TestConfirm(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.svc.Register(context.Background(), validRequest(), baseURL))
	var token string
	for tok := range h.tokens.m {
		token = tok
	}

	require.NoError(t, h.svc.Confirm(context.Background(), token))
	assert.Equal(t, domain.StatusConfirmed, h.subs.only().Status)

	// confirming again is a no-op success
	require.NoError(t, h.svc.Confirm(context.Background(), token))
	assert.Equal(t, domain.StatusConfirmed, h.subs.only().Status)
	assert.Equal(t, 2.0, testutil.ToFloat64(h.metrics.Confirmations.WithLabelValues("ok")))

	require.Len(t, h.events.got, 3)
	assert.Equal(t, SubjectConfirmed, h.events.got[1].Subject)
}

func TestConfirm_UnknownTokenIsUnauthorized(t *testing.T) {
	h := newHarness(t)
	err := h.svc.Confirm(context.Background(), "nope")
	require.True(t, perr.IsCode(err, perr.ErrorCodeUnauthorized))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.Confirmations.WithLabelValues("unknown_token")))
	assert.Empty(t, h.events.got)
}

func TestConfirm_MalformedTokenSkipsStore(t *testing.T) {
	h := newHarness(t)
	// any store call would surface this instead of Unauthorized
	h.tokens.lookupErr = perr.Unavailablef("lookup token")
	for _, tok := range []string{"", "\xff", "abc\x00def"} {
		err := h.svc.Confirm(context.Background(), tok)
		require.True(t, perr.IsCode(err, perr.ErrorCodeUnauthorized), "%q: %v", tok, err)
	}
	assert.Equal(t, 3.0, testutil.ToFloat64(h.metrics.Confirmations.WithLabelValues("unknown_token")))
}

func TestConfirm_StoreFailures(t *testing.T) {
	h := newHarness(t)
	h.tokens.lookupErr = perr.WithOp(perr.Unavailablef("lookup token"), "repo.lookup_token")
	var logs bytes.Buffer
	require.True(t, perr.IsCode(h.svc.Confirm(logCtx(&logs), "x"), perr.ErrorCodeUnavailable))
	testkit.MustContain(t, logs.String(), `"retryable":true`)
	testkit.MustContain(t, logs.String(), `"op":"repo.lookup_token"`)

	h = newHarness(t)
	require.NoError(t, h.svc.Register(context.Background(), validRequest(), baseURL))
	h.subs.confirmErr = perr.Internalf("confirm subscriber: no such row")
	for tok := range h.tokens.m {
		var buf bytes.Buffer
		err := h.svc.Confirm(logCtx(&buf), tok)
		require.Error(t, err)
		testkit.MustContain(t, buf.String(), "confirmation failed")
		testkit.MustContain(t, buf.String(), h.subs.only().ID.String())
	}
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.Confirmations.WithLabelValues("error")))
}

func TestConfirmLink(t *testing.T) {
	assert.Equal(t, "http://127.0.0.1:8000/subscriptions/confirm?subscription_token=abc",
		ConfirmLink("http://127.0.0.1:8000", "abc"))
	assert.Equal(t, "https://x.io/subscriptions/confirm?subscription_token=abc",
		ConfirmLink("https://x.io/", "abc"))
}

type nopTx struct{}

func (nopTx) Exec(context.Context, string, ...any) (repokit.CommandTag, error) { return nil, nil }
func (nopTx) Query(context.Context, string, ...any) (repokit.Rows, error)      { return nil, nil }
func (nopTx) QueryRow(context.Context, string, ...any) repokit.Row             { return nil }
func (nopTx) Tx(context.Context, func(q repokit.Queryer) error) error          { return nil }
