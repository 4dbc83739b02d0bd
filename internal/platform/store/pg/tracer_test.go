package pg

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"newsletter/internal/platform/logger"
	kit "newsletter/internal/platform/testkit"
)

func TestCompact(t *testing.T) {
	in := "SELECT id\n\t FROM   subscriptions\r\nWHERE email = $1"
	if got := compact(in); got != "SELECT id FROM subscriptions WHERE email = $1" {
		t.Fatalf("compact = %q", got)
	}
}

func TestTracerLogsQueries(t *testing.T) {
	var buf bytes.Buffer
	root := logger.New(logger.Options{Level: "error", Format: "json", Writer: &buf})
	tr := Tracer(root)

	tr.OnQuery(context.Background(), QueryEvent{SQL: "SELECT 1", ElapsedUS: 1500})
	tr.OnQuery(context.Background(), QueryEvent{SQL: "SELECT pg_sleep(1)", Slow: true, Err: errors.New("canceled")})

	out := buf.String()
	kit.MustContain(t, out, `"sql":"SELECT 1"`)
	kit.MustContain(t, out, `"elapsed_ms":1.5`)
	kit.MustContain(t, out, `"level":"warn"`)
	kit.MustContain(t, out, `"error":"canceled"`)
}

func TestTracerPrefersRequestLogger(t *testing.T) {
	var rootBuf, reqBuf bytes.Buffer
	tr := Tracer(logger.New(logger.Options{Format: "json", Writer: &rootBuf}))

	ctx := logger.Into(context.Background(), logger.New(logger.Options{Format: "json", Writer: &reqBuf}))
	ctx = logger.WithRequest(ctx, "req-7")
	tr.OnQuery(ctx, QueryEvent{SQL: "SELECT 2"})

	if rootBuf.Len() != 0 {
		t.Fatalf("root logger should stay quiet when ctx carries one")
	}
	kit.MustContain(t, reqBuf.String(), `"request_id":"req-7"`)
}
