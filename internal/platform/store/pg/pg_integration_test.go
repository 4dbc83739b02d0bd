//go:build integration_pg

package pg

import (
	"context"
	"testing"
	"time"

	kit "newsletter/internal/platform/testkit"
)

type countTracer struct{ n int }

func (c *countTracer) OnQuery(context.Context, QueryEvent) { c.n++ }

func TestOpen_Integration(t *testing.T) {
	dsn := kit.StartPostgres(t)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	p, err := Open(ctx, Config{URL: dsn, MaxConns: 2, AppName: "newsletter-it", ConnectTimeout: 5 * time.Second}, &countTracer{}, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer p.Close()

	if err := p.Pool.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}

	var app string
	if err := p.Pool.QueryRow(ctx, "SELECT current_setting('application_name')").Scan(&app); err != nil {
		t.Fatalf("select: %v", err)
	}
	if app != "newsletter-it" {
		t.Fatalf("application_name = %q", app)
	}
}
