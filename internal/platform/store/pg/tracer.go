package pg

import (
	"context"
	"strings"

	"newsletter/internal/platform/logger"

	"github.com/rs/zerolog"
)

// QueryEvent describes one round trip to postgres
type QueryEvent struct {
	SQL       string
	Args      any
	ElapsedUS int64
	Err       error
	Slow      bool
}

// QueryTracer receives a QueryEvent after every statement
type QueryTracer interface {
	OnQuery(ctx context.Context, ev QueryEvent)
}

// Tracer returns a tracer that prints SQL through the request scoped logger when one
// is on ctx, falling back to root. It logs regardless of the process level.
func Tracer(root logger.Logger) QueryTracer {
	return &zlTracer{log: root.Level(zerolog.DebugLevel).With().Str("component", "pg").Logger()}
}

type zlTracer struct{ log logger.Logger }

func (z *zlTracer) OnQuery(ctx context.Context, ev QueryEvent) {
	log := z.log
	if ctx != nil {
		if reqLog := logger.C(ctx); reqLog != logger.Get() {
			log = reqLog.Level(zerolog.DebugLevel).With().Str("component", "pg").Logger()
		}
	}

	evt := log.Info()
	if ev.Slow {
		evt = log.Warn()
	}
	evt.Float64("elapsed_ms", float64(ev.ElapsedUS)/1000.0).
		Bool("slow", ev.Slow).
		Str("sql", compact(ev.SQL)).
		Interface("args", ev.Args).
		Err(ev.Err).
		Msg("pg query")
}

// compact folds runs of whitespace so multi line SQL logs on one line
func compact(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
