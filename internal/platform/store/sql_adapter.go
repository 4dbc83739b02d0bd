package store

import (
	"context"
	"errors"
	"time"

	"newsletter/internal/platform/store/pg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgAdapter wraps pg.PG and implements TxRunner
// it also emits query trace events when a tracer is configured on pg.PG
type pgAdapter struct {
	p *pg.PG
}

// NewPG adapts an open pg client to the TxRunner seam
func NewPG(p *pg.PG) TxRunner { return &pgAdapter{p: p} }

// FromPool adapts a bare pool (a pgxmock pool in tests) without tracing
func FromPool(pool pg.Pool) TxRunner { return NewPG(pg.Wrap(pool, nil, 0)) }

func (a *pgAdapter) Ping(ctx context.Context) error {
	if a == nil || a.p == nil {
		return errors.New("pg: nil adapter")
	}
	return a.p.Pool.Ping(ctx)
}

func (a *pgAdapter) Close() error { a.p.Close(); return nil }

func (a *pgAdapter) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	return execTraced(ctx, a.p.Pool, a.emitter(), sql, args)
}

func (a *pgAdapter) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	return queryTraced(ctx, a.p.Pool, a.emitter(), sql, args)
}

func (a *pgAdapter) QueryRow(ctx context.Context, sql string, args ...any) Row {
	return queryRowTraced(ctx, a.p.Pool, a.emitter(), sql, args)
}

func (a *pgAdapter) Tx(ctx context.Context, fn func(q RowQuerier) error) error {
	tx, err := a.p.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(txQuerier{tx: tx, emit: a.emitter()}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

type emitFunc func(ctx context.Context, sql string, args []any, start time.Time, err error)

// emitter returns the trace hook for this adapter, a no op without a tracer
func (a *pgAdapter) emitter() emitFunc {
	if a.p.Tracer == nil {
		return func(context.Context, string, []any, time.Time, error) {}
	}
	slowUS := int64(a.p.SlowMs) * 1000
	return func(ctx context.Context, sql string, args []any, start time.Time, err error) {
		elapsedUS := time.Since(start).Microseconds()
		a.p.Tracer.OnQuery(ctx, pg.QueryEvent{
			SQL:       sql,
			Args:      args,
			ElapsedUS: elapsedUS,
			Err:       err,
			Slow:      slowUS >= 0 && elapsedUS >= slowUS,
		})
	}
}

// pgxQuerier is what pools and transactions have in common
type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func execTraced(ctx context.Context, q pgxQuerier, emit emitFunc, sql string, args []any) (CommandTag, error) {
	start := time.Now()
	ct, err := q.Exec(ctx, sql, args...)
	emit(ctx, sql, args, start, err)
	return ct, err
}

func queryTraced(ctx context.Context, q pgxQuerier, emit emitFunc, sql string, args []any) (Rows, error) {
	start := time.Now()
	rs, err := q.Query(ctx, sql, args...)
	emit(ctx, sql, args, start, err)
	if err != nil {
		return nil, err
	}
	return rs, nil
}

func queryRowTraced(ctx context.Context, q pgxQuerier, emit emitFunc, sql string, args []any) Row {
	start := time.Now()
	return row{
		r:     q.QueryRow(ctx, sql, args...),
		after: func(scanErr error) { emit(ctx, sql, args, start, scanErr) },
	}
}

// row emits the trace event after Scan so the scan error is captured
type row struct {
	r     pgx.Row
	after func(error)
}

func (x row) Scan(dst ...any) error {
	err := x.r.Scan(dst...)
	x.after(err)
	return err
}

// txQuerier satisfies RowQuerier inside a Tx with the same tracing as the pool
type txQuerier struct {
	tx   pgx.Tx
	emit emitFunc
}

func (t txQuerier) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	return execTraced(ctx, t.tx, t.emit, sql, args)
}

func (t txQuerier) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	return queryTraced(ctx, t.tx, t.emit, sql, args)
}

func (t txQuerier) QueryRow(ctx context.Context, sql string, args ...any) Row {
	return queryRowTraced(ctx, t.tx, t.emit, sql, args)
}
