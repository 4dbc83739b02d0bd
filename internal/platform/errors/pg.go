package errors

// Postgres helpers for mapping pgx errors to project ErrorCode, extracting fields, and retry semantics

import (
	"context"
	stderrs "errors"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes the store cares about
const (
	pgErrUniqueViolation     = "23505"
	pgErrForeignKeyViolation = "23503"
	pgErrNotNullViolation    = "23502"
	pgErrCheckViolation      = "23514"
	pgErrInvalidText         = "22P02"
	pgErrBadEncoding         = "22021"

	pgErrSerializationFailure = "40001"
	pgErrDeadlockDetected     = "40P01"
	pgErrLockNotAvailable     = "55P03"
	pgErrReadOnlySQLTx        = "25006"
	pgErrAdminShutdown        = "57P01"
	pgErrCannotConnectNow     = "57P03"
	pgErrTooManyConnections   = "53300"
)

// ExtractPgError returns (*pgconn.PgError, true) if the chain holds a PgError
func ExtractPgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if stderrs.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

// IsSQLState reports whether the error is a Postgres error with the given SQLSTATE code
func IsSQLState(err error, code string) bool {
	pgErr, ok := ExtractPgError(err)
	return ok && pgErr.Code == code
}

// IsDuplicateKey reports whether the error is a unique constraint violation
func IsDuplicateKey(err error) bool { return IsSQLState(err, pgErrUniqueViolation) }

// IsConnectivity reports whether err looks like the backend could not be reached
// covers dial failures, pool acquire timeouts and server side shutdown states
func IsConnectivity(err error) bool {
	if err == nil {
		return false
	}
	if stderrs.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) {
		return true
	}
	var ce *pgconn.ConnectError
	if stderrs.As(err, &ce) {
		return true
	}
	var ne net.Error
	if stderrs.As(err, &ne) {
		return true
	}
	switch {
	case IsSQLState(err, pgErrCannotConnectNow),
		IsSQLState(err, pgErrAdminShutdown),
		IsSQLState(err, pgErrTooManyConnections),
		IsSQLState(err, pgErrReadOnlySQLTx):
		return true
	}
	return false
}

// DBErrorCode maps a store error to an ErrorCode with an ok flag
// !ok means err was neither a PgError nor a connectivity failure
func DBErrorCode(err error) (ErrorCode, bool) {
	if IsConnectivity(err) {
		return ErrorCodeUnavailable, true
	}
	pgErr, ok := ExtractPgError(err)
	if !ok {
		return ErrorCodeUnknown, false
	}

	switch pgErr.Code {
	case pgErrUniqueViolation:
		return ErrorCodeDuplicateKey, true
	case pgErrForeignKeyViolation, pgErrInvalidText, pgErrBadEncoding:
		return ErrorCodeInvalidArgument, true
	case pgErrNotNullViolation, pgErrCheckViolation:
		return ErrorCodeValidation, true
	case pgErrSerializationFailure, pgErrDeadlockDetected, pgErrLockNotAvailable:
		return ErrorCodeUnavailable, true
	}
	return ErrorCodeDB, true
}

// FromPostgres wraps a store error with a mapped ErrorCode and message.
// If err is nil, returns nil
func FromPostgres(err error, msg string) error {
	if err == nil {
		return nil
	}
	if code, ok := DBErrorCode(err); ok {
		return AttachFieldFromPg(Wrap(err, code, msg))
	}
	return Wrap(err, ErrorCodeDB, msg)
}

// AttachFieldFromPg tries to enrich an error with a field name derived from PgError.
// Priority: ColumnName -> middle token of ConstraintName (subscriptions_email_key -> email).
func AttachFieldFromPg(err error) error {
	pgErr, ok := ExtractPgError(err)
	if !ok {
		return err
	}
	if col := strings.TrimSpace(pgErr.ColumnName); col != "" {
		return WithField(err, col)
	}
	c := strings.TrimSpace(pgErr.ConstraintName)
	if c == "" {
		return err
	}
	c = strings.TrimSuffix(strings.TrimSuffix(c, "_key"), "_fkey")
	if i := strings.LastIndex(c, "_"); i >= 0 && i+1 < len(c) {
		return WithField(err, c[i+1:])
	}
	return err
}

// IsRetryable reports whether a database error represents a transient condition
// local cancellations are not retryable; let the caller decide
func IsRetryable(err error) bool {
	if err == nil || stderrs.Is(err, context.Canceled) {
		return false
	}
	if pgErr, ok := ExtractPgError(err); ok {
		switch pgErr.Code {
		case pgErrSerializationFailure, pgErrDeadlockDetected, pgErrLockNotAvailable,
			pgErrCannotConnectNow, pgErrTooManyConnections:
			return true
		}
		return false
	}
	return pgconn.SafeToRetry(err) || IsConnectivity(err)
}
