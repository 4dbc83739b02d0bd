package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Stage is a step of a registration attempt
type Stage string

// Registration advances Validating, Persisting, TokenIssued, Notifying, then Done
const (
	StageValidating  Stage = "validating"
	StagePersisting  Stage = "persisting"
	StageTokenIssued Stage = "token_issued"
	StageNotifying   Stage = "notifying"
	StageDone        Stage = "done"
)

// StageError marks the stage an attempt failed at
type StageError struct {
	Stage        Stage
	SubscriberID uuid.UUID
	Err          error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s: %v", e.Stage, e.Err) }

// Unwrap returns the cause
func (e *StageError) Unwrap() error { return e.Err }

// FailedAt wraps err with its stage, id may be uuid.Nil
func FailedAt(stage Stage, id uuid.UUID, err error) error {
	return &StageError{Stage: stage, SubscriberID: id, Err: err}
}

// StageOf reports the stage err failed at, StageDone when err carries none
func StageOf(err error) Stage {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return StageDone
}
