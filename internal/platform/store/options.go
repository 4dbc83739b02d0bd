package store

import (
	"newsletter/internal/platform/logger"
)

// Option tweaks a Store before its backends are opened
type Option func(*Store) error

// WithLogger routes connect retries and the SQL tracer through log instead of a nop logger
func WithLogger(log logger.Logger) Option {
	return func(s *Store) error {
		s.Log = log
		return nil
	}
}
