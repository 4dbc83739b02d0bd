package mail

import (
	"context"

	"newsletter/internal/platform/logger"
)

// LogTransport writes messages to the request logger instead of sending them
// handy for local runs where no provider is reachable
type LogTransport struct{ sender string }

// NewLog builds a LogTransport
func NewLog(sender string) *LogTransport { return &LogTransport{sender: sender} }

// Send logs the envelope at info level, bodies carry live tokens and are left out
func (t *LogTransport) Send(ctx context.Context, msg Message) error {
	logger.C(ctx).Info().
		Str("from", t.sender).
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Int("text_bytes", len(msg.Text)).
		Msg("email not sent (log transport)")
	return nil
}
