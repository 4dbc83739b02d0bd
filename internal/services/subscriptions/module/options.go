package module

import (
	"net/http"
	"time"

	"newsletter/internal/platform/config"
	"newsletter/internal/platform/logger"
)

// Options controls subscriptions behavior
type Options struct {
	BaseURL        string        // prefix of the emailed confirmation link
	ConflictStatus int           // 500 (default) or 409 for an already subscribed email
	StaleAfter     time.Duration // default reconcile threshold
}

// FromConfig reads SUBSCRIPTIONS_* values plus CORE_API_BASE_URL from the root config
func FromConfig(root config.Conf) Options {
	sc := root.Prefix("SUBSCRIPTIONS_")
	o := Options{
		BaseURL:        root.Prefix("CORE_API_").MayString("BASE_URL", "http://127.0.0.1:8000"),
		ConflictStatus: sc.MayInt("CONFLICT_STATUS", http.StatusInternalServerError),
		StaleAfter:     sc.MayDuration("STALE_AFTER", 48*time.Hour),
	}
	if o.ConflictStatus != http.StatusConflict && o.ConflictStatus != http.StatusInternalServerError {
		logger.Get().Warn().
			Str("key", sc.Key("CONFLICT_STATUS")).
			Int("value", o.ConflictStatus).
			Msg("conflict status must be 409 or 500; using 500")
		o.ConflictStatus = http.StatusInternalServerError
	}
	return o
}
