package httpkit

import (
	"compress/flate"
	"net/http"
	"time"

	"newsletter/internal/platform/config"
	"newsletter/internal/platform/logger"
	"newsletter/internal/platform/net/middleware"
)

// StackOptions tunes CommonStack from CORE_API_ config
type StackOptions struct {
	Root        *logger.Logger
	CORSOrigins []string
	SlowRequest time.Duration
	Timeout     time.Duration
}

// StackFromConfig reads CORS_ORIGINS, SLOW_REQUEST and REQUEST_TIMEOUT
func StackFromConfig(cfg config.Conf) StackOptions {
	return StackOptions{
		CORSOrigins: cfg.MayCSV("CORS_ORIGINS", []string{"*"}),
		SlowRequest: cfg.MayDuration("SLOW_REQUEST", 500*time.Millisecond),
		Timeout:     cfg.MayDuration("REQUEST_TIMEOUT", 30*time.Second),
	}
}

// CommonStack returns the baseline middleware chain, outermost first
func CommonStack(o StackOptions) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		// correlation
		middleware.RequestID(),
		middleware.RealIP(),

		// observability, the access log owns the request scoped logger
		middleware.AccessLog(middleware.AccessLogOptions{Root: o.Root, Slow: o.SlowRequest}),

		// safety
		middleware.RecoverJSON,
		middleware.NoCache(),

		middleware.CORS(middleware.CORSOptions{AllowedOrigins: o.CORSOrigins, MaxAge: 300}),
		middleware.Compress(flate.BestSpeed),
		middleware.Timeout(o.Timeout),
	}
}
