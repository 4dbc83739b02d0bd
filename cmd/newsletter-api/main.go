// @title         Newsletter API
// @version       0.1.0
// @description   Subscribe and confirm endpoints for the newsletter

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"newsletter/internal/platform/bus"
	"newsletter/internal/platform/cache"
	"newsletter/internal/platform/config"
	"newsletter/internal/platform/logger"
	"newsletter/internal/platform/mail"
	"newsletter/internal/platform/metrics"
	phttp "newsletter/internal/platform/net/http"
	"newsletter/internal/platform/store"
	"newsletter/internal/platform/store/migrate"
	"newsletter/internal/platform/telemetry"

	"newsletter/internal/modkit"
	"newsletter/internal/modkit/httpkit"
	"newsletter/internal/modkit/repokit"
	"newsletter/internal/services/api"
	metahttp "newsletter/internal/services/api/meta/http"
	subsmod "newsletter/internal/services/subscriptions/module"

	"golang.org/x/sync/errgroup"
)

const serviceName = "newsletter-api"

func main() {
	// bring up logging early
	logger.Init(logger.FromEnv())
	l := logger.Named("main")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, config.New()); err != nil {
		l.Fatal().Err(err).Msg("newsletter-api stopped")
	}
}

func run(ctx context.Context, root config.Conf) error {
	l := logger.Get()
	apiCfg := root.Prefix("CORE_API_")     // CORE_API_*
	pgCfg := root.Prefix("SERVICE_PGSQL_") // SERVICE_PGSQL_*
	redisCfg := root.Prefix("SERVICE_REDIS_")
	natsCfg := root.Prefix("SERVICE_NATS_")

	shutdownTracing, err := telemetry.Init(ctx, telemetry.FromConfig(root.Prefix("OTEL_")))
	if err != nil {
		return err
	}

	pg := store.PGFromConfig(pgCfg)
	if apiCfg.MayBool("MIGRATE_ON_START", false) {
		if err := migrateUp(ctx, pg.DSN()); err != nil {
			return err
		}
	}

	// open the platform store (postgres)
	st, err := store.Open(ctx, store.Config{AppName: serviceName, PG: pg}, store.WithLogger(*l))
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	repokit.MustGuard(ctx, st)

	rc, err := cache.Open(ctx, cache.FromConfig(redisCfg))
	if err != nil {
		return err
	}
	if rc != nil {
		defer func() { _ = rc.Close() }()
	}

	b, err := bus.New(bus.FromConfig(natsCfg))
	if err != nil {
		return err
	}
	if b != nil {
		repokit.MustPing(ctx, "nats", b)
	}

	transport, err := mail.New(ctx, mail.FromConfig(root.Prefix("EMAIL_")))
	if err != nil {
		return err
	}

	deps := modkit.Deps{
		Log:     *l,
		Cfg:     root,
		PG:      st.PG,
		Redis:   rc,
		Bus:     b,
		Mail:    transport,
		Metrics: metrics.New(),
	}

	stack := httpkit.StackFromConfig(apiCfg)
	stack.Root = l

	// http server (reads CORE_API_API_PORT / CORE_API_SHUTDOWN_GRACE)
	srv := phttp.NewServer(apiCfg)
	api.Mount(srv.Router(), api.Options{
		ServiceName:   serviceName,
		Deps:          deps,
		Stack:         stack,
		Subscriptions: subsmod.FromConfig(root),
		Checks:        readinessChecks(st, rc, b),
		EnableDocs:    apiCfg.MayBool("DOCS_ENABLED", true),
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx) })
	g.Go(func() error {
		<-gctx.Done()
		b.Close()
		fctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return shutdownTracing(fctx)
	})
	return g.Wait()
}

func migrateUp(ctx context.Context, dsn string) error {
	m, err := migrate.Open(dsn)
	if err != nil {
		return err
	}
	defer func() { _ = m.Close() }()
	return m.Up(ctx)
}

// readinessChecks reports disabled backends as skipped
func readinessChecks(st *store.Store, rc *cache.Client, b *bus.Bus) []metahttp.Check {
	checks := []metahttp.Check{{Name: "pg", Pinger: metahttp.PingFunc(st.Guard)}}

	redisCheck := metahttp.Check{Name: "redis"}
	if rc != nil {
		redisCheck.Pinger = rc
	}
	natsCheck := metahttp.Check{Name: "nats"}
	if b != nil {
		natsCheck.Pinger = b
	}
	return append(checks, redisCheck, natsCheck)
}
