package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	server "reviewable/internal/adapters/http_server"
	"reviewable/internal/adapters/observability"
	redisad "reviewable/internal/adapters/redis"
	"reviewable/internal/app"
	"reviewable/internal/domain"
	"reviewable/internal/reviewable"
	"reviewable/internal/shared"
	"reviewable/internal/storage/memory"
	mysqlrepo "reviewable/internal/storage/mysql"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	checks := map[string]server.Pinger{}

	// store
	var repo domain.ReviewRepository = memory.New()
	if cfg.MySQLDSN != "" {
		db, err := mysqlrepo.Open(cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("mysql open failed")
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Fatal().Err(err).Msg("db.Ping failed")
		}
		log.Info().Msg("database connection ok")
		if cfg.Migrate {
			if err := mysqlrepo.Migrate(ctx, db); err != nil {
				log.Fatal().Err(err).Msg("migration failed")
			}
		}
		repo = mysqlrepo.New(db)
		checks["mysql"] = server.PingFunc(db.PingContext)
	}

	// cache
	var cache domain.Cache
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		defer rc.Close()
		cache = rc
		checks["redis"] = rc
	}

	// reviewable types
	svc := app.NewReviewService(repo, cache, cfg.CacheTTL)
	reg := reviewable.NewRegistry(svc)
	decls, err := shared.ParseTypes(cfg.ReviewableTypes)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid REVIEWABLE_TYPES")
	}
	for _, d := range decls {
		name := d.Name
		// instances live in the host's own tables; only the id shape is checked here
		reg.RegisterType(name, func(ctx context.Context, id int64) (reviewable.Target, error) {
			if id <= 0 {
				return nil, domain.ErrNotFound
			}
			return domain.Ref{Type: name, ID: id}, nil
		})
		c := reg.Declare(name, d.Roles...)
		log.Info().Str("type", name).Strs("roles", c.Roles()).Msg("reviewable type ready")
	}

	checks["registry"] = server.PingFunc(func(context.Context) error { return reg.Ready() })

	// ops http
	srv := server.New()
	metrics := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(metrics))
	srv.MountHandlers(&server.Handlers{Checks: checks})

	httpSrv := &http.Server{
		Addr:              cfg.OpsAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", cfg.OpsAddr).Msg("ops listener up")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("shut down")
}
