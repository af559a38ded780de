package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"reviewable/internal/adapters/observability"
	redisad "reviewable/internal/adapters/redis"
	"reviewable/internal/app"
	"reviewable/internal/domain"
	"reviewable/internal/reviewable"
	"reviewable/internal/shared"
	mysqlrepo "reviewable/internal/storage/mysql"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	if cfg.MySQLDSN == "" {
		log.Fatal().Msg("MYSQL_DSN is required for imports")
	}
	if cfg.ImportFile == "" {
		log.Fatal().Msg("IMPORT_FILE is required")
	}

	// 2) seed document
	f, err := os.Open(cfg.ImportFile)
	if err != nil {
		log.Fatal().Err(err).Msg("open seed file failed")
	}
	seed, err := app.ParseSeed(f)
	f.Close()
	if err != nil {
		log.Fatal().Err(err).Msg("seed parse failed")
	}
	if err := seed.Validate(); err != nil {
		log.Fatal().Err(err).Str("file", cfg.ImportFile).Msg("nothing to import")
	}

	// 3) store, cache, registry
	db, err := mysqlrepo.Open(cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("mysql open failed")
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")
	if cfg.Migrate {
		if err := mysqlrepo.Migrate(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("migration failed")
		}
	}

	// writes must evict entries the daemon may have cached
	var cache domain.Cache
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		defer rc.Close()
		cache = rc
	}

	svc := app.NewReviewService(mysqlrepo.New(db), cache, cfg.CacheTTL)
	reg := reviewable.NewRegistry(svc)
	decls, err := shared.ParseTypes(cfg.ReviewableTypes)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid REVIEWABLE_TYPES")
	}
	for _, d := range decls {
		reg.Declare(d.Name, d.Roles...)
	}

	log.Info().
		Str("file", cfg.ImportFile).
		Int("workers", cfg.ImportWorkers).
		Int("rps", cfg.ImportRPS).
		Msg("importer starting")

	rep, err := app.NewImporter(reg, cfg.ImportWorkers, cfg.ImportRPS).Import(ctx, seed)
	if err != nil {
		log.Fatal().Err(err).Str("batch", rep.Batch).Msg("import interrupted")
	}
	if rep.Failed > 0 {
		log.Error().Str("batch", rep.Batch).Int("failed", rep.Failed).Msg("import completed with failures")
		os.Exit(1)
	}
	log.Info().Str("batch", rep.Batch).Msg("import completed")
}
