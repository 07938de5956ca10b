package cli

import (
	"context"
	"errors"
	"time"

	"fsqa-audit-service/internal/app"
	"fsqa-audit-service/internal/config"
	"fsqa-audit-service/internal/infra/memory"
	"fsqa-audit-service/internal/infra/postgres"
	redisinfra "fsqa-audit-service/internal/infra/redis"
	transport "fsqa-audit-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// services holds the wired use cases plus whatever must be closed on exit.
type services struct {
	audits    *app.AuditService
	readiness *app.ReadinessService
	residue   *app.ResidueService
	locks     transport.SessionLocker
	closers   []func() error
}

func (s *services) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i]())
	}
	return errors.Join(errs...)
}

// buildServices picks Postgres or the in-memory demo stores, and Redis or the process
// cache for catalogs, depending on what is configured.
func buildServices(ctx context.Context, cfg config.Config, log *zap.Logger) (*services, error) {
	out := &services{}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		out.closers = append(out.closers, redisClient.Close)
	}

	var (
		loader       memory.CatalogLoader
		sessions     app.SessionRepository
		responses    app.ResponseRepository
		requirements app.RequirementRepository
		snapshots    app.SnapshotRepository
		chemicals    app.ChemicalRepository
	)
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			_ = out.Close()
			return nil, err
		}
		out.closers = append(out.closers, func() error { pool.Close(); return nil })
		db := postgres.OpenDB(cfg.Postgres.URL)
		out.closers = append(out.closers, db.Close)

		store := postgres.NewStore(db)
		loader = postgres.NewCatalogLoader(pool)
		sessions, responses, requirements, snapshots, chemicals = store, store, store, store, store
		log.Info("using postgres storage")
	} else {
		sessionStore := memory.NewSessionStore()
		readinessStore := memory.NewReadinessStore()
		loader = memory.NewStaticCatalogLoader(demoCatalogs())
		sessions, responses = sessionStore, sessionStore
		requirements, snapshots = readinessStore, readinessStore
		chemicals = demoChemicals()
		log.Warn("postgres not configured, using in-memory demo data")
	}

	catalogTTL := config.TTLDuration(cfg.Catalog.TTL, 10*time.Minute)
	var catalogs app.CatalogRepository
	if redisClient != nil {
		catalogs = redisinfra.NewCatalogRepository(redisClient, loader, catalogTTL)
	} else {
		catalogs = memory.NewCatalogRepository(loader, catalogTTL)
	}

	if cfg.Scoring.SerializeWrites {
		if redisClient != nil {
			out.locks = redisinfra.NewSessionLocks(redisClient, config.TTLDuration(cfg.Scoring.LockTTL, 5*time.Second))
		} else {
			out.locks = memory.NewSessionLocks()
		}
	}

	out.audits = app.NewAuditService(catalogs, sessions, responses, log)
	out.readiness = app.NewReadinessService(catalogs, requirements, snapshots, log)
	out.residue = app.NewResidueService(catalogs, chemicals)
	return out, nil
}
