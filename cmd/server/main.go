// Package main is the entry point for the retaguarda API server.
// The storage driver (postgres or memory) is selected by configuration.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"retaguarda/internal/core/cache"
	"retaguarda/internal/core/tx"
	"retaguarda/internal/domain/audit"
	"retaguarda/internal/domain/auth"
	"retaguarda/internal/domain/catalogs"
	infracache "retaguarda/internal/infrastructure/cache"
	"retaguarda/internal/infrastructure/config"
	v1 "retaguarda/internal/infrastructure/http/v1"
	"retaguarda/internal/infrastructure/http/v1/handlers"
	"retaguarda/internal/infrastructure/metrics"
	"retaguarda/internal/infrastructure/migration"
	"retaguarda/internal/infrastructure/storage/memory"
	"retaguarda/internal/infrastructure/storage/postgres"
	"retaguarda/internal/infrastructure/storage/postgres/catalog_repo"
	"retaguarda/pkg/logger"
)

var version = "dev"

// storage is the wiring produced by one storage driver.
type storage struct {
	repos     catalogs.Repos
	txManager tx.Manager
	audit     audit.Store
	pinger    handlers.Pinger
	poolStats func() metrics.PoolStats
	close     func()
}

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)

	ctx := context.Background()
	log.Infow("starting retaguarda server", "version", version, "env", cfg.App.Env, "driver", cfg.Storage.Driver)

	// --- Storage ---
	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatalw("failed to initialize storage", "error", err)
	}
	defer store.close()

	// --- Cache ---
	projections, cachePinger, closeCache := openCache(ctx, cfg, log)
	defer closeCache()

	// --- Services ---
	services := catalogs.NewServices(store.repos, store.txManager, catalogs.Options{
		Cache:    metrics.InstrumentCache(projections, "arvore"),
		Observer: metrics.LifecycleObserver(),
	})
	services.AttachAudit(store.audit)

	if store.poolStats != nil {
		metrics.RegisterPoolGauges(store.poolStats)
	}

	// --- Router ---
	routerCfg := v1.RouterConfig{
		Services: services,
		Audit:    store.audit,
		Logger:   log,
		Debug:    cfg.App.IsDevelopment(),
		Health: handlers.HealthConfig{
			App:       cfg.App.Name,
			Version:   version,
			Driver:    cfg.Storage.Driver,
			Database:  store.pinger,
			Cache:     cachePinger,
			PoolStats: store.poolStats,
		},
	}
	if cfg.JWT.Enabled {
		jwtConfig := auth.DefaultJWTConfig(cfg.JWT.Secret)
		jwtConfig.Issuer = cfg.JWT.Issuer
		jwtConfig.AccessTokenTTL = cfg.JWT.TTL
		routerCfg.JWTValidator = auth.NewJWTService(jwtConfig)
	} else {
		log.Warn("jwt validation disabled: every request runs as the development admin")
	}
	router := v1.NewRouter(routerCfg)

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Infow("server starting", "port", cfg.App.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if cfg.Storage.Driver == config.DriverMemory {
		log.Warn("using in-memory storage: data is lost on restart")
		cat := memory.NewCatalog()
		return &storage{
			repos:     cat.Repos(),
			txManager: cat.TxManager,
			audit:     memory.NewAuditStore(),
			close:     func() {},
		}, nil
	}

	if cfg.Database.AutoMigrate {
		m, err := migration.New(cfg.Database.DSN, cfg.Database.MigrationsPath, log)
		if err != nil {
			return nil, err
		}
		err = m.Up()
		_ = m.Close()
		if err != nil {
			return nil, err
		}
	}

	poolCfg := postgres.DefaultPoolConfig(cfg.Database.DSN)
	poolCfg.ApplicationName = cfg.App.Name
	poolCfg.MaxConns = cfg.Database.MaxConns
	poolCfg.MinConns = cfg.Database.MinConns
	poolCfg.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolCfg.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		return nil, err
	}
	log.Info("database connection established")

	txm := postgres.NewTxManager(pool, cfg.Database.StatementTimeout)
	auditStore, err := postgres.NewAuditStore(txm, postgres.DefaultCompressThreshold)
	if err != nil {
		pool.Close()
		return nil, err
	}

	return &storage{
		repos:     catalog_repo.NewRepos(txm),
		txManager: txm,
		audit:     auditStore,
		pinger:    pool,
		poolStats: func() metrics.PoolStats {
			s := pool.Stats()
			return metrics.PoolStats{Total: s.TotalConns, Acquired: s.AcquiredConns, Idle: s.IdleConns, Max: s.MaxConns}
		},
		close: pool.Close,
	}, nil
}

// openCache returns redis when enabled and reachable, the in-process cache otherwise.
func openCache(ctx context.Context, cfg *config.Config, log *logger.Logger) (cache.Cache, handlers.Pinger, func()) {
	if cfg.Redis.Enabled {
		rc, err := infracache.NewRedisCache(ctx, infracache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
		if err == nil {
			log.Infow("redis cache connected", "addr", cfg.Redis.Addr)
			return rc, rc, func() { _ = rc.Close() }
		}
		log.Warnw("redis unavailable, falling back to in-process cache", "error", err)
	}

	mc := infracache.NewMemoryCache()
	return mc, mc, func() {}
}
