package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	approvalhandler "vigil/internal/approval/handler"
	approvalservice "vigil/internal/approval/service"
	approvalstore "vigil/internal/approval/store"
	"vigil/internal/audit"
	"vigil/internal/audit/relay"
	auditmem "vigil/internal/audit/store/memory"
	auditpg "vigil/internal/audit/store/postgres"
	"vigil/internal/borrower"
	catalogcache "vigil/internal/catalog/cache"
	cataloghandler "vigil/internal/catalog/handler"
	catalogservice "vigil/internal/catalog/service"
	catalogstore "vigil/internal/catalog/store"
	jwttoken "vigil/internal/jwt_token"
	"vigil/internal/platform/config"
	"vigil/internal/platform/httpserver"
	"vigil/internal/platform/logger"
	"vigil/internal/platform/redis"
	reporthandler "vigil/internal/report/handler"
	reportservice "vigil/internal/report/service"
	reportstore "vigil/internal/report/store"
	"vigil/internal/scoring/metrics"
	httptransport "vigil/internal/transport/http"
	watchlisthandler "vigil/internal/watchlist/handler"
	watchlistservice "vigil/internal/watchlist/service"
	watchliststore "vigil/internal/watchlist/store"
	"vigil/pkg/platform/tx"
)

const accessTokenTTL = 8 * time.Hour

// main wires stores, services and transport, then supervises the HTTP
// server and the audit relay until a shutdown signal arrives. Business
// logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := godotenv.Load(); err == nil {
		// .env overrides only matter locally; reload config with it applied.
		cfg = config.FromEnv()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Postgres is optional: without a database URL every store runs in
	// memory, which keeps local development and demos self-contained.
	var (
		reportStore    reportstore.Store
		watchlistStore watchliststore.Store
		approvalStore  approvalstore.Store
		catalogStore   catalogstore.Store
		borrowerStore  borrower.Store
		auditStore     audit.Store
		outbox         *auditpg.Store
		runner         reportservice.TxRunner
	)

	db, err := openDatabase(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("database setup failed", "error", err)
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
		reportStore = reportstore.NewPostgres(db)
		watchlistStore = watchliststore.NewPostgres(db)
		approvalStore = approvalstore.NewPostgres(db)
		catalogStore = catalogstore.NewPostgres(db)
		borrowerStore = borrower.NewPostgres(db)
		outbox = auditpg.New(db)
		auditStore = outbox
		runner = tx.NewRunner(db)
	} else {
		log.Warn("no database configured, using in-memory stores")
		reportStore = reportstore.NewInMemory()
		watchlistStore = watchliststore.NewInMemory()
		approvalStore = approvalstore.NewInMemory()
		catalogStore = catalogstore.NewInMemory()
		borrowerStore = borrower.NewInMemory()
		auditStore = auditmem.New()
		runner = passthroughRunner{}
	}

	redisClient, err := redis.New(ctx, cfg.RedisURL)
	if err != nil {
		log.Error("redis setup failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	var cache catalogservice.Cache
	if redisClient != nil {
		cache = catalogcache.New(redisClient.Client, config.TemplateCacheTTL, log)
	}

	auditor := audit.NewService(auditStore)
	m := metrics.New()

	catalogSvc := catalogservice.New(catalogStore, cache, log)
	watchlistSvc := watchlistservice.New(watchlistStore, auditor, log)
	reportSvc := reportservice.New(reportStore, catalogSvc, borrowerStore, watchlistSvc, auditor, runner, m, log)
	approvalSvc := approvalservice.New(approvalStore, reportSvc, auditor, runner, log)

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer)

	router := httptransport.NewRouter(httptransport.Deps{
		Validator: jwttoken.NewJWTServiceAdapter(jwtService),
		Health:    httptransport.NewHealthHandler(db, redisClient),
		Handlers: []httptransport.Registrar{
			cataloghandler.New(catalogSvc, borrowerStore, log),
			reporthandler.New(reportSvc, log),
			watchlisthandler.New(watchlistSvc, log),
			approvalhandler.New(approvalSvc, log),
		},
		Logger: log,
	})

	srv := httpserver.New(cfg.Addr, router)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Info("starting vigil", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if len(cfg.KafkaBrokers) > 0 && outbox != nil {
		auditRelay, err := relay.New(cfg.KafkaBrokers, cfg.AuditTopic, outbox, log)
		if err != nil {
			log.Error("audit relay setup failed", "error", err)
			os.Exit(1)
		}
		group.Go(func() error {
			err := auditRelay.Run(groupCtx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	} else {
		log.Info("no kafka brokers configured, audit events stay in the outbox")
	}

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error("shutdown with error", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
