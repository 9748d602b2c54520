// Command server wires the zorvixe backend together and runs it: config,
// storage, the workflow services, HTTP surface, and background workers.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"zorvixe/internal/audit"
	candidatehandler "zorvixe/internal/candidate/handler"
	candidatemetrics "zorvixe/internal/candidate/metrics"
	candidateservice "zorvixe/internal/candidate/service"
	candidatestore "zorvixe/internal/candidate/store"
	clienthandler "zorvixe/internal/client/handler"
	clientmetrics "zorvixe/internal/client/metrics"
	clientservice "zorvixe/internal/client/service"
	clientstore "zorvixe/internal/client/store"
	"zorvixe/internal/contact"
	linkmetrics "zorvixe/internal/link/metrics"
	linkservice "zorvixe/internal/link/service"
	linkstore "zorvixe/internal/link/store"
	"zorvixe/internal/objectstore"
	"zorvixe/internal/platform/config"
	"zorvixe/internal/platform/httpserver"
	"zorvixe/internal/platform/logger"
	platformmetrics "zorvixe/internal/platform/metrics"
	"zorvixe/internal/platform/middleware"
	"zorvixe/internal/platform/postgres"
	"zorvixe/internal/platform/redis"
	"zorvixe/internal/ratelimit"
	transport "zorvixe/internal/transport/http"
	"zorvixe/pkg/platform/tx"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.FromEnv()
	log := logger.New()
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Storage: Postgres when configured, in-memory dev mode otherwise.
	var (
		runner     tx.Runner
		links      linkstore.Store
		clients    clientstore.Clients
		payments   clientstore.Payments
		candidates candidatestore.Candidates
		uploads    candidatestore.Uploads
		contacts   contact.Store
		health     func(*http.Request) error
	)
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := postgres.Migrate(ctx, db); err != nil {
			return err
		}

		runner = tx.NewSQLRunner(db)
		links = linkstore.NewPostgres(db)
		clients = clientstore.NewPostgresClients(db)
		payments = clientstore.NewPostgresPayments(db)
		candidates = candidatestore.NewPostgresCandidates(db)
		uploads = candidatestore.NewPostgresUploads(db)
		contacts = contact.NewPostgresStore(db)
		health = func(r *http.Request) error { return db.PingContext(r.Context()) }
		log.Info("postgres storage ready")
	} else {
		runner = tx.NewMemoryRunner()
		links = linkstore.NewInMemory()
		clients = clientstore.NewInMemoryClients()
		payments = clientstore.NewInMemoryPayments()
		candidates = candidatestore.NewInMemoryCandidates()
		uploads = candidatestore.NewInMemoryUploads()
		contacts = contact.NewInMemoryStore()
		log.Warn("DATABASE_URL not set, using in-memory storage")
	}

	// Object storage: S3/MinIO when configured.
	var objects objectstore.Store
	if cfg.S3.AccessKey != "" {
		s3Store, err := objectstore.NewS3(ctx, cfg.S3)
		if err != nil {
			return err
		}
		objects = s3Store
		log.Info("object storage ready", "bucket", cfg.S3.Bucket)
	} else {
		objects = objectstore.NewInMemory()
		log.Warn("S3 credentials not set, using in-memory object storage")
	}

	// Audit sink: Kafka when configured, otherwise in-memory.
	var sink audit.Sink
	if cfg.Kafka.Brokers != "" {
		kafkaSink, err := audit.NewKafkaSink(splitBrokers(cfg.Kafka.Brokers), cfg.Kafka.Topic)
		if err != nil {
			return err
		}
		defer kafkaSink.Close()
		sink = kafkaSink
		log.Info("kafka audit sink ready", "topic", cfg.Kafka.Topic)
	} else {
		sink = audit.NewInMemorySink()
	}
	publisher := audit.NewPublisher(sink, audit.WithAsyncBuffer(256), audit.WithLogger(log))
	defer publisher.Close()

	// Rate limiting: Redis-backed fixed windows, in-memory fallback.
	var limiter ratelimit.Limiter = ratelimit.NewMemoryLimiter(ratelimit.DefaultPublic)
	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		limiter = ratelimit.NewRedisLimiter(redisClient.Client, "public", ratelimit.DefaultPublic)
		log.Info("redis rate limiting ready")
	}

	registry := prometheus.NewRegistry()
	httpMetrics := platformmetrics.New(registry)

	linkSvc := linkservice.New(links, runner, cfg.PublicBaseURL,
		linkservice.WithLogger(log),
		linkservice.WithMetrics(linkmetrics.New(registry)),
		linkservice.WithAudit(publisher),
	)
	clientSvc := clientservice.New(clients, payments, linkSvc, runner,
		clientservice.WithLogger(log),
		clientservice.WithMetrics(clientmetrics.New(registry)),
		clientservice.WithAudit(publisher),
	)
	candidateSvc := candidateservice.New(candidates, uploads, objects, linkSvc, runner,
		candidateservice.WithLogger(log),
		candidateservice.WithMetrics(candidatemetrics.New(registry)),
		candidateservice.WithAudit(publisher),
	)
	contactSvc := contact.NewService(contacts, log, publisher)

	if cfg.DemoPaymentToken != "" {
		if err := seedDemoPaymentLink(ctx, log, runner, clients, links, cfg.DemoPaymentToken); err != nil {
			return err
		}
	}

	router := transport.New(transport.Deps{
		Clients:    clienthandler.New(clientSvc, log),
		Candidates: candidatehandler.New(candidateSvc, log),
		Contact:    contact.NewHandler(contactSvc, log),
		Recovery:   middleware.Recovery(log),
		Logger:     middleware.Logger(log),
		Timeout:    middleware.Timeout(30 * time.Second),
		Latency:    middleware.Latency(httpMetrics),
		RateLimit:  ratelimit.NewMiddleware(limiter, log),
		Health:     health,
		Registry:   registry,
	})

	server := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http server listening", "addr", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		err := linkSvc.RunSweeper(gctx, linkservice.SweepInterval)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	return g.Wait()
}

func splitBrokers(brokers string) []string {
	var out []string
	for _, b := range strings.Split(brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
