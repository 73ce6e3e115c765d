// Command server runs the event-registration intake service.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"intake/internal/audit"
	"intake/internal/auth"
	"intake/internal/docstore"
	"intake/internal/influencer"
	"intake/internal/jwttoken"
	"intake/internal/notify"
	"intake/internal/platform/config"
	"intake/internal/platform/httpserver"
	"intake/internal/platform/logger"
	"intake/internal/platform/metrics"
	platformredis "intake/internal/platform/redis"
	registrationhandler "intake/internal/registration/handler"
	"intake/internal/registration/service"
)

// main wires dependencies and owns the process lifecycle. Business logic
// lives in the internal packages.
func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, cleanup, err := openStore(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer cleanup()

	registry := influencer.New(store, log)
	registry.Seed(ctx)

	publisher, closePublisher, err := openAuditPublisher(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open audit publisher: %w", err)
	}
	defer closePublisher()

	m := metrics.New()
	svc := service.New(store, registry, log,
		service.WithMetrics(m),
		service.WithAudit(publisher),
	)

	var sender registrationhandler.EmailSender
	if cfg.Email.APIKey != "" {
		sender = notify.NewSendGridSender(cfg.Email.APIKey, cfg.Email.From, log)
	} else {
		log.Warn("SENDGRID_API_KEY not set, confirmation email disabled")
	}

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, "intake")
	validator := jwttoken.NewJWTServiceAdapter(jwtService)

	router := chi.NewRouter()
	registrationhandler.New(svc, registry, sender, m, validator, log).Register(router)
	auth.New(jwtService, cfg.AdminUsername, cfg.AdminPassword, cfg.TokenTTL, log).Register(router)
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := httpserver.New(cfg.Addr, router)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting intake server", "addr", cfg.Addr, "store", cfg.StoreBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("server stopped")
	return nil
}

// openStore selects the configured document store backend and returns it with
// a cleanup function for its connections.
func openStore(ctx context.Context, cfg config.Server, log *slog.Logger) (docstore.Store, func(), error) {
	noop := func() {}

	switch cfg.StoreBackend {
	case config.StoreMemory:
		log.Warn("using in-memory store, data is lost on restart")
		return docstore.NewMemoryStore(), noop, nil

	case config.StoreRedis:
		client, err := platformredis.New(cfg.Redis)
		if err != nil {
			return nil, noop, err
		}
		if client == nil {
			return nil, noop, errors.New("INTAKE_REDIS_URL is required for the redis backend")
		}
		return docstore.NewRedisStore(client.Client), func() { _ = client.Close() }, nil

	case config.StorePostgres:
		if cfg.PostgresDSN == "" {
			return nil, noop, errors.New("INTAKE_POSTGRES_DSN is required for the postgres backend")
		}
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			return nil, noop, err
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, noop, err
		}
		store := docstore.NewPostgresStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, noop, err
		}
		return store, func() { _ = db.Close() }, nil

	default:
		return nil, noop, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

// openAuditPublisher returns the Kafka publisher when brokers are configured
// and falls back to log-only audit events otherwise.
func openAuditPublisher(ctx context.Context, cfg config.Server, log *slog.Logger) (audit.Publisher, func(), error) {
	noop := func() {}

	if len(cfg.Kafka.Brokers) == 0 {
		log.Info("kafka brokers not configured, audit events go to the log")
		return audit.NewLogPublisher(log), noop, nil
	}

	publisher, err := audit.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	if err != nil {
		return nil, noop, err
	}
	if err := publisher.EnsureTopic(ctx); err != nil {
		publisher.Close()
		return nil, noop, err
	}
	log.Info("audit events publishing to kafka", "topic", cfg.Kafka.Topic)
	return publisher, publisher.Close, nil
}
