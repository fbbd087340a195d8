package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"agriqcert/internal/audit"
	"agriqcert/internal/authority"
	batchhandler "agriqcert/internal/batch/handler"
	batchservice "agriqcert/internal/batch/service"
	batchstore "agriqcert/internal/batch/store"
	credhandler "agriqcert/internal/credential/handler"
	credservice "agriqcert/internal/credential/service"
	"agriqcert/internal/credential/signing"
	credstore "agriqcert/internal/credential/store"
	jwttoken "agriqcert/internal/jwt_token"
	"agriqcert/internal/platform/config"
	"agriqcert/internal/platform/database"
	"agriqcert/internal/platform/health"
	"agriqcert/internal/platform/kafka/producer"
	"agriqcert/internal/platform/logger"
	"agriqcert/internal/platform/metrics"
	redisclient "agriqcert/internal/platform/redis"
	"agriqcert/internal/platform/tracer"
	"agriqcert/internal/qrcode"
	httptransport "agriqcert/internal/transport/http"
	verifyhandler "agriqcert/internal/verification/handler"
	verifyservice "agriqcert/internal/verification/service"
	verifystore "agriqcert/internal/verification/store"
	"agriqcert/migrations"
	"agriqcert/pkg/platform/circuit"
	"agriqcert/pkg/platform/middleware/request"
	platformsync "agriqcert/pkg/platform/sync"
)

const (
	shutdownTimeout   = 10 * time.Second
	poolStatsInterval = 15 * time.Second
	tokenTTL          = 12 * time.Hour
	auditBuffer       = 256
)

func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

// infra holds the optional backends. Nil fields mean the in-memory fallback.
type infra struct {
	db       *database.Pool
	redis    *redisclient.Client
	producer *producer.Producer
}

func (i *infra) close(log *slog.Logger) {
	if i.producer != nil {
		if err := i.producer.Close(); err != nil {
			log.Warn("kafka producer close failed", "error", err)
		}
	}
	if i.redis != nil {
		if err := i.redis.Close(); err != nil {
			log.Warn("redis close failed", "error", err)
		}
	}
	if i.db != nil {
		if err := i.db.Close(); err != nil {
			log.Warn("database close failed", "error", err)
		}
	}
}

func connect(ctx context.Context, cfg config.Server, reg prometheus.Registerer, log *slog.Logger) (*infra, error) {
	in := &infra{}

	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		return in, fmt.Errorf("database: %w", err)
	}
	if db != nil {
		in.db = db
		if err := database.Migrate(ctx, db.DB(), migrations.FS); err != nil {
			return in, fmt.Errorf("migrate: %w", err)
		}
		log.Info("postgres storage enabled")
	} else {
		log.Warn("DATABASE_URL not set, using in-memory storage")
	}

	rc, err := redisclient.New(ctx, cfg.Redis, reg)
	if err != nil {
		return in, fmt.Errorf("redis: %w", err)
	}
	if rc != nil {
		in.redis = rc
		log.Info("redis verification activity log enabled")
	}

	if cfg.Kafka.Brokers != "" {
		p, err := producer.New(producer.FromConfig(cfg.Kafka), log)
		if err != nil {
			return in, fmt.Errorf("kafka: %w", err)
		}
		in.producer = p
		log.Info("kafka audit sink enabled", "topic", cfg.Kafka.AuditTopic)
	}
	return in, nil
}

func auditStore(in *infra, cfg config.Server) audit.Store {
	sinks := audit.MultiStore{}
	if in.db != nil {
		sinks = append(sinks, audit.NewPostgresStore(in.db.DB()))
	} else {
		sinks = append(sinks, audit.NewInMemoryStore())
	}
	if in.producer != nil {
		sinks = append(sinks, audit.NewKafkaStore(in.producer, cfg.Kafka.AuditTopic))
	}
	return sinks
}

func authorityConfig(baseURL, apiKey string, cfg config.AuthorityConfig, name string) authority.Config {
	return authority.Config{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Timeout: cfg.Timeout,
		Breaker: circuit.New(name,
			circuit.WithFailureThreshold(cfg.BreakerThreshold),
			circuit.WithCoolDown(cfg.BreakerCoolDown),
		),
	}
}

func signingStrategy(cfg config.AuthorityConfig, log *slog.Logger, m *metrics.Metrics, t tracer.Tracer) *signing.Strategy {
	opts := []signing.Option{signing.WithLogger(log)}
	clientOpts := []authority.Option{authority.WithLogger(log), authority.WithMetrics(m), authority.WithTracer(t)}

	var certify *authority.CertifyClient
	if cfg.CertifyBaseURL != "" {
		certify = authority.NewCertifyClient(authorityConfig(cfg.CertifyBaseURL, cfg.CertifyAPIKey, cfg, "certify"), clientOpts...)
		opts = append(opts, signing.WithIssuer(certify))
	}
	switch {
	case cfg.VerifyBaseURL != "":
		verify := authority.NewCertifyClient(authorityConfig(cfg.VerifyBaseURL, cfg.VerifyAPIKey, cfg, "verify"), clientOpts...)
		opts = append(opts, signing.WithVerifier(verify))
	case certify != nil:
		opts = append(opts, signing.WithVerifier(certify))
	}
	return signing.NewStrategy(opts...)
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	log.Info("initializing agriqcert",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"enforce_agency_assignment", cfg.EnforceAgencyAssignment,
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)
	t := tracer.NewOTel()

	in, err := connect(ctx, cfg, reg, log)
	defer in.close(log)
	if err != nil {
		return err
	}

	publisher := audit.NewPublisher(auditStore(in, cfg),
		audit.WithAsyncBuffer(auditBuffer),
		audit.WithPublisherLogger(log),
	)
	defer publisher.Close()

	mu := platformsync.NewShardedMutex()
	var (
		batchStore batchservice.Store
		batchTx    batchservice.TxRunner
		credBatch  credservice.BatchStore
		credStore  interface {
			credservice.Store
			verifyservice.CredentialReader
		}
		credTx credservice.TxRunner
	)
	if in.db != nil {
		bs := batchstore.NewPostgres(in.db.DB())
		cs := credstore.NewPostgres(in.db.DB())
		batchStore, batchTx = bs, newBatchPostgresTx(in.db.DB())
		credBatch, credStore, credTx = bs, cs, newCredentialPostgresTx(in.db.DB())
	} else {
		bs := batchstore.NewInMemoryStore()
		cs := credstore.NewInMemoryStore()
		batchStore, batchTx = bs, batchservice.NewShardedTx(mu, bs, m)
		credBatch, credStore, credTx = bs, cs, credservice.NewShardedTx(mu, bs, cs, m)
	}

	var activity verifyservice.ActivityStore = verifystore.NewInMemoryStore()
	if in.redis != nil {
		activity = verifystore.NewRedisStore(in.redis)
	}

	strategy := signingStrategy(cfg.Authority, log, m, t)

	batches := batchservice.New(batchStore, batchTx,
		batchservice.WithLogger(log),
		batchservice.WithAuditor(publisher),
		batchservice.WithMetrics(m),
		batchservice.WithAgencyEnforcement(cfg.EnforceAgencyAssignment),
	)

	credOpts := []credservice.Option{
		credservice.WithLogger(log),
		credservice.WithAuditor(publisher),
		credservice.WithMetrics(m),
		credservice.WithTracer(t),
		credservice.WithAgencyEnforcement(cfg.EnforceAgencyAssignment),
	}
	if cfg.Authority.WalletBaseURL != "" {
		wallet := authority.NewWalletClient(
			authorityConfig(cfg.Authority.WalletBaseURL, cfg.Authority.WalletAPIKey, cfg.Authority, "wallet"),
			authority.WithLogger(log), authority.WithMetrics(m), authority.WithTracer(t),
		)
		credOpts = append(credOpts, credservice.WithWallet(wallet))
	}
	credentials := credservice.New(credBatch, credStore, credTx, strategy, qrcode.New(), credservice.Config{
		IssuerDID:     cfg.Authority.IssuerDID,
		PublicBaseURL: cfg.PublicURL,
		PortalURL:     cfg.VerifyPortalURL,
	}, credOpts...)

	verifier := verifyservice.New(credStore, strategy, activity,
		verifyservice.WithLogger(log),
		verifyservice.WithAuditor(publisher),
		verifyservice.WithMetrics(m),
		verifyservice.WithTracer(t),
	)

	probes := health.New(cfg.Environment)
	if in.db != nil {
		probes.RegisterCheck("postgres", in.db.Health)
	}
	if in.redis != nil {
		probes.RegisterCheck("redis", in.redis.Health)
	}
	if in.producer != nil {
		probes.RegisterCheck("kafka", in.producer.Health)
	}

	router := httptransport.NewRouter(httptransport.Handlers{
		Batches:      batchhandler.New(batches, log),
		Credentials:  credhandler.New(credentials, log),
		Verification: verifyhandler.New(verifier, log),
		Health:       probes,
	}, httptransport.Deps{
		Logger:    log,
		Validator: jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer, tokenTTL),
		Metrics:   request.NewMetrics(reg),
		Gatherer:  reg,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	if in.redis != nil {
		g.Go(func() error {
			ticker := time.NewTicker(poolStatsInterval)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.C:
					in.redis.RecordPoolStats()
				}
			}
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
