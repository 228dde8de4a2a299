package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/learningeconomy/consentflow/internal/audit"
	boosthandler "github.com/learningeconomy/consentflow/internal/boost/handler"
	"github.com/learningeconomy/consentflow/internal/boost/issuer"
	boostservice "github.com/learningeconomy/consentflow/internal/boost/service"
	consenthandler "github.com/learningeconomy/consentflow/internal/consent/handler"
	consentmetrics "github.com/learningeconomy/consentflow/internal/consent/metrics"
	consentservice "github.com/learningeconomy/consentflow/internal/consent/service"
	consentstore "github.com/learningeconomy/consentflow/internal/consent/store"
	contracthandler "github.com/learningeconomy/consentflow/internal/contract/handler"
	contractmetrics "github.com/learningeconomy/consentflow/internal/contract/metrics"
	contractservice "github.com/learningeconomy/consentflow/internal/contract/service"
	contractstore "github.com/learningeconomy/consentflow/internal/contract/store"
	"github.com/learningeconomy/consentflow/internal/contract/tracer"
	jwttoken "github.com/learningeconomy/consentflow/internal/jwt_token"
	"github.com/learningeconomy/consentflow/internal/platform/config"
	"github.com/learningeconomy/consentflow/internal/platform/database"
	"github.com/learningeconomy/consentflow/internal/platform/health"
	"github.com/learningeconomy/consentflow/internal/platform/httpserver"
	"github.com/learningeconomy/consentflow/internal/platform/kafka"
	"github.com/learningeconomy/consentflow/internal/platform/kafka/producer"
	"github.com/learningeconomy/consentflow/internal/platform/logger"
	"github.com/learningeconomy/consentflow/internal/platform/middleware"
	platformredis "github.com/learningeconomy/consentflow/internal/platform/redis"
	"github.com/learningeconomy/consentflow/internal/resolver"
	"github.com/learningeconomy/consentflow/internal/resolver/flowstack"
	resolverhandler "github.com/learningeconomy/consentflow/internal/resolver/handler"
	resolvermetrics "github.com/learningeconomy/consentflow/internal/resolver/metrics"
	"github.com/learningeconomy/consentflow/internal/throttle"
	httptransport "github.com/learningeconomy/consentflow/internal/transport/http"
	"github.com/learningeconomy/consentflow/internal/verification"
)

const (
	tokenIssuer = "consentflow"
	tokenTTL    = 24 * time.Hour
)

// tokenValidator adapts the JWT service to the middleware's validator port.
type tokenValidator struct {
	jwt *jwttoken.JWTService
}

func (v *tokenValidator) ValidateToken(tokenString string) (*middleware.ProfileClaims, error) {
	claims, err := v.jwt.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &middleware.ProfileClaims{
		ProfileID:   claims.ProfileID,
		ProfileType: claims.ProfileType,
		DisplayName: claims.DisplayName,
	}, nil
}

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal services.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	log.Info("initializing consentflow",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
	)

	// Infrastructure. Postgres, Redis, and Kafka are all optional: the
	// service degrades to in-memory stores and sinks when they are absent.
	dbCfg := database.DefaultConfig()
	dbCfg.URL = cfg.DatabaseURL
	db, err := database.New(dbCfg)
	if err != nil {
		log.Error("database init failed", "error", err)
		os.Exit(1)
	}

	redisCfg := platformredis.DefaultConfig()
	redisCfg.URL = cfg.RedisURL
	redisClient, err := platformredis.New(redisCfg)
	if err != nil {
		log.Error("redis init failed", "error", err)
		os.Exit(1)
	}

	var kafkaProducer *producer.Producer
	if cfg.KafkaBrokers != "" {
		prodCfg := kafka.DefaultProducerConfig()
		prodCfg.Brokers = cfg.KafkaBrokers
		kafkaProducer, err = producer.New(prodCfg, log)
		if err != nil {
			log.Error("kafka init failed", "error", err)
			os.Exit(1)
		}
	}

	// Audit trail: Kafka sink when brokers are configured, in-memory otherwise.
	var auditStore audit.Store
	if kafkaProducer != nil {
		auditStore = audit.NewKafkaStore(kafkaProducer, cfg.AuditTopic)
	} else {
		auditStore = audit.NewInMemoryStore()
	}
	auditor := audit.NewPublisher(auditStore,
		audit.WithAsyncBuffer(cfg.AuditAsyncDepth),
		audit.WithPublisherLogger(log),
	)

	// Contracts.
	var contracts contractstore.Store
	if db != nil {
		contracts = contractstore.NewPostgres(db.DB())
	} else {
		contracts = contractstore.New()
	}
	contractMetrics := contractmetrics.New()
	if redisClient != nil {
		contracts = contractstore.NewRedisCache(redisClient.Client, contracts, cfg.ContractCacheTTL, contractMetrics)
	}
	contractSvc := contractservice.NewService(contracts, log,
		contractservice.WithMetrics(contractMetrics),
		contractservice.WithTracer(tracer.NewOTel()),
	)

	// Throttle and verification.
	var throttleStore throttle.Store
	if redisClient != nil {
		throttleStore = throttle.NewRedisStore(redisClient.Client)
	} else {
		throttleStore = throttle.NewInMemoryStore()
	}
	th := throttle.New(throttleStore, log, throttle.WithWindow(cfg.ThrottleWindow))
	verifier := verification.NewService(th, verification.NewLogSender(log), log)

	// Consents.
	var consents consentstore.Store
	if db != nil {
		consents = consentstore.NewPostgres(db.DB())
	} else {
		consents = consentstore.New()
	}
	consentSvc := consentservice.NewService(consents, contractSvc, auditor, log,
		consentservice.WithMetrics(consentmetrics.New()),
		consentservice.WithConsentTTL(cfg.ConsentTTL),
		consentservice.WithVerifier(verifier),
	)

	// Flow resolution.
	flows := resolver.New(contractSvc, consentSvc, flowstack.New(), log,
		resolver.WithMetrics(resolvermetrics.New()),
		resolver.WithAuditor(auditor),
	)

	// Boost issuance.
	boostSvc := boostservice.NewService(issuer.New(auditor, log), log)

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, tokenIssuer, tokenTTL)

	healthHandler := health.New(cfg.Environment)
	if db != nil {
		healthHandler.RegisterCheck("postgres", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return db.Health(ctx)
		})
	}
	if redisClient != nil {
		healthHandler.RegisterCheck("redis", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return redisClient.Health(ctx)
		})
	}

	router := httptransport.NewRouter(httptransport.Deps{
		Contracts: contracthandler.New(contractSvc, log),
		Consents:  consenthandler.New(consentSvc, log),
		Flows:     resolverhandler.New(flows, log),
		Boosts:    boosthandler.New(boostSvc, log),
		Health:    healthHandler,
		Auth:      &tokenValidator{jwt: jwtService},
	}, log)

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info("shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}

	// Drain the audit pipeline before tearing down its sinks.
	auditor.Close()
	if kafkaProducer != nil {
		closeQuietly(log, "kafka producer", kafkaProducer.Close)
	}
	if redisClient != nil {
		closeQuietly(log, "redis", redisClient.Close)
	}
	if db != nil {
		closeQuietly(log, "database", db.Close)
	}

	log.Info("server stopped")
}

func closeQuietly(log *slog.Logger, name string, close func() error) {
	if err := close(); err != nil {
		log.Warn("close failed", "component", name, "error", err)
	}
}
