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

	"golang.org/x/sync/errgroup"

	"ishemalink/internal/audit"
	authhandler "ishemalink/internal/auth/handler"
	authservice "ishemalink/internal/auth/service"
	"ishemalink/internal/auth/store/revocation"
	"ishemalink/internal/auth/store/session"
	"ishemalink/internal/auth/token"
	cargohandler "ishemalink/internal/cargo/handler"
	cargoservice "ishemalink/internal/cargo/service"
	cargostore "ishemalink/internal/cargo/store"
	identityhandler "ishemalink/internal/identity/handler"
	identityservice "ishemalink/internal/identity/service"
	"ishemalink/internal/identity/store/user"
	otphandler "ishemalink/internal/otp/handler"
	otpservice "ishemalink/internal/otp/service"
	otpstore "ishemalink/internal/otp/store"
	"ishemalink/internal/platform/config"
	"ishemalink/internal/platform/httpserver"
	"ishemalink/internal/platform/logger"
	"ishemalink/internal/platform/metrics"
	"ishemalink/internal/platform/notify"
	"ishemalink/internal/platform/postgres"
	platformredis "ishemalink/internal/platform/redis"
	ratelimit "ishemalink/internal/ratelimit/middleware"
	"ishemalink/internal/ratelimit/store/bucket"
	shipmenthandler "ishemalink/internal/shipment/handler"
	shipmentservice "ishemalink/internal/shipment/service"
	shipmentstore "ishemalink/internal/shipment/store"
	tariffcache "ishemalink/internal/tariff/cache"
	tariffhandler "ishemalink/internal/tariff/handler"
	tariffmodels "ishemalink/internal/tariff/models"
	tariffservice "ishemalink/internal/tariff/service"
	tariffstore "ishemalink/internal/tariff/store"
	httptransport "ishemalink/internal/transport/http"
	pkgaudit "ishemalink/pkg/platform/audit"
	auditmemory "ishemalink/pkg/platform/audit/store/memory"
	auditpostgres "ishemalink/pkg/platform/audit/store/postgres"
	"ishemalink/pkg/platform/circuit"
	"ishemalink/pkg/platform/fieldcipher"
	txcontext "ishemalink/pkg/platform/tx"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

// infra holds the process-wide connections. Nil fields mean the dependency
// is not configured and in-memory substitutes are used.
type infra struct {
	db       *sql.DB
	redis    *platformredis.Client
	notifier notify.Notifier
	kafka    *notify.KafkaNotifier
}

func (i *infra) close() {
	if i.kafka != nil {
		i.kafka.Close()
	}
	if i.redis != nil {
		_ = i.redis.Close()
	}
	if i.db != nil {
		_ = i.db.Close()
	}
}

func connect(ctx context.Context, cfg config.Config, log *slog.Logger) (*infra, error) {
	in := &infra{}
	if cfg.Postgres.DSN != "" {
		db, err := postgres.Open(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		in.db = db
	} else {
		log.Warn("DATABASE_URL not set, using in-memory stores")
	}

	rdb, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		in.close()
		return nil, err
	}
	if rdb == nil {
		log.Warn("REDIS_URL not set, using in-memory caches")
	}
	in.redis = rdb

	switch cfg.Notify.Driver {
	case "kafka":
		kn, err := notify.NewKafkaNotifier(cfg.Notify.KafkaBrokers, cfg.Notify.KafkaTopic, log)
		if err != nil {
			in.close()
			return nil, err
		}
		in.kafka = kn
		if err := kn.EnsureTopic(ctx, 1, 1); err != nil {
			in.close()
			return nil, fmt.Errorf("ensure sms topic: %w", err)
		}
		in.notifier = kn
	default:
		in.notifier = notify.NewLogNotifier(log, cfg.Notify.SimulatedLatency)
	}
	return in, nil
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	in, err := connect(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer in.close()

	cipher, err := fieldcipher.NewFromBase64(cfg.Cipher.Key)
	if err != nil {
		return fmt.Errorf("field cipher: %w", err)
	}
	m := metrics.New()

	var (
		auditStore    pkgaudit.Store = auditmemory.NewInMemoryStore()
		userStore     user.Store     = user.NewInMemory()
		shipments     shipmentservice.Store
		cargo         cargoservice.Store
		tariffs       tariffservice.Store
		tx            txcontext.Runner = txcontext.Passthrough{}
		sessions      authservice.SessionStore
		trl           authservice.RevocationList
		challenges    otpservice.ChallengeStore
		tariffCache   tariffservice.Cache
		throttleStore ratelimit.Limiter
	)
	if in.db != nil {
		auditStore = auditpostgres.New(in.db)
		userStore = user.NewPostgres(in.db)
		shipments = shipmentstore.NewPostgres(in.db)
		cargo = cargostore.NewPostgres(in.db)
		tariffs = tariffstore.NewPostgres(in.db)
		tx = txcontext.NewSQLRunner(in.db)
	} else {
		shipments = shipmentstore.NewInMemory()
		cargo = cargostore.NewInMemory()
		tariffs = tariffstore.NewInMemory(tariffmodels.Defaults())
	}
	if in.redis != nil {
		sessions = session.NewRedis(in.redis.Client)
		trl = revocation.NewRedisTRL(in.redis.Client)
		challenges = otpstore.NewRedis(in.redis.Client)
		tariffCache = tariffcache.NewRedis(in.redis.Client)
		throttleStore = bucket.NewRedisBucketStore(in.redis.Client)
	} else {
		sessions = session.New()
		trl = revocation.NewInMemoryTRL()
		challenges = otpstore.NewInMemory()
		tariffCache = tariffcache.NewInMemory()
		throttleStore = bucket.NewInMemoryBucketStore()
	}

	auditor := audit.NewPublisher(auditStore, log)

	identitySvc := identityservice.New(user.NewSealed(userStore, cipher), auditor, cipher,
		identityservice.WithLogger(log),
		identityservice.WithMetrics(m),
		identityservice.WithTx(tx),
	)

	tokens := token.NewService(cfg.Auth.JWTSigningKey, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)
	authSvc := authservice.New(identitySvc, sessions, trl, tokens, auditor,
		authservice.WithLogger(log),
		authservice.WithSessionTTL(cfg.Auth.SessionTTL),
		authservice.WithDeviceBinding(true),
	)

	throttleOpts := []ratelimit.Option{ratelimit.WithMetrics(m)}
	if in.redis != nil {
		throttleOpts = append(throttleOpts, ratelimit.WithFallback(
			bucket.NewInMemoryBucketStore(),
			circuit.New("login-throttle"),
		))
	}
	throttle := ratelimit.New(throttleStore, cfg.Auth.LoginRateLimit, cfg.Auth.LoginRateWindow, log, throttleOpts...)

	otpSvc := otpservice.New(challenges, identitySvc, in.notifier, auditor,
		otpservice.WithLogger(log),
		otpservice.WithTTL(cfg.OTP.TTL),
		otpservice.WithMaxAttempts(cfg.OTP.MaxVerifyAttempts),
		otpservice.WithSendTimeout(cfg.Notify.SendTimeout),
	)

	shipmentSvc := shipmentservice.New(shipments, identitySvc, in.notifier, auditor, cipher,
		shipmentservice.WithLogger(log),
		shipmentservice.WithTx(tx),
		shipmentservice.WithNotifyTimeout(cfg.Notify.SendTimeout),
	)

	tariffSvc := tariffservice.New(tariffs, tariffCache, auditor,
		tariffservice.WithLogger(log),
		tariffservice.WithCacheTTL(cfg.Tariff.CacheTTL),
		tariffservice.WithMetrics(m),
	)

	cargoSvc := cargoservice.New(cargo, cipher, cargoservice.WithLogger(log))

	router := httptransport.NewRouter(log, m, healthChecks(in),
		authhandler.New(authSvc, authSvc, log,
			authhandler.WithThrottle(throttle.Throttle()),
			authhandler.WithSecureCookie(cfg.Auth.CookieSecure),
		),
		identityhandler.New(identitySvc, authSvc, log),
		otphandler.New(otpSvc, authSvc, log),
		shipmenthandler.New(shipmentSvc, authSvc, log),
		tariffhandler.New(tariffSvc, authSvc, log),
		cargohandler.New(cargoSvc, authSvc, log),
		audit.NewHandler(auditor, authSvc, log),
	)

	srv := httpserver.New(cfg.Server.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting ishemalink", "addr", cfg.Server.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func healthChecks(in *infra) map[string]httptransport.HealthCheck {
	checks := map[string]httptransport.HealthCheck{}
	if in.db != nil {
		checks["postgres"] = in.db.PingContext
	}
	if in.redis != nil {
		checks["redis"] = in.redis.Health
	}
	if in.kafka != nil {
		checks["kafka"] = in.kafka.Ping
	}
	return checks
}
