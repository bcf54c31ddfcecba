package main

import (
	"fmt"
	"log/slog"

	"github.com/sustaina/shipping-risk-brain/internal/assessment"
	"github.com/sustaina/shipping-risk-brain/internal/cache"
	"github.com/sustaina/shipping-risk-brain/internal/certificate"
	"github.com/sustaina/shipping-risk-brain/internal/config"
	"github.com/sustaina/shipping-risk-brain/internal/errors"
	"github.com/sustaina/shipping-risk-brain/internal/database"
	"github.com/sustaina/shipping-risk-brain/internal/frontend"
	"github.com/sustaina/shipping-risk-brain/internal/monitoring"
	"github.com/sustaina/shipping-risk-brain/internal/ratelimit"
	"github.com/sustaina/shipping-risk-brain/internal/riskmodel"
	"github.com/sustaina/shipping-risk-brain/internal/security"
	"github.com/sustaina/shipping-risk-brain/internal/session"
)

// app holds the wired service components
type app struct {
	cfg config.Config

	db        *database.DB
	issuances *database.IssuanceService
	svc       *assessment.Service
	pages     *frontend.Handler

	guard     *security.SecurityMiddleware
	limiter   *ratelimit.RateLimiter
	redis     *ratelimit.RedisClient
	certCache *cache.Cache
	sessions  *session.Manager

	metrics *monitoring.Metrics
	logger  *monitoring.Logger
	prom    *monitoring.PrometheusCollector
}

func newApp(cfg config.Config, logger *monitoring.Logger, redisClient *ratelimit.RedisClient) (*app, error) {
	db, err := database.NewDB(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	sessions, err := session.NewManager(session.Config{
		Secret:     cfg.Session.Secret,
		Issuer:     cfg.Session.Issuer,
		Expiration: cfg.Session.Expiration,
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	tmpl, err := frontend.LoadTemplates()
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	metrics := monitoring.NewMetrics()
	prom := monitoring.NewPrometheusCollector()
	metrics.AttachPrometheus(prom)

	securityConfig := security.DefaultSecurityConfig()
	securityConfig.AllowedOrigins = cfg.Security.AllowedOrigins
	securityConfig.RequestTimeout = cfg.Security.RequestTimeout
	securityConfig.EnableHSTS = cfg.Security.EnableHSTS
	guard := security.NewSecurityMiddleware(securityConfig)

	issuances := database.NewIssuanceService(database.NewRepository(db))

	svc := assessment.NewService(
		riskmodel.New(riskmodel.DefaultTables()),
		guard,
		issuances,
		metrics,
		logger,
		assessment.Options{
			Currency:            cfg.Certificate.Currency,
			DefaultValidityDays: cfg.Certificate.DefaultValidityDays,
			Certificate: certificate.Options{
				VerifyBaseURL: cfg.Certificate.VerifyBaseURL,
				YearPrefix:    cfg.Certificate.YearPrefix,
				Issuer:        cfg.Certificate.IssuerName,
			},
		},
	)

	limiterConfig := ratelimit.DefaultConfig()
	limiterConfig.IPLimitPerMin = cfg.RateLimit.PerMinute
	limiterConfig.CertificateLimitPerMin = cfg.RateLimit.CertificatePerMinute

	slog.Info("Service initialized",
		"data_dir", cfg.DataDir,
		"currency", svc.Currency(),
		"verification", cfg.Certificate.VerifyBaseURL != "",
	)

	return &app{
		cfg:       cfg,
		db:        db,
		issuances: issuances,
		svc:       svc,
		pages:     frontend.NewHandler(svc, tmpl),
		guard:     guard,
		limiter:   ratelimit.NewRateLimiter(redisClient, limiterConfig, metrics),
		redis:     redisClient,
		certCache: cache.NewCache(cfg.Cache.TTL, cfg.Cache.MaxItems),
		sessions:  sessions,
		metrics:   metrics,
		logger:    logger,
		prom:      prom,
	}, nil
}

// Close releases background workers and the database
func (a *app) Close() {
	a.limiter.Close()
	a.certCache.Close()
	errors.SafeClose(a.db, "database")
}
