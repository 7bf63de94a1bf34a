package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/hccc/gameroom-console/internal/config"
	"github.com/hccc/gameroom-console/internal/domain/audit"
	"github.com/hccc/gameroom-console/internal/domain/catalog"
	"github.com/hccc/gameroom-console/internal/domain/listview"
	"github.com/hccc/gameroom-console/internal/domain/payment"
	"github.com/hccc/gameroom-console/internal/domain/report"
	"github.com/hccc/gameroom-console/internal/domain/showcase"
	"github.com/hccc/gameroom-console/internal/domain/tokens"
	"github.com/hccc/gameroom-console/internal/domain/users"
	"github.com/hccc/gameroom-console/internal/middleware"
	"github.com/hccc/gameroom-console/internal/pkg/database"
	"github.com/hccc/gameroom-console/internal/pkg/hccc"
	"github.com/hccc/gameroom-console/internal/pkg/live"
	"github.com/hccc/gameroom-console/internal/pkg/logger"
	"github.com/hccc/gameroom-console/internal/pkg/metrics"
	"github.com/hccc/gameroom-console/internal/pkg/response"
	"github.com/hccc/gameroom-console/internal/pkg/session"
	"github.com/hccc/gameroom-console/internal/pkg/storage"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.Env,
	})

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Str("upstream", cfg.HCCCBaseURL).
		Msg("Starting HCCC console")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	rdb, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(rdb)

	m := metrics.New("hccc_console")

	// ---------- Upstream ----------
	api := hccc.NewClient(hccc.Options{
		BaseURL:   cfg.HCCCBaseURL,
		Timeout:   cfg.HCCCTimeout,
		UserAgent: cfg.HCCCUserAgent,
		Retries:   cfg.HCCCRetries,
		RequestID: middleware.GetRequestID,
		Observer:  m.ObserveUpstream,
	})

	// ---------- Repositories ----------
	auditRepo := audit.NewRepository(db)
	schemaCtx, cancelSchema := context.WithTimeout(context.Background(), 10*time.Second)
	if err := auditRepo.EnsureSchema(schemaCtx); err != nil {
		cancelSchema()
		log.Fatal().Err(err).Msg("Failed to prepare audit schema")
	}
	cancelSchema()

	exportStore, err := storage.New(storage.Config{
		S3Endpoint:  cfg.S3Endpoint,
		S3Region:    cfg.S3Region,
		S3Bucket:    cfg.S3Bucket,
		S3AccessKey: cfg.S3AccessKey,
		S3SecretKey: cfg.S3SecretKey,
		LocalPath:   cfg.ExportDir,
		LocalURL:    cfg.ExportURL,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create export storage")
	}
	if !cfg.UsesS3() {
		log.Warn().Str("dir", cfg.ExportDir).Msg("S3 not configured, exports are written locally")
	}

	// ---------- Services ----------
	invalidate := func(ctx context.Context) error {
		return middleware.InvalidateCache(ctx, rdb, cfg.CachePrefix)
	}

	auditService := audit.NewService(auditRepo)
	tokenService := tokens.NewService(tokens.NewHub(), auditService, m)
	paymentService := payment.NewService(payment.NewPoller(payment.PollerConfig{
		MaxAttempts: cfg.PaymentPollAttempts,
		Delay:       cfg.PaymentPollDelay,
		MaxDelay:    cfg.PaymentPollMaxDelay,
	}, m))
	catalogService := catalog.NewService(api, invalidate)
	userService := users.NewService()
	exporter := report.NewExporter(exportStore, cfg.ExportMaxRows)

	// ---------- Handlers ----------
	liveServer := live.NewServer(cfg.AllowedOrigins, m)

	tokenHandler := tokens.NewHandler(tokenService, func(s *session.Session) tokens.Client {
		return api.WithToken(s.Token)
	}, liveServer)
	paymentHandler := payment.NewHandler(paymentService, func(s *session.Session) payment.Client {
		return api.WithToken(s.Token)
	}, liveServer, cfg.SearchDebounce)
	catalogHandler := catalog.NewHandler(catalogService, func(s *session.Session) catalog.Client {
		return api.WithToken(s.Token)
	})
	userHandler := users.NewHandler(userService, func(s *session.Session) users.Client {
		return api.WithToken(s.Token)
	})
	redirectHandler := users.NewRedirectHandler(session.NewRedirectStore(rdb, "console:session", 30*time.Minute))
	showcaseHandler := showcase.NewHandler(api, func(s *session.Session) showcase.Client {
		return api.WithToken(s.Token)
	}, invalidate)
	auditHandler := audit.NewHandler(auditService)
	reportHandler := report.NewHandler(exporter, func(s *session.Session) listview.Fetcher[payment.Payment] {
		return paymentService.Fetcher(api.WithToken(s.Token))
	})

	authMiddleware := middleware.Auth(time.Now)
	consoleOnly := middleware.RequireRole(cfg.RequireRole...)
	adminOnly := middleware.RequireRole(session.RoleAdmin)
	cache := middleware.Cache(middleware.CacheConfig{
		Enabled: cfg.CacheEnabled,
		TTL:     cfg.CacheTTL,
		Prefix:  cfg.CachePrefix,
	}, rdb)

	// ---------- Router ----------
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.Metrics(m))
	r.Use(middleware.CORSHandler(middleware.CORSConfig{
		AllowedOrigins: cfg.AllowedOrigins,
		MaxAge:         cfg.CORSMaxAge,
	}))
	// Compress wraps the cached groups; the cache stores uncompressed bodies.
	r.Use(chimw.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.OK(w, map[string]interface{}{
			"status":     "ok",
			"workspaces": tokenService.Active(),
		})
	})
	r.Handle("/metrics", m.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(time.Minute))

		r.Group(func(r chi.Router) {
			r.Use(cache)
			r.Mount("/games", catalogHandler.PublicRoutes())
			r.Mount("/showcase", showcaseHandler.PublicRoutes())
		})

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Get("/me", userHandler.Me)
			r.Get("/me/tokens", tokenHandler.Mine)
			r.Get("/me/payments", paymentHandler.History)
			r.Mount("/checkout", paymentHandler.CheckoutRoutes())
			r.Mount("/session/redirect", redirectHandler.Routes())
		})
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(consoleOnly)

		r.Mount("/games", catalogHandler.AdminRoutes(adminOnly))
		mountUserRoutes(r, userHandler.AdminRoutes(adminOnly), tokenHandler.UserRoutes())
		r.Mount("/tokens", tokenHandler.LiveRoutes())
		mountPaymentRoutes(r, paymentHandler.AdminRoutes(), reportHandler.ExportPayments)
		r.Mount("/events", showcaseHandler.EventRoutes(adminOnly))
		r.Mount("/winners", showcaseHandler.WinnerRoutes(adminOnly))
		r.Mount("/audit", auditHandler.Routes())
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	tokenService.Shutdown()

	log.Info().Msg("Server exited properly")
}

// mountUserRoutes nests the per-user token routes under /users.
func mountUserRoutes(r chi.Router, usersRouter, tokensRouter http.Handler) {
	r.Route("/users", func(r chi.Router) {
		r.Mount("/{id}/tokens", tokensRouter)
		r.Mount("/", usersRouter)
	})
}

// mountPaymentRoutes registers the CSV export next to the payments router.
func mountPaymentRoutes(r chi.Router, paymentsRouter http.Handler, export http.HandlerFunc) {
	r.Route("/payments", func(r chi.Router) {
		r.Post("/export", export)
		r.Mount("/", paymentsRouter)
	})
}
