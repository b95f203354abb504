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
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hireon/hireon-api/internal/config"
	"github.com/hireon/hireon-api/internal/domain/admin"
	"github.com/hireon/hireon-api/internal/domain/auth"
	"github.com/hireon/hireon-api/internal/domain/job"
	"github.com/hireon/hireon-api/internal/domain/kyc"
	"github.com/hireon/hireon-api/internal/domain/profile"
	"github.com/hireon/hireon-api/internal/domain/user"
	"github.com/hireon/hireon-api/internal/domain/wallet"
	"github.com/hireon/hireon-api/internal/middleware"
	"github.com/hireon/hireon-api/internal/pkg/database"
	"github.com/hireon/hireon-api/internal/pkg/jwt"
	pkgresponse "github.com/hireon/hireon-api/internal/pkg/response"
)

func main() {
	cfg := config.Load()
	setupLogger(cfg)

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting Hireon API")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	redis, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redis)

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL)

	// ---------- Repositories ----------
	userRepo := user.NewRepository(db)
	walletRepo := wallet.NewRepository(db)
	jobRepo := job.NewRepository(db)
	profileRepo := profile.NewRepository(db)
	kycRepo := kyc.NewRepository(db)

	// ---------- Services ----------
	var auditEmitter wallet.AuditEmitter = wallet.NopAuditEmitter{}
	if redis != nil {
		auditEmitter = wallet.NewRedisAuditEmitter(redis, cfg.WalletAuditChannel)
	}

	authService := auth.NewService(userRepo, jwtService)
	walletService := wallet.NewService(walletRepo, auditEmitter)
	jobService := job.NewService(jobRepo, walletService, cfg.JobPromotionPrice)
	profileService := profile.NewService(profileRepo, walletService, cfg.ResumeUnlockPrice)
	kycService := kyc.NewService(kycRepo)

	// ---------- Handlers ----------
	authHandler := auth.NewHandler(authService)
	walletHandler := wallet.NewHandler(walletService, cfg.MinTopUpAmount)
	jobHandler := job.NewHandler(jobService)
	profileHandler := profile.NewHandler(profileService)
	kycHandler := kyc.NewHandler(kycService)
	adminHandler := admin.NewHandler(walletService)

	authMiddleware := middleware.Auth(jwtService)

	// ---------- Router ----------
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))
	r.Use(chimw.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		pkgresponse.OK(w, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/auth", authHandler.Routes(authMiddleware))
		r.Mount("/wallet", walletHandler.Routes(authMiddleware))
		r.Mount("/jobs", jobHandler.Routes(authMiddleware))
		r.Mount("/profiles", profileHandler.Routes(authMiddleware))
		r.Mount("/kyc", kycHandler.Routes(authMiddleware))

		r.Route("/admin", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(middleware.RequireAdmin())
			r.Mount("/", adminHandler.Routes())
			r.Mount("/kyc", kycHandler.AdminRoutes())
		})
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
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
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}

func setupLogger(cfg *config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "15:04:05",
		})
	}
}
