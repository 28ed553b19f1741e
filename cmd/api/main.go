package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/losclub/community-surveys/internal/http/handlers"
	imw "github.com/losclub/community-surveys/internal/http/middleware"
	"github.com/losclub/community-surveys/internal/repo/postgres"
	"github.com/losclub/community-surveys/internal/service"
	"github.com/losclub/community-surveys/pkg/config"
	"github.com/losclub/community-surveys/pkg/database"
	"github.com/losclub/community-surveys/pkg/events"
	"github.com/losclub/community-surveys/pkg/logger"
	"github.com/losclub/community-surveys/pkg/mailer"
	mw "github.com/losclub/community-surveys/pkg/middleware"
	"github.com/redis/go-redis/v9"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.Setup(ctx, pool); err != nil {
		logger.Error("Failed to set up database schema", "error", err)
		os.Exit(1)
	}

	// Event bus
	eventBus, err := events.NewNATSEventBus(cfg.NATS.URL)
	if err != nil {
		logger.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer eventBus.Close()

	// Redis (rate limiting)
	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		logger.Error("Invalid Redis URL", "error", err)
		os.Exit(1)
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()

	// Mailer
	var mail mailer.Service
	switch {
	case cfg.Email.DevMode:
		mail = mailer.NewDevMailer()
	case cfg.Email.MailerSendKey != "":
		mail = mailer.NewMailerSend(cfg.Email.MailerSendKey, cfg.Email.FromName, cfg.Email.From)
	default:
		mail = mailer.NewSMTPMailer(cfg.Email.SMTPHost, cfg.Email.SMTPPort, cfg.Email.From, cfg.Email.SMTPUser, cfg.Email.SMTPPass, cfg.Email.SMTPUseTLS)
	}

	// Repositories
	usersRepo := postgres.NewUsersRepo(pool)
	tokensRepo := postgres.NewTokensRepo(pool)
	surveysRepo := postgres.NewSurveysRepo(pool)
	questionsRepo := postgres.NewQuestionsRepo(pool)
	responsesRepo := postgres.NewResponsesRepo(pool)

	// Services
	authService := service.NewAuthService(usersRepo, tokensRepo, mail, eventBus, cfg)
	surveyService := service.NewSurveyService(surveysRepo, questionsRepo, responsesRepo, eventBus)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, cfg.URLs.FrontendURL)
	surveyHandler := handlers.NewSurveyHandler(surveyService)

	limiter := imw.NewRateLimiter(rdb, imw.RateLimitConfig{
		Requests: cfg.RateLimit.Requests,
		Window:   cfg.RateLimit.Window,
	})

	r := chi.NewRouter()
	r.Use(mw.RequestID)
	r.Use(mw.ServiceName("surveys-api"))
	r.Use(mw.Logging)
	r.Use(mw.Health)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.URLs.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/v1", func(r chi.Router) {
		r.With(limiter.Middleware()).Mount("/auth", authHandler.Routes())

		r.Group(func(r chi.Router) {
			r.Use(imw.RequireSession(authService))
			r.Mount("/", surveyHandler.Routes())
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down surveys API...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	}()

	logger.Info("Starting surveys API", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}
