package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"book-assistant/backend/internal/agent"
	"book-assistant/backend/internal/agent/match"
	"book-assistant/backend/internal/agent/prompt"
	"book-assistant/backend/internal/agent/suggest"
	"book-assistant/backend/internal/catalog"
	"book-assistant/backend/internal/config"
	"book-assistant/backend/internal/conversation"
	"book-assistant/backend/internal/handler"
	"book-assistant/backend/internal/logger"
	"book-assistant/backend/internal/middleware"
	"book-assistant/backend/internal/view"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	shutdownTimeout      = 10 * time.Second
	limiterPruneInterval = 10 * time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	logger.SetLevel(cfg.LogLevel)
	logrus.WithField("env", cfg.Env).Info("starting book assistant")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	catalogClient := catalog.NewClient(cfg.CatalogURL, cfg.CatalogTimeout, cfg.CatalogRPS)

	gemini, err := agent.NewGeminiClient(ctx, agent.GeminiConfig{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		Timeout: cfg.ChatTimeout,
	})
	if err != nil {
		logrus.WithError(err).Warn("failed to create Gemini client, chat will answer with the fallback message")
		gemini, _ = agent.NewGeminiClient(ctx, agent.GeminiConfig{})
	}

	matcher, err := match.New(cfg.MatchPolicy)
	if err != nil {
		logrus.WithError(err).Fatal("invalid MATCH_POLICY")
	}

	vocabulary, err := suggest.Load(cfg.VocabularyFile)
	if err != nil {
		logrus.WithError(err).Fatal("failed to load assistant vocabulary")
	}

	prompts := prompt.NewBuilder()
	router := agent.NewRouter(agent.RouterConfig{
		Generator:   gemini,
		Recommender: catalogClient,
		Matcher:     matcher,
		Vocabulary:  &vocabulary,
		Prompts:     prompts,
	})

	sessions := conversation.NewStore(conversation.StoreConfig{
		TTL:         cfg.SessionTTL,
		TurnTimeout: cfg.ChatTimeout,
		Examples:    vocabulary.ExampleQuestions(),
		MaxSessions: cfg.MaxSessions,
	})

	renderer, err := view.New(cfg.BookDetailBase)
	if err != nil {
		logrus.WithError(err).Fatal("failed to load view templates")
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.AccessLog())

	// Security headers (before CORS)
	r.Use(middleware.SecurityHeaders())

	// cors.New panics without any allowed origin; same-origin use needs none.
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Content-Type", "Accept-Language", middleware.RequestIDHeader},
			ExposeHeaders:    []string{middleware.RequestIDHeader, "Retry-After"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	ipLimiter := middleware.NewIPRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	dailyQuota := middleware.NewDailyQuota(cfg.DailyQuota)
	logrus.WithFields(logrus.Fields{
		"rps":         cfg.RateLimitRPS,
		"burst":       cfg.RateLimitBurst,
		"daily_quota": cfg.DailyQuota,
	}).Info("rate limiting enabled")

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h := handler.New(handler.Config{
		Books:      catalogClient,
		Responder:  router,
		Summarizer: agent.NewSummarizer(gemini, prompts),
		Sessions:   sessions,
		View:       renderer,
		Ready:      gemini.Configured,
	})
	h.Register(r, middleware.RateLimitMiddleware(ipLimiter, dailyQuota))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sessions.Run(gctx, conversation.DefaultSweepInterval)
		return nil
	})
	g.Go(func() error {
		ipLimiter.Run(gctx, limiterPruneInterval)
		return nil
	})
	g.Go(func() error {
		logrus.WithFields(logrus.Fields{
			"port":            cfg.Port,
			"allowed_origins": cfg.AllowedOrigins,
			"catalog":         cfg.CatalogURL,
			"model":           cfg.GeminiModel,
			"match_policy":    cfg.MatchPolicy,
		}).Info("server ready")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logrus.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logrus.WithError(err).Fatal("server stopped with error")
	}
}
