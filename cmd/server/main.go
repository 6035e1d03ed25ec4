// Mood Reflect - mood tracking chat server
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

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/ashureev/mood-reflect/internal/api"
	"github.com/ashureev/mood-reflect/internal/config"
	"github.com/ashureev/mood-reflect/internal/conversation"
	"github.com/ashureev/mood-reflect/internal/daypart"
	"github.com/ashureev/mood-reflect/internal/identity"
	"github.com/ashureev/mood-reflect/internal/insight"
	"github.com/ashureev/mood-reflect/internal/middleware"
	"github.com/ashureev/mood-reflect/internal/mood"
	"github.com/ashureev/mood-reflect/internal/question"
	"github.com/ashureev/mood-reflect/internal/session"
	"github.com/ashureev/mood-reflect/internal/store"
	"github.com/ashureev/mood-reflect/internal/transcript"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment(), "session_backend", cfg.SessionBackend)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize dependencies.
	repo, err := openRepository(cfg)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(ctx); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected", "postgres", cfg.UsePostgres())

	analyzer, err := mood.NewVaderAnalyzer()
	if err != nil {
		slog.Error("Sentiment analyzer unavailable", "error", err)
		os.Exit(1)
	}
	scorer := mood.NewScorer(analyzer, mood.NewWordTokenizer(), logger)
	clock := daypart.NewClassifier(cfg.Timezone, logger)
	selector := question.NewSelector(question.DefaultBank(), nil)

	healthChecks := map[string]api.Pinger{"database": repo}

	var sessions session.Store
	switch cfg.SessionBackend {
	case config.SessionBackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			slog.Error("Failed to connect to Redis", "addr", cfg.Redis.Addr, "error", err)
			os.Exit(1)
		}
		sessions = session.NewRedisStore(rdb, cfg.SessionTTL, logger)
		healthChecks["sessions"] = api.PingFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
		slog.Info("Redis session store connected", "addr", cfg.Redis.Addr)
	case config.SessionBackendMemory:
		mem := session.NewMemoryStore(logger)
		sessions = mem
		session.StartSweeper(ctx, mem, cfg.SessionTTL, cfg.SweepInterval)
	default:
		sqlSessions := session.NewSQLStore(repo, logger)
		sessions = sqlSessions
		session.StartSweeper(ctx, sqlSessions, cfg.SessionTTL, cfg.SweepInterval)
	}

	// Initialize services.
	conv := conversation.NewService(scorer, selector, clock, sessions, repo, logger)
	if cfg.Transcript.Enabled {
		tw, err := transcript.NewWriter(transcript.Config{
			Dir:       cfg.Transcript.Dir,
			QueueSize: cfg.Transcript.QueueSize,
		}, logger)
		if err != nil {
			slog.Error("Failed to initialize transcript writer", "error", err)
			os.Exit(1)
		}
		defer func() {
			if closeErr := tw.Close(); closeErr != nil {
				slog.Error("Failed to close transcript writer", "error", closeErr)
			}
		}()
		conv.SetRecorder(tw)
		slog.Info("Transcripts enabled", "dir", cfg.Transcript.Dir)
	}
	insights := insight.NewService(repo, cfg.HistoryMaxDays, nil, logger)

	sockets := api.NewSocketRegistry()
	defer sockets.CloseAll()

	var (
		chatLimiter   *middleware.RateLimiter
		chatMW        []func(http.Handler) http.Handler
		socketLimiter api.Limiter
	)
	if cfg.ChatRateLimit > 0 {
		chatLimiter = middleware.NewRateLimiter(ctx, cfg.ChatRateLimit, time.Minute)
		chatMW = append(chatMW, middleware.RateLimit(chatLimiter, func(r *http.Request) string {
			return identity.SessionIDFromContext(r.Context())
		}))
		socketLimiter = chatLimiter
	}

	// Initialize handlers.
	handler := api.NewHandler(conv, insights, sockets, logger)
	healthHandler := api.NewHealthHandler(healthChecks, 5*time.Second)
	wsHandler := api.NewWebSocketHandler(conv, sockets, socketLimiter, cfg.CORSOrigins, cfg.IsDevelopment(), logger)

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(identity.Middleware(cfg.SessionTTL, !cfg.IsDevelopment()))

	healthHandler.RegisterHealth(r)
	handler.RegisterRoutes(r, chatMW...)
	r.Get("/ws/chat", wsHandler.ServeHTTP)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // WebSocket chats are long-lived
		IdleTimeout:  120 * time.Second,
	}

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sockets.CloseAll()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}

func openRepository(cfg *config.Config) (store.Repository, error) {
	if cfg.UsePostgres() {
		return store.NewPostgres(cfg.DatabaseURL)
	}
	return store.NewSQLite(cfg.DBPath)
}
