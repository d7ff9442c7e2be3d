package main

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/eristic-ai/eristic/api"
	"github.com/eristic-ai/eristic/api/handlers"
	"github.com/eristic-ai/eristic/config"
	"github.com/eristic-ai/eristic/debate"
	"github.com/eristic-ai/eristic/debater"
	"github.com/eristic-ai/eristic/internal/cache"
	"github.com/eristic-ai/eristic/internal/database"
	"github.com/eristic-ai/eristic/internal/metrics"
	"github.com/eristic-ai/eristic/internal/server"
	"github.com/eristic-ai/eristic/llm"
	llmfactory "github.com/eristic-ai/eristic/llm/factory"
	"github.com/eristic-ai/eristic/settings"
	"github.com/eristic-ai/eristic/topic"
)

// Server wires the service together: storage, cache, LLM provider,
// domain services, HTTP surface.
type Server struct {
	cfg    *config.Config
	logger *zap.Logger

	pool        *database.PoolManager
	cacheMgr    *cache.Manager
	provider    llm.Provider
	collector   *metrics.Collector
	httpManager *server.Manager
}

// NewServer creates an unstarted server.
func NewServer(cfg *config.Config, logger *zap.Logger) *Server {
	return &Server{cfg: cfg, logger: logger}
}

// Start opens all dependencies and begins serving.
func (s *Server) Start() error {
	s.collector = metrics.NewCollector("eristic")

	pool, err := database.Open(s.cfg.Database, s.logger)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	s.pool = pool

	if err := s.migrate(); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	if s.cfg.Redis.Enabled {
		mgr, err := cache.New(context.Background(), s.cfg.Redis, s.logger)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		s.cacheMgr = mgr
	} else {
		s.logger.Info("redis disabled, topic content will not be cached")
	}

	// The factory applies the configured rate limit.
	provider, err := llmfactory.NewProviderFromConfig(s.cfg.LLM, s.logger)
	if err != nil {
		return fmt.Errorf("create llm provider: %w", err)
	}
	s.provider = provider

	handler := s.buildHandler()

	s.httpManager = server.NewManager(handler, server.Config{
		Addr:            s.cfg.Server.Addr,
		ReadTimeout:     s.cfg.Server.ReadTimeout,
		WriteTimeout:    s.cfg.Server.WriteTimeout,
		IdleTimeout:     s.cfg.Server.IdleTimeout,
		MaxHeaderBytes:  1 << 20,
		ShutdownTimeout: s.cfg.Server.ShutdownTimeout,
	}, s.logger)

	if err := s.httpManager.Start(); err != nil {
		return err
	}

	s.logger.Info("eristic server started", zap.String("addr", s.httpManager.Addr()))
	return nil
}

func (s *Server) migrate() error {
	db := s.pool.DB()
	if err := debate.Migrate(db); err != nil {
		return err
	}
	if err := debater.Migrate(db); err != nil {
		return err
	}
	if err := topic.Migrate(db); err != nil {
		return err
	}
	return settings.Migrate(db)
}

func (s *Server) buildHandler() http.Handler {
	debaterSvc := debater.NewService(debater.NewStore(s.pool), s.logger)
	store := debate.NewStore(s.pool)

	opts := debate.Options{
		Defaults:    s.cfg.Debate,
		Temperature: s.cfg.LLM.Temperature,
		MaxTokens:   s.cfg.LLM.MaxTokens,
		Metrics:     s.collector,
		Logger:      s.logger,
	}
	orchestrator := debate.NewOrchestrator(store, debaterSvc, s.provider, s.cfg.LLM.Model, opts)
	moderator := debate.NewModerator(store, debaterSvc, s.provider, s.cfg.LLM.Model, opts)

	topicSvc := topic.NewService(topic.NewStore(s.pool), s.cacheMgr, debaterSvc, s.provider, topic.Options{
		DefaultModel: s.cfg.LLM.Model,
		Temperature:  s.cfg.LLM.Temperature,
		MaxTokens:    s.cfg.LLM.MaxTokens,
		CacheTTL:     s.cfg.Redis.DefaultTTL,
		Metrics:      s.collector,
		Logger:       s.logger,
	})
	settingsSvc := settings.NewService(s.pool, s.cfg.Debate, s.logger)

	health := handlers.NewHealthHandler(s.logger)
	health.RegisterCheck("database", func(ctx context.Context) error { return s.pool.Ping(ctx) })
	if s.cacheMgr != nil {
		health.RegisterCheck("redis", s.cacheMgr.Ping)
	}

	mux := api.NewRouter(api.Handlers{
		Debates:  handlers.NewDebateHandler(orchestrator, moderator, s.logger),
		Debaters: handlers.NewDebaterHandler(debaterSvc, s.logger),
		Topics:   handlers.NewTopicHandler(topicSvc, s.logger),
		Settings: handlers.NewSettingsHandler(settingsSvc, s.logger),
		LLM:      handlers.NewLLMHandler(s.provider, s.logger),
		Health:   health,
		Version:  health.HandleVersion(Version, BuildTime, GitCommit),
	})
	mux.Handle("GET /metrics", s.collector.Handler())

	return api.Chain(mux,
		api.Recovery(s.logger),
		api.RequestID(),
		api.RequestLogger(s.logger),
		api.Metrics(s.collector),
		api.CORS([]string{"*"}),
	)
}

// WaitForShutdown blocks until a signal or a server error, then cleans up.
func (s *Server) WaitForShutdown() {
	if s.httpManager != nil {
		s.httpManager.WaitForShutdown()
	}
	s.Shutdown()
}

// Shutdown closes all resources.
func (s *Server) Shutdown() {
	s.logger.Info("starting graceful shutdown")

	if s.httpManager != nil {
		if err := s.httpManager.Shutdown(context.Background()); err != nil {
			s.logger.Error("http server shutdown error", zap.Error(err))
		}
	}
	if s.cacheMgr != nil {
		if err := s.cacheMgr.Close(); err != nil {
			s.logger.Error("cache close error", zap.Error(err))
		}
	}
	if s.pool != nil {
		if err := s.pool.Close(); err != nil {
			s.logger.Error("database close error", zap.Error(err))
		}
	}

	s.logger.Info("graceful shutdown completed")
}
