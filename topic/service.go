package topic

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/eristic-ai/eristic/debate"
	"github.com/eristic-ai/eristic/internal/cache"
	"github.com/eristic-ai/eristic/internal/metrics"
	"github.com/eristic-ai/eristic/llm"
	"github.com/eristic-ai/eristic/types"
)

// assistantSystemPrompt is used when no debater persona is named.
const assistantSystemPrompt = "You are a helpful assistant in an application called Eristic. " +
	"When a user provides a topic, provide informative, engaging, and well-structured content " +
	"about that topic. Be concise but comprehensive, and format your response in a readable way."

// Options configures a topic Service.
type Options struct {
	// DefaultModel is used when no persona names one.
	DefaultModel string
	// Temperature for generation calls.
	Temperature float32
	// MaxTokens caps the completion length. Zero means provider default.
	MaxTokens int
	// CacheTTL for generated content. Zero uses the cache default.
	CacheTTL time.Duration
	// Metrics is optional.
	Metrics *metrics.Collector
	// Logger is optional.
	Logger *zap.Logger
}

// Service generates, caches and persists topic content. A nil cache
// disables caching; generation then always hits the provider.
type Service struct {
	store    Store
	cache    *cache.Manager
	personas debate.PersonaSource
	provider llm.Provider
	group    singleflight.Group
	opts     Options
	logger   *zap.Logger
}

// NewService creates a topic service.
func NewService(store Store, cacheMgr *cache.Manager, personas debate.PersonaSource, provider llm.Provider, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:    store,
		cache:    cacheMgr,
		personas: personas,
		provider: provider,
		opts:     opts,
		logger:   logger.With(zap.String("component", "topic_service")),
	}
}

// Generate returns content about topic from the default assistant persona,
// serving from cache when possible.
func (s *Service) Generate(ctx context.Context, topic string) (*Item, error) {
	return s.GenerateWithDebater(ctx, topic, debate.DefaultModeratorID)
}

// GenerateWithDebater returns content about topic in the voice of the named
// debater persona. Concurrent requests for the same topic and persona share
// one generation.
func (s *Service) GenerateWithDebater(ctx context.Context, topic, debaterID string) (*Item, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, types.NewValidationError("topic is required")
	}
	if debaterID == "" {
		debaterID = debate.DefaultModeratorID
	}

	key := cacheKey(topic, debaterID)
	if item, ok := s.cached(ctx, key); ok {
		return item, nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		// Re-check under the flight: a concurrent caller may have
		// populated the cache while this one waited.
		if item, ok := s.cached(ctx, key); ok {
			return item, nil
		}
		return s.generate(ctx, topic, debaterID, key)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Item), nil
}

// Get returns one stored item.
func (s *Service) Get(ctx context.Context, id string) (*Item, error) {
	return s.store.Get(ctx, id)
}

// List returns all stored items, newest first.
func (s *Service) List(ctx context.Context) ([]Item, error) {
	return s.store.List(ctx)
}

// Delete removes a stored item and evicts its cache entry.
func (s *Service) Delete(ctx context.Context, id string) error {
	item, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, cacheKey(item.Topic, item.DebaterID)); err != nil {
			s.logger.Warn("cache eviction failed", zap.String("topic_id", id), zap.Error(err))
		}
	}
	return nil
}

func (s *Service) cached(ctx context.Context, key string) (*Item, bool) {
	if s.cache == nil {
		return nil, false
	}
	var item Item
	err := s.cache.GetJSON(ctx, key, &item)
	if err == nil {
		if s.opts.Metrics != nil {
			s.opts.Metrics.RecordCacheHit("topic")
		}
		return &item, true
	}
	if !cache.IsCacheMiss(err) {
		s.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if s.opts.Metrics != nil {
		s.opts.Metrics.RecordCacheMiss("topic")
	}
	return nil, false
}

func (s *Service) generate(ctx context.Context, topic, debaterID, key string) (*Item, error) {
	systemPrompt := assistantSystemPrompt
	model := s.opts.DefaultModel
	if debaterID != debate.DefaultModeratorID {
		persona, err := s.personas.GetPersona(ctx, debaterID)
		if err != nil {
			return nil, err
		}
		systemPrompt = persona.SystemPrompt
		if persona.Model != "" {
			model = persona.Model
		}
	}

	start := time.Now()
	resp, err := s.provider.Generate(ctx, &llm.GenerateRequest{
		Model: model,
		Messages: []types.Message{
			types.NewSystemMessage(systemPrompt),
			types.NewUserMessage(fmt.Sprintf("Please provide information and insights about the following topic: %q", topic)),
		},
		Temperature: s.opts.Temperature,
		MaxTokens:   s.opts.MaxTokens,
	})
	if s.opts.Metrics != nil {
		status := "success"
		if err != nil {
			status = "error"
		}
		var prompt, completion int
		if resp != nil {
			prompt, completion = resp.Tokens.Prompt, resp.Tokens.Completion
		}
		s.opts.Metrics.RecordLLMRequest(s.provider.Name(), model, status, time.Since(start), prompt, completion)
	}
	if err != nil {
		return nil, err
	}

	item := &Item{
		Topic:     topic,
		Content:   resp.Content,
		DebaterID: debaterID,
		Model:     resp.Model,
	}
	if err := s.store.Create(ctx, item); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, item, s.opts.CacheTTL); err != nil {
			s.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
		}
	}

	s.logger.Info("topic content generated",
		zap.String("topic_id", item.ID),
		zap.String("debater_id", debaterID),
		zap.String("model", item.Model))
	return item, nil
}

func cacheKey(topic, debaterID string) string {
	sum := sha256.Sum256([]byte(topic))
	return fmt.Sprintf("topic:%s:%s", debaterID, hex.EncodeToString(sum[:16]))
}
