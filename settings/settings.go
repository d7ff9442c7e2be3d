// Package settings stores per-user debate preferences. Users without a
// saved record get the configured defaults.
package settings

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/eristic-ai/eristic/config"
	"github.com/eristic-ai/eristic/debate"
	"github.com/eristic-ai/eristic/internal/database"
	"github.com/eristic-ai/eristic/types"
)

// Turn orders supported by the orchestrator.
const (
	TurnOrderFixed             = "fixed"
	TurnOrderRandom            = "random"
	TurnOrderModeratorSelected = "moderator-selected"
)

// DefaultUserID keys the record used when no user is identified.
const DefaultUserID = "default"

// DebateSettings is a user's saved debate preferences.
type DebateSettings struct {
	UserID            string    `gorm:"primaryKey;size:64" json:"userId"`
	NumDebaters       int       `gorm:"not null" json:"numDebaters"`
	NumRounds         int       `gorm:"not null" json:"numRounds"`
	ResponseTimeout   int       `gorm:"not null" json:"responseTimeout"`
	MaxResponseLength int       `gorm:"not null" json:"maxResponseLength"`
	TurnOrder         string    `gorm:"size:32;not null" json:"turnOrder"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// Update carries a partial settings update; nil fields are left unchanged.
type Update struct {
	NumDebaters       *int    `json:"numDebaters,omitempty"`
	NumRounds         *int    `json:"numRounds,omitempty"`
	ResponseTimeout   *int    `json:"responseTimeout,omitempty"`
	MaxResponseLength *int    `json:"maxResponseLength,omitempty"`
	TurnOrder         *string `json:"turnOrder,omitempty"`
}

// Service reads and writes debate settings.
type Service struct {
	db       *gorm.DB
	defaults config.DebateConfig
	logger   *zap.Logger
}

// NewService creates a settings service.
func NewService(pool *database.PoolManager, defaults config.DebateConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		db:       pool.DB(),
		defaults: defaults,
		logger:   logger.With(zap.String("component", "settings_service")),
	}
}

// Migrate creates or updates the debate_settings table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&DebateSettings{})
}

// Defaults returns the configured default settings.
func (s *Service) Defaults() DebateSettings {
	return DebateSettings{
		NumDebaters:       s.defaults.NumDebaters,
		NumRounds:         s.defaults.NumRounds,
		ResponseTimeout:   s.defaults.ResponseTimeout,
		MaxResponseLength: s.defaults.MaxResponseLength,
		TurnOrder:         TurnOrderFixed,
	}
}

// Get returns the user's saved settings, or the defaults when none exist.
func (s *Service) Get(ctx context.Context, userID string) (*DebateSettings, error) {
	if userID == "" {
		userID = DefaultUserID
	}

	var saved DebateSettings
	err := s.db.WithContext(ctx).First(&saved, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		defaults := s.Defaults()
		defaults.UserID = userID
		return &defaults, nil
	}
	if err != nil {
		return nil, types.NewStorageError("get settings", err)
	}
	return &saved, nil
}

// Set validates and saves a partial update on top of the user's current
// settings, returning the merged result.
func (s *Service) Set(ctx context.Context, userID string, upd Update) (*DebateSettings, error) {
	current, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	merged := *current
	if upd.NumDebaters != nil {
		merged.NumDebaters = *upd.NumDebaters
	}
	if upd.NumRounds != nil {
		merged.NumRounds = *upd.NumRounds
	}
	if upd.ResponseTimeout != nil {
		merged.ResponseTimeout = *upd.ResponseTimeout
	}
	if upd.MaxResponseLength != nil {
		merged.MaxResponseLength = *upd.MaxResponseLength
	}
	if upd.TurnOrder != nil {
		merged.TurnOrder = *upd.TurnOrder
	}

	if err := debate.ValidateSettings(debate.Settings{
		NumDebaters:       merged.NumDebaters,
		NumRounds:         merged.NumRounds,
		ResponseTimeout:   merged.ResponseTimeout,
		MaxResponseLength: merged.MaxResponseLength,
	}); err != nil {
		return nil, err
	}
	switch merged.TurnOrder {
	case TurnOrderFixed, TurnOrderRandom, TurnOrderModeratorSelected:
	default:
		return nil, types.NewValidationError("turn order must be one of: fixed, random, moderator-selected")
	}

	merged.UpdatedAt = time.Now()
	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).
		Create(&merged).Error
	if err != nil {
		return nil, types.NewStorageError("save settings", err)
	}

	s.logger.Info("debate settings saved", zap.String("user_id", merged.UserID))
	return &merged, nil
}

// Reset removes the user's saved settings and returns the defaults.
func (s *Service) Reset(ctx context.Context, userID string) (*DebateSettings, error) {
	if userID == "" {
		userID = DefaultUserID
	}

	err := s.db.WithContext(ctx).Delete(&DebateSettings{}, "user_id = ?", userID).Error
	if err != nil {
		return nil, types.NewStorageError("reset settings", err)
	}

	s.logger.Info("debate settings reset", zap.String("user_id", userID))
	defaults := s.Defaults()
	defaults.UserID = userID
	return &defaults, nil
}
