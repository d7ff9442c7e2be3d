package debater

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/eristic-ai/eristic/debate"
	"github.com/eristic-ai/eristic/types"
)

// Service wraps the store with validation and name-conflict checks.
type Service struct {
	store  Store
	logger *zap.Logger
}

// NewService creates a debater service.
func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		logger: logger.With(zap.String("component", "debater_service")),
	}
}

// CreateRequest carries the fields of a new persona.
type CreateRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Model        string `json:"model"`
	SystemPrompt string `json:"systemPrompt"`
	IsActive     bool   `json:"isActive"`
}

// Create validates and persists a new persona. Names are unique.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Debater, error) {
	if err := validateFields(req.Name, req.Description, req.Model, req.SystemPrompt); err != nil {
		return nil, err
	}

	if _, err := s.store.GetByName(ctx, req.Name); err == nil {
		return nil, types.NewValidationError("a debater with this name already exists")
	} else if !types.IsCode(err, types.ErrNotFound) {
		return nil, err
	}

	d := &Debater{
		Name:         req.Name,
		Description:  req.Description,
		Model:        req.Model,
		SystemPrompt: req.SystemPrompt,
		IsActive:     req.IsActive,
	}
	if err := s.store.Create(ctx, d); err != nil {
		return nil, err
	}

	s.logger.Info("debater created", zap.String("debater_id", d.ID), zap.String("name", d.Name))
	return d, nil
}

// Get returns one persona.
func (s *Service) Get(ctx context.Context, id string) (*Debater, error) {
	if id == "" {
		return nil, types.NewValidationError("debater id is required")
	}
	return s.store.Get(ctx, id)
}

// GetByName returns the persona with the given name.
func (s *Service) GetByName(ctx context.Context, name string) (*Debater, error) {
	if name == "" {
		return nil, types.NewValidationError("debater name is required")
	}
	return s.store.GetByName(ctx, name)
}

// List returns all personas.
func (s *Service) List(ctx context.Context) ([]Debater, error) {
	return s.store.List(ctx)
}

// ListActive returns personas available for new debates.
func (s *Service) ListActive(ctx context.Context) ([]Debater, error) {
	return s.store.ListActive(ctx)
}

// UpdateDebater applies a partial update. A changed name must not
// collide with another persona.
func (s *Service) UpdateDebater(ctx context.Context, id string, upd Update) (*Debater, error) {
	if id == "" {
		return nil, types.NewValidationError("debater id is required")
	}

	fields := make(map[string]any)
	if upd.Name != nil {
		if err := validateName(*upd.Name); err != nil {
			return nil, err
		}
		if existing, err := s.store.GetByName(ctx, *upd.Name); err == nil && existing.ID != id {
			return nil, types.NewValidationError("a debater with this name already exists")
		} else if err != nil && !types.IsCode(err, types.ErrNotFound) {
			return nil, err
		}
		fields["name"] = *upd.Name
	}
	if upd.Description != nil {
		if err := validateDescription(*upd.Description); err != nil {
			return nil, err
		}
		fields["description"] = *upd.Description
	}
	if upd.Model != nil {
		if strings.TrimSpace(*upd.Model) == "" {
			return nil, types.NewValidationError("debater model must be a non-empty string")
		}
		fields["model"] = *upd.Model
	}
	if upd.SystemPrompt != nil {
		if err := validateSystemPrompt(*upd.SystemPrompt); err != nil {
			return nil, err
		}
		fields["system_prompt"] = *upd.SystemPrompt
	}
	if upd.IsActive != nil {
		fields["is_active"] = *upd.IsActive
	}
	if len(fields) == 0 {
		return nil, types.NewValidationError("update contains no fields")
	}

	return s.store.Update(ctx, id, fields)
}

// Delete removes a persona. The built-in default moderator id is
// reserved and cannot be deleted.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return types.NewValidationError("debater id is required")
	}
	if id == debate.DefaultModeratorID {
		return types.NewValidationError("cannot delete the default debater")
	}

	if _, err := s.store.Get(ctx, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("debater deleted", zap.String("debater_id", id))
	return nil
}

// GetPersona implements debate.PersonaSource.
func (s *Service) GetPersona(ctx context.Context, id string) (*debate.Persona, error) {
	d, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &debate.Persona{
		ID:           d.ID,
		Name:         d.Name,
		Model:        d.Model,
		SystemPrompt: d.SystemPrompt,
	}, nil
}

func validateFields(name, description, model, systemPrompt string) error {
	if err := validateName(name); err != nil {
		return err
	}
	if err := validateDescription(description); err != nil {
		return err
	}
	if strings.TrimSpace(model) == "" {
		return types.NewValidationError("debater model is required")
	}
	return validateSystemPrompt(systemPrompt)
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return types.NewValidationError("debater name is required")
	}
	if len(strings.TrimSpace(name)) < 2 {
		return types.NewValidationError("debater name must be at least 2 characters long")
	}
	return nil
}

func validateDescription(description string) error {
	if strings.TrimSpace(description) == "" {
		return types.NewValidationError("debater description is required")
	}
	if len(strings.TrimSpace(description)) < 10 {
		return types.NewValidationError("debater description must be at least 10 characters long")
	}
	return nil
}

func validateSystemPrompt(systemPrompt string) error {
	if strings.TrimSpace(systemPrompt) == "" {
		return types.NewValidationError("debater system prompt is required")
	}
	if len(strings.TrimSpace(systemPrompt)) < 20 {
		return types.NewValidationError("debater system prompt must be at least 20 characters long")
	}
	return nil
}
