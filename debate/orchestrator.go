package debate

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/eristic-ai/eristic/config"
	"github.com/eristic-ai/eristic/internal/keylock"
	"github.com/eristic-ai/eristic/internal/metrics"
	"github.com/eristic-ai/eristic/llm"
	"github.com/eristic-ai/eristic/types"
)

// Options configures the orchestrator and moderator.
type Options struct {
	// Defaults fill settings fields a create request leaves zero.
	Defaults config.DebateConfig
	// Temperature for all generations.
	Temperature float32
	// MaxTokens per generation. Zero means provider default.
	MaxTokens int
	// ContextTokenBudget bounds the debater prompt; zero disables trimming.
	ContextTokenBudget int
	// Metrics is optional.
	Metrics *metrics.Collector
	// Logger is optional.
	Logger *zap.Logger
}

// generator is the shared LLM call path of the orchestrator and the
// moderator: persona system prompt + assembled user prompt, bounded by
// the debate's response timeout.
type generator struct {
	provider    llm.Provider
	metrics     *metrics.Collector
	logger      *zap.Logger
	temperature float32
	maxTokens   int
}

func (g *generator) generate(ctx context.Context, persona *Persona, prompt string, timeoutMinutes int) (*llm.GenerateResponse, error) {
	if timeoutMinutes > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(timeoutMinutes)*time.Minute)
		defer cancel()
	}

	start := time.Now()
	resp, err := g.provider.Generate(ctx, &llm.GenerateRequest{
		Model: persona.Model,
		Messages: []types.Message{
			types.NewSystemMessage(persona.SystemPrompt),
			types.NewUserMessage(prompt),
		},
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
	})
	if err != nil {
		if g.metrics != nil {
			g.metrics.RecordLLMRequest(g.provider.Name(), persona.Model, "error", time.Since(start), 0, 0)
		}
		g.logger.Warn("generation failed",
			zap.String("persona", persona.Name),
			zap.String("model", persona.Model),
			zap.Error(err),
		)
		return nil, err
	}

	if g.metrics != nil {
		g.metrics.RecordLLMRequest(g.provider.Name(), resp.Model, "success",
			time.Since(start), resp.Tokens.Prompt, resp.Tokens.Completion)
	}
	return resp, nil
}

// defaultModeratorPersona is the built-in persona behind the "default"
// moderator sentinel.
func defaultModeratorPersona(model string) *Persona {
	return &Persona{
		ID:    DefaultModeratorID,
		Name:  "Moderator",
		Model: model,
		SystemPrompt: "You are a neutral debate moderator. You summarize arguments " +
			"fairly, highlight agreements and disagreements, and never take sides.",
	}
}

// Orchestrator owns the turn and round state machine. Turn-mutating
// operations are serialized per debate with a keyed lock; nothing else
// preserves the contiguous response order under concurrent calls.
type Orchestrator struct {
	store    Store
	personas PersonaSource
	gen      generator
	builder  promptBuilder
	locks    *keylock.KeyLock
	metrics  *metrics.Collector
	logger   *zap.Logger
	defaults config.DebateConfig
	// defaultModel backs the built-in moderator persona.
	defaultModel string
}

// NewOrchestrator wires the state machine to its collaborators.
func NewOrchestrator(store Store, personas PersonaSource, provider llm.Provider, defaultModel string, opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("component", "orchestrator"))

	return &Orchestrator{
		store:    store,
		personas: personas,
		gen: generator{
			provider:    provider,
			metrics:     opts.Metrics,
			logger:      logger,
			temperature: opts.Temperature,
			maxTokens:   opts.MaxTokens,
		},
		builder: promptBuilder{
			estimator:   &TokenEstimator{},
			tokenBudget: opts.ContextTokenBudget,
		},
		locks:        keylock.New(),
		metrics:      opts.Metrics,
		logger:       logger,
		defaults:     opts.Defaults,
		defaultModel: defaultModel,
	}
}

// CreateDebateRequest carries everything needed to set up a debate.
type CreateDebateRequest struct {
	Topic          string   `json:"topic"`
	ParticipantIDs []string `json:"participantIds"`
	ModeratorID    string   `json:"moderatorId"`
	Settings       Settings `json:"settings"`
}

// CreateDebate validates the request, assigns turn positions in the
// order the participants were supplied, and persists the debate with
// its participants atomically. The first round is not created here; it
// materializes lazily on the first turn.
func (o *Orchestrator) CreateDebate(ctx context.Context, req CreateDebateRequest) (*Debate, error) {
	if strings.TrimSpace(req.Topic) == "" {
		return nil, types.NewValidationError("debate topic is required")
	}
	if len(req.ParticipantIDs) < 2 || len(req.ParticipantIDs) > 5 {
		return nil, types.NewValidationError("debate must have between 2 and 5 participants")
	}

	if req.ModeratorID == "" {
		req.ModeratorID = DefaultModeratorID
	}
	if req.ModeratorID != DefaultModeratorID {
		if _, err := o.personas.GetPersona(ctx, req.ModeratorID); err != nil {
			return nil, err
		}
	}
	for _, id := range req.ParticipantIDs {
		if _, err := o.personas.GetPersona(ctx, id); err != nil {
			return nil, err
		}
	}

	settings := o.applySettingsDefaults(req.Settings, len(req.ParticipantIDs))
	if err := ValidateSettings(settings); err != nil {
		return nil, err
	}

	d := &Debate{
		Topic:        req.Topic,
		Status:       StatusActive,
		ModeratorID:  req.ModeratorID,
		CurrentRound: 1,
		TotalRounds:  settings.NumRounds,
		Settings:     settings,
	}
	for i, id := range req.ParticipantIDs {
		d.Participants = append(d.Participants, Participant{
			DebaterID: id,
			Position:  i + 1,
			Role:      RoleDebater,
		})
	}

	if err := o.store.CreateDebate(ctx, d); err != nil {
		return nil, err
	}

	if o.metrics != nil {
		o.metrics.RecordDebateEvent("created")
	}
	o.logger.Info("debate created",
		zap.String("debate_id", d.ID),
		zap.Int("participants", len(d.Participants)),
		zap.Int("total_rounds", d.TotalRounds),
	)
	return d, nil
}

func (o *Orchestrator) applySettingsDefaults(s Settings, participantCount int) Settings {
	if s.NumDebaters == 0 {
		s.NumDebaters = participantCount
	}
	if s.NumRounds == 0 {
		s.NumRounds = o.defaults.NumRounds
	}
	if s.ResponseTimeout == 0 {
		s.ResponseTimeout = o.defaults.ResponseTimeout
	}
	if s.MaxResponseLength == 0 {
		s.MaxResponseLength = o.defaults.MaxResponseLength
	}
	return s
}

// ValidateSettings enforces the settings bounds shared by the
// orchestrator and the settings service.
func ValidateSettings(s Settings) error {
	if s.NumDebaters < 2 || s.NumDebaters > 5 {
		return types.NewValidationError("number of debaters must be between 2 and 5")
	}
	if s.NumRounds < 1 || s.NumRounds > 10 {
		return types.NewValidationError("number of rounds must be between 1 and 10")
	}
	if s.ResponseTimeout < 1 || s.ResponseTimeout > 60 {
		return types.NewValidationError("response timeout must be between 1 and 60 minutes")
	}
	if s.MaxResponseLength < 100 || s.MaxResponseLength > 5000 {
		return types.NewValidationError("max response length must be between 100 and 5000 characters")
	}
	return nil
}

// StartDebate ensures round 1 exists and marks the debate active. It is
// idempotent: calling it twice does not duplicate the round. A completed
// debate cannot be restarted.
func (o *Orchestrator) StartDebate(ctx context.Context, debateID string) error {
	o.locks.Lock(debateID)
	defer o.locks.Unlock(debateID)

	d, err := o.store.GetDebate(ctx, debateID)
	if err != nil {
		return err
	}
	if d.Status == StatusCompleted {
		return types.NewValidationError("cannot start a completed debate")
	}

	if _, err := o.ensureRound(ctx, o.store, debateID, 1); err != nil {
		return err
	}
	if err := o.store.UpdateDebateStatus(ctx, debateID, StatusActive); err != nil {
		return err
	}

	if o.metrics != nil {
		o.metrics.RecordDebateEvent("started")
	}
	return nil
}

// ensureRound resolves the round numbered n, creating it when absent.
// The same helper backs every turn path so lazy creation cannot diverge.
func (o *Orchestrator) ensureRound(ctx context.Context, store Store, debateID string, n int) (*Round, error) {
	round, err := store.GetRoundByNumber(ctx, debateID, n)
	if err == nil {
		return round, nil
	}
	if !types.IsCode(err, types.ErrNotFound) {
		return nil, err
	}
	return store.CreateRound(ctx, debateID, n)
}

// AdvanceTurn generates the next response in turn order, or completes
// the current round and returns nil when every debater has responded.
func (o *Orchestrator) AdvanceTurn(ctx context.Context, debateID string) (*Response, error) {
	o.locks.Lock(debateID)
	defer o.locks.Unlock(debateID)

	d, round, responses, debaters, err := o.loadTurnState(ctx, debateID)
	if err != nil {
		return nil, err
	}

	nextOrder := len(responses) + 1
	if nextOrder > len(debaters) {
		// The round filled without completing (interrupted earlier call).
		if round.Status != RoundCompleted {
			if err := o.completeRound(ctx, d, round); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}

	next := participantAtPosition(debaters, nextOrder)
	if next == nil {
		return nil, types.NewValidationError("could not determine next debater")
	}

	persona, err := o.personas.GetPersona(ctx, next.DebaterID)
	if err != nil {
		return nil, err
	}

	resp, err := o.generateResponse(ctx, d, round, persona, nextOrder)
	if err != nil {
		if o.metrics != nil {
			o.metrics.RecordDebateTurn("failed")
		}
		return nil, err
	}

	if o.metrics != nil {
		o.metrics.RecordDebateTurn("generated")
	}
	if nextOrder == len(debaters) {
		if err := o.completeRound(ctx, d, round); err != nil {
			return nil, err
		}
	}
	return resp, nil
}

// GenerateForParticipant generates a response for an explicitly named
// debater at the next free order in the current round. Unlike the
// reference behavior, a full round is rejected instead of overflowed.
func (o *Orchestrator) GenerateForParticipant(ctx context.Context, debateID, personaID string) (*Response, error) {
	o.locks.Lock(debateID)
	defer o.locks.Unlock(debateID)

	d, round, responses, debaters, err := o.loadTurnState(ctx, debateID)
	if err != nil {
		return nil, err
	}

	var participant *Participant
	for i := range debaters {
		if debaters[i].DebaterID == personaID {
			participant = &debaters[i]
			break
		}
	}
	if participant == nil {
		return nil, types.NewNotFoundError("participant")
	}

	nextOrder := len(responses) + 1
	if nextOrder > len(debaters) {
		return nil, types.NewValidationError("current round already has a response from every debater")
	}

	persona, err := o.personas.GetPersona(ctx, personaID)
	if err != nil {
		return nil, err
	}

	resp, err := o.generateResponse(ctx, d, round, persona, nextOrder)
	if err != nil {
		if o.metrics != nil {
			o.metrics.RecordDebateTurn("failed")
		}
		return nil, err
	}

	if o.metrics != nil {
		o.metrics.RecordDebateTurn("generated")
	}
	if nextOrder == len(debaters) {
		if err := o.completeRound(ctx, d, round); err != nil {
			return nil, err
		}
	}
	return resp, nil
}

// SkipCurrentParticipant records a placeholder response for the debater
// whose turn it is, without calling the LLM. A full round is a no-op.
func (o *Orchestrator) SkipCurrentParticipant(ctx context.Context, debateID string) error {
	o.locks.Lock(debateID)
	defer o.locks.Unlock(debateID)

	d, round, responses, debaters, err := o.loadTurnState(ctx, debateID)
	if err != nil {
		return err
	}

	nextOrder := len(responses) + 1
	if nextOrder > len(debaters) {
		return nil
	}

	skipped := participantAtPosition(debaters, nextOrder)
	if skipped == nil {
		return nil
	}

	if err := o.store.AddResponse(ctx, &Response{
		RoundID:       round.ID,
		DebaterID:     skipped.DebaterID,
		Content:       SkipPlaceholder,
		ResponseOrder: nextOrder,
		Model:         SkipModel,
	}); err != nil {
		return err
	}

	if o.metrics != nil {
		o.metrics.RecordDebateTurn("skipped")
	}
	o.logger.Info("participant skipped",
		zap.String("debate_id", debateID),
		zap.Int("position", nextOrder),
	)

	if nextOrder == len(debaters) {
		return o.completeRound(ctx, d, round)
	}
	return nil
}

// loadTurnState loads everything a turn operation needs and enforces
// the active-status precondition.
func (o *Orchestrator) loadTurnState(ctx context.Context, debateID string) (*Debate, *Round, []Response, []Participant, error) {
	d, err := o.store.GetDebateWithDetails(ctx, debateID)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if d.Status != StatusActive {
		return nil, nil, nil, nil, types.NewValidationError("debate must be active to process responses")
	}

	round, err := o.ensureRound(ctx, o.store, debateID, d.CurrentRound)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	responses, err := o.store.ListResponses(ctx, round.ID)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	var debaters []Participant
	for _, p := range d.Participants {
		if p.Role == RoleDebater {
			debaters = append(debaters, p)
		}
	}

	return d, round, responses, debaters, nil
}

func participantAtPosition(debaters []Participant, position int) *Participant {
	for i := range debaters {
		if debaters[i].Position == position {
			return &debaters[i]
		}
	}
	return nil
}

// generateResponse builds the transcript-aware prompt, calls the LLM
// within the debate's response timeout, and persists the result. A
// persistence failure after a successful generation loses the content
// and surfaces the storage error unchanged.
func (o *Orchestrator) generateResponse(ctx context.Context, d *Debate, round *Round, persona *Persona, order int) (*Response, error) {
	prior, err := o.store.ListDebateResponses(ctx, d.ID)
	if err != nil {
		return nil, err
	}

	prompt := o.builder.BuildDebaterPrompt(d, round, prior, order)

	gen, err := o.gen.generate(ctx, persona, prompt, d.Settings.ResponseTimeout)
	if err != nil {
		return nil, err
	}

	resp := &Response{
		RoundID:       round.ID,
		DebaterID:     persona.ID,
		Content:       gen.Content,
		ResponseOrder: order,
		Model:         gen.Model,
		Tokens:        gen.Tokens,
	}
	if err := o.store.AddResponse(ctx, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// completeRound marks the round completed, then either finishes the
// debate (final round) or advances to a freshly created next round.
// The whole transition is one transaction and runs at most once per
// round.
func (o *Orchestrator) completeRound(ctx context.Context, d *Debate, round *Round) error {
	if round.Status == RoundCompleted {
		return nil
	}

	err := o.store.InTransaction(ctx, func(tx Store) error {
		if err := tx.UpdateRoundStatus(ctx, round.ID, RoundCompleted); err != nil {
			return err
		}
		if round.RoundNumber >= d.TotalRounds {
			return tx.UpdateDebateStatus(ctx, d.ID, StatusCompleted)
		}
		if err := tx.UpdateCurrentRound(ctx, d.ID, round.RoundNumber+1); err != nil {
			return err
		}
		_, err := tx.CreateRound(ctx, d.ID, round.RoundNumber+1)
		return err
	})
	if err != nil {
		return err
	}
	round.Status = RoundCompleted

	if round.RoundNumber >= d.TotalRounds {
		if o.metrics != nil {
			o.metrics.RecordDebateEvent("completed")
		}
		o.logger.Info("debate completed", zap.String("debate_id", d.ID))
	} else {
		o.logger.Info("round completed",
			zap.String("debate_id", d.ID),
			zap.Int("round", round.RoundNumber),
			zap.Int("next_round", round.RoundNumber+1),
		)
	}
	return nil
}

// PauseDebate pauses an active debate. Any other state is rejected, so
// a completed debate can never be pulled back into the state machine.
func (o *Orchestrator) PauseDebate(ctx context.Context, debateID string) error {
	o.locks.Lock(debateID)
	defer o.locks.Unlock(debateID)

	d, err := o.store.GetDebate(ctx, debateID)
	if err != nil {
		return err
	}
	if d.Status != StatusActive {
		return types.NewValidationError("only an active debate can be paused")
	}
	if err := o.store.UpdateDebateStatus(ctx, debateID, StatusPaused); err != nil {
		return err
	}
	if o.metrics != nil {
		o.metrics.RecordDebateEvent("paused")
	}
	return nil
}

// ResumeDebate returns a paused debate to active.
func (o *Orchestrator) ResumeDebate(ctx context.Context, debateID string) error {
	o.locks.Lock(debateID)
	defer o.locks.Unlock(debateID)

	d, err := o.store.GetDebate(ctx, debateID)
	if err != nil {
		return err
	}
	if d.Status != StatusPaused {
		return types.NewValidationError("only a paused debate can be resumed")
	}
	if err := o.store.UpdateDebateStatus(ctx, debateID, StatusActive); err != nil {
		return err
	}
	if o.metrics != nil {
		o.metrics.RecordDebateEvent("resumed")
	}
	return nil
}

// DeleteDebate removes the debate and everything under it.
func (o *Orchestrator) DeleteDebate(ctx context.Context, debateID string) error {
	o.locks.Lock(debateID)
	defer o.locks.Unlock(debateID)

	if err := o.store.DeleteDebate(ctx, debateID); err != nil {
		return err
	}
	if o.metrics != nil {
		o.metrics.RecordDebateEvent("deleted")
	}
	return nil
}

// GetDebate returns the debate with participants, rounds and responses.
func (o *Orchestrator) GetDebate(ctx context.Context, debateID string) (*Debate, error) {
	return o.store.GetDebateWithDetails(ctx, debateID)
}

// ListDebates returns all debates, newest first.
func (o *Orchestrator) ListDebates(ctx context.Context) ([]Debate, error) {
	return o.store.ListDebates(ctx)
}

// ListRounds returns the debate's rounds in order.
func (o *Orchestrator) ListRounds(ctx context.Context, debateID string) ([]Round, error) {
	if _, err := o.store.GetDebate(ctx, debateID); err != nil {
		return nil, err
	}
	return o.store.ListRounds(ctx, debateID)
}

// ListResponses returns the full transcript in (round, order) sequence.
func (o *Orchestrator) ListResponses(ctx context.Context, debateID string) ([]Response, error) {
	if _, err := o.store.GetDebate(ctx, debateID); err != nil {
		return nil, err
	}
	return o.store.ListDebateResponses(ctx, debateID)
}
