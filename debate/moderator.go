package debate

import (
	"context"

	"go.uber.org/zap"

	"github.com/eristic-ai/eristic/llm"
	"github.com/eristic-ai/eristic/types"
)

// Moderator generates neutral round and final summaries through the
// same transcript assembly and LLM path the orchestrator uses. It never
// takes substantive turns.
type Moderator struct {
	store    Store
	personas PersonaSource
	gen      generator
	builder  promptBuilder
	logger   *zap.Logger
	// defaultModel backs the built-in "default" moderator persona.
	defaultModel string
}

// NewModerator wires the summarizer to its collaborators.
func NewModerator(store Store, personas PersonaSource, provider llm.Provider, defaultModel string, opts Options) *Moderator {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("component", "moderator"))

	return &Moderator{
		store:    store,
		personas: personas,
		gen: generator{
			provider:    provider,
			metrics:     opts.Metrics,
			logger:      logger,
			temperature: opts.Temperature,
			maxTokens:   opts.MaxTokens,
		},
		builder:      promptBuilder{estimator: &TokenEstimator{}},
		logger:       logger,
		defaultModel: defaultModel,
	}
}

// resolveModerator returns the debate's moderator persona, honoring the
// "default" sentinel without a storage lookup.
func (m *Moderator) resolveModerator(ctx context.Context, d *Debate) (*Persona, error) {
	if d.ModeratorID == DefaultModeratorID {
		return defaultModeratorPersona(m.defaultModel), nil
	}
	return m.personas.GetPersona(ctx, d.ModeratorID)
}

// GenerateRoundSummary produces a neutral summary of one round. The
// text is returned, not persisted; AttachRoundSummary stores it.
func (m *Moderator) GenerateRoundSummary(ctx context.Context, debateID string, roundNumber int) (string, error) {
	d, err := m.store.GetDebateWithDetails(ctx, debateID)
	if err != nil {
		return "", err
	}

	moderator, err := m.resolveModerator(ctx, d)
	if err != nil {
		return "", err
	}

	round, err := m.store.GetRoundByNumber(ctx, debateID, roundNumber)
	if err != nil {
		return "", err
	}

	roundResponses, err := m.store.ListResponses(ctx, round.ID)
	if err != nil {
		return "", err
	}
	if len(roundResponses) == 0 {
		return "", types.NewValidationError("round has no responses to summarize")
	}

	all, err := m.store.ListDebateResponses(ctx, debateID)
	if err != nil {
		return "", err
	}
	// Earlier rounds only; the summarized round is listed in full.
	var previous []Response
	for _, r := range all {
		if r.RoundID != round.ID {
			previous = append(previous, r)
		}
	}

	prompt := m.builder.BuildRoundSummaryPrompt(d, roundNumber, roundResponses, previous)

	resp, err := m.gen.generate(ctx, moderator, prompt, d.Settings.ResponseTimeout)
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// GenerateNextRoundPrompt produces forward-looking guidance for the
// round about to start. It is not wired into round completion; callers
// use it on demand.
func (m *Moderator) GenerateNextRoundPrompt(ctx context.Context, debateID string, nextRoundNumber int) (string, error) {
	d, err := m.store.GetDebateWithDetails(ctx, debateID)
	if err != nil {
		return "", err
	}

	moderator, err := m.resolveModerator(ctx, d)
	if err != nil {
		return "", err
	}

	all, err := m.store.ListDebateResponses(ctx, debateID)
	if err != nil {
		return "", err
	}

	prompt := m.builder.BuildNextRoundPrompt(d, nextRoundNumber, all)

	resp, err := m.gen.generate(ctx, moderator, prompt, d.Settings.ResponseTimeout)
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// GenerateFinalSummary assembles the entire transcript and asks the
// moderator for a closing assessment that declares no winner.
func (m *Moderator) GenerateFinalSummary(ctx context.Context, debateID string) (string, error) {
	d, err := m.store.GetDebateWithDetails(ctx, debateID)
	if err != nil {
		return "", err
	}

	moderator, err := m.resolveModerator(ctx, d)
	if err != nil {
		return "", err
	}

	all, err := m.store.ListDebateResponses(ctx, debateID)
	if err != nil {
		return "", err
	}

	debaterCount := 0
	for _, p := range d.Participants {
		if p.Role == RoleDebater {
			debaterCount++
		}
	}

	prompt := m.builder.BuildFinalSummaryPrompt(d, all, debaterCount)

	resp, err := m.gen.generate(ctx, moderator, prompt, d.Settings.ResponseTimeout)
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// AttachRoundSummary generates a summary for the round and persists it
// onto the round; debater prompts built against a summarized round
// include the text verbatim.
func (m *Moderator) AttachRoundSummary(ctx context.Context, debateID string, roundNumber int) (string, error) {
	round, err := m.store.GetRoundByNumber(ctx, debateID, roundNumber)
	if err != nil {
		return "", err
	}

	summary, err := m.GenerateRoundSummary(ctx, debateID, roundNumber)
	if err != nil {
		return "", err
	}

	if err := m.store.UpdateRoundSummary(ctx, round.ID, summary); err != nil {
		return "", err
	}

	m.logger.Info("round summary attached",
		zap.String("debate_id", debateID),
		zap.Int("round", roundNumber),
	)
	return summary, nil
}
