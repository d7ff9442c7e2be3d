// Package debate implements the turn-progression and round-completion
// state machine that drives a multi-participant LLM debate, plus the
// moderator summarization built on the same transcript assembly.
package debate

import (
	"context"
	"time"

	"github.com/eristic-ai/eristic/types"
)

// Status is the debate lifecycle state.
type Status string

const (
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
)

// RoundStatus is the per-round state. A round is "pending" from creation
// until its response count reaches the debater count.
type RoundStatus string

const (
	RoundPending   RoundStatus = "pending"
	RoundCompleted RoundStatus = "completed"
)

// Role distinguishes substantive participants from the moderator.
type Role string

const (
	RoleDebater   Role = "debater"
	RoleModerator Role = "moderator"
)

// DefaultModeratorID is the sentinel accepted in place of a stored
// moderator persona. It resolves to a built-in neutral moderator.
const DefaultModeratorID = "default"

// SkipPlaceholder is recorded as the content of a skipped turn.
const SkipPlaceholder = "[Participant skipped their turn]"

// SkipModel is the model name recorded on skip responses.
const SkipModel = "system"

// Settings is the per-debate settings snapshot, fixed at creation.
type Settings struct {
	// NumDebaters is the number of debating participants (2-5).
	NumDebaters int `gorm:"column:num_debaters" json:"numDebaters"`
	// NumRounds is the total round count (1-10).
	NumRounds int `gorm:"column:num_rounds" json:"numRounds"`
	// ResponseTimeout bounds each generation, in minutes (1-60).
	ResponseTimeout int `gorm:"column:response_timeout" json:"responseTimeout"`
	// MaxResponseLength caps response length in characters (100-5000).
	MaxResponseLength int `gorm:"column:max_response_length" json:"maxResponseLength"`
}

// Debate is the aggregate root. CurrentRound stays within
// [1, TotalRounds]; it is only exceeded transiently while the final
// round completes.
type Debate struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Topic        string    `gorm:"not null" json:"topic"`
	Status       Status    `gorm:"size:16;index;not null" json:"status"`
	ModeratorID  string    `gorm:"size:36;not null" json:"moderatorId"`
	CurrentRound int       `gorm:"not null" json:"currentRound"`
	TotalRounds  int       `gorm:"not null" json:"totalRounds"`
	Settings     Settings  `gorm:"embedded;embeddedPrefix:settings_" json:"settings"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	Participants []Participant `gorm:"foreignKey:DebateID;constraint:OnDelete:CASCADE" json:"participants,omitempty"`
	Rounds       []Round       `gorm:"foreignKey:DebateID;constraint:OnDelete:CASCADE" json:"rounds,omitempty"`
}

// Participant binds a debate to a persona at a fixed turn position.
// Positions are 1-based and contiguous in the order supplied at
// creation; they determine response order within every round.
type Participant struct {
	ID        string `gorm:"primaryKey;size:36" json:"id"`
	DebateID  string `gorm:"size:36;not null;uniqueIndex:idx_participant_slot" json:"debateId"`
	DebaterID string `gorm:"size:36;not null" json:"debaterId"`
	Position  int    `gorm:"not null;uniqueIndex:idx_participant_slot" json:"position"`
	Role      Role   `gorm:"size:16;not null" json:"role"`
}

// Round belongs to one debate. Rounds are created lazily, never
// pre-created for the whole debate.
type Round struct {
	ID          string      `gorm:"primaryKey;size:36" json:"id"`
	DebateID    string      `gorm:"size:36;uniqueIndex:idx_round_number;not null" json:"debateId"`
	RoundNumber int         `gorm:"uniqueIndex:idx_round_number;not null" json:"roundNumber"`
	Status      RoundStatus `gorm:"size:16;not null" json:"status"`
	Summary     string      `json:"summary,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	CompletedAt *time.Time  `json:"completedAt,omitempty"`

	Responses []Response `gorm:"foreignKey:RoundID;constraint:OnDelete:CASCADE" json:"responses,omitempty"`
}

// Response is append-only. ResponseOrder values within a round are
// contiguous from 1; the unique index rejects order collisions that
// would otherwise slip past a racing read-compute-write.
type Response struct {
	ID            string           `gorm:"primaryKey;size:36" json:"id"`
	RoundID       string           `gorm:"size:36;uniqueIndex:idx_response_order;not null" json:"roundId"`
	DebaterID     string           `gorm:"size:36;not null" json:"debaterId"`
	Content       string           `gorm:"not null" json:"content"`
	ResponseOrder int              `gorm:"uniqueIndex:idx_response_order;not null" json:"responseOrder"`
	Model         string           `gorm:"size:64" json:"model"`
	Tokens        types.TokenUsage `gorm:"embedded;embeddedPrefix:tokens_" json:"tokens"`
	CreatedAt     time.Time        `json:"createdAt"`
}

// Persona is the read-only view of a debater the state machine needs.
type Persona struct {
	ID           string
	Name         string
	Model        string
	SystemPrompt string
}

// PersonaSource resolves persona references. Implementations return a
// NOT_FOUND *types.Error for unknown ids.
type PersonaSource interface {
	GetPersona(ctx context.Context, id string) (*Persona, error)
}

// IsSkip reports whether the response is a skip placeholder.
func (r *Response) IsSkip() bool {
	return r.Model == SkipModel && r.Content == SkipPlaceholder
}
