// Package debater manages the persona catalog: named model + system
// prompt configurations the orchestrator consumes as read-only input.
package debater

import "time"

// Debater is a persona configuration. It is not a runtime actor; the
// orchestrator reads it when generating that persona's contributions.
type Debater struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Name         string    `gorm:"uniqueIndex;size:128;not null" json:"name"`
	Description  string    `gorm:"not null" json:"description"`
	Model        string    `gorm:"size:64;not null" json:"model"`
	SystemPrompt string    `gorm:"not null" json:"systemPrompt"`
	IsActive     bool      `gorm:"not null;default:true" json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Update carries a partial update; nil fields are left unchanged.
type Update struct {
	Name         *string `json:"name,omitempty"`
	Description  *string `json:"description,omitempty"`
	Model        *string `json:"model,omitempty"`
	SystemPrompt *string `json:"systemPrompt,omitempty"`
	IsActive     *bool   `json:"isActive,omitempty"`
}
