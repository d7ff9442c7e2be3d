package types

// TokenUsage reports token consumption for a single generation call.
// All counts may be zero for synthetic responses (e.g. a skipped turn).
type TokenUsage struct {
	Prompt     int `json:"prompt"`
	Completion int `json:"completion"`
	Total      int `json:"total"`
}

// Add returns the element-wise sum of two usages.
func (u TokenUsage) Add(other TokenUsage) TokenUsage {
	return TokenUsage{
		Prompt:     u.Prompt + other.Prompt,
		Completion: u.Completion + other.Completion,
		Total:      u.Total + other.Total,
	}
}

// IsZero reports whether no tokens were consumed.
func (u TokenUsage) IsZero() bool {
	return u.Prompt == 0 && u.Completion == 0 && u.Total == 0
}
