// Package topic generates and stores standalone explanatory content about
// a debate topic, outside any debate. Generated content is cached in Redis
// and persisted for later retrieval.
package topic

import "time"

// Item is one generated piece of topic content.
type Item struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Topic     string    `gorm:"not null;index" json:"topic"`
	Content   string    `gorm:"not null" json:"content"`
	DebaterID string    `gorm:"size:64;not null;index" json:"debaterId"`
	Model     string    `gorm:"size:64" json:"model"`
	CreatedAt time.Time `json:"createdAt"`
}
