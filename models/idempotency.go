package models

import "time"

// IdempotencyKey remembers the response of a mutation so that a retried
// request with the same key replays it instead of applying it twice.
type IdempotencyKey struct {
	Key         string    `gorm:"primaryKey;size:128" json:"key"`
	Scope       string    `gorm:"size:32;not null" json:"scope"`
	UserID      uint64    `gorm:"not null" json:"user_id"`
	Fingerprint string    `gorm:"size:64;not null" json:"fingerprint"`
	Response    []byte    `gorm:"not null" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

// All returns every persisted model, in migration order.
func All() []any {
	return []any{
		&User{},
		&ContentItem{},
		&Transaction{},
		&PocEvent{},
		&PlayEvent{},
		&Dispute{},
		&IdempotencyKey{},
		&AuthRequest{},
	}
}
