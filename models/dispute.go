package models

import "time"

type DisputeStatus string

const (
	DisputePending  DisputeStatus = "pending"
	DisputeUpheld   DisputeStatus = "resolved_upheld"
	DisputeRejected DisputeStatus = "resolved_rejected"
)

// Terminal reports whether no further transition is allowed.
func (s DisputeStatus) Terminal() bool {
	return s == DisputeUpheld || s == DisputeRejected
}

type DisputeCategory string

const (
	CategoryCopyright DisputeCategory = "copyright"
	CategoryFake      DisputeCategory = "fake"
	CategoryAbuse     DisputeCategory = "abuse"
	CategoryOther     DisputeCategory = "other"
)

func (c DisputeCategory) Valid() bool {
	switch c {
	case CategoryCopyright, CategoryFake, CategoryAbuse, CategoryOther:
		return true
	}
	return false
}

// Dispute is a claim against a content item.
type Dispute struct {
	ID         uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	ContentID  uint64          `gorm:"not null;index" json:"content_id"`
	DisputerID uint64          `gorm:"not null;index" json:"disputer_id"`
	Category   DisputeCategory `gorm:"type:varchar(16);not null" json:"category"`
	Reason     string          `gorm:"type:text;not null" json:"reason"`
	Status     DisputeStatus   `gorm:"type:varchar(24);not null;default:pending;index" json:"status"`
	ResultNote string          `gorm:"type:text;not null;default:''" json:"result_note"`
	CreatedAt  time.Time       `json:"created_at"`
	ResolvedAt *time.Time      `json:"resolved_at,omitempty"`
}
