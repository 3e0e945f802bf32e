package models

import "time"

type AuthRequestStatus string

const (
	AuthRequestPending  AuthRequestStatus = "pending"
	AuthRequestApproved AuthRequestStatus = "approved"
	AuthRequestRejected AuthRequestStatus = "rejected"
)

// AuthRequest is an owner's request to have a content item verified. The
// evidence is referenced by URL; proof files stay in the media store.
type AuthRequest struct {
	ID            uint64            `gorm:"primaryKey;autoIncrement" json:"id"`
	ContentID     uint64            `gorm:"not null;index" json:"content_id"`
	UserID        uint64            `gorm:"not null;index" json:"user_id"`
	SourceURL     string            `gorm:"type:text;not null" json:"source_url"`
	ProfileURL    string            `gorm:"type:text;not null;default:''" json:"profile_url"`
	PlanType      string            `gorm:"not null;default:''" json:"plan_type"`
	CreationMonth string            `gorm:"not null;default:''" json:"creation_month"` // YYYY-MM
	EmailProof    string            `gorm:"not null;default:''" json:"email_proof"`
	ExtraNotes    string            `gorm:"type:text;not null;default:''" json:"extra_notes"`
	Status        AuthRequestStatus `gorm:"type:varchar(16);not null;default:pending;index" json:"status"`
	CreatedAt     time.Time         `json:"created_at"`
	ReviewedAt    *time.Time        `json:"reviewed_at,omitempty"`
}
