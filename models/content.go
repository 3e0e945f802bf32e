package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type AuthStatus string

const (
	AuthUnverified AuthStatus = "unverified"
	AuthVerified   AuthStatus = "verified"
	AuthRejected   AuthStatus = "rejected"
)

// ContentItem is an uploaded track or video together with its TL pool.
// The media bytes live in the media store; only metadata is kept here.
type ContentItem struct {
	ID      uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerID uint64 `gorm:"not null;index" json:"owner_id"`

	Title     string `gorm:"not null" json:"title"`
	Artist    string `gorm:"not null;default:''" json:"artist"`
	Genre     string `gorm:"not null;default:''" json:"genre"`
	Country   string `gorm:"not null;default:''" json:"country"`
	MediaType string `gorm:"not null;default:audio" json:"media_type"` // audio | video

	MediaKey        string `gorm:"not null;default:''" json:"media_key"`
	MediaURL        string `gorm:"not null;default:''" json:"media_url"`
	MediaSizeBytes  int64  `gorm:"not null;default:0" json:"media_size_bytes"`
	DurationSeconds int    `gorm:"not null;default:0" json:"duration_seconds"`

	ItemBalance    decimal.Decimal `gorm:"type:decimal(20,6);not null;default:0" json:"item_balance"`
	MaxItemBalance decimal.Decimal `gorm:"type:decimal(20,6);not null;default:0" json:"max_item_balance"`
	Revenue        decimal.Decimal `gorm:"type:decimal(20,6);not null;default:0" json:"revenue"`

	AuthStatus  AuthStatus      `gorm:"type:varchar(16);not null;default:unverified;index" json:"auth_status"`
	Shared      bool            `gorm:"not null;default:false" json:"shared"`
	RevenueHeld bool            `gorm:"not null;default:false" json:"revenue_held"`
	Pulse       decimal.Decimal `gorm:"type:decimal(20,6);not null;default:0;index" json:"pulse"`
	PlayCount   int64           `gorm:"not null;default:0" json:"play_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Playable reports whether the item can currently be distributed.
func (c *ContentItem) Playable() bool {
	return c.AuthStatus == AuthVerified && c.Shared && !c.RevenueHeld && c.ItemBalance.IsPositive()
}
