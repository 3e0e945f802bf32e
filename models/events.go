package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PocEvent records one application of a POC delta.
type PocEvent struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint64    `gorm:"not null;index" json:"user_id"`
	Delta     float64   `gorm:"not null" json:"delta"`
	PocAfter  float64   `gorm:"not null" json:"poc_after"`
	Reason    string    `gorm:"not null" json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// PlayEvent records one playback settlement.
type PlayEvent struct {
	ID                uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	ContentID         uint64          `gorm:"not null;index" json:"content_id"`
	PlayerID          uint64          `gorm:"not null;index" json:"player_id"`
	Consumed          decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"consumed"`
	RevenueCredited   decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"revenue_credited"`
	ItemBalanceAfter  decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"item_balance_after"`
	RequestedDuration int             `gorm:"not null" json:"requested_duration"`
	Boosted           bool            `gorm:"not null;default:false" json:"boosted"`
	CreatedAt         time.Time       `gorm:"index" json:"created_at"`
}
