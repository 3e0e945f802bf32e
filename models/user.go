package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a platform account with its TL balances
type User struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	Username     string `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string `gorm:"not null" json:"-"`
	Role         string `gorm:"not null;default:user" json:"role"`

	AvailableBalance decimal.Decimal `gorm:"type:decimal(20,6);not null;default:0" json:"available_balance"` // spendable TL
	LockedBalance    decimal.Decimal `gorm:"type:decimal(20,6);not null;default:0" json:"locked_balance"`    // frozen by a dispute
	MinedBalance     decimal.Decimal `gorm:"type:decimal(20,6);not null;default:0" json:"mined_balance"`     // TLC

	TotalSpent     decimal.Decimal `gorm:"type:decimal(20,6);not null;default:0" json:"total_spent"`
	TotalEarned    decimal.Decimal `gorm:"type:decimal(20,6);not null;default:0" json:"total_earned"`
	TotalExchanged decimal.Decimal `gorm:"type:decimal(20,6);not null;default:0" json:"total_exchanged"`

	PocIndex            float64 `gorm:"not null" json:"poc_index"`
	FalseDisputeStrikes int     `gorm:"not null;default:0" json:"false_dispute_strikes"`
	Forfeited           bool    `gorm:"not null;default:false" json:"forfeited"`
	Suspended           bool    `gorm:"not null;default:false" json:"suspended"`
	Active              bool    `gorm:"not null" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
