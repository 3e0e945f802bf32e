package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TxType enumerates Transaction kinds.
type TxType string

const (
	TxInitial    TxType = "initial"
	TxCharge     TxType = "charge"
	TxEarn       TxType = "earn"
	TxExchange   TxType = "exchange"
	TxAdjustment TxType = "adjustment"
)

// Transaction is one append-only ledger row. Amount is signed; BalanceAfter
// is the user's available balance once the row's mutation is applied.
type Transaction struct {
	ID            uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        uint64          `gorm:"not null;index" json:"user_id"`
	ContentID     *uint64         `gorm:"index" json:"content_id,omitempty"`
	Type          TxType          `gorm:"type:varchar(16);not null" json:"type"`
	Amount        decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"amount"`
	BalanceAfter  decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"balance_after"`
	CounterpartID *uint64         `json:"counterpart_id,omitempty"`
	Note          string          `gorm:"not null;default:''" json:"note"`
	Published     bool            `gorm:"not null;default:false;index" json:"-"` // relayed to nostr
	CreatedAt     time.Time       `gorm:"index" json:"created_at"`
}
