package dao

import (
	"github.com/Taolee-crypto/timelink-backend/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionDAO handles ledger transaction storage
type TransactionDAO struct {
	db *gorm.DB
}

func NewTransactionDAO(db *gorm.DB) *TransactionDAO {
	return &TransactionDAO{db: db}
}

func (d *TransactionDAO) SaveTransaction(tx *models.Transaction) error {
	return d.db.Create(tx).Error
}

// ListTransactionsByUser returns a user's ledger rows, newest first
func (d *TransactionDAO) ListTransactionsByUser(userID uint64, limit, offset int) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := d.db.Where("user_id = ?", userID).
		Order("id DESC").
		Limit(limit).Offset(offset).
		Find(&txs).Error
	return txs, err
}

// SumAmountByUser adds up every signed amount logged for a user.
func (d *TransactionDAO) SumAmountByUser(userID uint64) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := d.db.Model(&models.Transaction{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(amount), 0)").
		Row().Scan(&sum)
	return sum, err
}

// ListUnpublished returns rows not yet relayed, oldest first
func (d *TransactionDAO) ListUnpublished(limit int) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := d.db.Where("published = ?", false).
		Order("id ASC").
		Limit(limit).
		Find(&txs).Error
	return txs, err
}

// MarkPublished flags rows as relayed
func (d *TransactionDAO) MarkPublished(ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	return d.db.Model(&models.Transaction{}).
		Where("id IN ?", ids).
		Update("published", true).Error
}
