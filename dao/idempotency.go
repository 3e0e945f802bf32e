package dao

import (
	"github.com/Taolee-crypto/timelink-backend/models"

	"gorm.io/gorm"
)

// IdempotencyDAO stores replayable responses keyed by client-chosen keys
type IdempotencyDAO struct {
	db *gorm.DB
}

func NewIdempotencyDAO(db *gorm.DB) *IdempotencyDAO {
	return &IdempotencyDAO{db: db}
}

// GetKey returns the stored record or gorm.ErrRecordNotFound
func (d *IdempotencyDAO) GetKey(key string) (*models.IdempotencyKey, error) {
	var rec models.IdempotencyKey
	if err := d.db.Where("key = ?", key).First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func (d *IdempotencyDAO) SaveKey(rec *models.IdempotencyKey) error {
	return d.db.Create(rec).Error
}
