package dao

import (
	"github.com/Taolee-crypto/timelink-backend/models"

	"gorm.io/gorm"
)

// PocEventDAO stores POC history
type PocEventDAO struct {
	db *gorm.DB
}

func NewPocEventDAO(db *gorm.DB) *PocEventDAO {
	return &PocEventDAO{db: db}
}

func (d *PocEventDAO) SavePocEvent(ev *models.PocEvent) error {
	return d.db.Create(ev).Error
}

func (d *PocEventDAO) ListPocEventsByUser(userID uint64, limit, offset int) ([]models.PocEvent, error) {
	var events []models.PocEvent
	err := d.db.Where("user_id = ?", userID).
		Order("id DESC").
		Limit(limit).Offset(offset).
		Find(&events).Error
	return events, err
}

// PlayEventDAO stores playback settlements
type PlayEventDAO struct {
	db *gorm.DB
}

func NewPlayEventDAO(db *gorm.DB) *PlayEventDAO {
	return &PlayEventDAO{db: db}
}

func (d *PlayEventDAO) SavePlayEvent(ev *models.PlayEvent) error {
	return d.db.Create(ev).Error
}

func (d *PlayEventDAO) CountPlayEventsByContent(contentID uint64) (int64, error) {
	var n int64
	err := d.db.Model(&models.PlayEvent{}).Where("content_id = ?", contentID).Count(&n).Error
	return n, err
}
