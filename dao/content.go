package dao

import (
	"github.com/Taolee-crypto/timelink-backend/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ContentDAO handles content-related database operations
type ContentDAO struct {
	db *gorm.DB
}

func NewContentDAO(db *gorm.DB) *ContentDAO {
	return &ContentDAO{db: db}
}

// CreateContent inserts a new content item
func (d *ContentDAO) CreateContent(item *models.ContentItem) error {
	return d.db.Create(item).Error
}

// GetContentByID retrieves a content item by id
func (d *ContentDAO) GetContentByID(id uint64) (*models.ContentItem, error) {
	var item models.ContentItem
	if err := d.db.First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// GetContentForUpdate retrieves a content item and holds its row lock until
// the surrounding transaction ends.
func (d *ContentDAO) GetContentForUpdate(id uint64) (*models.ContentItem, error) {
	var item models.ContentItem
	if err := d.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// ListContentsByOwner returns an owner's content, newest first
func (d *ContentDAO) ListContentsByOwner(ownerID uint64, limit, offset int) ([]models.ContentItem, error) {
	var items []models.ContentItem
	err := d.db.Where("owner_id = ?", ownerID).
		Order("created_at DESC, id DESC").
		Limit(limit).Offset(offset).
		Find(&items).Error
	return items, err
}

// Consume drains consumed from the pool and records the play in one
// conditional statement. The row is only touched while it is still verified,
// shared, not held and holds at least consumed; otherwise false is returned
// and nothing changes.
func (d *ContentDAO) Consume(id uint64, consumed, pulseDelta, revenue decimal.Decimal) (bool, error) {
	res := d.db.Model(&models.ContentItem{}).
		Where("id = ? AND auth_status = ? AND shared = ? AND revenue_held = ? AND item_balance > 0 AND item_balance >= ?",
			id, string(models.AuthVerified), true, false, consumed).
		Updates(map[string]interface{}{
			"item_balance": gorm.Expr("item_balance - ?", consumed),
			"pulse":        gorm.Expr("pulse + ?", pulseDelta),
			"play_count":   gorm.Expr("play_count + 1"),
			"revenue":      gorm.Expr("revenue + ?", revenue),
		})
	return res.RowsAffected == 1, res.Error
}

// Charge adds amount to an owner's pool, raising max_item_balance when the
// pool grows past it.
func (d *ContentDAO) Charge(id, ownerID uint64, amount decimal.Decimal) (bool, error) {
	res := d.db.Model(&models.ContentItem{}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Updates(map[string]interface{}{
			"item_balance": gorm.Expr("item_balance + ?", amount),
			"max_item_balance": gorm.Expr(
				"CASE WHEN item_balance + ? > max_item_balance THEN item_balance + ? ELSE max_item_balance END",
				amount, amount),
		})
	return res.RowsAffected == 1, res.Error
}

// SetShared toggles distribution. Sharing requires verified content.
func (d *ContentDAO) SetShared(id uint64, shared bool) (bool, error) {
	q := d.db.Model(&models.ContentItem{}).Where("id = ?", id)
	if shared {
		q = q.Where("auth_status = ?", string(models.AuthVerified))
	}
	res := q.Update("shared", shared)
	return res.RowsAffected == 1, res.Error
}

// TransitionAuthStatus moves auth_status from one value to another.
func (d *ContentDAO) TransitionAuthStatus(id uint64, from, to models.AuthStatus) (bool, error) {
	res := d.db.Model(&models.ContentItem{}).
		Where("id = ? AND auth_status = ?", id, string(from)).
		Update("auth_status", string(to))
	return res.RowsAffected == 1, res.Error
}

// SetRevenueHeld freezes or releases distribution of an item.
func (d *ContentDAO) SetRevenueHeld(id uint64, held bool) error {
	return d.db.Model(&models.ContentItem{}).
		Where("id = ?", id).
		Update("revenue_held", held).Error
}

// Reject permanently removes an item from distribution.
func (d *ContentDAO) Reject(id uint64) error {
	return d.db.Model(&models.ContentItem{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"auth_status": string(models.AuthRejected),
			"shared":      false,
		}).Error
}
