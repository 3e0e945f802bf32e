package dao

import (
	"time"

	"github.com/Taolee-crypto/timelink-backend/models"

	"gorm.io/gorm"
)

// DisputeDAO handles dispute storage
type DisputeDAO struct {
	db *gorm.DB
}

func NewDisputeDAO(db *gorm.DB) *DisputeDAO {
	return &DisputeDAO{db: db}
}

func (d *DisputeDAO) CreateDispute(dispute *models.Dispute) error {
	return d.db.Create(dispute).Error
}

func (d *DisputeDAO) GetDisputeByID(id uint64) (*models.Dispute, error) {
	var dispute models.Dispute
	if err := d.db.First(&dispute, id).Error; err != nil {
		return nil, err
	}
	return &dispute, nil
}

func (d *DisputeDAO) ListDisputesByDisputer(userID uint64, limit, offset int) ([]models.Dispute, error) {
	var disputes []models.Dispute
	err := d.db.Where("disputer_id = ?", userID).
		Order("id DESC").
		Limit(limit).Offset(offset).
		Find(&disputes).Error
	return disputes, err
}

// CountPendingByContent counts open disputes against one content item.
func (d *DisputeDAO) CountPendingByContent(contentID uint64) (int64, error) {
	var n int64
	err := d.db.Model(&models.Dispute{}).
		Where("content_id = ? AND status = ?", contentID, string(models.DisputePending)).
		Count(&n).Error
	return n, err
}

// CountPendingByOwner counts open disputes against any content owned by
// ownerID.
func (d *DisputeDAO) CountPendingByOwner(ownerID uint64) (int64, error) {
	var n int64
	err := d.db.Model(&models.Dispute{}).
		Joins("JOIN content_items ON content_items.id = disputes.content_id").
		Where("content_items.owner_id = ? AND disputes.status = ?", ownerID, string(models.DisputePending)).
		Count(&n).Error
	return n, err
}

// Finalize moves a pending dispute to a terminal status. It reports false
// when the dispute was no longer pending.
func (d *DisputeDAO) Finalize(id uint64, status models.DisputeStatus, note string, at time.Time) (bool, error) {
	res := d.db.Model(&models.Dispute{}).
		Where("id = ? AND status = ?", id, string(models.DisputePending)).
		Updates(map[string]interface{}{
			"status":      string(status),
			"result_note": note,
			"resolved_at": at,
		})
	return res.RowsAffected == 1, res.Error
}
