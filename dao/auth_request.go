package dao

import (
	"time"

	"github.com/Taolee-crypto/timelink-backend/models"

	"gorm.io/gorm"
)

// AuthRequestDAO stores content verification requests
type AuthRequestDAO struct {
	db *gorm.DB
}

func NewAuthRequestDAO(db *gorm.DB) *AuthRequestDAO {
	return &AuthRequestDAO{db: db}
}

func (d *AuthRequestDAO) CreateAuthRequest(req *models.AuthRequest) error {
	return d.db.Create(req).Error
}

// GetPendingByContent returns the open request for a content item or
// gorm.ErrRecordNotFound.
func (d *AuthRequestDAO) GetPendingByContent(contentID uint64) (*models.AuthRequest, error) {
	var req models.AuthRequest
	err := d.db.Where("content_id = ? AND status = ?", contentID, string(models.AuthRequestPending)).
		Order("id DESC").
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (d *AuthRequestDAO) ListByContent(contentID uint64) ([]models.AuthRequest, error) {
	var reqs []models.AuthRequest
	err := d.db.Where("content_id = ?", contentID).Order("id DESC").Find(&reqs).Error
	return reqs, err
}

// Review closes a pending request. It reports false when the request was
// already reviewed.
func (d *AuthRequestDAO) Review(id uint64, status models.AuthRequestStatus, at time.Time) (bool, error) {
	res := d.db.Model(&models.AuthRequest{}).
		Where("id = ? AND status = ?", id, string(models.AuthRequestPending)).
		Updates(map[string]interface{}{
			"status":      string(status),
			"reviewed_at": at,
		})
	return res.RowsAffected == 1, res.Error
}
