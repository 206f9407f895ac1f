package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/DeepanshiGandhi/Image-Tracker/models"
)

// HitStore persists observation events. Record is a pure append: it must
// succeed whether or not the artifact behind TrackID still exists.
type HitStore interface {
	Record(ctx context.Context, hit *models.Hit) error
	List(ctx context.Context, requesterID string, privileged bool, limit int) ([]models.Hit, error)
}

type GormHitStore struct {
	db *gorm.DB
}

func NewGormHitStore(db *gorm.DB) *GormHitStore {
	return &GormHitStore{db: db}
}

func (s *GormHitStore) Record(ctx context.Context, hit *models.Hit) error {
	if err := s.db.WithContext(ctx).Create(hit).Error; err != nil {
		return fmt.Errorf("record hit: %w", err)
	}
	return nil
}

// List returns hits newest first. Unprivileged callers only see their own
// rows.
func (s *GormHitStore) List(ctx context.Context, requesterID string, privileged bool, limit int) ([]models.Hit, error) {
	q := s.db.WithContext(ctx).Model(&models.Hit{}).Order("id DESC").Limit(limit)
	if !privileged {
		q = q.Where("requester_id = ?", requesterID)
	}

	var hits []models.Hit
	if err := q.Find(&hits).Error; err != nil {
		return nil, fmt.Errorf("list hits: %w", err)
	}
	return hits, nil
}
