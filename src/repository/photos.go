package repository

import (
	"context"
	"fmt"

	"lodging/src/models"
	"lodging/src/types"

	"gorm.io/gorm"
)

type PhotoRepository struct {
	db *gorm.DB
}

func NewPhotoRepository(db *gorm.DB) *PhotoRepository {
	return &PhotoRepository{db: db}
}

func (r *PhotoRepository) WithTx(tx *gorm.DB) *PhotoRepository {
	return &PhotoRepository{db: tx}
}

func (r *PhotoRepository) Create(ctx context.Context, photos ...*models.CheckpointPhoto) error {
	if len(photos) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(photos).Error; err != nil {
		return fmt.Errorf("insert checkpoint photos: %w", err)
	}
	return nil
}

func (r *PhotoRepository) Count(ctx context.Context, reservationID uint, kind types.PhotoKind) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CheckpointPhoto{}).
		Where("reservation_id = ? AND kind = ?", reservationID, kind).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count checkpoint photos: %w", err)
	}
	return int(count), nil
}

// List returns photos in upload order. An empty kind lists both kinds.
func (r *PhotoRepository) List(ctx context.Context, reservationID uint, kind types.PhotoKind) ([]models.CheckpointPhoto, error) {
	photos := []models.CheckpointPhoto{}
	query := r.db.WithContext(ctx).Where("reservation_id = ?", reservationID)
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}
	if err := query.Order("uploaded_at ASC").Order("id ASC").Find(&photos).Error; err != nil {
		return nil, fmt.Errorf("list checkpoint photos: %w", err)
	}
	return photos, nil
}
