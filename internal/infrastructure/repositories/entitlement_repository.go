package repositories

import (
	"context"

	"ppv-marketplace/internal/domain/entities"
	"ppv-marketplace/internal/domain/repositories"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type entitlementRepository struct {
	db *gorm.DB
}

func NewEntitlementRepository(db *gorm.DB) repositories.EntitlementRepository {
	return &entitlementRepository{db: db}
}

func (r *entitlementRepository) Grant(ctx context.Context, rec *entities.EntitlementRecord) (bool, error) {
	rec.Granted = true
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(rec)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *entitlementRepository) IsGranted(ctx context.Context, backend entities.Backend, contract string, videoID uint64, viewer string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.EntitlementRecord{}).
		Where("viewer = ? AND backend = ? AND contract = ? AND video_id = ? AND granted", viewer, string(backend), contract, videoID).
		Count(&count).Error
	return count > 0, err
}

func (r *entitlementRepository) ListByViewer(ctx context.Context, viewer string) ([]entities.EntitlementRecord, error) {
	var out []entities.EntitlementRecord
	err := r.db.WithContext(ctx).
		Where("viewer = ?", viewer).
		Order("granted_at").
		Find(&out).Error
	return out, err
}
