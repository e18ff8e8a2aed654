package repositories

import (
	"context"
	stderrors "errors"
	"fmt"

	"ppv-marketplace/internal/domain/entities"
	"ppv-marketplace/internal/domain/mapper"
	"ppv-marketplace/internal/domain/repositories"
	"ppv-marketplace/pkg/errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type videoRepository struct {
	db *gorm.DB
}

func NewVideoRepository(db *gorm.DB) repositories.VideoRepository {
	return &videoRepository{db: db}
}

func (r *videoRepository) Upsert(ctx context.Context, video entities.VideoRecord) error {
	listing := mapper.VideoToListing(video)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "backend"}, {Name: "contract"}, {Name: "chain_video_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"uploader", "content_hash", "thumbnail_hash", "title", "description",
			"price", "display_time", "active", "total_views", "total_revenue", "updated_at",
		}),
	}).Create(&listing).Error
}

func (r *videoRepository) Get(ctx context.Context, backend entities.Backend, videoID uint64) (*entities.VideoRecord, error) {
	var listing entities.VideoListing
	err := r.db.WithContext(ctx).
		First(&listing, "backend = ? AND chain_video_id = ?", string(backend), videoID).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.ErrNotFound(fmt.Errorf("%s video %d not mirrored", backend, videoID))
	}
	if err != nil {
		return nil, err
	}
	video := mapper.ListingToVideo(listing)
	return &video, nil
}

func (r *videoRepository) List(ctx context.Context, backend entities.Backend) ([]entities.VideoRecord, error) {
	var listings []entities.VideoListing
	if err := r.db.WithContext(ctx).
		Where("backend = ?", string(backend)).
		Order("chain_video_id").
		Find(&listings).Error; err != nil {
		return nil, err
	}
	out := make([]entities.VideoRecord, 0, len(listings))
	for _, l := range listings {
		out = append(out, mapper.ListingToVideo(l))
	}
	return out, nil
}
