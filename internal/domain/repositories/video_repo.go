package repositories

import (
	"context"

	"ppv-marketplace/internal/domain/entities"
)

// VideoRepository is the catalog mirror.
type VideoRepository interface {
	Upsert(ctx context.Context, video entities.VideoRecord) error
	Get(ctx context.Context, backend entities.Backend, videoID uint64) (*entities.VideoRecord, error)
	List(ctx context.Context, backend entities.Backend) ([]entities.VideoRecord, error)
}
