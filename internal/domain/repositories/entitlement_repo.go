package repositories

import (
	"context"

	"ppv-marketplace/internal/domain/entities"
)

type EntitlementRepository interface {
	// Grant stores the record once; created is false when it already existed.
	Grant(ctx context.Context, rec *entities.EntitlementRecord) (created bool, err error)
	IsGranted(ctx context.Context, backend entities.Backend, contract string, videoID uint64, viewer string) (bool, error)
	ListByViewer(ctx context.Context, viewer string) ([]entities.EntitlementRecord, error)
}
