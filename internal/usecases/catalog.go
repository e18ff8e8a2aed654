package usecases

import (
	"context"
	"fmt"

	"ppv-marketplace/internal/domain/entities"
	"ppv-marketplace/internal/domain/repositories"
	"ppv-marketplace/pkg/errors"

	"go.uber.org/zap"
)

type CatalogService interface {
	// List reads the contract listing and refreshes the mirror. When the
	// chain is unreachable it serves the mirror and reports stale=true.
	List(ctx context.Context, backend entities.Backend) (videos []entities.VideoRecord, stale bool, err error)
	Get(ctx context.Context, backend entities.Backend, videoID uint64) (*entities.VideoRecord, error)
	// Refresh re-reads one video into the mirror.
	Refresh(ctx context.Context, backend entities.Backend, videoID uint64) error
}

type catalogService struct {
	chains Chains
	mirror repositories.VideoRepository
	log    *zap.Logger
}

func NewCatalogService(chains Chains, mirror repositories.VideoRepository, log *zap.Logger) CatalogService {
	return &catalogService{chains: chains, mirror: mirror, log: log}
}

func (s *catalogService) List(ctx context.Context, backend entities.Backend) ([]entities.VideoRecord, bool, error) {
	client, err := s.chains.Get(backend)
	if err != nil {
		return nil, false, err
	}
	videos, err := client.GetVideos(ctx)
	if err != nil {
		if !errors.Retryable(err) {
			return nil, false, err
		}
		cached, mirrorErr := s.mirror.List(ctx, backend)
		if mirrorErr != nil || len(cached) == 0 {
			return nil, false, err
		}
		s.log.Warn("serving catalog mirror", zap.String("backend", string(backend)), zap.Error(err))
		return cached, true, nil
	}
	for _, v := range videos {
		if err := s.mirror.Upsert(ctx, v); err != nil {
			s.log.Warn("catalog mirror write failed", zap.Uint64("video_id", v.ID), zap.Error(err))
		}
	}
	return videos, false, nil
}

func (s *catalogService) Get(ctx context.Context, backend entities.Backend, videoID uint64) (*entities.VideoRecord, error) {
	client, err := s.chains.Get(backend)
	if err != nil {
		return nil, err
	}
	return client.GetVideoInfo(ctx, videoID)
}

func (s *catalogService) Refresh(ctx context.Context, backend entities.Backend, videoID uint64) error {
	v, err := s.Get(ctx, backend, videoID)
	if err != nil {
		return err
	}
	if err := s.mirror.Upsert(ctx, *v); err != nil {
		return errors.ErrInternal(fmt.Errorf("mirroring video %d: %w", videoID, err))
	}
	return nil
}
