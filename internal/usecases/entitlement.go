package usecases

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ppv-marketplace/internal/domain/entities"
	"ppv-marketplace/internal/domain/repositories"
	"ppv-marketplace/internal/infrastructure/metrics"
	"ppv-marketplace/pkg/constants"
	"ppv-marketplace/pkg/errors"
	"ppv-marketplace/pkg/file"

	"go.uber.org/zap"
)

type EntitlementService interface {
	// CanView fetches the video and answers whether viewer may play it.
	// A failed fetch is LookupFailed, never a silent deny.
	CanView(ctx context.Context, backend entities.Backend, videoID uint64, viewer string) (bool, error)
	CanViewVideo(ctx context.Context, video entities.VideoRecord, viewer string) (bool, error)
	// RecordGrant is idempotent and never revoked.
	RecordGrant(ctx context.Context, video entities.VideoRecord, viewer string, proof entities.PaymentProof) error
	// ResetCache drops the advisory cache. Grants in the store and on chain stay.
	ResetCache(ctx context.Context) error
}

type entitlementService struct {
	chains  Chains
	grants  repositories.EntitlementRepository
	cache   repositories.EntitlementCache
	metrics *metrics.Metrics
	log     *zap.Logger
	now     func() time.Time
}

func NewEntitlementService(chains Chains, grants repositories.EntitlementRepository, cache repositories.EntitlementCache, m *metrics.Metrics, log *zap.Logger) EntitlementService {
	return &entitlementService{
		chains:  chains,
		grants:  grants,
		cache:   cache,
		metrics: m,
		log:     log,
		now:     time.Now,
	}
}

func anonymous(viewer string) bool {
	v := strings.TrimSpace(viewer)
	return v == "" || strings.EqualFold(v, constants.ZeroAddress)
}

func (s *entitlementService) CanView(ctx context.Context, backend entities.Backend, videoID uint64, viewer string) (bool, error) {
	client, err := s.chains.Get(backend)
	if err != nil {
		return false, err
	}
	if anonymous(viewer) {
		s.metrics.Access(string(backend), "anonymous", false)
		return false, nil
	}
	video, err := client.GetVideoInfo(ctx, videoID)
	if err != nil {
		if errors.HasCode(err, errors.CodeNotFound) || errors.HasCode(err, errors.CodeInvalidInput) {
			return false, err
		}
		return false, errors.ErrLookupFailed(fmt.Errorf("reading video %d: %w", videoID, err))
	}
	return s.CanViewVideo(ctx, *video, viewer)
}

func (s *entitlementService) CanViewVideo(ctx context.Context, video entities.VideoRecord, viewer string) (bool, error) {
	client, err := s.chains.Get(video.Backend)
	if err != nil {
		return false, err
	}
	if anonymous(viewer) {
		s.metrics.Access(string(video.Backend), "anonymous", false)
		return false, nil
	}
	viewer, err = client.NormalizeAddress(viewer)
	if err != nil {
		return false, err
	}
	backend := string(video.Backend)

	if entities.Decide(video, viewer, false) {
		s.metrics.Access(backend, "uploader", true)
		return true, nil
	}

	key := file.MakeKey(viewer, video.ContentHash)
	if hit, err := s.cache.IsGranted(ctx, key); err != nil {
		s.log.Warn("entitlement cache read failed", zap.String("key", key), zap.Error(err))
	} else if hit {
		s.metrics.Access(backend, "cache", true)
		return true, nil
	}

	granted, err := s.grants.IsGranted(ctx, video.Backend, video.Contract, video.ID, viewer)
	if err != nil {
		s.log.Warn("entitlement store read failed", zap.Uint64("video_id", video.ID), zap.Error(err))
	} else if granted {
		s.markCache(ctx, key)
		s.metrics.Access(backend, "store", true)
		return true, nil
	}

	purchased, err := client.HasPurchased(ctx, video.ID, viewer)
	if err != nil {
		return false, errors.ErrLookupFailed(fmt.Errorf("hasPurchased(%d, %s): %w", video.ID, file.ShortAddress(viewer), err))
	}
	if purchased {
		if err := s.RecordGrant(ctx, video, viewer, entities.PaymentProof{ConfirmedAt: s.now()}); err != nil {
			s.log.Warn("recording chain grant failed", zap.Uint64("video_id", video.ID), zap.Error(err))
		}
	}
	allowed := entities.Decide(video, viewer, purchased)
	s.metrics.Access(backend, "chain", allowed)
	return allowed, nil
}

func (s *entitlementService) RecordGrant(ctx context.Context, video entities.VideoRecord, viewer string, proof entities.PaymentProof) error {
	if anonymous(viewer) {
		return errors.ErrInvalidInput(fmt.Errorf("cannot grant the anonymous viewer"))
	}
	if client, err := s.chains.Get(video.Backend); err == nil {
		if normalized, err := client.NormalizeAddress(viewer); err == nil {
			viewer = normalized
		}
	}
	grantedAt := proof.ConfirmedAt
	if grantedAt.IsZero() {
		grantedAt = s.now()
	}
	created, err := s.grants.Grant(ctx, &entities.EntitlementRecord{
		Viewer:      viewer,
		Backend:     string(video.Backend),
		Contract:    video.Contract,
		VideoID:     video.ID,
		ContentHash: video.ContentHash,
		Granted:     true,
		TxHash:      proof.TxHash,
		GrantedAt:   grantedAt,
	})
	if err != nil {
		return errors.ErrInternal(fmt.Errorf("storing grant: %w", err))
	}
	s.markCache(ctx, file.MakeKey(viewer, video.ContentHash))
	if created {
		s.log.Info("entitlement granted",
			zap.String("backend", string(video.Backend)),
			zap.Uint64("video_id", video.ID),
			zap.String("viewer", file.ShortAddress(viewer)),
			zap.String("tx_hash", proof.TxHash))
	}
	return nil
}

func (s *entitlementService) ResetCache(ctx context.Context) error {
	if err := s.cache.ClearAll(ctx); err != nil {
		return errors.ErrInternal(fmt.Errorf("clearing entitlement cache: %w", err))
	}
	s.log.Info("entitlement cache cleared")
	return nil
}

func (s *entitlementService) markCache(ctx context.Context, key string) {
	if err := s.cache.MarkGranted(ctx, key); err != nil {
		s.log.Warn("entitlement cache write failed", zap.String("key", key), zap.Error(err))
	}
}
