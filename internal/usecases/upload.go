package usecases

import (
	"context"
	"fmt"
	"io"
	"math/big"
	"path/filepath"

	"ppv-marketplace/internal/domain/entities"
	"ppv-marketplace/internal/domain/repositories"
	"ppv-marketplace/internal/infrastructure/processor"
	"ppv-marketplace/internal/pkg/config"
	"ppv-marketplace/pkg/errors"
	"ppv-marketplace/pkg/file"

	"go.uber.org/zap"
)

type UploadRequest struct {
	Backend     entities.Backend
	Sender      string
	Title       string
	Price       *big.Int
	DisplayTime int64

	VideoName string
	VideoType string
	VideoSize int64
	Video     io.Reader
	ThumbName string
	Thumbnail io.Reader // optional
}

type UploadService interface {
	// Upload pins the video (and thumbnail) and prepares the registration.
	Upload(ctx context.Context, req UploadRequest) (*Prepared, error)
}

type uploadService struct {
	pinner repositories.Pinner
	txs    TransactionService
	cfg    config.Config
	log    *zap.Logger
}

func NewUploadService(pinner repositories.Pinner, txs TransactionService, cfg config.Config, log *zap.Logger) UploadService {
	return &uploadService{pinner: pinner, txs: txs, cfg: cfg, log: log}
}

func (s *uploadService) Upload(ctx context.Context, req UploadRequest) (*Prepared, error) {
	if req.Video == nil {
		return nil, errors.ErrInvalidInput(fmt.Errorf("video file is required"))
	}
	if !file.IsVideoMIME(req.VideoType, req.VideoName) {
		return nil, errors.ErrInvalidInput(fmt.Errorf("%s is not a video", filepath.Base(req.VideoName)))
	}
	if req.VideoSize > s.cfg.Tx.MaxFileSize {
		return nil, errors.ErrInvalidInput(fmt.Errorf("video exceeds %d bytes", s.cfg.Tx.MaxFileSize))
	}

	contentType := req.VideoType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = processor.MimeTypeFromExtension(req.VideoName)
	}
	videoCID, err := s.pinner.Pin(ctx, req.VideoName, contentType, io.LimitReader(req.Video, s.cfg.Tx.MaxFileSize))
	if err != nil {
		return nil, err
	}

	var thumbCID string
	if req.Thumbnail != nil {
		if !file.IsImageFile(req.ThumbName) {
			return nil, errors.ErrInvalidInput(fmt.Errorf("%s is not an image", filepath.Base(req.ThumbName)))
		}
		thumb, err := processor.NormalizeThumbnail(req.Thumbnail, processor.ResizeOption{
			Width:   s.cfg.Pinning.ThumbWidth,
			Quality: processor.DefaultThumbnail.Quality,
		})
		if err != nil {
			return nil, err
		}
		if thumbCID, err = s.pinner.Pin(ctx, processor.ThumbnailName(req.ThumbName), "image/jpeg", thumb); err != nil {
			return nil, err
		}
	}
	s.log.Info("video pinned",
		zap.String("backend", string(req.Backend)),
		zap.String("cid", videoCID),
		zap.String("thumbnail_cid", thumbCID))

	return s.txs.Prepare(ctx, PrepareRequest{
		Kind:          entities.KindRegisterVideo,
		Backend:       req.Backend,
		Sender:        req.Sender,
		Title:         req.Title,
		Price:         req.Price,
		DisplayTime:   req.DisplayTime,
		ContentHash:   videoCID,
		ThumbnailHash: thumbCID,
	})
}
