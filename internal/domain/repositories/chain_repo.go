package repositories

import (
	"context"
	"math/big"

	"ppv-marketplace/internal/domain/entities"
)

// ChainClient hides one chain backend. Every failure it returns is a
// *errors.ChainError carrying network_unavailable, rejected or
// user_declined, so callers never inspect backend error text.
type ChainClient interface {
	Backend() entities.Backend
	// Sender is the address of the attached wallet, empty when read-only.
	Sender() string
	NormalizeAddress(addr string) (string, error)
	Builder() TxBuilder

	Read(ctx context.Context, ref entities.ContractRef, method string, args ...any) ([]any, error)
	Submit(ctx context.Context, ref entities.ContractRef, payload *entities.CallPayload) (*entities.TxHandle, error)

	VideoReader
}

// VideoReader is the typed contract read surface.
type VideoReader interface {
	// GetVideos decodes the bulk listing. Index i of every parallel array
	// in the contract response describes the same video.
	GetVideos(ctx context.Context) ([]entities.VideoRecord, error)
	GetVideoInfo(ctx context.Context, videoID uint64) (*entities.VideoRecord, error)
	HasPurchased(ctx context.Context, videoID uint64, viewer string) (bool, error)
	GetTotalViewers(ctx context.Context, videoID uint64) (*big.Int, error)
	VideoCount(ctx context.Context) (*big.Int, error)
	// WithdrawableBalance is the amount a withdraw by owner would move.
	WithdrawableBalance(ctx context.Context, videoID uint64, owner string) (*big.Int, error)
}

// TxBuilder encodes each action into the exact call the deployed
// contract expects. Withdraw, UpdateMetadata and ToggleActive are
// owner-only on chain; the builder does not check ownership.
type TxBuilder interface {
	BuildPayToView(videoID uint64, price *big.Int) (*entities.CallPayload, error)
	BuildRegisterVideo(contentHash, thumbnailHash, title string, price *big.Int, displayTime int64) (*entities.CallPayload, error)
	BuildWithdraw(videoID uint64) (*entities.CallPayload, error)
	BuildUpdateMetadata(videoID uint64, title, description string, price *big.Int) (*entities.CallPayload, error)
	BuildToggleActive(videoID uint64) (*entities.CallPayload, error)
}

// Approver is the wallet's confirmation step; returning false declines.
type Approver func(ctx context.Context, payload *entities.CallPayload) (bool, error)
