package evm

import (
	"fmt"
	"math/big"
	"time"

	"ppv-marketplace/internal/domain/entities"
	"ppv-marketplace/pkg/errors"

	"github.com/ethereum/go-ethereum/common"
)

// Builder encodes calls against a single PayPerView registry contract.
// Selectors and argument order come from the deployed ABI.
type Builder struct {
	contract common.Address
	window   time.Duration
	now      func() time.Time
}

func NewBuilder(contract string, window time.Duration, now func() time.Time) *Builder {
	if now == nil {
		now = time.Now
	}
	return &Builder{contract: common.HexToAddress(contract), window: window, now: now}
}

func (b *Builder) BuildPayToView(videoID uint64, price *big.Int) (*entities.CallPayload, error) {
	if price == nil || price.Sign() < 0 {
		return nil, errors.ErrInvalidInput(fmt.Errorf("price must be non-negative"))
	}
	return b.build(entities.KindPayToView, videoID, price, MethodPayToView, new(big.Int).SetUint64(videoID))
}

// BuildRegisterVideo encodes uploadVideo. The deployed ABI has no title
// argument; the title only lives in the catalog mirror until updateVideo.
func (b *Builder) BuildRegisterVideo(contentHash, thumbnailHash, title string, price *big.Int, displayTime int64) (*entities.CallPayload, error) {
	if contentHash == "" {
		return nil, errors.ErrInvalidInput(fmt.Errorf("content hash is required"))
	}
	if price == nil || price.Sign() < 0 || displayTime < 0 {
		return nil, errors.ErrInvalidInput(fmt.Errorf("price and display time must be non-negative"))
	}
	return b.build(entities.KindRegisterVideo, 0, nil, MethodUploadVideo,
		contentHash, thumbnailHash, new(big.Int).Set(price), big.NewInt(displayTime))
}

// BuildWithdraw encodes withdraw(); videoID only selects whose ownership
// the submission layer checks. Owner-only on chain.
func (b *Builder) BuildWithdraw(videoID uint64) (*entities.CallPayload, error) {
	return b.build(entities.KindWithdraw, videoID, nil, MethodWithdraw)
}

// BuildUpdateMetadata is owner-only on chain.
func (b *Builder) BuildUpdateMetadata(videoID uint64, title, description string, price *big.Int) (*entities.CallPayload, error) {
	if price == nil || price.Sign() < 0 {
		return nil, errors.ErrInvalidInput(fmt.Errorf("price must be non-negative"))
	}
	return b.build(entities.KindUpdateMetadata, videoID, nil, MethodUpdateVideo,
		new(big.Int).SetUint64(videoID), title, description, new(big.Int).Set(price))
}

// BuildToggleActive is owner-only on chain.
func (b *Builder) BuildToggleActive(videoID uint64) (*entities.CallPayload, error) {
	return b.build(entities.KindToggleActive, videoID, nil, MethodToggleActive, new(big.Int).SetUint64(videoID))
}

func (b *Builder) build(kind entities.Kind, videoID uint64, value *big.Int, method string, args ...any) (*entities.CallPayload, error) {
	data, err := contractABI.Pack(method, args...)
	if err != nil {
		return nil, errors.ErrInvalidInput(fmt.Errorf("pack %s: %w", method, err))
	}
	if value == nil {
		value = new(big.Int)
	}
	now := b.now()
	return &entities.CallPayload{
		Kind:       kind,
		Backend:    entities.BackendEVM,
		Contract:   b.contract.Hex(),
		VideoID:    videoID,
		Data:       data,
		Value:      new(big.Int).Set(value),
		BuiltAt:    now,
		ValidUntil: now.Add(b.window),
	}, nil
}
