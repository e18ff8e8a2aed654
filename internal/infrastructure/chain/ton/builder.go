package ton

import (
	"fmt"
	"math/big"
	"time"

	"ppv-marketplace/internal/domain/entities"
	"ppv-marketplace/internal/pkg/config"
	"ppv-marketplace/pkg/errors"

	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/tvm/cell"
)

// registerAmount is the counter increment the registry's "add" op expects.
const registerAmount = 1

// Builder encodes internal message bodies as BOC. Op codes are the
// deployed contracts' constants.
type Builder struct {
	ops    config.TONOpCodes
	dir    *Directory
	fee    *big.Int
	window time.Duration
	now    func() time.Time
}

func NewBuilder(ops config.TONOpCodes, dir *Directory, feeNano int64, window time.Duration, now func() time.Time) *Builder {
	if now == nil {
		now = time.Now
	}
	return &Builder{ops: ops, dir: dir, fee: big.NewInt(feeNano), window: window, now: now}
}

// BuildPayToView sends price as the message value; the body holds only
// the op code and the video id.
func (b *Builder) BuildPayToView(videoID uint64, price *big.Int) (*entities.CallPayload, error) {
	if price == nil || price.Sign() < 0 {
		return nil, errors.ErrInvalidInput(fmt.Errorf("price must be non-negative"))
	}
	if videoID > 0xFFFFFFFF {
		return nil, errors.ErrInvalidInput(fmt.Errorf("video id %d exceeds 32 bits", videoID))
	}
	dst, err := b.dir.Video(videoID)
	if err != nil {
		return nil, err
	}
	body := cell.BeginCell().
		MustStoreUInt(uint64(b.ops.Purchase), 32).
		MustStoreUInt(videoID, 32).
		EndCell()
	return b.payload(entities.KindPayToView, dst, videoID, body, price), nil
}

// BuildRegisterVideo bumps the registry counter. The metadata rides in a
// reference cell: price(64) displayTime(32) ^contentHash ^title.
func (b *Builder) BuildRegisterVideo(contentHash, _ string, title string, price *big.Int, displayTime int64) (*entities.CallPayload, error) {
	if contentHash == "" {
		return nil, errors.ErrInvalidInput(fmt.Errorf("content hash is required"))
	}
	if price == nil || price.Sign() < 0 || !price.IsUint64() {
		return nil, errors.ErrInvalidInput(fmt.Errorf("price must fit in 64 bits"))
	}
	if displayTime < 0 || displayTime > 0xFFFFFFFF {
		return nil, errors.ErrInvalidInput(fmt.Errorf("display time must fit in 32 bits"))
	}
	dst, err := b.dir.Registry()
	if err != nil {
		return nil, err
	}
	meta := cell.BeginCell().
		MustStoreUInt(price.Uint64(), 64).
		MustStoreUInt(uint64(displayTime), 32).
		MustStoreRef(snake(contentHash)).
		MustStoreRef(snake(title)).
		EndCell()
	body := cell.BeginCell().
		MustStoreUInt(uint64(b.ops.Register), 32).
		MustStoreUInt(registerAmount, 32).
		MustStoreRef(meta).
		EndCell()
	return b.payload(entities.KindRegisterVideo, dst, 0, body, b.fee), nil
}

// BuildWithdraw is owner-only on chain.
func (b *Builder) BuildWithdraw(videoID uint64) (*entities.CallPayload, error) {
	return b.opOnly(entities.KindWithdraw, videoID, b.ops.Withdraw)
}

// BuildUpdateMetadata is owner-only on chain. Layout: op, title tail,
// description tail, price(64).
func (b *Builder) BuildUpdateMetadata(videoID uint64, title, description string, price *big.Int) (*entities.CallPayload, error) {
	if price == nil || price.Sign() < 0 || !price.IsUint64() {
		return nil, errors.ErrInvalidInput(fmt.Errorf("price must fit in 64 bits"))
	}
	dst, err := b.dir.Video(videoID)
	if err != nil {
		return nil, err
	}
	bld := cell.BeginCell().MustStoreUInt(uint64(b.ops.UpdateVideo), 32)
	if err := bld.StoreStringSnake(title); err != nil {
		return nil, errors.ErrInvalidInput(fmt.Errorf("title: %w", err))
	}
	if err := bld.StoreStringSnake(description); err != nil {
		return nil, errors.ErrInvalidInput(fmt.Errorf("description: %w", err))
	}
	if err := bld.StoreUInt(price.Uint64(), 64); err != nil {
		return nil, errors.ErrInvalidInput(fmt.Errorf("title and description too long: %w", err))
	}
	return b.payload(entities.KindUpdateMetadata, dst, videoID, bld.EndCell(), b.fee), nil
}

// BuildToggleActive is owner-only on chain.
func (b *Builder) BuildToggleActive(videoID uint64) (*entities.CallPayload, error) {
	return b.opOnly(entities.KindToggleActive, videoID, b.ops.ToggleActive)
}

func (b *Builder) opOnly(kind entities.Kind, videoID uint64, op uint32) (*entities.CallPayload, error) {
	dst, err := b.dir.Video(videoID)
	if err != nil {
		return nil, err
	}
	body := cell.BeginCell().MustStoreUInt(uint64(op), 32).EndCell()
	return b.payload(kind, dst, videoID, body, b.fee), nil
}

func (b *Builder) payload(kind entities.Kind, dst *address.Address, videoID uint64, body *cell.Cell, value *big.Int) *entities.CallPayload {
	now := b.now()
	return &entities.CallPayload{
		Kind:       kind,
		Backend:    entities.BackendTON,
		Contract:   dst.String(),
		VideoID:    videoID,
		Data:       body.ToBOC(),
		Value:      new(big.Int).Set(value),
		BuiltAt:    now,
		ValidUntil: now.Add(b.window),
	}
}

func snake(s string) *cell.Cell {
	return cell.BeginCell().MustStoreStringSnake(s).EndCell()
}
