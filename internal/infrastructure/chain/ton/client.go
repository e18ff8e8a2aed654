package ton

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"ppv-marketplace/internal/domain/entities"
	"ppv-marketplace/internal/domain/repositories"
	"ppv-marketplace/pkg/errors"

	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/tvm/cell"
	"go.uber.org/zap"
)

// Get-method names of the deployed contracts.
const (
	GetVideoInfo    = "getVideoInfo"
	HasPurchased    = "hasPurchased"
	GetTotalViewers = "getTotalViewers"
	GetCounter      = "counter"
)

// Client is the TON chain adapter. Reads go through get-methods on each
// video contract; writes are internal messages sent by the wallet.
type Client struct {
	getter  Getter
	dir     *Directory
	builder *Builder
	wallet  *SeedWallet
	log     *zap.Logger
	now     func() time.Time
}

var _ repositories.ChainClient = (*Client)(nil)

func NewClient(getter Getter, builder *Builder, wallet *SeedWallet, log *zap.Logger) *Client {
	return &Client{
		getter:  getter,
		dir:     builder.dir,
		builder: builder,
		wallet:  wallet,
		log:     log,
		now:     builder.now,
	}
}

func (c *Client) Backend() entities.Backend { return entities.BackendTON }

func (c *Client) Builder() repositories.TxBuilder { return c.builder }

func (c *Client) Directory() *Directory { return c.dir }

func (c *Client) Sender() string {
	if c.wallet == nil {
		return ""
	}
	return c.wallet.Address()
}

// NormalizeAddress renders any TON address form as workchain:hex so that
// bounceable and non-bounceable spellings compare equal.
func (c *Client) NormalizeAddress(addr string) (string, error) {
	parsed, err := address.ParseAddr(addr)
	if err != nil {
		raw, rawErr := address.ParseRawAddr(addr)
		if rawErr != nil {
			return "", errors.ErrInvalidInput(fmt.Errorf("not a TON address: %q", addr))
		}
		parsed = raw
	}
	return rawAddress(parsed), nil
}

// rawAddress is the workchain:hex form that address.ParseRawAddr reads back.
func rawAddress(a *address.Address) string {
	return fmt.Sprintf("%d:%x", a.Workchain(), a.Data())
}

func (c *Client) Read(ctx context.Context, ref entities.ContractRef, method string, args ...any) ([]any, error) {
	addr, err := address.ParseAddr(ref.Address)
	if err != nil {
		return nil, errors.ErrInvalidInput(fmt.Errorf("parse contract %q: %w", ref.Address, err))
	}
	out, err := c.getter.RunGet(ctx, addr, method, args...)
	if err != nil {
		return nil, classify(err)
	}
	return out, nil
}

func (c *Client) Submit(ctx context.Context, ref entities.ContractRef, payload *entities.CallPayload) (*entities.TxHandle, error) {
	if c.wallet == nil {
		return nil, errors.ErrNotAuthorized(fmt.Errorf("no wallet configured"))
	}
	if payload.Backend != entities.BackendTON {
		return nil, errors.ErrInvalidInput(fmt.Errorf("payload built for %s", payload.Backend))
	}
	dst, err := address.ParseAddr(ref.Address)
	if err != nil {
		return nil, errors.ErrInvalidInput(fmt.Errorf("parse contract %q: %w", ref.Address, err))
	}
	if !payload.Claim(c.now()) {
		return nil, errors.ErrRejected(fmt.Errorf("payload already submitted or expired at %s", payload.ValidUntil.Format(time.RFC3339)))
	}
	hash, err := c.wallet.Send(ctx, dst, payload)
	if err != nil {
		return nil, classify(err)
	}
	c.log.Info("ton message sent",
		zap.String("kind", string(payload.Kind)),
		zap.String("body_hash", hash),
		zap.Uint64("video_id", payload.VideoID))
	return &entities.TxHandle{
		Hash:        hash,
		Backend:     entities.BackendTON,
		Contract:    ref.Address,
		SubmittedAt: c.now(),
	}, nil
}

// GetVideos reads every known video contract in id order, so index i of
// the result is video i+1.
func (c *Client) GetVideos(ctx context.Context) ([]entities.VideoRecord, error) {
	n := c.dir.Len()
	videos := make([]entities.VideoRecord, 0, n)
	for id := uint64(1); id <= uint64(n); id++ {
		v, err := c.GetVideoInfo(ctx, id)
		if err != nil {
			return nil, err
		}
		videos = append(videos, *v)
	}
	return videos, nil
}

func (c *Client) GetVideoInfo(ctx context.Context, videoID uint64) (*entities.VideoRecord, error) {
	addr, err := c.dir.Video(videoID)
	if err != nil {
		return nil, err
	}
	out, err := c.run(ctx, addr, GetVideoInfo)
	if err != nil {
		return nil, err
	}
	if len(out) != 8 {
		return nil, errors.ErrRejected(fmt.Errorf("getVideoInfo returned %d values", len(out)))
	}
	owner, err := stackAddress(out[0])
	if err != nil {
		return nil, errors.ErrRejected(err)
	}
	v := &entities.VideoRecord{
		ID:           videoID,
		Backend:      entities.BackendTON,
		Contract:     addr.String(),
		Uploader:     rawAddress(owner),
		Price:        stackInt(out[1]),
		ContentHash:  stackString(out[2]),
		Title:        stackString(out[3]),
		Description:  stackString(out[4]),
		TotalViews:   stackInt(out[5]),
		TotalRevenue: stackInt(out[6]),
		Active:       stackInt(out[7]).Sign() != 0,
	}
	return v, nil
}

func (c *Client) HasPurchased(ctx context.Context, videoID uint64, viewer string) (bool, error) {
	addr, err := c.dir.Video(videoID)
	if err != nil {
		return false, err
	}
	normalized, err := c.NormalizeAddress(viewer)
	if err != nil {
		return false, err
	}
	viewerAddr, err := address.ParseRawAddr(normalized)
	if err != nil {
		return false, errors.ErrInvalidInput(err)
	}
	arg := cell.BeginCell().MustStoreAddr(viewerAddr).EndCell().BeginParse()
	out, err := c.run(ctx, addr, HasPurchased, arg)
	if err != nil {
		return false, err
	}
	return len(out) == 1 && stackInt(out[0]).Sign() != 0, nil
}

func (c *Client) GetTotalViewers(ctx context.Context, videoID uint64) (*big.Int, error) {
	addr, err := c.dir.Video(videoID)
	if err != nil {
		return nil, err
	}
	out, err := c.run(ctx, addr, GetTotalViewers)
	if err != nil {
		return nil, err
	}
	if len(out) != 1 {
		return nil, errors.ErrRejected(fmt.Errorf("getTotalViewers returned %d values", len(out)))
	}
	return stackInt(out[0]), nil
}

// VideoCount reads the registry counter that registration increments.
func (c *Client) VideoCount(ctx context.Context) (*big.Int, error) {
	registry, err := c.dir.Registry()
	if err != nil {
		return big.NewInt(int64(c.dir.Len())), nil
	}
	out, err := c.run(ctx, registry, GetCounter)
	if err != nil {
		return nil, err
	}
	if len(out) != 1 {
		return nil, errors.ErrRejected(fmt.Errorf("counter returned %d values", len(out)))
	}
	return stackInt(out[0]), nil
}

// WithdrawableBalance is the video contract's account balance.
func (c *Client) WithdrawableBalance(ctx context.Context, videoID uint64, _ string) (*big.Int, error) {
	addr, err := c.dir.Video(videoID)
	if err != nil {
		return nil, err
	}
	bal, err := c.getter.Balance(ctx, addr)
	if err != nil {
		return nil, classify(err)
	}
	return bal, nil
}

func (c *Client) run(ctx context.Context, addr *address.Address, method string, params ...any) ([]any, error) {
	out, err := c.getter.RunGet(ctx, addr, method, params...)
	if err != nil {
		return nil, classify(err)
	}
	return out, nil
}

func stackInt(v any) *big.Int {
	if n, ok := v.(*big.Int); ok && n != nil {
		return n
	}
	return new(big.Int)
}

func stackString(v any) string {
	var s *cell.Slice
	switch t := v.(type) {
	case *cell.Cell:
		s = t.BeginParse()
	case *cell.Slice:
		s = t
	default:
		return ""
	}
	str, err := s.LoadStringSnake()
	if err != nil {
		return ""
	}
	return str
}

func stackAddress(v any) (*address.Address, error) {
	var s *cell.Slice
	switch t := v.(type) {
	case *cell.Slice:
		s = t
	case *cell.Cell:
		s = t.BeginParse()
	default:
		return nil, fmt.Errorf("expected address slice, got %T", v)
	}
	return s.LoadAddr()
}
