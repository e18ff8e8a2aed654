package evm

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"ppv-marketplace/internal/domain/entities"
	"ppv-marketplace/internal/domain/repositories"
	"ppv-marketplace/pkg/errors"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// Client is the EVM chain adapter over one registry contract.
type Client struct {
	caller   ethereum.ContractCaller
	contract common.Address
	builder  *Builder
	wallet   *KeyWallet
	log      *zap.Logger
	now      func() time.Time
}

var _ repositories.ChainClient = (*Client)(nil)

// NewClient wires a read surface; wallet may be nil for a read-only client.
func NewClient(caller ethereum.ContractCaller, builder *Builder, wallet *KeyWallet, log *zap.Logger) *Client {
	return &Client{
		caller:   caller,
		contract: builder.contract,
		builder:  builder,
		wallet:   wallet,
		log:      log,
		now:      builder.now,
	}
}

func (c *Client) Backend() entities.Backend { return entities.BackendEVM }

func (c *Client) Builder() repositories.TxBuilder { return c.builder }

func (c *Client) Sender() string {
	if c.wallet == nil {
		return ""
	}
	return c.wallet.Address()
}

func (c *Client) NormalizeAddress(addr string) (string, error) {
	if !common.IsHexAddress(addr) {
		return "", errors.ErrInvalidInput(fmt.Errorf("not an EVM address: %q", addr))
	}
	return common.HexToAddress(addr).Hex(), nil
}

func (c *Client) ref() entities.ContractRef {
	return entities.ContractRef{Backend: entities.BackendEVM, Address: c.contract.Hex()}
}

func (c *Client) Read(ctx context.Context, ref entities.ContractRef, method string, args ...any) ([]any, error) {
	data, err := contractABI.Pack(method, args...)
	if err != nil {
		return nil, errors.ErrInvalidInput(fmt.Errorf("pack %s: %w", method, err))
	}
	to := common.HexToAddress(ref.Address)
	out, err := c.caller.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, classify(err)
	}
	values, err := contractABI.Unpack(method, out)
	if err != nil {
		return nil, errors.ErrRejected(fmt.Errorf("unpack %s: %w", method, err))
	}
	return values, nil
}

func (c *Client) Submit(ctx context.Context, ref entities.ContractRef, payload *entities.CallPayload) (*entities.TxHandle, error) {
	if c.wallet == nil {
		return nil, errors.ErrNotAuthorized(fmt.Errorf("no wallet configured"))
	}
	if payload.Backend != entities.BackendEVM {
		return nil, errors.ErrInvalidInput(fmt.Errorf("payload built for %s", payload.Backend))
	}
	if !payload.Claim(c.now()) {
		return nil, errors.ErrRejected(fmt.Errorf("payload already submitted or expired at %s", payload.ValidUntil.Format(time.RFC3339)))
	}
	hash, err := c.wallet.Send(ctx, common.HexToAddress(ref.Address), payload)
	if err != nil {
		return nil, classify(err)
	}
	c.log.Info("evm transaction sent",
		zap.String("kind", string(payload.Kind)),
		zap.String("hash", hash),
		zap.Uint64("video_id", payload.VideoID))
	return &entities.TxHandle{
		Hash:        hash,
		Backend:     entities.BackendEVM,
		Contract:    ref.Address,
		SubmittedAt: c.now(),
	}, nil
}

func (c *Client) GetVideos(ctx context.Context) ([]entities.VideoRecord, error) {
	out, err := c.Read(ctx, c.ref(), MethodGetVideos)
	if err != nil {
		return nil, err
	}
	if len(out) != 5 {
		return nil, errors.ErrRejected(fmt.Errorf("getVideos returned %d values", len(out)))
	}
	uploaders, ok1 := out[0].([]common.Address)
	hashes, ok2 := out[1].([]string)
	thumbs, ok3 := out[2].([]string)
	prices, ok4 := out[3].([]*big.Int)
	displayTimes, ok5 := out[4].([]*big.Int)
	if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 {
		return nil, errors.ErrRejected(fmt.Errorf("getVideos returned unexpected types"))
	}
	n := len(uploaders)
	if len(hashes) != n || len(thumbs) != n || len(prices) != n || len(displayTimes) != n {
		return nil, errors.ErrRejected(fmt.Errorf("getVideos arrays differ in length"))
	}

	videos := make([]entities.VideoRecord, 0, n)
	for i := 0; i < n; i++ {
		// getVideos carries no title, flags or counters; getVideoInfo does.
		info, err := c.GetVideoInfo(ctx, uint64(i))
		if err != nil {
			return nil, err
		}
		videos = append(videos, entities.VideoRecord{
			ID:                 uint64(i),
			Backend:            entities.BackendEVM,
			Contract:           c.contract.Hex(),
			Uploader:           uploaders[i].Hex(),
			ContentHash:        hashes[i],
			ThumbnailHash:      thumbs[i],
			Title:              info.Title,
			Description:        info.Description,
			Price:              prices[i],
			DisplayTimeSeconds: displayTimes[i].Int64(),
			Active:             info.Active,
			TotalViews:         info.TotalViews,
			TotalRevenue:       info.TotalRevenue,
		})
	}
	return videos, nil
}

func (c *Client) GetVideoInfo(ctx context.Context, videoID uint64) (*entities.VideoRecord, error) {
	out, err := c.Read(ctx, c.ref(), MethodGetVideoInfo, new(big.Int).SetUint64(videoID))
	if err != nil {
		return nil, err
	}
	if len(out) != 10 {
		return nil, errors.ErrRejected(fmt.Errorf("getVideoInfo returned %d values", len(out)))
	}
	uploader, _ := out[0].(common.Address)
	if uploader == (common.Address{}) {
		return nil, errors.ErrNotFound(fmt.Errorf("evm video %d", videoID))
	}
	v := &entities.VideoRecord{
		ID:            videoID,
		Backend:       entities.BackendEVM,
		Contract:      c.contract.Hex(),
		Uploader:      uploader.Hex(),
		ContentHash:   asString(out[1]),
		ThumbnailHash: asString(out[2]),
		Title:         asString(out[3]),
		Description:   asString(out[4]),
		Price:         asBig(out[5]),
		Active:        asBool(out[7]),
		TotalViews:    asBig(out[8]),
		TotalRevenue:  asBig(out[9]),
	}
	v.DisplayTimeSeconds = asBig(out[6]).Int64()
	return v, nil
}

func (c *Client) HasPurchased(ctx context.Context, videoID uint64, viewer string) (bool, error) {
	out, err := c.Read(ctx, c.ref(), MethodHasPurchased, new(big.Int).SetUint64(videoID), common.HexToAddress(viewer))
	if err != nil {
		return false, err
	}
	return len(out) == 1 && asBool(out[0]), nil
}

func (c *Client) GetTotalViewers(ctx context.Context, videoID uint64) (*big.Int, error) {
	return c.readUint(ctx, MethodGetTotalViewers, new(big.Int).SetUint64(videoID))
}

func (c *Client) VideoCount(ctx context.Context) (*big.Int, error) {
	return c.readUint(ctx, MethodVideoCount)
}

func (c *Client) WithdrawableBalance(ctx context.Context, _ uint64, owner string) (*big.Int, error) {
	return c.readUint(ctx, MethodEarnings, common.HexToAddress(owner))
}

func (c *Client) readUint(ctx context.Context, method string, args ...any) (*big.Int, error) {
	out, err := c.Read(ctx, c.ref(), method, args...)
	if err != nil {
		return nil, err
	}
	if len(out) != 1 {
		return nil, errors.ErrRejected(fmt.Errorf("%s returned %d values", method, len(out)))
	}
	return asBig(out[0]), nil
}

func asBig(v any) *big.Int {
	if n, ok := v.(*big.Int); ok && n != nil {
		return n
	}
	return new(big.Int)
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}
