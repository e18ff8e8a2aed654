package ton

import (
	"context"
	"fmt"
	"math/big"

	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/liteclient"
	"github.com/xssnick/tonutils-go/ton"
)

// Getter is the liteserver surface the client reads through.
type Getter interface {
	RunGet(ctx context.Context, addr *address.Address, method string, params ...any) ([]any, error)
	Balance(ctx context.Context, addr *address.Address) (*big.Int, error)
}

// Dial connects to the liteservers listed in a global config.
func Dial(ctx context.Context, configURL string) (ton.APIClientWrapped, error) {
	pool := liteclient.NewConnectionPool()
	if err := pool.AddConnectionsFromConfigUrl(ctx, configURL); err != nil {
		return nil, fmt.Errorf("connect liteservers: %w", err)
	}
	return ton.NewAPIClient(pool).WithRetry(), nil
}

type liteGetter struct {
	api ton.APIClientWrapped
}

func NewLiteGetter(api ton.APIClientWrapped) Getter {
	return &liteGetter{api: api}
}

func (g *liteGetter) RunGet(ctx context.Context, addr *address.Address, method string, params ...any) ([]any, error) {
	block, err := g.api.CurrentMasterchainInfo(ctx)
	if err != nil {
		return nil, err
	}
	res, err := g.api.RunGetMethod(ctx, block, addr, method, params...)
	if err != nil {
		return nil, err
	}
	return res.AsTuple(), nil
}

func (g *liteGetter) Balance(ctx context.Context, addr *address.Address) (*big.Int, error) {
	block, err := g.api.CurrentMasterchainInfo(ctx)
	if err != nil {
		return nil, err
	}
	acc, err := g.api.GetAccount(ctx, block, addr)
	if err != nil {
		return nil, err
	}
	if !acc.IsActive || acc.State == nil {
		return new(big.Int), nil
	}
	return acc.State.Balance.Nano(), nil
}
