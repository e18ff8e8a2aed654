// Package chain dials the configured backends and assembles their clients.
package chain

import (
	"context"
	"fmt"
	"time"

	"ppv-marketplace/internal/domain/entities"
	"ppv-marketplace/internal/domain/repositories"
	"ppv-marketplace/internal/infrastructure/chain/evm"
	"ppv-marketplace/internal/infrastructure/chain/ton"
	"ppv-marketplace/internal/pkg/config"

	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"
)

// Clients holds one adapter per enabled backend.
type Clients struct {
	Backends map[entities.Backend]repositories.ChainClient
	closers  []func()
}

func (c *Clients) Close() {
	for _, fn := range c.closers {
		fn()
	}
}

// Connect dials every enabled backend. With a nil approver the clients
// are read-only: no key or mnemonic is loaded.
func Connect(ctx context.Context, cfg *config.Config, approve repositories.Approver, log *zap.Logger) (*Clients, error) {
	out := &Clients{Backends: make(map[entities.Backend]repositories.ChainClient)}

	if cfg.EVM.Enabled {
		client, err := connectEVM(ctx, cfg, approve, log, out)
		if err != nil {
			out.Close()
			return nil, err
		}
		out.Backends[entities.BackendEVM] = client
	}
	if cfg.TON.Enabled {
		client, err := connectTON(ctx, cfg, approve, log)
		if err != nil {
			out.Close()
			return nil, err
		}
		out.Backends[entities.BackendTON] = client
	}
	return out, nil
}

func connectEVM(ctx context.Context, cfg *config.Config, approve repositories.Approver, log *zap.Logger, out *Clients) (*evm.Client, error) {
	dialCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	ec, err := ethclient.DialContext(dialCtx, cfg.EVM.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("dial evm rpc %s: %w", cfg.EVM.RPCURL, err)
	}
	out.closers = append(out.closers, ec.Close)

	var wallet *evm.KeyWallet
	if approve != nil && cfg.EVM.PrivateKey != "" {
		if wallet, err = evm.NewKeyWallet(cfg.EVM.PrivateKey, cfg.EVM.ChainID, ec, approve); err != nil {
			return nil, err
		}
	}
	builder := evm.NewBuilder(cfg.EVM.ContractAddress, cfg.Tx.ValidityWindow, time.Now)
	log.Info("evm backend ready", zap.String("rpc", cfg.EVM.RPCURL), zap.String("contract", cfg.EVM.ContractAddress), zap.Bool("wallet", wallet != nil))
	return evm.NewClient(ec, builder, wallet, log.Named("evm")), nil
}

func connectTON(ctx context.Context, cfg *config.Config, approve repositories.Approver, log *zap.Logger) (*ton.Client, error) {
	dialCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	api, err := ton.Dial(dialCtx, cfg.TON.ConfigURL)
	if err != nil {
		return nil, err
	}
	dir, err := ton.NewDirectory(cfg.TON.RegistryAddress, cfg.TON.VideoContracts)
	if err != nil {
		return nil, err
	}

	var wallet *ton.SeedWallet
	if approve != nil && len(cfg.TON.Mnemonic) > 0 {
		if wallet, err = ton.NewSeedWallet(api, cfg.TON.Mnemonic, approve); err != nil {
			return nil, err
		}
	}
	builder := ton.NewBuilder(cfg.TON.Ops, dir, cfg.TON.WriteFeeNano, cfg.Tx.ValidityWindow, time.Now)
	log.Info("ton backend ready", zap.String("network", cfg.TON.Network), zap.Int("videos", dir.Len()), zap.Bool("wallet", wallet != nil))
	return ton.NewClient(ton.NewLiteGetter(api), builder, wallet, log.Named("ton")), nil
}
