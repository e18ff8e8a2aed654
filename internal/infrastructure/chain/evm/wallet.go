package evm

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"ppv-marketplace/internal/domain/entities"
	"ppv-marketplace/internal/domain/repositories"
	"ppv-marketplace/pkg/errors"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// TxBackend is the part of ethclient.Client a signing wallet needs.
type TxBackend interface {
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
}

// KeyWallet signs with a local private key after the approver agrees.
type KeyWallet struct {
	key     *ecdsa.PrivateKey
	address common.Address
	chainID *big.Int
	backend TxBackend
	approve repositories.Approver
}

func NewKeyWallet(hexKey string, chainID int64, backend TxBackend, approve repositories.Approver) (*KeyWallet, error) {
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("parse evm private key: %w", err)
	}
	return &KeyWallet{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
		chainID: big.NewInt(chainID),
		backend: backend,
		approve: approve,
	}, nil
}

func (w *KeyWallet) Address() string { return w.address.Hex() }

func (w *KeyWallet) Send(ctx context.Context, to common.Address, payload *entities.CallPayload) (string, error) {
	if w.approve != nil {
		ok, err := w.approve(ctx, payload)
		if err != nil {
			return "", errors.ErrUserDeclined(err)
		}
		if !ok {
			return "", errors.ErrUserDeclined(nil)
		}
	}

	nonce, err := w.backend.PendingNonceAt(ctx, w.address)
	if err != nil {
		return "", err
	}
	gasPrice, err := w.backend.SuggestGasPrice(ctx)
	if err != nil {
		return "", err
	}
	gas, err := w.backend.EstimateGas(ctx, ethereum.CallMsg{
		From:  w.address,
		To:    &to,
		Value: payload.Value,
		Data:  payload.Data,
	})
	if err != nil {
		return "", err
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gas,
		To:       &to,
		Value:    payload.Value,
		Data:     payload.Data,
	})
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(w.chainID), w.key)
	if err != nil {
		return "", errors.ErrInternal(err)
	}
	if err := w.backend.SendTransaction(ctx, signed); err != nil {
		return "", err
	}
	return signed.Hash().Hex(), nil
}
