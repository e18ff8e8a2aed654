package ton

import (
	"context"
	"encoding/hex"
	"fmt"

	"ppv-marketplace/internal/domain/entities"
	"ppv-marketplace/internal/domain/repositories"
	"ppv-marketplace/pkg/errors"

	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/tlb"
	"github.com/xssnick/tonutils-go/ton"
	"github.com/xssnick/tonutils-go/ton/wallet"
	"github.com/xssnick/tonutils-go/tvm/cell"
)

// MessageSender is satisfied by *wallet.Wallet.
type MessageSender interface {
	WalletAddress() *address.Address
	Send(ctx context.Context, message *wallet.Message, waitConfirmation ...bool) error
}

// SeedWallet sends internal messages from a mnemonic-derived wallet after
// the approver agrees.
type SeedWallet struct {
	sender  MessageSender
	approve repositories.Approver
}

func NewSeedWallet(api ton.APIClientWrapped, words []string, approve repositories.Approver) (*SeedWallet, error) {
	w, err := wallet.FromSeed(api, words, wallet.V4R2)
	if err != nil {
		return nil, fmt.Errorf("open ton wallet: %w", err)
	}
	return NewSenderWallet(w, approve), nil
}

func NewSenderWallet(sender MessageSender, approve repositories.Approver) *SeedWallet {
	return &SeedWallet{sender: sender, approve: approve}
}

func (w *SeedWallet) Address() string {
	return rawAddress(w.sender.WalletAddress())
}

// Send returns the hex hash of the message body; the wallet does not wait
// for inclusion, the poller observes the effect instead.
func (w *SeedWallet) Send(ctx context.Context, dst *address.Address, payload *entities.CallPayload) (string, error) {
	if w.approve != nil {
		ok, err := w.approve(ctx, payload)
		if err != nil {
			return "", errors.ErrUserDeclined(err)
		}
		if !ok {
			return "", errors.ErrUserDeclined(nil)
		}
	}
	body, err := cell.FromBOC(payload.Data)
	if err != nil {
		return "", errors.ErrInvalidInput(fmt.Errorf("decode payload: %w", err))
	}
	msg := wallet.SimpleMessage(dst, tlb.FromNanoTON(payload.Value), body)
	if err := w.sender.Send(ctx, msg, false); err != nil {
		return "", err
	}
	return hex.EncodeToString(body.Hash()), nil
}
