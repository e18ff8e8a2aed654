package evm

import (
	"context"
	stderrors "errors"

	"ppv-marketplace/pkg/errors"

	"github.com/ethereum/go-ethereum/rpc"
)

// classify maps a go-ethereum failure onto the chain error kinds. JSON-RPC
// errors carry a code (reverts, nonce and funds problems) and mean the node
// answered and refused; anything else means it could not be reached.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var ce *errors.ChainError
	if stderrors.As(err, &ce) {
		return err
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return errors.ErrNetworkUnavailable(err)
	}
	var rpcErr rpc.Error
	if stderrors.As(err, &rpcErr) {
		return errors.ErrRejected(err)
	}
	return errors.ErrNetworkUnavailable(err)
}
