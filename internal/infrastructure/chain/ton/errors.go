package ton

import (
	stderrors "errors"

	"ppv-marketplace/pkg/errors"

	"github.com/xssnick/tonutils-go/ton"
)

// classify maps tonutils failures onto the chain error kinds. A non-zero
// TVM exit code means the contract refused; everything else is treated as
// the liteserver being unreachable.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var ce *errors.ChainError
	if stderrors.As(err, &ce) {
		return err
	}
	var execErr ton.ContractExecError
	if stderrors.As(err, &execErr) {
		return errors.ErrRejected(err)
	}
	return errors.ErrNetworkUnavailable(err)
}
