package icp

import (
	"context"
	"errors"
	"fmt"

	"github.com/icrc99-bridge/nft-bridge/bridge/core"
)

var errEmptyResult = errors.New("canister returned an empty result")

// invoke runs a canister call unless ctx is already done. The agent has no
// context support so cancellation is only checked between calls.
func invoke(
	ctx context.Context, op string, call func() error,
) error {
	if err := ctx.Err(); err != nil {
		return core.NewError(core.KindNetwork, op, err)
	}

	if err := call(); err != nil {
		return core.Classify(op, err)
	}

	return nil
}

func describeApproveError(e *ApproveError) string {
	switch {
	case e == nil:
		return "unknown error"
	case e.BadFee != nil:
		return fmt.Sprintf("bad fee, expected %s", e.BadFee.ExpectedFee.BigInt())
	case e.InsufficientFunds != nil:
		return fmt.Sprintf("insufficient funds, balance %s", e.InsufficientFunds.Balance.BigInt())
	case e.AllowanceChanged != nil:
		return fmt.Sprintf("allowance changed to %s", e.AllowanceChanged.CurrentAllowance.BigInt())
	case e.Expired != nil:
		return "approval expired"
	case e.TooOld != nil:
		return "request too old"
	case e.CreatedInFuture != nil:
		return "request created in future"
	case e.Duplicate != nil:
		return fmt.Sprintf("duplicate of %s", e.Duplicate.DuplicateOf.BigInt())
	case e.TemporarilyUnavailable != nil:
		return "ledger temporarily unavailable"
	case e.GenericError != nil:
		return fmt.Sprintf("error %s: %s", e.GenericError.ErrorCode.BigInt(), e.GenericError.Message)
	default:
		return "unknown error"
	}
}

func describeTransferError(e *TransferError) string {
	switch {
	case e == nil:
		return "unknown error"
	case e.NonExistingTokenId != nil:
		return "token does not exist"
	case e.InvalidRecipient != nil:
		return "invalid recipient"
	case e.Unauthorized != nil:
		return "caller does not own the token"
	case e.TooOld != nil:
		return "request too old"
	case e.CreatedInFuture != nil:
		return "request created in future"
	case e.Duplicate != nil:
		return fmt.Sprintf("duplicate of %s", e.Duplicate.DuplicateOf.BigInt())
	case e.GenericError != nil:
		return fmt.Sprintf("error %s: %s", e.GenericError.ErrorCode.BigInt(), e.GenericError.Message)
	case e.GenericBatchError != nil:
		return fmt.Sprintf("batch error %s: %s", e.GenericBatchError.ErrorCode.BigInt(), e.GenericBatchError.Message)
	default:
		return "unknown error"
	}
}
