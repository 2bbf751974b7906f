package icp

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync/atomic"

	"github.com/aviate-labs/agent-go/identity"
	"github.com/aviate-labs/agent-go/principal"
	"github.com/hashicorp/go-hclog"
	"github.com/icrc99-bridge/nft-bridge/bridge/core"
	"github.com/icrc99-bridge/nft-bridge/common"
)

// UpdateCall is the IC counterpart of a transaction. Receipt interprets
// Result after the call and returns the id recorded as its signature.
type UpdateCall struct {
	Canister principal.Principal
	Method   string
	Args     []any
	Result   any
	Summary  string
	Receipt  func() (string, error)
}

// IdentityWallet signs update calls with the identity of the agent. Cycles
// held on the cycles ledger are the balance of the wallet.
type IdentityWallet struct {
	caller    CanisterCaller
	sender    principal.Principal
	ledger    core.CyclesLedger
	approver  common.Approver
	connected atomic.Bool
	logger    hclog.Logger
}

var _ core.Wallet = (*IdentityWallet)(nil)

func NewIdentityWallet(
	caller CanisterCaller, id identity.Identity, ledger core.CyclesLedger,
	approver common.Approver, logger hclog.Logger,
) *IdentityWallet {
	return &IdentityWallet{
		caller:   caller,
		sender:   id.Sender(),
		ledger:   ledger,
		approver: approver,
		logger:   logger,
	}
}

func (w *IdentityWallet) Principal() principal.Principal {
	return w.sender
}

func (w *IdentityWallet) Connect(_ context.Context) (core.Account, error) {
	if w.sender.String() == principal.AnonymousID.String() {
		return core.Account{}, core.NewError(core.KindValidation, "connect",
			errors.New("anonymous identity cannot own tokens"))
	}

	w.connected.Store(true)

	return core.Account{Address: w.sender.String(), Chain: core.ChainTypeICP}, nil
}

func (w *IdentityWallet) IsConnected() bool {
	return w.connected.Load()
}

func (w *IdentityWallet) GetBalance(ctx context.Context, address string) (*big.Int, error) {
	return w.ledger.Balance(ctx, address)
}

// GetAccountInfo returns nil for principals without cycles.
func (w *IdentityWallet) GetAccountInfo(ctx context.Context, address string) (*core.AccountData, error) {
	balance, err := w.ledger.Balance(ctx, address)
	if err != nil || balance.Sign() == 0 {
		return nil, err
	}

	data := &core.AccountData{Owner: address}
	if balance.IsUint64() {
		data.Lamports = balance.Uint64()
	}

	return data, nil
}

func (w *IdentityWallet) SignAndSend(ctx context.Context, tx any) (string, error) {
	if !w.IsConnected() {
		return "", core.NewError(core.KindValidation, "sign", core.ErrWalletNotConnected)
	}

	call, ok := tx.(*UpdateCall)
	if !ok {
		return "", core.NewError(core.KindValidation, "sign", fmt.Errorf("unsupported transaction type %T", tx))
	}

	if w.approver != nil {
		approved, err := w.approver(ctx, call.Summary)
		if err != nil {
			return "", err
		}

		if !approved {
			return "", core.NewError(core.KindUserRejected, "sign", core.ErrUserRejected)
		}
	}

	err := invoke(ctx, call.Method, func() error {
		return w.caller.Call(call.Canister, call.Method, call.Args, []any{call.Result})
	})
	if err != nil {
		return "", err
	}

	receipt, err := call.Receipt()
	if err != nil {
		return "", err
	}

	w.logger.Debug("Update call executed", "canister", call.Canister, "method", call.Method, "receipt", receipt)

	return receipt, nil
}

// ConfirmTransaction does nothing since update calls return after the
// replica certified their result.
func (w *IdentityWallet) ConfirmTransaction(context.Context, string, core.Commitment) error {
	return nil
}
