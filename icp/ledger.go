package icp

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/aviate-labs/agent-go/candid/idl"
	"github.com/aviate-labs/agent-go/principal"
	"github.com/hashicorp/go-hclog"
	"github.com/icrc99-bridge/nft-bridge/bridge/core"
	"github.com/icrc99-bridge/nft-bridge/common"
)

// CyclesLedgerClient uses the ICRC-1 and ICRC-2 interface of the cycles ledger.
// Approvals spend cycles of the owner so they are confirmed through approver
// like any other signed call; a nil approver confirms everything.
type CyclesLedgerClient struct {
	caller   CanisterCaller
	canister principal.Principal
	owner    principal.Principal
	approver common.Approver
	logger   hclog.Logger
}

var _ core.CyclesLedger = (*CyclesLedgerClient)(nil)

func NewCyclesLedgerClient(
	caller CanisterCaller, canisterID string, owner principal.Principal,
	approver common.Approver, logger hclog.Logger,
) (*CyclesLedgerClient, error) {
	canister, err := parsePrincipal("cycles ledger canister", canisterID)
	if err != nil {
		return nil, err
	}

	return &CyclesLedgerClient{
		caller:   caller,
		canister: canister,
		owner:    owner,
		approver: approver,
		logger:   logger,
	}, nil
}

func (l *CyclesLedgerClient) Owner() string {
	return l.owner.String()
}

func (l *CyclesLedgerClient) Balance(ctx context.Context, owner string) (*big.Int, error) {
	ownerID, err := parsePrincipal("owner", owner)
	if err != nil {
		return nil, err
	}

	var res idl.Nat

	err = invoke(ctx, "get cycles balance", func() error {
		return l.caller.Query(l.canister, "icrc1_balance_of", []any{Account{Owner: ownerID}}, []any{&res})
	})
	if err != nil {
		return nil, err
	}

	return res.BigInt(), nil
}

func (l *CyclesLedgerClient) Approve(ctx context.Context, spender string, amount *big.Int, expiresAt time.Time) error {
	spenderID, err := parsePrincipal("spender", spender)
	if err != nil {
		return err
	}

	if l.approver != nil {
		approved, err := l.approver(ctx, fmt.Sprintf(
			"approve %s to spend up to %s cycles of %s until %s",
			spender, amount, l.owner, expiresAt.UTC().Format(time.RFC3339)))
		if err != nil {
			return err
		}

		if !approved {
			return core.NewError(core.KindUserRejected, "approve", core.ErrUserRejected)
		}
	}

	expiresAtNanos := uint64(expiresAt.UnixNano()) //nolint:gosec

	var res ApproveResult

	err = invoke(ctx, "approve", func() error {
		return l.caller.Call(l.canister, "icrc2_approve", []any{ApproveArgs{
			Spender:   Account{Owner: spenderID},
			Amount:    idl.NewBigNat(amount),
			ExpiresAt: &expiresAtNanos,
		}}, []any{&res})
	})
	if err != nil {
		return err
	}

	if res.Err != nil {
		reason := errors.New(describeApproveError(res.Err))

		switch {
		case res.Err.InsufficientFunds != nil:
			return core.NewError(core.KindValidation, "approve", fmt.Errorf("%w: %w", core.ErrInsufficientBalance, reason))
		case res.Err.TemporarilyUnavailable != nil:
			return core.NewError(core.KindNetwork, "approve", reason)
		default:
			return core.NewError(core.KindProtocol, "approve", reason)
		}
	}

	if res.Ok != nil {
		l.logger.Debug("Allowance approved", "spender", spender, "amount", amount, "blockIndex", res.Ok.BigInt())
	}

	return nil
}

func (l *CyclesLedgerClient) Allowance(ctx context.Context, owner, spender string) (core.Allowance, error) {
	ownerID, err := parsePrincipal("owner", owner)
	if err != nil {
		return core.Allowance{}, err
	}

	spenderID, err := parsePrincipal("spender", spender)
	if err != nil {
		return core.Allowance{}, err
	}

	var res Allowance

	err = invoke(ctx, "get allowance", func() error {
		return l.caller.Query(l.canister, "icrc2_allowance", []any{AllowanceArgs{
			Account: Account{Owner: ownerID},
			Spender: Account{Owner: spenderID},
		}}, []any{&res})
	})
	if err != nil {
		return core.Allowance{}, err
	}

	allowance := core.Allowance{Amount: res.Allowance.BigInt()}

	if res.ExpiresAt != nil {
		expiresAt := time.Unix(0, int64(*res.ExpiresAt)).UTC() //nolint:gosec
		allowance.ExpiresAt = &expiresAt
	}

	return allowance, nil
}
