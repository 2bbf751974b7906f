package approval

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/icrc99-bridge/nft-bridge/bridge/core"
	"github.com/icrc99-bridge/nft-bridge/telemetry"
	"github.com/shopspring/decimal"
)

const ApprovalExpiry = 24 * time.Hour

// approvalBuffer absorbs fee changes between approval and the last canister call
// of a multi step operation.
var approvalBuffer = decimal.RequireFromString("1.2")

type Manager struct {
	ledger  core.CyclesLedger
	spender string
	logger  hclog.Logger
	now     core.Clock
}

func NewManager(ledger core.CyclesLedger, spender string, logger hclog.Logger) *Manager {
	return &Manager{
		ledger:  ledger,
		spender: spender,
		logger:  logger,
		now:     time.Now,
	}
}

func (m *Manager) WithClock(now core.Clock) *Manager {
	m.now = now

	return m
}

func (m *Manager) Status(ctx context.Context, required *big.Int) (core.AllowanceStatus, error) {
	allowance, err := m.ledger.Allowance(ctx, m.ledger.Owner(), m.spender)
	if err != nil {
		return core.AllowanceStatus{}, core.Classify("get allowance", err)
	}

	return core.NewAllowanceStatus(allowance, required, m.now()), nil
}

// Ensure makes sure the spender may spend at least required cycles. It does
// nothing when an unexpired allowance already covers the amount.
func (m *Manager) Ensure(ctx context.Context, required *big.Int) (core.AllowanceStatus, error) {
	status, err := m.Status(ctx, required)
	if err != nil {
		return status, err
	}

	if status.Sufficient {
		m.logger.Debug("Allowance sufficient", "spender", m.spender, "amount", status.Amount, "required", required)

		return status, nil
	}

	balance, err := m.ledger.Balance(ctx, m.ledger.Owner())
	if err != nil {
		return status, core.Classify("get cycles balance", err)
	}

	if balance.Cmp(required) < 0 {
		return status, core.NewError(core.KindValidation, "approve", fmt.Errorf(
			"%w: cycles balance %s is lower than required %s", core.ErrInsufficientBalance, balance, required))
	}

	amount := ApprovalAmount(required)
	expiresAt := m.now().Add(ApprovalExpiry)

	m.logger.Info("Approving cycles allowance",
		"spender", m.spender, "amount", amount, "expiresAt", expiresAt, "expired", status.Expired)

	if err := m.ledger.Approve(ctx, m.spender, amount, expiresAt); err != nil {
		return status, core.Classify("approve", err)
	}

	telemetry.UpdateApprovalsSubmitted()

	status, err = m.Status(ctx, required)
	if err != nil {
		return status, err
	}

	if !status.Sufficient {
		return status, core.NewError(core.KindProtocol, "approve",
			errors.New("allowance still insufficient after approval"))
	}

	return status, nil
}

// ApprovalAmount returns ceil(required * 1.2).
func ApprovalAmount(required *big.Int) *big.Int {
	return decimal.NewFromBigInt(required, 0).Mul(approvalBuffer).Ceil().BigInt()
}
