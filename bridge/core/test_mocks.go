package core

import (
	"context"
	"math/big"
	"time"

	"github.com/stretchr/testify/mock"
)

type WalletMock struct {
	mock.Mock
	Connected bool
}

var _ Wallet = (*WalletMock)(nil)

func (m *WalletMock) Connect(ctx context.Context) (Account, error) {
	args := m.Called(ctx)

	if args.Error(1) == nil {
		m.Connected = true
	}

	return args.Get(0).(Account), args.Error(1) //nolint:forcetypeassert
}

func (m *WalletMock) IsConnected() bool {
	return m.Connected
}

func (m *WalletMock) GetBalance(ctx context.Context, address string) (*big.Int, error) {
	args := m.Called(ctx, address)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*big.Int), args.Error(1) //nolint:forcetypeassert
}

func (m *WalletMock) GetAccountInfo(ctx context.Context, address string) (*AccountData, error) {
	args := m.Called(ctx, address)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*AccountData), args.Error(1) //nolint:forcetypeassert
}

func (m *WalletMock) SignAndSend(ctx context.Context, tx any) (string, error) {
	args := m.Called(ctx, tx)

	return args.String(0), args.Error(1)
}

func (m *WalletMock) ConfirmTransaction(ctx context.Context, signature string, commitment Commitment) error {
	return m.Called(ctx, signature, commitment).Error(0)
}

type SourceChainMock struct {
	mock.Mock
	ChainType   ChainType
	WalletValue Wallet
}

var _ SourceChain = (*SourceChainMock)(nil)

func (m *SourceChainMock) Chain() ChainType {
	return m.ChainType
}

func (m *SourceChainMock) Wallet() Wallet {
	return m.WalletValue
}

func (m *SourceChainMock) Locate(
	ctx context.Context, asset BridgeableAsset, owner, target string,
) (AssetLocation, error) {
	args := m.Called(ctx, asset, owner, target)

	return args.Get(0).(AssetLocation), args.Error(1) //nolint:forcetypeassert
}

func (m *SourceChainMock) QuoteFees(ctx context.Context, asset BridgeableAsset, target string) (SourceFee, error) {
	args := m.Called(ctx, asset, target)

	return args.Get(0).(SourceFee), args.Error(1) //nolint:forcetypeassert
}

func (m *SourceChainMock) Transfer(
	ctx context.Context, asset BridgeableAsset, target string,
) (TransferReceipt, error) {
	args := m.Called(ctx, asset, target)

	return args.Get(0).(TransferReceipt), args.Error(1) //nolint:forcetypeassert
}

type OrchestratorMock struct {
	mock.Mock
	PrincipalID string
}

var _ Orchestrator = (*OrchestratorMock)(nil)

func (m *OrchestratorMock) Principal() string {
	return m.PrincipalID
}

func (m *OrchestratorMock) GetApprovalAddress(
	ctx context.Context, account Account, asset BridgeableAsset,
) (string, error) {
	args := m.Called(ctx, account, asset)

	return args.String(0), args.Error(1)
}

func (m *OrchestratorMock) GetCanister(ctx context.Context, asset BridgeableAsset) (string, bool, error) {
	args := m.Called(ctx, asset)

	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *OrchestratorMock) GetRemoteContract(
	ctx context.Context, canister string, network Network,
) (string, bool, error) {
	args := m.Called(ctx, canister, network)

	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *OrchestratorMock) MintCost(ctx context.Context, req MintRequest) (*big.Int, error) {
	args := m.Called(ctx, req)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*big.Int), args.Error(1) //nolint:forcetypeassert
}

func (m *OrchestratorMock) Mint(ctx context.Context, req MintRequest) (string, error) {
	args := m.Called(ctx, req)

	return args.String(0), args.Error(1)
}

func (m *OrchestratorMock) GetMintStatus(ctx context.Context, requestID string) (MintStatus, error) {
	args := m.Called(ctx, requestID)

	return args.Get(0).(MintStatus), args.Error(1) //nolint:forcetypeassert
}

func (m *OrchestratorMock) CastCost(ctx context.Context, req CastRequest) (*big.Int, error) {
	args := m.Called(ctx, req)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*big.Int), args.Error(1) //nolint:forcetypeassert
}

func (m *OrchestratorMock) Cast(ctx context.Context, req CastRequest) (string, error) {
	args := m.Called(ctx, req)

	return args.String(0), args.Error(1)
}

func (m *OrchestratorMock) GetCastStatus(ctx context.Context, castID string) (CastStatus, error) {
	args := m.Called(ctx, castID)

	return args.Get(0).(CastStatus), args.Error(1) //nolint:forcetypeassert
}

type CyclesLedgerMock struct {
	mock.Mock
	OwnerID string
}

var _ CyclesLedger = (*CyclesLedgerMock)(nil)

func (m *CyclesLedgerMock) Owner() string {
	return m.OwnerID
}

func (m *CyclesLedgerMock) Balance(ctx context.Context, owner string) (*big.Int, error) {
	args := m.Called(ctx, owner)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*big.Int), args.Error(1) //nolint:forcetypeassert
}

func (m *CyclesLedgerMock) Approve(ctx context.Context, spender string, amount *big.Int, expiresAt time.Time) error {
	return m.Called(ctx, spender, amount, expiresAt).Error(0)
}

func (m *CyclesLedgerMock) Allowance(ctx context.Context, owner, spender string) (Allowance, error) {
	args := m.Called(ctx, owner, spender)

	return args.Get(0).(Allowance), args.Error(1) //nolint:forcetypeassert
}
