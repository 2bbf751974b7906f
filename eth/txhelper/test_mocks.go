package ethtxhelper

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/mock"
)

// EthClientMock mocks the calls used by the bridge. Methods that are not
// overridden panic through the nil embedded interface.
type EthClientMock struct {
	mock.Mock
	EthClient
}

func (m *EthClientMock) ChainID(ctx context.Context) (*big.Int, error) {
	args := m.Called(ctx)
	res, _ := args.Get(0).(*big.Int)

	return res, args.Error(1)
}

func (m *EthClientMock) BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error) {
	args := m.Called(ctx, account, blockNumber)
	res, _ := args.Get(0).(*big.Int)

	return res, args.Error(1)
}

func (m *EthClientMock) NonceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (uint64, error) {
	args := m.Called(ctx, account, blockNumber)

	return args.Get(0).(uint64), args.Error(1) //nolint:forcetypeassert
}

func (m *EthClientMock) CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error) {
	args := m.Called(ctx, contract, blockNumber)
	res, _ := args.Get(0).([]byte)

	return res, args.Error(1)
}

func (m *EthClientMock) CallContract(
	ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int,
) ([]byte, error) {
	args := m.Called(ctx, call, blockNumber)
	res, _ := args.Get(0).([]byte)

	return res, args.Error(1)
}

func (m *EthClientMock) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	args := m.Called(ctx, account)

	return args.Get(0).(uint64), args.Error(1) //nolint:forcetypeassert
}

func (m *EthClientMock) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	args := m.Called(ctx)
	res, _ := args.Get(0).(*big.Int)

	return res, args.Error(1)
}

func (m *EthClientMock) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	args := m.Called(ctx)
	res, _ := args.Get(0).(*big.Int)

	return res, args.Error(1)
}

func (m *EthClientMock) FeeHistory(
	ctx context.Context, blockCount uint64, lastBlock *big.Int, rewardPercentiles []float64,
) (*ethereum.FeeHistory, error) {
	args := m.Called(ctx, blockCount, lastBlock, rewardPercentiles)
	res, _ := args.Get(0).(*ethereum.FeeHistory)

	return res, args.Error(1)
}

func (m *EthClientMock) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *EthClientMock) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	args := m.Called(ctx, txHash)
	res, _ := args.Get(0).(*types.Receipt)

	return res, args.Error(1)
}
