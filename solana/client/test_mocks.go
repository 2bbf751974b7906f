package client

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/mock"
)

type RPCClientMock struct {
	mock.Mock
}

var _ RPCClient = (*RPCClientMock)(nil)

func (m *RPCClientMock) GetLatestBlockhash(
	ctx context.Context, commitment rpc.CommitmentType,
) (*rpc.GetLatestBlockhashResult, error) {
	args := m.Called(ctx, commitment)

	return args.Get(0).(*rpc.GetLatestBlockhashResult), args.Error(1) //nolint:forcetypeassert
}

func (m *RPCClientMock) GetAccountInfoWithOpts(
	ctx context.Context, account solana.PublicKey, opts *rpc.GetAccountInfoOpts,
) (*rpc.GetAccountInfoResult, error) {
	args := m.Called(ctx, account, opts)
	res, _ := args.Get(0).(*rpc.GetAccountInfoResult)

	return res, args.Error(1)
}

func (m *RPCClientMock) GetBalance(
	ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType,
) (*rpc.GetBalanceResult, error) {
	args := m.Called(ctx, account, commitment)
	res, _ := args.Get(0).(*rpc.GetBalanceResult)

	return res, args.Error(1)
}

func (m *RPCClientMock) GetMinimumBalanceForRentExemption(
	ctx context.Context, dataSize uint64, commitment rpc.CommitmentType,
) (uint64, error) {
	args := m.Called(ctx, dataSize, commitment)

	return args.Get(0).(uint64), args.Error(1) //nolint:forcetypeassert
}

func (m *RPCClientMock) SendTransactionWithOpts(
	ctx context.Context, tx *solana.Transaction, opts rpc.TransactionOpts,
) (solana.Signature, error) {
	args := m.Called(ctx, tx, opts)

	return args.Get(0).(solana.Signature), args.Error(1) //nolint:forcetypeassert
}

func (m *RPCClientMock) GetSignatureStatuses(
	ctx context.Context, searchTransactionHistory bool, transactionSignatures ...solana.Signature,
) (*rpc.GetSignatureStatusesResult, error) {
	args := m.Called(ctx, searchTransactionHistory, transactionSignatures)
	res, _ := args.Get(0).(*rpc.GetSignatureStatusesResult)

	return res, args.Error(1)
}

func (m *RPCClientMock) GetTokenAccountsByOwner(
	ctx context.Context, owner solana.PublicKey, conf *rpc.GetTokenAccountsConfig, opts *rpc.GetTokenAccountsOpts,
) (*rpc.GetTokenAccountsResult, error) {
	args := m.Called(ctx, owner, conf, opts)
	res, _ := args.Get(0).(*rpc.GetTokenAccountsResult)

	return res, args.Error(1)
}

func (m *RPCClientMock) Close() error {
	return m.Called().Error(0)
}
