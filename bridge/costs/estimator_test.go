package costs

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/icrc99-bridge/nft-bridge/bridge/core"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestEstimatorCalculate(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	account := core.Account{Address: "owner", Chain: core.ChainTypeSolana}
	asset, err := core.NewBridgeableAsset(core.ChainTypeSolana, core.NetworkDevnet, "assetX", "collection", false)
	require.NoError(t, err)

	req := core.BridgeRequest{Flow: core.FlowImport, Asset: asset, Account: account}
	fee := core.SourceFee{
		BaseFee:               big.NewInt(5_000),
		AccountCreationFee:    big.NewInt(2_040_000),
		AccountCreationNeeded: true,
	}

	setup := func() (*core.OrchestratorMock, *core.SourceChainMock, *core.WalletMock) {
		walletMock := &core.WalletMock{}
		sourceMock := &core.SourceChainMock{ChainType: core.ChainTypeSolana, WalletValue: walletMock}
		orchestratorMock := &core.OrchestratorMock{}

		return orchestratorMock, sourceMock, walletMock
	}

	t.Run("not bridged", func(t *testing.T) {
		orchestratorMock, sourceMock, _ := setup()
		orchestratorMock.On("GetCanister", ctx, asset).Return("", false, nil)

		_, err := NewEstimator(orchestratorMock, hclog.NewNullLogger()).Calculate(ctx, sourceMock, req)
		require.Error(t, err)
		require.Equal(t, core.KindNotBridged, core.KindOf(err))
		require.ErrorContains(t, err, "run the collection import")
	})

	t.Run("canister lookup network error", func(t *testing.T) {
		orchestratorMock, sourceMock, _ := setup()
		orchestratorMock.On("GetCanister", ctx, asset).Return("", false, errors.New("connection refused"))

		_, err := NewEstimator(orchestratorMock, hclog.NewNullLogger()).Calculate(ctx, sourceMock, req)
		require.Equal(t, core.KindNetwork, core.KindOf(err))
	})

	t.Run("invalid asset", func(t *testing.T) {
		orchestratorMock, sourceMock, _ := setup()
		orchestratorMock.On("GetCanister", ctx, asset).Return("canister-1", true, nil)
		orchestratorMock.On("GetApprovalAddress", ctx, account, asset).Return("approval", nil)
		sourceMock.On("QuoteFees", ctx, asset, "approval").Return(core.SourceFee{},
			core.NewError(core.KindValidation, "mint", errors.New("invalid mint address")))

		_, err := NewEstimator(orchestratorMock, hclog.NewNullLogger()).Calculate(ctx, sourceMock, req)
		require.Equal(t, core.KindValidation, core.KindOf(err))
	})

	t.Run("insufficient balance", func(t *testing.T) {
		orchestratorMock, sourceMock, walletMock := setup()
		orchestratorMock.On("GetCanister", ctx, asset).Return("canister-1", true, nil)
		orchestratorMock.On("GetApprovalAddress", ctx, account, asset).Return("approval", nil)
		orchestratorMock.On("MintCost", ctx, NewMintRequest(req, "canister-1")).Return(big.NewInt(1_000_000), nil)
		sourceMock.On("QuoteFees", ctx, asset, "approval").Return(fee, nil)
		walletMock.On("GetBalance", ctx, "owner").Return(big.NewInt(1000), nil)

		costs, err := NewEstimator(orchestratorMock, hclog.NewNullLogger()).WithClock(func() time.Time {
			return now
		}).Calculate(ctx, sourceMock, req)
		require.NoError(t, err)
		require.Equal(t, big.NewInt(2_045_000), costs.TotalCost)
		require.True(t, costs.HasInsufficientBalance)
		require.Equal(t, "approval", costs.ApprovalAddress)
		require.Equal(t, "canister-1", costs.DestinationCanister)
		require.Equal(t, big.NewInt(1_000_000), costs.ComputeFee)
		require.Equal(t, now, costs.CalculatedAt)
	})

	t.Run("existing token account", func(t *testing.T) {
		orchestratorMock, sourceMock, walletMock := setup()
		noCreation := fee
		noCreation.AccountCreationNeeded = false

		orchestratorMock.On("GetCanister", ctx, asset).Return("canister-1", true, nil)
		orchestratorMock.On("GetApprovalAddress", ctx, account, asset).Return("approval", nil)
		orchestratorMock.On("MintCost", ctx, mock.Anything).Return(big.NewInt(10), nil)
		sourceMock.On("QuoteFees", ctx, asset, "approval").Return(noCreation, nil)
		walletMock.On("GetBalance", ctx, "owner").Return(big.NewInt(5_000), nil)

		costs, err := NewEstimator(orchestratorMock, hclog.NewNullLogger()).Calculate(ctx, sourceMock, req)
		require.NoError(t, err)
		require.Equal(t, big.NewInt(5_000), costs.TotalCost)
		require.False(t, costs.HasInsufficientBalance)
	})

	t.Run("export requires remote contract", func(t *testing.T) {
		orchestratorMock, sourceMock, _ := setup()
		icAsset, err := core.NewBridgeableAsset(core.ChainTypeICP, core.NetworkMainnet, "7", "canister-1", false)
		require.NoError(t, err)

		exportReq := core.BridgeRequest{
			Flow: core.FlowExport, Asset: icAsset, Account: account,
			TargetNetwork: core.NetworkDevnet, Receiver: "receiver",
		}

		orchestratorMock.On("GetRemoteContract", ctx, "canister-1", core.NetworkDevnet).Return("", false, nil)

		_, err = NewEstimator(orchestratorMock, hclog.NewNullLogger()).Calculate(ctx, sourceMock, exportReq)
		require.Equal(t, core.KindNotBridged, core.KindOf(err))
		require.ErrorContains(t, err, "create the remote contract")
	})

	t.Run("export", func(t *testing.T) {
		orchestratorMock, sourceMock, walletMock := setup()
		icAsset, err := core.NewBridgeableAsset(core.ChainTypeICP, core.NetworkMainnet, "7", "canister-1", false)
		require.NoError(t, err)

		exportReq := core.BridgeRequest{
			Flow: core.FlowExport, Asset: icAsset, Account: account,
			TargetNetwork: core.NetworkDevnet, Receiver: "receiver",
		}

		orchestratorMock.On("GetRemoteContract", ctx, "canister-1", core.NetworkDevnet).Return("mintX", true, nil)
		orchestratorMock.On("GetApprovalAddress", ctx, account, icAsset).Return("approval", nil)
		orchestratorMock.On("CastCost", ctx, NewCastRequest(exportReq, "canister-1", "mintX")).
			Return(big.NewInt(3_000_000_000), nil)
		sourceMock.On("QuoteFees", ctx, icAsset, "approval").Return(core.SourceFee{BaseFee: big.NewInt(0)}, nil)
		walletMock.On("GetBalance", ctx, "owner").Return(big.NewInt(0), nil)

		costs, err := NewEstimator(orchestratorMock, hclog.NewNullLogger()).Calculate(ctx, sourceMock, exportReq)
		require.NoError(t, err)
		require.Equal(t, "mintX", costs.RemoteContract)
		require.Equal(t, big.NewInt(3_000_000_000), costs.ComputeFee)
		require.False(t, costs.HasInsufficientBalance)
	})
}
