package transfer

import (
	"context"
	"errors"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/icrc99-bridge/nft-bridge/bridge/core"
	"github.com/icrc99-bridge/nft-bridge/bridge/progress"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestExecutorExecute(t *testing.T) {
	const stepID = "transfer"

	ctx := context.Background()
	asset, err := core.NewBridgeableAsset(core.ChainTypeSolana, core.NetworkDevnet, "assetX", "", false)
	require.NoError(t, err)

	newTracker := func() *progress.Tracker {
		return progress.NewTracker(progress.StepDefinition{ID: stepID, Stage: progress.StageSource})
	}

	t.Run("recovery skips without any chain call", func(t *testing.T) {
		sourceMock := &core.SourceChainMock{}
		tracker := newTracker()
		recovery := asset
		recovery.IsRecovery = true

		res, err := NewExecutor(hclog.NewNullLogger()).Execute(ctx, sourceMock, recovery, "owner", "approval", tracker, stepID)
		require.NoError(t, err)
		require.True(t, res.Skipped)

		step, _ := tracker.Step(stepID)
		require.Equal(t, progress.StepStatusSkipped, step.Status)
		sourceMock.AssertNotCalled(t, "Locate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		sourceMock.AssertNotCalled(t, "Transfer", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("already at target", func(t *testing.T) {
		sourceMock := &core.SourceChainMock{}
		sourceMock.On("Locate", ctx, asset, "owner", "approval").Return(core.AssetLocationAtTarget, nil)
		tracker := newTracker()

		res, err := NewExecutor(hclog.NewNullLogger()).Execute(ctx, sourceMock, asset, "owner", "approval", tracker, stepID)
		require.NoError(t, err)
		require.True(t, res.Skipped)
		require.Equal(t, core.AssetLocationAtTarget, res.Location)

		step, _ := tracker.Step(stepID)
		require.Equal(t, progress.StepStatusSkipped, step.Status)
		sourceMock.AssertNotCalled(t, "Transfer", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("not owned", func(t *testing.T) {
		sourceMock := &core.SourceChainMock{}
		sourceMock.On("Locate", ctx, asset, "owner", "approval").Return(core.AssetLocationNotFound, nil)
		tracker := newTracker()

		_, err := NewExecutor(hclog.NewNullLogger()).Execute(ctx, sourceMock, asset, "owner", "approval", tracker, stepID)
		require.Error(t, err)
		require.Equal(t, core.KindAssetNotOwned, core.KindOf(err))

		step, _ := tracker.Step(stepID)
		require.Equal(t, progress.StepStatusFailed, step.Status)
		require.NotEmpty(t, step.Error)
	})

	t.Run("in wallet transfers", func(t *testing.T) {
		sourceMock := &core.SourceChainMock{}
		sourceMock.On("Locate", ctx, asset, "owner", "approval").Return(core.AssetLocationInWallet, nil)
		sourceMock.On("Transfer", ctx, asset, "approval").
			Return(core.TransferReceipt{Signature: "sigA", CreatedAccount: true}, nil)
		tracker := newTracker()

		res, err := NewExecutor(hclog.NewNullLogger()).Execute(ctx, sourceMock, asset, "owner", "approval", tracker, stepID)
		require.NoError(t, err)
		require.False(t, res.Skipped)
		require.Equal(t, "sigA", res.Receipt.Signature)

		step, _ := tracker.Step(stepID)
		require.Equal(t, progress.StepStatusCompleted, step.Status)
		require.Equal(t, "sigA", step.TxHash)
	})

	t.Run("user rejects signature", func(t *testing.T) {
		sourceMock := &core.SourceChainMock{}
		sourceMock.On("Locate", ctx, asset, "owner", "approval").Return(core.AssetLocationInWallet, nil)
		sourceMock.On("Transfer", ctx, asset, "approval").Return(core.TransferReceipt{}, core.ErrUserRejected)
		tracker := newTracker()

		_, err := NewExecutor(hclog.NewNullLogger()).Execute(ctx, sourceMock, asset, "owner", "approval", tracker, stepID)
		require.ErrorIs(t, err, core.ErrUserRejected)
		require.Equal(t, core.KindUserRejected, core.KindOf(err))
	})

	t.Run("locate network error", func(t *testing.T) {
		sourceMock := &core.SourceChainMock{}
		sourceMock.On("Locate", ctx, asset, "owner", "approval").
			Return(core.AssetLocationNotFound, errors.New("dial tcp: connection refused"))

		_, err := NewExecutor(hclog.NewNullLogger()).Execute(ctx, sourceMock, asset, "owner", "approval", newTracker(), stepID)
		require.Equal(t, core.KindNetwork, core.KindOf(err))
	})
}
