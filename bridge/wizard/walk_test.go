package wizard

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/icrc99-bridge/nft-bridge/bridge/core"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestWizardPrepareAndApprove(t *testing.T) {
	ctx := context.Background()

	t.Run("approves missing allowance", func(t *testing.T) {
		f := newFixture(t)
		f.expectCosts(5_000_000)

		expiresAt := f.now.Add(time.Hour)
		f.ledger.On("Allowance", mock.Anything, ownerPrincipal, orchestratorPrincipal).
			Return(core.Allowance{Amount: big.NewInt(0)}, nil).Twice()
		f.ledger.On("Allowance", mock.Anything, ownerPrincipal, orchestratorPrincipal).
			Return(core.Allowance{Amount: big.NewInt(1_200_000), ExpiresAt: &expiresAt}, nil).Once()
		f.ledger.On("Balance", mock.Anything, ownerPrincipal).Return(big.NewInt(10_000_000), nil)
		f.ledger.On("Approve", mock.Anything, orchestratorPrincipal, big.NewInt(1_200_000),
			f.now.Add(24*time.Hour)).Return(nil).Once()

		w := f.newWizard(t, nil)

		bridgeCosts, err := w.Prepare(ctx, f.asset, nil)
		require.NoError(t, err)
		require.Equal(t, big.NewInt(2_045_000), bridgeCosts.TotalCost)
		require.Equal(t, StepReviewCosts, w.State().Step)

		require.NoError(t, w.ApproveAndAdvance(ctx))
		require.Equal(t, StepExecute, w.State().Step)
		f.ledger.AssertExpectations(t)
	})

	t.Run("insufficient balance is not approved", func(t *testing.T) {
		f := newFixture(t)
		f.expectCosts(1_000)
		f.expectAllowance(0)

		w := f.newWizard(t, nil)

		_, err := w.Prepare(ctx, f.asset, nil)
		require.NoError(t, err)

		err = w.ApproveAndAdvance(ctx)
		require.ErrorIs(t, err, core.ErrInsufficientBalance)
		require.Equal(t, StepReviewCosts, w.State().Step)
		f.ledger.AssertNotCalled(t, "Approve", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("export requires destination", func(t *testing.T) {
		f := newFixture(t)
		w := f.newWizard(t, nil)

		_, err := w.Prepare(ctx, f.asset, &Destination{Network: core.NetworkDevnet, Receiver: " "})
		require.Equal(t, core.KindValidation, core.KindOf(err))
		require.Equal(t, StepSelectAsset, w.State().Step)
	})
}
