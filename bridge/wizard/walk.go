package wizard

import (
	"context"

	"github.com/icrc99-bridge/nft-bridge/bridge/core"
)

// Destination is the receiver of an export on the external chain.
type Destination struct {
	Network  core.Network
	Receiver string
}

// Prepare connects the wallet, selects the asset and calculates the costs,
// leaving the wizard in ReviewCosts. destination is only used by exports.
func (w *Wizard) Prepare(
	ctx context.Context, asset core.BridgeableAsset, destination *Destination,
) (*core.BridgeCosts, error) {
	if _, err := w.Connect(ctx); err != nil {
		return nil, err
	}

	if err := w.Next(); err != nil {
		return nil, err
	}

	if err := w.SelectAsset(ctx, asset); err != nil {
		return nil, err
	}

	if destination != nil {
		if err := w.SetDestination(destination.Network, destination.Receiver); err != nil {
			return nil, err
		}
	}

	if err := w.Next(); err != nil {
		return nil, err
	}

	return w.CalculateCosts(ctx)
}

// ApproveAndAdvance approves the cycles allowance when it does not cover the
// compute fee and moves to Execute. An insufficient balance is reported by
// the Execute guard without approving.
func (w *Wizard) ApproveAndAdvance(ctx context.Context) error {
	state := w.State()

	if state.Costs != nil && !state.Costs.HasInsufficientBalance &&
		(state.Allowance == nil || !state.Allowance.Sufficient) {
		if _, err := w.Approve(ctx); err != nil {
			return err
		}
	}

	return w.Next()
}
