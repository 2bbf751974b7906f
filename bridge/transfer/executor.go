package transfer

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/icrc99-bridge/nft-bridge/bridge/core"
	"github.com/icrc99-bridge/nft-bridge/bridge/progress"
)

type Result struct {
	Location core.AssetLocation
	Receipt  core.TransferReceipt
	Skipped  bool
}

type Executor struct {
	logger hclog.Logger
}

func NewExecutor(logger hclog.Logger) *Executor {
	return &Executor{
		logger: logger,
	}
}

// Execute moves the asset from owner to target, or confirms it is already
// there. Progress of stepID is reported on the tracker.
func (e *Executor) Execute(
	ctx context.Context, source core.SourceChain, asset core.BridgeableAsset,
	owner, target string, tracker *progress.Tracker, stepID string,
) (Result, error) {
	if asset.IsRecovery {
		e.logger.Info("Recovery mode, transfer skipped", "asset", asset)
		e.update(tracker.Skip(stepID))

		return Result{Location: core.AssetLocationAtTarget, Skipped: true}, nil
	}

	e.update(tracker.Start(stepID))

	location, err := source.Locate(ctx, asset, owner, target)
	if err != nil {
		return Result{}, e.fail(tracker, stepID, core.Classify("locate asset", err))
	}

	switch location {
	case core.AssetLocationAtTarget:
		e.logger.Info("Asset already at approval address, transfer skipped", "asset", asset, "target", target)
		e.update(tracker.Skip(stepID))

		return Result{Location: location, Skipped: true}, nil
	case core.AssetLocationNotFound:
		return Result{Location: location}, e.fail(tracker, stepID, core.NewError(core.KindAssetNotOwned, "locate asset",
			fmt.Errorf("%s is neither in wallet %s nor at approval address %s", asset.Key(), owner, target)))
	}

	e.update(tracker.Describe(stepID, "waiting for signature"))

	receipt, err := source.Transfer(ctx, asset, target)
	if err != nil {
		return Result{Location: location}, e.fail(tracker, stepID, core.Classify("transfer", err))
	}

	e.logger.Info("Asset transferred", "asset", asset, "target", target,
		"signature", receipt.Signature, "createdAccount", receipt.CreatedAccount)
	e.update(tracker.Complete(stepID, receipt.Signature))

	return Result{Location: location, Receipt: receipt}, nil
}

func (e *Executor) fail(tracker *progress.Tracker, stepID string, err *core.BridgeError) error {
	e.logger.Error("Transfer failed", "step", stepID, "kind", err.Kind, "err", err.Err)
	e.update(tracker.Fail(stepID, err))

	return err
}

func (e *Executor) update(err error) {
	if err != nil {
		e.logger.Warn("Progress update rejected", "err", err)
	}
}
