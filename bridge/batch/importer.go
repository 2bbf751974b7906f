package batch

import (
	"context"
	"errors"

	"github.com/hashicorp/go-hclog"
	"github.com/icrc99-bridge/nft-bridge/bridge/core"
	"github.com/icrc99-bridge/nft-bridge/bridge/wizard"
)

var ErrEmptyBatch = errors.New("no assets to import")

type ItemStatus string

const (
	ItemStatusCompleted ItemStatus = "completed"
	ItemStatusFailed    ItemStatus = "failed"
	ItemStatusSkipped   ItemStatus = "skipped"
)

type ItemResult struct {
	Asset  core.BridgeableAsset
	Status ItemStatus
	Result *core.BridgeResult
}

type WizardFactory func() (*wizard.Wizard, error)

// Importer bridges several assets one after another. Every asset runs in its
// own wizard so a failure never stops the remaining assets.
type Importer struct {
	flow      core.Flow
	newWizard WizardFactory
	store     core.RecoveryStore
	logger    hclog.Logger
}

func NewImporter(
	flow core.Flow, newWizard WizardFactory, store core.RecoveryStore, logger hclog.Logger,
) *Importer {
	return &Importer{
		flow:      flow,
		newWizard: newWizard,
		store:     store,
		logger:    logger,
	}
}

func (im *Importer) Run(ctx context.Context, assets []core.BridgeableAsset) ([]ItemResult, error) {
	if len(assets) == 0 {
		return nil, ErrEmptyBatch
	}

	results := make([]ItemResult, 0, len(assets))

	for _, asset := range assets {
		item := im.runOne(ctx, asset)

		im.logger.Info("Batch item processed", "asset", asset, "status", item.Status)

		results = append(results, item)
	}

	return results, nil
}

func (im *Importer) runOne(ctx context.Context, asset core.BridgeableAsset) ItemResult {
	if err := ctx.Err(); err != nil {
		return im.failed(asset, core.NewError(core.KindNetwork, "batch", err))
	}

	if record, err := im.store.Get(asset.Key()); err != nil {
		im.logger.Warn("Failed to read recovery store", "asset", asset, "err", err)
	} else if record != nil && record.Flow == im.flow && record.Status == core.RecoveryStatusCompleted {
		return ItemResult{
			Asset:  asset,
			Status: ItemStatusSkipped,
			Result: &core.BridgeResult{
				Flow:            record.Flow,
				Asset:           asset,
				Success:         true,
				SourceSignature: record.SourceSignature,
				RequestID:       record.RequestID,
			},
		}
	}

	w, err := im.newWizard()
	if err != nil {
		return im.failed(asset, core.NewError(core.KindValidation, "batch", err))
	}

	if err := prepare(ctx, w, asset); err != nil {
		return im.failed(asset, err)
	}

	result, err := w.Execute(ctx)
	if err != nil {
		return im.failed(asset, err)
	}

	if !result.Success {
		return ItemResult{Asset: asset, Status: ItemStatusFailed, Result: result}
	}

	return ItemResult{Asset: asset, Status: ItemStatusCompleted, Result: result}
}

func (im *Importer) failed(asset core.BridgeableAsset, err error) ItemResult {
	im.logger.Error("Batch item failed", "asset", asset, "err", err)

	return ItemResult{
		Asset:  asset,
		Status: ItemStatusFailed,
		Result: core.FailedResult("", im.flow, asset, err),
	}
}

// prepare walks the wizard up to Execute, approving cycles when needed.
func prepare(ctx context.Context, w *wizard.Wizard, asset core.BridgeableAsset) error {
	if _, err := w.Prepare(ctx, asset, nil); err != nil {
		return err
	}

	return w.ApproveAndAdvance(ctx)
}

// Summary counts items per status.
func Summary(items []ItemResult) map[ItemStatus]int {
	summary := make(map[ItemStatus]int, 3)

	for _, item := range items {
		summary[item.Status]++
	}

	return summary
}
