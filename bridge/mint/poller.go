package mint

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/icrc99-bridge/nft-bridge/bridge/core"
	"github.com/icrc99-bridge/nft-bridge/bridge/progress"
	"github.com/icrc99-bridge/nft-bridge/telemetry"
	"github.com/sethvargo/go-retry"
)

var errNotDone = errors.New("destination operation not complete")

// Request describes one destination side operation. Exactly one of Mint and
// Cast is set, matching Flow.
type Request struct {
	Flow            core.Flow
	AssetKey        string
	SourceSignature string
	Mint            *core.MintRequest
	Cast            *core.CastRequest
}

type Result struct {
	RequestID       string
	TxID            string
	SourceSignature string
	Resumed         bool
	// Warning is set when the recovery store could not record the request.
	// The request id must then be kept by the user, a new run would submit again.
	Warning string
}

type StepIDs struct {
	Submit string
	Poll   string
}

type Poller struct {
	orchestrator core.Orchestrator
	store        core.RecoveryStore
	interval     time.Duration
	maxAttempts  uint64
	clock        core.Clock
	logger       hclog.Logger
}

func NewPoller(
	orchestrator core.Orchestrator, store core.RecoveryStore, config core.PollConfig, logger hclog.Logger,
) *Poller {
	maxAttempts := config.MaxAttempts
	if maxAttempts == 0 {
		maxAttempts = 1
	}

	return &Poller{
		orchestrator: orchestrator,
		store:        store,
		interval:     config.Interval(),
		maxAttempts:  maxAttempts,
		clock:        time.Now,
		logger:       logger,
	}
}

func (p *Poller) WithClock(clock core.Clock) *Poller {
	p.clock = clock

	return p
}

// Run submits the request, or resumes a pending one found in the recovery
// store, and waits until the destination reports a terminal state.
func (p *Poller) Run(
	ctx context.Context, req Request, tracker *progress.Tracker, steps StepIDs,
) (Result, error) {
	if err := validateRequest(req); err != nil {
		return Result{}, err
	}

	result, resumed, err := p.resume(req, tracker, steps)
	if err != nil {
		return Result{}, err
	}

	if !resumed {
		result, err = p.submit(ctx, req, tracker, steps)
		if err != nil {
			return result, err
		}
	}

	return p.poll(ctx, req, result, tracker, steps.Poll)
}

func (p *Poller) resume(
	req Request, tracker *progress.Tracker, steps StepIDs,
) (Result, bool, error) {
	record, err := p.store.Get(req.AssetKey)
	if err != nil {
		return Result{}, false, core.NewError(core.KindProtocol, "read recovery store", err)
	}

	if record == nil || record.Status != core.RecoveryStatusPending || record.RequestID == "" ||
		record.Flow != req.Flow {
		return Result{}, false, nil
	}

	sourceSignature := req.SourceSignature
	if sourceSignature == "" {
		sourceSignature = record.SourceSignature
	}

	p.logger.Info("Resuming pending request", "asset", req.AssetKey, "flow", req.Flow, "requestID", record.RequestID)
	telemetry.UpdateMintRequestsResumed(string(req.Flow))

	if step, ok := tracker.Step(steps.Submit); ok && !step.Status.IsTerminal() {
		p.update(tracker.Describe(steps.Submit, "resuming request "+record.RequestID))
		p.update(tracker.Skip(steps.Submit))
	}

	return Result{
		RequestID:       record.RequestID,
		SourceSignature: sourceSignature,
		Resumed:         true,
	}, true, nil
}

func (p *Poller) submit(
	ctx context.Context, req Request, tracker *progress.Tracker, steps StepIDs,
) (Result, error) {
	p.update(tracker.Start(steps.Submit))

	var (
		requestID string
		err       error
	)

	if req.Flow == core.FlowExport {
		requestID, err = p.orchestrator.Cast(ctx, *req.Cast)
	} else {
		requestID, err = p.orchestrator.Mint(ctx, *req.Mint)
	}

	if err != nil {
		bridgeErr := core.Classify(fmt.Sprintf("submit %s request", req.Flow), err)
		p.logger.Error("Failed to submit request", "asset", req.AssetKey, "kind", bridgeErr.Kind, "err", err)
		p.update(tracker.Fail(steps.Submit, bridgeErr))

		return Result{SourceSignature: req.SourceSignature}, bridgeErr
	}

	p.logger.Info("Request submitted", "asset", req.AssetKey, "flow", req.Flow, "requestID", requestID)
	telemetry.UpdateMintRequestsSubmitted(string(req.Flow))

	result := Result{RequestID: requestID, SourceSignature: req.SourceSignature}

	// persisted before polling so a later session resumes instead of resubmitting
	if err := p.persist(req, requestID, req.SourceSignature, core.RecoveryStatusPending, ""); err != nil {
		result.Warning = fmt.Sprintf(
			"request %s was not saved for recovery (%v), keep the id to resume it instead of bridging again",
			requestID, err)
		p.update(tracker.Describe(steps.Submit, result.Warning))
	}

	p.update(tracker.Complete(steps.Submit, requestID))

	return result, nil
}

func (p *Poller) poll(
	ctx context.Context, req Request, result Result, tracker *progress.Tracker, stepID string,
) (Result, error) {
	p.update(tracker.Start(stepID))

	var (
		attempts  int
		lastStage string
	)

	backoff := retry.WithMaxRetries(p.maxAttempts-1, retry.NewConstant(p.interval))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempts++

		status, err := p.status(ctx, req.Flow, result.RequestID)
		if err != nil {
			p.logger.Debug("Status query failed", "requestID", result.RequestID, "attempt", attempts, "err", err)

			return retry.RetryableError(err)
		}

		if status.stage != "" && status.stage != lastStage {
			lastStage = status.stage
			p.update(tracker.Describe(stepID, status.stage))
		}

		switch {
		case status.failed:
			return core.NewError(core.KindProtocol, "destination operation", errors.New(status.err))
		case status.done:
			result.TxID = status.txID

			return nil
		default:
			return retry.RetryableError(errNotDone)
		}
	})

	telemetry.UpdateMintPollAttempts(string(req.Flow), attempts)

	if err == nil {
		p.logger.Info("Destination operation complete", "asset", req.AssetKey,
			"requestID", result.RequestID, "txID", result.TxID, "attempts", attempts)
		if err := p.persist(req, result.RequestID, result.SourceSignature, core.RecoveryStatusCompleted, ""); err != nil {
			result.Warning = fmt.Sprintf("completion of request %s was not saved for recovery (%v)", result.RequestID, err)
		}

		p.update(tracker.Complete(stepID, result.TxID))

		return result, nil
	}

	var bridgeErr *core.BridgeError
	if errors.As(err, &bridgeErr) && bridgeErr.Kind == core.KindProtocol {
		p.logger.Error("Destination operation failed", "asset", req.AssetKey,
			"requestID", result.RequestID, "sourceSignature", result.SourceSignature, "err", bridgeErr.Err)
		if err := p.persist(
			req, result.RequestID, result.SourceSignature, core.RecoveryStatusFailed, bridgeErr.Err.Error(),
		); err != nil {
			result.Warning = fmt.Sprintf("failure of request %s was not saved for recovery (%v)", result.RequestID, err)
		}

		p.update(tracker.Fail(stepID, bridgeErr))

		return result, bridgeErr
	}

	// the record stays pending with the request id so the poll can be resumed
	bridgeErr = core.NewError(core.KindPollTimeout, "poll destination status",
		fmt.Errorf("request %s not complete after %d attempts: %w", result.RequestID, attempts, err))

	p.logger.Warn("Polling abandoned", "asset", req.AssetKey, "requestID", result.RequestID, "attempts", attempts)
	telemetry.UpdateMintPollTimeouts(string(req.Flow))
	p.update(tracker.Fail(stepID, bridgeErr))

	return result, bridgeErr
}

type operationStatus struct {
	stage  string
	done   bool
	failed bool
	err    string
	txID   string
}

func (p *Poller) status(ctx context.Context, flow core.Flow, requestID string) (operationStatus, error) {
	if flow == core.FlowExport {
		status, err := p.orchestrator.GetCastStatus(ctx, requestID)
		if err != nil {
			return operationStatus{}, err
		}

		return operationStatus{
			stage:  status.Stage,
			done:   status.Finalized,
			failed: status.Failed,
			err:    status.Error,
			txID:   status.TxHash,
		}, nil
	}

	status, err := p.orchestrator.GetMintStatus(ctx, requestID)
	if err != nil {
		return operationStatus{}, err
	}

	return operationStatus{
		stage:  status.Stage,
		done:   status.Done,
		failed: status.Failed,
		err:    status.Error,
		txID:   status.TxID,
	}, nil
}

func (p *Poller) persist(
	req Request, requestID, sourceSignature string, status core.RecoveryStatus, errMsg string,
) error {
	err := p.store.Set(req.AssetKey, &core.RecoveryRecord{
		AssetKey:        req.AssetKey,
		Flow:            req.Flow,
		RequestID:       requestID,
		SourceSignature: sourceSignature,
		Status:          status,
		Error:           errMsg,
		UpdatedAt:       p.clock().UTC(),
	})
	if err != nil {
		p.logger.Error("Failed to write recovery record", "asset", req.AssetKey,
			"requestID", requestID, "status", status, "err", err)

		return fmt.Errorf("failed to write recovery record: %w", err)
	}

	return nil
}

func (p *Poller) update(err error) {
	if err != nil {
		p.logger.Warn("Progress update rejected", "err", err)
	}
}

func validateRequest(req Request) error {
	if req.AssetKey == "" {
		return core.NewError(core.KindValidation, "poll", errors.New("asset key not specified"))
	}

	if req.Flow == core.FlowExport && req.Cast == nil {
		return core.NewError(core.KindValidation, "poll", errors.New("cast request not specified"))
	}

	if req.Flow != core.FlowExport && req.Mint == nil {
		return core.NewError(core.KindValidation, "poll", errors.New("mint request not specified"))
	}

	return nil
}
