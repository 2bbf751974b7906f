package wizard

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/icrc99-bridge/nft-bridge/bridge/approval"
	"github.com/icrc99-bridge/nft-bridge/bridge/core"
	"github.com/icrc99-bridge/nft-bridge/bridge/costs"
	"github.com/icrc99-bridge/nft-bridge/bridge/mint"
	"github.com/icrc99-bridge/nft-bridge/bridge/progress"
	"github.com/icrc99-bridge/nft-bridge/bridge/transfer"
	"github.com/icrc99-bridge/nft-bridge/telemetry"
)

const (
	ProgressApprove  = "approve"
	ProgressTransfer = "transfer"
	ProgressRequest  = "destination-request"
	ProgressPoll     = "destination-poll"
)

type Config struct {
	Flow         core.Flow
	Source       core.SourceChain
	Reader       core.ChainReader
	Orchestrator core.Orchestrator
	Ledger       core.CyclesLedger
	Store        core.RecoveryStore
	Poll         core.PollConfig
	OnComplete   func(*core.BridgeResult)
	OnProgress   progress.Listener
	Clock        core.Clock
}

// State is a snapshot of the wizard taken under its lock.
type State struct {
	Step           WizardStep
	Executing      bool
	Account        *core.Account
	Asset          *core.BridgeableAsset
	TargetNetwork  core.Network
	Receiver       string
	Costs          *core.BridgeCosts
	Allowance      *core.AllowanceStatus
	PendingRecords []*core.RecoveryRecord
	Progress       []progress.BridgeStep
	Result         *core.BridgeResult
}

// Wizard drives one asset through Connect, SelectAsset, ReviewCosts, Execute
// and Complete.
type Wizard struct {
	flow         core.Flow
	source       core.SourceChain
	reader       core.ChainReader
	store        core.RecoveryStore
	estimator    *costs.Estimator
	approvals    *approval.Manager
	transfers    *transfer.Executor
	poller       *mint.Poller
	onComplete   func(*core.BridgeResult)
	onProgress   progress.Listener
	clock        core.Clock
	logger       hclog.Logger

	lock           sync.Mutex
	step           WizardStep
	executing      bool
	account        *core.Account
	pendingRecords []*core.RecoveryRecord

	// per run state, reset by Restart and Cancel
	runID           string
	asset           *core.BridgeableAsset
	targetNetwork   core.Network
	receiver        string
	costs           *core.BridgeCosts
	allowance       *core.AllowanceStatus
	tracker         *progress.Tracker
	sourceSignature string
	requestID       string
	result          *core.BridgeResult
}

func New(config Config, logger hclog.Logger) (*Wizard, error) {
	if !config.Flow.IsValid() {
		return nil, fmt.Errorf("invalid flow: %s", config.Flow)
	}

	if config.Source == nil || config.Orchestrator == nil || config.Ledger == nil || config.Store == nil {
		return nil, errors.New("source chain, orchestrator, cycles ledger and recovery store are required")
	}

	clock := config.Clock
	if clock == nil {
		clock = time.Now
	}

	logger = logger.Named(string(config.Flow))

	return &Wizard{
		flow:         config.Flow,
		source:       config.Source,
		reader:       config.Reader,
		store:        config.Store,
		estimator:    costs.NewEstimator(config.Orchestrator, logger.Named("costs")).WithClock(clock),
		approvals: approval.NewManager(
			config.Ledger, config.Orchestrator.Principal(), logger.Named("approval")).WithClock(clock),
		transfers:  transfer.NewExecutor(logger.Named("transfer")),
		poller:     mint.NewPoller(config.Orchestrator, config.Store, config.Poll, logger.Named("poll")).WithClock(clock),
		onComplete: config.OnComplete,
		onProgress: config.OnProgress,
		clock:      clock,
		logger:     logger,
		step:       StepConnect,
	}, nil
}

func (w *Wizard) Flow() core.Flow {
	return w.flow
}

func (w *Wizard) State() State {
	w.lock.Lock()
	defer w.lock.Unlock()

	state := State{
		Step:           w.step,
		Executing:      w.executing,
		Account:        w.account,
		Asset:          w.asset,
		TargetNetwork:  w.targetNetwork,
		Receiver:       w.receiver,
		Costs:          w.costs,
		Allowance:      w.allowance,
		PendingRecords: w.pendingRecords,
		Result:         w.result,
	}

	if w.tracker != nil {
		state.Progress = w.tracker.Snapshot()
	}

	return state
}

// Connect connects the wallet and loads requests left pending by earlier sessions.
func (w *Wizard) Connect(ctx context.Context) (core.Account, error) {
	w.lock.Lock()
	defer w.lock.Unlock()

	if err := w.expectStep("connect", StepConnect); err != nil {
		return core.Account{}, err
	}

	account, err := w.source.Wallet().Connect(ctx)
	if err != nil {
		return core.Account{}, core.Classify("connect wallet", err)
	}

	w.account = &account
	w.pendingRecords = w.loadPendingRecords()

	w.logger.Info("Wallet connected", "address", account.Address, "pending", len(w.pendingRecords))

	return account, nil
}

// OwnedAssets lists the token ids the connected wallet holds on the source chain.
func (w *Wizard) OwnedAssets(ctx context.Context) ([]string, error) {
	w.lock.Lock()
	account := w.account
	w.lock.Unlock()

	if account == nil {
		return nil, core.NewError(core.KindValidation, "owned assets", core.ErrWalletNotConnected)
	}

	if w.reader == nil {
		return nil, core.NewError(core.KindValidation, "owned assets",
			fmt.Errorf("listing assets is not supported on %s", w.source.Chain()))
	}

	mints, err := w.reader.GetOwnedNFTs(ctx, account.Address)
	if err != nil {
		return nil, core.Classify("owned assets", err)
	}

	return mints, nil
}

// SelectAsset chooses the asset of this run. An asset with a pending request
// in the recovery store is switched to recovery so that the run resumes.
func (w *Wizard) SelectAsset(ctx context.Context, asset core.BridgeableAsset) error {
	w.lock.Lock()
	defer w.lock.Unlock()

	if err := w.expectStep("select asset", StepSelectAsset); err != nil {
		return err
	}

	if asset.Chain != w.source.Chain() {
		return core.NewError(core.KindValidation, "select asset",
			fmt.Errorf("%s asset can not be bridged from %s", asset.Chain, w.source.Chain()))
	}

	if asset.Metadata == nil && w.reader != nil {
		if metadata, err := w.reader.GetNFTMetadata(ctx, asset.TokenID); err != nil {
			w.logger.Warn("Failed to fetch asset metadata", "asset", asset, "err", err)
		} else if metadata != nil {
			asset = asset.WithMetadata(*metadata)
		}
	}

	record, err := w.store.Get(asset.Key())
	if err != nil {
		w.logger.Warn("Failed to read recovery store", "asset", asset, "err", err)
	} else if isResumable(record, w.flow) && !asset.IsRecovery {
		w.logger.Info("Pending request found, asset switched to recovery",
			"asset", asset, "requestID", record.RequestID)

		asset.IsRecovery = true
	}

	w.asset = &asset
	w.costs = nil
	w.allowance = nil

	return nil
}

// SetDestination sets the external chain receiver of an export.
func (w *Wizard) SetDestination(network core.Network, receiver string) error {
	w.lock.Lock()
	defer w.lock.Unlock()

	if err := w.expectStep("set destination", StepSelectAsset); err != nil {
		return err
	}

	receiver = strings.TrimSpace(receiver)
	if receiver == "" {
		return core.NewError(core.KindValidation, "set destination", errors.New("receiver not specified"))
	}

	w.targetNetwork = network
	w.receiver = receiver
	w.costs = nil
	w.allowance = nil

	return nil
}

// CalculateCosts computes the costs of the selected asset and the current
// cycles allowance against its compute fee.
func (w *Wizard) CalculateCosts(ctx context.Context) (*core.BridgeCosts, error) {
	w.lock.Lock()
	defer w.lock.Unlock()

	if err := w.expectStep("calculate costs", StepReviewCosts); err != nil {
		return nil, err
	}

	bridgeCosts, err := w.estimator.Calculate(ctx, w.source, w.request())
	if err != nil {
		return nil, err
	}

	status, err := w.approvals.Status(ctx, bridgeCosts.ComputeFee)
	if err != nil {
		return nil, err
	}

	w.costs = bridgeCosts
	w.allowance = &status

	return bridgeCosts, nil
}

// Approve ensures the cycles allowance covers the compute fee.
func (w *Wizard) Approve(ctx context.Context) (core.AllowanceStatus, error) {
	w.lock.Lock()
	defer w.lock.Unlock()

	if err := w.expectStep("approve", StepReviewCosts); err != nil {
		return core.AllowanceStatus{}, err
	}

	if w.costs == nil {
		return core.AllowanceStatus{}, core.NewError(core.KindValidation, "approve", errors.New("costs not calculated"))
	}

	status, err := w.approvals.Ensure(ctx, w.costs.ComputeFee)
	if err != nil {
		return status, err
	}

	w.allowance = &status

	return status, nil
}

func (w *Wizard) Next() error {
	w.lock.Lock()
	defer w.lock.Unlock()

	if w.executing {
		return core.NewError(core.KindValidation, "next", ErrExecuting)
	}

	if err := w.guard(w.step); err != nil {
		return err
	}

	return w.move(ActionNext)
}

func (w *Wizard) Back() error {
	w.lock.Lock()
	defer w.lock.Unlock()

	if w.executing {
		return core.NewError(core.KindValidation, "back", ErrExecuting)
	}

	if err := w.move(ActionBack); err != nil {
		return err
	}

	if w.step == StepSelectAsset {
		w.costs = nil
		w.allowance = nil
	}

	return nil
}

// Cancel abandons the current run. It is rejected while executing.
func (w *Wizard) Cancel() error {
	w.lock.Lock()
	defer w.lock.Unlock()

	if w.executing {
		return core.NewError(core.KindValidation, "cancel", ErrExecuting)
	}

	w.logger.Info("Wizard cancelled", "step", w.step)
	w.resetRun()
	w.step = StepConnect

	return nil
}

// Execute runs approval, transfer and the destination request of the selected
// asset and moves to Complete. Failures are returned inside the result.
func (w *Wizard) Execute(ctx context.Context) (*core.BridgeResult, error) {
	w.lock.Lock()

	if w.executing {
		w.lock.Unlock()

		return nil, core.NewError(core.KindValidation, "execute", ErrExecuting)
	}

	if err := w.expectStep("execute", StepExecute); err != nil {
		w.lock.Unlock()

		return nil, err
	}

	if err := w.executeGuard(); err != nil {
		w.lock.Unlock()

		return nil, err
	}

	if w.tracker == nil {
		w.runID = uuid.NewString()
		w.tracker = progress.NewTracker(progressSteps(w.flow)...)

		if w.onProgress != nil {
			w.tracker.OnUpdate(w.onProgress)
		}
	}

	w.executing = true
	w.result = nil
	run := w.snapshotRun()

	w.lock.Unlock()

	result := w.run(ctx, run)

	w.lock.Lock()
	defer w.lock.Unlock()

	w.executing = false
	w.result = result
	w.sourceSignature = result.SourceSignature
	w.requestID = result.RequestID

	if err := w.move(ActionFinish); err != nil {
		w.logger.Error("Failed to complete wizard", "err", err)
	}

	return result, nil
}

// Retry re-runs a failed execution from the failed step, keeping completed steps.
func (w *Wizard) Retry(ctx context.Context) (*core.BridgeResult, error) {
	w.lock.Lock()

	if w.result == nil || w.result.Success || w.tracker == nil {
		w.lock.Unlock()

		return nil, core.NewError(core.KindValidation, "retry", errors.New("no failed execution to retry"))
	}

	if !w.result.ErrorKind.Retryable() {
		w.lock.Unlock()

		return nil, core.NewError(core.KindValidation, "retry",
			fmt.Errorf("%s can not be retried without changing the request", w.result.ErrorKind))
	}

	if failed, ok := w.tracker.FirstFailed(); ok {
		if err := w.tracker.Retry(failed); err != nil {
			w.lock.Unlock()

			return nil, err
		}
	}

	if err := w.move(ActionRetry); err != nil {
		w.lock.Unlock()

		return nil, err
	}

	w.lock.Unlock()

	return w.Execute(ctx)
}

// Restart clears every per run value so a new asset can be bridged.
func (w *Wizard) Restart() error {
	w.lock.Lock()
	defer w.lock.Unlock()

	if err := w.move(ActionRestart); err != nil {
		return err
	}

	w.resetRun()

	return nil
}

// Close hands the result to the completion callback.
func (w *Wizard) Close() error {
	w.lock.Lock()

	if err := w.expectStep("close", StepComplete); err != nil {
		w.lock.Unlock()

		return err
	}

	result, onComplete := w.result, w.onComplete

	w.lock.Unlock()

	if onComplete != nil {
		onComplete(result)
	}

	return nil
}

type runInput struct {
	runID           string
	asset           core.BridgeableAsset
	account         core.Account
	costs           *core.BridgeCosts
	request         core.BridgeRequest
	tracker         *progress.Tracker
	sourceSignature string
	requestID       string
}

func (w *Wizard) snapshotRun() runInput {
	return runInput{
		runID:           w.runID,
		asset:           *w.asset,
		account:         *w.account,
		costs:           w.costs,
		request:         w.request(),
		tracker:         w.tracker,
		sourceSignature: w.sourceSignature,
		requestID:       w.requestID,
	}
}

func (w *Wizard) run(ctx context.Context, in runInput) (result *core.BridgeResult) {
	logger := w.logger.With("runID", in.runID, "asset", in.asset)
	sourceSignature, requestID := in.sourceSignature, in.requestID

	span, ctx := telemetry.StartSpan(ctx, "bridge.execute", map[string]string{
		"flow":  string(w.flow),
		"asset": in.asset.Key(),
	})

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Bridge execution panicked", "panic", r, "stack", string(debug.Stack()))

			err := core.NewError(core.KindProtocol, "execute", fmt.Errorf("unexpected failure: %v", r))

			for _, step := range in.tracker.Snapshot() {
				if step.Status == progress.StepStatusLoading {
					w.update(in.tracker.Fail(step.ID, err))
				}
			}

			result = w.failedResult(in, sourceSignature, requestID, err)
		}

		if result.Success {
			telemetry.UpdateBridgeRunsSucceeded(string(w.flow))
		} else {
			telemetry.UpdateBridgeRunsFailed(string(w.flow), string(result.ErrorKind))
		}

		span.Finish()
	}()

	logger.Info("Bridge execution started")
	telemetry.UpdateBridgeRunsStarted(string(w.flow))

	if !isDone(in.tracker, ProgressApprove) {
		w.update(in.tracker.Start(ProgressApprove))

		if _, err := w.approvals.Ensure(ctx, in.costs.ComputeFee); err != nil {
			w.update(in.tracker.Fail(ProgressApprove, err))

			return w.failedResult(in, sourceSignature, requestID, err)
		}

		w.update(in.tracker.Complete(ProgressApprove, ""))
	}

	if !isDone(in.tracker, ProgressTransfer) {
		res, err := w.transfers.Execute(
			ctx, w.source, in.asset, in.account.Address, in.costs.ApprovalAddress, in.tracker, ProgressTransfer)
		if err != nil {
			return w.failedResult(in, sourceSignature, requestID, err)
		}

		if res.Skipped {
			telemetry.UpdateTransfersSkipped(string(w.source.Chain()))
		} else {
			sourceSignature = res.Receipt.Signature
			telemetry.UpdateTransfersSubmitted(string(w.source.Chain()))
		}
	}

	req := mint.Request{
		Flow:            w.flow,
		AssetKey:        in.asset.Key(),
		SourceSignature: sourceSignature,
	}

	if w.flow == core.FlowExport {
		castReq := costs.NewCastRequest(in.request, in.costs.DestinationCanister, in.costs.RemoteContract)
		req.Cast = &castReq
	} else {
		mintReq := costs.NewMintRequest(in.request, in.costs.DestinationCanister)
		req.Mint = &mintReq
	}

	res, err := w.poller.Run(ctx, req, in.tracker, mint.StepIDs{Submit: ProgressRequest, Poll: ProgressPoll})
	if res.SourceSignature != "" {
		sourceSignature = res.SourceSignature
	}

	if res.RequestID != "" {
		requestID = res.RequestID
	}

	if err != nil {
		result := w.failedResult(in, sourceSignature, requestID, err)
		result.Warning = res.Warning

		return result
	}

	logger.Info("Bridge execution succeeded", "requestID", res.RequestID, "txID", res.TxID)

	return &core.BridgeResult{
		RunID:               in.runID,
		Flow:                w.flow,
		Asset:               in.asset,
		Success:             true,
		SourceSignature:     sourceSignature,
		DestinationTxHash:   res.TxID,
		DestinationCanister: in.costs.DestinationCanister,
		RequestID:           requestID,
		Warning:             res.Warning,
	}
}

func (w *Wizard) failedResult(in runInput, sourceSignature, requestID string, err error) *core.BridgeResult {
	w.logger.Error("Bridge execution failed", "runID", in.runID, "asset", in.asset,
		"sourceSignature", sourceSignature, "requestID", requestID, "err", err)

	result := core.FailedResult(in.runID, w.flow, in.asset, err)
	result.SourceSignature = sourceSignature
	result.RequestID = requestID

	if in.costs != nil {
		result.DestinationCanister = in.costs.DestinationCanister
	}

	return result
}

func (w *Wizard) guard(step WizardStep) error {
	switch step {
	case StepConnect:
		if w.account == nil || !w.source.Wallet().IsConnected() {
			return core.NewError(core.KindValidation, "next", core.ErrWalletNotConnected)
		}
	case StepSelectAsset:
		if w.asset == nil {
			return core.NewError(core.KindValidation, "next", errors.New("asset not selected"))
		}

		if w.flow == core.FlowExport && w.receiver == "" {
			return core.NewError(core.KindValidation, "next", errors.New("receiver not specified"))
		}
	case StepReviewCosts:
		return w.executeGuard()
	}

	return nil
}

// executeGuard is the precondition of entering and running Execute.
func (w *Wizard) executeGuard() error {
	switch {
	case w.account == nil || !w.source.Wallet().IsConnected():
		return core.NewError(core.KindValidation, "execute", core.ErrWalletNotConnected)
	case w.asset == nil:
		return core.NewError(core.KindValidation, "execute", errors.New("asset not selected"))
	case w.costs == nil:
		return core.NewError(core.KindValidation, "execute", errors.New("costs not calculated"))
	case w.costs.HasInsufficientBalance:
		return core.NewError(core.KindValidation, "execute", fmt.Errorf(
			"%w: balance %s is lower than total cost %s",
			core.ErrInsufficientBalance, w.costs.Balance, w.costs.TotalCost))
	case w.allowance == nil || !w.allowance.Sufficient ||
		(w.allowance.ExpiresAt != nil && !w.clock().Before(*w.allowance.ExpiresAt)):
		return core.NewError(core.KindValidation, "execute", errors.New("cycles allowance not approved"))
	}

	return nil
}

func (w *Wizard) expectStep(op string, step WizardStep) error {
	if w.executing {
		return core.NewError(core.KindValidation, op, ErrExecuting)
	}

	if w.step != step {
		return core.NewError(core.KindValidation, op,
			fmt.Errorf("%w: %s is not allowed in %s", ErrInvalidTransition, op, w.step))
	}

	return nil
}

func (w *Wizard) move(action Action) error {
	next, err := transition(w.step, action)
	if err != nil {
		return core.NewError(core.KindValidation, action.String(), err)
	}

	w.logger.Debug("Wizard step changed", "from", w.step, "to", next)
	w.step = next

	return nil
}

func (w *Wizard) request() core.BridgeRequest {
	req := core.BridgeRequest{
		Flow:          w.flow,
		TargetNetwork: w.targetNetwork,
		Receiver:      w.receiver,
	}

	if w.asset != nil {
		req.Asset = *w.asset
	}

	if w.account != nil {
		req.Account = *w.account
	}

	return req
}

func (w *Wizard) resetRun() {
	w.runID = ""
	w.asset = nil
	w.targetNetwork = ""
	w.receiver = ""
	w.costs = nil
	w.allowance = nil
	w.tracker = nil
	w.sourceSignature = ""
	w.requestID = ""
	w.result = nil
	w.pendingRecords = w.loadPendingRecords()
}

func (w *Wizard) loadPendingRecords() []*core.RecoveryRecord {
	records, err := w.store.List()
	if err != nil {
		w.logger.Warn("Failed to list recovery records", "err", err)

		return nil
	}

	pending := make([]*core.RecoveryRecord, 0, len(records))

	for _, record := range records {
		if isResumable(record, w.flow) {
			pending = append(pending, record)
		}
	}

	return pending
}

func (w *Wizard) update(err error) {
	if err != nil {
		w.logger.Warn("Progress update rejected", "err", err)
	}
}

func isResumable(record *core.RecoveryRecord, flow core.Flow) bool {
	return record != nil && record.Status == core.RecoveryStatusPending &&
		record.RequestID != "" && record.Flow == flow
}

func isDone(tracker *progress.Tracker, id string) bool {
	step, ok := tracker.Step(id)

	return ok && (step.Status == progress.StepStatusCompleted || step.Status == progress.StepStatusSkipped)
}

func progressSteps(flow core.Flow) []progress.StepDefinition {
	transferTitle, requestTitle, pollTitle := "Transfer NFT", "Request mint", "Wait for mint"

	switch flow {
	case core.FlowBurn:
		transferTitle = "Burn cast NFT"
	case core.FlowExport:
		requestTitle, pollTitle = "Request cast", "Wait for cast"
	}

	return []progress.StepDefinition{
		{
			ID: ProgressApprove, Title: "Approve cycles", Stage: progress.StageDestination,
			Description: "allow the orchestrator to charge the compute fee",
		},
		{
			ID: ProgressTransfer, Title: transferTitle, Stage: progress.StageSource,
			Description: "move the NFT to the approval address",
		},
		{
			ID: ProgressRequest, Title: requestTitle, Stage: progress.StageDestination,
		},
		{
			ID: ProgressPoll, Title: pollTitle, Stage: progress.StageDestination,
		},
	}
}
