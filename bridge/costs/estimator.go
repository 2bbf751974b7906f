package costs

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/icrc99-bridge/nft-bridge/bridge/core"
)

type Estimator struct {
	orchestrator core.Orchestrator
	logger       hclog.Logger
	now          core.Clock
}

func NewEstimator(orchestrator core.Orchestrator, logger hclog.Logger) *Estimator {
	return &Estimator{
		orchestrator: orchestrator,
		logger:       logger,
		now:          time.Now,
	}
}

func (e *Estimator) WithClock(now core.Clock) *Estimator {
	e.now = now

	return e
}

// Calculate produces the two currency cost of bridging the requested asset:
// the source chain fee paid from the wallet and the compute fee in cycles.
func (e *Estimator) Calculate(
	ctx context.Context, source core.SourceChain, req core.BridgeRequest,
) (*core.BridgeCosts, error) {
	canister, remoteContract, err := e.resolveDestination(ctx, req)
	if err != nil {
		return nil, err
	}

	approvalAddress, err := e.orchestrator.GetApprovalAddress(ctx, req.Account, req.Asset)
	if err != nil {
		return nil, core.Classify("get approval address", err)
	}

	fee, err := source.QuoteFees(ctx, req.Asset, approvalAddress)
	if err != nil {
		return nil, core.Classify("quote source fees", err)
	}

	balance, err := source.Wallet().GetBalance(ctx, req.Account.Address)
	if err != nil {
		return nil, core.Classify("get balance", err)
	}

	computeFee, err := e.computeFee(ctx, req, canister, remoteContract)
	if err != nil {
		return nil, core.Classify("get compute fee", err)
	}

	costs := core.NewBridgeCosts(req.Asset, fee, computeFee, approvalAddress, canister, balance, e.now())
	costs.RemoteContract = remoteContract

	e.logger.Debug("Bridge costs calculated",
		"asset", req.Asset, "total", costs.TotalCost, "balance", costs.Balance,
		"accountCreation", fee.AccountCreationNeeded, "computeFee", costs.ComputeFee,
		"insufficient", costs.HasInsufficientBalance)

	return costs, nil
}

func (e *Estimator) resolveDestination(
	ctx context.Context, req core.BridgeRequest,
) (canister string, remoteContract string, err error) {
	if req.Flow == core.FlowExport {
		canister = req.Asset.Contract

		var exists bool

		remoteContract, exists, err = e.orchestrator.GetRemoteContract(ctx, canister, req.TargetNetwork)
		if err != nil {
			return "", "", core.Classify("get remote contract", err)
		}

		if !exists {
			return "", "", core.NewError(core.KindNotBridged, "get remote contract", fmt.Errorf(
				"collection %s has no contract on %s yet, create the remote contract before exporting",
				canister, req.TargetNetwork))
		}

		return canister, remoteContract, nil
	}

	canister, exists, err := e.orchestrator.GetCanister(ctx, req.Asset)
	if err != nil {
		return "", "", core.Classify("get canister", err)
	}

	if !exists {
		return "", "", core.NewError(core.KindNotBridged, "get canister", fmt.Errorf(
			"collection %s is not bridged yet, run the collection import before bridging its NFTs",
			req.Asset.Contract))
	}

	return canister, "", nil
}

func (e *Estimator) computeFee(
	ctx context.Context, req core.BridgeRequest, canister, remoteContract string,
) (*big.Int, error) {
	if req.Flow == core.FlowExport {
		return e.orchestrator.CastCost(ctx, NewCastRequest(req, canister, remoteContract))
	}

	return e.orchestrator.MintCost(ctx, NewMintRequest(req, canister))
}

func NewMintRequest(req core.BridgeRequest, canister string) core.MintRequest {
	return core.MintRequest{
		Flow:     req.Flow,
		Asset:    req.Asset,
		Owner:    req.Account.Address,
		Canister: canister,
	}
}

func NewCastRequest(req core.BridgeRequest, canister, remoteContract string) core.CastRequest {
	return core.CastRequest{
		Asset:          req.Asset,
		Canister:       canister,
		Receiver:       req.Receiver,
		TargetNetwork:  req.TargetNetwork,
		RemoteContract: remoteContract,
	}
}
