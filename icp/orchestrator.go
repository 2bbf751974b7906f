package icp

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/aviate-labs/agent-go/candid/idl"
	"github.com/aviate-labs/agent-go/principal"
	"github.com/hashicorp/go-hclog"
	"github.com/icrc99-bridge/nft-bridge/bridge/core"
)

// OrchestratorClient talks to the ICRC-99 orchestrator canister which maps
// foreign collections to IC canisters, mints imported tokens and casts
// exported ones.
type OrchestratorClient struct {
	caller   CanisterCaller
	canister principal.Principal
	logger   hclog.Logger
}

var _ core.Orchestrator = (*OrchestratorClient)(nil)

func NewOrchestratorClient(caller CanisterCaller, canisterID string, logger hclog.Logger) (*OrchestratorClient, error) {
	canister, err := parsePrincipal("orchestrator canister", canisterID)
	if err != nil {
		return nil, err
	}

	return &OrchestratorClient{
		caller:   caller,
		canister: canister,
		logger:   logger,
	}, nil
}

func (c *OrchestratorClient) Principal() string {
	return c.canister.String()
}

func (c *OrchestratorClient) GetApprovalAddress(
	ctx context.Context, account core.Account, asset core.BridgeableAsset,
) (string, error) {
	var res TextResult

	err := invoke(ctx, "get approval address", func() error {
		return c.caller.Query(c.canister, "get_approval_address", []any{ApprovalAddressArgs{
			Pointer: pointerOf(asset),
			TokenID: asset.TokenID,
			Owner:   account.Address,
		}}, []any{&res})
	})
	if err != nil {
		return "", err
	}

	switch {
	case res.Err != nil:
		return "", core.NewError(core.KindProtocol, "get approval address", errors.New(*res.Err))
	case res.Ok == nil || *res.Ok == "":
		return "", core.NewError(core.KindProtocol, "get approval address", errEmptyResult)
	default:
		return *res.Ok, nil
	}
}

func (c *OrchestratorClient) GetCanister(ctx context.Context, asset core.BridgeableAsset) (string, bool, error) {
	var res *principal.Principal

	err := invoke(ctx, "get canister", func() error {
		return c.caller.Query(c.canister, "get_canister", []any{pointerOf(asset)}, []any{&res})
	})
	if err != nil || res == nil {
		return "", false, err
	}

	return res.String(), true, nil
}

func (c *OrchestratorClient) GetRemoteContract(
	ctx context.Context, canister string, network core.Network,
) (string, bool, error) {
	canisterID, err := parsePrincipal("canister", canister)
	if err != nil {
		return "", false, err
	}

	var res *string

	err = invoke(ctx, "get remote contract", func() error {
		return c.caller.Query(c.canister, "get_remote", []any{RemoteArgs{
			Canister: canisterID,
			Network:  string(network),
		}}, []any{&res})
	})
	if err != nil || res == nil || *res == "" {
		return "", false, err
	}

	return *res, true, nil
}

func (c *OrchestratorClient) MintCost(ctx context.Context, req core.MintRequest) (*big.Int, error) {
	args, err := mintArgs(req)
	if err != nil {
		return nil, err
	}

	var res idl.Nat

	err = invoke(ctx, "mint cost", func() error {
		return c.caller.Query(c.canister, "mint_cost", []any{args}, []any{&res})
	})
	if err != nil {
		return nil, err
	}

	return res.BigInt(), nil
}

func (c *OrchestratorClient) Mint(ctx context.Context, req core.MintRequest) (string, error) {
	args, err := mintArgs(req)
	if err != nil {
		return "", err
	}

	var res NatResult

	err = invoke(ctx, "mint", func() error {
		return c.caller.Call(c.canister, "mint", []any{args}, []any{&res})
	})
	if err != nil {
		return "", err
	}

	id, err := natResultValue("mint", res)
	if err != nil {
		return "", err
	}

	c.logger.Debug("Mint requested", "asset", req.Asset, "requestID", id)

	return id, nil
}

func (c *OrchestratorClient) GetMintStatus(ctx context.Context, requestID string) (core.MintStatus, error) {
	id, err := parseNat("request id", requestID)
	if err != nil {
		return core.MintStatus{}, err
	}

	var res *MintStatus

	err = invoke(ctx, "get mint status", func() error {
		return c.caller.Query(c.canister, "get_mint_status", []any{id}, []any{&res})
	})
	if err != nil {
		return core.MintStatus{}, err
	}

	if res == nil {
		return core.MintStatus{}, core.NewError(core.KindProtocol, "get mint status",
			fmt.Errorf("unknown mint request %s", requestID))
	}

	return core.MintStatus{
		Stage:  res.Stage,
		Done:   res.Done,
		Failed: res.Failed,
		Error:  deref(res.Error),
		TxID:   deref(res.TxID),
	}, nil
}

func (c *OrchestratorClient) CastCost(ctx context.Context, req core.CastRequest) (*big.Int, error) {
	args, err := castArgs(req)
	if err != nil {
		return nil, err
	}

	var res idl.Nat

	err = invoke(ctx, "cast cost", func() error {
		return c.caller.Query(c.canister, "cast_cost", []any{args}, []any{&res})
	})
	if err != nil {
		return nil, err
	}

	return res.BigInt(), nil
}

func (c *OrchestratorClient) Cast(ctx context.Context, req core.CastRequest) (string, error) {
	args, err := castArgs(req)
	if err != nil {
		return "", err
	}

	var res NatResult

	err = invoke(ctx, "cast", func() error {
		return c.caller.Call(c.canister, "cast", []any{args}, []any{&res})
	})
	if err != nil {
		return "", err
	}

	id, err := natResultValue("cast", res)
	if err != nil {
		return "", err
	}

	c.logger.Debug("Cast requested", "asset", req.Asset, "castID", id)

	return id, nil
}

func (c *OrchestratorClient) GetCastStatus(ctx context.Context, castID string) (core.CastStatus, error) {
	id, err := parseNat("cast id", castID)
	if err != nil {
		return core.CastStatus{}, err
	}

	var res *CastStatus

	err = invoke(ctx, "get cast status", func() error {
		return c.caller.Query(c.canister, "get_cast_status", []any{id}, []any{&res})
	})
	if err != nil {
		return core.CastStatus{}, err
	}

	if res == nil {
		return core.CastStatus{}, core.NewError(core.KindProtocol, "get cast status",
			fmt.Errorf("unknown cast %s", castID))
	}

	return core.CastStatus{
		Stage:     res.Stage,
		Finalized: res.Finalized,
		Failed:    res.Failed,
		Error:     deref(res.Error),
		TxHash:    deref(res.TxHash),
	}, nil
}

func pointerOf(asset core.BridgeableAsset) ContractPointer {
	return ContractPointer{
		Chain:    string(asset.Chain),
		Network:  string(asset.Network),
		Contract: asset.Contract,
	}
}

func mintArgs(req core.MintRequest) (MintArgs, error) {
	canister, err := parsePrincipal("destination canister", req.Canister)
	if err != nil {
		return MintArgs{}, err
	}

	return MintArgs{
		Flow:     string(req.Flow),
		Pointer:  pointerOf(req.Asset),
		TokenID:  req.Asset.TokenID,
		Owner:    req.Owner,
		Canister: canister,
	}, nil
}

func castArgs(req core.CastRequest) (CastArgs, error) {
	canister, err := parsePrincipal("canister", req.Canister)
	if err != nil {
		return CastArgs{}, err
	}

	tokenID, err := parseNat("token id", req.Asset.TokenID)
	if err != nil {
		return CastArgs{}, err
	}

	return CastArgs{
		Canister:       canister,
		TokenID:        tokenID,
		Receiver:       req.Receiver,
		Network:        string(req.TargetNetwork),
		RemoteContract: req.RemoteContract,
	}, nil
}

func natResultValue(op string, res NatResult) (string, error) {
	switch {
	case res.Err != nil:
		return "", core.NewError(core.KindProtocol, op, errors.New(*res.Err))
	case res.Ok == nil:
		return "", core.NewError(core.KindProtocol, op, errEmptyResult)
	default:
		return res.Ok.BigInt().String(), nil
	}
}

func parseNat(name, value string) (idl.Nat, error) {
	n, ok := new(big.Int).SetString(value, 10)
	if !ok || n.Sign() < 0 {
		return idl.Nat{}, core.NewError(core.KindValidation, "parse "+name, fmt.Errorf("invalid %s %s", name, value))
	}

	return idl.NewBigNat(n), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}
