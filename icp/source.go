package icp

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/aviate-labs/agent-go/candid/idl"
	"github.com/hashicorp/go-hclog"
	"github.com/icrc99-bridge/nft-bridge/bridge/core"
)

// ICRC7Source moves ICRC-7 tokens of a bridged collection back to the
// orchestrator for the export flow. IC transfers cost the user nothing.
type ICRC7Source struct {
	caller CanisterCaller
	wallet *IdentityWallet
	logger hclog.Logger
}

var _ core.SourceChain = (*ICRC7Source)(nil)

func NewICRC7Source(caller CanisterCaller, wallet *IdentityWallet, logger hclog.Logger) *ICRC7Source {
	return &ICRC7Source{
		caller: caller,
		wallet: wallet,
		logger: logger,
	}
}

func (s *ICRC7Source) Chain() core.ChainType {
	return core.ChainTypeICP
}

func (s *ICRC7Source) Wallet() core.Wallet {
	return s.wallet
}

func (s *ICRC7Source) Locate(
	ctx context.Context, asset core.BridgeableAsset, owner, target string,
) (core.AssetLocation, error) {
	collection, err := parsePrincipal("collection", asset.Contract)
	if err != nil {
		return core.AssetLocationNotFound, err
	}

	tokenID, err := parseNat("token id", asset.TokenID)
	if err != nil {
		return core.AssetLocationNotFound, err
	}

	var owners []*Account

	err = invoke(ctx, "get owner", func() error {
		return s.caller.Query(collection, "icrc7_owner_of", []any{[]idl.Nat{tokenID}}, []any{&owners})
	})
	if err != nil {
		return core.AssetLocationNotFound, err
	}

	if len(owners) == 0 || owners[0] == nil || owners[0].Subaccount != nil {
		return core.AssetLocationNotFound, nil
	}

	switch owners[0].Owner.String() {
	case owner:
		return core.AssetLocationInWallet, nil
	case target:
		return core.AssetLocationAtTarget, nil
	default:
		return core.AssetLocationNotFound, nil
	}
}

func (s *ICRC7Source) QuoteFees(context.Context, core.BridgeableAsset, string) (core.SourceFee, error) {
	return core.SourceFee{BaseFee: new(big.Int), AccountCreationFee: new(big.Int)}, nil
}

func (s *ICRC7Source) Transfer(
	ctx context.Context, asset core.BridgeableAsset, target string,
) (core.TransferReceipt, error) {
	collection, err := parsePrincipal("collection", asset.Contract)
	if err != nil {
		return core.TransferReceipt{}, err
	}

	targetID, err := parsePrincipal("approval address", target)
	if err != nil {
		return core.TransferReceipt{}, err
	}

	tokenID, err := parseNat("token id", asset.TokenID)
	if err != nil {
		return core.TransferReceipt{}, err
	}

	var results []*TransferResult

	call := &UpdateCall{
		Canister: collection,
		Method:   "icrc7_transfer",
		Args: []any{[]TransferArg{{
			To:      Account{Owner: targetID},
			TokenID: tokenID,
		}}},
		Result:  &results,
		Summary: fmt.Sprintf("transfer token %s of %s to %s", asset.TokenID, asset.Contract, target),
		Receipt: func() (string, error) {
			if len(results) == 0 || results[0] == nil {
				return "", core.NewError(core.KindProtocol, "transfer", errEmptyResult)
			}

			if results[0].Err != nil {
				return "", core.NewError(core.KindProtocol, "transfer",
					errors.New(describeTransferError(results[0].Err)))
			}

			if results[0].Ok == nil {
				return "", core.NewError(core.KindProtocol, "transfer", errEmptyResult)
			}

			return results[0].Ok.BigInt().String(), nil
		},
	}

	txIndex, err := s.wallet.SignAndSend(ctx, call)
	if err != nil {
		return core.TransferReceipt{}, err
	}

	s.logger.Info("Token transferred", "asset", asset, "target", target, "txIndex", txIndex)

	return core.TransferReceipt{Signature: txIndex}, nil
}
