package eth

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/hashicorp/go-hclog"
	"github.com/icrc99-bridge/nft-bridge/bridge/core"
	ethtxhelper "github.com/icrc99-bridge/nft-bridge/eth/txhelper"
)

// ERC721Source moves ERC-721 tokens with safeTransferFrom. EVM addresses
// need no account creation so the creation fee is always zero.
type ERC721Source struct {
	txHelper ethtxhelper.IEthTxHelper
	wallet   *EVMWallet
	config   core.EVMConfig
	logger   hclog.Logger
}

var _ core.SourceChain = (*ERC721Source)(nil)

func NewERC721Source(
	txHelper ethtxhelper.IEthTxHelper, wallet *EVMWallet, config core.EVMConfig, logger hclog.Logger,
) *ERC721Source {
	return &ERC721Source{
		txHelper: txHelper,
		wallet:   wallet,
		config:   config,
		logger:   logger,
	}
}

func (s *ERC721Source) Chain() core.ChainType {
	return core.ChainTypeEVM
}

func (s *ERC721Source) Wallet() core.Wallet {
	return s.wallet
}

func (s *ERC721Source) Locate(
	ctx context.Context, asset core.BridgeableAsset, owner, target string,
) (core.AssetLocation, error) {
	contract, tokenID, err := s.bind(asset)
	if err != nil {
		return core.AssetLocationNotFound, err
	}

	ownerAddr, err := parseAddress("owner", owner)
	if err != nil {
		return core.AssetLocationNotFound, err
	}

	targetAddr, err := parseAddress("approval address", target)
	if err != nil {
		return core.AssetLocationNotFound, err
	}

	holder, err := contract.OwnerOf(ctx, tokenID)
	if err != nil {
		// ownerOf reverts for burned or never minted tokens
		if ethtxhelper.IsRevertError(err) {
			return core.AssetLocationNotFound, nil
		}

		return core.AssetLocationNotFound, fmt.Errorf("failed to get owner of %s: %w", asset, err)
	}

	switch holder {
	case ownerAddr:
		return core.AssetLocationInWallet, nil
	case targetAddr:
		return core.AssetLocationAtTarget, nil
	default:
		return core.AssetLocationNotFound, nil
	}
}

func (s *ERC721Source) QuoteFees(ctx context.Context, _ core.BridgeableAsset, _ string) (core.SourceFee, error) {
	fee, err := s.txHelper.SuggestFee(ctx, s.config.GasLimit)
	if err != nil {
		return core.SourceFee{}, fmt.Errorf("failed to suggest fee: %w", err)
	}

	return core.SourceFee{
		BaseFee:            fee,
		AccountCreationFee: new(big.Int),
	}, nil
}

func (s *ERC721Source) Transfer(
	ctx context.Context, asset core.BridgeableAsset, target string,
) (core.TransferReceipt, error) {
	contract, tokenID, err := s.bind(asset)
	if err != nil {
		return core.TransferReceipt{}, err
	}

	targetAddr, err := parseAddress("approval address", target)
	if err != nil {
		return core.TransferReceipt{}, err
	}

	from := s.wallet.Address()

	tx, err := s.txHelper.PrepareTx(ctx, from, bind.TransactOpts{GasLimit: s.config.GasLimit},
		func(opts *bind.TransactOpts) (*types.Transaction, error) {
			return contract.SafeTransferFrom(opts, from, targetAddr, tokenID)
		})
	if err != nil {
		return core.TransferReceipt{}, fmt.Errorf("failed to prepare transfer: %w", err)
	}

	hash, err := s.wallet.SignAndSend(ctx, tx)
	if err != nil {
		return core.TransferReceipt{}, err
	}

	s.logger.Info("Transfer sent, waiting for receipt", "asset", asset, "target", target, "hash", hash)

	if err := s.wallet.ConfirmTransaction(ctx, hash, core.CommitmentFinalized); err != nil {
		return core.TransferReceipt{}, fmt.Errorf("transfer %s not confirmed: %w", hash, err)
	}

	return core.TransferReceipt{Signature: hash}, nil
}

func (s *ERC721Source) bind(asset core.BridgeableAsset) (*ERC721, *big.Int, error) {
	address, err := parseAddress("contract", asset.Contract)
	if err != nil {
		return nil, nil, err
	}

	tokenID, err := ParseTokenID(asset.TokenID)
	if err != nil {
		return nil, nil, err
	}

	contract, err := NewERC721(address, s.txHelper.GetClient())
	if err != nil {
		return nil, nil, err
	}

	return contract, tokenID, nil
}

// ParseTokenID accepts decimal or 0x prefixed hexadecimal token ids.
func ParseTokenID(value string) (*big.Int, error) {
	tokenID, ok := new(big.Int).SetString(strings.TrimSpace(value), 0)
	if !ok || tokenID.Sign() < 0 {
		return nil, core.NewError(core.KindValidation, "parse token id", fmt.Errorf("invalid token id %s", value))
	}

	return tokenID, nil
}
