package client

import (
	"context"
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/hashicorp/go-hclog"
	"github.com/icrc99-bridge/nft-bridge/bridge/core"
)

const tokenAccountSize = 165

// SPLSource moves SPL NFTs between associated token accounts.
type SPLSource struct {
	client *SolanaClient
	wallet *KeypairWallet
	config core.SolanaConfig
	logger hclog.Logger
}

var _ core.SourceChain = (*SPLSource)(nil)

func NewSPLSource(
	client *SolanaClient, wallet *KeypairWallet, config core.SolanaConfig, logger hclog.Logger,
) *SPLSource {
	return &SPLSource{
		client: client,
		wallet: wallet,
		config: config,
		logger: logger,
	}
}

func (s *SPLSource) Chain() core.ChainType {
	return core.ChainTypeSolana
}

func (s *SPLSource) Wallet() core.Wallet {
	return s.wallet
}

func (s *SPLSource) Locate(
	ctx context.Context, asset core.BridgeableAsset, owner, target string,
) (core.AssetLocation, error) {
	mint, err := parseKey("mint", asset.TokenID)
	if err != nil {
		return core.AssetLocationNotFound, err
	}

	for _, candidate := range []struct {
		wallet   string
		location core.AssetLocation
	}{
		{owner, core.AssetLocationInWallet},
		{target, core.AssetLocationAtTarget},
	} {
		walletKey, err := parseKey("address", candidate.wallet)
		if err != nil {
			return core.AssetLocationNotFound, err
		}

		holds, err := s.holdsToken(ctx, walletKey, mint)
		if err != nil {
			return core.AssetLocationNotFound, err
		}

		if holds {
			return candidate.location, nil
		}
	}

	return core.AssetLocationNotFound, nil
}

func (s *SPLSource) QuoteFees(ctx context.Context, asset core.BridgeableAsset, target string) (core.SourceFee, error) {
	mint, err := parseKey("mint", asset.TokenID)
	if err != nil {
		return core.SourceFee{}, err
	}

	targetKey, err := parseKey("approval address", target)
	if err != nil {
		return core.SourceFee{}, err
	}

	_, exists, err := s.associatedAccount(ctx, targetKey, mint)
	if err != nil {
		return core.SourceFee{}, err
	}

	creationFee := s.config.AccountCreationFee

	if s.config.QueryRent {
		creationFee, err = s.client.GetMinimumBalanceForRentExemption(ctx, tokenAccountSize)
		if err != nil {
			return core.SourceFee{}, err
		}
	}

	return core.SourceFee{
		BaseFee:               new(big.Int).SetUint64(s.config.BaseTransferFee),
		AccountCreationFee:    new(big.Int).SetUint64(creationFee),
		AccountCreationNeeded: !exists,
	}, nil
}

// Transfer sends the NFT to the associated token account of target, creating
// that account in the same transaction when it does not exist.
func (s *SPLSource) Transfer(
	ctx context.Context, asset core.BridgeableAsset, target string,
) (core.TransferReceipt, error) {
	mint, err := parseKey("mint", asset.TokenID)
	if err != nil {
		return core.TransferReceipt{}, err
	}

	targetKey, err := parseKey("approval address", target)
	if err != nil {
		return core.TransferReceipt{}, err
	}

	owner := s.wallet.PublicKey()

	sourceATA, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return core.TransferReceipt{}, fmt.Errorf("failed to derive source token account: %w", err)
	}

	targetATA, exists, err := s.associatedAccount(ctx, targetKey, mint)
	if err != nil {
		return core.TransferReceipt{}, err
	}

	ixs := make([]solana.Instruction, 0, 2)

	if !exists {
		ixs = append(ixs, associatedtokenaccount.NewCreateInstruction(owner, targetKey, mint).Build())
	}

	ixs = append(ixs, token.NewTransferCheckedInstruction(
		1, 0, sourceATA, mint, targetATA, owner, []solana.PublicKey{}).Build())

	tx, err := s.client.BuildTransaction(ctx, ixs, owner)
	if err != nil {
		return core.TransferReceipt{}, err
	}

	sig, err := s.wallet.SignAndSend(ctx, tx)
	if err != nil {
		return core.TransferReceipt{}, err
	}

	s.logger.Info("Transfer sent, waiting for confirmation", "mint", mint, "target", target, "signature", sig)

	if err := s.wallet.ConfirmTransaction(ctx, sig, core.Commitment(s.client.Commitment())); err != nil {
		return core.TransferReceipt{}, fmt.Errorf("transfer %s not confirmed: %w", sig, err)
	}

	return core.TransferReceipt{Signature: sig, CreatedAccount: !exists}, nil
}

func (s *SPLSource) holdsToken(ctx context.Context, wallet, mint solana.PublicKey) (bool, error) {
	ata, _, err := solana.FindAssociatedTokenAddress(wallet, mint)
	if err != nil {
		return false, fmt.Errorf("failed to derive token account of %s: %w", wallet, err)
	}

	account, err := s.client.GetAccountInfo(ctx, ata)
	if err != nil || account == nil || account.Data == nil {
		return false, err
	}

	acc, err := DecodeTokenAccount(account.Data.GetBinary())
	if err != nil {
		return false, fmt.Errorf("failed to decode token account %s: %w", ata, err)
	}

	return acc.Amount > 0 && acc.Mint.Equals(mint), nil
}

func (s *SPLSource) associatedAccount(
	ctx context.Context, wallet, mint solana.PublicKey,
) (solana.PublicKey, bool, error) {
	ata, _, err := solana.FindAssociatedTokenAddress(wallet, mint)
	if err != nil {
		return solana.PublicKey{}, false, fmt.Errorf("failed to derive token account of %s: %w", wallet, err)
	}

	account, err := s.client.GetAccountInfo(ctx, ata)
	if err != nil {
		return ata, false, err
	}

	return ata, account != nil, nil
}

func parseKey(name, value string) (solana.PublicKey, error) {
	key, err := solana.PublicKeyFromBase58(value)
	if err != nil {
		return solana.PublicKey{}, core.NewError(core.KindValidation, "parse "+name,
			fmt.Errorf("invalid %s %s: %w", name, value, err))
	}

	return key, nil
}
