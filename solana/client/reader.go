package client

import (
	"context"
	"fmt"
	"strings"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/icrc99-bridge/nft-bridge/bridge/core"
)

var MetadataProgramID = solana.MustPublicKeyFromBase58("metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s")

// metadataAccount is the fixed prefix of a Metaplex token metadata account.
type metadataAccount struct {
	Key             uint8
	UpdateAuthority solana.PublicKey
	Mint            solana.PublicKey
	Name            string
	Symbol          string
	URI             string
}

// ChainReadClient performs read only queries about NFTs.
type ChainReadClient struct {
	client *SolanaClient
}

var _ core.ChainReader = (*ChainReadClient)(nil)

func NewChainReadClient(client *SolanaClient) *ChainReadClient {
	return &ChainReadClient{
		client: client,
	}
}

// GetNFTMetadata returns nil without error for mints without metadata.
func (c *ChainReadClient) GetNFTMetadata(ctx context.Context, mint string) (*core.AssetMetadata, error) {
	mintKey, err := solana.PublicKeyFromBase58(mint)
	if err != nil {
		return nil, core.NewError(core.KindValidation, "get metadata", fmt.Errorf("invalid mint %s: %w", mint, err))
	}

	address, err := MetadataAddress(mintKey)
	if err != nil {
		return nil, err
	}

	account, err := c.client.GetAccountInfo(ctx, address)
	if err != nil {
		return nil, err
	}

	if account == nil || account.Data == nil {
		return nil, nil
	}

	return DecodeMetadata(account.Data.GetBinary())
}

// GetOwnedNFTs returns the mints of every token account of owner holding exactly one token.
func (c *ChainReadClient) GetOwnedNFTs(ctx context.Context, owner string) ([]string, error) {
	ownerKey, err := solana.PublicKeyFromBase58(owner)
	if err != nil {
		return nil, core.NewError(core.KindValidation, "get owned nfts", fmt.Errorf("invalid owner %s: %w", owner, err))
	}

	programID := token.ProgramID

	res, err := c.client.GetRpcClient().GetTokenAccountsByOwner(ctx, ownerKey,
		&rpc.GetTokenAccountsConfig{ProgramId: &programID},
		&rpc.GetTokenAccountsOpts{Commitment: c.client.Commitment(), Encoding: solana.EncodingBase64})
	if err != nil {
		return nil, fmt.Errorf("failed to get token accounts of %s: %w", owner, err)
	}

	mints := make([]string, 0, len(res.Value))

	for _, tokenAccount := range res.Value {
		if tokenAccount == nil || tokenAccount.Account.Data == nil {
			continue
		}

		acc, err := DecodeTokenAccount(tokenAccount.Account.Data.GetBinary())
		if err != nil {
			return nil, fmt.Errorf("failed to decode token account %s: %w", tokenAccount.Pubkey, err)
		}

		if acc.Amount == 1 {
			mints = append(mints, acc.Mint.String())
		}
	}

	return mints, nil
}

func MetadataAddress(mint solana.PublicKey) (solana.PublicKey, error) {
	address, _, err := solana.FindProgramAddress([][]byte{
		[]byte("metadata"),
		MetadataProgramID.Bytes(),
		mint.Bytes(),
	}, MetadataProgramID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive metadata address of %s: %w", mint, err)
	}

	return address, nil
}

func DecodeMetadata(data []byte) (*core.AssetMetadata, error) {
	var account metadataAccount

	if err := bin.NewBorshDecoder(data).Decode(&account); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}

	return &core.AssetMetadata{
		Name:   trimPadding(account.Name),
		Symbol: trimPadding(account.Symbol),
		URI:    trimPadding(account.URI),
	}, nil
}

func DecodeTokenAccount(data []byte) (*token.Account, error) {
	var acc token.Account

	if err := bin.NewBinDecoder(data).Decode(&acc); err != nil {
		return nil, err
	}

	return &acc, nil
}

// on chain strings are padded to a fixed length with NUL bytes
func trimPadding(s string) string {
	return strings.TrimSpace(strings.TrimRight(s, "\x00"))
}
