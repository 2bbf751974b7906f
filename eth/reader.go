package eth

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/icrc99-bridge/nft-bridge/bridge/core"
	ethtxhelper "github.com/icrc99-bridge/nft-bridge/eth/txhelper"
)

// ERC721Reader reads token metadata and ownership of one collection.
// Listing owned tokens needs the enumerable extension.
type ERC721Reader struct {
	contract *ERC721
}

var _ core.ChainReader = (*ERC721Reader)(nil)

func NewERC721Reader(txHelper ethtxhelper.IEthTxHelper, contract string) (*ERC721Reader, error) {
	address, err := parseAddress("contract", contract)
	if err != nil {
		return nil, err
	}

	erc721, err := NewERC721(address, txHelper.GetClient())
	if err != nil {
		return nil, err
	}

	return &ERC721Reader{contract: erc721}, nil
}

func (r *ERC721Reader) GetNFTMetadata(ctx context.Context, tokenID string) (*core.AssetMetadata, error) {
	id, err := ParseTokenID(tokenID)
	if err != nil {
		return nil, err
	}

	uri, err := r.contract.TokenURI(ctx, id)
	if err != nil {
		if ethtxhelper.IsRevertError(err) {
			return nil, nil
		}

		return nil, err
	}

	name, err := r.contract.Name(ctx)
	if err != nil {
		return nil, err
	}

	symbol, err := r.contract.Symbol(ctx)
	if err != nil {
		return nil, err
	}

	return &core.AssetMetadata{
		Name:   fmt.Sprintf("%s #%s", name, id),
		Symbol: symbol,
		URI:    uri,
	}, nil
}

func (r *ERC721Reader) GetOwnedNFTs(ctx context.Context, owner string) ([]string, error) {
	ownerAddr, err := parseAddress("owner", owner)
	if err != nil {
		return nil, err
	}

	balance, err := r.contract.BalanceOf(ctx, ownerAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance of %s: %w", owner, err)
	}

	tokens := make([]string, 0, balance.Int64())

	for i := int64(0); i < balance.Int64(); i++ {
		tokenID, err := r.contract.TokenOfOwnerByIndex(ctx, ownerAddr, big.NewInt(i))
		if err != nil {
			return nil, fmt.Errorf("collection %s is not enumerable: %w", r.contract.Address(), err)
		}

		tokens = append(tokens, tokenID.String())
	}

	return tokens, nil
}

func (r *ERC721Reader) Contract() common.Address {
	return r.contract.Address()
}
