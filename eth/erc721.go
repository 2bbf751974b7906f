package eth

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

const erc721ABI = `[
{"type":"function","name":"name","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
{"type":"function","name":"symbol","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
{"type":"function","name":"tokenURI","stateMutability":"view","inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[{"name":"","type":"string"}]},
{"type":"function","name":"ownerOf","stateMutability":"view","inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[{"name":"","type":"address"}]},
{"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"tokenOfOwnerByIndex","stateMutability":"view","inputs":[{"name":"owner","type":"address"},{"name":"index","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"safeTransferFrom","stateMutability":"nonpayable","inputs":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"tokenId","type":"uint256"}],"outputs":[]}
]`

var ERC721MetaData = &bind.MetaData{
	ABI: erc721ABI,
}

// ERC721 is a binding of the ERC-721 methods used for bridging, including
// the optional metadata and enumerable extensions.
type ERC721 struct {
	address  common.Address
	contract *bind.BoundContract
}

func NewERC721(address common.Address, backend bind.ContractBackend) (*ERC721, error) {
	parsed, err := ERC721MetaData.GetAbi()
	if err != nil {
		return nil, err
	}

	return &ERC721{
		address:  address,
		contract: bind.NewBoundContract(address, *parsed, backend, backend, backend),
	}, nil
}

func (c *ERC721) Address() common.Address {
	return c.address
}

func (c *ERC721) OwnerOf(ctx context.Context, tokenID *big.Int) (common.Address, error) {
	var out []interface{}

	if err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, "ownerOf", tokenID); err != nil {
		return common.Address{}, err
	}

	return *abi.ConvertType(out[0], new(common.Address)).(*common.Address), nil //nolint:forcetypeassert
}

func (c *ERC721) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	var out []interface{}

	if err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, "balanceOf", owner); err != nil {
		return nil, err
	}

	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil //nolint:forcetypeassert
}

func (c *ERC721) TokenOfOwnerByIndex(ctx context.Context, owner common.Address, index *big.Int) (*big.Int, error) {
	var out []interface{}

	if err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, "tokenOfOwnerByIndex", owner, index); err != nil {
		return nil, err
	}

	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil //nolint:forcetypeassert
}

func (c *ERC721) Name(ctx context.Context) (string, error) {
	return c.callString(ctx, "name")
}

func (c *ERC721) Symbol(ctx context.Context) (string, error) {
	return c.callString(ctx, "symbol")
}

func (c *ERC721) TokenURI(ctx context.Context, tokenID *big.Int) (string, error) {
	return c.callString(ctx, "tokenURI", tokenID)
}

func (c *ERC721) SafeTransferFrom(
	opts *bind.TransactOpts, from, to common.Address, tokenID *big.Int,
) (*types.Transaction, error) {
	return c.contract.Transact(opts, "safeTransferFrom", from, to, tokenID)
}

func (c *ERC721) callString(ctx context.Context, method string, args ...interface{}) (string, error) {
	var out []interface{}

	if err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, method, args...); err != nil {
		return "", fmt.Errorf("failed to call %s: %w", method, err)
	}

	return *abi.ConvertType(out[0], new(string)).(*string), nil //nolint:forcetypeassert
}
