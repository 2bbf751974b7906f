package client

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"testing"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/hashicorp/go-hclog"
	"github.com/icrc99-bridge/nft-bridge/bridge/core"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func tokenAccountResult(t *testing.T, mint, owner solana.PublicKey, amount uint64) *rpc.GetAccountInfoResult {
	t.Helper()

	data, err := bin.MarshalBin(&token.Account{
		Mint:   mint,
		Owner:  owner,
		Amount: amount,
		State:  token.Initialized,
	})
	require.NoError(t, err)

	return &rpc.GetAccountInfoResult{
		Value: &rpc.Account{
			Owner: token.ProgramID,
			Data:  rpc.DataBytesOrJSONFromBytes(data),
		},
	}
}

func ata(t *testing.T, wallet, mint solana.PublicKey) solana.PublicKey {
	t.Helper()

	address, _, err := solana.FindAssociatedTokenAddress(wallet, mint)
	require.NoError(t, err)

	return address
}

func newTestSource(
	t *testing.T, rpcMock *RPCClientMock, config core.SolanaConfig, approver func(context.Context, string) (bool, error),
) (*SPLSource, solana.PrivateKey) {
	t.Helper()

	cli, err := NewSolanaClient(WithRPCClient(rpcMock), WithConfirmPolling(time.Millisecond, 3))
	require.NoError(t, err)

	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	wallet := NewKeypairWallet(cli, key, approver, hclog.NewNullLogger())

	_, err = wallet.Connect(context.Background())
	require.NoError(t, err)

	return NewSPLSource(cli, wallet, config, hclog.NewNullLogger()), key
}

func TestDecodeMetadata(t *testing.T) {
	mint := solana.NewWallet().PublicKey()

	data, err := bin.MarshalBorsh(&metadataAccount{
		Key:             4,
		UpdateAuthority: solana.NewWallet().PublicKey(),
		Mint:            mint,
		Name:            "Degen Ape #12\x00\x00\x00\x00",
		Symbol:          "DAPE\x00\x00",
		URI:             "https://arweave.net/ape12\x00\x00\x00",
	})
	require.NoError(t, err)

	metadata, err := DecodeMetadata(data)
	require.NoError(t, err)
	require.Equal(t, &core.AssetMetadata{
		Name:   "Degen Ape #12",
		Symbol: "DAPE",
		URI:    "https://arweave.net/ape12",
	}, metadata)

	_, err = DecodeMetadata([]byte{4, 1, 2})
	require.Error(t, err)
}

func TestChainReadClient(t *testing.T) {
	ctx := context.Background()
	mint := solana.NewWallet().PublicKey()
	owner := solana.NewWallet().PublicKey()

	t.Run("metadata missing", func(t *testing.T) {
		rpcMock := &RPCClientMock{}
		cli, err := NewSolanaClient(WithRPCClient(rpcMock))
		require.NoError(t, err)

		address, err := MetadataAddress(mint)
		require.NoError(t, err)

		rpcMock.On("GetAccountInfoWithOpts", ctx, address, mock.Anything).Return(nil, rpc.ErrNotFound)

		metadata, err := NewChainReadClient(cli).GetNFTMetadata(ctx, mint.String())
		require.NoError(t, err)
		require.Nil(t, metadata)
	})

	t.Run("invalid mint", func(t *testing.T) {
		cli, err := NewSolanaClient(WithRPCClient(&RPCClientMock{}))
		require.NoError(t, err)

		_, err = NewChainReadClient(cli).GetNFTMetadata(ctx, "not-a-key")
		require.Equal(t, core.KindValidation, core.KindOf(err))
	})

	t.Run("owned nfts", func(t *testing.T) {
		rpcMock := &RPCClientMock{}
		cli, err := NewSolanaClient(WithRPCClient(rpcMock))
		require.NoError(t, err)

		fungible := solana.NewWallet().PublicKey()
		nft := tokenAccountResult(t, mint, owner, 1).Value.Data.GetBinary()
		coins := tokenAccountResult(t, fungible, owner, 1000).Value.Data.GetBinary()

		var accounts rpc.GetTokenAccountsResult

		require.NoError(t, json.Unmarshal([]byte(fmt.Sprintf(`{"context":{"slot":1},"value":[
			{"pubkey":%q,"account":{"lamports":2039280,"owner":%q,"data":[%q,"base64"]}},
			{"pubkey":%q,"account":{"lamports":2039280,"owner":%q,"data":[%q,"base64"]}}]}`,
			ata(t, owner, mint), token.ProgramID, base64.StdEncoding.EncodeToString(nft),
			ata(t, owner, fungible), token.ProgramID, base64.StdEncoding.EncodeToString(coins),
		)), &accounts))

		rpcMock.On("GetTokenAccountsByOwner", ctx, owner, mock.Anything, mock.Anything).Return(&accounts, nil)

		mints, err := NewChainReadClient(cli).GetOwnedNFTs(ctx, owner.String())
		require.NoError(t, err)
		require.Equal(t, []string{mint.String()}, mints)
	})
}

func TestSPLSourceLocate(t *testing.T) {
	ctx := context.Background()
	mint := solana.NewWallet().PublicKey()
	target := solana.NewWallet().PublicKey()
	asset, err := core.NewBridgeableAsset(core.ChainTypeSolana, core.NetworkDevnet, mint.String(), "collection", false)
	require.NoError(t, err)

	t.Run("in wallet", func(t *testing.T) {
		rpcMock := &RPCClientMock{}
		source, key := newTestSource(t, rpcMock, core.SolanaConfig{}, nil)
		owner := key.PublicKey()

		rpcMock.On("GetAccountInfoWithOpts", ctx, ata(t, owner, mint), mock.Anything).
			Return(tokenAccountResult(t, mint, owner, 1), nil)

		location, err := source.Locate(ctx, asset, owner.String(), target.String())
		require.NoError(t, err)
		require.Equal(t, core.AssetLocationInWallet, location)
	})

	t.Run("already at target", func(t *testing.T) {
		rpcMock := &RPCClientMock{}
		source, key := newTestSource(t, rpcMock, core.SolanaConfig{}, nil)
		owner := key.PublicKey()

		rpcMock.On("GetAccountInfoWithOpts", ctx, ata(t, owner, mint), mock.Anything).
			Return(tokenAccountResult(t, mint, owner, 0), nil)
		rpcMock.On("GetAccountInfoWithOpts", ctx, ata(t, target, mint), mock.Anything).
			Return(tokenAccountResult(t, mint, target, 1), nil)

		location, err := source.Locate(ctx, asset, owner.String(), target.String())
		require.NoError(t, err)
		require.Equal(t, core.AssetLocationAtTarget, location)
	})

	t.Run("not found", func(t *testing.T) {
		rpcMock := &RPCClientMock{}
		source, key := newTestSource(t, rpcMock, core.SolanaConfig{}, nil)
		owner := key.PublicKey()

		rpcMock.On("GetAccountInfoWithOpts", ctx, mock.Anything, mock.Anything).Return(nil, rpc.ErrNotFound)

		location, err := source.Locate(ctx, asset, owner.String(), target.String())
		require.NoError(t, err)
		require.Equal(t, core.AssetLocationNotFound, location)
	})

	t.Run("rpc failure", func(t *testing.T) {
		rpcMock := &RPCClientMock{}
		source, key := newTestSource(t, rpcMock, core.SolanaConfig{}, nil)

		rpcMock.On("GetAccountInfoWithOpts", ctx, mock.Anything, mock.Anything).
			Return(nil, errors.New("connection refused"))

		_, err := source.Locate(ctx, asset, key.PublicKey().String(), target.String())
		require.ErrorContains(t, err, "connection refused")
	})

	t.Run("invalid mint", func(t *testing.T) {
		source, key := newTestSource(t, &RPCClientMock{}, core.SolanaConfig{}, nil)
		invalid := asset
		invalid.TokenID = "0xnotbase58"

		_, err := source.Locate(ctx, invalid, key.PublicKey().String(), target.String())
		require.Equal(t, core.KindValidation, core.KindOf(err))
	})
}

func TestSPLSourceQuoteFees(t *testing.T) {
	ctx := context.Background()
	mint := solana.NewWallet().PublicKey()
	target := solana.NewWallet().PublicKey()
	asset, err := core.NewBridgeableAsset(core.ChainTypeSolana, core.NetworkDevnet, mint.String(), "collection", false)
	require.NoError(t, err)

	config := core.SolanaConfig{BaseTransferFee: 5_000, AccountCreationFee: 2_040_000}

	t.Run("target account missing", func(t *testing.T) {
		rpcMock := &RPCClientMock{}
		source, _ := newTestSource(t, rpcMock, config, nil)

		rpcMock.On("GetAccountInfoWithOpts", ctx, ata(t, target, mint), mock.Anything).Return(nil, rpc.ErrNotFound)

		fee, err := source.QuoteFees(ctx, asset, target.String())
		require.NoError(t, err)
		require.True(t, fee.AccountCreationNeeded)
		require.Equal(t, big.NewInt(2_045_000), fee.Total())
	})

	t.Run("target account exists", func(t *testing.T) {
		rpcMock := &RPCClientMock{}
		source, _ := newTestSource(t, rpcMock, config, nil)

		rpcMock.On("GetAccountInfoWithOpts", ctx, ata(t, target, mint), mock.Anything).
			Return(tokenAccountResult(t, mint, target, 0), nil)

		fee, err := source.QuoteFees(ctx, asset, target.String())
		require.NoError(t, err)
		require.False(t, fee.AccountCreationNeeded)
		require.Equal(t, big.NewInt(5_000), fee.Total())
	})

	t.Run("rent queried", func(t *testing.T) {
		rpcMock := &RPCClientMock{}
		rentConfig := config
		rentConfig.QueryRent = true
		source, _ := newTestSource(t, rpcMock, rentConfig, nil)

		rpcMock.On("GetAccountInfoWithOpts", ctx, ata(t, target, mint), mock.Anything).Return(nil, rpc.ErrNotFound)
		rpcMock.On("GetMinimumBalanceForRentExemption", ctx, uint64(tokenAccountSize), rpc.CommitmentFinalized).
			Return(uint64(2_039_280), nil)

		fee, err := source.QuoteFees(ctx, asset, target.String())
		require.NoError(t, err)
		require.Equal(t, big.NewInt(2_039_280), fee.AccountCreationFee)
	})
}

func TestSPLSourceTransfer(t *testing.T) {
	ctx := context.Background()
	mint := solana.NewWallet().PublicKey()
	target := solana.NewWallet().PublicKey()
	asset, err := core.NewBridgeableAsset(core.ChainTypeSolana, core.NetworkDevnet, mint.String(), "collection", false)
	require.NoError(t, err)

	sig := solana.Signature{7, 7, 7}

	t.Run("creates target account", func(t *testing.T) {
		rpcMock := &RPCClientMock{}
		summaries := []string{}
		source, _ := newTestSource(t, rpcMock, core.SolanaConfig{}, func(_ context.Context, summary string) (bool, error) {
			summaries = append(summaries, summary)

			return true, nil
		})

		rpcMock.On("GetAccountInfoWithOpts", ctx, ata(t, target, mint), mock.Anything).Return(nil, rpc.ErrNotFound)
		rpcMock.On("GetLatestBlockhash", ctx, rpc.CommitmentFinalized).Return(&rpc.GetLatestBlockhashResult{
			Value: &rpc.LatestBlockhashResult{Blockhash: solana.Hash{1}},
		}, nil)
		rpcMock.On("SendTransactionWithOpts", ctx, mock.MatchedBy(func(tx *solana.Transaction) bool {
			return len(tx.Message.Instructions) == 2 && len(tx.Signatures) == 1
		}), mock.Anything).Return(sig, nil)
		rpcMock.On("GetSignatureStatuses", mock.Anything, false, []solana.Signature{sig}).
			Return(&rpc.GetSignatureStatusesResult{Value: []*rpc.SignatureStatusesResult{nil}}, nil).Once()
		rpcMock.On("GetSignatureStatuses", mock.Anything, false, []solana.Signature{sig}).
			Return(&rpc.GetSignatureStatusesResult{Value: []*rpc.SignatureStatusesResult{
				{ConfirmationStatus: rpc.ConfirmationStatusFinalized},
			}}, nil).Once()

		receipt, err := source.Transfer(ctx, asset, target.String())
		require.NoError(t, err)
		require.Equal(t, sig.String(), receipt.Signature)
		require.True(t, receipt.CreatedAccount)
		require.Len(t, summaries, 1)
		rpcMock.AssertExpectations(t)
	})

	t.Run("rejected by user", func(t *testing.T) {
		rpcMock := &RPCClientMock{}
		source, _ := newTestSource(t, rpcMock, core.SolanaConfig{}, func(context.Context, string) (bool, error) {
			return false, nil
		})

		rpcMock.On("GetAccountInfoWithOpts", ctx, ata(t, target, mint), mock.Anything).
			Return(tokenAccountResult(t, mint, target, 0), nil)
		rpcMock.On("GetLatestBlockhash", ctx, rpc.CommitmentFinalized).Return(&rpc.GetLatestBlockhashResult{
			Value: &rpc.LatestBlockhashResult{Blockhash: solana.Hash{1}},
		}, nil)

		_, err := source.Transfer(ctx, asset, target.String())
		require.Equal(t, core.KindUserRejected, core.KindOf(err))
		require.ErrorIs(t, err, core.ErrUserRejected)
		rpcMock.AssertNotCalled(t, "SendTransactionWithOpts", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("transaction failed on chain", func(t *testing.T) {
		rpcMock := &RPCClientMock{}
		source, _ := newTestSource(t, rpcMock, core.SolanaConfig{}, nil)

		rpcMock.On("GetAccountInfoWithOpts", ctx, ata(t, target, mint), mock.Anything).
			Return(tokenAccountResult(t, mint, target, 0), nil)
		rpcMock.On("GetLatestBlockhash", ctx, rpc.CommitmentFinalized).Return(&rpc.GetLatestBlockhashResult{
			Value: &rpc.LatestBlockhashResult{Blockhash: solana.Hash{1}},
		}, nil)
		rpcMock.On("SendTransactionWithOpts", ctx, mock.Anything, mock.Anything).Return(sig, nil)
		rpcMock.On("GetSignatureStatuses", mock.Anything, false, []solana.Signature{sig}).
			Return(&rpc.GetSignatureStatusesResult{Value: []*rpc.SignatureStatusesResult{
				{Err: map[string]any{"InstructionError": []any{0, "Custom"}}},
			}}, nil)

		_, err := source.Transfer(ctx, asset, target.String())
		require.ErrorContains(t, err, "transaction failed")
	})
}
