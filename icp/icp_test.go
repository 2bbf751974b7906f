package icp

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/Ethernal-Tech/cardano-infrastructure/secrets"
	secretsInfraLocal "github.com/Ethernal-Tech/cardano-infrastructure/secrets/local"
	"github.com/aviate-labs/agent-go/candid/idl"
	"github.com/aviate-labs/agent-go/principal"
	"github.com/hashicorp/go-hclog"
	"github.com/icrc99-bridge/nft-bridge/bridge/core"
	"github.com/icrc99-bridge/nft-bridge/common"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	orchestratorID = "ryjl3-tyaaa-aaaaa-aaaba-cai"
	ledgerID       = "um5iw-rqaaa-aaaaq-qaaba-cai"
	collectionID   = "rrkah-fqaaa-aaaaa-aaaaq-cai"
)

func testIdentityWallet(t *testing.T, caller CanisterCaller, approver common.Approver) (*IdentityWallet, *CyclesLedgerClient) {
	t.Helper()

	id, err := newIdentity(ed25519.NewKeyFromSeed(make([]byte, ed25519.SeedSize)))
	require.NoError(t, err)

	ledger, err := NewCyclesLedgerClient(caller, ledgerID, id.Sender(), approver, hclog.NewNullLogger())
	require.NoError(t, err)

	wallet := NewIdentityWallet(caller, id, ledger, approver, hclog.NewNullLogger())

	_, err = wallet.Connect(context.Background())
	require.NoError(t, err)

	return wallet, ledger
}

func TestOrchestratorClient(t *testing.T) {
	ctx := context.Background()
	asset, err := core.NewBridgeableAsset(core.ChainTypeSolana, core.NetworkDevnet, "assetX", "collection", false)
	require.NoError(t, err)

	account := core.Account{Address: "owner", Chain: core.ChainTypeSolana}
	orchestrator := principal.MustDecode(orchestratorID)
	collection := principal.MustDecode(collectionID)

	newClient := func(t *testing.T, caller CanisterCaller) *OrchestratorClient {
		t.Helper()

		client, err := NewOrchestratorClient(caller, orchestratorID, hclog.NewNullLogger())
		require.NoError(t, err)

		return client
	}

	t.Run("invalid canister id", func(t *testing.T) {
		_, err := NewOrchestratorClient(&CanisterCallerMock{}, "not a principal", hclog.NewNullLogger())
		require.Equal(t, core.KindValidation, core.KindOf(err))
	})

	t.Run("approval address", func(t *testing.T) {
		callerMock := &CanisterCallerMock{}
		address := "approvalX"
		callerMock.On("Query", orchestrator, "get_approval_address", []any{ApprovalAddressArgs{
			Pointer: ContractPointer{Chain: "solana", Network: "devnet", Contract: "collection"},
			TokenID: "assetX",
			Owner:   "owner",
		}}, mock.Anything).Return(nil).Run(fillResult(TextResult{Ok: &address}))

		res, err := newClient(t, callerMock).GetApprovalAddress(ctx, account, asset)
		require.NoError(t, err)
		require.Equal(t, "approvalX", res)
	})

	t.Run("approval address rejected", func(t *testing.T) {
		callerMock := &CanisterCallerMock{}
		reason := "unsupported chain"
		callerMock.On("Query", orchestrator, "get_approval_address", mock.Anything, mock.Anything).
			Return(nil).Run(fillResult(TextResult{Err: &reason}))

		_, err := newClient(t, callerMock).GetApprovalAddress(ctx, account, asset)
		require.Equal(t, core.KindProtocol, core.KindOf(err))
		require.ErrorContains(t, err, reason)
	})

	t.Run("canister not bridged", func(t *testing.T) {
		callerMock := &CanisterCallerMock{}
		callerMock.On("Query", orchestrator, "get_canister", mock.Anything, mock.Anything).Return(nil)

		_, ok, err := newClient(t, callerMock).GetCanister(ctx, asset)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("canister bridged", func(t *testing.T) {
		callerMock := &CanisterCallerMock{}
		callerMock.On("Query", orchestrator, "get_canister", mock.Anything, mock.Anything).
			Return(nil).Run(fillResult(&collection))

		canister, ok, err := newClient(t, callerMock).GetCanister(ctx, asset)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, collectionID, canister)
	})

	t.Run("canister lookup transport error", func(t *testing.T) {
		callerMock := &CanisterCallerMock{}
		callerMock.On("Query", orchestrator, "get_canister", mock.Anything, mock.Anything).
			Return(errors.New("dial tcp: connection refused"))

		_, _, err := newClient(t, callerMock).GetCanister(ctx, asset)
		require.Equal(t, core.KindNetwork, core.KindOf(err))
	})

	t.Run("cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, _, err := newClient(t, &CanisterCallerMock{}).GetCanister(cancelled, asset)
		require.Equal(t, core.KindNetwork, core.KindOf(err))
	})

	t.Run("remote contract", func(t *testing.T) {
		callerMock := &CanisterCallerMock{}
		contract := "mintX"
		callerMock.On("Query", orchestrator, "get_remote",
			[]any{RemoteArgs{Canister: collection, Network: "devnet"}}, mock.Anything).
			Return(nil).Run(fillResult(&contract))

		res, ok, err := newClient(t, callerMock).GetRemoteContract(ctx, collectionID, core.NetworkDevnet)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "mintX", res)
	})

	t.Run("mint", func(t *testing.T) {
		callerMock := &CanisterCallerMock{}
		req := core.MintRequest{Flow: core.FlowImport, Asset: asset, Owner: "owner", Canister: collectionID}
		cost := idl.NewNat(uint(1_000_000))
		id := idl.NewNat(uint(42))

		callerMock.On("Query", orchestrator, "mint_cost", mock.Anything, mock.Anything).
			Return(nil).Run(fillResult(cost))
		callerMock.On("Call", orchestrator, "mint", mock.Anything, mock.Anything).
			Return(nil).Run(fillResult(NatResult{Ok: &id}))

		client := newClient(t, callerMock)

		fee, err := client.MintCost(ctx, req)
		require.NoError(t, err)
		require.Equal(t, big.NewInt(1_000_000), fee)

		requestID, err := client.Mint(ctx, req)
		require.NoError(t, err)
		require.Equal(t, "42", requestID)
	})

	t.Run("mint invalid canister", func(t *testing.T) {
		req := core.MintRequest{Flow: core.FlowImport, Asset: asset, Owner: "owner", Canister: "?"}

		_, err := newClient(t, &CanisterCallerMock{}).Mint(ctx, req)
		require.Equal(t, core.KindValidation, core.KindOf(err))
	})

	t.Run("mint status", func(t *testing.T) {
		callerMock := &CanisterCallerMock{}
		txID := "7"
		callerMock.On("Query", orchestrator, "get_mint_status", mock.Anything, mock.Anything).
			Return(nil).Run(fillResult(&MintStatus{Stage: "Minted", Done: true, TxID: &txID}))

		status, err := newClient(t, callerMock).GetMintStatus(ctx, "42")
		require.NoError(t, err)
		require.Equal(t, core.MintStatus{Stage: "Minted", Done: true, TxID: "7"}, status)
	})

	t.Run("mint status unknown request", func(t *testing.T) {
		callerMock := &CanisterCallerMock{}
		callerMock.On("Query", orchestrator, "get_mint_status", mock.Anything, mock.Anything).Return(nil)

		_, err := newClient(t, callerMock).GetMintStatus(ctx, "42")
		require.Equal(t, core.KindProtocol, core.KindOf(err))

		_, err = newClient(t, callerMock).GetMintStatus(ctx, "abc")
		require.Equal(t, core.KindValidation, core.KindOf(err))
	})

	t.Run("cast", func(t *testing.T) {
		callerMock := &CanisterCallerMock{}
		icAsset, err := core.NewBridgeableAsset(core.ChainTypeICP, core.NetworkMainnet, "7", collectionID, false)
		require.NoError(t, err)

		req := core.CastRequest{
			Asset: icAsset, Canister: collectionID, Receiver: "receiver",
			TargetNetwork: core.NetworkDevnet, RemoteContract: "mintX",
		}
		id := idl.NewNat(uint(3))
		hash := "0xabc"

		callerMock.On("Call", orchestrator, "cast", mock.Anything, mock.Anything).
			Return(nil).Run(fillResult(NatResult{Ok: &id}))
		callerMock.On("Query", orchestrator, "get_cast_status", mock.Anything, mock.Anything).
			Return(nil).Run(fillResult(&CastStatus{Stage: "Finalized", Finalized: true, TxHash: &hash}))

		client := newClient(t, callerMock)

		castID, err := client.Cast(ctx, req)
		require.NoError(t, err)
		require.Equal(t, "3", castID)

		status, err := client.GetCastStatus(ctx, castID)
		require.NoError(t, err)
		require.True(t, status.Finalized)
		require.Equal(t, "0xabc", status.TxHash)
	})

	t.Run("cast rejected", func(t *testing.T) {
		callerMock := &CanisterCallerMock{}
		reason := "remote contract not deployed"
		callerMock.On("Call", orchestrator, "cast", mock.Anything, mock.Anything).
			Return(nil).Run(fillResult(NatResult{Err: &reason}))

		_, err := newClient(t, callerMock).Cast(ctx, core.CastRequest{
			Asset: core.BridgeableAsset{TokenID: "7"}, Canister: collectionID,
		})
		require.Equal(t, core.KindProtocol, core.KindOf(err))
	})
}

func TestCyclesLedgerClient(t *testing.T) {
	ctx := context.Background()
	ledger := principal.MustDecode(ledgerID)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("balance", func(t *testing.T) {
		callerMock := &CanisterCallerMock{}
		_, client := testIdentityWallet(t, callerMock, nil)

		callerMock.On("Query", ledger, "icrc1_balance_of", mock.Anything, mock.Anything).
			Return(nil).Run(fillResult(idl.NewNat(uint(500))))

		balance, err := client.Balance(ctx, client.Owner())
		require.NoError(t, err)
		require.Equal(t, big.NewInt(500), balance)
	})

	t.Run("approve", func(t *testing.T) {
		callerMock := &CanisterCallerMock{}
		_, client := testIdentityWallet(t, callerMock, nil)
		block := idl.NewNat(uint(11))

		callerMock.On("Call", ledger, "icrc2_approve", mock.MatchedBy(func(args []any) bool {
			approve, ok := args[0].(ApproveArgs)

			return ok && approve.Spender.Owner.String() == orchestratorID &&
				approve.Amount.BigInt().Cmp(big.NewInt(1200)) == 0 &&
				approve.ExpiresAt != nil && *approve.ExpiresAt == uint64(now.UnixNano())
		}), mock.Anything).Return(nil).Run(fillResult(ApproveResult{Ok: &block}))

		require.NoError(t, client.Approve(ctx, orchestratorID, big.NewInt(1200), now))
		callerMock.AssertExpectations(t)
	})

	t.Run("approve confirmed by user", func(t *testing.T) {
		var summary string

		callerMock := &CanisterCallerMock{}
		_, client := testIdentityWallet(t, callerMock, func(_ context.Context, s string) (bool, error) {
			summary = s

			return true, nil
		})
		block := idl.NewNat(uint(12))

		callerMock.On("Call", ledger, "icrc2_approve", mock.Anything, mock.Anything).
			Return(nil).Run(fillResult(ApproveResult{Ok: &block}))

		require.NoError(t, client.Approve(ctx, orchestratorID, big.NewInt(1_200_000), now))
		require.Contains(t, summary, orchestratorID)
		require.Contains(t, summary, "1200000")
		require.Contains(t, summary, "2025-01-01T00:00:00Z")
		callerMock.AssertExpectations(t)
	})

	t.Run("approve rejected by user", func(t *testing.T) {
		callerMock := &CanisterCallerMock{}
		_, client := testIdentityWallet(t, callerMock, func(context.Context, string) (bool, error) {
			return false, nil
		})

		err := client.Approve(ctx, orchestratorID, big.NewInt(1200), now)
		require.Equal(t, core.KindUserRejected, core.KindOf(err))
		require.ErrorIs(t, err, core.ErrUserRejected)
		callerMock.AssertNotCalled(t, "Call", mock.Anything, "icrc2_approve", mock.Anything, mock.Anything)
	})

	t.Run("approve prompt failure", func(t *testing.T) {
		callerMock := &CanisterCallerMock{}
		_, client := testIdentityWallet(t, callerMock, func(context.Context, string) (bool, error) {
			return false, errors.New("stdin closed")
		})

		require.ErrorContains(t, client.Approve(ctx, orchestratorID, big.NewInt(1200), now), "stdin closed")
		callerMock.AssertNotCalled(t, "Call", mock.Anything, "icrc2_approve", mock.Anything, mock.Anything)
	})

	t.Run("approve insufficient funds", func(t *testing.T) {
		callerMock := &CanisterCallerMock{}
		_, client := testIdentityWallet(t, callerMock, nil)

		callerMock.On("Call", ledger, "icrc2_approve", mock.Anything, mock.Anything).
			Return(nil).Run(fillResult(ApproveResult{Err: &ApproveError{
				InsufficientFunds: &struct {
					Balance idl.Nat `ic:"balance"`
				}{Balance: idl.NewNat(uint(0))},
			}}))

		err := client.Approve(ctx, orchestratorID, big.NewInt(1200), now)
		require.Equal(t, core.KindValidation, core.KindOf(err))
		require.ErrorIs(t, err, core.ErrInsufficientBalance)
	})

	t.Run("approve temporarily unavailable", func(t *testing.T) {
		callerMock := &CanisterCallerMock{}
		_, client := testIdentityWallet(t, callerMock, nil)

		callerMock.On("Call", ledger, "icrc2_approve", mock.Anything, mock.Anything).
			Return(nil).Run(fillResult(ApproveResult{Err: &ApproveError{TemporarilyUnavailable: &idl.Null{}}}))

		err := client.Approve(ctx, orchestratorID, big.NewInt(1200), now)
		require.Equal(t, core.KindNetwork, core.KindOf(err))
	})

	t.Run("allowance", func(t *testing.T) {
		callerMock := &CanisterCallerMock{}
		_, client := testIdentityWallet(t, callerMock, nil)
		expiresAt := uint64(now.UnixNano())

		callerMock.On("Query", ledger, "icrc2_allowance", mock.Anything, mock.Anything).
			Return(nil).Run(fillResult(Allowance{Allowance: idl.NewNat(uint(1200)), ExpiresAt: &expiresAt}))

		allowance, err := client.Allowance(ctx, client.Owner(), orchestratorID)
		require.NoError(t, err)
		require.Equal(t, big.NewInt(1200), allowance.Amount)
		require.NotNil(t, allowance.ExpiresAt)
		require.True(t, now.Equal(*allowance.ExpiresAt))
	})

	t.Run("allowance invalid spender", func(t *testing.T) {
		_, client := testIdentityWallet(t, &CanisterCallerMock{}, nil)

		_, err := client.Allowance(ctx, client.Owner(), "-")
		require.Equal(t, core.KindValidation, core.KindOf(err))
	})
}

func TestICRC7Source(t *testing.T) {
	ctx := context.Background()
	collection := principal.MustDecode(collectionID)

	asset, err := core.NewBridgeableAsset(core.ChainTypeICP, core.NetworkMainnet, "7", collectionID, false)
	require.NoError(t, err)

	t.Run("locate", func(t *testing.T) {
		callerMock := &CanisterCallerMock{}
		wallet, _ := testIdentityWallet(t, callerMock, common.AutoApprover)
		source := NewICRC7Source(callerMock, wallet, hclog.NewNullLogger())
		owner := wallet.Principal()

		callerMock.On("Query", collection, "icrc7_owner_of", mock.Anything, mock.Anything).
			Return(nil).Run(fillResult([]*Account{{Owner: owner}})).Once()
		callerMock.On("Query", collection, "icrc7_owner_of", mock.Anything, mock.Anything).
			Return(nil).Run(fillResult([]*Account{{Owner: principal.MustDecode(orchestratorID)}})).Once()
		callerMock.On("Query", collection, "icrc7_owner_of", mock.Anything, mock.Anything).
			Return(nil).Run(fillResult([]*Account{nil})).Once()

		location, err := source.Locate(ctx, asset, owner.String(), orchestratorID)
		require.NoError(t, err)
		require.Equal(t, core.AssetLocationInWallet, location)

		location, err = source.Locate(ctx, asset, owner.String(), orchestratorID)
		require.NoError(t, err)
		require.Equal(t, core.AssetLocationAtTarget, location)

		location, err = source.Locate(ctx, asset, owner.String(), orchestratorID)
		require.NoError(t, err)
		require.Equal(t, core.AssetLocationNotFound, location)
	})

	t.Run("quote fees", func(t *testing.T) {
		wallet, _ := testIdentityWallet(t, &CanisterCallerMock{}, nil)

		fee, err := NewICRC7Source(&CanisterCallerMock{}, wallet, hclog.NewNullLogger()).
			QuoteFees(ctx, asset, orchestratorID)
		require.NoError(t, err)
		require.Equal(t, int64(0), fee.Total().Int64())
	})

	t.Run("transfer", func(t *testing.T) {
		callerMock := &CanisterCallerMock{}
		wallet, _ := testIdentityWallet(t, callerMock, common.AutoApprover)
		txIndex := idl.NewNat(uint(99))

		callerMock.On("Call", collection, "icrc7_transfer", mock.MatchedBy(func(args []any) bool {
			transfers, ok := args[0].([]TransferArg)

			return ok && len(transfers) == 1 && transfers[0].To.Owner.String() == orchestratorID &&
				transfers[0].TokenID.BigInt().Int64() == 7
		}), mock.Anything).Return(nil).Run(fillResult([]*TransferResult{{Ok: &txIndex}}))

		receipt, err := NewICRC7Source(callerMock, wallet, hclog.NewNullLogger()).Transfer(ctx, asset, orchestratorID)
		require.NoError(t, err)
		require.Equal(t, "99", receipt.Signature)
		require.False(t, receipt.CreatedAccount)
	})

	t.Run("transfer unauthorized", func(t *testing.T) {
		callerMock := &CanisterCallerMock{}
		wallet, _ := testIdentityWallet(t, callerMock, common.AutoApprover)

		callerMock.On("Call", collection, "icrc7_transfer", mock.Anything, mock.Anything).
			Return(nil).Run(fillResult([]*TransferResult{{Err: &TransferError{Unauthorized: &idl.Null{}}}}))

		_, err := NewICRC7Source(callerMock, wallet, hclog.NewNullLogger()).Transfer(ctx, asset, orchestratorID)
		require.Equal(t, core.KindProtocol, core.KindOf(err))
		require.ErrorContains(t, err, "caller does not own the token")
	})

	t.Run("transfer rejected by user", func(t *testing.T) {
		callerMock := &CanisterCallerMock{}
		wallet, _ := testIdentityWallet(t, callerMock, func(context.Context, string) (bool, error) {
			return false, nil
		})

		_, err := NewICRC7Source(callerMock, wallet, hclog.NewNullLogger()).Transfer(ctx, asset, orchestratorID)
		require.Equal(t, core.KindUserRejected, core.KindOf(err))
		callerMock.AssertNotCalled(t, "Call", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestIdentityWallet(t *testing.T) {
	ctx := context.Background()

	t.Run("not connected", func(t *testing.T) {
		id, err := newIdentity(ed25519.NewKeyFromSeed(make([]byte, ed25519.SeedSize)))
		require.NoError(t, err)

		wallet := NewIdentityWallet(&CanisterCallerMock{}, id, nil, nil, hclog.NewNullLogger())
		require.False(t, wallet.IsConnected())

		_, err = wallet.SignAndSend(ctx, &UpdateCall{})
		require.ErrorIs(t, err, core.ErrWalletNotConnected)
	})

	t.Run("unsupported transaction", func(t *testing.T) {
		wallet, _ := testIdentityWallet(t, &CanisterCallerMock{}, nil)

		_, err := wallet.SignAndSend(ctx, "tx")
		require.Equal(t, core.KindValidation, core.KindOf(err))
	})

	t.Run("account info without cycles", func(t *testing.T) {
		callerMock := &CanisterCallerMock{}
		wallet, _ := testIdentityWallet(t, callerMock, nil)

		callerMock.On("Query", mock.Anything, "icrc1_balance_of", mock.Anything, mock.Anything).
			Return(nil).Run(fillResult(idl.NewNat(uint(0))))

		info, err := wallet.GetAccountInfo(ctx, wallet.Principal().String())
		require.NoError(t, err)
		require.Nil(t, info)
	})
}

func TestIdentityKeys(t *testing.T) {
	secretsManager, err := secretsInfraLocal.SecretsManagerFactory(&secrets.SecretsManagerConfig{
		Path: t.TempDir(),
	})
	require.NoError(t, err)

	created, err := CreateAndSaveIdentity(secretsManager, "", false)
	require.NoError(t, err)

	loaded, err := LoadIdentity(secretsManager)
	require.NoError(t, err)
	require.Equal(t, created.Sender().String(), loaded.Sender().String())

	again, err := CreateAndSaveIdentity(secretsManager, "", false)
	require.NoError(t, err)
	require.Equal(t, created.Sender().String(), again.Sender().String())

	_, err = CreateAndSaveIdentity(secretsManager, "abcd", false)
	require.Error(t, err)

	seed := make([]byte, ed25519.SeedSize)
	seed[0] = 1

	imported, err := CreateAndSaveIdentity(secretsManager, hex.EncodeToString(seed), false)
	require.NoError(t, err)
	require.NotEqual(t, created.Sender().String(), imported.Sender().String())
}
