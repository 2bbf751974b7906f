package core

import (
	"context"
	"math/big"
	"time"
)

type Commitment string

const (
	CommitmentConfirmed Commitment = "confirmed"
	CommitmentFinalized Commitment = "finalized"
)

// Wallet is the signing capability of the source chain.
type Wallet interface {
	Connect(ctx context.Context) (Account, error)
	IsConnected() bool
	GetBalance(ctx context.Context, address string) (*big.Int, error)
	GetAccountInfo(ctx context.Context, address string) (*AccountData, error)
	SignAndSend(ctx context.Context, tx any) (string, error)
	ConfirmTransaction(ctx context.Context, signature string, commitment Commitment) error
}

// SourceChain performs the chain specific part of a bridge on the chain the
// NFT currently lives on.
type SourceChain interface {
	Chain() ChainType
	Wallet() Wallet
	Locate(ctx context.Context, asset BridgeableAsset, owner, target string) (AssetLocation, error)
	QuoteFees(ctx context.Context, asset BridgeableAsset, target string) (SourceFee, error)
	Transfer(ctx context.Context, asset BridgeableAsset, target string) (TransferReceipt, error)
}

type ChainReader interface {
	GetNFTMetadata(ctx context.Context, mint string) (*AssetMetadata, error)
	GetOwnedNFTs(ctx context.Context, owner string) ([]string, error)
}

type Orchestrator interface {
	Principal() string
	GetApprovalAddress(ctx context.Context, account Account, asset BridgeableAsset) (string, error)
	GetCanister(ctx context.Context, asset BridgeableAsset) (string, bool, error)
	GetRemoteContract(ctx context.Context, canister string, network Network) (string, bool, error)
	MintCost(ctx context.Context, req MintRequest) (*big.Int, error)
	Mint(ctx context.Context, req MintRequest) (string, error)
	GetMintStatus(ctx context.Context, requestID string) (MintStatus, error)
	CastCost(ctx context.Context, req CastRequest) (*big.Int, error)
	Cast(ctx context.Context, req CastRequest) (string, error)
	GetCastStatus(ctx context.Context, castID string) (CastStatus, error)
}

type CyclesLedger interface {
	Owner() string
	Balance(ctx context.Context, owner string) (*big.Int, error)
	Approve(ctx context.Context, spender string, amount *big.Int, expiresAt time.Time) error
	Allowance(ctx context.Context, owner, spender string) (Allowance, error)
}

type RecoveryStore interface {
	Get(key string) (*RecoveryRecord, error)
	Set(key string, record *RecoveryRecord) error
	Delete(key string) error
	List() ([]*RecoveryRecord, error)
	Close() error
}

type Clock func() time.Time
