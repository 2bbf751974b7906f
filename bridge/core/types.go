package core

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"
)

type Flow string

const (
	FlowImport Flow = "import"
	FlowBurn   Flow = "burn"
	FlowExport Flow = "export"
)

func (f Flow) IsValid() bool {
	switch f {
	case FlowImport, FlowBurn, FlowExport:
		return true
	default:
		return false
	}
}

type ChainType string

const (
	ChainTypeSolana ChainType = "solana"
	ChainTypeEVM    ChainType = "evm"
	ChainTypeICP    ChainType = "icp"
)

type Network string

const (
	NetworkMainnet  Network = "mainnet"
	NetworkDevnet   Network = "devnet"
	NetworkTestnet  Network = "testnet"
	NetworkLocalnet Network = "localnet"
)

func ParseNetwork(s string) (Network, error) {
	switch n := Network(strings.ToLower(strings.TrimSpace(s))); n {
	case NetworkMainnet, NetworkDevnet, NetworkTestnet, NetworkLocalnet:
		return n, nil
	default:
		return "", fmt.Errorf("unknown network: %s", s)
	}
}

type AssetMetadata struct {
	Name        string
	Symbol      string
	URI         string
	Image       string
	Description string
}

// BridgeableAsset identifies a single NFT being bridged. It is a value type and
// must not be modified after NewBridgeableAsset returns it.
type BridgeableAsset struct {
	Chain      ChainType
	Network    Network
	TokenID    string
	Contract   string
	Metadata   *AssetMetadata
	IsRecovery bool
}

func NewBridgeableAsset(
	chain ChainType, network Network, tokenID, contract string, isRecovery bool,
) (BridgeableAsset, error) {
	tokenID = strings.TrimSpace(tokenID)
	contract = strings.TrimSpace(contract)

	if tokenID == "" {
		return BridgeableAsset{}, NewError(KindValidation, "asset", errors.New("token id not specified"))
	}

	if chain != ChainTypeSolana && contract == "" {
		return BridgeableAsset{}, NewError(KindValidation, "asset",
			fmt.Errorf("contract not specified for %s asset", chain))
	}

	return BridgeableAsset{
		Chain:      chain,
		Network:    network,
		TokenID:    tokenID,
		Contract:   contract,
		IsRecovery: isRecovery,
	}, nil
}

// WithMetadata returns a copy of the asset carrying display metadata.
func (a BridgeableAsset) WithMetadata(m AssetMetadata) BridgeableAsset {
	a.Metadata = &m

	return a
}

// Key is the recovery store key of the asset.
func (a BridgeableAsset) Key() string {
	if a.Chain == ChainTypeSolana {
		return a.TokenID
	}

	return a.Contract + ":" + a.TokenID
}

func (a BridgeableAsset) String() string {
	return fmt.Sprintf("%s/%s/%s", a.Chain, a.Network, a.Key())
}

type SourceFee struct {
	BaseFee               *big.Int
	AccountCreationFee    *big.Int
	AccountCreationNeeded bool
}

func (f SourceFee) Total() *big.Int {
	total := new(big.Int).Set(orZero(f.BaseFee))
	if f.AccountCreationNeeded {
		total.Add(total, orZero(f.AccountCreationFee))
	}

	return total
}

// BridgeRequest carries everything the user chose for one bridge run.
// TargetNetwork and Receiver are used by the export flow only.
type BridgeRequest struct {
	Flow          Flow
	Asset         BridgeableAsset
	Account       Account
	TargetNetwork Network
	Receiver      string
}

type BridgeCosts struct {
	Asset                  BridgeableAsset
	SourceFee              SourceFee
	TotalCost              *big.Int
	ComputeFee             *big.Int
	ApprovalAddress        string
	DestinationCanister    string
	RemoteContract         string
	Balance                *big.Int
	HasInsufficientBalance bool
	CalculatedAt           time.Time
}

func NewBridgeCosts(
	asset BridgeableAsset, fee SourceFee, computeFee *big.Int, approvalAddress, canister string,
	balance *big.Int, now time.Time,
) *BridgeCosts {
	total := fee.Total()
	balance = orZero(balance)

	return &BridgeCosts{
		Asset:                  asset,
		SourceFee:              fee,
		TotalCost:              total,
		ComputeFee:             orZero(computeFee),
		ApprovalAddress:        approvalAddress,
		DestinationCanister:    canister,
		Balance:                balance,
		HasInsufficientBalance: balance.Cmp(total) < 0,
		CalculatedAt:           now,
	}
}

type Allowance struct {
	Amount    *big.Int
	ExpiresAt *time.Time
}

type AllowanceStatus struct {
	Amount     *big.Int
	ExpiresAt  *time.Time
	Expired    bool
	Sufficient bool
}

func NewAllowanceStatus(allowance Allowance, required *big.Int, now time.Time) AllowanceStatus {
	amount := orZero(allowance.Amount)
	expired := allowance.ExpiresAt != nil && !allowance.ExpiresAt.After(now)

	return AllowanceStatus{
		Amount:     amount,
		ExpiresAt:  allowance.ExpiresAt,
		Expired:    expired,
		Sufficient: !expired && amount.Cmp(orZero(required)) >= 0,
	}
}

type BridgeResult struct {
	RunID               string
	Flow                Flow
	Asset               BridgeableAsset
	Success             bool
	SourceSignature     string
	DestinationTxHash   string
	DestinationCanister string
	RequestID           string
	ErrorKind           ErrorKind
	Error               string
	Warning             string
}

func FailedResult(runID string, flow Flow, asset BridgeableAsset, err error) *BridgeResult {
	return &BridgeResult{
		RunID:     runID,
		Flow:      flow,
		Asset:     asset,
		ErrorKind: KindOf(err),
		Error:     err.Error(),
	}
}

type RecoveryStatus string

const (
	RecoveryStatusPending   RecoveryStatus = "pending"
	RecoveryStatusCompleted RecoveryStatus = "completed"
	RecoveryStatusFailed    RecoveryStatus = "failed"
)

type RecoveryRecord struct {
	AssetKey        string         `cbor:"a" json:"assetKey"`
	Flow            Flow           `cbor:"f" json:"flow"`
	RequestID       string         `cbor:"r" json:"requestId"`
	SourceSignature string         `cbor:"s" json:"sourceSignature,omitempty"`
	Status          RecoveryStatus `cbor:"st" json:"status"`
	Error           string         `cbor:"e" json:"error,omitempty"`
	UpdatedAt       time.Time      `cbor:"u" json:"updatedAt"`
}

type AssetLocation int

const (
	AssetLocationNotFound AssetLocation = iota
	AssetLocationInWallet
	AssetLocationAtTarget
)

func (l AssetLocation) String() string {
	switch l {
	case AssetLocationInWallet:
		return "InWallet"
	case AssetLocationAtTarget:
		return "AlreadyAtTarget"
	default:
		return "NotFound"
	}
}

type TransferReceipt struct {
	Signature      string
	CreatedAccount bool
}

type Account struct {
	Address string
	Chain   ChainType
}

type AccountData struct {
	Owner    string
	Lamports uint64
	Data     []byte
}

type MintRequest struct {
	Flow     Flow
	Asset    BridgeableAsset
	Owner    string
	Canister string
}

type MintStatus struct {
	Stage  string
	Done   bool
	Failed bool
	Error  string
	TxID   string
}

type CastRequest struct {
	Asset          BridgeableAsset
	Canister       string
	Receiver       string
	TargetNetwork  Network
	RemoteContract string
}

type CastStatus struct {
	Stage     string
	Finalized bool
	Failed    bool
	Error     string
	TxHash    string
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}

	return v
}
