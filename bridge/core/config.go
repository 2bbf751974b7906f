package core

import (
	"time"

	"github.com/Ethernal-Tech/cardano-infrastructure/logger"
	apiCore "github.com/icrc99-bridge/nft-bridge/api/core"
	"github.com/icrc99-bridge/nft-bridge/telemetry"
)

type SolanaConfig struct {
	RPCURL             string  `json:"rpcUrl" validate:"omitempty,url"`
	WSURL              string  `json:"wsUrl" validate:"omitempty,url"`
	Network            Network `json:"network" default:"devnet" validate:"oneof=mainnet devnet testnet localnet"`
	Commitment         string  `json:"commitment" default:"finalized" validate:"oneof=confirmed finalized"`
	BaseTransferFee    uint64  `json:"baseTransferFee" default:"5000"`
	AccountCreationFee uint64  `json:"accountCreationFee" default:"2040000"`
	QueryRent          bool    `json:"queryRent"`
}

type EVMConfig struct {
	NodeURL   string  `json:"nodeUrl" validate:"omitempty,url"`
	ChainID   uint64  `json:"chainId"`
	Network   Network `json:"network" default:"testnet" validate:"oneof=mainnet devnet testnet localnet"`
	GasLimit  uint64  `json:"gasLimit" default:"150000"`
	DynamicTx bool    `json:"dynamicTx"`
}

func (c EVMConfig) IsEnabled() bool {
	return c.NodeURL != ""
}

type ICPConfig struct {
	Host                 string `json:"host" default:"https://icp-api.io" validate:"required,url"`
	OrchestratorCanister string `json:"orchestratorCanister" validate:"required"`
	CyclesLedgerCanister string `json:"cyclesLedgerCanister" default:"um5iw-rqaaa-aaaaq-qaaba-cai" validate:"required"`
	FetchRootKey         bool   `json:"fetchRootKey"`
}

type PollConfig struct {
	IntervalMilis uint64 `json:"intervalMs" default:"3000" validate:"min=1"`
	MaxAttempts   uint64 `json:"maxAttempts" default:"60" validate:"min=1"`
}

func (c PollConfig) Interval() time.Duration {
	return time.Duration(c.IntervalMilis) * time.Millisecond
}

type SecretsConfig struct {
	DataDir            string `json:"dataDir" default:"./bridge_secrets"`
	ConfigPath         string `json:"configPath"`
	InsecureLocalStore bool   `json:"insecureLocalStore"`
}

type BridgeConfig struct {
	Solana    SolanaConfig              `json:"solana"`
	EVM       EVMConfig                 `json:"evm"`
	ICP       ICPConfig                 `json:"icp"`
	Poll      PollConfig                `json:"poll"`
	Secrets   SecretsConfig             `json:"secrets"`
	DbPath    string                    `json:"dbPath" default:"./bridge_data/recovery.db" validate:"required"`
	Logger    logger.LoggerConfig       `json:"logger"`
	Telemetry telemetry.TelemetryConfig `json:"telemetry"`
	API       apiCore.APIConfig         `json:"api"`
}
