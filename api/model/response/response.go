package response

import (
	"time"

	"github.com/icrc99-bridge/nft-bridge/bridge/core"
)

type ErrorResponse struct {
	Err string `json:"err"`
}

type RecoveryRecordResponse struct {
	AssetKey        string `json:"assetKey"`
	Flow            string `json:"flow"`
	RequestID       string `json:"requestId"`
	SourceSignature string `json:"sourceSignature,omitempty"`
	Status          string `json:"status"`
	Error           string `json:"error,omitempty"`
	UpdatedAt       string `json:"updatedAt"`
}

func NewRecoveryRecordResponse(record *core.RecoveryRecord) *RecoveryRecordResponse {
	return &RecoveryRecordResponse{
		AssetKey:        record.AssetKey,
		Flow:            string(record.Flow),
		RequestID:       record.RequestID,
		SourceSignature: record.SourceSignature,
		Status:          string(record.Status),
		Error:           record.Error,
		UpdatedAt:       record.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type SettingsResponse struct {
	SolanaNetwork        string `json:"solanaNetwork"`
	EVMNetwork           string `json:"evmNetwork"`
	EVMChainID           uint64 `json:"evmChainId"`
	ICHost               string `json:"icHost"`
	OrchestratorCanister string `json:"orchestratorCanister"`
	CyclesLedgerCanister string `json:"cyclesLedgerCanister"`
}

func NewSettingsResponse(config *core.BridgeConfig) *SettingsResponse {
	return &SettingsResponse{
		SolanaNetwork:        string(config.Solana.Network),
		EVMNetwork:           string(config.EVM.Network),
		EVMChainID:           config.EVM.ChainID,
		ICHost:               config.ICP.Host,
		OrchestratorCanister: config.ICP.OrchestratorCanister,
		CyclesLedgerCanister: config.ICP.CyclesLedgerCanister,
	}
}
