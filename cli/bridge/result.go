package clibridge

import (
	"bytes"
	"fmt"
	"math/big"
	"time"

	"github.com/icrc99-bridge/nft-bridge/bridge/core"
	"github.com/icrc99-bridge/nft-bridge/bridge/progress"
	"github.com/icrc99-bridge/nft-bridge/common"
	"github.com/shopspring/decimal"
)

// decimals of the native unit of each chain, cycles are shown in trillions
var chainDecimals = map[core.ChainType]int32{
	core.ChainTypeSolana: 9,
	core.ChainTypeEVM:    18,
	core.ChainTypeICP:    12,
}

var chainUnits = map[core.ChainType]string{
	core.ChainTypeSolana: "SOL",
	core.ChainTypeEVM:    "ETH",
	core.ChainTypeICP:    "TC",
}

func formatAmount(chain core.ChainType, amount *big.Int) string {
	if amount == nil {
		return "0"
	}

	return fmt.Sprintf("%s %s", decimal.NewFromBigInt(amount, -chainDecimals[chain]).String(), chainUnits[chain])
}

type progressCmdResult struct {
	Steps []progress.BridgeStep `json:"steps"`
}

func (r progressCmdResult) GetOutput() string {
	vals := make([]string, 0, len(r.Steps))

	for _, step := range r.Steps {
		detail := step.Description
		if step.TxHash != "" {
			detail = step.TxHash
		}

		if step.Error != "" {
			detail = step.Error
		}

		vals = append(vals, fmt.Sprintf("%s|%s|%s", step.Title, step.Status, detail))
	}

	return "\n[PROGRESS]\n" + common.FormatList(vals) + "\n"
}

type costsCmdResult struct {
	Asset                 string `json:"asset"`
	ApprovalAddress       string `json:"approvalAddress"`
	DestinationCanister   string `json:"destinationCanister,omitempty"`
	RemoteContract        string `json:"remoteContract,omitempty"`
	BaseFee               string `json:"baseFee"`
	AccountCreationFee    string `json:"accountCreationFee"`
	AccountCreationNeeded bool   `json:"accountCreationNeeded"`
	TotalCost             string `json:"totalCost"`
	Balance               string `json:"balance"`
	Insufficient          bool   `json:"insufficientBalance"`
	ComputeFee            string `json:"computeFee"`
	Allowance             string `json:"allowance"`
	AllowanceExpiresAt    string `json:"allowanceExpiresAt,omitempty"`
	AllowanceSufficient   bool   `json:"allowanceSufficient"`
}

func newCostsCmdResult(costs *core.BridgeCosts, allowance *core.AllowanceStatus) *costsCmdResult {
	chain := costs.Asset.Chain
	res := &costsCmdResult{
		Asset:                 costs.Asset.Key(),
		ApprovalAddress:       costs.ApprovalAddress,
		DestinationCanister:   costs.DestinationCanister,
		RemoteContract:        costs.RemoteContract,
		BaseFee:               formatAmount(chain, costs.SourceFee.BaseFee),
		AccountCreationFee:    formatAmount(chain, costs.SourceFee.AccountCreationFee),
		AccountCreationNeeded: costs.SourceFee.AccountCreationNeeded,
		TotalCost:             formatAmount(chain, costs.TotalCost),
		Balance:               formatAmount(chain, costs.Balance),
		Insufficient:          costs.HasInsufficientBalance,
		ComputeFee:            formatAmount(core.ChainTypeICP, costs.ComputeFee),
	}

	if allowance != nil {
		res.Allowance = formatAmount(core.ChainTypeICP, allowance.Amount)
		res.AllowanceSufficient = allowance.Sufficient

		if allowance.ExpiresAt != nil {
			res.AllowanceExpiresAt = allowance.ExpiresAt.UTC().Format(time.RFC3339)
		}
	}

	return res
}

func (r costsCmdResult) GetOutput() string {
	var buffer bytes.Buffer

	vals := []string{
		fmt.Sprintf("Asset|%s", r.Asset),
		fmt.Sprintf("Approval Address|%s", r.ApprovalAddress),
	}

	if r.DestinationCanister != "" {
		vals = append(vals, fmt.Sprintf("Destination Canister|%s", r.DestinationCanister))
	}

	if r.RemoteContract != "" {
		vals = append(vals, fmt.Sprintf("Remote Contract|%s", r.RemoteContract))
	}

	vals = append(vals,
		fmt.Sprintf("Base Fee|%s", r.BaseFee),
		fmt.Sprintf("Account Creation Fee|%s (needed: %t)", r.AccountCreationFee, r.AccountCreationNeeded),
		fmt.Sprintf("Total Cost|%s", r.TotalCost),
		fmt.Sprintf("Balance|%s (insufficient: %t)", r.Balance, r.Insufficient),
		fmt.Sprintf("Compute Fee|%s", r.ComputeFee),
		fmt.Sprintf("Allowance|%s (sufficient: %t)", r.Allowance, r.AllowanceSufficient),
	)

	if r.AllowanceExpiresAt != "" {
		vals = append(vals, fmt.Sprintf("Allowance Expires At|%s", r.AllowanceExpiresAt))
	}

	buffer.WriteString("\n[COSTS]\n")
	buffer.WriteString(common.FormatKV(vals))
	buffer.WriteString("\n")

	return buffer.String()
}

type resultCmdResult struct {
	Result *core.BridgeResult `json:"result"`
}

func (r resultCmdResult) GetOutput() string {
	res := r.Result
	vals := []string{
		fmt.Sprintf("Run ID|%s", res.RunID),
		fmt.Sprintf("Flow|%s", res.Flow),
		fmt.Sprintf("Asset|%s", res.Asset.Key()),
		fmt.Sprintf("Success|%t", res.Success),
		fmt.Sprintf("Source Signature|%s", res.SourceSignature),
		fmt.Sprintf("Request ID|%s", res.RequestID),
		fmt.Sprintf("Destination Canister|%s", res.DestinationCanister),
		fmt.Sprintf("Destination Tx|%s", res.DestinationTxHash),
	}

	if !res.Success {
		vals = append(vals, fmt.Sprintf("Error|%s: %s", res.ErrorKind, res.Error))
	}

	if res.Warning != "" {
		vals = append(vals, fmt.Sprintf("Warning|%s", res.Warning))
	}

	return "\n[RESULT]\n" + common.FormatKV(vals) + "\n"
}
