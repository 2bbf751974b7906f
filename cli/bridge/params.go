package clibridge

import (
	"fmt"
	"os"

	"github.com/icrc99-bridge/nft-bridge/bridge/core"
	"github.com/icrc99-bridge/nft-bridge/common"
	"github.com/spf13/cobra"
)

const (
	configFlag        = "config"
	chainFlag         = "chain"
	networkFlag       = "network"
	assetFlag         = "asset"
	contractFlag      = "contract"
	recoveryFlag      = "recovery"
	targetNetworkFlag = "target-network"
	receiverFlag      = "receiver"
	yesFlag           = "yes"

	configFlagDesc        = "path to bridge config json file"
	chainFlagDesc         = "chain of the asset (solana, evm or icp)"
	networkFlagDesc       = "network of the asset, defaults to the configured network of the chain"
	assetFlagDesc         = "token id of the asset (mint address for solana)"
	contractFlagDesc      = "collection of the asset (ERC-721 contract or ICRC-7 canister)"
	recoveryFlagDesc      = "skip the source transfer because the asset already reached the approval address"
	targetNetworkFlagDesc = "network the asset is exported to"
	receiverFlagDesc      = "receiver of the exported asset on the target network"
	yesFlagDesc           = "sign every transaction without asking for confirmation"
)

type bridgeParams struct {
	flow          core.Flow
	config        string
	chain         string
	network       string
	asset         string
	contract      string
	recovery      bool
	targetNetwork string
	receiver      string
	yes           bool
}

func errInvalidFlow(flow string) error {
	return fmt.Errorf("invalid --%s flag: %s", flowFlag, flow)
}

func newBridgeParams(flow core.Flow) *bridgeParams {
	return &bridgeParams{flow: flow}
}

func (p *bridgeParams) validateFlags() error {
	if p.asset == "" {
		return fmt.Errorf("--%s flag not specified", assetFlag)
	}

	if _, err := p.chainType(); err != nil {
		return err
	}

	if p.network != "" {
		if _, err := core.ParseNetwork(p.network); err != nil {
			return fmt.Errorf("invalid --%s flag: %w", networkFlag, err)
		}
	}

	if p.flow == core.FlowExport {
		if p.receiver == "" {
			return fmt.Errorf("--%s flag not specified", receiverFlag)
		}

		if _, err := core.ParseNetwork(p.targetNetwork); err != nil {
			return fmt.Errorf("invalid --%s flag: %w", targetNetworkFlag, err)
		}
	}

	return nil
}

func (p *bridgeParams) setFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(
		&p.config,
		configFlag,
		"",
		configFlagDesc,
	)

	cmd.Flags().StringVar(
		&p.chain,
		chainFlag,
		"",
		chainFlagDesc,
	)

	cmd.Flags().StringVar(
		&p.network,
		networkFlag,
		"",
		networkFlagDesc,
	)

	cmd.Flags().StringVar(
		&p.asset,
		assetFlag,
		"",
		assetFlagDesc,
	)

	cmd.Flags().StringVar(
		&p.contract,
		contractFlag,
		"",
		contractFlagDesc,
	)

	cmd.Flags().BoolVar(
		&p.recovery,
		recoveryFlag,
		false,
		recoveryFlagDesc,
	)

	cmd.Flags().BoolVar(
		&p.yes,
		yesFlag,
		false,
		yesFlagDesc,
	)

	if p.flow == core.FlowExport {
		cmd.Flags().StringVar(
			&p.targetNetwork,
			targetNetworkFlag,
			"",
			targetNetworkFlagDesc,
		)

		cmd.Flags().StringVar(
			&p.receiver,
			receiverFlag,
			"",
			receiverFlagDesc,
		)
	}
}

// chainType falls back to the only source chain of burn and export.
func (p *bridgeParams) chainType() (core.ChainType, error) {
	switch chain := core.ChainType(p.chain); chain {
	case core.ChainTypeSolana, core.ChainTypeEVM, core.ChainTypeICP:
		return chain, nil
	case "":
		if p.flow == core.FlowExport {
			return core.ChainTypeICP, nil
		}

		return core.ChainTypeSolana, nil
	default:
		return "", fmt.Errorf("invalid --%s flag: %s", chainFlag, p.chain)
	}
}

func (p *bridgeParams) assetNetwork(config *core.BridgeConfig, chain core.ChainType) core.Network {
	if p.network != "" {
		network, _ := core.ParseNetwork(p.network)

		return network
	}

	switch chain {
	case core.ChainTypeSolana:
		return config.Solana.Network
	case core.ChainTypeEVM:
		return config.EVM.Network
	default:
		return core.NetworkMainnet
	}
}

func (p *bridgeParams) approver() common.Approver {
	if p.yes {
		return common.AutoApprover
	}

	return common.NewPromptApprover(os.Stdin, os.Stderr)
}
