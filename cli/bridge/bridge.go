package clibridge

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	bridgemanager "github.com/icrc99-bridge/nft-bridge/bridge/bridge_manager"
	"github.com/icrc99-bridge/nft-bridge/bridge/core"
	"github.com/icrc99-bridge/nft-bridge/bridge/progress"
	"github.com/icrc99-bridge/nft-bridge/bridge/wizard"
	"github.com/icrc99-bridge/nft-bridge/common"
	"github.com/icrc99-bridge/nft-bridge/queue"
	"github.com/spf13/cobra"
)

var (
	importParamsData = newBridgeParams(core.FlowImport)
	burnParamsData   = newBridgeParams(core.FlowBurn)
	exportParamsData = newBridgeParams(core.FlowExport)
	costsParamsData  = &costsParams{bridgeParams: newBridgeParams(core.FlowImport)}
)

func GetImportCommand() *cobra.Command {
	return newFlowCommand("import", "imports a Solana or EVM NFT to the Internet Computer", importParamsData)
}

func GetBurnCommand() *cobra.Command {
	return newFlowCommand("burn", "returns a cast Solana NFT to its Internet Computer collection", burnParamsData)
}

func GetExportCommand() *cobra.Command {
	return newFlowCommand("export", "exports an ICRC-7 NFT to a Solana or EVM network", exportParamsData)
}

func newFlowCommand(use, short string, params *bridgeParams) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		PreRunE: func(_ *cobra.Command, _ []string) error {
			return params.validateFlags()
		},
		Run: common.GetCliRunCommand(params),
	}

	params.setFlags(cmd)

	return cmd
}

func (p *bridgeParams) Execute(outputter common.OutputFormatter) (common.ICommandResult, error) {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	session, err := OpenSession(ctx, p.config, p.approver())
	if err != nil {
		return nil, err
	}

	defer session.Close()

	relay := queue.NewRelay(func(steps []progress.BridgeStep) {
		outputter.WriteCommandResult(&progressCmdResult{Steps: steps})
	})
	defer relay.Close()

	w, asset, err := p.newWizard(session, relay.Add)
	if err != nil {
		return nil, err
	}

	bridgeCosts, err := w.Prepare(ctx, asset, p.destination())
	if err != nil {
		return nil, err
	}

	outputter.WriteCommandResult(newCostsCmdResult(bridgeCosts, w.State().Allowance))

	if err := w.ApproveAndAdvance(ctx); err != nil {
		return nil, err
	}

	result, err := w.Execute(ctx)
	if err != nil {
		return nil, err
	}

	if err := w.Close(); err != nil {
		session.Logger.Warn("failed to close wizard", "err", err)
	}

	relay.Close()

	if !result.Success {
		outputter.WriteCommandResult(&resultCmdResult{Result: result})

		return nil, fmt.Errorf("%s of %s failed (%s): %s", result.Flow, asset.Key(), result.ErrorKind, result.Error)
	}

	return &resultCmdResult{Result: result}, nil
}

func (p *bridgeParams) newWizard(
	session *Session, onProgress progress.Listener,
) (*wizard.Wizard, core.BridgeableAsset, error) {
	chain, err := p.chainType()
	if err != nil {
		return nil, core.BridgeableAsset{}, err
	}

	asset, err := core.NewBridgeableAsset(
		chain, p.assetNetwork(session.Config, chain), p.asset, p.contract, p.recovery)
	if err != nil {
		return nil, core.BridgeableAsset{}, err
	}

	w, err := session.Manager.NewWizard(bridgemanager.WizardRequest{
		Flow:       p.flow,
		Chain:      chain,
		Contract:   p.contract,
		OnProgress: onProgress,
	})
	if err != nil {
		return nil, core.BridgeableAsset{}, err
	}

	return w, asset, nil
}

func (p *bridgeParams) destination() *wizard.Destination {
	if p.flow != core.FlowExport {
		return nil
	}

	network, _ := core.ParseNetwork(p.targetNetwork)

	return &wizard.Destination{Network: network, Receiver: p.receiver}
}
