package clibatch

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	bridgemanager "github.com/icrc99-bridge/nft-bridge/bridge/bridge_manager"
	"github.com/icrc99-bridge/nft-bridge/bridge/core"
	clibridge "github.com/icrc99-bridge/nft-bridge/cli/bridge"
	"github.com/icrc99-bridge/nft-bridge/common"
	"github.com/spf13/cobra"
)

var batchParamsData = &batchParams{}

func GetImportBatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "import-batch",
		Short:   "imports several NFTs one after another",
		Args:    cobra.NoArgs,
		PreRunE: runPreRun,
		Run:     common.GetCliRunCommand(batchParamsData),
	}

	batchParamsData.setFlags(cmd)

	return cmd
}

func runPreRun(_ *cobra.Command, _ []string) error {
	return batchParamsData.validateFlags()
}

func (p *batchParams) Execute(_ common.OutputFormatter) (common.ICommandResult, error) {
	var fromFile []string

	if p.assetsFile != "" {
		ids, err := common.LoadJson[[]string](p.assetsFile)
		if err != nil {
			return nil, err
		}

		fromFile = *ids
	}

	ids, err := tokenIDs(p.assets, fromFile)
	if err != nil {
		return nil, err
	}

	approver := common.NewPromptApprover(os.Stdin, os.Stderr)
	if p.yes {
		approver = common.AutoApprover
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	session, err := clibridge.OpenSession(ctx, p.config, approver)
	if err != nil {
		return nil, err
	}

	defer session.Close()

	chain := core.ChainType(p.chain)

	network := session.Config.Solana.Network
	if chain == core.ChainTypeEVM {
		network = session.Config.EVM.Network
	}

	if p.network != "" {
		network, _ = core.ParseNetwork(p.network)
	}

	assets := make([]core.BridgeableAsset, 0, len(ids))

	for _, id := range ids {
		asset, err := core.NewBridgeableAsset(chain, network, id, p.contract, false)
		if err != nil {
			return nil, err
		}

		assets = append(assets, asset)
	}

	importer, err := session.Manager.NewBatchImporter(bridgemanager.WizardRequest{
		Flow:     core.FlowImport,
		Chain:    chain,
		Contract: p.contract,
	})
	if err != nil {
		return nil, err
	}

	items, err := importer.Run(ctx, assets)
	if err != nil {
		return nil, err
	}

	return newBatchCmdResult(items), nil
}
