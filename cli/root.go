package cli

import (
	"fmt"
	"os"

	clibatch "github.com/icrc99-bridge/nft-bridge/cli/batch"
	clibridge "github.com/icrc99-bridge/nft-bridge/cli/bridge"
	clirecovery "github.com/icrc99-bridge/nft-bridge/cli/recovery"
	clirunapi "github.com/icrc99-bridge/nft-bridge/cli/runapi"
	cliversion "github.com/icrc99-bridge/nft-bridge/cli/version"
	cliwalletcreate "github.com/icrc99-bridge/nft-bridge/cli/walletcreate"
	"github.com/icrc99-bridge/nft-bridge/common"
	"github.com/spf13/cobra"
)

type RootCommand struct {
	baseCmd *cobra.Command
}

func NewRootCommand() *RootCommand {
	rootCommand := &RootCommand{
		baseCmd: &cobra.Command{
			Use:          "nft-bridge",
			Short:        "cli commands for bridging nfts between solana, evm and the internet computer",
			SilenceUsage: true,
		},
	}

	rootCommand.baseCmd.PersistentFlags().Bool(common.JSONOutputFlag, false, "print the output as json")
	rootCommand.registerSubCommands()

	return rootCommand
}

func (rc *RootCommand) registerSubCommands() {
	rc.baseCmd.AddCommand(
		clibridge.GetImportCommand(),
		clibridge.GetBurnCommand(),
		clibridge.GetExportCommand(),
		clibridge.GetCostsCommand(),
		clibatch.GetImportBatchCommand(),
		clirecovery.GetRecoveryCommand(),
		clirunapi.GetRunAPICommand(),
		cliwalletcreate.GetWalletCreateCommand(),
		cliversion.GetVersionCommand(),
	)
}

func (rc *RootCommand) Execute() {
	if err := rc.baseCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)

		os.Exit(1)
	}
}
