package cliwalletcreate

import (
	"github.com/icrc99-bridge/nft-bridge/common"
	"github.com/spf13/cobra"
)

var walletCreateParamsData = &walletCreateParams{}

func GetWalletCreateCommand() *cobra.Command {
	walletCreateCmd := &cobra.Command{
		Use:     "wallet-create",
		Short:   "creates or imports the solana, evm or icp wallet used by the bridge",
		Args:    cobra.NoArgs,
		PreRunE: runPreRun,
		Run:     common.GetCliRunCommand(walletCreateParamsData),
	}

	walletCreateParamsData.setFlags(walletCreateCmd)

	return walletCreateCmd
}

func runPreRun(_ *cobra.Command, _ []string) error {
	return walletCreateParamsData.validateFlags()
}
