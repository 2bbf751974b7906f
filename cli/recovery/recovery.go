package clirecovery

import (
	"fmt"

	bridgemanager "github.com/icrc99-bridge/nft-bridge/bridge/bridge_manager"
	"github.com/icrc99-bridge/nft-bridge/bridge/core"
	databaseaccess "github.com/icrc99-bridge/nft-bridge/bridge/database_access"
	"github.com/icrc99-bridge/nft-bridge/common"
	"github.com/spf13/cobra"
)

var (
	listParamsData   = &listParams{}
	getParamsData    = &keyParams{}
	deleteParamsData = &keyParams{remove: true}
)

func GetRecoveryCommand() *cobra.Command {
	recoveryCmd := &cobra.Command{
		Use:   "recovery",
		Short: "inspects bridge requests kept for recovery",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "lists recovery records",
		Args:  cobra.NoArgs,
		PreRunE: func(_ *cobra.Command, _ []string) error {
			return listParamsData.validateFlags()
		},
		Run: common.GetCliRunCommand(listParamsData),
	}
	getCmd := &cobra.Command{
		Use:   "get",
		Short: "shows the recovery record of an asset",
		Args:  cobra.NoArgs,
		PreRunE: func(_ *cobra.Command, _ []string) error {
			return getParamsData.validateFlags()
		},
		Run: common.GetCliRunCommand(getParamsData),
	}
	deleteCmd := &cobra.Command{
		Use:   "delete",
		Short: "removes the recovery record of an asset so it is bridged from scratch",
		Args:  cobra.NoArgs,
		PreRunE: func(_ *cobra.Command, _ []string) error {
			return deleteParamsData.validateFlags()
		},
		Run: common.GetCliRunCommand(deleteParamsData),
	}

	listParamsData.setFlags(listCmd)
	getParamsData.setFlags(getCmd)
	deleteParamsData.setFlags(deleteCmd)

	recoveryCmd.AddCommand(listCmd, getCmd, deleteCmd)

	return recoveryCmd
}

func openStore(configPath string) (core.RecoveryStore, error) {
	config, err := bridgemanager.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	return databaseaccess.NewDatabase(config.DbPath)
}

func (p *listParams) Execute(_ common.OutputFormatter) (common.ICommandResult, error) {
	store, err := openStore(p.config)
	if err != nil {
		return nil, err
	}

	defer store.Close()

	records, err := store.List()
	if err != nil {
		return nil, err
	}

	filtered := make([]*core.RecoveryRecord, 0, len(records))

	for _, record := range records {
		if p.status == "" || record.Status == core.RecoveryStatus(p.status) {
			filtered = append(filtered, record)
		}
	}

	return &recordsCmdResult{Records: filtered}, nil
}

func (p *keyParams) Execute(_ common.OutputFormatter) (common.ICommandResult, error) {
	store, err := openStore(p.config)
	if err != nil {
		return nil, err
	}

	defer store.Close()

	record, err := store.Get(p.assetKey)
	if err != nil {
		return nil, err
	}

	if record == nil {
		return nil, fmt.Errorf("no recovery record for %s", p.assetKey)
	}

	if p.remove {
		if err := store.Delete(p.assetKey); err != nil {
			return nil, err
		}
	}

	return &recordsCmdResult{Records: []*core.RecoveryRecord{record}, deleted: p.remove}, nil
}
