package clirunapi

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/icrc99-bridge/nft-bridge/api"
	"github.com/icrc99-bridge/nft-bridge/api/controllers"
	apiCore "github.com/icrc99-bridge/nft-bridge/api/core"
	apiUtils "github.com/icrc99-bridge/nft-bridge/api/utils"
	bridgemanager "github.com/icrc99-bridge/nft-bridge/bridge/bridge_manager"
	databaseaccess "github.com/icrc99-bridge/nft-bridge/bridge/database_access"
	"github.com/icrc99-bridge/nft-bridge/common"
	"github.com/spf13/cobra"
)

var runAPIParamsData = &runAPIParams{}

func GetRunAPICommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "run-api",
		Short:   "serves recovery records and bridge settings over http",
		Args:    cobra.NoArgs,
		PreRunE: runPreRun,
		Run:     common.GetCliRunCommand(runAPIParamsData),
	}

	runAPIParamsData.setFlags(cmd)

	return cmd
}

func runPreRun(_ *cobra.Command, _ []string) error {
	return runAPIParamsData.validateFlags()
}

func (p *runAPIParams) Execute(_ common.OutputFormatter) (common.ICommandResult, error) {
	config, err := bridgemanager.LoadConfig(p.config)
	if err != nil {
		return nil, err
	}

	logger, err := apiUtils.NewAPILogger(config.Logger)
	if err != nil {
		return nil, err
	}

	store, err := databaseaccess.NewDatabase(config.DbPath)
	if err != nil {
		logger.Error("failed to open recovery store", "err", err)

		return nil, err
	}

	defer store.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	apiObj, err := api.NewAPI(ctx, config.API, []apiCore.APIController{
		controllers.NewRecoveryController(store, logger.Named("recovery_controller")),
		controllers.NewSettingsController(config, logger.Named("settings_controller")),
	}, logger.Named("api"))
	if err != nil {
		return nil, err
	}

	go apiObj.Start()

	<-ctx.Done()

	if err := apiObj.Dispose(); err != nil {
		logger.Error("error while disposing api", "err", err)
	}

	return &runAPICmdResult{Port: config.API.Port}, nil
}

type runAPICmdResult struct {
	Port uint32 `json:"port"`
}

func (r runAPICmdResult) GetOutput() string {
	return "api stopped\n"
}
