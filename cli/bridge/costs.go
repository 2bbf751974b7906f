package clibridge

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/icrc99-bridge/nft-bridge/bridge/core"
	"github.com/icrc99-bridge/nft-bridge/common"
	"github.com/spf13/cobra"
)

const flowFlag = "flow"

type costsParams struct {
	*bridgeParams
	flowName string
}

func (p *costsParams) validateFlags() error {
	p.flow = core.Flow(p.flowName)
	if !p.flow.IsValid() {
		return errInvalidFlow(p.flowName)
	}

	return p.bridgeParams.validateFlags()
}

func GetCostsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "costs",
		Short: "shows the fees and the cycles allowance needed to bridge an asset",
		Args:  cobra.NoArgs,
		PreRunE: func(_ *cobra.Command, _ []string) error {
			return costsParamsData.validateFlags()
		},
		Run: common.GetCliRunCommand(costsParamsData),
	}

	// export flags are registered for every flow since the flow is only known after parsing
	costsParamsData.flow = core.FlowExport
	costsParamsData.setFlags(cmd)

	cmd.Flags().StringVar(
		&costsParamsData.flowName,
		flowFlag,
		string(core.FlowImport),
		"bridge flow (import, burn or export)",
	)

	return cmd
}

func (p *costsParams) Execute(_ common.OutputFormatter) (common.ICommandResult, error) {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	session, err := OpenSession(ctx, p.config, common.AutoApprover)
	if err != nil {
		return nil, err
	}

	defer session.Close()

	w, asset, err := p.newWizard(session, nil)
	if err != nil {
		return nil, err
	}

	bridgeCosts, err := w.Prepare(ctx, asset, p.destination())
	if err != nil {
		return nil, err
	}

	return newCostsCmdResult(bridgeCosts, w.State().Allowance), nil
}
