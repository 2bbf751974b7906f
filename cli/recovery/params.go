package clirecovery

import (
	"fmt"

	"github.com/icrc99-bridge/nft-bridge/bridge/core"
	"github.com/spf13/cobra"
)

const (
	configFlag   = "config"
	assetKeyFlag = "asset-key"
	statusFlag   = "status"

	configFlagDesc   = "path to bridge config json file"
	assetKeyFlagDesc = "recovery key of the asset (mint address or contract:token id)"
	statusFlagDesc   = "only list records with this status (pending, completed or failed)"
)

type listParams struct {
	config string
	status string
}

func (p *listParams) validateFlags() error {
	switch core.RecoveryStatus(p.status) {
	case "", core.RecoveryStatusPending, core.RecoveryStatusCompleted, core.RecoveryStatusFailed:
		return nil
	default:
		return fmt.Errorf("invalid --%s flag: %s", statusFlag, p.status)
	}
}

func (p *listParams) setFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(
		&p.config,
		configFlag,
		"",
		configFlagDesc,
	)

	cmd.Flags().StringVar(
		&p.status,
		statusFlag,
		"",
		statusFlagDesc,
	)
}

type keyParams struct {
	config   string
	assetKey string
	remove   bool
}

func (p *keyParams) validateFlags() error {
	if p.assetKey == "" {
		return fmt.Errorf("--%s flag not specified", assetKeyFlag)
	}

	return nil
}

func (p *keyParams) setFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(
		&p.config,
		configFlag,
		"",
		configFlagDesc,
	)

	cmd.Flags().StringVar(
		&p.assetKey,
		assetKeyFlag,
		"",
		assetKeyFlagDesc,
	)
}
