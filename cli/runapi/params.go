package clirunapi

import "github.com/spf13/cobra"

const (
	configFlag = "config"

	configFlagDesc = "path to bridge config json file"
)

type runAPIParams struct {
	config string
}

func (p *runAPIParams) validateFlags() error {
	return nil
}

func (p *runAPIParams) setFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(
		&p.config,
		configFlag,
		"",
		configFlagDesc,
	)
}
