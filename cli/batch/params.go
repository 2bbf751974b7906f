package clibatch

import (
	"errors"
	"fmt"
	"strings"

	"github.com/icrc99-bridge/nft-bridge/bridge/core"
	"github.com/spf13/cobra"
)

const (
	configFlag     = "config"
	chainFlag      = "chain"
	networkFlag    = "network"
	contractFlag   = "contract"
	assetsFlag     = "assets"
	assetsFileFlag = "assets-file"
	yesFlag        = "yes"

	configFlagDesc     = "path to bridge config json file"
	chainFlagDesc      = "chain of the assets (solana or evm)"
	networkFlagDesc    = "network of the assets, defaults to the configured network of the chain"
	contractFlagDesc   = "ERC-721 contract of the assets"
	assetsFlagDesc     = "token ids (mint addresses for solana) to import"
	assetsFileFlagDesc = "path to a json file with the list of token ids to import"
	yesFlagDesc        = "sign every transaction without asking for confirmation"
)

type batchParams struct {
	config     string
	chain      string
	network    string
	contract   string
	assets     []string
	assetsFile string
	yes        bool
}

func (p *batchParams) validateFlags() error {
	if len(p.assets) == 0 && p.assetsFile == "" {
		return fmt.Errorf("specify at least one of: --%s, --%s", assetsFlag, assetsFileFlag)
	}

	switch core.ChainType(p.chain) {
	case core.ChainTypeSolana:
	case core.ChainTypeEVM:
		if p.contract == "" {
			return fmt.Errorf("--%s flag not specified", contractFlag)
		}
	default:
		return fmt.Errorf("invalid --%s flag: %s", chainFlag, p.chain)
	}

	if p.network != "" {
		if _, err := core.ParseNetwork(p.network); err != nil {
			return fmt.Errorf("invalid --%s flag: %w", networkFlag, err)
		}
	}

	return nil
}

func (p *batchParams) setFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(
		&p.config,
		configFlag,
		"",
		configFlagDesc,
	)

	cmd.Flags().StringVar(
		&p.chain,
		chainFlag,
		string(core.ChainTypeSolana),
		chainFlagDesc,
	)

	cmd.Flags().StringVar(
		&p.network,
		networkFlag,
		"",
		networkFlagDesc,
	)

	cmd.Flags().StringVar(
		&p.contract,
		contractFlag,
		"",
		contractFlagDesc,
	)

	cmd.Flags().StringSliceVar(
		&p.assets,
		assetsFlag,
		nil,
		assetsFlagDesc,
	)

	cmd.Flags().StringVar(
		&p.assetsFile,
		assetsFileFlag,
		"",
		assetsFileFlagDesc,
	)

	cmd.Flags().BoolVar(
		&p.yes,
		yesFlag,
		false,
		yesFlagDesc,
	)
}

// tokenIDs merges the flag and file token ids, dropping blanks and duplicates.
func tokenIDs(fromFlag, fromFile []string) ([]string, error) {
	seen := make(map[string]struct{}, len(fromFlag)+len(fromFile))
	result := make([]string, 0, len(fromFlag)+len(fromFile))

	for _, id := range append(append([]string{}, fromFlag...), fromFile...) {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}

		if _, exists := seen[id]; exists {
			continue
		}

		seen[id] = struct{}{}
		result = append(result, id)
	}

	if len(result) == 0 {
		return nil, errors.New("no token ids to import")
	}

	return result, nil
}
