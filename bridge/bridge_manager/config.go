package bridgemanager

import (
	"fmt"

	loggerInfra "github.com/Ethernal-Tech/cardano-infrastructure/logger"
	"github.com/hashicorp/go-hclog"
	"github.com/icrc99-bridge/nft-bridge/bridge/core"
	"github.com/icrc99-bridge/nft-bridge/common"
)

const configPrefix = "bridge"

// LoadConfig reads bridge_config.json next to the executable when configPath is empty.
func LoadConfig(configPath string) (*core.BridgeConfig, error) {
	config, err := common.LoadConfig[core.BridgeConfig](configPath, configPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return config, nil
}

func NewLogger(config *core.BridgeConfig) (hclog.Logger, error) {
	logger, err := loggerInfra.NewLogger(config.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return logger.Named("nft_bridge"), nil
}
