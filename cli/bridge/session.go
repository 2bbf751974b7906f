package clibridge

import (
	"context"
	"errors"
	"time"

	"github.com/hashicorp/go-hclog"
	bridgemanager "github.com/icrc99-bridge/nft-bridge/bridge/bridge_manager"
	"github.com/icrc99-bridge/nft-bridge/bridge/core"
	"github.com/icrc99-bridge/nft-bridge/common"
	"github.com/icrc99-bridge/nft-bridge/telemetry"
)

const telemetryCloseTimeout = 5 * time.Second

// Session holds what every bridging command needs: the loaded config, the
// logger, the started telemetry and the bridge manager.
type Session struct {
	Config    *core.BridgeConfig
	Logger    hclog.Logger
	Manager   *bridgemanager.BridgeManagerImpl
	telemetry *telemetry.Telemetry
}

func OpenSession(ctx context.Context, configPath string, approver common.Approver) (*Session, error) {
	config, err := bridgemanager.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	logger, err := bridgemanager.NewLogger(config)
	if err != nil {
		return nil, err
	}

	tel := telemetry.NewTelemetry(config.Telemetry, logger.Named("telemetry"))
	if err := tel.Start(); err != nil {
		logger.Error("telemetry start failed", "err", err)

		return nil, err
	}

	manager, err := bridgemanager.NewBridgeManager(ctx, config, approver, logger)
	if err != nil {
		logger.Error("bridge manager creation failed", "err", err)

		closeCtx, cancel := context.WithTimeout(context.Background(), telemetryCloseTimeout)
		defer cancel()

		return nil, errors.Join(err, tel.Close(closeCtx))
	}

	return &Session{
		Config:    config,
		Logger:    logger,
		Manager:   manager,
		telemetry: tel,
	}, nil
}

func (s *Session) Close() {
	if err := s.Manager.Dispose(); err != nil {
		s.Logger.Error("failed to dispose bridge manager", "err", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), telemetryCloseTimeout)
	defer cancel()

	if err := s.telemetry.Close(ctx); err != nil {
		s.Logger.Error("failed to close telemetry", "err", err)
	}
}
