package controllers

import (
	"net/http"

	"github.com/hashicorp/go-hclog"
	apiCore "github.com/icrc99-bridge/nft-bridge/api/core"
	"github.com/icrc99-bridge/nft-bridge/api/model/response"
	"github.com/icrc99-bridge/nft-bridge/api/utils"
	"github.com/icrc99-bridge/nft-bridge/bridge/core"
)

type SettingsControllerImpl struct {
	config *core.BridgeConfig
	logger hclog.Logger
}

var _ apiCore.APIController = (*SettingsControllerImpl)(nil)

func NewSettingsController(config *core.BridgeConfig, logger hclog.Logger) *SettingsControllerImpl {
	return &SettingsControllerImpl{
		config: config,
		logger: logger,
	}
}

func (*SettingsControllerImpl) GetPathPrefix() string {
	return "Settings"
}

func (c *SettingsControllerImpl) GetEndpoints() []*apiCore.APIEndpoint {
	return []*apiCore.APIEndpoint{
		{Path: "Get", Method: http.MethodGet, Handler: c.get},
	}
}

func (c *SettingsControllerImpl) get(w http.ResponseWriter, r *http.Request) {
	utils.WriteResponse(w, r, http.StatusOK, response.NewSettingsResponse(c.config), c.logger)
}
