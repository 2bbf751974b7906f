package controllers

import (
	"errors"
	"net/http"

	"github.com/hashicorp/go-hclog"
	apiCore "github.com/icrc99-bridge/nft-bridge/api/core"
	"github.com/icrc99-bridge/nft-bridge/api/model/response"
	"github.com/icrc99-bridge/nft-bridge/api/utils"
	"github.com/icrc99-bridge/nft-bridge/bridge/core"
)

type RecoveryControllerImpl struct {
	store  core.RecoveryStore
	logger hclog.Logger
}

var _ apiCore.APIController = (*RecoveryControllerImpl)(nil)

func NewRecoveryController(store core.RecoveryStore, logger hclog.Logger) *RecoveryControllerImpl {
	return &RecoveryControllerImpl{
		store:  store,
		logger: logger,
	}
}

func (*RecoveryControllerImpl) GetPathPrefix() string {
	return "Recovery"
}

func (c *RecoveryControllerImpl) GetEndpoints() []*apiCore.APIEndpoint {
	return []*apiCore.APIEndpoint{
		{Path: "Get", Method: http.MethodGet, Handler: c.get},
		{Path: "GetAll", Method: http.MethodGet, Handler: c.getAll},
		{Path: "Delete", Method: http.MethodDelete, Handler: c.delete, APIKeyAuth: true},
	}
}

func (c *RecoveryControllerImpl) get(w http.ResponseWriter, r *http.Request) {
	key, ok := utils.QueryParam(w, r, "assetKey", c.logger)
	if !ok {
		return
	}

	record, err := c.store.Get(key)
	if err != nil {
		utils.WriteErrorResponse(w, r, http.StatusInternalServerError, err, c.logger)

		return
	}

	if record == nil {
		utils.WriteErrorResponse(w, r, http.StatusNotFound, errors.New("Not found"), c.logger)

		return
	}

	utils.WriteResponse(w, r, http.StatusOK, response.NewRecoveryRecordResponse(record), c.logger)
}

func (c *RecoveryControllerImpl) getAll(w http.ResponseWriter, r *http.Request) {
	status := core.RecoveryStatus(r.URL.Query().Get("status"))

	records, err := c.store.List()
	if err != nil {
		utils.WriteErrorResponse(w, r, http.StatusInternalServerError, err, c.logger)

		return
	}

	result := make([]*response.RecoveryRecordResponse, 0, len(records))

	for _, record := range records {
		if status == "" || record.Status == status {
			result = append(result, response.NewRecoveryRecordResponse(record))
		}
	}

	utils.WriteResponse(w, r, http.StatusOK, result, c.logger)
}

func (c *RecoveryControllerImpl) delete(w http.ResponseWriter, r *http.Request) {
	key, ok := utils.QueryParam(w, r, "assetKey", c.logger)
	if !ok {
		return
	}

	if err := c.store.Delete(key); err != nil {
		utils.WriteErrorResponse(w, r, http.StatusInternalServerError, err, c.logger)

		return
	}

	c.logger.Info("Recovery record deleted", "assetKey", key)

	w.WriteHeader(http.StatusNoContent)
}
