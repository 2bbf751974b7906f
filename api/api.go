package api

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/hashicorp/go-hclog"
	"github.com/icrc99-bridge/nft-bridge/api/core"
	"github.com/icrc99-bridge/nft-bridge/api/utils"
	"github.com/icrc99-bridge/nft-bridge/common"
)

const readHeaderTimeout = 3 * time.Second

// APIImpl serves the recovery store and the bridge settings of a single
// user installation.
type APIImpl struct {
	ctx       context.Context
	apiConfig core.APIConfig
	handler   http.Handler
	server    *http.Server
	logger    hclog.Logger

	stoppedCh chan struct{}
}

var _ core.API = (*APIImpl)(nil)

func NewAPI(
	ctx context.Context, apiConfig core.APIConfig,
	controllers []core.APIController, logger hclog.Logger,
) (
	*APIImpl, error,
) {
	router := mux.NewRouter().StrictSlash(true)

	for _, controller := range controllers {
		for _, endpoint := range controller.GetEndpoints() {
			registerEndpoint(router, apiConfig, controller.GetPathPrefix(), *endpoint, logger)
		}
	}

	cors := handlers.CORS(
		handlers.AllowedOrigins(apiConfig.AllowedOrigins),
		handlers.AllowedHeaders(append([]string{apiConfig.APIKeyHeader}, apiConfig.AllowedHeaders...)),
		handlers.AllowedMethods(apiConfig.AllowedMethods),
	)

	return &APIImpl{
		ctx:       ctx,
		apiConfig: apiConfig,
		handler:   cors(router),
		logger:    logger,
		stoppedCh: make(chan struct{}),
	}, nil
}

// registerEndpoint leaves out endpoints that need an api key when no key is configured.
func registerEndpoint(
	router *mux.Router, apiConfig core.APIConfig, prefix string, endpoint core.APIEndpoint, logger hclog.Logger,
) {
	path := fmt.Sprintf("/%s/%s/%s", apiConfig.PathPrefix, prefix, endpoint.Path)

	if endpoint.APIKeyAuth && len(apiConfig.APIKeys) == 0 {
		logger.Warn("No api key configured, endpoint disabled", "endpoint", path)

		return
	}

	handler := endpoint.Handler
	if endpoint.APIKeyAuth {
		handler = withAPIKeyAuth(apiConfig, handler, logger)
	}

	router.HandleFunc(path, withRequestLog(path, handler, logger)).Methods(endpoint.Method)

	logger.Debug("Registered api endpoint", "endpoint", path, "method", endpoint.Method)
}

// Start serves until the context is done. A busy port is retried because the
// previous run may still hold it.
func (api *APIImpl) Start() {
	defer close(api.stoppedCh)

	api.logger.Info("Starting api", "port", api.apiConfig.Port)

	err := common.RetryForever(api.ctx, api.apiConfig.StartRetry(), func(ctx context.Context) error {
		api.server = &http.Server{
			Addr:              fmt.Sprintf(":%d", api.apiConfig.Port),
			Handler:           api.handler,
			ReadHeaderTimeout: readHeaderTimeout,
			BaseContext:       func(net.Listener) context.Context { return ctx },
		}

		err := api.server.ListenAndServe()
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		api.logger.Error("Failed to start api, retrying", "err", err,
			"process", utils.FormatProcessOnPort(api.apiConfig.Port))

		return err
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		api.logger.Error("Api stopped with error", "err", err)
	}

	api.logger.Debug("Stopped api")
}

func (api *APIImpl) Dispose() error {
	if api.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), api.apiConfig.ShutdownTimeout())
	defer cancel()

	var errs []error

	if err := api.server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to shutdown api server: %w", err))

		if err := api.server.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close api server: %w", err))
		}
	}

	select {
	case <-api.stoppedCh:
	case <-ctx.Done():
		api.logger.Warn("Api did not stop before the shutdown timeout")
	}

	return errors.Join(errs...)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func withRequestLog(path string, handler core.APIEndpointHandler, logger hclog.Logger) core.APIEndpointHandler {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		handler(rec, r)

		logger.Debug("Endpoint called", "path", path, "url", r.URL, "method", r.Method,
			"status", rec.status, "duration", time.Since(start))
	}
}

func withAPIKeyAuth(
	apiConfig core.APIConfig, handler core.APIEndpointHandler, logger hclog.Logger,
) core.APIEndpointHandler {
	return func(w http.ResponseWriter, r *http.Request) {
		if !isAuthorized(apiConfig.APIKeys, r.Header.Get(apiConfig.APIKeyHeader)) {
			utils.WriteUnauthorizedResponse(w, r, logger)

			return
		}

		handler(w, r)
	}
}

func isAuthorized(apiKeys []string, value string) bool {
	if value == "" {
		return false
	}

	for _, apiKey := range apiKeys {
		if subtle.ConstantTimeCompare([]byte(apiKey), []byte(value)) == 1 {
			return true
		}
	}

	return false
}
