package telemetry

import (
	"github.com/armon/go-metrics"
)

const (
	bridgeMetricsPrefix   = "bridge"
	transferMetricsPrefix = "transfer"
	mintMetricsPrefix     = "mint"
	approvalMetricsPrefix = "approval"
)

func UpdateBridgeRunsStarted(flow string) {
	metrics.IncrCounter([]string{bridgeMetricsPrefix, "runs_started", flow}, 1)
}

func UpdateBridgeRunsSucceeded(flow string) {
	metrics.IncrCounter([]string{bridgeMetricsPrefix, "runs_succeeded", flow}, 1)
}

func UpdateBridgeRunsFailed(flow string, kind string) {
	metrics.IncrCounter([]string{bridgeMetricsPrefix, "runs_failed", flow, kind}, 1)
}

func UpdateTransfersSubmitted(chain string) {
	metrics.IncrCounter([]string{transferMetricsPrefix, "submitted", chain}, 1)
}

func UpdateTransfersSkipped(chain string) {
	metrics.IncrCounter([]string{transferMetricsPrefix, "skipped", chain}, 1)
}

func UpdateApprovalsSubmitted() {
	metrics.IncrCounter([]string{approvalMetricsPrefix, "submitted"}, 1)
}

func UpdateMintRequestsSubmitted(flow string) {
	metrics.IncrCounter([]string{mintMetricsPrefix, "requests_submitted", flow}, 1)
}

func UpdateMintRequestsResumed(flow string) {
	metrics.IncrCounter([]string{mintMetricsPrefix, "requests_resumed", flow}, 1)
}

func UpdateMintPollAttempts(flow string, cnt int) {
	metrics.SetGauge([]string{mintMetricsPrefix, "poll_attempts", flow}, float32(cnt))
}

func UpdateMintPollTimeouts(flow string) {
	metrics.IncrCounter([]string{mintMetricsPrefix, "poll_timeouts", flow}, 1)
}
