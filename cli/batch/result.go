package clibatch

import (
	"bytes"
	"fmt"

	"github.com/icrc99-bridge/nft-bridge/bridge/batch"
	"github.com/icrc99-bridge/nft-bridge/common"
)

type batchItem struct {
	Asset           string `json:"asset"`
	Status          string `json:"status"`
	SourceSignature string `json:"sourceSignature,omitempty"`
	RequestID       string `json:"requestId,omitempty"`
	Error           string `json:"error,omitempty"`
}

type batchCmdResult struct {
	Items   []batchItem              `json:"items"`
	Summary map[batch.ItemStatus]int `json:"summary"`
}

func newBatchCmdResult(items []batch.ItemResult) *batchCmdResult {
	res := &batchCmdResult{
		Items:   make([]batchItem, 0, len(items)),
		Summary: batch.Summary(items),
	}

	for _, item := range items {
		entry := batchItem{Asset: item.Asset.Key(), Status: string(item.Status)}

		if item.Result != nil {
			entry.SourceSignature = item.Result.SourceSignature
			entry.RequestID = item.Result.RequestID
			entry.Error = item.Result.Error
		}

		res.Items = append(res.Items, entry)
	}

	return res
}

func (r batchCmdResult) GetOutput() string {
	var buffer bytes.Buffer

	vals := make([]string, 0, len(r.Items)+1)
	vals = append(vals, "Asset|Status|Request ID|Error")

	for _, item := range r.Items {
		vals = append(vals, fmt.Sprintf("%s|%s|%s|%s", item.Asset, item.Status, item.RequestID, item.Error))
	}

	buffer.WriteString("\n[BATCH]\n")
	buffer.WriteString(common.FormatList(vals))
	buffer.WriteString("\n\n[SUMMARY]\n")
	buffer.WriteString(common.FormatKV([]string{
		fmt.Sprintf("Completed|%d", r.Summary[batch.ItemStatusCompleted]),
		fmt.Sprintf("Failed|%d", r.Summary[batch.ItemStatusFailed]),
		fmt.Sprintf("Skipped|%d", r.Summary[batch.ItemStatusSkipped]),
	}))
	buffer.WriteString("\n")

	return buffer.String()
}
