package clirecovery

import (
	"fmt"
	"time"

	"github.com/icrc99-bridge/nft-bridge/bridge/core"
	"github.com/icrc99-bridge/nft-bridge/common"
)

type recordsCmdResult struct {
	Records []*core.RecoveryRecord `json:"records"`
	deleted bool
}

func (r recordsCmdResult) GetOutput() string {
	title := "\n[RECOVERY]\n"
	if r.deleted {
		title = "\n[RECOVERY DELETED]\n"
	}

	vals := make([]string, 0, len(r.Records)+1)
	vals = append(vals, "Asset|Flow|Status|Request ID|Source Signature|Updated At|Error")

	for _, record := range r.Records {
		vals = append(vals, fmt.Sprintf("%s|%s|%s|%s|%s|%s|%s",
			record.AssetKey, record.Flow, record.Status, record.RequestID, record.SourceSignature,
			record.UpdatedAt.UTC().Format(time.RFC3339), record.Error))
	}

	return title + common.FormatList(vals) + "\n"
}
