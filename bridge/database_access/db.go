package databaseaccess

import (
	"fmt"
	"path/filepath"

	"github.com/icrc99-bridge/nft-bridge/bridge/core"
	"github.com/icrc99-bridge/nft-bridge/common"
)

func NewDatabase(filePath string) (core.RecoveryStore, error) {
	if err := common.CreateDirectoryIfNotExists(filepath.Dir(filePath)); err != nil {
		return nil, fmt.Errorf("failed to create directory for recovery database: %w", err)
	}

	db := &BBoltDatabase{}
	if err := db.Init(filePath); err != nil {
		return nil, err
	}

	return db, nil
}
