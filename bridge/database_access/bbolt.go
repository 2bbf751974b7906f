package databaseaccess

import (
	"errors"
	"fmt"
	"sort"

	"github.com/fxamacker/cbor/v2"
	"github.com/icrc99-bridge/nft-bridge/bridge/core"
	"go.etcd.io/bbolt"
)

var pendingRequestsBucket = []byte("PendingRequests")

type BBoltDatabase struct {
	db *bbolt.DB
}

var _ core.RecoveryStore = (*BBoltDatabase)(nil)

func (bd *BBoltDatabase) Init(filePath string) error {
	db, err := bbolt.Open(filePath, 0660, nil)
	if err != nil {
		return fmt.Errorf("could not open db: %w", err)
	}

	bd.db = db

	return db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(pendingRequestsBucket); err != nil {
			return fmt.Errorf("could not bucket: %s, err: %w", string(pendingRequestsBucket), err)
		}

		return nil
	})
}

func (bd *BBoltDatabase) Close() error {
	return bd.db.Close()
}

// Get returns nil without error when no record exists for the key.
func (bd *BBoltDatabase) Get(key string) (result *core.RecoveryRecord, err error) {
	err = bd.db.View(func(tx *bbolt.Tx) error {
		if data := tx.Bucket(pendingRequestsBucket).Get([]byte(key)); len(data) > 0 {
			return cbor.Unmarshal(data, &result)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read recovery record %s: %w", key, err)
	}

	return result, nil
}

func (bd *BBoltDatabase) Set(key string, record *core.RecoveryRecord) error {
	if key == "" {
		return errors.New("empty recovery key")
	}

	if record == nil {
		return errors.New("nil recovery record")
	}

	bytes, err := cbor.Marshal(record)
	if err != nil {
		return fmt.Errorf("could not marshal recovery record: %w", err)
	}

	return bd.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(pendingRequestsBucket).Put([]byte(key), bytes); err != nil {
			return fmt.Errorf("recovery record write error: %w", err)
		}

		return nil
	})
}

func (bd *BBoltDatabase) Delete(key string) error {
	return bd.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(pendingRequestsBucket).Delete([]byte(key))
	})
}

// List returns every record ordered by the most recent update first.
func (bd *BBoltDatabase) List() ([]*core.RecoveryRecord, error) {
	var result []*core.RecoveryRecord

	err := bd.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(pendingRequestsBucket).ForEach(func(k, v []byte) error {
			var record *core.RecoveryRecord

			if err := cbor.Unmarshal(v, &record); err != nil {
				return fmt.Errorf("could not unmarshal recovery record %s: %w", string(k), err)
			}

			result = append(result, record)

			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].UpdatedAt.After(result[j].UpdatedAt)
	})

	return result, nil
}
