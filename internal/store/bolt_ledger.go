// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	bolt "go.etcd.io/bbolt"

	"github.com/MKhiriev/go-sync-keeper/internal/logger"
	"github.com/MKhiriev/go-sync-keeper/models"
)

const boltScheme = "bolt://"

var (
	recordsBucket  = []byte("synced_files")
	byRemoteBucket = []byte("by_remote")
)

// boltLedger is the embedded key-value implementation of [Ledger].
//
// Records are stored as JSON under "profile NUL localPath" in the
// synced_files bucket so that a profile's records are one prefix scan; the
// by_remote bucket maps "profile NUL remotePath" to the record key.
type boltLedger struct {
	db     *bolt.DB
	clock  clockwork.Clock
	logger *logger.Logger
}

// NewBoltLedger opens (creating when missing) the bbolt ledger file at path.
func NewBoltLedger(path string, clock clockwork.Clock, log *logger.Logger) (Ledger, error) {
	path = strings.TrimPrefix(path, boltScheme)
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: create ledger dir: %w", ErrLedgerIO, err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		log.Err(err).Str("func", "NewBoltLedger").Str("path", path).Msg("error opening ledger file")
		return nil, fmt.Errorf("%w: open %q: %w", ErrLedgerIO, path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{recordsBucket, byRemoteBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("create bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: init buckets: %w", ErrLedgerIO, err)
	}
	log.Debug().Str("func", "NewBoltLedger").Str("path", path).Msg("opened ledger file successfully")

	return &boltLedger{db: db, clock: clock, logger: log}, nil
}

func compositeKey(profile, path string) []byte {
	return []byte(profile + "\x00" + path)
}

func (l *boltLedger) Upsert(ctx context.Context, profile, localPath, remotePath string) error {
	rec := models.LedgerRecord{
		Identity:    models.Identity(profile, localPath),
		Profile:     profile,
		LocalPath:   localPath,
		RemotePath:  remotePath,
		SyncTime:    l.clock.Now().UTC(),
		SyncSuccess: true,
	}

	err := l.db.Update(func(tx *bolt.Tx) error {
		records, byRemote := tx.Bucket(recordsBucket), tx.Bucket(byRemoteBucket)
		key := compositeKey(profile, localPath)

		if prev := records.Get(key); prev != nil {
			var old models.LedgerRecord
			if err := json.Unmarshal(prev, &old); err == nil && old.RemotePath != remotePath {
				if err := byRemote.Delete(compositeKey(profile, old.RemotePath)); err != nil {
					return err
				}
			}
		}

		if err := putRecord(records, key, rec); err != nil {
			return err
		}
		return byRemote.Put(compositeKey(profile, remotePath), key)
	})
	if err != nil {
		l.logger.Err(err).
			Str("func", "boltLedger.Upsert").
			Str("profile", profile).
			Str("local_path", localPath).
			Msg("failed to upsert ledger record")
		return fmt.Errorf("%w: %w", ErrLedgerIO, err)
	}

	return nil
}

func (l *boltLedger) SetSyncStatus(ctx context.Context, profile, path string, success bool) error {
	now := l.clock.Now().UTC()

	err := l.updateMatched(profile, path, func(rec *models.LedgerRecord) {
		rec.SyncTime = now
		rec.SyncSuccess = success
	})
	if err != nil {
		l.logger.Err(err).
			Str("func", "boltLedger.SetSyncStatus").
			Str("profile", profile).
			Str("path", path).
			Msg("failed to update sync status")
		return fmt.Errorf("%w: %w", ErrLedgerIO, err)
	}

	return nil
}

func (l *boltLedger) MarkRemoteDeleted(ctx context.Context, profile, path string) error {
	err := l.updateMatched(profile, path, func(rec *models.LedgerRecord) {
		rec.RemoteDeleted = true
	})
	if err != nil {
		l.logger.Err(err).
			Str("func", "boltLedger.MarkRemoteDeleted").
			Str("profile", profile).
			Str("path", path).
			Msg("failed to mark remote deleted")
		return fmt.Errorf("%w: %w", ErrLedgerIO, err)
	}

	return nil
}

func (l *boltLedger) Lookup(ctx context.Context, profile, path string) (models.LedgerRecord, error) {
	var (
		found  models.LedgerRecord
		exists bool
	)

	err := l.db.View(func(tx *bolt.Tx) error {
		recs, err := matched(tx, profile, path)
		if err != nil {
			return err
		}
		for _, m := range recs {
			if !exists || m.rec.SyncTime.After(found.SyncTime) {
				found, exists = m.rec, true
			}
		}
		return nil
	})
	if err != nil {
		l.logger.Err(err).
			Str("func", "boltLedger.Lookup").
			Str("profile", profile).
			Str("path", path).
			Msg("failed to look up ledger record")
		return models.LedgerRecord{}, fmt.Errorf("%w: %w", ErrLedgerIO, err)
	}
	if !exists {
		return models.LedgerRecord{}, ErrRecordNotFound
	}

	return found, nil
}

func (l *boltLedger) Remove(ctx context.Context, profile, path string) error {
	err := l.db.Update(func(tx *bolt.Tx) error {
		recs, err := matched(tx, profile, path)
		if err != nil {
			return err
		}
		records, byRemote := tx.Bucket(recordsBucket), tx.Bucket(byRemoteBucket)
		for _, m := range recs {
			if err := records.Delete(m.key); err != nil {
				return err
			}
			remoteKey := compositeKey(profile, m.rec.RemotePath)
			if bytes.Equal(byRemote.Get(remoteKey), m.key) {
				if err := byRemote.Delete(remoteKey); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		l.logger.Err(err).
			Str("func", "boltLedger.Remove").
			Str("profile", profile).
			Str("path", path).
			Msg("failed to remove ledger record")
		return fmt.Errorf("%w: %w", ErrLedgerIO, err)
	}

	return nil
}

func (l *boltLedger) List(ctx context.Context, profile string) ([]models.LedgerRecord, error) {
	records := make([]models.LedgerRecord, 0, 50)
	prefix := compositeKey(profile, "")

	err := l.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(recordsBucket).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var rec models.LedgerRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("%w: %w", ErrScanningRows, err)
			}
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		l.logger.Err(err).
			Str("func", "boltLedger.List").
			Str("profile", profile).
			Msg("failed to list ledger records")
		return nil, fmt.Errorf("%w: %w", ErrLedgerIO, err)
	}

	return records, nil
}

func (l *boltLedger) Close() error {
	return l.db.Close()
}

func (l *boltLedger) updateMatched(profile, path string, mutate func(rec *models.LedgerRecord)) error {
	return l.db.Update(func(tx *bolt.Tx) error {
		recs, err := matched(tx, profile, path)
		if err != nil {
			return err
		}
		records := tx.Bucket(recordsBucket)
		for _, m := range recs {
			mutate(&m.rec)
			if err := putRecord(records, m.key, m.rec); err != nil {
				return err
			}
		}
		return nil
	})
}

type matchedRecord struct {
	key []byte
	rec models.LedgerRecord
}

// matched returns the records whose local path or remote path equals path.
func matched(tx *bolt.Tx, profile, path string) ([]matchedRecord, error) {
	records, byRemote := tx.Bucket(recordsBucket), tx.Bucket(byRemoteBucket)

	keys := [][]byte{compositeKey(profile, path)}
	if indexed := byRemote.Get(compositeKey(profile, path)); indexed != nil && !bytes.Equal(indexed, keys[0]) {
		keys = append(keys, bytes.Clone(indexed))
	}

	out := make([]matchedRecord, 0, len(keys))
	for _, key := range keys {
		raw := records.Get(key)
		if raw == nil {
			continue
		}
		var rec models.LedgerRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		out = append(out, matchedRecord{key: key, rec: rec})
	}

	return out, nil
}

func putRecord(b *bolt.Bucket, key []byte, rec models.LedgerRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return b.Put(key, raw)
}
