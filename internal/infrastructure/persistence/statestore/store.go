// Package statestore provides the embedded-database-backed implementation
// of the identity/state store: the {id -> pid, started_at, argv_fingerprint}
// map used for startup reconciliation, and a bounded per-service health
// check history kept for diagnostics.
package statestore

import (
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/kodflow/daemon/internal/domain/localport"
)

// dbFileMode is the file permission mode for the database file.
const dbFileMode = 0o600

// dbOpenTimeout bounds how long Open waits for the file lock.
const dbOpenTimeout = 5 * time.Second

// maxHealthHistoryPerService bounds how many recent health records are kept
// per service; older entries are pruned on write.
const maxHealthHistoryPerService = 50

var (
	bucketPersistedState = []byte("persisted_state")
	bucketHealthHistory  = []byte("health_history")

	// keyPersistedState is the single key holding the whole PersistedState
	// snapshot, serialized as JSON. One key keeps the "rewritten atomically
	// after every start/stop" requirement a single bbolt transaction.
	keyPersistedState = []byte("state")
)

// Store implements localport.PersistenceStore and a diagnostic health
// history store, both backed by one embedded database file.
type Store struct {
	db *bolt.DB
}

// Open opens (creating if necessary) the state database at path.
//
// Params:
//   - path: the database file path.
//
// Returns:
//   - *Store: a ready-to-use store.
//   - error: any error opening the file or creating buckets.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, dbFileMode, &bolt.Options{Timeout: dbOpenTimeout})
	if err != nil {
		return nil, fmt.Errorf("open state database: %w", err)
	}
	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the underlying database file.
//
// Returns:
//   - error: any error closing the file.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketPersistedState); err != nil {
			return fmt.Errorf("create bucket %s: %w", bucketPersistedState, err)
		}
		if _, err := tx.CreateBucketIfNotExists(bucketHealthHistory); err != nil {
			return fmt.Errorf("create bucket %s: %w", bucketHealthHistory, err)
		}
		return nil
	})
}

// Load reads the current PersistedState snapshot. A database with no
// snapshot written yet is not an error; it returns an empty state.
//
// Returns:
//   - localport.PersistedState: the current snapshot.
//   - error: any error reading or decoding the snapshot.
func (s *Store) Load() (localport.PersistedState, error) {
	var state localport.PersistedState
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketPersistedState).Get(keyPersistedState)
		if raw == nil {
			return nil
		}
		return json.Unmarshal(raw, &state)
	})
	return state, err
}

// Save atomically rewrites the PersistedState snapshot in a single bbolt
// transaction, matching the "rewritten atomically after every start/stop"
// requirement.
//
// Params:
//   - state: the full snapshot to persist.
//
// Returns:
//   - error: any error encoding or writing the snapshot.
func (s *Store) Save(state localport.PersistedState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode persisted state: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketPersistedState).Put(keyPersistedState, raw)
	})
}

var _ localport.PersistenceStore = (*Store)(nil)
