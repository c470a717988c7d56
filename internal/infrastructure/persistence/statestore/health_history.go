package statestore

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/kodflow/daemon/internal/domain/localport"
)

// HealthRecord is one diagnostic entry in a service's health history.
type HealthRecord struct {
	At         time.Time                   `json:"at"`
	Value      localport.HealthStatusValue `json:"value"`
	Diagnostic string                      `json:"diagnostic,omitempty"`
}

// AppendHealthRecord records one probe outcome for id, pruning the oldest
// entries once the per-service history exceeds maxHealthHistoryPerService.
//
// Params:
//   - id: the service id this record belongs to.
//   - rec: the record to append.
//
// Returns:
//   - error: any error writing or pruning the nested bucket.
func (s *Store) AppendHealthRecord(id localport.ServiceId, rec HealthRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode health record: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		parent := tx.Bucket(bucketHealthHistory)
		b, err := parent.CreateBucketIfNotExists([]byte(id.String()))
		if err != nil {
			return fmt.Errorf("create history bucket: %w", err)
		}
		if err := b.Put(timeToKey(rec.At), raw); err != nil {
			return err
		}
		return prune(b, maxHealthHistoryPerService)
	})
}

// HealthHistory returns id's recorded health history, oldest first.
//
// Params:
//   - id: the service id to query.
//
// Returns:
//   - []HealthRecord: the stored records, or nil if none exist.
//   - error: any error reading or decoding the records.
func (s *Store) HealthHistory(id localport.ServiceId) ([]HealthRecord, error) {
	var out []HealthRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketHealthHistory).Bucket([]byte(id.String()))
		if b == nil {
			return nil
		}
		return b.ForEach(func(_, v []byte) error {
			var rec HealthRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			out = append(out, rec)
			return nil
		})
	})
	return out, err
}

// prune deletes the oldest entries in b until at most keep remain. Keys are
// big-endian nanosecond timestamps, so cursor order is chronological.
func prune(b *bolt.Bucket, keep int) error {
	count := 0
	c := b.Cursor()
	for k, _ := c.First(); k != nil; k, _ = c.Next() {
		count++
	}
	excess := count - keep
	if excess <= 0 {
		return nil
	}
	c = b.Cursor()
	for k, _ := c.First(); k != nil && excess > 0; k, _ = c.Next() {
		if err := b.Delete(k); err != nil {
			return err
		}
		excess--
	}
	return nil
}

// timeToKey converts t into a sortable big-endian byte key.
func timeToKey(t time.Time) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(t.UnixNano()))
	return buf[:]
}
