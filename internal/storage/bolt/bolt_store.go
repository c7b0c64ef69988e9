package bolt

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/brk3/habitcal/internal/storage"
	"github.com/brk3/habitcal/pkg/habit"
	"go.etcd.io/bbolt"
)

const rootBucket = "users"
const defaultUserID = "default"

// Store keeps one bucket per user under the root bucket, holding the
// serialized habit and log collections as two entries.
type Store struct {
	db     *bbolt.DB
	userID string
}

func Open(path, userID string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open cache %s: %w", path, err)
	}

	if userID == "" {
		userID = defaultUserID
	}
	s := &Store{db: db, userID: userID}

	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(rootBucket))
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) userBucket(tx *bbolt.Tx) (*bbolt.Bucket, error) {
	users := tx.Bucket([]byte(rootBucket))
	if !tx.Writable() {
		return users.Bucket([]byte(s.userID)), nil
	}
	return users.CreateBucketIfNotExists([]byte(s.userID))
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Load() (habit.Snapshot, bool, error) {
	var snap habit.Snapshot
	found := false
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket, err := s.userBucket(tx)
		if err != nil || bucket == nil {
			return err
		}
		if v := bucket.Get([]byte(storage.HabitsKey)); v != nil {
			found = true
			if err := json.Unmarshal(v, &snap.Habits); err != nil {
				return fmt.Errorf("decode %s: %w", storage.HabitsKey, err)
			}
		}
		if v := bucket.Get([]byte(storage.LogsKey)); v != nil {
			found = true
			if err := json.Unmarshal(v, &snap.Logs); err != nil {
				return fmt.Errorf("decode %s: %w", storage.LogsKey, err)
			}
		}
		return nil
	})
	if err != nil {
		return habit.Snapshot{}, false, err
	}
	return snap, found, nil
}

func (s *Store) Save(snap habit.Snapshot) error {
	habits, err := json.Marshal(nonNil(snap.Habits))
	if err != nil {
		return err
	}
	logs, err := json.Marshal(nonNil(snap.Logs))
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := s.userBucket(tx)
		if err != nil {
			return err
		}
		if err := bucket.Put([]byte(storage.HabitsKey), habits); err != nil {
			return err
		}
		return bucket.Put([]byte(storage.LogsKey), logs)
	})
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

var _ storage.Cache = (*Store)(nil)
