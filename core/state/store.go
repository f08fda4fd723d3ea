package state

import (
	"errors"
	"fmt"

	"tokenledger/storage"
)

// SnapshotKey is the database key holding the current snapshot.
const SnapshotKey = "state/snapshot"

var snapshotKey = []byte(SnapshotKey)

// SnapshotStore persists State snapshots in a key-value database.
type SnapshotStore struct {
	db storage.Database
}

func NewSnapshotStore(db storage.Database) *SnapshotStore {
	return &SnapshotStore{db: db}
}

// Save writes a snapshot of s, replacing the previous one, and returns the
// encoded size in bytes.
func (st *SnapshotStore) Save(s *State) (int, error) {
	if st == nil || st.db == nil {
		return 0, fmt.Errorf("state: snapshot store unavailable")
	}
	data, err := s.Snapshot()
	if err != nil {
		return 0, err
	}
	if err := st.db.Put(snapshotKey, data); err != nil {
		return 0, fmt.Errorf("state: persist snapshot: %w", err)
	}
	return len(data), nil
}

// Load restores the persisted state. A missing snapshot yields the empty
// state; the returned error is reserved for database failures.
func (st *SnapshotStore) Load(opts Options) (*State, RestoreReport, error) {
	if st == nil || st.db == nil {
		return nil, RestoreReport{}, fmt.Errorf("state: snapshot store unavailable")
	}
	data, err := st.db.Get(snapshotKey)
	if errors.Is(err, storage.ErrNotFound) {
		s, report := Restore(nil, opts)
		return s, report, nil
	}
	if err != nil {
		return nil, RestoreReport{}, fmt.Errorf("state: read snapshot: %w", err)
	}
	s, report := Restore(data, opts)
	return s, report, nil
}

// Reset removes the persisted snapshot so that the next Load starts from the
// empty state.
func (st *SnapshotStore) Reset() error {
	if st == nil || st.db == nil {
		return fmt.Errorf("state: snapshot store unavailable")
	}
	if err := st.db.Delete(snapshotKey); err != nil {
		return fmt.Errorf("state: delete snapshot: %w", err)
	}
	return nil
}
