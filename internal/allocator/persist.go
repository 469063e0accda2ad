package allocator

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/boltdb/bolt"
	"github.com/specialistvlad/wfplan/internal/ctxlog"
	"github.com/specialistvlad/wfplan/internal/resources"
)

const (
	stateBucket = "allocator_state"
	snapshotKey = "snapshot"
)

// BoltPersister stores registry snapshots in a bolt database.
type BoltPersister struct {
	db *bolt.DB
}

// OpenBoltPersister opens or creates the database at path.
func OpenBoltPersister(path string, mode os.FileMode) (*BoltPersister, error) {
	db, err := bolt.Open(path, mode, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("unable to open allocator state %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(stateBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create bucket %s: %w", stateBucket, err)
	}
	return &BoltPersister{db: db}, nil
}

// Save writes a snapshot, replacing the previous one.
func (p *BoltPersister) Save(s Snapshot) error {
	buf, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return p.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(stateBucket)).Put([]byte(snapshotKey), buf)
	})
}

// Load returns the stored snapshot, if any.
func (p *BoltPersister) Load() (Snapshot, bool, error) {
	var s Snapshot
	var found bool
	err := p.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(stateBucket)).Get([]byte(snapshotKey))
		if v == nil {
			return nil
		}
		found = true
		return json.Unmarshal(v, &s)
	})
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("failed to read allocator state: %w", err)
	}
	return s, found, nil
}

// CheckClean fails with ErrStaleAllocations if the stored snapshot still
// has holder jobs.
func (p *BoltPersister) CheckClean() error {
	s, found, err := p.Load()
	if err != nil || !found {
		return err
	}
	return checkStale(s.Entries)
}

// Close closes the database.
func (p *BoltPersister) Close() error {
	return p.db.Close()
}

// Persist stores the registry state unless it is unchanged since the last
// write. It reports whether a write happened.
func (p *BoltPersister) Persist(ctx context.Context, reg *Registry) (bool, error) {
	snap := reg.Snapshot()
	if snap.Generation != 0 && snap.Generation == reg.LastPersisted() {
		return false, nil
	}
	if err := p.Save(snap); err != nil {
		return false, err
	}
	reg.MarkPersisted(snap.Generation)

	st := countEntries(snap.Entries)
	ctxlog.FromContext(ctx).Info("Allocator state saved.",
		"generation", snap.Generation, "total", st.Total, "used", st.Used, "available", st.Available)
	return true, nil
}

// Run persists the registry every interval until ctx is done, then writes
// once more.
func (p *BoltPersister) Run(ctx context.Context, reg *Registry, interval time.Duration, onSave func(uint64)) {
	logger := ctxlog.FromContext(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	save := func(ctx context.Context) {
		wrote, err := p.Persist(ctx, reg)
		if err != nil {
			logger.Error("Error in periodic save.", "error", err)
			return
		}
		if wrote && onSave != nil {
			onSave(reg.LastPersisted())
		}
	}

	for {
		select {
		case <-ctx.Done():
			save(context.WithoutCancel(ctx))
			return
		case <-ticker.C:
			save(ctx)
		}
	}
}

func countEntries(entries []resources.Entry) Status {
	s := Status{Total: len(entries)}
	for _, e := range entries {
		if e.Job != "" {
			s.Used++
		}
	}
	s.Available = s.Total - s.Used
	return s
}
