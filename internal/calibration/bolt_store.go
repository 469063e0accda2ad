package calibration

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/boltdb/bolt"
)

const runsBucket = "calibration_runs"

// BoltStore persists calibration runs in a bolt database. Keys have the form
// jobType/resource/seq so a bucket scan returns each pair's runs in the
// order they were saved.
type BoltStore struct {
	db *bolt.DB
}

// OpenBoltStore opens (or creates) the database at path.
func OpenBoltStore(path string, mode os.FileMode) (*BoltStore, error) {
	db, err := bolt.Open(path, mode, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("unable to open calibration store %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(runsBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create bucket %s: %w", runsBucket, err)
	}
	return &BoltStore{db: db}, nil
}

// Save appends a run.
func (s *BoltStore) Save(run Run) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(runsBucket))

		seq, err := bucket.NextSequence()
		if err != nil {
			return err
		}
		buf, err := json.Marshal(run)
		if err != nil {
			return err
		}
		k := fmt.Sprintf("%s/%s/%020d", run.JobType, run.ResourceID, seq)
		return bucket.Put([]byte(k), buf)
	})
}

// Runs lists every stored run in key order.
func (s *BoltStore) Runs() ([]Run, error) {
	var runs []Run
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(runsBucket)).ForEach(func(k, v []byte) error {
			var r Run
			if err := json.Unmarshal(v, &r); err != nil {
				return fmt.Errorf("decode run %s: %w", k, err)
			}
			runs = append(runs, r)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return runs, nil
}

// LoadInto feeds every stored run into the profiler.
func (s *BoltStore) LoadInto(p *Profiler) (int, error) {
	runs, err := s.Runs()
	if err != nil {
		return 0, err
	}
	for _, r := range runs {
		p.Add(r)
	}
	return len(runs), nil
}

// Close releases the database file.
func (s *BoltStore) Close() error {
	return s.db.Close()
}
