package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

const (
	sheetsBucket = "sheets"
	metaBucket   = "meta"
)

// ErrNotFound is the cause of errors for sheets that were never saved
var ErrNotFound = errors.New("sheet not found")

// Options configures how the database file is opened
type Options struct {
	// how long to wait for the file lock held by another process
	Timeout time.Duration
}

// DefaultOptions returns the options used when none are given
func DefaultOptions() Options {
	return Options{Timeout: 1 * time.Second}
}

// Store persists spreadsheet snapshots by name in a bbolt file. payloads are
// JSON compressed with zstd.
type Store struct {
	db      *bolt.DB
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// snapshot is the stored form of a sheet
type snapshot struct {
	SavedAt time.Time         `json:"saved_at"`
	Cells   map[string]string `json:"cells"`
}

// Info describes a saved sheet
type Info struct {
	Name    string
	SavedAt time.Time
	Cells   int
}

// Open opens (creating if needed) the database at pathStr
func Open(pathStr string, opts Options) (*Store, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultOptions().Timeout
	}

	// ensure directory exists
	dir := filepath.Dir(pathStr)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.Wrapf(err, "create directory %s", dir)
		}
	}

	db, err := bolt.Open(pathStr, 0600, &bolt.Options{Timeout: opts.Timeout})
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", pathStr)
	}

	// create buckets
	err = db.Update(func(tx *bolt.Tx) error {
		if _, e := tx.CreateBucketIfNotExists([]byte(sheetsBucket)); e != nil {
			return e
		}
		if _, e := tx.CreateBucketIfNotExists([]byte(metaBucket)); e != nil {
			return e
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create buckets")
	}

	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create zstd encoder")
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		db.Close()
		return nil, errors.Wrap(err, "create zstd decoder")
	}

	return &Store{db: db, encoder: encoder, decoder: decoder}, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	s.decoder.Close()
	if err := s.encoder.Close(); err != nil {
		s.db.Close()
		return errors.Wrap(err, "close zstd encoder")
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Save stores cells under name, replacing any earlier snapshot
func (s *Store) Save(name string, cells map[string]string) error {
	if s.db == nil {
		return errors.New("db not opened")
	}
	if name == "" {
		return errors.New("sheet name is empty")
	}

	entry := snapshot{SavedAt: time.Now().UTC(), Cells: cells}
	b, err := json.Marshal(entry)
	if err != nil {
		return errors.Wrapf(err, "encode sheet %q", name)
	}
	payload := s.encoder.EncodeAll(b, nil)

	return s.db.Update(func(tx *bolt.Tx) error {
		bk := tx.Bucket([]byte(sheetsBucket))
		if bk == nil {
			return errors.New("sheets bucket missing")
		}
		if err := bk.Put([]byte(name), payload); err != nil {
			return errors.Wrapf(err, "save sheet %q", name)
		}
		return s.touch(tx)
	})
}

// Load returns the cells saved under name
func (s *Store) Load(name string) (map[string]string, error) {
	entry, err := s.read(name)
	if err != nil {
		return nil, err
	}
	if entry.Cells == nil {
		entry.Cells = map[string]string{}
	}
	return entry.Cells, nil
}

// Stat describes the snapshot saved under name
func (s *Store) Stat(name string) (Info, error) {
	entry, err := s.read(name)
	if err != nil {
		return Info{}, err
	}
	return Info{Name: name, SavedAt: entry.SavedAt, Cells: len(entry.Cells)}, nil
}

func (s *Store) read(name string) (snapshot, error) {
	var entry snapshot
	if s.db == nil {
		return entry, errors.New("db not opened")
	}

	var payload []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		bk := tx.Bucket([]byte(sheetsBucket))
		if bk == nil {
			return errors.New("sheets bucket missing")
		}
		v := bk.Get([]byte(name))
		if v == nil {
			return errors.Wrapf(ErrNotFound, "load %q", name)
		}
		// v is only valid inside the transaction
		payload = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return entry, err
	}

	b, err := s.decoder.DecodeAll(payload, nil)
	if err != nil {
		return entry, errors.Wrapf(err, "decompress sheet %q", name)
	}
	if err := json.Unmarshal(b, &entry); err != nil {
		return entry, errors.Wrapf(err, "decode sheet %q", name)
	}
	return entry, nil
}

// List returns the names of saved sheets in sorted order
func (s *Store) List() ([]string, error) {
	if s.db == nil {
		return nil, errors.New("db not opened")
	}
	out := []string{}
	err := s.db.View(func(tx *bolt.Tx) error {
		bk := tx.Bucket([]byte(sheetsBucket))
		if bk == nil {
			return nil
		}
		return bk.ForEach(func(k, _ []byte) error {
			out = append(out, string(k))
			return nil
		})
	})
	return out, err
}

// Delete removes the sheet saved under name
func (s *Store) Delete(name string) error {
	if s.db == nil {
		return errors.New("db not opened")
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		bk := tx.Bucket([]byte(sheetsBucket))
		if bk == nil || bk.Get([]byte(name)) == nil {
			return errors.Wrapf(ErrNotFound, "delete %q", name)
		}
		if err := bk.Delete([]byte(name)); err != nil {
			return err
		}
		return s.touch(tx)
	})
}

// LastModified returns when any sheet was last saved or deleted. the zero
// time means the store was never written.
func (s *Store) LastModified() (time.Time, error) {
	var t time.Time
	if s.db == nil {
		return t, errors.New("db not opened")
	}
	err := s.db.View(func(tx *bolt.Tx) error {
		bk := tx.Bucket([]byte(metaBucket))
		if bk == nil {
			return nil
		}
		v := bk.Get([]byte("modified"))
		if v == nil {
			return nil
		}
		return t.UnmarshalText(v)
	})
	return t, err
}

func (s *Store) touch(tx *bolt.Tx) error {
	bk := tx.Bucket([]byte(metaBucket))
	if bk == nil {
		return errors.New("meta bucket missing")
	}
	stamp, err := time.Now().UTC().MarshalText()
	if err != nil {
		return err
	}
	return bk.Put([]byte("modified"), stamp)
}
