// Package catalog keeps named, compacted Wrapt snapshots in a single Bolt
// database.
//
// Each snapshot is stored twice over: its bytes under the name in the data
// bucket, and a msgpack-encoded Meta record (size, object count, xxhash64
// checksum, save time) under the same name in the meta bucket. Both are
// written in one transaction, and Load verifies the checksum before handing
// the bytes to wrapt.
package catalog

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/vmihailenco/msgpack/v5"
	"go.etcd.io/bbolt"

	"github.com/andreyvit/wrapt"
)

var (
	ErrNotFound = errors.New("catalog: snapshot not found")
	ErrChecksum = errors.New("catalog: checksum mismatch")
	ErrBadName  = errors.New("catalog: invalid snapshot name")
)

var (
	metaBucket = []byte("meta")
	dataBucket = []byte("data")
)

// Meta describes a stored snapshot.
type Meta struct {
	Name        string    `msgpack:"-"`
	Size        int64     `msgpack:"sz"`
	ObjectCount uint64    `msgpack:"n"`
	Checksum    uint64    `msgpack:"x"`
	SavedAt     time.Time `msgpack:"t"`
}

type Options struct {
	Logger   *slog.Logger
	Timeout  time.Duration // how long to wait for the file lock
	NoSync   bool          // for tests only
	ReadOnly bool
	Now      func() time.Time
}

type Catalog struct {
	bdb    *bbolt.DB
	logger *slog.Logger
	now    func() time.Time
}

func Open(path string, opt Options) (*Catalog, error) {
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}
	if opt.Now == nil {
		opt.Now = time.Now
	}
	if opt.Timeout == 0 {
		opt.Timeout = 10 * time.Second
	}
	bopt := *bbolt.DefaultOptions
	bopt.Timeout = opt.Timeout
	bopt.NoSync = opt.NoSync
	bopt.ReadOnly = opt.ReadOnly

	bdb, err := bbolt.Open(path, 0666, &bopt)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	if !opt.ReadOnly {
		err = bdb.Update(func(btx *bbolt.Tx) error {
			if _, err := btx.CreateBucketIfNotExists(metaBucket); err != nil {
				return err
			}
			_, err := btx.CreateBucketIfNotExists(dataBucket)
			return err
		})
		if err != nil {
			_ = bdb.Close()
			return nil, fmt.Errorf("catalog: init: %w", err)
		}
	}
	return &Catalog{bdb: bdb, logger: opt.Logger, now: opt.Now}, nil
}

func (c *Catalog) Close() error {
	return c.bdb.Close()
}

// Put compacts f and stores the result under name, replacing any previous
// snapshot with that name.
func (c *Catalog) Put(name string, f *wrapt.File) (Meta, error) {
	data, err := f.Bytes()
	if err != nil {
		return Meta{}, fmt.Errorf("catalog: compacting %q: %w", name, err)
	}
	return c.PutBytes(name, data)
}

// PutBytes stores an already encoded Wrapt file under name. The header is
// validated before anything is written.
func (c *Catalog) PutBytes(name string, data []byte) (Meta, error) {
	if name == "" {
		return Meta{}, ErrBadName
	}
	raw, err := wrapt.OpenRawFile(wrapt.BytesSource(data))
	if err != nil {
		return Meta{}, fmt.Errorf("catalog: %q: %w", name, err)
	}
	meta := Meta{
		Name:        name,
		Size:        int64(len(data)),
		ObjectCount: raw.ObjectCount(),
		Checksum:    xxhash.Sum64(data),
		SavedAt:     c.now().UTC().Truncate(time.Second),
	}
	metaRaw, err := msgpack.Marshal(&meta)
	if err != nil {
		return Meta{}, fmt.Errorf("catalog: encoding meta: %w", err)
	}

	key := []byte(name)
	err = c.bdb.Update(func(btx *bbolt.Tx) error {
		if err := btx.Bucket(metaBucket).Put(key, metaRaw); err != nil {
			return err
		}
		return btx.Bucket(dataBucket).Put(key, data)
	})
	if err != nil {
		return Meta{}, fmt.Errorf("catalog: put %q: %w", name, err)
	}
	c.logger.Debug("catalog: stored snapshot", "name", name, "size", meta.Size, "objects", meta.ObjectCount)
	return meta, nil
}

// Load returns the snapshot stored under name as an editable file. The
// bytes are copied out of Bolt, so the file stays valid after Close.
func (c *Catalog) Load(name string, opt wrapt.Options) (*wrapt.File, error) {
	var meta Meta
	var data []byte
	err := c.bdb.View(func(btx *bbolt.Tx) error {
		var err error
		meta, err = loadMeta(btx, name)
		if err != nil {
			return err
		}
		raw := btx.Bucket(dataBucket).Get([]byte(name))
		if raw == nil {
			return fmt.Errorf("%w: %q has metadata but no data", ErrNotFound, name)
		}
		data = append([]byte(nil), raw...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if sum := xxhash.Sum64(data); sum != meta.Checksum {
		return nil, fmt.Errorf("%w: %q: %016x != %016x", ErrChecksum, name, sum, meta.Checksum)
	}
	f, err := wrapt.Open(wrapt.BytesSource(data), opt)
	if err != nil {
		return nil, fmt.Errorf("catalog: %q: %w", name, err)
	}
	return f, nil
}

func (c *Catalog) Stat(name string) (Meta, error) {
	var meta Meta
	err := c.bdb.View(func(btx *bbolt.Tx) error {
		var err error
		meta, err = loadMeta(btx, name)
		return err
	})
	return meta, err
}

// List returns the metadata of all snapshots, sorted by name.
func (c *Catalog) List() ([]Meta, error) {
	var result []Meta
	err := c.bdb.View(func(btx *bbolt.Tx) error {
		b := btx.Bucket(metaBucket)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			meta, err := decodeMeta(k, v)
			if err != nil {
				return err
			}
			result = append(result, meta)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (c *Catalog) Delete(name string) error {
	key := []byte(name)
	err := c.bdb.Update(func(btx *bbolt.Tx) error {
		mb := btx.Bucket(metaBucket)
		if mb.Get(key) == nil {
			return fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		if err := mb.Delete(key); err != nil {
			return err
		}
		return btx.Bucket(dataBucket).Delete(key)
	})
	if err != nil {
		return err
	}
	c.logger.Debug("catalog: deleted snapshot", "name", name)
	return nil
}

func loadMeta(btx *bbolt.Tx, name string) (Meta, error) {
	b := btx.Bucket(metaBucket)
	var raw []byte
	if b != nil {
		raw = b.Get([]byte(name))
	}
	if raw == nil {
		return Meta{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return decodeMeta([]byte(name), raw)
}

func decodeMeta(key, raw []byte) (Meta, error) {
	var meta Meta
	if err := msgpack.Unmarshal(raw, &meta); err != nil {
		return Meta{}, fmt.Errorf("catalog: decoding meta of %q: %w", key, err)
	}
	meta.Name = string(key)
	return meta, nil
}
