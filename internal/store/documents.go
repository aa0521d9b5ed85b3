package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// ErrNotFound is returned when a record, user or playlist does not exist.
var ErrNotFound = errors.New("not found")

// Documents owns the named JSON documents on disk. Each document is read and
// written whole; callers serialize their load-mutate-save sequences with the
// per-document mutex from Lock so concurrent mutations cannot silently drop
// each other's writes.
type Documents struct {
	dir string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewDocuments(dir string) *Documents {
	return &Documents{
		dir:   dir,
		locks: make(map[string]*sync.Mutex),
	}
}

// Lock returns the mutex guarding the named document.
func (d *Documents) Lock(name string) *sync.Mutex {
	d.mu.Lock()
	defer d.mu.Unlock()
	l, ok := d.locks[name]
	if !ok {
		l = &sync.Mutex{}
		d.locks[name] = l
	}
	return l
}

// Load reads the named document into out. A missing document is initialized
// with def. A document that fails to parse is moved aside (so an operator can
// recover it) and likewise reinitialized with def.
func (d *Documents) Load(name string, def, out any) error {
	path := d.path(name)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("read document %s failed: %w", name, err)
		}
		return d.initialize(name, def, out)
	}

	if err := json.Unmarshal(data, out); err != nil {
		aside := fmt.Sprintf("%s.corrupt-%d", path, time.Now().Unix())
		log.Printf("document %s is unreadable (%v), moving aside to %s and reinitializing", name, err, aside)
		if renameErr := os.Rename(path, aside); renameErr != nil {
			return fmt.Errorf("move corrupt document %s aside failed: %w", name, renameErr)
		}
		return d.initialize(name, def, out)
	}
	return nil
}

// Save serializes the document and replaces the file in one rename, writing
// through a synced temp file first.
func (d *Documents) Save(name string, doc any) error {
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return fmt.Errorf("create data dir failed: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal document %s failed: %w", name, err)
	}

	path := d.path(name)
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create temp document failed: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write document %s failed: %w", name, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("sync document %s failed: %w", name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close document %s failed: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace document %s failed: %w", name, err)
	}
	return nil
}

func (d *Documents) initialize(name string, def, out any) error {
	if err := d.Save(name, def); err != nil {
		return err
	}
	// Round-trip the default through JSON so out gets the same shape a
	// normal load would produce.
	data, err := json.Marshal(def)
	if err != nil {
		return fmt.Errorf("marshal default for %s failed: %w", name, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode default for %s failed: %w", name, err)
	}
	return nil
}

func (d *Documents) path(name string) string {
	return filepath.Join(d.dir, name+".json")
}
