package store

import (
	"fmt"
	"time"

	"accel-catalog/internal/model"
)

// Catalog is one record collection (accelerators, slide decks or videos)
// persisted as a single JSON document. Every operation is a whole-document
// read-modify-write under the document's mutex.
type Catalog struct {
	docs     *Documents
	name     string
	onCreate func(model.Record)

	lastID int64
}

// NewCatalog returns a collection store. onCreate, if non-nil, fills
// collection-specific defaults into a record before it is persisted.
func NewCatalog(docs *Documents, name string, onCreate func(model.Record)) *Catalog {
	return &Catalog{docs: docs, name: name, onCreate: onCreate}
}

// SlideDeckDefaults fills the author and date fields stamped on every deck
// created without them.
func SlideDeckDefaults(rec model.Record) {
	if _, ok := rec["author"]; !ok {
		rec["author"] = "AI First Lab"
	}
	if _, ok := rec["date"]; !ok {
		rec["date"] = time.Now().UTC().Format("2006-01-02")
	}
}

func (c *Catalog) List() ([]model.Record, error) {
	l := c.docs.Lock(c.name)
	l.Lock()
	defer l.Unlock()
	return c.load()
}

func (c *Catalog) Get(id int64) (model.Record, error) {
	records, err := c.List()
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		if recID, ok := rec.ID(); ok && recID == id {
			return rec, nil
		}
	}
	return nil, fmt.Errorf("%s %d: %w", c.name, id, ErrNotFound)
}

// Create assigns a fresh identifier, stamps the record and appends it.
func (c *Catalog) Create(fields model.Record) (model.Record, error) {
	l := c.docs.Lock(c.name)
	l.Lock()
	defer l.Unlock()

	records, err := c.load()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC().Format(model.TimeStampLayout)
	rec := fields.Clone()
	rec["id"] = c.nextID(records)
	rec["createdAt"] = now
	rec["updatedAt"] = now
	if c.onCreate != nil {
		c.onCreate(rec)
	}

	records = append(records, rec)
	if err := c.docs.Save(c.name, records); err != nil {
		return nil, err
	}
	return rec, nil
}

// Update shallow-merges fields over the stored record. The identifier always
// comes from the path, never from the body.
func (c *Catalog) Update(id int64, fields model.Record) (model.Record, error) {
	l := c.docs.Lock(c.name)
	l.Lock()
	defer l.Unlock()

	records, err := c.load()
	if err != nil {
		return nil, err
	}
	for i, rec := range records {
		recID, ok := rec.ID()
		if !ok || recID != id {
			continue
		}
		merged := rec.Merge(fields)
		merged["id"] = id
		merged["updatedAt"] = time.Now().UTC().Format(model.TimeStampLayout)
		records[i] = merged
		if err := c.docs.Save(c.name, records); err != nil {
			return nil, err
		}
		return merged, nil
	}
	return nil, fmt.Errorf("%s %d: %w", c.name, id, ErrNotFound)
}

func (c *Catalog) Delete(id int64) error {
	l := c.docs.Lock(c.name)
	l.Lock()
	defer l.Unlock()

	records, err := c.load()
	if err != nil {
		return err
	}
	kept := records[:0:0]
	for _, rec := range records {
		if recID, ok := rec.ID(); ok && recID == id {
			continue
		}
		kept = append(kept, rec)
	}
	if len(kept) == len(records) {
		return fmt.Errorf("%s %d: %w", c.name, id, ErrNotFound)
	}
	return c.docs.Save(c.name, kept)
}

func (c *Catalog) load() ([]model.Record, error) {
	var records []model.Record
	if err := c.docs.Load(c.name, []model.Record{}, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// nextID derives a time-based identifier but never reissues one: it stays
// above both the previously issued id and every id already in the collection,
// so rapid creates cannot collide.
func (c *Catalog) nextID(records []model.Record) int64 {
	id := time.Now().UnixMilli()
	if id <= c.lastID {
		id = c.lastID + 1
	}
	for _, rec := range records {
		if recID, ok := rec.ID(); ok && id <= recID {
			id = recID + 1
		}
	}
	c.lastID = id
	return id
}
