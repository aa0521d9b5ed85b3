package store

import "accel-catalog/internal/model"

const auditDoc = "audit"

// Audit appends catalog events to a JSON trail document. Written by the audit
// worker, read by operators.
type Audit struct {
	docs *Documents
}

func NewAudit(docs *Documents) *Audit {
	return &Audit{docs: docs}
}

func (a *Audit) Append(ev model.CatalogEvent) error {
	l := a.docs.Lock(auditDoc)
	l.Lock()
	defer l.Unlock()

	var entries []model.CatalogEvent
	if err := a.docs.Load(auditDoc, []model.CatalogEvent{}, &entries); err != nil {
		return err
	}
	entries = append(entries, ev)
	return a.docs.Save(auditDoc, entries)
}
