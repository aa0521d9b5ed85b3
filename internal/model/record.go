package model

import "time"

// Record is one catalog entry (accelerator, slide deck or video). Callers may
// store arbitrary fields; the server only interprets "id", "createdAt" and
// "updatedAt".
type Record map[string]any

// TimeStampLayout is the wire format for the system-managed timestamps.
const TimeStampLayout = time.RFC3339

// ID returns the numeric identifier of the record. JSON round-trips turn
// numbers into float64, so both representations are accepted.
func (r Record) ID() (int64, bool) {
	return toInt64(r["id"])
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case float64:
		return int64(n), true
	case int:
		return int64(n), true
	}
	return 0, false
}

// Clone returns a shallow copy so merges never mutate the stored slice.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Merge overlays the supplied fields onto a copy of the record.
func (r Record) Merge(fields Record) Record {
	out := r.Clone()
	for k, v := range fields {
		out[k] = v
	}
	return out
}

// ApplyOrder sorts records so that every identifier present in order comes
// first, in order-list position, followed by the remaining records in their
// original relative order.
func ApplyOrder(records []Record, order []int64) []Record {
	if len(order) == 0 {
		return records
	}
	rank := make(map[int64]int, len(order))
	for i, id := range order {
		if _, seen := rank[id]; !seen {
			rank[id] = i
		}
	}

	ordered := make([]Record, 0, len(records))
	rest := make([]Record, 0, len(records))
	slots := make([]Record, len(order))
	for _, rec := range records {
		id, ok := rec.ID()
		if !ok {
			rest = append(rest, rec)
			continue
		}
		if pos, found := rank[id]; found {
			slots[pos] = rec
			continue
		}
		rest = append(rest, rec)
	}
	for _, rec := range slots {
		if rec != nil {
			ordered = append(ordered, rec)
		}
	}
	return append(ordered, rest...)
}

// FilterHidden drops records whose identifier appears in hidden.
func FilterHidden(records []Record, hidden []int64) []Record {
	if len(hidden) == 0 {
		return records
	}
	drop := make(map[int64]struct{}, len(hidden))
	for _, id := range hidden {
		drop[id] = struct{}{}
	}
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		if id, ok := rec.ID(); ok {
			if _, hiddenID := drop[id]; hiddenID {
				continue
			}
		}
		out = append(out, rec)
	}
	return out
}
