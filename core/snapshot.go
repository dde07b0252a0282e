package core

import (
	"encoding/json"
	"fmt"
)

// SnapshotVersion is the current snapshot format.
const SnapshotVersion = 1

// Snapshot is an immutable, serializable copy of a board's elements in z-order.
type Snapshot struct {
	Version  int       `json:"version"`
	Elements []Element `json:"elements"`
}

// NewSnapshot deep-copies elements into a snapshot.
func NewSnapshot(elements []Element) Snapshot {
	copied := make([]Element, len(elements))
	for i, el := range elements {
		copied[i] = el.Clone()
	}
	return Snapshot{Version: SnapshotVersion, Elements: copied}
}

// Bounds returns the union of all element bounds. ok is false for an empty snapshot.
func (s Snapshot) Bounds() (r Rect, ok bool) {
	for i, el := range s.Elements {
		if i == 0 {
			r = el.Bounds()
			continue
		}
		r = r.Union(el.Bounds())
	}
	return r, len(s.Elements) > 0
}

// EncodeSnapshot serializes a snapshot to its JSON wire form.
func EncodeSnapshot(s Snapshot) ([]byte, error) {
	if s.Elements == nil {
		s.Elements = []Element{}
	}
	if s.Version == 0 {
		s.Version = SnapshotVersion
	}
	return json.Marshal(s)
}

// DecodeSnapshot parses and validates a snapshot. Empty input decodes to an empty board.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	if len(data) == 0 {
		return NewSnapshot(nil), nil
	}
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	if s.Version == 0 {
		s.Version = SnapshotVersion
	}
	if s.Version > SnapshotVersion {
		return Snapshot{}, fmt.Errorf("decode snapshot: unsupported version %d", s.Version)
	}
	seen := make(map[string]struct{}, len(s.Elements))
	for _, el := range s.Elements {
		if _, dup := seen[el.ID]; dup {
			return Snapshot{}, fmt.Errorf("decode snapshot: duplicate element id %s", el.ID)
		}
		seen[el.ID] = struct{}{}
	}
	if s.Elements == nil {
		s.Elements = []Element{}
	}
	return s, nil
}
