package board

import (
	"whiteboard/core"

	"github.com/sirupsen/logrus"
)

// MissHook is told about updates and removals that did not apply: op is "update",
// "remove" or "patch", id is the element the caller referred to.
type MissHook func(op, id string)

// Document is the ordered element collection of one board plus its dirty flag.
// Insertion order is z-order, later elements are drawn on top.
// A Document is not safe for concurrent use; Session serializes access to it.
type Document struct {
	elements []core.Element
	dirty    bool
	revision uint64
	onMiss   MissHook
}

// DocumentOption configures a Document.
type DocumentOption func(*Document)

// WithMissHook installs a diagnostic hook for no-op updates and removals.
func WithMissHook(hook MissHook) DocumentOption {
	return func(d *Document) {
		d.onMiss = hook
	}
}

// NewDocument returns an empty, clean document.
func NewDocument(opts ...DocumentOption) *Document {
	d := &Document{elements: []core.Element{}}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// LoadDocument returns a clean document holding a copy of the snapshot's elements.
func LoadDocument(s core.Snapshot, opts ...DocumentOption) *Document {
	d := NewDocument(opts...)
	d.Replace(s.Elements)
	return d
}

func (d *Document) touch() {
	d.dirty = true
	d.revision++
}

func (d *Document) miss(op, id string) {
	logrus.WithFields(logrus.Fields{"op": op, "element_id": id}).Debug("Ignoring operation on unknown element")
	if d.onMiss != nil {
		d.onMiss(op, id)
	}
}

func (d *Document) index(id string) int {
	for i := range d.elements {
		if d.elements[i].ID == id {
			return i
		}
	}
	return -1
}

// Add appends el on top of the z-order.
func (d *Document) Add(el core.Element) {
	d.elements = append(d.elements, el.Clone())
	d.touch()
}

// Remove deletes the element with the given id. It reports whether anything was removed;
// an absent id leaves the document, including its dirty flag, unchanged.
func (d *Document) Remove(id string) bool {
	i := d.index(id)
	if i < 0 {
		d.miss("remove", id)
		return false
	}
	d.elements = append(d.elements[:i], d.elements[i+1:]...)
	d.touch()
	return true
}

// Update applies patch to a copy of the element with the given id and stores the result.
// Absent ids are ignored. Patches that change the id, the kind or the shape variant of the
// element are discarded.
func (d *Document) Update(id string, patch func(*core.Element)) bool {
	i := d.index(id)
	if i < 0 {
		d.miss("update", id)
		return false
	}
	next := d.elements[i].Clone()
	patch(&next)
	if next.ID != id || next.Content == nil || next.Variant() != d.elements[i].Variant() {
		d.miss("patch", id)
		return false
	}
	d.elements[i] = next
	d.touch()
	return true
}

// Move sets the position of an element.
func (d *Document) Move(id string, pos core.Point) bool {
	return d.Update(id, func(el *core.Element) {
		el.Position = pos
	})
}

// Replace swaps in a copy of elements. The document then mirrors its source and is clean.
func (d *Document) Replace(elements []core.Element) {
	d.elements = make([]core.Element, len(elements))
	for i, el := range elements {
		d.elements[i] = el.Clone()
	}
	d.dirty = false
	d.revision++
}

// MarkSaved clears the dirty flag.
func (d *Document) MarkSaved() {
	d.dirty = false
}

// Dirty reports whether the document changed since the last save.
func (d *Document) Dirty() bool {
	return d.dirty
}

// Revision increases on every mutation. It lets a saver detect edits made during a save.
func (d *Document) Revision() uint64 {
	return d.revision
}

// Snapshot returns a deep copy of the elements.
func (d *Document) Snapshot() core.Snapshot {
	return core.NewSnapshot(d.elements)
}

// Get returns a copy of the element with the given id.
func (d *Document) Get(id string) (core.Element, bool) {
	i := d.index(id)
	if i < 0 {
		return core.Element{}, false
	}
	return d.elements[i].Clone(), true
}

// Has reports whether an element with the given id exists.
func (d *Document) Has(id string) bool {
	return d.index(id) >= 0
}

// Len returns the number of elements.
func (d *Document) Len() int {
	return len(d.elements)
}

// ElementAt returns the id of the topmost element whose bounds contain p.
func (d *Document) ElementAt(p core.Point) (string, bool) {
	for i := len(d.elements) - 1; i >= 0; i-- {
		if d.elements[i].Contains(p) {
			return d.elements[i].ID, true
		}
	}
	return "", false
}
