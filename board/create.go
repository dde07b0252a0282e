package board

import (
	"whiteboard/core"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

// IDGenerator returns a new element id. Ids must never repeat within a session.
type IDGenerator func() string

// NewULID is the default IDGenerator.
func NewULID() string {
	return ulid.Make().String()
}

// Creator turns a creation tool and a coordinate into a new element on a document.
type Creator struct {
	doc    *Document
	newID  IDGenerator
	issued map[string]struct{}
}

const maxIDAttempts = 8

// NewCreator returns a Creator adding to doc. A nil generator falls back to NewULID.
func NewCreator(doc *Document, newID IDGenerator) *Creator {
	if newID == nil {
		newID = NewULID
	}
	return &Creator{doc: doc, newID: newID, issued: make(map[string]struct{})}
}

// CreateAt adds the default element of tool anchored at pos and returns its id.
// Move and Eraser do not create anything; ok is false for them.
func (c *Creator) CreateAt(tool Tool, pos core.Point) (id string, ok bool) {
	variant, ok := tool.Variant()
	if !ok {
		logrus.WithField("tool", tool).Debug("Ignoring creation request for non-creation tool")
		return "", false
	}
	id, ok = c.nextID()
	if !ok {
		logrus.WithField("tool", tool).Warn("Id generator keeps returning used ids")
		return "", false
	}
	c.doc.Add(core.DefaultElement(id, variant, pos))
	logrus.WithFields(logrus.Fields{
		"element_id": id,
		"variant":    variant,
		"x":          pos.X,
		"y":          pos.Y,
	}).Debug("Element created")
	return id, true
}

// nextID returns an id never issued by this creator nor present in the document,
// so ids stay unique even after removals or a generator that repeats itself.
func (c *Creator) nextID() (string, bool) {
	for i := 0; i < maxIDAttempts; i++ {
		id := c.newID()
		if _, used := c.issued[id]; used || id == "" || c.doc.Has(id) {
			continue
		}
		c.issued[id] = struct{}{}
		return id, true
	}
	return "", false
}
