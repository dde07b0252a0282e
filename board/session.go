package board

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"whiteboard/core"

	"github.com/sirupsen/logrus"
)

// ErrNoPersister is returned by Save when the session was built without a Persister.
var ErrNoPersister = errors.New("no persister configured")

// State is the gesture state of a session.
type State int

const (
	StateIdle State = iota
	StateDragging
	StateEditingText
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDragging:
		return "dragging"
	case StateEditingText:
		return "editing-text"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

type (
	// Persister stores a snapshot. It is the only I/O a session performs.
	Persister interface {
		Save(ctx context.Context, snapshot core.Snapshot) error
	}

	// PersisterFunc adapts a function to Persister.
	PersisterFunc func(ctx context.Context, snapshot core.Snapshot) error

	// Key is a keyboard event forwarded by the host.
	Key struct {
		Key  string `json:"key"`
		Ctrl bool   `json:"ctrl"`
		Meta bool   `json:"meta"`
	}

	// Status is a consistent view of a session for the host UI.
	Status struct {
		Snapshot  core.Snapshot `json:"snapshot"`
		Dirty     bool          `json:"dirty"`
		Mode      Tool          `json:"mode"`
		Cursor    string        `json:"cursor"`
		State     string        `json:"state"`
		ActiveID  string        `json:"activeId,omitempty"`
		EditingID string        `json:"editingId,omitempty"`
	}
)

func (f PersisterFunc) Save(ctx context.Context, snapshot core.Snapshot) error {
	return f(ctx, snapshot)
}

// IsSave reports whether k is the platform save combo.
func (k Key) IsSave() bool {
	return (k.Ctrl || k.Meta) && strings.EqualFold(k.Key, "s")
}

// IsDelete reports whether k removes the active element.
func (k Key) IsDelete() bool {
	return k.Key == "Delete" || k.Key == "Backspace"
}

// Session is the interaction state of one mounted board view: its document, its
// active tool and the current gesture. Construct one per view and drop it on unmount;
// unsaved changes are lost with it.
//
// All methods are safe for concurrent use. Events are applied one at a time in the
// order their calls acquire the session.
type Session struct {
	mu sync.Mutex

	doc       *Document
	tools     *ToolController
	creator   *Creator
	editor    *TextEditor
	persister Persister
	log       *logrus.Entry

	state    State
	activeID string
	offset   core.Point
}

type sessionConfig struct {
	snapshot  *core.Snapshot
	newID     IDGenerator
	persister Persister
	deferred  bool
	docOpts   []DocumentOption
	fields    logrus.Fields
}

// Option configures a Session.
type Option func(*sessionConfig)

// WithSnapshot loads the session's document from s.
func WithSnapshot(s core.Snapshot) Option {
	return func(c *sessionConfig) {
		c.snapshot = &s
	}
}

// WithIDGenerator overrides the element id source.
func WithIDGenerator(gen IDGenerator) Option {
	return func(c *sessionConfig) {
		c.newID = gen
	}
}

// WithPersister sets the collaborator used by Save.
func WithPersister(p Persister) Option {
	return func(c *sessionConfig) {
		c.persister = p
	}
}

// WithDeferredText buffers text edits until blur instead of writing every change.
func WithDeferredText() Option {
	return func(c *sessionConfig) {
		c.deferred = true
	}
}

// WithDocumentOptions passes options to the session's document.
func WithDocumentOptions(opts ...DocumentOption) Option {
	return func(c *sessionConfig) {
		c.docOpts = append(c.docOpts, opts...)
	}
}

// WithLogFields adds fields to every log line of the session.
func WithLogFields(fields logrus.Fields) Option {
	return func(c *sessionConfig) {
		c.fields = fields
	}
}

// NewSession mounts a board view in Move mode and Idle state.
func NewSession(opts ...Option) *Session {
	var cfg sessionConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	doc := NewDocument(cfg.docOpts...)
	if cfg.snapshot != nil {
		doc.Replace(cfg.snapshot.Elements)
	}

	return &Session{
		doc:       doc,
		tools:     NewToolController(),
		creator:   NewCreator(doc, cfg.newID),
		editor:    NewTextEditor(doc, cfg.deferred),
		persister: cfg.persister,
		log:       logrus.WithFields(cfg.fields),
		state:     StateIdle,
	}
}

// SelectTool switches the active tool.
func (s *Session) SelectTool(t Tool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tools.Select(t)
}

// Mode returns the active tool.
func (s *Session) Mode() Tool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tools.Current()
}

// CursorHint returns the cursor for the active tool.
func (s *Session) CursorHint() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tools.CursorHint()
}

// State returns the gesture state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ActiveElement returns the id of the element being dragged.
func (s *Session) ActiveElement() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID, s.activeID != ""
}

// EditTarget returns the id of the element under text edit.
func (s *Session) EditTarget() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editor.Target()
}

// Dirty reports unsaved changes.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Dirty()
}

// Snapshot returns a copy of the document.
func (s *Session) Snapshot() core.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Snapshot()
}

// Status returns a consistent view of the whole session.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	editing, _ := s.editor.Target()
	return Status{
		Snapshot:  s.doc.Snapshot(),
		Dirty:     s.doc.Dirty(),
		Mode:      s.tools.Current(),
		Cursor:    s.tools.CursorHint(),
		State:     s.state.String(),
		ActiveID:  s.activeID,
		EditingID: editing,
	}
}

// HitTest returns the topmost element under p, for hosts without their own hit testing.
func (s *Session) HitTest(p core.Point) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.ElementAt(p)
}

// Load replaces the document with a stored snapshot and resets the gesture.
func (s *Session) Load(snapshot core.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.endEdit()
	s.endDrag()
	s.doc.Replace(snapshot.Elements)
}

// SetPersister swaps the collaborator used by Save.
func (s *Session) SetPersister(p Persister) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persister = p
}

// Do runs fn with exclusive access to the document, for host operations outside the
// gesture model. fn must not retain doc.
func (s *Session) Do(fn func(doc *Document)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.doc)
}

// PointerDown handles a press at p. target is the element under the pointer as
// determined by the host, or "" for empty canvas.
//
// In Move mode a press on an element starts a drag. Creation tools create a new
// element at p even when the press lands on an existing element. The eraser removes
// the pressed element.
func (s *Session) PointerDown(p core.Point, target string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if editing, ok := s.editor.Target(); ok {
		if target != "" && target == editing {
			s.log.WithField("element_id", target).Debug("Rejecting drag start on element under edit")
			return
		}
		s.endEdit()
	}
	if s.state == StateDragging {
		s.endDrag()
	}

	mode := s.tools.Current()
	switch mode {
	case ToolMove:
		if target == "" {
			return
		}
		el, ok := s.doc.Get(target)
		if !ok {
			return
		}
		s.offset = p.Sub(el.Position)
		s.activeID = target
		s.state = StateDragging
		s.log.WithFields(logrus.Fields{
			"element_id": target,
			"offset_x":   s.offset.X,
			"offset_y":   s.offset.Y,
		}).Debug("Drag started")
	case ToolEraser:
		if target != "" {
			s.doc.Remove(target)
		}
	default:
		s.creator.CreateAt(mode, p)
	}
}

// PointerMove moves the dragged element so that it keeps its grab offset under p.
// Positions are not clamped.
func (s *Session) PointerMove(p core.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateDragging {
		return
	}
	s.doc.Move(s.activeID, p.Sub(s.offset))
}

// PointerUp ends a drag.
func (s *Session) PointerUp() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.endDrag()
}

// PointerLeave ends a drag when the pointer leaves the canvas.
func (s *Session) PointerLeave() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.endDrag()
}

// DoubleClick enters text editing for text and card elements in Move mode. While
// another element is under edit, that edit is ended and the target takes over.
func (s *Session) DoubleClick(target string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tools.Current() != ToolMove || target == "" || s.state == StateDragging {
		return false
	}
	if editing, ok := s.editor.Target(); ok {
		if editing == target {
			return true
		}
		el, found := s.doc.Get(target)
		if !found {
			return false
		}
		if _, editable := el.EditableText(); !editable {
			return false
		}
		s.endEdit()
	}
	if !s.editor.Begin(target) {
		return false
	}
	s.state = StateEditingText
	s.log.WithField("element_id", target).Debug("Text edit started")
	return true
}

// BeginEdit is DoubleClick under its text-edit name.
func (s *Session) BeginEdit(id string) bool {
	return s.DoubleClick(id)
}

// EditText reports the current text of the textarea under edit.
func (s *Session) EditText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editor.Edit(text)
}

// Commit writes text into the editable field of element id.
func (s *Session) Commit(id, text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editor.Commit(id, text)
}

// Blur leaves text editing, flushing a buffered value first.
func (s *Session) Blur() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.endEdit()
}

// CancelEdit leaves text editing on the host's request. It behaves like Blur.
func (s *Session) CancelEdit() {
	s.Blur()
}

// DeleteActive removes the element being dragged, if any.
func (s *Session) DeleteActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteActive()
}

// KeyDown handles the global shortcuts. Delete and Backspace remove the active
// element unless text is being edited; Ctrl+S or Meta+S saves. handled reports
// whether the key was a shortcut.
func (s *Session) KeyDown(ctx context.Context, k Key) (handled bool, err error) {
	if k.IsSave() {
		return true, s.Save(ctx)
	}
	if !k.IsDelete() {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editor.Editing() {
		return false, nil
	}
	return s.deleteActive(), nil
}

// Save persists a snapshot and marks the document saved on success. Edits made while
// the persister runs keep the document dirty. On failure the document stays dirty and
// the error is returned.
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	persister := s.persister
	if persister == nil {
		s.mu.Unlock()
		return ErrNoPersister
	}
	s.editor.Flush()
	snapshot := s.doc.Snapshot()
	revision := s.doc.Revision()
	s.mu.Unlock()

	if err := persister.Save(ctx, snapshot); err != nil {
		s.log.WithError(err).Error("Failed to save board")
		return fmt.Errorf("save board: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc.Revision() == revision {
		s.doc.MarkSaved()
	}
	s.log.WithField("elements", len(snapshot.Elements)).Info("Board saved")
	return nil
}

// Close unmounts the session. Unsaved changes are dropped.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc.Dirty() {
		s.log.WithField("elements", s.doc.Len()).Warn("Discarding unsaved board changes")
	}
	s.endEdit()
	s.endDrag()
}

func (s *Session) endDrag() {
	if s.state != StateDragging {
		return
	}
	s.log.WithField("element_id", s.activeID).Debug("Drag ended")
	s.state = StateIdle
	s.activeID = ""
	s.offset = core.Point{}
}

func (s *Session) endEdit() {
	if !s.editor.Editing() {
		return
	}
	s.editor.End()
	if s.state == StateEditingText {
		s.state = StateIdle
	}
}

func (s *Session) deleteActive() bool {
	if s.activeID == "" {
		return false
	}
	removed := s.doc.Remove(s.activeID)
	s.state = StateIdle
	s.activeID = ""
	s.offset = core.Point{}
	return removed
}
