package board

import "whiteboard/core"

// TextEditor is the in-place text editing sub-mode of a session.
//
// In live mode every Edit is written to the document right away. In deferred mode
// edits are buffered and the last value is written by Flush or End, so the final
// keystroke is delivered before the mode exits either way.
type TextEditor struct {
	doc      *Document
	deferred bool
	target   string
	buffer   string
	pending  bool
}

// NewTextEditor returns an idle editor writing to doc.
func NewTextEditor(doc *Document, deferred bool) *TextEditor {
	return &TextEditor{doc: doc, deferred: deferred}
}

// Begin starts editing the element with the given id. Only text and card elements
// can be edited; ok is false otherwise or when the id is unknown.
func (t *TextEditor) Begin(id string) bool {
	el, ok := t.doc.Get(id)
	if !ok {
		return false
	}
	if _, editable := el.EditableText(); !editable {
		return false
	}
	t.target = id
	t.pending = false
	t.buffer = ""
	return true
}

// Target returns the element under edit.
func (t *TextEditor) Target() (string, bool) {
	return t.target, t.target != ""
}

// Editing reports whether an edit is in progress.
func (t *TextEditor) Editing() bool {
	return t.target != ""
}

// Commit writes text into the element's editable field. It may be called repeatedly.
func (t *TextEditor) Commit(id, text string) bool {
	return t.doc.Update(id, func(el *core.Element) {
		*el = el.WithText(text)
	})
}

// Edit records the current text of the element under edit.
func (t *TextEditor) Edit(text string) {
	if t.target == "" {
		return
	}
	if !t.deferred {
		t.Commit(t.target, text)
		return
	}
	t.buffer = text
	t.pending = true
}

// Flush writes a buffered value, if any, without leaving the mode.
func (t *TextEditor) Flush() {
	if t.target == "" || !t.pending {
		return
	}
	t.Commit(t.target, t.buffer)
	t.pending = false
}

// End flushes and leaves the mode.
func (t *TextEditor) End() {
	t.Flush()
	t.target = ""
	t.buffer = ""
}
