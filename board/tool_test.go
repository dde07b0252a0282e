package board

import (
	"testing"
	"whiteboard/core"
)

func TestParseTool(t *testing.T) {
	for _, name := range []string{"move", "square", "circle", "arrow", "text", "image", "eraser"} {
		tool, err := ParseTool(name)
		if err != nil || string(tool) != name {
			t.Errorf("ParseTool(%q) = %q, %v", name, tool, err)
		}
	}
	if _, err := ParseTool("lasso"); err == nil {
		t.Error("ParseTool() accepted an unknown tool")
	}
}

func TestToolController_CursorHint(t *testing.T) {
	c := NewToolController()
	if c.Current() != ToolMove || c.CursorHint() != CursorDefault {
		t.Fatalf("initial = %s/%s", c.Current(), c.CursorHint())
	}
	for _, tool := range []Tool{ToolSquare, ToolCircle, ToolArrow, ToolText, ToolImage, ToolEraser} {
		c.Select(tool)
		if c.CursorHint() != CursorCrosshair {
			t.Errorf("%s cursor = %s, want crosshair", tool, c.CursorHint())
		}
	}
	c.Select(ToolMove)
	c.Select(ToolMove)
	if c.Current() != ToolMove || c.CursorHint() != CursorDefault {
		t.Error("reselecting move is not idempotent")
	}
}

func TestCreateAt_NonCreationTools(t *testing.T) {
	doc := NewDocument()
	c := NewCreator(doc, nil)
	for _, tool := range []Tool{ToolMove, ToolEraser} {
		if _, ok := c.CreateAt(tool, core.Point{}); ok {
			t.Errorf("CreateAt(%s) created an element", tool)
		}
	}
	if doc.Len() != 0 || doc.Dirty() {
		t.Error("document changed")
	}
}

func TestCreateAt_GeneratorExhausted(t *testing.T) {
	doc := NewDocument()
	c := NewCreator(doc, func() string { return "same" })
	if _, ok := c.CreateAt(ToolText, core.Point{}); !ok {
		t.Fatal("first CreateAt() failed")
	}
	if _, ok := c.CreateAt(ToolText, core.Point{}); ok {
		t.Error("CreateAt() reused an id")
	}
	if doc.Len() != 1 {
		t.Errorf("Len() = %d, want 1", doc.Len())
	}
}
