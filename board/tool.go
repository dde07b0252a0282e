package board

import (
	"fmt"
	"whiteboard/core"
)

// Tool is the user's currently selected action.
type Tool string

const (
	ToolMove   Tool = "move"
	ToolSquare Tool = "square"
	ToolCircle Tool = "circle"
	ToolArrow  Tool = "arrow"
	ToolText   Tool = "text"
	ToolImage  Tool = "image"
	ToolEraser Tool = "eraser"
)

// Cursor hints consumed by the rendering layer.
const (
	CursorDefault   = "default"
	CursorCrosshair = "crosshair"
)

var tools = []Tool{ToolMove, ToolSquare, ToolCircle, ToolArrow, ToolText, ToolImage, ToolEraser}

// ParseTool maps a tool name to a Tool.
func ParseTool(name string) (Tool, error) {
	for _, t := range tools {
		if string(t) == name {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown tool %q", name)
}

// Variant returns the element variant a tool creates. ok is false for Move and Eraser.
func (t Tool) Variant() (v core.Variant, ok bool) {
	switch t {
	case ToolSquare:
		return core.VariantSquare, true
	case ToolCircle:
		return core.VariantCircle, true
	case ToolArrow:
		return core.VariantArrow, true
	case ToolText:
		return core.VariantText, true
	case ToolImage:
		return core.VariantImage, true
	}
	return 0, false
}

// ToolController holds the active tool of one board session.
type ToolController struct {
	mode Tool
}

// NewToolController starts in Move mode.
func NewToolController() *ToolController {
	return &ToolController{mode: ToolMove}
}

// Select sets the active tool. Selecting the current tool again is a no-op.
func (c *ToolController) Select(t Tool) {
	c.mode = t
}

// Current returns the active tool.
func (c *ToolController) Current() Tool {
	return c.mode
}

// CursorHint is "default" in Move mode and "crosshair" for every other tool.
func (c *ToolController) CursorHint() string {
	if c.mode == ToolMove {
		return CursorDefault
	}
	return CursorCrosshair
}
