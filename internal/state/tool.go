package state

import "fmt"

// Tool is the active canvas tool.
type Tool string

const (
	ToolSelect Tool = "select"
	ToolPencil Tool = "pencil"
	ToolEraser Tool = "eraser"
	ToolRect   Tool = "rectangle"
	ToolCircle Tool = "circle"
	// ToolClear is a momentary action; it never becomes the active tool.
	ToolClear Tool = "clear"
)

// Tools lists every tool in toolbar order.
var Tools = []Tool{ToolSelect, ToolPencil, ToolEraser, ToolRect, ToolCircle, ToolClear}

// ParseTool converts a tool name into a Tool.
func ParseTool(name string) (Tool, error) {
	for _, t := range Tools {
		if string(t) == name {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown tool %q", name)
}

// Freehand reports whether the tool captures freehand strokes.
func (t Tool) Freehand() bool {
	return t == ToolPencil || t == ToolEraser
}

// Shape reports whether the tool draws a shape from a drag gesture.
func (t Tool) Shape() bool {
	return t == ToolRect || t == ToolCircle
}
