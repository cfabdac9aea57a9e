package ui

import (
	"image/color"

	"SketchBoard/internal/board"
	"SketchBoard/internal/render"
	"SketchBoard/internal/state"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// Palette is the set of stroke colors offered in the toolbar.
var Palette = []color.NRGBA{
	{A: 255},
	{R: 255, A: 255},
	{G: 160, A: 255},
	{B: 255, A: 255},
	{R: 255, G: 200, A: 255},
	{R: 140, G: 60, B: 200, A: 255},
}

const chipSize = 26

// paletteChip is a tappable color sample. The active color gets a heavier outline.
type paletteChip struct {
	widget.BaseWidget
	fill   color.NRGBA
	active bool
	onPick func(color.NRGBA)
}

func newPaletteChip(fill color.NRGBA, onPick func(color.NRGBA)) *paletteChip {
	p := &paletteChip{fill: fill, onPick: onPick}
	p.ExtendBaseWidget(p)
	return p
}

func (p *paletteChip) setActive(active bool) {
	if p.active == active {
		return
	}
	p.active = active
	p.Refresh()
}

func (p *paletteChip) Tapped(*fyne.PointEvent) {
	if p.onPick != nil {
		p.onPick(p.fill)
	}
}

func (p *paletteChip) CreateRenderer() fyne.WidgetRenderer {
	r := &chipRenderer{chip: p, sample: canvas.NewRectangle(p.fill)}
	r.sample.CornerRadius = 4
	r.outline()
	return r
}

type chipRenderer struct {
	chip   *paletteChip
	sample *canvas.Rectangle
}

func (r *chipRenderer) outline() {
	if r.chip.active {
		r.sample.StrokeColor = color.Black
		r.sample.StrokeWidth = 3
		return
	}
	r.sample.StrokeColor = color.Gray{Y: 170}
	r.sample.StrokeWidth = 1
}

func (r *chipRenderer) Layout(size fyne.Size) { r.sample.Resize(size) }

func (r *chipRenderer) MinSize() fyne.Size { return fyne.NewSize(chipSize, chipSize) }

func (r *chipRenderer) Refresh() {
	r.outline()
	r.sample.Refresh()
}

func (r *chipRenderer) Objects() []fyne.CanvasObject { return []fyne.CanvasObject{r.sample} }

func (r *chipRenderer) Destroy() {}

var toolLabels = map[state.Tool]string{
	state.ToolSelect: "Select",
	state.ToolPencil: "Pencil",
	state.ToolEraser: "Eraser",
	state.ToolRect:   "Rectangle",
	state.ToolCircle: "Circle",
}

// Actions are the toolbar buttons that leave the drawing surface.
type Actions struct {
	Save      func() // export the snapshot and hand it back
	Close     func() // discard without exporting
	OpenBoard func()
	SaveBoard func()
	ExportPDF func()
}

// Toolbar is the floating control surface for tool and color selection.
type Toolbar struct {
	board   *board.Whiteboard
	tools   *widget.RadioGroup
	current *canvas.Rectangle
	chips   []*paletteChip
	object  fyne.CanvasObject
}

// NewToolbar builds the toolbar for wb.
func NewToolbar(wb *board.Whiteboard, actions Actions) *Toolbar {
	t := &Toolbar{board: wb}

	var names []string
	byLabel := map[string]state.Tool{}
	for _, tool := range state.Tools {
		if label, ok := toolLabels[tool]; ok {
			names = append(names, label)
			byLabel[label] = tool
		}
	}
	t.tools = widget.NewRadioGroup(names, func(label string) {
		tool, ok := byLabel[label]
		if !ok {
			return
		}
		wb.SetTool(tool)
	})
	t.tools.Horizontal = true
	t.tools.Required = true
	t.tools.SetSelected(toolLabels[state.ToolPencil])

	t.current = canvas.NewRectangle(color.Black)
	t.current.SetMinSize(fyne.NewSize(12, chipSize))
	swatches := []fyne.CanvasObject{t.current, widget.NewSeparator()}
	for _, c := range Palette {
		chip := newPaletteChip(c, t.setColor)
		t.chips = append(t.chips, chip)
		swatches = append(swatches, chip)
	}

	items := []widget.ToolbarItem{
		widget.NewToolbarAction(theme.ContentUndoIcon(), func() { wb.Undo() }),
		widget.NewToolbarAction(theme.DeleteIcon(), func() { wb.SetTool(state.ToolClear) }),
		widget.NewToolbarSeparator(),
	}
	add := func(icon fyne.Resource, fn func()) {
		if fn != nil {
			items = append(items, widget.NewToolbarAction(icon, fn))
		}
	}
	add(theme.FolderOpenIcon(), actions.OpenBoard)
	add(theme.DocumentSaveIcon(), actions.SaveBoard)
	add(theme.DocumentPrintIcon(), actions.ExportPDF)
	items = append(items, widget.NewToolbarSpacer())
	add(theme.ConfirmIcon(), actions.Save)
	add(theme.CancelIcon(), actions.Close)

	t.object = container.NewVBox(
		container.NewHBox(widget.NewLabel("Tool:"), t.tools, layout.NewSpacer()),
		container.NewHBox(append([]fyne.CanvasObject{widget.NewLabel("Color:")}, swatches...)...),
		widget.NewToolbar(items...),
	)
	return t
}

func (t *Toolbar) setColor(c color.NRGBA) {
	t.board.SetColor(render.ColorString(c))
	t.showColor(c)
}

func (t *Toolbar) showColor(c color.NRGBA) {
	t.current.FillColor = c
	t.current.Refresh()
	for _, chip := range t.chips {
		chip.setActive(chip.fill == c)
	}
}

// SelectTool selects a tool as if its button had been pressed.
func (t *Toolbar) SelectTool(tool state.Tool) {
	if label, ok := toolLabels[tool]; ok {
		t.tools.SetSelected(label)
	}
}

// Sync shows the session's active tool and color.
func (t *Toolbar) Sync(s *state.Session) {
	t.SelectTool(s.Tool())
	t.showColor(render.MustColor(s.Color()))
}

func (t *Toolbar) CanvasObject() fyne.CanvasObject {
	return t.object
}
