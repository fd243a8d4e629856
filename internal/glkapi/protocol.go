package glkapi

import "encoding/json"

// This file defines the GlkOte wire protocol: the JSON shapes exchanged
// between the runtime and its display host. Grounded on remglk-rs's
// protocol.rs; Go's encoding/json lacks serde's flatten/untagged/
// skip_serializing_if, so default-elision is reproduced with omitempty
// struct tags and, where that isn't expressive enough, custom
// MarshalJSON methods.

// Metrics is the display's reported geometry, normalized per §6 before
// use. Pointers distinguish "absent" from "zero".
type Metrics struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	OutspacingX *float64 `json:"outspacingx,omitempty"`
	OutspacingY *float64 `json:"outspacingy,omitempty"`

	Margin       *float64 `json:"margin,omitempty"`
	MarginX      *float64 `json:"marginx,omitempty"`
	MarginY      *float64 `json:"marginy,omitempty"`
	MarginLeft   *float64 `json:"marginleft,omitempty"`
	MarginRight  *float64 `json:"marginright,omitempty"`
	MarginTop    *float64 `json:"margintop,omitempty"`
	MarginBottom *float64 `json:"marginbottom,omitempty"`

	BufferMargin       *float64 `json:"buffermargin,omitempty"`
	BufferMarginX      *float64 `json:"buffermarginx,omitempty"`
	BufferMarginY      *float64 `json:"buffermarginy,omitempty"`
	BufferMarginLeft   *float64 `json:"buffermarginleft,omitempty"`
	BufferMarginRight  *float64 `json:"buffermarginright,omitempty"`
	BufferMarginTop    *float64 `json:"buffermargintop,omitempty"`
	BufferMarginBottom *float64 `json:"buffermarginbottom,omitempty"`
	BufferCharWidth    *float64 `json:"buffercharwidth,omitempty"`
	BufferCharHeight   *float64 `json:"buffercharheight,omitempty"`

	GridMargin       *float64 `json:"gridmargin,omitempty"`
	GridMarginX      *float64 `json:"gridmarginx,omitempty"`
	GridMarginY      *float64 `json:"gridmarginy,omitempty"`
	GridMarginLeft   *float64 `json:"gridmarginleft,omitempty"`
	GridMarginRight  *float64 `json:"gridmarginright,omitempty"`
	GridMarginTop    *float64 `json:"gridmargintop,omitempty"`
	GridMarginBottom *float64 `json:"gridmarginbottom,omitempty"`
	GridCharWidth    *float64 `json:"gridcharwidth,omitempty"`
	GridCharHeight   *float64 `json:"gridcharheight,omitempty"`

	GraphicsMargin       *float64 `json:"graphicsmargin,omitempty"`
	GraphicsMarginX      *float64 `json:"graphicsmarginx,omitempty"`
	GraphicsMarginY      *float64 `json:"graphicsmarginy,omitempty"`
	GraphicsMarginLeft   *float64 `json:"graphicsmarginleft,omitempty"`
	GraphicsMarginRight  *float64 `json:"graphicsmarginright,omitempty"`
	GraphicsMarginTop    *float64 `json:"graphicsmargintop,omitempty"`
	GraphicsMarginBottom *float64 `json:"graphicsmarginbottom,omitempty"`

	Spacing   *float64 `json:"spacing,omitempty"`
	SpacingX  *float64 `json:"spacingx,omitempty"`
	SpacingY  *float64 `json:"spacingy,omitempty"`
	InSpacing *float64 `json:"inspacing,omitempty"`
	InSpacingX *float64 `json:"inspacingx,omitempty"`
	InSpacingY *float64 `json:"inspacingy,omitempty"`
}

// NormalizedMetrics is the fully-resolved, non-optional form Metrics
// cascades into (§6).
type NormalizedMetrics struct {
	Width, Height float64

	BufferMarginX, BufferMarginY                              float64
	BufferMarginLeft, BufferMarginRight                        float64
	BufferMarginTop, BufferMarginBottom                        float64
	BufferCharWidth, BufferCharHeight                          float64

	GridMarginX, GridMarginY                                   float64
	GridMarginLeft, GridMarginRight                             float64
	GridMarginTop, GridMarginBottom                             float64
	GridCharWidth, GridCharHeight                               float64

	GraphicsMarginX, GraphicsMarginY                            float64
	GraphicsMarginLeft, GraphicsMarginRight                      float64
	GraphicsMarginTop, GraphicsMarginBottom                      float64

	InSpacingX, InSpacingY float64
}

func f(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

// Normalize cascades the optional Metrics fields into fully-resolved
// values, in this order: margin -> buffer/graphics/grid margin ->
// marginx/marginy -> per-type x/y margins -> per-side margins ->
// spacing/inspacing -> spacingx/spacingy -> inspacingx/inspacingy.
// Metrics has no generic charwidth/charheight field: buffer and grid char
// sizes come only from their own per-type fields and default to 1.
func (m *Metrics) Normalize() (*NormalizedMetrics, error) {
	if (m.OutspacingX != nil && *m.OutspacingX != 0) || (m.OutspacingY != nil && *m.OutspacingY != 0) {
		return nil, ErrOutspacingMustBeZero
	}

	n := &NormalizedMetrics{Width: m.Width, Height: m.Height}

	margin := f(m.Margin, 0)
	n.BufferMarginLeft, n.BufferMarginRight = margin, margin
	n.BufferMarginTop, n.BufferMarginBottom = margin, margin
	n.GridMarginLeft, n.GridMarginRight = margin, margin
	n.GridMarginTop, n.GridMarginBottom = margin, margin
	n.GraphicsMarginLeft, n.GraphicsMarginRight = margin, margin
	n.GraphicsMarginTop, n.GraphicsMarginBottom = margin, margin

	if m.BufferMargin != nil {
		bm := *m.BufferMargin
		n.BufferMarginLeft, n.BufferMarginRight = bm, bm
		n.BufferMarginTop, n.BufferMarginBottom = bm, bm
	}
	if m.GraphicsMargin != nil {
		gm := *m.GraphicsMargin
		n.GraphicsMarginLeft, n.GraphicsMarginRight = gm, gm
		n.GraphicsMarginTop, n.GraphicsMarginBottom = gm, gm
	}
	if m.GridMargin != nil {
		gm := *m.GridMargin
		n.GridMarginLeft, n.GridMarginRight = gm, gm
		n.GridMarginTop, n.GridMarginBottom = gm, gm
	}

	if m.MarginX != nil {
		n.BufferMarginLeft, n.BufferMarginRight = *m.MarginX, *m.MarginX
		n.GridMarginLeft, n.GridMarginRight = *m.MarginX, *m.MarginX
		n.GraphicsMarginLeft, n.GraphicsMarginRight = *m.MarginX, *m.MarginX
	}
	if m.MarginY != nil {
		n.BufferMarginTop, n.BufferMarginBottom = *m.MarginY, *m.MarginY
		n.GridMarginTop, n.GridMarginBottom = *m.MarginY, *m.MarginY
		n.GraphicsMarginTop, n.GraphicsMarginBottom = *m.MarginY, *m.MarginY
	}

	if m.BufferMarginX != nil {
		n.BufferMarginLeft, n.BufferMarginRight = *m.BufferMarginX, *m.BufferMarginX
	}
	if m.BufferMarginY != nil {
		n.BufferMarginTop, n.BufferMarginBottom = *m.BufferMarginY, *m.BufferMarginY
	}
	if m.GridMarginX != nil {
		n.GridMarginLeft, n.GridMarginRight = *m.GridMarginX, *m.GridMarginX
	}
	if m.GridMarginY != nil {
		n.GridMarginTop, n.GridMarginBottom = *m.GridMarginY, *m.GridMarginY
	}
	if m.GraphicsMarginX != nil {
		n.GraphicsMarginLeft, n.GraphicsMarginRight = *m.GraphicsMarginX, *m.GraphicsMarginX
	}
	if m.GraphicsMarginY != nil {
		n.GraphicsMarginTop, n.GraphicsMarginBottom = *m.GraphicsMarginY, *m.GraphicsMarginY
	}

	if m.MarginLeft != nil {
		n.BufferMarginLeft, n.GridMarginLeft, n.GraphicsMarginLeft = *m.MarginLeft, *m.MarginLeft, *m.MarginLeft
	}
	if m.MarginRight != nil {
		n.BufferMarginRight, n.GridMarginRight, n.GraphicsMarginRight = *m.MarginRight, *m.MarginRight, *m.MarginRight
	}
	if m.MarginTop != nil {
		n.BufferMarginTop, n.GridMarginTop, n.GraphicsMarginTop = *m.MarginTop, *m.MarginTop, *m.MarginTop
	}
	if m.MarginBottom != nil {
		n.BufferMarginBottom, n.GridMarginBottom, n.GraphicsMarginBottom = *m.MarginBottom, *m.MarginBottom, *m.MarginBottom
	}
	if m.BufferMarginLeft != nil {
		n.BufferMarginLeft = *m.BufferMarginLeft
	}
	if m.BufferMarginRight != nil {
		n.BufferMarginRight = *m.BufferMarginRight
	}
	if m.BufferMarginTop != nil {
		n.BufferMarginTop = *m.BufferMarginTop
	}
	if m.BufferMarginBottom != nil {
		n.BufferMarginBottom = *m.BufferMarginBottom
	}
	if m.GridMarginLeft != nil {
		n.GridMarginLeft = *m.GridMarginLeft
	}
	if m.GridMarginRight != nil {
		n.GridMarginRight = *m.GridMarginRight
	}
	if m.GridMarginTop != nil {
		n.GridMarginTop = *m.GridMarginTop
	}
	if m.GridMarginBottom != nil {
		n.GridMarginBottom = *m.GridMarginBottom
	}
	if m.GraphicsMarginLeft != nil {
		n.GraphicsMarginLeft = *m.GraphicsMarginLeft
	}
	if m.GraphicsMarginRight != nil {
		n.GraphicsMarginRight = *m.GraphicsMarginRight
	}
	if m.GraphicsMarginTop != nil {
		n.GraphicsMarginTop = *m.GraphicsMarginTop
	}
	if m.GraphicsMarginBottom != nil {
		n.GraphicsMarginBottom = *m.GraphicsMarginBottom
	}

	n.BufferCharWidth, n.BufferCharHeight = 1, 1
	n.GridCharWidth, n.GridCharHeight = 1, 1
	if m.BufferCharWidth != nil {
		n.BufferCharWidth = *m.BufferCharWidth
	}
	if m.BufferCharHeight != nil {
		n.BufferCharHeight = *m.BufferCharHeight
	}
	if m.GridCharWidth != nil {
		n.GridCharWidth = *m.GridCharWidth
	}
	if m.GridCharHeight != nil {
		n.GridCharHeight = *m.GridCharHeight
	}

	if m.Spacing != nil {
		n.InSpacingX, n.InSpacingY = *m.Spacing, *m.Spacing
	}
	if m.InSpacing != nil {
		n.InSpacingX, n.InSpacingY = *m.InSpacing, *m.InSpacing
	}
	if m.SpacingX != nil {
		n.InSpacingX = *m.SpacingX
	}
	if m.SpacingY != nil {
		n.InSpacingY = *m.SpacingY
	}
	if m.InSpacingX != nil {
		n.InSpacingX = *m.InSpacingX
	}
	if m.InSpacingY != nil {
		n.InSpacingY = *m.InSpacingY
	}

	return n, nil
}

// InboundEvent is the wire shape of every event the host sends in.
// Unused fields are simply absent from the JSON and decode to zero values.
type InboundEvent struct {
	Gen     uint32            `json:"gen"`
	Partial map[string]string `json:"partial,omitempty"`
	Type    string            `json:"type"`

	Window uint32 `json:"window,omitempty"`
	Value  string `json:"value,omitempty"`

	Terminator string `json:"terminator,omitempty"`

	X *int `json:"x,omitempty"`
	Y *int `json:"y,omitempty"`

	Notify uint32 `json:"notify,omitempty"`
	Snd    uint32 `json:"snd,omitempty"`

	Response string          `json:"response,omitempty"`
	Value2   json.RawMessage `json:"value,omitempty"`

	Metrics *Metrics `json:"metrics,omitempty"`
}

// SpecialResponseFilename decodes a specialresponse event's polymorphic value
// field: either a bare string path, or {"filename": "..."}.
func (e *InboundEvent) SpecialResponseFilename() (string, bool) {
	if len(e.Value2) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(e.Value2, &s); err == nil {
		return s, true
	}
	var obj struct {
		Filename string `json:"filename"`
	}
	if err := json.Unmarshal(e.Value2, &obj); err == nil {
		return obj.Filename, true
	}
	return "", false
}

// TextRun is a single contiguous styled span of text within a paragraph or
// grid line.
type TextRun struct {
	Text      string            `json:"text"`
	Style     Style             `json:"style"`
	CSSStyles map[string]string `json:"css_styles,omitempty"`
	Hyperlink uint32            `json:"hyperlink,omitempty"`
}

// ImageRun is an inline image placed within a buffer-window paragraph.
type ImageRun struct {
	Special   string  `json:"special"`
	Alignment string  `json:"alignment,omitempty"`
	AltText   string  `json:"alttext,omitempty"`
	Height    float64 `json:"height"`
	Width     float64 `json:"width"`
	Image     uint32  `json:"image"`
	Hyperlink uint32  `json:"hyperlink,omitempty"`
}

// LineDatum is either a TextRun or an ImageRun; MarshalJSON flattens
// whichever is populated (Rust's untagged enum, reproduced manually).
type LineDatum struct {
	Text  *TextRun
	Image *ImageRun
}

func (d LineDatum) MarshalJSON() ([]byte, error) {
	if d.Image != nil {
		return json.Marshal(d.Image)
	}
	return json.Marshal(d.Text)
}

// Paragraph is one buffer-window content paragraph.
type Paragraph struct {
	Append    bool        `json:"append,omitempty"`
	FlowBreak bool        `json:"flowbreak,omitempty"`
	Content   []LineDatum `json:"content"`
}

// GridLine is one text-grid content row.
type GridLine struct {
	Line    uint32    `json:"line"`
	Content []TextRun `json:"content"`
}

// GraphicsOp is one graphics-window display-list operation.
type GraphicsOp struct {
	Special string  `json:"special"`
	Color   string  `json:"color,omitempty"`
	X       float64 `json:"x,omitempty"`
	Y       float64 `json:"y,omitempty"`
	Width   float64 `json:"width,omitempty"`
	Height  float64 `json:"height,omitempty"`
	Image   uint32  `json:"image,omitempty"`
}

// ContentUpdate is one window's content block within a state update.
type ContentUpdate struct {
	ID    uint32 `json:"id"`
	Clear bool   `json:"clear,omitempty"`
	BG    string `json:"bg,omitempty"`
	FG    string `json:"fg,omitempty"`

	Text     []Paragraph  `json:"text,omitempty"`
	Lines    []GridLine   `json:"lines,omitempty"`
	Draw     []GraphicsOp `json:"draw,omitempty"`
}

// InputUpdate describes one window's currently-requested input.
type InputUpdate struct {
	ID          uint32   `json:"id"`
	Type        string   `json:"type,omitempty"`
	Gen         uint32   `json:"gen,omitempty"`
	Initial     string   `json:"initial,omitempty"`
	MaxLen      int      `json:"maxlen,omitempty"`
	Hyperlink   bool     `json:"hyperlink,omitempty"`
	Mouse       bool     `json:"mouse,omitempty"`
	Terminators []string `json:"terminators,omitempty"`
	XPos        *int     `json:"xpos,omitempty"`
	YPos        *int     `json:"ypos,omitempty"`
}

// WindowUpdate is a window's size/position frame, sent only when layout
// changed.
type WindowUpdate struct {
	ID         uint32  `json:"id"`
	Type       string  `json:"type"`
	Rock       uint32  `json:"rock"`
	Left       float64 `json:"left"`
	Top        float64 `json:"top"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	GridHeight int     `json:"gridheight,omitempty"`
	GridWidth  int     `json:"gridwidth,omitempty"`
	GraphHeight float64 `json:"graphheight,omitempty"`
	GraphWidth  float64 `json:"graphwidth,omitempty"`

	Styles json.RawMessage `json:"styles,omitempty"`
}

// SchannelUpdate is one sound channel's drained operation list.
type SchannelUpdate struct {
	ID  uint32            `json:"id"`
	Ops []json.RawMessage `json:"ops"`
}

// SpecialInput signals a pending file-reference prompt.
type SpecialInput struct {
	Type string `json:"type"`
}

// Update is the outbound state payload; "absent when defaulted" fields
// use omitempty or pointer types.
type Update struct {
	Type string `json:"type"`
	Gen  uint32 `json:"gen"`

	Content []ContentUpdate `json:"content,omitempty"`
	Input   []InputUpdate   `json:"input,omitempty"`
	Windows []WindowUpdate  `json:"windows,omitempty"`

	Schannels []SchannelUpdate `json:"schannels,omitempty"`

	PageMarginBG string `json:"page_margin_bg,omitempty"`

	SpecialInput *SpecialInput `json:"specialinput,omitempty"`

	Timer *int `json:"timer,omitempty"`

	Disable bool `json:"disable,omitempty"`

	Message string `json:"message,omitempty"`
}
