package glkapi

// Box is a window's layout rectangle in pixels.
type Box struct {
	Left, Top, Right, Bottom float64
}

func (b Box) Width() float64  { return b.Right - b.Left }
func (b Box) Height() float64 { return b.Bottom - b.Top }

// inputState tracks pending keyboard/mouse/hyperlink requests for a leaf
// window.
type inputState struct {
	charInput   bool
	charUnicode bool
	lineInput   bool
	lineUnicode bool
	hyperlink   bool
	mouse       bool

	lineBuf       *Buffer
	initialLen    int
	terminators   []Keycode
	hasGen        bool
	requestGen    uint32
}

// Window is a single node of the window tree: a tagged union over the
// five Glk window variants, dispatched through the windowData interface.
// Grounded on remglk-rs's Window enum in windows.rs; Go expresses the
// "trait over a tagged variant" pattern with an interface plus an
// authoritative WinType field for geometry code that must branch
// explicitly (§9 Design Notes).
type Window struct {
	registryEntry

	WinType WinType
	StreamID uint32

	hasParent bool
	parentID  uint32
	hasEcho   bool
	echoID    uint32

	box Box

	input inputState

	data windowData

	firstUpdate bool
}

// pair returns the pair-specific payload for a pair window, or nil.
func (w *Window) pair() *pairWindowData {
	p, _ := w.data.(*pairWindowData)
	return p
}

func (w *Window) buffer() *bufferWindowData {
	b, _ := w.data.(*bufferWindowData)
	return b
}

func (w *Window) grid() *gridWindowData {
	g, _ := w.data.(*gridWindowData)
	return g
}

func (w *Window) graphics() *graphicsWindowData {
	g, _ := w.data.(*graphicsWindowData)
	return g
}

func (w *Window) entry() *registryEntry { return &w.registryEntry }

// windowData is the per-variant operation surface every leaf window
// implements (§4.2). Pair and blank windows implement a no-op version.
type windowData interface {
	clear() (bg string, hasBG bool)
	putString(text string, style Style)
	setColours(fg, bg uint32)
	setCSS(name string, value string, hasValue bool)
	setHyperlink(id uint32)
	setStyle(s Style)
	hasContent() bool
}

// --- Blank & Pair ---

type blankWindowData struct{}

func (blankWindowData) clear() (string, bool)               { return "", false }
func (blankWindowData) putString(string, Style)              {}
func (blankWindowData) setColours(uint32, uint32)             {}
func (blankWindowData) setCSS(string, string, bool)           {}
func (blankWindowData) setHyperlink(uint32)                   {}
func (blankWindowData) setStyle(Style)                        {}
func (blankWindowData) hasContent() bool                       { return false }

// pairWindowData is the internal-node payload: a split spec plus
// non-owning child/key references.
type pairWindowData struct {
	blankWindowData
	Child1ID, Child2ID uint32
	hasChild1, hasChild2 bool
	KeyID uint32
	hasKey bool

	Dir      WinMethod
	Fixed    bool
	Border   bool
	Size     uint32
	Backward bool
	Vertical bool
}

// --- Text-buffer ---

type bufferWindowData struct {
	paragraphs   []Paragraph
	cleared      bool
	clearedBG    string
	clearedFG    string
	currentBG    string
	currentFG    string
	hasColours   bool
	stylehintsSent bool
	currentStyle Style
	currentHyperlink uint32
	currentCSS   map[string]string
}

func newBufferWindowData() *bufferWindowData {
	return &bufferWindowData{
		paragraphs: []Paragraph{{Content: []LineDatum{{Text: &TextRun{Style: StyleNormal}}}}},
	}
}

func (b *bufferWindowData) tailParagraph() *Paragraph {
	return &b.paragraphs[len(b.paragraphs)-1]
}

func (b *bufferWindowData) tailRun() *TextRun {
	p := b.tailParagraph()
	last := p.Content[len(p.Content)-1]
	return last.Text
}

// ensureMutableTailRun returns a run that reflects `want` styling: if the
// tail run is empty or already matches, mutate it in place; otherwise
// clone it into a new empty run and mutate that. Grounded on §4.2's
// "Style mutations... first check the tail run" rule.
func (b *bufferWindowData) ensureMutableTailRun(matches func(*TextRun) bool) *TextRun {
	tail := b.tailRun()
	if tail.Text == "" || matches(tail) {
		return tail
	}
	clone := *tail
	clone.Text = ""
	p := b.tailParagraph()
	p.Content = append(p.Content, LineDatum{Text: &clone})
	return p.Content[len(p.Content)-1].Text
}

func (b *bufferWindowData) putString(text string, style Style) {
	b.cleared = false
	if text == "" {
		return
	}
	prev := b.currentStyle
	if style != prev {
		b.setStyle(style)
	}
	lines := splitLines(text)
	for i, line := range lines {
		if i > 0 {
			newRun := *b.tailRun()
			newRun.Text = ""
			b.paragraphs = append(b.paragraphs, Paragraph{Content: []LineDatum{{Text: &newRun}}})
		}
		if line == "" {
			continue
		}
		tail := b.tailRun()
		tail.Text += line
	}
	if style != prev {
		b.setStyle(prev)
	}
}

func splitLines(s string) []string {
	var out []string
	start := 0
	for i, r := range s {
		if r == '\n' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}

func (b *bufferWindowData) setStyle(s Style) {
	b.currentStyle = s
	r := b.ensureMutableTailRun(func(t *TextRun) bool { return t.Style == s })
	r.Style = s
}

func (b *bufferWindowData) setHyperlink(id uint32) {
	b.currentHyperlink = id
	r := b.ensureMutableTailRun(func(t *TextRun) bool { return t.Hyperlink == id })
	r.Hyperlink = id
}

func (b *bufferWindowData) setCSS(name, value string, hasValue bool) {
	r := b.ensureMutableTailRun(func(t *TextRun) bool { return false })
	css := cloneCSS(r.CSSStyles)
	if hasValue {
		css[name] = value
	} else {
		delete(css, name)
	}
	r.CSSStyles = css
}

func cloneCSS(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// setColours implements garglk_set_zcolors: records the foreground/
// background the next clear() should capture (§4.2 "captures cleared bg/fg
// colors"). The page-margin propagation itself is done by the GlkApi
// callers (SetWindowColours, ClearWindow and SetZColors in api.go/state.go).
func (b *bufferWindowData) setColours(fg, bg uint32) {
	b.currentFG, b.currentBG = colorToHex(fg), colorToHex(bg)
	b.hasColours = true
}

func (b *bufferWindowData) clear() (string, bool) {
	tail := *b.tailRun()
	tail.Text = ""
	b.paragraphs = []Paragraph{{Content: []LineDatum{{Text: &tail}}}}
	b.cleared = true
	if b.hasColours {
		b.clearedBG, b.clearedFG = b.currentBG, b.currentFG
	}
	if b.clearedBG != "" {
		return b.clearedBG, true
	}
	return "", false
}

func (b *bufferWindowData) flowBreak() {
	if len(b.paragraphs) > 0 {
		b.paragraphs[len(b.paragraphs)-1].FlowBreak = true
	}
}

func (b *bufferWindowData) hasContent() bool {
	if b.cleared {
		return true
	}
	if len(b.paragraphs) >= 2 {
		return true
	}
	if len(b.paragraphs) == 1 && len(b.paragraphs[0].Content) > 0 {
		if t := b.paragraphs[0].Content[0].Text; t != nil && t.Text != "" {
			return true
		}
		if b.paragraphs[0].Content[0].Image != nil {
			return true
		}
	}
	return false
}

// --- Text-grid ---

type gridCell struct {
	run TextRun
}

type gridWindowData struct {
	height, width int
	cells         [][]gridCell
	changed       []bool
	cursorX, cursorY int
	currentStyle  Style
	currentHyperlink uint32
}

func newGridWindowData(height, width int) *gridWindowData {
	g := &gridWindowData{height: height, width: width}
	g.resize(height, width)
	return g
}

func (g *gridWindowData) resize(height, width int) {
	g.height, g.width = height, width
	g.cells = make([][]gridCell, height)
	g.changed = make([]bool, height)
	for y := range g.cells {
		g.cells[y] = make([]gridCell, width)
		for x := range g.cells[y] {
			g.cells[y][x] = gridCell{run: TextRun{Text: " ", Style: StyleNormal}}
		}
		g.changed[y] = true
	}
	g.cursorX, g.cursorY = 0, 0
}

func (g *gridWindowData) putString(text string, style Style) {
	for _, r := range text {
		if r == '\n' {
			g.cursorX = 0
			g.cursorY++
			continue
		}
		if g.cursorY >= g.height {
			return
		}
		if g.cursorX >= g.width {
			g.cursorX = 0
			g.cursorY++
			if g.cursorY >= g.height {
				return
			}
		}
		g.cells[g.cursorY][g.cursorX] = gridCell{run: TextRun{Text: string(r), Style: style, Hyperlink: g.currentHyperlink}}
		g.changed[g.cursorY] = true
		g.cursorX++
	}
}

func (g *gridWindowData) setStyle(s Style)       { g.currentStyle = s }
func (g *gridWindowData) setHyperlink(id uint32) { g.currentHyperlink = id }
func (g *gridWindowData) setCSS(string, string, bool) {}
func (g *gridWindowData) setColours(uint32, uint32)   {}

func (g *gridWindowData) clear() (string, bool) {
	for y := range g.cells {
		for x := range g.cells[y] {
			g.cells[y][x] = gridCell{run: TextRun{Text: " ", Style: g.currentStyle}}
		}
		g.changed[y] = true
	}
	g.cursorX, g.cursorY = 0, 0
	return "", false
}

func (g *gridWindowData) hasContent() bool {
	for _, c := range g.changed {
		if c {
			return true
		}
	}
	return false
}

// --- Graphics ---

type graphicsWindowData struct {
	height, width float64
	draw          []GraphicsOp
	setColorOps   []GraphicsOp
}

func (gr *graphicsWindowData) putString(string, Style)       {}
func (gr *graphicsWindowData) setHyperlink(uint32)            {}
func (gr *graphicsWindowData) setCSS(string, string, bool)    {}
func (gr *graphicsWindowData) setStyle(Style)                 {}

func (gr *graphicsWindowData) setColours(fg, bg uint32) {}

func (gr *graphicsWindowData) setBackgroundColor(color string) {
	op := GraphicsOp{Special: "setcolor", Color: color}
	gr.setColorOps = append(gr.setColorOps, op)
	gr.draw = append(gr.draw, op)
}

func (gr *graphicsWindowData) fillRect(color string, x, y, w, h float64) {
	gr.draw = append(gr.draw, GraphicsOp{Special: "fill", Color: color, X: x, Y: y, Width: w, Height: h})
}

func (gr *graphicsWindowData) clear() (string, bool) {
	newList := make([]GraphicsOp, 0, len(gr.setColorOps)+1)
	for i := len(gr.setColorOps) - 1; i >= 0; i-- {
		newList = append(newList, gr.setColorOps[i])
	}
	newList = append(newList, GraphicsOp{Special: "fill"})
	gr.draw = newList
	return "", false
}

func (gr *graphicsWindowData) hasContent() bool { return len(gr.draw) > 0 }

func (gr *graphicsWindowData) drain() []GraphicsOp {
	d := gr.draw
	gr.draw = nil
	return d
}
