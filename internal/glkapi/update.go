package glkapi

import "encoding/json"

// buildUpdate assembles the outbound state Update from accumulated
// window/schannel/timer/special state, per §4.5's ordered build steps.
func (g *GlkApi) buildUpdate() *Update {
	g.mu.Lock()
	defer g.mu.Unlock()

	update := &Update{Type: "update", Gen: g.gen}

	g.walkLeaves(func(win *Window) {
		if content, ok := g.windowContent(win); ok {
			update.Content = append(update.Content, content)
		}
		if input, ok := g.windowInput(win); ok {
			update.Input = append(update.Input, input)
		}
	})

	if g.windowsChanged {
		g.walkLeavesAndPairs(func(win *Window) {
			update.Windows = append(update.Windows, g.windowFrame(win))
		})
		g.windowsChanged = false
	}

	if g.pageMarginBG != g.lastTransmittedMarginBG && g.pageMarginSource != marginSourceNone {
		update.PageMarginBG = g.pageMarginBG
		g.lastTransmittedMarginBG = g.pageMarginBG
	}

	if g.schannelsChanged {
		var sc *Schannel
		ok := false
		for {
			sc, ok = g.schannels.Iterate(sc, ok)
			if !ok {
				break
			}
			ops := sc.drain()
			update.Schannels = append(update.Schannels, SchannelUpdate{ID: sc.ID(), Ops: marshalSoundOps(ops)})
		}
		g.schannelsChanged = false
	}

	if g.specialInput != nil {
		update.SpecialInput = g.specialInput
		g.specialInput = nil
	}

	if g.timerIntervalMS != g.lastTransmittedTimerMS {
		v := g.timerIntervalMS
		update.Timer = &v
		g.lastTransmittedTimerMS = g.timerIntervalMS
	}

	var str *Stream
	streamOK := false
	for {
		str, streamOK = g.streams.Iterate(str, streamOK)
		if !streamOK {
			break
		}
		if fs, ok := str.data.(*fileStream); ok {
			g.flushFileStream(fs)
		}
	}

	if g.exited {
		update.Disable = true
	}

	return update
}

func marshalSoundOps(ops []SoundOp) []json.RawMessage {
	out := make([]json.RawMessage, 0, len(ops))
	for _, op := range ops {
		raw, _ := json.Marshal(soundOpWire(op))
		out = append(out, raw)
	}
	return out
}

// soundOpWire maps a SoundOp onto its GlkOte wire shape (§6: "Sound-channel
// operations are {op: ...}").
func soundOpWire(op SoundOp) map[string]any {
	m := map[string]any{"op": op.Op}
	switch op.Op {
	case "play":
		m["snd"] = op.Snd
		m["repeats"] = op.Repeats
		m["notify"] = op.Notify
	case "volume":
		m["volume"] = op.Volume
		m["duration"] = op.Duration
		m["notify"] = op.Notify
	}
	return m
}

// walkLeaves visits every window that carries its own content (skipping
// blank and pair, per §4.5 step 1), in registry iteration order.
func (g *GlkApi) walkLeaves(fn func(*Window)) {
	var cur *Window
	ok := false
	for {
		cur, ok = g.windows.Iterate(cur, ok)
		if !ok {
			return
		}
		if cur.WinType == WintypeBlank || cur.WinType == WintypePair {
			continue
		}
		fn(cur)
	}
}

// walkLeavesAndPairs visits every window including pairs, used for the
// size-frame list which must describe the whole tree.
func (g *GlkApi) walkLeavesAndPairs(fn func(*Window)) {
	var cur *Window
	ok := false
	for {
		cur, ok = g.windows.Iterate(cur, ok)
		if !ok {
			return
		}
		fn(cur)
	}
}

func wintypeName(t WinType) string {
	switch t {
	case WintypeBuffer:
		return "buffer"
	case WintypeGrid:
		return "grid"
	case WintypeGraphics:
		return "graphics"
	case WintypePair:
		return "pair"
	default:
		return "blank"
	}
}

func (g *GlkApi) windowFrame(win *Window) WindowUpdate {
	wu := WindowUpdate{
		ID: win.ID(), Type: wintypeName(win.WinType), Rock: win.Rock(),
		Left: win.box.Left, Top: win.box.Top,
		Width: win.box.Width(), Height: win.box.Height(),
	}
	if win.WinType == WintypeGrid {
		if gw := win.grid(); gw != nil {
			wu.GridHeight, wu.GridWidth = gw.height, gw.width
		}
	}
	if win.WinType == WintypeGraphics {
		wu.GraphHeight, wu.GraphWidth = win.box.Height(), win.box.Width()
	}
	if win.firstUpdate && (win.WinType == WintypeBuffer || win.WinType == WintypeGrid) {
		wu.Styles = g.stylehintsSnapshot(win.WinType)
		win.firstUpdate = false
	}
	return wu
}

// stylehintsSnapshot serializes the CSS rule table for one wintype, sent
// at most once per window's lifetime (Testable Property 9).
func (g *GlkApi) stylehintsSnapshot(wintype WinType) json.RawMessage {
	out := make(map[string]map[string]string)
	for key, value := range g.stylehints {
		if key.wintype != wintype {
			continue
		}
		sel := ".Style_" + key.style.String()
		if out[sel] == nil {
			out[sel] = make(map[string]string)
		}
		out[sel][key.hint] = value
	}
	if len(out) == 0 {
		return nil
	}
	raw, _ := json.Marshal(out)
	return raw
}

// windowContent emits a leaf window's content diff, per §4.2's per-cycle
// update emission rules, and resets its accumulated content afterward.
func (g *GlkApi) windowContent(win *Window) (ContentUpdate, bool) {
	switch win.WinType {
	case WintypeBuffer:
		return g.bufferContent(win)
	case WintypeGrid:
		return g.gridContent(win)
	case WintypeGraphics:
		return g.graphicsContent(win)
	default:
		return ContentUpdate{}, false
	}
}

func (g *GlkApi) bufferContent(win *Window) (ContentUpdate, bool) {
	b := win.buffer()
	cleanParagraphs(b)
	if !b.hasContent() {
		return ContentUpdate{}, false
	}
	// reset to a single empty run inheriting the tail style (§4.2 step 5)
	tail := *b.tailRun()
	tail.Text = ""
	// the trailing empty run only carries the current style; it is not emitted
	last := &b.paragraphs[len(b.paragraphs)-1]
	if n := len(last.Content); n > 0 && last.Content[n-1].Text != nil && last.Content[n-1].Text.Text == "" {
		last.Content = last.Content[:n-1]
	}
	cu := ContentUpdate{ID: win.ID(), Text: b.paragraphs}
	if b.cleared {
		cu.Clear = true
		cu.BG = b.clearedBG
		cu.FG = b.clearedFG
	}
	b.paragraphs = []Paragraph{{Content: []LineDatum{{Text: &tail}}}}
	b.cleared = false
	return cu, true
}

// cleanParagraphs drops empty text-runs and empty css maps before
// emission (§4.2 step 3 / Testable Property 10), except the sole trailing
// empty run that carries the "current style" forward — that run stays in
// b.paragraphs so tailRun keeps working, and bufferContent leaves it out
// of the emitted content; paragraphs with zero remaining content entries
// are still emitted (they may be the cleared/empty case).
func cleanParagraphs(b *bufferWindowData) {
	cleaned := make([]Paragraph, 0, len(b.paragraphs))
	for pi, p := range b.paragraphs {
		isLast := pi == len(b.paragraphs)-1
		content := make([]LineDatum, 0, len(p.Content))
		for ri, ld := range p.Content {
			isLastRun := isLast && ri == len(p.Content)-1
			if ld.Text != nil {
				if ld.Text.Text == "" && !isLastRun {
					continue
				}
				if ld.Text.CSSStyles != nil && len(ld.Text.CSSStyles) == 0 {
					ld.Text.CSSStyles = nil
				}
			}
			content = append(content, ld)
		}
		p.Content = content
		cleaned = append(cleaned, p)
	}
	b.paragraphs = cleaned
}

func (g *GlkApi) gridContent(win *Window) (ContentUpdate, bool) {
	gr := win.grid()
	if !gr.hasContent() {
		return ContentUpdate{}, false
	}
	var lines []GridLine
	for y, changed := range gr.changed {
		if !changed {
			continue
		}
		row := make([]TextRun, len(gr.cells[y]))
		for x, c := range gr.cells[y] {
			row[x] = c.run
		}
		lines = append(lines, GridLine{Line: uint32(y), Content: row})
		gr.changed[y] = false
	}
	return ContentUpdate{ID: win.ID(), Lines: lines}, true
}

func (g *GlkApi) graphicsContent(win *Window) (ContentUpdate, bool) {
	gr := win.graphics()
	if !gr.hasContent() {
		return ContentUpdate{}, false
	}
	return ContentUpdate{ID: win.ID(), Draw: gr.drain()}, true
}

// windowInput emits a leaf window's active-input record, per §6's Input
// records shape and §4.2 step 6 (xpos/ypos for grid line input).
func (g *GlkApi) windowInput(win *Window) (InputUpdate, bool) {
	in := win.input
	if !in.charInput && !in.lineInput && !in.hyperlink && !in.mouse {
		return InputUpdate{}, false
	}
	iu := InputUpdate{ID: win.ID(), Hyperlink: in.hyperlink, Mouse: in.mouse}
	switch {
	case in.charInput:
		iu.Type = "char"
	case in.lineInput:
		iu.Type = "line"
		if in.lineBuf != nil {
			iu.MaxLen = in.lineBuf.Len()
		}
		if win.WinType == WintypeGrid {
			g := win.grid()
			x, y := g.cursorX, g.cursorY
			if x >= g.width {
				x = max(g.width-1, 0)
			}
			if y >= g.height {
				y = max(g.height-1, 0)
			}
			iu.XPos, iu.YPos = &x, &y
		}
	}
	return iu, true
}
