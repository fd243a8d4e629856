package glkapi

// --- Input requests ---

// RequestCharEvent implements glk_request_char_event(_uni). Requesting
// char input twice on the same window with the same width flag is
// idempotent; any other conflicting request is an error (§4.8).
func (g *GlkApi) RequestCharEvent(winID uint32, unicode bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	win, ok := g.windows.GetByID(winID)
	if !ok {
		return ErrInvalidReference
	}
	if win.WinType != WintypeBuffer && win.WinType != WintypeGrid {
		return ErrWindowNoCharInput
	}
	if win.input.lineInput {
		return ErrPendingKeyboardRequest
	}
	if win.input.charInput {
		if win.input.charUnicode == unicode {
			return nil
		}
		return ErrPendingKeyboardRequest
	}
	win.input.charInput = true
	win.input.charUnicode = unicode
	return nil
}

// CancelCharEvent implements glk_cancel_char_event.
func (g *GlkApi) CancelCharEvent(winID uint32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if win, ok := g.windows.GetByID(winID); ok {
		win.input.charInput = false
	}
}

// RequestLineEvent implements glk_request_line_event(_uni). buf is the
// caller-owned buffer the runtime retains across the next select() (§5).
func (g *GlkApi) RequestLineEvent(winID uint32, buf *Buffer, initial string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	win, ok := g.windows.GetByID(winID)
	if !ok {
		return ErrInvalidReference
	}
	if win.WinType != WintypeBuffer && win.WinType != WintypeGrid {
		return ErrWindowNoLineInput
	}
	if win.input.charInput {
		return ErrPendingKeyboardRequest
	}
	if win.input.lineInput {
		return ErrPendingKeyboardRequest
	}
	win.input.lineInput = true
	win.input.lineUnicode = buf.Wide()
	win.input.lineBuf = buf
	win.input.initialLen = len([]rune(initial))
	if g.retainCB != nil {
		win.input.hasGen = true
	}
	return nil
}

// CancelLineEvent implements glk_cancel_line_event. Per §5, this returns a
// line event whose length is that of the partial-input carryover last
// reinjected by absorbPartial, or of the request's initial text when none
// was; the text itself is not copied into the line buffer. With no line
// input pending it returns a zero-value event.
func (g *GlkApi) CancelLineEvent(winID uint32) Event {
	g.mu.Lock()
	defer g.mu.Unlock()
	win, ok := g.windows.GetByID(winID)
	if !ok || !win.input.lineInput {
		return Event{}
	}
	win.input.lineInput = false
	return Event{Type: EvtypeLineInput, WinID: winID, Val1: uint32(win.input.initialLen)}
}

// RequestMouseEvent implements glk_request_mouse_event.
func (g *GlkApi) RequestMouseEvent(winID uint32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if win, ok := g.windows.GetByID(winID); ok {
		win.input.mouse = true
	}
}

// CancelMouseEvent implements glk_cancel_mouse_event.
func (g *GlkApi) CancelMouseEvent(winID uint32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if win, ok := g.windows.GetByID(winID); ok {
		win.input.mouse = false
	}
}

// RequestHyperlinkEvent implements glk_request_hyperlink_event.
func (g *GlkApi) RequestHyperlinkEvent(winID uint32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if win, ok := g.windows.GetByID(winID); ok {
		win.input.hyperlink = true
	}
}

// CancelHyperlinkEvent implements glk_cancel_hyperlink_event.
func (g *GlkApi) CancelHyperlinkEvent(winID uint32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if win, ok := g.windows.GetByID(winID); ok {
		win.input.hyperlink = false
	}
}

// RequestTimerEvents implements glk_request_timer_events.
func (g *GlkApi) RequestTimerEvents(intervalMS int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.timerIntervalMS = intervalMS
}

// --- Select / event dispatch ---

// Select implements glk_select: build and send an update, then
// synchronously await and dispatch the next event (§5's only ordinary
// suspension point).
func (g *GlkApi) Select() (Event, error) {
	update := g.buildUpdate()
	if err := g.host.SendGlkoteUpdate(update); err != nil {
		return Event{}, err
	}
	if g.exited {
		return Event{}, nil
	}
	ev, ok := g.host.GetGlkoteEvent()
	if !ok {
		// §4.5: no event available is treated as exit.
		g.mu.Lock()
		g.exited = true
		g.mu.Unlock()
		return Event{}, nil
	}
	return g.handleEvent(ev)
}

// SelectPoll implements glk_select_poll: never blocks, only ever reports
// an expired timer.
func (g *GlkApi) SelectPoll() Event {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.timerIntervalMS <= 0 {
		return Event{}
	}
	now := g.host.GetNow()
	elapsed := now.UnixMilli() - g.timerStartedAt.UnixMilli()
	if elapsed >= int64(g.timerIntervalMS) {
		g.timerStartedAt = now
		return Event{Type: EvtypeTimer}
	}
	return Event{}
}

// handleEvent validates the generation, absorbs partial-input carryover,
// and dispatches by event kind, per §4.5.
func (g *GlkApi) handleEvent(ev *InboundEvent) (Event, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if ev.Type != "init" {
		if ev.Gen != g.gen {
			return Event{}, ErrWrongGeneration
		}
	}
	g.gen++

	g.absorbPartial(ev.Partial)

	switch ev.Type {
	case "init":
		if ev.Metrics != nil {
			norm, err := ev.Metrics.Normalize()
			if err != nil {
				return Event{}, err
			}
			g.metrics = *norm
		}
		return Event{}, nil

	case "arrange":
		if ev.Metrics != nil {
			norm, err := ev.Metrics.Normalize()
			if err != nil {
				return Event{}, err
			}
			g.metrics = *norm
		}
		if g.hasRoot {
			if err := g.rearrangeWindow(g.rootWindowID, Box{Right: g.metrics.Width, Bottom: g.metrics.Height}); err != nil {
				return Event{}, err
			}
		}
		return Event{Type: EvtypeArrange}, nil

	case "char":
		win, ok := g.windows.GetByID(ev.Window)
		if !ok || !win.input.charInput {
			return Event{}, nil
		}
		win.input.charInput = false
		code := decodeCharValue(ev.Value)
		if !win.input.charUnicode && code > maxLatin1 && code < KeycodeFunc12 {
			code = questionMark
		}
		return Event{Type: EvtypeCharInput, WinID: ev.Window, Val1: uint32(code)}, nil

	case "hyperlink":
		win, ok := g.windows.GetByID(ev.Window)
		if !ok || !win.input.hyperlink {
			return Event{}, nil
		}
		win.input.hyperlink = false
		return Event{Type: EvtypeHyperlink, WinID: ev.Window, Val1: uint32(atoiSafe(ev.Value))}, nil

	case "line":
		return g.handleLineEvent(ev)

	case "mouse":
		win, ok := g.windows.GetByID(ev.Window)
		if !ok || !win.input.mouse {
			return Event{}, nil
		}
		win.input.mouse = false
		x, y := 0, 0
		if ev.X != nil {
			x = *ev.X
		}
		if ev.Y != nil {
			y = *ev.Y
		}
		return Event{Type: EvtypeMouseInput, WinID: ev.Window, Val1: uint32(x), Val2: uint32(y)}, nil

	case "redraw":
		return Event{Type: EvtypeRedraw, WinID: ev.Window}, nil

	case "timer":
		g.timerStartedAt = g.host.GetNow()
		return Event{Type: EvtypeTimer}, nil

	case "volume":
		return Event{Type: EvtypeVolumeNotify, Val1: ev.Notify}, nil

	case "sound":
		return Event{Type: EvtypeSoundNotify, Val1: ev.Snd, Val2: ev.Notify}, nil

	case "specialresponse":
		g.specialInput = nil
		if filename, ok := ev.SpecialResponseFilename(); ok {
			g.lastSpecialResponse, g.hasLastSpecialResponse = filename, true
		} else {
			g.hasLastSpecialResponse = false
		}
		return Event{Type: EvtypeNone}, nil

	case "debug", "external", "refresh":
		return Event{}, nil

	default:
		return Event{}, ErrEventNotSupported
	}
}

func atoiSafe(s string) int64 {
	var n int64
	neg := false
	for i, r := range s {
		if i == 0 && r == '-' {
			neg = true
			continue
		}
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int64(r-'0')
	}
	if neg {
		return -n
	}
	return n
}

// absorbPartial records the length of any in-progress line-input text the
// host carried over on the inbound event, so a later cancel reports that
// length (§4.5 "Absorb any partial line-input carryover").
func (g *GlkApi) absorbPartial(partial map[string]string) {
	for winIDStr, text := range partial {
		winID := uint32(atoiSafe(winIDStr))
		win, ok := g.windows.GetByID(winID)
		if !ok || !win.input.lineInput {
			continue
		}
		win.input.initialLen = len([]rune(text))
	}
}

// handleLineEvent implements §4.5's Line dispatch: echo, copy into the
// retained buffer, release it, and emit the Glk-visible line event.
func (g *GlkApi) handleLineEvent(ev *InboundEvent) (Event, error) {
	win, ok := g.windows.GetByID(ev.Window)
	if !ok || !win.input.lineInput {
		return Event{}, nil
	}

	text := ev.Value
	runes := []rune(text)

	// Line input ends before the echo: a window stream refuses writes while
	// line input is pending.
	win.input.lineInput = false

	echoLine := true
	if echoLine {
		if str, ok := g.streams.GetByID(win.StreamID); ok {
			_ = g.putStringToStream(str, text+"\n", StyleInput, true)
		}
	}

	buf := win.input.lineBuf
	n := len(runes)
	if buf != nil {
		if n > buf.Len() {
			n = buf.Len()
		}
		for i := 0; i < n; i++ {
			buf.Set(i, uint32(runes[i]))
		}
		if g.unretainCB != nil {
			g.unretainCB(buf, ev.Window, nil)
		}
	}

	var terminator Keycode
	if ev.Terminator != "" {
		terminator = decodeCharValue(ev.Terminator)
	}

	win.input.lineBuf = nil

	return Event{Type: EvtypeLineInput, WinID: ev.Window, Val1: uint32(n), Val2: uint32(terminator)}, nil
}
