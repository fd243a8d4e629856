package glkapi

import "testing"

// TestSelectSendsUpdateThenAwaitsEvent: a char request followed by Select
// round-trips through the host's channel pair and
// returns the Glk-visible event.
func TestSelectSendsUpdateThenAwaitsEvent(t *testing.T) {
	h := newFakeHost()
	g := newTestApi(h)
	win, _ := g.OpenWindow(0, 0, 0, WintypeBuffer, 0)
	if err := g.RequestCharEvent(win.ID(), false); err != nil {
		t.Fatalf("RequestCharEvent: %v", err)
	}

	h.pushEvent(&InboundEvent{Gen: g.gen, Type: "char", Window: win.ID(), Value: "x"})
	ev, err := g.Select()
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if ev.Type != EvtypeCharInput || ev.WinID != win.ID() || ev.Val1 != uint32('x') {
		t.Fatalf("event = %+v, want char 'x' on window %d", ev, win.ID())
	}
	if len(h.updates) != 1 {
		t.Fatalf("host received %d updates, want 1", len(h.updates))
	}
}

// TestWrongGenerationIsRejected is Testable Property 8: a non-init event
// whose Gen doesn't match the runtime's current generation is rejected.
func TestWrongGenerationIsRejected(t *testing.T) {
	h := newFakeHost()
	g := newTestApi(h)
	win, _ := g.OpenWindow(0, 0, 0, WintypeBuffer, 0)
	_ = g.RequestCharEvent(win.ID(), false)

	h.pushEvent(&InboundEvent{Gen: g.gen + 99, Type: "char", Window: win.ID(), Value: "x"})
	_, err := g.Select()
	if err != ErrWrongGeneration {
		t.Fatalf("err = %v, want ErrWrongGeneration", err)
	}
}

// TestInitEventBypassesGenerationCheck: the very first "init" event is
// exempt from the generation check since no generation has been issued yet.
func TestInitEventBypassesGenerationCheck(t *testing.T) {
	h := newFakeHost()
	g := newTestApi(h)
	h.pushEvent(&InboundEvent{Gen: 12345, Type: "init", Metrics: &Metrics{Width: 100, Height: 50}})
	if _, err := g.Select(); err != nil {
		t.Fatalf("Select with init event: %v", err)
	}
	if g.metrics.Width != 100 || g.metrics.Height != 50 {
		t.Fatalf("metrics not applied from init event: %+v", g.metrics)
	}
}

// TestSelectWithNoEventTreatsAsExit covers §4.5: a host with no event ready
// to deliver is treated as exit.
func TestSelectWithNoEventTreatsAsExit(t *testing.T) {
	h := newFakeHost()
	g := newTestApi(h)
	ev, err := g.Select()
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if ev.Type != EvtypeNone {
		t.Fatalf("event = %+v, want zero-value event on exit", ev)
	}
	if !g.exited {
		t.Fatalf("g.exited = false, want true after an empty host response")
	}
}

// TestLineEventEchoesAndFillsBuffer is Scenario S2: requesting line input,
// delivering a line event, and checking both the echoed window content and
// the caller-owned buffer contents.
func TestLineEventEchoesAndFillsBuffer(t *testing.T) {
	h := newFakeHost()
	g := newTestApi(h)
	win, _ := g.OpenWindow(0, 0, 0, WintypeBuffer, 0)
	buf := NewU32Buffer(16)
	if err := g.RequestLineEvent(win.ID(), buf, ""); err != nil {
		t.Fatalf("RequestLineEvent: %v", err)
	}

	h.pushEvent(&InboundEvent{Gen: g.gen, Type: "line", Window: win.ID(), Value: "look"})
	ev, err := g.Select()
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if ev.Type != EvtypeLineInput || ev.Val1 != 4 {
		t.Fatalf("event = %+v, want line input of length 4", ev)
	}
	if buf.String(4) != "look" {
		t.Fatalf("buffer contents = %q, want \"look\"", buf.String(4))
	}
	if got := win.buffer().paragraphs[0].Content[0].Text; got.Text != "look" || got.Style != StyleInput {
		t.Fatalf("echoed run = %+v, want \"look\" in StyleInput", *got)
	}
	if win.input.lineInput {
		t.Fatalf("lineInput still pending after the event resolved")
	}
}

// TestLineEventOnUnrequestedWindowIsIgnored covers the "stale line event"
// edge case: a line event for a window with no pending line request
// produces a zero-value event rather than an error.
func TestLineEventOnUnrequestedWindowIsIgnored(t *testing.T) {
	h := newFakeHost()
	g := newTestApi(h)
	win, _ := g.OpenWindow(0, 0, 0, WintypeBuffer, 0)

	h.pushEvent(&InboundEvent{Gen: g.gen, Type: "line", Window: win.ID(), Value: "ignored"})
	ev, err := g.Select()
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if ev.Type != EvtypeNone {
		t.Fatalf("event = %+v, want zero-value event for an unrequested line", ev)
	}
}

// TestCancelLineEventReturnsPartialCarryover covers §5's partial-input
// carryover path: absorbPartial reinjects in-progress text so a subsequent
// cancel sees the right length.
func TestCancelLineEventReturnsPartialCarryover(t *testing.T) {
	g := newTestApi(newFakeHost())
	win, _ := g.OpenWindow(0, 0, 0, WintypeBuffer, 0)
	buf := NewU32Buffer(16)
	_ = g.RequestLineEvent(win.ID(), buf, "")

	g.mu.Lock()
	g.absorbPartial(map[string]string{"1": "partial"})
	g.mu.Unlock()

	ev := g.CancelLineEvent(win.ID())
	if ev.Type != EvtypeLineInput {
		t.Fatalf("CancelLineEvent type = %v, want EvtypeLineInput", ev.Type)
	}
	if ev.Val1 != 7 {
		t.Fatalf("CancelLineEvent length = %d, want 7 (len of \"partial\")", ev.Val1)
	}
}

func TestRequestCharEventRejectsConflictingPendingRequest(t *testing.T) {
	g := newTestApi(newFakeHost())
	win, _ := g.OpenWindow(0, 0, 0, WintypeBuffer, 0)
	buf := NewU32Buffer(16)
	_ = g.RequestLineEvent(win.ID(), buf, "")

	if err := g.RequestCharEvent(win.ID(), false); err != ErrPendingKeyboardRequest {
		t.Fatalf("err = %v, want ErrPendingKeyboardRequest", err)
	}
}

func TestRequestCharEventIsIdempotentForSameWidth(t *testing.T) {
	g := newTestApi(newFakeHost())
	win, _ := g.OpenWindow(0, 0, 0, WintypeBuffer, 0)
	if err := g.RequestCharEvent(win.ID(), true); err != nil {
		t.Fatalf("first RequestCharEvent: %v", err)
	}
	if err := g.RequestCharEvent(win.ID(), true); err != nil {
		t.Fatalf("second identical RequestCharEvent should be idempotent: %v", err)
	}
	if err := g.RequestCharEvent(win.ID(), false); err != ErrPendingKeyboardRequest {
		t.Fatalf("conflicting width request: err = %v, want ErrPendingKeyboardRequest", err)
	}
}

// TestUnknownEventTypeIsRejected exercises handleEvent's default case.
func TestUnknownEventTypeIsRejected(t *testing.T) {
	h := newFakeHost()
	g := newTestApi(h)
	h.pushEvent(&InboundEvent{Gen: g.gen, Type: "not-a-real-event"})
	_, err := g.Select()
	if err != ErrEventNotSupported {
		t.Fatalf("err = %v, want ErrEventNotSupported", err)
	}
}

// TestSpecialResponseResolvesFilerefPrompt: a fileref prompt suspends
// Select, and a specialresponse event resolves it with a path.
func TestSpecialResponseResolvesFilerefPrompt(t *testing.T) {
	h := newFakeHost()
	g := newTestApi(h)
	h.pushEvent(&InboundEvent{Gen: 0, Type: "specialresponse", Response: "fileref_prompt", Value2: []byte(`"mysave.glksave"`)})

	fr, err := g.CreateFilerefByPrompt(FileUsageSavedGame, FileModeWrite, 0)
	if err != nil {
		t.Fatalf("CreateFilerefByPrompt: %v", err)
	}
	if fr == nil {
		t.Fatalf("fr = nil, want a resolved fileref")
	}
	if fr.Path == "" {
		t.Fatalf("fr.Path is empty")
	}
}
