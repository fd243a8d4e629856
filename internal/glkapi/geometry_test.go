package glkapi

import "testing"

// TestRearrangeVerticalFixedSplit exercises §4.3's key-window fixed-size
// split, above/below direction, with the split window taking the
// remainder.
func TestRearrangeVerticalFixedSplit(t *testing.T) {
	g := newTestApi(newFakeHost())
	first, _ := g.OpenWindow(0, 0, 0, WintypeBuffer, 0)
	second, err := g.OpenWindow(first.ID(), WinMethodAbove|WinMethodFixed, 5, WintypeGrid, 0)
	if err != nil {
		t.Fatalf("OpenWindow: %v", err)
	}

	// OpenWindow's key window is the window being split (first), not the
	// new one, so the fixed size of 5 is measured in the split window's
	// own units even though the new leaf (second) ends up in the "above" box.
	wantHeight := 5*g.metrics.BufferCharHeight + g.metrics.BufferMarginTop + g.metrics.BufferMarginBottom
	if second.box.Height() != wantHeight {
		t.Fatalf("new window height = %v, want %v", second.box.Height(), wantHeight)
	}
	if second.box.Top != 0 {
		t.Fatalf("new window (above) top = %v, want 0", second.box.Top)
	}
	if first.box.Top != second.box.Bottom {
		t.Fatalf("split window top %v does not abut new window bottom %v", first.box.Top, second.box.Bottom)
	}
	if first.box.Bottom != g.metrics.Height {
		t.Fatalf("sibling bottom = %v, want full height %v", first.box.Bottom, g.metrics.Height)
	}
}

// TestRearrangeVerticalFixedSplitBelow mirrors spec.md's S1 scenario: a
// non-backward direction (Below), where the new window must get the far
// (bottom) box and the split window keeps the near (top) box. This is the
// direction TestRearrangeVerticalFixedSplit's Above case cannot catch, since
// Above is backward and Below is not.
func TestRearrangeVerticalFixedSplitBelow(t *testing.T) {
	g := newTestApi(newFakeHost())
	buf, _ := g.OpenWindow(0, 0, 0, WintypeBuffer, 0)
	grid, err := g.OpenWindow(buf.ID(), WinMethodBelow|WinMethodFixed, 5, WintypeGrid, 0)
	if err != nil {
		t.Fatalf("OpenWindow: %v", err)
	}

	wantGridHeight := 5*g.metrics.BufferCharHeight + g.metrics.BufferMarginTop + g.metrics.BufferMarginBottom
	if grid.box.Height() != wantGridHeight {
		t.Fatalf("grid (new, below) height = %v, want %v", grid.box.Height(), wantGridHeight)
	}
	if buf.box.Top != 0 {
		t.Fatalf("buffer (split window) top = %v, want 0", buf.box.Top)
	}
	if buf.box.Bottom != grid.box.Top {
		t.Fatalf("buffer bottom %v does not abut grid top %v", buf.box.Bottom, grid.box.Top)
	}
	if grid.box.Bottom != g.metrics.Height {
		t.Fatalf("grid bottom = %v, want full height %v", grid.box.Bottom, g.metrics.Height)
	}
	if buf.box.Height() != g.metrics.Height-wantGridHeight {
		t.Fatalf("buffer height = %v, want %v", buf.box.Height(), g.metrics.Height-wantGridHeight)
	}
}

// TestRearrangeHorizontalFixedSplitRight is TestRearrangeVerticalFixedSplitBelow's
// horizontal counterpart: Right is the non-backward horizontal direction.
func TestRearrangeHorizontalFixedSplitRight(t *testing.T) {
	g := newTestApi(newFakeHost())
	first, _ := g.OpenWindow(0, 0, 0, WintypeBuffer, 0)
	second, err := g.OpenWindow(first.ID(), WinMethodRight|WinMethodFixed, 10, WintypeBuffer, 0)
	if err != nil {
		t.Fatalf("OpenWindow: %v", err)
	}

	wantWidth := 10*g.metrics.BufferCharWidth + g.metrics.BufferMarginLeft + g.metrics.BufferMarginRight
	if second.box.Width() != wantWidth {
		t.Fatalf("new (right) window width = %v, want %v", second.box.Width(), wantWidth)
	}
	if first.box.Left != 0 {
		t.Fatalf("split window left = %v, want 0", first.box.Left)
	}
	if first.box.Right != second.box.Left {
		t.Fatalf("split window right %v does not abut new window left %v", first.box.Right, second.box.Left)
	}
	if second.box.Right != g.metrics.Width {
		t.Fatalf("new window right = %v, want full width %v", second.box.Right, g.metrics.Width)
	}
}

// TestRearrangeProportionalSplit exercises a percentage-of-span split with
// no key window constraint.
func TestRearrangeProportionalSplit(t *testing.T) {
	g := newTestApi(newFakeHost())
	first, _ := g.OpenWindow(0, 0, 0, WintypeBuffer, 0)
	second, err := g.OpenWindow(first.ID(), WinMethodLeft|WinMethodProportional, 25, WintypeBuffer, 0)
	if err != nil {
		t.Fatalf("OpenWindow: %v", err)
	}

	wantWidth := float64(int(25 * g.metrics.Width / 100))
	if second.box.Width() != wantWidth {
		t.Fatalf("proportional new window width = %v, want %v", second.box.Width(), wantWidth)
	}
	if first.box.Width()+second.box.Width() != g.metrics.Width {
		t.Fatalf("split widths %v + %v do not sum to total %v", first.box.Width(), second.box.Width(), g.metrics.Width)
	}
}

// TestRearrangeClampsOversizedSplit covers the split-size clamp: a fixed
// size larger than the available span is clipped to the remaining span.
func TestRearrangeClampsOversizedSplit(t *testing.T) {
	g := newTestApi(newFakeHost())
	first, _ := g.OpenWindow(0, 0, 0, WintypeBuffer, 0)
	second, err := g.OpenWindow(first.ID(), WinMethodAbove|WinMethodFixed, 1000, WintypeGrid, 0)
	if err != nil {
		t.Fatalf("OpenWindow: %v", err)
	}
	if second.box.Height() > g.metrics.Height {
		t.Fatalf("new window height %v exceeds total extent %v", second.box.Height(), g.metrics.Height)
	}
	if first.box.Height() < 0 {
		t.Fatalf("sibling height went negative: %v", first.box.Height())
	}
}

// TestArrangeEventRelayoutsRoot covers the "arrange" inbound event path:
// new metrics trigger a full re-layout from the root.
func TestArrangeEventRelayoutsRoot(t *testing.T) {
	h := newFakeHost()
	g := newTestApi(h)
	win, _ := g.OpenWindow(0, 0, 0, WintypeGrid, 0)

	h.pushEvent(&InboundEvent{
		Gen: g.gen, Type: "arrange",
		Metrics: &Metrics{Width: 400, Height: 300},
	})
	ev, err := g.Select()
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if ev.Type != EvtypeArrange {
		t.Fatalf("event type = %v, want EvtypeArrange", ev.Type)
	}
	if win.box.Width() != 400 || win.box.Height() != 300 {
		t.Fatalf("root window box = %+v after arrange, want 400x300", win.box)
	}
}

// TestGraphicsKeyWindowSplitSize covers keyUnitSize's graphics-window
// branch: size is in pixels plus margin, with no char-width multiplier.
// The key window is whichever window is split, so the root itself is
// opened as a graphics window and then split by a new buffer window.
func TestGraphicsKeyWindowSplitSize(t *testing.T) {
	g := newTestApi(newFakeHost())
	first, _ := g.OpenWindow(0, 0, 0, WintypeGraphics, 0)
	second, err := g.OpenWindow(first.ID(), WinMethodLeft|WinMethodFixed, 50, WintypeBuffer, 0)
	if err != nil {
		t.Fatalf("OpenWindow: %v", err)
	}
	want := 50 + g.metrics.GraphicsMarginLeft + g.metrics.GraphicsMarginRight
	if second.box.Width() != want {
		t.Fatalf("new window width beside graphics key = %v, want %v", second.box.Width(), want)
	}
}
