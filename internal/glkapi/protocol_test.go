package glkapi

import (
	"encoding/json"
	"testing"
)

func TestMetricsNormalizeCascadesMargins(t *testing.T) {
	margin := 4.0
	bufferMarginLeft := 10.0
	m := &Metrics{
		Width: 640, Height: 480,
		Margin:           &margin,
		BufferMarginLeft: &bufferMarginLeft,
	}
	n, err := m.Normalize()
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if n.GridMarginTop != margin {
		t.Fatalf("GridMarginTop = %v, want the generic margin %v to cascade down", n.GridMarginTop, margin)
	}
	if n.BufferMarginLeft != bufferMarginLeft {
		t.Fatalf("BufferMarginLeft = %v, want the explicit override %v", n.BufferMarginLeft, bufferMarginLeft)
	}
	if n.BufferMarginRight != margin {
		t.Fatalf("BufferMarginRight = %v, want the unoverridden generic margin %v", n.BufferMarginRight, margin)
	}
	if n.BufferCharWidth != 1 || n.GridCharWidth != 1 {
		t.Fatalf("default char widths = %v/%v, want 1/1 when unset", n.BufferCharWidth, n.GridCharWidth)
	}
}

func TestMetricsNormalizeRejectsNonZeroOutspacing(t *testing.T) {
	outx := 5.0
	m := &Metrics{Width: 100, Height: 100, OutspacingX: &outx}
	_, err := m.Normalize()
	if err != ErrOutspacingMustBeZero {
		t.Fatalf("err = %v, want ErrOutspacingMustBeZero", err)
	}
}

func TestMetricsNormalizeMostSpecificWins(t *testing.T) {
	generic := 2.0
	gridX := 6.0
	gridLeft := 9.0
	m := &Metrics{
		Width: 10, Height: 10,
		MarginX:        &generic,
		GridMarginX:    &gridX,
		GridMarginLeft: &gridLeft,
	}
	n, err := m.Normalize()
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if n.GridMarginLeft != gridLeft {
		t.Fatalf("GridMarginLeft = %v, want the most specific override %v", n.GridMarginLeft, gridLeft)
	}
	if n.GridMarginRight != gridX {
		t.Fatalf("GridMarginRight = %v, want the gridmarginx override %v (no explicit right)", n.GridMarginRight, gridX)
	}
	if n.BufferMarginLeft != generic {
		t.Fatalf("BufferMarginLeft = %v, want the marginx fallback %v", n.BufferMarginLeft, generic)
	}
}

func TestSpecialResponseFilenameDecodesBareString(t *testing.T) {
	ev := &InboundEvent{Value2: json.RawMessage(`"save1.glksave"`)}
	name, ok := ev.SpecialResponseFilename()
	if !ok || name != "save1.glksave" {
		t.Fatalf("SpecialResponseFilename() = %q, %v; want \"save1.glksave\", true", name, ok)
	}
}

func TestSpecialResponseFilenameDecodesObjectForm(t *testing.T) {
	ev := &InboundEvent{Value2: json.RawMessage(`{"filename":"save2.glksave"}`)}
	name, ok := ev.SpecialResponseFilename()
	if !ok || name != "save2.glksave" {
		t.Fatalf("SpecialResponseFilename() = %q, %v; want \"save2.glksave\", true", name, ok)
	}
}

func TestSpecialResponseFilenameAbsentValue(t *testing.T) {
	ev := &InboundEvent{}
	if _, ok := ev.SpecialResponseFilename(); ok {
		t.Fatalf("SpecialResponseFilename() on an empty event unexpectedly succeeded")
	}
}

func TestStyleMarshalsByName(t *testing.T) {
	raw, err := json.Marshal(StyleBlockQuote)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(raw) != `"blockquote"` {
		t.Fatalf("Style JSON = %s, want \"blockquote\"", raw)
	}
}

func TestLineDatumMarshalFlattensWhicheverIsSet(t *testing.T) {
	textDatum := LineDatum{Text: &TextRun{Text: "hi", Style: StyleNormal}}
	raw, err := json.Marshal(textDatum)
	if err != nil {
		t.Fatalf("Marshal text datum: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded["text"] != "hi" {
		t.Fatalf("decoded text datum = %v, want text=hi", decoded)
	}

	imgDatum := LineDatum{Image: &ImageRun{Special: "image", Image: 3, Width: 10, Height: 10}}
	raw, err = json.Marshal(imgDatum)
	if err != nil {
		t.Fatalf("Marshal image datum: %v", err)
	}
	decoded = nil
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded["special"] != "image" {
		t.Fatalf("decoded image datum = %v, want special=image", decoded)
	}
}

// TestBuildUpdateEmitsContentOnce covers §4.2 step 5: content is reset to
// an empty tail run after being picked up, so a second buildUpdate without
// new writes emits no content block for that window.
func TestBuildUpdateEmitsContentOnce(t *testing.T) {
	g := newTestApi(newFakeHost())
	win, _ := g.OpenWindow(0, 0, 0, WintypeBuffer, 0)
	_ = g.PutStringToWindow(win.ID(), "hello", StyleNormal, false)

	u1 := g.buildUpdate()
	found := false
	for _, c := range u1.Content {
		if c.ID == win.ID() {
			found = true
		}
	}
	if !found {
		t.Fatalf("first buildUpdate did not include the window's new content")
	}

	u2 := g.buildUpdate()
	for _, c := range u2.Content {
		if c.ID == win.ID() {
			t.Fatalf("second buildUpdate re-emitted content with no new writes: %+v", c)
		}
	}
}

// TestBuildUpdateSendsWindowFramesOnlyWhenChanged covers the "windows"
// block: it's only emitted after a layout change, and windowsChanged
// resets once consumed.
func TestBuildUpdateSendsWindowFramesOnlyWhenChanged(t *testing.T) {
	g := newTestApi(newFakeHost())
	g.OpenWindow(0, 0, 0, WintypeBuffer, 0)

	u1 := g.buildUpdate()
	if len(u1.Windows) == 0 {
		t.Fatalf("first buildUpdate after OpenWindow should include window frames")
	}
	u2 := g.buildUpdate()
	if len(u2.Windows) != 0 {
		t.Fatalf("second buildUpdate with no layout change unexpectedly included window frames: %+v", u2.Windows)
	}
}

// TestBuildUpdateSendsStylehintsOnceOnFirstUpdate is Testable Property 9.
func TestBuildUpdateSendsStylehintsOnceOnFirstUpdate(t *testing.T) {
	g := newTestApi(newFakeHost())
	g.StylehintSet(WintypeBuffer, StyleNormal, "BackColor", "#112233")
	win, _ := g.OpenWindow(0, 0, 0, WintypeBuffer, 0)
	_ = g.PutStringToWindow(win.ID(), "x", StyleNormal, false)

	u1 := g.buildUpdate()
	var frame *WindowUpdate
	for i := range u1.Windows {
		if u1.Windows[i].ID == win.ID() {
			frame = &u1.Windows[i]
		}
	}
	if frame == nil || frame.Styles == nil {
		t.Fatalf("first window frame should carry a stylehints snapshot")
	}

	_ = g.PutStringToWindow(win.ID(), "y", StyleNormal, false)
	g.windowsChanged = true
	u2 := g.buildUpdate()
	for i := range u2.Windows {
		if u2.Windows[i].ID == win.ID() && u2.Windows[i].Styles != nil {
			t.Fatalf("stylehints snapshot re-sent on a later update: %s", u2.Windows[i].Styles)
		}
	}
}

// TestBuildUpdateSetsDisableOnExit covers the final disable=true frame.
func TestBuildUpdateSetsDisableOnExit(t *testing.T) {
	g := newTestApi(newFakeHost())
	g.exited = true
	u := g.buildUpdate()
	if !u.Disable {
		t.Fatalf("Disable = false after exit, want true")
	}
}
