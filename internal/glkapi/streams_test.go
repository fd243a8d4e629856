package glkapi

import "testing"

func TestMemoryStreamWriteAndRead(t *testing.T) {
	g := newTestApi(newFakeHost())
	buf := NewU32Buffer(16)
	str := g.CreateMemoryStream(buf, FileModeReadWrite, 0)

	if err := str.PutString("hi", StyleNormal, false); err != nil {
		t.Fatalf("PutString: %v", err)
	}
	str.SetPosition(SeekStart, 0)

	out := NewU32Buffer(2)
	n, err := str.GetBuffer(out)
	if err != nil {
		t.Fatalf("GetBuffer: %v", err)
	}
	if n != 2 || out.String(n) != "hi" {
		t.Fatalf("read back %q (n=%d), want \"hi\" (n=2)", out.String(n), n)
	}
}

func TestMemoryStreamWriteOnlyRejectsRead(t *testing.T) {
	g := newTestApi(newFakeHost())
	buf := NewU32Buffer(4)
	str := g.CreateMemoryStream(buf, FileModeWrite, 0)

	if _, err := str.GetChar(true); err != ErrReadFromWriteOnly {
		t.Fatalf("GetChar on write-only stream: err = %v, want ErrReadFromWriteOnly", err)
	}
}

func TestMemoryStreamReadOnlyRejectsWrite(t *testing.T) {
	g := newTestApi(newFakeHost())
	buf := &Buffer{U32: stringToU32("abc")}
	str := g.CreateMemoryStream(buf, FileModeRead, 0)

	if err := str.PutChar('z'); err != ErrWriteToReadOnly {
		t.Fatalf("PutChar on read-only stream: err = %v, want ErrWriteToReadOnly", err)
	}
}

func TestMemoryStreamNilBufferIsNullStream(t *testing.T) {
	g := newTestApi(newFakeHost())
	str := g.CreateMemoryStream(nil, FileModeWrite, 0)
	if str.kind != streamNull {
		t.Fatalf("kind = %v, want streamNull", str.kind)
	}
	if err := str.PutString("discarded", StyleNormal, false); err != nil {
		t.Fatalf("PutString on null stream: %v", err)
	}
	counts := str.Close()
	if counts.WriteCount != uint32(len([]rune("discarded"))) {
		t.Fatalf("WriteCount = %d, want %d", counts.WriteCount, len([]rune("discarded")))
	}
}

func TestMemoryStreamGetLineStopsAtNewline(t *testing.T) {
	g := newTestApi(newFakeHost())
	buf := &Buffer{U32: stringToU32("ab\ncd")}
	str := g.CreateMemoryStream(buf, FileModeRead, 0)

	dst := NewU32Buffer(10)
	n, err := str.GetLine(dst)
	if err != nil {
		t.Fatalf("GetLine: %v", err)
	}
	if dst.String(n) != "ab\n" {
		t.Fatalf("GetLine = %q, want \"ab\\n\"", dst.String(n))
	}
}

func TestFileStreamGrowsPastInitialBuffer(t *testing.T) {
	g := newTestApi(newFakeHost())
	fr := g.CreateTempFileref(FileUsageData, 0)
	str, err := g.CreateFileStream(fr, FileModeReadWrite, true, 0)
	if err != nil {
		t.Fatalf("CreateFileStream: %v", err)
	}

	long := ""
	for i := 0; i < 200; i++ {
		long += "x"
	}
	if err := str.PutString(long, StyleNormal, false); err != nil {
		t.Fatalf("PutString: %v", err)
	}
	str.SetPosition(SeekStart, 0)
	out := NewU32Buffer(200)
	n, err := str.GetBuffer(out)
	if err != nil {
		t.Fatalf("GetBuffer: %v", err)
	}
	if n != 200 {
		t.Fatalf("read back %d chars, want 200", n)
	}
}

func TestFileStreamFlushesToHostOnClose(t *testing.T) {
	h := newFakeHost()
	g := newTestApi(h)
	fr := g.CreateTempFileref(FileUsageData, 0)
	str, err := g.CreateFileStream(fr, FileModeWrite, false, 0)
	if err != nil {
		t.Fatalf("CreateFileStream: %v", err)
	}
	_ = str.PutString("saved", StyleNormal, false)

	if _, err := g.CloseStream(str.ID()); err != nil {
		t.Fatalf("CloseStream: %v", err)
	}

	data, ok := h.files[fr.Path]
	if !ok {
		t.Fatalf("host never received a write for %s", fr.Path)
	}
	if string(data) != "saved" {
		t.Fatalf("flushed data = %q, want \"saved\"", string(data))
	}
}

func TestCloseWindowStreamDirectlyIsForbidden(t *testing.T) {
	g := newTestApi(newFakeHost())
	win, _ := g.OpenWindow(0, 0, 0, WintypeBuffer, 0)

	_, err := g.CloseStream(win.StreamID)
	if err != ErrCannotCloseWindowStream {
		t.Fatalf("err = %v, want ErrCannotCloseWindowStream", err)
	}
}

func TestPutStringToWindowForwardsToEchoStream(t *testing.T) {
	g := newTestApi(newFakeHost())
	win, _ := g.OpenWindow(0, 0, 0, WintypeBuffer, 0)
	echoBuf := NewU32Buffer(64)
	echo := g.CreateMemoryStream(echoBuf, FileModeWrite, 0)

	if err := g.SetEchoStream(win.ID(), echo.ID(), true); err != nil {
		t.Fatalf("SetEchoStream: %v", err)
	}
	if err := g.PutStringToWindow(win.ID(), "hello", StyleNormal, false); err != nil {
		t.Fatalf("PutStringToWindow: %v", err)
	}

	if got := echoBuf.String(echo.GetPosition()); got != "hello" {
		t.Fatalf("echo stream got %q, want \"hello\"", got)
	}
}

func TestPutStringToWindowRejectsDuringPendingLineInput(t *testing.T) {
	g := newTestApi(newFakeHost())
	win, _ := g.OpenWindow(0, 0, 0, WintypeBuffer, 0)
	buf := NewU32Buffer(16)
	if err := g.RequestLineEvent(win.ID(), buf, ""); err != nil {
		t.Fatalf("RequestLineEvent: %v", err)
	}

	err := g.PutStringToWindow(win.ID(), "typed while waiting", StyleNormal, false)
	if err != ErrPendingLineInput {
		t.Fatalf("err = %v, want ErrPendingLineInput", err)
	}
}

func TestWindowStreamGetBufferReadsNothing(t *testing.T) {
	g := newTestApi(newFakeHost())
	win, _ := g.OpenWindow(0, 0, 0, WintypeBuffer, 0)
	str, _ := g.streams.GetByID(win.StreamID)

	dst := NewU32Buffer(16)
	n, err := str.GetBuffer(dst)
	if err != nil {
		t.Fatalf("GetBuffer on window stream: %v", err)
	}
	if n != 0 {
		t.Fatalf("GetBuffer on window stream = %d, want 0 (not -1)", n)
	}
}

func TestStreamIterateReturnsMostRecentFirst(t *testing.T) {
	g := newTestApi(newFakeHost())
	s1 := g.CreateMemoryStream(NewU32Buffer(4), FileModeWrite, 0)
	s2 := g.CreateMemoryStream(NewU32Buffer(4), FileModeWrite, 0)

	got, ok := g.StreamIterate(nil, false)
	if !ok || got.ID() != s2.ID() {
		t.Fatalf("StreamIterate(nil, false) = %v, want most-recently-created stream %d", got, s2.ID())
	}
	_ = s1
}
