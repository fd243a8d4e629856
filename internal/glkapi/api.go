package glkapi

// This file is the public glue surface an interpreter (or a reference
// host/client such as cmd/remglk's internal/termui) drives the runtime
// through: registry lookups/iteration, per-window content mutators, sound
// channel operations, and fileref creation. The lower-level mechanics
// these wrap already live in state.go/windows.go/streams.go/filerefs.go/
// schannels.go; this file is where they become part of *GlkApi's exported
// method set, mirroring how remglk-rs's glkapi.rs re-exports GlkWindow/
// GlkStream/GlkFileRef/GlkSchannel operations off the single GlkApi value.

// --- Registry access ---

// Window resolves a window id to its object.
func (g *GlkApi) Window(id uint32) (*Window, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.windows.GetByID(id)
}

// WindowIterate implements glk_window_iterate.
func (g *GlkApi) WindowIterate(win *Window, valid bool) (*Window, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.windows.Iterate(win, valid)
}

// RootWindow returns the tree's root window, if one has been opened.
func (g *GlkApi) RootWindow() (*Window, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.hasRoot {
		return nil, false
	}
	return g.windows.GetByID(g.rootWindowID)
}

// Stream resolves a stream id to its object.
func (g *GlkApi) Stream(id uint32) (*Stream, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.streams.GetByID(id)
}

// StreamIterate implements glk_stream_iterate.
func (g *GlkApi) StreamIterate(str *Stream, valid bool) (*Stream, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.streams.Iterate(str, valid)
}

// WindowStream resolves a window's owned output stream.
func (g *GlkApi) WindowStream(winID uint32) (*Stream, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	win, ok := g.windows.GetByID(winID)
	if !ok {
		return nil, false
	}
	return g.streams.GetByID(win.StreamID)
}

// Fileref resolves a fileref id to its object.
func (g *GlkApi) Fileref(id uint32) (*Fileref, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.filerefs.GetByID(id)
}

// FilerefIterate implements glk_fileref_iterate.
func (g *GlkApi) FilerefIterate(fr *Fileref, valid bool) (*Fileref, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.filerefs.Iterate(fr, valid)
}

// DestroyFileref implements glk_fileref_destroy.
func (g *GlkApi) DestroyFileref(id uint32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if fr, ok := g.filerefs.GetByID(id); ok {
		g.filerefs.Unregister(fr)
	}
}

// Schannel resolves a sound channel id to its object.
func (g *GlkApi) Schannel(id uint32) (*Schannel, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.schannels.GetByID(id)
}

// SchannelIterate implements glk_schannel_iterate.
func (g *GlkApi) SchannelIterate(sc *Schannel, valid bool) (*Schannel, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.schannels.Iterate(sc, valid)
}

// Metrics returns the last-normalized display metrics.
func (g *GlkApi) Metrics() NormalizedMetrics {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.metrics
}

// Capabilities returns the capability flags; nothing fills them from the
// init event, so all are false.
func (g *GlkApi) Capabilities() Capabilities {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.capabilities
}

// SetDispatchCallbacks wires the per-class foreign dispatch-rock hooks
// (§4.1), one callback pair shared by all four object classes.
func (g *GlkApi) SetDispatchCallbacks(register RegisterCallback, unregister UnregisterCallback) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.windows.SetCallbacks(register, unregister)
	g.streams.SetCallbacks(register, unregister)
	g.filerefs.SetCallbacks(register, unregister)
	g.schannels.SetCallbacks(register, unregister)
}

// --- Window content mutators ---
//
// These dispatch through windowData for the variant-specific behavior and
// raise windowsChanged/schannelsChanged as appropriate; the content itself
// is picked up by the next buildUpdate (§4.2 "Update emission").

// ClearWindow implements glk_window_clear.
func (g *GlkApi) ClearWindow(winID uint32) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	win, ok := g.windows.GetByID(winID)
	if !ok {
		return ErrInvalidReference
	}
	if bg, hasBG := win.data.clear(); hasBG {
		g.pageMarginBG = bg
		g.pageMarginSource = marginSourceZColor
	}
	return nil
}

// FlowBreak implements glk_window_flow_break; only text-buffer windows
// support it (§4.2).
func (g *GlkApi) FlowBreak(winID uint32) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	win, ok := g.windows.GetByID(winID)
	if !ok {
		return ErrInvalidReference
	}
	b := win.buffer()
	if b == nil {
		return ErrNotPairWindow
	}
	b.flowBreak()
	return nil
}

// SetWindowStyle implements glk_set_style (when a current-stream write
// targets a window) and the explicit garglk-style per-window style setter.
func (g *GlkApi) SetWindowStyle(winID uint32, style Style) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	win, ok := g.windows.GetByID(winID)
	if !ok {
		return ErrInvalidReference
	}
	win.data.setStyle(style)
	return nil
}

// SetWindowHyperlink implements glk_set_hyperlink(_stream).
func (g *GlkApi) SetWindowHyperlink(winID uint32, linkID uint32) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	win, ok := g.windows.GetByID(winID)
	if !ok {
		return ErrInvalidReference
	}
	win.data.setHyperlink(linkID)
	return nil
}

// SetWindowCSS implements garglk_set_zcolors' CSS-property cousin used by
// some interpreters to set an arbitrary inline style property on the
// current run.
func (g *GlkApi) SetWindowCSS(winID uint32, name string, value string, hasValue bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	win, ok := g.windows.GetByID(winID)
	if !ok {
		return ErrInvalidReference
	}
	win.data.setCSS(name, value, hasValue)
	return nil
}

// SetWindowColours implements garglk_set_zcolors: sets the window's own
// current fg/bg (captured by a later clear()) and, per §4.2's page-margin
// policy, becomes the most-recent colour source for buffer windows (or
// grid windows when no buffer window exists).
func (g *GlkApi) SetWindowColours(winID uint32, fg, bg uint32) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	win, ok := g.windows.GetByID(winID)
	if !ok {
		return ErrInvalidReference
	}
	win.data.setColours(fg, bg)
	if win.WinType == WintypeBuffer || (win.WinType == WintypeGrid && g.bufferWindowCount == 0) {
		g.pageMarginBG = colorToHex(bg)
		g.pageMarginSource = marginSourceZColor
	}
	return nil
}

// --- Graphics window ops ---

// FillRect implements glk_window_fill_rect on a graphics window's display
// list.
func (g *GlkApi) FillRect(winID uint32, color string, hasColor bool, x, y, w, h float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	win, ok := g.windows.GetByID(winID)
	if !ok {
		return ErrInvalidReference
	}
	gr := win.graphics()
	if gr == nil {
		return ErrNotGraphicsWindow
	}
	if !hasColor {
		color = ""
	}
	gr.fillRect(color, x, y, w, h)
	return nil
}

// SetGraphicsBackground implements glk_window_set_background_color /
// garglk_set_zcolors on a graphics window.
func (g *GlkApi) SetGraphicsBackground(winID uint32, color string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	win, ok := g.windows.GetByID(winID)
	if !ok {
		return ErrInvalidReference
	}
	gr := win.graphics()
	if gr == nil {
		return ErrNotGraphicsWindow
	}
	gr.setBackgroundColor(color)
	return nil
}

// DrawImage implements glk_image_draw on a graphics window's display
// list, appended as an image op.
func (g *GlkApi) DrawImage(winID uint32, image uint32, x, y, w, h float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	win, ok := g.windows.GetByID(winID)
	if !ok {
		return ErrInvalidReference
	}
	gr := win.graphics()
	if gr == nil {
		return ErrNotGraphicsWindow
	}
	gr.draw = append(gr.draw, GraphicsOp{Special: "image", Image: image, X: x, Y: y, Width: w, Height: h})
	return nil
}

// --- Echo streams ---

// SetEchoStream implements glk_window_set_echo_stream.
func (g *GlkApi) SetEchoStream(winID uint32, streamID uint32, has bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	win, ok := g.windows.GetByID(winID)
	if !ok {
		return ErrInvalidReference
	}
	win.hasEcho, win.echoID = has, streamID
	return nil
}

// GetEchoStream implements glk_window_get_echo_stream.
func (g *GlkApi) GetEchoStream(winID uint32) (uint32, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	win, ok := g.windows.GetByID(winID)
	if !ok {
		return 0, false
	}
	return win.echoID, win.hasEcho
}

// PutStringToWindow writes text to a window's own output stream, the
// window-aware fan-out described in §4.4 ("Window stream... Writes
// forward to the owning window's put_string and to its echo-stream").
func (g *GlkApi) PutStringToWindow(winID uint32, text string, style Style, hasStyle bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	win, ok := g.windows.GetByID(winID)
	if !ok {
		return ErrInvalidReference
	}
	str, ok := g.streams.GetByID(win.StreamID)
	if !ok {
		return ErrInvalidReference
	}
	return g.putStringToStream(str, text, style, hasStyle)
}

// --- Filerefs ---

// CreateFilerefByName implements glk_fileref_create_by_name (§4.6).
func (g *GlkApi) CreateFilerefByName(usage FileUsage, filename string, rock uint32) *Fileref {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.createFilerefByName(usage, filename, rock)
}

// CreateTempFileref implements glk_fileref_create_temp (§4.6).
func (g *GlkApi) CreateTempFileref(usage FileUsage, rock uint32) *Fileref {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.createTempFileref(usage, rock)
}

// CreateFilerefFromFileref implements glk_fileref_create_from_fileref.
func (g *GlkApi) CreateFilerefFromFileref(usage FileUsage, old *Fileref, rock uint32) *Fileref {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.createFilerefFromFileref(usage, old, rock)
}

// DoesFilerefExist implements glk_fileref_does_file_exist.
func (g *GlkApi) DoesFilerefExist(fr *Fileref) bool {
	g.mu.Lock()
	host := g.host
	g.mu.Unlock()
	return host.FileExists(fr.Path)
}

// DeleteFileref implements glk_fileref_delete_file.
func (g *GlkApi) DeleteFileref(fr *Fileref) error {
	g.mu.Lock()
	host := g.host
	g.mu.Unlock()
	return host.FileDelete(fr.Path)
}

// CreateFilerefByPrompt implements glk_fileref_create_by_prompt (§4.6):
// stages a special-input descriptor for the next update and suspends
// until the matching specialresponse event arrives, one of the three
// suspension points of §5.
func (g *GlkApi) CreateFilerefByPrompt(usage FileUsage, fmode FileMode, rock uint32) (*Fileref, error) {
	g.mu.Lock()
	g.specialInput = &SpecialInput{Type: "fileref_prompt"}
	g.specialInputKind = usage
	g.mu.Unlock()

	ev, err := g.Select()
	if err != nil {
		return nil, err
	}
	if ev.Type != EvtypeNone {
		return nil, nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	filename, ok := g.lastSpecialResponse, g.hasLastSpecialResponse
	g.hasLastSpecialResponse = false
	if !ok || filename == "" {
		return nil, nil
	}
	path := filename
	if !hasFileSuffix(path) {
		path += usage.Suffix()
	}
	if !isAbsolutePath(path) {
		path = joinPath(g.directories.Working, path)
	}
	fr := &Fileref{Path: path, Binary: usage.Binary()}
	g.filerefs.Register(fr, rock)
	return fr, nil
}

func hasFileSuffix(path string) bool {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return false
		}
		if path[i] == '.' {
			return true
		}
	}
	return false
}

func isAbsolutePath(path string) bool {
	return len(path) > 0 && path[0] == '/'
}

// --- Sound channels ---

// CreateSchannel implements glk_schannel_create.
func (g *GlkApi) CreateSchannel(rock uint32) *Schannel {
	g.mu.Lock()
	defer g.mu.Unlock()
	sc := &Schannel{}
	g.schannels.Register(sc, rock)
	return sc
}

// DestroySchannel implements glk_schannel_destroy.
func (g *GlkApi) DestroySchannel(id uint32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if sc, ok := g.schannels.GetByID(id); ok {
		g.schannels.Unregister(sc)
	}
}

// SchannelPlay implements glk_schannel_play(_ext) / glk_schannel_play_multi.
func (g *GlkApi) SchannelPlay(id uint32, snd uint32, repeats int32, notify uint32) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	sc, ok := g.schannels.GetByID(id)
	if !ok {
		return ErrInvalidReference
	}
	sc.enqueue(SoundOp{Op: "play", Snd: snd, Repeats: repeats, Notify: notify})
	g.schannelsChanged = true
	return nil
}

// SchannelStop implements glk_schannel_stop.
func (g *GlkApi) SchannelStop(id uint32) error {
	return g.schannelSimpleOp(id, "stop")
}

// SchannelPause implements glk_schannel_pause.
func (g *GlkApi) SchannelPause(id uint32) error {
	return g.schannelSimpleOp(id, "pause")
}

// SchannelUnpause implements glk_schannel_unpause.
func (g *GlkApi) SchannelUnpause(id uint32) error {
	return g.schannelSimpleOp(id, "unpause")
}

func (g *GlkApi) schannelSimpleOp(id uint32, op string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	sc, ok := g.schannels.GetByID(id)
	if !ok {
		return ErrInvalidReference
	}
	sc.enqueue(SoundOp{Op: op})
	g.schannelsChanged = true
	return nil
}

// SchannelSetVolume implements glk_schannel_set_volume(_ext).
func (g *GlkApi) SchannelSetVolume(id uint32, volume float64, duration uint32, notify uint32) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	sc, ok := g.schannels.GetByID(id)
	if !ok {
		return ErrInvalidReference
	}
	sc.enqueue(SoundOp{Op: "volume", Volume: volume, Duration: duration, Notify: notify})
	g.schannelsChanged = true
	return nil
}
