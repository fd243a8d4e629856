package glkapi

// CreateMemoryStream implements glk_stream_open_memory(_uni). A nil buf
// (zero length, no backing array) yields a null stream per §4.4.
func (g *GlkApi) CreateMemoryStream(buf *Buffer, fmode FileMode, rock uint32) *Stream {
	g.mu.Lock()
	defer g.mu.Unlock()
	var str *Stream
	if buf == nil {
		str = &Stream{kind: streamNull, data: &nullStream{}}
	} else {
		str = &Stream{kind: streamArrayBacked, data: newArrayBackedStream(buf, fmode, "", false)}
	}
	g.streams.Register(str, rock)
	return str
}

// CreateFileStream implements glk_stream_open_file(_uni): reads the
// fileref's existing contents (if any and if fmode permits), and wraps a
// growable fileStream.
func (g *GlkApi) CreateFileStream(fr *Fileref, fmode FileMode, wide bool, rock uint32) (*Stream, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	var contents []byte
	if fmode != FileModeWrite {
		data, ok, err := g.host.FileRead(fr.Path)
		if err != nil {
			return nil, err
		}
		if ok {
			contents = data
		}
	}

	var buf *Buffer
	if fr.Binary {
		if wide {
			u32 := make([]uint32, len(contents)/4)
			for i := range u32 {
				u32[i] = uint32(contents[i*4]) | uint32(contents[i*4+1])<<8 | uint32(contents[i*4+2])<<16 | uint32(contents[i*4+3])<<24
			}
			buf = &Buffer{U32: u32}
		} else {
			b := make([]byte, len(contents))
			copy(b, contents)
			buf = &Buffer{U8: b}
		}
	} else {
		runes := []rune(string(contents))
		if wide {
			u32 := make([]uint32, len(runes))
			for i, r := range runes {
				u32[i] = uint32(r)
			}
			buf = &Buffer{U32: u32}
		} else {
			b := make([]byte, len(runes))
			for i, r := range runes {
				if r > maxLatin1 {
					r = questionMark
				}
				b[i] = byte(r)
			}
			buf = &Buffer{U8: b}
		}
	}

	fs := newFileStream(fr.Path, fr.Binary, buf, fmode)
	str := &Stream{kind: streamFile, data: fs}
	g.streams.Register(str, rock)
	return str, nil
}

// CreateResourceStream implements glk_stream_open_resource(_uni): the
// resource bytes are supplied by the caller (already resolved through the
// Blorb lookup contract, §1), and become a read-only
// array-backed stream.
func (g *GlkApi) CreateResourceStream(data []byte, wide bool, rock uint32) *Stream {
	g.mu.Lock()
	defer g.mu.Unlock()
	var buf *Buffer
	if wide {
		u32 := make([]uint32, len(data)/4)
		for i := range u32 {
			u32[i] = uint32(data[i*4]) | uint32(data[i*4+1])<<8 | uint32(data[i*4+2])<<16 | uint32(data[i*4+3])<<24
		}
		buf = &Buffer{U32: u32}
	} else {
		b := make([]byte, len(data))
		copy(b, data)
		buf = &Buffer{U8: b}
	}
	str := &Stream{kind: streamArrayBacked, data: newArrayBackedStream(buf, FileModeRead, "", false)}
	g.streams.Register(str, rock)
	return str
}

// CloseStream implements glk_stream_close. Closing a window stream
// directly is forbidden (§4.4).
func (g *GlkApi) CloseStream(streamID uint32) (StreamResultCounts, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	str, ok := g.streams.GetByID(streamID)
	if !ok {
		return StreamResultCounts{}, ErrInvalidReference
	}
	if str.kind == streamWindow {
		return StreamResultCounts{}, ErrCannotCloseWindowStream
	}
	if fs, ok := str.data.(*fileStream); ok {
		g.flushFileStream(fs)
	}
	counts := str.Close()
	g.nullCurrentStreamIfMatches(streamID)
	g.streams.Unregister(str)
	return counts, nil
}

func (g *GlkApi) flushFileStream(fs *fileStream) {
	if !fs.Changed {
		return
	}
	_ = g.host.FileWrite(fs.Path, fs.ToFileBuffer())
	fs.Changed = false
}

// putStringToStream is PutString's window-aware fan-out: a window stream
// forwards to the window's put_string and to its echo stream, if any.
// Writing fails when the owning window has pending line input (§4.4).
func (g *GlkApi) putStringToStream(str *Stream, text string, style Style, hasStyle bool) error {
	if str.kind != streamWindow {
		return str.PutString(text, style, hasStyle)
	}
	win, ok := g.windows.GetByID(str.WindowID)
	if !ok {
		return ErrInvalidReference
	}
	if win.input.lineInput {
		return ErrPendingLineInput
	}
	useStyle := win.currentStyleFor(style, hasStyle)
	win.data.putString(text, useStyle)
	if err := str.PutString(text, style, hasStyle); err != nil {
		return err
	}
	if win.hasEcho {
		if echo, ok := g.streams.GetByID(win.echoID); ok {
			return echo.PutString(text, style, hasStyle)
		}
	}
	return nil
}

// currentStyleFor resolves the style a window write should use: the
// explicit style argument if given, otherwise the window's own current
// style (tracked per variant).
func (w *Window) currentStyleFor(style Style, hasStyle bool) Style {
	if hasStyle {
		return style
	}
	switch w.WinType {
	case WintypeBuffer:
		return w.buffer().currentStyle
	case WintypeGrid:
		return w.grid().currentStyle
	default:
		return StyleNormal
	}
}
