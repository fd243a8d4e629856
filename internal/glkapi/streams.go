package glkapi

import "math"

// Stream is a tagged union over the four stream implementations, dispatched
// through the streamOps interface. Grounded on remglk-rs's Stream enum in
// streams.rs.
type Stream struct {
	registryEntry

	kind streamKind
	data streamOps

	// WindowID is set only for window streams, and is a non-owning
	// back-reference; resolved through the window store.
	WindowID uint32
}

func (s *Stream) entry() *registryEntry { return &s.registryEntry }

func (s *Stream) GetBuffer(dst *Buffer) (int, error)   { return s.data.getBuffer(dst) }
func (s *Stream) GetChar(uni bool) (int32, error)      { return s.data.getChar(uni) }
func (s *Stream) GetLine(dst *Buffer) (int, error)     { return s.data.getLine(dst) }
func (s *Stream) GetPosition() int                     { return s.data.getPosition() }
func (s *Stream) PutBuffer(src *Buffer) error          { return s.data.putBuffer(src) }
func (s *Stream) PutChar(ch uint32) error              { return s.data.putChar(ch) }
func (s *Stream) SetPosition(mode SeekMode, pos int32) { s.data.setPosition(mode, pos) }
func (s *Stream) Close() StreamResultCounts            { return s.data.close() }
func (s *Stream) FilePath() (string, bool)             { return s.data.filePath() }

// PutString writes styled text to the stream. Window streams additionally
// forward to the window and any echo stream; that fan-out needs the
// window store, so it lives in stream_create.go's putStringToStream, not here.
func (s *Stream) PutString(text string, style Style, hasStyle bool) error {
	return s.data.putString(text, style, hasStyle)
}

type streamKind int

const (
	streamArrayBacked streamKind = iota
	streamFile
	streamNull
	streamWindow
)

// StreamResultCounts is returned by glk_stream_close.
type StreamResultCounts struct {
	ReadCount, WriteCount uint32
}

// streamOps is the common operation surface every stream variant
// implements.
type streamOps interface {
	getBuffer(dst *Buffer) (int, error)
	getChar(uni bool) (int32, error)
	getLine(dst *Buffer) (int, error)
	getPosition() int
	putBuffer(src *Buffer) error
	putChar(ch uint32) error
	putString(text string, style Style, hasStyle bool) error
	setPosition(mode SeekMode, pos int32)
	close() StreamResultCounts
	filePath() (string, bool)
}

// arrayBackedStream is the basis for memory and resource streams. See
// streams.rs's ArrayBackedStream.
type arrayBackedStream struct {
	buf        *Buffer
	expandable bool
	fmode      FileMode
	length     int
	path       string
	hasPath    bool
	pos        int
	readCount  int
	writeCount int
}

func newArrayBackedStream(buf *Buffer, fmode FileMode, path string, hasPath bool) *arrayBackedStream {
	length := buf.Len()
	s := &arrayBackedStream{
		buf:        buf,
		expandable: fmode == FileModeWrite,
		fmode:      fmode,
		path:       path,
		hasPath:    hasPath,
	}
	if fmode == FileModeWrite {
		s.length = 0
	} else {
		s.length = length
	}
	if fmode == FileModeWriteAppend {
		s.pos = s.length
	}
	return s
}

func (s *arrayBackedStream) expand(increase int) {
	s.length = min(s.pos+increase, s.buf.Len())
	if s.length == s.buf.Len() {
		s.expandable = false
	}
}

func (s *arrayBackedStream) checkReadable() error {
	if s.fmode == FileModeWrite || s.fmode == FileModeWriteAppend {
		return ErrReadFromWriteOnly
	}
	return nil
}

func (s *arrayBackedStream) checkWritable() error {
	if s.fmode == FileModeRead {
		return ErrWriteToReadOnly
	}
	return nil
}

func (s *arrayBackedStream) getBuffer(dst *Buffer) (int, error) {
	if err := s.checkReadable(); err != nil {
		return 0, err
	}
	readLen := min(dst.Len(), s.length-s.pos)
	if readLen <= 0 {
		return 0, nil
	}
	CopyBuffer(s.buf, s.pos, dst, 0, readLen)
	s.pos += readLen
	s.readCount += readLen
	return readLen, nil
}

func (s *arrayBackedStream) getChar(uni bool) (int32, error) {
	if err := s.checkReadable(); err != nil {
		return 0, err
	}
	if s.pos < s.length {
		ch := s.buf.Get(s.pos)
		s.pos++
		s.readCount++
		if !uni && ch > maxLatin1 {
			ch = questionMark
		}
		return int32(ch), nil
	}
	return -1, nil
}

func (s *arrayBackedStream) getLine(dst *Buffer) (int, error) {
	if err := s.checkReadable(); err != nil {
		return 0, err
	}
	readLen := min(dst.Len()-1, s.length-s.pos)
	if readLen < 0 {
		return 0, nil
	}
	i := 0
	for i < readLen {
		ch := s.buf.Get(s.pos)
		s.pos++
		dst.Set(i, ch)
		i++
		if ch == 10 {
			break
		}
	}
	dst.Set(i, 0)
	s.readCount += i
	return i, nil
}

func (s *arrayBackedStream) getPosition() int { return s.pos }

func (s *arrayBackedStream) putBuffer(src *Buffer) error {
	if err := s.checkWritable(); err != nil {
		return err
	}
	n := src.Len()
	s.writeCount += n
	if s.pos+n > s.length && s.expandable {
		s.expand(n)
	}
	writeLen := min(n, s.length-s.pos)
	if writeLen > 0 {
		CopyBuffer(src, 0, s.buf, s.pos, writeLen)
		s.pos += writeLen
	}
	return nil
}

func (s *arrayBackedStream) putChar(ch uint32) error {
	if err := s.checkWritable(); err != nil {
		return err
	}
	s.writeCount++
	if s.pos == s.length && s.expandable {
		s.expand(1)
	}
	if s.pos < s.length {
		s.buf.Set(s.pos, ch)
		s.pos++
	}
	return nil
}

func (s *arrayBackedStream) putString(text string, style Style, hasStyle bool) error {
	buf := NewBufferFromString(text)
	return s.putBuffer(buf)
}

func (s *arrayBackedStream) setPosition(mode SeekMode, pos int32) {
	var newPos int32
	switch mode {
	case SeekCurrent:
		newPos = int32(s.pos) + pos
	case SeekEnd:
		newPos = int32(s.length) + pos
	default:
		newPos = pos
	}
	s.pos = int(clampInt32(newPos, 0, int32(s.length)))
}

func clampInt32(v, lo, hi int32) int32 {
	return int32(math.Max(float64(lo), math.Min(float64(hi), float64(v))))
}

func (s *arrayBackedStream) close() StreamResultCounts {
	return StreamResultCounts{ReadCount: uint32(s.readCount), WriteCount: uint32(s.writeCount)}
}

func (s *arrayBackedStream) filePath() (string, bool) { return s.path, s.hasPath }

// fileStream wraps an arrayBackedStream with the ability to grow past its
// allocated buffer. Grounded on streams.rs's FileStream; Open Question (c)
// is implemented here: a writable file stream may seek or write past its
// current length, growing to accommodate, unlike a plain memory stream.
type fileStream struct {
	binary  bool
	Changed bool
	Path    string
	str     *arrayBackedStream
}

func newFileStream(path string, binary bool, buf *Buffer, fmode FileMode) *fileStream {
	return &fileStream{
		binary: binary,
		Path:   path,
		str:    newArrayBackedStream(buf, fmode, path, true),
	}
}

func (f *fileStream) expand(increase int) {
	endPos := f.str.pos + increase
	maxLen := f.str.buf.Len()
	if endPos > maxLen {
		maxLen += max(endPos-maxLen, 100)
		f.str.buf.Resize(maxLen)
	}
	f.str.expand(increase)
}

func (f *fileStream) ToFileBuffer() []byte {
	if f.binary {
		if f.str.buf.Wide() {
			out := make([]byte, f.str.length*4)
			for i := 0; i < f.str.length; i++ {
				v := f.str.buf.U32[i]
				out[i*4] = byte(v)
				out[i*4+1] = byte(v >> 8)
				out[i*4+2] = byte(v >> 16)
				out[i*4+3] = byte(v >> 24)
			}
			return out
		}
		return f.str.buf.U8[:f.str.length]
	}
	return []byte(f.str.buf.String(f.str.length))
}

func (f *fileStream) getBuffer(dst *Buffer) (int, error) { return f.str.getBuffer(dst) }
func (f *fileStream) getChar(uni bool) (int32, error)    { return f.str.getChar(uni) }
func (f *fileStream) getLine(dst *Buffer) (int, error)   { return f.str.getLine(dst) }
func (f *fileStream) getPosition() int                   { return f.str.getPosition() }
func (f *fileStream) close() StreamResultCounts          { return f.str.close() }
func (f *fileStream) filePath() (string, bool)           { return f.str.filePath() }

func (f *fileStream) putBuffer(src *Buffer) error {
	f.Changed = true
	if f.str.pos+src.Len() > f.str.length {
		f.expand(src.Len())
	}
	return f.str.putBuffer(src)
}

func (f *fileStream) putChar(ch uint32) error {
	f.Changed = true
	if f.str.pos == f.str.length {
		f.expand(1)
	}
	return f.str.putChar(ch)
}

func (f *fileStream) putString(text string, style Style, hasStyle bool) error {
	return f.putBuffer(NewBufferFromString(text))
}

func (f *fileStream) setPosition(mode SeekMode, pos int32) {
	var newPos int
	switch mode {
	case SeekCurrent:
		newPos = f.str.pos + int(pos)
	case SeekEnd:
		newPos = f.str.length + int(pos)
	default:
		newPos = int(pos)
	}
	if newPos > f.str.length && f.str.fmode != FileModeRead {
		f.expand(newPos - f.str.pos)
	}
	f.str.setPosition(mode, pos)
}

// nullStream is only used for a memory stream requested with no buffer.
type nullStream struct {
	writeCount int
}

func (n *nullStream) getBuffer(*Buffer) (int, error) { return 0, nil }
func (n *nullStream) getChar(bool) (int32, error)     { return -1, nil }
func (n *nullStream) getLine(*Buffer) (int, error)    { return 0, nil }
func (n *nullStream) getPosition() int                { return 0 }
func (n *nullStream) setPosition(SeekMode, int32)     {}
func (n *nullStream) filePath() (string, bool)        { return "", false }

func (n *nullStream) putBuffer(src *Buffer) error {
	n.writeCount += src.Len()
	return nil
}
func (n *nullStream) putChar(uint32) error {
	n.writeCount++
	return nil
}
func (n *nullStream) putString(text string, style Style, hasStyle bool) error {
	n.writeCount += len([]rune(text))
	return nil
}
func (n *nullStream) close() StreamResultCounts {
	return StreamResultCounts{WriteCount: uint32(n.writeCount)}
}

// windowStream forwards writes to its owning window's put_string (and its
// echo stream, if any). Reads always return EOF. The owning GlkApi
// resolves WindowID and echo chasing, since the stream itself only holds
// the non-owning reference; see putStringToStream in stream_create.go,
// which invokes put_string through the window store.
type windowStream struct {
	writeCount int
}

func (w *windowStream) getBuffer(*Buffer) (int, error) { return 0, nil }
func (w *windowStream) getChar(bool) (int32, error)     { return -1, nil }
func (w *windowStream) getLine(*Buffer) (int, error)    { return 0, nil }
func (w *windowStream) getPosition() int                { return 0 }
func (w *windowStream) setPosition(SeekMode, int32)     {}
func (w *windowStream) filePath() (string, bool)        { return "", false }
func (w *windowStream) close() StreamResultCounts {
	return StreamResultCounts{WriteCount: uint32(w.writeCount)}
}
func (w *windowStream) putBuffer(src *Buffer) error { w.writeCount += src.Len(); return nil }
func (w *windowStream) putChar(uint32) error         { w.writeCount++; return nil }
func (w *windowStream) putString(text string, style Style, hasStyle bool) error {
	w.writeCount += len([]rune(text))
	return nil
}
