package glkapi

// Buffer is a dual-width Glk character buffer: either a narrow (Latin-1)
// byte slice or a wide (Unicode codepoint) uint32 slice. Grounded on
// remglk-rs's GlkBuffer/GlkBufferMut/GlkOwnedBuffer split in arrays.rs.
type Buffer struct {
	U8  []byte
	U32 []uint32
}

const maxLatin1 = 0xFF
const questionMark = '?'

// Wide reports whether the buffer holds 32-bit codepoints.
func (b *Buffer) Wide() bool {
	return b.U32 != nil
}

// Len returns the buffer's element count regardless of width.
func (b *Buffer) Len() int {
	if b.Wide() {
		return len(b.U32)
	}
	return len(b.U8)
}

// Get returns the codepoint at index as a uint32 regardless of width.
func (b *Buffer) Get(i int) uint32 {
	if b.Wide() {
		return b.U32[i]
	}
	return uint32(b.U8[i])
}

// Set stores a codepoint at index, downgrading to '?' on narrow buffers
// when the value exceeds Latin-1.
func (b *Buffer) Set(i int, val uint32) {
	if b.Wide() {
		b.U32[i] = val
		return
	}
	if val > maxLatin1 {
		val = questionMark
	}
	b.U8[i] = byte(val)
}

// String renders the first n elements as a Go string.
func (b *Buffer) String(n int) string {
	runes := make([]rune, n)
	for i := 0; i < n; i++ {
		runes[i] = rune(b.Get(i))
	}
	return string(runes)
}

// NewBufferFromString builds an owned wide buffer from a Go string.
func NewBufferFromString(s string) *Buffer {
	return &Buffer{U32: []uint32(stringToU32(s))}
}

func stringToU32(s string) []uint32 {
	runes := []rune(s)
	out := make([]uint32, len(runes))
	for i, r := range runes {
		out[i] = uint32(r)
	}
	return out
}

// NewU8Buffer allocates an owned narrow buffer of the given length.
func NewU8Buffer(length int) *Buffer {
	return &Buffer{U8: make([]byte, length)}
}

// NewU32Buffer allocates an owned wide buffer of the given length.
func NewU32Buffer(length int) *Buffer {
	return &Buffer{U32: make([]uint32, length)}
}

// CopyBuffer copies length elements from src (starting at srcOffset) into
// dst (starting at dstOffset), converting widths and downgrading
// out-of-range codepoints to '?' as needed. Grounded on arrays.rs's
// set_buffer.
func CopyBuffer(src *Buffer, srcOffset int, dst *Buffer, dstOffset, length int) {
	for i := 0; i < length; i++ {
		dst.Set(dstOffset+i, src.Get(srcOffset+i))
	}
}

// Resize grows a narrow or wide buffer in place to newLen, zero-filling the
// new tail. Used by file streams, which may grow past their initial size.
func (b *Buffer) Resize(newLen int) {
	if b.Wide() {
		grown := make([]uint32, newLen)
		copy(grown, b.U32)
		b.U32 = grown
		return
	}
	grown := make([]byte, newLen)
	copy(grown, b.U8)
	b.U8 = grown
}

// colorToHex formats a packed 0xRRGGBB colour as the GlkOte wire's "#rrggbb"
// form (§6 content updates' bg/fg fields).
func colorToHex(c uint32) string {
	const hexDigits = "0123456789abcdef"
	c &= 0xFFFFFF
	out := [7]byte{'#'}
	for i := 5; i >= 0; i-- {
		out[1+i] = hexDigits[c&0xF]
		c >>= 4
	}
	return string(out[:])
}
