package glkapi

import "time"

// Host is the single pluggable collaborator the runtime needs: file I/O,
// Unicode case/normalization tables, the wall clock, the local time zone,
// and the update/event transport. Grounded on §6's "Host interface"; the
// reference implementation (internal/host) is built on golang.org/x/text,
// go-homedir, and go-app-paths per SPEC_FULL.md §2b.
type Host interface {
	FileExists(path string) bool
	FileRead(path string) ([]byte, bool, error)
	FileWrite(path string, data []byte) error
	FileDelete(path string) error

	// GetGlkoteEvent blocks until the display sends the next inbound
	// event, or returns ok=false if the transport has nothing more to
	// give (treated as session termination per §4.5).
	GetGlkoteEvent() (*InboundEvent, bool)
	SendGlkoteUpdate(update *Update) error

	BufferToLowerCase(s string) string
	BufferToUpperCase(s string) string
	BufferToTitleCase(s string, styleSet bool) string
	CanonDecompose(s string) string
	CanonNormalize(s string) string

	GetDirectories() Directories
	GetLocalTZ() *time.Location
	GetNow() time.Time
}

// Directories holds the filesystem roots the runtime resolves filerefs
// against.
type Directories struct {
	Working string
	Temp    string
}

// RetainCallback is invoked when the runtime hands a buffer to interpreter
// code across a select() suspension (§5).
type RetainCallback func(buf *Buffer, tag uint32) DispatchRock

// UnretainCallback is invoked exactly once per matching RetainCallback.
type UnretainCallback func(buf *Buffer, tag uint32, rock DispatchRock)
