// Package host provides the reference implementation of glkapi.Host: file
// I/O against the local filesystem, Unicode case/normalization tables from
// golang.org/x/text, and an in-process channel transport in place of a
// real network socket (§6 "Host interface"; SPEC_FULL.md §2b).
package host

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	homedir "github.com/mitchellh/go-homedir"
	gap "github.com/muesli/go-app-paths"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/glkgo/remglk/internal/glkapi"
)

// Host is the filesystem- and channel-backed Host implementation used by
// cmd/remglk. One Host is created per run and handed to glkapi.New.
type Host struct {
	logger *log.Logger

	workingDir string
	tempDir    string

	lower cases.Caser
	upper cases.Caser
	title cases.Caser

	updates chan *glkapi.Update
	events  chan *glkapi.InboundEvent
	closed  chan struct{}
}

// New resolves the working/temp directories (expanding "~" the way
// glow's ExpandPath/go-homedir usage did) and builds a Host bound to
// them. The scope name ("remglk") mirrors how glow's getLogFilePath uses
// gap.NewScope(gap.User, "glow").
func New(workingDir string, logger *log.Logger) (*Host, error) {
	expanded, err := homedir.Expand(workingDir)
	if err != nil {
		expanded = workingDir
	}
	expanded = os.ExpandEnv(expanded)
	if expanded == "" {
		expanded = "."
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, err
	}

	scope := gap.NewScope(gap.User, "remglk")
	tempDir, err := scope.CacheDir()
	if err != nil {
		tempDir = os.TempDir()
	}
	tempDir = filepath.Join(tempDir, "temp")
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return nil, err
	}

	if logger == nil {
		logger = log.New(os.Stderr)
	}

	return &Host{
		logger:     logger,
		workingDir: abs,
		tempDir:    tempDir,
		lower:      cases.Lower(language.Und),
		upper:      cases.Upper(language.Und),
		title:      cases.Title(language.Und),
		updates:    make(chan *glkapi.Update, 1),
		events:     make(chan *glkapi.InboundEvent, 1),
		closed:     make(chan struct{}),
	}, nil
}

// GetDirectories implements glkapi.Host.
func (h *Host) GetDirectories() glkapi.Directories {
	return glkapi.Directories{Working: h.workingDir, Temp: h.tempDir}
}

// FileExists implements glkapi.Host.
func (h *Host) FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// FileRead implements glkapi.Host.
func (h *Host) FileRead(path string) ([]byte, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

// FileWrite implements glkapi.Host.
func (h *Host) FileWrite(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		h.logger.Error("file write failed", "path", path, "err", err)
		return err
	}
	h.logger.Debug("flushed file stream", "path", path, "size", humanize.Bytes(uint64(len(data))))
	return nil
}

// FileDelete implements glkapi.Host.
func (h *Host) FileDelete(path string) error {
	err := os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// BufferToLowerCase implements glkapi.Host via golang.org/x/text/cases.
func (h *Host) BufferToLowerCase(s string) string { return h.lower.String(s) }

// BufferToUpperCase implements glkapi.Host.
func (h *Host) BufferToUpperCase(s string) string { return h.upper.String(s) }

// BufferToTitleCase implements glkapi.Host. styleSet selects whether every
// word is titlecased (true) or only the first (false), matching Glk's
// lowercase-other-words variant of glk_buffer_to_title_case.
func (h *Host) BufferToTitleCase(s string, styleSet bool) string {
	if styleSet {
		return h.title.String(s)
	}
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	first := h.title.String(string(runes[0]))
	return first + string(runes[1:])
}

// CanonDecompose implements glkapi.Host via golang.org/x/text/unicode/norm
// (NFD).
func (h *Host) CanonDecompose(s string) string { return norm.NFD.String(s) }

// CanonNormalize implements glkapi.Host (NFC).
func (h *Host) CanonNormalize(s string) string { return norm.NFC.String(s) }

// GetLocalTZ implements glkapi.Host.
func (h *Host) GetLocalTZ() *time.Location { return time.Local }

// GetNow implements glkapi.Host.
func (h *Host) GetNow() time.Time { return time.Now() }

// SetBaseFile rebinds the working directory used to resolve filerefs
// (§6's set_base_file), e.g. once a game file's own directory is known.
func (h *Host) SetBaseFile(path string) {
	h.workingDir = filepath.Dir(path)
}

// --- Transport: in-process channels in place of a network socket ---
//
// internal/termui is the only consumer of PushEvent/NextUpdate; it is the
// bubbletea client wired to this Host, not a real remote display, per
// SPEC_FULL.md §6's "Reference terminal client (supplemental...)".

// SendGlkoteUpdate implements glkapi.Host: hands the update to whichever
// client is reading NextUpdate.
func (h *Host) SendGlkoteUpdate(update *glkapi.Update) error {
	select {
	case h.updates <- update:
		return nil
	case <-h.closed:
		return errors.New("host: transport closed")
	}
}

// GetGlkoteEvent implements glkapi.Host: blocks for the next event pushed
// by PushEvent, or returns ok=false once Close is called (§4.5 "no event
// available... treated as session termination").
func (h *Host) GetGlkoteEvent() (*glkapi.InboundEvent, bool) {
	select {
	case ev := <-h.events:
		return ev, true
	case <-h.closed:
		return nil, false
	}
}

// NextUpdate is the client-side half of SendGlkoteUpdate: blocks until the
// runtime emits its next state update.
func (h *Host) NextUpdate() (*glkapi.Update, bool) {
	select {
	case u := <-h.updates:
		return u, true
	case <-h.closed:
		return nil, false
	}
}

// PushEvent is the client-side half of GetGlkoteEvent: delivers the next
// inbound event to the runtime's Select call.
func (h *Host) PushEvent(ev *glkapi.InboundEvent) {
	select {
	case h.events <- ev:
	case <-h.closed:
	}
}

// Close tears down the transport; any blocked GetGlkoteEvent/SendGlkoteUpdate
// call returns immediately.
func (h *Host) Close() {
	select {
	case <-h.closed:
	default:
		close(h.closed)
	}
}
