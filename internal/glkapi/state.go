package glkapi

import (
	"sync"
	"time"
)

// Capabilities holds flags for optional display features. handleEvent's
// init case normalizes metrics only and does not fill these in, so every
// flag stays false.
type Capabilities struct {
	Graphics     bool
	GraphicsWin  bool
	Hyperlinks   bool
	HyperlinkInput bool
	Timer        bool
	Sound        bool
	SoundVolume  bool
	SoundNotify  bool
}

// stylehintKey identifies one (wintype, style, hint) CSS rule, per the
// Glossary's Stylehint definition.
type stylehintKey struct {
	wintype WinType
	style   Style
	hint    string
}

// pageMarginSource records which of the two independent colour sources
// (§4.2 "Page-margin policy") most recently set the outer background.
type pageMarginSource int

const (
	marginSourceNone pageMarginSource = iota
	marginSourceStylehint
	marginSourceZColor
)

// GlkApi is the single mutable runtime value threaded through every entry
// point (§3 "Global runtime state", §9 Design Notes). A single mutex
// guards it, matching the single-threaded cooperative model of §5: there
// is never legitimate contention, so one coarse lock is sufficient and
// simpler than per-object locks.
type GlkApi struct {
	mu sync.Mutex

	windows   *Store[*Window]
	streams   *Store[*Stream]
	filerefs  *Store[*Fileref]
	schannels *Store[*Schannel]

	rootWindowID    uint32
	hasRoot         bool
	currentStreamID uint32
	hasCurrentStream bool

	metrics      NormalizedMetrics
	capabilities Capabilities

	bufferWindowCount int

	stylehints map[stylehintKey]string

	pageMarginBG            string
	pageMarginSource        pageMarginSource
	lastTransmittedMarginBG string

	tempFileCounter int
	tempFiles       []string

	specialInput     *SpecialInput
	specialInputKind FileUsage

	lastSpecialResponse    string
	hasLastSpecialResponse bool

	gen uint32

	timerIntervalMS         int
	lastTransmittedTimerMS  int
	timerStartedAt          time.Time

	windowsChanged   bool
	schannelsChanged bool
	exited           bool

	host        Host
	directories Directories

	retainCB   RetainCallback
	unretainCB UnretainCallback
}

// New constructs a fresh runtime bound to the given host. The runtime is
// created once and reused across the whole session (§3 Lifecycle).
func New(host Host) *GlkApi {
	dirs := host.GetDirectories()
	return &GlkApi{
		windows:     NewStore[*Window](ClassWindow),
		streams:     NewStore[*Stream](ClassStream),
		filerefs:    NewStore[*Fileref](ClassFileref),
		schannels:   NewStore[*Schannel](ClassSchannel),
		stylehints:  make(map[stylehintKey]string),
		host:        host,
		directories: dirs,
	}
}

// SetRetainCallbacks installs the array retain/unretain hooks described in
// §5.
func (g *GlkApi) SetRetainCallbacks(retain RetainCallback, unretain UnretainCallback) {
	g.retainCB = retain
	g.unretainCB = unretain
}

// --- Window operations ---

// OpenWindow implements glk_window_open. splitID is 0 to open the very
// first (root) window.
func (g *GlkApi) OpenWindow(splitID uint32, method WinMethod, size uint32, wintype WinType, rock uint32) (*Window, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.hasRoot {
		if splitID != 0 {
			return nil, ErrInvalidReference
		}
		win, err := g.newLeafWindow(wintype, rock)
		if err != nil {
			return nil, err
		}
		g.rootWindowID, g.hasRoot = win.ID(), true
		g.windowsChanged = true
		if err := g.rearrangeWindow(win.ID(), Box{Right: g.metrics.Width, Bottom: g.metrics.Height}); err != nil {
			return nil, err
		}
		return win, nil
	}

	splitWin, ok := g.windows.GetByID(splitID)
	if !ok {
		return nil, ErrInvalidReference
	}
	if wintype == WintypeBlank && method.Division() == WinMethodFixed {
		return nil, ErrInvalidWindowDivisionBlank
	}
	if method.Direction() != WinMethodLeft && method.Direction() != WinMethodRight &&
		method.Direction() != WinMethodAbove && method.Direction() != WinMethodBelow {
		return nil, ErrInvalidWindowDirection
	}
	if method.Division() != WinMethodFixed && method.Division() != WinMethodProportional {
		return nil, ErrInvalidWindowDivision
	}

	newWin, err := g.newLeafWindow(wintype, rock)
	if err != nil {
		return nil, err
	}

	pairWin := &Window{WinType: WintypePair, data: &pairWindowData{
		Child1ID: splitWin.ID(), hasChild1: true,
		Child2ID: newWin.ID(), hasChild2: true,
		KeyID: splitWin.ID(), hasKey: true,
		Dir:      method.Direction(),
		Fixed:    method.Division() == WinMethodFixed,
		Border:   method.Border(),
		Size:     size,
		Backward: method.Backward(),
		Vertical: method.Vertical(),
	}}
	g.windows.Register(pairWin, 0)

	oldParentID, hadParent := splitWin.parentID, splitWin.hasParent
	pairWin.hasParent, pairWin.parentID = hadParent, oldParentID
	splitWin.hasParent, splitWin.parentID = true, pairWin.ID()
	newWin.hasParent, newWin.parentID = true, pairWin.ID()

	if hadParent {
		oldParent, _ := g.windows.GetByID(oldParentID)
		op := oldParent.pair()
		if op.Child1ID == splitWin.ID() {
			op.Child1ID = pairWin.ID()
		} else {
			op.Child2ID = pairWin.ID()
		}
	} else {
		g.rootWindowID = pairWin.ID()
	}

	box := splitWin.box
	g.windowsChanged = true
	if err := g.rearrangeWindow(pairWin.ID(), box); err != nil {
		return nil, err
	}
	return newWin, nil
}

func (g *GlkApi) newLeafWindow(wintype WinType, rock uint32) (*Window, error) {
	win := &Window{WinType: wintype, firstUpdate: true}
	switch wintype {
	case WintypeBlank:
		win.data = blankWindowData{}
	case WintypeBuffer:
		win.data = newBufferWindowData()
		g.bufferWindowCount++
	case WintypeGrid:
		win.data = newGridWindowData(0, 0)
	case WintypeGraphics:
		win.data = &graphicsWindowData{}
	default:
		return nil, ErrInvalidWintype
	}
	g.windows.Register(win, rock)

	str := &Stream{kind: streamWindow, data: &windowStream{}, WindowID: win.ID()}
	g.streams.Register(str, 0)
	win.StreamID = str.ID()
	return win, nil
}

// CloseWindow implements glk_window_close.
func (g *GlkApi) CloseWindow(winID uint32) (StreamResultCounts, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	win, ok := g.windows.GetByID(winID)
	if !ok {
		return StreamResultCounts{}, ErrInvalidReference
	}
	counts := g.removeWindow(win, true)
	return counts, nil
}

// removeWindow recursively unregisters win and (if it is a pair) its
// subtree, rewires the parent/sibling topology, and rearranges the
// surviving sibling into the removed pair window's box. Grounded on mod.rs's glk_window_close /
// remove_window.
func (g *GlkApi) removeWindow(win *Window, topLevel bool) StreamResultCounts {
	var counts StreamResultCounts
	if win.WinType == WintypePair {
		p := win.pair()
		if p.hasChild1 {
			if c1, ok := g.windows.GetByID(p.Child1ID); ok {
				g.removeWindow(c1, false)
			}
		}
		if p.hasChild2 {
			if c2, ok := g.windows.GetByID(p.Child2ID); ok {
				g.removeWindow(c2, false)
			}
		}
	} else {
		if str, ok := g.streams.GetByID(win.StreamID); ok {
			counts = str.Close()
			g.nullCurrentStreamIfMatches(str.ID()) // Design Note (b): explicit, not happenstance
			g.streams.Unregister(str)
		}
		if win.WinType == WintypeBuffer {
			g.bufferWindowCount--
		}
	}

	if topLevel {
		if win.hasParent {
			parent, _ := g.windows.GetByID(win.parentID)
			pp := parent.pair()
			var siblingID uint32
			var hasSibling bool
			if pp.Child1ID == win.ID() {
				siblingID, hasSibling = pp.Child2ID, pp.hasChild2
			} else {
				siblingID, hasSibling = pp.Child1ID, pp.hasChild1
			}

			grandParentID, hadGrandParent := parent.parentID, parent.hasParent
			box := parent.box

			if hasSibling {
				sibling, _ := g.windows.GetByID(siblingID)
				sibling.hasParent, sibling.parentID = hadGrandParent, grandParentID
				if hadGrandParent {
					gp, _ := g.windows.GetByID(grandParentID)
					gpp := gp.pair()
					if gpp.Child1ID == parent.ID() {
						gpp.Child1ID = siblingID
					} else {
						gpp.Child2ID = siblingID
					}
				} else {
					g.rootWindowID = siblingID
				}
				g.windowsChanged = true
				_ = g.rearrangeWindow(siblingID, box)
			}
			g.windows.Unregister(parent)
		} else {
			g.hasRoot = false
		}
		g.windows.Unregister(win)
	}
	return counts
}

func (g *GlkApi) nullCurrentStreamIfMatches(streamID uint32) {
	if g.hasCurrentStream && g.currentStreamID == streamID {
		g.hasCurrentStream = false
	}
}

// SetWindowArrangement implements glk_window_set_arrangement.
func (g *GlkApi) SetWindowArrangement(pairID uint32, method WinMethod, size uint32, keyID uint32, hasKey bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	win, ok := g.windows.GetByID(pairID)
	if !ok || win.WinType != WintypePair {
		return ErrNotPairWindow
	}
	p := win.pair()

	newKeyID := p.KeyID
	if hasKey {
		keyWin, ok := g.windows.GetByID(keyID)
		if !ok {
			return ErrInvalidReference
		}
		if keyWin.WinType == WintypePair {
			return ErrKeywinCantBePair
		}
		if !g.isDescendant(keyWin.ID(), pairID) {
			return ErrKeywinMustBeDescendant
		}
		newKeyID = keyWin.ID()
	}

	newDir := method.Direction()
	if newDir.Vertical() != p.Dir.Vertical() {
		return ErrCannotChangeSplitDirection
	}

	newBackward := method.Backward()
	if newBackward != p.Backward {
		p.Child1ID, p.Child2ID = p.Child2ID, p.Child1ID
	}

	p.KeyID = newKeyID
	p.Dir = newDir
	p.Fixed = method.Division() == WinMethodFixed
	p.Border = method.Border()
	p.Size = size
	p.Backward = newBackward
	p.Vertical = newDir.Vertical()

	g.windowsChanged = true
	return g.rearrangeWindow(pairID, win.box)
}

// isDescendant reports whether candidateID is ancestorID itself or appears
// anywhere within the subtree rooted at ancestorID.
func (g *GlkApi) isDescendant(candidateID, ancestorID uint32) bool {
	if candidateID == ancestorID {
		return true
	}
	win, ok := g.windows.GetByID(ancestorID)
	if !ok || win.WinType != WintypePair {
		return false
	}
	p := win.pair()
	return g.isDescendant(candidateID, p.Child1ID) || g.isDescendant(candidateID, p.Child2ID)
}

// --- Stylehints ---

// StylehintSet implements glk_stylehint_set. The CSS selector
// (.Style_{name}) is built later by stylehintsSnapshot; page-margin
// linkage applies only to (Normal, BackColor).
func (g *GlkApi) StylehintSet(wintype WinType, style Style, hint string, value string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stylehints[stylehintKey{wintype, style, hint}] = value
	if style == StyleNormal && hint == "BackColor" {
		g.pageMarginBG = value
		g.pageMarginSource = marginSourceStylehint
	}
}

// StylehintClear implements glk_stylehint_clear.
func (g *GlkApi) StylehintClear(wintype WinType, style Style, hint string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.stylehints, stylehintKey{wintype, style, hint})
	if style == StyleNormal && hint == "BackColor" && g.pageMarginSource == marginSourceStylehint {
		// §4.2: clearing the stylehint source keeps whatever the other
		// source (zcolor) last set; if neither was ever set, no margin.
		g.pageMarginSource = marginSourceNone
	}
}

// SetZColors implements garglk_set_zcolors(_stream): the second
// page-margin colour source (§4.2).
func (g *GlkApi) SetZColors(winID uint32, bg string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pageMarginBG = bg
	g.pageMarginSource = marginSourceZColor
}

// --- Current stream ---

// SetCurrentStream implements glk_stream_set_current.
func (g *GlkApi) SetCurrentStream(streamID uint32, has bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.currentStreamID, g.hasCurrentStream = streamID, has
}

// CurrentStream implements glk_stream_get_current.
func (g *GlkApi) CurrentStream() (uint32, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.currentStreamID, g.hasCurrentStream
}

// --- Exit ---

// Exit implements glk_exit: the terminal suspension point of §5. It
// deletes temp files and emits one final update.
func (g *GlkApi) Exit() error {
	g.mu.Lock()
	g.exited = true
	for _, path := range g.tempFiles {
		_ = g.host.FileDelete(path)
	}
	g.mu.Unlock()
	_, err := g.Select()
	return err
}
