package glkapi

// rearrangeWindow recursively lays out the subtree rooted at winID within
// box, per §4.3. Grounded on remglk-rs's mod.rs rearrange_window.
func (g *GlkApi) rearrangeWindow(winID uint32, box Box) error {
	win, ok := g.windows.GetByID(winID)
	if !ok {
		return nil
	}
	win.box = box
	if win.WinType != WintypePair {
		g.resizeLeafWindow(win)
		return nil
	}
	pair := win.pair()

	key, ok := g.windows.GetByID(pair.KeyID)
	if !ok {
		return ErrInvalidReference
	}

	var splitSize float64
	if pair.Fixed {
		splitSize = g.keyUnitSize(key, pair)
	} else {
		span := box.Height()
		if !pair.Vertical {
			span = box.Width()
		}
		splitSize = float64(int(float64(pair.Size) * span / 100))
	}

	spacing := 0.0
	if pair.Border {
		spacing = g.splitSpacing(pair)
	}

	total := box.Height()
	if !pair.Vertical {
		total = box.Width()
	}
	maxSplit := total - spacing
	if maxSplit < 0 {
		maxSplit = 0
	}
	if splitSize < 0 {
		splitSize = 0
	}
	if splitSize > maxSplit {
		splitSize = maxSplit
	}

	// OpenWindow makes Child1/Child2 the split window and the new window
	// respectively; SetWindowArrangement swaps the two ids when the
	// backward flag changes. Here only the box each child receives flips
	// with direction. "Backward" (Above/Left) means child2 reads first, so
	// it gets the near (top/left) box measured from the start of the span;
	// otherwise (Below/Right) child2 gets the far box, measured back from
	// the end. Grounded on the
	// original's rearrange_window: it always computes box1 as the near
	// portion and box2 as the far portion, then swaps the pair only when
	// backward (_examples/original_source/remglk/src/glkapi/mod.rs
	// rearrange_window).
	var box1, box2 Box
	if pair.Vertical {
		var split float64
		if pair.Backward {
			split = box.Top + splitSize
		} else {
			split = box.Bottom - splitSize - spacing
		}
		box1 = Box{Left: box.Left, Right: box.Right, Top: box.Top, Bottom: split}
		box2 = Box{Left: box.Left, Right: box.Right, Top: split + spacing, Bottom: box.Bottom}
	} else {
		var split float64
		if pair.Backward {
			split = box.Left + splitSize
		} else {
			split = box.Right - splitSize - spacing
		}
		box1 = Box{Top: box.Top, Bottom: box.Bottom, Left: box.Left, Right: split}
		box2 = Box{Top: box.Top, Bottom: box.Bottom, Left: split + spacing, Right: box.Right}
	}
	if pair.Backward {
		box1, box2 = box2, box1
	}

	if err := g.rearrangeWindow(pair.Child1ID, box1); err != nil {
		return err
	}
	if err := g.rearrangeWindow(pair.Child2ID, box2); err != nil {
		return err
	}
	g.windowsChanged = true
	return nil
}

// keyUnitSize computes the fixed-division split size from the key
// window's type and per-type char metrics (§4.3).
func (g *GlkApi) keyUnitSize(key *Window, pair *pairWindowData) float64 {
	if pair.Size == 0 {
		return 0
	}
	m := g.metrics
	switch key.WinType {
	case WintypeBuffer:
		if pair.Vertical {
			return float64(pair.Size)*m.BufferCharHeight + m.BufferMarginTop + m.BufferMarginBottom
		}
		return float64(pair.Size)*m.BufferCharWidth + m.BufferMarginLeft + m.BufferMarginRight
	case WintypeGrid:
		if pair.Vertical {
			return float64(pair.Size)*m.GridCharHeight + m.GridMarginTop + m.GridMarginBottom
		}
		return float64(pair.Size)*m.GridCharWidth + m.GridMarginLeft + m.GridMarginRight
	case WintypeGraphics:
		margin := m.GraphicsMarginLeft + m.GraphicsMarginRight
		if pair.Vertical {
			margin = m.GraphicsMarginTop + m.GraphicsMarginBottom
		}
		return float64(pair.Size) + margin
	default:
		return float64(pair.Size)
	}
}

func (g *GlkApi) splitSpacing(pair *pairWindowData) float64 {
	if pair.Vertical {
		return g.metrics.InSpacingY
	}
	return g.metrics.InSpacingX
}

// resizeLeafWindow derives a text-grid window's row/column count from its
// box minus the grid margins and the grid char metrics (§4.2 "Resizing
// preserves neither content nor cursor"). The stored box itself is not
// clipped by margins for any window type. Only grid windows carry a
// character-cell dimension; buffer and graphics windows are left as they
// are.
func (g *GlkApi) resizeLeafWindow(win *Window) {
	if win.WinType != WintypeGrid {
		return
	}
	m := g.metrics
	contentW := win.box.Width() - m.GridMarginLeft - m.GridMarginRight
	contentH := win.box.Height() - m.GridMarginTop - m.GridMarginBottom
	width := 0
	if m.GridCharWidth > 0 && contentW > 0 {
		width = int(contentW / m.GridCharWidth)
	}
	height := 0
	if m.GridCharHeight > 0 && contentH > 0 {
		height = int(contentH / m.GridCharHeight)
	}

	gr := win.grid()
	if gr.height == height && gr.width == width {
		return
	}
	gr.resize(height, width)
}
