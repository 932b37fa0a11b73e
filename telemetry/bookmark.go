package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkStrengthSpike BookmarkType = "strength_spike"
	BookmarkFieldCollapse BookmarkType = "field_collapse"
	BookmarkFlipStorm     BookmarkType = "flip_storm"
	BookmarkSettled       BookmarkType = "settled"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type" json:"type"`
	Frame       int64        `csv:"frame" json:"frame"`
	Description string       `csv:"description" json:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"frame", b.Frame,
		"description", b.Description,
	)
}

// settledWindows is how many edit-free windows after an edit count as settled.
const settledWindows = 5

// BookmarkDetector detects interesting moments in the session.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	quietWindows int  // consecutive windows without edits
	editedSince  bool // an edit happened since the last settled bookmark
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < settledWindows {
		historySize = settledWindows
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if bd.historyFull || bd.historyIdx > 0 {
		// Strength spike: peak > 2x rolling average peak
		if b := bd.checkStrengthSpike(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}

		// Field collapse: zero-field tracers appear after a window without any
		if b := bd.checkFieldCollapse(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	// Flip storm: many flips in one window
	if b := bd.checkFlipStorm(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	// Settled: scene left alone for several windows after being edited
	if b := bd.checkSettled(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	bd.addToHistory(stats)

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

// last returns the most recently added window.
func (bd *BookmarkDetector) last() WindowStats {
	idx := (bd.historyIdx - 1 + bd.historySize) % bd.historySize
	return bd.history[idx]
}

func (bd *BookmarkDetector) checkStrengthSpike(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 || stats.Particles == 0 {
		return nil
	}

	var total float64
	for _, h := range history {
		total += h.PeakStrength
	}
	avg := total / float64(len(history))
	if avg == 0 {
		return nil
	}

	if stats.PeakStrength > avg*2.0 {
		return &Bookmark{
			Type:        BookmarkStrengthSpike,
			Frame:       stats.WindowEndFrame,
			Description: fmt.Sprintf("Peak strength %.3g is %.1fx average (%.3g)", stats.PeakStrength, stats.PeakStrength/avg, avg),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkFieldCollapse(stats WindowStats) *Bookmark {
	if stats.ZeroFrames == 0 || bd.last().ZeroFrames > 0 {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkFieldCollapse,
		Frame:       stats.WindowEndFrame,
		Description: fmt.Sprintf("%d of %d tracers read a zero field", stats.ZeroField, stats.Particles),
	}
}

func (bd *BookmarkDetector) checkFlipStorm(stats WindowStats) *Bookmark {
	if stats.Flips < 4 {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkFlipStorm,
		Frame:       stats.WindowEndFrame,
		Description: fmt.Sprintf("%d polarity flips in one window", stats.Flips),
	}
}

func (bd *BookmarkDetector) checkSettled(stats WindowStats) *Bookmark {
	if stats.Edits() > 0 {
		bd.quietWindows = 0
		bd.editedSince = true
		return nil
	}

	bd.quietWindows++
	if bd.editedSince && bd.quietWindows == settledWindows { // trigger exactly once
		bd.editedSince = false
		return &Bookmark{
			Type:        BookmarkSettled,
			Frame:       stats.WindowEndFrame,
			Description: fmt.Sprintf("Scene unchanged for %d windows, strength %.3g..%.3g", settledWindows, stats.MinStrength, stats.MaxStrength),
		}
	}

	return nil
}
