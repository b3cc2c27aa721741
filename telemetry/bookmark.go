package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkPopulationCrash BookmarkType = "population_crash"
	BookmarkPopulationBoom  BookmarkType = "population_boom"
	BookmarkExtinction      BookmarkType = "extinction"
	BookmarkStableEcosystem BookmarkType = "stable_ecosystem"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        int64        `csv:"tick"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in the simulation.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	crashFraction  float64 // population drop from peak that counts as a crash
	boomMultiplier float64 // growth over trough that counts as a boom

	// State tracking
	recentPeak         int // peak organism count since the last crash
	recentTrough       int // lowest organism count since the last boom
	stableWindowsCount int // consecutive windows with a stable population
}

// NewBookmarkDetector creates a detector with the given history size.
// crashDropPercent and boomGrowthPercent set the crash and boom thresholds.
func NewBookmarkDetector(historySize int, crashDropPercent, boomGrowthPercent float64) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5 // minimum for stable ecosystem detection
	}
	return &BookmarkDetector{
		history:        make([]WindowStats, historySize),
		historySize:    historySize,
		crashFraction:  crashDropPercent / 100,
		boomMultiplier: 1 + boomGrowthPercent/100,
		recentTrough:   -1,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if bd.historyFull || bd.historyIdx > 0 {
		if b := bd.checkExtinction(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkCrash(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkBoom(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkStableEcosystem(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	bd.addToHistory(stats)

	if stats.Organisms > bd.recentPeak {
		bd.recentPeak = stats.Organisms
	}
	if bd.recentTrough < 0 || stats.Organisms < bd.recentTrough {
		bd.recentTrough = stats.Organisms
	}

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

// getHistory returns the recorded windows, oldest first.
func (bd *BookmarkDetector) getHistory() []WindowStats {
	if !bd.historyFull {
		return bd.history[:bd.historyIdx]
	}
	out := make([]WindowStats, 0, bd.historySize)
	out = append(out, bd.history[bd.historyIdx:]...)
	return append(out, bd.history[:bd.historyIdx]...)
}

func (bd *BookmarkDetector) last() WindowStats {
	idx := bd.historyIdx - 1
	if idx < 0 {
		idx = bd.historySize - 1
	}
	return bd.history[idx]
}

func (bd *BookmarkDetector) checkExtinction(stats WindowStats) *Bookmark {
	if stats.Organisms > 0 || bd.last().Organisms == 0 {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkExtinction,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Population died out (was %d)", bd.last().Organisms),
	}
}

func (bd *BookmarkDetector) checkCrash(stats WindowStats) *Bookmark {
	if bd.recentPeak == 0 {
		return nil
	}

	dropFraction := 1.0 - float64(stats.Organisms)/float64(bd.recentPeak)
	if dropFraction > bd.crashFraction && stats.Organisms < bd.recentPeak-5 {
		// Reset peak after crash
		oldPeak := bd.recentPeak
		bd.recentPeak = stats.Organisms

		return &Bookmark{
			Type:        BookmarkPopulationCrash,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Population crashed %.0f%% from peak %d to %d", dropFraction*100, oldPeak, stats.Organisms),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkBoom(stats WindowStats) *Bookmark {
	if bd.recentTrough <= 0 {
		return nil
	}

	if float64(stats.Organisms) > float64(bd.recentTrough)*bd.boomMultiplier && stats.Organisms > bd.recentTrough+5 {
		// Reset trough after boom
		oldTrough := bd.recentTrough
		bd.recentTrough = stats.Organisms

		return &Bookmark{
			Type:        BookmarkPopulationBoom,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Population grew from %d to %d", oldTrough, stats.Organisms),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkStableEcosystem(stats WindowStats) *Bookmark {
	if stats.Organisms < 10 {
		bd.stableWindowsCount = 0
		return nil
	}

	history := bd.getHistory()
	if len(history) < 4 {
		return nil
	}

	recent := history[len(history)-4:]
	var sum float64
	for _, h := range recent {
		sum += float64(h.Organisms)
	}
	mean := sum / 4

	var variance float64
	for _, h := range recent {
		d := float64(h.Organisms) - mean
		variance += d * d
	}
	variance /= 4

	// Low variance: coefficient of variation < 20%
	cv2 := 0.0
	if mean > 0 {
		cv2 = variance / (mean * mean)
	}

	if cv2 < 0.04 {
		bd.stableWindowsCount++
	} else {
		bd.stableWindowsCount = 0
	}

	if bd.stableWindowsCount == 5 { // trigger exactly once at 5 windows
		return &Bookmark{
			Type:        BookmarkStableEcosystem,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Stable population of %d over 5+ windows", stats.Organisms),
		}
	}
	return nil
}
