package telemetry

import "testing"

func hasBookmark(bookmarks []Bookmark, typ BookmarkType) bool {
	for _, bm := range bookmarks {
		if bm.Type == typ {
			return true
		}
	}
	return false
}

func TestBookmarkDetector_PopulationCrash(t *testing.T) {
	bd := NewBookmarkDetector(10, 50, 100)

	// Build up population
	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{WindowEndTick: int64(i * 600), Organisms: 100})
	}

	crash := WindowStats{WindowEndTick: 3000, Organisms: 40} // 60% drop
	bookmarks := bd.Check(crash)
	if !hasBookmark(bookmarks, BookmarkPopulationCrash) {
		t.Fatal("expected population_crash bookmark")
	}

	// Peak resets, so a further small dip is not another crash.
	if hasBookmark(bd.Check(WindowStats{WindowEndTick: 3600, Organisms: 35}), BookmarkPopulationCrash) {
		t.Error("expected no second crash after peak reset")
	}
}

func TestBookmarkDetector_SmallDropIsNotCrash(t *testing.T) {
	bd := NewBookmarkDetector(10, 50, 100)
	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{WindowEndTick: int64(i * 600), Organisms: 100})
	}
	if hasBookmark(bd.Check(WindowStats{WindowEndTick: 3000, Organisms: 70}), BookmarkPopulationCrash) {
		t.Error("30% drop should not trigger a 50% crash threshold")
	}
}

func TestBookmarkDetector_PopulationBoom(t *testing.T) {
	bd := NewBookmarkDetector(10, 50, 100)

	for i := 0; i < 3; i++ {
		bd.Check(WindowStats{WindowEndTick: int64(i * 600), Organisms: 10})
	}

	bookmarks := bd.Check(WindowStats{WindowEndTick: 2400, Organisms: 30}) // 3x trough
	if !hasBookmark(bookmarks, BookmarkPopulationBoom) {
		t.Error("expected population_boom bookmark")
	}
}

func TestBookmarkDetector_Extinction(t *testing.T) {
	bd := NewBookmarkDetector(10, 50, 100)

	bd.Check(WindowStats{WindowEndTick: 600, Organisms: 4})
	bookmarks := bd.Check(WindowStats{WindowEndTick: 1200, Organisms: 0})
	if !hasBookmark(bookmarks, BookmarkExtinction) {
		t.Fatal("expected extinction bookmark")
	}

	// Staying extinct does not retrigger.
	if hasBookmark(bd.Check(WindowStats{WindowEndTick: 1800, Organisms: 0}), BookmarkExtinction) {
		t.Error("extinction should only trigger on the transition")
	}
}

func TestBookmarkDetector_StableEcosystem(t *testing.T) {
	bd := NewBookmarkDetector(10, 50, 100)

	triggered := 0
	for i := 0; i < 12; i++ {
		bookmarks := bd.Check(WindowStats{WindowEndTick: int64(i * 600), Organisms: 100})
		if hasBookmark(bookmarks, BookmarkStableEcosystem) {
			triggered++
		}
	}
	if triggered != 1 {
		t.Errorf("stable_ecosystem triggered %d times, want exactly 1", triggered)
	}
}

func TestBookmarkDetector_FirstWindowSilent(t *testing.T) {
	bd := NewBookmarkDetector(10, 50, 100)
	if got := bd.Check(WindowStats{Organisms: 0}); len(got) != 0 {
		t.Errorf("first window produced bookmarks: %v", got)
	}
}
