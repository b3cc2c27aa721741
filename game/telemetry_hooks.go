package game

import (
	"log/slog"

	"github.com/pthm-cable/petri/components"
	"github.com/pthm-cable/petri/genome"
	"github.com/pthm-cable/petri/telemetry"
)

// flushTelemetry closes the stats window when it is due and handles bookmarks.
func (a *Arena) flushTelemetry() {
	if !a.collector.ShouldFlush(a.tick) {
		return
	}

	stats := a.collector.Flush(a.tick, a.samplePopulation())
	perfStats := a.perf.Stats()

	if a.statsCallback != nil {
		a.statsCallback(stats)
	}

	if a.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if a.output != nil {
		if err := a.output.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := a.output.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}

	for _, bm := range a.bookmarkDetector.Check(stats) {
		if a.logStats {
			bm.LogBookmark()
		}
		if a.output != nil {
			if err := a.output.WriteBookmark(bm); err != nil {
				slog.Error("failed to write bookmark", "error", err)
			}
		}
		if a.snapshotDir != "" {
			a.saveSnapshot(&bm)
		}
	}
}

// samplePopulation gathers the per-organism values the window statistics need.
func (a *Arena) samplePopulation() telemetry.PopulationSample {
	pop := telemetry.PopulationSample{
		Resources:   len(a.resList),
		Temperature: a.temperature.Get(),
		Radiation:   a.radiation.Get(),
	}
	for _, e := range a.orgList {
		body, org := a.organisms.Get(e)
		if !org.Alive {
			pop.Decaying++
			continue
		}
		pop.Organisms++
		if org.HasRole(components.RoleMakeFood) {
			pop.Producers++
		}
		pop.Food = append(pop.Food, org.Food)
		pop.Sizes = append(pop.Sizes, body.Radius)
		pop.Genes = append(pop.Genes, org.Genes)
	}
	return pop
}

// Snapshot captures the complete arena state. bookmark may be nil.
func (a *Arena) Snapshot(bookmark *telemetry.Bookmark) *telemetry.Snapshot {
	w, h := a.Size()
	snap := &telemetry.Snapshot{
		Version:     telemetry.SnapshotVersion,
		Seed:        a.seed,
		Width:       w,
		Height:      h,
		Tick:        a.tick,
		Temperature: a.temperature.Get(),
		Radiation:   a.radiation.Get(),
		FeedRate:    a.feedRate.Get(),
		Organisms:   make([]telemetry.OrganismState, 0, len(a.orgList)),
		Resources:   make([]telemetry.ResourceState, 0, len(a.resList)),
		Bookmark:    bookmark,
	}
	for _, e := range a.orgList {
		body, org := a.organisms.Get(e)
		snap.Organisms = append(snap.Organisms, telemetry.OrganismState{
			Line:     genome.Encode(&components.Specimen{Body: *body, Organism: *org}),
			Lifetime: a.lifetimes.Get(org.ID).ToJSON(),
		})
	}
	for _, e := range a.resList {
		body, res := a.resources.Get(e)
		snap.Resources = append(snap.Resources, telemetry.ResourceState{
			X:      body.Pos.X,
			Y:      body.Pos.Y,
			Radius: body.Radius,
			Origin: int(res.Origin),
		})
	}
	return snap
}

func (a *Arena) saveSnapshot(bm *telemetry.Bookmark) {
	path, err := telemetry.SaveSnapshot(a.Snapshot(bm), a.snapshotDir)
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}
	slog.Info("snapshot saved", "path", path, "bookmark", bm.Type)
}
