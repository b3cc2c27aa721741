package game

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/petri/components"
	"github.com/pthm-cable/petri/genome"
	"github.com/pthm-cable/petri/storage"
	"github.com/pthm-cable/petri/systems"
	"github.com/pthm-cable/petri/telemetry"
)

// SavePopulation writes every organism, one encoded line each, to the named document.
func (a *Arena) SavePopulation(ctx context.Context, store storage.Store, name string) error {
	var b strings.Builder
	n := 0
	for _, e := range a.orgList {
		body, org := a.organisms.Get(e)
		if body.IsMarkedToDelete() {
			continue
		}
		b.WriteString(genome.Encode(&components.Specimen{Body: *body, Organism: *org}))
		b.WriteByte('\n')
		n++
	}
	if err := store.WriteText(ctx, name, b.String()); err != nil {
		return fmt.Errorf("save population %s: %w", name, err)
	}
	slog.Info("population saved", "name", name, "organisms", n)
	return nil
}

// LoadPopulation reads the named document and inserts one organism per line. Blank
// lines are skipped. Every line is decoded before anything is inserted, so a malformed
// document leaves the arena untouched. Returns the number of organisms inserted.
func (a *Arena) LoadPopulation(ctx context.Context, store storage.Store, name string) (int, error) {
	text, err := store.ReadText(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("load population %s: %w", name, err)
	}
	specimens, err := decodeLines(text)
	if err != nil {
		return 0, fmt.Errorf("load population %s: %w", name, err)
	}
	for _, s := range specimens {
		a.InsertOrganism(s)
	}
	slog.Info("population loaded", "name", name, "organisms", len(specimens))
	return len(specimens), nil
}

func decodeLines(text string) ([]components.Specimen, error) {
	var out []components.Specimen
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		s, err := genome.Decode(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		out = append(out, s)
	}
	return out, nil
}

// Restore replaces the arena's contents with a snapshot. The snapshot is fully
// decoded before the current state is discarded.
func (a *Arena) Restore(snap *telemetry.Snapshot) error {
	if a.ticking {
		return fmt.Errorf("restore during tick")
	}
	specimens := make([]components.Specimen, len(snap.Organisms))
	for i, o := range snap.Organisms {
		s, err := genome.Decode(o.Line)
		if err != nil {
			return fmt.Errorf("restore organism %d: %w", i, err)
		}
		specimens[i] = s
	}

	a.clear()
	a.tick = snap.Tick
	a.temperature.Set(snap.Temperature)
	a.radiation.Set(snap.Radiation)
	a.feedRate.Set(snap.FeedRate)

	for i, s := range specimens {
		e := a.insertOrganism(s)
		if stats := snap.Organisms[i].Lifetime.FromJSON(); stats != nil {
			a.lifetimes.Set(a.orgMap.Get(e).ID, stats)
		}
	}
	for _, r := range snap.Resources {
		body := components.NewBody(r2.Vec{X: r.X, Y: r.Y}, r.Radius, systems.ResourceColor())
		a.insertResource(body, components.ResourceOrigin(r.Origin))
	}

	slog.Info("snapshot restored",
		"tick", snap.Tick,
		"organisms", len(snap.Organisms),
		"resources", len(snap.Resources),
	)
	return nil
}

// clear removes every entity and resets per-organism bookkeeping.
func (a *Arena) clear() {
	for _, e := range a.orgList {
		a.world.RemoveEntity(e)
	}
	for _, e := range a.resList {
		a.world.RemoveEntity(e)
	}
	a.orgList = a.orgList[:0]
	a.resList = a.resList[:0]
	clear(a.pendingOrgs)
	a.pendingOrgs = a.pendingOrgs[:0]
	a.pendingRes = a.pendingRes[:0]
	a.lifetimes = telemetry.NewLifetimeTracker()
	a.feedAccum = 0
	a.nextID = 1
	a.gridDirty = true
}
