package game

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"slices"
	"testing"
	"time"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/petri/camera"
	"github.com/pthm-cable/petri/components"
	"github.com/pthm-cable/petri/config"
	"github.com/pthm-cable/petri/genome"
	"github.com/pthm-cable/petri/storage/filestore"
	"github.com/pthm-cable/petri/systems"
)

func newTestArena(t *testing.T, empty bool) *Arena {
	t.Helper()
	return NewArena(config.MustLoad(""), Options{Seed: 42, Empty: empty})
}

func specimenAt(a *Arena, x, y float64) components.Specimen {
	return systems.NewSpecimen(a.cfg, a.rng, r2.Vec{X: x, Y: y})
}

func runTicks(a *Arena, n int) {
	dt := a.cfg.Derived.TickDuration
	for range n {
		a.Tick(dt)
	}
}

func TestInsertOutsideTickIsImmediate(t *testing.T) {
	a := newTestArena(t, true)

	e := a.InsertOrganism(specimenAt(a, 10, 10))
	if e == (ecs.Entity{}) {
		t.Fatal("expected a live entity outside a tick")
	}
	if got := a.OrganismCount(); got != 1 {
		t.Errorf("OrganismCount = %d, want 1", got)
	}
	if got := a.State(e); got != components.StateActive {
		t.Errorf("State = %v, want active", got)
	}
}

func TestInsertDuringTickIsDeferred(t *testing.T) {
	a := newTestArena(t, true)
	a.ticking = true

	if e := a.InsertOrganism(specimenAt(a, 10, 10)); e != (ecs.Entity{}) {
		t.Errorf("expected zero entity during a tick, got %v", e)
	}
	if e := a.InsertResource(components.NewBody(r2.Vec{X: 5, Y: 5}, 4, systems.ResourceColor()), components.OriginSpawn); e != (ecs.Entity{}) {
		t.Errorf("expected zero entity during a tick, got %v", e)
	}
	if a.OrganismCount() != 0 || a.ResourceCount() != 0 {
		t.Fatalf("counts = %d/%d before commit, want 0/0", a.OrganismCount(), a.ResourceCount())
	}

	a.ticking = false
	a.commit()
	if a.OrganismCount() != 1 || a.ResourceCount() != 1 {
		t.Errorf("counts = %d/%d after commit, want 1/1", a.OrganismCount(), a.ResourceCount())
	}
}

func TestCompactPreservesOrder(t *testing.T) {
	a := newTestArena(t, true)

	var all []ecs.Entity
	for i := range 5 {
		all = append(all, a.InsertOrganism(specimenAt(a, float64(i*10), 10)))
	}
	for _, i := range []int{1, 3} {
		body, _ := a.organisms.Get(all[i])
		body.MarkToDelete()
	}

	a.Compact()

	want := []ecs.Entity{all[0], all[2], all[4]}
	if !slices.Equal(a.Organisms(), want) {
		t.Errorf("Organisms = %v, want %v", a.Organisms(), want)
	}
	for _, i := range []int{1, 3} {
		if a.world.Alive(all[i]) {
			t.Errorf("entity %d still alive after compaction", i)
		}
		if got := a.State(all[i]); got != components.StateRemoved {
			t.Errorf("State(%d) = %v, want removed", i, got)
		}
	}
}

func TestTickIsDeterministic(t *testing.T) {
	cfg := config.MustLoad("")
	a := NewArena(cfg, Options{Seed: 7})
	b := NewArena(cfg, Options{Seed: 7})

	runTicks(a, 300)
	runTicks(b, 300)

	if a.CurrentTick() != 300 {
		t.Fatalf("CurrentTick = %d, want 300", a.CurrentTick())
	}
	va := a.Views(nil)
	vb := b.Views(nil)
	if !slices.Equal(va, vb) {
		t.Errorf("arenas with the same seed diverged: %d vs %d views", len(va), len(vb))
	}
}

func TestFeedRate(t *testing.T) {
	tests := []struct {
		name    string
		rate    float64
		wantAny bool
	}{
		{"zero disables spawning", 0, false},
		{"positive rate spawns", 10, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestArena(t, true)
			a.SetFeedRate(tt.rate)
			for range 10 {
				a.Tick(time.Second)
			}
			got := a.ResourceCount()
			if tt.wantAny && got == 0 {
				t.Error("expected resources to spawn")
			}
			if !tt.wantAny && got != 0 {
				t.Errorf("ResourceCount = %d, want 0", got)
			}
			if got > int(tt.rate*10) {
				t.Errorf("ResourceCount = %d, more than rate allows", got)
			}
		})
	}
}

func TestFreezeSuspendsRoles(t *testing.T) {
	a := newTestArena(t, true)
	a.SetFeedRate(0)
	e := a.InsertOrganism(specimenAt(a, 500, 300))

	if !a.Freeze(e) {
		t.Fatal("Freeze returned false for a living organism")
	}
	if got := a.State(e); got != components.StateFrozen {
		t.Fatalf("State = %v, want frozen", got)
	}

	before, _ := a.Specimen(e)
	runTicks(a, 30)
	after, _ := a.Specimen(e)
	if before.Body.Pos != after.Body.Pos || before.Organism.Food != after.Organism.Food {
		t.Error("frozen organism changed during ticks")
	}

	a.Unfreeze(e)
	if got := a.State(e); got != components.StateActive {
		t.Errorf("State = %v after unfreeze, want active", got)
	}
}

func TestKill(t *testing.T) {
	a := newTestArena(t, true)
	a.SetFeedRate(0)
	e := a.InsertOrganism(specimenAt(a, 500, 300))

	if !a.Kill(e) {
		t.Fatal("Kill returned false for a living organism")
	}
	if got := a.State(e); got != components.StateDead {
		t.Errorf("State = %v, want dead", got)
	}
	// newborn size 20 over 10 per resource
	if got := a.ResourceCount(); got != 2 {
		t.Errorf("carcass resources = %d, want 2", got)
	}
	if a.Kill(e) {
		t.Error("killing a dead organism should do nothing")
	}
	if a.Freeze(e) {
		t.Error("dead organisms cannot be frozen")
	}
	if got := a.ResourceCount(); got != 2 {
		t.Errorf("resources = %d after second kill, want 2", got)
	}
}

func TestNearbyResourcesIsSuperset(t *testing.T) {
	a := newTestArena(t, true)
	rng := rand.New(rand.NewSource(3))
	e := a.InsertOrganism(specimenAt(a, 640, 360))

	for range 400 {
		pos := r2.Vec{X: rng.Float64() * 1280, Y: rng.Float64() * 720}
		a.InsertResource(components.NewBody(pos, 2+rng.Float64()*30, systems.ResourceColor()), components.OriginSpawn)
	}

	nearby := a.NearbyResources(e)
	orgBody, _ := a.organisms.Get(e)
	overlaps := 0
	for _, r := range a.Resources() {
		body, _ := a.resources.Get(r)
		if !orgBody.Collides(body) {
			continue
		}
		overlaps++
		if !slices.Contains(nearby, r) {
			t.Errorf("overlapping resource %v missing from NearbyResources", r)
		}
	}
	if overlaps == 0 {
		t.Fatal("test setup produced no overlaps")
	}

	if got := a.NearbyResources(ecs.Entity{}); got != nil {
		t.Errorf("NearbyResources of unknown entity = %v, want nil", got)
	}
}

func TestPlaceClampsToArena(t *testing.T) {
	a := newTestArena(t, true)
	e := a.InsertOrganism(specimenAt(a, 10, 10))

	if !a.Place(e, r2.Vec{X: -50, Y: 5000}) {
		t.Fatal("Place returned false")
	}
	s, _ := a.Specimen(e)
	if want := (r2.Vec{X: 0, Y: 720}); s.Body.Pos != want {
		t.Errorf("Pos = %v, want %v", s.Body.Pos, want)
	}
	if a.Place(ecs.Entity{}, r2.Vec{}) {
		t.Error("Place on unknown entity should fail")
	}
}

func TestOrganismAtPicksClosest(t *testing.T) {
	a := newTestArena(t, true)
	near := a.InsertOrganism(specimenAt(a, 100, 100))
	a.InsertOrganism(specimenAt(a, 200, 100))
	cam := camera.New(1280, 720, 1280, 720)

	got, ok := a.OrganismAt(cam.ScreenToWorld(r2.Vec{X: 125, Y: 100}), 10)
	if !ok || got != near {
		t.Errorf("OrganismAt = %v, %v; want %v", got, ok, near)
	}
	if _, ok := a.OrganismAt(r2.Vec{X: 600, Y: 600}, 10); ok {
		t.Error("expected no organism far from every body")
	}
}

func TestSaveLoadPopulation(t *testing.T) {
	store, err := filestore.Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	src := newTestArena(t, false)
	runTicks(src, 20)
	if err := src.SavePopulation(ctx, store, "pop"); err != nil {
		t.Fatalf("SavePopulation: %v", err)
	}

	dst := newTestArena(t, true)
	n, err := dst.LoadPopulation(ctx, store, "pop")
	if err != nil {
		t.Fatalf("LoadPopulation: %v", err)
	}
	if n != src.OrganismCount() || dst.OrganismCount() != n {
		t.Fatalf("loaded %d organisms (arena has %d), want %d", n, dst.OrganismCount(), src.OrganismCount())
	}
	for i := range n {
		want, _ := src.Specimen(src.Organisms()[i])
		got, _ := dst.Specimen(dst.Organisms()[i])
		if genome.Encode(&got) != genome.Encode(&want) {
			t.Errorf("organism %d differs after round trip", i)
		}
	}
}

func TestLoadPopulationErrors(t *testing.T) {
	store, err := filestore.Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	a := newTestArena(t, true)
	good := specimenAt(a, 10, 10)
	text := genome.Encode(&good) + "\n\nOrganism-> Sz:{1, 2\n"
	if err := store.WriteText(ctx, "bad", text); err != nil {
		t.Fatal(err)
	}

	if _, err := a.LoadPopulation(ctx, store, "bad"); !errors.Is(err, genome.ErrFormat) {
		t.Errorf("err = %v, want ErrFormat", err)
	}
	if a.OrganismCount() != 0 {
		t.Errorf("malformed document inserted %d organisms", a.OrganismCount())
	}

	if _, err := a.LoadPopulation(ctx, store, "missing"); err == nil {
		t.Error("expected error for missing document")
	}
}

func TestSnapshotRestore(t *testing.T) {
	src := newTestArena(t, false)
	runTicks(src, 50)
	snap := src.Snapshot(nil)

	dst := newTestArena(t, false)
	if err := dst.Restore(snap); err != nil {
		t.Fatalf("Restore: %v", err)
	}

	if dst.CurrentTick() != src.CurrentTick() {
		t.Errorf("tick = %d, want %d", dst.CurrentTick(), src.CurrentTick())
	}
	again := dst.Snapshot(nil)
	if len(again.Organisms) != len(snap.Organisms) {
		t.Fatalf("organisms = %d, want %d", len(again.Organisms), len(snap.Organisms))
	}
	for i := range snap.Organisms {
		if again.Organisms[i].Line != snap.Organisms[i].Line {
			t.Errorf("organism %d line differs after restore", i)
		}
	}
	if !slices.Equal(again.Resources, snap.Resources) {
		t.Errorf("resources differ after restore")
	}
}

func TestReseedTopsUpPopulation(t *testing.T) {
	a := newTestArena(t, true)
	a.tick = reseedGraceTicks + 1
	a.InsertOrganism(specimenAt(a, 10, 10))

	a.reseedIfNeeded()

	if got, want := a.LivingCount(), a.cfg.Population.ReseedThreshold; got != want {
		t.Errorf("living = %d, want %d", got, want)
	}
}

func TestEnvironmentBounds(t *testing.T) {
	a := newTestArena(t, true)

	a.SetTemperature(1000)
	if got := a.Temperature(); got != 100 {
		t.Errorf("Temperature = %v, want clamped 100", got)
	}

	a.SetEnvironmentBounds(-10, 10, 0, 20)
	if got := a.Temperature(); got != 10 {
		t.Errorf("Temperature = %v after narrowing, want 10", got)
	}
	if got := a.Radiation(); got != 20 {
		t.Errorf("Radiation = %v after narrowing, want 20", got)
	}
}

func TestInsertedDeadOrganismOnlyDecays(t *testing.T) {
	tests := []struct {
		name  string
		build func(t *testing.T, a *Arena) components.Specimen
	}{
		{"decoded dead", func(t *testing.T, a *Arena) components.Specimen {
			return mustDecode(t, "Organism-> Lv:0 Ps:{100, 100} Sz:10 Fd:40")
		}},
		{"decoded dead and frozen", func(t *testing.T, a *Arena) components.Specimen {
			return mustDecode(t, "Organism-> Lv:0 Fz:1 Ps:{100, 100} Sz:10 Fd:40 Rl:{11}")
		}},
		{"built dead and frozen", func(t *testing.T, a *Arena) components.Specimen {
			s := specimenAt(a, 100, 100)
			s.Organism.Food = 40
			s.Organism.Alive = false
			s.Organism.Frozen = true
			return s
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestArena(t, true)
			a.SetFeedRate(0)
			e := a.InsertOrganism(tt.build(t, a))
			a.InsertResource(components.NewBody(r2.Vec{X: 100, Y: 100}, 5, systems.ResourceColor()), components.OriginSpawn)

			runTicks(a, 5)
			s, _ := a.Specimen(e)
			if a.State(e) != components.StateDead || s.Organism.Frozen {
				t.Fatalf("state = %v frozen = %v, want dead and unfrozen", a.State(e), s.Organism.Frozen)
			}
			if !slices.Equal(s.Organism.Roles, []components.Role{components.RoleDecay}) {
				t.Errorf("roles = %v, want [decay]", s.Organism.Roles)
			}
			if s.Organism.Food != 40 || a.ResourceCount() != 1 {
				t.Errorf("dead organism fed: food = %v resources = %d", s.Organism.Food, a.ResourceCount())
			}
			if a.Unfreeze(e) {
				t.Error("Unfreeze succeeded on a dead organism")
			}

			// Opacity 1 fades at 0.5 per second.
			runTicks(a, 130)
			if got := a.State(e); got != components.StateRemoved {
				t.Errorf("State = %v after decay, want removed", got)
			}
		})
	}
}

func mustDecode(t *testing.T, line string) components.Specimen {
	t.Helper()
	s, err := genome.Decode(line)
	if err != nil {
		t.Fatalf("Decode(%q): %v", line, err)
	}
	return s
}

func TestVisibleViewsCullsOffscreen(t *testing.T) {
	a := newTestArena(t, true)
	a.InsertOrganism(specimenAt(a, 640, 360))
	a.InsertOrganism(specimenAt(a, 100, 100))
	a.InsertResource(components.NewBody(r2.Vec{X: 650, Y: 370}, 4, systems.ResourceColor()), components.OriginSpawn)
	a.InsertResource(components.NewBody(r2.Vec{X: 1200, Y: 700}, 4, systems.ResourceColor()), components.OriginSpawn)

	cam := camera.New(1280, 720, 1280, 720)
	if got := len(a.VisibleViews(cam, nil)); got != 4 {
		t.Fatalf("visible at fit zoom = %d, want 4", got)
	}

	cam.SetZoom(4)
	views := a.VisibleViews(cam, nil)
	if len(views) != 2 {
		t.Fatalf("visible at zoom 4 = %d, want 2", len(views))
	}
	if views[0].Organism || views[0].Pos != (r2.Vec{X: 650, Y: 370}) {
		t.Errorf("first view = %+v, want the centre resource", views[0])
	}
	if !views[1].Organism || views[1].Pos != (r2.Vec{X: 640, Y: 360}) {
		t.Errorf("second view = %+v, want the centre organism", views[1])
	}
	if got := len(a.Views(nil)); got != 4 {
		t.Errorf("Views = %d, want every entity", got)
	}
}

func TestOrganismIDsNeverWrapToZero(t *testing.T) {
	a := newTestArena(t, true)
	ids := make(map[uint32]bool)
	insert := func(s components.Specimen) {
		s2, _ := a.Specimen(a.InsertOrganism(s))
		id := s2.Organism.ID
		if id == 0 || ids[id] {
			t.Errorf("issued id %d (zero or duplicate)", id)
		}
		ids[id] = true
	}

	top := mustDecode(t, "Organism-> Id:4294967295 Ps:{10, 10} Sz:10")
	insert(top)
	if !ids[math.MaxUint32] {
		t.Errorf("free decoded id not kept: %v", ids)
	}
	insert(specimenAt(a, 20, 20))

	a.nextID = math.MaxUint32
	insert(specimenAt(a, 30, 30))
	insert(specimenAt(a, 40, 40))
}
