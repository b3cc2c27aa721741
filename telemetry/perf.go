package telemetry

import (
	"log/slog"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Phase identifies a stage of the arena tick.
type Phase uint8

// Tick phases in execution order.
const (
	PhaseSpatialGrid Phase = iota
	PhaseBehavior
	PhaseSpawning
	PhaseCommit
	PhaseCompact
	PhaseTelemetry
	numPhases
)

var phaseNames = [numPhases]string{
	"spatial_grid", "behavior", "spawning", "commit", "compact", "telemetry",
}

func (p Phase) String() string {
	if p < numPhases {
		return phaseNames[p]
	}
	return "unknown"
}

type tickSample struct {
	total  time.Duration
	phases [numPhases]time.Duration
}

// PerfCollector times the phases of the most recent ticks in a fixed ring.
type PerfCollector struct {
	ring   []tickSample
	next   int
	filled int

	cur        tickSample
	tickStart  time.Time
	phaseStart time.Time
	phase      Phase
	inPhase    bool
}

// NewPerfCollector keeps the last window ticks. A window below one defaults to 60.
func NewPerfCollector(window int) *PerfCollector {
	if window < 1 {
		window = 60
	}
	return &PerfCollector{ring: make([]tickSample, window)}
}

// StartTick begins timing a tick.
func (p *PerfCollector) StartTick() {
	p.tickStart = time.Now()
	p.cur = tickSample{}
	p.inPhase = false
}

// StartPhase closes the running phase, if any, and starts timing ph.
func (p *PerfCollector) StartPhase(ph Phase) {
	now := time.Now()
	p.closePhase(now)
	p.phase, p.phaseStart, p.inPhase = ph, now, true
}

// EndTick closes the running phase and records the tick.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	p.closePhase(now)
	p.cur.total = now.Sub(p.tickStart)

	p.ring[p.next] = p.cur
	p.next = (p.next + 1) % len(p.ring)
	p.filled = min(p.filled+1, len(p.ring))
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.inPhase && p.phase < numPhases {
		p.cur.phases[p.phase] += now.Sub(p.phaseStart)
	}
	p.inPhase = false
}

// PerfStats summarizes the recorded ticks. PhasePct is each phase's share of the
// average tick, in percent.
type PerfStats struct {
	AvgTick        time.Duration
	MinTick        time.Duration
	MaxTick        time.Duration
	TicksPerSecond float64
	PhasePct       [numPhases]float64
}

// Stats aggregates the ring. It is the zero value until a tick has been recorded.
func (p *PerfCollector) Stats() PerfStats {
	if p.filled == 0 {
		return PerfStats{}
	}

	totals := make([]float64, p.filled)
	var phaseSum [numPhases]float64
	for i, s := range p.ring[:p.filled] {
		totals[i] = float64(s.total)
		for ph, d := range s.phases {
			phaseSum[ph] += float64(d)
		}
	}

	avg := stat.Mean(totals, nil)
	out := PerfStats{
		AvgTick: time.Duration(avg),
		MinTick: time.Duration(floats.Min(totals)),
		MaxTick: time.Duration(floats.Max(totals)),
	}
	if avg > 0 {
		out.TicksPerSecond = float64(time.Second) / avg
		for ph, sum := range phaseSum {
			out.PhasePct[ph] = sum / float64(p.filled) / avg * 100
		}
	}
	return out
}

// LogValue implements slog.LogValuer.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTick.Microseconds()),
		slog.Int64("min_tick_us", s.MinTick.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTick.Microseconds()),
		slog.Int("ticks_per_sec", int(s.TicksPerSecond)),
	}
	for ph, pct := range s.PhasePct {
		if pct > 0.1 {
			attrs = append(attrs, slog.Float64(Phase(ph).String()+"_pct", float64(int(pct*10))/10))
		}
	}
	return slog.GroupValue(attrs...)
}

// LogStats logs the summary at info level.
func (s PerfStats) LogStats() {
	slog.Info("perf", "perf", s)
}

// PerfStatsCSV is one row of perf.csv.
type PerfStatsCSV struct {
	WindowEnd      int64   `csv:"window_end"`
	AvgTickUS      int64   `csv:"avg_tick_us"`
	MinTickUS      int64   `csv:"min_tick_us"`
	MaxTickUS      int64   `csv:"max_tick_us"`
	TicksPerSec    float64 `csv:"ticks_per_sec"`
	SpatialGridPct float64 `csv:"spatial_grid_pct"`
	BehaviorPct    float64 `csv:"behavior_pct"`
	SpawningPct    float64 `csv:"spawning_pct"`
	CommitPct      float64 `csv:"commit_pct"`
	CompactPct     float64 `csv:"compact_pct"`
	TelemetryPct   float64 `csv:"telemetry_pct"`
}

// ToCSV flattens s for perf.csv.
func (s PerfStats) ToCSV(windowEnd int64) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:      windowEnd,
		AvgTickUS:      s.AvgTick.Microseconds(),
		MinTickUS:      s.MinTick.Microseconds(),
		MaxTickUS:      s.MaxTick.Microseconds(),
		TicksPerSec:    s.TicksPerSecond,
		SpatialGridPct: s.PhasePct[PhaseSpatialGrid],
		BehaviorPct:    s.PhasePct[PhaseBehavior],
		SpawningPct:    s.PhasePct[PhaseSpawning],
		CommitPct:      s.PhasePct[PhaseCommit],
		CompactPct:     s.PhasePct[PhaseCompact],
		TelemetryPct:   s.PhasePct[PhaseTelemetry],
	}
}
