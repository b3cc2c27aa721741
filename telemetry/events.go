// Package telemetry provides ecosystem health tracking, bookmarking, and lifetime records.
package telemetry

// EventType identifies telemetry events.
type EventType uint8

const (
	EventBirth EventType = iota
	EventDeath
	EventForage
	EventPairing
	EventMutation
	EventProduce
)

func (t EventType) String() string {
	switch t {
	case EventBirth:
		return "birth"
	case EventDeath:
		return "death"
	case EventForage:
		return "forage"
	case EventPairing:
		return "pairing"
	case EventMutation:
		return "mutation"
	case EventProduce:
		return "produce"
	}
	return "unknown"
}

// DeathCause records why an organism died.
type DeathCause uint8

const (
	CauseExternal   DeathCause = iota // killed by the host or a tool
	CauseStarvation                   // food reached zero
	CauseOldAge                       // age reached the max_age trait
)

func (c DeathCause) String() string {
	switch c {
	case CauseStarvation:
		return "starvation"
	case CauseOldAge:
		return "old_age"
	}
	return "external"
}

// Event represents a single telemetry event. Behaviors emit events without a tick;
// the arena stamps Tick when it records them.
type Event struct {
	Type     EventType
	Tick     int64
	EntityID uint32
	Kind     int32

	// Optional fields depending on event type
	TargetID uint32     // pairing partner
	Amount   float64    // food eaten, resources produced
	Cause    DeathCause // death events
	Trait    string     // mutation events: the perturbed trait key
}

// NewBirthEvent creates a birth event. The child's ID is assigned on commit, so a
// birth is attributed to its parent.
func NewBirthEvent(parentID uint32, kind int32) Event {
	return Event{Type: EventBirth, EntityID: parentID, Kind: kind}
}

// NewDeathEvent creates a death event.
func NewDeathEvent(entityID uint32, kind int32, cause DeathCause) Event {
	return Event{Type: EventDeath, EntityID: entityID, Kind: kind, Cause: cause}
}

// NewForageEvent creates a foraging event.
func NewForageEvent(entityID uint32, kind int32, amount float64) Event {
	return Event{Type: EventForage, EntityID: entityID, Kind: kind, Amount: amount}
}

// NewPairingEvent records two fertile organisms resetting each other.
func NewPairingEvent(entityID, partnerID uint32, kind int32) Event {
	return Event{Type: EventPairing, EntityID: entityID, Kind: kind, TargetID: partnerID}
}

// NewMutationEvent records a spontaneous trait mutation.
func NewMutationEvent(entityID uint32, kind int32, trait string) Event {
	return Event{Type: EventMutation, EntityID: entityID, Kind: kind, Trait: trait}
}

// NewProduceEvent records resources emitted by a producer.
func NewProduceEvent(entityID uint32, count int) Event {
	return Event{Type: EventProduce, EntityID: entityID, Amount: float64(count)}
}
