package observability

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// ObservationKind classifies a recorded non-fatal runtime event.
type ObservationKind string

const (
	KindUnhandled  ObservationKind = "unhandled"
	KindBadMessage ObservationKind = "bad_message"
	KindUnroutable ObservationKind = "unroutable"
)

// Observation is one recorded routing or decoding miss. The runtime's
// failure model (spec §7) never surfaces these to a sender — they exist
// purely for an operator to inspect after the fact.
type Observation struct {
	ActorID uint64
	Kind    ObservationKind
	Command string
	At      time.Time
}

// MetricsSink is the injected observability surface actors, supervisors and
// the executor report into. This replaces the global counters that the
// distilled design calls "a test harness artifact": every piece of runtime
// observability here is per-actor or per-executor and explicitly injected,
// never package-global state.
type MetricsSink interface {
	Unhandled(actorID uint64, command string)
	BadMessage(actorID uint64, command string)
	Unroutable(supervisorID, recipientID uint64)
	Dropped()
	Stolen(thiefDevice, victimDevice int)

	Count(name string) int64
	Recent(actorID uint64) []Observation
}

const defaultHistoryCapacity = 4096
const maxObservationsPerActor = 32

// sink is the default MetricsSink: atomic-ish counters behind a mutex, plus
// a bounded per-actor history kept in an LRU so memory stays flat
// regardless of how long the process runs or how many distinct actors have
// ever misrouted a message.
type sink struct {
	mu       sync.Mutex
	counters map[string]int64
	recent   *lru.Cache[uint64, []Observation]
	logger   Logger
}

// NewSink builds the default MetricsSink. logger may be nil, in which case
// observations are recorded but never logged.
func NewSink(logger Logger) MetricsSink {
	cache, err := lru.New[uint64, []Observation](defaultHistoryCapacity)
	if err != nil {
		// Only fails for a non-positive size, which defaultHistoryCapacity
		// never is.
		panic(err)
	}
	if logger == nil {
		logger = NopLogger{}
	}
	return &sink{counters: make(map[string]int64), recent: cache, logger: logger}
}

func (s *sink) record(actorID uint64, kind ObservationKind, command string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counters[string(kind)]++

	history, _ := s.recent.Get(actorID)
	history = append(history, Observation{ActorID: actorID, Kind: kind, Command: command, At: time.Now()})
	if len(history) > maxObservationsPerActor {
		history = history[len(history)-maxObservationsPerActor:]
	}
	s.recent.Add(actorID, history)
}

func (s *sink) Unhandled(actorID uint64, command string) {
	s.record(actorID, KindUnhandled, command)
	s.logger.Warnw("unhandled command", "actor", actorID, "command", command)
}

func (s *sink) BadMessage(actorID uint64, command string) {
	s.record(actorID, KindBadMessage, command)
	s.logger.Warnw("bad message payload", "actor", actorID, "command", command)
}

func (s *sink) Unroutable(supervisorID, recipientID uint64) {
	s.record(supervisorID, KindUnroutable, "")
	s.logger.Warnw("unroutable recipient", "supervisor", supervisorID, "recipient", recipientID)
}

func (s *sink) Dropped() {
	s.mu.Lock()
	s.counters["dropped"]++
	s.mu.Unlock()
}

func (s *sink) Stolen(thiefDevice, victimDevice int) {
	s.mu.Lock()
	s.counters["stolen"]++
	s.mu.Unlock()
	s.logger.Debugw("work stolen", "thief", thiefDevice, "victim", victimDevice)
}

func (s *sink) Count(name string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters[name]
}

func (s *sink) Recent(actorID uint64) []Observation {
	s.mu.Lock()
	defer s.mu.Unlock()
	history, _ := s.recent.Get(actorID)
	out := make([]Observation, len(history))
	copy(out, history)
	return out
}
