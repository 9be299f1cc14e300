package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	UsersRegistered  uint64
	Logins           map[string]uint64
	EventsCreated    uint64
	EventsUpdated    uint64
	EventsDeleted    uint64
	Registrations    map[string]uint64
	ActivityMessages map[string]uint64
	RateLimited      map[string]uint64
	Requests         uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	usersRegistered uint64
	eventsCreated   uint64
	eventsUpdated   uint64
	eventsDeleted   uint64
	requests        uint64

	mu       sync.Mutex
	labelled map[string]map[string]uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{labelled: make(map[string]map[string]uint64)}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Snapshot{
		UsersRegistered:  atomic.LoadUint64(&m.usersRegistered),
		Logins:           m.copyLabels("login"),
		EventsCreated:    atomic.LoadUint64(&m.eventsCreated),
		EventsUpdated:    atomic.LoadUint64(&m.eventsUpdated),
		EventsDeleted:    atomic.LoadUint64(&m.eventsDeleted),
		Registrations:    m.copyLabels("registration"),
		ActivityMessages: m.copyLabels("activity"),
		RateLimited:      m.copyLabels("rate_limited"),
		Requests:         atomic.LoadUint64(&m.requests),
	}
}

func (m *InMemoryRecorder) IncUserRegistered() {
	atomic.AddUint64(&m.usersRegistered, 1)
}

func (m *InMemoryRecorder) IncLogin(outcome string) {
	m.inc("login", outcome)
}

func (m *InMemoryRecorder) IncEventCreated() {
	atomic.AddUint64(&m.eventsCreated, 1)
}

func (m *InMemoryRecorder) IncEventUpdated() {
	atomic.AddUint64(&m.eventsUpdated, 1)
}

func (m *InMemoryRecorder) IncEventDeleted() {
	atomic.AddUint64(&m.eventsDeleted, 1)
}

func (m *InMemoryRecorder) IncRegistration(outcome string) {
	m.inc("registration", outcome)
}

func (m *InMemoryRecorder) IncActivityPublished(status string) {
	m.inc("activity", status)
}

func (m *InMemoryRecorder) IncRateLimited(scope string) {
	m.inc("rate_limited", scope)
}

func (m *InMemoryRecorder) ObserveRequest(_, _ string, _ int, _ time.Duration) {
	atomic.AddUint64(&m.requests, 1)
}

func (m *InMemoryRecorder) inc(name, label string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	counts, ok := m.labelled[name]
	if !ok {
		counts = make(map[string]uint64)
		m.labelled[name] = counts
	}
	counts[label]++
}

// copyLabels expects m.mu to be held.
func (m *InMemoryRecorder) copyLabels(name string) map[string]uint64 {
	out := make(map[string]uint64, len(m.labelled[name]))
	for k, v := range m.labelled[name] {
		out[k] = v
	}
	return out
}
