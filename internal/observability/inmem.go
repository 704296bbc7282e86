package observability

import "sync"

type Observation struct {
	Kind   string  `json:"kind"`
	Name   string  `json:"name,omitempty"`
	Method string  `json:"method,omitempty"`
	Status int     `json:"status,omitempty"`
	OK     bool    `json:"ok,omitempty"`
	DurMs  float64 `json:"durMs"`
}

type Totals struct {
	Operations int `json:"operations"`
	Errors     int `json:"errors"`
	Conflicts  int `json:"conflicts"`
	Duplicates int `json:"duplicates"`
	Messages   int `json:"messages"`
}

// Snapshot is a point in time copy of the recorder served on /metrics.
type Snapshot struct {
	Totals Totals         `json:"totals"`
	Last   []*Observation `json:"last"`
}

// Inmem keeps the last max observations and running totals.
type Inmem struct {
	mu     sync.Mutex
	last   []*Observation
	max    int
	totals Totals
}

func NewInmem(max int) *Inmem {
	return &Inmem{
		max: max,
	}
}

func (m *Inmem) push(v *Observation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = append(m.last, v)
	if len(m.last) > m.max {
		m.last = m.last[len(m.last)-m.max:]
	}
}

func (m *Inmem) ObserveOperation(op string, status int, durMs float64) {
	m.mu.Lock()
	m.totals.Operations++
	if status >= 400 {
		m.totals.Errors++
	}
	m.mu.Unlock()

	m.push(&Observation{Kind: "operation", Name: op, Status: status, DurMs: durMs})
}

func (m *Inmem) ObserveHTTP(method, route string, status int, durMs float64) {
	m.push(&Observation{Kind: "http", Method: method, Name: route, Status: status, DurMs: durMs})
}

func (m *Inmem) ObserveKafka(processMs float64, ok bool) {
	m.mu.Lock()
	m.totals.Messages++
	m.mu.Unlock()

	m.push(&Observation{Kind: "kafka", OK: ok, DurMs: processMs})
}

func (m *Inmem) IncConflict() {
	m.mu.Lock()
	m.totals.Conflicts++
	m.mu.Unlock()
}

func (m *Inmem) IncDuplicate() {
	m.mu.Lock()
	m.totals.Duplicates++
	m.mu.Unlock()
}

func (m *Inmem) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	last := make([]*Observation, len(m.last))
	for i, o := range m.last {
		cp := *o
		last[i] = &cp
	}
	return Snapshot{Totals: m.totals, Last: last}
}
