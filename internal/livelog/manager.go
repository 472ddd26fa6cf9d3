// Package livelog buffers the output of jobs that are still running so it can
// be read before the hop history is written.
package livelog

import (
	"strings"
	"sync"
	"time"
)

// Log is a snapshot of a running job's output.
type Log struct {
	JobID      string    `json:"job_id"`
	Hop        int       `json:"hop"`
	Lines      []string  `json:"lines"`
	StartTime  time.Time `json:"start_time"`
	LastUpdate time.Time `json:"last_update"`
}

func (l *Log) String() string { return strings.Join(l.Lines, "\n") }

type Manager struct {
	mu   sync.RWMutex
	logs map[string]*Log // key: job ID
}

func NewManager() *Manager {
	return &Manager{logs: make(map[string]*Log)}
}

// Start opens a fresh buffer for the job, discarding any previous one.
func (m *Manager) Start(jobID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	m.logs[jobID] = &Log{JobID: jobID, StartTime: now, LastUpdate: now}
}

// Append adds a line for the given hop. Unknown jobs are ignored.
func (m *Manager) Append(jobID string, hop int, line string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if l, ok := m.logs[jobID]; ok {
		l.Hop = hop
		l.Lines = append(l.Lines, line)
		l.LastUpdate = time.Now()
	}
}

func (m *Manager) Get(jobID string) (*Log, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	l, ok := m.logs[jobID]
	if !ok {
		return nil, false
	}
	return l.snapshot(), true
}

// End drops the job's buffer.
func (m *Manager) End(jobID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.logs, jobID)
}

// Active returns snapshots of every open buffer.
func (m *Manager) Active() map[string]*Log {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]*Log, len(m.logs))
	for id, l := range m.logs {
		out[id] = l.snapshot()
	}
	return out
}

// Prune removes buffers not updated within maxAge and reports how many went.
func (m *Manager) Prune(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	now := time.Now()
	for id, l := range m.logs {
		if now.Sub(l.LastUpdate) > maxAge {
			delete(m.logs, id)
			removed++
		}
	}
	return removed
}

func (l *Log) snapshot() *Log {
	cp := *l
	cp.Lines = append([]string(nil), l.Lines...)
	return &cp
}
