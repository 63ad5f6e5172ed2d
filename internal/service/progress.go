package service

import "sync"

// progressTable holds the last reported percentage of running jobs. It is
// informational and lost on restart.
type progressTable struct {
	mu sync.RWMutex
	m  map[string]int
}

func newProgressTable() *progressTable {
	return &progressTable{m: make(map[string]int)}
}

func (t *progressTable) set(jobID string, percent int) {
	t.mu.Lock()
	t.m[jobID] = percent
	t.mu.Unlock()
}

func (t *progressTable) get(jobID string) (int, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	p, ok := t.m[jobID]
	return p, ok
}

func (t *progressTable) delete(jobID string) {
	t.mu.Lock()
	delete(t.m, jobID)
	t.mu.Unlock()
}
