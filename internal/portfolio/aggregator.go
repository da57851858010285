// Package portfolio accumulates accepted factor/security relationships
// across a screening run.
package portfolio

import (
	"sort"
	"sync"

	"factor-screen/internal/domain"
)

// Mapping collects, per factor, the set of securities whose accepted model
// includes it. Adds are idempotent and never removed; the mapping outlives
// all per-security state. Safe for concurrent use: a future parallel outer
// loop needs only this append path to be shared.
type Mapping struct {
	mu      sync.RWMutex
	members map[string]map[string]struct{}
}

// NewMapping creates an empty portfolio mapping.
func NewMapping() *Mapping {
	return &Mapping{members: make(map[string]map[string]struct{})}
}

// Record adds a security to a factor's membership set. Recording the same
// pair twice is a no-op.
func (m *Mapping) Record(factor, securityID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	set, ok := m.members[factor]
	if !ok {
		set = make(map[string]struct{})
		m.members[factor] = set
	}
	set[securityID] = struct{}{}
}

// Factors returns the recorded factor names, sorted.
func (m *Mapping) Factors() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.members))
	for f := range m.members {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Securities returns the sorted membership set for one factor.
func (m *Mapping) Securities(factor string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.members[factor]))
	for s := range m.members[factor] {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of recorded factors.
func (m *Mapping) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.members)
}

// Summarize produces the per-factor membership sets for reporting, sorted
// on both levels.
func (m *Mapping) Summarize() map[string][]string {
	out := make(map[string][]string, m.Len())
	for _, f := range m.Factors() {
		out[f] = m.Securities(f)
	}
	return out
}

// Memberships flattens the mapping into persistable rows for a run.
func (m *Mapping) Memberships(runID string) []domain.PortfolioMembership {
	var out []domain.PortfolioMembership
	for _, f := range m.Factors() {
		for _, s := range m.Securities(f) {
			out = append(out, domain.PortfolioMembership{RunID: runID, Factor: f, Security: s})
		}
	}
	return out
}
