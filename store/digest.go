package store

import (
	"context"
	"sort"
	"sync"
	"time"
)

// DigestFrequency is a user's email digest cadence.
type DigestFrequency string

const (
	DigestOff    DigestFrequency = "off"
	DigestDay    DigestFrequency = "day"
	DigestWeek   DigestFrequency = "week"
	DigestBiWeek DigestFrequency = "biweek"
	DigestMonth  DigestFrequency = "month"
)

// DigestFrequencies lists the four cadences that have membership sets.
// DigestOff (and any unrecognized value) means membership in none of them.
var DigestFrequencies = []DigestFrequency{DigestDay, DigestWeek, DigestBiWeek, DigestMonth}

// IsSubscribed reports whether the frequency maps to a membership set.
func (f DigestFrequency) IsSubscribed() bool {
	switch f {
	case DigestDay, DigestWeek, DigestBiWeek, DigestMonth:
		return true
	}
	return false
}

// DigestIndex maintains the per-frequency membership sets used by the
// digest mailer. A user belongs to at most one set at any time; each
// member is scored by its last settings-update timestamp.
type DigestIndex interface {
	// Update removes userID from every set, then re-adds it to the set for
	// freq when freq is a subscribed cadence. Off or unknown values leave
	// the user in no set.
	Update(ctx context.Context, userID int64, freq DigestFrequency, at time.Time) error
	// ListMembers returns the members of a set ordered by score, oldest first.
	ListMembers(ctx context.Context, freq DigestFrequency) ([]int64, error)
	// Frequency returns the set a user currently belongs to, if any.
	Frequency(ctx context.Context, userID int64) (DigestFrequency, bool, error)
	Close() error
}

// MemoryDigestIndex is the in-process DigestIndex used for single-node
// deployments and tests. Multi-instance deployments should use the
// Redis-backed index instead.
type MemoryDigestIndex struct {
	mu   sync.RWMutex
	sets map[DigestFrequency]map[int64]int64 // freq -> userID -> score (unix ms)
}

// NewMemoryDigestIndex creates an empty in-memory digest index.
func NewMemoryDigestIndex() *MemoryDigestIndex {
	sets := make(map[DigestFrequency]map[int64]int64, len(DigestFrequencies))
	for _, freq := range DigestFrequencies {
		sets[freq] = make(map[int64]int64)
	}
	return &MemoryDigestIndex{sets: sets}
}

func (m *MemoryDigestIndex) Update(_ context.Context, userID int64, freq DigestFrequency, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, f := range DigestFrequencies {
		delete(m.sets[f], userID)
	}
	if freq.IsSubscribed() {
		m.sets[freq][userID] = at.UnixMilli()
	}
	return nil
}

func (m *MemoryDigestIndex) ListMembers(_ context.Context, freq DigestFrequency) ([]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	set, ok := m.sets[freq]
	if !ok {
		return []int64{}, nil
	}
	members := make([]int64, 0, len(set))
	for userID := range set {
		members = append(members, userID)
	}
	sort.Slice(members, func(i, j int) bool {
		if set[members[i]] != set[members[j]] {
			return set[members[i]] < set[members[j]]
		}
		return members[i] < members[j]
	})
	return members, nil
}

func (m *MemoryDigestIndex) Frequency(_ context.Context, userID int64) (DigestFrequency, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, freq := range DigestFrequencies {
		if _, ok := m.sets[freq][userID]; ok {
			return freq, true, nil
		}
	}
	return DigestOff, false, nil
}

func (m *MemoryDigestIndex) Close() error {
	return nil
}
