package services

import (
	"fmt"
	"sort"
	"sync"
)

// ScopeLocks serializes work on the same (user, card) pair. Keys that are not
// held by anyone are dropped, so the map only grows with concurrent callers.
type ScopeLocks struct {
	mu    sync.Mutex
	locks map[string]*scopeLock
}

type scopeLock struct {
	mu   sync.Mutex
	refs int
}

func NewScopeLocks() *ScopeLocks {
	return &ScopeLocks{locks: make(map[string]*scopeLock)}
}

func scopeKey(userID int64, cardID string) string {
	return fmt.Sprintf("%d:%s", userID, cardID)
}

// Lock acquires every given key in sorted order and returns the matching
// unlock function. Duplicate keys are collapsed.
func (s *ScopeLocks) Lock(keys ...string) (unlock func()) {
	keys = uniqueSorted(keys)

	held := make([]*scopeLock, 0, len(keys))
	for _, k := range keys {
		s.mu.Lock()
		l, ok := s.locks[k]
		if !ok {
			l = &scopeLock{}
			s.locks[k] = l
		}
		l.refs++
		s.mu.Unlock()

		l.mu.Lock()
		held = append(held, l)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].mu.Unlock()

			s.mu.Lock()
			held[i].refs--
			if held[i].refs == 0 {
				delete(s.locks, keys[i])
			}
			s.mu.Unlock()
		}
	}
}

// LockPair is Lock for a single (user, card) pair.
func (s *ScopeLocks) LockPair(userID int64, cardID string) (unlock func()) {
	return s.Lock(scopeKey(userID, cardID))
}

func uniqueSorted(keys []string) []string {
	out := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
