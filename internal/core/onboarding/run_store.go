package onboarding

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// runStore keeps recent runs in memory. Runs only matter to the client that
// started them, so evicting old ones is fine.
type runStore struct {
	runs *lru.Cache[string, *Run]
	mu   sync.Mutex
}

func newRunStore(size int) *runStore {
	cache, err := lru.New[string, *Run](size)
	if err != nil {
		panic(fmt.Sprintf("failed to create onboarding run store: %v", err))
	}
	return &runStore{runs: cache}
}

func (s *runStore) put(run *Run) {
	s.runs.Add(run.ID, run.clone())
}

func (s *runStore) get(userID, runID string) (*Run, bool) {
	run, ok := s.runs.Get(runID)
	if !ok || run.UserID != userID {
		return nil, false
	}
	return run.clone(), true
}

// update applies fn to the stored run under the store lock
func (s *runStore) update(userID, runID string, fn func(*Run) error) (*Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.get(userID, runID)
	if !ok {
		return nil, ErrRunNotFound
	}
	if err := fn(run); err != nil {
		return nil, err
	}
	s.put(run)
	return run.clone(), nil
}
