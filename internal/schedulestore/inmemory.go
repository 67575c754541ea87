package schedulestore

import (
	"fmt"
	"sort"
	"sync"

	"github.com/zkan/dagster/internal/scheduler"
)

// InMemory is a map-backed schedule store. Safe for concurrent use.
type InMemory struct {
	mu        sync.RWMutex
	schedules map[string]scheduler.Schedule
}

// NewInMemory returns an empty in-memory schedule store.
func NewInMemory() *InMemory {
	return &InMemory{schedules: make(map[string]scheduler.Schedule)}
}

func (s *InMemory) All() ([]scheduler.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]scheduler.Schedule, 0, len(s.schedules))
	for _, sched := range s.schedules {
		all = append(all, sched)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name() < all[j].Name() })
	return all, nil
}

func (s *InMemory) Get(name string) (scheduler.Schedule, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sched, ok := s.schedules[name]
	return sched, ok, nil
}

func (s *InMemory) Add(sched scheduler.Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.schedules[sched.Name()]; exists {
		return fmt.Errorf("schedule '%s' already exists", sched.Name())
	}
	s.schedules[sched.Name()] = sched
	return nil
}

func (s *InMemory) Update(sched scheduler.Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.schedules[sched.Name()]; !exists {
		return &scheduler.ErrScheduleNotFound{Name: sched.Name()}
	}
	s.schedules[sched.Name()] = sched
	return nil
}

func (s *InMemory) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.schedules[name]; !exists {
		return &scheduler.ErrScheduleNotFound{Name: name}
	}
	delete(s.schedules, name)
	return nil
}
