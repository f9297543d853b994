// Package memory provides an in-memory tuition.Store for tests and demos.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/primeswim/tuition/generic"
	"github.com/primeswim/tuition/tuition"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Store keeps everything in maps behind one RWMutex. Every read returns deep
// copies, so callers never share state with the store.
type Store struct {
	mu           sync.RWMutex
	levels       map[string]tuition.LevelConfig
	participants map[string]tuition.Participant
	exceptions   map[string]tuition.MonthException
	runs         []tuition.Run
}

var _ tuition.Store = (*Store)(nil)

func New() *Store {
	s := &Store{}
	s.resetLocked()
	return s
}

func (s *Store) resetLocked() {
	s.levels = make(map[string]tuition.LevelConfig)
	s.participants = make(map[string]tuition.Participant)
	s.exceptions = make(map[string]tuition.MonthException)
	s.runs = nil
}

// Snapshot returns the configuration for a month under one read lock.
func (s *Store) Snapshot(_ context.Context, month string) (tuition.Input, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	in := tuition.Input{
		Month:        month,
		Levels:       make(map[string]tuition.LevelConfig, len(s.levels)),
		Participants: s.sortedParticipantsLocked(),
		Exception:    tuition.MonthException{Month: month, NoTrainingDates: []string{}},
	}
	for name, l := range s.levels {
		in.Levels[name] = l.Clone()
	}
	if e, ok := s.exceptions[month]; ok {
		in.Exception = e.Clone()
	}
	return in, nil
}

// =============================================================================
// LEVELS
// =============================================================================

func (s *Store) SaveLevel(_ context.Context, level tuition.LevelConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.levels[level.Name] = level.Clone()
	return nil
}

func (s *Store) GetLevel(_ context.Context, name string) (*tuition.LevelConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.levels[name]
	if !ok {
		return nil, fmt.Errorf("level %q: %w", name, generic.ErrNotFound)
	}
	c := l.Clone()
	return &c, nil
}

func (s *Store) ListLevels(_ context.Context) ([]tuition.LevelConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]tuition.LevelConfig, 0, len(s.levels))
	for _, l := range s.levels {
		out = append(out, l.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// DeleteLevel removes a level. Swimmers that reference it keep the reference
// and show up as needing configuration.
func (s *Store) DeleteLevel(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.levels[name]; !ok {
		return fmt.Errorf("level %q: %w", name, generic.ErrNotFound)
	}
	delete(s.levels, name)
	return nil
}

// =============================================================================
// PARTICIPANTS
// =============================================================================

func (s *Store) SaveParticipant(_ context.Context, p tuition.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.participants[p.ID] = p.Clone()
	return nil
}

func (s *Store) GetParticipant(_ context.Context, id string) (*tuition.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.participants[id]
	if !ok {
		return nil, fmt.Errorf("swimmer %q: %w", id, generic.ErrNotFound)
	}
	c := p.Clone()
	return &c, nil
}

func (s *Store) ListParticipants(_ context.Context) ([]tuition.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedParticipantsLocked(), nil
}

func (s *Store) DeleteParticipant(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.participants[id]; !ok {
		return fmt.Errorf("swimmer %q: %w", id, generic.ErrNotFound)
	}
	delete(s.participants, id)
	return nil
}

// SetTrainingWeekdays replaces the weekdays of several swimmers at once.
// Every ID is checked before anything is written.
func (s *Store) SetTrainingWeekdays(_ context.Context, weekdays map[string][]int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id := range weekdays {
		if _, ok := s.participants[id]; !ok {
			return fmt.Errorf("swimmer %q: %w", id, generic.ErrNotFound)
		}
	}
	for id, days := range weekdays {
		p := s.participants[id]
		p.TrainingWeekdays = append([]int{}, days...)
		s.participants[id] = p
	}
	return nil
}

func (s *Store) sortedParticipantsLocked() []tuition.Participant {
	out := make([]tuition.Participant, 0, len(s.participants))
	for _, p := range s.participants {
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// =============================================================================
// EXCEPTIONS
// =============================================================================

func (s *Store) SaveMonthException(_ context.Context, e tuition.MonthException) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exceptions[e.Month] = e.Clone()
	return nil
}

func (s *Store) GetMonthException(_ context.Context, month string) (tuition.MonthException, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.exceptions[month]; ok {
		return e.Clone(), nil
	}
	return tuition.MonthException{Month: month, NoTrainingDates: []string{}}, nil
}

// =============================================================================
// RUNS
// =============================================================================

func (s *Store) SaveRun(_ context.Context, run tuition.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, run)
	return nil
}

func (s *Store) ListRuns(_ context.Context, month string) ([]tuition.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []tuition.Run
	for i := len(s.runs) - 1; i >= 0; i-- {
		if month == "" || s.runs[i].Month == month {
			out = append(out, s.runs[i])
		}
	}
	return out, nil
}

// Reset clears all data.
func (s *Store) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
	return nil
}
