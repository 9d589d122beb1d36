// Package state holds the live progress snapshot of every job and mirrors
// it to a JSON file after each change.
package state

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"copyjob/internal/logger"
	"copyjob/internal/model"
	"copyjob/internal/util"

	"go.uber.org/zap"
)

var ErrStateLoadCorrupt = errors.New("state file corrupt")

// Store is the in-memory state of every known job. Every mutation is
// written through to path before it returns.
type Store struct {
	mu     sync.RWMutex
	path   string
	states map[string]*model.JobState
	now    func() time.Time
	log    *zap.Logger
}

func NewStore(path string, log *zap.Logger) *Store {
	return &Store{
		path:   path,
		states: make(map[string]*model.JobState),
		now:    time.Now,
		log:    logger.OrNop(log),
	}
}

func (s *Store) Path() string {
	return s.path
}

// Load resets the store to one Pending state per job name, overlays the
// persisted states of those names, and writes the merged set back. A
// corrupt file is logged and replaced by the defaults.
func (s *Store) Load(jobNames []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	states := make(map[string]*model.JobState, len(jobNames))
	for _, name := range jobNames {
		states[name] = model.NewPendingState(name)
	}

	var persisted map[string]*model.JobState
	if _, err := util.ReadJSON(s.path, &persisted); err != nil {
		s.log.Warn("ignoring unreadable state file",
			zap.String("path", s.path),
			zap.Error(fmt.Errorf("%w: %w", ErrStateLoadCorrupt, err)))
		persisted = nil
	}

	for name, st := range persisted {
		if _, known := states[name]; !known || st == nil {
			continue
		}
		st.Name = name
		states[name] = st
	}

	s.states = states
	return s.persistLocked()
}

// Update applies mutate to the named state, creating it as Pending when
// absent, stamps LastActionTime and persists the whole collection.
func (s *Store) Update(name string, mutate func(st *model.JobState)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[name]
	if !ok {
		st = model.NewPendingState(name)
		s.states[name] = st
	}

	if mutate != nil {
		mutate(st)
	}
	st.Name = name
	st.LastActionTime = s.now()

	return s.persistLocked()
}

// Rename moves the state stored under oldName to newName.
func (s *Store) Rename(oldName, newName string) error {
	if oldName == newName {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[oldName]
	if !ok {
		st = model.NewPendingState(newName)
	}

	delete(s.states, oldName)
	st.Name = newName
	s.states[newName] = st

	return s.persistLocked()
}

func (s *Store) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.states[name]; !ok {
		return nil
	}

	delete(s.states, name)
	return s.persistLocked()
}

// Get returns a copy of the named state.
func (s *Store) Get(name string) (model.JobState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.states[name]
	if !ok {
		return model.JobState{}, false
	}

	return *st, true
}

// All returns copies of every state ordered by name.
func (s *Store) All() []model.JobState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.JobState, 0, len(s.states))
	for _, st := range s.states {
		out = append(out, *st)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})

	return out
}

func (s *Store) persistLocked() error {
	if err := util.WriteJSON(s.path, s.states); err != nil {
		s.log.Error("failed to persist job state",
			zap.String("path", s.path),
			zap.Error(err))
		return fmt.Errorf("failed to persist state: %w", err)
	}

	return nil
}

// ReadFile decodes a state file without loading it into a store, for
// readers that only display the last persisted snapshot.
func ReadFile(path string) ([]model.JobState, error) {
	var persisted map[string]*model.JobState
	if _, err := util.ReadJSON(path, &persisted); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStateLoadCorrupt, err)
	}

	out := make([]model.JobState, 0, len(persisted))
	for name, st := range persisted {
		if st == nil {
			continue
		}
		st.Name = name
		out = append(out, *st)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})

	return out, nil
}
