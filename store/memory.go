package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"conquest/game"
)

// Memory is an in-process Store for tests and single-node play. Documents
// are kept JSON-encoded so callers always work on private copies, same as
// with a remote store.
type Memory struct {
	mu    sync.RWMutex
	games map[string][]byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{games: make(map[string][]byte)}
}

func (s *Memory) Create(ctx context.Context, g *game.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.games[g.ID]; exists {
		return fmt.Errorf("game %s already exists", g.ID)
	}
	g.Version = 1
	val, err := json.Marshal(g)
	if err != nil {
		return err
	}
	s.games[g.ID] = val
	return nil
}

func (s *Memory) Get(ctx context.Context, id string) (*game.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	val, exists := s.games[id]
	if !exists {
		return nil, ErrNotFound
	}
	var g game.Game
	if err := json.Unmarshal(val, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *Memory) Update(ctx context.Context, g *game.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	val, exists := s.games[g.ID]
	if !exists {
		return ErrNotFound
	}
	var stored game.Game
	if err := json.Unmarshal(val, &stored); err != nil {
		return err
	}
	if stored.Version != g.Version {
		return ErrVersionConflict
	}

	g.Version++
	newVal, err := json.Marshal(g)
	if err != nil {
		return err
	}
	s.games[g.ID] = newVal
	return nil
}

func (s *Memory) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games = nil
	return nil
}
