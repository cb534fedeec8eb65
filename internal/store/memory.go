package store

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store for tests and single-node
// deployments without object storage. Artifacts live until the process
// exits; there is no size bound.
type MemoryStore struct {
	mu        sync.RWMutex
	artifacts map[string]*Artifact
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{artifacts: make(map[string]*Artifact)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (*Artifact, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	artifact, ok := s.artifacts[key]
	return artifact, ok, nil
}

func (s *MemoryStore) Put(_ context.Context, key string, artifact *Artifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.artifacts[key] = artifact
	return nil
}

// Len reports the number of stored artifacts.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.artifacts)
}

var _ Store = (*MemoryStore)(nil)
