// Package partitiontoken provides changestreamcore.PartitionTokenStore
// implementations: an in-memory backend and a Cloud Spanner-backed one.
package partitiontoken

import (
	"context"
	"sync"

	"github.com/toga4/changestreamcore"
)

// InmemoryPartitionTokenStore implements changestreamcore.PartitionTokenStore
// by holding each change stream's current partition token in memory —
// useful for tests and for a single-partition deployment that never splits.
type InmemoryPartitionTokenStore struct {
	mu     sync.RWMutex
	tokens map[string]string
}

// NewInmemory creates an empty InmemoryPartitionTokenStore.
func NewInmemory() *InmemoryPartitionTokenStore {
	return &InmemoryPartitionTokenStore{tokens: make(map[string]string)}
}

var _ changestreamcore.PartitionTokenStore = (*InmemoryPartitionTokenStore)(nil)

// Set records token as the current partition token for a change stream
// named name. An empty token means the stream is not yet ready to accept
// writes, which Pipeline treats as "skip this stream for now".
func (s *InmemoryPartitionTokenStore) Set(name, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[name] = token
}

func (s *InmemoryPartitionTokenStore) Token(ctx context.Context, cs *changestreamcore.ChangeStream) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens[cs.Name], nil
}
