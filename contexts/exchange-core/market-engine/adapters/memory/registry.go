package memory

import (
	"context"
	"sync"

	domainerrors "mediex/contexts/exchange-core/market-engine/domain/errors"
)

type tokenRecord struct {
	Creator string
	Owner   string
}

// Registry is an in-memory stand-in for the external media registry,
// used for tests and single-process dev wiring. Token identifiers are the
// sequential mint order, so TokenCount bounds enumeration.
type Registry struct {
	mu     sync.RWMutex
	tokens map[uint64]tokenRecord
	next   uint64
}

func NewRegistry() *Registry {
	return &Registry{tokens: make(map[uint64]tokenRecord)}
}

// MintToken registers a new token and returns its identifier.
func (r *Registry) MintToken(creator string, owner string) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	tokenID := r.next
	r.next++
	r.tokens[tokenID] = tokenRecord{Creator: creator, Owner: owner}
	return tokenID
}

func (r *Registry) OwnerOf(_ context.Context, tokenID uint64) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.tokens[tokenID]
	if !ok {
		return "", domainerrors.ErrTokenUnknown
	}
	return record.Owner, nil
}

func (r *Registry) CreatorOf(_ context.Context, tokenID uint64) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.tokens[tokenID]
	if !ok {
		return "", domainerrors.ErrTokenUnknown
	}
	return record.Creator, nil
}

func (r *Registry) TransferOwnership(_ context.Context, tokenID uint64, newOwner string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.tokens[tokenID]
	if !ok {
		return domainerrors.ErrTokenUnknown
	}
	record.Owner = newOwner
	r.tokens[tokenID] = record
	return nil
}

func (r *Registry) TokenCount(_ context.Context) (uint64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.next, nil
}
