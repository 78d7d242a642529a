// Package revocation tracks customer tokens that must stop working before they expire.
package revocation

import (
	"context"
	"sync"
	"time"
)

// List is a server-side token revocation list.
type List interface {
	// RevokeToken blocks one token id until it would have expired anyway.
	RevokeToken(ctx context.Context, tokenID string, expiresAt time.Time) error
	// RevokeSubject blocks every token of subject issued at or before at.
	// The entry is kept for ttl, the longest lifetime a token can have.
	RevokeSubject(ctx context.Context, subject string, at time.Time, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID, subject string, issuedAt time.Time) (bool, error)
}

// MemoryList keeps revocations in process memory.
type MemoryList struct {
	mu       sync.Mutex
	tokens   map[string]time.Time
	subjects map[string]subjectEntry
	now      func() time.Time
}

type subjectEntry struct {
	at      time.Time
	expires time.Time
}

// NewMemoryList creates an empty in-memory revocation list.
func NewMemoryList() *MemoryList {
	return &MemoryList{
		tokens:   make(map[string]time.Time),
		subjects: make(map[string]subjectEntry),
		now:      time.Now,
	}
}

func (l *MemoryList) RevokeToken(ctx context.Context, tokenID string, expiresAt time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tokens[tokenID] = expiresAt
	return nil
}

func (l *MemoryList) RevokeSubject(ctx context.Context, subject string, at time.Time, ttl time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.subjects[subject] = subjectEntry{at: at, expires: at.Add(ttl)}
	return nil
}

func (l *MemoryList) IsRevoked(ctx context.Context, tokenID, subject string, issuedAt time.Time) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()

	if until, ok := l.tokens[tokenID]; ok {
		if now.Before(until) {
			return true, nil
		}
		delete(l.tokens, tokenID)
	}
	if entry, ok := l.subjects[subject]; ok {
		if !now.Before(entry.expires) {
			delete(l.subjects, subject)
			return false, nil
		}
		return revokedBy(issuedAt, entry.at), nil
	}
	return false, nil
}

// revokedBy reports whether a token issued at issuedAt predates a subject
// revocation at at. Token timestamps carry milliseconds, so a token minted in
// the same millisecond as the revocation counts as revoked.
func revokedBy(issuedAt, at time.Time) bool {
	return !issuedAt.After(at)
}
