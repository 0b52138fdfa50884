package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"inkwell/internal/cache"
)

const sessionKeyPrefix = "session:"

// SessionStoreInterface defines the interface for session storage operations.
type SessionStoreInterface interface {
	StoreSession(ctx context.Context, tokenID, userID, email string, ttl time.Duration) error
	GetSession(ctx context.Context, tokenID string) (userID, email string, err error)
	DeleteSession(ctx context.Context, tokenID string) error
}

// SessionStore keeps live sessions in Redis; a session missing from the
// store is treated as logged out even when its token signature is valid.
type SessionStore struct {
	cache *cache.Client
}

// Ensure SessionStore implements SessionStoreInterface
var _ SessionStoreInterface = (*SessionStore)(nil)

// NewSessionStore creates a new session store.
func NewSessionStore(cache *cache.Client) *SessionStore {
	return &SessionStore{cache: cache}
}

type sessionData struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// StoreSession stores a session in Redis with TTL.
func (s *SessionStore) StoreSession(ctx context.Context, tokenID, userID, email string, ttl time.Duration) error {
	payload, err := json.Marshal(sessionData{UserID: userID, Email: email})
	if err != nil {
		return fmt.Errorf("marshal session data: %w", err)
	}
	return s.cache.Set(ctx, sessionKeyPrefix+tokenID, payload, ttl)
}

// GetSession retrieves session data from Redis.
func (s *SessionStore) GetSession(ctx context.Context, tokenID string) (userID, email string, err error) {
	data, err := s.cache.Get(ctx, sessionKeyPrefix+tokenID)
	if err != nil || data == nil {
		return "", "", fmt.Errorf("session not found")
	}

	var session sessionData
	if err := json.Unmarshal(data, &session); err != nil {
		return "", "", fmt.Errorf("unmarshal session data: %w", err)
	}
	return session.UserID, session.Email, nil
}

// DeleteSession removes a session from Redis.
func (s *SessionStore) DeleteSession(ctx context.Context, tokenID string) error {
	return s.cache.Delete(ctx, sessionKeyPrefix+tokenID)
}
