package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/otcheredev/hospital-dashboard/internal/cache"
	"github.com/otcheredev/hospital-dashboard/internal/models"
	"github.com/rs/zerolog/log"
)

// StorageKey is the single key under which the session record is persisted.
const StorageKey = "hospitalSession"

// Store owns the durable copy of the session record. A malformed persisted
// record is treated as no session and the corrupted entry is purged.
type Store struct {
	backend cache.Store
}

// NewStore wraps a durable key-value backend.
func NewStore(backend cache.Store) *Store {
	return &Store{backend: backend}
}

// Load reads the persisted session. The second return value is false when no
// usable session exists.
func (s *Store) Load(ctx context.Context) (models.Session, bool) {
	blob, err := s.backend.Get(ctx, StorageKey)
	if err != nil {
		if err != cache.ErrNotFound {
			log.Warn().Err(err).Msg("Failed to read persisted session")
		}
		return models.Anonymous, false
	}

	var sess models.Session
	if err := json.Unmarshal(blob, &sess); err != nil {
		log.Warn().Err(err).Msg("Purging corrupted session record")
		if err := s.backend.Delete(ctx, StorageKey); err != nil {
			log.Warn().Err(err).Msg("Failed to purge corrupted session record")
		}
		return models.Anonymous, false
	}

	if sess.Token == "" {
		return models.Anonymous, false
	}
	return sess, true
}

// Save persists a whole session record.
func (s *Store) Save(ctx context.Context, sess models.Session) error {
	blob, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.backend.Set(ctx, StorageKey, blob, 0); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	return nil
}

// Clear removes the persisted session record.
func (s *Store) Clear(ctx context.Context) error {
	return s.backend.Delete(ctx, StorageKey)
}

// Token returns the persisted bearer token, or empty when anonymous. This
// satisfies api.TokenSource so every authorized request reads the same
// durable record the interceptor purges on rejection.
func (s *Store) Token(ctx context.Context) string {
	sess, ok := s.Load(ctx)
	if !ok {
		return ""
	}
	return sess.Token
}
