package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const publishingStateKey = "publishing_state"

// ErrStateConflict indicates a compare-and-swap save lost to a concurrent writer.
var ErrStateConflict = errors.New("publishing state modified concurrently")

// LoadPublishingState reads the durable publishing state. The returned token
// must be passed back to SavePublishingState so concurrent writers cannot
// silently clobber each other. A missing row yields a zero state and an empty
// token.
func (s *Store) LoadPublishingState(ctx context.Context) (*PublishingState, string, error) {
	ctx = ensureContext(ctx)
	var raw string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM state WHERE key = ?", publishingStateKey).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &PublishingState{}, "", nil
		}
		return nil, "", fmt.Errorf("load publishing state: %w", err)
	}

	var state PublishingState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, "", fmt.Errorf("decode publishing state: %w", err)
	}
	return &state, raw, nil
}

// SavePublishingState persists the publishing state, guarded by the token
// returned from LoadPublishingState. Returns ErrStateConflict when another
// writer changed the state since it was loaded.
func (s *Store) SavePublishingState(ctx context.Context, state *PublishingState, token string) error {
	if state == nil {
		return errors.New("publishing state is required")
	}
	encoded, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode publishing state: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)

	if token == "" {
		res, err := s.execWithRetry(
			ctx,
			`INSERT INTO state (key, value, updated_at) VALUES (?, ?, ?)
             ON CONFLICT(key) DO NOTHING`,
			publishingStateKey,
			string(encoded),
			now,
		)
		if err != nil {
			return fmt.Errorf("insert publishing state: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("insert state rows affected: %w", err)
		}
		if affected == 0 {
			return ErrStateConflict
		}
		return nil
	}

	res, err := s.execWithRetry(
		ctx,
		`UPDATE state SET value = ?, updated_at = ? WHERE key = ? AND value = ?`,
		string(encoded),
		now,
		publishingStateKey,
		token,
	)
	if err != nil {
		return fmt.Errorf("save publishing state: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save state rows affected: %w", err)
	}
	if affected == 0 {
		return ErrStateConflict
	}
	return nil
}

// UpdatePublishingState loads the state, applies mutate, and saves it back,
// retrying on compare-and-swap conflicts.
func (s *Store) UpdatePublishingState(ctx context.Context, mutate func(*PublishingState)) (*PublishingState, error) {
	const attempts = 5
	for attempt := 0; attempt < attempts; attempt++ {
		state, token, err := s.LoadPublishingState(ctx)
		if err != nil {
			return nil, err
		}
		mutate(state)
		err = s.SavePublishingState(ctx, state, token)
		if err == nil {
			return state, nil
		}
		if !errors.Is(err, ErrStateConflict) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("update publishing state: %w", ErrStateConflict)
}
