package server

import (
	"context"
	"encoding/json"
	"fmt"
)

// Score documents are JSONB blobs keyed by user ID, one row per user.
// Writes merge with jsonb_patch so concurrent writers of different
// fields never clobber each other, matching the merge-upsert semantics
// of the document store the games were originally built on.

type scoreDoc struct {
	DisplayName string `json:"displayName,omitempty"`
	Score       int64  `json:"score,omitempty"`
	BestScore   int64  `json:"bestScore,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}

func (s *SQLiteStore) SetUserRecord(ctx context.Context, userID string, fields map[string]any) error {
	patch, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encoding record patch: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO user_scores (id, data) VALUES (?, jsonb(?))
		ON CONFLICT(id) DO UPDATE SET data = jsonb_patch(user_scores.data, jsonb(?))
	`, userID, string(patch), string(patch))
	return err
}

// AddToScore accumulates delta into the user's total and returns the new
// total. The total is added to, never overwritten, so a finished session
// extends the lifetime score rather than replacing it.
func (s *SQLiteStore) AddToScore(ctx context.Context, userID string, delta int64) (int64, error) {
	var total int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO user_scores (id, data) VALUES (?, jsonb(json_object('score', ?)))
		ON CONFLICT(id) DO UPDATE SET data = jsonb_set(
			user_scores.data, '$.score',
			COALESCE(json_extract(user_scores.data, '$.score'), 0) + ?
		)
		RETURNING json_extract(data, '$.score')
	`, userID, delta, delta).Scan(&total)
	return total, err
}

func (s *SQLiteStore) UserRecord(ctx context.Context, userID string) (UserRecord, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `
		SELECT json(data) FROM user_scores WHERE id = ?
	`, userID).Scan(&data)
	if err != nil {
		return UserRecord{}, ErrNotFound
	}

	var doc scoreDoc
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return UserRecord{}, fmt.Errorf("decoding record %s: %w", userID, err)
	}
	return UserRecord{
		UserID:      userID,
		DisplayName: doc.DisplayName,
		Score:       doc.Score,
		BestScore:   doc.BestScore,
		UpdatedAt:   doc.UpdatedAt,
	}, nil
}

func (s *SQLiteStore) TopN(ctx context.Context, n int) ([]LeaderboardEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, json(data) FROM user_scores
		ORDER BY COALESCE(json_extract(data, '$.score'), 0) DESC
		LIMIT ?
	`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []LeaderboardEntry{}
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, err
		}
		var doc scoreDoc
		if err := json.Unmarshal([]byte(data), &doc); err != nil {
			continue
		}
		name := doc.DisplayName
		if name == "" {
			name = "Anonymous"
		}
		entries = append(entries, LeaderboardEntry{
			Rank:        len(entries) + 1,
			UserID:      id,
			DisplayName: name,
			Score:       doc.Score,
		})
	}
	return entries, rows.Err()
}
