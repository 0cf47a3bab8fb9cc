package store

import (
	"context"
	"fmt"
	"time"

	"github.com/devinalusiana15/KMS-OOP/model"
)

// AddRefinement appends an unanswered question to the refinement log.
func (s *Store) AddRefinement(ctx context.Context, question, answer string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO refinements (question, answer, created_at) VALUES (?, ?, ?)",
		question, answer, formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("inserting refinement: %w", err)
	}
	return nil
}

// ListRefinements returns the refinement log, oldest first.
func (s *Store) ListRefinements(ctx context.Context) ([]model.Refinement, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, question, answer, created_at FROM refinements ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("listing refinements: %w", err)
	}
	defer rows.Close()

	refinements := make([]model.Refinement, 0)
	for rows.Next() {
		var r model.Refinement
		var createdAt string
		if err := rows.Scan(&r.ID, &r.Question, &r.Answer, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning refinement: %w", err)
		}
		r.CreatedAt = parseTime(createdAt)
		refinements = append(refinements, r)
	}
	return refinements, rows.Err()
}
