package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// WordRepo is the personal dictionary shared by every connection.
type WordRepo struct {
	db *sql.DB
}

func NewWordRepo(db *sql.DB) *WordRepo {
	return &WordRepo{db: db}
}

func (r *WordRepo) AddWord(ctx context.Context, word string) error {
	query := `INSERT INTO words (word) VALUES (?) ON CONFLICT(word) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, strings.ToLower(word)); err != nil {
		return fmt.Errorf("failed to insert word: %w", err)
	}
	return nil
}

func (r *WordRepo) HasWord(ctx context.Context, word string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM words WHERE word = ?`, strings.ToLower(word)).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query word: %w", err)
	}
	return true, nil
}

func (r *WordRepo) Words(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT word FROM words ORDER BY word`)
	if err != nil {
		return nil, fmt.Errorf("failed to query words: %w", err)
	}
	defer rows.Close()

	var words []string
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, fmt.Errorf("failed to scan word: %w", err)
		}
		words = append(words, w)
	}
	return words, rows.Err()
}
