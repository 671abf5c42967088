package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sandevgo/gsb/internal/core"
)

type BanRepo struct {
	db *sql.DB
}

func NewBanRepo(db *sql.DB) *BanRepo {
	return &BanRepo{db: db}
}

// Ban records host, replacing the reason of an existing ban.
func (r *BanRepo) Ban(ctx context.Context, host, reason string) error {
	query := `INSERT INTO bans (host, reason) VALUES (?, ?)
		ON CONFLICT(host) DO UPDATE SET reason = excluded.reason`
	if _, err := r.db.ExecContext(ctx, query, host, reason); err != nil {
		return fmt.Errorf("failed to insert ban: %w", err)
	}
	return nil
}

// Unban reports whether host was banned.
func (r *BanRepo) Unban(ctx context.Context, host string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM bans WHERE host = ?`, host)
	if err != nil {
		return false, fmt.Errorf("failed to delete ban: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *BanRepo) IsBanned(ctx context.Context, host string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM bans WHERE host = ?`, host).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query ban: %w", err)
	}
	return true, nil
}

func (r *BanRepo) List(ctx context.Context) ([]core.Ban, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT host, reason, created_at FROM bans ORDER BY host`)
	if err != nil {
		return nil, fmt.Errorf("failed to query bans: %w", err)
	}
	defer rows.Close()

	var bans []core.Ban
	for rows.Next() {
		var (
			b       core.Ban
			created time.Time
		)
		if err := rows.Scan(&b.Host, &b.Reason, &created); err != nil {
			return nil, fmt.Errorf("failed to scan ban: %w", err)
		}
		b.CreatedAt = created
		bans = append(bans, b)
	}
	return bans, rows.Err()
}
