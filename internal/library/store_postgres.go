// Copyright (c) 2026 Inkora. All rights reserved.

package library

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inkora/inkora/internal/platform/dberr"
)

// # Postgres Library Repository

// PostgresRepository implements [Repository] against core.libraryentry.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates the Postgres library store.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

/*
List returns an account's library entries, newest first.

Description: Joins core.novel for the denormalized display fields, so the
listing never needs a second round-trip.

Returns:
  - []*Entry: Hydrated entries
  - int: Total count via COUNT(*) OVER()
  - error: Database execution errors
*/
func (repository *PostgresRepository) List(context context.Context, accountID string, limit, offset int) ([]*Entry, int, error) {
	const query = `
		SELECT e.accountid, e.novelid, e.status, e.addedat, e.updatedat,
		       n.title, n.slug,
		       COUNT(*) OVER() AS total_count
		FROM core.libraryentry e
		JOIN core.novel n ON n.id = e.novelid
		WHERE e.accountid = $1
		ORDER BY e.updatedat DESC
		LIMIT $2 OFFSET $3`

	rows, err := repository.pool.Query(context, query, accountID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_library_repo_list_failed: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	total := 0

	for rows.Next() {
		entry := &Entry{}
		err := rows.Scan(
			&entry.AccountID,
			&entry.NovelID,
			&entry.Status,
			&entry.AddedAt,
			&entry.UpdatedAt,
			&entry.NovelTitle,
			&entry.NovelSlug,
			&total,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres_library_repo_scan_failed: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, total, rows.Err()
}

/*
Upsert adds a novel to the library or updates its reading status.

Description: ON CONFLICT keeps AddedAt stable across status changes.

Returns:
  - error: apperr.Unprocessable when the novel does not exist (FK violation),
    or storage failures
*/
func (repository *PostgresRepository) Upsert(context context.Context, entry *Entry) error {
	const query = `
		INSERT INTO core.libraryentry (accountid, novelid, status)
		VALUES ($1, $2, $3)
		ON CONFLICT (accountid, novelid)
		DO UPDATE SET status = EXCLUDED.status, updatedat = NOW()
		RETURNING addedat, updatedat`

	err := repository.pool.QueryRow(context, query,
		entry.AccountID,
		entry.NovelID,
		entry.Status,
	).Scan(&entry.AddedAt, &entry.UpdatedAt)

	if err != nil {
		return dberr.Wrap(err, "postgres_library_repo_upsert")
	}

	return nil
}

/*
Remove deletes a novel from the library. Idempotent.

Returns:
  - error: Storage failures
*/
func (repository *PostgresRepository) Remove(context context.Context, accountID, novelID string) error {
	const query = `DELETE FROM core.libraryentry WHERE accountid = $1 AND novelid = $2`

	if _, err := repository.pool.Exec(context, query, accountID, novelID); err != nil {
		return fmt.Errorf("postgres_library_repo_remove_failed: %w", err)
	}

	return nil
}
