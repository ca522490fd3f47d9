// Copyright (c) 2026 Inkora. All rights reserved.

package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inkora/inkora/internal/platform/dberr"
)

// # Postgres Report Repository

// PostgresRepository implements [Repository] against core.report.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates the Postgres report store.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const reportColumns = `
	id, contenttype, contentid, reporterid, type, details, status,
	contentlabel, createdat, resolvedat, resolvedby`

/*
Create persists a new report. Single atomic insert.

Returns:
  - error: Storage failures
*/
func (repository *PostgresRepository) Create(context context.Context, report *Report) error {
	const query = `
		INSERT INTO core.report (
			id, contenttype, contentid, reporterid, type, details, status, contentlabel
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING createdat`

	err := repository.pool.QueryRow(context, query,
		report.ID,
		report.ContentType,
		report.ContentID,
		report.ReporterID,
		report.Type,
		report.Details,
		report.Status,
		report.ContentLabel,
	).Scan(&report.CreatedAt)

	if err != nil {
		return dberr.Wrap(err, "postgres_report_repo_create")
	}

	return nil
}

/*
HasActiveReport implements [DuplicateProbe].

Description: A report counts as active while it is still open; resolved and
dismissed reports do not suppress new submissions.

Returns:
  - bool: Whether an open report by this reporter on this target exists
  - error: Storage failures
*/
func (repository *PostgresRepository) HasActiveReport(context context.Context, reporterID string, contentType ContentType, contentID string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM core.report
			WHERE reporterid = $1 AND contenttype = $2 AND contentid = $3 AND status = 'open'
		)`

	var exists bool
	err := repository.pool.QueryRow(context, query, reporterID, contentType, contentID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("postgres_report_repo_duplicate_probe_failed: %w", err)
	}

	return exists, nil
}

/*
FindByID returns a single report.

Returns:
  - *Report: Hydrated entity
  - error: apperr.NotFound or retrieval failures
*/
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Report, error) {
	const query = `
		SELECT ` + reportColumns + `
		FROM core.report
		WHERE id = $1`

	report := &Report{}
	err := repository.pool.QueryRow(context, query, id).Scan(
		&report.ID,
		&report.ContentType,
		&report.ContentID,
		&report.ReporterID,
		&report.Type,
		&report.Details,
		&report.Status,
		&report.ContentLabel,
		&report.CreatedAt,
		&report.ResolvedAt,
		&report.ResolvedBy,
	)

	if err != nil {
		return nil, dberr.Wrap(err, "postgres_report_repo_find_by_id")
	}

	return report, nil
}

/*
List returns reports filtered by status, newest first.

Returns:
  - []*Report: Matching reports
  - int: Total count via COUNT(*) OVER()
  - error: Database execution errors
*/
func (repository *PostgresRepository) List(context context.Context, status Status, limit, offset int) ([]*Report, int, error) {
	var queryBuilder strings.Builder
	var args []any
	argID := 1

	queryBuilder.WriteString(`
		SELECT ` + reportColumns + `, COUNT(*) OVER() AS total_count
		FROM core.report
		WHERE 1=1`)

	if status != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND status = $%d", argID))
		args = append(args, status)
		argID++
	}

	queryBuilder.WriteString(" ORDER BY createdat DESC")
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argID, argID+1))
	args = append(args, limit, offset)

	rows, err := repository.pool.Query(context, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_report_repo_list_failed: %w", err)
	}
	defer rows.Close()

	var reports []*Report
	total := 0

	for rows.Next() {
		report := &Report{}
		err := rows.Scan(
			&report.ID,
			&report.ContentType,
			&report.ContentID,
			&report.ReporterID,
			&report.Type,
			&report.Details,
			&report.Status,
			&report.ContentLabel,
			&report.CreatedAt,
			&report.ResolvedAt,
			&report.ResolvedBy,
			&total,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres_report_repo_scan_failed: %w", err)
		}
		reports = append(reports, report)
	}

	return reports, total, rows.Err()
}

/*
SetStatus moves a report to a terminal moderation state.

Returns:
  - error: apperr.NotFound or storage failures
*/
func (repository *PostgresRepository) SetStatus(context context.Context, id string, status Status, resolvedBy string) error {
	const query = `
		UPDATE core.report
		SET status = $2, resolvedat = NOW(), resolvedby = $3
		WHERE id = $1 AND status = 'open'`

	tag, err := repository.pool.Exec(context, query, id, status, resolvedBy)
	if err != nil {
		return fmt.Errorf("postgres_report_repo_set_status_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return dberr.Wrap(pgx.ErrNoRows, "postgres_report_repo_set_status")
	}

	return nil
}
