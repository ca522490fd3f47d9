// Copyright (c) 2026 Inkora. All rights reserved.

package social

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inkora/inkora/internal/platform/dberr"
)

// # Postgres Comment Repository

// PostgresCommentRepository implements [CommentRepository] against
// core.comment.
type PostgresCommentRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresCommentRepository creates the Postgres comment store.
func NewPostgresCommentRepository(pool *pgxpool.Pool) *PostgresCommentRepository {
	return &PostgresCommentRepository{pool: pool}
}

/*
ListByNovel returns a novel's visible comments, newest first.

Description: Hidden comments are filtered in the query; the join pulls the
author's username for display.

Returns:
  - []*Comment: Hydrated comments
  - int: Total visible count via COUNT(*) OVER()
  - error: Database execution errors
*/
func (repository *PostgresCommentRepository) ListByNovel(context context.Context, novelID string, limit, offset int) ([]*Comment, int, error) {
	const query = `
		SELECT c.id, c.novelid, c.authorid, c.body, c.ishidden, c.createdat, c.updatedat,
		       a.username,
		       COUNT(*) OVER() AS total_count
		FROM core.comment c
		JOIN users.account a ON a.id = c.authorid
		WHERE c.novelid = $1 AND c.ishidden = FALSE
		ORDER BY c.createdat DESC
		LIMIT $2 OFFSET $3`

	rows, err := repository.pool.Query(context, query, novelID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_comment_repo_list_failed: %w", err)
	}
	defer rows.Close()

	var comments []*Comment
	total := 0

	for rows.Next() {
		comment := &Comment{}
		err := rows.Scan(
			&comment.ID,
			&comment.NovelID,
			&comment.AuthorID,
			&comment.Body,
			&comment.IsHidden,
			&comment.CreatedAt,
			&comment.UpdatedAt,
			&comment.AuthorUsername,
			&total,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres_comment_repo_scan_failed: %w", err)
		}
		comments = append(comments, comment)
	}

	return comments, total, rows.Err()
}

/*
FindByID returns a single comment, hidden or not.

Returns:
  - *Comment: Hydrated entity
  - error: apperr.NotFound or retrieval failures
*/
func (repository *PostgresCommentRepository) FindByID(context context.Context, id string) (*Comment, error) {
	const query = `
		SELECT id, novelid, authorid, body, ishidden, createdat, updatedat
		FROM core.comment
		WHERE id = $1`

	comment := &Comment{}
	err := repository.pool.QueryRow(context, query, id).Scan(
		&comment.ID,
		&comment.NovelID,
		&comment.AuthorID,
		&comment.Body,
		&comment.IsHidden,
		&comment.CreatedAt,
		&comment.UpdatedAt,
	)

	if err != nil {
		return nil, dberr.Wrap(err, "postgres_comment_repo_find_by_id")
	}

	return comment, nil
}

/*
Create persists a new comment.

Returns:
  - error: apperr.Unprocessable on missing novel (FK violation), or
    storage failures
*/
func (repository *PostgresCommentRepository) Create(context context.Context, comment *Comment) error {
	const query = `
		INSERT INTO core.comment (id, novelid, authorid, body)
		VALUES ($1, $2, $3, $4)
		RETURNING createdat, updatedat`

	err := repository.pool.QueryRow(context, query,
		comment.ID,
		comment.NovelID,
		comment.AuthorID,
		comment.Body,
	).Scan(&comment.CreatedAt, &comment.UpdatedAt)

	if err != nil {
		return dberr.Wrap(err, "postgres_comment_repo_create")
	}

	return nil
}

/*
Delete removes a comment.

Returns:
  - error: apperr.NotFound or storage failures
*/
func (repository *PostgresCommentRepository) Delete(context context.Context, id string) error {
	const query = `DELETE FROM core.comment WHERE id = $1`

	tag, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return fmt.Errorf("postgres_comment_repo_delete_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return dberr.Wrap(pgx.ErrNoRows, "postgres_comment_repo_delete")
	}

	return nil
}

/*
SetHidden flips a comment's moderation visibility flag.

Returns:
  - error: apperr.NotFound or storage failures
*/
func (repository *PostgresCommentRepository) SetHidden(context context.Context, id string, hidden bool) error {
	const query = `UPDATE core.comment SET ishidden = $2, updatedat = NOW() WHERE id = $1`

	tag, err := repository.pool.Exec(context, query, id, hidden)
	if err != nil {
		return fmt.Errorf("postgres_comment_repo_set_hidden_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return dberr.Wrap(pgx.ErrNoRows, "postgres_comment_repo_set_hidden")
	}

	return nil
}

// # Postgres Vote Repository

// PostgresVoteRepository implements [VoteRepository] against core.vote,
// maintaining the denormalized counter on core.novel transactionally.
type PostgresVoteRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresVoteRepository creates the Postgres vote store.
func NewPostgresVoteRepository(pool *pgxpool.Pool) *PostgresVoteRepository {
	return &PostgresVoteRepository{pool: pool}
}

/*
Cast records a vote and bumps the novel's vote counter.

Description: ON CONFLICT DO NOTHING makes repeated votes no-ops; the counter
is only bumped when a row was actually inserted, inside one transaction.

Returns:
  - bool: Whether a new vote was recorded
  - error: apperr.Unprocessable on missing novel, or storage failures
*/
func (repository *PostgresVoteRepository) Cast(context context.Context, accountID, novelID string) (bool, error) {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return false, fmt.Errorf("postgres_vote_repo_begin_failed: %w", err)
	}
	defer transaction.Rollback(context)

	const insertQuery = `
		INSERT INTO core.vote (accountid, novelid)
		VALUES ($1, $2)
		ON CONFLICT (accountid, novelid) DO NOTHING`

	tag, err := transaction.Exec(context, insertQuery, accountID, novelID)
	if err != nil {
		return false, dberr.Wrap(err, "postgres_vote_repo_cast")
	}

	if tag.RowsAffected() == 0 {
		return false, nil
	}

	const bumpQuery = `UPDATE core.novel SET votecount = votecount + 1 WHERE id = $1`
	if _, err := transaction.Exec(context, bumpQuery, novelID); err != nil {
		return false, fmt.Errorf("postgres_vote_repo_bump_failed: %w", err)
	}

	if err := transaction.Commit(context); err != nil {
		return false, fmt.Errorf("postgres_vote_repo_commit_failed: %w", err)
	}

	return true, nil
}

/*
Retract removes a vote and drops the counter. Idempotent.

Returns:
  - bool: Whether a vote was actually removed
  - error: Storage failures
*/
func (repository *PostgresVoteRepository) Retract(context context.Context, accountID, novelID string) (bool, error) {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return false, fmt.Errorf("postgres_vote_repo_begin_failed: %w", err)
	}
	defer transaction.Rollback(context)

	const deleteQuery = `DELETE FROM core.vote WHERE accountid = $1 AND novelid = $2`

	tag, err := transaction.Exec(context, deleteQuery, accountID, novelID)
	if err != nil {
		return false, fmt.Errorf("postgres_vote_repo_retract_failed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return false, nil
	}

	const dropQuery = `UPDATE core.novel SET votecount = votecount - 1 WHERE id = $1`
	if _, err := transaction.Exec(context, dropQuery, novelID); err != nil {
		return false, fmt.Errorf("postgres_vote_repo_drop_failed: %w", err)
	}

	if err := transaction.Commit(context); err != nil {
		return false, fmt.Errorf("postgres_vote_repo_commit_failed: %w", err)
	}

	return true, nil
}
