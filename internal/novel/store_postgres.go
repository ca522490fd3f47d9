// Copyright (c) 2026 Inkora. All rights reserved.

package novel

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inkora/inkora/internal/platform/dberr"
)

// # Postgres Novel Repository

// PostgresRepository implements [Repository] and [FactsSource] using pgx
// against the core.novel table.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates the Postgres novel store.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const novelColumns = `
	id, authorid, title, slug, synopsis, coverurl, state, language,
	chaptercount, viewcount, votecount, createdat, updatedat, publishedat`

// scanNovel hydrates a Novel from a row carrying novelColumns.
func scanNovel(row pgx.Row) (*Novel, error) {
	novel := &Novel{}
	err := row.Scan(
		&novel.ID,
		&novel.AuthorID,
		&novel.Title,
		&novel.Slug,
		&novel.Synopsis,
		&novel.CoverURL,
		&novel.State,
		&novel.Language,
		&novel.ChapterCount,
		&novel.ViewCount,
		&novel.VoteCount,
		&novel.CreatedAt,
		&novel.UpdatedAt,
		&novel.PublishedAt,
	)
	if err != nil {
		return nil, err
	}
	return novel, nil
}

/*
List returns a filtered, paginated slice of novels and the total count.

Description: Uses COUNT(*) OVER() so the total arrives with the rows in one
round-trip. Filters are appended dynamically with positional arguments.

Parameters:
  - context: context.Context
  - filter: Filter
  - limit: int
  - offset: int

Returns:
  - []*Novel: Hydrated entities
  - int: Total count matching the filter
  - error: Database execution errors
*/
func (repository *PostgresRepository) List(context context.Context, filter Filter, limit, offset int) ([]*Novel, int, error) {
	var queryBuilder strings.Builder
	var args []any
	argID := 1

	queryBuilder.WriteString(`
		SELECT ` + novelColumns + `, COUNT(*) OVER() AS total_count
		FROM core.novel
		WHERE 1=1`)

	if len(filter.States) > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" AND state = ANY($%d)", argID))
		args = append(args, filter.States)
		argID++
	}

	if filter.AuthorID != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND authorid = $%d", argID))
		args = append(args, filter.AuthorID)
		argID++
	}

	if filter.Language != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND language = $%d", argID))
		args = append(args, filter.Language)
		argID++
	}

	if filter.Query != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND title ILIKE $%d", argID))
		args = append(args, "%"+filter.Query+"%")
		argID++
	}

	// Sorting
	sort := "createdat DESC"
	switch filter.Sort {
	case "popular":
		sort = "viewcount DESC"
	case "votes":
		sort = "votecount DESC"
	case "latest":
		sort = "publishedat DESC NULLS LAST"
	}
	queryBuilder.WriteString(" ORDER BY " + sort)

	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argID, argID+1))
	args = append(args, limit, offset)

	rows, err := repository.pool.Query(context, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_novel_repo_list_failed: %w", err)
	}
	defer rows.Close()

	var novels []*Novel
	total := 0

	for rows.Next() {
		novel := &Novel{}
		err := rows.Scan(
			&novel.ID,
			&novel.AuthorID,
			&novel.Title,
			&novel.Slug,
			&novel.Synopsis,
			&novel.CoverURL,
			&novel.State,
			&novel.Language,
			&novel.ChapterCount,
			&novel.ViewCount,
			&novel.VoteCount,
			&novel.CreatedAt,
			&novel.UpdatedAt,
			&novel.PublishedAt,
			&total,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres_novel_repo_scan_failed: %w", err)
		}
		novels = append(novels, novel)
	}

	return novels, total, rows.Err()
}

/*
FindByID returns the novel with the given ID.

Returns:
  - *Novel: Hydrated entity
  - error: apperr.NotFound or retrieval failures
*/
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Novel, error) {
	const query = `
		SELECT ` + novelColumns + `
		FROM core.novel
		WHERE id = $1`

	novel, err := scanNovel(repository.pool.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "postgres_novel_repo_find_by_id")
	}

	return novel, nil
}

/*
FindBySlug returns the novel with the given URL slug.

Returns:
  - *Novel: Hydrated entity
  - error: apperr.NotFound or retrieval failures
*/
func (repository *PostgresRepository) FindBySlug(context context.Context, slug string) (*Novel, error) {
	const query = `
		SELECT ` + novelColumns + `
		FROM core.novel
		WHERE slug = $1`

	novel, err := scanNovel(repository.pool.QueryRow(context, query, slug))
	if err != nil {
		return nil, dberr.Wrap(err, "postgres_novel_repo_find_by_slug")
	}

	return novel, nil
}

/*
Create persists a brand-new novel.

Returns:
  - error: apperr.Conflict on slug collision, or storage failures
*/
func (repository *PostgresRepository) Create(context context.Context, novel *Novel) error {
	const query = `
		INSERT INTO core.novel (
			id, authorid, title, slug, synopsis, coverurl, state, language
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := repository.pool.Exec(context, query,
		novel.ID,
		novel.AuthorID,
		novel.Title,
		novel.Slug,
		novel.Synopsis,
		novel.CoverURL,
		novel.State,
		novel.Language,
	)

	if err != nil {
		return dberr.Wrap(err, "postgres_novel_repo_create")
	}

	return nil
}

/*
Update persists metadata changes to an existing novel.

Returns:
  - error: apperr.Conflict on slug collision, or storage failures
*/
func (repository *PostgresRepository) Update(context context.Context, novel *Novel) error {
	const query = `
		UPDATE core.novel
		SET title = $2, slug = $3, synopsis = $4, coverurl = $5, updatedat = NOW()
		WHERE id = $1`

	_, err := repository.pool.Exec(context, query,
		novel.ID,
		novel.Title,
		novel.Slug,
		novel.Synopsis,
		novel.CoverURL,
	)

	if err != nil {
		return dberr.Wrap(err, "postgres_novel_repo_update")
	}

	return nil
}

/*
SetState transitions the novel's lifecycle state.

Description: PublishedAt is stamped exactly once, on the first transition
into the published state.

Returns:
  - error: apperr.NotFound or storage failures
*/
func (repository *PostgresRepository) SetState(context context.Context, id string, state State) error {
	const query = `
		UPDATE core.novel
		SET state = $2,
		    publishedat = CASE WHEN $2 = 'published' AND publishedat IS NULL THEN NOW() ELSE publishedat END,
		    updatedat = NOW()
		WHERE id = $1`

	tag, err := repository.pool.Exec(context, query, id, state)
	if err != nil {
		return dberr.Wrap(err, "postgres_novel_repo_set_state")
	}
	if tag.RowsAffected() == 0 {
		return dberr.Wrap(pgx.ErrNoRows, "postgres_novel_repo_set_state")
	}

	return nil
}

/*
IncrementViews bumps the novel's view counter.

Returns:
  - error: Storage failures
*/
func (repository *PostgresRepository) IncrementViews(context context.Context, id string) error {
	const query = `UPDATE core.novel SET viewcount = viewcount + 1 WHERE id = $1`

	if _, err := repository.pool.Exec(context, query, id); err != nil {
		return fmt.Errorf("postgres_novel_repo_increment_views_failed: %w", err)
	}

	return nil
}

/*
FindOwnershipFacts implements [FactsSource] for the entity guards.

Description: The hot guard-path query — projects only the owner and the
lifecycle state.

Returns:
  - *OwnershipFacts: Guard projection
  - error: apperr.NotFound or retrieval failures
*/
func (repository *PostgresRepository) FindOwnershipFacts(context context.Context, novelID string) (*OwnershipFacts, error) {
	const query = `SELECT authorid, state FROM core.novel WHERE id = $1`

	facts := &OwnershipFacts{}
	err := repository.pool.QueryRow(context, query, novelID).Scan(&facts.AuthorID, &facts.State)
	if err != nil {
		return nil, dberr.Wrap(err, "postgres_novel_repo_find_ownership_facts")
	}

	return facts, nil
}

// # Postgres Chapter Repository

// PostgresChapterRepository implements [ChapterRepository] against the
// core.chapter table.
type PostgresChapterRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresChapterRepository creates the Postgres chapter store.
func NewPostgresChapterRepository(pool *pgxpool.Pool) *PostgresChapterRepository {
	return &PostgresChapterRepository{pool: pool}
}

/*
ListByNovel returns the chapters of a novel ordered by number.

Description: Content is omitted from listings; readers fetch it per chapter.

Parameters:
  - context: context.Context
  - novelID: string (UUID)
  - publishedOnly: bool

Returns:
  - []*Chapter: Ordered chapter list
  - error: Storage failures
*/
func (repository *PostgresChapterRepository) ListByNovel(context context.Context, novelID string, publishedOnly bool) ([]*Chapter, error) {
	query := `
		SELECT id, novelid, number, title, wordcount, publishedat, createdat, updatedat
		FROM core.chapter
		WHERE novelid = $1`

	if publishedOnly {
		query += ` AND publishedat IS NOT NULL`
	}
	query += ` ORDER BY number ASC`

	rows, err := repository.pool.Query(context, query, novelID)
	if err != nil {
		return nil, fmt.Errorf("postgres_chapter_repo_list_failed: %w", err)
	}
	defer rows.Close()

	var chapters []*Chapter
	for rows.Next() {
		chapter := &Chapter{}
		err := rows.Scan(
			&chapter.ID,
			&chapter.NovelID,
			&chapter.Number,
			&chapter.Title,
			&chapter.WordCount,
			&chapter.PublishedAt,
			&chapter.CreatedAt,
			&chapter.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres_chapter_repo_scan_failed: %w", err)
		}
		chapters = append(chapters, chapter)
	}

	return chapters, rows.Err()
}

/*
FindByID returns a single chapter including its content.

Returns:
  - *Chapter: Hydrated entity
  - error: apperr.NotFound or retrieval failures
*/
func (repository *PostgresChapterRepository) FindByID(context context.Context, id string) (*Chapter, error) {
	const query = `
		SELECT id, novelid, number, title, content, wordcount, publishedat, createdat, updatedat
		FROM core.chapter
		WHERE id = $1`

	chapter := &Chapter{}
	err := repository.pool.QueryRow(context, query, id).Scan(
		&chapter.ID,
		&chapter.NovelID,
		&chapter.Number,
		&chapter.Title,
		&chapter.Content,
		&chapter.WordCount,
		&chapter.PublishedAt,
		&chapter.CreatedAt,
		&chapter.UpdatedAt,
	)

	if err != nil {
		return nil, dberr.Wrap(err, "postgres_chapter_repo_find_by_id")
	}

	return chapter, nil
}

/*
Create persists a new chapter and bumps the novel's chapter counter.

Returns:
  - error: apperr.Conflict on duplicate number, or storage failures
*/
func (repository *PostgresChapterRepository) Create(context context.Context, chapter *Chapter) error {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres_chapter_repo_begin_failed: %w", err)
	}
	defer transaction.Rollback(context)

	const insertQuery = `
		INSERT INTO core.chapter (
			id, novelid, number, title, content, wordcount, publishedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = transaction.Exec(context, insertQuery,
		chapter.ID,
		chapter.NovelID,
		chapter.Number,
		chapter.Title,
		chapter.Content,
		chapter.WordCount,
		chapter.PublishedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "postgres_chapter_repo_create")
	}

	const bumpQuery = `UPDATE core.novel SET chaptercount = chaptercount + 1 WHERE id = $1`
	if _, err := transaction.Exec(context, bumpQuery, chapter.NovelID); err != nil {
		return fmt.Errorf("postgres_chapter_repo_bump_failed: %w", err)
	}

	if err := transaction.Commit(context); err != nil {
		return fmt.Errorf("postgres_chapter_repo_commit_failed: %w", err)
	}

	return nil
}

/*
Update persists changes to an existing chapter.

Returns:
  - error: Storage failures
*/
func (repository *PostgresChapterRepository) Update(context context.Context, chapter *Chapter) error {
	const query = `
		UPDATE core.chapter
		SET number = $2, title = $3, content = $4, wordcount = $5, publishedat = $6, updatedat = NOW()
		WHERE id = $1`

	_, err := repository.pool.Exec(context, query,
		chapter.ID,
		chapter.Number,
		chapter.Title,
		chapter.Content,
		chapter.WordCount,
		chapter.PublishedAt,
	)

	if err != nil {
		return dberr.Wrap(err, "postgres_chapter_repo_update")
	}

	return nil
}

/*
Delete removes a chapter and decrements the novel's chapter counter.

Returns:
  - error: apperr.NotFound or storage failures
*/
func (repository *PostgresChapterRepository) Delete(context context.Context, id string) error {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres_chapter_repo_begin_failed: %w", err)
	}
	defer transaction.Rollback(context)

	const deleteQuery = `DELETE FROM core.chapter WHERE id = $1 RETURNING novelid`

	var novelID string
	if err := transaction.QueryRow(context, deleteQuery, id).Scan(&novelID); err != nil {
		return dberr.Wrap(err, "postgres_chapter_repo_delete")
	}

	const dropQuery = `UPDATE core.novel SET chaptercount = chaptercount - 1 WHERE id = $1`
	if _, err := transaction.Exec(context, dropQuery, novelID); err != nil {
		return fmt.Errorf("postgres_chapter_repo_drop_failed: %w", err)
	}

	if err := transaction.Commit(context); err != nil {
		return fmt.Errorf("postgres_chapter_repo_commit_failed: %w", err)
	}

	return nil
}
