// Copyright (c) 2026 Inkora. All rights reserved.

package novel

import "context"

// # Repository Contracts

// Repository defines the persistence contract for novels.
//
// The Postgres implementation additionally satisfies [FactsSource] for the
// entity guards.
type Repository interface {

	/*
		List returns a filtered, paginated slice of novels and the total count.

		Parameters:
		  - context: context.Context
		  - filter: Filter (states, author, language, search, sort)
		  - limit: int
		  - offset: int

		Returns:
		  - []*Novel: Matching records
		  - int: Total count matching the filter
		  - error: Storage failures
	*/
	List(context context.Context, filter Filter, limit, offset int) ([]*Novel, int, error)

	/*
		FindByID returns the novel with the given ID.

		Returns:
		  - *Novel: Hydrated entity
		  - error: apperr.NotFound or storage failures
	*/
	FindByID(context context.Context, id string) (*Novel, error)

	/*
		FindBySlug returns the novel with the given URL slug.

		Returns:
		  - *Novel: Hydrated entity
		  - error: apperr.NotFound or storage failures
	*/
	FindBySlug(context context.Context, slug string) (*Novel, error)

	/*
		Create persists a brand-new novel.

		Returns:
		  - error: apperr.Conflict on slug collision, or storage failures
	*/
	Create(context context.Context, novel *Novel) error

	/*
		Update persists metadata changes to an existing novel.

		Returns:
		  - error: Storage failures
	*/
	Update(context context.Context, novel *Novel) error

	/*
		SetState transitions the novel's lifecycle state. PublishedAt is
		stamped on the first transition into the published state.

		Returns:
		  - error: apperr.NotFound or storage failures
	*/
	SetState(context context.Context, id string, state State) error

	/*
		IncrementViews bumps the novel's view counter.

		Returns:
		  - error: Storage failures
	*/
	IncrementViews(context context.Context, id string) error
}

// ChapterRepository defines the persistence contract for chapters.
type ChapterRepository interface {

	/*
		ListByNovel returns the chapters of a novel ordered by number.

		Parameters:
		  - context: context.Context
		  - novelID: string (UUID)
		  - publishedOnly: bool (true for reader-facing listings)

		Returns:
		  - []*Chapter: Ordered chapter list, content omitted
		  - error: Storage failures
	*/
	ListByNovel(context context.Context, novelID string, publishedOnly bool) ([]*Chapter, error)

	/*
		FindByID returns a single chapter including its content.

		Returns:
		  - *Chapter: Hydrated entity
		  - error: apperr.NotFound or storage failures
	*/
	FindByID(context context.Context, id string) (*Chapter, error)

	/*
		Create persists a new chapter under its novel.

		Returns:
		  - error: apperr.Conflict on duplicate number, or storage failures
	*/
	Create(context context.Context, chapter *Chapter) error

	/*
		Update persists changes to an existing chapter.

		Returns:
		  - error: Storage failures
	*/
	Update(context context.Context, chapter *Chapter) error

	/*
		Delete removes a chapter.

		Returns:
		  - error: apperr.NotFound or storage failures
	*/
	Delete(context context.Context, id string) error
}
