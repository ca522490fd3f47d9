// Copyright (c) 2026 Inkora. All rights reserved.

package novel

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/inkora/inkora/internal/platform/apperr"
	"github.com/inkora/inkora/internal/platform/validate"
	"github.com/inkora/inkora/pkg/slug"
	"github.com/inkora/inkora/pkg/uuid"
)

// # Service Layer

// Service orchestrates the business logic for the novel catalogue.
type Service struct {
	novels   Repository
	chapters ChapterRepository
	logger   *slog.Logger
}

// NewService constructs a new [Service] with its required repositories.
func NewService(novels Repository, chapters ChapterRepository, logger *slog.Logger) *Service {
	return &Service{
		novels:   novels,
		chapters: chapters,
		logger:   logger,
	}
}

// # Discovery

/*
ListNovels retrieves a paginated and filtered collection of novels.

Description: Anonymous callers only ever see published novels; the handler
layer widens the state filter for owners and admins.

Parameters:
  - context: context.Context
  - filter: Filter
  - limit: int
  - offset: int

Returns:
  - []*Novel: Matching records
  - int: Total count for pagination metadata
  - error: Storage failures
*/
func (service *Service) ListNovels(context context.Context, filter Filter, limit, offset int) ([]*Novel, int, error) {
	if len(filter.States) == 0 {
		filter.States = []State{StatePublished}
	}
	return service.novels.List(context, filter, limit, offset)
}

/*
GetNovel fetches a single novel by UUID or SEO slug.

Description: If the identifier matches the UUID format a primary key lookup
is performed; otherwise it resolves via the unique URL slug.

Parameters:
  - context: context.Context
  - identifier: string (UUID or slug)

Returns:
  - *Novel: Hydrated entity
  - error: apperr.NotFound if no match is found
*/
func (service *Service) GetNovel(context context.Context, identifier string) (*Novel, error) {
	if isUUID(identifier) {
		return service.novels.FindByID(context, identifier)
	}
	return service.novels.FindBySlug(context, identifier)
}

/*
ReadNovel fetches a novel for public reading and bumps its view counter.

Description: Non-published novels are hidden from this path entirely —
ownership-aware access goes through GetNovel behind the edit guard.

Returns:
  - *Novel: Hydrated entity
  - error: apperr.NotFound for missing or non-published novels
*/
func (service *Service) ReadNovel(context context.Context, identifier string) (*Novel, error) {
	found, err := service.GetNovel(context, identifier)
	if err != nil {
		return nil, err
	}

	if found.State != StatePublished {
		return nil, apperr.NotFound("Novel")
	}

	// View tracking is best-effort; a failed bump never blocks the read.
	if err := service.novels.IncrementViews(context, found.ID); err != nil {
		service.logger.Warn("novel_view_bump_failed", slog.String("novel_id", found.ID), slog.Any("error", err))
	}

	return found, nil
}

// # Authoring

// CreateInput holds the data for a new novel.
type CreateInput struct {
	Title    string
	Synopsis string
	CoverURL string
	Language string
}

/*
CreateNovel initialises a new draft owned by the calling author.

Description: Validates the metadata, generates a stable UUID v7 identity and
an SEO-friendly slug, and persists the draft.

Parameters:
  - context: context.Context
  - authorID: string (the authenticated author account)
  - input: CreateInput

Returns:
  - *Novel: The created draft
  - error: Validation, slug conflict, or storage failures
*/
func (service *Service) CreateNovel(context context.Context, authorID string, input CreateInput) (*Novel, error) {
	validator := &validate.Validator{}
	validator.Required(FieldTitle, input.Title).MaxLen(FieldTitle, input.Title, 200)
	validator.MaxLen(FieldSynopsis, input.Synopsis, 2000)

	if err := validator.Err(); err != nil {
		return nil, err
	}

	language := input.Language
	if language == "" {
		language = "en"
	}

	novel := &Novel{
		ID:       uuid.New(),
		AuthorID: authorID,
		Title:    input.Title,
		Slug:     slug.From(input.Title),
		Synopsis: input.Synopsis,
		CoverURL: input.CoverURL,
		State:    StateDraft,
		Language: language,
	}

	if err := service.novels.Create(context, novel); err != nil {
		return nil, err
	}

	service.logger.Info("novel_created",
		slog.String("novel_id", novel.ID),
		slog.String("author_id", authorID),
	)

	return novel, nil
}

// UpdateInput holds partial metadata changes. Nil fields are left untouched.
type UpdateInput struct {
	Title    *string
	Synopsis *string
	CoverURL *string
}

/*
UpdateNovel applies metadata changes to an existing novel.

Description: Authorization (ownership + editable state) is enforced by the
novel.canEdit guard before this method runs. The slug is regenerated when
the title changes.

Returns:
  - *Novel: The updated entity
  - error: Validation or storage failures
*/
func (service *Service) UpdateNovel(context context.Context, id string, input UpdateInput) (*Novel, error) {
	novel, err := service.novels.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	validator := &validate.Validator{}

	if input.Title != nil {
		validator.Required(FieldTitle, *input.Title).MaxLen(FieldTitle, *input.Title, 200)
	}
	if input.Synopsis != nil {
		validator.MaxLen(FieldSynopsis, *input.Synopsis, 2000)
	}

	if err := validator.Err(); err != nil {
		return nil, err
	}

	if input.Title != nil && *input.Title != novel.Title {
		novel.Title = *input.Title
		novel.Slug = slug.From(*input.Title)
	}
	if input.Synopsis != nil {
		novel.Synopsis = *input.Synopsis
	}
	if input.CoverURL != nil {
		novel.CoverURL = *input.CoverURL
	}

	if err := service.novels.Update(context, novel); err != nil {
		return nil, err
	}

	service.logger.Info("novel_updated", slog.String("novel_id", novel.ID))

	return novel, nil
}

// # Lifecycle Transitions

// transitions maps each lifecycle action to the states it may start from.
var transitions = map[State][]State{
	StatePublished: {StateDraft, StateHidden},
	StateHidden:    {StatePublished},
	StateArchived:  {StateDraft, StatePublished, StateHidden},
}

/*
Transition moves a novel into the target lifecycle state.

Description: Validates the transition against the lifecycle state machine.
Publishing a hidden novel restores it; archiving is terminal.

Parameters:
  - context: context.Context
  - id: string (UUID)
  - target: State

Returns:
  - *Novel: The novel in its new state
  - error: apperr.Unprocessable for illegal transitions
*/
func (service *Service) Transition(context context.Context, id string, target State) (*Novel, error) {
	novel, err := service.novels.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	allowedFrom, known := transitions[target]
	if !known || !stateIn(novel.State, allowedFrom) {
		return nil, apperr.Unprocessable("Cannot move novel from state '" + string(novel.State) + "' to '" + string(target) + "'")
	}

	if err := service.novels.SetState(context, id, target); err != nil {
		return nil, err
	}

	novel.State = target

	service.logger.Info("novel_state_changed",
		slog.String("novel_id", id),
		slog.String("state", string(target)),
	)

	return novel, nil
}

// # Chapters

/*
ListChapters returns the chapters of a novel.

Description: Readers only see published chapters of published novels; the
canSeeDrafts flag is set by the handler when the edit guard grants access.

Returns:
  - []*Chapter: Ordered chapter list
  - error: apperr.NotFound or storage failures
*/
func (service *Service) ListChapters(context context.Context, novelID string, canSeeDrafts bool) ([]*Chapter, error) {
	novel, err := service.novels.FindByID(context, novelID)
	if err != nil {
		return nil, err
	}

	if !canSeeDrafts && novel.State != StatePublished {
		return nil, apperr.NotFound("Novel")
	}

	return service.chapters.ListByNovel(context, novelID, !canSeeDrafts)
}

// ChapterInput holds the data for a new or updated chapter.
type ChapterInput struct {
	Number  float64
	Title   string
	Content string
	Publish bool
}

/*
CreateChapter appends a chapter to a novel.

Description: Authorization runs through the novel.canEdit guard. The word
count is derived from the content at write time.

Returns:
  - *Chapter: The created chapter
  - error: Validation, duplicate number conflict, or storage failures
*/
func (service *Service) CreateChapter(context context.Context, novelID string, input ChapterInput) (*Chapter, error) {
	validator := &validate.Validator{}
	validator.Required(FieldChapterContent, input.Content)
	validator.MaxLen(FieldChapterTitle, input.Title, 200)
	validator.Custom(FieldChapterNumber, input.Number <= 0, "must be greater than zero")

	if err := validator.Err(); err != nil {
		return nil, err
	}

	chapter := &Chapter{
		ID:        uuid.New(),
		NovelID:   novelID,
		Number:    input.Number,
		Title:     input.Title,
		Content:   input.Content,
		WordCount: len(strings.Fields(input.Content)),
	}

	if input.Publish {
		now := time.Now()
		chapter.PublishedAt = &now
	}

	if err := service.chapters.Create(context, chapter); err != nil {
		return nil, err
	}

	service.logger.Info("chapter_created",
		slog.String("novel_id", novelID),
		slog.String("chapter_id", chapter.ID),
	)

	return chapter, nil
}

/*
GetChapter returns a chapter for reading.

Description: Draft chapters are only visible when the caller passed the edit
guard (canSeeDrafts).

Returns:
  - *Chapter: Hydrated entity with content
  - error: apperr.NotFound or storage failures
*/
func (service *Service) GetChapter(context context.Context, chapterID string, canSeeDrafts bool) (*Chapter, error) {
	chapter, err := service.chapters.FindByID(context, chapterID)
	if err != nil {
		return nil, err
	}

	if chapter.PublishedAt == nil && !canSeeDrafts {
		return nil, apperr.NotFound("Chapter")
	}

	return chapter, nil
}

/*
DeleteChapter removes a chapter from its novel.

Returns:
  - error: apperr.NotFound or storage failures
*/
func (service *Service) DeleteChapter(context context.Context, chapterID string) error {
	if err := service.chapters.Delete(context, chapterID); err != nil {
		return err
	}

	service.logger.Warn("chapter_deleted", slog.String("chapter_id", chapterID))

	return nil
}

// # Internal Helpers

// isUUID returns true if the string matches the standard UUID length.
func isUUID(s string) bool {
	return len(s) == 36
}
