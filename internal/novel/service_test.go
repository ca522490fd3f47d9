// Copyright (c) 2026 Inkora. All rights reserved.

package novel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkora/inkora/internal/platform/apperr"
)

// # Test Doubles

type fakeNovelRepository struct {
	novels map[string]*Novel
	views  map[string]int
}

func newFakeNovelRepository(seed ...*Novel) *fakeNovelRepository {
	repository := &fakeNovelRepository{novels: map[string]*Novel{}, views: map[string]int{}}
	for _, novel := range seed {
		repository.novels[novel.ID] = novel
	}
	return repository
}

func (repository *fakeNovelRepository) List(_ context.Context, filter Filter, _, _ int) ([]*Novel, int, error) {
	var matched []*Novel
	for _, novel := range repository.novels {
		if len(filter.States) > 0 && !stateIn(novel.State, filter.States) {
			continue
		}
		if filter.AuthorID != "" && novel.AuthorID != filter.AuthorID {
			continue
		}
		matched = append(matched, novel)
	}
	return matched, len(matched), nil
}

func (repository *fakeNovelRepository) FindByID(_ context.Context, id string) (*Novel, error) {
	if novel, ok := repository.novels[id]; ok {
		return novel, nil
	}
	return nil, apperr.NotFound("Novel")
}

func (repository *fakeNovelRepository) FindBySlug(_ context.Context, slug string) (*Novel, error) {
	for _, novel := range repository.novels {
		if novel.Slug == slug {
			return novel, nil
		}
	}
	return nil, apperr.NotFound("Novel")
}

func (repository *fakeNovelRepository) Create(_ context.Context, novel *Novel) error {
	repository.novels[novel.ID] = novel
	return nil
}

func (repository *fakeNovelRepository) Update(_ context.Context, novel *Novel) error {
	repository.novels[novel.ID] = novel
	return nil
}

func (repository *fakeNovelRepository) SetState(_ context.Context, id string, state State) error {
	novel, ok := repository.novels[id]
	if !ok {
		return apperr.NotFound("Novel")
	}
	novel.State = state
	return nil
}

func (repository *fakeNovelRepository) IncrementViews(_ context.Context, id string) error {
	repository.views[id]++
	return nil
}

type fakeChapterRepository struct {
	chapters map[string]*Chapter
}

func newFakeChapterRepository() *fakeChapterRepository {
	return &fakeChapterRepository{chapters: map[string]*Chapter{}}
}

func (repository *fakeChapterRepository) ListByNovel(_ context.Context, novelID string, publishedOnly bool) ([]*Chapter, error) {
	var matched []*Chapter
	for _, chapter := range repository.chapters {
		if chapter.NovelID != novelID {
			continue
		}
		if publishedOnly && chapter.PublishedAt == nil {
			continue
		}
		matched = append(matched, chapter)
	}
	return matched, nil
}

func (repository *fakeChapterRepository) FindByID(_ context.Context, id string) (*Chapter, error) {
	if chapter, ok := repository.chapters[id]; ok {
		return chapter, nil
	}
	return nil, apperr.NotFound("Chapter")
}

func (repository *fakeChapterRepository) Create(_ context.Context, chapter *Chapter) error {
	repository.chapters[chapter.ID] = chapter
	return nil
}

func (repository *fakeChapterRepository) Update(_ context.Context, chapter *Chapter) error {
	repository.chapters[chapter.ID] = chapter
	return nil
}

func (repository *fakeChapterRepository) Delete(_ context.Context, id string) error {
	if _, ok := repository.chapters[id]; !ok {
		return apperr.NotFound("Chapter")
	}
	delete(repository.chapters, id)
	return nil
}

func newTestService(seed ...*Novel) (*Service, *fakeNovelRepository, *fakeChapterRepository) {
	novels := newFakeNovelRepository(seed...)
	chapters := newFakeChapterRepository()
	return NewService(novels, chapters, discardLogger()), novels, chapters
}

// # Tests

func TestCreateNovel(t *testing.T) {
	service, _, _ := newTestService()

	created, err := service.CreateNovel(context.Background(), "author-1", CreateInput{
		Title:    "The Silent Citadel",
		Synopsis: "A tower that remembers.",
	})
	require.NoError(t, err)

	assert.Equal(t, StateDraft, created.State)
	assert.Equal(t, "author-1", created.AuthorID)
	assert.Equal(t, "the-silent-citadel", created.Slug)
	assert.Equal(t, "en", created.Language)

	_, err = service.CreateNovel(context.Background(), "author-1", CreateInput{})
	assert.Error(t, err, "missing title must fail validation")
}

func TestTransition(t *testing.T) {
	testCases := []struct {
		name    string
		from    State
		to      State
		allowed bool
	}{
		{"draft publishes", StateDraft, StatePublished, true},
		{"hidden republishes", StateHidden, StatePublished, true},
		{"published hides", StatePublished, StateHidden, true},
		{"draft cannot hide", StateDraft, StateHidden, false},
		{"draft archives", StateDraft, StateArchived, true},
		{"published archives", StatePublished, StateArchived, true},
		{"archived is terminal", StateArchived, StatePublished, false},
		{"archived cannot re-archive", StateArchived, StateArchived, false},
		{"published cannot re-publish", StatePublished, StatePublished, false},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			service, _, _ := newTestService(&Novel{ID: "novel-1", AuthorID: "author-1", State: testCase.from})

			updated, err := service.Transition(context.Background(), "novel-1", testCase.to)

			if !testCase.allowed {
				var appError *apperr.AppError
				require.ErrorAs(t, err, &appError)
				assert.Equal(t, "UNPROCESSABLE", appError.Code)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, testCase.to, updated.State)
		})
	}
}

func TestReadNovel(t *testing.T) {
	service, novels, _ := newTestService(
		&Novel{ID: "novel-pub", Slug: "published-one", State: StatePublished},
		&Novel{ID: "novel-draft", Slug: "draft-one", State: StateDraft},
	)

	t.Run("published novel is readable and bumps views", func(t *testing.T) {
		found, err := service.ReadNovel(context.Background(), "published-one")
		require.NoError(t, err)
		assert.Equal(t, "novel-pub", found.ID)
		assert.Equal(t, 1, novels.views["novel-pub"])
	})

	t.Run("draft is invisible on the public path", func(t *testing.T) {
		_, err := service.ReadNovel(context.Background(), "draft-one")
		assert.True(t, apperr.IsNotFound(err))
		assert.Zero(t, novels.views["novel-draft"])
	})
}

func TestChapters(t *testing.T) {
	service, _, chapters := newTestService(&Novel{ID: "novel-1", AuthorID: "author-1", State: StatePublished})

	published, err := service.CreateChapter(context.Background(), "novel-1", ChapterInput{
		Number:  1,
		Title:   "Arrival",
		Content: "The gates were already open.",
		Publish: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, published.WordCount)
	require.NotNil(t, published.PublishedAt)

	draft, err := service.CreateChapter(context.Background(), "novel-1", ChapterInput{
		Number:  2,
		Content: "Unfinished business.",
	})
	require.NoError(t, err)
	assert.Nil(t, draft.PublishedAt)

	t.Run("readers only see published chapters", func(t *testing.T) {
		visible, err := service.ListChapters(context.Background(), "novel-1", false)
		require.NoError(t, err)
		assert.Len(t, visible, 1)
	})

	t.Run("the guard-approved caller sees drafts", func(t *testing.T) {
		visible, err := service.ListChapters(context.Background(), "novel-1", true)
		require.NoError(t, err)
		assert.Len(t, visible, 2)
	})

	t.Run("draft chapter content is hidden from readers", func(t *testing.T) {
		_, err := service.GetChapter(context.Background(), draft.ID, false)
		assert.True(t, apperr.IsNotFound(err))

		found, err := service.GetChapter(context.Background(), draft.ID, true)
		require.NoError(t, err)
		assert.Equal(t, draft.ID, found.ID)
	})

	t.Run("invalid chapter number fails validation", func(t *testing.T) {
		_, err := service.CreateChapter(context.Background(), "novel-1", ChapterInput{Number: 0, Content: "x"})
		assert.Error(t, err)
	})

	require.NoError(t, service.DeleteChapter(context.Background(), draft.ID))
	assert.Len(t, chapters.chapters, 1)
}
