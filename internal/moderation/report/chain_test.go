// Copyright (c) 2026 Inkora. All rights reserved.

package report

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkora/inkora/internal/novel"
	"github.com/inkora/inkora/internal/platform/apperr"
	"github.com/inkora/inkora/internal/social"
)

// # Test Doubles

type fakeReportRepository struct {
	reports    map[string]*Report
	probeCalls int
}

func newFakeReportRepository() *fakeReportRepository {
	return &fakeReportRepository{reports: map[string]*Report{}}
}

// HasActiveReport mirrors the store contract: only open reports suppress
// resubmission, so resolving or dismissing one lifts the block.
func (repository *fakeReportRepository) HasActiveReport(_ context.Context, reporterID string, contentType ContentType, contentID string) (bool, error) {
	repository.probeCalls++
	for _, report := range repository.reports {
		if report.ReporterID == reporterID &&
			report.ContentType == contentType &&
			report.ContentID == contentID &&
			report.Status == StatusOpen {
			return true, nil
		}
	}
	return false, nil
}

func (repository *fakeReportRepository) Create(_ context.Context, report *Report) error {
	repository.reports[report.ID] = report
	return nil
}

func (repository *fakeReportRepository) FindByID(_ context.Context, id string) (*Report, error) {
	if report, ok := repository.reports[id]; ok {
		return report, nil
	}
	return nil, apperr.NotFound("Report")
}

func (repository *fakeReportRepository) List(_ context.Context, status Status, _, _ int) ([]*Report, int, error) {
	var matched []*Report
	for _, report := range repository.reports {
		if status == "" || report.Status == status {
			matched = append(matched, report)
		}
	}
	return matched, len(matched), nil
}

func (repository *fakeReportRepository) SetStatus(_ context.Context, id string, status Status, resolvedBy string) error {
	report, ok := repository.reports[id]
	if !ok || report.Status != StatusOpen {
		return apperr.NotFound("Report")
	}
	report.Status = status
	report.ResolvedBy = resolvedBy
	return nil
}

type fakeNovelSource struct {
	novels map[string]*novel.Novel
}

func (source *fakeNovelSource) FindByID(_ context.Context, id string) (*novel.Novel, error) {
	if found, ok := source.novels[id]; ok {
		return found, nil
	}
	return nil, apperr.NotFound("Novel")
}

type fakeCommentSource struct {
	comments map[string]*social.Comment
}

func (source *fakeCommentSource) FindByID(_ context.Context, id string) (*social.Comment, error) {
	if found, ok := source.comments[id]; ok {
		return found, nil
	}
	return nil, apperr.NotFound("Comment")
}

func newTestReportService() (*Service, *fakeReportRepository) {
	repository := newFakeReportRepository()

	novels := &fakeNovelSource{novels: map[string]*novel.Novel{
		"novel-1": {ID: "novel-1", Title: "The Silent Citadel"},
	}}
	comments := &fakeCommentSource{comments: map[string]*social.Comment{
		"comment-1": {ID: "comment-1", Body: strings.Repeat("spoilers ahead ", 20)},
		"comment-2": {ID: "comment-2", Body: strings.Repeat("ネタバレ注意です ", 40)},
	}}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repository, novels, comments, logger), repository
}

// # Tests

func TestSubmit(t *testing.T) {
	t.Run("novel report is persisted with the title as label", func(t *testing.T) {
		service, repository := newTestReportService()

		report, err := service.Submit(context.Background(), SubmitInput{
			ContentType: ContentNovel,
			ContentID:   "novel-1",
			ReporterID:  "reader-1",
			Type:        TypeCopyright,
			Details:     "Scraped from another site",
		})
		require.NoError(t, err)

		assert.Equal(t, StatusOpen, report.Status)
		assert.Equal(t, "The Silent Citadel", report.ContentLabel)
		assert.Len(t, repository.reports, 1)
	})

	t.Run("comment report carries a truncated excerpt", func(t *testing.T) {
		service, _ := newTestReportService()

		report, err := service.Submit(context.Background(), SubmitInput{
			ContentType: ContentComment,
			ContentID:   "comment-1",
			ReporterID:  "reader-1",
			Type:        TypeSpoiler,
		})
		require.NoError(t, err)

		assert.LessOrEqual(t, utf8.RuneCountInString(report.ContentLabel), excerptLength+1)
		assert.True(t, strings.HasSuffix(report.ContentLabel, "…"))
	})

	t.Run("excerpt truncation never splits a multi-byte character", func(t *testing.T) {
		service, _ := newTestReportService()

		report, err := service.Submit(context.Background(), SubmitInput{
			ContentType: ContentComment,
			ContentID:   "comment-2",
			ReporterID:  "reader-1",
			Type:        TypeSpoiler,
		})
		require.NoError(t, err)

		assert.True(t, utf8.ValidString(report.ContentLabel))
		assert.Equal(t, excerptLength+1, utf8.RuneCountInString(report.ContentLabel))
		assert.True(t, strings.HasSuffix(report.ContentLabel, "…"))
	})

	t.Run("missing content is a NotFound, not a Conflict", func(t *testing.T) {
		service, repository := newTestReportService()

		_, err := service.Submit(context.Background(), SubmitInput{
			ContentType: ContentNovel,
			ContentID:   "novel-ghost",
			ReporterID:  "reader-1",
			Type:        TypeSpam,
		})

		assert.True(t, apperr.IsNotFound(err))
		// Existence short-circuits before the duplicate probe runs.
		assert.Zero(t, repository.probeCalls)
	})

	t.Run("unknown content type fails validation", func(t *testing.T) {
		service, _ := newTestReportService()

		_, err := service.Submit(context.Background(), SubmitInput{
			ContentType: ContentType("chapter"),
			ContentID:   "novel-1",
			ReporterID:  "reader-1",
			Type:        TypeSpam,
		})

		var appError *apperr.AppError
		require.ErrorAs(t, err, &appError)
		assert.Equal(t, "VALIDATION_ERROR", appError.Code)
	})

	t.Run("report type must be valid for the content type", func(t *testing.T) {
		service, _ := newTestReportService()

		// Spoiler reports only make sense against comments.
		_, err := service.Submit(context.Background(), SubmitInput{
			ContentType: ContentNovel,
			ContentID:   "novel-1",
			ReporterID:  "reader-1",
			Type:        TypeSpoiler,
		})

		var appError *apperr.AppError
		require.ErrorAs(t, err, &appError)
		assert.Equal(t, "VALIDATION_ERROR", appError.Code)
	})

	t.Run("duplicate open report is a content-specific conflict", func(t *testing.T) {
		service, _ := newTestReportService()

		first := SubmitInput{
			ContentType: ContentNovel,
			ContentID:   "novel-1",
			ReporterID:  "reader-1",
			Type:        TypeSpam,
		}

		_, err := service.Submit(context.Background(), first)
		require.NoError(t, err)

		_, err = service.Submit(context.Background(), first)

		var appError *apperr.AppError
		require.ErrorAs(t, err, &appError)
		assert.Equal(t, "CONFLICT", appError.Code)
		assert.Contains(t, appError.Message, "novel")
	})

	t.Run("suppression lifts once the first report is closed", func(t *testing.T) {
		service, repository := newTestReportService()

		input := SubmitInput{
			ContentType: ContentNovel,
			ContentID:   "novel-1",
			ReporterID:  "reader-1",
			Type:        TypeSpam,
		}

		first, err := service.Submit(context.Background(), input)
		require.NoError(t, err)

		_, err = service.Submit(context.Background(), input)
		require.Error(t, err)

		require.NoError(t, service.Resolve(context.Background(), first.ID, "admin-1"))

		second, err := service.Submit(context.Background(), input)
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, second.ID)
		assert.Len(t, repository.reports, 2)
	})

	t.Run("a different reporter may report the same target", func(t *testing.T) {
		service, _ := newTestReportService()

		input := SubmitInput{
			ContentType: ContentNovel,
			ContentID:   "novel-1",
			ReporterID:  "reader-1",
			Type:        TypeSpam,
		}

		_, err := service.Submit(context.Background(), input)
		require.NoError(t, err)

		input.ReporterID = "reader-2"
		_, err = service.Submit(context.Background(), input)
		assert.NoError(t, err)
	})
}

func TestModerationWorkflow(t *testing.T) {
	service, repository := newTestReportService()

	report, err := service.Submit(context.Background(), SubmitInput{
		ContentType: ContentComment,
		ContentID:   "comment-1",
		ReporterID:  "reader-1",
		Type:        TypeAbuse,
	})
	require.NoError(t, err)

	require.NoError(t, service.Resolve(context.Background(), report.ID, "admin-1"))

	stored := repository.reports[report.ID]
	assert.Equal(t, StatusResolved, stored.Status)
	assert.Equal(t, "admin-1", stored.ResolvedBy)

	// Closed reports cannot be re-closed.
	assert.Error(t, service.Dismiss(context.Background(), report.ID, "admin-1"))
}

func TestChain_StepOrderAndShortCircuit(t *testing.T) {
	var order []string

	chain := &Chain{steps: []Step{
		func(_ context.Context, _ *Context) error {
			order = append(order, "first")
			return nil
		},
		func(_ context.Context, _ *Context) error {
			order = append(order, "second")
			return apperr.Conflict("stop here")
		},
		func(_ context.Context, _ *Context) error {
			order = append(order, "third")
			return nil
		},
	}}

	err := chain.Run(context.Background(), &Context{})

	assert.Error(t, err)
	assert.Equal(t, []string{"first", "second"}, order)
}
