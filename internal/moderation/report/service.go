// Copyright (c) 2026 Inkora. All rights reserved.

package report

import (
	"context"
	"log/slog"
	"unicode/utf8"

	"github.com/inkora/inkora/internal/novel"
	"github.com/inkora/inkora/internal/social"
	"github.com/inkora/inkora/pkg/uuid"
)

// # Content Lookup Ports

// NovelSource is the lookup port for reportable novels, implemented by the
// novel repository.
type NovelSource interface {
	FindByID(context context.Context, id string) (*novel.Novel, error)
}

// CommentSource is the lookup port for reportable comments, implemented by
// the social comment repository.
type CommentSource interface {
	FindByID(context context.Context, id string) (*social.Comment, error)
}

// excerptLength caps the comment excerpt denormalized onto a report.
const excerptLength = 120

// # Repository Contract

// Repository defines the persistence contract for reports.
type Repository interface {
	DuplicateProbe

	/*
		Create persists a new report. Single atomic insert.

		Returns:
		  - error: Storage failures
	*/
	Create(context context.Context, report *Report) error

	/*
		FindByID returns a single report.

		Returns:
		  - *Report: Hydrated entity
		  - error: apperr.NotFound or storage failures
	*/
	FindByID(context context.Context, id string) (*Report, error)

	/*
		List returns reports filtered by status, newest first.

		Parameters:
		  - context: context.Context
		  - status: Status (empty for all)
		  - limit: int
		  - offset: int

		Returns:
		  - []*Report: Matching reports
		  - int: Total count
		  - error: Storage failures
	*/
	List(context context.Context, status Status, limit, offset int) ([]*Report, int, error)

	/*
		SetStatus moves a report to a terminal moderation state.

		Returns:
		  - error: apperr.NotFound or storage failures
	*/
	SetStatus(context context.Context, id string, status Status, resolvedBy string) error
}

// # Service Layer

// Service orchestrates report submission and the moderation workflow.
type Service struct {
	reports Repository
	chain   *Chain
	logger  *slog.Logger
}

/*
NewService constructs the report [Service] and assembles the submission
chain with one binding per reportable content type.

Parameters:
  - reports: Repository
  - novels: NovelSource
  - comments: CommentSource
  - logger: *slog.Logger

Returns:
  - *Service: Ready-to-use service
*/
func NewService(reports Repository, novels NovelSource, comments CommentSource, logger *slog.Logger) *Service {
	bindings := map[ContentType]*ContentBinding{

		ContentNovel: {
			Exists: func(context context.Context, contentID string) (string, error) {
				found, err := novels.FindByID(context, contentID)
				if err != nil {
					return "", err
				}
				return found.Title, nil
			},
			ValidTypes:       []Type{TypeSpam, TypeCopyright, TypeInappropriate, TypeOther},
			DuplicateMessage: "You already have an open report on this novel",
		},

		ContentComment: {
			Exists: func(context context.Context, contentID string) (string, error) {
				found, err := comments.FindByID(context, contentID)
				if err != nil {
					return "", err
				}
				return excerpt(found.Body), nil
			},
			ValidTypes:       []Type{TypeSpam, TypeAbuse, TypeSpoiler, TypeOther},
			DuplicateMessage: "You already have an open report on this comment",
		},
	}

	return &Service{
		reports: reports,
		chain:   NewChain(bindings, reports),
		logger:  logger,
	}
}

// excerpt shortens a comment body for the moderator listing. Truncation
// counts runes, not bytes, so multi-byte text is never split mid-character.
func excerpt(body string) string {
	if utf8.RuneCountInString(body) <= excerptLength {
		return body
	}
	return string([]rune(body)[:excerptLength]) + "…"
}

// # Submission

// SubmitInput holds the data for a new report.
type SubmitInput struct {
	ContentType ContentType
	ContentID   string
	ReporterID  string
	Type        Type
	Details     string
}

/*
Submit validates and persists a new report.

Description: The submission runs through the chain — existence, type
validation, duplicate suppression — and on success is written with a single
insert. The persisted report carries the denormalized content label the
chain resolved.

Parameters:
  - context: context.Context
  - input: SubmitInput

Returns:
  - *Report: The persisted report
  - error: apperr.NotFound, apperr.ValidationError, apperr.Conflict, or
    storage failures
*/
func (service *Service) Submit(context context.Context, input SubmitInput) (*Report, error) {
	submission := &Context{
		ContentType: input.ContentType,
		ContentID:   input.ContentID,
		ReporterID:  input.ReporterID,
		Type:        input.Type,
		Details:     input.Details,
	}

	if err := service.chain.Run(context, submission); err != nil {
		return nil, err
	}

	report := &Report{
		ID:           uuid.New(),
		ContentType:  submission.ContentType,
		ContentID:    submission.ContentID,
		ReporterID:   submission.ReporterID,
		Type:         submission.Type,
		Details:      submission.Details,
		Status:       StatusOpen,
		ContentLabel: submission.label,
	}

	if err := service.reports.Create(context, report); err != nil {
		return nil, err
	}

	service.logger.Info("report_submitted",
		slog.String("report_id", report.ID),
		slog.String("content_type", string(report.ContentType)),
		slog.String("content_id", report.ContentID),
	)

	return report, nil
}

// # Moderation Workflow

/*
ListReports returns reports for the moderation queue, newest first.

Returns:
  - []*Report: Matching reports
  - int: Total count
  - error: Storage failures
*/
func (service *Service) ListReports(context context.Context, status Status, limit, offset int) ([]*Report, int, error) {
	return service.reports.List(context, status, limit, offset)
}

/*
Resolve closes a report as acted upon.

Returns:
  - error: apperr.NotFound or storage failures
*/
func (service *Service) Resolve(context context.Context, reportID, moderatorID string) error {
	if err := service.reports.SetStatus(context, reportID, StatusResolved, moderatorID); err != nil {
		return err
	}

	service.logger.Info("report_resolved",
		slog.String("report_id", reportID),
		slog.String("moderator_id", moderatorID),
	)

	return nil
}

/*
Dismiss closes a report as rejected.

Returns:
  - error: apperr.NotFound or storage failures
*/
func (service *Service) Dismiss(context context.Context, reportID, moderatorID string) error {
	if err := service.reports.SetStatus(context, reportID, StatusDismissed, moderatorID); err != nil {
		return err
	}

	service.logger.Info("report_dismissed",
		slog.String("report_id", reportID),
		slog.String("moderator_id", moderatorID),
	)

	return nil
}
