// Copyright (c) 2026 Inkora. All rights reserved.

package social

import (
	"context"
	"log/slog"

	"github.com/inkora/inkora/internal/platform/apperr"
	"github.com/inkora/inkora/internal/platform/authz"
	"github.com/inkora/inkora/internal/platform/validate"
	"github.com/inkora/inkora/pkg/uuid"
)

// # Repository Contracts

// CommentRepository defines the persistence contract for comments.
type CommentRepository interface {

	/*
		ListByNovel returns a novel's visible comments, newest first.

		Returns:
		  - []*Comment: Hydrated comments with author usernames
		  - int: Total visible comment count
		  - error: Storage failures
	*/
	ListByNovel(context context.Context, novelID string, limit, offset int) ([]*Comment, int, error)

	/*
		FindByID returns a single comment, hidden or not.

		Returns:
		  - *Comment: Hydrated entity
		  - error: apperr.NotFound or storage failures
	*/
	FindByID(context context.Context, id string) (*Comment, error)

	/*
		Create persists a new comment.

		Returns:
		  - error: apperr.Unprocessable when the novel does not exist,
		    or storage failures
	*/
	Create(context context.Context, comment *Comment) error

	/*
		Delete removes a comment.

		Returns:
		  - error: apperr.NotFound or storage failures
	*/
	Delete(context context.Context, id string) error

	/*
		SetHidden flips a comment's moderation visibility flag.

		Returns:
		  - error: apperr.NotFound or storage failures
	*/
	SetHidden(context context.Context, id string, hidden bool) error
}

// VoteRepository defines the persistence contract for votes.
type VoteRepository interface {

	/*
		Cast records a vote and bumps the novel's vote counter. A repeated
		vote by the same account is a no-op.

		Returns:
		  - bool: Whether a new vote was recorded
		  - error: apperr.Unprocessable when the novel does not exist,
		    or storage failures
	*/
	Cast(context context.Context, accountID, novelID string) (bool, error)

	/*
		Retract removes a vote and drops the counter. Idempotent.

		Returns:
		  - bool: Whether a vote was actually removed
		  - error: Storage failures
	*/
	Retract(context context.Context, accountID, novelID string) (bool, error)
}

// # Service Layer

// Service orchestrates comments and votes.
type Service struct {
	comments CommentRepository
	votes    VoteRepository
	logger   *slog.Logger
}

// NewService constructs a new social [Service].
func NewService(comments CommentRepository, votes VoteRepository, logger *slog.Logger) *Service {
	return &Service{
		comments: comments,
		votes:    votes,
		logger:   logger,
	}
}

// # Comments

/*
ListComments returns a page of a novel's visible comments.

Returns:
  - []*Comment: Newest first
  - int: Total visible count
  - error: Storage failures
*/
func (service *Service) ListComments(context context.Context, novelID string, limit, offset int) ([]*Comment, int, error) {
	return service.comments.ListByNovel(context, novelID, limit, offset)
}

/*
CreateComment posts a comment on a novel.

Parameters:
  - context: context.Context
  - novelID: string (UUID)
  - authorID: string (the authenticated account)
  - body: string

Returns:
  - *Comment: The created comment
  - error: Validation, missing novel, or storage failures
*/
func (service *Service) CreateComment(context context.Context, novelID, authorID, body string) (*Comment, error) {
	validator := &validate.Validator{}
	validator.Required(FieldBody, body).MaxLen(FieldBody, body, 4000)

	if err := validator.Err(); err != nil {
		return nil, err
	}

	comment := &Comment{
		ID:       uuid.New(),
		NovelID:  novelID,
		AuthorID: authorID,
		Body:     body,
	}

	if err := service.comments.Create(context, comment); err != nil {
		return nil, err
	}

	service.logger.Info("comment_created",
		slog.String("comment_id", comment.ID),
		slog.String("novel_id", novelID),
	)

	return comment, nil
}

/*
DeleteComment removes a comment on behalf of its author or an admin.

Description: Ownership is decided here rather than by a registered guard —
comments are leaf entities with exactly one protected mutation.

Returns:
  - error: apperr.NotFound, apperr.Forbidden, or storage failures
*/
func (service *Service) DeleteComment(context context.Context, commentID string, principal *authz.Principal) error {
	comment, err := service.comments.FindByID(context, commentID)
	if err != nil {
		return err
	}

	if principal == nil || !principal.Enabled {
		return apperr.Unauthorized("Authentication required")
	}
	if !principal.IsAdmin && comment.AuthorID != principal.ID {
		return apperr.Forbidden("Insufficient permissions")
	}

	if err := service.comments.Delete(context, commentID); err != nil {
		return err
	}

	service.logger.Warn("comment_deleted",
		slog.String("comment_id", commentID),
		slog.String("deleted_by", principal.ID),
	)

	return nil
}

/*
HideComment flips a comment's moderation visibility. Admin only, enforced
at the route level.

Returns:
  - error: apperr.NotFound or storage failures
*/
func (service *Service) HideComment(context context.Context, commentID string, hidden bool) error {
	return service.comments.SetHidden(context, commentID, hidden)
}

// # Votes

/*
CastVote records the account's vote on a novel.

Returns:
  - bool: Whether a new vote was recorded (false for repeats)
  - error: Missing novel or storage failures
*/
func (service *Service) CastVote(context context.Context, accountID, novelID string) (bool, error) {
	recorded, err := service.votes.Cast(context, accountID, novelID)
	if err != nil {
		return false, err
	}

	if recorded {
		service.logger.Info("vote_cast",
			slog.String("account_id", accountID),
			slog.String("novel_id", novelID),
		)
	}

	return recorded, nil
}

/*
RetractVote removes the account's vote. Idempotent.

Returns:
  - error: Storage failures
*/
func (service *Service) RetractVote(context context.Context, accountID, novelID string) error {
	_, err := service.votes.Retract(context, accountID, novelID)
	return err
}
