// Copyright (c) 2026 Inkora. All rights reserved.

package library

import (
	"context"
	"log/slog"

	"github.com/inkora/inkora/internal/platform/validate"
)

// # Repository Contract

// Repository defines the persistence contract for library entries.
type Repository interface {

	/*
		List returns an account's library entries, newest first.

		Parameters:
		  - context: context.Context
		  - accountID: string (UUID)
		  - limit: int
		  - offset: int

		Returns:
		  - []*Entry: Entries with denormalized novel display fields
		  - int: Total entry count for the account
		  - error: Storage failures
	*/
	List(context context.Context, accountID string, limit, offset int) ([]*Entry, int, error)

	/*
		Upsert adds a novel to the library or updates its reading status.

		Returns:
		  - error: apperr.Unprocessable when the novel does not exist,
		    or storage failures
	*/
	Upsert(context context.Context, entry *Entry) error

	/*
		Remove deletes a novel from the library. Idempotent.

		Returns:
		  - error: Storage failures
	*/
	Remove(context context.Context, accountID, novelID string) error
}

// # Service Layer

// Service orchestrates the library use cases.
type Service struct {
	entries Repository
	logger  *slog.Logger
}

// NewService constructs a new library [Service].
func NewService(entries Repository, logger *slog.Logger) *Service {
	return &Service{entries: entries, logger: logger}
}

/*
ListEntries returns a page of the account's library.

Returns:
  - []*Entry: Entries newest first
  - int: Total count
  - error: Storage failures
*/
func (service *Service) ListEntries(context context.Context, accountID string, limit, offset int) ([]*Entry, int, error) {
	return service.entries.List(context, accountID, limit, offset)
}

/*
SaveEntry adds a novel to the library or updates its status.

Description: Upsert semantics — re-adding an existing novel just moves it to
the new reading status.

Parameters:
  - context: context.Context
  - accountID: string (UUID)
  - novelID: string (UUID)
  - status: Status

Returns:
  - *Entry: The persisted entry
  - error: Validation, missing novel, or storage failures
*/
func (service *Service) SaveEntry(context context.Context, accountID, novelID string, status Status) (*Entry, error) {
	if status == "" {
		status = StatusReading
	}

	validator := &validate.Validator{}
	validator.UUID(FieldNovelID, novelID)
	validator.OneOf(FieldStatus, string(status),
		string(StatusReading),
		string(StatusCompleted),
		string(StatusPlanned),
		string(StatusDropped),
	)

	if err := validator.Err(); err != nil {
		return nil, err
	}

	entry := &Entry{
		AccountID: accountID,
		NovelID:   novelID,
		Status:    status,
	}

	if err := service.entries.Upsert(context, entry); err != nil {
		return nil, err
	}

	service.logger.Info("library_entry_saved",
		slog.String("account_id", accountID),
		slog.String("novel_id", novelID),
		slog.String("status", string(status)),
	)

	return entry, nil
}

/*
RemoveEntry deletes a novel from the library. Idempotent.

Returns:
  - error: Storage failures
*/
func (service *Service) RemoveEntry(context context.Context, accountID, novelID string) error {
	return service.entries.Remove(context, accountID, novelID)
}
