// Copyright (c) 2026 Inkora. All rights reserved.

/*
Package library implements per-account reading libraries.

A library entry links an account to a novel together with a reading status.
The whole subtree is private: every operation runs behind the canAccess
policy (owner or admin), keyed on the accountID URL parameter.
*/
package library

import "time"

// # Domain Enums

// Status represents the reading status of a library entry.
type Status string

const (
	StatusReading   Status = "reading"
	StatusCompleted Status = "completed"
	StatusPlanned   Status = "planned"
	StatusDropped   Status = "dropped"
)

// IsValid reports whether s is a recognised [Status] value.
func (s Status) IsValid() bool {
	switch s {
	case StatusReading, StatusCompleted, StatusPlanned, StatusDropped:
		return true
	}
	return false
}

// # Domain Entities

// Entry represents a single novel in an account's library.
type Entry struct {
	AccountID string    `json:"account_id"`
	NovelID   string    `json:"novel_id"`
	Status    Status    `json:"status"`
	AddedAt   time.Time `json:"added_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Denormalized for display in listings.
	NovelTitle string `json:"novel_title,omitempty"`
	NovelSlug  string `json:"novel_slug,omitempty"`
}

// # Field Identifiers

const (
	FieldNovelID = "novel_id"
	FieldStatus  = "status"
)
