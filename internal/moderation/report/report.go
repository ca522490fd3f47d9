// Copyright (c) 2026 Inkora. All rights reserved.

/*
Package report implements content reporting and its moderation workflow.

A submission runs through an ordered validation chain — content existence,
report-type validation, duplicate suppression — before a single atomic
insert persists the report. Each reportable content type contributes its
own existence check, its own set of valid report types, and a builder that
denormalizes a display label (novel title, comment excerpt) onto the
persisted report.

Adding a reportable content type means registering a new [ContentBinding];
the chain itself never changes.
*/
package report

import "time"

// # Domain Enums

// ContentType identifies what kind of content a report targets.
type ContentType string

const (
	ContentNovel   ContentType = "novel"
	ContentComment ContentType = "comment"
)

// Type classifies why content was reported.
type Type string

const (
	TypeSpam          Type = "spam"
	TypeAbuse         Type = "abuse"
	TypeCopyright     Type = "copyright"
	TypeSpoiler       Type = "spoiler"
	TypeInappropriate Type = "inappropriate"
	TypeOther         Type = "other"
)

// Status tracks a report through the moderation workflow.
type Status string

const (
	// StatusOpen is the initial state. Open reports count as "active" for
	// duplicate suppression.
	StatusOpen Status = "open"

	// StatusResolved means a moderator acted on the report.
	StatusResolved Status = "resolved"

	// StatusDismissed means a moderator rejected the report.
	StatusDismissed Status = "dismissed"
)

// # Domain Entities

// Report is the persisted outcome of a successful submission.
type Report struct {
	ID          string      `json:"id"`
	ContentType ContentType `json:"content_type"`
	ContentID   string      `json:"content_id"`
	ReporterID  string      `json:"reporter_id"`
	Type        Type        `json:"type"`
	Details     string      `json:"details,omitempty"`
	Status      Status      `json:"status"`

	// ContentLabel is denormalized at submission time for moderator
	// listings: the novel's title or the comment's excerpt.
	ContentLabel string `json:"content_label"`

	CreatedAt  time.Time  `json:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	ResolvedBy string     `json:"resolved_by,omitempty"`
}

// # Field Identifiers

const (
	FieldContentType = "content_type"
	FieldContentID   = "content_id"
	FieldType        = "type"
	FieldDetails     = "details"
)
