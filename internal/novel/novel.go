// Copyright (c) 2026 Inkora. All rights reserved.

/*
Package novel defines the core domain of the Inkora catalogue: serialized
web novels and their chapters.

It manages the lifecycle of a publication from draft through archive, the
chapters beneath it, and the ownership rules that decide who may change what.

Core Responsibility:

  - Lifecycle: Defines the state machine {draft, published, hidden, archived}
    and the transitions between states.
  - Authoring: Every novel is owned by exactly one author account; ownership
    backs the entity guards consulted by the policy engine.
  - Discovery: Filtered, paginated listing of published novels with slugs
    for SEO-friendly URLs.
*/
package novel

import "time"

// # Lifecycle States

// State represents the lifecycle state of a novel.
type State string

const (
	// StateDraft is the initial state. Visible only to its owner.
	StateDraft State = "draft"

	// StatePublished is publicly listed and readable.
	StatePublished State = "published"

	// StateHidden is withdrawn from public listing but retained. Owners and
	// admins can still see and restore it.
	StateHidden State = "hidden"

	// StateArchived is terminal. Archived novels are read-only for everyone,
	// including their owner.
	StateArchived State = "archived"
)

// IsValid reports whether s is a recognised [State] value.
func (s State) IsValid() bool {
	switch s {
	case StateDraft, StatePublished, StateHidden, StateArchived:
		return true
	}
	return false
}

// # Core Entities

// Novel is the central aggregate of the Inkora catalogue.
type Novel struct {
	ID       string `json:"id"`
	AuthorID string `json:"author_id"`
	Title    string `json:"title"`
	Slug     string `json:"slug"` // URL-safe identifier
	Synopsis string `json:"synopsis"`
	CoverURL string `json:"cover_url,omitempty"`
	State    State  `json:"state"`
	Language string `json:"language"` // BCP-47 language tag (e.g. "en", "ja")

	// # Computed Metrics
	// Updated by the social domain (votes) and read tracking.
	ChapterCount int   `json:"chapter_count"`
	ViewCount    int64 `json:"view_count"`
	VoteCount    int64 `json:"vote_count"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	PublishedAt *time.Time `json:"published_at,omitempty"` // nil until first publish
}

// Chapter represents a single chapter of a novel.
type Chapter struct {
	ID      string  `json:"id"`
	NovelID string  `json:"novel_id"`
	Number  float64 `json:"number"` // Supports interludes and side stories (e.g. 12.5)
	Title   string  `json:"title"`  // Optional; may be empty for untitled chapters
	Content string  `json:"content,omitempty"`

	WordCount   int        `json:"word_count"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// # Search & Filtering

// Filter holds the parameters for a filtered novel list query.
type Filter struct {
	AuthorID string  `json:"author_id,omitempty"`
	States   []State `json:"states,omitempty"`
	Language string  `json:"language,omitempty"`
	Query    string  `json:"q,omitempty"`    // Title search term
	Sort     string  `json:"sort,omitempty"` // latest, popular, votes
}

// # Field Identifiers

// Global field names for validation and dynamic query mapping.
const (
	FieldID       = "id"
	FieldTitle    = "title"
	FieldSlug     = "slug"
	FieldSynopsis = "synopsis"
	FieldCoverURL = "cover_url"
	FieldState    = "state"
	FieldLanguage = "language"

	FieldChapterNumber  = "number"
	FieldChapterTitle   = "title"
	FieldChapterContent = "content"
)
