// Copyright (c) 2026 Inkora. All rights reserved.

/*
Package social implements reader interaction with the catalogue: comments
on novels and votes.

Votes maintain the denormalized vote counter on the novel row, which in
turn feeds the ranking domain. Comments are the second reportable content
type consumed by the moderation chain.
*/
package social

import "time"

// # Domain Entities

// Comment represents a reader comment attached to a novel.
type Comment struct {
	ID        string    `json:"id"`
	NovelID   string    `json:"novel_id"`
	AuthorID  string    `json:"author_id"`
	Body      string    `json:"body"`
	IsHidden  bool      `json:"is_hidden"` // Set by moderation; hidden comments leave listings
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Denormalized for display in listings.
	AuthorUsername string `json:"author_username,omitempty"`
}

// Vote represents an account's vote on a novel. One vote per account per
// novel; voting again is a no-op.
type Vote struct {
	AccountID string    `json:"account_id"`
	NovelID   string    `json:"novel_id"`
	CreatedAt time.Time `json:"created_at"`
}

// # Field Identifiers

const (
	FieldBody = "body"
)
