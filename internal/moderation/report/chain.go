// Copyright (c) 2026 Inkora. All rights reserved.

package report

import (
	"context"

	"github.com/inkora/inkora/internal/platform/apperr"
)

// # Validation Chain
//
// The chain is an ordered slice of step functions sharing one single-use
// [Context] aggregate. Each step either enriches the aggregate or rejects
// the submission; the first rejection short-circuits the run. Steps hold no
// links to each other, so reordering or inserting a step is a one-line
// change in [NewChain].

// Context is the single-use aggregate a submission accumulates while it
// moves through the chain.
type Context struct {
	ContentType ContentType
	ContentID   string
	ReporterID  string
	Type        Type
	Details     string

	// Resolved by the chain.
	binding *ContentBinding
	label   string
}

// Step is one validation step. A nil return passes the submission to the
// next step; an error stops the chain.
type Step func(context context.Context, submission *Context) error

// Chain runs an ordered set of steps over a submission.
type Chain struct {
	steps []Step
}

// Run executes the steps in order, short-circuiting on the first error.
func (chain *Chain) Run(context context.Context, submission *Context) error {
	for _, step := range chain.steps {
		if err := step(context, submission); err != nil {
			return err
		}
	}
	return nil
}

// # Content Bindings

// ContentBinding is everything the chain needs to know about one reportable
// content type.
type ContentBinding struct {
	// Exists checks that the target content is present and returns its
	// display label (title, excerpt). A missing target returns
	// apperr.NotFound.
	Exists func(context context.Context, contentID string) (label string, err error)

	// ValidTypes is the set of report types accepted for this content.
	ValidTypes []Type

	// DuplicateMessage is the content-specific conflict message shown when
	// the reporter already has an active report on this target.
	DuplicateMessage string
}

// acceptsType reports whether the binding allows the given report type.
func (binding *ContentBinding) acceptsType(reportType Type) bool {
	for _, valid := range binding.ValidTypes {
		if valid == reportType {
			return true
		}
	}
	return false
}

// DuplicateProbe answers whether the reporter already has an active (open)
// report against the same target. Implemented by the report repository.
type DuplicateProbe interface {
	HasActiveReport(context context.Context, reporterID string, contentType ContentType, contentID string) (bool, error)
}

// # Chain Construction

/*
NewChain builds the standard submission chain over the given bindings.

Description: The step order is part of the contract — existence before type
validation before duplicate suppression — so a report against missing
content is always a NotFound, never a Conflict.

Parameters:
  - bindings: map[ContentType]*ContentBinding (one per reportable type)
  - duplicates: DuplicateProbe

Returns:
  - *Chain: The assembled chain
*/
func NewChain(bindings map[ContentType]*ContentBinding, duplicates DuplicateProbe) *Chain {
	return &Chain{steps: []Step{

		// 1. Binding resolution + content existence
		func(context context.Context, submission *Context) error {
			binding, known := bindings[submission.ContentType]
			if !known {
				return apperr.ValidationError("Unknown content type '" + string(submission.ContentType) + "'")
			}

			label, err := binding.Exists(context, submission.ContentID)
			if err != nil {
				return err
			}

			submission.binding = binding
			submission.label = label
			return nil
		},

		// 2. Report-type validation
		func(_ context.Context, submission *Context) error {
			if !submission.binding.acceptsType(submission.Type) {
				return apperr.ValidationError("Report type '" + string(submission.Type) + "' is not valid for " + string(submission.ContentType) + " content")
			}
			return nil
		},

		// 3. Duplicate suppression
		func(context context.Context, submission *Context) error {
			exists, err := duplicates.HasActiveReport(context, submission.ReporterID, submission.ContentType, submission.ContentID)
			if err != nil {
				return err
			}
			if exists {
				return apperr.Conflict(submission.binding.DuplicateMessage)
			}
			return nil
		},
	}}
}
