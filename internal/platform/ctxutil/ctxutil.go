// Copyright (c) 2026 Inkora. All rights reserved.

// Package ctxutil provides helpers for interacting with values stored in [context.Context].
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/inkora/inkora/internal/platform/authz"
	"github.com/inkora/inkora/internal/platform/ctxkey"
)

// # Request Tracing

// WithRequestID returns a new context with the provided request ID attached.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyRequestID, id)
}

// GetRequestID retrieves the request ID from the context.
// Returns an empty string if not found.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxkey.KeyRequestID).(string)
	return id
}

// # Structured Logging

// WithLogger returns a new context with the provided logger attached.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxkey.KeyLogger, logger)
}

// GetLogger retrieves the logger from the context.
// If no logger is found, it returns the global default logger.
func GetLogger(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(ctxkey.KeyLogger).(*slog.Logger)
	if !ok {
		return slog.Default()
	}
	return logger
}

// # Access Logging

// AccessLog is a mutable record the logging middleware seeds into the
// context before the rest of the chain runs. Later middleware cannot hand a
// derived context back up the chain, so identity attribution for the final
// access-log entry flows through this shared record instead.
type AccessLog struct {
	AccountID string
}

// WithAccessLog returns a new context carrying the access-log record.
func WithAccessLog(ctx context.Context, record *AccessLog) context.Context {
	return context.WithValue(ctx, ctxkey.KeyAccessLog, record)
}

// GetAccessLog retrieves the access-log record from the context.
// Returns nil outside the logging middleware.
func GetAccessLog(ctx context.Context) *AccessLog {
	record, _ := ctx.Value(ctxkey.KeyAccessLog).(*AccessLog)
	return record
}

// # Identity & Access

// WithPrincipal returns a new context with the resolved principal attached.
func WithPrincipal(ctx context.Context, principal *authz.Principal) context.Context {
	return context.WithValue(ctx, ctxkey.KeyPrincipal, principal)
}

// GetPrincipal retrieves the [*authz.Principal] from the [context.Context].
// Returns nil for anonymous requests.
func GetPrincipal(ctx context.Context) *authz.Principal {
	principal, ok := ctx.Value(ctxkey.KeyPrincipal).(*authz.Principal)
	if !ok {
		return nil
	}
	return principal
}
