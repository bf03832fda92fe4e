package tenant

import (
	"context"
	"errors"
)

// Key for organization-scoped values in context
type contextKey string

const (
	organizationIDKey contextKey = "organizationID"
	requestIDKey      contextKey = "requestID"
)

// ErrOrganizationIDNotFound is returned when no organization ID is found in context
var ErrOrganizationIDNotFound = errors.New("organization ID not found in context")

// WithOrganizationID adds an organization ID to the context
func WithOrganizationID(ctx context.Context, organizationID string) context.Context {
	return context.WithValue(ctx, organizationIDKey, organizationID)
}

// FromContext extracts the organization ID from the context
func FromContext(ctx context.Context) (string, error) {
	organizationID, ok := ctx.Value(organizationIDKey).(string)
	if !ok || organizationID == "" {
		return "", ErrOrganizationIDNotFound
	}
	return organizationID, nil
}

// ErrNoRequestIDInContext is returned when no request ID is found in context
var ErrNoRequestIDInContext = errors.New("no request ID found in context")

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// FromRequestIDContext extracts the request ID from the context
func FromRequestIDContext(ctx context.Context) (string, error) {
	requestID, ok := ctx.Value(requestIDKey).(string)
	if !ok || requestID == "" {
		return "", ErrNoRequestIDInContext
	}
	return requestID, nil
}
