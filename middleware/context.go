package middleware

import (
	"context"

	"github.com/google/uuid"
	"github.com/upb/budget-registry/models"
)

// Context key type to avoid collisions
type contextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"

	// CallerKey is the context key for the authenticated caller
	CallerKey contextKey = "caller"
)

// GetRequestIDFromContext retrieves the request ID from context
func GetRequestIDFromContext(ctx context.Context) string {
	if val := ctx.Value(RequestIDKey); val != nil {
		if requestID, ok := val.(string); ok {
			return requestID
		}
	}
	return ""
}

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetCallerFromContext retrieves the authenticated caller from context.
// The zero Caller (uuid.Nil id) means no authenticated caller is present.
func GetCallerFromContext(ctx context.Context) models.Caller {
	if val := ctx.Value(CallerKey); val != nil {
		if caller, ok := val.(models.Caller); ok {
			return caller
		}
	}
	return models.Caller{}
}

// WithCaller adds the authenticated caller to the context
func WithCaller(ctx context.Context, caller models.Caller) context.Context {
	return context.WithValue(ctx, CallerKey, caller)
}

// HasCaller reports whether an authenticated caller is present in the context
func HasCaller(ctx context.Context) bool {
	return GetCallerFromContext(ctx).ID != uuid.Nil
}
