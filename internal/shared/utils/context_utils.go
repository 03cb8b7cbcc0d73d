package utils

import (
	"context"
	"errors"

	"vitamend-data/internal/shared/contextkeys"
)

// Common context errors
var (
	ErrRequestIDNotFound  = errors.New("requestID not found in context")
	ErrRequestIDNotString = errors.New("requestID in context is not a string")
	ErrProviderNotFound   = errors.New("provider not found in context")
	ErrProviderNotString  = errors.New("provider in context is not a string")
	ErrSubjectNotFound    = errors.New("subject not found in context")
	ErrSubjectNotString   = errors.New("subject in context is not a string")
)

func stringValue(ctx context.Context, key interface{}, notFound, notString error) (string, error) {
	val := ctx.Value(key)
	if val == nil {
		return "", notFound
	}
	s, ok := val.(string)
	if !ok {
		return "", notString
	}
	return s, nil
}

// GetRequestIDFromContext retrieves the bridge request id.
func GetRequestIDFromContext(ctx context.Context) (string, error) {
	return stringValue(ctx, contextkeys.RequestIDKey, ErrRequestIDNotFound, ErrRequestIDNotString)
}

// GetProviderFromContext retrieves the active provider name.
func GetProviderFromContext(ctx context.Context) (string, error) {
	return stringValue(ctx, contextkeys.ProviderKey, ErrProviderNotFound, ErrProviderNotString)
}

// GetSubjectFromContext retrieves the subject of a verified admin token.
func GetSubjectFromContext(ctx context.Context) (string, error) {
	return stringValue(ctx, contextkeys.SubjectKey, ErrSubjectNotFound, ErrSubjectNotString)
}

// SubjectOrAnonymous returns the admin subject, or "anonymous" when the
// request was not authenticated.
func SubjectOrAnonymous(ctx context.Context) string {
	if subject, err := GetSubjectFromContext(ctx); err == nil && subject != "" {
		return subject
	}
	return "anonymous"
}
