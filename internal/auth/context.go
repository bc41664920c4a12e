// Package auth carries the authenticated principal through request contexts.
package auth

import "context"

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// subjectKey is the context key for the token's subject claim.
const subjectKey contextKey = "auth_subject"

// ContextWithSubject adds the token subject to the context.
func ContextWithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, subjectKey, subject)
}

// SubjectFromContext retrieves the token subject from the context.
// Returns empty string if the request was not authenticated.
func SubjectFromContext(ctx context.Context) string {
	subject, ok := ctx.Value(subjectKey).(string)
	if !ok {
		return ""
	}
	return subject
}
