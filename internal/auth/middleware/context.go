package auth

import "context"

// GuestCookie carries the guest access token for browser clients that do not
// send an Authorization header.
const GuestCookie = "jsquiz_guest"

type ctxKey string

const ctxKeySub ctxKey = "sub"

func WithSubject(ctx context.Context, sub string) context.Context {
	return context.WithValue(ctx, ctxKeySub, sub)
}

// SubjectFromContext returns the token subject: a user id for guests, the
// admin username for admins, "" when unauthenticated.
func SubjectFromContext(ctx context.Context) string {
	if v := ctx.Value(ctxKeySub); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
