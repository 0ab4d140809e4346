package auth

import (
	"context"
	"errors"
)

type ctxKey int

const (
	ctxUsername ctxKey = iota
	ctxEmail
	ctxRole
	ctxGrantedAs
)

// WithIdentity stores the authorized identity and the policy that admitted it.
func WithIdentity(ctx context.Context, claims Claims, grantedAs PolicyKind) context.Context {
	ctx = context.WithValue(ctx, ctxUsername, claims.Username)
	ctx = context.WithValue(ctx, ctxEmail, claims.Email)
	ctx = context.WithValue(ctx, ctxRole, claims.Role)
	ctx = context.WithValue(ctx, ctxGrantedAs, grantedAs)
	return ctx
}

func Username(ctx context.Context) (string, error) {
	v := ctx.Value(ctxUsername)
	if s, ok := v.(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("username not in context")
}

func Email(ctx context.Context) (string, error) {
	v := ctx.Value(ctxEmail)
	if s, ok := v.(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("email not in context")
}

func CallerRole(ctx context.Context) (Role, error) {
	v := ctx.Value(ctxRole)
	if r, ok := v.(Role); ok && r != "" {
		return r, nil
	}
	return "", errors.New("role not in context")
}

// GrantedAs reports which policy admitted the request; empty if none did.
func GrantedAs(ctx context.Context) PolicyKind {
	if k, ok := ctx.Value(ctxGrantedAs).(PolicyKind); ok {
		return k
	}
	return ""
}
