package auth

import (
	"context"
	"errors"
)

type ctxKey int

const (
	ctxUserID ctxKey = iota
	ctxRole
)

var ErrNoIdentity = errors.New("no identity in context")

func WithIdentity(ctx context.Context, userID string, role Role) context.Context {
	ctx = context.WithValue(ctx, ctxUserID, userID)
	ctx = context.WithValue(ctx, ctxRole, role)
	return ctx
}

func UserID(ctx context.Context) (string, error) {
	v, ok := ctx.Value(ctxUserID).(string)
	if !ok || v == "" {
		return "", ErrNoIdentity
	}
	return v, nil
}

func RoleFrom(ctx context.Context) (Role, error) {
	v, ok := ctx.Value(ctxRole).(Role)
	if !ok || v == "" {
		return "", ErrNoIdentity
	}
	return v, nil
}
