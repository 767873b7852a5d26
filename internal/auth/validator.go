package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/Skotchmaster/food_api/internal/models"
	"github.com/Skotchmaster/food_api/internal/tokens"
)

// Reason is the outcome of validating a bearer token.
type Reason int

const (
	Valid Reason = iota
	Malformed
	Expired
	UnknownSubject
)

func (r Reason) String() string {
	switch r {
	case Valid:
		return "valid"
	case Malformed:
		return "malformed"
	case Expired:
		return "expired"
	case UnknownSubject:
		return "unknown_subject"
	default:
		return fmt.Sprintf("reason(%d)", int(r))
	}
}

type UserStore interface {
	// FindUserByPublicID returns nil, nil when no user has that id.
	FindUserByPublicID(ctx context.Context, publicID string) (*models.User, error)
}

type Result struct {
	Identity *models.User
	Reason   Reason
}

func (r Result) OK() bool { return r.Reason == Valid && r.Identity != nil }

type Validator struct {
	Tokens *tokens.Manager
	Users  UserStore
}

// Validate parses raw and resolves its subject to a stored user. Rejections
// are reported through Result; the error is set only when the store fails.
func (v *Validator) Validate(ctx context.Context, raw string) (Result, error) {
	claims, err := v.Tokens.Parse(raw)
	if err != nil {
		if errors.Is(err, tokens.ErrExpired) {
			return Result{Reason: Expired}, nil
		}
		return Result{Reason: Malformed}, nil
	}

	u, err := v.Users.FindUserByPublicID(ctx, claims.Subject)
	if err != nil {
		return Result{}, fmt.Errorf("resolve token subject: %w", err)
	}
	if u == nil {
		return Result{Reason: UnknownSubject}, nil
	}
	return Result{Identity: u, Reason: Valid}, nil
}
