package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Skotchmaster/food_api/internal/events"
	"github.com/Skotchmaster/food_api/internal/hash"
	"github.com/Skotchmaster/food_api/internal/logging"
	"github.com/Skotchmaster/food_api/internal/repo"
	"github.com/Skotchmaster/food_api/internal/tokens"
)

type AuthService struct {
	Repo   *repo.GormRepo
	Tokens *tokens.Manager
	Events events.Publisher
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	PublicID  string
	IsAdmin   bool
}

// Login checks the credentials and issues an access token. Unknown users and
// wrong passwords both return ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login", "username", username)

	if strings.TrimSpace(username) == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrValidation)
	}

	user, err := s.Repo.FindUserByUsername(ctx, username)
	if err != nil {
		l.Error("login_failed", "status", 500, "reason", "cannot load user", "error", err)
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user == nil || !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "status", 401, "reason", "invalid username or password")
		return nil, ErrInvalidCredentials
	}

	if hash.NeedsRehash(user.PasswordHash) {
		if digest, err := hash.HashPassword(password); err != nil {
			l.Warn("rehash_failed", "error", err)
		} else {
			user.PasswordHash = digest
			if err := s.Repo.UpdateUser(ctx, user); err != nil {
				l.Warn("rehash_failed", "error", err)
			}
		}
	}

	token, exp, err := s.Tokens.Issue(user.PublicID)
	if err != nil {
		l.Error("login_failed", "status", 500, "reason", "cannot sign token", "error", err)
		return nil, fmt.Errorf("issue token: %w", err)
	}

	publish(ctx, s.Events, events.TopicUser, user.PublicID,
		events.NewEvent("user_logged_in", user.PublicID, user.PublicID, nil))
	l.Info("login_successful", "admin", user.Admin)

	return &LoginResult{
		Token:     token,
		ExpiresAt: exp,
		PublicID:  user.PublicID,
		IsAdmin:   user.Admin,
	}, nil
}
