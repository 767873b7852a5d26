package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/food_api/internal/events"
	"github.com/Skotchmaster/food_api/internal/hash"
	"github.com/Skotchmaster/food_api/internal/logging"
	"github.com/Skotchmaster/food_api/internal/models"
	"github.com/Skotchmaster/food_api/internal/repo"
)

type UserService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.Repo.ListUsers(ctx)
}

func (s *UserService) Get(ctx context.Context, publicID string) (*models.User, error) {
	u, err := s.Repo.FindUserByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrNotFound
	}
	return u, nil
}

// Create stores a new user with a fresh public id. actor is the public id
// of the caller and is only used for the emitted event.
func (s *UserService) Create(ctx context.Context, actor, username, password string, admin bool) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "user.create", "username", username)

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrValidation)
	}

	digest, err := hash.HashPassword(password)
	if err != nil {
		l.Error("create_user_failed", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	u := &models.User{
		PublicID:     uuid.NewString(),
		Username:     username,
		PasswordHash: digest,
		Admin:        admin,
	}
	if err := s.Repo.InsertUser(ctx, u); err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExist) {
			l.Warn("create_user_failed", "status", 409, "reason", "user already exist")
			return nil, fmt.Errorf("%w: username %q", ErrConflict, username)
		}
		l.Error("create_user_failed", "status", 500, "error", err)
		return nil, err
	}

	publish(ctx, s.Events, events.TopicUser, u.PublicID,
		events.NewEvent("user_created", actor, u.PublicID, map[string]any{"username": u.Username, "admin": u.Admin}))
	return u, nil
}

// Promote grants the admin flag. Promoting an admin is a no-op.
func (s *UserService) Promote(ctx context.Context, actor, publicID string) (*models.User, error) {
	u, err := s.Get(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if u.Admin {
		return u, nil
	}

	u.Admin = true
	if err := s.Repo.UpdateUser(ctx, u); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	publish(ctx, s.Events, events.TopicUser, u.PublicID,
		events.NewEvent("user_promoted", actor, u.PublicID, nil))
	return u, nil
}

func (s *UserService) Delete(ctx context.Context, actor, publicID string) error {
	if err := s.Repo.DeleteUser(ctx, publicID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	publish(ctx, s.Events, events.TopicUser, publicID,
		events.NewEvent("user_deleted", actor, publicID, nil))
	return nil
}

// EnsureAdmin creates the bootstrap admin when no user with that name
// exists. An existing user is left untouched.
func (s *UserService) EnsureAdmin(ctx context.Context, username, password string) (created bool, err error) {
	l := logging.FromContext(ctx).With("svc", "user.ensure_admin", "username", username)

	if username == "" || password == "" {
		return false, nil
	}

	existing, err := s.Repo.FindUserByUsername(ctx, username)
	if err != nil {
		return false, fmt.Errorf("lookup admin: %w", err)
	}
	if existing != nil {
		l.Debug("admin_exists")
		return false, nil
	}

	if _, err := s.Create(ctx, "", username, password, true); err != nil {
		if errors.Is(err, ErrConflict) {
			return false, nil
		}
		return false, fmt.Errorf("create admin: %w", err)
	}
	l.Info("admin_created")
	return true, nil
}
