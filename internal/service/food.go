package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/food_api/internal/events"
	"github.com/Skotchmaster/food_api/internal/logging"
	"github.com/Skotchmaster/food_api/internal/models"
	"github.com/Skotchmaster/food_api/internal/repo"
	"github.com/Skotchmaster/food_api/internal/search"
	"github.com/Skotchmaster/food_api/internal/util"
)

const (
	maxNameLen     = 50
	maxLocationLen = 500
)

type FoodService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
	// Index is optional. Without it Search falls back to the database.
	Index search.Index
}

type Page struct {
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Size  int           `json:"size"`
	Items []models.Food `json:"-"`
}

type FoodPatch struct {
	Name     *string
	Location *string
	Zipcode  *int64
}

func (s *FoodService) List(ctx context.Context, page, size int) (*Page, error) {
	offset, limit := util.Calculate(page, size)
	total, items, err := s.Repo.ListFood(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	return &Page{Total: total, Page: offset/limit + 1, Size: limit, Items: items}, nil
}

// ByZipcode never reports not-found, an unknown zipcode yields an empty list.
func (s *FoodService) ByZipcode(ctx context.Context, zipcode int64) ([]models.Food, error) {
	return s.Repo.FoodByZipcode(ctx, zipcode)
}

func (s *FoodService) Get(ctx context.Context, id uint) (*models.Food, error) {
	f, err := s.Repo.GetFood(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

func (s *FoodService) Create(ctx context.Context, actor string, f *models.Food) error {
	l := logging.FromContext(ctx).With("svc", "food.create")

	if err := validateFood(f); err != nil {
		return err
	}
	f.ID = 0
	if err := s.Repo.CreateFood(ctx, f); err != nil {
		l.Error("create_food_failed", "status", 500, "error", err)
		return err
	}

	s.index(ctx, f)
	publish(ctx, s.Events, events.TopicFood, foodKey(f.ID),
		events.NewEvent("food_created", actor, foodKey(f.ID), f))
	return nil
}

func (s *FoodService) Patch(ctx context.Context, actor string, id uint, p FoodPatch) (*models.Food, error) {
	f, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if p.Name != nil {
		f.Name = *p.Name
	}
	if p.Location != nil {
		f.Location = *p.Location
	}
	if p.Zipcode != nil {
		f.Zipcode = *p.Zipcode
	}
	if err := validateFood(f); err != nil {
		return nil, err
	}

	if err := s.Repo.UpdateFood(ctx, f); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	s.index(ctx, f)
	publish(ctx, s.Events, events.TopicFood, foodKey(f.ID),
		events.NewEvent("food_updated", actor, foodKey(f.ID), f))
	return f, nil
}

func (s *FoodService) Delete(ctx context.Context, actor string, id uint) error {
	l := logging.FromContext(ctx).With("svc", "food.delete", "id", id)

	if err := s.Repo.DeleteFood(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	if s.Index != nil {
		if err := s.Index.DeleteFood(ctx, id); err != nil {
			l.Warn("unindex_failed", "error", err)
		}
	}
	publish(ctx, s.Events, events.TopicFood, foodKey(id),
		events.NewEvent("food_deleted", actor, foodKey(id), nil))
	return nil
}

func (s *FoodService) Search(ctx context.Context, q string, page, size int) (int64, []models.Food, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return 0, nil, fmt.Errorf("%w: query is empty", ErrValidation)
	}

	offset, limit := util.Calculate(page, size)
	if s.Index != nil {
		return s.Index.Search(ctx, q, offset, limit)
	}
	return s.Repo.SearchFood(ctx, q, offset, limit)
}

func (s *FoodService) index(ctx context.Context, f *models.Food) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexFood(ctx, f); err != nil {
		logging.FromContext(ctx).Warn("index_failed", "id", f.ID, "error", err)
	}
}

func validateFood(f *models.Food) error {
	switch {
	case strings.TrimSpace(f.Name) == "":
		return fmt.Errorf("%w: name is required", ErrValidation)
	case len(f.Name) > maxNameLen:
		return fmt.Errorf("%w: name is longer than %d", ErrValidation, maxNameLen)
	case len(f.Location) > maxLocationLen:
		return fmt.Errorf("%w: location is longer than %d", ErrValidation, maxLocationLen)
	case f.Zipcode <= 0:
		return fmt.Errorf("%w: zipcode must be positive", ErrValidation)
	}
	return nil
}

func foodKey(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
