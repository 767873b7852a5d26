package repo

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/food_api/internal/models"
)

func (r *GormRepo) ListFood(ctx context.Context, offset, limit int) (int64, []models.Food, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Food{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.Food, 0, limit)
	if err := r.DB.WithContext(ctx).Model(&models.Food{}).Order("id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}

	return total, items, nil
}

func (r *GormRepo) FoodByZipcode(ctx context.Context, zipcode int64) ([]models.Food, error) {
	items := make([]models.Food, 0)
	if err := r.DB.WithContext(ctx).Where("zipcode = ?", zipcode).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) GetFood(ctx context.Context, id uint) (*models.Food, error) {
	var food models.Food
	if err := r.DB.WithContext(ctx).First(&food, id).Error; err != nil {
		return nil, err
	}
	return &food, nil
}

func (r *GormRepo) CreateFood(ctx context.Context, food *models.Food) error {
	return r.DB.WithContext(ctx).Create(food).Error
}

func (r *GormRepo) UpdateFood(ctx context.Context, food *models.Food) error {
	res := r.DB.WithContext(ctx).Model(&models.Food{}).
		Where("id = ?", food.ID).
		Updates(map[string]any{
			"name":     food.Name,
			"location": food.Location,
			"zipcode":  food.Zipcode,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) DeleteFood(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.Food{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SearchFood is a case-insensitive substring match on name and location.
func (r *GormRepo) SearchFood(ctx context.Context, q string, offset, limit int) (int64, []models.Food, error) {
	pattern := "%" + escapeLike(strings.ToLower(strings.TrimSpace(q))) + "%"
	where := `LOWER(name) LIKE ? ESCAPE '\' OR LOWER(location) LIKE ? ESCAPE '\'`

	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Food{}).Where(where, pattern, pattern).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.Food, 0, limit)
	if err := r.DB.WithContext(ctx).
		Where(where, pattern, pattern).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}

	return total, items, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
