package transport

import (
	"time"

	"github.com/Skotchmaster/food_api/internal/models"
)

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type CreateUserRequest struct {
	Username string `json:"username" validate:"required,max=50"`
	Password string `json:"password" validate:"required"`
	Admin    bool   `json:"admin"`
}

type UserResponse struct {
	PublicID  string    `json:"public_id"`
	Username  string    `json:"username"`
	Admin     bool      `json:"admin"`
	CreatedAt time.Time `json:"created_at"`
}

func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		PublicID:  u.PublicID,
		Username:  u.Username,
		Admin:     u.Admin,
		CreatedAt: u.CreatedAt,
	}
}

func NewUserList(users []models.User) []UserResponse {
	out := make([]UserResponse, len(users))
	for i := range users {
		out[i] = NewUserResponse(&users[i])
	}
	return out
}

type CreateFoodRequest struct {
	Name     string `json:"name" validate:"required,max=50"`
	Location string `json:"location" validate:"max=500"`
	Zipcode  int64  `json:"zipcode" validate:"required,gt=0"`
}

type PatchFoodRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=50"`
	Location *string `json:"location" validate:"omitempty,max=500"`
	Zipcode  *int64  `json:"zipcode" validate:"omitempty,gt=0"`
}

type PageMeta struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Size  int   `json:"size"`
}

type FoodPage struct {
	Data []models.Food `json:"data"`
	Meta PageMeta      `json:"meta"`
}

type SearchResponse struct {
	Total int64         `json:"total"`
	Data  []models.Food `json:"data"`
}
