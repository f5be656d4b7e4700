package models

import (
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose in JSON
	Phone        *string   `json:"phone,omitempty"`
	Avatar       *string   `json:"avatar,omitempty"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserPublic is the public-safe representation of a user
type UserPublic struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	Avatar       *string   `json:"avatar,omitempty"`
	ProductCount int       `json:"productCount"`
	SoldCount    int       `json:"soldCount"`
	CreatedAt    time.Time `json:"createdAt"`
}

// IsAdmin checks if the user has admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

type RegisterRequest struct {
	Username string  `json:"username" validate:"required,min=2,max=50"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=6,max=72"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,max=20"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned after successful login/register
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

type UpdateRoleRequest struct {
	Role Role `json:"role" validate:"required,oneof=user admin"`
}

type UserListParams struct {
	Limit  int
	Offset int
	Search string
}
