package domain

import (
	"context"
	"time"
)

type User struct {
	ID              string    `json:"id"`
	Username        string    `json:"username" validate:"required,min=3,max=50,no_emoji"`
	Email           string    `json:"email" validate:"required,email"`
	Password        string    `json:"-" validate:"required"` // bcrypt hash
	Name            string    `json:"name" validate:"required,max=100,valid_name"`
	Phone           *string   `json:"phone,omitempty" validate:"omitempty,valid_phone"`
	Location        *string   `json:"location,omitempty" validate:"omitempty,max=100"`
	CurrentPosition *string   `json:"current_position,omitempty" validate:"omitempty,max=100"`
	CreatedAt       time.Time `json:"created_at"`
}

// UserPatch carries the fields of a partial user update. Nil fields are left untouched.
type UserPatch struct {
	Name            *string `json:"name,omitempty" validate:"omitempty,max=100,valid_name"`
	Email           *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone           *string `json:"phone,omitempty" validate:"omitempty,valid_phone"`
	Location        *string `json:"location,omitempty" validate:"omitempty,max=100"`
	CurrentPosition *string `json:"current_position,omitempty" validate:"omitempty,max=100"`
	Password        *string `json:"-"`
}

// Apply merges the patch into u.
func (p UserPatch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Phone != nil {
		u.Phone = p.Phone
	}
	if p.Location != nil {
		u.Location = p.Location
	}
	if p.CurrentPosition != nil {
		u.CurrentPosition = p.CurrentPosition
	}
	if p.Password != nil {
		u.Password = *p.Password
	}
}

// UserRepository returns (nil, nil) on lookup misses.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, id string, patch UserPatch) (*User, error)
}

type RegisterInput struct {
	Username        string  `json:"username" validate:"required,min=3,max=50,no_emoji"`
	Email           string  `json:"email" validate:"required,email"`
	Password        string  `json:"password" validate:"required,min=6,max=72"`
	Name            string  `json:"name" validate:"required,max=100,valid_name"`
	Phone           *string `json:"phone,omitempty" validate:"omitempty,valid_phone"`
	Location        *string `json:"location,omitempty" validate:"omitempty,max=100"`
	CurrentPosition *string `json:"current_position,omitempty" validate:"omitempty,max=100"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"omitempty,email"`
	Username string `json:"username" validate:"required_without=Email"`
	Password string `json:"password" validate:"required"`
}

// AuthResult is returned by register and login.
type AuthResult struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

type AuthUsecase interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, input LoginInput) (*AuthResult, error)
	GetCurrentUser(ctx context.Context, id string) (*User, error)
	UpdateUser(ctx context.Context, id string, patch UserPatch) (*User, error)
}
