package auth

import (
	"time"

	"github.com/google/uuid"

	"github.com/rcastillo/storefront-backend/pkg/enums"
)

// RegisterInput carries the fields required to create an account.
type RegisterInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// LoginInput carries the credentials for an authentication attempt.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshInput carries an access/refresh pair for rotation.
type RefreshInput struct {
	AccessToken  string `json:"accessToken" validate:"required"`
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// TokenPair is returned by login and refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// UserView is the public projection of a user record.
type UserView struct {
	ID        uuid.UUID      `json:"id"`
	Email     string         `json:"email"`
	Role      enums.UserRole `json:"role"`
	CreatedAt time.Time      `json:"createdAt"`
}

// LoginResult bundles the authenticated user with its token pair.
type LoginResult struct {
	User   UserView  `json:"user"`
	Tokens TokenPair `json:"tokens"`
}
