package dto

import (
	"time"

	"github.com/hugh/hoteldesk/internal/auth"
)

type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginRequest carries no presence rules: an empty email is reported as an
// unknown user, not as a malformed request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ForgotRequest struct {
	Email string `json:"email"`
}

type AuthResponse struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

type UserDTO struct {
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	Approved  bool      `json:"approved"`
}

// NewUserDTO strips the password hash from a stored account.
func NewUserDTO(u *auth.User) UserDTO {
	return UserDTO{
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		Approved:  u.Approved,
	}
}
