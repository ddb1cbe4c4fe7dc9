package auth

import "context"

// Authenticator defines the account workflow exposed over HTTP.
type Authenticator interface {
	Register(ctx context.Context, input RegisterInput) error
	Approve(ctx context.Context, token string) (*User, error)
	Login(ctx context.Context, input LoginInput) (*AuthResponse, error)
	ForgotPassword(ctx context.Context, email string) error
	GetUserByEmail(ctx context.Context, email string) (*User, error)
}

// TokenService defines the interface for JWT token operations.
type TokenService interface {
	GenerateToken(email string) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

// Compile-time interface satisfaction checks
var (
	_ Authenticator = (*Service)(nil)
	_ TokenService  = (*JWTService)(nil)
)
