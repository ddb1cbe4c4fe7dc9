package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/hugh/hoteldesk/internal/notify"
	"github.com/hugh/hoteldesk/internal/store"
)

var (
	ErrMissingFields      = errors.New("missing required fields")
	ErrMissingToken       = errors.New("missing approval token")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrPendingNotFound    = errors.New("pending registration not found")
	ErrNotApproved        = errors.New("user is not approved")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

const approvePath = "/api/auth/approve"

type Service struct {
	store      store.Store
	jwt        *JWTService
	mailer     notify.Sender
	adminEmail string
	logger     *slog.Logger
	now        func() time.Time
}

func NewService(st store.Store, jwt *JWTService, mailer notify.Sender, adminEmail string, logger *slog.Logger) *Service {
	return &Service{
		store:      st,
		jwt:        jwt,
		mailer:     mailer,
		adminEmail: adminEmail,
		logger:     logger,
		now:        time.Now,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	BaseURL  string // Scheme and host the approval link points at
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// Register stores an unapproved draft under a fresh token and mails the
// administrator an approval link. Only active users are checked for a
// duplicate email; drafts are not.
func (s *Service) Register(ctx context.Context, input RegisterInput) error {
	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(input.Email)
	if name == "" || email == "" || input.Password == "" {
		return ErrMissingFields
	}

	users, err := s.loadUsers(ctx)
	if err != nil {
		return err
	}
	if findUser(users, email) >= 0 {
		return ErrUserExists
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	token, err := s.jwt.GenerateToken(email)
	if err != nil {
		return fmt.Errorf("generating approval token: %w", err)
	}

	draft := User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
		Approved:     false,
	}

	err = s.store.Update(ctx, func(tx store.Txn) error {
		var users []User
		if _, err := store.TxnGetJSON(tx, store.KeyUsers, &users); err != nil {
			return err
		}
		if findUser(users, email) >= 0 {
			return ErrUserExists
		}

		pending := map[string]User{}
		if _, err := store.TxnGetJSON(tx, store.KeyPending, &pending); err != nil {
			return err
		}
		pending[token] = draft
		return store.TxnSetJSON(tx, store.KeyPending, pending)
	}, store.KeyUsers, store.KeyPending)
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "registration pending approval", "email", email)

	link := strings.TrimRight(input.BaseURL, "/") + approvePath + "?token=" + url.QueryEscape(token)
	if err := s.mailer.Send(ctx, notify.ApprovalRequest(s.adminEmail, name, email, link)); err != nil {
		return fmt.Errorf("sending approval email: %w", err)
	}

	return nil
}

// Approve promotes the draft stored under token to an active user and
// consumes the token. Both keys change in one store transaction.
func (s *Service) Approve(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	var approved User
	err := s.store.Update(ctx, func(tx store.Txn) error {
		pending := map[string]User{}
		if _, err := store.TxnGetJSON(tx, store.KeyPending, &pending); err != nil {
			return err
		}
		draft, ok := pending[token]
		if !ok {
			return ErrPendingNotFound
		}

		var users []User
		if _, err := store.TxnGetJSON(tx, store.KeyUsers, &users); err != nil {
			return err
		}

		draft.Approved = true
		users = append(users, draft)
		delete(pending, token)

		if err := store.TxnSetJSON(tx, store.KeyUsers, users); err != nil {
			return err
		}
		if err := store.TxnSetJSON(tx, store.KeyPending, pending); err != nil {
			return err
		}
		approved = draft
		return nil
	}, store.KeyUsers, store.KeyPending)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "account approved", "email", approved.Email)

	return &approved, nil
}

func (s *Service) Login(ctx context.Context, input LoginInput) (*AuthResponse, error) {
	user, err := s.GetUserByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}

	if !user.Approved {
		return nil, ErrNotApproved
	}

	if !CheckPassword(input.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken(user.Email)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		Token: token,
		User:  user,
	}, nil
}

// ForgotPassword replaces the stored credential with a random temporary
// password and mails it to the account owner. Approval is not checked.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}

	temp, err := GenerateTempPassword()
	if err != nil {
		return fmt.Errorf("generating temporary password: %w", err)
	}
	hash, err := HashPassword(temp)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	err = s.store.Update(ctx, func(tx store.Txn) error {
		var users []User
		if _, err := store.TxnGetJSON(tx, store.KeyUsers, &users); err != nil {
			return err
		}
		i := findUser(users, email)
		if i < 0 {
			return ErrUserNotFound
		}
		users[i].PasswordHash = hash
		return store.TxnSetJSON(tx, store.KeyUsers, users)
	}, store.KeyUsers)
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "password reset", "email", user.Email)

	if err := s.mailer.Send(ctx, notify.TemporaryPassword(user.Email, temp)); err != nil {
		return fmt.Errorf("sending temporary password: %w", err)
	}

	return nil
}

func (s *Service) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	if strings.TrimSpace(email) == "" {
		return nil, ErrUserNotFound
	}

	users, err := s.loadUsers(ctx)
	if err != nil {
		return nil, err
	}

	i := findUser(users, email)
	if i < 0 {
		return nil, ErrUserNotFound
	}
	return &users[i], nil
}

func (s *Service) loadUsers(ctx context.Context) ([]User, error) {
	var users []User
	if _, err := store.GetJSON(ctx, s.store, store.KeyUsers, &users); err != nil {
		return nil, fmt.Errorf("loading users: %w", err)
	}
	return users, nil
}
