package service

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"inkwell/internal/auth"
	"inkwell/internal/model"
	"inkwell/internal/repository"
)

// ErrInvalidCredentials is returned when email or password is incorrect.
var ErrInvalidCredentials = errors.New("invalid email or password")

// AuthService issues and revokes sessions, and answers the session check
// that gates article creation.
type AuthService interface {
	Login(ctx context.Context, email, password string) (token string, user *model.User, err error)
	Logout(ctx context.Context, token string) error
	// IsAuthenticated is the explicit session check: true only for a valid
	// token whose session is still live.
	IsAuthenticated(ctx context.Context, token string) bool
}

type authService struct {
	users      repository.UserRepository
	jwtService *auth.JWTService
	sessions   auth.SessionStoreInterface
}

// NewAuthService creates a new authentication service.
func NewAuthService(users repository.UserRepository, jwtService *auth.JWTService, sessions auth.SessionStoreInterface) AuthService {
	return &authService{
		users:      users,
		jwtService: jwtService,
		sessions:   sessions,
	}
}

// Login authenticates a user and opens a session.
func (s *authService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}

	if user.PasswordHash == "" {
		return "", nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	tokenID, token, err := s.jwtService.GenerateSessionToken(user.ID, user.Email)
	if err != nil {
		return "", nil, err
	}
	if err := s.sessions.StoreSession(ctx, tokenID, user.ID.String(), user.Email, auth.SessionTokenExpiry); err != nil {
		return "", nil, err
	}

	return token, user, nil
}

// Logout closes the session behind a token.
func (s *authService) Logout(ctx context.Context, token string) error {
	tokenID, err := s.jwtService.ExtractTokenID(token)
	if err != nil {
		return ErrInvalidCredentials
	}
	return s.sessions.DeleteSession(ctx, tokenID)
}

func (s *authService) IsAuthenticated(ctx context.Context, token string) bool {
	if token == "" {
		return false
	}
	claims, err := s.jwtService.ValidateToken(token)
	if err != nil {
		return false
	}
	userID, _, err := s.sessions.GetSession(ctx, claims.ID)
	if err != nil {
		return false
	}
	return userID == claims.UserID
}
