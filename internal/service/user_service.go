package service

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"inkwell/internal/cache"
	"inkwell/internal/errors"
	"inkwell/internal/model"
	"inkwell/internal/repository"
)

const (
	userCacheTTL = 5 * time.Minute
	bcryptCost   = 10
)

// firstNamePattern is the record-level rule on User.FirstName: letters only,
// at least one character.
var firstNamePattern = regexp.MustCompile(`^[A-Za-z]+$`)

// UserOption is an (email, id) pair for the new-article owner select.
type UserOption struct {
	Email string    `json:"email"`
	ID    uuid.UUID `json:"id"`
}

// UserService exposes user operations.
type UserService interface {
	CreateUser(ctx context.Context, email, firstName, lastName, password string) (*model.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	ListUserOptions(ctx context.Context) ([]UserOption, error)
}

type userService struct {
	repo  repository.UserRepository
	cache *cache.Client
}

// NewUserService builds a UserService with repository and cache.
func NewUserService(repo repository.UserRepository, cache *cache.Client) UserService {
	return &userService{repo: repo, cache: cache}
}

func (s *userService) cacheKey(id uuid.UUID) string {
	return fmt.Sprintf("user:%s", id)
}

func (s *userService) CreateUser(ctx context.Context, email, firstName, lastName, password string) (*model.User, error) {
	if !firstNamePattern.MatchString(firstName) {
		return nil, errors.NewValidationError("first_name", "only allows letters")
	}

	existing, err := s.repo.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, errors.ErrEmailTaken
	}
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("check user existence: %w", err)
	}

	user := &model.User{
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
	}
	if password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = string(hashed)
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *userService) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	if data, _ := s.cache.Get(ctx, s.cacheKey(id)); data != nil {
		var cached model.User
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrUserNotFound
		}
		return nil, err
	}

	if payload, err := json.Marshal(user); err == nil {
		_ = s.cache.Set(ctx, s.cacheKey(id), payload, userCacheTTL)
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.repo.List(ctx)
}

// ListUserOptions returns all users as (email, id) pairs for the article
// owner select.
func (s *userService) ListUserOptions(ctx context.Context) ([]UserOption, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	options := make([]UserOption, 0, len(users))
	for _, u := range users {
		options = append(options, UserOption{Email: u.Email, ID: u.ID})
	}
	return options, nil
}
