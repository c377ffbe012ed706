package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/inkwell-blog/apiserver/internal/auth"
	"github.com/inkwell-blog/apiserver/internal/storage"
	"github.com/inkwell-blog/apiserver/internal/store"
	"github.com/inkwell-blog/apiserver/types"
)

const (
	// MaxAvatarBytes bounds uploaded avatars.
	MaxAvatarBytes = 500_000

	// MinPasswordLen is the minimum accepted password length.
	MinPasswordLen = 6
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	Update(ctx context.Context, user types.User) (types.User, error)
	UpdateAvatar(ctx context.Context, id int, avatar string) (types.User, error)
	List(ctx context.Context) ([]types.User, error)
}

// RegisterInput is the payload for account creation.
type RegisterInput struct {
	Name      string
	Email     string
	Password  string
	Password2 string
}

// EditProfileInput is the payload for a profile update. Changing any
// profile field requires proving the current password, and always sets
// a new one.
type EditProfileInput struct {
	Name               string
	Email              string
	CurrentPassword    string
	NewPassword        string
	NewConfirmPassword string
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	Token string `json:"token"`
	ID    int    `json:"id"`
	Name  string `json:"name"`
}

// UserService implements the account workflows.
type UserService struct {
	repo   UserRepository
	assets AssetStore
	tokens *auth.Service
	logger *slog.Logger
}

func NewUserService(repo UserRepository, assets AssetStore, tokens *auth.Service, logger *slog.Logger) *UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{
		repo:   repo,
		assets: assets,
		tokens: tokens,
		logger: logger,
	}
}

// Register creates an account. It returns the registered email as a
// confirmation, never the record itself.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (string, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if name == "" || email == "" || input.Password == "" {
		return "", validationError("fill in all fields")
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return "", ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return "", err
	}

	if len(strings.TrimSpace(input.Password)) < MinPasswordLen {
		return "", validationError("password should be at least 6 characters")
	}
	if input.Password != input.Password2 {
		return "", validationError("passwords do not match")
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return "", err
	}

	user, err := s.repo.Create(ctx, types.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		return "", err
	}
	return user.Email, nil
}

// Login verifies credentials and issues a token. Unknown email and
// wrong password are reported identically.
func (s *UserService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return LoginResult{}, validationError("fill in all fields")
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return LoginResult{}, ErrInvalidCredentials
	}

	token, err := s.tokens.IssueToken(auth.Identity{ID: user.ID, Name: user.Name})
	if err != nil {
		return LoginResult{}, err
	}

	return LoginResult{Token: token, ID: user.ID, Name: user.Name}, nil
}

// Get returns a user profile. The password hash is excluded from
// serialization by the type itself.
func (s *UserService) Get(ctx context.Context, id int) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

// ChangeAvatar replaces the caller's avatar. The size bound is checked
// before the prior avatar is touched, so an oversized upload leaves it
// intact.
func (s *UserService) ChangeAvatar(ctx context.Context, caller auth.Identity, file *FileUpload) (types.User, error) {
	if file == nil || len(file.Data) == 0 {
		return types.User{}, validationError("choose an image")
	}
	if int64(len(file.Data)) > MaxAvatarBytes {
		return types.User{}, storage.ErrFileTooLarge
	}

	user, err := s.repo.GetByID(ctx, caller.ID)
	if err != nil {
		return types.User{}, err
	}

	if user.Avatar != "" {
		if err := s.assets.Remove(ctx, user.Avatar); err != nil {
			s.logger.Warn("remove old avatar", "file", user.Avatar, "error", err)
		}
	}

	avatar, err := s.assets.Save(ctx, file.Data, file.Name, MaxAvatarBytes)
	if err != nil {
		return types.User{}, err
	}

	return s.repo.UpdateAvatar(ctx, caller.ID, avatar)
}

// EditProfile updates name, email, and password after verifying the
// current password.
func (s *UserService) EditProfile(ctx context.Context, caller auth.Identity, input EditProfileInput) (types.User, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if name == "" || email == "" || input.CurrentPassword == "" || input.NewPassword == "" {
		return types.User{}, validationError("fill in all fields")
	}

	user, err := s.repo.GetByID(ctx, caller.ID)
	if err != nil {
		return types.User{}, err
	}

	if other, err := s.repo.GetByEmail(ctx, email); err == nil {
		if other.ID != caller.ID {
			return types.User{}, ErrEmailTaken
		}
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.User{}, err
	}

	if !auth.CheckPassword(input.CurrentPassword, user.PasswordHash) {
		return types.User{}, ErrInvalidCredentials
	}
	if input.NewPassword != input.NewConfirmPassword {
		return types.User{}, validationError("new passwords do not match")
	}

	hash, err := auth.HashPassword(input.NewPassword)
	if err != nil {
		return types.User{}, err
	}

	user.Name = name
	user.Email = email
	user.PasswordHash = hash
	return s.repo.Update(ctx, user)
}

// ListAuthors returns all users. Password hashes are excluded from
// serialization by the type itself.
func (s *UserService) ListAuthors(ctx context.Context) ([]types.User, error) {
	return s.repo.List(ctx)
}
