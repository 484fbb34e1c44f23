package service

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/weiawesome/wes-estate/internal/audit"
	"github.com/weiawesome/wes-estate/internal/domain"
	"github.com/weiawesome/wes-estate/internal/repository"
)

// TokenIssuer issues access tokens.
type TokenIssuer interface {
	Generate(userID, email string) (string, error)
}

// userServiceImpl implements UserService interface.
type userServiceImpl struct {
	repo       repository.UserRepository
	tokens     TokenIssuer
	bcryptCost int
}

// NewUserService creates a new user service. A non-positive bcryptCost uses
// bcrypt.DefaultCost.
func NewUserService(repo repository.UserRepository, tokens TokenIssuer, bcryptCost int) UserService {
	if bcryptCost <= 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &userServiceImpl{repo: repo, tokens: tokens, bcryptCost: bcryptCost}
}

// Register creates an account and returns a token for it.
func (s *userServiceImpl) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.AuthResult, error) {
	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        req.Email,
		PasswordHash: string(hash),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, err
	}

	audit.Log(ctx, audit.ActionRegister, user.ID, user.ID, "user registered")
	return s.authResult(user)
}

// Login checks credentials and returns a fresh token.
func (s *userServiceImpl) Login(ctx context.Context, req *domain.LoginRequest) (*domain.AuthResult, error) {
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, ErrMissingCredentials
	}

	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, ErrInvalidCredentials
	}

	audit.Log(ctx, audit.ActionLogin, user.ID, user.ID, "user logged in")
	return s.authResult(user)
}

// Me returns the caller's profile.
func (s *userServiceImpl) Me(ctx context.Context, userID string) (*domain.UserSummary, error) {
	user, err := s.get(ctx, userID)
	if err != nil {
		return nil, err
	}
	summary := user.Summary()
	return &summary, nil
}

// Update changes name and email. Empty fields are kept.
func (s *userServiceImpl) Update(ctx context.Context, userID string, req *domain.UpdateUserRequest) (*domain.UserSummary, error) {
	user, err := s.get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if email := strings.TrimSpace(req.Email); email != "" {
		existing, err := s.repo.GetByEmail(ctx, email)
		switch {
		case err == nil && existing.ID != user.ID:
			return nil, ErrEmailInUse
		case err != nil && !errors.Is(err, repository.ErrNotFound):
			return nil, err
		}
		user.Email = email
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		user.Name = name
	}

	if err := s.repo.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrEmailInUse
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	audit.Log(ctx, audit.ActionUpdateProfile, user.ID, user.ID, "profile updated")
	summary := user.Summary()
	return &summary, nil
}

// UpdatePassword verifies the current password, stores the new one and
// returns a new token.
func (s *userServiceImpl) UpdatePassword(ctx context.Context, userID string, req *domain.UpdatePasswordRequest) (*domain.AuthResult, error) {
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return nil, ErrMissingPasswords
	}
	if len(req.NewPassword) < 6 {
		return nil, validationError("Password must be at least 6 characters")
	}

	user, err := s.get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)) != nil {
		return nil, ErrWrongPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.bcryptCost)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return nil, err
	}

	audit.Log(ctx, audit.ActionChangePassword, user.ID, user.ID, "password changed")
	return s.authResult(user)
}

// FindByEmail looks up another user, for example to address a recommendation.
func (s *userServiceImpl) FindByEmail(ctx context.Context, email string) (*domain.UserSummary, error) {
	if strings.TrimSpace(email) == "" {
		return nil, ErrMissingEmail
	}
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	summary := user.Summary()
	return &summary, nil
}

func (s *userServiceImpl) get(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userServiceImpl) authResult(user *domain.User) (*domain.AuthResult, error) {
	token, err := s.tokens.Generate(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &domain.AuthResult{Token: token, User: user.Summary()}, nil
}
