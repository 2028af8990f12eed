package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"stockhive/internal/apperrors"
	"stockhive/internal/models"
	"stockhive/internal/repositories"
	"stockhive/internal/validation"
)

// ErrInvalidCredentials is returned by Login for an unknown email or a wrong password.
var ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", apperrors.ErrUnauthenticated)

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo   repositories.UserRepository
	tokens     *TokenService
	validate   *validation.Validator
	bcryptCost int
	logger     *zap.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, tokens *TokenService, bcryptCost int, logger *zap.Logger) *AuthService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		userRepo:   userRepo,
		tokens:     tokens,
		validate:   validation.New(),
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// NormalizeEmail is the canonical form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RegisterUser creates an account with a bcrypt-hashed password and issues its first token.
func (s *AuthService) RegisterUser(ctx context.Context, req models.RegisterRequest) (*models.AuthPayload, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = NormalizeEmail(req.Email)
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	user, err := s.Register(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	return s.payload(user)
}

// Register persists a new user. The plaintext password is only handed to bcrypt.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	email = NormalizeEmail(email)

	existing, err := s.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.ErrDuplicateEmail
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: string(hashedPassword),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID))
	return user, nil
}

// FindByEmail returns nil, nil when no user has that email.
func (s *AuthService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil
	}
	return user, err
}

// FindByID returns nil, nil when no user has that id.
func (s *AuthService) FindByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil
	}
	return user, err
}

// VerifyPassword compares in constant time against the stored hash.
func (s *AuthService) VerifyPassword(user *models.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

// LoginUser authenticates by email and password and issues a fresh token.
func (s *AuthService) LoginUser(ctx context.Context, req models.LoginRequest) (*models.AuthPayload, error) {
	req.Email = NormalizeEmail(req.Email)
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	user, err := s.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	// Unknown email and wrong password look the same to the caller.
	if user == nil || !s.VerifyPassword(user, req.Password) {
		return nil, ErrInvalidCredentials
	}
	return s.payload(user)
}

// Authenticate resolves a bearer token to its Principal. Every failure is ErrUnauthenticated;
// the underlying reason is only logged.
func (s *AuthService) Authenticate(ctx context.Context, token string) (models.Principal, error) {
	userID, err := s.tokens.Verify(token)
	if err != nil {
		s.logger.Debug("token rejected", zap.Error(err))
		return models.Principal{}, fmt.Errorf("%w: %w", apperrors.ErrUnauthenticated, err)
	}

	user, err := s.FindByID(ctx, userID)
	if err != nil {
		return models.Principal{}, err
	}
	if user == nil {
		s.logger.Debug("token for unknown user", zap.String("user_id", userID))
		return models.Principal{}, fmt.Errorf("%w: user not found", apperrors.ErrUnauthenticated)
	}
	return user.Principal(), nil
}

func (s *AuthService) payload(user *models.User) (*models.AuthPayload, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &models.AuthPayload{ID: user.ID, Name: user.Name, Email: user.Email, Token: token}, nil
}
