package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"stockhive/internal/apperrors"
	"stockhive/internal/models"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db      *gorm.DB
	timeout time.Duration
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
// Every query is bounded by timeout; a non-positive timeout uses DefaultTimeout.
func NewGORMUserRepository(db *gorm.DB, timeout time.Duration) *GORMUserRepository {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &GORMUserRepository{
		db:      db,
		timeout: timeout,
	}
}

// Create inserts a user. A taken email fails with apperrors.ErrDuplicateEmail.
func (r *GORMUserRepository) Create(ctx context.Context, user *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	err := r.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("failed to create user: %w", apperrors.ErrDuplicateEmail)
	}
	return translate("failed to create user", err)
}

// GetByEmail retrieves a user by their normalized email.
func (r *GORMUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, translate("failed to get user by email", err)
	}
	return &user, nil
}

// GetByID retrieves a user by their ID.
func (r *GORMUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate("failed to get user by ID", err)
	}
	return &user, nil
}
