// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"snapfeed/internal/cache"
	"snapfeed/internal/models"
	"snapfeed/internal/observability"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	SetResetCode(ctx context.Context, userID uint, code string, expiry time.Time) error
	ResetPassword(ctx context.Context, userID uint, passwordHash string) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	ctx, span := observability.StartRepositorySpan(ctx, "GetUserByID", "users")
	defer span.End()

	var user models.User
	key := cache.UserKey(id)

	err := cache.Aside(ctx, key, &user, cache.UserTTL, func() error {
		if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", id)
			}
			observability.RecordSpanError(span, err)
			return storeError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, span := observability.StartRepositorySpan(ctx, "GetUserByEmail", "users")
	defer span.End()

	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		observability.RecordSpanError(span, err)
		return nil, storeError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	ctx, span := observability.StartRepositorySpan(ctx, "GetUserByUsername", "users")
	defer span.End()

	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		observability.RecordSpanError(span, err)
		return nil, storeError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	ctx, span := observability.StartRepositorySpan(ctx, "CreateUser", "users")
	defer span.End()

	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			// Lost the race against a concurrent registration for the same
			// email or username; the handler already reported which field
			// collides in the common, unraced path.
			return models.NewConflictError("email or username")
		}
		observability.RecordSpanError(span, err)
		return storeError(err)
	}
	return nil
}

// SetResetCode stores a freshly issued recovery code and its expiry. A newer
// request simply overwrites the previous code.
func (r *userRepository) SetResetCode(ctx context.Context, userID uint, code string, expiry time.Time) error {
	ctx, span := observability.StartRepositorySpan(ctx, "SetResetCode", "users")
	defer span.End()

	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).
		Updates(map[string]interface{}{
			"reset_code":        code,
			"reset_code_expiry": expiry,
		})
	if res.Error != nil {
		observability.RecordSpanError(span, res.Error)
		return storeError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", userID)
	}
	cache.InvalidateUser(ctx, userID)
	return nil
}

// ResetPassword installs the new password hash and clears the reset code and
// its expiry in a single UPDATE, so the code can never be replayed.
func (r *userRepository) ResetPassword(ctx context.Context, userID uint, passwordHash string) error {
	ctx, span := observability.StartRepositorySpan(ctx, "ResetPassword", "users")
	defer span.End()

	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).
		Updates(map[string]interface{}{
			"password":          passwordHash,
			"reset_code":        nil,
			"reset_code_expiry": nil,
		})
	if res.Error != nil {
		observability.RecordSpanError(span, res.Error)
		return storeError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", userID)
	}
	cache.InvalidateUser(ctx, userID)
	return nil
}

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	// PostgreSQL unique violation SQLSTATE 23505
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}
