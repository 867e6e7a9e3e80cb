package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"shipment-tracker/internal/domain/user"
	"shipment-tracker/internal/infrastructure/database/postgres/models"
)

// UserRepository implements user.Repository
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	u.ID = uuid.New()
	u.CreatedAt = time.Now().UTC()

	dbModel := toUserModel(u)
	if err := r.db.conn(ctx).Create(dbModel).Error; err != nil {
		if isUniqueViolation(err) {
			return user.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	var dbModel models.UserModel
	err := r.db.conn(ctx).Where("username = ?", username).First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, user.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return toUserEntity(&dbModel), nil
}

func (r *UserRepository) GetByID(ctx context.Context, userID uuid.UUID) (*user.User, error) {
	var dbModel models.UserModel
	err := r.db.conn(ctx).First(&dbModel, "id = ?", userID).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, user.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return toUserEntity(&dbModel), nil
}

func (r *UserRepository) List(ctx context.Context, offset, limit int) ([]*user.User, error) {
	var dbModels []models.UserModel
	err := r.db.conn(ctx).
		Order("created_at ASC").Order("id ASC").
		Offset(offset).Limit(limit).
		Find(&dbModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]*user.User, len(dbModels))
	for i := range dbModels {
		users[i] = toUserEntity(&dbModels[i])
	}

	return users, nil
}

func (r *UserRepository) Update(ctx context.Context, userID uuid.UUID, changes user.Changes) (*user.User, error) {
	updates := map[string]interface{}{}
	if changes.Username != nil {
		updates["username"] = *changes.Username
	}
	if changes.PasswordHashed != nil {
		updates["password_hash"] = *changes.PasswordHashed
	}
	if changes.Role != nil {
		updates["role"] = string(*changes.Role)
	}

	if len(updates) > 0 {
		result := r.db.conn(ctx).Model(&models.UserModel{}).Where("id = ?", userID).Updates(updates)
		if result.Error != nil {
			if isUniqueViolation(result.Error) {
				return nil, user.ErrUserAlreadyExists
			}
			return nil, fmt.Errorf("failed to update user: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil, user.ErrUserNotFound
		}
	}

	return r.GetByID(ctx, userID)
}

func (r *UserRepository) Delete(ctx context.Context, userID uuid.UUID) error {
	result := r.db.conn(ctx).Delete(&models.UserModel{}, "id = ?", userID)
	if result.Error != nil {
		if isForeignKeyViolation(result.Error) {
			return user.ErrUserInUse
		}
		return fmt.Errorf("failed to delete user: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return user.ErrUserNotFound
	}

	return nil
}

func toUserModel(u *user.User) *models.UserModel {
	return &models.UserModel{
		ID:             u.ID,
		Username:       u.Username,
		PasswordHashed: u.PasswordHashed,
		Role:           string(u.Role),
		CreatedAt:      u.CreatedAt,
	}
}

func toUserEntity(m *models.UserModel) *user.User {
	return &user.User{
		ID:             m.ID,
		Username:       m.Username,
		PasswordHashed: m.PasswordHashed,
		Role:           user.Role(m.Role),
		CreatedAt:      m.CreatedAt,
	}
}
