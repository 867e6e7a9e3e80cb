package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domainUser "shipment-tracker/internal/domain/user"
	"shipment-tracker/internal/logger"
	appErrors "shipment-tracker/pkg/errors"
	"shipment-tracker/pkg/utils"
)

// Service implements user use cases
type Service struct {
	userRepo domainUser.Repository
}

// NewService creates a new user service
func NewService(userRepo domainUser.Repository) *Service {
	return &Service{userRepo: userRepo}
}

// Register creates a user. caller is the authenticated user making the
// request, or nil for anonymous registration. Only admins may create admins.
func (s *Service) Register(ctx context.Context, caller *domainUser.User, req *RegisterRequest) (*UserResponse, error) {
	req.Username = utils.SanitizeString(req.Username)
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation(err)
	}

	role := domainUser.RoleCustomer
	if req.Role != "" {
		role = domainUser.Role(req.Role)
	}
	if role == domainUser.RoleAdmin && (caller == nil || caller.Role != domainUser.RoleAdmin) {
		logger.Warn("Admin registration attempt without admin rights",
			zap.String("username", req.Username),
			zap.String("event", "registration_forbidden_admin_role"),
		)
		return nil, appErrors.ErrInsufficientPermissions
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domainUser.User{
		Username:       req.Username,
		PasswordHashed: hashedPassword,
		Role:           role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domainUser.ErrUserAlreadyExists) {
			logger.Warn("Registration attempt with existing username",
				zap.String("username", req.Username),
				zap.String("event", "registration_failed_duplicate_username"),
			)
		}
		return nil, err
	}

	logger.Info("User registered successfully",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
		zap.String("role", string(user.Role)),
		zap.String("event", "user_registered"),
	)

	return ToUserResponse(user), nil
}

// EnsureAdmin creates the named admin account unless the username exists.
func (s *Service) EnsureAdmin(ctx context.Context, username, password string) error {
	_, err := s.userRepo.GetByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domainUser.ErrUserNotFound) {
		return err
	}

	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &domainUser.User{
		Username:       username,
		PasswordHashed: hashedPassword,
		Role:           domainUser.RoleAdmin,
	}
	if err := s.userRepo.Create(ctx, admin); err != nil && !errors.Is(err, domainUser.ErrUserAlreadyExists) {
		return err
	}

	logger.Info("Bootstrap admin created",
		zap.String("user_id", admin.ID.String()),
		zap.String("username", username),
		zap.String("event", "bootstrap_admin_created"),
	)
	return nil
}

func (s *Service) List(ctx context.Context, offset, limit int) ([]*UserResponse, error) {
	users, err := s.userRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	return ToUserResponses(users), nil
}

func (s *Service) Get(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ToUserResponse(user), nil
}

// Update applies a partial update. Users may edit themselves; admins may
// edit anyone. Only admins may change a role.
func (s *Service) Update(ctx context.Context, caller *domainUser.User, userID uuid.UUID, req *UpdateUserRequest) (*UserResponse, error) {
	if req.IsEmpty() {
		return nil, appErrors.NewAppError(appErrors.CodeEmptyUpdate, "No fields to update", nil)
	}

	isAdmin := caller.Role == domainUser.RoleAdmin
	if !isAdmin && caller.ID != userID {
		return nil, appErrors.ErrInsufficientPermissions
	}
	if !isAdmin && req.Role != nil && domainUser.Role(*req.Role) != caller.Role {
		return nil, appErrors.ErrInsufficientPermissions
	}

	if req.Username != nil {
		sanitized := utils.SanitizeString(*req.Username)
		req.Username = &sanitized
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation(err)
	}

	changes := domainUser.Changes{Username: req.Username}
	if req.Role != nil {
		role := domainUser.Role(*req.Role)
		changes.Role = &role
	}
	if req.Password != nil {
		hashedPassword, err := utils.HashPassword(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		changes.PasswordHashed = &hashedPassword
	}

	user, err := s.userRepo.Update(ctx, userID, changes)
	if err != nil {
		return nil, err
	}

	logger.Info("User updated",
		zap.String("user_id", user.ID.String()),
		zap.String("updated_by", caller.ID.String()),
		zap.String("event", "user_updated"),
	)

	return ToUserResponse(user), nil
}

func (s *Service) Delete(ctx context.Context, userID uuid.UUID) error {
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return err
	}

	logger.Info("User deleted",
		zap.String("user_id", userID.String()),
		zap.String("event", "user_deleted"),
	)
	return nil
}
