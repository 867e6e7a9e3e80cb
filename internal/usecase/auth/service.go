package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"shipment-tracker/internal/config"
	domainUser "shipment-tracker/internal/domain/user"
	"shipment-tracker/internal/logger"
	appErrors "shipment-tracker/pkg/errors"
	"shipment-tracker/pkg/utils"
)

const tokenTypeBearer = "bearer"

// Service authenticates users and control units. User tokens and
// control-unit tokens are verified with separate secrets.
type Service struct {
	userRepo domainUser.Repository
	jwt      config.JWTConfig
}

func NewService(userRepo domainUser.Repository, cfg *config.Config) *Service {
	return &Service{
		userRepo: userRepo,
		jwt:      cfg.JWT,
	}
}

// Authenticate checks a username/password pair. Unknown users and wrong
// passwords fail with the same error.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*domainUser.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domainUser.ErrUserNotFound) {
			utils.BurnPasswordCheck(password)
			logger.Warn("Login attempt with unknown username",
				zap.String("username", username),
				zap.String("event", "login_failed_unknown_user"),
			)
			return nil, appErrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !utils.CheckPassword(user.PasswordHashed, password) {
		logger.Warn("Login attempt with invalid password",
			zap.String("user_id", user.ID.String()),
			zap.String("event", "login_failed_invalid_password"),
		)
		return nil, appErrors.ErrInvalidCredentials
	}

	return user, nil
}

func (s *Service) Login(ctx context.Context, req *LoginRequest) (*TokenResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation(err)
	}

	user, err := s.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.IssueUserToken(user)
	if err != nil {
		return nil, err
	}

	logger.Info("User logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)),
		zap.String("event", "user_logged_in"),
	)

	return &TokenResponse{
		AccessToken: token,
		TokenType:   tokenTypeBearer,
		ExpiresIn:   int64(time.Until(expiresAt).Seconds()),
	}, nil
}

// IssueUserToken signs {sub, role, exp} with the user secret.
func (s *Service) IssueUserToken(user *domainUser.User) (string, time.Time, error) {
	token, expiresAt, err := utils.GenerateUserToken(user.ID, string(user.Role), s.jwt.Secret, s.jwt.Algorithm, s.jwt.Expiry())
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate token: %w", err)
	}
	return token, expiresAt, nil
}

// ResolveUser verifies a user token and loads the user it names. A user
// deleted after the token was issued no longer resolves.
func (s *Service) ResolveUser(ctx context.Context, token string) (*domainUser.User, error) {
	claims, err := utils.ParseUserToken(token, s.jwt.Secret, s.jwt.Algorithm)
	if err != nil {
		return nil, appErrors.ErrUnauthorized
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, appErrors.ErrUnauthorized
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domainUser.ErrUserNotFound) {
			return nil, appErrors.ErrUnauthorized
		}
		return nil, err
	}

	return user, nil
}

// ResolveControlUnit verifies a control-unit token and returns its unit_id
// as written in the token. The id is not parsed here so the identity gate
// can tell a malformed id from a mismatched one.
func (s *Service) ResolveControlUnit(token string) (string, error) {
	claims, err := utils.ParseControlUnitToken(token, s.jwt.ControlUnitSecret, s.jwt.Algorithm)
	if err != nil {
		return "", appErrors.ErrUnauthorized
	}
	return claims.UnitID, nil
}
