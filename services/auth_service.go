package services

import (
	"context"

	"rescueline/models"
	"rescueline/repositories"
	"rescueline/utils"

	"github.com/sirupsen/logrus"
)

// AuthService covers control-room admin authentication. Organization and
// volunteer auth lives with their own services since registration is part of
// the responder onboarding flow.
type AuthService struct {
	adminRepo       *repositories.AdminRepository
	jwtService      *utils.JWTService
	passwordService *utils.PasswordService
	validator       *utils.ValidationService
}

func NewAuthService(adminRepo *repositories.AdminRepository, jwtService *utils.JWTService) *AuthService {
	return &AuthService{
		adminRepo:       adminRepo,
		jwtService:      jwtService,
		passwordService: utils.NewPasswordService(),
		validator:       utils.NewValidationService(),
	}
}

func (as *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	if validationErrors := as.validator.ValidateStruct(req); len(validationErrors) > 0 {
		return nil, utils.NewValidationError(validationErrors[0].Message)
	}

	admin, err := as.adminRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, utils.NewUnauthorizedError("Invalid email or password")
	}

	if !admin.IsActive {
		return nil, utils.NewUnauthorizedError("Account is deactivated")
	}

	if !as.passwordService.ComparePassword(admin.Password, req.Password) {
		return nil, utils.NewUnauthorizedError("Invalid email or password")
	}

	if err := as.adminRepo.UpdateLastLogin(ctx, admin.ID.Hex()); err != nil {
		logrus.Warn("Failed to update last login: ", err)
	}

	tokenPair, err := as.jwtService.GenerateTokenPair(admin.ID.Hex(), utils.RoleAdmin)
	if err != nil {
		logrus.Error("Failed to generate tokens: ", err)
		return nil, utils.NewDatabaseError("generate authentication tokens", err)
	}

	admin.Password = ""

	return &models.AuthResponse{
		Token:   toModelTokenPair(tokenPair),
		Subject: admin,
		Role:    utils.RoleAdmin,
	}, nil
}

// CreateAdmin provisions a new operator account. Only super-admins reach this
// through the routes layer.
func (as *AuthService) CreateAdmin(ctx context.Context, req models.CreateAdminRequest) (*models.Admin, error) {
	if validationErrors := as.validator.ValidateStruct(req); len(validationErrors) > 0 {
		return nil, utils.NewValidationError(validationErrors[0].Message)
	}

	exists, err := as.adminRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, utils.NewDatabaseError("check admin email", err)
	}
	if exists {
		return nil, utils.NewConflictError("An admin with this email already exists")
	}

	hashedPassword, err := as.passwordService.HashPassword(req.Password)
	if err != nil {
		logrus.Error("Failed to hash password: ", err)
		return nil, utils.NewDatabaseError("hash password", err)
	}

	admin := models.Admin{
		Email:    req.Email,
		Password: hashedPassword,
		Name:     req.Name,
		Role:     defaultString(req.Role, models.AdminRoleOperator),
		IsActive: true,
	}

	if err := as.adminRepo.Create(ctx, &admin); err != nil {
		logrus.Error("Failed to create admin: ", err)
		return nil, utils.NewDatabaseError("create admin", err)
	}

	admin.Password = ""
	return &admin, nil
}

func (as *AuthService) GetAdmin(ctx context.Context, id string) (*models.Admin, error) {
	admin, err := as.adminRepo.GetByID(ctx, id)
	if err != nil {
		return nil, utils.NewNotFoundError("Admin")
	}
	admin.Password = ""
	return admin, nil
}

// RefreshToken exchanges a valid refresh token for a fresh pair. Works for
// any role since the claims carry the role through.
func (as *AuthService) RefreshToken(refreshToken string) (*models.TokenPair, error) {
	tokenPair, err := as.jwtService.RefreshToken(refreshToken)
	if err != nil {
		return nil, utils.NewUnauthorizedError("Invalid or expired refresh token")
	}
	return toModelTokenPair(tokenPair), nil
}

func toModelTokenPair(pair *utils.TokenPair) *models.TokenPair {
	return &models.TokenPair{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresIn:    pair.ExpiresIn,
		ExpiresAt:    pair.ExpiresAt,
	}
}
