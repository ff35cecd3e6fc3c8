package services

import (
	"context"

	"rescueline/models"
	"rescueline/repositories"
	"rescueline/utils"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
)

// UserService manages requester accounts. The medical profile captured here
// rides along with every emergency signal.
type UserService struct {
	userRepo        *repositories.UserRepository
	jwtService      *utils.JWTService
	passwordService *utils.PasswordService
	validator       *utils.ValidationService
}

func NewUserService(userRepo *repositories.UserRepository, jwtService *utils.JWTService) *UserService {
	return &UserService{
		userRepo:        userRepo,
		jwtService:      jwtService,
		passwordService: utils.NewPasswordService(),
		validator:       utils.NewValidationService(),
	}
}

func (us *UserService) Register(ctx context.Context, req models.RegisterUserRequest) (*models.AuthResponse, error) {
	if validationErrors := us.validator.ValidateStruct(req); len(validationErrors) > 0 {
		return nil, utils.NewValidationError(validationErrors[0].Message)
	}

	exists, err := us.userRepo.ExistsByEmailOrPhone(ctx, req.Email, req.Phone)
	if err != nil {
		return nil, utils.NewDatabaseError("check existing user", err)
	}
	if exists {
		return nil, utils.NewConflictError("A user with this email or phone already exists")
	}

	hashedPassword, err := us.passwordService.HashPassword(req.Password)
	if err != nil {
		logrus.Error("Failed to hash password: ", err)
		return nil, utils.NewDatabaseError("hash password", err)
	}

	user := models.User{
		Name:              req.Name,
		Phone:             req.Phone,
		Email:             req.Email,
		Password:          hashedPassword,
		BloodType:         req.BloodType,
		MedicalConditions: req.MedicalConditions,
		Allergies:         req.Allergies,
		EmergencyContacts: req.EmergencyContacts,
		IsActive:          true,
	}

	if err := us.userRepo.Create(ctx, &user); err != nil {
		logrus.Error("Failed to create user: ", err)
		return nil, utils.NewDatabaseError("create user", err)
	}

	tokenPair, err := us.jwtService.GenerateTokenPair(user.ID.Hex(), utils.RoleUser)
	if err != nil {
		logrus.Error("Failed to generate tokens: ", err)
		return nil, utils.NewDatabaseError("generate authentication tokens", err)
	}

	user.Password = ""

	return &models.AuthResponse{
		Token:   toModelTokenPair(tokenPair),
		Subject: user,
		Role:    utils.RoleUser,
	}, nil
}

func (us *UserService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	if validationErrors := us.validator.ValidateStruct(req); len(validationErrors) > 0 {
		return nil, utils.NewValidationError(validationErrors[0].Message)
	}

	user, err := us.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, utils.NewUnauthorizedError("Invalid email or password")
	}

	if !user.IsActive {
		return nil, utils.NewUnauthorizedError("Account is deactivated")
	}

	if !us.passwordService.ComparePassword(user.Password, req.Password) {
		return nil, utils.NewUnauthorizedError("Invalid email or password")
	}

	tokenPair, err := us.jwtService.GenerateTokenPair(user.ID.Hex(), utils.RoleUser)
	if err != nil {
		logrus.Error("Failed to generate tokens: ", err)
		return nil, utils.NewDatabaseError("generate authentication tokens", err)
	}

	user.Password = ""

	return &models.AuthResponse{
		Token:   toModelTokenPair(tokenPair),
		Subject: user,
		Role:    utils.RoleUser,
	}, nil
}

func (us *UserService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	user, err := us.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, utils.NewNotFoundError("User")
	}
	user.Password = ""
	return user, nil
}

func (us *UserService) UpdateProfile(ctx context.Context, userID string, req models.UpdateUserProfileRequest) (*models.User, error) {
	if validationErrors := us.validator.ValidateStruct(req); len(validationErrors) > 0 {
		return nil, utils.NewValidationError(validationErrors[0].Message)
	}

	if _, err := us.userRepo.GetByID(ctx, userID); err != nil {
		return nil, utils.NewNotFoundError("User")
	}

	updateFields := bson.M{}
	if req.Name != "" {
		updateFields["name"] = req.Name
	}
	if req.Phone != "" {
		updateFields["phone"] = req.Phone
	}
	if req.BloodType != "" {
		updateFields["bloodType"] = req.BloodType
	}
	if req.MedicalConditions != "" {
		updateFields["medicalConditions"] = req.MedicalConditions
	}
	if req.Allergies != "" {
		updateFields["allergies"] = req.Allergies
	}
	if req.EmergencyContacts != nil {
		updateFields["emergencyContacts"] = req.EmergencyContacts
	}

	if len(updateFields) == 0 {
		return nil, utils.NewValidationError("Nothing to update")
	}

	if err := us.userRepo.Update(ctx, userID, updateFields); err != nil {
		return nil, utils.NewDatabaseError("update user profile", err)
	}

	return us.GetProfile(ctx, userID)
}
