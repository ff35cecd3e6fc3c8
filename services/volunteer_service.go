package services

import (
	"context"

	"rescueline/models"
	"rescueline/repositories"
	"rescueline/utils"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
)

// VolunteerService manages individual responder accounts. Like organizations,
// volunteers stay out of discovery until an admin verifies them.
type VolunteerService struct {
	volunteerRepo   *repositories.VolunteerRepository
	jwtService      *utils.JWTService
	passwordService *utils.PasswordService
	validator       *utils.ValidationService
}

func NewVolunteerService(volunteerRepo *repositories.VolunteerRepository, jwtService *utils.JWTService) *VolunteerService {
	return &VolunteerService{
		volunteerRepo:   volunteerRepo,
		jwtService:      jwtService,
		passwordService: utils.NewPasswordService(),
		validator:       utils.NewValidationService(),
	}
}

func (vs *VolunteerService) Register(ctx context.Context, req models.RegisterVolunteerRequest) (*models.AuthResponse, error) {
	if validationErrors := vs.validator.ValidateStruct(req); len(validationErrors) > 0 {
		return nil, utils.NewValidationError(validationErrors[0].Message)
	}
	if !utils.IsValidCoordinate(req.Location.Latitude, req.Location.Longitude) {
		return nil, utils.NewValidationError("Invalid location coordinates")
	}

	exists, err := vs.volunteerRepo.ExistsByEmailOrPhone(ctx, req.Email, req.Phone)
	if err != nil {
		return nil, utils.NewDatabaseError("check existing volunteer", err)
	}
	if exists {
		return nil, utils.NewConflictError("A volunteer with this email or phone already exists")
	}

	hashedPassword, err := vs.passwordService.HashPassword(req.Password)
	if err != nil {
		logrus.Error("Failed to hash password: ", err)
		return nil, utils.NewDatabaseError("hash password", err)
	}

	availableRadius := req.AvailableRadius
	if availableRadius <= 0 {
		availableRadius = 10
	}

	volunteer := models.Volunteer{
		Name:             req.Name,
		Phone:            req.Phone,
		Email:            req.Email,
		Password:         hashedPassword,
		Age:              req.Age,
		Gender:           req.Gender,
		Location:         req.Location.ToGeoPoint(),
		AvailableRadius:  availableRadius,
		Skills:           req.Skills,
		Availability:     models.AvailabilityAvailable,
		Verified:         false,
		IDProof:          req.IDProof,
		EmergencyContact: req.EmergencyContact,
		IsActive:         true,
	}

	if err := vs.volunteerRepo.Create(ctx, &volunteer); err != nil {
		logrus.Error("Failed to create volunteer: ", err)
		return nil, utils.NewDatabaseError("create volunteer", err)
	}

	tokenPair, err := vs.jwtService.GenerateTokenPair(volunteer.ID.Hex(), utils.RoleVolunteer)
	if err != nil {
		logrus.Error("Failed to generate tokens: ", err)
		return nil, utils.NewDatabaseError("generate authentication tokens", err)
	}

	volunteer.Password = ""

	return &models.AuthResponse{
		Token:   toModelTokenPair(tokenPair),
		Subject: volunteer,
		Role:    utils.RoleVolunteer,
	}, nil
}

func (vs *VolunteerService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	if validationErrors := vs.validator.ValidateStruct(req); len(validationErrors) > 0 {
		return nil, utils.NewValidationError(validationErrors[0].Message)
	}

	volunteer, err := vs.volunteerRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, utils.NewUnauthorizedError("Invalid email or password")
	}

	if !volunteer.IsActive {
		return nil, utils.NewUnauthorizedError("Account is deactivated")
	}

	if !vs.passwordService.ComparePassword(volunteer.Password, req.Password) {
		return nil, utils.NewUnauthorizedError("Invalid email or password")
	}

	if err := vs.volunteerRepo.TouchLastActive(ctx, volunteer.ID.Hex()); err != nil {
		logrus.Warn("Failed to update last active: ", err)
	}

	tokenPair, err := vs.jwtService.GenerateTokenPair(volunteer.ID.Hex(), utils.RoleVolunteer)
	if err != nil {
		logrus.Error("Failed to generate tokens: ", err)
		return nil, utils.NewDatabaseError("generate authentication tokens", err)
	}

	volunteer.Password = ""

	return &models.AuthResponse{
		Token:   toModelTokenPair(tokenPair),
		Subject: volunteer,
		Role:    utils.RoleVolunteer,
	}, nil
}

func (vs *VolunteerService) GetProfile(ctx context.Context, id string) (*models.Volunteer, error) {
	volunteer, err := vs.volunteerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, utils.NewNotFoundError("Volunteer")
	}
	volunteer.Password = ""
	return volunteer, nil
}

func (vs *VolunteerService) UpdateProfile(ctx context.Context, id string, req models.UpdateVolunteerRequest) (*models.Volunteer, error) {
	if validationErrors := vs.validator.ValidateStruct(req); len(validationErrors) > 0 {
		return nil, utils.NewValidationError(validationErrors[0].Message)
	}

	if _, err := vs.volunteerRepo.GetByID(ctx, id); err != nil {
		return nil, utils.NewNotFoundError("Volunteer")
	}

	updateFields := bson.M{}
	if req.Name != "" {
		updateFields["name"] = req.Name
	}
	if req.Phone != "" {
		updateFields["phone"] = req.Phone
	}
	if req.Location != nil {
		if !utils.IsValidCoordinate(req.Location.Latitude, req.Location.Longitude) {
			return nil, utils.NewValidationError("Invalid location coordinates")
		}
		updateFields["location"] = req.Location.ToGeoPoint()
	}
	if req.AvailableRadius > 0 {
		updateFields["availableRadius"] = req.AvailableRadius
	}
	if req.Skills != nil {
		updateFields["skills"] = req.Skills
	}
	if req.Availability != "" {
		updateFields["availability"] = req.Availability
	}
	if req.EmergencyContact != nil {
		updateFields["emergencyContact"] = req.EmergencyContact
	}

	if len(updateFields) == 0 {
		return nil, utils.NewValidationError("Nothing to update")
	}

	if err := vs.volunteerRepo.Update(ctx, id, updateFields); err != nil {
		return nil, utils.NewDatabaseError("update volunteer", err)
	}

	return vs.GetProfile(ctx, id)
}

func (vs *VolunteerService) UpdateAvailability(ctx context.Context, id, availability string) error {
	switch availability {
	case models.AvailabilityAvailable, models.AvailabilityBusy, models.AvailabilityUnavailable:
	default:
		return utils.NewValidationError("Invalid availability value")
	}
	if err := vs.volunteerRepo.Update(ctx, id, bson.M{"availability": availability}); err != nil {
		return utils.NewDatabaseError("update availability", err)
	}
	return nil
}

func (vs *VolunteerService) Deactivate(ctx context.Context, id string) error {
	if _, err := vs.volunteerRepo.GetByID(ctx, id); err != nil {
		return utils.NewNotFoundError("Volunteer")
	}
	if err := vs.volunteerRepo.Deactivate(ctx, id); err != nil {
		return utils.NewDatabaseError("deactivate volunteer", err)
	}
	return nil
}

func (vs *VolunteerService) SetVerified(ctx context.Context, id string, verified bool) (*models.Volunteer, error) {
	if _, err := vs.volunteerRepo.GetByID(ctx, id); err != nil {
		return nil, utils.NewNotFoundError("Volunteer")
	}
	if err := vs.volunteerRepo.Update(ctx, id, bson.M{"verified": verified}); err != nil {
		return nil, utils.NewDatabaseError("update verification", err)
	}
	return vs.GetProfile(ctx, id)
}

func (vs *VolunteerService) List(ctx context.Context, verifiedOnly bool, limit int) ([]models.Volunteer, error) {
	filter := bson.M{"isActive": true}
	if verifiedOnly {
		filter["verified"] = true
	}
	if limit < 1 || limit > 200 {
		limit = 100
	}

	volunteers, err := vs.volunteerRepo.List(ctx, filter, limit)
	if err != nil {
		return nil, utils.NewDatabaseError("list volunteers", err)
	}
	for i := range volunteers {
		volunteers[i].Password = ""
	}
	return volunteers, nil
}
