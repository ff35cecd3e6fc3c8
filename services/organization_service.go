package services

import (
	"context"

	"rescueline/models"
	"rescueline/repositories"
	"rescueline/utils"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
)

// OrganizationService manages responder organization accounts. Registration
// leaves the organization unverified; a control-room admin verifies it before
// it becomes discoverable.
type OrganizationService struct {
	orgRepo         *repositories.OrganizationRepository
	jwtService      *utils.JWTService
	passwordService *utils.PasswordService
	validator       *utils.ValidationService
}

func NewOrganizationService(orgRepo *repositories.OrganizationRepository, jwtService *utils.JWTService) *OrganizationService {
	return &OrganizationService{
		orgRepo:         orgRepo,
		jwtService:      jwtService,
		passwordService: utils.NewPasswordService(),
		validator:       utils.NewValidationService(),
	}
}

func (os *OrganizationService) Register(ctx context.Context, req models.RegisterOrganizationRequest) (*models.AuthResponse, error) {
	if validationErrors := os.validator.ValidateStruct(req); len(validationErrors) > 0 {
		return nil, utils.NewValidationError(validationErrors[0].Message)
	}
	if !utils.IsValidCoordinate(req.Location.Latitude, req.Location.Longitude) {
		return nil, utils.NewValidationError("Invalid location coordinates")
	}

	exists, err := os.orgRepo.ExistsByRegistrationOrPhone(ctx, req.RegistrationNumber, req.Phone)
	if err != nil {
		return nil, utils.NewDatabaseError("check existing organization", err)
	}
	if exists {
		return nil, utils.NewConflictError("An organization with this registration number or phone already exists")
	}
	if existing, _ := os.orgRepo.GetByEmail(ctx, req.Email); existing != nil {
		return nil, utils.NewConflictError("An organization with this email already exists")
	}

	hashedPassword, err := os.passwordService.HashPassword(req.Password)
	if err != nil {
		logrus.Error("Failed to hash password: ", err)
		return nil, utils.NewDatabaseError("hash password", err)
	}

	org := models.Organization{
		OrganizationName:   req.OrganizationName,
		RegistrationNumber: req.RegistrationNumber,
		ContactPerson:      req.ContactPerson,
		Phone:              req.Phone,
		AlternatePhone:     req.AlternatePhone,
		Email:              req.Email,
		Password:           hashedPassword,
		Location:           req.Location.ToGeoPoint(),
		ServiceArea:        req.ServiceArea,
		Services:           req.Services,
		Capacity:           req.Capacity,
		Availability:       models.AvailabilityAvailable,
		Verified:           false,
		IsActive:           true,
	}

	if err := os.orgRepo.Create(ctx, &org); err != nil {
		logrus.Error("Failed to create organization: ", err)
		return nil, utils.NewDatabaseError("create organization", err)
	}

	tokenPair, err := os.jwtService.GenerateTokenPair(org.ID.Hex(), utils.RoleOrganization)
	if err != nil {
		logrus.Error("Failed to generate tokens: ", err)
		return nil, utils.NewDatabaseError("generate authentication tokens", err)
	}

	org.Password = ""

	return &models.AuthResponse{
		Token:   toModelTokenPair(tokenPair),
		Subject: org,
		Role:    utils.RoleOrganization,
	}, nil
}

func (os *OrganizationService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	if validationErrors := os.validator.ValidateStruct(req); len(validationErrors) > 0 {
		return nil, utils.NewValidationError(validationErrors[0].Message)
	}

	org, err := os.orgRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, utils.NewUnauthorizedError("Invalid email or password")
	}

	if !org.IsActive {
		return nil, utils.NewUnauthorizedError("Account is deactivated")
	}

	if !os.passwordService.ComparePassword(org.Password, req.Password) {
		return nil, utils.NewUnauthorizedError("Invalid email or password")
	}

	tokenPair, err := os.jwtService.GenerateTokenPair(org.ID.Hex(), utils.RoleOrganization)
	if err != nil {
		logrus.Error("Failed to generate tokens: ", err)
		return nil, utils.NewDatabaseError("generate authentication tokens", err)
	}

	org.Password = ""

	return &models.AuthResponse{
		Token:   toModelTokenPair(tokenPair),
		Subject: org,
		Role:    utils.RoleOrganization,
	}, nil
}

func (os *OrganizationService) GetProfile(ctx context.Context, id string) (*models.Organization, error) {
	org, err := os.orgRepo.GetByID(ctx, id)
	if err != nil {
		return nil, utils.NewNotFoundError("Organization")
	}
	org.Password = ""
	return org, nil
}

func (os *OrganizationService) UpdateProfile(ctx context.Context, id string, req models.UpdateOrganizationRequest) (*models.Organization, error) {
	if validationErrors := os.validator.ValidateStruct(req); len(validationErrors) > 0 {
		return nil, utils.NewValidationError(validationErrors[0].Message)
	}

	if _, err := os.orgRepo.GetByID(ctx, id); err != nil {
		return nil, utils.NewNotFoundError("Organization")
	}

	updateFields := bson.M{}
	if req.OrganizationName != "" {
		updateFields["organizationName"] = req.OrganizationName
	}
	if req.ContactPerson != nil {
		updateFields["contactPerson"] = req.ContactPerson
	}
	if req.Phone != "" {
		updateFields["phone"] = req.Phone
	}
	if req.AlternatePhone != "" {
		updateFields["alternatePhone"] = req.AlternatePhone
	}
	if req.Location != nil {
		if !utils.IsValidCoordinate(req.Location.Latitude, req.Location.Longitude) {
			return nil, utils.NewValidationError("Invalid location coordinates")
		}
		updateFields["location"] = req.Location.ToGeoPoint()
	}
	if req.ServiceArea != nil {
		updateFields["serviceArea"] = req.ServiceArea
	}
	if req.Services != nil {
		updateFields["services"] = req.Services
	}
	if req.Capacity != nil {
		updateFields["capacity"] = req.Capacity
	}
	if req.Availability != "" {
		updateFields["availability"] = req.Availability
	}

	if len(updateFields) == 0 {
		return nil, utils.NewValidationError("Nothing to update")
	}

	if err := os.orgRepo.Update(ctx, id, updateFields); err != nil {
		return nil, utils.NewDatabaseError("update organization", err)
	}

	return os.GetProfile(ctx, id)
}

// UpdateAvailability is the lightweight toggle responders hit often, so it
// skips the full profile-update path.
func (os *OrganizationService) UpdateAvailability(ctx context.Context, id, availability string) error {
	switch availability {
	case models.AvailabilityAvailable, models.AvailabilityBusy, models.AvailabilityUnavailable:
	default:
		return utils.NewValidationError("Invalid availability value")
	}
	if err := os.orgRepo.Update(ctx, id, bson.M{"availability": availability}); err != nil {
		return utils.NewDatabaseError("update availability", err)
	}
	return nil
}

func (os *OrganizationService) Deactivate(ctx context.Context, id string) error {
	if _, err := os.orgRepo.GetByID(ctx, id); err != nil {
		return utils.NewNotFoundError("Organization")
	}
	if err := os.orgRepo.Deactivate(ctx, id); err != nil {
		return utils.NewDatabaseError("deactivate organization", err)
	}
	return nil
}

// SetVerified flips the admin verification flag. Unverified organizations
// are never discovered or notified.
func (os *OrganizationService) SetVerified(ctx context.Context, id string, verified bool) (*models.Organization, error) {
	if _, err := os.orgRepo.GetByID(ctx, id); err != nil {
		return nil, utils.NewNotFoundError("Organization")
	}
	if err := os.orgRepo.Update(ctx, id, bson.M{"verified": verified}); err != nil {
		return nil, utils.NewDatabaseError("update verification", err)
	}
	return os.GetProfile(ctx, id)
}

// List backs the admin directory view.
func (os *OrganizationService) List(ctx context.Context, verifiedOnly bool, limit int) ([]models.Organization, error) {
	filter := bson.M{"isActive": true}
	if verifiedOnly {
		filter["verified"] = true
	}
	if limit < 1 || limit > 200 {
		limit = 100
	}

	orgs, err := os.orgRepo.List(ctx, filter, limit)
	if err != nil {
		return nil, utils.NewDatabaseError("list organizations", err)
	}
	for i := range orgs {
		orgs[i].Password = ""
	}
	return orgs, nil
}
