package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Organization is a registered responder organization (NGO, shelter,
// ambulance service). Organizations are discoverable once verified and are
// soft-deleted via IsActive.
type Organization struct {
	ID                 primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	OrganizationName   string             `json:"organizationName" bson:"organizationName"`
	RegistrationNumber string             `json:"registrationNumber" bson:"registrationNumber"`
	ContactPerson      ContactPerson      `json:"contactPerson,omitempty" bson:"contactPerson,omitempty"`
	Phone              string             `json:"phone" bson:"phone"`
	AlternatePhone     string             `json:"alternatePhone,omitempty" bson:"alternatePhone,omitempty"`
	Email              string             `json:"email" bson:"email"`
	Password           string             `json:"-" bson:"password"`
	Location           GeoPoint           `json:"location" bson:"location"`
	ServiceArea        ServiceArea        `json:"serviceArea,omitempty" bson:"serviceArea,omitempty"`
	Services           []string           `json:"services" bson:"services"`
	Capacity           Capacity           `json:"capacity" bson:"capacity"`
	Availability       string             `json:"availability" bson:"availability"`
	Verified           bool               `json:"verified" bson:"verified"`
	Rating             float64            `json:"rating" bson:"rating"`
	TotalResponses     int                `json:"totalResponses" bson:"totalResponses"`
	IsActive           bool               `json:"isActive" bson:"isActive"`
	CreatedAt          time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt" bson:"updatedAt"`

	// DistanceKm is computed per-query, never persisted.
	DistanceKm float64 `json:"distanceKm,omitempty" bson:"-"`
}

type ContactPerson struct {
	Name        string `json:"name,omitempty" bson:"name,omitempty"`
	Designation string `json:"designation,omitempty" bson:"designation,omitempty"`
}

type ServiceArea struct {
	RadiusKm float64  `json:"radiusKm,omitempty" bson:"radiusKm,omitempty"`
	Cities   []string `json:"cities,omitempty" bson:"cities,omitempty"`
}

// Capacity is informational only; discovery does not exclude at-capacity
// organizations.
type Capacity struct {
	CurrentLoad int `json:"currentLoad" bson:"currentLoad"`
	MaxCapacity int `json:"maxCapacity" bson:"maxCapacity"`
}

// Availability constants shared by organizations and volunteers.
const (
	AvailabilityAvailable   = "available"
	AvailabilityBusy        = "busy"
	AvailabilityUnavailable = "unavailable"
)

// Organization service tags.
const (
	ServiceMedical            = "medical"
	ServiceLegal              = "legal"
	ServiceShelter            = "shelter"
	ServiceCounseling         = "counseling"
	ServiceEmergencyTransport = "emergency-transport"
	ServiceFood               = "food"
	ServiceOther              = "other"
)

// =================== REQUEST/RESPONSE MODELS ===================

type RegisterOrganizationRequest struct {
	OrganizationName   string        `json:"organizationName" validate:"required"`
	RegistrationNumber string        `json:"registrationNumber" validate:"required"`
	ContactPerson      ContactPerson `json:"contactPerson,omitempty"`
	Phone              string        `json:"phone" validate:"required,phone"`
	AlternatePhone     string        `json:"alternatePhone,omitempty"`
	Email              string        `json:"email" validate:"required,email"`
	Password           string        `json:"password" validate:"required,min=6"`
	Location           LocationInput `json:"location" validate:"required"`
	ServiceArea        ServiceArea   `json:"serviceArea,omitempty"`
	Services           []string      `json:"services" validate:"dive,oneof=medical legal shelter counseling emergency-transport food other"`
	Capacity           Capacity      `json:"capacity,omitempty"`
}

type UpdateOrganizationRequest struct {
	OrganizationName string         `json:"organizationName,omitempty"`
	ContactPerson    *ContactPerson `json:"contactPerson,omitempty"`
	Phone            string         `json:"phone,omitempty" validate:"omitempty,phone"`
	AlternatePhone   string         `json:"alternatePhone,omitempty"`
	Location         *LocationInput `json:"location,omitempty"`
	ServiceArea      *ServiceArea   `json:"serviceArea,omitempty"`
	Services         []string       `json:"services,omitempty" validate:"omitempty,dive,oneof=medical legal shelter counseling emergency-transport food other"`
	Capacity         *Capacity      `json:"capacity,omitempty"`
	Availability     string         `json:"availability,omitempty" validate:"omitempty,oneof=available busy unavailable"`
}

type OrganizationSummary struct {
	ID               primitive.ObjectID `json:"id"`
	OrganizationName string             `json:"organizationName"`
	Phone            string             `json:"phone"`
	Email            string             `json:"email"`
	Services         []string           `json:"services"`
	Verified         bool               `json:"verified"`
}

func (o *Organization) Summary() OrganizationSummary {
	return OrganizationSummary{
		ID:               o.ID,
		OrganizationName: o.OrganizationName,
		Phone:            o.Phone,
		Email:            o.Email,
		Services:         o.Services,
		Verified:         o.Verified,
	}
}
