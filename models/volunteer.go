package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Volunteer is an individual responder. Volunteers are only notified while
// their availability is exactly "available"; organizations are notified
// unless explicitly unavailable.
type Volunteer struct {
	ID               primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name             string             `json:"name" bson:"name"`
	Phone            string             `json:"phone" bson:"phone"`
	Email            string             `json:"email" bson:"email"`
	Password         string             `json:"-" bson:"password"`
	Age              int                `json:"age,omitempty" bson:"age,omitempty"`
	Gender           string             `json:"gender,omitempty" bson:"gender,omitempty"`
	Location         GeoPoint           `json:"location" bson:"location"`
	AvailableRadius  float64            `json:"availableRadius" bson:"availableRadius"`
	Skills           []string           `json:"skills" bson:"skills"`
	Availability     string             `json:"availability" bson:"availability"`
	Verified         bool               `json:"verified" bson:"verified"`
	IDProof          string             `json:"idProof,omitempty" bson:"idProof,omitempty"`
	EmergencyContact EmergencyContact   `json:"emergencyContact,omitempty" bson:"emergencyContact,omitempty"`
	Rating           float64            `json:"rating" bson:"rating"`
	TotalResponses   int                `json:"totalResponses" bson:"totalResponses"`
	IsActive         bool               `json:"isActive" bson:"isActive"`
	LastActive       time.Time          `json:"lastActive" bson:"lastActive"`
	CreatedAt        time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt        time.Time          `json:"updatedAt" bson:"updatedAt"`

	// DistanceKm is computed per-query, never persisted.
	DistanceKm float64 `json:"distanceKm,omitempty" bson:"-"`
}

type EmergencyContact struct {
	Name     string `json:"name,omitempty" bson:"name,omitempty"`
	Phone    string `json:"phone,omitempty" bson:"phone,omitempty"`
	Relation string `json:"relation,omitempty" bson:"relation,omitempty"`
}

// Volunteer skill tags.
const (
	SkillFirstAid       = "first-aid"
	SkillCounseling     = "counseling"
	SkillDriving        = "driving"
	SkillTranslation    = "language-translation"
	SkillLegalKnowledge = "legal-knowledge"
	SkillMedical        = "medical"
	SkillOther          = "other"
)

// =================== REQUEST/RESPONSE MODELS ===================

type RegisterVolunteerRequest struct {
	Name             string           `json:"name" validate:"required"`
	Phone            string           `json:"phone" validate:"required,phone"`
	Email            string           `json:"email" validate:"required,email"`
	Password         string           `json:"password" validate:"required,min=6"`
	Age              int              `json:"age,omitempty" validate:"omitempty,gte=18,lte=100"`
	Gender           string           `json:"gender,omitempty"`
	Location         LocationInput    `json:"location" validate:"required"`
	AvailableRadius  float64          `json:"availableRadius,omitempty"`
	Skills           []string         `json:"skills" validate:"dive,oneof=first-aid counseling driving language-translation legal-knowledge medical other"`
	IDProof          string           `json:"idProof,omitempty"`
	EmergencyContact EmergencyContact `json:"emergencyContact,omitempty"`
}

type UpdateVolunteerRequest struct {
	Name             string            `json:"name,omitempty"`
	Phone            string            `json:"phone,omitempty" validate:"omitempty,phone"`
	Location         *LocationInput    `json:"location,omitempty"`
	AvailableRadius  float64           `json:"availableRadius,omitempty"`
	Skills           []string          `json:"skills,omitempty" validate:"omitempty,dive,oneof=first-aid counseling driving language-translation legal-knowledge medical other"`
	Availability     string            `json:"availability,omitempty" validate:"omitempty,oneof=available busy unavailable"`
	EmergencyContact *EmergencyContact `json:"emergencyContact,omitempty"`
}

type VolunteerSummary struct {
	ID       primitive.ObjectID `json:"id"`
	Name     string             `json:"name"`
	Phone    string             `json:"phone"`
	Email    string             `json:"email"`
	Skills   []string           `json:"skills"`
	Verified bool               `json:"verified"`
}

func (v *Volunteer) Summary() VolunteerSummary {
	return VolunteerSummary{
		ID:       v.ID,
		Name:     v.Name,
		Phone:    v.Phone,
		Email:    v.Email,
		Skills:   v.Skills,
		Verified: v.Verified,
	}
}
