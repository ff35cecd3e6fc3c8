package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a requester account. Profile medical details travel with every
// emergency signal the user sends.
type User struct {
	ID                primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name              string             `json:"name" bson:"name"`
	Phone             string             `json:"phone" bson:"phone"`
	Email             string             `json:"email" bson:"email"`
	Password          string             `json:"-" bson:"password"`
	BloodType         string             `json:"bloodType,omitempty" bson:"bloodType,omitempty"`
	MedicalConditions string             `json:"medicalConditions,omitempty" bson:"medicalConditions,omitempty"`
	Allergies         string             `json:"allergies,omitempty" bson:"allergies,omitempty"`
	EmergencyContacts []EmergencyContact `json:"emergencyContacts,omitempty" bson:"emergencyContacts,omitempty"`
	IsActive          bool               `json:"isActive" bson:"isActive"`
	CreatedAt         time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt" bson:"updatedAt"`
}

type RegisterUserRequest struct {
	Name              string             `json:"name" validate:"required"`
	Phone             string             `json:"phone" validate:"required,phone"`
	Email             string             `json:"email" validate:"required,email"`
	Password          string             `json:"password" validate:"required,min=6"`
	BloodType         string             `json:"bloodType,omitempty"`
	MedicalConditions string             `json:"medicalConditions,omitempty"`
	Allergies         string             `json:"allergies,omitempty"`
	EmergencyContacts []EmergencyContact `json:"emergencyContacts,omitempty"`
}

type UpdateUserProfileRequest struct {
	Name              string             `json:"name,omitempty"`
	Phone             string             `json:"phone,omitempty" validate:"omitempty,phone"`
	BloodType         string             `json:"bloodType,omitempty"`
	MedicalConditions string             `json:"medicalConditions,omitempty"`
	Allergies         string             `json:"allergies,omitempty"`
	EmergencyContacts []EmergencyContact `json:"emergencyContacts,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by every login/register endpoint.
type AuthResponse struct {
	Token   *TokenPair  `json:"token"`
	Subject interface{} `json:"subject"`
	Role    string      `json:"role"`
}

// TokenPair mirrors utils.TokenPair for the response payload.
type TokenPair struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	TokenType    string    `json:"tokenType"`
	ExpiresIn    int64     `json:"expiresIn"`
	ExpiresAt    time.Time `json:"expiresAt"`
}
