package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EmergencyRequest is the central record of the system. It is created once
// with its notification lists, mutated by responder accept/reject actions and
// control-room status updates, and never deleted.
type EmergencyRequest struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID    string             `json:"userId" bson:"userId"`
	UserName  string             `json:"userName" bson:"userName"`
	UserPhone string             `json:"userPhone" bson:"userPhone"`
	Location  GeoPoint           `json:"location" bson:"location"`

	EmergencyType string `json:"emergencyType" bson:"emergencyType"`
	Description   string `json:"description" bson:"description"`
	Priority      string `json:"priority" bson:"priority"`
	ThreatLevel   string `json:"threatLevel" bson:"threatLevel"`
	Status        string `json:"status" bson:"status"`

	NotifiedOrganizations []NotifiedResponder `json:"notifiedOrganizations" bson:"notifiedOrganizations"`
	NotifiedVolunteers    []NotifiedResponder `json:"notifiedVolunteers" bson:"notifiedVolunteers"`

	AssignedTo *AssignedResponder `json:"assignedTo,omitempty" bson:"assignedTo,omitempty"`

	UserMedicalInfo       *UserMedicalInfo   `json:"userMedicalInfo,omitempty" bson:"userMedicalInfo,omitempty"`
	UserEmergencyContacts []EmergencyContact `json:"userEmergencyContacts,omitempty" bson:"userEmergencyContacts,omitempty"`

	Notes      string    `json:"notes,omitempty" bson:"notes,omitempty"`
	ResolvedAt time.Time `json:"resolvedAt,omitempty" bson:"resolvedAt,omitempty"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt" bson:"updatedAt"`
}

// NotifiedResponder records one recipient's delivery and response state for a
// request. Entries are appended only at creation time; afterwards only the
// response fields mutate.
type NotifiedResponder struct {
	ResponderID     primitive.ObjectID `json:"responderId" bson:"responderId"`
	NotifiedAt      time.Time          `json:"notifiedAt" bson:"notifiedAt"`
	DeliveryStatus  string             `json:"deliveryStatus" bson:"deliveryStatus"`
	ResponseStatus  string             `json:"responseStatus" bson:"responseStatus"`
	RespondedAt     time.Time          `json:"respondedAt,omitempty" bson:"respondedAt,omitempty"`
	RejectionReason string             `json:"rejectionReason,omitempty" bson:"rejectionReason,omitempty"`
}

type AssignedResponder struct {
	ID   primitive.ObjectID `json:"id" bson:"id"`
	Kind string             `json:"kind" bson:"kind"` // organization or volunteer
}

type UserMedicalInfo struct {
	BloodType         string `json:"bloodType,omitempty" bson:"bloodType,omitempty"`
	MedicalConditions string `json:"medicalConditions,omitempty" bson:"medicalConditions,omitempty"`
	Allergies         string `json:"allergies,omitempty" bson:"allergies,omitempty"`
}

// Emergency type constants.
const (
	EmergencyTypeMedical  = "medical"
	EmergencyTypeSafety   = "safety"
	EmergencyTypeViolence = "violence"
	EmergencyTypeAccident = "accident"
	EmergencyTypeOther    = "other"
)

// Request status constants. Normal flow is pending -> acknowledged ->
// in-progress -> resolved; cancelled is reachable from pending/acknowledged.
const (
	StatusPending      = "pending"
	StatusAcknowledged = "acknowledged"
	StatusInProgress   = "in-progress"
	StatusResolved     = "resolved"
	StatusCancelled    = "cancelled"
)

// Priority constants.
const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// Threat level constants. ThreatFatal triggers auto-assignment.
const (
	ThreatLow    = "low"
	ThreatMedium = "medium"
	ThreatHigh   = "high"
	ThreatFatal  = "fatal"
)

// Delivery status constants for notification entries.
const (
	DeliverySent   = "sent"
	DeliveryFailed = "failed"
)

// Response status constants for notification entries.
const (
	ResponsePending  = "pending"
	ResponseAccepted = "accepted"
	ResponseRejected = "rejected"
)

// Responder kind tags used in assignment and JWT role claims.
const (
	ResponderKindOrganization = "organization"
	ResponderKindVolunteer    = "volunteer"
)

// =================== REQUEST/RESPONSE MODELS ===================

// CreateEmergencyRequestInput is the public, unauthenticated intake payload.
type CreateEmergencyRequestInput struct {
	UserName      string        `json:"userName" validate:"required"`
	UserPhone     string        `json:"userPhone" validate:"required,phone"`
	Location      LocationInput `json:"location" validate:"required"`
	EmergencyType string        `json:"emergencyType" validate:"required,oneof=medical safety violence accident other"`
	Description   string        `json:"description" validate:"required"`
	Priority      string        `json:"priority,omitempty" validate:"omitempty,oneof=low medium high critical"`
	ThreatLevel   string        `json:"threatLevel,omitempty" validate:"omitempty,oneof=low medium high fatal"`
}

// EmergencySignalInput is the authenticated quick-signal payload. Identity
// and medical details come from the user's stored profile.
type EmergencySignalInput struct {
	Location      LocationInput `json:"location" validate:"required"`
	EmergencyType string        `json:"emergencyType,omitempty" validate:"omitempty,oneof=medical safety violence accident other"`
	Description   string        `json:"description,omitempty"`
	Priority      string        `json:"priority,omitempty" validate:"omitempty,oneof=low medium high critical"`
	ThreatLevel   string        `json:"threatLevel,omitempty" validate:"omitempty,oneof=low medium high fatal"`
}

type UpdateEmergencyStatusRequest struct {
	Status     string `json:"status,omitempty" validate:"omitempty,oneof=pending acknowledged in-progress resolved cancelled"`
	Notes      string `json:"notes,omitempty"`
	AssignedTo string `json:"assignedTo,omitempty"`
	Kind       string `json:"kind,omitempty" validate:"omitempty,oneof=organization volunteer"`
}

type RejectEmergencyRequest struct {
	Reason string `json:"reason,omitempty"`
}

// EmergencyIntakeResult is returned by both intake endpoints.
type EmergencyIntakeResult struct {
	RequestID     primitive.ObjectID `json:"requestId"`
	Status        string             `json:"status"`
	NotifiedCount NotifiedCount      `json:"notifiedCount"`
	NearbyHelpers NearbyCount        `json:"nearbyHelpers"`
}

type NotifiedCount struct {
	Organizations int `json:"organizations"`
	Volunteers    int `json:"volunteers"`
	Total         int `json:"total"`
}

type NearbyCount struct {
	Organizations int `json:"organizations"`
	Volunteers    int `json:"volunteers"`
}

// NearbyHelpers is the discovery result: both slices are ordered
// nearest-first and are never nil.
type NearbyHelpers struct {
	Organizations []Organization `json:"organizations"`
	Volunteers    []Volunteer    `json:"volunteers"`
	SearchRadius  float64        `json:"searchRadius"`
	TotalFound    int            `json:"totalFound"`
}

// ResponderRequestView is a request annotated with the calling responder's
// own response state, for the responder "my requests" listing.
type ResponderRequestView struct {
	EmergencyRequest
	MyResponseStatus string    `json:"myResponseStatus"`
	MyRespondedAt    time.Time `json:"myRespondedAt,omitempty"`
}

// EmergencyStatsResponse backs the control-room dashboard stats widget.
type EmergencyStatsResponse struct {
	Total       int64            `json:"total"`
	Pending     int64            `json:"pending"`
	InProgress  int64            `json:"inProgress"`
	Resolved    int64            `json:"resolved"`
	Last24Hours int64            `json:"last24Hours"`
	ByType      map[string]int64 `json:"byType"`
}
