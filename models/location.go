package models

// GeoPoint is a GeoJSON Point as stored in MongoDB. Coordinates are
// [longitude, latitude] per the GeoJSON spec.
type GeoPoint struct {
	Type        string    `json:"type" bson:"type"`
	Coordinates []float64 `json:"coordinates" bson:"coordinates"`
	Address     string    `json:"address,omitempty" bson:"address,omitempty"`
	City        string    `json:"city,omitempty" bson:"city,omitempty"`
	State       string    `json:"state,omitempty" bson:"state,omitempty"`
	Pincode     string    `json:"pincode,omitempty" bson:"pincode,omitempty"`
}

// NewGeoPoint builds a GeoJSON point from longitude/latitude.
func NewGeoPoint(longitude, latitude float64) GeoPoint {
	return GeoPoint{
		Type:        "Point",
		Coordinates: []float64{longitude, latitude},
	}
}

func (p GeoPoint) Longitude() float64 {
	if len(p.Coordinates) < 2 {
		return 0
	}
	return p.Coordinates[0]
}

func (p GeoPoint) Latitude() float64 {
	if len(p.Coordinates) < 2 {
		return 0
	}
	return p.Coordinates[1]
}

// LocationInput is the client-facing location payload. Clients send plain
// longitude/latitude; the GeoJSON shape is an internal storage concern.
type LocationInput struct {
	Longitude float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
	Latitude  float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Address   string  `json:"address,omitempty"`
	City      string  `json:"city,omitempty"`
	State     string  `json:"state,omitempty"`
	Pincode   string  `json:"pincode,omitempty"`
}

// ToGeoPoint converts the input payload into the stored GeoJSON form.
func (li LocationInput) ToGeoPoint() GeoPoint {
	return GeoPoint{
		Type:        "Point",
		Coordinates: []float64{li.Longitude, li.Latitude},
		Address:     li.Address,
		City:        li.City,
		State:       li.State,
		Pincode:     li.Pincode,
	}
}
