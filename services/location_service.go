package services

import (
	"context"
	"sort"

	"rescueline/models"
	"rescueline/utils"

	"github.com/sirupsen/logrus"
)

// OrganizationFinder is the proximity query over organizations. Results are
// expected nearest-first; FindNearbyHelpers re-sorts by computed distance
// regardless, so a backing store without native distance ordering still
// satisfies the contract.
type OrganizationFinder interface {
	FindNearby(ctx context.Context, longitude, latitude, radiusKm float64, service string, limit int) ([]models.Organization, error)
}

// VolunteerFinder is the proximity query over volunteers.
type VolunteerFinder interface {
	FindNearby(ctx context.Context, longitude, latitude, radiusKm float64, limit int) ([]models.Volunteer, error)
}

type LocationService struct {
	organizationFinder OrganizationFinder
	volunteerFinder    VolunteerFinder

	defaultRadiusKm  float64
	maxOrganizations int
	maxVolunteers    int
}

func NewLocationService(
	organizationFinder OrganizationFinder,
	volunteerFinder VolunteerFinder,
	defaultRadiusKm float64,
	maxOrganizations, maxVolunteers int,
) *LocationService {
	if defaultRadiusKm <= 0 {
		defaultRadiusKm = 50
	}
	if maxOrganizations <= 0 {
		maxOrganizations = 3
	}
	if maxVolunteers <= 0 {
		maxVolunteers = 5
	}

	return &LocationService{
		organizationFinder: organizationFinder,
		volunteerFinder:    volunteerFinder,
		defaultRadiusKm:    defaultRadiusKm,
		maxOrganizations:   maxOrganizations,
		maxVolunteers:      maxVolunteers,
	}
}

// FindNearbyHelpers discovers the candidate responders for an emergency at
// the given location. Organizations are additionally filtered by service tag
// when the emergency type matches their vocabulary; volunteer skills are not
// emergency types, so volunteers are filtered by availability only. Both
// result slices are annotated with distance and sorted nearest-first. Empty
// slices are a valid no-helpers-nearby outcome, not an error.
func (ls *LocationService) FindNearbyHelpers(ctx context.Context, longitude, latitude float64, emergencyType string, radiusKm float64) (*models.NearbyHelpers, error) {
	if radiusKm <= 0 {
		radiusKm = ls.defaultRadiusKm
	}

	organizations, err := ls.organizationFinder.FindNearby(ctx, longitude, latitude, radiusKm, emergencyType, ls.maxOrganizations)
	if err != nil {
		logrus.Errorf("Nearby organization query failed: %v", err)
		return nil, utils.NewDiscoveryUnavailableError(err)
	}

	volunteers, err := ls.volunteerFinder.FindNearby(ctx, longitude, latitude, radiusKm, ls.maxVolunteers)
	if err != nil {
		logrus.Errorf("Nearby volunteer query failed: %v", err)
		return nil, utils.NewDiscoveryUnavailableError(err)
	}

	// Sort on the full-precision distance; the rounded value is display-only
	// and can collapse candidates a few meters apart.
	orgDistances := make([]float64, len(organizations))
	for i := range organizations {
		orgDistances[i] = utils.DistanceKm(
			latitude, longitude,
			organizations[i].Location.Latitude(), organizations[i].Location.Longitude(),
		)
		organizations[i].DistanceKm = utils.RoundKm(orgDistances[i])
	}
	volDistances := make([]float64, len(volunteers))
	for i := range volunteers {
		volDistances[i] = utils.DistanceKm(
			latitude, longitude,
			volunteers[i].Location.Latitude(), volunteers[i].Location.Longitude(),
		)
		volunteers[i].DistanceKm = utils.RoundKm(volDistances[i])
	}

	sort.Stable(organizationsByDistance{organizations, orgDistances})
	sort.Stable(volunteersByDistance{volunteers, volDistances})

	if organizations == nil {
		organizations = []models.Organization{}
	}
	if volunteers == nil {
		volunteers = []models.Volunteer{}
	}

	return &models.NearbyHelpers{
		Organizations: organizations,
		Volunteers:    volunteers,
		SearchRadius:  radiusKm,
		TotalFound:    len(organizations) + len(volunteers),
	}, nil
}

// NearbyOrganizations backs the public /organizations/nearby search.
func (ls *LocationService) NearbyOrganizations(ctx context.Context, longitude, latitude, radiusKm float64, service string) ([]models.Organization, error) {
	if !utils.IsValidCoordinate(latitude, longitude) {
		return nil, utils.NewValidationError("Invalid coordinates")
	}
	if radiusKm <= 0 {
		radiusKm = ls.defaultRadiusKm
	}

	organizations, err := ls.organizationFinder.FindNearby(ctx, longitude, latitude, radiusKm, service, publicNearbyLimit)
	if err != nil {
		return nil, utils.NewDiscoveryUnavailableError(err)
	}

	for i := range organizations {
		organizations[i].DistanceKm = utils.RoundKm(utils.DistanceKm(
			latitude, longitude,
			organizations[i].Location.Latitude(), organizations[i].Location.Longitude(),
		))
	}

	return organizations, nil
}

// NearbyVolunteers backs the public /volunteers/nearby search.
func (ls *LocationService) NearbyVolunteers(ctx context.Context, longitude, latitude, radiusKm float64) ([]models.Volunteer, error) {
	if !utils.IsValidCoordinate(latitude, longitude) {
		return nil, utils.NewValidationError("Invalid coordinates")
	}
	if radiusKm <= 0 {
		radiusKm = ls.defaultRadiusKm
	}

	volunteers, err := ls.volunteerFinder.FindNearby(ctx, longitude, latitude, radiusKm, publicNearbyLimit)
	if err != nil {
		return nil, utils.NewDiscoveryUnavailableError(err)
	}

	for i := range volunteers {
		volunteers[i].DistanceKm = utils.RoundKm(utils.DistanceKm(
			latitude, longitude,
			volunteers[i].Location.Latitude(), volunteers[i].Location.Longitude(),
		))
	}

	return volunteers, nil
}

const publicNearbyLimit = 10

type organizationsByDistance struct {
	organizations []models.Organization
	distances     []float64
}

func (s organizationsByDistance) Len() int           { return len(s.organizations) }
func (s organizationsByDistance) Less(i, j int) bool { return s.distances[i] < s.distances[j] }
func (s organizationsByDistance) Swap(i, j int) {
	s.organizations[i], s.organizations[j] = s.organizations[j], s.organizations[i]
	s.distances[i], s.distances[j] = s.distances[j], s.distances[i]
}

type volunteersByDistance struct {
	volunteers []models.Volunteer
	distances  []float64
}

func (s volunteersByDistance) Len() int           { return len(s.volunteers) }
func (s volunteersByDistance) Less(i, j int) bool { return s.distances[i] < s.distances[j] }
func (s volunteersByDistance) Swap(i, j int) {
	s.volunteers[i], s.volunteers[j] = s.volunteers[j], s.volunteers[i]
	s.distances[i], s.distances[j] = s.distances[j], s.distances[i]
}
