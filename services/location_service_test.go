package services

import (
	"context"
	"errors"
	"testing"

	"rescueline/models"
	"rescueline/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type stubOrgFinder struct {
	organizations []models.Organization
	err           error

	gotRadius  float64
	gotService string
	gotLimit   int
}

func (f *stubOrgFinder) FindNearby(ctx context.Context, longitude, latitude, radiusKm float64, service string, limit int) ([]models.Organization, error) {
	f.gotRadius = radiusKm
	f.gotService = service
	f.gotLimit = limit
	return f.organizations, f.err
}

type stubVolFinder struct {
	volunteers []models.Volunteer
	err        error

	gotRadius float64
	gotLimit  int
}

func (f *stubVolFinder) FindNearby(ctx context.Context, longitude, latitude, radiusKm float64, limit int) ([]models.Volunteer, error) {
	f.gotRadius = radiusKm
	f.gotLimit = limit
	return f.volunteers, f.err
}

func orgAt(name string, longitude, latitude float64) models.Organization {
	return models.Organization{
		ID:               primitive.NewObjectID(),
		OrganizationName: name,
		Location:         models.NewGeoPoint(longitude, latitude),
	}
}

func volAt(name string, longitude, latitude float64) models.Volunteer {
	return models.Volunteer{
		ID:       primitive.NewObjectID(),
		Name:     name,
		Location: models.NewGeoPoint(longitude, latitude),
	}
}

func TestFindNearbyHelpers(t *testing.T) {
	ctx := context.Background()

	t.Run("applies defaults and limits", func(t *testing.T) {
		orgs := &stubOrgFinder{}
		vols := &stubVolFinder{}
		ls := NewLocationService(orgs, vols, 0, 0, 0)

		_, err := ls.FindNearbyHelpers(ctx, 77.59, 12.97, "medical", 0)
		require.NoError(t, err)

		assert.Equal(t, 50.0, orgs.gotRadius)
		assert.Equal(t, "medical", orgs.gotService)
		assert.Equal(t, 3, orgs.gotLimit)
		assert.Equal(t, 50.0, vols.gotRadius)
		assert.Equal(t, 5, vols.gotLimit)
	})

	t.Run("annotates distances and sorts nearest first", func(t *testing.T) {
		// Finder returns out of order; the service re-sorts by distance.
		far := orgAt("far", 77.59, 13.06)    // ~10km north
		near := orgAt("near", 77.59, 12.98)  // ~1km north
		mid := volAt("mid", 77.59, 13.015)   // ~5km north

		orgs := &stubOrgFinder{organizations: []models.Organization{far, near}}
		vols := &stubVolFinder{volunteers: []models.Volunteer{mid}}
		ls := NewLocationService(orgs, vols, 50, 3, 5)

		helpers, err := ls.FindNearbyHelpers(ctx, 77.59, 12.97, "medical", 0)
		require.NoError(t, err)

		require.Len(t, helpers.Organizations, 2)
		assert.Equal(t, "near", helpers.Organizations[0].OrganizationName)
		assert.Equal(t, "far", helpers.Organizations[1].OrganizationName)
		assert.Less(t, helpers.Organizations[0].DistanceKm, helpers.Organizations[1].DistanceKm)
		assert.Greater(t, helpers.Organizations[0].DistanceKm, 0.0)

		require.Len(t, helpers.Volunteers, 1)
		assert.Greater(t, helpers.Volunteers[0].DistanceKm, 0.0)

		assert.Equal(t, 3, helpers.TotalFound)
		assert.Equal(t, 50.0, helpers.SearchRadius)
	})

	t.Run("orders by exact distance even when rounded distances tie", func(t *testing.T) {
		// A few meters apart, so both round to the same displayed distance.
		// The nearer one must still come first.
		farther := orgAt("farther", 0, 0.009030) // ~1.0041km
		nearer := orgAt("nearer", 0, 0.009000)   // ~1.0008km

		orgs := &stubOrgFinder{organizations: []models.Organization{farther, nearer}}
		ls := NewLocationService(orgs, &stubVolFinder{}, 50, 3, 5)

		helpers, err := ls.FindNearbyHelpers(ctx, 0, 0, "medical", 0)
		require.NoError(t, err)

		require.Len(t, helpers.Organizations, 2)
		assert.Equal(t, helpers.Organizations[0].DistanceKm, helpers.Organizations[1].DistanceKm)
		assert.Equal(t, "nearer", helpers.Organizations[0].OrganizationName)
		assert.Equal(t, "farther", helpers.Organizations[1].OrganizationName)
	})

	t.Run("no helpers yields empty slices, not error", func(t *testing.T) {
		ls := NewLocationService(&stubOrgFinder{}, &stubVolFinder{}, 50, 3, 5)

		helpers, err := ls.FindNearbyHelpers(ctx, 77.59, 12.97, "medical", 0)
		require.NoError(t, err)

		assert.NotNil(t, helpers.Organizations)
		assert.NotNil(t, helpers.Volunteers)
		assert.Empty(t, helpers.Organizations)
		assert.Empty(t, helpers.Volunteers)
		assert.Equal(t, 0, helpers.TotalFound)
	})

	t.Run("finder failure surfaces as discovery unavailable", func(t *testing.T) {
		ls := NewLocationService(
			&stubOrgFinder{err: errors.New("connection reset")},
			&stubVolFinder{},
			50, 3, 5,
		)

		_, err := ls.FindNearbyHelpers(ctx, 77.59, 12.97, "medical", 0)
		require.Error(t, err)
		assert.True(t, utils.IsDiscoveryUnavailable(err))
	})

	t.Run("volunteer finder failure also surfaces", func(t *testing.T) {
		ls := NewLocationService(
			&stubOrgFinder{},
			&stubVolFinder{err: errors.New("timeout")},
			50, 3, 5,
		)

		_, err := ls.FindNearbyHelpers(ctx, 77.59, 12.97, "medical", 0)
		require.Error(t, err)
		assert.True(t, utils.IsDiscoveryUnavailable(err))
	})

	t.Run("explicit radius overrides default", func(t *testing.T) {
		orgs := &stubOrgFinder{}
		ls := NewLocationService(orgs, &stubVolFinder{}, 50, 3, 5)

		_, err := ls.FindNearbyHelpers(ctx, 77.59, 12.97, "medical", 10)
		require.NoError(t, err)
		assert.Equal(t, 10.0, orgs.gotRadius)
	})
}

func TestNearbyOrganizations(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects invalid coordinates", func(t *testing.T) {
		ls := NewLocationService(&stubOrgFinder{}, &stubVolFinder{}, 50, 3, 5)

		_, err := ls.NearbyOrganizations(ctx, 200, 12.97, 0, "")
		require.Error(t, err)

		se, ok := utils.GetServiceError(err)
		require.True(t, ok)
		assert.Equal(t, utils.ErrCodeValidation, se.Code)
	})

	t.Run("annotates distance", func(t *testing.T) {
		orgs := &stubOrgFinder{organizations: []models.Organization{orgAt("a", 77.59, 12.98)}}
		ls := NewLocationService(orgs, &stubVolFinder{}, 50, 3, 5)

		result, err := ls.NearbyOrganizations(ctx, 77.59, 12.97, 0, "shelter")
		require.NoError(t, err)
		require.Len(t, result, 1)
		assert.Greater(t, result[0].DistanceKm, 0.0)
		assert.Equal(t, "shelter", orgs.gotService)
	})
}

func TestNearbyVolunteers(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects invalid coordinates", func(t *testing.T) {
		ls := NewLocationService(&stubOrgFinder{}, &stubVolFinder{}, 50, 3, 5)

		_, err := ls.NearbyVolunteers(ctx, 77.59, -95, 0)
		require.Error(t, err)
	})

	t.Run("uses default radius", func(t *testing.T) {
		vols := &stubVolFinder{}
		ls := NewLocationService(&stubOrgFinder{}, vols, 25, 3, 5)

		_, err := ls.NearbyVolunteers(ctx, 77.59, 12.97, 0)
		require.NoError(t, err)
		assert.Equal(t, 25.0, vols.gotRadius)
	})
}
