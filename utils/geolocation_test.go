package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceKm(t *testing.T) {
	t.Run("zero distance for identical points", func(t *testing.T) {
		assert.Equal(t, 0.0, DistanceKm(12.9716, 77.5946, 12.9716, 77.5946))
	})

	t.Run("one degree of latitude is about 111km", func(t *testing.T) {
		d := DistanceKm(0, 0, 1, 0)
		assert.InDelta(t, 111.19, d, 0.1)
	})

	t.Run("known city pair", func(t *testing.T) {
		// Bangalore to Chennai, roughly 290km great-circle.
		d := DistanceKm(12.9716, 77.5946, 13.0827, 80.2707)
		assert.InDelta(t, 290, d, 5)
	})

	t.Run("symmetric", func(t *testing.T) {
		a := DistanceKm(12.97, 77.59, 13.08, 80.27)
		b := DistanceKm(13.08, 80.27, 12.97, 77.59)
		assert.InDelta(t, a, b, 1e-9)
	})
}

func TestRoundKm(t *testing.T) {
	assert.Equal(t, 1.23, RoundKm(1.2349))
	assert.Equal(t, 1.24, RoundKm(1.235))
	assert.Equal(t, 0.0, RoundKm(0))
}

func TestIsValidCoordinate(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon float64
		want     bool
	}{
		{"valid", 12.97, 77.59, true},
		{"lat upper bound", 90, 0, true},
		{"lat out of range", 90.1, 0, false},
		{"lon lower bound", 0, -180, true},
		{"lon out of range", 0, 180.5, false},
		{"both out of range", -91, 181, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidCoordinate(tt.lat, tt.lon))
		})
	}
}

func TestMapsLink(t *testing.T) {
	link := MapsLink(12.9716, 77.5946)
	assert.Contains(t, link, "https://www.google.com/maps?q=")
	assert.Contains(t, link, "12.97")
	assert.Contains(t, link, "77.59")
}
