package georepo

import (
	"testing"

	"dispatch/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func circleZoneDTO() ZoneDTO {
	lat, lon, radius := 55.75, 37.61, 3000.0
	return ZoneDTO{
		ID:        uuid.New(),
		BranchID:  uuid.New(),
		Kind:      zoneKindCircle,
		CenterLat: &lat,
		CenterLon: &lon,
		RadiusM:   &radius,
		Priority:  1,
		IsActive:  true,
	}
}

func TestZoneToDomain(t *testing.T) {
	t.Run("maps a circle zone", func(t *testing.T) {
		dto := circleZoneDTO()

		zone, err := zoneToDomain(dto)

		require.NoError(t, err)
		point, err := kernel.NewGeoPoint(*dto.CenterLat, *dto.CenterLon)
		require.NoError(t, err)
		assert.True(t, zone.Contains(point))
	})

	t.Run("maps a polygon zone", func(t *testing.T) {
		dto := ZoneDTO{
			ID:       uuid.New(),
			BranchID: uuid.New(),
			Kind:     zoneKindPolygon,
			Vertices: []byte(`[[0,0],[0,10],[10,10],[10,0]]`),
			Priority: 2,
			IsActive: true,
		}

		zone, err := zoneToDomain(dto)

		require.NoError(t, err)
		inside, err := kernel.NewGeoPoint(5, 5)
		require.NoError(t, err)
		assert.True(t, zone.Contains(inside))
	})

	t.Run("circle zone with missing geometry columns is an error", func(t *testing.T) {
		cases := map[string]func(*ZoneDTO){
			"nil center lat": func(dto *ZoneDTO) { dto.CenterLat = nil },
			"nil center lon": func(dto *ZoneDTO) { dto.CenterLon = nil },
			"nil radius":     func(dto *ZoneDTO) { dto.RadiusM = nil },
		}

		for name, corrupt := range cases {
			t.Run(name, func(t *testing.T) {
				dto := circleZoneDTO()
				corrupt(&dto)

				_, err := zoneToDomain(dto)

				require.Error(t, err)
				assert.ErrorContains(t, err, "missing center or radius")
			})
		}
	})

	t.Run("unknown zone kind is an error", func(t *testing.T) {
		dto := circleZoneDTO()
		dto.Kind = "hexagon"

		_, err := zoneToDomain(dto)

		require.Error(t, err)
		assert.ErrorContains(t, err, "unknown delivery zone kind")
	})
}
