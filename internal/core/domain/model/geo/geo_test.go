package geo_test

import (
	"testing"

	"dispatch/internal/core/domain/model/geo"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func point(t *testing.T, lat, lon float64) kernel.GeoPoint {
	t.Helper()
	p, err := kernel.NewGeoPoint(lat, lon)
	require.NoError(t, err)
	return p
}

func circle(t *testing.T, lat, lon, radius float64) geo.CircleBoundary {
	t.Helper()
	b, err := geo.NewCircleBoundary(point(t, lat, lon), radius)
	require.NoError(t, err)
	return b
}

func TestNewBranch(t *testing.T) {
	t.Run("creates active branch", func(t *testing.T) {
		b, err := geo.NewBranch(kernel.NewUUID(), "Chilanzar", point(t, 41.28, 69.2), true)

		require.NoError(t, err)
		assert.True(t, b.IsActive())
		assert.Equal(t, "Chilanzar", b.Name())
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := geo.NewBranch(kernel.NewUUID(), "", point(t, 41.28, 69.2), true)
		require.Error(t, err)
	})

	t.Run("zero value is invalid", func(t *testing.T) {
		var b geo.Branch
		require.ErrorIs(t, b.Validate(), geo.ErrBranchIsNotConstructed)
	})
}

func TestCircleBoundary(t *testing.T) {
	t.Run("contains points within the radius", func(t *testing.T) {
		b := circle(t, 41.3, 69.2, 2000)

		assert.True(t, b.Contains(point(t, 41.3, 69.2)))
		assert.True(t, b.Contains(point(t, 41.31, 69.2)))  // ~1100m north
		assert.False(t, b.Contains(point(t, 41.33, 69.2))) // ~3300m north
	})

	t.Run("area grows with the radius", func(t *testing.T) {
		small := circle(t, 41.3, 69.2, 1000)
		large := circle(t, 41.3, 69.2, 2000)

		assert.Less(t, small.Area(), large.Area())
	})

	t.Run("rejects non-positive radius", func(t *testing.T) {
		_, err := geo.NewCircleBoundary(point(t, 41.3, 69.2), 0)
		require.Error(t, err)

		_, err = geo.NewCircleBoundary(point(t, 41.3, 69.2), -10)
		require.Error(t, err)
	})
}

func TestPolygonBoundary(t *testing.T) {
	square := func(t *testing.T) geo.PolygonBoundary {
		t.Helper()
		b, err := geo.NewPolygonBoundary([]kernel.GeoPoint{
			point(t, 41.0, 69.0),
			point(t, 41.0, 69.1),
			point(t, 41.1, 69.1),
			point(t, 41.1, 69.0),
		})
		require.NoError(t, err)
		return b
	}

	t.Run("contains interior points, excludes exterior points", func(t *testing.T) {
		b := square(t)

		assert.True(t, b.Contains(point(t, 41.05, 69.05)))
		assert.False(t, b.Contains(point(t, 41.2, 69.05)))
		assert.False(t, b.Contains(point(t, 41.05, 68.9)))
	})

	t.Run("area approximates the projected rectangle", func(t *testing.T) {
		b := square(t)

		// 0.1 deg lat x 0.1 deg lon at ~41 deg latitude: roughly 11.1km x 8.4km.
		area := b.Area()
		assert.Greater(t, area, 9.0e7)
		assert.Less(t, area, 9.7e7)
	})

	t.Run("rejects fewer than three vertices", func(t *testing.T) {
		_, err := geo.NewPolygonBoundary([]kernel.GeoPoint{
			point(t, 41.0, 69.0),
			point(t, 41.1, 69.1),
		})
		require.Error(t, err)
	})
}

func TestNewDeliveryZone(t *testing.T) {
	t.Run("creates zone delegating to its boundary", func(t *testing.T) {
		z, err := geo.NewDeliveryZone(kernel.NewUUID(), kernel.NewUUID(), circle(t, 41.3, 69.2, 2000), 1, true)

		require.NoError(t, err)
		assert.True(t, z.Contains(point(t, 41.3, 69.2)))
		assert.Equal(t, 1, z.Priority())
		assert.InDelta(t, circle(t, 41.3, 69.2, 2000).Area(), z.Area(), 0.0001)
	})

	t.Run("rejects nil boundary", func(t *testing.T) {
		_, err := geo.NewDeliveryZone(kernel.NewUUID(), kernel.NewUUID(), nil, 1, true)
		require.Error(t, err)
	})

	t.Run("rejects negative priority", func(t *testing.T) {
		_, err := geo.NewDeliveryZone(kernel.NewUUID(), kernel.NewUUID(), circle(t, 41.3, 69.2, 2000), -1, true)
		require.Error(t, err)
	})

	t.Run("zero value is invalid", func(t *testing.T) {
		var z geo.DeliveryZone
		require.ErrorIs(t, z.Validate(), geo.ErrZoneIsNotConstructed)
	})
}
