package courier_test

import (
	"testing"
	"time"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPoint(t *testing.T, lat, lon float64) kernel.GeoPoint {
	t.Helper()
	point, err := kernel.NewGeoPoint(lat, lon)
	require.NoError(t, err)
	return point
}

func newCourier(t *testing.T) *courier.Courier {
	t.Helper()
	c, err := courier.NewCourier(kernel.NewUUID(), kernel.NewUUID(), "Bekzod")
	require.NoError(t, err)
	return c
}

func TestNewCourier(t *testing.T) {
	t.Run("starts offline, unavailable and without a location", func(t *testing.T) {
		c := newCourier(t)

		assert.False(t, c.IsOnline())
		assert.False(t, c.IsAvailable())
		assert.Nil(t, c.Location())
		assert.Equal(t, 0, c.TotalDeliveries())
		assert.Equal(t, 0, c.Version())
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := courier.NewCourier(kernel.NewUUID(), kernel.NewUUID(), "")
		require.ErrorIs(t, err, courier.ErrNameIsRequired)
	})

	t.Run("rejects invalid ids", func(t *testing.T) {
		_, err := courier.NewCourier(kernel.UUID{}, kernel.NewUUID(), "Bekzod")
		require.Error(t, err)

		_, err = courier.NewCourier(kernel.NewUUID(), kernel.UUID{}, "Bekzod")
		require.Error(t, err)
	})
}

func TestCourier_PresenceFlags(t *testing.T) {
	t.Run("online and available toggle independently", func(t *testing.T) {
		c := newCourier(t)

		c.SetAvailable(true)
		assert.False(t, c.IsOnline())
		assert.True(t, c.IsAvailable())

		c.SetOnline(true)
		assert.True(t, c.IsOnline())
		assert.True(t, c.IsAvailable())
	})

	t.Run("setting the same value again is idempotent", func(t *testing.T) {
		c := newCourier(t)

		c.SetOnline(true)
		c.SetOnline(true)
		assert.True(t, c.IsOnline())

		c.SetOnline(false)
		c.SetOnline(false)
		assert.False(t, c.IsOnline())
	})
}

func TestCourier_IngestLocation(t *testing.T) {
	t.Run("accepts the first report", func(t *testing.T) {
		c := newCourier(t)
		now := time.Now()

		accepted, err := c.IngestLocation(testPoint(t, 41.31, 69.24), now)

		require.NoError(t, err)
		assert.True(t, accepted)
		require.NotNil(t, c.Location())
		assert.Equal(t, now, c.Location().UpdatedAt())
	})

	t.Run("accepts a strictly newer report and replaces wholesale", func(t *testing.T) {
		c := newCourier(t)
		now := time.Now()
		_, err := c.IngestLocation(testPoint(t, 41.31, 69.24), now)
		require.NoError(t, err)

		newer := testPoint(t, 41.32, 69.25)
		accepted, err := c.IngestLocation(newer, now.Add(time.Second))

		require.NoError(t, err)
		assert.True(t, accepted)

		equal, err := c.Location().Point().IsEqual(newer)
		require.NoError(t, err)
		assert.True(t, equal)
	})

	t.Run("rejects an older report without mutation", func(t *testing.T) {
		c := newCourier(t)
		now := time.Now()
		current := testPoint(t, 41.31, 69.24)
		_, err := c.IngestLocation(current, now)
		require.NoError(t, err)

		accepted, err := c.IngestLocation(testPoint(t, 40.0, 70.0), now.Add(-time.Minute))

		require.NoError(t, err)
		assert.False(t, accepted)

		equal, err := c.Location().Point().IsEqual(current)
		require.NoError(t, err)
		assert.True(t, equal)
		assert.Equal(t, now, c.Location().UpdatedAt())
	})

	t.Run("rejects a report with an equal timestamp", func(t *testing.T) {
		c := newCourier(t)
		now := time.Now()
		_, err := c.IngestLocation(testPoint(t, 41.31, 69.24), now)
		require.NoError(t, err)

		accepted, err := c.IngestLocation(testPoint(t, 40.0, 70.0), now)

		require.NoError(t, err)
		assert.False(t, accepted)
	})

	t.Run("rejects an invalid point", func(t *testing.T) {
		c := newCourier(t)

		_, err := c.IngestLocation(kernel.GeoPoint{}, time.Now())
		require.Error(t, err)
	})
}

func TestCourier_IsStale(t *testing.T) {
	t.Run("no location at all is stale", func(t *testing.T) {
		c := newCourier(t)
		assert.True(t, c.IsStale(time.Now()))
	})

	t.Run("fresh report is not stale", func(t *testing.T) {
		c := newCourier(t)
		now := time.Now()
		_, err := c.IngestLocation(testPoint(t, 41.31, 69.24), now)
		require.NoError(t, err)

		assert.False(t, c.IsStale(now.Add(courier.StalenessWindow-time.Millisecond)))
	})

	t.Run("exactly at the window boundary is stale", func(t *testing.T) {
		c := newCourier(t)
		now := time.Now()
		_, err := c.IngestLocation(testPoint(t, 41.31, 69.24), now)
		require.NoError(t, err)

		assert.True(t, c.IsStale(now.Add(courier.StalenessWindow)))
		assert.True(t, c.IsStale(now.Add(courier.StalenessWindow+time.Hour)))
	})
}

func TestCourier_ValidateAssignable(t *testing.T) {
	t.Run("online, available courier of the same branch is assignable", func(t *testing.T) {
		branchID := kernel.NewUUID()
		c, err := courier.NewCourier(kernel.NewUUID(), branchID, "Bekzod")
		require.NoError(t, err)
		c.SetOnline(true)
		c.SetAvailable(true)

		require.NoError(t, c.ValidateAssignable(branchID))
	})

	t.Run("offline courier is rejected", func(t *testing.T) {
		c := newCourier(t)
		c.SetAvailable(true)

		require.ErrorIs(t, c.ValidateAssignable(c.BranchID()), courier.ErrCourierNotAssignable)
	})

	t.Run("unavailable courier is rejected", func(t *testing.T) {
		c := newCourier(t)
		c.SetOnline(true)

		require.ErrorIs(t, c.ValidateAssignable(c.BranchID()), courier.ErrCourierNotAssignable)
	})

	t.Run("courier of a different branch is rejected", func(t *testing.T) {
		c := newCourier(t)
		c.SetOnline(true)
		c.SetAvailable(true)

		require.ErrorIs(t, c.ValidateAssignable(kernel.NewUUID()), courier.ErrCourierNotAssignable)
	})
}

func TestCourier_RecordDelivery(t *testing.T) {
	c := newCourier(t)

	c.RecordDelivery()
	c.RecordDelivery()

	assert.Equal(t, 2, c.TotalDeliveries())
}

func TestRestoreCourier(t *testing.T) {
	t.Run("restores persisted state", func(t *testing.T) {
		id := kernel.NewUUID()
		branchID := kernel.NewUUID()
		loc, err := courier.NewTrackedLocation(testPoint(t, 41.31, 69.24), time.Now().Add(-time.Minute))
		require.NoError(t, err)

		c, err := courier.RestoreCourier(id, branchID, "Bekzod", true, false, &loc, 4.8, 120, 7)

		require.NoError(t, err)
		assert.True(t, c.ID().IsEqual(id))
		assert.True(t, c.IsOnline())
		assert.False(t, c.IsAvailable())
		require.NotNil(t, c.Location())
		assert.Equal(t, loc.UpdatedAt(), c.Location().UpdatedAt())
		assert.InDelta(t, 4.8, c.Rating(), 0.0001)
		assert.Equal(t, 120, c.TotalDeliveries())
		assert.Equal(t, 7, c.Version())
	})

	t.Run("restores without a location", func(t *testing.T) {
		c, err := courier.RestoreCourier(
			kernel.NewUUID(), kernel.NewUUID(), "Bekzod", false, false, nil, 0, 0, 0)

		require.NoError(t, err)
		assert.Nil(t, c.Location())
		assert.True(t, c.IsStale(time.Now()))
	})

	t.Run("rejects an unconstructed location", func(t *testing.T) {
		_, err := courier.RestoreCourier(
			kernel.NewUUID(), kernel.NewUUID(), "Bekzod", false, false, &courier.TrackedLocation{}, 0, 0, 0)
		require.Error(t, err)
	})

	t.Run("rejects negative version", func(t *testing.T) {
		_, err := courier.RestoreCourier(
			kernel.NewUUID(), kernel.NewUUID(), "Bekzod", false, false, nil, 0, 0, -1)
		require.Error(t, err)
	})
}

func TestCourier_ZeroValueIsInvalid(t *testing.T) {
	var c courier.Courier
	require.ErrorIs(t, c.Validate(), courier.ErrCourierIsNotConstructed)
}

func TestTrackedLocation(t *testing.T) {
	t.Run("rejects zero timestamp", func(t *testing.T) {
		_, err := courier.NewTrackedLocation(testPoint(t, 41.31, 69.24), time.Time{})
		require.Error(t, err)
	})

	t.Run("zero value is invalid", func(t *testing.T) {
		var loc courier.TrackedLocation
		require.Error(t, loc.Validate())
	})
}
