// Package courierrepo provides data transfer objects and mapping functions for
// courier persistence.
package courierrepo

import (
	"time"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// CourierDTO represents the database structure for persisting courier
// aggregates. The last location is embedded as nullable columns: a courier
// that never reported has NULLs, and the whole triple is replaced together on
// each accepted report.
type CourierDTO struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	BranchID          uuid.UUID `gorm:"type:uuid;index"`
	Name              string    `gorm:"type:varchar(255)"`
	IsOnline          bool
	IsAvailable       bool
	Lat               *float64
	Lon               *float64
	LocationUpdatedAt *time.Time
	Rating            float64
	TotalDeliveries   int
	Version           int
}

// TableName overrides GORM's default naming to use "couriers".
func (CourierDTO) TableName() string {
	return "couriers"
}

// fromDomain converts a courier aggregate to its database representation.
func fromDomain(aggregate *courier.Courier) CourierDTO {
	dto := CourierDTO{
		ID:              aggregate.ID().Bytes(),
		BranchID:        aggregate.BranchID().Bytes(),
		Name:            aggregate.Name(),
		IsOnline:        aggregate.IsOnline(),
		IsAvailable:     aggregate.IsAvailable(),
		Rating:          aggregate.Rating(),
		TotalDeliveries: aggregate.TotalDeliveries(),
		Version:         aggregate.Version(),
	}

	if loc := aggregate.Location(); loc != nil {
		lat, lon := loc.Point().Lat(), loc.Point().Lon()
		at := loc.UpdatedAt()
		dto.Lat, dto.Lon, dto.LocationUpdatedAt = &lat, &lon, &at
	}

	return dto
}

// toDomain converts a database row back to a courier aggregate via RestoreCourier.
func toDomain(dto CourierDTO) (*courier.Courier, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	branchID, err := kernel.UUIDFromBytes(dto.BranchID[:])
	if err != nil {
		return nil, err
	}

	var location *courier.TrackedLocation
	if dto.Lat != nil && dto.Lon != nil && dto.LocationUpdatedAt != nil {
		point, locErr := kernel.NewGeoPoint(*dto.Lat, *dto.Lon)
		if locErr != nil {
			return nil, locErr
		}

		loc, locErr := courier.NewTrackedLocation(point, *dto.LocationUpdatedAt)
		if locErr != nil {
			return nil, locErr
		}
		location = &loc
	}

	return courier.RestoreCourier(
		id, branchID, dto.Name,
		dto.IsOnline, dto.IsAvailable, location,
		dto.Rating, dto.TotalDeliveries, dto.Version,
	)
}
