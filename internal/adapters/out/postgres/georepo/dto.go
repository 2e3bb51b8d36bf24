// Package georepo provides read-only access to the geographic reference data:
// branches and delivery zones. The dispatch core never writes these tables;
// they are administered by the surrounding CRUD layer.
package georepo

import (
	"encoding/json"

	"dispatch/internal/core/domain/model/geo"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// BranchDTO is one branch row.
type BranchDTO struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name     string    `gorm:"type:varchar(255)"`
	Lat      float64
	Lon      float64
	IsActive bool `gorm:"index"`
}

// TableName overrides GORM's default naming to use "branches".
func (BranchDTO) TableName() string {
	return "branches"
}

// ZoneDTO is one delivery zone row. Circle zones fill the center/radius
// columns; polygon zones store their vertices as a JSON array of [lat, lon]
// pairs.
type ZoneDTO struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	BranchID  uuid.UUID `gorm:"type:uuid;index"`
	Kind      string    `gorm:"type:varchar(16)"`
	CenterLat *float64
	CenterLon *float64
	RadiusM   *float64
	Vertices  []byte `gorm:"type:jsonb"`
	Priority  int
	IsActive  bool `gorm:"index"`
}

// TableName overrides GORM's default naming to use "delivery_zones".
func (ZoneDTO) TableName() string {
	return "delivery_zones"
}

const (
	zoneKindCircle  = "circle"
	zoneKindPolygon = "polygon"
)

func branchToDomain(dto BranchDTO) (*geo.Branch, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	coordinates, err := kernel.NewGeoPoint(dto.Lat, dto.Lon)
	if err != nil {
		return nil, err
	}

	return geo.NewBranch(id, dto.Name, coordinates, dto.IsActive)
}

func zoneToDomain(dto ZoneDTO) (*geo.DeliveryZone, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	branchID, err := kernel.UUIDFromBytes(dto.BranchID[:])
	if err != nil {
		return nil, err
	}

	boundary, err := boundaryFromDTO(dto)
	if err != nil {
		return nil, err
	}

	return geo.NewDeliveryZone(id, branchID, boundary, dto.Priority, dto.IsActive)
}

func boundaryFromDTO(dto ZoneDTO) (geo.Boundary, error) {
	switch dto.Kind {
	case zoneKindCircle:
		// The zone tables are written by the external CRUD layer; a circle
		// row with NULL geometry must surface as an error, not a panic.
		if dto.CenterLat == nil || dto.CenterLon == nil || dto.RadiusM == nil {
			return nil, errMalformedCircleZone(dto.ID)
		}

		center, err := kernel.NewGeoPoint(*dto.CenterLat, *dto.CenterLon)
		if err != nil {
			return nil, err
		}
		return geo.NewCircleBoundary(center, *dto.RadiusM)

	case zoneKindPolygon:
		var pairs [][2]float64
		if err := json.Unmarshal(dto.Vertices, &pairs); err != nil {
			return nil, err
		}

		vertices := make([]kernel.GeoPoint, 0, len(pairs))
		for _, pair := range pairs {
			point, err := kernel.NewGeoPoint(pair[0], pair[1])
			if err != nil {
				return nil, err
			}
			vertices = append(vertices, point)
		}
		return geo.NewPolygonBoundary(vertices)

	default:
		return nil, errUnknownZoneKind(dto.Kind)
	}
}
