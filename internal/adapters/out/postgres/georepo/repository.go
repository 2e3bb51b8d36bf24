package georepo

import (
	"context"
	"errors"
	"fmt"

	"dispatch/internal/core/domain/model/geo"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func errUnknownZoneKind(kind string) error {
	return fmt.Errorf("unknown delivery zone kind %q", kind)
}

func errMalformedCircleZone(id uuid.UUID) error {
	return fmt.Errorf("circle zone %s is missing center or radius columns", id)
}

// GormGeoRepository implements ports.GeoRepository using GORM.
type GormGeoRepository struct {
	db *gorm.DB
}

// NewGormGeoRepository creates a new GORM geo repository.
func NewGormGeoRepository(db *gorm.DB) *GormGeoRepository {
	return &GormGeoRepository{db: db}
}

// GetBranch retrieves a single branch by ID.
func (r *GormGeoRepository) GetBranch(ctx context.Context, id kernel.UUID) (*geo.Branch, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto BranchDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("branch", id.String())
		}
		return nil, err
	}

	return branchToDomain(dto)
}

// GetActiveBranches retrieves all branches currently serving orders.
func (r *GormGeoRepository) GetActiveBranches(ctx context.Context) ([]*geo.Branch, error) {
	var dtos []BranchDTO
	if err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("id").Find(&dtos).Error; err != nil {
		return nil, err
	}

	branches := make([]*geo.Branch, 0, len(dtos))
	for _, dto := range dtos {
		branch, err := branchToDomain(dto)
		if err != nil {
			return nil, err
		}
		branches = append(branches, branch)
	}

	return branches, nil
}

// GetActiveZones retrieves all delivery zones participating in resolution.
func (r *GormGeoRepository) GetActiveZones(ctx context.Context) ([]*geo.DeliveryZone, error) {
	var dtos []ZoneDTO
	if err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("priority, id").Find(&dtos).Error; err != nil {
		return nil, err
	}

	zones := make([]*geo.DeliveryZone, 0, len(dtos))
	for _, dto := range dtos {
		zone, err := zoneToDomain(dto)
		if err != nil {
			return nil, err
		}
		zones = append(zones, zone)
	}

	return zones, nil
}
