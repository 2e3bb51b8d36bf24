package queries

import (
	"context"

	"gorm.io/gorm"
)

// GetBranchSnapshotQueryHandler reads one branch's live state from the
// database with raw SQL, bypassing the aggregates. Terminal orders are
// excluded: the snapshot mirrors what an admin console needs to render.
type GetBranchSnapshotQueryHandler struct {
	db *gorm.DB
}

// NewGetBranchSnapshotQueryHandler creates a handler for branch snapshot queries.
func NewGetBranchSnapshotQueryHandler(db *gorm.DB) GetBranchSnapshotQueryHandler {
	return GetBranchSnapshotQueryHandler{db: db}
}

// Handle executes the snapshot query.
func (h GetBranchSnapshotQueryHandler) Handle(
	ctx context.Context,
	query GetBranchSnapshotQuery,
) (GetBranchSnapshotQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetBranchSnapshotQueryResponse{}, err
	}

	response := GetBranchSnapshotQueryResponse{
		Orders:   make([]OrderSnapshot, 0),
		Couriers: make([]CourierSnapshot, 0),
	}

	if err := h.loadOrders(ctx, query.BranchID().String(), &response); err != nil {
		return GetBranchSnapshotQueryResponse{}, err
	}

	if err := h.loadCouriers(ctx, query.BranchID().String(), &response); err != nil {
		return GetBranchSnapshotQueryResponse{}, err
	}

	return response, nil
}

func (h GetBranchSnapshotQueryHandler) loadOrders(
	ctx context.Context,
	branchID string,
	response *GetBranchSnapshotQueryResponse,
) error {
	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			o.id,
			o.order_type,
			o.status,
			o.courier_id,
			o.customer_name,
			o.customer_phone,
			COALESCE(SUM(i.quantity * i.unit_price), 0) AS total,
			o.created_at
		FROM orders o
		LEFT JOIN order_items i ON i.order_id = o.id
		WHERE o.branch_id = ?
		  AND o.status NOT IN ('delivered', 'picked_up', 'completed', 'cancelled', 'refunded')
		GROUP BY o.id
		ORDER BY o.created_at, o.id
	`, branchID).Rows()
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var snapshot OrderSnapshot
		if err = rows.Scan(
			&snapshot.ID,
			&snapshot.OrderType,
			&snapshot.Status,
			&snapshot.CourierID,
			&snapshot.CustomerName,
			&snapshot.CustomerPhone,
			&snapshot.Total,
			&snapshot.CreatedAt,
		); err != nil {
			return err
		}
		response.Orders = append(response.Orders, snapshot)
	}

	return rows.Err()
}

func (h GetBranchSnapshotQueryHandler) loadCouriers(
	ctx context.Context,
	branchID string,
	response *GetBranchSnapshotQueryResponse,
) error {
	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			name,
			is_online,
			is_available,
			lat,
			lon,
			location_updated_at,
			rating,
			total_deliveries
		FROM couriers
		WHERE branch_id = ?
		ORDER BY name, id
	`, branchID).Rows()
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var snapshot CourierSnapshot
		if err = rows.Scan(
			&snapshot.ID,
			&snapshot.Name,
			&snapshot.IsOnline,
			&snapshot.IsAvailable,
			&snapshot.Lat,
			&snapshot.Lon,
			&snapshot.LocationAt,
			&snapshot.Rating,
			&snapshot.TotalDeliveries,
		); err != nil {
			return err
		}
		response.Couriers = append(response.Couriers, snapshot)
	}

	return rows.Err()
}
