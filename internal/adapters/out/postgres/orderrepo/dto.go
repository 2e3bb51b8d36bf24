// Package orderrepo provides data transfer objects and mapping functions for
// order persistence. It implements the repository pattern for the order
// aggregate, converting between domain entities and database rows.
package orderrepo

import (
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO represents the database structure for persisting order aggregates.
// The version column backs optimistic concurrency: every successful update
// increments it, and a stale writer's WHERE clause then matches zero rows.
type OrderDTO struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	BranchID      uuid.UUID  `gorm:"type:uuid;index"`
	OrderType     string     `gorm:"type:varchar(16)"`
	CustomerName  string     `gorm:"type:varchar(255)"`
	CustomerPhone string     `gorm:"type:varchar(32)"`
	Status        string     `gorm:"type:varchar(16);index"`
	CourierID     *uuid.UUID `gorm:"type:uuid;index"`
	DeliveryLat   *float64
	DeliveryLon   *float64
	CreatedAt     time.Time
	Version       int

	Items   []ItemDTO    `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	History []HistoryDTO `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName overrides GORM's default naming to use "orders".
func (OrderDTO) TableName() string {
	return "orders"
}

// ItemDTO is one order line row.
type ItemDTO struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	OrderID   uuid.UUID `gorm:"type:uuid;index"`
	ProductID uuid.UUID `gorm:"type:uuid"`
	Name      string    `gorm:"type:varchar(255)"`
	Quantity  int
	UnitPrice float64
}

// TableName overrides GORM's default naming to use "order_items".
func (ItemDTO) TableName() string {
	return "order_items"
}

// HistoryDTO is one row of the append-only status history. The autoincrement
// primary key preserves append order across reads.
type HistoryDTO struct {
	ID      uint      `gorm:"primaryKey;autoIncrement"`
	OrderID uuid.UUID `gorm:"type:uuid;index"`
	Status  string    `gorm:"type:varchar(16)"`
	Actor   string    `gorm:"type:varchar(64)"`
	Note    string    `gorm:"type:text"`
	At      time.Time
}

// TableName overrides GORM's default naming to use "order_history".
func (HistoryDTO) TableName() string {
	return "order_history"
}

// fromDomain converts an order aggregate to its database representation.
func fromDomain(aggregate *order.Order) OrderDTO {
	var courierID *uuid.UUID
	if id := aggregate.Courier(); id != nil {
		raw := id.Bytes()
		courierID = &raw
	}

	var deliveryLat, deliveryLon *float64
	if loc := aggregate.DeliveryLocation(); loc != nil {
		lat, lon := loc.Lat(), loc.Lon()
		deliveryLat, deliveryLon = &lat, &lon
	}

	items := make([]ItemDTO, 0, len(aggregate.Items()))
	for _, item := range aggregate.Items() {
		items = append(items, ItemDTO{
			OrderID:   aggregate.ID().Bytes(),
			ProductID: item.ProductID().Bytes(),
			Name:      item.Name(),
			Quantity:  item.Quantity(),
			UnitPrice: item.UnitPrice(),
		})
	}

	history := make([]HistoryDTO, 0, len(aggregate.History()))
	for _, entry := range aggregate.History() {
		history = append(history, HistoryDTO{
			OrderID: aggregate.ID().Bytes(),
			Status:  entry.Status.String(),
			Actor:   entry.Actor,
			Note:    entry.Note,
			At:      entry.At,
		})
	}

	return OrderDTO{
		ID:            aggregate.ID().Bytes(),
		BranchID:      aggregate.BranchID().Bytes(),
		OrderType:     aggregate.OrderType().String(),
		CustomerName:  aggregate.CustomerName(),
		CustomerPhone: aggregate.CustomerPhone(),
		Status:        aggregate.Status().String(),
		CourierID:     courierID,
		DeliveryLat:   deliveryLat,
		DeliveryLon:   deliveryLon,
		CreatedAt:     aggregate.CreatedAt(),
		Version:       aggregate.Version(),
		Items:         items,
		History:       history,
	}
}

// toDomain converts database rows back to an order aggregate via RestoreOrder.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	branchID, err := kernel.UUIDFromBytes(dto.BranchID[:])
	if err != nil {
		return nil, err
	}

	orderType, err := order.TypeFromString(dto.OrderType)
	if err != nil {
		return nil, err
	}

	status, err := order.StatusFromString(dto.Status)
	if err != nil {
		return nil, err
	}

	var courierID *kernel.UUID
	if dto.CourierID != nil {
		cID, courierErr := kernel.UUIDFromBytes((*dto.CourierID)[:])
		if courierErr != nil {
			return nil, courierErr
		}
		courierID = &cID
	}

	var deliveryLocation *kernel.GeoPoint
	if dto.DeliveryLat != nil && dto.DeliveryLon != nil {
		point, locErr := kernel.NewGeoPoint(*dto.DeliveryLat, *dto.DeliveryLon)
		if locErr != nil {
			return nil, locErr
		}
		deliveryLocation = &point
	}

	items := make([]order.Item, 0, len(dto.Items))
	for _, row := range dto.Items {
		productID, itemErr := kernel.UUIDFromBytes(row.ProductID[:])
		if itemErr != nil {
			return nil, itemErr
		}

		item, itemErr := order.NewItem(productID, row.Name, row.Quantity, row.UnitPrice)
		if itemErr != nil {
			return nil, itemErr
		}
		items = append(items, item)
	}

	history := make([]order.HistoryEntry, 0, len(dto.History))
	for _, row := range dto.History {
		entryStatus, histErr := order.StatusFromString(row.Status)
		if histErr != nil {
			return nil, histErr
		}
		history = append(history, order.HistoryEntry{
			Status: entryStatus,
			Actor:  row.Actor,
			Note:   row.Note,
			At:     row.At,
		})
	}

	return order.RestoreOrder(
		id, branchID, orderType, items,
		dto.CustomerName, dto.CustomerPhone, deliveryLocation,
		status, courierID, history, dto.CreatedAt, dto.Version,
	)
}
