package commands_test

import (
	"context"
	"testing"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/events"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/geo"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetActiveByBranch(ctx context.Context, branchID kernel.UUID) ([]*order.Order, error) {
	args := m.Called(ctx, branchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

type MockCourierRepository struct{ mock.Mock }

func (m *MockCourierRepository) Add(ctx context.Context, c *courier.Courier) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCourierRepository) Update(ctx context.Context, c *courier.Courier) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCourierRepository) Get(ctx context.Context, id kernel.UUID) (*courier.Courier, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*courier.Courier), args.Error(1)
}

func (m *MockCourierRepository) GetByBranch(ctx context.Context, branchID kernel.UUID) ([]*courier.Courier, error) {
	args := m.Called(ctx, branchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*courier.Courier), args.Error(1)
}

type MockGeoRepository struct{ mock.Mock }

func (m *MockGeoRepository) GetBranch(ctx context.Context, id kernel.UUID) (*geo.Branch, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*geo.Branch), args.Error(1)
}

func (m *MockGeoRepository) GetActiveBranches(ctx context.Context) ([]*geo.Branch, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*geo.Branch), args.Error(1)
}

func (m *MockGeoRepository) GetActiveZones(ctx context.Context) ([]*geo.DeliveryZone, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*geo.DeliveryZone), args.Error(1)
}

// MockUoW wires transaction calls through testify while handing out the
// repository mocks directly.
type MockUoW struct {
	mock.Mock
	orders   *MockOrderRepository
	couriers *MockCourierRepository
}

func NewMockUoW() *MockUoW {
	return &MockUoW{
		orders:   &MockOrderRepository{},
		couriers: &MockCourierRepository{},
	}
}

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) OrderRepository() ports.OrderRepository     { return m.orders }
func (m *MockUoW) CourierRepository() ports.CourierRepository { return m.couriers }

type mockUoWFactory struct{ uow *MockUoW }

func (f mockUoWFactory) Create() commands.UoW { return f.uow }

type mockOrderUoWFactory struct{ uow *MockUoW }

func (f mockOrderUoWFactory) Create() commands.OrderUoW { return f.uow }

type mockCourierUoWFactory struct{ uow *MockUoW }

func (f mockCourierUoWFactory) Create() commands.CourierUoW { return f.uow }

// fakePublisher records published events in order.
type fakePublisher struct {
	published []events.Event
}

func (p *fakePublisher) Publish(_ context.Context, event events.Event) {
	p.published = append(p.published, event)
}

func (p *fakePublisher) ofType(t events.Type) []events.Event {
	var out []events.Event
	for _, e := range p.published {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func expectTx(uow *MockUoW) {
	uow.On("Begin", mock.Anything).Return(nil)
	uow.On("Commit", mock.Anything).Return(nil)
	uow.On("Rollback", mock.Anything).Return(nil)
}

func deliveryItems(t *testing.T) []order.Item {
	t.Helper()
	item, err := order.NewItem(kernel.NewUUID(), "Lagman", 1, 7.0)
	require.NoError(t, err)
	return []order.Item{item}
}

func geoPoint(t *testing.T, lat, lon float64) kernel.GeoPoint {
	t.Helper()
	p, err := kernel.NewGeoPoint(lat, lon)
	require.NoError(t, err)
	return p
}

func deliveryOrderAt(t *testing.T, branchID kernel.UUID, status order.Status) *order.Order {
	t.Helper()
	point := geoPoint(t, 41.3, 69.2)
	o, err := order.NewOrder(
		kernel.NewUUID(), branchID, order.TypeDelivery,
		deliveryItems(t), "Alice", "+998901234567", &point,
		"customer", time.Now(),
	)
	require.NoError(t, err)

	path := map[order.Status][]order.Status{
		order.Pending:   nil,
		order.Confirmed: {order.Confirmed},
		order.Preparing: {order.Confirmed, order.Preparing},
		order.Ready:     {order.Confirmed, order.Preparing, order.Ready},
	}
	for _, s := range path[status] {
		require.NoError(t, o.TransitionTo(s, "admin", "", time.Now()))
	}
	return o
}

func activeCourier(t *testing.T, branchID kernel.UUID) *courier.Courier {
	t.Helper()
	c, err := courier.NewCourier(kernel.NewUUID(), branchID, "Bekzod")
	require.NoError(t, err)
	c.SetOnline(true)
	c.SetAvailable(true)
	return c
}
