package commands_test

import (
	"context"
	"testing"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/events"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCancelOrderCommandHandler(t *testing.T) {
	t.Run("cancels and records the reason", func(t *testing.T) {
		aggregate := deliveryOrderAt(t, kernel.NewUUID(), order.Pending)

		uow := NewMockUoW()
		expectTx(uow)
		uow.orders.On("Get", mock.Anything, aggregate.ID()).Return(aggregate, nil)
		uow.orders.On("Update", mock.Anything, aggregate).Return(nil)

		publisher := &fakePublisher{}
		handler := commands.NewCancelOrderCommandHandler(mockUoWFactory{uow}, publisher)

		cmd, err := commands.NewCancelOrderCommand(aggregate.ID(), "out of stock", "admin")
		require.NoError(t, err)

		updated, err := handler.Handle(context.Background(), cmd)

		require.NoError(t, err)
		assert.Equal(t, order.Cancelled, updated.Status())

		published := publisher.ofType(events.OrderStatusChanged)
		require.Len(t, published, 1)
		assert.Equal(t, "out of stock", published[0].Payload.(events.OrderPayload).Note)
	})

	t.Run("releases the assigned courier in the same operation", func(t *testing.T) {
		branchID := kernel.NewUUID()
		aggregate := deliveryOrderAt(t, branchID, order.Ready)
		assigned := activeCourier(t, branchID)
		require.NoError(t, aggregate.AssignCourier(assigned.ID(), "admin", time.Now()))
		assigned.SetAvailable(false)

		uow := NewMockUoW()
		expectTx(uow)
		uow.orders.On("Get", mock.Anything, aggregate.ID()).Return(aggregate, nil)
		uow.orders.On("Update", mock.Anything, aggregate).Return(nil)
		uow.couriers.On("Get", mock.Anything, assigned.ID()).Return(assigned, nil)
		uow.couriers.On("Update", mock.Anything, assigned).Return(nil)

		publisher := &fakePublisher{}
		handler := commands.NewCancelOrderCommandHandler(mockUoWFactory{uow}, publisher)

		cmd, err := commands.NewCancelOrderCommand(aggregate.ID(), "customer no-show", "admin")
		require.NoError(t, err)

		_, err = handler.Handle(context.Background(), cmd)

		require.NoError(t, err)
		assert.True(t, assigned.IsAvailable())
		assert.Len(t, publisher.ofType(events.CourierPresenceChanged), 1)
	})

	t.Run("terminal order cannot be cancelled again", func(t *testing.T) {
		aggregate := deliveryOrderAt(t, kernel.NewUUID(), order.Pending)
		require.NoError(t, aggregate.Cancel("first", "admin", time.Now()))

		uow := NewMockUoW()
		expectTx(uow)
		uow.orders.On("Get", mock.Anything, aggregate.ID()).Return(aggregate, nil)

		handler := commands.NewCancelOrderCommandHandler(mockUoWFactory{uow}, &fakePublisher{})

		cmd, err := commands.NewCancelOrderCommand(aggregate.ID(), "second", "admin")
		require.NoError(t, err)

		_, err = handler.Handle(context.Background(), cmd)

		require.ErrorIs(t, err, order.ErrInvalidTransition)
		uow.AssertNotCalled(t, "Commit", mock.Anything)
	})
}
