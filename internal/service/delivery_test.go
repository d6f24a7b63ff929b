package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodMarketplace/internal/apperr"
	"foodMarketplace/internal/auth"
	"foodMarketplace/internal/testutil"
	"foodMarketplace/models"
	"foodMarketplace/repository"
)

// confirmedOrder places an order and lets the owner accept it, the
// precondition for dispatching a driver.
func confirmedOrder(t *testing.T, f *orderFixture) *models.Order {
	t.Helper()
	order := f.placeOrder(t)
	confirmed, err := f.orders.AcceptOrder(context.Background(), f.asOwner(), order.ID)
	require.NoError(t, err)
	return confirmed
}

func TestAssignDriver(t *testing.T) {
	f := newOrderFixture(t, "delivery_svc_assign", 0)
	ctx := context.Background()
	order := confirmedOrder(t, f)

	delivery, err := f.deliveries.AssignDriver(ctx, f.asOwner(), order.ID, f.driver.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DeliveryStatusAssigned, delivery.Status)
	assert.Equal(t, f.driver.ID, delivery.DriverID)
	// the driver's cut is the order's delivery fee
	assert.Equal(t, 3.99, delivery.DriverFee)

	got, err := f.orderRepo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, got.DriverID)
	assert.Equal(t, f.driver.ID, *got.DriverID)
}

func TestAssignDriverRules(t *testing.T) {
	f := newOrderFixture(t, "delivery_svc_assign_rules", 0)
	ctx := context.Background()

	t.Run("pending order cannot be dispatched", func(t *testing.T) {
		order := f.placeOrder(t)
		_, err := f.deliveries.AssignDriver(ctx, f.asOwner(), order.ID, f.driver.ID)
		assert.True(t, apperr.IsCode(err, apperr.CodeInvalidTransition))
	})

	t.Run("assignee must hold the driver role", func(t *testing.T) {
		order := confirmedOrder(t, f)
		_, err := f.deliveries.AssignDriver(ctx, f.asOwner(), order.ID, f.customer.ID)
		assert.True(t, apperr.IsCode(err, apperr.CodeValidation))
	})

	t.Run("one delivery per order", func(t *testing.T) {
		order := confirmedOrder(t, f)
		_, err := f.deliveries.AssignDriver(ctx, f.asOwner(), order.ID, f.driver.ID)
		require.NoError(t, err)
		_, err = f.deliveries.AssignDriver(ctx, f.asOwner(), order.ID, f.driver.ID)
		assert.True(t, apperr.IsCode(err, apperr.CodeConflict))
	})

	t.Run("customers cannot dispatch", func(t *testing.T) {
		order := confirmedOrder(t, f)
		_, err := f.deliveries.AssignDriver(ctx, f.asCustomer(), order.ID, f.driver.ID)
		assert.True(t, apperr.IsCode(err, apperr.CodeForbidden))
	})

	t.Run("unknown driver", func(t *testing.T) {
		order := confirmedOrder(t, f)
		_, err := f.deliveries.AssignDriver(ctx, f.asOwner(), order.ID, 9999)
		assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))
	})
}

func TestDriverDeliveryFlow(t *testing.T) {
	f := newOrderFixture(t, "delivery_svc_flow", 0)
	ctx := context.Background()
	users := repository.NewUserRepository(f.db)

	order := confirmedOrder(t, f)
	delivery, err := f.deliveries.AssignDriver(ctx, f.asOwner(), order.ID, f.driver.ID)
	require.NoError(t, err)

	// accept: assigned -> picked_up, driver goes busy
	accepted, err := f.deliveries.AcceptDelivery(ctx, f.asDriver(), delivery.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DeliveryStatusPickedUp, accepted.Status)
	require.NotNil(t, accepted.PickupTime)
	assert.Equal(t, "2025-06-15 12:00:00", *accepted.PickupTime)

	driver, err := users.GetByID(ctx, f.driver.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AvailabilityBusy, driver.Availability)

	// picked_up -> in_transit
	inTransit, err := f.deliveries.UpdateDeliveryStatus(ctx, f.asDriver(), delivery.ID, models.DeliveryStatusInTransit)
	require.NoError(t, err)
	assert.Equal(t, models.DeliveryStatusInTransit, inTransit.Status)

	// in_transit -> delivered: time stamped, counters credited, online
	done, err := f.deliveries.UpdateDeliveryStatus(ctx, f.asDriver(), delivery.ID, models.DeliveryStatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, models.DeliveryStatusDelivered, done.Status)
	require.NotNil(t, done.DeliveryTime)
	assert.Equal(t, "2025-06-15 12:00:00", *done.DeliveryTime)

	driver, err = users.GetByID(ctx, f.driver.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), driver.TotalDeliveries)
	assert.Equal(t, 3.99, driver.TotalEarnings)
	assert.Equal(t, models.AvailabilityOnline, driver.Availability)

	// a delivered delivery is terminal
	_, err = f.deliveries.UpdateDeliveryStatus(ctx, f.asDriver(), delivery.ID, models.DeliveryStatusInTransit)
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidTransition))
}

func TestDeliveryAccessRules(t *testing.T) {
	f := newOrderFixture(t, "delivery_svc_access", 0)
	ctx := context.Background()

	order := confirmedOrder(t, f)
	delivery, err := f.deliveries.AssignDriver(ctx, f.asOwner(), order.ID, f.driver.ID)
	require.NoError(t, err)

	t.Run("only the assigned driver may accept", func(t *testing.T) {
		other := testutil.SeedUser(t, f.db, "eve", models.RoleDriver)
		_, err := f.deliveries.AcceptDelivery(ctx, &auth.Actor{ID: other.ID, Role: models.RoleDriver}, delivery.ID)
		assert.True(t, apperr.IsCode(err, apperr.CodeForbidden))
	})

	t.Run("non-drivers are rejected by role", func(t *testing.T) {
		_, err := f.deliveries.AcceptDelivery(ctx, f.asOwner(), delivery.ID)
		assert.True(t, apperr.IsCode(err, apperr.CodeForbidden))
		_, err = f.deliveries.UpdateDeliveryStatus(ctx, f.asCustomer(), delivery.ID, models.DeliveryStatusInTransit)
		assert.True(t, apperr.IsCode(err, apperr.CodeForbidden))
	})

	t.Run("missing delivery", func(t *testing.T) {
		_, err := f.deliveries.AcceptDelivery(ctx, f.asDriver(), 9999)
		assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))
	})

	t.Run("skipping a step", func(t *testing.T) {
		_, err := f.deliveries.UpdateDeliveryStatus(ctx, f.asDriver(), delivery.ID, models.DeliveryStatusDelivered)
		assert.True(t, apperr.IsCode(err, apperr.CodeInvalidTransition))
	})
}

func TestListMyDeliveries(t *testing.T) {
	f := newOrderFixture(t, "delivery_svc_list", 0)
	ctx := context.Background()

	order := confirmedOrder(t, f)
	delivery, err := f.deliveries.AssignDriver(ctx, f.asOwner(), order.ID, f.driver.ID)
	require.NoError(t, err)

	list, err := f.deliveries.ListMyDeliveries(ctx, f.asDriver())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, delivery.ID, list[0].ID)

	_, err = f.deliveries.ListMyDeliveries(ctx, f.asCustomer())
	assert.True(t, apperr.IsCode(err, apperr.CodeForbidden))

	other := testutil.SeedUser(t, f.db, "eve", models.RoleDriver)
	empty, err := f.deliveries.ListMyDeliveries(ctx, &auth.Actor{ID: other.ID, Role: models.RoleDriver})
	require.NoError(t, err)
	assert.Empty(t, empty)
}
