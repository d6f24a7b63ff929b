package repository_test

import (
	"context"
	"testing"

	"foodMarketplace/internal/testutil"
	"foodMarketplace/models"
)

func TestDeliveryAcceptMarksDriverBusy(t *testing.T) {
	f := newDeliveryFixture(t, "delivery_repo_accept")
	delivery := seedDelivery(t, f)
	ctx := context.Background()

	ok, err := f.deliveries.Accept(ctx, delivery.ID, f.driver.ID, "2025-06-15 12:00:00")
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if !ok {
		t.Fatal("accept should apply on an assigned delivery")
	}

	got, _ := f.deliveries.GetByID(ctx, delivery.ID)
	if got.Status != models.DeliveryStatusPickedUp {
		t.Errorf("status = %s, want picked_up", got.Status)
	}
	if got.PickupTime == nil || *got.PickupTime != "2025-06-15 12:00:00" {
		t.Errorf("pickup_time = %v", got.PickupTime)
	}

	driver, _ := f.users.GetByID(ctx, f.driver.ID)
	if driver.Availability != models.AvailabilityBusy {
		t.Errorf("availability = %s, want busy", driver.Availability)
	}

	// a second accept finds no assigned row
	ok, err = f.deliveries.Accept(ctx, delivery.ID, f.driver.ID, "2025-06-15 12:01:00")
	if err != nil {
		t.Fatalf("second accept: %v", err)
	}
	if ok {
		t.Fatal("accept applied twice")
	}
}

func TestDeliveryCompleteCreditsDriver(t *testing.T) {
	f := newDeliveryFixture(t, "delivery_repo_complete")
	delivery := seedDelivery(t, f)
	ctx := context.Background()
	testutil.ForceDeliveryStatus(t, f.db, delivery.ID, models.DeliveryStatusInTransit)

	ok, err := f.deliveries.Complete(ctx, delivery.ID, f.driver.ID, "2025-06-15 12:45:00", 3.99)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !ok {
		t.Fatal("complete should apply on an in_transit delivery")
	}

	got, _ := f.deliveries.GetByID(ctx, delivery.ID)
	if got.Status != models.DeliveryStatusDelivered {
		t.Errorf("status = %s, want delivered", got.Status)
	}
	if got.DeliveryTime == nil || *got.DeliveryTime != "2025-06-15 12:45:00" {
		t.Errorf("delivery_time = %v", got.DeliveryTime)
	}

	driver, _ := f.users.GetByID(ctx, f.driver.ID)
	if driver.TotalDeliveries != 1 {
		t.Errorf("total_deliveries = %d, want 1", driver.TotalDeliveries)
	}
	if driver.TotalEarnings != 3.99 {
		t.Errorf("total_earnings = %v, want 3.99", driver.TotalEarnings)
	}
	if driver.Availability != models.AvailabilityOnline {
		t.Errorf("availability = %s, want online", driver.Availability)
	}

	// completing twice must not double-credit
	ok, err = f.deliveries.Complete(ctx, delivery.ID, f.driver.ID, "2025-06-15 12:46:00", 3.99)
	if err != nil {
		t.Fatalf("second complete: %v", err)
	}
	if ok {
		t.Fatal("complete applied twice")
	}
	driver, _ = f.users.GetByID(ctx, f.driver.ID)
	if driver.TotalDeliveries != 1 || driver.TotalEarnings != 3.99 {
		t.Errorf("counters double-credited: %d deliveries, %v earned",
			driver.TotalDeliveries, driver.TotalEarnings)
	}
}

func TestDeliveryCompleteRequiresInTransit(t *testing.T) {
	f := newDeliveryFixture(t, "delivery_repo_complete_guard")
	delivery := seedDelivery(t, f)
	ctx := context.Background()

	ok, err := f.deliveries.Complete(ctx, delivery.ID, f.driver.ID, "2025-06-15 12:45:00", 3.99)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if ok {
		t.Fatal("complete applied from assigned")
	}
	driver, _ := f.users.GetByID(ctx, f.driver.ID)
	if driver.TotalDeliveries != 0 || driver.TotalEarnings != 0 {
		t.Error("counters credited without a completed delivery")
	}
}

func TestDeliveryUpdateStatusIf(t *testing.T) {
	f := newDeliveryFixture(t, "delivery_repo_update")
	delivery := seedDelivery(t, f)
	ctx := context.Background()
	testutil.ForceDeliveryStatus(t, f.db, delivery.ID, models.DeliveryStatusPickedUp)

	ok, err := f.deliveries.UpdateStatusIf(ctx, delivery.ID,
		models.DeliveryStatusInTransit, models.DeliveryStatusPickedUp)
	if err != nil || !ok {
		t.Fatalf("update: ok=%v err=%v", ok, err)
	}

	ok, err = f.deliveries.UpdateStatusIf(ctx, delivery.ID,
		models.DeliveryStatusInTransit, models.DeliveryStatusPickedUp)
	if err != nil {
		t.Fatalf("second update: %v", err)
	}
	if ok {
		t.Fatal("conditional write applied twice")
	}
}

func TestDeliveryListByDriver(t *testing.T) {
	f := newDeliveryFixture(t, "delivery_repo_list")
	delivery := seedDelivery(t, f)
	ctx := context.Background()

	list, err := f.deliveries.ListByDriver(ctx, f.driver.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].ID != delivery.ID {
		t.Errorf("got %+v, want one delivery %d", list, delivery.ID)
	}

	other, err := f.deliveries.ListByDriver(ctx, f.driver.ID+100)
	if err != nil {
		t.Fatalf("list other: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("unassigned driver sees %d deliveries", len(other))
	}
}

func TestDeliveryGetByOrderID(t *testing.T) {
	f := newDeliveryFixture(t, "delivery_repo_by_order")
	delivery := seedDelivery(t, f)
	ctx := context.Background()

	got, err := f.deliveries.GetByOrderID(ctx, f.order.ID)
	if err != nil {
		t.Fatalf("get by order: %v", err)
	}
	if got == nil || got.ID != delivery.ID {
		t.Errorf("got %+v, want delivery %d", got, delivery.ID)
	}

	missing, err := f.deliveries.GetByOrderID(ctx, f.order.ID+100)
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Errorf("want nil for order without delivery, got %+v", missing)
	}
}
