package models

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func pendingOrder(t *testing.T) Order {
	t.Helper()
	order, err := NewOrder(primitive.NewObjectID(), []OrderItem{
		{ProductID: primitive.NewObjectID(), Name: "Hybrid", Quantity: 1, Price: 100},
	}, sampleAddress("A"), "card", time.Now())
	if err != nil {
		t.Fatalf("NewOrder returned error: %v", err)
	}
	return order
}

func TestNewOrderStartsPendingWithTotal(t *testing.T) {
	order, err := NewOrder(primitive.NewObjectID(), []OrderItem{
		{ProductID: primitive.NewObjectID(), Quantity: 3, Price: 0.1},
		{ProductID: primitive.NewObjectID(), Quantity: 2, Price: 19.99},
	}, sampleAddress("A"), "cash", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Status != StatusPending {
		t.Fatalf("expected Pending, got %s", order.Status)
	}
	if order.TotalAmount != 40.28 {
		t.Fatalf("expected total 40.28, got %v", order.TotalAmount)
	}
}

func TestNewOrderValidation(t *testing.T) {
	uid := primitive.NewObjectID()
	if _, err := NewOrder(uid, nil, Address{}, "card", time.Now()); !errors.Is(err, ErrEmptyOrder) {
		t.Fatalf("expected empty order error, got %v", err)
	}
	items := []OrderItem{{ProductID: primitive.NewObjectID(), Quantity: 1, Price: 5}}
	if _, err := NewOrder(uid, items, Address{}, " ", time.Now()); !errors.Is(err, ErrPaymentRequired) {
		t.Fatalf("expected payment method error, got %v", err)
	}
	items[0].Quantity = 0
	if _, err := NewOrder(uid, items, Address{}, "card", time.Now()); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected quantity error, got %v", err)
	}
}

func TestOrderAddressIsACopy(t *testing.T) {
	u := NewUser("Asha", "asha@example.com", "hash", time.Now())
	addr := u.AddAddress(sampleAddress("A"))

	order, err := NewOrder(u.ID, []OrderItem{{ProductID: primitive.NewObjectID(), Quantity: 1, Price: 1}}, addr, "card", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	before := order.Address

	u.UpdateAddress(addr.ID, AddressPatch{City: strPtr("Elsewhere")})
	u.DeleteAddress(addr.ID)

	if !reflect.DeepEqual(order.Address, before) || order.Address.City != "Bengaluru" {
		t.Fatalf("expected order address unchanged, got %+v", order.Address)
	}
}

func TestCancelTransitions(t *testing.T) {
	order := pendingOrder(t)
	if err := order.Cancel(time.Now()); err != nil {
		t.Fatalf("expected cancel from Pending to succeed, got %v", err)
	}
	if order.Status != StatusCancelled {
		t.Fatalf("expected Cancelled, got %s", order.Status)
	}

	if err := order.Cancel(time.Now()); !errors.Is(err, ErrAlreadyCancelled) {
		t.Fatalf("expected already cancelled, got %v", err)
	}

	for _, status := range []string{StatusShipped, StatusDelivered} {
		o := pendingOrder(t)
		o.Status = status
		err := o.Cancel(time.Now())
		if !errors.Is(err, ErrNotCancellable) || !errors.Is(err, ErrInvalid) {
			t.Fatalf("%s: expected cannot be cancelled, got %v", status, err)
		}
		if o.Status != status {
			t.Fatalf("%s: expected state unchanged, got %s", status, o.Status)
		}
	}
}

func TestSetStatusAdminOverride(t *testing.T) {
	order := pendingOrder(t)
	order.Status = StatusDelivered

	if err := order.SetStatus("pending", time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Status != StatusPending {
		t.Fatalf("expected canonical Pending, got %s", order.Status)
	}
	if err := order.SetStatus("Lost", time.Now()); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected invalid status, got %v", err)
	}
	if order.Status != StatusPending {
		t.Fatalf("expected state unchanged after invalid status, got %s", order.Status)
	}
}
