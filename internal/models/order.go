package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	StatusPending   = "Pending"
	StatusShipped   = "Shipped"
	StatusDelivered = "Delivered"
	StatusCancelled = "Cancelled"
)

var OrderStatuses = []string{StatusPending, StatusShipped, StatusDelivered, StatusCancelled}

// ParseOrderStatus matches case-insensitively and returns the canonical value.
func ParseOrderStatus(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	for _, s := range OrderStatuses {
		if strings.EqualFold(s, trimmed) {
			return s, nil
		}
	}
	return "", ErrInvalidStatus
}

// OrderItem snapshots the unit price at the time the order was placed.
type OrderItem struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Name      string             `bson:"name" json:"name"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	Price     float64            `bson:"price" json:"price"`
}

// Order holds a copy of the delivery address, not a reference, so later
// address book edits never change a placed order.
type Order struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        primitive.ObjectID `bson:"userId" json:"userId"`
	Items         []OrderItem        `bson:"items" json:"items"`
	TotalAmount   float64            `bson:"totalAmount" json:"totalAmount"`
	Address       Address            `bson:"address" json:"address"`
	Status        string             `bson:"status" json:"status"`
	PaymentMethod string             `bson:"paymentMethod" json:"paymentMethod"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func NewOrder(userID primitive.ObjectID, items []OrderItem, address Address, paymentMethod string, now time.Time) (Order, error) {
	if len(items) == 0 {
		return Order{}, ErrEmptyOrder
	}
	paymentMethod = strings.TrimSpace(paymentMethod)
	if paymentMethod == "" {
		return Order{}, ErrPaymentRequired
	}
	for _, item := range items {
		if item.Quantity < 1 {
			return Order{}, ErrInvalidQuantity
		}
	}

	snapshot := make([]OrderItem, len(items))
	copy(snapshot, items)

	return Order{
		UserID:        userID,
		Items:         snapshot,
		TotalAmount:   OrderTotal(snapshot),
		Address:       address,
		Status:        StatusPending,
		PaymentMethod: paymentMethod,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// OrderTotal sums price*quantity in decimal and rounds to cents.
func OrderTotal(items []OrderItem) float64 {
	total := decimal.Zero
	for _, item := range items {
		line := decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(line)
	}
	return total.Round(2).InexactFloat64()
}

// Cancel is the owner's transition. Only Pending orders can be cancelled; the
// order is left unchanged on error.
func (o *Order) Cancel(now time.Time) error {
	switch o.Status {
	case StatusPending:
		o.Status = StatusCancelled
		o.UpdatedAt = now
		return nil
	case StatusCancelled:
		return ErrAlreadyCancelled
	default:
		return ErrNotCancellable
	}
}

// SetStatus is the administrative override and has no transition guard.
func (o *Order) SetStatus(status string, now time.Time) error {
	canonical, err := ParseOrderStatus(status)
	if err != nil {
		return err
	}
	o.Status = canonical
	o.UpdatedAt = now
	return nil
}
