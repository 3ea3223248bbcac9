package domain

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"
)

// Common validation errors for Order
var (
	ErrEmptyOrderEvent   = errors.New("order event cannot be empty")
	ErrEmptyOrderEmail   = errors.New("order email cannot be empty")
	ErrNoOrderPositions  = errors.New("order needs at least one position")
	ErrNegativePosPrice  = errors.New("position price cannot be negative")
	ErrEmptyPositionItem = errors.New("position item cannot be empty")
)

// orderCodeAlphabet deliberately omits characters that read ambiguously
// when printed on a ticket (0/O, 1/I, 2/Z, 5/S, 6/G).
const orderCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ3789"

// orderCodeLength is the length of generated order codes.
const orderCodeLength = 5

// OrderPosition is a single purchased item within an order.
type OrderPosition struct {
	Item  string `json:"item"`
	Price int64  `json:"price"` // minor currency units
}

// Order represents a ticket order placed through the shop. Orders with
// a zero total complete synchronously during submission; everything
// else is confirmed by a background job.
type Order struct {
	Code      string          `json:"code"`
	Event     string          `json:"event"`
	Email     string          `json:"email"`
	Positions []OrderPosition `json:"positions"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewOrder creates an Order for the given event with a freshly
// generated code. Returns an error if validation fails.
func NewOrder(event, email string, positions []OrderPosition) (*Order, error) {
	code, err := GenerateOrderCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate order code: %w", err)
	}

	order := &Order{
		Code:      code,
		Event:     event,
		Email:     email,
		Positions: positions,
		CreatedAt: time.Now().UTC(),
	}

	if err := order.Validate(); err != nil {
		return nil, err
	}

	return order, nil
}

// Validate checks if the Order has valid data.
func (o *Order) Validate() error {
	if o.Event == "" {
		return ErrEmptyOrderEvent
	}

	if o.Email == "" {
		return ErrEmptyOrderEmail
	}

	if len(o.Positions) == 0 {
		return ErrNoOrderPositions
	}

	for _, pos := range o.Positions {
		if pos.Item == "" {
			return ErrEmptyPositionItem
		}
		if pos.Price < 0 {
			return ErrNegativePosPrice
		}
	}

	return nil
}

// Total returns the order total in minor currency units.
func (o *Order) Total() int64 {
	var total int64
	for _, pos := range o.Positions {
		total += pos.Price
	}
	return total
}

// URL returns the shop-facing URL of the order, used as the redirect
// target once an order job completes.
func (o *Order) URL() string {
	return fmt.Sprintf("/%s/order/%s/", o.Event, o.Code)
}

// GenerateOrderCode returns a random order code drawn from the
// unambiguous alphabet.
func GenerateOrderCode() (string, error) {
	buf := make([]byte, orderCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	code := make([]byte, orderCodeLength)
	for i, b := range buf {
		code[i] = orderCodeAlphabet[int(b)%len(orderCodeAlphabet)]
	}
	return string(code), nil
}
