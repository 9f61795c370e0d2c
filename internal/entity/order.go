package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusFinalized Status = "finalized"
)

// Order is the aggregate root. Items never outlive their order.
type Order struct {
	ID             string
	Name           string
	Email          string
	PhoneNumber    string
	Street         string
	City           string
	State          string
	Country        string
	ReferenceCode  string // unique, ORD-YYYYMMDD-XXXX
	PaymentCode    string // unique, 6 uppercase alphanumerics
	Status         Status
	ProofOfPayment string // set iff Status == finalized
	Items          []OrderItem
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type OrderItem struct {
	ID       string
	Name     string
	Amount   decimal.Decimal
	Quantity int
}

// Total is amount x quantity for a single line.
func (i OrderItem) Total() decimal.Decimal {
	return i.Amount.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Total sums all item lines, rounded to currency precision.
func (o *Order) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range o.Items {
		sum = sum.Add(it.Total())
	}
	return sum.Round(2)
}

func (o *Order) IsPending() bool { return o.Status == StatusPending }

// Snapshot captures everything notification rendering needs, by value.
// It carries no references back to the store.
type Snapshot struct {
	ID             string
	Name           string
	Email          string
	PhoneNumber    string
	Street         string
	City           string
	State          string
	Country        string
	ReferenceCode  string
	PaymentCode    string
	ProofOfPayment string
	Items          []OrderItem
	CreatedAt      time.Time
}

func (o *Order) Snapshot() Snapshot {
	items := make([]OrderItem, len(o.Items))
	copy(items, o.Items)
	return Snapshot{
		ID:             o.ID,
		Name:           o.Name,
		Email:          o.Email,
		PhoneNumber:    o.PhoneNumber,
		Street:         o.Street,
		City:           o.City,
		State:          o.State,
		Country:        o.Country,
		ReferenceCode:  o.ReferenceCode,
		PaymentCode:    o.PaymentCode,
		ProofOfPayment: o.ProofOfPayment,
		Items:          items,
		CreatedAt:      o.CreatedAt,
	}
}

func (s Snapshot) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range s.Items {
		sum = sum.Add(it.Total())
	}
	return sum.Round(2)
}
