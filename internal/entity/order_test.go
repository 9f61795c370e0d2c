package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOrderTotal(t *testing.T) {
	o := &Order{
		Items: []OrderItem{
			{Name: "Widget", Amount: decimal.RequireFromString("10.50"), Quantity: 3},
			{Name: "Gadget", Amount: decimal.RequireFromString("5.00"), Quantity: 2},
		},
	}
	assert.Equal(t, "41.50", o.Total().StringFixed(2))
}

func TestOrderTotalEmpty(t *testing.T) {
	o := &Order{}
	assert.True(t, o.Total().IsZero())
}

func TestItemTotal(t *testing.T) {
	it := OrderItem{Amount: decimal.RequireFromString("12.00"), Quantity: 1}
	assert.Equal(t, "12.00", it.Total().StringFixed(2))
}

func TestSnapshotIsDetached(t *testing.T) {
	o := &Order{
		ID:        "o1",
		Name:      "Ada",
		Status:    StatusPending,
		Items:     []OrderItem{{Name: "Book", Amount: decimal.RequireFromString("12.00"), Quantity: 1}},
		CreatedAt: time.Now(),
	}
	snap := o.Snapshot()

	// mutating the order must not leak into the snapshot
	o.Items[0].Name = "changed"
	assert.Equal(t, "Book", snap.Items[0].Name)
	assert.Equal(t, "12.00", snap.Total().StringFixed(2))
}
