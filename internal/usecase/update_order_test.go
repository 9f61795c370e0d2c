package usecase

import (
	"context"
	"testing"

	domain "github.com/Jaysins/yoghurt-backend/internal/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedOrder(t *testing.T, repo *memRepo) *domain.Order {
	t.Helper()
	o, err := newCreate(repo, nil).Execute(context.Background(), validCreateInput())
	require.NoError(t, err)
	return o
}

func strptr(s string) *string { return &s }

func TestUpdateOrderPartialFields(t *testing.T) {
	repo := newMemRepo()
	o := seedOrder(t, repo)

	updated, err := NewUpdateOrder(repo, testLogger()).Execute(context.Background(), o.ID, UpdateOrderInput{
		City: strptr("Abuja"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Abuja", updated.City)
	// untouched fields keep their values
	assert.Equal(t, o.Name, updated.Name)
	assert.Equal(t, o.ReferenceCode, updated.ReferenceCode)
	assert.Len(t, updated.Items, 1)
	assert.True(t, updated.UpdatedAt.After(o.UpdatedAt) || updated.UpdatedAt.Equal(o.UpdatedAt))
}

func TestUpdateOrderReplacesWholeItemSet(t *testing.T) {
	repo := newMemRepo()
	o := seedOrder(t, repo)

	updated, err := NewUpdateOrder(repo, testLogger()).Execute(context.Background(), o.ID, UpdateOrderInput{
		Items: []ItemInput{
			{Name: "Pen", Amount: decimal.RequireFromString("1.50"), Quantity: 4},
			{Name: "Pad", Amount: decimal.RequireFromString("3.00"), Quantity: 2},
		},
	})
	require.NoError(t, err)
	assert.Len(t, updated.Items, 2)
	assert.Equal(t, "12.00", updated.Total().StringFixed(2))

	stored, err := repo.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Items, 2)
	assert.Equal(t, "Pen", stored.Items[0].Name)
}

func TestUpdateOrderInvalidItemLeavesSetIntact(t *testing.T) {
	repo := newMemRepo()
	o := seedOrder(t, repo)

	_, err := NewUpdateOrder(repo, testLogger()).Execute(context.Background(), o.ID, UpdateOrderInput{
		Items: []ItemInput{
			{Name: "Pen", Amount: decimal.NewFromInt(1), Quantity: 1},
			{Name: "Pad", Amount: decimal.NewFromInt(2), Quantity: 1},
			{Name: "bad", Amount: decimal.NewFromInt(3), Quantity: 0},
		},
	})
	ve, ok := AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, 2, ve.ItemIndex)

	stored, err := repo.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, "Book", stored.Items[0].Name)
}

func TestUpdateOrderEmptyFieldRejected(t *testing.T) {
	repo := newMemRepo()
	o := seedOrder(t, repo)

	_, err := NewUpdateOrder(repo, testLogger()).Execute(context.Background(), o.ID, UpdateOrderInput{
		Email: strptr(""),
	})
	ve, ok := AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "email", ve.Field)
}

func TestUpdateOrderNotFound(t *testing.T) {
	repo := newMemRepo()
	_, err := NewUpdateOrder(repo, testLogger()).Execute(context.Background(), "missing", UpdateOrderInput{
		City: strptr("Abuja"),
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateOrderFinalizedRejected(t *testing.T) {
	repo := newMemRepo()
	o := seedOrder(t, repo)
	_, err := repo.Finalize(context.Background(), o.ID, "proof.png")
	require.NoError(t, err)

	_, err = NewUpdateOrder(repo, testLogger()).Execute(context.Background(), o.ID, UpdateOrderInput{
		City: strptr("Abuja"),
	})
	assert.ErrorIs(t, err, ErrInvalidState)

	stored, err := repo.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.City, stored.City)
}
