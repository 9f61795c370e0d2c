package usecase

import (
	"context"
	"log/slog"
	"time"

	domain "github.com/Jaysins/yoghurt-backend/internal/entity"
)

// UpdateOrderInput carries only the fields the caller wants changed; nil
// pointers and a nil item list leave the current values alone.
type UpdateOrderInput struct {
	Name        *string
	Email       *string
	PhoneNumber *string
	Street      *string
	City        *string
	State       *string
	Country     *string
	Items       []ItemInput // nil = keep, non-nil = replace the whole set
}

type UpdateOrder struct {
	repo OrderRepo
	log  *slog.Logger
}

func NewUpdateOrder(repo OrderRepo, log *slog.Logger) *UpdateOrder {
	return &UpdateOrder{repo: repo, log: log}
}

func (uc *UpdateOrder) Execute(ctx context.Context, orderID string, in UpdateOrderInput) (*domain.Order, error) {
	o, err := uc.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.IsPending() {
		return nil, ErrInvalidState
	}

	apply := func(dst *string, src *string, field string) error {
		if src == nil {
			return nil
		}
		if *src == "" {
			return invalidField(field, "must not be empty")
		}
		*dst = *src
		return nil
	}
	for _, f := range []struct {
		dst   *string
		src   *string
		field string
	}{
		{&o.Name, in.Name, "name"},
		{&o.Email, in.Email, "email"},
		{&o.PhoneNumber, in.PhoneNumber, "phone_number"},
		{&o.Street, in.Street, "street"},
		{&o.City, in.City, "city"},
		{&o.State, in.State, "state"},
		{&o.Country, in.Country, "country"},
	} {
		if err := apply(f.dst, f.src, f.field); err != nil {
			return nil, err
		}
	}

	replaceItems := false
	if in.Items != nil {
		// Validate the full list up front so a bad item leaves the stored
		// set untouched.
		items, err := validateItems(in.Items)
		if err != nil {
			return nil, err
		}
		o.Items = items
		replaceItems = true
	}

	o.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, o, replaceItems); err != nil {
		return nil, err
	}

	uc.log.Info("order updated",
		"order_id", o.ID,
		"items_replaced", replaceItems)
	return o, nil
}
