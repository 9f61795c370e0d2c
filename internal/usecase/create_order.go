package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	domain "github.com/Jaysins/yoghurt-backend/internal/entity"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ItemInput struct {
	Name     string
	Amount   decimal.Decimal
	Quantity int
}

type CreateOrderInput struct {
	Name        string
	Email       string
	PhoneNumber string
	Street      string
	City        string
	State       string
	Country     string
	// IdempotencyKey is optional; when set, replays of the same request
	// return the originally created order.
	IdempotencyKey string
	Items          []ItemInput
}

type CreateOrder struct {
	repo  OrderRepo
	codes *CodeGenerator
	idem  IdempotencyStore // optional
	log   *slog.Logger
}

func NewCreateOrder(repo OrderRepo, codes *CodeGenerator, idem IdempotencyStore, log *slog.Logger) *CreateOrder {
	return &CreateOrder{repo: repo, codes: codes, idem: idem, log: log}
}

func (uc *CreateOrder) Execute(ctx context.Context, in CreateOrderInput) (*domain.Order, error) {
	if err := validateContact(in.Name, in.Email, in.PhoneNumber, in.Street, in.City, in.State, in.Country); err != nil {
		return nil, err
	}
	items, err := validateItems(in.Items)
	if err != nil {
		return nil, err
	}

	// Fast path: idempotency recall
	guarded := uc.idem != nil && in.IdempotencyKey != ""
	if guarded {
		id, ok, err := uc.idem.Recall(ctx, in.Email, in.IdempotencyKey)
		if err != nil {
			return nil, fmt.Errorf("idempotency recall: %w", err)
		}
		if ok {
			return uc.repo.GetByID(ctx, id)
		}
		locked, err := uc.idem.TryLock(ctx, in.Email, in.IdempotencyKey)
		if err != nil {
			return nil, fmt.Errorf("idempotency lock: %w", err)
		}
		if !locked {
			return nil, ErrDuplicate
		}
	}

	now := time.Now().UTC()
	o := &domain.Order{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Email:       in.Email,
		PhoneNumber: in.PhoneNumber,
		Street:      in.Street,
		City:        in.City,
		State:       in.State,
		Country:     in.Country,
		Status:      domain.StatusPending,
		Items:       items,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	// A failed create must hand the lock back, otherwise a retry of the
	// same key is stuck behind ErrDuplicate until the TTL runs out.
	fail := func(err error) (*domain.Order, error) {
		if guarded {
			if uerr := uc.idem.Unlock(ctx, in.Email, in.IdempotencyKey); uerr != nil {
				uc.log.Warn("idempotency unlock failed", "error", uerr)
			}
		}
		return nil, err
	}

	// The existence checks in the generator race with concurrent creates;
	// the store's unique constraints are the backstop. A collision at commit
	// time comes back as ErrDuplicateCode and we roll fresh codes.
	for {
		if o.ReferenceCode, err = uc.codes.ReferenceCode(ctx); err != nil {
			return fail(err)
		}
		if o.PaymentCode, err = uc.codes.PaymentCode(ctx); err != nil {
			return fail(err)
		}
		err = uc.repo.Create(ctx, o)
		if err == nil {
			break
		}
		if errors.Is(err, ErrDuplicateCode) {
			uc.log.Warn("order code collision at commit, regenerating",
				"reference_code", o.ReferenceCode)
			continue
		}
		return fail(err)
	}

	if guarded {
		if err := uc.idem.Remember(ctx, in.Email, in.IdempotencyKey, o.ID); err != nil {
			uc.log.Warn("idempotency remember failed", "error", err)
		}
	}

	uc.log.Info("order created",
		"order_id", o.ID,
		"reference_code", o.ReferenceCode,
		"items", len(o.Items))
	return o, nil
}

func validateContact(name, email, phone, street, city, state, country string) error {
	fields := []struct{ name, value string }{
		{"name", name},
		{"email", email},
		{"phone_number", phone},
		{"street", street},
		{"city", city},
		{"state", state},
		{"country", country},
	}
	for _, f := range fields {
		if f.value == "" {
			return invalidField(f.name, "is required")
		}
	}
	return nil
}

// validateItems checks the whole list before anything is persisted and
// reports the first offending index.
func validateItems(in []ItemInput) ([]domain.OrderItem, error) {
	if len(in) == 0 {
		return nil, invalidField("items", "must be a non-empty list")
	}
	items := make([]domain.OrderItem, 0, len(in))
	for idx, it := range in {
		if it.Name == "" {
			return nil, invalidItem(idx, "name", "is required")
		}
		if it.Amount.IsNegative() {
			return nil, invalidItem(idx, "amount", "must not be negative")
		}
		if it.Quantity <= 0 {
			return nil, invalidItem(idx, "quantity", "must be a positive integer")
		}
		items = append(items, domain.OrderItem{
			ID:       uuid.NewString(),
			Name:     it.Name,
			Amount:   it.Amount,
			Quantity: it.Quantity,
		})
	}
	return items, nil
}
