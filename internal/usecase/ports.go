package usecase

import (
	"context"

	domain "github.com/Jaysins/yoghurt-backend/internal/entity"
)

// OrderRepo is the persistence port. Implementations must make Create and
// Update (with item replacement) atomic, enforce uniqueness of reference and
// payment codes (reporting collisions as ErrDuplicateCode), and implement
// Finalize as a compare-and-set on status so concurrent finalize calls
// serialize with exactly one winner.
type OrderRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	// Create persists the order and all of its items in one transaction.
	Create(ctx context.Context, o *domain.Order) error
	// Update persists the order's mutable fields while it is pending.
	// When replaceItems is true the whole item set is swapped in the same
	// transaction; a partial replacement must never be observable.
	Update(ctx context.Context, o *domain.Order, replaceItems bool) error
	// Finalize atomically sets proof_of_payment and flips status from pending
	// to finalized. It returns false when the order exists but is no longer
	// pending (the precondition-failed outcome).
	Finalize(ctx context.Context, id, proofRef string) (bool, error)
	ExistsByReferenceCode(ctx context.Context, code string) (bool, error)
	ExistsByPaymentCode(ctx context.Context, code string) (bool, error)
}

// DispatchResult reports per-recipient notification outcomes. It is data,
// never an error: dispatch failures must not fail the finalize that
// triggered them.
type DispatchResult struct {
	CustomerSent bool `json:"customer"`
	AdminSent    bool `json:"admin"`
}

// Dispatcher sends the finalized-order notifications. Implementations catch
// every internal failure and downgrade it to false flags.
type Dispatcher interface {
	Dispatch(ctx context.Context, snap domain.Snapshot, proof []byte) DispatchResult
}

// ProofStore loads stored proof-of-payment bytes for attachment. A missing or
// unreadable file is not fatal; the notification goes out without it.
type ProofStore interface {
	Open(name string) ([]byte, error)
}

// IdempotencyStore guards duplicate create submissions keyed by a
// client-supplied idempotency key. A lock taken for an attempt that fails
// must be released with Unlock so the client can retry the same key.
type IdempotencyStore interface {
	TryLock(ctx context.Context, scope, key string) (bool, error)
	Unlock(ctx context.Context, scope, key string) error
	Remember(ctx context.Context, scope, key, value string) error
	Recall(ctx context.Context, scope, key string) (string, bool, error)
}
