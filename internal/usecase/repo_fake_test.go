package usecase

import (
	"context"
	"sync"

	domain "github.com/Jaysins/yoghurt-backend/internal/entity"
)

// memRepo is an in-memory OrderRepo with the same atomicity and uniqueness
// guarantees the Postgres adapter provides.
type memRepo struct {
	mu       sync.Mutex
	orders   map[string]*domain.Order
	refCodes map[string]bool
	payCodes map[string]bool

	// failure injection
	existsErr        error
	createErr        error // returned once by Create, then cleared
	createCollisions int   // force this many ErrDuplicateCode results from Create
}

func newMemRepo() *memRepo {
	return &memRepo{
		orders:   make(map[string]*domain.Order),
		refCodes: make(map[string]bool),
		payCodes: make(map[string]bool),
	}
}

func cloneOrder(o *domain.Order) *domain.Order {
	cp := *o
	cp.Items = make([]domain.OrderItem, len(o.Items))
	copy(cp.Items, o.Items)
	return &cp
}

func (r *memRepo) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneOrder(o), nil
}

func (r *memRepo) Create(_ context.Context, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		err := r.createErr
		r.createErr = nil
		return err
	}
	if r.createCollisions > 0 {
		r.createCollisions--
		return ErrDuplicateCode
	}
	if r.refCodes[o.ReferenceCode] || r.payCodes[o.PaymentCode] {
		return ErrDuplicateCode
	}
	r.refCodes[o.ReferenceCode] = true
	r.payCodes[o.PaymentCode] = true
	r.orders[o.ID] = cloneOrder(o)
	return nil
}

func (r *memRepo) Update(_ context.Context, o *domain.Order, replaceItems bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.orders[o.ID]
	if !ok {
		return ErrNotFound
	}
	if cur.Status != domain.StatusPending {
		return ErrInvalidState
	}
	next := cloneOrder(o)
	if !replaceItems {
		next.Items = cur.Items
	}
	next.Status = cur.Status
	next.ProofOfPayment = cur.ProofOfPayment
	r.orders[o.ID] = next
	return nil
}

func (r *memRepo) Finalize(_ context.Context, id, proofRef string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.orders[id]
	if !ok {
		return false, ErrNotFound
	}
	if cur.Status != domain.StatusPending {
		return false, nil
	}
	cur.Status = domain.StatusFinalized
	cur.ProofOfPayment = proofRef
	return true, nil
}

func (r *memRepo) ExistsByReferenceCode(_ context.Context, code string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.existsErr != nil {
		return false, r.existsErr
	}
	return r.refCodes[code], nil
}

func (r *memRepo) ExistsByPaymentCode(_ context.Context, code string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.existsErr != nil {
		return false, r.existsErr
	}
	return r.payCodes[code], nil
}

var _ OrderRepo = (*memRepo)(nil)

// memIdem is an in-memory IdempotencyStore.
type memIdem struct {
	mu      sync.Mutex
	locks   map[string]bool
	values  map[string]string
	unlocks int
}

func newMemIdem() *memIdem {
	return &memIdem{locks: make(map[string]bool), values: make(map[string]string)}
}

func (s *memIdem) TryLock(_ context.Context, scope, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := scope + ":" + key
	if s.locks[k] {
		return false, nil
	}
	s.locks[k] = true
	return true, nil
}

func (s *memIdem) Unlock(_ context.Context, scope, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locks, scope+":"+key)
	s.unlocks++
	return nil
}

func (s *memIdem) Remember(_ context.Context, scope, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[scope+":"+key] = value
	return nil
}

func (s *memIdem) Recall(_ context.Context, scope, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[scope+":"+key]
	return v, ok, nil
}

// recordingDispatcher captures dispatch calls and returns a canned result.
type recordingDispatcher struct {
	mu     sync.Mutex
	calls  int
	lastID string
	proof  []byte
	result DispatchResult
}

func (d *recordingDispatcher) Dispatch(_ context.Context, snap domain.Snapshot, proof []byte) DispatchResult {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	d.lastID = snap.ID
	d.proof = proof
	return d.result
}
