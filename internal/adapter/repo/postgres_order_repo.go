package repo

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/Jaysins/yoghurt-backend/internal/entity"
	"github.com/Jaysins/yoghurt-backend/internal/usecase"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const pgUniqueViolation = "23505"

type PostgresOrderRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresOrderRepo(pool *pgxpool.Pool) *PostgresOrderRepo {
	return &PostgresOrderRepo{pool: pool}
}

var _ usecase.OrderRepo = (*PostgresOrderRepo)(nil)

func (r *PostgresOrderRepo) Create(ctx context.Context, o *domain.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return storeErr("begin create", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
INSERT INTO orders (id, name, email, phone_number, street, city, state, country,
                    reference_code, payment_code, status, proof_of_payment, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,'',$12,$13)`,
		o.ID, o.Name, o.Email, o.PhoneNumber, o.Street, o.City, o.State, o.Country,
		o.ReferenceCode, o.PaymentCode, string(o.Status), o.CreatedAt, o.UpdatedAt)
	if err != nil {
		if isCodeCollision(err) {
			return fmt.Errorf("%w: %v", usecase.ErrDuplicateCode, err)
		}
		return storeErr("insert order", err)
	}

	if err := insertItems(ctx, tx, o.ID, o.Items); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return storeErr("commit create", err)
	}
	return nil
}

func (r *PostgresOrderRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	var o domain.Order
	var status string
	err := r.pool.QueryRow(ctx, `
SELECT id, name, email, phone_number, street, city, state, country,
       reference_code, payment_code, status, proof_of_payment, created_at, updated_at
FROM orders WHERE id = $1`, id).Scan(
		&o.ID, &o.Name, &o.Email, &o.PhoneNumber, &o.Street, &o.City, &o.State, &o.Country,
		&o.ReferenceCode, &o.PaymentCode, &status, &o.ProofOfPayment, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, usecase.ErrNotFound
	}
	if err != nil {
		return nil, storeErr("select order", err)
	}
	o.Status = domain.Status(status)

	rows, err := r.pool.Query(ctx, `
SELECT id, name, amount, quantity
FROM order_items WHERE order_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, storeErr("select items", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it domain.OrderItem
		var amount string
		if err := rows.Scan(&it.ID, &it.Name, &amount, &it.Quantity); err != nil {
			return nil, storeErr("scan item", err)
		}
		if it.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, storeErr("parse amount", err)
		}
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate items", err)
	}
	return &o, nil
}

// Update writes the mutable fields, guarded on status so a concurrent
// finalize cannot interleave. Item replacement is delete-all-then-insert
// inside the same transaction.
func (r *PostgresOrderRepo) Update(ctx context.Context, o *domain.Order, replaceItems bool) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return storeErr("begin update", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
UPDATE orders
SET name=$2, email=$3, phone_number=$4, street=$5, city=$6, state=$7, country=$8, updated_at=$9
WHERE id = $1 AND status = $10`,
		o.ID, o.Name, o.Email, o.PhoneNumber, o.Street, o.City, o.State, o.Country,
		o.UpdatedAt, string(domain.StatusPending))
	if err != nil {
		return storeErr("update order", err)
	}
	if tag.RowsAffected() == 0 {
		return r.missingOrNotPending(ctx, o.ID)
	}

	if replaceItems {
		if _, err := tx.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, o.ID); err != nil {
			return storeErr("delete items", err)
		}
		if err := insertItems(ctx, tx, o.ID, o.Items); err != nil {
			return err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return storeErr("commit update", err)
	}
	return nil
}

// Finalize is the compare-and-set for the pending -> finalized transition.
// Zero affected rows with an existing order means some other caller won.
func (r *PostgresOrderRepo) Finalize(ctx context.Context, id, proofRef string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
UPDATE orders
SET status=$2, proof_of_payment=$3, updated_at=now()
WHERE id = $1 AND status = $4`,
		id, string(domain.StatusFinalized), proofRef, string(domain.StatusPending))
	if err != nil {
		return false, storeErr("finalize order", err)
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}
	err = r.missingOrNotPending(ctx, id)
	if errors.Is(err, usecase.ErrInvalidState) {
		// Precondition failed: the order exists but is already finalized.
		return false, nil
	}
	return false, err
}

func (r *PostgresOrderRepo) ExistsByReferenceCode(ctx context.Context, code string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM orders WHERE reference_code = $1)`, code)
}

func (r *PostgresOrderRepo) ExistsByPaymentCode(ctx context.Context, code string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM orders WHERE payment_code = $1)`, code)
}

func (r *PostgresOrderRepo) exists(ctx context.Context, query, code string) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, query, code).Scan(&exists); err != nil {
		return false, storeErr("exists query", err)
	}
	return exists, nil
}

func (r *PostgresOrderRepo) missingOrNotPending(ctx context.Context, id string) error {
	var one int
	err := r.pool.QueryRow(ctx, `SELECT 1 FROM orders WHERE id = $1`, id).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return usecase.ErrNotFound
	}
	if err != nil {
		return storeErr("lookup order", err)
	}
	return usecase.ErrInvalidState
}

func insertItems(ctx context.Context, tx pgx.Tx, orderID string, items []domain.OrderItem) error {
	for pos, it := range items {
		_, err := tx.Exec(ctx, `
INSERT INTO order_items (id, order_id, position, name, amount, quantity)
VALUES ($1,$2,$3,$4,$5,$6)`,
			it.ID, orderID, pos, it.Name, it.Amount.String(), it.Quantity)
		if err != nil {
			return storeErr("insert item", err)
		}
	}
	return nil
}

func isCodeCollision(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", usecase.ErrStoreUnavailable, op, err)
}
