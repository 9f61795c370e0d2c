package usecase

import (
	"context"
	"log/slog"

	domain "github.com/Jaysins/yoghurt-backend/internal/entity"
)

type FinalizeOrderOutput struct {
	Order *domain.Order
	// Notified reports the per-recipient email outcomes. It is metadata:
	// the state transition has already committed by the time dispatch runs,
	// and nothing the dispatcher does can undo it.
	Notified DispatchResult
}

type FinalizeOrder struct {
	repo       OrderRepo
	dispatcher Dispatcher
	proofs     ProofStore // optional
	log        *slog.Logger
}

func NewFinalizeOrder(repo OrderRepo, dispatcher Dispatcher, proofs ProofStore, log *slog.Logger) *FinalizeOrder {
	return &FinalizeOrder{repo: repo, dispatcher: dispatcher, proofs: proofs, log: log}
}

// Execute performs the single pending -> finalized transition. The store's
// compare-and-set decides the winner under concurrency; the loser of a
// double-finalize gets ErrInvalidState and no second dispatch happens.
func (uc *FinalizeOrder) Execute(ctx context.Context, orderID, proofRef string) (FinalizeOrderOutput, error) {
	ok, err := uc.repo.Finalize(ctx, orderID, proofRef)
	if err != nil {
		return FinalizeOrderOutput{}, err
	}
	if !ok {
		return FinalizeOrderOutput{}, ErrInvalidState
	}

	o, err := uc.repo.GetByID(ctx, orderID)
	if err != nil {
		return FinalizeOrderOutput{}, err
	}

	var proof []byte
	if uc.proofs != nil && o.ProofOfPayment != "" {
		if proof, err = uc.proofs.Open(o.ProofOfPayment); err != nil {
			uc.log.Warn("proof of payment unreadable, notifying without attachment",
				"order_id", o.ID, "proof", o.ProofOfPayment, "error", err)
			proof = nil
		}
	}

	// The transition is committed; notification must not be cut short by the
	// caller going away, and its outcome travels back as data.
	res := uc.dispatcher.Dispatch(context.WithoutCancel(ctx), o.Snapshot(), proof)

	uc.log.Info("order finalized",
		"order_id", o.ID,
		"reference_code", o.ReferenceCode,
		"customer_sent", res.CustomerSent,
		"admin_sent", res.AdminSent)
	return FinalizeOrderOutput{Order: o, Notified: res}, nil
}
