package usecase

import (
	"context"
	"errors"
	"testing"

	domain "github.com/Jaysins/yoghurt-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memProofs map[string][]byte

func (p memProofs) Open(name string) ([]byte, error) {
	b, ok := p[name]
	if !ok {
		return nil, errors.New("no such file")
	}
	return b, nil
}

func TestFinalizeOrder(t *testing.T) {
	repo := newMemRepo()
	o := seedOrder(t, repo)
	disp := &recordingDispatcher{result: DispatchResult{CustomerSent: true, AdminSent: true}}
	proofs := memProofs{"proof.png": []byte("png-bytes")}

	out, err := NewFinalizeOrder(repo, disp, proofs, testLogger()).Execute(context.Background(), o.ID, "proof.png")
	require.NoError(t, err)

	assert.Equal(t, domain.StatusFinalized, out.Order.Status)
	assert.Equal(t, "proof.png", out.Order.ProofOfPayment)
	assert.True(t, out.Notified.CustomerSent)
	assert.True(t, out.Notified.AdminSent)
	assert.Equal(t, 1, disp.calls)
	assert.Equal(t, []byte("png-bytes"), disp.proof)
}

func TestFinalizeOrderTwiceRejectsSecond(t *testing.T) {
	repo := newMemRepo()
	o := seedOrder(t, repo)
	disp := &recordingDispatcher{result: DispatchResult{CustomerSent: true, AdminSent: true}}
	uc := NewFinalizeOrder(repo, disp, nil, testLogger())

	_, err := uc.Execute(context.Background(), o.ID, "proof.png")
	require.NoError(t, err)

	_, err = uc.Execute(context.Background(), o.ID, "other.png")
	assert.ErrorIs(t, err, ErrInvalidState)

	// the loser neither re-dispatches nor overwrites the proof
	assert.Equal(t, 1, disp.calls)
	stored, err := repo.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, "proof.png", stored.ProofOfPayment)
}

func TestFinalizeOrderNotFound(t *testing.T) {
	disp := &recordingDispatcher{}
	_, err := NewFinalizeOrder(newMemRepo(), disp, nil, testLogger()).Execute(context.Background(), "missing", "proof.png")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, disp.calls)
}

func TestFinalizeOrderDispatchFailureDoesNotFail(t *testing.T) {
	repo := newMemRepo()
	o := seedOrder(t, repo)
	// both sends failed; finalize still succeeds and reports the outcome
	disp := &recordingDispatcher{result: DispatchResult{}}

	out, err := NewFinalizeOrder(repo, disp, nil, testLogger()).Execute(context.Background(), o.ID, "proof.png")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFinalized, out.Order.Status)
	assert.False(t, out.Notified.CustomerSent)
	assert.False(t, out.Notified.AdminSent)
}

func TestFinalizeOrderUnreadableProofStillNotifies(t *testing.T) {
	repo := newMemRepo()
	o := seedOrder(t, repo)
	disp := &recordingDispatcher{result: DispatchResult{CustomerSent: true, AdminSent: true}}

	out, err := NewFinalizeOrder(repo, disp, memProofs{}, testLogger()).Execute(context.Background(), o.ID, "gone.png")
	require.NoError(t, err)
	assert.Equal(t, 1, disp.calls)
	assert.Nil(t, disp.proof, "missing proof means no attachment, not a failure")
	assert.True(t, out.Notified.CustomerSent)
}
