package usecase

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// CodeGenerator produces the human-readable order codes. Every candidate is
// checked against the store before being handed out; a collision just means
// another roll of the dice. With 36^4 reference suffixes per day and 36^6
// payment codes the loop terminates almost immediately at any realistic
// order volume.
type CodeGenerator struct {
	oracle OrderRepo
}

func NewCodeGenerator(oracle OrderRepo) *CodeGenerator {
	return &CodeGenerator{oracle: oracle}
}

// ReferenceCode returns a fresh ORD-YYYYMMDD-XXXX code unused by any order.
func (g *CodeGenerator) ReferenceCode(ctx context.Context) (string, error) {
	for {
		code := fmt.Sprintf("ORD-%s-%s", time.Now().Format("20060102"), randCode(4))
		exists, err := g.oracle.ExistsByReferenceCode(ctx, code)
		if err != nil {
			return "", fmt.Errorf("%w: reference code check: %v", ErrStoreUnavailable, err)
		}
		if !exists {
			return code, nil
		}
	}
}

// PaymentCode returns a fresh 6-character payment code unused by any order.
func (g *CodeGenerator) PaymentCode(ctx context.Context) (string, error) {
	for {
		code := randCode(6)
		exists, err := g.oracle.ExistsByPaymentCode(ctx, code)
		if err != nil {
			return "", fmt.Errorf("%w: payment code check: %v", ErrStoreUnavailable, err)
		}
		if !exists {
			return code, nil
		}
	}
}

func randCode(n int) string {
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		b.WriteByte(codeAlphabet[rand.Intn(len(codeAlphabet))])
	}
	return b.String()
}
