package service

import (
	"context"
	"errors"
	"math/rand"
	"strings"
)

// OrderCodeAlphabet excludes visually ambiguous characters (0/O, 1/I).
const OrderCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const (
	OrderCodeLength      = 4
	orderCodeMaxAttempts = 50
)

var ErrOrderCodeExhausted = errors.New("could not generate a unique order code")

// OrderCodeGenerator draws random short codes and rejects candidates that
// already exist. The 4-char space is small enough that collisions are a
// real possibility, so the existence check is mandatory, not probabilistic.
type OrderCodeGenerator struct {
	exists func(ctx context.Context, code string) (bool, error)
	randN  func(n int) int
}

func NewOrderCodeGenerator(exists func(ctx context.Context, code string) (bool, error)) *OrderCodeGenerator {
	return &OrderCodeGenerator{exists: exists, randN: rand.Intn}
}

func (g *OrderCodeGenerator) Generate(ctx context.Context) (string, error) {
	for attempt := 0; attempt < orderCodeMaxAttempts; attempt++ {
		code := g.draw()
		taken, err := g.exists(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", ErrOrderCodeExhausted
}

func (g *OrderCodeGenerator) draw() string {
	var b strings.Builder
	b.Grow(OrderCodeLength)
	for i := 0; i < OrderCodeLength; i++ {
		b.WriteByte(OrderCodeAlphabet[g.randN(len(OrderCodeAlphabet))])
	}
	return b.String()
}
