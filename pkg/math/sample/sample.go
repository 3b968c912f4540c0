package sample

import (
	"fmt"
	"io"

	"github.com/cronokirby/saferith"
)

const maxIterations = 255

var ErrMaxIterations = fmt.Errorf("sample: failed to generate after %d iterations", maxIterations)

func mustReadBits(rand io.Reader, buf []byte) {
	for i := 0; i < maxIterations; i++ {
		if _, err := io.ReadFull(rand, buf); err == nil {
			return
		}
	}
	panic(ErrMaxIterations)
}

// Reject draws candidates from rand with draw until accept holds.
//
// The source and the predicate are kept apart so that predicates can be tested
// on their own. Reject panics with ErrMaxIterations if no candidate is accepted
// after maxIterations draws; it is meant for predicates which hold with high
// probability.
func Reject[T any](rand io.Reader, draw func(io.Reader) T, accept func(T) bool) T {
	for i := 0; i < maxIterations; i++ {
		candidate := draw(rand)
		if accept(candidate) {
			return candidate
		}
	}
	panic(ErrMaxIterations)
}

// ModN samples an element of ℤₙ.
func ModN(rand io.Reader, n *saferith.Modulus) *saferith.Nat {
	out := new(saferith.Nat)
	buf := make([]byte, (n.BitLen()+7)/8)
	for {
		mustReadBits(rand, buf)
		out.SetBytes(buf)
		_, _, lt := out.CmpMod(n)
		if lt == 1 {
			break
		}
	}
	return out
}

// NonZeroModN samples an element of [1, n).
func NonZeroModN(rand io.Reader, n *saferith.Modulus) *saferith.Nat {
	return Reject(rand,
		func(r io.Reader) *saferith.Nat { return ModN(r, n) },
		func(x *saferith.Nat) bool { return x.EqZero() != 1 },
	)
}

// UnitModN returns a u ∈ ℤₙˣ, i.e. u < n with gcd(u, n) = 1.
func UnitModN(rand io.Reader, n *saferith.Modulus) *saferith.Nat {
	return Reject(rand,
		func(r io.Reader) *saferith.Nat { return ModN(r, n) },
		func(u *saferith.Nat) bool { return u.IsUnit(n) == 1 },
	)
}
