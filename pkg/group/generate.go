package group

import (
	"context"
	"fmt"
	"io"
	"math/big"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/ppda/internal/params"
	"github.com/taurusgroup/ppda/pkg/math/sample"
	"github.com/taurusgroup/ppda/pkg/pool"
)

// candidate is an accepted q, together with the modulus 2⋅p⋅q + 1.
type candidate struct {
	q, modulus *big.Int
}

// Generate samples new Parameters whose modulus has at least securityBits bits.
//
// p is sampled once with securityBits/2 + 2 bits, then q is resampled with
// securityBits/2 bits until 2⋅p⋅q + 1 is prime and ⌊p/q⌋ > 2. When pl is not nil,
// several q candidates are tried concurrently.
//
// The search has no bound on the number of tries; it only stops early when ctx is done.
func Generate(ctx context.Context, rand io.Reader, securityBits int, pl *pool.Pool) (*Parameters, error) {
	if securityBits < params.MinSecurityBits {
		return nil, fmt.Errorf("security parameter %d < %d: %w", securityBits, params.MinSecurityBits, ErrInvalidConfiguration)
	}
	reader := pool.NewLockedReader(rand)

	var p *big.Int
	for p == nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		candidateP, err := sample.Prime(reader, securityBits/2+params.ExtraBitsP)
		if err != nil {
			return nil, fmt.Errorf("group: sample p: %w", err)
		}
		if candidateP.ProbablyPrime(params.PrimalityIterations) {
			p = candidateP
		}
	}

	results, err := pl.Search(ctx, 1, func() interface{} {
		q, err := sample.Prime(reader, securityBits/2)
		if err != nil {
			return nil
		}
		modulus := acceptQ(p, q)
		// You have to do this, because of how Go handles nil.
		if modulus == nil {
			return nil
		}
		return &candidate{q: q, modulus: modulus}
	})
	if err != nil {
		return nil, err
	}
	q := results[0].(*candidate).q

	grp := derive(p, q, big.NewInt(1))
	for {
		if err = ctx.Err(); err != nil {
			return nil, err
		}
		d := sample.NonZeroModN(reader, grp.modulus)
		if grp.generatorCandidate(d) {
			return derive(p, q, grp.Mul(d, d).Big()), nil
		}
	}
}

// acceptQ returns m = 2⋅p⋅q + 1 if q is a suitable companion for p, and nil otherwise.
//
// The cheap checks run first; q itself only goes through the full primality
// test once the modulus has been found to be prime.
func acceptQ(p, q *big.Int) *big.Int {
	if p.Cmp(q) == 0 || !ratioLargeEnough(p, q) {
		return nil
	}
	m := new(big.Int).Mul(p, q)
	m.Lsh(m, 1)
	m.Add(m, big.NewInt(1))
	if !m.ProbablyPrime(params.PrimalityIterations) {
		return nil
	}
	if !q.ProbablyPrime(params.PrimalityIterations) {
		return nil
	}
	return m
}

// generatorCandidate returns true if d² generates the subgroup of order p⋅q.
//
// This requires d² ≠ 1, dᵖ ≠ 1, d^q ≠ 1 and gcd(d, m) = 1, and, so that
// neither sub-order is lost when squaring, d²ᵖ ≠ 1 and d^2q ≠ 1.
func (grp *Parameters) generatorCandidate(d *saferith.Nat) bool {
	if d.EqZero() == 1 || d.IsUnit(grp.modulus) != 1 {
		return false
	}
	d2 := grp.Mul(d, d)
	return !grp.IsIdentity(d2) &&
		!grp.IsIdentity(grp.Exp(d, grp.p)) &&
		!grp.IsIdentity(grp.Exp(d, grp.q)) &&
		!grp.IsIdentity(grp.Exp(d2, grp.p)) &&
		!grp.IsIdentity(grp.Exp(d2, grp.q))
}
