package group

import (
	"fmt"
	"math/big"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/ppda/internal/hash"
	"github.com/taurusgroup/ppda/internal/params"
)

type Error string

const (
	// ErrInvalidConfiguration is returned when parameters are requested with a
	// security level below params.MinSecurityBits.
	ErrInvalidConfiguration Error = "invalid configuration"
	// ErrInvalidParameters is returned when a set of parameters fails validation.
	ErrInvalidParameters Error = "invalid parameters"
	// ErrInvalidElement is returned for values outside of [1, modulus).
	ErrInvalidElement Error = "invalid group element"
)

func (e Error) Error() string {
	return fmt.Sprintf("group: %s", string(e))
}

// Parameters is a composite order subgroup of ℤₘˣ, where m = 2⋅p⋅q + 1 is prime.
//
//   - G generates the subgroup of order n = p⋅q.
//   - H0 = G^q has order p. It carries the readings above the threshold.
//   - H1 = Gᵖ has order q. It marks every reading at or below the threshold.
//
// Parameters are immutable once created, and safe for concurrent use.
type Parameters struct {
	pBig, qBig *big.Int
	p, q       *saferith.Nat

	// n = p⋅q, the order of G
	n *saferith.Modulus
	// 2⋅n = m - 1, the modulus for secret keys
	keys *saferith.Modulus
	// m = 2⋅p⋅q + 1
	modulus    *saferith.Modulus
	modulusBig *big.Int

	g, h0, h1 *saferith.Nat
	one       *saferith.Nat
}

// New returns the Parameters generated by g, for the primes p and q.
// It returns an error if the result does not pass Validate.
func New(p, q, g *big.Int) (*Parameters, error) {
	if p == nil || q == nil || g == nil {
		return nil, fmt.Errorf("nil value: %w", ErrInvalidParameters)
	}
	if p.Sign() <= 0 || q.Sign() <= 0 || g.Sign() <= 0 {
		return nil, fmt.Errorf("non positive value: %w", ErrInvalidParameters)
	}
	grp := derive(p, q, g)
	if err := grp.Validate(); err != nil {
		return nil, err
	}
	return grp, nil
}

// derive computes every cached value from p, q and g, without checking them.
func derive(p, q, g *big.Int) *Parameters {
	pBig := new(big.Int).Set(p)
	qBig := new(big.Int).Set(q)

	nBig := new(big.Int).Mul(pBig, qBig)
	keysBig := new(big.Int).Lsh(nBig, 1)
	modulusBig := new(big.Int).Add(keysBig, big.NewInt(1))

	modulus := saferith.ModulusFromNat(natFromBig(modulusBig))
	pNat := natFromBig(pBig)
	qNat := natFromBig(qBig)
	gNat := new(saferith.Nat).Mod(natFromBig(g), modulus)

	return &Parameters{
		pBig:       pBig,
		qBig:       qBig,
		p:          pNat,
		q:          qNat,
		n:          saferith.ModulusFromNat(natFromBig(nBig)),
		keys:       saferith.ModulusFromNat(natFromBig(keysBig)),
		modulus:    modulus,
		modulusBig: modulusBig,
		g:          gNat,
		h0:         new(saferith.Nat).Exp(gNat, qNat, modulus),
		h1:         new(saferith.Nat).Exp(gNat, pNat, modulus),
		one:        new(saferith.Nat).SetUint64(1),
	}
}

func natFromBig(x *big.Int) *saferith.Nat {
	return new(saferith.Nat).SetBig(x, x.BitLen())
}

// Validate checks that
//   - p, q and m = 2⋅p⋅q+1 are prime, with p ≠ q and ⌊p/q⌋ > 2,
//   - G has order exactly p⋅q,
//   - H1 = Gᵖ has order q and H0 = G^q has order p.
func (grp *Parameters) Validate() error {
	if grp.pBig.Cmp(grp.qBig) == 0 {
		return fmt.Errorf("p = q: %w", ErrInvalidParameters)
	}
	if !ratioLargeEnough(grp.pBig, grp.qBig) {
		return fmt.Errorf("p/q ⩽ %d: %w", params.MinPQRatio, ErrInvalidParameters)
	}
	if !grp.pBig.ProbablyPrime(params.PrimalityIterations) {
		return fmt.Errorf("p is not prime: %w", ErrInvalidParameters)
	}
	if !grp.qBig.ProbablyPrime(params.PrimalityIterations) {
		return fmt.Errorf("q is not prime: %w", ErrInvalidParameters)
	}
	if !grp.modulusBig.ProbablyPrime(params.PrimalityIterations) {
		return fmt.Errorf("2pq+1 is not prime: %w", ErrInvalidParameters)
	}

	if grp.g.EqZero() == 1 || grp.IsIdentity(grp.g) {
		return fmt.Errorf("g is trivial: %w", ErrInvalidParameters)
	}
	// gⁿ = 1 with gᵖ ≠ 1 and g^q ≠ 1 means ord(g) = p⋅q
	if !grp.IsIdentity(grp.Exp(grp.g, grp.n.Nat())) {
		return fmt.Errorf("g does not have order dividing pq: %w", ErrInvalidParameters)
	}
	if grp.IsIdentity(grp.h1) || grp.IsIdentity(grp.h0) {
		return fmt.Errorf("g does not have order pq: %w", ErrInvalidParameters)
	}
	if !grp.IsIdentity(grp.Exp(grp.h1, grp.q)) {
		return fmt.Errorf("h1 does not have order q: %w", ErrInvalidParameters)
	}
	if !grp.IsIdentity(grp.Exp(grp.h0, grp.p)) {
		return fmt.Errorf("h0 does not have order p: %w", ErrInvalidParameters)
	}
	return nil
}

// ratioLargeEnough returns true if ⌊p/q⌋ > params.MinPQRatio.
func ratioLargeEnough(p, q *big.Int) bool {
	ratio := new(big.Int).Quo(p, q)
	return ratio.Cmp(big.NewInt(params.MinPQRatio)) > 0
}

// P returns a copy of the prime p, the order of H0.
func (grp *Parameters) P() *big.Int { return new(big.Int).Set(grp.pBig) }

// Q returns a copy of the prime q, the order of H1.
func (grp *Parameters) Q() *big.Int { return new(big.Int).Set(grp.qBig) }

// PNat returns p as a saferith.Nat.
// WARNING: Do not modify the returned value.
func (grp *Parameters) PNat() *saferith.Nat { return grp.p }

// Order returns n = p⋅q, the order of G.
func (grp *Parameters) Order() *saferith.Modulus { return grp.n }

// KeyModulus returns 2⋅n = m - 1. Secret keys sum to 0 modulo this value.
func (grp *Parameters) KeyModulus() *saferith.Modulus { return grp.keys }

// Modulus returns the prime m = 2⋅p⋅q + 1.
func (grp *Parameters) Modulus() *saferith.Modulus { return grp.modulus }

// G returns the generator of order p⋅q.
// WARNING: Do not modify the returned value.
func (grp *Parameters) G() *saferith.Nat { return grp.g }

// H0 returns G^q, of order p.
// WARNING: Do not modify the returned value.
func (grp *Parameters) H0() *saferith.Nat { return grp.h0 }

// H1 returns Gᵖ, of order q.
// WARNING: Do not modify the returned value.
func (grp *Parameters) H1() *saferith.Nat { return grp.h1 }

// BitLen returns the size of the modulus in bits.
func (grp *Parameters) BitLen() int { return grp.modulus.BitLen() }

// Identity returns a new element set to 1.
func (grp *Parameters) Identity() *saferith.Nat {
	return new(saferith.Nat).SetUint64(1)
}

// IsIdentity returns true if x ≡ 1 (mod m).
func (grp *Parameters) IsIdentity(x *saferith.Nat) bool {
	return new(saferith.Nat).Mod(x, grp.modulus).Eq(grp.one) == 1
}

// Equal returns true if both elements are equal mod m.
func (grp *Parameters) Equal(x, y *saferith.Nat) bool {
	xr := new(saferith.Nat).Mod(x, grp.modulus)
	yr := new(saferith.Nat).Mod(y, grp.modulus)
	return xr.Eq(yr) == 1
}

// Exp returns xᵉ (mod m). The exponent's value is not leaked, only its announced length.
func (grp *Parameters) Exp(x, e *saferith.Nat) *saferith.Nat {
	xr := new(saferith.Nat).Mod(x, grp.modulus)
	return new(saferith.Nat).Exp(xr, e, grp.modulus)
}

// ExpUint64 returns xᵉ (mod m).
func (grp *Parameters) ExpUint64(x *saferith.Nat, e uint64) *saferith.Nat {
	return grp.Exp(x, new(saferith.Nat).SetUint64(e))
}

// Mul returns x⋅y (mod m).
func (grp *Parameters) Mul(x, y *saferith.Nat) *saferith.Nat {
	return new(saferith.Nat).ModMul(x, y, grp.modulus)
}

// Inverse returns x⁻¹ (mod m). x must not be 0 (mod m).
func (grp *Parameters) Inverse(x *saferith.Nat) *saferith.Nat {
	return new(saferith.Nat).ModInverse(x, grp.modulus)
}

// ValidateElement checks that x ∈ [1, m).
func (grp *Parameters) ValidateElement(x *saferith.Nat) error {
	if x == nil {
		return fmt.Errorf("nil: %w", ErrInvalidElement)
	}
	if x.EqZero() == 1 {
		return fmt.Errorf("zero: %w", ErrInvalidElement)
	}
	if _, _, lt := x.CmpMod(grp.modulus); lt != 1 {
		return fmt.Errorf("not reduced: %w", ErrInvalidElement)
	}
	return nil
}

// Fingerprint returns a BLAKE3 digest of the public values p, q, m and G.
//
// Two parties holding equal parameters obtain the same fingerprint, which can be
// logged or compared without revealing the values themselves.
func (grp *Parameters) Fingerprint() []byte {
	h := hash.New("ppda/group")
	if err := h.WriteAny(grp.pBig, grp.qBig, grp.modulusBig, grp.g); err != nil {
		panic(fmt.Sprintf("group.Fingerprint: %v", err))
	}
	return h.Sum()
}
