package keys

import (
	"errors"
	"fmt"
	"io"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/ppda/pkg/group"
	"github.com/taurusgroup/ppda/pkg/math/sample"
)

// AggregatorIndex is the index of the aggregator's share in a SecretKeySet.
const AggregatorIndex = 0

var (
	ErrInvalidKeySet      = errors.New("keys: invalid secret key set")
	ErrInvalidParticipant = errors.New("keys: invalid participant index")
)

// Share is the secret exponent held by a single party.
type Share struct {
	// Index is AggregatorIndex for the aggregator, and 1, …, N for participants.
	Index int
	// X is the secret exponent.
	X *saferith.Nat
}

// IsAggregator returns true if this share belongs to the aggregator.
func (s *Share) IsAggregator() bool {
	return s.Index == AggregatorIndex
}

// SecretKeySet holds the secret exponents x₀, x₁, …, x_N of a session.
//
// x₁, …, x_N are uniform in ℤₙˣ, with n = p⋅q, and x₀ = -(x₁ + … + x_N) mod 2n.
// Since the binding element lives in ℤₘˣ with m - 1 = 2n, the masks
// B^xᵢ of all parties multiply to 1.
type SecretKeySet struct {
	shares []*Share
}

// Generate samples the shares for participants parties and the aggregator.
func Generate(rand io.Reader, grp *group.Parameters, participants int) (*SecretKeySet, error) {
	if participants < 1 {
		return nil, fmt.Errorf("keys: %d participants: %w", participants, ErrInvalidParticipant)
	}
	keyModulus := grp.KeyModulus()

	shares := make([]*Share, participants+1)
	sum := new(saferith.Nat).SetUint64(0)
	for i := 1; i <= participants; i++ {
		x := sample.UnitModN(rand, grp.Order())
		shares[i] = &Share{Index: i, X: x}
		sum.ModAdd(sum, x, keyModulus)
	}
	shares[AggregatorIndex] = &Share{
		Index: AggregatorIndex,
		X:     new(saferith.Nat).ModNeg(sum, keyModulus),
	}
	return &SecretKeySet{shares: shares}, nil
}

// FromShares rebuilds a SecretKeySet, and checks it against grp.
// shares[i] must have Index i.
func FromShares(grp *group.Parameters, shares []*Share) (*SecretKeySet, error) {
	ks := &SecretKeySet{shares: shares}
	if err := ks.Validate(grp); err != nil {
		return nil, err
	}
	return ks, nil
}

// Participants returns N, the number of participant shares.
func (ks *SecretKeySet) Participants() int {
	return len(ks.shares) - 1
}

// Aggregator returns the aggregator's share x₀.
func (ks *SecretKeySet) Aggregator() *Share {
	return ks.shares[AggregatorIndex]
}

// Participant returns the share xᵢ of participant i ∈ [1, N].
func (ks *SecretKeySet) Participant(i int) (*Share, error) {
	if i < 1 || i > ks.Participants() {
		return nil, fmt.Errorf("keys: participant %d not in [1, %d]: %w", i, ks.Participants(), ErrInvalidParticipant)
	}
	return ks.shares[i], nil
}

// Validate checks that the shares are well indexed, that participant exponents
// lie in ℤₙˣ, and that Σᵢ xᵢ ≡ 0 (mod 2n).
func (ks *SecretKeySet) Validate(grp *group.Parameters) error {
	if len(ks.shares) < 2 {
		return fmt.Errorf("%d shares: %w", len(ks.shares), ErrInvalidKeySet)
	}
	keyModulus := grp.KeyModulus()
	sum := new(saferith.Nat).SetUint64(0)
	for i, s := range ks.shares {
		if s == nil || s.X == nil {
			return fmt.Errorf("share %d is nil: %w", i, ErrInvalidKeySet)
		}
		if s.Index != i {
			return fmt.Errorf("share %d has index %d: %w", i, s.Index, ErrInvalidKeySet)
		}
		if _, _, lt := s.X.CmpMod(keyModulus); lt != 1 {
			return fmt.Errorf("share %d is not reduced: %w", i, ErrInvalidKeySet)
		}
		if i != AggregatorIndex && s.X.IsUnit(grp.Order()) != 1 {
			return fmt.Errorf("share %d is not a unit mod n: %w", i, ErrInvalidKeySet)
		}
		sum.ModAdd(sum, s.X, keyModulus)
	}
	if sum.EqZero() != 1 {
		return fmt.Errorf("shares do not sum to zero: %w", ErrInvalidKeySet)
	}
	return nil
}
