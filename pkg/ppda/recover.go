package ppda

import (
	"fmt"

	"github.com/taurusgroup/ppda/pkg/binding"
	"github.com/taurusgroup/ppda/pkg/group"
	"github.com/taurusgroup/ppda/pkg/keys"
	"github.com/taurusgroup/ppda/pkg/pool"
)

// Aggregates are the statistics recovered from a round.
type Aggregates struct {
	// LowSum is the sum of the readings at or below the threshold.
	LowSum uint64
	// LowCount is the number of readings at or below the threshold.
	LowCount uint64
	// HighSum is the sum of the readings above the threshold.
	HighSum uint64
}

func (a Aggregates) String() string {
	return fmt.Sprintf("low sum %d, low count %d, high sum %d", a.LowSum, a.LowCount, a.HighSum)
}

// Expected computes the aggregates directly from the plaintext readings.
func Expected(readings []uint64, threshold uint64) Aggregates {
	var a Aggregates
	for _, m := range readings {
		if IsLow(m, threshold) {
			a.LowSum += m
			a.LowCount++
		} else {
			a.HighSum += m
		}
	}
	return a
}

// Recover removes the masks from the aggregate ciphertext agg using the
// aggregator's share, and recovers the aggregates with two bounded searches.
//
//	D  = C⋅Bˣ⁰ = g^lowSum ⋅ h₁^lowCount ⋅ h₀^highSum
//	D₁ = Dᵖ = h₁^(lowSum + p⋅lowCount)
//	D₂ = D⋅(g^lowSum ⋅ h₁^lowCount)⁻¹ = h₀^highSum
//
// ErrAggregateNotFound is returned if either search exhausts bounds.
func Recover(grp *group.Parameters, share *keys.Share, b *binding.Binding, agg *Ciphertext, bounds SearchBounds, pl *pool.Pool) (*Aggregates, error) {
	if share == nil || share.X == nil || !share.IsAggregator() {
		return nil, fmt.Errorf("ppda: recover: not the aggregator share: %w", ErrInvalidParticipant)
	}
	if err := bounds.Validate(); err != nil {
		return nil, err
	}
	if err := agg.Validate(grp); err != nil {
		return nil, err
	}

	d := grp.Mul(agg.c, grp.Exp(b.Element(), share.X))

	d1 := grp.Exp(d, grp.PNat())
	lowSum, lowCount, ok := searchLow(grp, d1, bounds, pl)
	if !ok {
		return nil, fmt.Errorf("ppda: low readings not within %d users × %d: %w", bounds.Users, bounds.Range, ErrAggregateNotFound)
	}

	low := grp.Mul(grp.ExpUint64(grp.G(), lowSum), grp.ExpUint64(grp.H1(), lowCount))
	d2 := grp.Mul(d, grp.Inverse(low))
	highSum, ok := searchHigh(grp, d2, bounds, pl)
	if !ok {
		return nil, fmt.Errorf("ppda: high readings not within %d: %w", bounds.MaxSum(), ErrAggregateNotFound)
	}

	return &Aggregates{
		LowSum:   lowSum,
		LowCount: lowCount,
		HighSum:  highSum,
	}, nil
}
