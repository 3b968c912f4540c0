package ppda

import (
	"fmt"

	"github.com/taurusgroup/ppda/pkg/binding"
	"github.com/taurusgroup/ppda/pkg/group"
	"github.com/taurusgroup/ppda/pkg/keys"
)

// IsLow returns true if reading is classified below the threshold, i.e. reading ⩽ threshold.
func IsLow(reading, threshold uint64) bool {
	return reading <= threshold
}

// Encrypt returns the ciphertext of a participant's reading for the round bound to b.
//
//	reading ⩽ threshold: c = gᵐ⋅h₁⋅Bˣ (mod m)
//	reading > threshold: c = h₀ᵐ⋅Bˣ (mod m)
//
// where x is the participant's secret exponent. The lone h₁ factor counts the
// participant once among the low readings.
func Encrypt(grp *group.Parameters, share *keys.Share, b *binding.Binding, threshold, reading uint64) (*Ciphertext, error) {
	if share == nil || share.X == nil {
		return nil, fmt.Errorf("ppda: encrypt: nil share: %w", ErrInvalidParticipant)
	}
	if share.IsAggregator() {
		return nil, fmt.Errorf("ppda: encrypt: aggregator share: %w", ErrInvalidParticipant)
	}

	// Bˣ
	mask := grp.Exp(b.Element(), share.X)

	c := mask
	if IsLow(reading, threshold) {
		c = grp.Mul(c, grp.ExpUint64(grp.G(), reading))
		c = grp.Mul(c, grp.H1())
	} else {
		c = grp.Mul(c, grp.ExpUint64(grp.H0(), reading))
	}
	return &Ciphertext{c: c}, nil
}
