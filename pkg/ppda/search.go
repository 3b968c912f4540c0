package ppda

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/ppda/internal/params"
	"github.com/taurusgroup/ppda/pkg/group"
	"github.com/taurusgroup/ppda/pkg/pool"
)

// SearchBounds limits the discrete logarithm searches of Recover.
//
// The low count is searched in [0, Users], and the low and high sums in
// [0, Users⋅Range]. Users must be at least the number of participants, and
// Range at least the largest possible reading.
type SearchBounds struct {
	Users uint64
	Range uint64
}

// DefaultSearchBounds returns bounds for 500 users with readings up to 10.
func DefaultSearchBounds() SearchBounds {
	return SearchBounds{
		Users: params.DefaultSearchUsers,
		Range: params.DefaultSearchRange,
	}
}

// Validate checks that Users⋅Range + 1 does not overflow.
func (sb SearchBounds) Validate() error {
	hi, lo := bits.Mul64(sb.Users, sb.Range)
	if hi != 0 || lo == math.MaxUint64 || sb.Users == math.MaxUint64 {
		return fmt.Errorf("ppda: search bounds %d×%d overflow: %w", sb.Users, sb.Range, ErrInvalidConfiguration)
	}
	return nil
}

// MaxSum returns Users⋅Range, the largest sum searched for.
func (sb SearchBounds) MaxSum() uint64 {
	return sb.Users * sb.Range
}

// scan walks start⋅stepᵏ for k = 0, …, length-1, and returns the first k for which
// the value equals target.
func scan(grp *group.Parameters, start, step, target *saferith.Nat, length uint64) (uint64, bool) {
	current := start
	for k := uint64(0); k < length; k++ {
		if current.Eq(target) == 1 {
			return k, true
		}
		current = grp.Mul(current, step)
	}
	return 0, false
}

// searchLow finds the first (lowCount, lowSum), with lowSum varying fastest, such that
//
//	h₁^(lowSum + p⋅lowCount) = target.
//
// Every lowCount is a row, scanned by one worker of pl.
func searchLow(grp *group.Parameters, target *saferith.Nat, bounds SearchBounds, pl *pool.Pool) (lowSum, lowCount uint64, ok bool) {
	rows := bounds.Users + 1
	if rows > math.MaxInt {
		return 0, 0, false
	}
	length := bounds.MaxSum() + 1
	// h₁ᵖ moves from one row to the next
	rowStep := grp.Exp(grp.H1(), grp.PNat())
	sums := make([]uint64, rows)

	row, ok := pl.Find(int(rows), func(i int) bool {
		start := grp.ExpUint64(rowStep, uint64(i))
		sum, found := scan(grp, start, grp.H1(), target, length)
		sums[i] = sum
		return found
	})
	if !ok {
		return 0, 0, false
	}
	return sums[row], uint64(row), true
}

// searchHigh finds the first highSum ∈ [0, Users⋅Range] such that h₀^highSum = target.
//
// The range is cut into consecutive chunks, scanned concurrently by pl.
func searchHigh(grp *group.Parameters, target *saferith.Nat, bounds SearchBounds, pl *pool.Pool) (uint64, bool) {
	length := bounds.MaxSum() + 1
	chunks := uint64(4 * pl.Workers())
	if chunks > length {
		chunks = length
	}
	chunkLength := (length + chunks - 1) / chunks
	found := make([]uint64, chunks)

	chunk, ok := pl.Find(int(chunks), func(c int) bool {
		first := uint64(c) * chunkLength
		if first >= length {
			return false
		}
		n := chunkLength
		if length-first < n {
			n = length - first
		}
		k, ok := scan(grp, grp.ExpUint64(grp.H0(), first), grp.H0(), target, n)
		found[c] = first + k
		return ok
	})
	if !ok {
		return 0, false
	}
	return found[chunk], true
}
