package ppda

import (
	"errors"
	"sync"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/ppda/pkg/group"
)

// Aggregator multiplies ciphertexts together as they arrive.
//
// The product is commutative and associative, so ciphertexts can be added in
// any order, from several goroutines, and partial aggregators can be merged.
type Aggregator struct {
	grp *group.Parameters

	mtx   sync.Mutex
	acc   *saferith.Nat
	count int
}

// NewAggregator returns an Aggregator holding the empty product.
func NewAggregator(grp *group.Parameters) *Aggregator {
	return &Aggregator{
		grp: grp,
		acc: grp.Identity(),
	}
}

// Add multiplies every ciphertext into the aggregate.
// If any of them is invalid, none of them is added.
func (a *Aggregator) Add(cts ...*Ciphertext) error {
	for _, ct := range cts {
		if err := ct.Validate(a.grp); err != nil {
			return err
		}
	}
	// multiply outside of the lock, so concurrent callers only wait on a single product.
	product := a.grp.Identity()
	for _, ct := range cts {
		product = a.grp.Mul(product, ct.c)
	}

	a.mtx.Lock()
	defer a.mtx.Unlock()
	a.acc = a.grp.Mul(a.acc, product)
	a.count += len(cts)
	return nil
}

// Merge multiplies the aggregate of other into a.
func (a *Aggregator) Merge(other *Aggregator) error {
	if a == other {
		return errors.New("ppda: cannot merge an aggregator with itself")
	}
	other.mtx.Lock()
	acc, count := other.acc, other.count
	other.mtx.Unlock()

	a.mtx.Lock()
	defer a.mtx.Unlock()
	a.acc = a.grp.Mul(a.acc, acc)
	a.count += count
	return nil
}

// Count returns the number of ciphertexts aggregated so far.
func (a *Aggregator) Count() int {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	return a.count
}

// Result returns the current aggregate ciphertext.
func (a *Aggregator) Result() *Ciphertext {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	return &Ciphertext{c: new(saferith.Nat).SetNat(a.acc)}
}

// Aggregate returns the product of all the ciphertexts, C = ∏ cᵢ (mod m).
func Aggregate(grp *group.Parameters, cts ...*Ciphertext) (*Ciphertext, error) {
	a := NewAggregator(grp)
	if err := a.Add(cts...); err != nil {
		return nil, err
	}
	return a.Result(), nil
}
