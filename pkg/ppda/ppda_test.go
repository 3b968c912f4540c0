package ppda

import (
	"crypto/rand"
	"fmt"
	"math"
	mrand "math/rand"
	"sync"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/ppda/internal/test"
	"github.com/taurusgroup/ppda/pkg/binding"
	"github.com/taurusgroup/ppda/pkg/group"
	"github.com/taurusgroup/ppda/pkg/keys"
	"github.com/taurusgroup/ppda/pkg/pool"
)

const testRound = "2016-05-04 10:11:12"

func setup(t testing.TB, participants int) (*group.Parameters, *keys.SecretKeySet, *binding.Binding) {
	grp := test.Group(t)
	ks, err := keys.Generate(rand.Reader, grp, participants)
	require.NoError(t, err)
	return grp, ks, binding.Bind(testRound)
}

func encryptAll(t testing.TB, grp *group.Parameters, ks *keys.SecretKeySet, b *binding.Binding, threshold uint64, readings []uint64) []*Ciphertext {
	cts := make([]*Ciphertext, len(readings))
	for i, m := range readings {
		share, err := ks.Participant(i + 1)
		require.NoError(t, err)
		cts[i], err = Encrypt(grp, share, b, threshold, m)
		require.NoError(t, err)
	}
	return cts
}

func roundTrip(t testing.TB, grp *group.Parameters, ks *keys.SecretKeySet, b *binding.Binding, threshold uint64, readings []uint64, bounds SearchBounds, pl *pool.Pool) (*Aggregates, error) {
	cts := encryptAll(t, grp, ks, b, threshold, readings)
	agg, err := Aggregate(grp, cts...)
	require.NoError(t, err)
	return Recover(grp, ks.Aggregator(), b, agg, bounds, pl)
}

func TestRecover_Scenario(t *testing.T) {
	grp, ks, b := setup(t, 3)

	result, err := roundTrip(t, grp, ks, b, 5, []uint64{2, 8, 5}, SearchBounds{Users: 3, Range: 10}, nil)
	require.NoError(t, err)
	assert.Equal(t, Aggregates{LowSum: 7, LowCount: 2, HighSum: 8}, *result)
}

func TestRecover_Exhaustive(t *testing.T) {
	const (
		participants = 3
		threshold    = 1
		max          = 4
	)
	grp, ks, b := setup(t, participants)
	bounds := SearchBounds{Users: participants, Range: max}

	readings := make([]uint64, participants)
	for combo := 0; combo < max*max*max; combo++ {
		c := combo
		for i := range readings {
			readings[i] = uint64(c % max)
			c /= max
		}
		result, err := roundTrip(t, grp, ks, b, threshold, readings, bounds, nil)
		require.NoError(t, err, "readings %v", readings)
		require.Equal(t, Expected(readings, threshold), *result, "readings %v", readings)
	}
}

func TestRecover_Random(t *testing.T) {
	const (
		participants = 5
		threshold    = 4
		max          = 10
	)
	grp, ks, b := setup(t, participants)
	bounds := SearchBounds{Users: participants, Range: max}
	r := mrand.New(mrand.NewSource(0))

	pl := pool.NewPool(0)
	defer pl.TearDown()

	for i := 0; i < 25; i++ {
		readings := make([]uint64, participants)
		for j := range readings {
			readings[j] = uint64(r.Intn(max))
		}
		cts := encryptAll(t, grp, ks, b, threshold, readings)
		agg, err := Aggregate(grp, cts...)
		require.NoError(t, err)

		sequential, err := Recover(grp, ks.Aggregator(), b, agg, bounds, nil)
		require.NoError(t, err, "readings %v", readings)
		parallel, err := Recover(grp, ks.Aggregator(), b, agg, bounds, pl)
		require.NoError(t, err, "readings %v", readings)

		assert.Equal(t, Expected(readings, threshold), *sequential, "readings %v", readings)
		assert.Equal(t, *sequential, *parallel)
	}
}

func TestRecover_DefaultBounds(t *testing.T) {
	grp, ks, b := setup(t, 10)
	pl := pool.NewPool(0)
	defer pl.TearDown()

	readings := []uint64{0, 9, 3, 7, 7, 1, 5, 2, 9, 4}
	result, err := roundTrip(t, grp, ks, b, 4, readings, DefaultSearchBounds(), pl)
	require.NoError(t, err)
	assert.Equal(t, Expected(readings, 4), *result)
}

func TestAggregate_Commutative(t *testing.T) {
	grp, ks, b := setup(t, 4)
	readings := []uint64{1, 6, 3, 9}
	cts := encryptAll(t, grp, ks, b, 3, readings)

	reference, err := Aggregate(grp, cts...)
	require.NoError(t, err)

	r := mrand.New(mrand.NewSource(1))
	for i := 0; i < 10; i++ {
		shuffled := append([]*Ciphertext(nil), cts...)
		r.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		agg, err := Aggregate(grp, shuffled...)
		require.NoError(t, err)
		assert.True(t, reference.Equal(agg))

		result, err := Recover(grp, ks.Aggregator(), b, agg, SearchBounds{Users: 4, Range: 10}, nil)
		require.NoError(t, err)
		assert.Equal(t, Aggregates{LowSum: 4, LowCount: 2, HighSum: 15}, *result)
	}
}

func TestAggregator_Streaming(t *testing.T) {
	grp, ks, b := setup(t, 6)
	readings := []uint64{1, 2, 3, 4, 5, 6}
	cts := encryptAll(t, grp, ks, b, 3, readings)
	reference, err := Aggregate(grp, cts...)
	require.NoError(t, err)

	// one goroutine per ciphertext
	a := NewAggregator(grp)
	var wg sync.WaitGroup
	for _, ct := range cts {
		ct := ct
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, a.Add(ct))
		}()
	}
	wg.Wait()
	assert.Equal(t, len(cts), a.Count())
	assert.True(t, reference.Equal(a.Result()))

	// tree reduction
	left, right := NewAggregator(grp), NewAggregator(grp)
	require.NoError(t, left.Add(cts[:2]...))
	require.NoError(t, right.Add(cts[2:]...))
	require.NoError(t, left.Merge(right))
	assert.Equal(t, len(cts), left.Count())
	assert.True(t, reference.Equal(left.Result()))
	assert.Error(t, left.Merge(left))

	empty := NewAggregator(grp)
	assert.True(t, grp.IsIdentity(empty.Result().Element()))
}

func TestAggregator_Invalid(t *testing.T) {
	grp, ks, b := setup(t, 2)
	cts := encryptAll(t, grp, ks, b, 3, []uint64{1, 2})

	a := NewAggregator(grp)
	zero := &Ciphertext{c: new(saferith.Nat).SetUint64(0)}
	tooLarge := &Ciphertext{c: grp.Modulus().Nat()}
	for _, bad := range []*Ciphertext{nil, zero, tooLarge} {
		err := a.Add(cts[0], bad)
		assert.ErrorIs(t, err, ErrInvalidCiphertext)
	}
	assert.Zero(t, a.Count(), "nothing should be added when one ciphertext is invalid")

	_, err := Aggregate(grp, cts[1], nil)
	assert.ErrorIs(t, err, ErrInvalidCiphertext)
}

func TestEncrypt_ThresholdBoundary(t *testing.T) {
	grp, ks, b := setup(t, 1)
	const threshold = 5
	bounds := SearchBounds{Users: 1, Range: 10}

	atThreshold, err := roundTrip(t, grp, ks, b, threshold, []uint64{threshold}, bounds, nil)
	require.NoError(t, err)
	assert.Equal(t, Aggregates{LowSum: threshold, LowCount: 1}, *atThreshold)

	above, err := roundTrip(t, grp, ks, b, threshold, []uint64{threshold + 1}, bounds, nil)
	require.NoError(t, err)
	assert.Equal(t, Aggregates{HighSum: threshold + 1}, *above)

	assert.True(t, IsLow(threshold, threshold))
	assert.False(t, IsLow(threshold+1, threshold))
	assert.True(t, IsLow(0, 0))
}

func TestEncrypt_Hiding(t *testing.T) {
	grp, ks, _ := setup(t, 2)
	share, err := ks.Participant(1)
	require.NoError(t, err)

	// the same reading encrypts differently in different rounds
	c1, err := Encrypt(grp, share, binding.Bind("round 1"), 5, 3)
	require.NoError(t, err)
	c2, err := Encrypt(grp, share, binding.Bind("round 2"), 5, 3)
	require.NoError(t, err)
	assert.False(t, c1.Equal(c2))

	// without the mask, a low reading would be gᵐ⋅h₁
	unmasked := grp.Mul(grp.ExpUint64(grp.G(), 3), grp.H1())
	assert.False(t, grp.Equal(unmasked, c1.Element()))
}

func TestEncrypt_WrongShare(t *testing.T) {
	grp, ks, b := setup(t, 2)

	_, err := Encrypt(grp, ks.Aggregator(), b, 5, 3)
	assert.ErrorIs(t, err, ErrInvalidParticipant)
	_, err = Encrypt(grp, nil, b, 5, 3)
	assert.ErrorIs(t, err, ErrInvalidParticipant)
}

func TestRecover_WrongShare(t *testing.T) {
	grp, ks, b := setup(t, 2)
	cts := encryptAll(t, grp, ks, b, 5, []uint64{1, 2})
	agg, err := Aggregate(grp, cts...)
	require.NoError(t, err)

	share, _ := ks.Participant(1)
	_, err = Recover(grp, share, b, agg, DefaultSearchBounds(), nil)
	assert.ErrorIs(t, err, ErrInvalidParticipant)
}

func TestRecover_BoundsTooSmall(t *testing.T) {
	grp, ks, b := setup(t, 3)

	// three low readings cannot be found with a single user
	_, err := roundTrip(t, grp, ks, b, 5, []uint64{3, 3, 3}, SearchBounds{Users: 1, Range: 10}, nil)
	assert.ErrorIs(t, err, ErrAggregateNotFound)

	// high sum 17 > 3⋅5
	_, err = roundTrip(t, grp, ks, b, 5, []uint64{8, 9, 0}, SearchBounds{Users: 3, Range: 5}, nil)
	assert.ErrorIs(t, err, ErrAggregateNotFound)

	// low sum 12 > 2⋅5
	_, err = roundTrip(t, grp, ks, b, 6, []uint64{6, 6, 9}, SearchBounds{Users: 2, Range: 5}, nil)
	assert.ErrorIs(t, err, ErrAggregateNotFound)
}

func TestRecover_BindingMismatch(t *testing.T) {
	grp, ks, b := setup(t, 3)
	cts := encryptAll(t, grp, ks, b, 5, []uint64{1, 2, 7})
	agg, err := Aggregate(grp, cts...)
	require.NoError(t, err)

	other := binding.Bind("2016-05-04 10:11:13")
	_, err = Recover(grp, ks.Aggregator(), other, agg, SearchBounds{Users: 3, Range: 10}, nil)
	assert.ErrorIs(t, err, ErrAggregateNotFound)
}

func TestRecover_FreshKeysEachRound(t *testing.T) {
	grp := test.Group(t)
	readings := []uint64{4, 0, 8}
	for round := 0; round < 3; round++ {
		ks, err := keys.Generate(rand.Reader, grp, len(readings))
		require.NoError(t, err)
		b := binding.BindWith(binding.BLAKE3, fmt.Sprintf("round %d", round))
		result, err := roundTrip(t, grp, ks, b, 4, readings, SearchBounds{Users: 3, Range: 10}, nil)
		require.NoError(t, err)
		assert.Equal(t, Aggregates{LowSum: 4, LowCount: 2, HighSum: 8}, *result)
	}
}

func TestSearchBounds_Validate(t *testing.T) {
	assert.NoError(t, DefaultSearchBounds().Validate())
	assert.Equal(t, uint64(5000), DefaultSearchBounds().MaxSum())
	assert.NoError(t, SearchBounds{}.Validate())
	assert.ErrorIs(t, SearchBounds{Users: math.MaxUint64, Range: 2}.Validate(), ErrInvalidConfiguration)
	assert.ErrorIs(t, SearchBounds{Users: math.MaxUint64, Range: 1}.Validate(), ErrInvalidConfiguration)
	assert.ErrorIs(t, SearchBounds{Users: 1 << 32, Range: 1 << 32}.Validate(), ErrInvalidConfiguration)
}

func TestSearchHigh_Chunks(t *testing.T) {
	grp := test.Group(t)
	bounds := SearchBounds{Users: 7, Range: 3}
	for _, workers := range []int{1, 3, 8, 64} {
		pl := pool.NewPool(workers)
		for _, want := range []uint64{0, 1, 10, 20, 21} {
			got, ok := searchHigh(grp, grp.ExpUint64(grp.H0(), want), bounds, pl)
			require.True(t, ok, "workers %d, sum %d", workers, want)
			assert.Equal(t, want, got)
		}
		_, ok := searchHigh(grp, grp.ExpUint64(grp.H0(), 22), bounds, pl)
		assert.False(t, ok)
		pl.TearDown()
	}
}

func TestCiphertext_MarshalBinary(t *testing.T) {
	grp, ks, b := setup(t, 1)
	cts := encryptAll(t, grp, ks, b, 5, []uint64{4})

	data, err := cts[0].MarshalBinary()
	require.NoError(t, err)
	var decoded Ciphertext
	require.NoError(t, decoded.UnmarshalBinary(data))
	assert.True(t, cts[0].Equal(&decoded))
	assert.NoError(t, decoded.Validate(grp))
	assert.True(t, cts[0].Clone().Equal(cts[0]))

	assert.Error(t, decoded.UnmarshalBinary([]byte{0xa0}))
	_, err = (&Ciphertext{}).MarshalBinary()
	assert.ErrorIs(t, err, ErrInvalidCiphertext)
}

func TestExpected(t *testing.T) {
	assert.Equal(t, Aggregates{LowSum: 7, LowCount: 2, HighSum: 8}, Expected([]uint64{2, 8, 5}, 5))
	assert.Equal(t, Aggregates{}, Expected(nil, 5))
	assert.Equal(t, "low sum 7, low count 2, high sum 8", Expected([]uint64{2, 8, 5}, 5).String())
}

var resultAggregates *Aggregates

func BenchmarkRecover(b *testing.B) {
	grp, ks, bind := setup(b, 10)
	readings := []uint64{0, 9, 3, 7, 7, 1, 5, 2, 9, 4}
	cts := encryptAll(b, grp, ks, bind, 4, readings)
	agg, err := Aggregate(grp, cts...)
	require.NoError(b, err)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		resultAggregates, _ = Recover(grp, ks.Aggregator(), bind, agg, SearchBounds{Users: 10, Range: 10}, nil)
	}
}
