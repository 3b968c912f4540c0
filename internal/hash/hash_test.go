package hash

import (
	"math/big"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHash_WriteAny(t *testing.T) {
	testFunc := func(vs ...interface{}) error {
		h := New("test")
		for _, v := range vs {
			if err := h.WriteAny(v); err != nil {
				return err
			}
		}
		return nil
	}
	b := big.NewInt(35)
	n := new(saferith.Nat).SetBig(b, b.BitLen())

	assert.NoError(t, testFunc(b, n))
	assert.NoError(t, testFunc([]byte{1, 4, 6}, "round"))
	assert.NoError(t, testFunc(BytesWithDomain{TheDomain: "custom", Bytes: []byte{7}}))

	var nilInt *big.Int
	assert.Error(t, testFunc(nilInt))
	assert.Error(t, testFunc(big.NewInt(-1)))
	assert.Error(t, testFunc(3.5))
}

func TestHash_WriteAny_Collision(t *testing.T) {
	sum := func(vs ...interface{}) []byte {
		h := New("test")
		require.NoError(t, h.WriteAny(vs...))
		return h.Sum()
	}

	assert.NotEqual(t, sum([]byte("ab"), []byte("c")), sum([]byte("a"), []byte("bc")))
	assert.NotEqual(t, sum([]byte("abc")), sum("abc"))
	assert.Equal(t, sum(big.NewInt(7), "x"), sum(big.NewInt(7), "x"))
}

func TestHash_Domain(t *testing.T) {
	h1 := New("one")
	h2 := New("two")
	require.NoError(t, h1.WriteAny([]byte{1}))
	require.NoError(t, h2.WriteAny([]byte{1}))
	assert.NotEqual(t, h1.Sum(), h2.Sum())
	assert.Len(t, h1.Sum(), DigestLengthBytes)
}

func TestHash_Clone(t *testing.T) {
	h := New("clone")
	require.NoError(t, h.WriteAny("prefix"))
	c := h.Clone()
	require.NoError(t, c.WriteAny("suffix"))
	assert.NotEqual(t, h.Sum(), c.Sum())
}
