package binding

import (
	"crypto/sha256"
	"fmt"
	"math/big"
	"strings"

	"github.com/cronokirby/saferith"
	"github.com/zeebo/blake3"
	"golang.org/x/crypto/sha3"
)

// Hash selects the 256 bit hash function mapping round identifiers to group elements.
type Hash uint8

const (
	// SHA256 is the default.
	SHA256 Hash = iota
	SHA3_256
	BLAKE3
)

// DigestBits is the size of every supported digest.
const DigestBits = 256

var hashNames = map[Hash]string{
	SHA256:   "sha256",
	SHA3_256: "sha3-256",
	BLAKE3:   "blake3",
}

func (h Hash) String() string {
	if name, ok := hashNames[h]; ok {
		return name
	}
	return fmt.Sprintf("Hash(%d)", uint8(h))
}

// ParseHash returns the Hash with the given name, ignoring case.
// The empty string selects SHA256.
func ParseHash(name string) (Hash, error) {
	if name == "" {
		return SHA256, nil
	}
	for h, n := range hashNames {
		if strings.EqualFold(n, name) {
			return h, nil
		}
	}
	return 0, fmt.Errorf("binding: unknown hash %q", name)
}

// Sum returns the digest of data.
func (h Hash) Sum(data []byte) [32]byte {
	switch h {
	case SHA256:
		return sha256.Sum256(data)
	case SHA3_256:
		return sha3.Sum256(data)
	case BLAKE3:
		return blake3.Sum256(data)
	default:
		panic(fmt.Sprintf("binding: unknown hash %d", uint8(h)))
	}
}

// Binding is the element B = H(t) of a round t.
//
// Every participant and the aggregator must derive it from the same round
// identifier and hash. A mismatch is not detected: the recovered aggregates are
// simply wrong, or not found.
type Binding struct {
	roundID string
	hash    Hash
	element *saferith.Nat
}

// Bind hashes roundID with SHA256.
func Bind(roundID string) *Binding {
	return BindWith(SHA256, roundID)
}

// BindWith hashes the UTF-8 bytes of roundID with h, and interprets the digest
// as a big endian integer.
func BindWith(h Hash, roundID string) *Binding {
	digest := h.Sum([]byte(roundID))
	return &Binding{
		roundID: roundID,
		hash:    h,
		element: new(saferith.Nat).SetBytes(digest[:]),
	}
}

// RoundID returns the identifier this binding was derived from.
func (b *Binding) RoundID() string { return b.roundID }

// Hash returns the function used to derive the binding.
func (b *Binding) Hash() Hash { return b.hash }

// Element returns B.
// WARNING: Do not modify the returned value.
func (b *Binding) Element() *saferith.Nat { return b.element }

// Big returns a copy of B as a big.Int.
func (b *Binding) Big() *big.Int { return b.element.Big() }

// Equal returns true if both bindings are the same element.
func (b *Binding) Equal(other *Binding) bool {
	return b.element.Eq(other.element) == 1
}
