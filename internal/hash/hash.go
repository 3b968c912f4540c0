package hash

import (
	"fmt"
	"io"
	"math/big"

	"github.com/cronokirby/saferith"
	"github.com/zeebo/blake3"
)

// DigestLengthBytes is the length of the output of Sum.
const DigestLengthBytes = 32

// Hash is a BLAKE3 transcript used to fingerprint public values.
//
// Every value written is wrapped with its domain, so that the concatenation of
// different values can never collide with a single longer value.
type Hash struct {
	h *blake3.Hasher
}

// New creates a Hash whose state is initialized with the given domain.
func New(domain string) *Hash {
	hash := &Hash{h: blake3.New()}
	_ = writeWithDomain(hash.h, BytesWithDomain{
		TheDomain: "init",
		Bytes:     []byte(domain),
	})
	return hash
}

// Digest returns a reader for the current output of the function.
//
// This finalizes the current state of the hash, and returns what's
// essentially a stream of random bytes.
func (hash *Hash) Digest() io.Reader {
	return hash.h.Digest()
}

// Sum returns a slice of length DigestLengthBytes resulting from the current hash state.
func (hash *Hash) Sum() []byte {
	out := make([]byte, DigestLengthBytes)
	if _, err := io.ReadFull(hash.Digest(), out); err != nil {
		panic(fmt.Sprintf("hash.Sum: internal hash failure: %v", err))
	}
	return out
}

// WriteAny takes many different data types and writes them to the hash state.
//
// Currently supported types:
//
//   - []byte
//   - string
//   - *big.Int (non negative)
//   - *saferith.Nat
//   - WriterToWithDomain
func (hash *Hash) WriteAny(data ...interface{}) error {
	var toWrite WriterToWithDomain
	for _, d := range data {
		switch t := d.(type) {
		case []byte:
			toWrite = BytesWithDomain{TheDomain: "[]byte", Bytes: t}
		case string:
			toWrite = BytesWithDomain{TheDomain: "string", Bytes: []byte(t)}
		case *big.Int:
			if t == nil {
				return fmt.Errorf("hash.Hash: write *big.Int: nil")
			}
			if t.Sign() < 0 {
				return fmt.Errorf("hash.Hash: write *big.Int: negative")
			}
			toWrite = BytesWithDomain{TheDomain: "big.Int", Bytes: t.Bytes()}
		case *saferith.Nat:
			if t == nil {
				return fmt.Errorf("hash.Hash: write *saferith.Nat: nil")
			}
			toWrite = BytesWithDomain{TheDomain: "saferith.Nat", Bytes: t.Bytes()}
		case WriterToWithDomain:
			toWrite = t
		default:
			return fmt.Errorf("hash.Hash: unsupported type %T", d)
		}
		if err := writeWithDomain(hash.h, toWrite); err != nil {
			return fmt.Errorf("hash.Hash: write %s: %w", toWrite.Domain(), err)
		}
	}
	return nil
}

// Clone returns a copy of the Hash in its current state.
func (hash *Hash) Clone() *Hash {
	return &Hash{h: hash.h.Clone()}
}
