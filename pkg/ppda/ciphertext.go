package ppda

import (
	"encoding"
	"fmt"

	"github.com/cronokirby/saferith"
	"github.com/fxamacker/cbor/v2"
	"github.com/taurusgroup/ppda/pkg/group"
)

var (
	_ encoding.BinaryMarshaler   = (*Ciphertext)(nil)
	_ encoding.BinaryUnmarshaler = (*Ciphertext)(nil)
)

// Ciphertext is a single element of ℤₘˣ.
//
// It is either the encryption of one reading, or the product of several of them.
type Ciphertext struct {
	c *saferith.Nat
}

// Element returns the underlying group element.
// WARNING: Do not modify the returned value.
func (ct *Ciphertext) Element() *saferith.Nat {
	return ct.c
}

// Equal returns true if both ciphertexts hold the same element.
func (ct *Ciphertext) Equal(other *Ciphertext) bool {
	return ct.c.Eq(other.c) == 1
}

// Clone returns a deep copy of ct.
func (ct *Ciphertext) Clone() *Ciphertext {
	return &Ciphertext{c: new(saferith.Nat).SetNat(ct.c)}
}

// Validate checks that ct is an element of [1, m).
func (ct *Ciphertext) Validate(grp *group.Parameters) error {
	if ct == nil {
		return fmt.Errorf("nil: %w", ErrInvalidCiphertext)
	}
	if err := grp.ValidateElement(ct.c); err != nil {
		return fmt.Errorf("%v: %w", err, ErrInvalidCiphertext)
	}
	return nil
}

type ciphertextMarshal struct {
	C []byte
}

func (ct *Ciphertext) MarshalBinary() ([]byte, error) {
	if ct.c == nil {
		return nil, fmt.Errorf("ppda: marshal: %w", ErrInvalidCiphertext)
	}
	return cbor.Marshal(&ciphertextMarshal{C: ct.c.Bytes()})
}

// UnmarshalBinary decodes the element only; use Validate to check it against a group.
func (ct *Ciphertext) UnmarshalBinary(data []byte) error {
	var cm ciphertextMarshal
	if err := cbor.Unmarshal(data, &cm); err != nil {
		return fmt.Errorf("ppda: ciphertext: %w", err)
	}
	if len(cm.C) == 0 {
		return fmt.Errorf("ppda: empty: %w", ErrInvalidCiphertext)
	}
	ct.c = new(saferith.Nat).SetBytes(cm.C)
	return nil
}
