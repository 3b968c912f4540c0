package group

import (
	"encoding"
	"fmt"
	"math/big"

	"github.com/fxamacker/cbor/v2"
)

var (
	_ encoding.BinaryMarshaler   = (*Parameters)(nil)
	_ encoding.BinaryUnmarshaler = (*Parameters)(nil)
)

type parametersMarshal struct {
	P, Q, G []byte
}

// MarshalBinary encodes p, q and G; everything else is derived from them.
func (grp *Parameters) MarshalBinary() ([]byte, error) {
	return cbor.Marshal(&parametersMarshal{
		P: grp.pBig.Bytes(),
		Q: grp.qBig.Bytes(),
		G: grp.g.Bytes(),
	})
}

// UnmarshalBinary decodes and validates Parameters produced by MarshalBinary.
func (grp *Parameters) UnmarshalBinary(data []byte) error {
	var pm parametersMarshal
	if err := cbor.Unmarshal(data, &pm); err != nil {
		return fmt.Errorf("group: %w", err)
	}
	decoded, err := New(
		new(big.Int).SetBytes(pm.P),
		new(big.Int).SetBytes(pm.Q),
		new(big.Int).SetBytes(pm.G),
	)
	if err != nil {
		return err
	}
	*grp = *decoded
	return nil
}
