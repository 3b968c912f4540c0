package keys

import (
	"encoding"
	"errors"
	"fmt"

	"github.com/cronokirby/saferith"
	"github.com/fxamacker/cbor/v2"
	"github.com/taurusgroup/ppda/pkg/group"
)

var (
	_ encoding.BinaryMarshaler   = (*Share)(nil)
	_ encoding.BinaryUnmarshaler = (*Share)(nil)
	_ encoding.BinaryMarshaler   = (*SecretKeySet)(nil)
)

type shareMarshal struct {
	Index int
	X     []byte
}

func (s *Share) MarshalBinary() ([]byte, error) {
	if s.X == nil {
		return nil, errors.New("keys: share is nil")
	}
	return cbor.Marshal(&shareMarshal{Index: s.Index, X: s.X.Bytes()})
}

func (s *Share) UnmarshalBinary(data []byte) error {
	var sm shareMarshal
	if err := cbor.Unmarshal(data, &sm); err != nil {
		return fmt.Errorf("keys: share: %w", err)
	}
	if sm.Index < 0 {
		return fmt.Errorf("keys: share index %d: %w", sm.Index, ErrInvalidParticipant)
	}
	*s = Share{
		Index: sm.Index,
		X:     new(saferith.Nat).SetBytes(sm.X),
	}
	return nil
}

// MarshalBinary encodes every share, the aggregator's first.
func (ks *SecretKeySet) MarshalBinary() ([]byte, error) {
	shares := make([]cbor.RawMessage, 0, len(ks.shares))
	for _, s := range ks.shares {
		data, err := s.MarshalBinary()
		if err != nil {
			return nil, err
		}
		shares = append(shares, data)
	}
	return cbor.Marshal(shares)
}

// Unmarshal decodes a SecretKeySet produced by MarshalBinary, and validates it against grp.
func Unmarshal(grp *group.Parameters, data []byte) (*SecretKeySet, error) {
	var raw []cbor.RawMessage
	if err := cbor.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("keys: %w", err)
	}
	shares := make([]*Share, 0, len(raw))
	for _, r := range raw {
		s := new(Share)
		if err := s.UnmarshalBinary(r); err != nil {
			return nil, err
		}
		shares = append(shares, s)
	}
	return FromShares(grp, shares)
}
