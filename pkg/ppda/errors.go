package ppda

import (
	"errors"

	"github.com/taurusgroup/ppda/pkg/group"
	"github.com/taurusgroup/ppda/pkg/keys"
)

var (
	// ErrInvalidConfiguration is returned when the security level or the
	// search bounds are unusable. Nothing is generated in that case.
	ErrInvalidConfiguration = group.ErrInvalidConfiguration
	// ErrAggregateNotFound is returned when a bounded search exhausts its range.
	// No partial result is ever returned alongside it.
	ErrAggregateNotFound = errors.New("ppda: aggregate not found")
	// ErrInvalidParticipant is returned when a share is used in the wrong role.
	ErrInvalidParticipant = keys.ErrInvalidParticipant
	// ErrInvalidCiphertext is returned for nil, zero or unreduced ciphertexts.
	ErrInvalidCiphertext = errors.New("ppda: invalid ciphertext")
)
