package session

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/taurusgroup/ppda/internal/params"
)

// RoundIDSource names the rounds of a session.
//
// Two rounds run with the same keys must never share an identifier, since the
// masks Bˣ would then be reused.
type RoundIDSource interface {
	RoundID() string
}

// ClockRoundID names rounds after the wall clock, with a resolution of one second.
type ClockRoundID struct {
	// Now defaults to time.Now.
	Now func() time.Time
}

func (c ClockRoundID) RoundID() string {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	return now().Format(params.RoundIDLayout)
}

// FixedRoundID always returns the same identifier.
type FixedRoundID string

func (f FixedRoundID) RoundID() string { return string(f) }

// ConsumptionSource produces one reading per participant for a round.
type ConsumptionSource interface {
	// Readings returns participants readings, each in [0, max).
	Readings(participants int, max uint64) ([]uint64, error)
}

// RandomConsumption draws uniform synthetic readings.
// It is not cryptographically secure, and is safe for concurrent use.
type RandomConsumption struct {
	mtx sync.Mutex
	r   *rand.Rand
}

// NewRandomConsumption returns a RandomConsumption which always produces the
// same readings for the same seed.
func NewRandomConsumption(seed int64) *RandomConsumption {
	return &RandomConsumption{r: rand.New(rand.NewSource(seed))}
}

func (rc *RandomConsumption) Readings(participants int, max uint64) ([]uint64, error) {
	if max == 0 {
		return nil, fmt.Errorf("session: readings: empty range")
	}
	rc.mtx.Lock()
	defer rc.mtx.Unlock()
	readings := make([]uint64, participants)
	for i := range readings {
		readings[i] = uint64(rc.r.Int63n(int64(max)))
	}
	return readings, nil
}

// StaticConsumption returns the same readings in every round.
type StaticConsumption []uint64

func (s StaticConsumption) Readings(participants int, max uint64) ([]uint64, error) {
	if len(s) != participants {
		return nil, fmt.Errorf("session: %d static readings for %d participants", len(s), participants)
	}
	for i, m := range s {
		if m >= max {
			return nil, fmt.Errorf("session: reading %d of participant %d is not below %d", m, i+1, max)
		}
	}
	return append([]uint64(nil), s...), nil
}
