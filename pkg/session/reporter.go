package session

import (
	"encoding/hex"
	"time"

	"github.com/rs/zerolog"
	"github.com/taurusgroup/ppda/pkg/group"
	"github.com/taurusgroup/ppda/pkg/ppda"
)

// Operations timed by a Round.
const (
	OpEncrypt   = "encrypt"
	OpAggregate = "aggregate"
	OpRecover   = "recover"
)

// Reporter receives the public outputs of a session.
//
// Implementations must be safe for concurrent use.
type Reporter interface {
	// Parameters is called once the group has been generated or loaded.
	Parameters(grp *group.Parameters)
	// Timing is called after op has been performed for the given number of participants.
	Timing(op string, participants int, elapsed time.Duration)
	// Result is called at the end of a simulated round.
	Result(roundID string, recovered, expected ppda.Aggregates)
}

// NopReporter ignores everything.
type NopReporter struct{}

func (NopReporter) Parameters(*group.Parameters) {}
func (NopReporter) Timing(string, int, time.Duration) {}
func (NopReporter) Result(string, ppda.Aggregates, ppda.Aggregates) {}

// ZerologReporter writes reports to a zerolog.Logger.
//
// The group fingerprint is logged at info level, the group values at debug level.
type ZerologReporter struct {
	Log zerolog.Logger
}

func (z ZerologReporter) Parameters(grp *group.Parameters) {
	z.Log.Info().
		Int("bits", grp.BitLen()).
		Str("fingerprint", hex.EncodeToString(grp.Fingerprint())).
		Msg("group parameters")
	z.Log.Debug().
		Str("modulus", grp.Modulus().Big().String()).
		Str("p", grp.P().String()).
		Str("q", grp.Q().String()).
		Str("n", grp.Order().Big().String()).
		Str("g", grp.G().Big().String()).
		Str("h0", grp.H0().Big().String()).
		Str("h1", grp.H1().Big().String()).
		Msg("group values")
}

func (z ZerologReporter) Timing(op string, participants int, elapsed time.Duration) {
	e := z.Log.Info().
		Str("op", op).
		Int("participants", participants).
		Dur("elapsed", elapsed)
	if op == OpEncrypt && participants > 0 {
		e = e.Dur("per_participant", elapsed/time.Duration(participants))
	}
	e.Msg("timing")
}

func (z ZerologReporter) Result(roundID string, recovered, expected ppda.Aggregates) {
	level := zerolog.InfoLevel
	if recovered != expected {
		level = zerolog.ErrorLevel
	}
	z.Log.WithLevel(level).
		Str("round", roundID).
		Uint64("low_sum", recovered.LowSum).
		Uint64("low_count", recovered.LowCount).
		Uint64("high_sum", recovered.HighSum).
		Bool("match", recovered == expected).
		Msg("result")
}
