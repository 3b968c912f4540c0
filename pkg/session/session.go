// Package session runs the aggregation scheme end to end: it owns the group,
// the secret keys and the worker pool, and drives rounds of encryption,
// aggregation and recovery.
package session

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"
	"github.com/taurusgroup/ppda/pkg/binding"
	"github.com/taurusgroup/ppda/pkg/group"
	"github.com/taurusgroup/ppda/pkg/keys"
	"github.com/taurusgroup/ppda/pkg/pool"
	"github.com/taurusgroup/ppda/pkg/ppda"
)

// ErrMismatch is returned by Simulate when the recovered aggregates differ from
// those computed on the plaintext readings.
var ErrMismatch = errors.New("session: recovered aggregates do not match the readings")

// Session holds the setup of a deployment.
//
// The group never changes; the key set is replaced by RotateKeys.
type Session struct {
	cfg      Config
	hash     binding.Hash
	grp      *group.Parameters
	pl       *pool.Pool
	reporter Reporter
	log      zerolog.Logger
	rand     io.Reader

	mtx  sync.Mutex
	keys *keys.SecretKeySet
}

// New generates a group of cfg.SecurityBits bits and a first key set.
//
// pl may be nil, in which case everything runs on the calling goroutine.
// A nil reporter is replaced by NopReporter.
func New(ctx context.Context, cfg Config, pl *pool.Pool, reporter Reporter, logger zerolog.Logger) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger.Info().Int("bits", cfg.SecurityBits).Int("workers", pl.Workers()).Msg("generating group")
	grp, err := group.Generate(ctx, rand.Reader, cfg.SecurityBits, pl)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	return FromGroup(cfg, grp, pl, reporter, logger)
}

// FromGroup creates a Session on existing parameters, for instance decoded with
// group.Parameters.UnmarshalBinary. cfg.SecurityBits is not checked against grp.
func FromGroup(cfg Config, grp *group.Parameters, pl *pool.Pool, reporter Reporter, logger zerolog.Logger) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := grp.Validate(); err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	h, _ := binding.ParseHash(cfg.Hash)
	if reporter == nil {
		reporter = NopReporter{}
	}

	s := &Session{
		cfg:      cfg,
		hash:     h,
		grp:      grp,
		pl:       pl,
		reporter: reporter,
		log:      logger.With().Str("component", "session").Logger(),
		rand:     rand.Reader,
	}
	reporter.Parameters(grp)
	if err := s.RotateKeys(); err != nil {
		return nil, err
	}
	s.log.Info().
		Int("participants", cfg.Participants).
		Uint64("threshold", cfg.Threshold).
		Str("hash", h.String()).
		Msg("session created")
	return s, nil
}

// Config returns the configuration the session was created with.
func (s *Session) Config() Config { return s.cfg }

// Group returns the public parameters.
func (s *Session) Group() *group.Parameters { return s.grp }

// Keys returns the current key set.
func (s *Session) Keys() *keys.SecretKeySet {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.keys
}

// RotateKeys replaces the key set by a fresh one for the same participants.
// Rounds already started keep the keys they were created with.
func (s *Session) RotateKeys() error {
	ks, err := keys.Generate(s.rand, s.grp, s.cfg.Participants)
	if err != nil {
		return fmt.Errorf("session: rotate keys: %w", err)
	}
	s.mtx.Lock()
	s.keys = ks
	s.mtx.Unlock()
	s.log.Debug().Msg("keys rotated")
	return nil
}

// NewRound starts the round named roundID.
// If the session rotates keys, a new key set is generated first.
func (s *Session) NewRound(roundID string) (*Round, error) {
	if s.cfg.RotateKeys {
		if err := s.RotateKeys(); err != nil {
			return nil, err
		}
	}
	return &Round{
		s:       s,
		keys:    s.Keys(),
		binding: binding.BindWith(s.hash, roundID),
		agg:     ppda.NewAggregator(s.grp),
		log:     s.log.With().Str("round", roundID).Logger(),
	}, nil
}

// Simulate runs a complete round: readings are drawn from src, encrypted by every
// participant, aggregated, and recovered. The recovered aggregates are compared
// with ppda.Expected, and ErrMismatch is returned along with them if they differ.
func (s *Session) Simulate(ctx context.Context, ids RoundIDSource, src ConsumptionSource) (*ppda.Aggregates, error) {
	r, err := s.NewRound(ids.RoundID())
	if err != nil {
		return nil, err
	}
	readings, err := src.Readings(s.cfg.Participants, s.cfg.MaxReading)
	if err != nil {
		return nil, err
	}

	cts, err := r.EncryptAll(ctx, readings)
	if err != nil {
		return nil, err
	}
	if err = r.Submit(cts...); err != nil {
		return nil, err
	}
	result, err := r.Recover()
	if err != nil {
		return nil, err
	}

	expected := ppda.Expected(readings, s.cfg.Threshold)
	s.reporter.Result(r.ID(), *result, expected)
	if *result != expected {
		return result, fmt.Errorf("session: round %q: got %v, expected %v: %w", r.ID(), *result, expected, ErrMismatch)
	}
	return result, nil
}
