package session

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/taurusgroup/ppda/pkg/binding"
	"github.com/taurusgroup/ppda/pkg/keys"
	"github.com/taurusgroup/ppda/pkg/ppda"
	"golang.org/x/sync/errgroup"
)

// Round collects the ciphertexts of a single time slot.
type Round struct {
	s       *Session
	keys    *keys.SecretKeySet
	binding *binding.Binding
	agg     *ppda.Aggregator
	log     zerolog.Logger
}

// ID returns the round identifier.
func (r *Round) ID() string { return r.binding.RoundID() }

// Binding returns the element every participant of the round masks its reading with.
func (r *Round) Binding() *binding.Binding { return r.binding }

// Encrypt returns the ciphertext of participant's reading, with participant in [1, N].
func (r *Round) Encrypt(participant int, reading uint64) (*ppda.Ciphertext, error) {
	share, err := r.keys.Participant(participant)
	if err != nil {
		return nil, err
	}
	return ppda.Encrypt(r.s.grp, share, r.binding, r.s.cfg.Threshold, reading)
}

// EncryptAll encrypts readings[i] for participant i+1, concurrently.
// There must be exactly one reading per participant.
func (r *Round) EncryptAll(ctx context.Context, readings []uint64) ([]*ppda.Ciphertext, error) {
	if len(readings) != r.keys.Participants() {
		return nil, fmt.Errorf("session: %d readings for %d participants: %w", len(readings), r.keys.Participants(), ppda.ErrInvalidParticipant)
	}
	start := time.Now()

	cts := make([]*ppda.Ciphertext, len(readings))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i := range readings {
		i := i
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			ct, err := r.Encrypt(i+1, readings[i])
			if err != nil {
				return err
			}
			cts[i] = ct
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	r.s.reporter.Timing(OpEncrypt, len(readings), time.Since(start))
	return cts, nil
}

// Submit adds ciphertexts to the round's aggregate. It may be called concurrently.
func (r *Round) Submit(cts ...*ppda.Ciphertext) error {
	start := time.Now()
	if err := r.agg.Add(cts...); err != nil {
		return err
	}
	r.s.reporter.Timing(OpAggregate, len(cts), time.Since(start))
	return nil
}

// Aggregate returns the product of the ciphertexts submitted so far.
func (r *Round) Aggregate() *ppda.Ciphertext {
	return r.agg.Result()
}

// Recover returns the aggregates of the submitted ciphertexts.
//
// Recovery is attempted even if fewer ciphertexts than participants were
// submitted; it then fails with ppda.ErrAggregateNotFound since the masks do not cancel.
func (r *Round) Recover() (*ppda.Aggregates, error) {
	count := r.agg.Count()
	if count != r.keys.Participants() {
		r.log.Warn().Int("submitted", count).Int("participants", r.keys.Participants()).Msg("incomplete round")
	}
	start := time.Now()
	result, err := ppda.Recover(r.s.grp, r.keys.Aggregator(), r.binding, r.agg.Result(), r.s.cfg.Bounds(), r.s.pl)
	if err != nil {
		r.log.Error().Err(err).Msg("recovery failed")
		return nil, err
	}
	r.s.reporter.Timing(OpRecover, count, time.Since(start))
	r.log.Info().Msg("round recovered")
	return result, nil
}
