package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"time"

	"github.com/taurusgroup/ppda/pkg/session"
	"github.com/urfave/cli"
)

// numberedRoundID suffixes each identifier with the round number, so that rounds
// started within the same second stay distinct.
type numberedRoundID struct {
	source session.RoundIDSource
	round  int
}

func (n *numberedRoundID) RoundID() string {
	n.round++
	return fmt.Sprintf("%s #%d", n.source.RoundID(), n.round)
}

func runSimulate(c *cli.Context) error {
	log := newLogger()

	seed := c.Int64(optionSeed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	r := rand.New(rand.NewSource(seed))

	cfg, err := loadConfig(c, r)
	if err != nil {
		return fmt.Errorf("simulate: %w", err)
	}
	rounds := c.Int(optionRounds)
	if rounds < 1 {
		return fmt.Errorf("simulate: %d rounds", rounds)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	pl := cfg.NewPool()
	defer pl.TearDown()

	reporter := session.ZerologReporter{Log: log}
	var s *session.Session
	if path := c.String(optionGroup); path != "" {
		grp, err := readGroup(path)
		if err != nil {
			return err
		}
		s, err = session.FromGroup(cfg, grp, pl, reporter, log)
		if err != nil {
			return err
		}
	} else if s, err = session.New(ctx, cfg, pl, reporter, log); err != nil {
		return err
	}

	var ids session.RoundIDSource = session.ClockRoundID{}
	if prefix := c.String(optionRound); prefix != "" {
		ids = session.FixedRoundID(prefix)
	}
	ids = &numberedRoundID{source: ids}
	src := session.NewRandomConsumption(r.Int63())

	for i := 0; i < rounds; i++ {
		if err = ctx.Err(); err != nil {
			return err
		}
		result, err := s.Simulate(ctx, ids, src)
		if err != nil {
			return err
		}
		fmt.Printf("low sum %d\nlow count %d\nhigh sum %d\n", result.LowSum, result.LowCount, result.HighSum)
	}
	return nil
}
