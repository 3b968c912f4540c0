package main

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/taurusgroup/ppda/pkg/session"
	"github.com/urfave/cli"
)

// loadConfig reads the configuration file if one is given, and applies the flags set on top of it.
// The search bounds grow to cover the participants and max flags.
func loadConfig(c *cli.Context, r *rand.Rand) (session.Config, error) {
	cfg := session.DefaultConfig()
	if path := c.String(optionConfig); path != "" {
		var err error
		if cfg, err = session.LoadConfig(path); err != nil {
			return cfg, err
		}
	}

	if c.IsSet(optionParticipants) {
		cfg.Participants = c.Int(optionParticipants)
		if uint64(cfg.Participants) > cfg.SearchUsers {
			cfg.SearchUsers = uint64(cfg.Participants)
		}
	}
	if c.IsSet(optionMaxReading) {
		cfg.MaxReading = c.Uint64(optionMaxReading)
		if cfg.MaxReading > 0 && cfg.MaxReading-1 > cfg.SearchRange {
			cfg.SearchRange = cfg.MaxReading - 1
		}
	}
	if c.IsSet(optionThreshold) {
		threshold := c.Int64(optionThreshold)
		if threshold < 0 {
			if cfg.MaxReading == 0 {
				return cfg, errors.New("cannot draw a threshold with max 0")
			}
			threshold = r.Int63n(int64(cfg.MaxReading))
		}
		cfg.Threshold = uint64(threshold)
	}
	if c.IsSet(optionBits) {
		cfg.SecurityBits = c.Int(optionBits)
	}
	if c.IsSet(optionHash) {
		cfg.Hash = c.String(optionHash)
	}
	if c.IsSet(optionWorkers) {
		cfg.Workers = c.Int(optionWorkers)
	}
	if c.IsSet(optionRotate) {
		cfg.RotateKeys = c.Bool(optionRotate)
	}
	return cfg, cfg.Validate()
}

func runConfig(c *cli.Context) error {
	cfg, err := loadConfig(c, rand.New(rand.NewSource(time.Now().UnixNano())))
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return cfg.Encode(os.Stdout)
}
