package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"os/signal"

	"github.com/taurusgroup/ppda/internal/params"
	"github.com/taurusgroup/ppda/pkg/group"
	"github.com/taurusgroup/ppda/pkg/pool"
	"github.com/taurusgroup/ppda/pkg/session"
	"github.com/urfave/cli"
)

func runParams(c *cli.Context) error {
	log := newLogger()
	reporter := session.ZerologReporter{Log: log}

	if in := c.String(optionIn); in != "" {
		grp, err := readGroup(in)
		if err != nil {
			return err
		}
		reporter.Parameters(grp)
		return nil
	}

	bits := params.DefaultSecurityBits
	if c.IsSet(optionBits) {
		bits = c.Int(optionBits)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	pl := session.Config{Workers: c.Int(optionWorkers)}.NewPool()
	defer pl.TearDown()

	grp, err := generate(ctx, bits, pl)
	if err != nil {
		return err
	}
	reporter.Parameters(grp)

	data, err := grp.MarshalBinary()
	if err != nil {
		return err
	}
	if out := c.String(optionOut); out != "" {
		return os.WriteFile(out, data, 0o644)
	}
	fmt.Println(hex.EncodeToString(data))
	return nil
}

func generate(ctx context.Context, bits int, pl *pool.Pool) (*group.Parameters, error) {
	grp, err := group.Generate(ctx, rand.Reader, bits, pl)
	if err != nil {
		return nil, fmt.Errorf("params: %w", err)
	}
	return grp, nil
}

// readGroup decodes and validates a parameter file.
func readGroup(path string) (*group.Parameters, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var grp group.Parameters
	if err = grp.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("params: %s: %w", path, err)
	}
	return &grp, nil
}
