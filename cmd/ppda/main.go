package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/urfave/cli"
)

const (
	// BinaryName is the name of the ppda app
	BinaryName = "ppda"

	// Version of the binary
	Version = "0.1.0"

	optionDebug      = "debug"
	optionDebugShort = "d"

	optionConfig      = "config"
	optionConfigShort = "c"

	optionParticipants      = "participants"
	optionParticipantsShort = "n"

	optionThreshold      = "threshold"
	optionThresholdShort = "t"

	optionMaxReading = "max"
	optionBits       = "bits"
	optionHash       = "hash"
	optionWorkers    = "workers"
	optionRotate     = "rotate"

	optionGroup  = "group"
	optionRounds = "rounds"
	optionSeed   = "seed"
	optionRound  = "round"

	optionIn  = "in"
	optionOut = "out"
)

// configFlags override the fields of session.Config.
var configFlags = []cli.Flag{
	cli.StringFlag{
		Name:  optionConfig + ", " + optionConfigShort,
		Usage: "TOML configuration file, flags take precedence",
	},
	cli.IntFlag{
		Name:  optionParticipants + ", " + optionParticipantsShort,
		Usage: "Number of participants",
	},
	cli.Int64Flag{
		Name:  optionThreshold + ", " + optionThresholdShort,
		Usage: "Readings at or below the threshold are low; a negative value draws one in [0, max)",
	},
	cli.Uint64Flag{
		Name:  optionMaxReading,
		Usage: "Readings are drawn in [0, max)",
	},
	cli.IntFlag{
		Name:  optionBits,
		Usage: "Bit length of the group modulus",
	},
	cli.StringFlag{
		Name:  optionHash,
		Usage: "Round binding hash: sha256, sha3-256 or blake3",
	},
	cli.IntFlag{
		Name:  optionWorkers,
		Usage: "Worker pool size: 0 for none, negative for one per CPU",
	},
	cli.BoolFlag{
		Name:  optionRotate,
		Usage: "Generate new keys before every round",
	},
}

func main() {
	cliApp := cli.NewApp()
	cliApp.Name = BinaryName
	cliApp.Usage = "Privacy-preserving aggregation of smart meter readings"
	cliApp.Version = Version

	binaryFlags := []cli.Flag{
		cli.BoolFlag{
			Name:  optionDebug + ", " + optionDebugShort,
			Usage: "Log at debug level, including the group values",
		},
	}

	simulateFlags := append([]cli.Flag{
		cli.IntFlag{
			Name:  optionRounds,
			Value: 1,
			Usage: "Number of rounds to simulate",
		},
		cli.Int64Flag{
			Name:  optionSeed,
			Usage: "Seed of the synthetic readings, 0 for the current time",
		},
		cli.StringFlag{
			Name:  optionRound,
			Usage: "Round identifier prefix, the wall clock by default",
		},
		cli.StringFlag{
			Name:  optionGroup,
			Usage: "Parameter file written by the params command, instead of generating a group",
		},
	}, configFlags...)

	paramsFlags := []cli.Flag{
		cli.IntFlag{
			Name:  optionBits,
			Usage: "Bit length of the group modulus",
		},
		cli.IntFlag{
			Name:  optionWorkers,
			Value: -1,
			Usage: "Worker pool size: 0 for none, negative for one per CPU",
		},
		cli.StringFlag{
			Name:  optionIn,
			Usage: "Check an existing parameter file instead of generating one",
		},
		cli.StringFlag{
			Name:  optionOut,
			Usage: "Write the generated parameters to this file",
		},
	}

	cliApp.Commands = []cli.Command{
		{
			Name:    "simulate",
			Aliases: []string{"s"},
			Usage:   "Run rounds of encryption, aggregation and recovery on synthetic readings",
			Action:  runSimulate,
			Flags:   simulateFlags,
		},
		{
			Name:    "params",
			Aliases: []string{"p"},
			Usage:   "Generate or check group parameters",
			Action:  runParams,
			Flags:   paramsFlags,
		},
		{
			Name:   "config",
			Usage:  "Print the effective configuration as TOML",
			Action: runConfig,
			Flags:  configFlags,
		},
	}

	cliApp.Flags = binaryFlags
	cliApp.Before = func(c *cli.Context) error {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		if c.GlobalBool(optionDebug) {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		}
		return nil
	}
	if err := cliApp.Run(os.Args); err != nil {
		logger := newLogger()
		logger.Fatal().Err(err).Send()
	}
}

func newLogger() zerolog.Logger {
	return zerolog.New(zerolog.NewConsoleWriter()).With().
		Timestamp().
		Logger()
}
