package session

import (
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
	"github.com/taurusgroup/ppda/internal/params"
	"github.com/taurusgroup/ppda/pkg/binding"
	"github.com/taurusgroup/ppda/pkg/pool"
	"github.com/taurusgroup/ppda/pkg/ppda"
)

// Config describes a deployment: the group size, the participants, and how readings
// are classified and searched for.
type Config struct {
	SecurityBits int    `toml:"security_bits"`
	Participants int    `toml:"participants"`
	Threshold    uint64 `toml:"threshold"`
	// MaxReading is exclusive, readings are drawn in [0, MaxReading).
	MaxReading  uint64 `toml:"max_reading"`
	SearchUsers uint64 `toml:"search_users"`
	SearchRange uint64 `toml:"search_range"`
	// Hash is one of sha256, sha3-256, blake3.
	Hash string `toml:"hash"`
	// Workers is the size of the pool: 0 runs everything on the calling goroutine,
	// a negative value uses every CPU.
	Workers int `toml:"workers"`
	// RotateKeys generates a new SecretKeySet before every round.
	RotateKeys bool `toml:"rotate_keys"`
}

// DefaultConfig returns 10 participants with readings in [0, 10), split at 5.
func DefaultConfig() Config {
	return Config{
		SecurityBits: params.DefaultSecurityBits,
		Participants: params.DefaultParticipants,
		Threshold:    params.DefaultMaxReading / 2,
		MaxReading:   params.DefaultMaxReading,
		SearchUsers:  params.DefaultSearchUsers,
		SearchRange:  params.DefaultSearchRange,
		Hash:         binding.SHA256.String(),
	}
}

// Validate returns an error wrapping ppda.ErrInvalidConfiguration if the
// configured deployment cannot be recovered within the search bounds.
func (c Config) Validate() error {
	invalid := func(format string, a ...interface{}) error {
		return fmt.Errorf("session: config: %s: %w", fmt.Sprintf(format, a...), ppda.ErrInvalidConfiguration)
	}
	if c.SecurityBits < params.MinSecurityBits {
		return invalid("security_bits %d < %d", c.SecurityBits, params.MinSecurityBits)
	}
	if c.Participants < 1 {
		return invalid("participants %d < 1", c.Participants)
	}
	if c.MaxReading < 1 {
		return invalid("max_reading must be positive")
	}
	if c.SearchUsers < uint64(c.Participants) {
		return invalid("search_users %d < participants %d", c.SearchUsers, c.Participants)
	}
	if c.SearchRange < c.MaxReading-1 {
		return invalid("search_range %d does not cover readings up to %d", c.SearchRange, c.MaxReading-1)
	}
	if err := c.Bounds().Validate(); err != nil {
		return err
	}
	if _, err := binding.ParseHash(c.Hash); err != nil {
		return invalid("%v", err)
	}
	return nil
}

// Bounds returns the search bounds given to ppda.Recover.
func (c Config) Bounds() ppda.SearchBounds {
	return ppda.SearchBounds{
		Users: c.SearchUsers,
		Range: c.SearchRange,
	}
}

// NewPool returns the pool described by Workers, which may be nil.
// The caller is responsible for tearing it down.
func (c Config) NewPool() *pool.Pool {
	switch {
	case c.Workers == 0:
		return nil
	case c.Workers < 0:
		return pool.NewPool(0)
	default:
		return pool.NewPool(c.Workers)
	}
}

// LoadConfig reads a TOML file on top of DefaultConfig, and validates the result.
// Unknown keys are rejected.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("session: config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("session: config %s: unknown key %q: %w", path, undecoded[0].String(), ppda.ErrInvalidConfiguration)
	}
	if err = cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Encode writes c to w as TOML.
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
