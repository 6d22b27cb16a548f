// Package simconfig loads the tunables a single simulation run needs —
// deadline, RNG seed policy, and assume/guarantee polarity — from YAML,
// via the same two-stage "load into a generic envelope, re-marshal into a
// typed struct" idiom the teacher's reinforcement.FromYaml uses. This is
// not the excluded CLI or the excluded repeated-run aggregation driver:
// it is the ambient config-loading concern every embedder of package sim
// needs regardless of who drives the outer Monte-Carlo sweep.
package simconfig

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/pouyapd/scanmc/sim"
)

// outerConfig mirrors the teacher's FromYaml envelope: viper reads the
// file into a generic "kind" + opaque "def" pair first, and the inner
// struct is then parsed from a re-marshaled yaml.v3 pass. Binding RunConfig
// straight to viper's own struct-tag unmarshaling was tried and dropped —
// viper's mapstructure decoding lossily flattens the nested Seed pointer
// and the zero-vs-absent distinction RunConfig needs, the same rough edge
// the teacher's own FromYaml comment calls out.
type outerConfig struct {
	Kind string      `mapstructure:"kind"`
	Def  interface{} `mapstructure:"def"`
}

// RunConfig holds everything a single `sim.Driver` run needs to be
// configured from outside the program: how long to run before giving up,
// which RNG seed to start from (nil means seed from entropy), and which
// polarity the top-level PMTL formula plays.
type RunConfig struct {
	// Deadline bounds simulated time (cs.Time); zero is rejected by
	// FromYaml rather than silently meaning "stop immediately".
	Deadline uint64 `yaml:"deadline"`
	// Seed, if present, reproduces a run exactly (same seed + same
	// Policy => identical event trace, per invariant 8). Absent means
	// seed from wall-clock entropy.
	Seed *int64 `yaml:"seed"`
	// Role selects the top-level formula's polarity: "assume" or
	// "guarantee".
	Role string `yaml:"role"`
}

// FromYaml reads path and produces a validated RunConfig.
func FromYaml(path string) (*RunConfig, error) {
	vp := viper.New()
	vp.SetConfigFile(path)
	vp.SetConfigType("yaml")
	vp.AddConfigPath(filepath.Dir(path))
	if err := vp.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("simconfig: reading %s: %w", path, err)
	}

	outer := &outerConfig{}
	if err := vp.Unmarshal(outer); err != nil {
		return nil, fmt.Errorf("simconfig: unmarshaling envelope: %w", err)
	}

	body, err := yaml.Marshal(outer.Def)
	if err != nil {
		return nil, fmt.Errorf("simconfig: re-marshaling body: %w", err)
	}

	cfg := &RunConfig{}
	if err := yaml.Unmarshal(body, cfg); err != nil {
		return nil, fmt.Errorf("simconfig: unmarshaling body: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *RunConfig) validate() error {
	if c.Deadline == 0 {
		return fmt.Errorf("simconfig: deadline must be nonzero")
	}
	if c.Role != "assume" && c.Role != "guarantee" {
		return fmt.Errorf("simconfig: role must be %q or %q, got %q", "assume", "guarantee", c.Role)
	}
	return nil
}

// FormulaRole translates the YAML-level Role string into the sim package's
// enum.
func (c *RunConfig) FormulaRole() sim.FormulaRole {
	if c.Role == "assume" {
		return sim.RoleAssume
	}
	return sim.RoleGuarantee
}

// NewRand constructs the run's PRNG: deterministic if Seed is set
// (reproducible per invariant 8), entropy-seeded otherwise.
func (c *RunConfig) NewRand() *rand.Rand {
	if c.Seed != nil {
		return rand.New(rand.NewSource(*c.Seed))
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}
