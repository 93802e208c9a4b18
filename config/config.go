// Package config wires command-line flags and environment variables
// into one viper-backed settings object. Every key can be set as a
// flag (--threads 4), as an environment variable (BLITS_THREADS=4), or
// programmatically through Set.
package config

import (
	"runtime"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Setting keys.
const (
	ConfigDebug             = "debug"
	ConfigThreads           = "threads"
	ConfigCPUProfile        = "cpu-profile"
	ConfigMemProfile        = "mem-profile"
	ConfigNodeCheckInterval = "node-check-interval"
	ConfigDefaultPlies      = "default-plies"
	ConfigSymbolsPerPlayer  = "symbols-per-player"

	ConfigThreatRadius = "threat-radius"
	ConfigPressureFill = "pressure-fill"

	ConfigWeightMaterial     = "weight-material"
	ConfigWeightSecurity     = "weight-security"
	ConfigWeightThreat       = "weight-threat"
	ConfigWeightConnectivity = "weight-connectivity"
	ConfigWeightPressure     = "weight-pressure"
	ConfigWeightDiversity    = "weight-diversity"
)

type Config struct {
	v    *viper.Viper
	args []string
}

// Load parses args and environment variables into the config. It is
// the first thing main calls.
func (c *Config) Load(args []string) error {
	c.v = viper.New()

	fs := pflag.NewFlagSet("blits", pflag.ContinueOnError)
	fs.Bool(ConfigDebug, false, "debug logging")
	fs.Int(ConfigThreads, max(1, runtime.NumCPU()-1), "number of search threads")
	fs.String(ConfigCPUProfile, "", "write a CPU profile to this file")
	fs.String(ConfigMemProfile, "", "write a memory profile to this file")
	fs.Int(ConfigNodeCheckInterval, 2048, "poll for cancellation every N nodes")
	fs.Int(ConfigDefaultPlies, 5, "default search depth for bestmove")
	fs.Int(ConfigSymbolsPerPlayer, 10, "symbols per player on generated boards")

	fs.Int(ConfigThreatRadius, 3, "max distance from coverage for the threat term")
	fs.Int(ConfigPressureFill, 3, "region fill at which frontier cells count as pressured")

	fs.Float64(ConfigWeightMaterial, 1.0, "evaluator weight: visible score")
	fs.Float64(ConfigWeightSecurity, 100.0, "evaluator weight: protected symbols")
	fs.Float64(ConfigWeightThreat, -25.0, "evaluator weight: threatened symbols")
	fs.Float64(ConfigWeightConnectivity, 15.0, "evaluator weight: symbols on the frontier")
	fs.Float64(ConfigWeightPressure, -10.0, "evaluator weight: pressured frontier cells")
	fs.Float64(ConfigWeightDiversity, 5.0, "evaluator weight: bag balance")

	if err := fs.Parse(args); err != nil {
		return err
	}
	c.args = fs.Args()
	if err := c.v.BindPFlags(fs); err != nil {
		return err
	}
	c.v.SetEnvPrefix("blits")
	c.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.v.AutomaticEnv()
	return nil
}

// Args returns the positional arguments left after flag parsing; main
// treats them as a one-shot shell command.
func (c *Config) Args() []string { return c.args }

func (c *Config) GetBool(key string) bool       { return c.v.GetBool(key) }
func (c *Config) GetInt(key string) int         { return c.v.GetInt(key) }
func (c *Config) GetFloat64(key string) float64 { return c.v.GetFloat64(key) }
func (c *Config) GetString(key string) string   { return c.v.GetString(key) }

// Set overrides a setting at runtime, e.g. from the shell's `set`
// command.
func (c *Config) Set(key string, value any) { c.v.Set(key, value) }

// AllSettings dumps every known setting for display.
func (c *Config) AllSettings() map[string]any { return c.v.AllSettings() }
