package pass

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/xyproto/env/v2"
)

// Config of a Pipeline.
type Config struct {
	// Verify the IR invariants (see lowered.LinearIR.Verify) before the first pass and after every pass.
	Verify bool

	// DumpIR logs the IR after every pass, with klog verbosity level 2.
	DumpIR bool
}

// ConfigEnvVar is the environment variable with the pipeline configuration used by ConfigFromEnv.
//
// The format is a comma-separated list of options: "verify", "noverify" and "dump". E.g.: "noverify,dump".
const ConfigEnvVar = "LOWERED_PASSES"

// DefaultConfig returns the default configuration: verification enabled, no dumps.
func DefaultConfig() Config {
	return Config{Verify: true}
}

// ParseConfig parses a comma-separated list of options, applied on top of DefaultConfig.
// See ConfigEnvVar for the options.
func ParseConfig(config string) (Config, error) {
	c := DefaultConfig()
	for _, option := range strings.Split(config, ",") {
		option = strings.TrimSpace(option)
		switch strings.ToLower(option) {
		case "":
		case "verify":
			c.Verify = true
		case "noverify":
			c.Verify = false
		case "dump":
			c.DumpIR = true
		default:
			return c, errors.Errorf("unknown option %q in pipeline configuration %q", option, config)
		}
	}
	return c, nil
}

// ConfigFromEnv returns the configuration given by the ConfigEnvVar environment variable, or DefaultConfig if it is
// not set.
func ConfigFromEnv() (Config, error) {
	if !env.Has(ConfigEnvVar) {
		return DefaultConfig(), nil
	}
	c, err := ParseConfig(env.Str(ConfigEnvVar))
	if err != nil {
		return c, errors.WithMessagef(err, "invalid $%s", ConfigEnvVar)
	}
	return c, nil
}
