package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// loggerKey is the context key of the run logger, exposed through LoggerKey
// so commands and the root command agree on it.
type loggerKey struct{}

// searchDepth bounds the upward search for a config file.
const searchDepth = 10

// EnvPrefix is the prefix of environment variables read into the config.
const EnvPrefix = "LEAPPREP_"

var configNames = []string{"leapprep.yaml", "leapprep.yml"}

var (
	k        = koanf.New(".")
	usedFile string
	loaded   *Config
)

func defaults() map[string]any {
	return map[string]any{
		"recipe":  DefaultRecipe,
		"loader":  DefaultLoader,
		"verbose": false,
		"watch":   false,
		"format":  DefaultOutput,
	}
}

// locateConfig returns explicit when set, otherwise the first leapprep.yaml
// or leapprep.yml found in the working directory or one of its parents.
func locateConfig(explicit string) string {
	if explicit != "" {
		return explicit
	}
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for range searchDepth {
		for _, name := range configNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// relativeTo joins a relative path onto base. Empty and absolute paths are
// returned as is.
func relativeTo(path, base string) string {
	if path == "" || base == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

// ResetConfig discards any loaded configuration. Tests call it between runs.
func ResetConfig() {
	k = koanf.New(".")
	usedFile = ""
	loaded = nil
}

// envKey maps LEAPPREP_NA_VALUES to na_values.
func envKey(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
}

// flagKey maps explicitly set flags to config keys, kebab-case to
// snake_case. Flags left at their default are skipped so they do not mask
// file or env values.
func flagKey(flags *pflag.FlagSet) func(*pflag.Flag) (string, any) {
	return func(f *pflag.Flag) (string, any) {
		if !f.Changed {
			return "", nil
		}
		return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
	}
}

// LoadConfig builds the configuration from defaults, the config file,
// LEAPPREP_* variables and explicitly set flags, later layers winning.
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k = koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	usedFile = locateConfig(cfgFile)
	var fromFile struct{ input, output string }
	if usedFile != "" {
		if err := k.Load(file.Provider(usedFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", usedFile, err)
		}
		fromFile.input, fromFile.output = k.String("input"), k.String("output")
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, flagKey(flags)), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.Input = expandEnvVars(cfg.Input)
	cfg.Output = expandEnvVars(cfg.Output)
	cfg.Loader = strings.ToLower(cfg.Loader)

	// Only paths that still carry the file's value are anchored at the file.
	if usedFile != "" {
		if abs, err := filepath.Abs(usedFile); err == nil {
			cfg.ConfigDir = filepath.Dir(abs)
		}
		if cfg.Input == expandEnvVars(fromFile.input) {
			cfg.Input = relativeTo(cfg.Input, cfg.ConfigDir)
		}
		if cfg.Output == expandEnvVars(fromFile.output) {
			cfg.Output = relativeTo(cfg.Output, cfg.ConfigDir)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	loaded = &cfg
	return &cfg, nil
}

// GetConfigFileUsed returns the config file of the last load, or "".
func GetConfigFileUsed() string {
	return usedFile
}

// GetCurrentConfig returns the last successfully loaded configuration.
func GetCurrentConfig() *Config {
	return loaded
}

// LoggerKey returns the context key the run logger is stored under.
func LoggerKey() any {
	return loggerKey{}
}

// GetLogger returns the logger stored in ctx, or a discarding logger.
func GetLogger(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
			return l
		}
	}
	return slog.New(slog.DiscardHandler)
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR} references with their environment values.
// Unset or empty variables are left as written.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(ref string) string {
		if val := os.Getenv(envVarPattern.FindStringSubmatch(ref)[1]); val != "" {
			return val
		}
		return ref
	})
}
