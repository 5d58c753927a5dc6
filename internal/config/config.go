/*
* Handles configuring a run of git-owner.
*
* Settings come from command-line flags, GIT_OWNER_* environment variables and
* an optional YAML config file, in that order of precedence. They are resolved
* once into a Config value that is passed to whatever needs it.
 */
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sinclairtarget/git-owner/internal/git"
)

// Which signals we estimate ownership from.
type Mode int

const (
	CombinedMode Mode = iota
	LogMode
	BlameMode
)

func (m Mode) String() string {
	switch m {
	case CombinedMode:
		return "combined"
	case LogMode:
		return "log"
	case BlameMode:
		return "blame"
	default:
		return "unknown"
	}
}

type Format string

const (
	TextFormat Format = "text"
	JSONFormat Format = "json"
	CSVFormat  Format = "csv"
	YAMLFormat Format = "yaml"
)

var formats = []Format{TextFormat, JSONFormat, CSVFormat, YAMLFormat}

// Keys shared by flags, environment variables and the config file.
const (
	MostLikelyKey  = "most-likely"
	NamesKey       = "names"
	VerboseKey     = "verbose"
	OnlyLogKey     = "only-log"
	OnlyBlameKey   = "only-blame"
	PlaceholderKey = "placeholder"
	FormatKey      = "format"
	IgnoreRevsKey  = "ignore-revs"
	NoColorKey     = "no-color"
	ConfigKey      = "config"
)

const EnvPrefix = "GIT_OWNER"

type Config struct {
	Mode        Mode
	Identity    git.Identity
	MostLikely  bool
	Verbose     bool
	Placeholder string // Owner reported when a file can't be analyzed
	Format      Format
	IgnoreRevs  bool
	Color       bool
}

func Default() Config {
	return Config{
		Mode:     CombinedMode,
		Identity: git.EmailIdentity,
		Format:   TextFormat,
		Color:    true,
	}
}

func (c Config) HasPlaceholder() bool {
	return len(c.Placeholder) > 0
}

func (c Config) Validate() error {
	switch c.Mode {
	case CombinedMode, LogMode, BlameMode:
	default:
		return fmt.Errorf("unknown mode %d", c.Mode)
	}

	for _, format := range formats {
		if c.Format == format {
			return nil
		}
	}

	return fmt.Errorf(
		"unknown format \"%s\", must be one of: text, json, csv, yaml",
		c.Format,
	)
}

// Registers every setting as a flag on fs.
func AddFlags(fs *pflag.FlagSet) {
	fs.BoolP(
		MostLikelyKey,
		"m",
		false,
		"Show only the most likely owner without additional statistics",
	)
	fs.BoolP(NamesKey, "n", false, "Identify users by name rather than by email")
	fs.BoolP(VerboseKey, "v", false, "Show debugging messages")
	fs.BoolP(OnlyLogKey, "l", false, "Estimate only from git log")
	fs.BoolP(OnlyBlameKey, "b", false, "Estimate only from git blame")
	fs.StringP(
		PlaceholderKey,
		"p",
		"",
		"Owner to report when a file can't be analyzed, instead of failing",
	)
	fs.StringP(FormatKey, "f", string(TextFormat), "Output format: text, json, csv, yaml")
	fs.Bool(
		IgnoreRevsKey,
		false,
		"Skip revisions listed in the repository's .git-blame-ignore-revs",
	)
	fs.Bool(NoColorKey, false, "Never color output")
	fs.String(
		ConfigKey,
		"",
		"Config file (default: $XDG_CONFIG_HOME/git-owner/config.yaml)",
	)
}

// Resolves settings from the parsed flags in fs, the environment and the
// config file.
func Load(fs *pflag.FlagSet) (_ Config, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("error loading configuration: %w", err)
		}
	}()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	err = v.BindPFlags(fs)
	if err != nil {
		return Config{}, err
	}

	err = readConfigFile(v, v.GetString(ConfigKey))
	if err != nil {
		return Config{}, err
	}

	return fromViper(v)
}

func readConfigFile(v *viper.Viper, path string) error {
	if len(path) > 0 {
		v.SetConfigFile(path)
		err := v.ReadInConfig()
		if err != nil {
			return fmt.Errorf("could not read config file %s: %w", path, err)
		}

		logger().Debug("read config file", "path", path)
		return nil
	}

	dir, err := userConfigDir()
	if err != nil {
		logger().Debug("no user config dir", "err", err)
		return nil
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(dir, "git-owner"))

	err = v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}

		return fmt.Errorf("could not read config file: %w", err)
	}

	logger().Debug("read config file", "path", v.ConfigFileUsed())
	return nil
}

// Prefers XDG_CONFIG_HOME on every platform, not just Linux.
func userConfigDir() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); len(dir) > 0 {
		return dir, nil
	}

	return os.UserConfigDir()
}

func fromViper(v *viper.Viper) (Config, error) {
	c := Default()

	onlyLog := v.GetBool(OnlyLogKey)
	onlyBlame := v.GetBool(OnlyBlameKey)
	if onlyLog && onlyBlame {
		return c, errors.New("only-log and only-blame are mutually exclusive")
	}

	if onlyLog {
		c.Mode = LogMode
	} else if onlyBlame {
		c.Mode = BlameMode
	}

	if v.GetBool(NamesKey) {
		c.Identity = git.NameIdentity
	}

	c.MostLikely = v.GetBool(MostLikelyKey)
	c.Verbose = v.GetBool(VerboseKey)
	c.Placeholder = v.GetString(PlaceholderKey)
	c.Format = Format(strings.ToLower(v.GetString(FormatKey)))
	c.IgnoreRevs = v.GetBool(IgnoreRevsKey)

	// See https://no-color.org
	noColorEnv := os.Getenv("NO_COLOR") != ""
	c.Color = !v.GetBool(NoColorKey) && !noColorEnv

	err := c.Validate()
	if err != nil {
		return c, err
	}

	return c, nil
}
