package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/meysamhadeli/odindoc/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	configName = "odindoc-config"
	envPrefix  = "ODINDOC"

	// DefaultConfigFile is the file written by `odindoc init`.
	DefaultConfigFile = configName + ".yml"
)

var validate = newValidator()

// newValidator reports fields by their configuration key.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		return strings.SplitN(field.Tag.Get("mapstructure"), ",", 2)[0]
	})
	return v
}

// Config represents the structure of the configuration file
type Config struct {
	Version           string   `mapstructure:"version" yaml:"version"`
	Output            string   `mapstructure:"output" yaml:"output" validate:"required"`
	Layout            string   `mapstructure:"layout" yaml:"layout" validate:"oneof=tree flat"`
	Title             string   `mapstructure:"title" yaml:"title"`
	Extensions        []string `mapstructure:"extensions" yaml:"extensions" validate:"min=1,dive,required"`
	Ignore            []string `mapstructure:"ignore" yaml:"ignore"`
	Highlight         bool     `mapstructure:"highlight" yaml:"highlight"`
	LightStyle        string   `mapstructure:"light_style" yaml:"light_style"`
	DarkStyle         string   `mapstructure:"dark_style" yaml:"dark_style"`
	DescriptionFormat string   `mapstructure:"description_format" yaml:"description_format" validate:"oneof=text markdown"`
	EnableCache       bool     `mapstructure:"enable_cache" yaml:"enable_cache"`
	CacheDir          string   `mapstructure:"cache_dir" yaml:"cache_dir,omitempty"`
}

// DefaultConfig values
var DefaultConfig = Config{
	Version:           "1.0.0",
	Output:            "docs",
	Layout:            "tree",
	Title:             "Documentation",
	Extensions:        []string{".odin"},
	Ignore:            []string{"build", "docs", "out", ".git", "third_party", "dist"},
	Highlight:         false,
	LightStyle:        "github",
	DarkStyle:         "dracula",
	DescriptionFormat: "text",
	EnableCache:       false,
	CacheDir:          "",
}

// cfgFile holds the path to the configuration file (set via CLI)
var cfgFile string

// LoadConfigs reads defaults, the optional configuration file, environment
// variables and flags, in increasing order of precedence.
func LoadConfigs(rootCmd *cobra.Command, cwd string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	bindEnv(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
	} else {
		// Looks for odindoc-config.yml, .yaml or .json in the working directory.
		v.SetConfigName(configName)
		v.AddConfigPath(cwd)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	bindFlags(v, rootCmd)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate rejects values the generator cannot work with.
func (c *Config) Validate() error {
	c.Output = strings.TrimSpace(c.Output)
	c.Extensions = utils.NormalizeIgnoreList(c.Extensions)

	if err := validate.Struct(c); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
			fieldError := validationErrors[0]
			return fmt.Errorf("invalid %s %q: must satisfy %s", fieldError.Field(), fmt.Sprint(fieldError.Value()), validationRule(fieldError))
		}
		return err
	}

	if c.Highlight {
		for _, style := range []string{c.LightStyle, c.DarkStyle} {
			if !utils.HasStyle(style) {
				return fmt.Errorf("unknown highlight style %q", style)
			}
		}
	}

	return nil
}

func validationRule(fieldError validator.FieldError) string {
	if fieldError.Param() == "" {
		return fieldError.Tag()
	}
	return fieldError.Tag() + "=" + fieldError.Param()
}

// WriteDefaultConfig writes DefaultConfig as YAML to path. An existing file is
// only replaced when force is set.
func WriteDefaultConfig(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists", path)
	} else if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("error checking %s: %w", path, err)
	}

	data, err := yaml.Marshal(DefaultConfig)
	if err != nil {
		return fmt.Errorf("failed to encode default config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// setDefaults sets all default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("version", DefaultConfig.Version)
	v.SetDefault("output", DefaultConfig.Output)
	v.SetDefault("layout", DefaultConfig.Layout)
	v.SetDefault("title", DefaultConfig.Title)
	v.SetDefault("extensions", DefaultConfig.Extensions)
	v.SetDefault("ignore", DefaultConfig.Ignore)
	v.SetDefault("highlight", DefaultConfig.Highlight)
	v.SetDefault("light_style", DefaultConfig.LightStyle)
	v.SetDefault("dark_style", DefaultConfig.DarkStyle)
	v.SetDefault("description_format", DefaultConfig.DescriptionFormat)
	v.SetDefault("enable_cache", DefaultConfig.EnableCache)
	v.SetDefault("cache_dir", DefaultConfig.CacheDir)
}

// bindEnv explicitly binds environment variables to configuration keys
func bindEnv(v *viper.Viper) {
	_ = v.BindEnv("output", "ODINDOC_OUTPUT")
	_ = v.BindEnv("layout", "ODINDOC_LAYOUT")
	_ = v.BindEnv("title", "ODINDOC_TITLE")
	_ = v.BindEnv("extensions", "ODINDOC_EXTENSIONS")
	_ = v.BindEnv("ignore", "ODINDOC_IGNORE")
	_ = v.BindEnv("highlight", "ODINDOC_HIGHLIGHT")
	_ = v.BindEnv("light_style", "ODINDOC_LIGHT_STYLE")
	_ = v.BindEnv("dark_style", "ODINDOC_DARK_STYLE")
	_ = v.BindEnv("description_format", "ODINDOC_DESCRIPTION_FORMAT")
	_ = v.BindEnv("enable_cache", "ODINDOC_ENABLE_CACHE")
	_ = v.BindEnv("cache_dir", "ODINDOC_CACHE_DIR")
}

// bindFlags binds the CLI flags to configuration values.
func bindFlags(v *viper.Viper, rootCmd *cobra.Command) {
	flags := rootCmd.PersistentFlags()
	_ = v.BindPFlag("output", flags.Lookup("output"))
	_ = v.BindPFlag("layout", flags.Lookup("layout"))
	_ = v.BindPFlag("title", flags.Lookup("title"))
	_ = v.BindPFlag("extensions", flags.Lookup("ext"))
	_ = v.BindPFlag("ignore", flags.Lookup("ignore"))
	_ = v.BindPFlag("highlight", flags.Lookup("highlight"))
	_ = v.BindPFlag("light_style", flags.Lookup("light_style"))
	_ = v.BindPFlag("dark_style", flags.Lookup("dark_style"))
	_ = v.BindPFlag("description_format", flags.Lookup("description_format"))
	_ = v.BindPFlag("enable_cache", flags.Lookup("enable_cache"))
	_ = v.BindPFlag("cache_dir", flags.Lookup("cache_dir"))
}

// InitFlags initializes the flags for the root command.
func InitFlags(rootCmd *cobra.Command) {
	// Use PersistentFlags so that these flags are available in all subcommands
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Specifies the path to a configuration file (JSON or YAML) that contains all the settings for the application.")

	// Output configuration
	rootCmd.PersistentFlags().StringP("output", "o", DefaultConfig.Output, "Directory the HTML pages are written to.")
	rootCmd.PersistentFlags().String("layout", DefaultConfig.Layout, "Page layout: 'tree' (mirror source folders) or 'flat' (one directory, path segments joined by '_').")
	rootCmd.PersistentFlags().String("title", DefaultConfig.Title, "Heading of the index page.")

	// Source selection
	rootCmd.PersistentFlags().StringSlice("ext", DefaultConfig.Extensions, "File extensions to document (repeatable or comma separated).")
	rootCmd.PersistentFlags().StringSliceP("ignore", "i", DefaultConfig.Ignore, "Directory names or relative paths to skip (repeatable or comma separated).")

	// Rendering
	rootCmd.PersistentFlags().Bool("highlight", DefaultConfig.Highlight, "Highlight procedure signatures with chroma.")
	rootCmd.PersistentFlags().String("light_style", DefaultConfig.LightStyle, "Chroma style used by the light theme (e.g., 'github', 'monokailight').")
	rootCmd.PersistentFlags().String("dark_style", DefaultConfig.DarkStyle, "Chroma style used by the dark theme (e.g., 'dracula', 'monokai').")
	rootCmd.PersistentFlags().String("description_format", DefaultConfig.DescriptionFormat, "How descriptions are rendered: 'text' or 'markdown'.")

	// Cache configuration
	rootCmd.PersistentFlags().Bool("enable_cache", DefaultConfig.EnableCache, "Cache extracted documentation between runs.")
	rootCmd.PersistentFlags().String("cache_dir", DefaultConfig.CacheDir, "Directory of the extraction cache (default '.cache/odindoc' in the working directory).")

	// Version flag
	rootCmd.Flags().BoolP("version", "v", false, "Specifies the version of the application.")
}
