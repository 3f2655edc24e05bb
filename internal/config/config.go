// Package config provides configuration for registry builds. Configuration
// is loaded from a YAML file with RETAILGEN_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/Astoviq/demo-source-data-astoviq-sub001/internal/entity"
	"github.com/Astoviq/demo-source-data-astoviq-sub001/internal/logger"
)

// Errors returned by the config package.
var (
	// ErrInvalidConfiguration is returned when the configuration is invalid.
	// Session synthesis must not start while this condition holds.
	ErrInvalidConfiguration = errors.New("config: invalid configuration")
	// ErrConfigNotFound is returned when the config file cannot be read.
	ErrConfigNotFound = errors.New("config: configuration file not found")
)

// envPrefix is the prefix for environment variable overrides.
const envPrefix = "RETAILGEN"

// Config is the root configuration for a registry build.
type Config struct {
	// Name is a descriptive name for this generation run.
	Name string `mapstructure:"name"`

	// Targets holds the generation volume and rate targets.
	Targets TargetsConfig `mapstructure:"targets"`

	// TimeWindow is the unified date window shared by all generators.
	TimeWindow TimeWindowConfig `mapstructure:"timeWindow"`

	// Seed drives all randomness in session synthesis. The same seed on the
	// same reference data reproduces the full session set.
	Seed int64 `mapstructure:"seed"`

	// ReferenceDir is the directory holding the generated entity tables.
	ReferenceDir string `mapstructure:"referenceDir"`

	// OutputDir is the directory the registry documents are written to.
	OutputDir string `mapstructure:"outputDir"`

	// Log configures logging.
	Log logger.Config `mapstructure:"log"`
}

// TargetsConfig holds the generation targets.
type TargetsConfig struct {
	// TotalOrders is the expected total order count across all channels.
	TotalOrders int `mapstructure:"totalOrders"`

	// TotalRevenue is the expected total revenue in EUR.
	TotalRevenue float64 `mapstructure:"totalRevenue"`

	// OnlineConversionRate is the target session-to-order conversion rate
	// as a fraction, e.g. 0.025 for 2.5%.
	OnlineConversionRate float64 `mapstructure:"onlineConversionRate"`

	// OnlineOrderPercentage is the expected share of orders on convertible
	// channels, as a fraction.
	OnlineOrderPercentage float64 `mapstructure:"onlineOrderPercentage"`

	// TotalWebshopSessions is the expected webshop session volume.
	TotalWebshopSessions int `mapstructure:"totalWebshopSessions"`
}

// TimeWindowConfig holds the unified date window as table-layout dates.
type TimeWindowConfig struct {
	StartDate   string `mapstructure:"startDate"`
	EndDate     string `mapstructure:"endDate"`
	CurrentDate string `mapstructure:"currentDate"`
}

// Load reads configuration from the given YAML file, applying environment
// overrides and defaults, and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigNotFound, path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults registers configuration defaults.
func setDefaults(v *viper.Viper) {
	v.SetDefault("name", "retail-demo-registry")
	v.SetDefault("referenceDir", "data/generated")
	v.SetDefault("outputDir", "data/registry")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stderr")
}

// Validate checks the configuration for conditions that would make session
// synthesis meaningless or divide by zero. All violations are fatal.
func (c *Config) Validate() error {
	if c.Targets.OnlineConversionRate <= 0 {
		return fmt.Errorf("%w: onlineConversionRate must be positive, got %v",
			ErrInvalidConfiguration, c.Targets.OnlineConversionRate)
	}
	if c.Targets.OnlineConversionRate > 1 {
		return fmt.Errorf("%w: onlineConversionRate is a fraction, got %v",
			ErrInvalidConfiguration, c.Targets.OnlineConversionRate)
	}

	window, err := c.TimeWindow.Parse()
	if err != nil {
		return err
	}
	if window.UnifiedEndDate.Before(window.UnifiedStartDate) {
		return fmt.Errorf("%w: time window is inverted: end %s before start %s",
			ErrInvalidConfiguration,
			entity.FormatDate(window.UnifiedEndDate),
			entity.FormatDate(window.UnifiedStartDate))
	}

	if c.ReferenceDir == "" {
		return fmt.Errorf("%w: referenceDir is required", ErrInvalidConfiguration)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("%w: outputDir is required", ErrInvalidConfiguration)
	}
	return nil
}

// Parse converts the window into an entity.TimeConfig.
func (w TimeWindowConfig) Parse() (entity.TimeConfig, error) {
	start, err := entity.ParseDate(w.StartDate)
	if err != nil {
		return entity.TimeConfig{}, fmt.Errorf("%w: startDate: %v", ErrInvalidConfiguration, err)
	}
	end, err := entity.ParseDate(w.EndDate)
	if err != nil {
		return entity.TimeConfig{}, fmt.Errorf("%w: endDate: %v", ErrInvalidConfiguration, err)
	}

	current := end
	if w.CurrentDate != "" {
		current, err = entity.ParseDate(w.CurrentDate)
		if err != nil {
			return entity.TimeConfig{}, fmt.Errorf("%w: currentDate: %v", ErrInvalidConfiguration, err)
		}
	}

	return entity.TimeConfig{
		UnifiedStartDate: start,
		UnifiedEndDate:   end,
		CurrentDate:      current,
	}, nil
}

// TargetMetrics converts the configured targets into the entity form.
func (c *Config) TargetMetrics() entity.TargetMetrics {
	return entity.TargetMetrics{
		TotalOrders:           c.Targets.TotalOrders,
		TotalRevenue:          decimal.NewFromFloat(c.Targets.TotalRevenue),
		OnlineConversionRate:  c.Targets.OnlineConversionRate,
		OnlineOrderPercentage: c.Targets.OnlineOrderPercentage,
		TotalWebshopSessions:  c.Targets.TotalWebshopSessions,
	}
}

// TimeConfig converts the configured window into the entity form.
// Validate must have been called first.
func (c *Config) TimeConfig() (entity.TimeConfig, error) {
	return c.TimeWindow.Parse()
}
