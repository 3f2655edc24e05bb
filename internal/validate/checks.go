package validate

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Astoviq/demo-source-data-astoviq-sub001/internal/config"
)

// ChecksConfig holds the tolerances and constants the consistency checks
// compare against. Loaded from YAML; zero values fall back to defaults.
type ChecksConfig struct {
	// RevenueAccount is the GL account whose credit postings carry revenue.
	RevenueAccount string `yaml:"revenueAccount"`

	// OrderRefPrefix identifies order references in GL reference fields.
	OrderRefPrefix string `yaml:"orderRefPrefix"`

	// AbsoluteToleranceEUR is the absolute revenue variance allowed.
	AbsoluteToleranceEUR float64 `yaml:"absoluteToleranceEUR"`

	// RelativeTolerance is the revenue variance allowed as a fraction of
	// the operational total. Either tolerance passing is enough; a large
	// absolute variance on a huge revenue base passes by design.
	RelativeTolerance float64 `yaml:"relativeTolerance"`

	// ConversionRateMinPct and ConversionRateMaxPct bound the realistic
	// conversion band for fashion e-commerce, in percent.
	ConversionRateMinPct float64 `yaml:"conversionRateMinPct"`
	ConversionRateMaxPct float64 `yaml:"conversionRateMaxPct"`
}

// DefaultChecksConfig returns the standard thresholds.
func DefaultChecksConfig() ChecksConfig {
	return ChecksConfig{
		RevenueAccount:       "4000",
		OrderRefPrefix:       "ORD",
		AbsoluteToleranceEUR: 10.0,
		RelativeTolerance:    0.001,
		ConversionRateMinPct: 2.0,
		ConversionRateMaxPct: 4.0,
	}
}

// LoadChecksConfig reads a checks configuration from a YAML file, filling
// unset fields with defaults.
func LoadChecksConfig(path string) (ChecksConfig, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return ChecksConfig{}, fmt.Errorf("%w: %s: %v", config.ErrConfigNotFound, path, err)
	}

	var cfg ChecksConfig
	if err := yaml.Unmarshal(payload, &cfg); err != nil {
		return ChecksConfig{}, fmt.Errorf("%w: %v", config.ErrInvalidConfiguration, err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return ChecksConfig{}, err
	}
	return cfg, nil
}

// ApplyDefaults fills unset fields with the standard thresholds.
func (c *ChecksConfig) ApplyDefaults() {
	defaults := DefaultChecksConfig()
	if c.RevenueAccount == "" {
		c.RevenueAccount = defaults.RevenueAccount
	}
	if c.OrderRefPrefix == "" {
		c.OrderRefPrefix = defaults.OrderRefPrefix
	}
	if c.AbsoluteToleranceEUR == 0 {
		c.AbsoluteToleranceEUR = defaults.AbsoluteToleranceEUR
	}
	if c.RelativeTolerance == 0 {
		c.RelativeTolerance = defaults.RelativeTolerance
	}
	if c.ConversionRateMinPct == 0 {
		c.ConversionRateMinPct = defaults.ConversionRateMinPct
	}
	if c.ConversionRateMaxPct == 0 {
		c.ConversionRateMaxPct = defaults.ConversionRateMaxPct
	}
}

// Validate checks the thresholds for internal consistency.
func (c *ChecksConfig) Validate() error {
	if c.AbsoluteToleranceEUR < 0 || c.RelativeTolerance < 0 {
		return fmt.Errorf("%w: tolerances must be non-negative", config.ErrInvalidConfiguration)
	}
	if c.ConversionRateMinPct > c.ConversionRateMaxPct {
		return fmt.Errorf("%w: conversion band is inverted", config.ErrInvalidConfiguration)
	}
	return nil
}
