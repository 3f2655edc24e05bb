// Package main provides the CLI that builds the consistency registry and
// persists it for downstream generators.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Astoviq/demo-source-data-astoviq-sub001/internal/config"
	"github.com/Astoviq/demo-source-data-astoviq-sub001/internal/logger"
	"github.com/Astoviq/demo-source-data-astoviq-sub001/internal/persist"
	"github.com/Astoviq/demo-source-data-astoviq-sub001/internal/refload"
	"github.com/Astoviq/demo-source-data-astoviq-sub001/internal/registry"
)

// Version information (populated at build time).
var (
	version = "dev"
)

var (
	configPath   string
	outputDir    string
	seed         int64
	verbose      bool
	validateOnly bool
	showVersion  bool
)

func init() {
	flag.StringVar(&configPath, "config", "registry.yaml", "Path to the YAML configuration file")
	flag.StringVar(&configPath, "c", "registry.yaml", "Path to the YAML configuration file (shorthand)")
	flag.StringVar(&outputDir, "output", "", "Override the registry output directory")
	flag.Int64Var(&seed, "seed", 0, "Override the random seed (0 keeps the configured seed)")
	flag.BoolVar(&verbose, "verbose", false, "Enable debug logging")
	flag.BoolVar(&verbose, "v", false, "Enable debug logging (shorthand)")
	flag.BoolVar(&validateOnly, "validate", false, "Validate configuration and exit")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
}

func main() {
	flag.Parse()

	if showVersion {
		fmt.Printf("registry %s\n", version)
		return
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
	if seed != 0 {
		cfg.Seed = seed
	}
	if verbose {
		cfg.Log.Level = "debug"
	}

	if validateOnly {
		fmt.Println("configuration OK")
		return
	}

	log := logger.New(cfg.Log)
	defer log.Sync()

	reg, err := registry.NewBuilder(cfg, log).Build()
	if err != nil {
		if errors.Is(err, refload.ErrMissingReferenceData) {
			log.Error("reference data missing, run the entity generators first", zap.Error(err))
		} else {
			log.Error("registry build failed", zap.Error(err))
		}
		os.Exit(1)
	}

	if err := persist.NewStore(cfg.OutputDir, log).Save(reg); err != nil {
		log.Error("registry save failed", zap.Error(err))
		os.Exit(1)
	}

	fmt.Printf("registry %s saved to %s\n", reg.RunID, cfg.OutputDir)
	fmt.Printf("  orders: %d (%d online) | sessions: %d (%d converting) | revenue: €%s\n",
		reg.CrossRefs.TotalOrdersCount,
		reg.CrossRefs.OnlineOrdersCount,
		reg.CrossRefs.TotalSessionsCount,
		reg.CrossRefs.ConvertingSessionsCount,
		reg.CrossRefs.TotalRevenue.StringFixed(2))
}
