// Package main provides the CLI that checks cross-system consistency
// between the persisted registry and independently generated downstream
// datasets.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Astoviq/demo-source-data-astoviq-sub001/internal/logger"
	"github.com/Astoviq/demo-source-data-astoviq-sub001/internal/persist"
	"github.com/Astoviq/demo-source-data-astoviq-sub001/internal/validate"
)

// Exit codes.
const (
	exitOK           = 0
	exitError        = 1
	exitCheckFailure = 2
)

var (
	registryDir string
	financePath string
	webshopPath string
	checksPath  string
	reportPath  string
	verbose     bool
)

func init() {
	flag.StringVar(&registryDir, "registry", "data/registry", "Directory holding the persisted registry documents")
	flag.StringVar(&financePath, "finance", "data/generated/finance_gl_lines.csv", "Finance GL lines CSV")
	flag.StringVar(&webshopPath, "webshop", "data/generated/webshop_sessions.csv", "Webshop sessions CSV (optional)")
	flag.StringVar(&checksPath, "checks", "", "YAML file with check thresholds (defaults apply when empty)")
	flag.StringVar(&reportPath, "report", "", "Write a JSON validation report to this path")
	flag.BoolVar(&verbose, "verbose", false, "Show passed and skipped checks too")
	flag.BoolVar(&verbose, "v", false, "Show passed and skipped checks too (shorthand)")
}

func main() {
	flag.Parse()

	logCfg := logger.DefaultConfig()
	if verbose {
		logCfg.Level = "debug"
	}
	log := logger.New(logCfg)
	defer log.Sync()

	checksCfg := validate.DefaultChecksConfig()
	if checksPath != "" {
		var err error
		checksCfg, err = validate.LoadChecksConfig(checksPath)
		if err != nil {
			log.Error("invalid checks configuration", zap.Error(err))
			os.Exit(exitError)
		}
	}

	reg, err := persist.NewStore(registryDir, log).Load()
	if err != nil {
		log.Error("loading persisted registry failed", zap.Error(err))
		os.Exit(exitError)
	}

	glLines, err := validate.LoadGLLines(financePath)
	if err != nil {
		log.Error("loading finance GL lines failed", zap.Error(err))
		os.Exit(exitError)
	}

	webshopSessions, err := validate.LoadWebshopSessions(webshopPath)
	if err != nil {
		log.Error("loading webshop sessions failed", zap.Error(err))
		os.Exit(exitError)
	}
	if webshopSessions == nil {
		log.Warn("webshop sessions unavailable, dependent checks will be skipped or substituted",
			zap.String("path", webshopPath))
	}

	results := validate.NewValidator(checksCfg, log).Validate(validate.Inputs{
		Registry:        reg,
		GLLines:         glLines,
		WebshopSessions: webshopSessions,
	})

	fmt.Print(validate.FormatResults(results, verbose))

	if reportPath != "" {
		report := validate.NewReport(reg.RunID, results)
		if err := validate.WriteReport(reportPath, report); err != nil {
			log.Error("writing validation report failed", zap.Error(err))
			os.Exit(exitError)
		}
		log.Info("validation report written", zap.String("path", reportPath))
	}

	if !results.AllPassed {
		os.Exit(exitCheckFailure)
	}
	os.Exit(exitOK)
}
