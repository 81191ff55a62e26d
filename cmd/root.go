package cmd

import (
	"os"

	cfgpkg "github.com/KaramelBytes/immo-eda/internal/config"
	"github.com/KaramelBytes/immo-eda/internal/logging"
	"github.com/KaramelBytes/immo-eda/internal/pipeline"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	cfgFile   string
	debug     bool
	logLevel  string
	logFormat string

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "immo",
	Short: "immo: exploratory analysis of real-estate listings",
	Long: `immo cleans a listings CSV, derives regions, encodes categorical columns,
correlates every numeric feature with the price and keeps the features that
carry signal without repeating each other. Heatmaps and a Markdown report are
written along the way.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		printError(os.Stderr, "Error: %v", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.immo/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug|info|warn|error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: console|json (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands fall back to built-in defaults
		printWarning(os.Stderr, "Warning: failed to load config: %v", err)
		return
	}
	cfg = c
}

// config returns the loaded configuration, loading it on first use so
// commands also work when OnInitialize did not run (tests).
func config() (*cfgpkg.Global, error) {
	if cfg != nil {
		return cfg, nil
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	cfg = c
	return cfg, nil
}

func newLogger(c *cfgpkg.Global) (*zap.Logger, error) {
	opt := logging.Options{Level: c.LogLevel, Format: c.LogFormat, Output: os.Stderr}
	if logLevel != "" {
		opt.Level = logLevel
	}
	if logFormat != "" {
		opt.Format = logFormat
	}
	if debug {
		opt.Level = "debug"
	}
	return logging.Build(opt)
}

// setup loads config and logger and converts the config into pipeline
// options for input.
func setup(input string) (pipeline.Options, *zap.Logger, error) {
	c, err := config()
	if err != nil {
		return pipeline.Options{}, nil, err
	}
	opt, err := c.PipelineOptions(input)
	if err != nil {
		return opt, nil, err
	}
	if err := applyInputFlags(&opt); err != nil {
		return opt, nil, err
	}
	log, err := newLogger(c)
	if err != nil {
		return opt, nil, err
	}
	return opt, log, nil
}
