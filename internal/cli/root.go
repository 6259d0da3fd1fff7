// Package cli implements the sylcheck command line.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dgallion1/sylcheck/internal/catalog"
	"github.com/dgallion1/sylcheck/internal/checker"
	"github.com/dgallion1/sylcheck/internal/config"
	"github.com/dgallion1/sylcheck/internal/parser"
)

var version = "dev"

// app holds state shared by the subcommands of one root command.
type app struct {
	v       *viper.Viper
	cfgFile string
	verbose bool
}

// NewRootCmd builds the sylcheck command tree.
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "sylcheck",
		Short: "VCU syllabus compliance checker",
		Long: `sylcheck checks course syllabi (PDF, DOCX, TXT, Markdown, HTML) for the
items VCU requires, and cross-checks the course title, description and
prerequisites against the official course catalog.

Configuration hierarchy (highest to lowest priority):
  1. CLI flags
  2. Environment variables (SYLCHECK_*)
  3. Config file (~/.sylcheck/config.yaml)
  4. Defaults`,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: a.initConfig,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default: $HOME/.sylcheck/config.yaml)")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "verbose logging to stderr")
	pf.Bool("no-catalog", false, "skip catalog cross-validation")
	pf.String("catalog-url", "", "course catalog base URL")
	_ = a.v.BindPFlag("catalog.disabled", pf.Lookup("no-catalog"))
	_ = a.v.BindPFlag("catalog.base_url", pf.Lookup("catalog-url"))

	root.AddCommand(
		a.checkCmd(),
		a.debugCmd(),
		a.batchCmd(),
		a.requirementsCmd(),
		a.configCmd(),
		versionCmd(),
	)
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "sylcheck %s\n", version)
		},
	}
}

// initConfig reads the config file and SYLCHECK_* environment variables.
func (a *app) initConfig(cmd *cobra.Command, _ []string) error {
	d := config.Default()
	a.v.SetDefault("pdf_fallback_pdftotext", d.PDFFallbackPdftotext)
	a.v.SetDefault("max_concurrency", d.MaxConcurrency)
	a.v.SetDefault("catalog.disabled", !d.Catalog.Enabled)
	a.v.SetDefault("catalog.base_url", d.Catalog.BaseURL)
	a.v.SetDefault("catalog.timeout", d.Catalog.Timeout)
	a.v.SetDefault("catalog.cache_ttl", d.Catalog.CacheTTL)
	a.v.SetDefault("catalog.requests_per_second", d.Catalog.RequestsPerSecond)
	a.v.SetDefault("catalog.post_fetch_delay", d.Catalog.PostFetchDelay)
	a.v.SetDefault("catalog.respect_robots", d.Catalog.RespectRobots)
	a.v.SetDefault("catalog.user_agent", d.Catalog.UserAgent)

	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			a.v.AddConfigPath(filepath.Join(home, ".sylcheck"))
		}
		a.v.SetConfigType("yaml")
		a.v.SetConfigName("config")
	}

	a.v.SetEnvPrefix("SYLCHECK")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if a.cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	} else if a.verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "Using config file: %s\n", a.v.ConfigFileUsed())
	}
	return nil
}

// config returns the effective configuration.
func (a *app) config() config.Config {
	cfg := config.Default()
	cfg.PDFFallbackPdftotext = a.v.GetBool("pdf_fallback_pdftotext")
	cfg.MaxConcurrency = a.v.GetInt("max_concurrency")
	cfg.Catalog = config.CatalogConfig{
		Enabled:           !a.v.GetBool("catalog.disabled"),
		BaseURL:           a.v.GetString("catalog.base_url"),
		Timeout:           a.v.GetDuration("catalog.timeout"),
		CacheTTL:          a.v.GetDuration("catalog.cache_ttl"),
		RequestsPerSecond: a.v.GetFloat64("catalog.requests_per_second"),
		PostFetchDelay:    a.v.GetDuration("catalog.post_fetch_delay"),
		RespectRobots:     a.v.GetBool("catalog.respect_robots"),
		UserAgent:         a.v.GetString("catalog.user_agent"),
	}
	if cfg.Catalog.BaseURL == "" {
		cfg.Catalog.BaseURL = catalog.DefaultBaseURL
	}
	cfg.Clamp()
	return cfg
}

func (a *app) logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// newChecker wires the extractor and, unless disabled, the catalog client.
func (a *app) newChecker(cmd *cobra.Command) (*checker.Checker, config.Config, error) {
	cfg := a.config()
	if err := cfg.Validate(); err != nil {
		return nil, cfg, err
	}
	log := a.logger(cmd.ErrOrStderr())

	var cat checker.CatalogLookup
	if cfg.Catalog.Enabled {
		cache := catalog.NewCache(cfg.Catalog.CacheTTL, time.Now)
		cat = catalog.NewClient(cache, cfg.CatalogOptions(), log)
	}
	return checker.New(parser.NewExtractor(cfg.ParserOptions()), cat, log), cfg, nil
}
