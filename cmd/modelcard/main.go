// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the modelcard CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pdiddy/modelcard/internal/secrets"
	"github.com/pdiddy/modelcard/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// logger is built in PersistentPreRunE from config and flags.
	logger = zap.NewNop()

	// loadedSecrets holds API keys loaded from .secrets/ at startup.
	loadedSecrets secrets.Store
)

// rootCmd is the base command for the modelcard CLI.
var rootCmd = &cobra.Command{
	Use:   "modelcard",
	Short: "Extract validated model cards for scientific software",
	Long: `modelcard builds a structured metadata record (a model card) for a
scientific software package. It ingests the code repository and its
documentation site, extracts each field with retrieval-augmented generation,
looks up the key publication, and validates the result against a fixed schema.

Runs that fail validation print a diagnostic report with every recorded error
and issue alongside the partial record.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		l, err := newLogger(viper.GetString("log_level"), verbose)
		if err != nil {
			return err
		}
		logger = l

		s, err := secrets.Load(secrets.DefaultDir, logger)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			logger.Debug("loaded secrets", zap.Strings("keys", keys))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./modelcard.yaml or ~/.config/modelcard/config.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "development logging at debug level")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("modelcard")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "modelcard"))
		}
	}

	viper.SetEnvPrefix("MODELCARD")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger builds a production logger, or a development one when verbose.
func newLogger(level string, verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	}
	if level != "" && !verbose {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid log_level %q: %w", level, err)
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

// loadConfig returns the defaults overlaid with the config file and
// environment, then fills credentials from .secrets/.
func loadConfig() (types.Config, error) {
	cfg := types.DefaultConfig()
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing configuration: %w", err)
	}
	applySecrets(&cfg, loadedSecrets)
	return cfg, nil
}

// applySecrets fills empty credentials. Explicit configuration wins.
func applySecrets(cfg *types.Config, s secrets.Store) {
	for i := range cfg.Models {
		cfg.Models[i].APIKey = s.Or(secretFor(cfg.Models[i].Provider), cfg.Models[i].APIKey)
	}
	if cfg.Embedding.Provider != "" {
		cfg.Embedding.APIKey = s.Or(secretFor(cfg.Embedding.Provider), cfg.Embedding.APIKey)
	}
	cfg.Enrich.Email = s.Or(secrets.OpenAlexEmail, cfg.Enrich.Email)
	cfg.Enrich.SemanticScholarAPIKey = s.Or(secrets.SemanticScholarAPIKey, cfg.Enrich.SemanticScholarAPIKey)
}

func secretFor(p types.ModelProvider) string {
	if p == types.ProviderGemini {
		return secrets.GeminiAPIKey
	}
	return secrets.AnthropicAPIKey
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
