// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the citation-engine CLI. It queries,
// renders and exports a citation library snapshot, and serves the same
// library to MCP clients over stdio.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/citation-engine/internal/library"
	"github.com/pdiddy/citation-engine/internal/secrets"
	"github.com/pdiddy/citation-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

const (
	defaultDataPath  = "citations.json"
	defaultUserAgent = "citation-engine/0.1"
)

// loadedSecrets holds values loaded from .secrets/ at startup.
var loadedSecrets secrets.Set

// rootCmd is the base command for the citation-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "citation-engine",
	Short: "Query, format and export a citation library",
	Long: `citation-engine reads a citation library snapshot (the JSON export of a
reference manager) and answers questions about it: search and filter, format
citations as IEEE, APA or BibTeX, compute statistics and export to BibTeX,
JSON, YAML, CSL, CSV or SQLite.

The serve command exposes the same operations to MCP clients over stdio.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(secrets.DefaultDir, os.Stderr)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", s.Keys())
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./citation-engine.yaml or ~/.config/citation-engine/config.yaml)")
	rootCmd.PersistentFlags().String("data", "", "library snapshot file (default: citations.json)")
	_ = viper.BindPFlag("data_path", rootCmd.PersistentFlags().Lookup("data"))

	viper.SetDefault("data_path", defaultDataPath)
	viper.SetDefault("export.indent", 2)
	viper.SetDefault("http.user_agent", defaultUserAgent)
	viper.SetDefault("http.timeout", 15*time.Second)
	viper.SetDefault("linkcheck.timeout", 10*time.Second)
	viper.SetDefault("linkcheck.batch_size", 5)
	viper.SetDefault("linkcheck.delay", 100*time.Millisecond)
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("citation-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "citation-engine"))
		}
	}

	viper.SetEnvPrefix("CITATION")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig assembles the typed configuration from viper. The shared http
// section seeds both lookup and link check settings.
func loadConfig() types.Config {
	httpCfg := types.HTTPConfig{
		Timeout:    viper.GetDuration("http.timeout"),
		UserAgent:  viper.GetString("http.user_agent"),
		MaxRetries: viper.GetInt("http.max_retries"),
	}
	linkHTTP := httpCfg
	linkHTTP.Timeout = viper.GetDuration("linkcheck.timeout")

	return types.Config{
		DataPath: viper.GetString("data_path"),
		Search:   types.SearchConfig{MaxResults: viper.GetInt("search.max_results")},
		Export:   types.ExportConfig{Indent: viper.GetInt("export.indent")},
		Lookup: types.LookupConfig{
			HTTPConfig: httpCfg,
			Email:      loadedSecrets.Or(secrets.CrossRefEmail, viper.GetString("lookup.email")),
		},
		LinkCheck: types.LinkCheckConfig{
			HTTPConfig: linkHTTP,
			BatchSize:  viper.GetInt("linkcheck.batch_size"),
			BatchDelay: viper.GetDuration("linkcheck.delay"),
		},
	}
}

// openLibrary loads the configured snapshot.
func openLibrary() (*library.Library, error) {
	return library.Open(loadConfig().DataPath)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
