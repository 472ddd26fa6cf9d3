// Package main is the entry point for the nexus CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ah-its-andy/anclora-nexus/internal/catalog"
	"github.com/ah-its-andy/anclora-nexus/internal/config"
)

// version is set at build time via ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "nexus",
	Short: "Plan, price and run multi-step file conversions",
	Long: `nexus finds the ways a file can be converted from one format to another
through a graph of direct conversions, ranks them by length and expected
quality, and prices them in credits.

The planner commands (route, quote, formats) work offline. serve runs the HTTP
API with a job store and a worker pool.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./nexus.yaml or ~/.config/nexus/nexus.yaml)")
	rootCmd.PersistentFlags().String("catalog", "", "format catalog YAML overriding the built-in graph and prices")
	_ = viper.BindPFlag("catalog_path", rootCmd.PersistentFlags().Lookup("catalog"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("nexus")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "nexus"))
		}
	}

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadCatalog reads the configuration and the catalog it points at.
func loadCatalog() (*config.Config, *catalog.Catalog, error) {
	cfg := config.Load(viper.GetViper())
	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return nil, nil, err
	}
	return cfg, cat, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
