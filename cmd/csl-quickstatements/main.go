// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the csl-quickstatements CLI, which
// compiles CSL citation records into QuickStatements edit scripts.
package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/pdiddy/csl-quickstatements/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// logOutput receives warnings from every component. It is stderr unless
// --log-file names a rotated log file.
var logOutput io.Writer = os.Stderr

// logFile is the rotating log opened for --log-file, closed after the run.
var logFile *lumberjack.Logger

// secretDefault returns value if set, or the secret stored under key.
func secretDefault(key, value string) string {
	if value != "" {
		return value
	}
	return loadedSecrets[key]
}

var rootCmd = &cobra.Command{
	Use:   "csl-quickstatements",
	Short: "Compile CSL citation records into QuickStatements",
	Long: `csl-quickstatements turns CSL-JSON or CSL-YAML citation records into a
QuickStatements script for Wikidata or another Wikibase. Authors missing an
ORCID are looked up in the ORCID registry, and every identifier is resolved
against the knowledge base with one SPARQL query, so records and statements
that already exist are not created again.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading .env: %w", err)
		}

		if path := viper.GetString("log_file"); path != "" {
			logFile = &lumberjack.Logger{
				Filename:   path,
				MaxSize:    10, // megabytes
				MaxBackups: 3,
				MaxAge:     28, // days
			}
			logOutput = logFile
		}

		s, err := secrets.Load(viper.GetString("secrets_dir"), logOutput)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(logOutput, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if logFile != nil {
			return logFile.Close()
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./csl-quickstatements.yaml or ~/.config/csl-quickstatements/csl-quickstatements.yaml)")
	rootCmd.PersistentFlags().String("log-file", "", "write warnings to a size-rotated log file instead of stderr")
	rootCmd.PersistentFlags().String("secrets-dir", ".secrets", "directory of credential files (orcid-token, contact-email)")

	viper.BindPFlag("log_file", rootCmd.PersistentFlags().Lookup("log-file"))
	viper.BindPFlag("secrets_dir", rootCmd.PersistentFlags().Lookup("secrets-dir"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("csl-quickstatements")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "csl-quickstatements"))
		}
	}

	setDefaults()

	viper.SetEnvPrefix("CSL_QS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
