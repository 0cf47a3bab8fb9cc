package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/phuslu/log"
	"github.com/spf13/cobra"

	"github.com/devinalusiana15/KMS-OOP/config"
	"github.com/devinalusiana15/KMS-OOP/internal/engine"
)

var (
	// Command-line flags
	configFile string
	jsonOutput bool

	// Global state, set before any subcommand runs
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "kms",
	Short: "Document question answering service",
	Long: `kms indexes uploaded PDF documents, builds an ontology for each of them and
answers natural language questions from the indexed sentences and the ontology.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return err
		}
		setupLogger(cfg.Logging)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Configuration file (.toml, .yaml or .yml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print results as JSON")

	rootCmd.AddCommand(serveCmd, ingestCmd, askCmd, refinementsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setupLogger configures the process logger once at startup.
func setupLogger(lc config.LoggingConfig) {
	logger := log.Logger{
		Level:  log.ParseLevel(lc.Level),
		Writer: &log.IOWriter{Writer: os.Stderr},
	}
	if strings.EqualFold(lc.Format, "console") {
		logger.Writer = &log.ConsoleWriter{
			Writer:      os.Stderr,
			ColorOutput: true,
		}
	}
	log.DefaultLogger = logger
}

// openEngine builds the engine from the loaded configuration.
func openEngine() (*engine.Engine, error) {
	eng, err := engine.NewFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to start engine: %w", err)
	}
	return eng, nil
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
