// Command labsite builds and serves the research group website.
package main

import (
	"log/slog"
	"os"

	"github.com/cryptoresearch/labsite/internal/config"
	"github.com/cryptoresearch/labsite/internal/site"
	"github.com/spf13/cobra"
)

var (
	contentDir string
	outputDir  string
	lenient    bool
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:           "labsite",
	Short:         "Build the research group website",
	Long:          `labsite renders posts, bounties and legacy pages with numbered sections, cross-references and bibliographies.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&contentDir, "content", "", "content directory (overrides CONTENT_DIR)")
	rootCmd.PersistentFlags().StringVar(&outputDir, "output", "", "output directory (overrides OUTPUT_DIR)")
	rootCmd.PersistentFlags().BoolVar(&lenient, "lenient", false, "render unresolved references as ?? instead of failing")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(buildCmd, checkCmd, serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		newLogger().Error("labsite failed", "error", err)
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// loadConfig reads the environment and applies command-line overrides.
func loadConfig() (config.Config, error) {
	cfg := config.Load()
	if contentDir != "" {
		cfg.ContentDir = contentDir
	}
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
	if lenient {
		cfg.StrictReferences = false
	}
	return cfg, cfg.Validate()
}

func newBuilder() (*site.Builder, config.Config, *slog.Logger, error) {
	log := newLogger()
	cfg, err := loadConfig()
	if err != nil {
		return nil, cfg, log, err
	}
	b, err := site.New(cfg, log)
	return b, cfg, log, err
}
