// Package cli implements the monchatbot CLI commands.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/rcliao/monchatbot/internal/config"
	"github.com/rcliao/monchatbot/internal/store"
	"github.com/spf13/cobra"
)

var (
	configPath string
	memoryPath string
	formatFlag string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "monchatbot",
	Short: "A French chatbot that learns from its conversations",
	Long: "A small French-language chatbot. It answers small talk, searches Wikipedia and Google on request, " +
		"reuses answers it has memorized and learns new ones from external sources.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: ./monchatbot.yaml)")
	RootCmd.PersistentFlags().StringVarP(&memoryPath, "memory", "m", "", "Memory file path (overrides memory.path)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
}

func loadConfig() *config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		exitErr("load config", err)
	}
	if memoryPath != "" {
		cfg.Memory.Path = memoryPath
	}
	return cfg
}

func newLogger(cfg *config.Config) *slog.Logger {
	logger := cfg.Log.NewLogger(os.Stderr)
	slog.SetDefault(logger)
	return logger
}

func openStore(cfg *config.Config, logger *slog.Logger) store.Store {
	s, err := store.Open(cfg.Memory.Backend, store.Options{
		Path:    cfg.Memory.Path,
		MaxSize: cfg.Memory.MaxSize,
	}, logger)
	if err != nil {
		exitErr("open store", err)
	}
	return s
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
