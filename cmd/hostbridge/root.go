package main

import (
	"fmt"
	"os"

	"github.com/aretw0/hostbridge/internal/cli"
	"github.com/aretw0/hostbridge/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "hostbridge",
	Short: "hostbridge connects a UI core to host dialogs, exports and preset storage",
	Long: `hostbridge routes the channel messages of a self-contained UI core to host
capabilities: modal dialogs, SVG export, persistent presets and diagnostics.
The UI core connects over HTTP+SSE, WebSocket, JSON lines on stdio, or MCP.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("config", "c", "", "Config file (default ./"+config.DefaultPath+" if present)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: auto, text, json")
	rootCmd.PersistentFlags().String("store", "", "Store driver: memory, file, redis, sqlite")
	rootCmd.PersistentFlags().String("store-path", "", "Path for the file and sqlite drivers")
}

// loadConfig reads the config file and environment, then applies flags that
// were set explicitly.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-format") {
		cfg.Log.Format, _ = flags.GetString("log-format")
	}
	if flags.Changed("store") {
		cfg.Store.Driver, _ = flags.GetString("store")
	}
	if flags.Changed("store-path") {
		cfg.Store.Path, _ = flags.GetString("store-path")
	}
	if flags.Lookup("addr") != nil && flags.Changed("addr") {
		cfg.Server.Addr, _ = flags.GetString("addr")
	}
	if flags.Lookup("document") != nil && flags.Changed("document") {
		cfg.Document, _ = flags.GetString("document")
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// newRuntime loads configuration and wires the bridge.
func newRuntime(cmd *cobra.Command) (*cli.Runtime, config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, config.Config{}, err
	}
	rt, err := cli.NewRuntime(cfg, cli.NewLogger(cfg.Log))
	if err != nil {
		return nil, config.Config{}, fmt.Errorf("error initializing hostbridge: %w", err)
	}
	return rt, cfg, nil
}
