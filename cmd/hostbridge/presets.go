package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/aretw0/hostbridge/internal/cli"
	"github.com/aretw0/hostbridge/pkg/domain"
	"github.com/aretw0/hostbridge/pkg/storage"
	"github.com/spf13/cobra"
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "Inspect and edit stored presets",
	Long: `Runs the storage gateway directly against the configured store and prints
the same Result envelopes the UI core receives.`,
}

// withGateway opens the configured store for a one-shot command.
func withGateway(cmd *cobra.Command, fn func(g *storage.Gateway) any) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := cli.NewLogger(cfg.Log)
	store, closeStore, err := cli.OpenStore(cfg.Store, nil)
	if err != nil {
		return err
	}
	defer closeStore()

	return printResult(cmd.OutOrStdout(), fn(storage.New(store, storage.WithLogger(logger))))
}

func printResult(w io.Writer, result any) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(raw))
	if outcome, ok := result.(domain.Outcome); ok && !outcome.IsOk() {
		return fmt.Errorf("%s", outcome.Error())
	}
	return err
}

var presetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List preset keys",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withGateway(cmd, func(g *storage.Gateway) any {
			return g.List(cmd.Context())
		})
	},
}

var presetsGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print a preset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withGateway(cmd, func(g *storage.Gateway) any {
			return g.Load(cmd.Context(), args[0])
		})
	},
}

var presetsPutCmd = &cobra.Command{
	Use:   "put <key> [json]",
	Short: "Store a preset; the payload is read from stdin when omitted",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var payload []byte
		if len(args) == 2 {
			payload = []byte(args[1])
		} else {
			var err error
			payload, err = io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("failed to read payload: %w", err)
			}
		}
		if !json.Valid(payload) {
			return fmt.Errorf("%w: payload is not valid JSON", domain.ErrMalformedPayload)
		}
		return withGateway(cmd, func(g *storage.Gateway) any {
			return g.Save(cmd.Context(), args[0], payload)
		})
	},
}

var presetsRmCmd = &cobra.Command{
	Use:     "rm <key>",
	Aliases: []string{"delete"},
	Short:   "Delete a preset",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withGateway(cmd, func(g *storage.Gateway) any {
			return g.Delete(cmd.Context(), args[0])
		})
	},
}

func init() {
	rootCmd.AddCommand(presetsCmd)
	presetsCmd.AddCommand(presetsListCmd, presetsGetCmd, presetsPutCmd, presetsRmCmd)
}
