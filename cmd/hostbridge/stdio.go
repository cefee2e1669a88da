package main

import (
	"context"
	"os"

	"github.com/aretw0/hostbridge/pkg/adapters/stdio"
	"github.com/aretw0/hostbridge/pkg/runner"
	"github.com/spf13/cobra"
)

var stdioCmd = &cobra.Command{
	Use:   "stdio",
	Short: "Exchange envelopes as JSON lines on stdin/stdout",
	Long: `Reads one envelope per line from stdin and writes responses, starting with
the boot frame, one per line to stdout. Logs go to stderr.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, _, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		sm := runner.NewSignalManager(context.Background())
		defer sm.Stop()
		ctx := sm.Context()

		runCtx, stopRunner := context.WithCancel(ctx)
		defer stopRunner()
		go func() { _ = rt.Bridge.Run(runCtx) }()

		session := stdio.NewSession(rt.Bridge, os.Stdin, os.Stdout, stdio.WithLogger(rt.Logger))
		done := make(chan error, 1)
		go func() { done <- session.Serve(ctx) }()

		select {
		case err := <-done:
			if err != nil && !sm.Interrupted() {
				return err
			}
			// Let responses to the last lines reach stdout.
			_ = rt.Bridge.Sync(ctx)
			return nil
		case <-ctx.Done():
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(stdioCmd)
	stdioCmd.Flags().String("document", "", "HTML document the dialogs and exports operate on")
}
