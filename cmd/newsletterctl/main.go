// Command newsletterctl runs operator tasks against the newsletter database
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"newsletter/internal/core/version"
	"newsletter/internal/platform/logger"

	"github.com/spf13/cobra"
)

func main() {
	logger.Init(logger.FromEnv())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "newsletterctl",
		Short:         "Operator utilities for the newsletter service",
		Version:       version.Info("newsletterctl").String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newMigrateCommand())
	cmd.AddCommand(newReconcileCommand())
	cmd.AddCommand(newTokenCommand())
	return cmd
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
