package main

import (
	"fmt"

	"newsletter/internal/services/subscriptions/domain"

	"github.com/spf13/cobra"
)

func newTokenCommand() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print freshly generated subscription tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 1 {
				return fmt.Errorf("--count must be at least 1")
			}
			for range count {
				tok, err := domain.GenerateToken()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), tok)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 1, "How many tokens to print")
	return cmd
}
