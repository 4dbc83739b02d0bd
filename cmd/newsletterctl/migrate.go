package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"newsletter/internal/platform/config"
	"newsletter/internal/platform/store"
	"newsletter/internal/platform/store/migrate"

	"github.com/spf13/cobra"
)

// migrator is the slice of *migrate.Migrator the commands use
type migrator interface {
	Up(ctx context.Context) error
	Down(ctx context.Context) error
	Status(ctx context.Context) ([]migrate.Status, error)
	Close() error
}

// openMigrator is swapped in tests
var openMigrator = func() (migrator, error) {
	pg := store.PGFromConfig(config.New().Prefix("SERVICE_PGSQL_"))
	return migrate.Open(pg.DSN())
}

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply, roll back or list schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		RunE: withMigrator(func(cmd *cobra.Command, m migrator) error {
			return m.Up(cmdContext(cmd))
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: withMigrator(func(cmd *cobra.Command, m migrator) error {
			return m.Down(cmdContext(cmd))
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "List migrations and whether they are applied",
		RunE: withMigrator(func(cmd *cobra.Command, m migrator) error {
			st, err := m.Status(cmdContext(cmd))
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "VERSION\tAPPLIED\tFILE")
			for _, s := range st {
				fmt.Fprintf(tw, "%d\t%t\t%s\n", s.Version, s.Applied, s.Path)
			}
			return tw.Flush()
		}),
	})
	return cmd
}

func withMigrator(fn func(*cobra.Command, migrator) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		m, err := openMigrator()
		if err != nil {
			return err
		}
		defer func() { _ = m.Close() }()
		return fn(cmd, m)
	}
}
