package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"newsletter/internal/modkit"
	"newsletter/internal/modkit/module"
	"newsletter/internal/platform/config"
	"newsletter/internal/platform/logger"
	"newsletter/internal/platform/mail"
	"newsletter/internal/platform/store"
	subsmod "newsletter/internal/services/subscriptions/module"
	"newsletter/internal/services/subscriptions/service"

	"github.com/spf13/cobra"
)

// openReconciler is swapped in tests
var openReconciler = func(ctx context.Context) (subsmod.Reconciler, subsmod.Options, func(), error) {
	root := config.New()
	l := logger.Get()

	st, err := store.Open(ctx, store.Config{
		AppName: "newsletterctl",
		PG:      store.PGFromConfig(root.Prefix("SERVICE_PGSQL_")),
	}, store.WithLogger(*l))
	if err != nil {
		return nil, subsmod.Options{}, nil, err
	}
	transport, err := mail.New(ctx, mail.FromConfig(root.Prefix("EMAIL_")))
	if err != nil {
		_ = st.Close()
		return nil, subsmod.Options{}, nil, err
	}

	opts := subsmod.FromConfig(root)
	m := subsmod.New(modkit.Deps{Log: *l, Cfg: root, PG: st.PG, Mail: transport}, opts)
	return module.MustPortsOf[subsmod.Reconciler](m), opts, func() { _ = st.Close() }, nil
}

func newReconcileCommand() *cobra.Command {
	var (
		olderThan time.Duration
		limit     int
		reissue   bool
		baseURL   string
	)

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "List stale pending subscribers and optionally resend their confirmation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmdContext(cmd)
			rec, opts, closeFn, err := openReconciler(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			in := service.ReconcileInput{
				OlderThan: olderThan,
				Limit:     limit,
				Reissue:   reissue,
				BaseURL:   baseURL,
			}
			if !cmd.Flags().Changed("older-than") {
				in.OlderThan = opts.StaleAfter
			}
			if in.BaseURL == "" {
				in.BaseURL = opts.BaseURL
			}

			rep, err := rec.Reconcile(ctx, in)
			if err != nil {
				return err
			}
			return printReport(cmd, rep)
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 48*time.Hour, "Pending subscribers registered before now minus this are stale")
	cmd.Flags().IntVar(&limit, "limit", service.DefaultReconcileBatch, "Max rows to inspect")
	cmd.Flags().BoolVar(&reissue, "reissue", false, "Issue a new token and resend the email to stale rows without a token")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "Confirmation link base, defaults to CORE_API_BASE_URL")
	return cmd
}

func printReport(cmd *cobra.Command, rep service.ReconcileReport) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SUBSCRIBER\tEMAIL\tSUBSCRIBED_AT\tHAS_TOKEN")
	for _, s := range rep.Stale {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\n", s.ID, s.Email, s.SubscribedAt.UTC().Format(time.RFC3339), s.HasToken)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "stale=%d tokenless=%d reissued=%d failed=%d\n",
		len(rep.Stale), rep.Tokenless, rep.Reissued, rep.Failed)
	return err
}
