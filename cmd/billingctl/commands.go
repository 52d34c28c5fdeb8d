package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/chatbilling/internal/app"
	"github.com/dmitrymomot/chatbilling/pkg/config"
	"github.com/dmitrymomot/chatbilling/pkg/jwt"
	"github.com/dmitrymomot/chatbilling/pkg/pg"
	"github.com/dmitrymomot/chatbilling/pkg/pricing"
	"github.com/dmitrymomot/chatbilling/pkg/renewal"
)

var errPostgresOnly = errors.New("migrate requires STORAGE=postgres")

func loadEnvFiles(paths []string) error {
	return config.LoadEnvFiles(paths...)
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := app.LoadSettings()
			if err != nil {
				return err
			}
			if s.App.Storage != app.StoragePostgres {
				return errPostgresOnly
			}
			log := app.NewLogger(s.App)

			pool, err := pg.Connect(cmd.Context(), s.Postgres)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := pg.Migrate(cmd.Context(), pool, s.Postgres, log); err != nil {
				return err
			}
			version, err := pg.SchemaVersion(cmd.Context(), pool, s.Postgres)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrations applied, schema version %d\n", version)
			return nil
		},
	}
}

func sweepCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run one renewal sweep now",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := app.LoadSettings()
			if err != nil {
				return err
			}
			a, err := app.New(cmd.Context(), s, app.NewLogger(s.App))
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.Sweeper.Sweep(cmd.Context())
			if errors.Is(err, renewal.ErrSweepInProgress) {
				fmt.Fprintln(cmd.OutOrStdout(), "another sweep is running, nothing to do")
				return nil
			}
			if err != nil {
				return err
			}
			return printSweep(cmd.OutOrStdout(), res, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

func printSweep(w io.Writer, res renewal.Result, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	_, err := fmt.Fprintf(w, "processed: %d\nrenewed:   %d\nfailed:    %d\n", len(res.Processed), res.Renewed, res.Failed)
	return err
}

func pricingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pricing",
		Short: "Print the price list",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printPricing(cmd.OutOrStdout())
		},
	}
}

func printPricing(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIER\tCYCLE\tUNITS\tPRICE")
	for _, t := range pricing.Tiers {
		for _, c := range pricing.BillingCycles {
			e := pricing.Lookup(t, c)
			units := fmt.Sprint(e.MaxUnits)
			if t.HasUnlimitedQuota() {
				units = "unlimited"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", t, c, units, e.Price.StringFixed(2))
		}
	}
	return tw.Flush()
}

func tokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token <user-id>",
		Short: "Issue an access token for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.LoadSettings()
			if err != nil {
				return err
			}
			tokens, err := jwt.New(s.App.JWTSecret, jwt.WithIssuer(s.App.JWTIssuer), jwt.WithTTL(s.App.JWTTTL))
			if err != nil {
				return err
			}
			token, err := tokens.Issue(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
}
