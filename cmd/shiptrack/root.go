package main

import (
	"context"
	"io"
	"time"

	"shiptrack/internal/features/tracking/domain"
	"shiptrack/internal/features/tracking/report"
	trackingservice "shiptrack/internal/features/tracking/service"

	"github.com/spf13/cobra"
)

// defaultConfigPath is read when --config is not given.
const defaultConfigPath = "tracking.yml"

type rootOptions struct {
	configPath string
	verbose    bool
	refresh    bool
}

// newRootCmd builds the command tree. The root command prints the report for
// the configured tracking numbers and exits.
func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "shiptrack",
		Short: "Report the status of tracked packages",
		Long: `shiptrack queries the carrier once for every tracking number listed in the
configuration file and prints a status report, highlighting packages
expected to arrive today.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := bootstrap(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer app.Close()

			return runReport(cmd.Context(), cmd.OutOrStdout(), func(ctx context.Context) ([]domain.TrackedPackage, error) {
				return app.service.Track(ctx, domain.CarrierUSPS, app.cfg.USPS.Tracking)
			})
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", defaultConfigPath, "Path to the YAML configuration file")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVar(&opts.refresh, "refresh", false, "Ignore cached carrier responses")

	cmd.AddCommand(newTrackCmd(opts))
	cmd.AddCommand(newServeCmd(opts))

	return cmd
}

// runReport prints the banner, fetches the packages and renders the report.
func runReport(ctx context.Context, out io.Writer, fetch func(context.Context) ([]domain.TrackedPackage, error)) error {
	presenter := report.NewPresenter(out)
	if err := presenter.Banner(); err != nil {
		return err
	}

	packages, err := fetch(ctx)
	if err != nil {
		return err
	}

	return presenter.Render(report.Build(packages, time.Now()))
}

// lookup adapts TrackByName to the report fetch signature.
func lookup(svc *trackingservice.TrackingService, carrier string, trackingNumbers []string) func(context.Context) ([]domain.TrackedPackage, error) {
	return func(ctx context.Context) ([]domain.TrackedPackage, error) {
		return svc.TrackByName(ctx, carrier, trackingNumbers)
	}
}
