package main

import (
	"github.com/spf13/cobra"
)

func newTrackCmd(opts *rootOptions) *cobra.Command {
	var carrier string

	cmd := &cobra.Command{
		Use:   "track NUMBER...",
		Short: "Report the status of tracking numbers given on the command line",
		Example: `  shiptrack track 9400111899223197428490
  shiptrack track --carrier usps 9400111899223197428490 9205590164917312751089`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer app.Close()

			return runReport(cmd.Context(), cmd.OutOrStdout(), lookup(app.service, carrier, args))
		},
	}

	cmd.Flags().StringVar(&carrier, "carrier", "usps", "Carrier name (usps, fedex, ups, dhl)")

	return cmd
}
