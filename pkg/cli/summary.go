package cli

import (
	"context"

	"github.com/secmon-lab/kujo/pkg/cli/config"
	"github.com/secmon-lab/kujo/pkg/domain/model"
	"github.com/urfave/cli/v3"
)

func cmdSummary() *cli.Command {
	var (
		appCfg    appConfig
		filterCfg config.Filter
		withRows  bool
	)

	flags := joinFlags(
		appCfg.store.Flags(),
		appCfg.form.Flags(),
		filterCfg.Flags(),
		[]cli.Flag{
			&cli.BoolFlag{
				Name:        "rows",
				Usage:       "Include the filtered rows in the output",
				Category:    "Output",
				Destination: &withRows,
			},
		},
	)

	return &cli.Command{
		Name:  "summary",
		Usage: "Print the summary of the filtered complaints as JSON",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			var filter *model.Filter
			if filterCfg.IsConfigured() {
				f, err := filterCfg.Configure()
				if err != nil {
					return err
				}
				filter = f
			}

			uc, closeRepo, err := appCfg.buildDashboard(ctx, buildOption{})
			if err != nil {
				return err
			}
			defer closeRepo()

			view, err := uc.Query(ctx, filter)
			if err != nil {
				return err
			}
			if !withRows {
				view.Rows = nil
			}
			return printJSON(c.Root().Writer, view)
		},
	}
}
