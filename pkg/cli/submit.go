package cli

import (
	"context"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/secmon-lab/kujo/pkg/domain/model"
	"github.com/secmon-lab/kujo/pkg/utils/async"
	"github.com/urfave/cli/v3"
)

func cmdSubmit() *cli.Command {
	var (
		appCfg appConfig
		req    model.ComplaintRequest
		score  float64
	)

	flags := joinFlags(
		appCfg.store.Flags(),
		appCfg.form.Flags(),
		appCfg.slack.Flags(),
		[]cli.Flag{
			&cli.StringFlag{
				Name:        "name",
				Usage:       "Name of the person complaining",
				Category:    "Complaint",
				Destination: &req.Name,
			},
			&cli.StringFlag{
				Name:        "email",
				Usage:       "Contact email",
				Category:    "Complaint",
				Destination: &req.Email,
			},
			&cli.StringFlag{
				Name:        "category",
				Usage:       "Complaint category",
				Category:    "Complaint",
				Destination: &req.Category,
			},
			&cli.StringFlag{
				Name:        "municipality",
				Usage:       "Municipality the complaint refers to",
				Category:    "Complaint",
				Destination: &req.Municipality,
			},
			&cli.StringFlag{
				Name:        "severity",
				Usage:       "Severity label",
				Category:    "Complaint",
				Destination: &req.Severity,
			},
			&cli.FloatFlag{
				Name:        "score",
				Usage:       "Numeric severity score, mapped from the label when omitted",
				Category:    "Complaint",
				Destination: &score,
			},
			&cli.StringFlag{
				Name:        "description",
				Usage:       "Free text description",
				Category:    "Complaint",
				Destination: &req.Description,
			},
		},
	)

	return &cli.Command{
		Name:  "submit",
		Usage: "Append one complaint to the store",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.IsSet("score") {
				s := model.Score(score)
				req.SeverityScore = &s
			}

			uc, closeRepo, err := appCfg.buildDashboard(ctx, buildOption{slack: true})
			if err != nil {
				return err
			}
			defer closeRepo()

			complaint, err := uc.Submit(ctx, req)
			if err != nil {
				return err
			}

			// the notification runs in the background; let it finish before exiting
			waitCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			if err := async.Wait(waitCtx); err != nil {
				ctxlog.From(ctx).Warn("Notification not completed", "error", err)
			}

			return printJSON(c.Root().Writer, complaint)
		},
	}
}
