package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/kujo/pkg/cli/config"
	"github.com/secmon-lab/kujo/pkg/domain/model"
	"github.com/urfave/cli/v3"
)

func cmdAsk() *cli.Command {
	var (
		appCfg    appConfig
		filterCfg config.Filter
	)

	flags := joinFlags(
		appCfg.store.Flags(),
		appCfg.form.Flags(),
		appCfg.llm.Flags(),
		filterCfg.Flags(),
	)

	return &cli.Command{
		Name:      "ask",
		Usage:     "Ask the assistant about the filtered complaints",
		ArgsUsage: "<question>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			text := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
			if text == "" {
				return goerr.New("question is required", goerr.T(model.ErrTagInvalidRequest))
			}

			filter, err := filterCfg.Configure()
			if err != nil {
				return err
			}

			uc, closeRepo, err := appCfg.buildDashboard(ctx, buildOption{llm: true})
			if err != nil {
				return err
			}
			defer closeRepo()

			answer, err := uc.Ask(ctx, model.Question{
				Filter: *filter,
				Text:   text,
			})
			if err != nil {
				return err
			}

			if _, err := fmt.Fprintln(c.Root().Writer, answer.Text); err != nil {
				return goerr.Wrap(err, "failed to write answer")
			}
			return nil
		},
	}
}
