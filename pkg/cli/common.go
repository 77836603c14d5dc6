package cli

import (
	"context"
	"encoding/json"
	"io"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/kujo/pkg/cli/config"
	"github.com/secmon-lab/kujo/pkg/service/llm"
	slackSvc "github.com/secmon-lab/kujo/pkg/service/slack"
	"github.com/secmon-lab/kujo/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// appConfig is the set of flag groups every dashboard command shares
type appConfig struct {
	store config.Store
	llm   config.LLM
	slack config.Slack
	form  config.Form
}

func (a *appConfig) flags() []cli.Flag {
	return joinFlags(
		a.store.Flags(),
		a.form.Flags(),
		a.llm.Flags(),
		a.slack.Flags(),
	)
}

// buildOption selects the optional services a command uses
type buildOption struct {
	llm   bool
	slack bool
}

// buildDashboard wires the repository and services into the use case. The returned
// closer releases the repository.
func (a *appConfig) buildDashboard(ctx context.Context, opt buildOption) (*usecase.Dashboard, func(), error) {
	form, err := a.form.Configure(ctx)
	if err != nil {
		return nil, nil, err
	}

	repo, err := a.store.Configure(ctx)
	if err != nil {
		return nil, nil, err
	}
	closer := func() {
		_ = repo.Close()
	}

	var llmService *llm.LLMService
	if opt.llm {
		client, err := a.llm.Configure(ctx)
		if err != nil {
			closer()
			return nil, nil, err
		}
		if client != nil {
			llmService = llm.NewLLMService(client)
		}
	}

	var notifier *slackSvc.Notifier
	if opt.slack {
		notifier, err = a.slack.Configure(ctx)
		if err != nil {
			closer()
			return nil, nil, err
		}
	}

	uc := usecase.NewDashboard(repo, llmService, notifier, usecase.NewDashboardConfig(
		usecase.WithFormConfig(form),
	))
	return uc, closer, nil
}

// printJSON writes v as indented JSON
func printJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return goerr.Wrap(err, "failed to write JSON output")
	}
	return nil
}

// joinFlags concatenates flag groups. A name already taken by an earlier group is skipped,
// since urfave/cli panics on duplicates and groups such as the store flags are shared.
func joinFlags(groups ...[]cli.Flag) []cli.Flag {
	seen := make(map[string]bool)
	var result []cli.Flag
	for _, group := range groups {
		for _, f := range group {
			names := f.Names()
			if len(names) > 0 && seen[names[0]] {
				continue
			}
			for _, name := range names {
				seen[name] = true
			}
			result = append(result, f)
		}
	}
	return result
}
