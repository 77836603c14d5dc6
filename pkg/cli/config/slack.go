package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	slackSvc "github.com/secmon-lab/kujo/pkg/service/slack"
	"github.com/urfave/cli/v3"
)

// Slack holds Slack notification configuration
type Slack struct {
	OAuthToken string
	ChannelID  string
}

// Flags returns CLI flags for Slack configuration
func (s *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-oauth-token",
			Usage:       "Slack bot token used to post complaint notifications",
			Category:    "Slack",
			Sources:     cli.EnvVars("KUJO_SLACK_OAUTH_TOKEN"),
			Destination: &s.OAuthToken,
		},
		&cli.StringFlag{
			Name:        "slack-channel",
			Usage:       "Slack channel ID receiving complaint notifications",
			Category:    "Slack",
			Sources:     cli.EnvVars("KUJO_SLACK_CHANNEL"),
			Destination: &s.ChannelID,
		},
	}
}

// Configure creates the notifier. It returns nil when Slack is not configured.
func (s *Slack) Configure(ctx context.Context) (*slackSvc.Notifier, error) {
	logger := ctxlog.From(ctx)

	if s.OAuthToken == "" && s.ChannelID == "" {
		logger.Info("Slack not configured, notifications are disabled")
		return nil, nil
	}
	if !s.IsConfigured() {
		return nil, goerr.New("both Slack token and channel are required",
			goerr.V("has_oauth_token", s.OAuthToken != ""),
			goerr.V("channel", s.ChannelID),
		)
	}

	notifier := slackSvc.NewNotifier(slackSvc.New(s.OAuthToken), s.ChannelID)
	if err := notifier.Verify(ctx); err != nil {
		return nil, err
	}
	return notifier, nil
}

// IsConfigured checks if Slack is configured
func (s *Slack) IsConfigured() bool {
	return s.OAuthToken != "" && s.ChannelID != ""
}

// LogValue returns structured log value
func (s Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("has_oauth_token", s.OAuthToken != ""),
		slog.String("channel", s.ChannelID),
	)
}
