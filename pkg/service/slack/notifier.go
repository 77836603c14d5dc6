package slack

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/kujo/pkg/domain/interfaces"
	"github.com/secmon-lab/kujo/pkg/domain/model"
	"github.com/slack-go/slack"
)

// Notifier announces submitted complaints in a Slack channel
type Notifier struct {
	client    interfaces.SlackClient
	channelID string
	blocks    *BlockBuilder
}

// NewNotifier creates a notifier posting to channelID
func NewNotifier(client interfaces.SlackClient, channelID string) *Notifier {
	return &Notifier{
		client:    client,
		channelID: channelID,
		blocks:    NewBlockBuilder(),
	}
}

// Verify checks the token and logs the bot identity
func (n *Notifier) Verify(ctx context.Context) error {
	resp, err := n.client.AuthTestContext(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to verify Slack token")
	}

	ctxlog.From(ctx).Info("Slack notifier ready",
		"team", resp.Team,
		"bot_user", resp.User,
		"channel", n.channelID,
	)
	return nil
}

// NotifyComplaint posts the complaint to the configured channel
func (n *Notifier) NotifyComplaint(ctx context.Context, complaint *model.Complaint, total int) error {
	if complaint == nil {
		return goerr.New("complaint is nil")
	}

	channel, ts, err := n.client.PostMessage(ctx, n.channelID,
		slack.MsgOptionText(n.blocks.BuildComplaintText(complaint), false),
		slack.MsgOptionBlocks(n.blocks.BuildComplaintBlocks(complaint, total)...),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to post complaint notification",
			goerr.V("channel", n.channelID),
			goerr.V("complaint_id", complaint.ID))
	}

	ctxlog.From(ctx).Debug("Complaint notification posted",
		"channel", channel,
		"ts", ts,
		"complaint_id", complaint.ID,
	)
	return nil
}
