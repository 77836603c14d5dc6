package slack_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/kujo/pkg/domain/interfaces/mocks"
	slackblocks "github.com/secmon-lab/kujo/pkg/service/slack"
	"github.com/slack-go/slack"
)

func TestNotifier_NotifyComplaint(t *testing.T) {
	client := &mocks.SlackClientMock{
		PostMessageFunc: func(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error) {
			return channelID, "1717230600.000100", nil
		},
	}
	notifier := slackblocks.NewNotifier(client, "C-ALERTS")

	gt.NoError(t, notifier.NotifyComplaint(context.Background(), newComplaint(), 3))

	calls := client.PostMessageCalls()
	gt.A(t, calls).Length(1)
	gt.Equal(t, calls[0].ChannelID, "C-ALERTS")
	// text fallback and blocks
	gt.A(t, calls[0].Options).Length(2)
}

func TestNotifier_NotifyComplaint_Error(t *testing.T) {
	client := &mocks.SlackClientMock{
		PostMessageFunc: func(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error) {
			return "", "", errors.New("channel_not_found")
		},
	}
	notifier := slackblocks.NewNotifier(client, "C-MISSING")

	err := notifier.NotifyComplaint(context.Background(), newComplaint(), 0)
	gt.Error(t, err)
	values := goerr.Values(err)
	gt.V(t, values["channel"]).Equal("C-MISSING")
}

func TestNotifier_NotifyComplaint_Nil(t *testing.T) {
	client := &mocks.SlackClientMock{}
	notifier := slackblocks.NewNotifier(client, "C-ALERTS")

	gt.Error(t, notifier.NotifyComplaint(context.Background(), nil, 0))
	gt.A(t, client.PostMessageCalls()).Length(0)
}

func TestNotifier_Verify(t *testing.T) {
	client := &mocks.SlackClientMock{
		AuthTestContextFunc: func(ctx context.Context) (*slack.AuthTestResponse, error) {
			return &slack.AuthTestResponse{Team: "kujo", User: "kujo-bot"}, nil
		},
	}
	notifier := slackblocks.NewNotifier(client, "C-ALERTS")
	gt.NoError(t, notifier.Verify(context.Background()))
	gt.A(t, client.AuthTestContextCalls()).Length(1)

	failing := &mocks.SlackClientMock{
		AuthTestContextFunc: func(ctx context.Context) (*slack.AuthTestResponse, error) {
			return nil, errors.New("invalid_auth")
		},
	}
	gt.Error(t, slackblocks.NewNotifier(failing, "C-ALERTS").Verify(context.Background()))
}
