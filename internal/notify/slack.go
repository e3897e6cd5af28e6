package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/ikkim/bookcity-backend/internal/app/service"
	"github.com/slack-go/slack"
)

// SlackNotifier posts subscription sweep summaries to a channel.
type SlackNotifier struct {
	client    *slack.Client
	channelID string
}

func NewSlackNotifier(token, channelID string, options ...slack.Option) *SlackNotifier {
	return &SlackNotifier{
		client:    slack.New(token, options...),
		channelID: channelID,
	}
}

func (n *SlackNotifier) NotifySweep(ctx context.Context, result *service.SweepResult) error {
	_, _, err := n.client.PostMessageContext(ctx,
		n.channelID,
		slack.MsgOptionText(SweepSummary(result), false),
	)
	if err != nil {
		return fmt.Errorf("failed to post message to Slack: %w", err)
	}
	return nil
}

// SweepSummary renders a sweep result as a short Slack message.
func SweepSummary(result *service.SweepResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Subscription sweep %s (%s): %d due, %d generated, %d failed",
		result.RunDate.String(), result.Trigger, result.Due, result.Generated, result.Failed)
	for _, f := range result.Failures {
		fmt.Fprintf(&b, "\n- subscription %d: %s", f.SubscriptionID, f.Error)
	}
	return b.String()
}
