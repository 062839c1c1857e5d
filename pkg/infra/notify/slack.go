package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/shipwright/pkg/domain/model"
	"github.com/m-mizutani/shipwright/pkg/domain/types"
	"github.com/slack-go/slack"
)

// SlackNotifier posts run results to a Slack channel.
type SlackNotifier struct {
	client  *slack.Client
	channel string
}

// Option configures the Slack notifier
type Option func(*options)

type options struct {
	apiURL string
}

// WithAPIURL points the client at a different API endpoint, for tests.
func WithAPIURL(apiURL string) Option {
	return func(o *options) {
		o.apiURL = apiURL
	}
}

// NewSlack creates a notifier posting to the given channel with a bot
// token.
func NewSlack(token, channel string, opts ...Option) *SlackNotifier {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	var clientOpts []slack.Option
	if o.apiURL != "" {
		clientOpts = append(clientOpts, slack.OptionAPIURL(o.apiURL))
	}

	return &SlackNotifier{
		client:  slack.New(token, clientOpts...),
		channel: channel,
	}
}

// NotifyRun posts a summary of a finished run. Succeeded runs are
// green, failed runs red with the failure message attached.
func (x *SlackNotifier) NotifyRun(ctx context.Context, run *model.PipelineRun) error {
	color := "good"
	title := fmt.Sprintf("Release pipeline succeeded: %s %s", run.FullName(), run.Tag)
	if run.Status == model.RunStatusFailed {
		color = "danger"
		title = fmt.Sprintf("Release pipeline failed: %s %s", run.FullName(), run.Tag)
	}

	fields := []slack.AttachmentField{
		{Title: "Repository", Value: run.FullName(), Short: true},
		{Title: "Tag", Value: run.Tag, Short: true},
		{Title: "Run ID", Value: run.ID.String(), Short: true},
		{Title: "Duration", Value: run.Duration().Round(time.Second).String(), Short: true},
	}
	if run.ReleaseURL != "" {
		fields = append(fields, slack.AttachmentField{Title: "Release", Value: run.ReleaseURL})
	}
	if run.ArtifactName != "" {
		fields = append(fields, slack.AttachmentField{Title: "Artifact", Value: run.ArtifactName, Short: true})
	}
	if run.Error != "" {
		fields = append(fields, slack.AttachmentField{Title: "Error", Value: run.Error})
	}

	attachment := slack.Attachment{
		Color:  color,
		Title:  title,
		Fields: fields,
		Footer: types.AppName,
	}

	_, _, err := x.client.PostMessageContext(ctx, x.channel, slack.MsgOptionAttachments(attachment))
	if err != nil {
		return goerr.Wrap(err, "failed to post slack message", goerr.V("channel", x.channel))
	}
	return nil
}
