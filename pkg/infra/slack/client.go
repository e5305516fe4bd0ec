package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/m-mizutani/ghtrigger/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"
)

// Name of the consumer
const Name = "slack"

// Client posts a summary of each envelope to a Slack channel
type Client struct {
	api     *slack.Client
	channel string
}

// New creates a Slack consumer. opts are passed to slack.New, e.g.
// slack.OptionAPIURL for tests.
func New(token, channel string, opts ...slack.Option) (*Client, error) {
	if token == "" {
		return nil, goerr.New("slack token is required")
	}
	if channel == "" {
		return nil, goerr.New("slack channel is required")
	}

	return &Client{
		api:     slack.New(token, opts...),
		channel: channel,
	}, nil
}

func (c *Client) Name() string { return Name }

// Consume posts the summary and replies with the message timestamp
func (c *Client) Consume(ctx context.Context, env *model.Envelope) error {
	text, err := Summarize(env)
	if err != nil {
		return err
	}

	channelID, ts, err := c.api.PostMessageContext(ctx, c.channel,
		slack.MsgOptionText(text, false),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to post message to slack",
			goerr.V("channel", c.channel),
			goerr.V("envelope_id", env.ID),
		)
	}

	env.Reply(ctx, &model.ConsumerResponse{
		Consumer: Name,
		Status:   "posted",
		Message:  channelID + "/" + ts,
	})
	return nil
}

// Summarize renders a one-message mrkdwn summary of the envelope content
func Summarize(env *model.Envelope) (string, error) {
	var sb strings.Builder

	switch env.Metadata.EventKind {
	case model.EventKindPullRequest:
		var rec model.PullRequestRecord
		if err := json.Unmarshal([]byte(env.Content), &rec); err != nil {
			return "", goerr.Wrap(err, "failed to decode pull request content", goerr.V("envelope_id", env.ID))
		}
		sb.WriteString(fmt.Sprintf("*%s* pull request", str(rec.Repository)))
		if rec.Number != nil {
			sb.WriteString(fmt.Sprintf(" #%d", *rec.Number))
		}
		sb.WriteString(fmt.Sprintf(" %s by %s", str(rec.Action), str(rec.Author)))
		if rec.Merged != nil && *rec.Merged {
			sb.WriteString(" (merged)")
		}
		if rec.Title != nil {
			sb.WriteString("\n> " + *rec.Title)
		}

	case model.EventKindPush:
		var rec model.PushRecord
		if err := json.Unmarshal([]byte(env.Content), &rec); err != nil {
			return "", goerr.Wrap(err, "failed to decode push content", goerr.V("envelope_id", env.ID))
		}
		sb.WriteString(fmt.Sprintf("*%s* %s pushed %d commit(s) to `%s`",
			str(rec.Repository), str(rec.Pusher), len(rec.Commits), str(rec.Ref)))
		for _, commit := range rec.Commits {
			msg := str(commit.Message)
			if i := strings.IndexByte(msg, '\n'); i >= 0 {
				msg = msg[:i]
			}
			sb.WriteString(fmt.Sprintf("\n• `%s` %s (%s)", shortSHA(str(commit.ID)), msg, str(commit.Author)))
		}

	case model.EventKindRelease:
		var rec model.ReleaseRecord
		if err := json.Unmarshal([]byte(env.Content), &rec); err != nil {
			return "", goerr.Wrap(err, "failed to decode release content", goerr.V("envelope_id", env.ID))
		}
		sb.WriteString(fmt.Sprintf("*%s* release %s %s by %s",
			str(rec.Repository), str(rec.TagName), str(rec.Action), str(rec.Author)))
		if rec.Name != nil && *rec.Name != "" {
			sb.WriteString(fmt.Sprintf(" (%s)", *rec.Name))
		}

	default:
		return "", goerr.New("unsupported event kind", goerr.V("event_kind", env.Metadata.EventKind))
	}

	return sb.String(), nil
}

func str(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func shortSHA(id string) string {
	if len(id) > 7 {
		return id[:7]
	}
	return id
}
