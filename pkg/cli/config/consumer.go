package config

import (
	"log/slog"
	"time"

	"github.com/m-mizutani/ghtrigger/pkg/domain/interfaces"
	"github.com/m-mizutani/ghtrigger/pkg/infra/amqp"
	"github.com/m-mizutani/ghtrigger/pkg/infra/forward"
	"github.com/m-mizutani/ghtrigger/pkg/infra/logsink"
	"github.com/m-mizutani/ghtrigger/pkg/infra/slack"
	"github.com/m-mizutani/ghtrigger/pkg/usecase"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Consumer selects and configures the downstream event consumer
type Consumer struct {
	Type            string
	DispatchTimeout time.Duration

	ForwardURL    string
	ForwardSecret string `masq:"secret"`

	SlackToken   string `masq:"secret"`
	SlackChannel string

	AMQPURL           string `masq:"secret"`
	AMQPExchange      string
	AMQPRoutingPrefix string
}

// Flags returns CLI flags for consumer configuration
func (c *Consumer) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "consumer",
			Usage:       "Downstream consumer (log, http, slack, amqp)",
			Value:       logsink.Name,
			Destination: &c.Type,
			Sources:     cli.EnvVars("GHTRIGGER_CONSUMER"),
		},
		&cli.DurationFlag{
			Name:        "dispatch-timeout",
			Usage:       "Deadline for a single consumer call (0 disables)",
			Value:       usecase.DefaultDispatchTimeout,
			Destination: &c.DispatchTimeout,
			Sources:     cli.EnvVars("GHTRIGGER_DISPATCH_TIMEOUT"),
		},
		&cli.StringFlag{
			Name:        "forward-url",
			Usage:       "Endpoint envelopes are POSTed to (consumer=http)",
			Destination: &c.ForwardURL,
			Sources:     cli.EnvVars("GHTRIGGER_FORWARD_URL"),
		},
		&cli.StringFlag{
			Name:        "forward-secret",
			Usage:       "HMAC secret for signing forwarded envelopes (consumer=http)",
			Destination: &c.ForwardSecret,
			Sources:     cli.EnvVars("GHTRIGGER_FORWARD_SECRET"),
		},
		&cli.StringFlag{
			Name:        "slack-token",
			Usage:       "Slack bot token (consumer=slack)",
			Destination: &c.SlackToken,
			Sources:     cli.EnvVars("GHTRIGGER_SLACK_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "slack-channel",
			Usage:       "Slack channel to post to (consumer=slack)",
			Destination: &c.SlackChannel,
			Sources:     cli.EnvVars("GHTRIGGER_SLACK_CHANNEL"),
		},
		&cli.StringFlag{
			Name:        "amqp-url",
			Usage:       "AMQP broker URL (consumer=amqp)",
			Destination: &c.AMQPURL,
			Sources:     cli.EnvVars("GHTRIGGER_AMQP_URL"),
		},
		&cli.StringFlag{
			Name:        "amqp-exchange",
			Usage:       "Topic exchange to publish to (consumer=amqp)",
			Value:       "ghtrigger",
			Destination: &c.AMQPExchange,
			Sources:     cli.EnvVars("GHTRIGGER_AMQP_EXCHANGE"),
		},
		&cli.StringFlag{
			Name:        "amqp-routing-prefix",
			Usage:       "Routing key prefix, followed by the event kind (consumer=amqp)",
			Value:       "github.",
			Destination: &c.AMQPRoutingPrefix,
			Sources:     cli.EnvVars("GHTRIGGER_AMQP_ROUTING_PREFIX"),
		},
	}
}

// Build creates the consumer. The returned cleanup function must be called
// on shutdown.
func (c *Consumer) Build() (interfaces.EventConsumer, func(), error) {
	noop := func() {}

	switch c.Type {
	case logsink.Name, "":
		return logsink.New(slog.LevelInfo), noop, nil

	case forward.Name:
		client, err := forward.New(c.ForwardURL, forward.WithSecret(c.ForwardSecret))
		if err != nil {
			return nil, nil, err
		}
		return client, noop, nil

	case slack.Name:
		client, err := slack.New(c.SlackToken, c.SlackChannel)
		if err != nil {
			return nil, nil, err
		}
		return client, noop, nil

	case amqp.Name:
		publisher, err := amqp.New(c.AMQPURL,
			amqp.WithExchange(c.AMQPExchange),
			amqp.WithRoutingPrefix(c.AMQPRoutingPrefix),
		)
		if err != nil {
			return nil, nil, err
		}
		return publisher, func() {
			if err := publisher.Close(); err != nil {
				slog.Default().Warn("Failed to close AMQP publisher", "error", err)
			}
		}, nil

	default:
		return nil, nil, goerr.New("unknown consumer type", goerr.V("consumer", c.Type))
	}
}
