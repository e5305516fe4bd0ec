package amqp

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/m-mizutani/ghtrigger/pkg/domain/model"
	"github.com/m-mizutani/ghtrigger/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Name of the consumer
const Name = "amqp"

// channel is the subset of *amqp.Channel used by Publisher
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	IsClosed() bool
	Close() error
}

// dialer opens a channel. The returned closer releases the underlying connection.
type dialer func(url string) (channel, func() error, error)

// Publisher publishes envelopes as JSON to a topic exchange. The routing key
// is "<prefix><event kind>", e.g. "github.pull_request".
type Publisher struct {
	url           string
	exchange      string
	routingPrefix string
	dial          dialer

	mu        sync.Mutex
	ch        channel
	closeConn func() error
}

// Option configures Publisher
type Option func(*Publisher)

// WithExchange sets the exchange name. An empty name publishes to the default exchange.
func WithExchange(name string) Option {
	return func(p *Publisher) {
		p.exchange = name
	}
}

// WithRoutingPrefix sets the routing key prefix
func WithRoutingPrefix(prefix string) Option {
	return func(p *Publisher) {
		p.routingPrefix = prefix
	}
}

func withDialer(d dialer) Option {
	return func(p *Publisher) {
		p.dial = d
	}
}

// New creates a Publisher and connects to url
func New(url string, opts ...Option) (*Publisher, error) {
	if url == "" {
		return nil, goerr.New("AMQP URL is required")
	}

	p := &Publisher{
		url:           url,
		exchange:      "ghtrigger",
		routingPrefix: "github.",
		dial:          dialAMQP,
	}
	for _, opt := range opts {
		opt(p)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

func dialAMQP(url string) (channel, func() error, error) {
	conn, err := amqp.DialConfig(url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Properties: amqp.Table{
			"connection_name": "ghtrigger",
		},
	})
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to connect to AMQP broker")
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, goerr.Wrap(err, "failed to open AMQP channel")
	}
	return ch, conn.Close, nil
}

// connect must be called with p.mu held
func (p *Publisher) connect() error {
	ch, closeConn, err := p.dial(p.url)
	if err != nil {
		return err
	}

	if p.exchange != "" {
		if err := ch.ExchangeDeclare(p.exchange, "topic", true, false, false, false, nil); err != nil {
			_ = ch.Close()
			if closeConn != nil {
				_ = closeConn()
			}
			return goerr.Wrap(err, "failed to declare exchange", goerr.V("exchange", p.exchange))
		}
	}

	p.ch = ch
	p.closeConn = closeConn
	return nil
}

func (p *Publisher) Name() string { return Name }

// Consume publishes env once. A closed channel is reopened before publishing.
func (p *Publisher) Consume(ctx context.Context, env *model.Envelope) error {
	body, err := json.Marshal(env)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal envelope", goerr.V("envelope_id", env.ID))
	}

	p.mu.Lock()
	if p.ch == nil || p.ch.IsClosed() {
		logging.From(ctx).Warn("AMQP channel closed, reconnecting")
		p.release()
		if err := p.connect(); err != nil {
			p.mu.Unlock()
			return err
		}
	}
	ch := p.ch
	p.mu.Unlock()

	key := p.routingPrefix + string(env.Metadata.EventKind)
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    env.ID,
		Timestamp:    time.Now(),
		Type:         string(env.Metadata.EventKind),
		AppId:        env.Origin,
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx, p.exchange, key, false, false, msg); err != nil {
		return goerr.Wrap(err, "failed to publish envelope",
			goerr.V("exchange", p.exchange),
			goerr.V("routing_key", key),
			goerr.V("envelope_id", env.ID),
		)
	}

	env.Reply(ctx, &model.ConsumerResponse{
		Consumer: Name,
		Status:   "published",
		Message:  key,
	})
	return nil
}

// Close releases the channel and the connection
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.release()
}

// release must be called with p.mu held
func (p *Publisher) release() error {
	var err error
	if p.ch != nil && !p.ch.IsClosed() {
		err = p.ch.Close()
	}
	if p.closeConn != nil {
		if cerr := p.closeConn(); cerr != nil && err == nil {
			err = cerr
		}
	}
	p.ch = nil
	p.closeConn = nil
	if err != nil {
		return goerr.Wrap(err, "failed to close AMQP connection")
	}
	return nil
}
