package publisher

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	amqp "github.com/rabbitmq/amqp091-go"

	"match_importer/internal/domain"
	"match_importer/internal/logging"
)

// RabbitMQ announces every written match so the snapshot builder can pick it up.
type RabbitMQ struct {
	conn       *amqp.Connection
	channel    *amqp.Channel
	exchange   string
	routingKey string
	logger     *logging.Logger
}

type Config struct {
	URL        string
	Exchange   string
	RoutingKey string
	QueueName  string
}

func NewRabbitMQ(cfg Config, logger *logging.Logger) (*RabbitMQ, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, errors.Wrap(err, "connect to rabbitmq")
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "open channel")
	}

	err = ch.ExchangeDeclare(
		cfg.Exchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, errors.Wrap(err, "declare exchange")
	}

	q, err := ch.QueueDeclare(
		cfg.QueueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, errors.Wrap(err, "declare queue")
	}

	if err := ch.QueueBind(q.Name, cfg.RoutingKey, cfg.Exchange, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, errors.Wrap(err, "bind queue")
	}

	logger.Info("connected to rabbitmq",
		"exchange", cfg.Exchange,
		"queue", cfg.QueueName,
		"routing_key", cfg.RoutingKey,
	)

	return &RabbitMQ{
		conn:       conn,
		channel:    ch,
		exchange:   cfg.Exchange,
		routingKey: cfg.RoutingKey,
		logger:     logger,
	}, nil
}

type MatchMessage struct {
	Action    string       `json:"action"` // "insert" or "upgrade"
	ID        string       `json:"id"`
	Match     domain.Match `json:"match"`
	Timestamp time.Time    `json:"timestamp"`
}

func NewMatchMessage(match *domain.Match, outcome domain.SaveOutcome, now time.Time) MatchMessage {
	return MatchMessage{
		Action:    outcome.String(),
		ID:        match.ID(),
		Match:     *match,
		Timestamp: now.UTC(),
	}
}

func (r *RabbitMQ) Publish(ctx context.Context, match *domain.Match, outcome domain.SaveOutcome) error {
	if !outcome.Written() {
		return nil
	}

	body, err := sonic.Marshal(NewMatchMessage(match, outcome, time.Now()))
	if err != nil {
		return errors.Wrap(err, "marshal message")
	}

	err = r.channel.PublishWithContext(
		ctx,
		r.exchange,
		r.routingKey,
		false,
		false,
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return errors.Wrap(err, "publish message")
	}

	r.logger.Debug("published match",
		"id", match.ID(),
		"action", outcome.String(),
	)

	return nil
}

func (r *RabbitMQ) Close() error {
	if r.channel != nil {
		r.channel.Close()
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}
