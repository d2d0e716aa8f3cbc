//go:build integration

package publisher

import (
	"context"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/rabbitmq"
	"github.com/testcontainers/testcontainers-go/wait"

	"match_importer/internal/domain"
	"match_importer/internal/logging"
)

type RabbitMQIntegrationSuite struct {
	suite.Suite
	ctx       context.Context
	container *rabbitmq.RabbitMQContainer
	amqpURL   string
	logger    *logging.Logger
}

func (s *RabbitMQIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()
	s.logger = logging.NewJSON(logging.LevelError)

	container, err := rabbitmq.Run(s.ctx,
		"rabbitmq:3.13-management-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Server startup complete").
				WithStartupTimeout(60*time.Second),
		),
	)
	s.Require().NoError(err)
	s.container = container

	amqpURL, err := container.AmqpURL(s.ctx)
	s.Require().NoError(err)
	s.amqpURL = amqpURL
}

func (s *RabbitMQIntegrationSuite) TearDownSuite() {
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

func TestRabbitMQIntegrationSuite(t *testing.T) {
	suite.Run(t, new(RabbitMQIntegrationSuite))
}

func (s *RabbitMQIntegrationSuite) config(name string) Config {
	return Config{
		URL:        s.amqpURL,
		Exchange:   "test-exchange-" + name,
		RoutingKey: "test-routing-key-" + name,
		QueueName:  "test-queue-" + name,
	}
}

func testMatch() *domain.Match {
	referee := "M Oliver"
	result := "H"
	homeGoals, awayGoals := 2, 1
	return &domain.Match{
		Type:        domain.MatchTypeResult,
		CountryCode: "E",
		Division:    0,
		Date:        time.Date(2023, 8, 12, 15, 0, 0, 0, time.UTC),
		Referee:     &referee,
		HomeTeam:    "Arsenal",
		AwayTeam:    "Nott'm Forest",
		Result:      &result,
		Statistics:  &domain.Statistics{HomeGoals: &homeGoals, AwayGoals: &awayGoals},
		Odds:        []domain.Odds{{Company: "Bet365", HomeWin: 1.18, Draw: 7.5, AwayWin: 15}},
		ModifiedAt:  time.Now().UTC(),
	}
}

func (s *RabbitMQIntegrationSuite) TestPublisher_Connection() {
	pub, err := NewRabbitMQ(s.config("connection"), s.logger)
	s.NoError(err)
	s.NotNil(pub)

	s.NoError(pub.Close())
}

func (s *RabbitMQIntegrationSuite) TestPublisher_PublishInsert() {
	cfg := s.config("insert")
	pub, err := NewRabbitMQ(cfg, s.logger)
	s.Require().NoError(err)
	defer pub.Close()

	s.NoError(pub.Publish(s.ctx, testMatch(), domain.SaveInserted))

	msg := s.consumeMessage(cfg)
	s.Require().NotNil(msg)
	s.Equal("application/json", msg.ContentType)
	s.Equal(uint8(amqp.Persistent), msg.DeliveryMode)

	var received MatchMessage
	s.NoError(sonic.Unmarshal(msg.Body, &received))
	s.Equal("insert", received.Action)
	s.Equal("e#arsenal#nottm-forest", received.ID)
	s.Equal("Nott'm Forest", received.Match.AwayTeam)
	s.Equal(2, *received.Match.Statistics.HomeGoals)
	s.Len(received.Match.Odds, 1)
	s.False(received.Timestamp.IsZero())
}

func (s *RabbitMQIntegrationSuite) TestPublisher_PublishUpgrade() {
	cfg := s.config("upgrade")
	pub, err := NewRabbitMQ(cfg, s.logger)
	s.Require().NoError(err)
	defer pub.Close()

	s.NoError(pub.Publish(s.ctx, testMatch(), domain.SaveUpgraded))

	msg := s.consumeMessage(cfg)
	s.Require().NotNil(msg)

	var received MatchMessage
	s.NoError(sonic.Unmarshal(msg.Body, &received))
	s.Equal("upgrade", received.Action)
	s.Equal(domain.MatchTypeResult, received.Match.Type)
}

func (s *RabbitMQIntegrationSuite) TestPublisher_SkippedIsNotPublished() {
	cfg := s.config("skipped")
	pub, err := NewRabbitMQ(cfg, s.logger)
	s.Require().NoError(err)
	defer pub.Close()

	s.NoError(pub.Publish(s.ctx, testMatch(), domain.SaveSkipped))

	q, err := pub.channel.QueueInspect(cfg.QueueName)
	s.Require().NoError(err)
	s.Equal(0, q.Messages)
}

func (s *RabbitMQIntegrationSuite) consumeMessage(cfg Config) *amqp.Delivery {
	conn, err := amqp.Dial(s.amqpURL)
	s.Require().NoError(err)
	defer conn.Close()

	ch, err := conn.Channel()
	s.Require().NoError(err)
	defer ch.Close()

	msgs, err := ch.Consume(cfg.QueueName, "", true, false, false, false, nil)
	s.Require().NoError(err)

	select {
	case msg := <-msgs:
		return &msg
	case <-time.After(5 * time.Second):
		s.Fail("Timeout waiting for message")
		return nil
	}
}
