//go:build integration

package producer_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"veriledger/internal/platform/kafka/producer"
	"veriledger/pkg/testutil/containers"
)

type ProducerIntegrationSuite struct {
	suite.Suite
	kafka    *containers.KafkaContainer
	producer *producer.Producer
}

func TestProducerIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(ProducerIntegrationSuite))
}

func (s *ProducerIntegrationSuite) SetupSuite() {
	s.kafka = containers.GetManager().GetKafka(s.T())

	cfg := producer.DefaultConfig(s.kafka.Brokers)
	cfg.DeliveryTimeout = 10 * time.Second
	prod, err := producer.New(cfg, nil)
	s.Require().NoError(err)
	s.producer = prod
}

func (s *ProducerIntegrationSuite) TearDownSuite() {
	if s.producer != nil {
		_ = s.producer.Close()
	}
}

// TestProduceDeliversWithHeaders verifies a synchronous produce is consumable
// with every header intact.
func (s *ProducerIntegrationSuite) TestProduceDeliversWithHeaders() {
	ctx := context.Background()
	topic := "kyc.audit.test"

	s.Require().NoError(s.producer.EnsureTopic(ctx, topic, 1, 1))
	s.Require().NoError(s.producer.EnsureTopic(ctx, topic, 1, 1), "ensuring an existing topic is not an error")

	err := s.producer.Produce(ctx, &producer.Message{
		Topic: topic,
		Key:   []byte("entry-1"),
		Value: []byte(`{"action":"credential_issued"}`),
		Headers: map[string]string{
			"aggregate_type": "audit",
			"event_type":     "credential_issued",
		},
	})
	s.Require().NoError(err)

	consumer, err := s.kafka.NewConsumer(ctx, "producer-test", topic)
	s.Require().NoError(err)
	defer consumer.Close()

	record := s.kafka.WaitForMessage(ctx, consumer, 10*time.Second, func(r *kgo.Record) bool {
		return string(r.Key) == "entry-1"
	})
	s.Require().NotNil(record)

	headers := containers.Headers(record)
	s.Equal("credential_issued", headers["event_type"])
	s.Equal("audit", headers["aggregate_type"])
}

func (s *ProducerIntegrationSuite) TestHealthy() {
	s.True(s.producer.Healthy(context.Background()))
}
