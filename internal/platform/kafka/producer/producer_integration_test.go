//go:build integration

package producer_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"agriqcert/internal/platform/kafka/producer"
	"agriqcert/pkg/testutil/containers"
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

	prod, err := producer.New(producer.Config{
		Brokers:         s.kafka.Brokers,
		Acks:            "all",
		Retries:         3,
		DeliveryTimeout: 10 * time.Second,
	}, nil)
	s.Require().NoError(err)
	s.producer = prod
}

func (s *ProducerIntegrationSuite) TearDownSuite() {
	if s.producer != nil {
		s.producer.Close()
	}
}

// Invariant: Produce returns only after the broker acknowledged the record,
// and headers survive the round trip.
func (s *ProducerIntegrationSuite) TestProduceDeliversAuditRecord() {
	ctx := context.Background()
	topic := "agriqcert-audit-test"
	s.Require().NoError(s.kafka.CreateTopic(ctx, topic, 1, 1))

	err := s.producer.Produce(ctx, &producer.Message{
		Topic:   topic,
		Key:     []byte("batch-1"),
		Value:   []byte(`{"action":"batch.submitted"}`),
		Headers: map[string]string{"action": "batch.submitted"},
	})
	s.Require().NoError(err)

	consumer, err := s.kafka.NewConsumer(ctx, "audit-test-group", topic)
	s.Require().NoError(err)
	defer consumer.Close()

	record := s.kafka.WaitForMessage(ctx, consumer, 5*time.Second, func(r *kgo.Record) bool {
		return string(r.Key) == "batch-1"
	})
	s.Require().NotNil(record)
	s.JSONEq(`{"action":"batch.submitted"}`, string(record.Value))
	s.Require().Len(record.Headers, 1)
	s.Equal("batch.submitted", string(record.Headers[0].Value))
}

func (s *ProducerIntegrationSuite) TestHealthAndClose() {
	ctx := context.Background()
	s.NoError(s.producer.Health(ctx))

	prod, err := producer.New(producer.Config{Brokers: s.kafka.Brokers}, nil)
	s.Require().NoError(err)
	s.Require().NoError(prod.Close())
	s.ErrorIs(prod.Health(ctx), producer.ErrClosed)
	s.ErrorIs(prod.ProduceAsync(&producer.Message{Topic: "x"}), producer.ErrClosed)
}
