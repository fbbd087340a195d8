package producer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"agriqcert/internal/platform/config"
)

func TestNewRequiresBrokers(t *testing.T) {
	_, err := New(Config{}, nil)
	require.Error(t, err)
}

func TestFromConfig(t *testing.T) {
	cfg := FromConfig(config.KafkaConfig{Brokers: "a:9092,b:9092", Acks: "1", Retries: 2, DeliveryTimeout: time.Second})
	assert.Equal(t, Config{Brokers: "a:9092,b:9092", Acks: "1", Retries: 2, DeliveryTimeout: time.Second}, cfg)
}

func TestParseAcks(t *testing.T) {
	assert.Equal(t, kgo.NoAck(), parseAcks("0"))
	assert.Equal(t, kgo.LeaderAck(), parseAcks("1"))
	assert.Equal(t, kgo.AllISRAcks(), parseAcks("all"))
	assert.Equal(t, kgo.AllISRAcks(), parseAcks(""))
}

func TestToRecordCopiesHeaders(t *testing.T) {
	r := toRecord(&Message{Topic: "t", Key: []byte("k"), Value: []byte("v"), Headers: map[string]string{"a": "1"}})
	assert.Equal(t, "t", r.Topic)
	assert.Equal(t, []byte("k"), r.Key)
	require.Len(t, r.Headers, 1)
	assert.Equal(t, "a", r.Headers[0].Key)
	assert.Equal(t, []byte("1"), r.Headers[0].Value)
}
