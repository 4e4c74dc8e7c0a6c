package events

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	topics []string
	err    error
}

func (r *recorder) PublishEvent(_ context.Context, topic, _ string, _ any) error {
	r.topics = append(r.topics, topic)
	return r.err
}

func TestMulti_FansOutAndJoinsErrors(t *testing.T) {
	t.Parallel()

	ok := &recorder{}
	failing := &recorder{err: errors.New("broker down")}

	err := Multi{ok, nil, failing}.PublishEvent(context.Background(), TopicOrders, "1", map[string]any{"type": "order_created"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
	assert.Equal(t, []string{TopicOrders}, ok.topics)
	assert.Equal(t, []string{TopicOrders}, failing.topics)
}

func TestNewProducer_NoBrokers(t *testing.T) {
	t.Parallel()

	_, err := NewProducer(nil)
	assert.Error(t, err)
}

func TestProducer_PublishEvent_Kafka(t *testing.T) {
	broker := os.Getenv("KAFKA_TEST_BROKER")
	if broker == "" {
		t.Skip("KAFKA_TEST_BROKER is required for tests")
	}

	topic := "order_events_test"
	prod, err := NewProducer([]string{broker})
	require.NoError(t, err)
	t.Cleanup(func() { _ = prod.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	require.NoError(t, prod.PublishEvent(ctx, topic, "7", map[string]any{"type": "order_created", "orderID": 7}))

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:   []string{broker},
		Topic:     topic,
		Partition: 0,
		MaxWait:   time.Second,
	})
	defer r.Close()
	require.NoError(t, r.SetOffset(kafka.LastOffset-1))

	m, err := r.ReadMessage(ctx)
	require.NoError(t, err)

	var event map[string]any
	require.NoError(t, json.Unmarshal(m.Value, &event))
	assert.Equal(t, "order_created", event["type"])
	assert.Equal(t, "7", string(m.Key))
}
