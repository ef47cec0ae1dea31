package kafka

import (
	"context"
	"errors"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs []kafkago.Message
	err  error
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func TestProducer_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := &Producer{writer: w}

	require.NoError(t, p.Publish(context.Background(), "order.created", []byte(`{"id":"1"}`)))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "order.created", string(w.msgs[0].Key))
	assert.JSONEq(t, `{"id":"1"}`, string(w.msgs[0].Value))

	w.err = errors.New("leader not available")
	assert.ErrorContains(t, p.Publish(context.Background(), "order.created", nil), "leader not available")
}

func TestNewProducer_RequiresBrokersAndTopic(t *testing.T) {
	_, err := NewProducer(Config{Topic: "events"})
	assert.Error(t, err)
	_, err = NewProducer(Config{Brokers: []string{"localhost:9092"}})
	assert.Error(t, err)

	p, err := NewProducer(Config{Brokers: []string{"localhost:9092"}, Topic: "events"})
	require.NoError(t, err)
	assert.NoError(t, p.Close())
}
