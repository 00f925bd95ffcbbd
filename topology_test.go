package amqp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopologyRecorderSnapshotOrder(t *testing.T) {
	rec := newTopologyRecorder()
	rec.recordExchange(recordedExchange{Name: "orders", Kind: "topic", Durable: true})
	rec.recordQueue(recordedQueue{Name: "orders.q", Durable: true})
	rec.recordExchangeBinding(recordedExchangeBinding{Destination: "fanout.copy", Source: "orders", RoutingKey: "#"})
	rec.recordBinding(recordedBinding{Queue: "orders.q", Exchange: "orders", RoutingKey: "orders.created"})
	rec.recordQos(recordedQos{PrefetchCount: 10})
	rec.recordConfirmSelect()
	rec.recordConsumer(recordedConsumer{Queue: "orders.q", ConsumerTag: "worker-1"})

	exchanges, queues, exBindings, bindings, qos, confirms, consumers := rec.snapshot()
	require.Len(t, exchanges, 1)
	assert.Equal(t, "orders", exchanges[0].Name)
	require.Len(t, queues, 1)
	assert.Equal(t, "orders.q", queues[0].Name)
	require.Len(t, exBindings, 1)
	assert.Equal(t, "fanout.copy", exBindings[0].Destination)
	require.Len(t, bindings, 1)
	assert.Equal(t, "orders.created", bindings[0].RoutingKey)
	require.NotNil(t, qos)
	assert.Equal(t, uint16(10), qos.PrefetchCount)
	assert.True(t, confirms)
	require.Len(t, consumers, 1)
	assert.Equal(t, "worker-1", consumers[0].ConsumerTag)
}

func TestTopologyRecorderForgetExchangeRemovesOnlyMatching(t *testing.T) {
	rec := newTopologyRecorder()
	rec.recordExchange(recordedExchange{Name: "a"})
	rec.recordExchange(recordedExchange{Name: "b"})

	rec.forgetExchange("a")

	exchanges, _, _, _, _, _, _ := rec.snapshot()
	require.Len(t, exchanges, 1)
	assert.Equal(t, "b", exchanges[0].Name)
}

func TestTopologyRecorderForgetBindingWithArgumentsDoesNotPanic(t *testing.T) {
	rec := newTopologyRecorder()
	b := recordedBinding{Queue: "q", Exchange: "x", RoutingKey: "rk", Arguments: Table{"x-match": "all"}}
	rec.recordBinding(b)
	rec.recordBinding(recordedBinding{Queue: "other", Exchange: "x", RoutingKey: "rk2"})

	assert.NotPanics(t, func() {
		rec.forgetBinding(b)
	})

	_, _, _, bindings, _, _, _ := rec.snapshot()
	require.Len(t, bindings, 1)
	assert.Equal(t, "other", bindings[0].Queue)
}

func TestTopologyRecorderForgetConsumer(t *testing.T) {
	rec := newTopologyRecorder()
	rec.recordConsumer(recordedConsumer{ConsumerTag: "c1"})
	rec.recordConsumer(recordedConsumer{ConsumerTag: "c2"})

	rec.forgetConsumer("c1")

	_, _, _, _, _, _, consumers := rec.snapshot()
	require.Len(t, consumers, 1)
	assert.Equal(t, "c2", consumers[0].ConsumerTag)
}
