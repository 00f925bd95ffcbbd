package amqp

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestConsumerDispatcherDeliversToHandler(t *testing.T) {
	defer goleak.VerifyNone(t)

	var mu sync.Mutex
	var got []uint64
	done := make(chan struct{})

	d := newConsumerDispatcher("worker-1", 2, func(delivery Delivery) {
		mu.Lock()
		got = append(got, delivery.DeliveryTag)
		if len(got) == 3 {
			close(done)
		}
		mu.Unlock()
	})
	defer d.stop()

	for i := uint64(1); i <= 3; i++ {
		d.push(Delivery{DeliveryTag: i})
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("deliveries were not dispatched")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []uint64{1, 2, 3}, got)
}

func TestConsumerDispatcherStopUnblocksPush(t *testing.T) {
	defer goleak.VerifyNone(t)

	// Zero concurrency: the drain loop pulls one delivery off the queue and
	// then stalls forever acquiring the semaphore, so once the queue fills
	// behind it push must rely on the done-channel branch to return once
	// stop() is called, never blocking forever.
	d := newConsumerDispatcher("worker-2", 0, func(Delivery) {})

	blocked := make(chan struct{})
	go func() {
		for i := 0; i < 3*defaultConsumerQueueDepth; i++ {
			d.push(Delivery{DeliveryTag: uint64(i)})
		}
		close(blocked)
	}()

	d.stop()

	select {
	case <-blocked:
	case <-time.After(2 * time.Second):
		t.Fatal("push did not unblock after stop")
	}
}

func TestConsumerDispatcherStopIsIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t)
	d := newConsumerDispatcher("worker-3", 1, func(Delivery) {})
	require.NotPanics(t, func() {
		d.stop()
		d.stop()
	})
}
