package amqp

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// defaultConsumerQueueDepth bounds the number of deliveries buffered ahead
// of a consumer's dispatch workers before push itself starts blocking.
const defaultConsumerQueueDepth = 64

// consumerDispatcher fans a single consumer's deliveries out to handler
// invocations bounded by ConnectionConfig.ConsumerDispatchConcurrency, so
// independent messages are never serialized behind one slow handler. It is
// fed by the connection's single reader goroutine and must never block that
// goroutine on handler execution: push only ever enqueues into this
// dispatcher's own bounded queue, and a dedicated drain loop is what acquires
// the concurrency semaphore and spawns the handler goroutine. That split
// keeps one saturated consumer from stalling delivery to every other channel
// multiplexed on the same connection.
type consumerDispatcher struct {
	tag     string
	handler func(Delivery)

	queue  chan Delivery
	sem    *semaphore.Weighted
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	stopOnce sync.Once
}

func newConsumerDispatcher(tag string, concurrency int, handler func(Delivery)) *consumerDispatcher {
	ctx, cancel := context.WithCancel(context.Background())
	d := &consumerDispatcher{
		tag:     tag,
		handler: handler,
		queue:   make(chan Delivery, defaultConsumerQueueDepth),
		sem:     semaphore.NewWeighted(int64(concurrency)),
		ctx:     ctx,
		cancel:  cancel,
	}
	d.wg.Add(1)
	go d.drain()
	return d
}

// push enqueues a delivery for dispatch. It only blocks once this
// consumer's own queue is full, never on handler execution, so it is always
// safe to call from the reader goroutine. It unblocks without enqueuing
// once stop() cancels the dispatcher.
func (d *consumerDispatcher) push(delivery Delivery) {
	select {
	case d.queue <- delivery:
	case <-d.ctx.Done():
	}
}

// drain pulls queued deliveries and dispatches each to the handler on its
// own goroutine once a concurrency slot is free.
func (d *consumerDispatcher) drain() {
	defer d.wg.Done()
	for {
		select {
		case delivery := <-d.queue:
			if err := d.sem.Acquire(d.ctx, 1); err != nil {
				return
			}
			d.wg.Add(1)
			go func() {
				defer d.wg.Done()
				defer d.sem.Release(1)
				d.handler(delivery)
			}()
		case <-d.ctx.Done():
			return
		}
	}
}

// stop cancels admission of further deliveries and waits for the drain loop
// and every in-flight handler call to return; it does not wait for drain of
// queued-but-undelivered messages.
func (d *consumerDispatcher) stop() {
	d.stopOnce.Do(func() {
		d.cancel()
		d.wg.Wait()
	})
}
