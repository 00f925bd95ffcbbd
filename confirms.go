package amqp

import "sync"

// DeferredConfirmation is returned by Channel.PublishWithConfirm for every
// published message once the channel is in confirm mode. It resolves once
// the broker acks or nacks the corresponding delivery tag.
type DeferredConfirmation struct {
	DeliveryTag uint64

	done chan struct{}
	ack  bool
}

// Done reports the channel that closes once the confirmation resolves.
func (d *DeferredConfirmation) Done() <-chan struct{} { return d.done }

// Acked blocks until resolution and reports whether the broker acked
// (true) or nacked (false) this delivery tag.
func (d *DeferredConfirmation) Acked() bool {
	<-d.done
	return d.ack
}

// confirmTracker maintains the contiguous-suffix delivery-tag invariant:
// tags are acked/nacked in non-decreasing order, and "multiple" resolves
// every outstanding tag up to and including the one named.
type confirmTracker struct {
	mu      sync.Mutex
	nextSeq uint64
	pending map[uint64]*DeferredConfirmation
}

func newConfirmTracker() *confirmTracker {
	return &confirmTracker{nextSeq: 1, pending: make(map[uint64]*DeferredConfirmation)}
}

// nextPublishTag reserves and returns the sequence number that the next
// basic.publish on this channel is assigned while confirm mode is active.
func (t *confirmTracker) nextPublishTag() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	tag := t.nextSeq
	t.nextSeq++
	return tag
}

// track registers a DeferredConfirmation for a just-reserved tag.
func (t *confirmTracker) track(tag uint64) *DeferredConfirmation {
	d := &DeferredConfirmation{DeliveryTag: tag, done: make(chan struct{})}
	t.mu.Lock()
	t.pending[tag] = d
	t.mu.Unlock()
	return d
}

// resolve applies a basic.ack/basic.nack to the tracked set.
func (t *confirmTracker) resolve(tag uint64, multiple, ack bool) {
	t.mu.Lock()
	var resolved []*DeferredConfirmation
	if multiple {
		for k, d := range t.pending {
			if k <= tag {
				resolved = append(resolved, d)
				delete(t.pending, k)
			}
		}
	} else if d, ok := t.pending[tag]; ok {
		resolved = append(resolved, d)
		delete(t.pending, tag)
	}
	t.mu.Unlock()

	for _, d := range resolved {
		d.ack = ack
		close(d.done)
	}
}

// abort resolves every still-outstanding confirmation as nacked, used when
// the channel or connection closes with publishes still in flight.
func (t *confirmTracker) abort() {
	t.mu.Lock()
	resolved := make([]*DeferredConfirmation, 0, len(t.pending))
	for k, d := range t.pending {
		resolved = append(resolved, d)
		delete(t.pending, k)
	}
	t.mu.Unlock()

	for _, d := range resolved {
		d.ack = false
		close(d.done)
	}
}
