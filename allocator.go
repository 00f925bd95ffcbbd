package amqp

import (
	"math/big"
	"sync"
)

// allocator hands out channel ids densely from 1 up to a negotiated
// channel-max, never exceeding it and never reusing an id that is still in
// use. It is modeled
// directly on the bitset allocator streadway/amqp-lineage clients use to
// avoid a linear scan of the channel map on every Channel() call.
type allocator struct {
	mu     sync.Mutex
	bits   *big.Int
	low    uint16
	high   uint16
}

func newAllocator(low, high uint16) *allocator {
	return &allocator{
		bits: big.NewInt(0),
		low:  low,
		high: high,
	}
}

// next reserves and returns the lowest free id, or ok=false if the space is
// exhausted (every id in [low, high] is in use).
func (a *allocator) next() (uint16, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for id := a.low; id <= a.high; id++ {
		if a.bits.Bit(int(id)) == 0 {
			a.bits.SetBit(a.bits, int(id), 1)
			return id, true
		}
		if id == a.high {
			break
		}
	}
	return 0, false
}

// release returns an id to the free pool.
func (a *allocator) release(id uint16) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.bits.SetBit(a.bits, int(id), 0)
}

// reserve marks an id as in-use without handing it out via next, used by
// recovery to keep a freshly-issued server channel id consistent with the
// allocator's bookkeeping.
func (a *allocator) reserve(id uint16) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.bits.SetBit(a.bits, int(id), 1)
}

// channelRegistry is the arena of live channel slots, indexed by channel_id,
// with removals applied only under the registry's lock so an in-flight
// dispatch never observes a half-removed entry.
type channelRegistry struct {
	mu       sync.Mutex
	channels map[uint16]*Channel
	alloc    *allocator
}

func newChannelRegistry(channelMax uint16) *channelRegistry {
	max := channelMax
	if max == 0 {
		max = 65535
	}
	return &channelRegistry{
		channels: make(map[uint16]*Channel),
		alloc:    newAllocator(1, max),
	}
}

func (r *channelRegistry) next() (uint16, bool) {
	return r.alloc.next()
}

func (r *channelRegistry) add(id uint16, ch *Channel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.channels[id] = ch
}

func (r *channelRegistry) get(id uint16) *Channel {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.channels[id]
}

func (r *channelRegistry) remove(id uint16) {
	r.mu.Lock()
	delete(r.channels, id)
	r.mu.Unlock()
	r.alloc.release(id)
}

func (r *channelRegistry) removeAll() []*Channel {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]*Channel, 0, len(r.channels))
	for id, ch := range r.channels {
		all = append(all, ch)
		delete(r.channels, id)
		r.alloc.release(id)
	}
	return all
}
