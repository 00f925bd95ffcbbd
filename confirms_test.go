package amqp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirmTrackerSingleAck(t *testing.T) {
	ct := newConfirmTracker()
	tag := ct.nextPublishTag()
	d := ct.track(tag)

	ct.resolve(tag, false, true)

	select {
	case <-d.Done():
	case <-time.After(time.Second):
		t.Fatal("confirmation did not resolve")
	}
	assert.True(t, d.Acked())
}

func TestConfirmTrackerMultipleAckResolvesContiguousSuffix(t *testing.T) {
	ct := newConfirmTracker()
	var confs []*DeferredConfirmation
	for i := 0; i < 5; i++ {
		tag := ct.nextPublishTag()
		confs = append(confs, ct.track(tag))
	}

	ct.resolve(3, true, true)

	for i, d := range confs {
		tag := uint64(i + 1)
		if tag <= 3 {
			require.True(t, isResolved(d), "tag %d should be resolved", tag)
			assert.True(t, d.Acked())
		} else {
			assert.False(t, isResolved(d), "tag %d should still be pending", tag)
		}
	}

	ct.resolve(5, true, false)
	for _, d := range confs[3:] {
		require.True(t, isResolved(d))
		assert.False(t, d.Acked())
	}
}

func TestConfirmTrackerAbortNacksAllPending(t *testing.T) {
	ct := newConfirmTracker()
	d1 := ct.track(ct.nextPublishTag())
	d2 := ct.track(ct.nextPublishTag())

	ct.abort()

	assert.False(t, d1.Acked())
	assert.False(t, d2.Acked())
}

func isResolved(d *DeferredConfirmation) bool {
	select {
	case <-d.Done():
		return true
	default:
		return false
	}
}
