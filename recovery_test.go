package amqp

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleRecoveryErrorDefaultsToSkip(t *testing.T) {
	cfg := testConfig()
	action := handleRecoveryError(cfg, recordedQueue{Name: "orders.q"}, assertErr)
	assert.Equal(t, RecoverySkip, action)
}

func TestHandleRecoveryErrorUsesExceptionHandler(t *testing.T) {
	cfg := testConfig()
	var seen RecordedEntity
	cfg.TopologyRecoveryExceptionHandler = func(e RecordedEntity, err error) RecoveryAction {
		seen = e
		return RecoveryAbort
	}
	action := handleRecoveryError(cfg, recordedQueue{Name: "orders.q"}, assertErr)
	assert.Equal(t, RecoveryAbort, action)
	assert.Equal(t, recordedQueue{Name: "orders.q"}, seen)
}

var assertErr = &Error{Code: NotFound, Reason: "no queue 'orders.q'"}

// TestReplayTopologyReDeclaresQueue drives replayTopology against a freshly
// opened next connection over a pipe, asserting the recorded queue from the
// old (closed) channel's topology is re-declared onto it.
func TestReplayTopologyReDeclaresQueue(t *testing.T) {
	oldCh := &Channel{topology: newTopologyRecorder()}
	oldCh.topology.recordQueue(recordedQueue{Name: "orders.q", Durable: true})
	old := &Connection{closedChannels: []*Channel{oldCh}}

	client, server := net.Pipe()
	defer client.Close()

	var declared *queueDeclare
	done := make(chan struct{})
	go func() {
		defer close(done)
		runFakeBroker(t, server, func(r *reader, w *writer) {
			f, err := r.ReadFrame()
			if !assert.NoError(t, err) {
				return
			}
			mf, ok := f.(*methodFrame)
			if !assert.True(t, ok) {
				return
			}
			if _, ok := mf.Method.(*channelOpen); !assert.True(t, ok) {
				return
			}
			assert.NoError(t, w.WriteFrame(&methodFrame{ChannelId: mf.ChannelId, Method: &channelOpenOk{}}))

			f, err = r.ReadFrame()
			if !assert.NoError(t, err) {
				return
			}
			mf, ok = f.(*methodFrame)
			if !assert.True(t, ok) {
				return
			}
			qd, ok := mf.Method.(*queueDeclare)
			if !assert.True(t, ok) {
				return
			}
			declared = qd
			assert.NoError(t, w.WriteFrame(&methodFrame{ChannelId: mf.ChannelId, Method: &queueDeclareOk{Queue: qd.Queue}}))
		})
	}()

	next, err := open(&pipeResolver{transport: client}, testConfig())
	require.NoError(t, err)

	replayTopology(old, next, testConfig())
	<-done

	require.NotNil(t, declared)
	assert.Equal(t, "orders.q", declared.Queue)
	assert.True(t, declared.Durable)
}
