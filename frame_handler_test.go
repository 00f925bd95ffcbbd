package amqp

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveSocketTimeoutPrefersLarger(t *testing.T) {
	assert.Equal(t, 20*time.Second, resolveSocketTimeout(5*time.Second, 10*time.Second))
	assert.Equal(t, 30*time.Second, resolveSocketTimeout(30*time.Second, 10*time.Second))
}

func TestFrameHandlerRoundTripsOverPipe(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	clientHandler := newFrameHandler(newTimeoutTransport(client, 0, 0))
	defer clientHandler.Close()
	serverReader := newReader(server)

	done := make(chan error, 1)
	go func() {
		done <- clientHandler.WriteFrames(&methodFrame{
			ChannelId: 1,
			Method:    &channelOpen{},
		})
	}()

	f, err := serverReader.ReadFrame()
	require.NoError(t, err)
	mf, ok := f.(*methodFrame)
	require.True(t, ok)
	assert.Equal(t, uint16(1), mf.ChannelId)
	_, ok = mf.Method.(*channelOpen)
	assert.True(t, ok)

	require.NoError(t, <-done)
}

func TestFrameHandlerCloseUnblocksPendingWrite(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()

	fh := newFrameHandler(newTimeoutTransport(client, 0, 0))

	// Nobody reads the server end, so this write stays pending on the pipe.
	writeErr := make(chan error, 1)
	go func() {
		writeErr <- fh.WriteFrames(&methodFrame{ChannelId: 1, Method: &channelOpen{}})
	}()
	time.Sleep(50 * time.Millisecond)

	errCh := make(chan error, 1)
	go func() {
		errCh <- fh.Close()
	}()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not return")
	}

	select {
	case err := <-writeErr:
		assert.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("pending write was not unblocked by Close")
	}
}
