package amqp

import (
	"time"
)

// timeoutTransport wraps a Transport applying independent read/write
// deadlines before each operation: "read_frame()" and
// "write_frames(batch)" are non-overlapping and timed independently.
type timeoutTransport struct {
	conn         Transport
	readTimeout  time.Duration
	writeTimeout time.Duration
}

func newTimeoutTransport(conn Transport, readTimeout, writeTimeout time.Duration) *timeoutTransport {
	return &timeoutTransport{conn: conn, readTimeout: readTimeout, writeTimeout: writeTimeout}
}

func (c *timeoutTransport) Read(b []byte) (int, error) {
	if c.readTimeout > 0 {
		if err := c.conn.SetReadDeadline(time.Now().Add(c.readTimeout)); err != nil {
			return 0, err
		}
	}
	return c.conn.Read(b)
}

func (c *timeoutTransport) Write(b []byte) (int, error) {
	if c.writeTimeout > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
			return 0, err
		}
	}
	return c.conn.Write(b)
}

func (c *timeoutTransport) Close() error { return c.conn.Close() }

func (c *timeoutTransport) SetReadDeadline(t time.Time) error  { return c.conn.SetReadDeadline(t) }
func (c *timeoutTransport) SetWriteDeadline(t time.Time) error { return c.conn.SetWriteDeadline(t) }

// resolveSocketTimeout picks the read/write deadline for the transport: when
// both a configured socket timeout and a requested heartbeat interval are in
// play, never time out a read faster than two missed heartbeats would, so a
// single delayed heartbeat frame never manifests as a spurious reset. See
// DESIGN.md for why this floor, not the raw socket timeout, wins.
func resolveSocketTimeout(socketTimeout, heartbeat time.Duration) time.Duration {
	twiceHeartbeat := 2 * heartbeat
	if socketTimeout > twiceHeartbeat {
		return socketTimeout
	}
	return twiceHeartbeat
}

// frameHandler is the single point of transport I/O for a Connection.
// Writes are serialized through a bounded queue drained by one dedicated
// writer goroutine so that frame atomicity on the wire never depends on
// per-channel locking.
type frameHandler struct {
	transport *timeoutTransport
	r         *reader
	w         *writer

	writeQueue chan writeRequest
	done       chan struct{}
}

type writeRequest struct {
	frames  []frame
	prepare func()
	result  chan error
}

const defaultWriteQueueDepth = 256

func newFrameHandler(t *timeoutTransport) *frameHandler {
	fh := &frameHandler{
		transport:  t,
		r:          newReader(t),
		w:          newWriter(t),
		writeQueue: make(chan writeRequest, defaultWriteQueueDepth),
		done:       make(chan struct{}),
	}
	go fh.drainWrites()
	return fh
}

func (fh *frameHandler) setMaxFrameSize(n uint32) { fh.r.maxFrame = n }

// ReadFrame reads exactly one frame off the transport.
func (fh *frameHandler) ReadFrame() (frame, error) {
	return fh.r.ReadFrame()
}

// WriteFrames submits a batch to the single writer goroutine and waits for
// it to be flushed, preserving submission order across the whole batch.
func (fh *frameHandler) WriteFrames(batch ...frame) error {
	return fh.writeFrames(nil, batch)
}

// WriteFramesWithPrepare is WriteFrames, except prepare runs on the writer
// goroutine immediately before the batch is written, once this request has
// actually reached the head of the queue. Callers use this to assign
// anything whose ordering must match true wire-write order rather than
// submission order, e.g. a publisher-confirm delivery tag: two goroutines
// racing to submit a batch can be reordered by the queue, but whichever one
// prepare() runs for first is the one the broker will see first. The caller
// still only observes the result after the write completes, so prepare's
// writes to caller-owned state are visible without extra synchronization.
func (fh *frameHandler) WriteFramesWithPrepare(prepare func(), batch ...frame) error {
	return fh.writeFrames(prepare, batch)
}

func (fh *frameHandler) writeFrames(prepare func(), batch []frame) error {
	req := writeRequest{frames: batch, prepare: prepare, result: make(chan error, 1)}
	select {
	case fh.writeQueue <- req:
	case <-fh.done:
		return ErrShutdown
	}
	select {
	case err := <-req.result:
		return err
	case <-fh.done:
		return ErrShutdown
	}
}

func (fh *frameHandler) drainWrites() {
	for {
		select {
		case req := <-fh.writeQueue:
			if req.prepare != nil {
				req.prepare()
			}
			req.result <- fh.w.WriteFrames(req.frames)
		case <-fh.done:
			return
		}
	}
}

func (fh *frameHandler) Close() error {
	select {
	case <-fh.done:
	default:
		close(fh.done)
	}
	return fh.transport.Close()
}
