package amqp

import (
	"crypto/tls"
	"net"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// connState tracks where a Connection sits in its handshake/open/closing
// lifecycle.
type connState int

const (
	stateHandshake connState = iota
	stateOpen
	stateClosing
	stateClosed
	stateRecovering
)

// Connection owns the transport, frame handler, dispatcher and the
// channel_id -> Channel map. It is the
// multiplexing root: channel_id 0 is reserved for connection methods, and
// the frameHandler is the sole writer of the transport.
type Connection struct {
	mu    sync.Mutex // guards state, Properties, closes, blocks
	state connState

	frames   *frameHandler
	channels *channelRegistry

	rpc    chan message
	errors chan *Error

	closes []chan *Error
	blocks []chan Blocking

	destructor sync.Once
	noNotify   bool

	heartbeatDone chan struct{}

	cfg      ConnectionConfig
	resolver EndpointResolver

	recoveries     []chan *Connection
	recoveryStop   chan struct{}
	closedChannels []*Channel

	Major      int
	Minor      int
	Properties Table

	logger Logger
}

// open performs endpoint resolution, dial, TLS, and the full protocol
// handshake, returning an Open connection or a BrokerUnreachableError /
// AuthenticationFailureError / TimeoutError.
func open(resolver EndpointResolver, cfg ConnectionConfig) (*Connection, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = defaultLogger
	}

	transport, _, err := resolver.SelectOne(func(ep Endpoint) (Transport, error) {
		return dialEndpoint(ep, cfg.ConnectionTimeout)
	})
	if err != nil {
		return nil, err
	}

	socketTimeout := resolveSocketTimeout(cfg.SocketReadTimeout, cfg.RequestedHeartbeat)
	tt := newTimeoutTransport(transport, socketTimeout, resolveSocketTimeout(cfg.SocketWriteTimeout, cfg.RequestedHeartbeat))

	conn := &Connection{
		frames:        newFrameHandler(tt),
		channels:      newChannelRegistry(cfg.RequestedChannelMax),
		rpc:           make(chan message),
		errors:        make(chan *Error, 1),
		heartbeatDone: make(chan struct{}),
		recoveryStop:  make(chan struct{}),
		cfg:           cfg,
		resolver:      resolver,
		logger:        logger,
		state:         stateHandshake,
	}

	go conn.reader()

	if err := conn.handshake(cfg); err != nil {
		conn.shutdown(&Error{Code: ConnectionForced, Reason: err.Error()}, false)
		return nil, err
	}

	return conn, nil
}

func dialEndpoint(ep Endpoint, timeout time.Duration) (Transport, error) {
	raw, err := net.DialTimeout("tcp", ep.Address(), timeout)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", ep.Address())
	}

	if ep.TLS != nil {
		cfg := *ep.TLS
		if cfg.ServerName == "" {
			cfg.ServerName = ep.Host
		}
		client := tls.Client(raw, &cfg)
		if err := client.Handshake(); err != nil {
			raw.Close()
			return nil, errors.Wrapf(err, "tls handshake %s", ep.Address())
		}
		return client, nil
	}

	return raw, nil
}

// handshake drives protocol-header exchange through connection.open-ok,
// bounded throughout by HandshakeContinuationTimeout.
func (c *Connection) handshake(cfg ConnectionConfig) error {
	timeout := cfg.HandshakeContinuationTimeout
	if timeout <= 0 {
		timeout = DefaultHandshakeTimeout
	}

	if err := c.frames.w.WriteFrame(&rawProtocolHeaderFrame{}); err != nil {
		return err
	}

	start := &connectionStart{}
	if err := c.call(timeout, nil, start); err != nil {
		return err
	}
	c.Major = int(start.VersionMajor)
	c.Minor = int(start.VersionMinor)
	c.Properties = start.ServerProperties

	auth, ok := pickSASLMechanism(cfg.AuthMechanisms, strings.Split(start.Mechanisms, " "))
	if !ok {
		return ErrSASL
	}

	clientProps := cfg.ClientProperties
	if cfg.ClientProvidedName != "" {
		clientProps = cloneTable(clientProps)
		clientProps["connection_name"] = cfg.ClientProvidedName
	}

	tune := &connectionTune{}
	startOk := &connectionStartOk{
		ClientProperties: clientProps,
		Mechanism:        auth.Mechanism(),
		Response:         auth.Response(),
		Locale:           "en_US",
	}
	if err := c.call(timeout, startOk, tune); err != nil {
		return ErrCredentials
	}

	channelMax := pick16(cfg.RequestedChannelMax, tune.ChannelMax)
	frameMax := pickU32(cfg.RequestedFrameMax, tune.FrameMax)
	if frameMax != 0 && frameMax < DefaultFrameMinSize {
		frameMax = DefaultFrameMinSize
	}
	heartbeat := pickDuration(cfg.RequestedHeartbeat, time.Duration(tune.Heartbeat)*time.Second)

	c.channels = newChannelRegistry(channelMax)
	c.frames.setMaxFrameSize(frameMax)

	if err := c.frames.WriteFrames(&methodFrame{
		ChannelId: 0,
		Method: &connectionTuneOk{
			ChannelMax: channelMax,
			FrameMax:   frameMax,
			Heartbeat:  uint16(heartbeat / time.Second),
		},
	}); err != nil {
		return err
	}

	openOk := &connectionOpenOk{}
	if err := c.call(timeout, &connectionOpen{VirtualHost: cfg.VirtualHost}, openOk); err != nil {
		return ErrVhost
	}

	c.mu.Lock()
	c.state = stateOpen
	c.mu.Unlock()

	go c.heartbeater(heartbeat)

	return nil
}

func cloneTable(t Table) Table {
	out := make(Table, len(t)+1)
	for k, v := range t {
		out[k] = v
	}
	return out
}

func pick16(client, server uint16) uint16 {
	if client == 0 || server == 0 {
		if client > server {
			return client
		}
		return server
	}
	if client < server {
		return client
	}
	return server
}

func pickU32(client, server uint32) uint32 {
	if client == 0 || server == 0 {
		if client > server {
			return client
		}
		return server
	}
	if client < server {
		return client
	}
	return server
}

func pickDuration(client, server time.Duration) time.Duration {
	if client == 0 || server == 0 {
		if client > server {
			return client
		}
		return server
	}
	if client < server {
		return client
	}
	return server
}

// call sends req (nil when the caller already wrote the protocol header)
// and blocks for a reply matching one of res's types, bounded by timeout.
// Only used for channel-0 connection RPCs; Channel has its own
// single-continuation-slot call for channel RPCs.
func (c *Connection) call(timeout time.Duration, req message, res ...message) error {
	if req != nil {
		classId, methodId := req.id()
		if err := c.frames.WriteFrames(&methodFrame{ChannelId: 0, ClassId: classId, MethodId: methodId, Method: req}); err != nil {
			return err
		}
	}

	var timeoutCh <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		timeoutCh = timer.C
	}

	select {
	case err := <-c.errors:
		return err
	case msg := <-c.rpc:
		for _, try := range res {
			if reflect.TypeOf(msg) == reflect.TypeOf(try) {
				reflect.ValueOf(try).Elem().Set(reflect.ValueOf(msg).Elem())
				return nil
			}
		}
		return ErrCommandInvalid
	case <-timeoutCh:
		return &TimeoutError{Op: "connection handshake/RPC"}
	}
}

// Channel opens a new logical channel.
func (c *Connection) Channel() (*Channel, error) {
	id, ok := c.channels.next()
	if !ok {
		return nil, ErrChannelMax
	}
	ch := newChannel(c, id)
	c.channels.add(id, ch)
	if err := ch.open(); err != nil {
		c.channels.remove(id)
		return nil, err
	}
	return ch, nil
}

// NotifyClose registers a listener for connection close: the channel
// receives the terminal *Error (nil on a clean, caller-initiated close)
// and is then closed.
func (c *Connection) NotifyClose(ch chan *Error) chan *Error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.noNotify {
		close(ch)
	} else {
		c.closes = append(c.closes, ch)
	}
	return ch
}

// NotifyBlocked surfaces connection.blocked/unblocked events; the application decides whether to pause publishing.
func (c *Connection) NotifyBlocked(ch chan Blocking) chan Blocking {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.noNotify {
		close(ch)
	} else {
		c.blocks = append(c.blocks, ch)
	}
	return ch
}

// Close performs an orderly close:
// not auto-recovered.
func (c *Connection) Close() error {
	err := c.call(c.cfg.ContinuationTimeout, &connectionClose{ReplyCode: replySuccess, ReplyText: "normal shutdown"}, &connectionCloseOk{})
	close(c.recoveryStop)
	c.shutdown(nil, false)
	return err
}

func (c *Connection) closeWith(err *Error) error {
	callErr := c.call(c.cfg.ContinuationTimeout, &connectionClose{ReplyCode: uint16(err.Code), ReplyText: err.Reason}, &connectionCloseOk{})
	c.shutdown(err, false)
	return callErr
}

// NotifyRecovery surfaces the replacement *Connection once automatic
// recovery succeeds; see recovery.go for what "recovery"
// transfers and what it does not.
func (c *Connection) NotifyRecovery(ch chan *Connection) chan *Connection {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recoveries = append(c.recoveries, ch)
	return ch
}

// shutdown tears the connection down. recoverable distinguishes an
// unexpected loss of connectivity (reader() I/O error, broker-initiated
// connection.close) from a voluntary local Close/closeWith, the latter
// never triggering automatic recovery.
func (c *Connection) shutdown(err *Error, recoverable bool) {
	c.destructor.Do(func() {
		c.mu.Lock()
		c.state = stateClosed
		closes := c.closes
		blocks := c.blocks
		c.noNotify = true
		c.mu.Unlock()

		if err != nil {
			for _, ch := range closes {
				ch <- err
			}
		}

		closed := c.channels.removeAll()
		c.closedChannels = closed
		for _, ch := range closed {
			ch.shutdown(err)
		}

		if err != nil {
			select {
			case c.errors <- err:
			default:
			}
		}

		close(c.heartbeatDone)
		c.frames.Close()

		for _, ch := range closes {
			close(ch)
		}
		for _, ch := range blocks {
			close(ch)
		}

		if recoverable && c.cfg.AutomaticRecoveryEnabled {
			engine := newRecoveryEngine(c.resolver, c.cfg)
			go engine.run(c, c.recoveryStop)
		}
	})
}

func (c *Connection) demux(f frame) {
	if f.channel() == 0 {
		c.dispatch0(f)
	} else {
		c.dispatchN(f)
	}
}

func (c *Connection) dispatch0(f frame) {
	switch mf := f.(type) {
	case *methodFrame:
		switch m := mf.Method.(type) {
		case *connectionClose:
			c.frames.WriteFrames(&methodFrame{ChannelId: 0, Method: &connectionCloseOk{}})
			c.shutdown(newError(m.ReplyCode, m.ReplyText), true)
		case *connectionBlocked:
			c.mu.Lock()
			blocks := c.blocks
			c.mu.Unlock()
			for _, ch := range blocks {
				ch <- Blocking{Active: true, Reason: m.Reason}
			}
		case *connectionUnblocked:
			c.mu.Lock()
			blocks := c.blocks
			c.mu.Unlock()
			for _, ch := range blocks {
				ch <- Blocking{Active: false}
			}
		default:
			c.rpc <- m
		}
	case *heartbeatFrame:
		// reading already reset the deadline; nothing else to do
	default:
		c.closeWith(&Error{Code: UnexpectedFrame, Reason: "unexpected frame on channel 0"})
	}
}

func (c *Connection) dispatchN(f frame) {
	if ch := c.channels.get(f.channel()); ch != nil {
		ch.recv(f)
		return
	}
	// A method frame on a channel we no longer track must still be
	// close-ok'd to avoid deadlocking a simultaneous close.
	if mf, ok := f.(*methodFrame); ok {
		switch mf.Method.(type) {
		case *channelClose:
			c.frames.WriteFrames(&methodFrame{ChannelId: f.channel(), Method: &channelCloseOk{}})
		case *channelCloseOk:
		default:
			c.closeWith(&Error{Code: ChannelErrorCode, Reason: "frame received for unknown channel"})
		}
	}
}

func (c *Connection) reader() {
	for {
		f, err := c.frames.ReadFrame()
		if err != nil {
			c.shutdown(&Error{Code: FrameError, Reason: err.Error()}, true)
			return
		}
		c.demux(f)
	}
}

// heartbeater emits heartbeat frames at the negotiated interval. A peer
// that stops responding is caught by the socket read deadline that
// timeoutTransport installs on every Read (see resolveSocketTimeout): a
// peer silent for longer than the larger of SocketReadTimeout and 2x the
// requested heartbeat fails the next ReadFrame, which reader() turns into a
// shutdown.
func (c *Connection) heartbeater(interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := c.frames.WriteFrames(&heartbeatFrame{}); err != nil {
				return
			}
		case <-c.heartbeatDone:
			return
		}
	}
}

// IsCapable inspects Properties["capabilities"] for a server-advertised
// feature flag (e.g. "basic.ack", "confirm.select").
func (c *Connection) IsCapable(feature string) bool {
	caps, _ := c.Properties["capabilities"].(Table)
	v, _ := caps[feature].(bool)
	return v
}

// newConsumerTag generates a client-side consumer tag when the caller did
// not supply one.
func newConsumerTag() string {
	return "ctag-" + uuid.NewString()
}

// rawProtocolHeaderFrame writes the literal 8-byte AMQP preamble directly,
// since it precedes any framing and has no frame-end byte.
type rawProtocolHeaderFrame struct{}

func (rawProtocolHeaderFrame) channel() uint16 { return 0 }
