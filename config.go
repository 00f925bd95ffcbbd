package amqp

import (
	"crypto/tls"
	"time"
)

// Default tuning values used when a ConnectionFactory field is left unset.
const (
	DefaultChannelMax               = 2047
	DefaultFrameMax                  = 0 // unlimited; server typically clamps to 131072
	DefaultFrameMinSize              = 4096
	DefaultHeartbeat                 = 60 * time.Second
	DefaultMaxInboundMessageBodySize = 64 << 20  // 64 MiB
	MaxInboundMessageBodySizeCeiling = 512 << 20 // 512 MiB
	DefaultHandshakeTimeout          = 10 * time.Second
	DefaultContinuationTimeout       = 20 * time.Second
	DefaultConnectionTimeout         = 30 * time.Second
	DefaultNetworkRecoveryInterval   = 5 * time.Second
	DefaultConsumerDispatchConcurrency = 1
	MaxClientProvidedNameLength      = 3000
)

// RecordedEntity is a declared topology entity (exchange, queue, binding,
// consumer, ...), passed to the pluggable topology recovery predicates
// below. See topology.go for the concrete entity kinds.
type RecordedEntity interface {
	entityKind() string
}

// RecoveryAction is returned by a TopologyRecoveryExceptionHandler to
// decide what the auto-recovery engine should do with one failed replay
// step.
type RecoveryAction int

const (
	RecoverySkip RecoveryAction = iota
	RecoveryRetry
	RecoveryAbort
)

// ConnectionConfig is the immutable tuning surface for one dial attempt.
// Build it once via ConnectionFactory; a Connection never mutates its own
// copy after Open succeeds.
type ConnectionConfig struct {
	VirtualHost string

	Username string
	Password string

	AuthMechanisms []Authentication

	RequestedChannelMax uint16
	RequestedFrameMax   uint32
	MaxInboundMessageBodySize int64
	RequestedHeartbeat  time.Duration

	HandshakeContinuationTimeout time.Duration
	ContinuationTimeout          time.Duration
	ConnectionTimeout            time.Duration
	SocketReadTimeout            time.Duration
	SocketWriteTimeout           time.Duration

	AutomaticRecoveryEnabled bool
	TopologyRecoveryEnabled  bool
	NetworkRecoveryInterval  time.Duration

	ConsumerDispatchConcurrency int

	ClientProvidedName string
	ClientProperties   Table

	TLSClientConfig *tls.Config

	Logger Logger

	EndpointResolver EndpointResolver

	TopologyRecoveryFilter           func(RecordedEntity) bool
	TopologyRecoveryExceptionHandler func(RecordedEntity, error) RecoveryAction
}

// ConnectionFactory is a builder: it accumulates configuration and is only
// consulted when one of its Dial methods (Dial, DialMulti, DialURI,
// DialEndpointList) runs -- the factory itself is mutable, the
// ConnectionConfig it produces per attempt is not.
type ConnectionFactory struct {
	cfg ConnectionConfig
}

// NewConnectionFactory returns a factory pre-populated with sane defaults
// for every tunable.
func NewConnectionFactory() *ConnectionFactory {
	return &ConnectionFactory{cfg: ConnectionConfig{
		VirtualHost:                  defaultURIVhost,
		Username:                     defaultURIUsername,
		Password:                     defaultURIPassword,
		AuthMechanisms:               nil, // resolved from Username/Password at Dial time if unset
		RequestedChannelMax:          DefaultChannelMax,
		RequestedFrameMax:            DefaultFrameMax,
		MaxInboundMessageBodySize:    DefaultMaxInboundMessageBodySize,
		RequestedHeartbeat:           DefaultHeartbeat,
		HandshakeContinuationTimeout: DefaultHandshakeTimeout,
		ContinuationTimeout:          DefaultContinuationTimeout,
		ConnectionTimeout:            DefaultConnectionTimeout,
		SocketReadTimeout:            DefaultConnectionTimeout,
		SocketWriteTimeout:           DefaultConnectionTimeout,
		AutomaticRecoveryEnabled:     true,
		TopologyRecoveryEnabled:      true,
		NetworkRecoveryInterval:      DefaultNetworkRecoveryInterval,
		ConsumerDispatchConcurrency:  DefaultConsumerDispatchConcurrency,
		ClientProperties:             defaultClientProperties(),
	}}
}

func defaultClientProperties() Table {
	return Table{
		"product":      "goamqp",
		"version":      "0.1.0",
		"platform":     "Go",
		"copyright":    "",
		"information":  "AMQP 0-9-1 client connection runtime",
		"capabilities": Table{"connection.blocked": true},
	}
}

func (f *ConnectionFactory) SetVirtualHost(v string) *ConnectionFactory { f.cfg.VirtualHost = v; return f }
func (f *ConnectionFactory) SetCredentials(user, pass string) *ConnectionFactory {
	f.cfg.Username, f.cfg.Password = user, pass
	return f
}
func (f *ConnectionFactory) SetAuthMechanisms(a ...Authentication) *ConnectionFactory {
	f.cfg.AuthMechanisms = a
	return f
}
func (f *ConnectionFactory) SetRequestedChannelMax(n uint16) *ConnectionFactory {
	f.cfg.RequestedChannelMax = n
	return f
}
func (f *ConnectionFactory) SetRequestedFrameMax(n uint32) *ConnectionFactory {
	f.cfg.RequestedFrameMax = n
	return f
}
func (f *ConnectionFactory) SetRequestedHeartbeat(d time.Duration) *ConnectionFactory {
	f.cfg.RequestedHeartbeat = d
	return f
}
func (f *ConnectionFactory) SetAutomaticRecovery(enabled bool) *ConnectionFactory {
	f.cfg.AutomaticRecoveryEnabled = enabled
	return f
}
func (f *ConnectionFactory) SetTopologyRecovery(enabled bool) *ConnectionFactory {
	f.cfg.TopologyRecoveryEnabled = enabled
	return f
}
func (f *ConnectionFactory) SetNetworkRecoveryInterval(d time.Duration) *ConnectionFactory {
	f.cfg.NetworkRecoveryInterval = d
	return f
}
func (f *ConnectionFactory) SetConsumerDispatchConcurrency(n int) *ConnectionFactory {
	f.cfg.ConsumerDispatchConcurrency = n
	return f
}
func (f *ConnectionFactory) SetClientProvidedName(name string) *ConnectionFactory {
	if len(name) > MaxClientProvidedNameLength {
		name = name[:MaxClientProvidedNameLength]
	}
	f.cfg.ClientProvidedName = name
	return f
}
func (f *ConnectionFactory) SetTLSClientConfig(c *tls.Config) *ConnectionFactory {
	f.cfg.TLSClientConfig = c
	return f
}
func (f *ConnectionFactory) SetLogger(l Logger) *ConnectionFactory { f.cfg.Logger = l; return f }
func (f *ConnectionFactory) SetEndpointResolver(r EndpointResolver) *ConnectionFactory {
	f.cfg.EndpointResolver = r
	return f
}
func (f *ConnectionFactory) SetTopologyRecoveryFilter(fn func(RecordedEntity) bool) *ConnectionFactory {
	f.cfg.TopologyRecoveryFilter = fn
	return f
}
func (f *ConnectionFactory) SetTopologyRecoveryExceptionHandler(fn func(RecordedEntity, error) RecoveryAction) *ConnectionFactory {
	f.cfg.TopologyRecoveryExceptionHandler = fn
	return f
}

// snapshot returns an independent copy of the accumulated config, which is
// what actually becomes immutable once handed to a Connection attempt.
func (f *ConnectionFactory) snapshot() ConnectionConfig {
	cfg := f.cfg
	if cfg.ClientProperties != nil {
		cp := make(Table, len(f.cfg.ClientProperties))
		for k, v := range f.cfg.ClientProperties {
			cp[k] = v
		}
		cfg.ClientProperties = cp
	}
	return cfg
}

// Dial resolves auth from Username/Password if none was set explicitly,
// then connects to a single host:port.
func (f *ConnectionFactory) Dial(host string, port int) (*Connection, error) {
	return f.DialMulti([]Endpoint{{Host: host, Port: port, TLS: f.cfg.TLSClientConfig}})
}

// DialMulti connects using the configured (or default shuffling)
// EndpointResolver over the given candidates.
func (f *ConnectionFactory) DialMulti(candidates []Endpoint) (*Connection, error) {
	cfg := f.snapshot()
	if cfg.AuthMechanisms == nil {
		cfg.AuthMechanisms = []Authentication{credentialPair{cfg.Username, cfg.Password}.toPlain()}
	}
	resolver := cfg.EndpointResolver
	if resolver == nil {
		resolver = NewShufflingResolver(candidates)
	}
	return open(resolver, cfg)
}

// DialURI parses an amqp(s):// URI and connects to it, using
// the credentials and vhost it carries unless already overridden on the
// factory.
func (f *ConnectionFactory) DialURI(uri string) (*Connection, error) {
	parsed, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}
	if f.cfg.Username == defaultURIUsername && f.cfg.Password == defaultURIPassword {
		f.SetCredentials(parsed.Username, parsed.Password)
	}
	if f.cfg.VirtualHost == defaultURIVhost {
		f.SetVirtualHost(parsed.Vhost)
	}
	if parsed.Scheme == "amqps" && f.cfg.TLSClientConfig == nil {
		f.SetTLSClientConfig(&tls.Config{})
	}
	return f.Dial(parsed.Host, parsed.Port)
}

// DialEndpointList connects to a comma-separated host[:port] list sharing
// one scheme/TLS-ness, letting the
// default EndpointResolver shuffle and fail over between them.
func (f *ConnectionFactory) DialEndpointList(list string, useTLS bool) (*Connection, error) {
	defaultPort := defaultURIPort
	if useTLS {
		defaultPort = defaultURITLSPort
	}
	specs, err := parseEndpointList(list, useTLS, defaultPort)
	if err != nil {
		return nil, err
	}
	candidates := make([]Endpoint, 0, len(specs))
	for _, s := range specs {
		ep := Endpoint{Host: s.Host, Port: s.Port}
		if s.TLS {
			if f.cfg.TLSClientConfig != nil {
				ep.TLS = f.cfg.TLSClientConfig
			} else {
				ep.TLS = &tls.Config{}
			}
		}
		candidates = append(candidates, ep)
	}
	return f.DialMulti(candidates)
}

type credentialPair struct {
	Username, Password string
}

func (c credentialPair) toPlain() Authentication {
	return &PlainAuth{Username: c.Username, Password: c.Password}
}
