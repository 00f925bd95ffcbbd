package amqp

import (
	"crypto/tls"
	"fmt"
	"math/rand"
	"net"
	"strconv"
	"time"
)

// Endpoint is one candidate (host, port, TLS?) a resolver can hand to
// attemptFn.
type Endpoint struct {
	Host string
	Port int
	TLS  *tls.Config // nil means no TLS
}

func (e Endpoint) Address() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

// EndpointResolver is a capability interface in place of an
// inheritance-based resolver hierarchy: SelectOne iterates candidates until
// attemptFn connects or all fail.
type EndpointResolver interface {
	SelectOne(attempt func(Endpoint) (Transport, error)) (Transport, Endpoint, error)
}

// Transport is the byte-stream collaborator the core consumes:
// readable/writable with timeouts. net.Conn (and *tls.Conn) satisfies it.
type Transport interface {
	Read(b []byte) (int, error)
	Write(b []byte) (int, error)
	Close() error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
}

// shufflingResolver iterates candidates in a stable shuffled order (seeded
// once at construction) as the default implementation of EndpointResolver.
type shufflingResolver struct {
	order []Endpoint
}

// NewShufflingResolver returns the default EndpointResolver: a random but
// fixed permutation of the supplied candidates, computed once so repeated
// reconnect attempts retry in the same order rather than re-shuffling on
// every call (which would make failover attempts harder to reason about).
func NewShufflingResolver(candidates []Endpoint) EndpointResolver {
	order := make([]Endpoint, len(candidates))
	copy(order, candidates)
	rand.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	return &shufflingResolver{order: order}
}

func (r *shufflingResolver) SelectOne(attempt func(Endpoint) (Transport, error)) (Transport, Endpoint, error) {
	var attempts []error
	for _, ep := range r.order {
		t, err := attempt(ep)
		if err == nil {
			return t, ep, nil
		}
		attempts = append(attempts, fmt.Errorf("%s: %w", ep.Address(), err))
	}
	return nil, Endpoint{}, &BrokerUnreachableError{Attempts: attempts}
}
