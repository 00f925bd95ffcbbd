package amqp

import (
	"time"
)

// recoveryEngine drives automatic connection recovery: after an unexpected
// loss of connectivity it redials via the same EndpointResolver, then
// replays every channel's recorded topology in
// declare order (exchanges, queues, exchange bindings, queue bindings, QoS,
// confirm.select, consumers) before handing the fresh *Connection to
// NotifyRecovery listeners.
//
// This implementation does not transparently swap the transport underneath
// the caller's existing *Connection/*Channel handles (the way some clients
// do via an internal delegate) -- callers that want continuity after
// recovery read the replacement off NotifyRecovery and re-bind their
// *Channel references. See DESIGN.md for the rationale.
type recoveryEngine struct {
	resolver EndpointResolver
	cfg      ConnectionConfig

	recoveries []chan *Connection
}

func newRecoveryEngine(resolver EndpointResolver, cfg ConnectionConfig) *recoveryEngine {
	return &recoveryEngine{resolver: resolver, cfg: cfg}
}

// run retries dial+handshake+replay at NetworkRecoveryInterval until it
// succeeds or the caller's done channel fires.
func (e *recoveryEngine) run(old *Connection, done <-chan struct{}) {
	interval := e.cfg.NetworkRecoveryInterval
	if interval <= 0 {
		interval = DefaultNetworkRecoveryInterval
	}

	for {
		select {
		case <-done:
			return
		case <-time.After(interval):
		}

		next, err := open(e.resolver, e.cfg)
		if err != nil {
			continue
		}

		if e.cfg.TopologyRecoveryEnabled {
			replayTopology(old, next, e.cfg)
		}

		old.mu.Lock()
		recoveries := append([]chan *Connection(nil), old.recoveries...)
		old.mu.Unlock()
		for _, c := range recoveries {
			c <- next
		}
		return
	}
}

// replayTopology re-declares every exchange/queue/binding/consumer recorded
// on each of old's channels onto a freshly opened connection, in declare
// order. A TopologyRecoveryFilter may skip an entity; a
// TopologyRecoveryExceptionHandler decides what happens when a replay step
// itself fails.
func replayTopology(old, next *Connection, cfg ConnectionConfig) {
	for _, oldCh := range old.closedChannels {
		ch, err := next.Channel()
		if err != nil {
			return
		}

		exchanges, queues, exBindings, bindings, qos, confirms, consumers := oldCh.topology.snapshot()

		for _, e := range exchanges {
			if cfg.TopologyRecoveryFilter != nil && !cfg.TopologyRecoveryFilter(e) {
				continue
			}
			if err := ch.ExchangeDeclare(e.Name, e.Kind, e.Durable, e.AutoDelete, e.Internal, false, e.Arguments); err != nil {
				if handleRecoveryError(cfg, e, err) == RecoveryAbort {
					return
				}
			}
		}
		for _, q := range queues {
			if cfg.TopologyRecoveryFilter != nil && !cfg.TopologyRecoveryFilter(q) {
				continue
			}
			if _, err := ch.QueueDeclare(q.Name, q.Durable, q.AutoDelete, q.Exclusive, false, q.Arguments); err != nil {
				if handleRecoveryError(cfg, q, err) == RecoveryAbort {
					return
				}
			}
		}
		for _, b := range exBindings {
			if cfg.TopologyRecoveryFilter != nil && !cfg.TopologyRecoveryFilter(b) {
				continue
			}
			if err := ch.ExchangeBind(b.Destination, b.RoutingKey, b.Source, false, b.Arguments); err != nil {
				if handleRecoveryError(cfg, b, err) == RecoveryAbort {
					return
				}
			}
		}
		for _, b := range bindings {
			if cfg.TopologyRecoveryFilter != nil && !cfg.TopologyRecoveryFilter(b) {
				continue
			}
			if err := ch.QueueBind(b.Queue, b.RoutingKey, b.Exchange, false, b.Arguments); err != nil {
				if handleRecoveryError(cfg, b, err) == RecoveryAbort {
					return
				}
			}
		}
		if qos != nil {
			ch.Qos(int(qos.PrefetchCount), int(qos.PrefetchSize), qos.Global)
		}
		if confirms {
			ch.Confirm(false)
		}
		for _, c := range consumers {
			if cfg.TopologyRecoveryFilter != nil && !cfg.TopologyRecoveryFilter(c) {
				continue
			}
			if _, err := ch.Consume(c.Queue, c.ConsumerTag, c.NoAck, c.Exclusive, c.NoLocal, false, c.Arguments, c.handler); err != nil {
				if handleRecoveryError(cfg, c, err) == RecoveryAbort {
					return
				}
			}
		}
	}
}

func handleRecoveryError(cfg ConnectionConfig, entity RecordedEntity, err error) RecoveryAction {
	if cfg.TopologyRecoveryExceptionHandler == nil {
		return RecoverySkip
	}
	return cfg.TopologyRecoveryExceptionHandler(entity, err)
}
