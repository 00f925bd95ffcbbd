package amqp

import "sync"

// Recorded entity kinds satisfying RecordedEntity (config.go), one per
// declarative operation the recovery engine can replay.
type recordedExchange struct {
	Name       string
	Kind       string
	Durable    bool
	AutoDelete bool
	Internal   bool
	Arguments  Table
}

func (recordedExchange) entityKind() string { return "exchange" }

type recordedQueue struct {
	Name       string
	Durable    bool
	Exclusive  bool
	AutoDelete bool
	Arguments  Table
}

func (recordedQueue) entityKind() string { return "queue" }

type recordedBinding struct {
	Queue      string
	Exchange   string
	RoutingKey string
	Arguments  Table
}

func (recordedBinding) entityKind() string { return "queue_binding" }

type recordedExchangeBinding struct {
	Destination string
	Source      string
	RoutingKey  string
	Arguments   Table
}

func (recordedExchangeBinding) entityKind() string { return "exchange_binding" }

type recordedConsumer struct {
	Queue       string
	ConsumerTag string
	NoLocal     bool
	NoAck       bool
	Exclusive   bool
	Arguments   Table
	handler     func(Delivery)
}

func (recordedConsumer) entityKind() string { return "consumer" }

type recordedQos struct {
	PrefetchSize  uint32
	PrefetchCount uint16
	Global        bool
}

func (recordedQos) entityKind() string { return "qos" }

type recordedConfirmSelect struct{}

func (recordedConfirmSelect) entityKind() string { return "confirm_select" }

// topologyRecorder is the append-only log of entities a Channel has
// declared, consulted by the recovery engine to replay them onto a fresh
// channel after reconnect. ExchangeDelete, QueueDelete, QueueUnbind and
// Cancel prune their matching entry so recovery never attempts to recreate
// something the application explicitly removed. ExchangeUnbind does not
// prune a recorded exchange-to-exchange binding; recovery re-creates it.
type topologyRecorder struct {
	mu         sync.Mutex
	exchanges  []recordedExchange
	queues     []recordedQueue
	bindings   []recordedBinding
	exBindings []recordedExchangeBinding
	consumers  []recordedConsumer
	qos        *recordedQos
	confirms   bool
}

func newTopologyRecorder() *topologyRecorder { return &topologyRecorder{} }

func (t *topologyRecorder) recordExchange(e recordedExchange) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.exchanges = append(t.exchanges, e)
}

func (t *topologyRecorder) forgetExchange(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := t.exchanges[:0]
	for _, e := range t.exchanges {
		if e.Name != name {
			out = append(out, e)
		}
	}
	t.exchanges = out
}

func (t *topologyRecorder) recordQueue(q recordedQueue) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.queues = append(t.queues, q)
}

func (t *topologyRecorder) forgetQueue(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := t.queues[:0]
	for _, q := range t.queues {
		if q.Name != name {
			out = append(out, q)
		}
	}
	t.queues = out
}

func (t *topologyRecorder) recordBinding(b recordedBinding) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.bindings = append(t.bindings, b)
}

func (t *topologyRecorder) forgetBinding(b recordedBinding) {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := t.bindings[:0]
	for _, existing := range t.bindings {
		if existing.Queue != b.Queue || existing.Exchange != b.Exchange || existing.RoutingKey != b.RoutingKey {
			out = append(out, existing)
		}
	}
	t.bindings = out
}

func (t *topologyRecorder) recordExchangeBinding(b recordedExchangeBinding) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.exBindings = append(t.exBindings, b)
}

func (t *topologyRecorder) recordConsumer(c recordedConsumer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.consumers = append(t.consumers, c)
}

func (t *topologyRecorder) forgetConsumer(tag string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := t.consumers[:0]
	for _, c := range t.consumers {
		if c.ConsumerTag != tag {
			out = append(out, c)
		}
	}
	t.consumers = out
}

func (t *topologyRecorder) recordQos(q recordedQos) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.qos = &q
}

func (t *topologyRecorder) recordConfirmSelect() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.confirms = true
}

// snapshot returns a copy of every recorded entity in declare order:
// exchanges, queues, exchange bindings, queue bindings, QoS, confirm
// select, then consumers.
func (t *topologyRecorder) snapshot() (exchanges []recordedExchange, queues []recordedQueue, exBindings []recordedExchangeBinding, bindings []recordedBinding, qos *recordedQos, confirms bool, consumers []recordedConsumer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	exchanges = append(exchanges, t.exchanges...)
	queues = append(queues, t.queues...)
	exBindings = append(exBindings, t.exBindings...)
	bindings = append(bindings, t.bindings...)
	qos = t.qos
	confirms = t.confirms
	consumers = append(consumers, t.consumers...)
	return
}
