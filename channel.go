package amqp

import (
	"reflect"
	"sync"
	"time"
)

type chanState int

const (
	chanOpening chanState = iota
	chanOpen
	chanClosed
)

// Channel is a logical multiplexed session within a Connection. It holds a single outstanding RPC continuation slot: the
// caller of a synchronous method (one answered by a -ok reply) blocks until
// that reply arrives, so concurrent RPCs on one Channel are serialized by
// callMu. Publish, Ack, Nack and Reject do not wait for a reply.
type Channel struct {
	id   uint16
	conn *Connection

	mu       sync.Mutex
	state    chanState
	callMu   sync.Mutex
	rpc      chan message
	errors   chan *Error

	closes  []chan *Error
	cancels []chan string
	returns []chan Return
	flows   []chan bool

	confirmMode bool
	confirms    *confirmTracker

	consumers map[string]*consumerDispatcher

	// content reassembly state for the method currently awaiting its
	// header+body frames (basic.deliver / basic.return / basic.get-ok).
	pending    messageWithContent
	pendingHdr *headerFrame
	pendingBuf []byte

	topology *topologyRecorder

	destructor sync.Once
}

func newChannel(c *Connection, id uint16) *Channel {
	return &Channel{
		id:        id,
		conn:      c,
		rpc:       make(chan message),
		errors:    make(chan *Error, 1),
		confirms:  newConfirmTracker(),
		consumers: make(map[string]*consumerDispatcher),
		topology:  newTopologyRecorder(),
		state:     chanOpening,
	}
}

func (ch *Channel) open() error {
	if err := ch.call(&channelOpen{}, &channelOpenOk{}); err != nil {
		return err
	}
	ch.mu.Lock()
	ch.state = chanOpen
	ch.mu.Unlock()
	return nil
}

// call sends req on this channel and blocks for a reply matching one of
// res's types, using the same reflect-based continuation match as
// Connection.call.
func (ch *Channel) call(req message, res ...message) error {
	ch.callMu.Lock()
	defer ch.callMu.Unlock()

	classId, methodId := req.id()
	if err := ch.conn.frames.WriteFrames(&methodFrame{ChannelId: ch.id, ClassId: classId, MethodId: methodId, Method: req}); err != nil {
		return err
	}

	timeout := ch.conn.cfg.ContinuationTimeout
	var timeoutCh <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		timeoutCh = timer.C
	}

	select {
	case err := <-ch.errors:
		return err
	case msg := <-ch.rpc:
		for _, try := range res {
			if reflect.TypeOf(msg) == reflect.TypeOf(try) {
				reflect.ValueOf(try).Elem().Set(reflect.ValueOf(msg).Elem())
				return nil
			}
		}
		return ErrCommandInvalid
	case <-timeoutCh:
		return &TimeoutError{Op: "channel RPC"}
	}
}

// recv is invoked by Connection.dispatchN for every frame addressed to this
// channel's id.
func (ch *Channel) recv(f frame) {
	switch v := f.(type) {
	case *methodFrame:
		ch.dispatchMethod(v.Method)
	case *headerFrame:
		ch.mu.Lock()
		ch.pendingHdr = v
		ch.pendingBuf = make([]byte, 0, v.Size)
		complete := v.Size == 0
		ch.mu.Unlock()
		if complete {
			ch.completeContent()
		}
	case *bodyFrame:
		ch.mu.Lock()
		ch.pendingBuf = append(ch.pendingBuf, v.Body...)
		complete := ch.pendingHdr != nil && uint64(len(ch.pendingBuf)) >= ch.pendingHdr.Size
		ch.mu.Unlock()
		if complete {
			ch.completeContent()
		}
	}
}

func (ch *Channel) completeContent() {
	ch.mu.Lock()
	pending := ch.pending
	hdr := ch.pendingHdr
	body := ch.pendingBuf
	ch.pending, ch.pendingHdr, ch.pendingBuf = nil, nil, nil
	ch.mu.Unlock()

	if pending == nil || hdr == nil {
		return
	}
	pending.setContent(hdr.Properties, body)

	switch m := pending.(type) {
	case *basicDeliver:
		ch.deliverToConsumer(m, hdr.Properties, body)
	case *basicReturn:
		ret := returnFromBasicReturn(m, hdr.Properties, body)
		ch.mu.Lock()
		chans := append([]chan Return(nil), ch.returns...)
		ch.mu.Unlock()
		for _, c := range chans {
			c <- ret
		}
	case *basicGetOk:
		ch.rpc <- m
	}
}

func (ch *Channel) deliverToConsumer(m *basicDeliver, props properties, body []byte) {
	ch.mu.Lock()
	d := ch.consumers[m.ConsumerTag]
	ch.mu.Unlock()
	if d == nil {
		return
	}
	d.push(deliveryFromDeliver(ch, m, props, body))
}

func (ch *Channel) dispatchMethod(m message) {
	switch v := m.(type) {
	case *channelClose:
		ch.conn.frames.WriteFrames(&methodFrame{ChannelId: ch.id, Method: &channelCloseOk{}})
		ch.shutdown(newError(v.ReplyCode, v.ReplyText))
	case *channelFlow:
		ch.conn.frames.WriteFrames(&methodFrame{ChannelId: ch.id, Method: &channelFlowOk{Active: v.Active}})
		ch.mu.Lock()
		flows := append([]chan bool(nil), ch.flows...)
		ch.mu.Unlock()
		for _, c := range flows {
			c <- v.Active
		}
	case *basicDeliver:
		ch.mu.Lock()
		ch.pending = v
		ch.mu.Unlock()
	case *basicReturn:
		ch.mu.Lock()
		ch.pending = v
		ch.mu.Unlock()
	case *basicGetOk:
		ch.mu.Lock()
		ch.pending = v
		ch.mu.Unlock()
	case *basicAck:
		ch.confirms.resolve(v.DeliveryTag, v.Multiple, true)
	case *basicNack:
		ch.confirms.resolve(v.DeliveryTag, v.Multiple, false)
	case *basicCancel:
		ch.cancelConsumer(v.ConsumerTag)
	default:
		ch.rpc <- m
	}
}

func (ch *Channel) cancelConsumer(tag string) {
	ch.mu.Lock()
	d, ok := ch.consumers[tag]
	if ok {
		delete(ch.consumers, tag)
	}
	cancels := append([]chan string(nil), ch.cancels...)
	ch.mu.Unlock()
	if d != nil {
		d.stop()
	}
	for _, c := range cancels {
		c <- tag
	}
}

// Qos applies prefetch limits (basic.qos) and records them for recovery.
func (ch *Channel) Qos(prefetchCount int, prefetchSize int, global bool) error {
	if err := ch.call(&basicQos{PrefetchSize: uint32(prefetchSize), PrefetchCount: uint16(prefetchCount), Global: global}, &basicQosOk{}); err != nil {
		return err
	}
	ch.topology.recordQos(recordedQos{PrefetchSize: uint32(prefetchSize), PrefetchCount: uint16(prefetchCount), Global: global})
	return nil
}

// Confirm puts the channel into publisher-confirm mode (confirm.select).
func (ch *Channel) Confirm(noWait bool) error {
	var ok message = &confirmSelectOk{}
	if noWait {
		ok = nil
	}
	var res []message
	if ok != nil {
		res = []message{ok}
	}
	req := &confirmSelect{NoWait: noWait}
	var err error
	if len(res) > 0 {
		err = ch.call(req, res...)
	} else {
		classId, methodId := req.id()
		err = ch.conn.frames.WriteFrames(&methodFrame{ChannelId: ch.id, ClassId: classId, MethodId: methodId, Method: req})
	}
	if err != nil {
		return err
	}
	ch.mu.Lock()
	ch.confirmMode = true
	ch.mu.Unlock()
	ch.topology.recordConfirmSelect()
	return nil
}

// ExchangeDeclare declares an exchange and records it for topology replay.
func (ch *Channel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args Table) error {
	req := &exchangeDeclare{Exchange: name, Type: kind, Durable: durable, AutoDelete: autoDelete, Internal: internal, NoWait: noWait, Arguments: args}
	if noWait {
		classId, methodId := req.id()
		if err := ch.conn.frames.WriteFrames(&methodFrame{ChannelId: ch.id, ClassId: classId, MethodId: methodId, Method: req}); err != nil {
			return err
		}
	} else if err := ch.call(req, &exchangeDeclareOk{}); err != nil {
		return err
	}
	ch.topology.recordExchange(recordedExchange{Name: name, Kind: kind, Durable: durable, AutoDelete: autoDelete, Internal: internal, Arguments: args})
	return nil
}

func (ch *Channel) ExchangeDelete(name string, ifUnused, noWait bool) error {
	req := &exchangeDelete{Exchange: name, IfUnused: ifUnused, NoWait: noWait}
	if err := ch.call(req, &exchangeDeleteOk{}); err != nil {
		return err
	}
	ch.topology.forgetExchange(name)
	return nil
}

func (ch *Channel) ExchangeBind(destination, key, source string, noWait bool, args Table) error {
	req := &exchangeBind{Destination: destination, Source: source, RoutingKey: key, NoWait: noWait, Arguments: args}
	if err := ch.call(req, &exchangeBindOk{}); err != nil {
		return err
	}
	ch.topology.recordExchangeBinding(recordedExchangeBinding{Destination: destination, Source: source, RoutingKey: key, Arguments: args})
	return nil
}

func (ch *Channel) ExchangeUnbind(destination, key, source string, noWait bool, args Table) error {
	return ch.call(&exchangeUnbind{Destination: destination, Source: source, RoutingKey: key, NoWait: noWait, Arguments: args}, &exchangeUnbindOk{})
}

// QueueDeclare declares a queue and records it for topology replay.
func (ch *Channel) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args Table) (queueDeclareOk, error) {
	req := &queueDeclare{Queue: name, Durable: durable, Exclusive: exclusive, AutoDelete: autoDelete, NoWait: noWait, Arguments: args}
	var ok queueDeclareOk
	if noWait {
		classId, methodId := req.id()
		if err := ch.conn.frames.WriteFrames(&methodFrame{ChannelId: ch.id, ClassId: classId, MethodId: methodId, Method: req}); err != nil {
			return ok, err
		}
		ok.Queue = name
	} else {
		var reply queueDeclareOk
		if err := ch.call(req, &reply); err != nil {
			return ok, err
		}
		ok = reply
	}
	ch.topology.recordQueue(recordedQueue{Name: ok.Queue, Durable: durable, Exclusive: exclusive, AutoDelete: autoDelete, Arguments: args})
	return ok, nil
}

func (ch *Channel) QueueBind(name, key, exchange string, noWait bool, args Table) error {
	req := &queueBind{Queue: name, Exchange: exchange, RoutingKey: key, NoWait: noWait, Arguments: args}
	if err := ch.call(req, &queueBindOk{}); err != nil {
		return err
	}
	ch.topology.recordBinding(recordedBinding{Queue: name, Exchange: exchange, RoutingKey: key, Arguments: args})
	return nil
}

func (ch *Channel) QueueUnbind(name, key, exchange string, args Table) error {
	if err := ch.call(&queueUnbind{Queue: name, Exchange: exchange, RoutingKey: key, Arguments: args}, &queueUnbindOk{}); err != nil {
		return err
	}
	ch.topology.forgetBinding(recordedBinding{Queue: name, Exchange: exchange, RoutingKey: key})
	return nil
}

func (ch *Channel) QueuePurge(name string, noWait bool) (uint32, error) {
	var ok queuePurgeOk
	if err := ch.call(&queuePurge{Queue: name, NoWait: noWait}, &ok); err != nil {
		return 0, err
	}
	return ok.MessageCount, nil
}

func (ch *Channel) QueueDelete(name string, ifUnused, ifEmpty, noWait bool) (uint32, error) {
	var ok queueDeleteOk
	if err := ch.call(&queueDelete{Queue: name, IfUnused: ifUnused, IfEmpty: ifEmpty, NoWait: noWait}, &ok); err != nil {
		return 0, err
	}
	ch.topology.forgetQueue(name)
	return ok.MessageCount, nil
}

// Publish sends a message; when in confirm mode it is additionally tracked
// against the contiguous-suffix invariant.
func (ch *Channel) Publish(exchange, routingKey string, mandatory, immediate bool, msg Publishing) error {
	_, err := ch.publish(exchange, routingKey, mandatory, immediate, msg)
	return err
}

// PublishWithConfirm is Publish for a channel in confirm mode: it returns a
// DeferredConfirmation the caller can wait on instead of batching an
// explicit WaitForConfirms call.
func (ch *Channel) PublishWithConfirm(exchange, routingKey string, mandatory, immediate bool, msg Publishing) (*DeferredConfirmation, error) {
	return ch.publish(exchange, routingKey, mandatory, immediate, msg)
}

func (ch *Channel) publish(exchange, routingKey string, mandatory, immediate bool, msg Publishing) (*DeferredConfirmation, error) {
	ch.mu.Lock()
	confirmMode := ch.confirmMode
	ch.mu.Unlock()

	props := publishingToProperties(msg)
	frameMax := ch.conn.frames.r.maxFrame
	chunks := splitBody(msg.Body, frameMax)

	batch := make([]frame, 0, 2+len(chunks))
	batch = append(batch, &methodFrame{
		ChannelId: ch.id,
		Method:    &basicPublish{Exchange: exchange, RoutingKey: routingKey, Mandatory: mandatory, Immediate: immediate},
	})
	batch = append(batch, &headerFrame{ChannelId: ch.id, ClassId: classBasic, Size: uint64(len(msg.Body)), Properties: props})
	for _, c := range chunks {
		if len(c) == 0 && len(msg.Body) != 0 {
			continue
		}
		batch = append(batch, &bodyFrame{ChannelId: ch.id, Body: c})
	}

	// The delivery tag must be reserved at the moment this batch actually
	// reaches the head of the single-writer queue, not here: two goroutines
	// publishing concurrently on the same channel can submit in either
	// order, and the broker's basic.ack/basic.nack references tags by true
	// wire order, not submission order.
	var deferred *DeferredConfirmation
	prepare := func() {
		if confirmMode {
			tag := ch.confirms.nextPublishTag()
			deferred = ch.confirms.track(tag)
		}
	}

	if err := ch.conn.frames.WriteFramesWithPrepare(prepare, batch...); err != nil {
		return nil, err
	}
	return deferred, nil
}

// Consume registers a consumer and starts its dispatch workers.
func (ch *Channel) Consume(queue, consumerTag string, noAck, exclusive, noLocal, noWait bool, args Table, handler func(Delivery)) (string, error) {
	if consumerTag == "" {
		consumerTag = newConsumerTag()
	}

	req := &basicConsume{Queue: queue, ConsumerTag: consumerTag, NoLocal: noLocal, NoAck: noAck, Exclusive: exclusive, NoWait: noWait, Arguments: args}
	if noWait {
		classId, methodId := req.id()
		if err := ch.conn.frames.WriteFrames(&methodFrame{ChannelId: ch.id, ClassId: classId, MethodId: methodId, Method: req}); err != nil {
			return "", err
		}
	} else {
		var ok basicConsumeOk
		if err := ch.call(req, &ok); err != nil {
			return "", err
		}
		consumerTag = ok.ConsumerTag
	}

	concurrency := ch.conn.cfg.ConsumerDispatchConcurrency
	if concurrency <= 0 {
		concurrency = DefaultConsumerDispatchConcurrency
	}
	d := newConsumerDispatcher(consumerTag, concurrency, handler)

	ch.mu.Lock()
	ch.consumers[consumerTag] = d
	ch.mu.Unlock()

	ch.topology.recordConsumer(recordedConsumer{Queue: queue, ConsumerTag: consumerTag, NoLocal: noLocal, NoAck: noAck, Exclusive: exclusive, Arguments: args, handler: handler})

	return consumerTag, nil
}

func (ch *Channel) Cancel(consumerTag string, noWait bool) error {
	req := &basicCancel{ConsumerTag: consumerTag, NoWait: noWait}
	if noWait {
		classId, methodId := req.id()
		if err := ch.conn.frames.WriteFrames(&methodFrame{ChannelId: ch.id, ClassId: classId, MethodId: methodId, Method: req}); err != nil {
			return err
		}
	} else if err := ch.call(req, &basicCancelOk{}); err != nil {
		return err
	}
	ch.cancelConsumer(consumerTag)
	ch.topology.forgetConsumer(consumerTag)
	return nil
}

// Get performs a one-shot basic.get, returning ok=false on basic.get-empty.
func (ch *Channel) Get(queue string, noAck bool) (Delivery, bool, error) {
	ch.callMu.Lock()
	classId, methodId := (&basicGet{}).id()
	err := ch.conn.frames.WriteFrames(&methodFrame{ChannelId: ch.id, ClassId: classId, MethodId: methodId, Method: &basicGet{Queue: queue, NoAck: noAck}})
	if err != nil {
		ch.callMu.Unlock()
		return Delivery{}, false, err
	}

	timeout := ch.conn.cfg.ContinuationTimeout
	var timeoutCh <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		timeoutCh = timer.C
	}

	select {
	case cerr := <-ch.errors:
		ch.callMu.Unlock()
		return Delivery{}, false, cerr
	case msg := <-ch.rpc:
		ch.callMu.Unlock()
		switch m := msg.(type) {
		case *basicGetEmpty:
			return Delivery{}, false, nil
		case *basicGetOk:
			props, body := m.getContent()
			return deliveryFromGetOk(ch, m, props, body), true, nil
		default:
			return Delivery{}, false, ErrCommandInvalid
		}
	case <-timeoutCh:
		ch.callMu.Unlock()
		return Delivery{}, false, &TimeoutError{Op: "basic.get"}
	}
}

func (ch *Channel) Ack(tag uint64, multiple bool) error {
	classId, methodId := (&basicAck{}).id()
	return ch.conn.frames.WriteFrames(&methodFrame{ChannelId: ch.id, ClassId: classId, MethodId: methodId, Method: &basicAck{DeliveryTag: tag, Multiple: multiple}})
}

func (ch *Channel) Nack(tag uint64, multiple, requeue bool) error {
	classId, methodId := (&basicNack{}).id()
	return ch.conn.frames.WriteFrames(&methodFrame{ChannelId: ch.id, ClassId: classId, MethodId: methodId, Method: &basicNack{DeliveryTag: tag, Multiple: multiple, Requeue: requeue}})
}

func (ch *Channel) Reject(tag uint64, requeue bool) error {
	classId, methodId := (&basicReject{}).id()
	return ch.conn.frames.WriteFrames(&methodFrame{ChannelId: ch.id, ClassId: classId, MethodId: methodId, Method: &basicReject{DeliveryTag: tag, Requeue: requeue}})
}

// Recover asks the broker to redeliver unacked messages on this channel.
func (ch *Channel) Recover(requeue bool) error {
	return ch.call(&basicRecover{Requeue: requeue}, &basicRecoverOk{})
}

// Flow toggles the broker's willingness to deliver to this channel.
func (ch *Channel) Flow(active bool) error {
	return ch.call(&channelFlow{Active: active}, &channelFlowOk{})
}

func (ch *Channel) NotifyClose(c chan *Error) chan *Error {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	ch.closes = append(ch.closes, c)
	return c
}

func (ch *Channel) NotifyCancel(c chan string) chan string {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	ch.cancels = append(ch.cancels, c)
	return c
}

func (ch *Channel) NotifyReturn(c chan Return) chan Return {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	ch.returns = append(ch.returns, c)
	return c
}

func (ch *Channel) NotifyFlow(c chan bool) chan bool {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	ch.flows = append(ch.flows, c)
	return c
}

// Close performs an orderly channel close; the connection is unaffected.
func (ch *Channel) Close() error {
	err := ch.call(&channelClose{ReplyCode: replySuccess, ReplyText: "normal shutdown"}, &channelCloseOk{})
	ch.shutdown(nil)
	ch.conn.channels.remove(ch.id)
	return err
}

func (ch *Channel) shutdown(err *Error) {
	ch.destructor.Do(func() {
		ch.mu.Lock()
		ch.state = chanClosed
		closes := ch.closes
		consumers := ch.consumers
		ch.consumers = nil
		ch.mu.Unlock()

		ch.confirms.abort()

		for _, d := range consumers {
			d.stop()
		}

		if err != nil {
			select {
			case ch.errors <- err:
			default:
			}
			for _, c := range closes {
				c <- err
			}
		}
		for _, c := range closes {
			close(c)
		}
	})
}
