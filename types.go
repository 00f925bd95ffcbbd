package amqp

import (
	"reflect"
	"time"
)

// Table holds AMQP field-table values. It is a plain Go map: decoding does
// not keep the wire order of entries, and encoding writes them in map
// iteration order. Equal compares two tables and ignores order.
type Table map[string]interface{}

// Decimal matches the AMQP decimal-value type. Value * 10^(-Scale) is the
// represented amount.
type Decimal struct {
	Scale uint8
	Value int32
}

// Equal reports whether two tables carry the same keys and values,
// independent of encoding order.
func (t Table) Equal(o Table) bool {
	if len(t) != len(o) {
		return false
	}
	for k, v := range t {
		ov, ok := o[k]
		if !ok {
			return false
		}
		if !fieldValueEqual(v, ov) {
			return false
		}
	}
	return true
}

func fieldValueEqual(a, b interface{}) bool {
	at, aok := a.(Table)
	bt, bok := b.(Table)
	if aok && bok {
		return at.Equal(bt)
	}
	return reflect.DeepEqual(a, b)
}

// Blocking describes a connection.blocked/unblocked event.
type Blocking struct {
	Active bool
	Reason string
}

// Publishing carries the message body plus content properties submitted to
// Channel.Publish.
type Publishing struct {
	Headers Table

	ContentType     string
	ContentEncoding string
	DeliveryMode    uint8
	Priority        uint8
	CorrelationId   string
	ReplyTo         string
	Expiration      string
	MessageId       string
	Timestamp       time.Time
	Type            string
	UserId          string
	AppId           string

	Body []byte
}

// Delivery carries an inbound basic.deliver/basic.get-ok message, plus the
// acknowledgement methods bound to the channel and delivery tag it arrived
// on.
type Delivery struct {
	Acknowledger Acknowledger

	Headers Table

	ContentType     string
	ContentEncoding string
	DeliveryMode    uint8
	Priority        uint8
	CorrelationId   string
	ReplyTo         string
	Expiration      string
	MessageId       string
	Timestamp       time.Time
	Type            string
	UserId          string
	AppId           string

	ConsumerTag string
	MessageCount uint32
	DeliveryTag  uint64
	Redelivered  bool
	Exchange     string
	RoutingKey   string

	Body []byte
}

// Acknowledger is the subset of Channel used by a Delivery to ack/nack/reject
// itself, kept as an interface so tests can substitute a recorder.
type Acknowledger interface {
	Ack(tag uint64, multiple bool) error
	Nack(tag uint64, multiple bool, requeue bool) error
	Reject(tag uint64, requeue bool) error
}

func (d Delivery) Ack(multiple bool) error {
	if d.Acknowledger == nil {
		return ErrDeliveryNotInitialized
	}
	return d.Acknowledger.Ack(d.DeliveryTag, multiple)
}

func (d Delivery) Nack(multiple, requeue bool) error {
	if d.Acknowledger == nil {
		return ErrDeliveryNotInitialized
	}
	return d.Acknowledger.Nack(d.DeliveryTag, multiple, requeue)
}

func (d Delivery) Reject(requeue bool) error {
	if d.Acknowledger == nil {
		return ErrDeliveryNotInitialized
	}
	return d.Acknowledger.Reject(d.DeliveryTag, requeue)
}

// message is implemented by every generated method/content-header struct so
// the codec and dispatcher can move them as a common value.
type message interface {
	id() (uint16, uint16)
	read(*fieldReader) error
	write(*fieldWriter) error
}

// messageWithContent is a method that is always followed by a content
// header and zero-or-more body frames (basic.publish, basic.deliver, ...).
type messageWithContent interface {
	message
	getContent() (properties, []byte)
	setContent(properties, []byte)
}

// properties mirrors the wire content-header property flags/fields. It is
// embedded by Publishing/Delivery via conversion helpers in delivery.go.
type properties struct {
	ContentType     string
	ContentEncoding string
	Headers         Table
	DeliveryMode    uint8
	Priority        uint8
	CorrelationId   string
	ReplyTo         string
	Expiration      string
	MessageId       string
	Timestamp       time.Time
	Type            string
	UserId          string
	AppId           string
	reserved1       string
}
