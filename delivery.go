package amqp

// publishingToProperties converts the caller-facing Publishing into the
// wire content-header properties carried alongside a basic.publish.
func publishingToProperties(p Publishing) properties {
	return properties{
		ContentType:     p.ContentType,
		ContentEncoding: p.ContentEncoding,
		Headers:         p.Headers,
		DeliveryMode:    p.DeliveryMode,
		Priority:        p.Priority,
		CorrelationId:   p.CorrelationId,
		ReplyTo:         p.ReplyTo,
		Expiration:      p.Expiration,
		MessageId:       p.MessageId,
		Timestamp:       p.Timestamp,
		Type:            p.Type,
		UserId:          p.UserId,
		AppId:           p.AppId,
	}
}

// deliveryFromDeliver assembles a Delivery out of a completed basic.deliver
// plus its content header/body, bound to ack/nack/reject against ch.
func deliveryFromDeliver(ch *Channel, m *basicDeliver, props properties, body []byte) Delivery {
	return Delivery{
		Acknowledger:    ch,
		Headers:         props.Headers,
		ContentType:     props.ContentType,
		ContentEncoding: props.ContentEncoding,
		DeliveryMode:    props.DeliveryMode,
		Priority:        props.Priority,
		CorrelationId:   props.CorrelationId,
		ReplyTo:         props.ReplyTo,
		Expiration:      props.Expiration,
		MessageId:       props.MessageId,
		Timestamp:       props.Timestamp,
		Type:            props.Type,
		UserId:          props.UserId,
		AppId:           props.AppId,
		ConsumerTag:     m.ConsumerTag,
		DeliveryTag:     m.DeliveryTag,
		Redelivered:     m.Redelivered,
		Exchange:        m.Exchange,
		RoutingKey:      m.RoutingKey,
		Body:            body,
	}
}

// deliveryFromGetOk is the basic.get-ok counterpart of deliveryFromDeliver;
// basic.get carries no consumer tag and instead reports a remaining count.
func deliveryFromGetOk(ch *Channel, m *basicGetOk, props properties, body []byte) Delivery {
	return Delivery{
		Acknowledger:    ch,
		Headers:         props.Headers,
		ContentType:     props.ContentType,
		ContentEncoding: props.ContentEncoding,
		DeliveryMode:    props.DeliveryMode,
		Priority:        props.Priority,
		CorrelationId:   props.CorrelationId,
		ReplyTo:         props.ReplyTo,
		Expiration:      props.Expiration,
		MessageId:       props.MessageId,
		Timestamp:       props.Timestamp,
		Type:            props.Type,
		UserId:          props.UserId,
		AppId:           props.AppId,
		DeliveryTag:     m.DeliveryTag,
		Redelivered:     m.Redelivered,
		Exchange:        m.Exchange,
		RoutingKey:      m.RoutingKey,
		MessageCount:    m.MessageCount,
		Body:            body,
	}
}

// Return is delivered to NotifyReturn when a mandatory/immediate publish is
// bounced back by the broker.
type Return struct {
	ReplyCode  uint16
	ReplyText  string
	Exchange   string
	RoutingKey string

	Headers         Table
	ContentType     string
	ContentEncoding string
	DeliveryMode    uint8
	Priority        uint8
	CorrelationId   string
	ReplyTo         string
	Expiration      string
	MessageId       string
	Type            string
	UserId          string
	AppId           string

	Body []byte
}

func returnFromBasicReturn(m *basicReturn, props properties, body []byte) Return {
	return Return{
		ReplyCode:       m.ReplyCode,
		ReplyText:       m.ReplyText,
		Exchange:        m.Exchange,
		RoutingKey:      m.RoutingKey,
		Headers:         props.Headers,
		ContentType:     props.ContentType,
		ContentEncoding: props.ContentEncoding,
		DeliveryMode:    props.DeliveryMode,
		Priority:        props.Priority,
		CorrelationId:   props.CorrelationId,
		ReplyTo:         props.ReplyTo,
		Expiration:      props.Expiration,
		MessageId:       props.MessageId,
		Type:            props.Type,
		UserId:          props.UserId,
		AppId:           props.AppId,
		Body:            body,
	}
}
