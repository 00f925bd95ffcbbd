package amqp

// This file holds the positionally-packed method argument structures for
// the subset of the AMQP 0-9-1 class/method space this runtime drives:
// connection, channel, exchange, queue, basic and confirm. Class and method
// ids are defined by the AMQP 0-9-1 specification and are not a choice this
// implementation makes.

const (
	classConnection = 10
	classChannel    = 20
	classExchange   = 40
	classQueue      = 50
	classBasic      = 60
	classConfirm    = 85
)

// newMethod constructs the zero-value argument struct for a (class, method)
// pair so the frame reader has somewhere to decode into. An unknown pair is
// a protocol violation.
func newMethod(classId, methodId uint16) (message, error) {
	switch classId {
	case classConnection:
		switch methodId {
		case 10:
			return &connectionStart{}, nil
		case 11:
			return &connectionStartOk{}, nil
		case 20:
			return &connectionSecure{}, nil
		case 21:
			return &connectionSecureOk{}, nil
		case 30:
			return &connectionTune{}, nil
		case 31:
			return &connectionTuneOk{}, nil
		case 40:
			return &connectionOpen{}, nil
		case 41:
			return &connectionOpenOk{}, nil
		case 50:
			return &connectionClose{}, nil
		case 51:
			return &connectionCloseOk{}, nil
		case 60:
			return &connectionBlocked{}, nil
		case 61:
			return &connectionUnblocked{}, nil
		}
	case classChannel:
		switch methodId {
		case 10:
			return &channelOpen{}, nil
		case 11:
			return &channelOpenOk{}, nil
		case 20:
			return &channelFlow{}, nil
		case 21:
			return &channelFlowOk{}, nil
		case 40:
			return &channelClose{}, nil
		case 41:
			return &channelCloseOk{}, nil
		}
	case classExchange:
		switch methodId {
		case 10:
			return &exchangeDeclare{}, nil
		case 11:
			return &exchangeDeclareOk{}, nil
		case 20:
			return &exchangeDelete{}, nil
		case 21:
			return &exchangeDeleteOk{}, nil
		case 30:
			return &exchangeBind{}, nil
		case 31:
			return &exchangeBindOk{}, nil
		case 40:
			return &exchangeUnbind{}, nil
		case 51:
			return &exchangeUnbindOk{}, nil
		}
	case classQueue:
		switch methodId {
		case 10:
			return &queueDeclare{}, nil
		case 11:
			return &queueDeclareOk{}, nil
		case 20:
			return &queueBind{}, nil
		case 21:
			return &queueBindOk{}, nil
		case 30:
			return &queuePurge{}, nil
		case 31:
			return &queuePurgeOk{}, nil
		case 40:
			return &queueDelete{}, nil
		case 41:
			return &queueDeleteOk{}, nil
		case 50:
			return &queueUnbind{}, nil
		case 51:
			return &queueUnbindOk{}, nil
		}
	case classBasic:
		switch methodId {
		case 10:
			return &basicQos{}, nil
		case 11:
			return &basicQosOk{}, nil
		case 20:
			return &basicConsume{}, nil
		case 21:
			return &basicConsumeOk{}, nil
		case 30:
			return &basicCancel{}, nil
		case 31:
			return &basicCancelOk{}, nil
		case 40:
			return &basicPublish{}, nil
		case 50:
			return &basicReturn{}, nil
		case 60:
			return &basicDeliver{}, nil
		case 70:
			return &basicGet{}, nil
		case 71:
			return &basicGetOk{}, nil
		case 72:
			return &basicGetEmpty{}, nil
		case 80:
			return &basicAck{}, nil
		case 90:
			return &basicReject{}, nil
		case 110:
			return &basicRecover{}, nil
		case 111:
			return &basicRecoverOk{}, nil
		case 120:
			return &basicNack{}, nil
		}
	case classConfirm:
		switch methodId {
		case 10:
			return &confirmSelect{}, nil
		case 11:
			return &confirmSelectOk{}, nil
		}
	}
	return nil, &ProtocolViolationError{Reason: "unknown class/method"}
}

// --- connection ---

type connectionStart struct {
	VersionMajor     uint8
	VersionMinor     uint8
	ServerProperties Table
	Mechanisms       string
	Locales          string
}

func (m *connectionStart) id() (uint16, uint16) { return classConnection, 10 }
func (m *connectionStart) read(r *fieldReader) (err error) {
	if m.VersionMajor, err = r.readOctet(); err != nil {
		return
	}
	if m.VersionMinor, err = r.readOctet(); err != nil {
		return
	}
	if m.ServerProperties, err = r.readTable(); err != nil {
		return
	}
	if m.Mechanisms, err = r.readLongstr(); err != nil {
		return
	}
	m.Locales, err = r.readLongstr()
	return
}
func (m *connectionStart) write(w *fieldWriter) error {
	w.writeOctet(m.VersionMajor)
	w.writeOctet(m.VersionMinor)
	if err := w.writeTable(m.ServerProperties); err != nil {
		return err
	}
	w.writeLongstr(m.Mechanisms)
	w.writeLongstr(m.Locales)
	return nil
}

type connectionStartOk struct {
	ClientProperties Table
	Mechanism        string
	Response         string
	Locale           string
}

func (m *connectionStartOk) id() (uint16, uint16) { return classConnection, 11 }
func (m *connectionStartOk) read(r *fieldReader) (err error) {
	if m.ClientProperties, err = r.readTable(); err != nil {
		return
	}
	if m.Mechanism, err = r.readShortstr(); err != nil {
		return
	}
	if m.Response, err = r.readLongstr(); err != nil {
		return
	}
	m.Locale, err = r.readShortstr()
	return
}
func (m *connectionStartOk) write(w *fieldWriter) error {
	if err := w.writeTable(m.ClientProperties); err != nil {
		return err
	}
	if err := w.writeShortstr(m.Mechanism); err != nil {
		return err
	}
	w.writeLongstr(m.Response)
	return w.writeShortstr(m.Locale)
}

type connectionSecure struct{ Challenge string }

func (m *connectionSecure) id() (uint16, uint16)        { return classConnection, 20 }
func (m *connectionSecure) read(r *fieldReader) (err error) { m.Challenge, err = r.readLongstr(); return }
func (m *connectionSecure) write(w *fieldWriter) error  { w.writeLongstr(m.Challenge); return nil }

type connectionSecureOk struct{ Response string }

func (m *connectionSecureOk) id() (uint16, uint16) { return classConnection, 21 }
func (m *connectionSecureOk) read(r *fieldReader) (err error) {
	m.Response, err = r.readLongstr()
	return
}
func (m *connectionSecureOk) write(w *fieldWriter) error { w.writeLongstr(m.Response); return nil }

type connectionTune struct {
	ChannelMax uint16
	FrameMax   uint32
	Heartbeat  uint16
}

func (m *connectionTune) id() (uint16, uint16) { return classConnection, 30 }
func (m *connectionTune) read(r *fieldReader) (err error) {
	if m.ChannelMax, err = r.readShort(); err != nil {
		return
	}
	if m.FrameMax, err = r.readLong(); err != nil {
		return
	}
	m.Heartbeat, err = r.readShort()
	return
}
func (m *connectionTune) write(w *fieldWriter) error {
	w.writeShort(m.ChannelMax)
	w.writeLong(m.FrameMax)
	w.writeShort(m.Heartbeat)
	return nil
}

type connectionTuneOk struct {
	ChannelMax uint16
	FrameMax   uint32
	Heartbeat  uint16
}

func (m *connectionTuneOk) id() (uint16, uint16) { return classConnection, 31 }
func (m *connectionTuneOk) read(r *fieldReader) (err error) {
	if m.ChannelMax, err = r.readShort(); err != nil {
		return
	}
	if m.FrameMax, err = r.readLong(); err != nil {
		return
	}
	m.Heartbeat, err = r.readShort()
	return
}
func (m *connectionTuneOk) write(w *fieldWriter) error {
	w.writeShort(m.ChannelMax)
	w.writeLong(m.FrameMax)
	w.writeShort(m.Heartbeat)
	return nil
}

type connectionOpen struct{ VirtualHost string }

func (m *connectionOpen) id() (uint16, uint16) { return classConnection, 40 }
func (m *connectionOpen) read(r *fieldReader) (err error) {
	if m.VirtualHost, err = r.readShortstr(); err != nil {
		return
	}
	if _, err = r.readShortstr(); err != nil { // reserved1 (capabilities)
		return
	}
	_, err = r.readBit() // reserved2 (insist)
	return
}
func (m *connectionOpen) write(w *fieldWriter) error {
	if err := w.writeShortstr(m.VirtualHost); err != nil {
		return err
	}
	if err := w.writeShortstr(""); err != nil {
		return err
	}
	w.writeBit(false)
	return nil
}

type connectionOpenOk struct{}

func (m *connectionOpenOk) id() (uint16, uint16) { return classConnection, 41 }
func (m *connectionOpenOk) read(r *fieldReader) (err error) { _, err = r.readShortstr(); return }
func (m *connectionOpenOk) write(w *fieldWriter) error      { return w.writeShortstr("") }

type connectionClose struct {
	ReplyCode uint16
	ReplyText string
	ClassId   uint16
	MethodId  uint16
}

func (m *connectionClose) id() (uint16, uint16) { return classConnection, 50 }
func (m *connectionClose) read(r *fieldReader) (err error) {
	if m.ReplyCode, err = r.readShort(); err != nil {
		return
	}
	if m.ReplyText, err = r.readShortstr(); err != nil {
		return
	}
	if m.ClassId, err = r.readShort(); err != nil {
		return
	}
	m.MethodId, err = r.readShort()
	return
}
func (m *connectionClose) write(w *fieldWriter) error {
	w.writeShort(m.ReplyCode)
	if err := w.writeShortstr(m.ReplyText); err != nil {
		return err
	}
	w.writeShort(m.ClassId)
	w.writeShort(m.MethodId)
	return nil
}

type connectionCloseOk struct{}

func (m *connectionCloseOk) id() (uint16, uint16)           { return classConnection, 51 }
func (m *connectionCloseOk) read(r *fieldReader) error      { return nil }
func (m *connectionCloseOk) write(w *fieldWriter) error     { return nil }

type connectionBlocked struct{ Reason string }

func (m *connectionBlocked) id() (uint16, uint16) { return classConnection, 60 }
func (m *connectionBlocked) read(r *fieldReader) (err error) { m.Reason, err = r.readShortstr(); return }
func (m *connectionBlocked) write(w *fieldWriter) error { return w.writeShortstr(m.Reason) }

type connectionUnblocked struct{}

func (m *connectionUnblocked) id() (uint16, uint16)       { return classConnection, 61 }
func (m *connectionUnblocked) read(r *fieldReader) error  { return nil }
func (m *connectionUnblocked) write(w *fieldWriter) error { return nil }

// --- channel ---

type channelOpen struct{}

func (m *channelOpen) id() (uint16, uint16) { return classChannel, 10 }
func (m *channelOpen) read(r *fieldReader) (err error) { _, err = r.readShortstr(); return }
func (m *channelOpen) write(w *fieldWriter) error      { return w.writeShortstr("") }

type channelOpenOk struct{}

func (m *channelOpenOk) id() (uint16, uint16) { return classChannel, 11 }
func (m *channelOpenOk) read(r *fieldReader) (err error) { _, err = r.readLongstr(); return }
func (m *channelOpenOk) write(w *fieldWriter) error      { w.writeLongstr(""); return nil }

type channelFlow struct{ Active bool }

func (m *channelFlow) id() (uint16, uint16) { return classChannel, 20 }
func (m *channelFlow) read(r *fieldReader) (err error) { m.Active, err = r.readBit(); return }
func (m *channelFlow) write(w *fieldWriter) error      { w.writeBit(m.Active); return nil }

type channelFlowOk struct{ Active bool }

func (m *channelFlowOk) id() (uint16, uint16) { return classChannel, 21 }
func (m *channelFlowOk) read(r *fieldReader) (err error) { m.Active, err = r.readBit(); return }
func (m *channelFlowOk) write(w *fieldWriter) error      { w.writeBit(m.Active); return nil }

type channelClose struct {
	ReplyCode uint16
	ReplyText string
	ClassId   uint16
	MethodId  uint16
}

func (m *channelClose) id() (uint16, uint16) { return classChannel, 40 }
func (m *channelClose) read(r *fieldReader) (err error) {
	if m.ReplyCode, err = r.readShort(); err != nil {
		return
	}
	if m.ReplyText, err = r.readShortstr(); err != nil {
		return
	}
	if m.ClassId, err = r.readShort(); err != nil {
		return
	}
	m.MethodId, err = r.readShort()
	return
}
func (m *channelClose) write(w *fieldWriter) error {
	w.writeShort(m.ReplyCode)
	if err := w.writeShortstr(m.ReplyText); err != nil {
		return err
	}
	w.writeShort(m.ClassId)
	w.writeShort(m.MethodId)
	return nil
}

type channelCloseOk struct{}

func (m *channelCloseOk) id() (uint16, uint16)       { return classChannel, 41 }
func (m *channelCloseOk) read(r *fieldReader) error  { return nil }
func (m *channelCloseOk) write(w *fieldWriter) error { return nil }

// --- exchange ---

type exchangeDeclare struct {
	Exchange   string
	Type       string
	Passive    bool
	Durable    bool
	AutoDelete bool
	Internal   bool
	NoWait     bool
	Arguments  Table
}

func (m *exchangeDeclare) id() (uint16, uint16) { return classExchange, 10 }
func (m *exchangeDeclare) read(r *fieldReader) (err error) {
	if _, err = r.readShort(); err != nil { // reserved1 (ticket)
		return
	}
	if m.Exchange, err = r.readShortstr(); err != nil {
		return
	}
	if m.Type, err = r.readShortstr(); err != nil {
		return
	}
	if m.Passive, err = r.readBit(); err != nil {
		return
	}
	if m.Durable, err = r.readBit(); err != nil {
		return
	}
	if m.AutoDelete, err = r.readBit(); err != nil {
		return
	}
	if m.Internal, err = r.readBit(); err != nil {
		return
	}
	if m.NoWait, err = r.readBit(); err != nil {
		return
	}
	m.Arguments, err = r.readTable()
	return
}
func (m *exchangeDeclare) write(w *fieldWriter) error {
	w.writeShort(0)
	if err := w.writeShortstr(m.Exchange); err != nil {
		return err
	}
	if err := w.writeShortstr(m.Type); err != nil {
		return err
	}
	w.writeBit(m.Passive)
	w.writeBit(m.Durable)
	w.writeBit(m.AutoDelete)
	w.writeBit(m.Internal)
	w.writeBit(m.NoWait)
	return w.writeTable(m.Arguments)
}

type exchangeDeclareOk struct{}

func (m *exchangeDeclareOk) id() (uint16, uint16)       { return classExchange, 11 }
func (m *exchangeDeclareOk) read(r *fieldReader) error  { return nil }
func (m *exchangeDeclareOk) write(w *fieldWriter) error { return nil }

type exchangeDelete struct {
	Exchange string
	IfUnused bool
	NoWait   bool
}

func (m *exchangeDelete) id() (uint16, uint16) { return classExchange, 20 }
func (m *exchangeDelete) read(r *fieldReader) (err error) {
	if _, err = r.readShort(); err != nil {
		return
	}
	if m.Exchange, err = r.readShortstr(); err != nil {
		return
	}
	if m.IfUnused, err = r.readBit(); err != nil {
		return
	}
	m.NoWait, err = r.readBit()
	return
}
func (m *exchangeDelete) write(w *fieldWriter) error {
	w.writeShort(0)
	if err := w.writeShortstr(m.Exchange); err != nil {
		return err
	}
	w.writeBit(m.IfUnused)
	w.writeBit(m.NoWait)
	return nil
}

type exchangeDeleteOk struct{}

func (m *exchangeDeleteOk) id() (uint16, uint16)       { return classExchange, 21 }
func (m *exchangeDeleteOk) read(r *fieldReader) error  { return nil }
func (m *exchangeDeleteOk) write(w *fieldWriter) error { return nil }

type exchangeBind struct {
	Destination string
	Source      string
	RoutingKey  string
	NoWait      bool
	Arguments   Table
}

func (m *exchangeBind) id() (uint16, uint16) { return classExchange, 30 }
func (m *exchangeBind) read(r *fieldReader) (err error) {
	if _, err = r.readShort(); err != nil {
		return
	}
	if m.Destination, err = r.readShortstr(); err != nil {
		return
	}
	if m.Source, err = r.readShortstr(); err != nil {
		return
	}
	if m.RoutingKey, err = r.readShortstr(); err != nil {
		return
	}
	if m.NoWait, err = r.readBit(); err != nil {
		return
	}
	m.Arguments, err = r.readTable()
	return
}
func (m *exchangeBind) write(w *fieldWriter) error {
	w.writeShort(0)
	if err := w.writeShortstr(m.Destination); err != nil {
		return err
	}
	if err := w.writeShortstr(m.Source); err != nil {
		return err
	}
	if err := w.writeShortstr(m.RoutingKey); err != nil {
		return err
	}
	w.writeBit(m.NoWait)
	return w.writeTable(m.Arguments)
}

type exchangeBindOk struct{}

func (m *exchangeBindOk) id() (uint16, uint16)       { return classExchange, 31 }
func (m *exchangeBindOk) read(r *fieldReader) error  { return nil }
func (m *exchangeBindOk) write(w *fieldWriter) error { return nil }

type exchangeUnbind struct {
	Destination string
	Source      string
	RoutingKey  string
	NoWait      bool
	Arguments   Table
}

func (m *exchangeUnbind) id() (uint16, uint16) { return classExchange, 40 }
func (m *exchangeUnbind) read(r *fieldReader) (err error) {
	if _, err = r.readShort(); err != nil {
		return
	}
	if m.Destination, err = r.readShortstr(); err != nil {
		return
	}
	if m.Source, err = r.readShortstr(); err != nil {
		return
	}
	if m.RoutingKey, err = r.readShortstr(); err != nil {
		return
	}
	if m.NoWait, err = r.readBit(); err != nil {
		return
	}
	m.Arguments, err = r.readTable()
	return
}
func (m *exchangeUnbind) write(w *fieldWriter) error {
	w.writeShort(0)
	if err := w.writeShortstr(m.Destination); err != nil {
		return err
	}
	if err := w.writeShortstr(m.Source); err != nil {
		return err
	}
	if err := w.writeShortstr(m.RoutingKey); err != nil {
		return err
	}
	w.writeBit(m.NoWait)
	return w.writeTable(m.Arguments)
}

type exchangeUnbindOk struct{}

func (m *exchangeUnbindOk) id() (uint16, uint16)       { return classExchange, 51 }
func (m *exchangeUnbindOk) read(r *fieldReader) error  { return nil }
func (m *exchangeUnbindOk) write(w *fieldWriter) error { return nil }

// --- queue ---

type queueDeclare struct {
	Queue      string
	Passive    bool
	Durable    bool
	Exclusive  bool
	AutoDelete bool
	NoWait     bool
	Arguments  Table
}

func (m *queueDeclare) id() (uint16, uint16) { return classQueue, 10 }
func (m *queueDeclare) read(r *fieldReader) (err error) {
	if _, err = r.readShort(); err != nil {
		return
	}
	if m.Queue, err = r.readShortstr(); err != nil {
		return
	}
	if m.Passive, err = r.readBit(); err != nil {
		return
	}
	if m.Durable, err = r.readBit(); err != nil {
		return
	}
	if m.Exclusive, err = r.readBit(); err != nil {
		return
	}
	if m.AutoDelete, err = r.readBit(); err != nil {
		return
	}
	if m.NoWait, err = r.readBit(); err != nil {
		return
	}
	m.Arguments, err = r.readTable()
	return
}
func (m *queueDeclare) write(w *fieldWriter) error {
	w.writeShort(0)
	if err := w.writeShortstr(m.Queue); err != nil {
		return err
	}
	w.writeBit(m.Passive)
	w.writeBit(m.Durable)
	w.writeBit(m.Exclusive)
	w.writeBit(m.AutoDelete)
	w.writeBit(m.NoWait)
	return w.writeTable(m.Arguments)
}

type queueDeclareOk struct {
	Queue         string
	MessageCount  uint32
	ConsumerCount uint32
}

func (m *queueDeclareOk) id() (uint16, uint16) { return classQueue, 11 }
func (m *queueDeclareOk) read(r *fieldReader) (err error) {
	if m.Queue, err = r.readShortstr(); err != nil {
		return
	}
	if m.MessageCount, err = r.readLong(); err != nil {
		return
	}
	m.ConsumerCount, err = r.readLong()
	return
}
func (m *queueDeclareOk) write(w *fieldWriter) error {
	if err := w.writeShortstr(m.Queue); err != nil {
		return err
	}
	w.writeLong(m.MessageCount)
	w.writeLong(m.ConsumerCount)
	return nil
}

type queueBind struct {
	Queue      string
	Exchange   string
	RoutingKey string
	NoWait     bool
	Arguments  Table
}

func (m *queueBind) id() (uint16, uint16) { return classQueue, 20 }
func (m *queueBind) read(r *fieldReader) (err error) {
	if _, err = r.readShort(); err != nil {
		return
	}
	if m.Queue, err = r.readShortstr(); err != nil {
		return
	}
	if m.Exchange, err = r.readShortstr(); err != nil {
		return
	}
	if m.RoutingKey, err = r.readShortstr(); err != nil {
		return
	}
	if m.NoWait, err = r.readBit(); err != nil {
		return
	}
	m.Arguments, err = r.readTable()
	return
}
func (m *queueBind) write(w *fieldWriter) error {
	w.writeShort(0)
	if err := w.writeShortstr(m.Queue); err != nil {
		return err
	}
	if err := w.writeShortstr(m.Exchange); err != nil {
		return err
	}
	if err := w.writeShortstr(m.RoutingKey); err != nil {
		return err
	}
	w.writeBit(m.NoWait)
	return w.writeTable(m.Arguments)
}

type queueBindOk struct{}

func (m *queueBindOk) id() (uint16, uint16)       { return classQueue, 21 }
func (m *queueBindOk) read(r *fieldReader) error  { return nil }
func (m *queueBindOk) write(w *fieldWriter) error { return nil }

type queuePurge struct {
	Queue  string
	NoWait bool
}

func (m *queuePurge) id() (uint16, uint16) { return classQueue, 30 }
func (m *queuePurge) read(r *fieldReader) (err error) {
	if _, err = r.readShort(); err != nil {
		return
	}
	if m.Queue, err = r.readShortstr(); err != nil {
		return
	}
	m.NoWait, err = r.readBit()
	return
}
func (m *queuePurge) write(w *fieldWriter) error {
	w.writeShort(0)
	if err := w.writeShortstr(m.Queue); err != nil {
		return err
	}
	w.writeBit(m.NoWait)
	return nil
}

type queuePurgeOk struct{ MessageCount uint32 }

func (m *queuePurgeOk) id() (uint16, uint16) { return classQueue, 31 }
func (m *queuePurgeOk) read(r *fieldReader) (err error) { m.MessageCount, err = r.readLong(); return }
func (m *queuePurgeOk) write(w *fieldWriter) error      { w.writeLong(m.MessageCount); return nil }

type queueDelete struct {
	Queue    string
	IfUnused bool
	IfEmpty  bool
	NoWait   bool
}

func (m *queueDelete) id() (uint16, uint16) { return classQueue, 40 }
func (m *queueDelete) read(r *fieldReader) (err error) {
	if _, err = r.readShort(); err != nil {
		return
	}
	if m.Queue, err = r.readShortstr(); err != nil {
		return
	}
	if m.IfUnused, err = r.readBit(); err != nil {
		return
	}
	if m.IfEmpty, err = r.readBit(); err != nil {
		return
	}
	m.NoWait, err = r.readBit()
	return
}
func (m *queueDelete) write(w *fieldWriter) error {
	w.writeShort(0)
	if err := w.writeShortstr(m.Queue); err != nil {
		return err
	}
	w.writeBit(m.IfUnused)
	w.writeBit(m.IfEmpty)
	w.writeBit(m.NoWait)
	return nil
}

type queueDeleteOk struct{ MessageCount uint32 }

func (m *queueDeleteOk) id() (uint16, uint16) { return classQueue, 41 }
func (m *queueDeleteOk) read(r *fieldReader) (err error) { m.MessageCount, err = r.readLong(); return }
func (m *queueDeleteOk) write(w *fieldWriter) error      { w.writeLong(m.MessageCount); return nil }

type queueUnbind struct {
	Queue      string
	Exchange   string
	RoutingKey string
	Arguments  Table
}

func (m *queueUnbind) id() (uint16, uint16) { return classQueue, 50 }
func (m *queueUnbind) read(r *fieldReader) (err error) {
	if _, err = r.readShort(); err != nil {
		return
	}
	if m.Queue, err = r.readShortstr(); err != nil {
		return
	}
	if m.Exchange, err = r.readShortstr(); err != nil {
		return
	}
	if m.RoutingKey, err = r.readShortstr(); err != nil {
		return
	}
	m.Arguments, err = r.readTable()
	return
}
func (m *queueUnbind) write(w *fieldWriter) error {
	w.writeShort(0)
	if err := w.writeShortstr(m.Queue); err != nil {
		return err
	}
	if err := w.writeShortstr(m.Exchange); err != nil {
		return err
	}
	if err := w.writeShortstr(m.RoutingKey); err != nil {
		return err
	}
	return w.writeTable(m.Arguments)
}

type queueUnbindOk struct{}

func (m *queueUnbindOk) id() (uint16, uint16)       { return classQueue, 51 }
func (m *queueUnbindOk) read(r *fieldReader) error  { return nil }
func (m *queueUnbindOk) write(w *fieldWriter) error { return nil }

// --- basic ---

type basicQos struct {
	PrefetchSize  uint32
	PrefetchCount uint16
	Global        bool
}

func (m *basicQos) id() (uint16, uint16) { return classBasic, 10 }
func (m *basicQos) read(r *fieldReader) (err error) {
	if m.PrefetchSize, err = r.readLong(); err != nil {
		return
	}
	if m.PrefetchCount, err = r.readShort(); err != nil {
		return
	}
	m.Global, err = r.readBit()
	return
}
func (m *basicQos) write(w *fieldWriter) error {
	w.writeLong(m.PrefetchSize)
	w.writeShort(m.PrefetchCount)
	w.writeBit(m.Global)
	return nil
}

type basicQosOk struct{}

func (m *basicQosOk) id() (uint16, uint16)       { return classBasic, 11 }
func (m *basicQosOk) read(r *fieldReader) error  { return nil }
func (m *basicQosOk) write(w *fieldWriter) error { return nil }

type basicConsume struct {
	Queue       string
	ConsumerTag string
	NoLocal     bool
	NoAck       bool
	Exclusive   bool
	NoWait      bool
	Arguments   Table
}

func (m *basicConsume) id() (uint16, uint16) { return classBasic, 20 }
func (m *basicConsume) read(r *fieldReader) (err error) {
	if _, err = r.readShort(); err != nil {
		return
	}
	if m.Queue, err = r.readShortstr(); err != nil {
		return
	}
	if m.ConsumerTag, err = r.readShortstr(); err != nil {
		return
	}
	if m.NoLocal, err = r.readBit(); err != nil {
		return
	}
	if m.NoAck, err = r.readBit(); err != nil {
		return
	}
	if m.Exclusive, err = r.readBit(); err != nil {
		return
	}
	if m.NoWait, err = r.readBit(); err != nil {
		return
	}
	m.Arguments, err = r.readTable()
	return
}
func (m *basicConsume) write(w *fieldWriter) error {
	w.writeShort(0)
	if err := w.writeShortstr(m.Queue); err != nil {
		return err
	}
	if err := w.writeShortstr(m.ConsumerTag); err != nil {
		return err
	}
	w.writeBit(m.NoLocal)
	w.writeBit(m.NoAck)
	w.writeBit(m.Exclusive)
	w.writeBit(m.NoWait)
	return w.writeTable(m.Arguments)
}

type basicConsumeOk struct{ ConsumerTag string }

func (m *basicConsumeOk) id() (uint16, uint16) { return classBasic, 21 }
func (m *basicConsumeOk) read(r *fieldReader) (err error) {
	m.ConsumerTag, err = r.readShortstr()
	return
}
func (m *basicConsumeOk) write(w *fieldWriter) error { return w.writeShortstr(m.ConsumerTag) }

type basicCancel struct {
	ConsumerTag string
	NoWait      bool
}

func (m *basicCancel) id() (uint16, uint16) { return classBasic, 30 }
func (m *basicCancel) read(r *fieldReader) (err error) {
	if m.ConsumerTag, err = r.readShortstr(); err != nil {
		return
	}
	m.NoWait, err = r.readBit()
	return
}
func (m *basicCancel) write(w *fieldWriter) error {
	if err := w.writeShortstr(m.ConsumerTag); err != nil {
		return err
	}
	w.writeBit(m.NoWait)
	return nil
}

type basicCancelOk struct{ ConsumerTag string }

func (m *basicCancelOk) id() (uint16, uint16) { return classBasic, 31 }
func (m *basicCancelOk) read(r *fieldReader) (err error) {
	m.ConsumerTag, err = r.readShortstr()
	return
}
func (m *basicCancelOk) write(w *fieldWriter) error { return w.writeShortstr(m.ConsumerTag) }

type basicPublish struct {
	Exchange   string
	RoutingKey string
	Mandatory  bool
	Immediate  bool
	props      properties
	body       []byte
}

func (m *basicPublish) id() (uint16, uint16) { return classBasic, 40 }
func (m *basicPublish) read(r *fieldReader) (err error) {
	if _, err = r.readShort(); err != nil {
		return
	}
	if m.Exchange, err = r.readShortstr(); err != nil {
		return
	}
	if m.RoutingKey, err = r.readShortstr(); err != nil {
		return
	}
	if m.Mandatory, err = r.readBit(); err != nil {
		return
	}
	m.Immediate, err = r.readBit()
	return
}
func (m *basicPublish) write(w *fieldWriter) error {
	w.writeShort(0)
	if err := w.writeShortstr(m.Exchange); err != nil {
		return err
	}
	if err := w.writeShortstr(m.RoutingKey); err != nil {
		return err
	}
	w.writeBit(m.Mandatory)
	w.writeBit(m.Immediate)
	return nil
}
func (m *basicPublish) getContent() (properties, []byte) { return m.props, m.body }
func (m *basicPublish) setContent(p properties, b []byte) { m.props = p; m.body = b }

type basicReturn struct {
	ReplyCode  uint16
	ReplyText  string
	Exchange   string
	RoutingKey string
	props      properties
	body       []byte
}

func (m *basicReturn) id() (uint16, uint16) { return classBasic, 50 }
func (m *basicReturn) read(r *fieldReader) (err error) {
	if m.ReplyCode, err = r.readShort(); err != nil {
		return
	}
	if m.ReplyText, err = r.readShortstr(); err != nil {
		return
	}
	if m.Exchange, err = r.readShortstr(); err != nil {
		return
	}
	m.RoutingKey, err = r.readShortstr()
	return
}
func (m *basicReturn) write(w *fieldWriter) error {
	w.writeShort(m.ReplyCode)
	if err := w.writeShortstr(m.ReplyText); err != nil {
		return err
	}
	if err := w.writeShortstr(m.Exchange); err != nil {
		return err
	}
	return w.writeShortstr(m.RoutingKey)
}
func (m *basicReturn) getContent() (properties, []byte)  { return m.props, m.body }
func (m *basicReturn) setContent(p properties, b []byte) { m.props = p; m.body = b }

type basicDeliver struct {
	ConsumerTag string
	DeliveryTag uint64
	Redelivered bool
	Exchange    string
	RoutingKey  string
	props       properties
	body        []byte
}

func (m *basicDeliver) id() (uint16, uint16) { return classBasic, 60 }
func (m *basicDeliver) read(r *fieldReader) (err error) {
	if m.ConsumerTag, err = r.readShortstr(); err != nil {
		return
	}
	if m.DeliveryTag, err = r.readLonglong(); err != nil {
		return
	}
	if m.Redelivered, err = r.readBit(); err != nil {
		return
	}
	if m.Exchange, err = r.readShortstr(); err != nil {
		return
	}
	m.RoutingKey, err = r.readShortstr()
	return
}
func (m *basicDeliver) write(w *fieldWriter) error {
	if err := w.writeShortstr(m.ConsumerTag); err != nil {
		return err
	}
	w.writeLonglong(m.DeliveryTag)
	w.writeBit(m.Redelivered)
	if err := w.writeShortstr(m.Exchange); err != nil {
		return err
	}
	return w.writeShortstr(m.RoutingKey)
}
func (m *basicDeliver) getContent() (properties, []byte)  { return m.props, m.body }
func (m *basicDeliver) setContent(p properties, b []byte) { m.props = p; m.body = b }

type basicGet struct {
	Queue  string
	NoAck  bool
}

func (m *basicGet) id() (uint16, uint16) { return classBasic, 70 }
func (m *basicGet) read(r *fieldReader) (err error) {
	if _, err = r.readShort(); err != nil {
		return
	}
	if m.Queue, err = r.readShortstr(); err != nil {
		return
	}
	m.NoAck, err = r.readBit()
	return
}
func (m *basicGet) write(w *fieldWriter) error {
	w.writeShort(0)
	if err := w.writeShortstr(m.Queue); err != nil {
		return err
	}
	w.writeBit(m.NoAck)
	return nil
}

type basicGetOk struct {
	DeliveryTag  uint64
	Redelivered  bool
	Exchange     string
	RoutingKey   string
	MessageCount uint32
	props        properties
	body         []byte
}

func (m *basicGetOk) id() (uint16, uint16) { return classBasic, 71 }
func (m *basicGetOk) read(r *fieldReader) (err error) {
	if m.DeliveryTag, err = r.readLonglong(); err != nil {
		return
	}
	if m.Redelivered, err = r.readBit(); err != nil {
		return
	}
	if m.Exchange, err = r.readShortstr(); err != nil {
		return
	}
	if m.RoutingKey, err = r.readShortstr(); err != nil {
		return
	}
	m.MessageCount, err = r.readLong()
	return
}
func (m *basicGetOk) write(w *fieldWriter) error {
	w.writeLonglong(m.DeliveryTag)
	w.writeBit(m.Redelivered)
	if err := w.writeShortstr(m.Exchange); err != nil {
		return err
	}
	if err := w.writeShortstr(m.RoutingKey); err != nil {
		return err
	}
	w.writeLong(m.MessageCount)
	return nil
}
func (m *basicGetOk) getContent() (properties, []byte)  { return m.props, m.body }
func (m *basicGetOk) setContent(p properties, b []byte) { m.props = p; m.body = b }

type basicGetEmpty struct{}

func (m *basicGetEmpty) id() (uint16, uint16) { return classBasic, 72 }
func (m *basicGetEmpty) read(r *fieldReader) (err error) { _, err = r.readShortstr(); return }
func (m *basicGetEmpty) write(w *fieldWriter) error      { return w.writeShortstr("") }

type basicAck struct {
	DeliveryTag uint64
	Multiple    bool
}

func (m *basicAck) id() (uint16, uint16) { return classBasic, 80 }
func (m *basicAck) read(r *fieldReader) (err error) {
	if m.DeliveryTag, err = r.readLonglong(); err != nil {
		return
	}
	m.Multiple, err = r.readBit()
	return
}
func (m *basicAck) write(w *fieldWriter) error {
	w.writeLonglong(m.DeliveryTag)
	w.writeBit(m.Multiple)
	return nil
}

type basicReject struct {
	DeliveryTag uint64
	Requeue     bool
}

func (m *basicReject) id() (uint16, uint16) { return classBasic, 90 }
func (m *basicReject) read(r *fieldReader) (err error) {
	if m.DeliveryTag, err = r.readLonglong(); err != nil {
		return
	}
	m.Requeue, err = r.readBit()
	return
}
func (m *basicReject) write(w *fieldWriter) error {
	w.writeLonglong(m.DeliveryTag)
	w.writeBit(m.Requeue)
	return nil
}

type basicRecover struct{ Requeue bool }

func (m *basicRecover) id() (uint16, uint16) { return classBasic, 110 }
func (m *basicRecover) read(r *fieldReader) (err error) { m.Requeue, err = r.readBit(); return }
func (m *basicRecover) write(w *fieldWriter) error      { w.writeBit(m.Requeue); return nil }

type basicRecoverOk struct{}

func (m *basicRecoverOk) id() (uint16, uint16)       { return classBasic, 111 }
func (m *basicRecoverOk) read(r *fieldReader) error  { return nil }
func (m *basicRecoverOk) write(w *fieldWriter) error { return nil }

type basicNack struct {
	DeliveryTag uint64
	Multiple    bool
	Requeue     bool
}

func (m *basicNack) id() (uint16, uint16) { return classBasic, 120 }
func (m *basicNack) read(r *fieldReader) (err error) {
	if m.DeliveryTag, err = r.readLonglong(); err != nil {
		return
	}
	if m.Multiple, err = r.readBit(); err != nil {
		return
	}
	m.Requeue, err = r.readBit()
	return
}
func (m *basicNack) write(w *fieldWriter) error {
	w.writeLonglong(m.DeliveryTag)
	w.writeBit(m.Multiple)
	w.writeBit(m.Requeue)
	return nil
}

// --- confirm ---

type confirmSelect struct{ NoWait bool }

func (m *confirmSelect) id() (uint16, uint16) { return classConfirm, 10 }
func (m *confirmSelect) read(r *fieldReader) (err error) { m.NoWait, err = r.readBit(); return }
func (m *confirmSelect) write(w *fieldWriter) error      { w.writeBit(m.NoWait); return nil }

type confirmSelectOk struct{}

func (m *confirmSelectOk) id() (uint16, uint16)       { return classConfirm, 11 }
func (m *confirmSelectOk) read(r *fieldReader) error  { return nil }
func (m *confirmSelectOk) write(w *fieldWriter) error { return nil }
