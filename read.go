package amqp

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"time"
)

// Frame type octets (AMQP 0-9-1 §2.3.5).
const (
	frameMethod    = 1
	frameHeader    = 2
	frameBody      = 3
	frameHeartbeat = 8
	frameEnd       = 0xCE

	frameMinSize = 4096
)

// frame is implemented by methodFrame, headerFrame, bodyFrame and
// heartbeatFrame; it is the unit the reader/writer and dispatcher exchange.
type frame interface {
	channel() uint16
}

type methodFrame struct {
	ChannelId uint16
	ClassId   uint16
	MethodId  uint16
	Method    message
}

func (f *methodFrame) channel() uint16 { return f.ChannelId }

type headerFrame struct {
	ChannelId  uint16
	ClassId    uint16
	weight     uint16
	Size       uint64
	Properties properties
}

func (f *headerFrame) channel() uint16 { return f.ChannelId }

type bodyFrame struct {
	ChannelId uint16
	Body      []byte
}

func (f *bodyFrame) channel() uint16 { return f.ChannelId }

type heartbeatFrame struct {
	ChannelId uint16
}

func (f *heartbeatFrame) channel() uint16 { return f.ChannelId }

// reader decodes frames off of an io.Reader.
type reader struct {
	r        io.Reader
	maxFrame uint32 // 0 means unlimited
}

func newReader(r io.Reader) *reader {
	return &reader{r: bufio.NewReaderSize(r, frameMinSize)}
}

// ReadFrame reads exactly one frame: the 7-byte header (type, channel,
// size), the payload, then validates the 0xCE trailing byte.
func (r *reader) ReadFrame() (frame, error) {
	var scratch [7]byte

	if _, err := io.ReadFull(r.r, scratch[:]); err != nil {
		return nil, err
	}

	typ := scratch[0]
	channel := binary.BigEndian.Uint16(scratch[1:3])
	size := binary.BigEndian.Uint32(scratch[3:7])

	if r.maxFrame > 0 && size > r.maxFrame {
		return nil, &ProtocolViolationError{Reason: "frame size exceeds negotiated frame-max"}
	}

	payload := make([]byte, size+1)
	if _, err := io.ReadFull(r.r, payload); err != nil {
		return nil, err
	}

	if payload[size] != frameEnd {
		return nil, &ProtocolViolationError{Reason: "malformed frame: missing frame-end octet"}
	}
	payload = payload[:size]

	switch typ {
	case frameMethod:
		return r.parseMethodFrame(channel, payload)
	case frameHeader:
		return r.parseHeaderFrame(channel, payload)
	case frameBody:
		return &bodyFrame{ChannelId: channel, Body: payload}, nil
	case frameHeartbeat:
		return &heartbeatFrame{ChannelId: channel}, nil
	default:
		return nil, &ProtocolViolationError{Reason: "unknown frame type"}
	}
}

func (r *reader) parseMethodFrame(channel uint16, payload []byte) (frame, error) {
	if len(payload) < 4 {
		return nil, errors.New("short method frame")
	}
	classId := binary.BigEndian.Uint16(payload[0:2])
	methodId := binary.BigEndian.Uint16(payload[2:4])

	msg, err := newMethod(classId, methodId)
	if err != nil {
		return nil, err
	}

	br := &fieldReader{b: payload[4:]}
	if err := msg.read(br); err != nil {
		return nil, err
	}

	return &methodFrame{ChannelId: channel, ClassId: classId, MethodId: methodId, Method: msg}, nil
}

func (r *reader) parseHeaderFrame(channel uint16, payload []byte) (frame, error) {
	if len(payload) < 12 {
		return nil, errors.New("short header frame")
	}
	classId := binary.BigEndian.Uint16(payload[0:2])
	weight := binary.BigEndian.Uint16(payload[2:4])
	size := binary.BigEndian.Uint64(payload[4:12])

	br := &fieldReader{b: payload[12:]}
	props, err := readProperties(br)
	if err != nil {
		return nil, err
	}

	return &headerFrame{ChannelId: channel, ClassId: classId, weight: weight, Size: size, Properties: props}, nil
}

// fieldReader sequentially decodes positionally-packed method arguments and
// field-table values out of an in-memory byte slice.
type fieldReader struct {
	b    []byte
	off  int
	bits uint8
	nbit uint
}

func (r *fieldReader) resetBits() { r.nbit = 0 }

func (r *fieldReader) readBit() (bool, error) {
	if r.nbit == 0 {
		if r.off >= len(r.b) {
			return false, io.ErrUnexpectedEOF
		}
		r.bits = r.b[r.off]
		r.off++
	}
	bit := r.bits&(1<<r.nbit) != 0
	r.nbit = (r.nbit + 1) % 8
	return bit, nil
}

func (r *fieldReader) readOctet() (uint8, error) {
	r.resetBits()
	if r.off >= len(r.b) {
		return 0, io.ErrUnexpectedEOF
	}
	v := r.b[r.off]
	r.off++
	return v, nil
}

func (r *fieldReader) readShort() (uint16, error) {
	r.resetBits()
	if r.off+2 > len(r.b) {
		return 0, io.ErrUnexpectedEOF
	}
	v := binary.BigEndian.Uint16(r.b[r.off:])
	r.off += 2
	return v, nil
}

func (r *fieldReader) readLong() (uint32, error) {
	r.resetBits()
	if r.off+4 > len(r.b) {
		return 0, io.ErrUnexpectedEOF
	}
	v := binary.BigEndian.Uint32(r.b[r.off:])
	r.off += 4
	return v, nil
}

func (r *fieldReader) readLonglong() (uint64, error) {
	r.resetBits()
	if r.off+8 > len(r.b) {
		return 0, io.ErrUnexpectedEOF
	}
	v := binary.BigEndian.Uint64(r.b[r.off:])
	r.off += 8
	return v, nil
}

func (r *fieldReader) readShortstr() (string, error) {
	r.resetBits()
	n, err := r.readOctet()
	if err != nil {
		return "", err
	}
	if r.off+int(n) > len(r.b) {
		return "", io.ErrUnexpectedEOF
	}
	s := string(r.b[r.off : r.off+int(n)])
	r.off += int(n)
	return s, nil
}

func (r *fieldReader) readLongstr() (string, error) {
	r.resetBits()
	n, err := r.readLong()
	if err != nil {
		return "", err
	}
	if r.off+int(n) > len(r.b) {
		return "", io.ErrUnexpectedEOF
	}
	s := string(r.b[r.off : r.off+int(n)])
	r.off += int(n)
	return s, nil
}

func (r *fieldReader) readBytes() ([]byte, error) {
	s, err := r.readLongstr()
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

func (r *fieldReader) readTimestamp() (time.Time, error) {
	v, err := r.readLonglong()
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(int64(v), 0), nil
}

func (r *fieldReader) readDecimal() (Decimal, error) {
	scale, err := r.readOctet()
	if err != nil {
		return Decimal{}, err
	}
	value, err := r.readLong()
	if err != nil {
		return Decimal{}, err
	}
	return Decimal{Scale: scale, Value: int32(value)}, nil
}

// readTable decodes a field-table into a Table map; the wire order of the
// entries is not kept.
func (r *fieldReader) readTable() (Table, error) {
	size, err := r.readLong()
	if err != nil {
		return nil, err
	}
	end := r.off + int(size)
	if end > len(r.b) {
		return nil, io.ErrUnexpectedEOF
	}
	sub := &fieldReader{b: r.b[r.off:end]}
	r.off = end

	t := Table{}
	for sub.off < len(sub.b) {
		key, err := sub.readShortstr()
		if err != nil {
			return nil, err
		}
		val, err := sub.readFieldValue()
		if err != nil {
			return nil, err
		}
		t[key] = val
	}
	return t, nil
}

func (r *fieldReader) readArray() ([]interface{}, error) {
	size, err := r.readLong()
	if err != nil {
		return nil, err
	}
	end := r.off + int(size)
	if end > len(r.b) {
		return nil, io.ErrUnexpectedEOF
	}
	sub := &fieldReader{b: r.b[r.off:end]}
	r.off = end

	var arr []interface{}
	for sub.off < len(sub.b) {
		v, err := sub.readFieldValue()
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
	return arr, nil
}

// readFieldValue decodes one tagged field-table value. Unknown tag bytes
// are rejected as a protocol violation.
func (r *fieldReader) readFieldValue() (interface{}, error) {
	tag, err := r.readOctet()
	if err != nil {
		return nil, err
	}
	switch tag {
	case 't':
		v, err := r.readOctet()
		return v != 0, err
	case 'b':
		v, err := r.readOctet()
		return int8(v), err
	case 'B':
		return r.readOctet()
	case 'U':
		v, err := r.readShort()
		return int16(v), err
	case 'u':
		return r.readShort()
	case 'I':
		v, err := r.readLong()
		return int32(v), err
	case 'i':
		return r.readLong()
	case 'L':
		v, err := r.readLonglong()
		return int64(v), err
	case 'l':
		return r.readLonglong()
	case 'f':
		v, err := r.readLong()
		return math.Float32frombits(v), err
	case 'd':
		v, err := r.readLonglong()
		return math.Float64frombits(v), err
	case 'D':
		return r.readDecimal()
	case 's':
		return r.readShortstr()
	case 'S':
		return r.readLongstr()
	case 'A':
		return r.readArray()
	case 'T':
		return r.readTimestamp()
	case 'F':
		return r.readTable()
	case 'x':
		return r.readBytes()
	case 'V':
		return nil, nil
	default:
		return nil, ErrFieldType
	}
}

func readProperties(r *fieldReader) (properties, error) {
	var p properties
	flags, err := r.readShort()
	if err != nil {
		return p, err
	}
	if flags&(1<<15) != 0 {
		if p.ContentType, err = r.readShortstr(); err != nil {
			return p, err
		}
	}
	if flags&(1<<14) != 0 {
		if p.ContentEncoding, err = r.readShortstr(); err != nil {
			return p, err
		}
	}
	if flags&(1<<13) != 0 {
		if p.Headers, err = r.readTable(); err != nil {
			return p, err
		}
	}
	if flags&(1<<12) != 0 {
		v, err := r.readOctet()
		if err != nil {
			return p, err
		}
		p.DeliveryMode = v
	}
	if flags&(1<<11) != 0 {
		v, err := r.readOctet()
		if err != nil {
			return p, err
		}
		p.Priority = v
	}
	if flags&(1<<10) != 0 {
		if p.CorrelationId, err = r.readShortstr(); err != nil {
			return p, err
		}
	}
	if flags&(1<<9) != 0 {
		if p.ReplyTo, err = r.readShortstr(); err != nil {
			return p, err
		}
	}
	if flags&(1<<8) != 0 {
		if p.Expiration, err = r.readShortstr(); err != nil {
			return p, err
		}
	}
	if flags&(1<<7) != 0 {
		if p.MessageId, err = r.readShortstr(); err != nil {
			return p, err
		}
	}
	if flags&(1<<6) != 0 {
		if p.Timestamp, err = r.readTimestamp(); err != nil {
			return p, err
		}
	}
	if flags&(1<<5) != 0 {
		if p.Type, err = r.readShortstr(); err != nil {
			return p, err
		}
	}
	if flags&(1<<4) != 0 {
		if p.UserId, err = r.readShortstr(); err != nil {
			return p, err
		}
	}
	if flags&(1<<3) != 0 {
		if p.AppId, err = r.readShortstr(); err != nil {
			return p, err
		}
	}
	if flags&(1<<2) != 0 {
		if p.reserved1, err = r.readShortstr(); err != nil {
			return p, err
		}
	}
	return p, nil
}
