package amqp

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"time"
)

// frameHeaderSize is the 7-byte {type, channel, size} prefix; the trailing
// frame-end octet is counted separately by frameEndSize.
const frameHeaderSize = 7
const frameEndSize = 1

// writer serializes frames onto the sole connection writer. Every Channel
// and the heartbeat task submit through this type, so no two goroutines
// ever interleave bytes on the wire.
type writer struct {
	w *bufio.Writer
}

func newWriter(w io.Writer) *writer {
	return &writer{w: bufio.NewWriter(w)}
}

// WriteFrame encodes one frame and flushes it immediately so that partial
// frames are never interleaved on the wire.
func (w *writer) WriteFrame(f frame) (err error) {
	switch v := f.(type) {
	case *methodFrame:
		err = w.writeMethod(v)
	case *headerFrame:
		err = w.writeHeader(v)
	case *bodyFrame:
		err = w.writeBody(v)
	case *heartbeatFrame:
		err = w.writeHeartbeat(v)
	case *rawProtocolHeaderFrame:
		err = w.writeRawProtocolHeader()
	default:
		return &ProtocolViolationError{Reason: "unknown frame type to encode"}
	}
	if err != nil {
		return err
	}
	return w.w.Flush()
}

// WriteFrames encodes a whole batch into the buffered writer and flushes
// once at the end (the buffer may also flush earlier when it fills). A
// content message's header+body frames are never split by a frame from
// another channel because frameHandler hands every batch to one writer
// goroutine.
func (w *writer) WriteFrames(batch []frame) error {
	for _, f := range batch {
		var err error
		switch v := f.(type) {
		case *methodFrame:
			err = w.writeMethod(v)
		case *headerFrame:
			err = w.writeHeader(v)
		case *bodyFrame:
			err = w.writeBody(v)
		case *heartbeatFrame:
			err = w.writeHeartbeat(v)
		case *rawProtocolHeaderFrame:
			err = w.writeRawProtocolHeader()
		default:
			err = &ProtocolViolationError{Reason: "unknown frame type to encode"}
		}
		if err != nil {
			return err
		}
	}
	return w.w.Flush()
}

func (w *writer) writeFrameHeader(typ byte, channel uint16, payload []byte) error {
	var hdr [frameHeaderSize]byte
	hdr[0] = typ
	binary.BigEndian.PutUint16(hdr[1:3], channel)
	binary.BigEndian.PutUint32(hdr[3:7], uint32(len(payload)))
	if _, err := w.w.Write(hdr[:]); err != nil {
		return err
	}
	if _, err := w.w.Write(payload); err != nil {
		return err
	}
	_, err := w.w.Write([]byte{frameEnd})
	return err
}

func (w *writer) writeMethod(f *methodFrame) error {
	var buf bytes.Buffer
	classId, methodId := f.Method.id()
	var hdr [4]byte
	binary.BigEndian.PutUint16(hdr[0:2], classId)
	binary.BigEndian.PutUint16(hdr[2:4], methodId)
	buf.Write(hdr[:])
	fw := newFieldWriter(&buf)
	if err := f.Method.write(fw); err != nil {
		return err
	}
	fw.resetBits()
	return w.writeFrameHeader(frameMethod, f.ChannelId, buf.Bytes())
}

func (w *writer) writeHeader(f *headerFrame) error {
	var buf bytes.Buffer
	var hdr [12]byte
	binary.BigEndian.PutUint16(hdr[0:2], f.ClassId)
	binary.BigEndian.PutUint16(hdr[2:4], 0)
	binary.BigEndian.PutUint64(hdr[4:12], f.Size)
	buf.Write(hdr[:])
	if err := writeProperties(&buf, f.Properties); err != nil {
		return err
	}
	return w.writeFrameHeader(frameHeader, f.ChannelId, buf.Bytes())
}

func (w *writer) writeBody(f *bodyFrame) error {
	return w.writeFrameHeader(frameBody, f.ChannelId, f.Body)
}

func (w *writer) writeHeartbeat(f *heartbeatFrame) error {
	return w.writeFrameHeader(frameHeartbeat, f.ChannelId, nil)
}

// writeRawProtocolHeader emits the literal 8-byte AMQP preamble. It precedes any framing and carries neither a frame header
// nor a frame-end octet, so it bypasses writeFrameHeader entirely.
func (w *writer) writeRawProtocolHeader() error {
	_, err := w.w.Write([]byte("AMQP\x00\x00\x09\x01"))
	return err
}

// fieldWriter mirrors fieldReader for encoding: positional method arguments
// packing consecutive booleans into shared bit bytes.
type fieldWriter struct {
	buf       *bytes.Buffer
	bitActive bool
	bitByte   byte
	bitPos    uint
}

func newFieldWriter(buf *bytes.Buffer) *fieldWriter {
	return &fieldWriter{buf: buf}
}

// resetBits flushes any pending bit byte. Every non-bool field writer calls
// this first, since AMQP packs only consecutive booleans into shared bytes.
func (w *fieldWriter) resetBits() {
	if w.bitActive {
		w.buf.WriteByte(w.bitByte)
		w.bitActive = false
		w.bitByte = 0
		w.bitPos = 0
	}
}

func (w *fieldWriter) writeBit(v bool) {
	w.bitActive = true
	if v {
		w.bitByte |= 1 << w.bitPos
	}
	w.bitPos++
	if w.bitPos == 8 {
		w.resetBits()
	}
}

func (w *fieldWriter) writeOctet(v uint8) {
	w.resetBits()
	w.buf.WriteByte(v)
}

func (w *fieldWriter) writeShort(v uint16) {
	w.resetBits()
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	w.buf.Write(b[:])
}

func (w *fieldWriter) writeLong(v uint32) {
	w.resetBits()
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

func (w *fieldWriter) writeLonglong(v uint64) {
	w.resetBits()
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	w.buf.Write(b[:])
}

func (w *fieldWriter) writeShortstr(s string) error {
	w.resetBits()
	if len(s) > 255 {
		return &ProtocolViolationError{Reason: "short string exceeds 255 bytes"}
	}
	w.buf.WriteByte(uint8(len(s)))
	w.buf.WriteString(s)
	return nil
}

func (w *fieldWriter) writeLongstr(s string) {
	w.resetBits()
	w.writeLong(uint32(len(s)))
	w.buf.WriteString(s)
}

func (w *fieldWriter) writeBytes(b []byte) {
	w.resetBits()
	w.writeLong(uint32(len(b)))
	w.buf.Write(b)
}

func (w *fieldWriter) writeTimestamp(t time.Time) {
	w.writeLonglong(uint64(t.Unix()))
}

func (w *fieldWriter) writeDecimal(d Decimal) {
	w.writeOctet(d.Scale)
	w.writeLong(uint32(d.Value))
}

func (w *fieldWriter) writeTable(t Table) error {
	w.resetBits()
	var sub bytes.Buffer
	sw := newFieldWriter(&sub)
	for k, v := range t {
		if err := sw.writeShortstr(k); err != nil {
			return err
		}
		if err := sw.writeFieldValue(v); err != nil {
			return err
		}
	}
	w.writeLong(uint32(sub.Len()))
	w.buf.Write(sub.Bytes())
	return nil
}

func (w *fieldWriter) writeArray(a []interface{}) error {
	w.resetBits()
	var sub bytes.Buffer
	sw := newFieldWriter(&sub)
	for _, v := range a {
		if err := sw.writeFieldValue(v); err != nil {
			return err
		}
	}
	w.writeLong(uint32(sub.Len()))
	w.buf.Write(sub.Bytes())
	return nil
}

// writeFieldValue encodes one tagged field-table value. Panics are never
// raised for unsupported Go types; an error is returned instead so a bad
// caller-supplied Table cannot crash the writer goroutine.
func (w *fieldWriter) writeFieldValue(v interface{}) error {
	switch val := v.(type) {
	case nil:
		w.buf.WriteByte('V')
	case bool:
		w.buf.WriteByte('t')
		if val {
			w.writeOctet(1)
		} else {
			w.writeOctet(0)
		}
	case int8:
		w.buf.WriteByte('b')
		w.writeOctet(uint8(val))
	case uint8:
		w.buf.WriteByte('B')
		w.writeOctet(val)
	case int16:
		w.buf.WriteByte('U')
		w.writeShort(uint16(val))
	case uint16:
		w.buf.WriteByte('u')
		w.writeShort(val)
	case int32:
		w.buf.WriteByte('I')
		w.writeLong(uint32(val))
	case uint32:
		w.buf.WriteByte('i')
		w.writeLong(val)
	case int64:
		w.buf.WriteByte('L')
		w.writeLonglong(uint64(val))
	case uint64:
		w.buf.WriteByte('l')
		w.writeLonglong(val)
	case int:
		w.buf.WriteByte('L')
		w.writeLonglong(uint64(val))
	case float32:
		w.buf.WriteByte('f')
		w.writeLong(math.Float32bits(val))
	case float64:
		w.buf.WriteByte('d')
		w.writeLonglong(math.Float64bits(val))
	case Decimal:
		w.buf.WriteByte('D')
		w.writeDecimal(val)
	case string:
		if len(val) <= 255 {
			w.buf.WriteByte('s')
			return w.writeShortstr(val)
		}
		w.buf.WriteByte('S')
		w.writeLongstr(val)
	case []byte:
		w.buf.WriteByte('x')
		w.writeBytes(val)
	case time.Time:
		w.buf.WriteByte('T')
		w.writeTimestamp(val)
	case Table:
		w.buf.WriteByte('F')
		return w.writeTable(val)
	case []interface{}:
		w.buf.WriteByte('A')
		return w.writeArray(val)
	default:
		return &ProtocolViolationError{Reason: "unsupported field-table value type"}
	}
	return nil
}

func writeProperties(buf *bytes.Buffer, p properties) error {
	var flags uint16
	if p.ContentType != "" {
		flags |= 1 << 15
	}
	if p.ContentEncoding != "" {
		flags |= 1 << 14
	}
	if len(p.Headers) > 0 {
		flags |= 1 << 13
	}
	if p.DeliveryMode != 0 {
		flags |= 1 << 12
	}
	if p.Priority != 0 {
		flags |= 1 << 11
	}
	if p.CorrelationId != "" {
		flags |= 1 << 10
	}
	if p.ReplyTo != "" {
		flags |= 1 << 9
	}
	if p.Expiration != "" {
		flags |= 1 << 8
	}
	if p.MessageId != "" {
		flags |= 1 << 7
	}
	if !p.Timestamp.IsZero() {
		flags |= 1 << 6
	}
	if p.Type != "" {
		flags |= 1 << 5
	}
	if p.UserId != "" {
		flags |= 1 << 4
	}
	if p.AppId != "" {
		flags |= 1 << 3
	}

	var fb [2]byte
	binary.BigEndian.PutUint16(fb[:], flags)
	buf.Write(fb[:])

	fw := newFieldWriter(buf)
	var err error
	writeIf := func(cond bool, f func() error) {
		if err != nil || !cond {
			return
		}
		err = f()
	}
	writeIf(p.ContentType != "", func() error { return fw.writeShortstr(p.ContentType) })
	writeIf(p.ContentEncoding != "", func() error { return fw.writeShortstr(p.ContentEncoding) })
	writeIf(len(p.Headers) > 0, func() error { return fw.writeTable(p.Headers) })
	writeIf(p.DeliveryMode != 0, func() error { fw.writeOctet(p.DeliveryMode); return nil })
	writeIf(p.Priority != 0, func() error { fw.writeOctet(p.Priority); return nil })
	writeIf(p.CorrelationId != "", func() error { return fw.writeShortstr(p.CorrelationId) })
	writeIf(p.ReplyTo != "", func() error { return fw.writeShortstr(p.ReplyTo) })
	writeIf(p.Expiration != "", func() error { return fw.writeShortstr(p.Expiration) })
	writeIf(p.MessageId != "", func() error { return fw.writeShortstr(p.MessageId) })
	writeIf(!p.Timestamp.IsZero(), func() error { fw.writeTimestamp(p.Timestamp); return nil })
	writeIf(p.Type != "", func() error { return fw.writeShortstr(p.Type) })
	writeIf(p.UserId != "", func() error { return fw.writeShortstr(p.UserId) })
	writeIf(p.AppId != "", func() error { return fw.writeShortstr(p.AppId) })
	return err
}

// splitBody fragments a content body into BODY frames of at most
// frameMax-frameHeaderSize-frameEndSize bytes each.
func splitBody(body []byte, frameMax uint32) [][]byte {
	if frameMax == 0 {
		return [][]byte{body}
	}
	max := int(frameMax) - frameHeaderSize - frameEndSize
	if max <= 0 {
		max = len(body)
	}
	if len(body) == 0 {
		return [][]byte{{}}
	}
	var chunks [][]byte
	for len(body) > 0 {
		n := max
		if n > len(body) {
			n = len(body)
		}
		chunks = append(chunks, body[:n])
		body = body[n:]
	}
	return chunks
}
