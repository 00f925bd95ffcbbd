package amqp

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMethodFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := newWriter(&buf)
	r := newReader(&buf)

	out := &methodFrame{
		ChannelId: 3,
		Method: &queueDeclare{
			Queue:      "orders",
			Durable:    true,
			AutoDelete: false,
			Arguments:  Table{"x-max-length": int32(100)},
		},
	}
	require.NoError(t, w.WriteFrame(out))

	f, err := r.ReadFrame()
	require.NoError(t, err)

	mf, ok := f.(*methodFrame)
	require.True(t, ok)
	assert.Equal(t, uint16(3), mf.ChannelId)
	assert.Equal(t, uint16(classQueue), mf.ClassId)

	decl, ok := mf.Method.(*queueDeclare)
	require.True(t, ok)
	assert.Equal(t, "orders", decl.Queue)
	assert.True(t, decl.Durable)
	assert.False(t, decl.AutoDelete)
	assert.Equal(t, int32(100), decl.Arguments["x-max-length"])
}

func TestHeaderFrameRoundTripPreservesProperties(t *testing.T) {
	var buf bytes.Buffer
	w := newWriter(&buf)
	r := newReader(&buf)

	props := properties{
		ContentType:   "application/json",
		DeliveryMode:  2,
		Priority:      5,
		CorrelationId: "abc-123",
		Headers:       Table{"retry": int32(3)},
		Timestamp:     time.Unix(1700000000, 0),
	}
	require.NoError(t, w.WriteFrame(&headerFrame{ChannelId: 1, ClassId: classBasic, Size: 42, Properties: props}))

	f, err := r.ReadFrame()
	require.NoError(t, err)
	hf, ok := f.(*headerFrame)
	require.True(t, ok)
	assert.Equal(t, uint64(42), hf.Size)
	assert.Equal(t, "application/json", hf.Properties.ContentType)
	assert.Equal(t, uint8(2), hf.Properties.DeliveryMode)
	assert.Equal(t, uint8(5), hf.Properties.Priority)
	assert.Equal(t, "abc-123", hf.Properties.CorrelationId)
	assert.Equal(t, int32(3), hf.Properties.Headers["retry"])
	assert.True(t, hf.Properties.Timestamp.Equal(props.Timestamp))
}

func TestBodyFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := newWriter(&buf)
	r := newReader(&buf)

	body := []byte("hello, queue")
	require.NoError(t, w.WriteFrame(&bodyFrame{ChannelId: 7, Body: body}))

	f, err := r.ReadFrame()
	require.NoError(t, err)
	bf, ok := f.(*bodyFrame)
	require.True(t, ok)
	assert.Equal(t, uint16(7), bf.ChannelId)
	assert.Equal(t, body, bf.Body)
}

func TestRawProtocolHeaderIsLiteralPreamble(t *testing.T) {
	var buf bytes.Buffer
	w := newWriter(&buf)
	require.NoError(t, w.WriteFrame(&rawProtocolHeaderFrame{}))
	assert.Equal(t, []byte("AMQP\x00\x00\x09\x01"), buf.Bytes())
}

func TestBasicPublishRoundTripsExchangeAndRoutingKey(t *testing.T) {
	var buf bytes.Buffer
	w := newWriter(&buf)
	r := newReader(&buf)

	require.NoError(t, w.WriteFrame(&methodFrame{
		ChannelId: 2,
		Method: &basicPublish{
			Exchange:   "orders.topic",
			RoutingKey: "orders.created",
			Mandatory:  true,
		},
	}))

	f, err := r.ReadFrame()
	require.NoError(t, err)
	mf := f.(*methodFrame)
	pub, ok := mf.Method.(*basicPublish)
	require.True(t, ok)
	assert.Equal(t, "orders.topic", pub.Exchange)
	assert.Equal(t, "orders.created", pub.RoutingKey)
	assert.True(t, pub.Mandatory)
	assert.False(t, pub.Immediate)
}

func TestSplitBodyRespectsFrameMax(t *testing.T) {
	body := bytes.Repeat([]byte{'x'}, 100)
	chunks := splitBody(body, 32)
	total := 0
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 32-frameHeaderSize-frameEndSize)
		total += len(c)
	}
	assert.Equal(t, 100, total)
}

func TestSplitBodyUnlimitedFrameMax(t *testing.T) {
	body := []byte("unbounded")
	chunks := splitBody(body, 0)
	require.Len(t, chunks, 1)
	assert.Equal(t, body, chunks[0])
}

func TestSplitBodyEmptyBodyYieldsOneEmptyChunk(t *testing.T) {
	chunks := splitBody(nil, 4096)
	require.Len(t, chunks, 1)
	assert.Empty(t, chunks[0])
}

func TestFieldTableRoundTripNestedValues(t *testing.T) {
	var buf bytes.Buffer
	fw := newFieldWriter(&buf)
	table := Table{
		"count":  int32(7),
		"ratio":  float64(0.5),
		"nested": Table{"inner": "value"},
		"list":   []interface{}{int32(1), "two"},
		"flag":   true,
	}
	require.NoError(t, fw.writeTable(table))

	fr := &fieldReader{b: buf.Bytes()}
	decoded, err := fr.readTable()
	require.NoError(t, err)

	assert.Equal(t, int32(7), decoded["count"])
	assert.Equal(t, 0.5, decoded["ratio"])
	assert.Equal(t, true, decoded["flag"])
	nested, ok := decoded["nested"].(Table)
	require.True(t, ok)
	assert.Equal(t, "value", nested["inner"])
	list, ok := decoded["list"].([]interface{})
	require.True(t, ok)
	require.Len(t, list, 2)
	assert.Equal(t, int32(1), list[0])
	assert.Equal(t, "two", list[1])
}
