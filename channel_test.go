package amqp

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openPipeChannel drives a full connection + channel handshake over an
// in-memory pipe and hands the test a *Channel plus the server-side
// reader/writer to continue the conversation.
func openPipeChannel(t *testing.T) (*Channel, *reader, *writer, func()) {
	t.Helper()
	client, server := net.Pipe()

	type pair struct {
		r *reader
		w *writer
	}
	rw := make(chan pair, 1)

	go func() {
		r, w, ok := doHandshake(t, server)
		if ok {
			if f, err := r.ReadFrame(); err == nil {
				if mf, ok := f.(*methodFrame); ok {
					if _, ok := mf.Method.(*channelOpen); ok {
						w.WriteFrame(&methodFrame{ChannelId: mf.ChannelId, Method: &channelOpenOk{}})
					}
				}
			}
		}
		rw <- pair{r, w}
	}()

	conn, err := open(&pipeResolver{transport: client}, testConfig())
	require.NoError(t, err)

	ch, err := conn.Channel()
	require.NoError(t, err)

	p := <-rw
	return ch, p.r, p.w, func() { client.Close() }
}

func TestChannelPublishSendsExchangeAndBody(t *testing.T) {
	ch, r, _, cleanup := openPipeChannel(t)
	defer cleanup()

	go func() {
		assert.NoError(t, ch.Publish("orders", "orders.created", false, false, Publishing{
			ContentType: "application/json",
			Body:        []byte(`{"id":1}`),
		}))
	}()

	f, err := r.ReadFrame()
	require.NoError(t, err)
	mf := f.(*methodFrame)
	pub, ok := mf.Method.(*basicPublish)
	require.True(t, ok)
	assert.Equal(t, "orders", pub.Exchange)
	assert.Equal(t, "orders.created", pub.RoutingKey)

	f, err = r.ReadFrame()
	require.NoError(t, err)
	hf, ok := f.(*headerFrame)
	require.True(t, ok)
	assert.Equal(t, "application/json", hf.Properties.ContentType)
	assert.Equal(t, uint64(len(`{"id":1}`)), hf.Size)

	f, err = r.ReadFrame()
	require.NoError(t, err)
	bf, ok := f.(*bodyFrame)
	require.True(t, ok)
	assert.Equal(t, `{"id":1}`, string(bf.Body))
}

func TestChannelConsumeDispatchesDelivery(t *testing.T) {
	ch, r, w, cleanup := openPipeChannel(t)
	defer cleanup()

	deliveries := make(chan Delivery, 1)
	go func() {
		f, err := r.ReadFrame()
		if err != nil {
			return
		}
		mf, ok := f.(*methodFrame)
		if !ok {
			return
		}
		consume, ok := mf.Method.(*basicConsume)
		if !ok {
			return
		}
		w.WriteFrame(&methodFrame{ChannelId: mf.ChannelId, Method: &basicConsumeOk{ConsumerTag: consume.ConsumerTag}})
		w.WriteFrame(&methodFrame{ChannelId: mf.ChannelId, Method: &basicDeliver{
			ConsumerTag: consume.ConsumerTag, DeliveryTag: 1, Exchange: "orders", RoutingKey: "orders.created",
		}})
		w.WriteFrame(&headerFrame{ChannelId: mf.ChannelId, ClassId: classBasic, Size: 5})
		w.WriteFrame(&bodyFrame{ChannelId: mf.ChannelId, Body: []byte("hello")})
	}()

	tag, err := ch.Consume("orders.q", "", false, false, false, false, nil, func(d Delivery) {
		deliveries <- d
	})
	require.NoError(t, err)
	assert.NotEmpty(t, tag)

	select {
	case d := <-deliveries:
		assert.Equal(t, uint64(1), d.DeliveryTag)
		assert.Equal(t, "orders", d.Exchange)
		assert.Equal(t, []byte("hello"), d.Body)
	case <-time.After(2 * time.Second):
		t.Fatal("delivery was not dispatched to the consumer handler")
	}
}

func TestChannelGetReturnsOkOnMessage(t *testing.T) {
	ch, r, w, cleanup := openPipeChannel(t)
	defer cleanup()

	go func() {
		f, err := r.ReadFrame()
		if err != nil {
			return
		}
		mf, ok := f.(*methodFrame)
		if !ok {
			return
		}
		if _, ok := mf.Method.(*basicGet); !ok {
			return
		}
		w.WriteFrame(&methodFrame{ChannelId: mf.ChannelId, Method: &basicGetOk{
			DeliveryTag: 7, Exchange: "orders", RoutingKey: "rk", MessageCount: 0,
		}})
		w.WriteFrame(&headerFrame{ChannelId: mf.ChannelId, ClassId: classBasic, Size: 3})
		w.WriteFrame(&bodyFrame{ChannelId: mf.ChannelId, Body: []byte("abc")})
	}()

	d, ok, err := ch.Get("orders.q", false)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(7), d.DeliveryTag)
	assert.Equal(t, []byte("abc"), d.Body)
}

func TestChannelGetReturnsFalseOnEmpty(t *testing.T) {
	ch, r, w, cleanup := openPipeChannel(t)
	defer cleanup()

	go func() {
		f, err := r.ReadFrame()
		if err != nil {
			return
		}
		mf, ok := f.(*methodFrame)
		if !ok {
			return
		}
		if _, ok := mf.Method.(*basicGet); !ok {
			return
		}
		w.WriteFrame(&methodFrame{ChannelId: mf.ChannelId, Method: &basicGetEmpty{}})
	}()

	_, ok, err := ch.Get("orders.q", false)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestChannelAckWritesBasicAckFrame(t *testing.T) {
	ch, r, _, cleanup := openPipeChannel(t)
	defer cleanup()

	go func() {
		assert.NoError(t, ch.Ack(5, true))
	}()

	f, err := r.ReadFrame()
	require.NoError(t, err)
	mf := f.(*methodFrame)
	ack, ok := mf.Method.(*basicAck)
	require.True(t, ok)
	assert.Equal(t, uint64(5), ack.DeliveryTag)
	assert.True(t, ack.Multiple)
}

func TestChannelConfirmModeTracksDeferredConfirmation(t *testing.T) {
	ch, r, w, cleanup := openPipeChannel(t)
	defer cleanup()

	confirmSelectDone := make(chan struct{})
	go func() {
		defer close(confirmSelectDone)
		f, err := r.ReadFrame()
		if !assert.NoError(t, err) {
			return
		}
		mf, ok := f.(*methodFrame)
		if !assert.True(t, ok) {
			return
		}
		if _, ok := mf.Method.(*confirmSelect); !assert.True(t, ok) {
			return
		}
		assert.NoError(t, w.WriteFrame(&methodFrame{ChannelId: mf.ChannelId, Method: &confirmSelectOk{}}))
	}()
	require.NoError(t, ch.Confirm(false))
	<-confirmSelectDone

	go func() {
		for i := 0; i < 3; i++ {
			r.ReadFrame() // basic.publish
			r.ReadFrame() // header
			r.ReadFrame() // body
		}
		w.WriteFrame(&methodFrame{ChannelId: ch.id, Method: &basicAck{DeliveryTag: 2, Multiple: true}})
	}()

	var confs []*DeferredConfirmation
	for i := 0; i < 3; i++ {
		d, err := ch.PublishWithConfirm("orders", "rk", false, false, Publishing{Body: []byte("x")})
		require.NoError(t, err)
		confs = append(confs, d)
	}

	assert.True(t, confs[0].Acked())
	assert.True(t, confs[1].Acked())

	select {
	case <-confs[2].Done():
		t.Fatal("tag 3 should still be pending after a multiple-ack up to tag 2")
	case <-time.After(100 * time.Millisecond):
	}
}
