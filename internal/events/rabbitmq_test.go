package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	closed    bool
	declared  []string
	published []amqp091.Publishing
}

func (c *fakeChannel) IsClosed() bool { return c.closed }

func (c *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error {
	c.declared = append(c.declared, name)
	return nil
}

func (c *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error {
	c.published = append(c.published, msg)
	return nil
}

func (c *fakeChannel) Close() error {
	c.closed = true
	return nil
}

type fakeConn struct {
	closed   bool
	channels []*fakeChannel
}

func (c *fakeConn) IsClosed() bool { return c.closed }

func (c *fakeConn) channel() (amqpChannel, error) {
	ch := &fakeChannel{}
	c.channels = append(c.channels, ch)
	return ch, nil
}

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

type fakeDialer struct{ conns []*fakeConn }

func (d *fakeDialer) dial(string) (amqpConn, error) {
	c := &fakeConn{}
	d.conns = append(d.conns, c)
	return c, nil
}

func TestRabbitMQ_ReopensClosedChannel(t *testing.T) {
	d := &fakeDialer{}
	r, err := dialRabbitMQ(context.Background(), "amqp://test", d.dial)
	require.NoError(t, err)
	conn := d.conns[0]
	conn.channels[0].closed = true

	require.NoError(t, r.Publish(context.Background(), Event{Type: OrderCreated, OrderID: "o1"}))
	assert.Len(t, d.conns, 1, "connection reused")
	require.Len(t, conn.channels, 2)
	assert.Equal(t, []string{Exchange}, conn.channels[1].declared)
	require.Len(t, conn.channels[1].published, 1)
	assert.Equal(t, "o1", conn.channels[1].published[0].MessageId)
}

func TestRabbitMQ_RedialsClosedConnection(t *testing.T) {
	d := &fakeDialer{}
	r, err := dialRabbitMQ(context.Background(), "amqp://test", d.dial)
	require.NoError(t, err)
	d.conns[0].closed = true

	require.NoError(t, r.Publish(context.Background(), Event{Type: OrderUpdated, OrderID: "o2"}))
	require.Len(t, d.conns, 2)
	assert.Len(t, d.conns[1].channels[0].published, 1)
}

func TestDialRabbitMQ_StopsWhenContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	attempts := 0
	dial := func(string) (amqpConn, error) {
		attempts++
		return nil, errors.New("connection refused")
	}

	start := time.Now()
	_, err := dialRabbitMQ(ctx, "amqp://test", dial)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
	assert.Less(t, time.Since(start), time.Second)
}
