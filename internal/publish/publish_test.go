package publish

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bartgrantham/gofm/internal/config"
	"github.com/bartgrantham/gofm/rds"
)

type token struct {
	done    chan struct{}
	err     error
	pending bool
}

func newToken(err error, pending bool) *token {
	t := &token{done: make(chan struct{}), err: err, pending: pending}
	if !pending {
		close(t.done)
	}
	return t
}

func (t *token) Wait() bool                       { <-t.done; return true }
func (t *token) WaitTimeout(d time.Duration) bool { return !t.pending }
func (t *token) Done() <-chan struct{}            { return t.done }
func (t *token) Error() error                     { return t.err }

type message struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

type fakeClient struct {
	connected    bool
	err          error
	pending      bool
	sent         []message
	disconnected bool
}

func (c *fakeClient) IsConnected() bool { return c.connected }

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.sent = append(c.sent, message{topic: topic, qos: qos, retained: retained, payload: payload.([]byte)})
	return newToken(c.err, c.pending)
}

func (c *fakeClient) Disconnect(quiesce uint) { c.disconnected = true }

func (c *fakeClient) Connect() mqtt.Token { return newToken(c.err, c.pending) }

var cfg = config.MQTTConfig{Topic: "radio/rds/", QoS: 1, Retain: true}

func TestPublish(t *testing.T) {
	t.Parallel()

	client := &fakeClient{connected: true}
	p := New(client, cfg)

	require.NoError(t, p.Publish(rds.Snapshot{PI: 0x1f96, PS: "KFXM", RT: "HELLO"}))
	require.Len(t, client.sent, 1)
	msg := client.sent[0]
	assert.Equal(t, "radio/rds/1F96", msg.topic)
	assert.Equal(t, byte(1), msg.qos)
	assert.True(t, msg.retained)

	var got map[string]any
	require.NoError(t, json.Unmarshal(msg.payload, &got))
	assert.Equal(t, "KFXM", got["ps"])
	assert.Equal(t, "HELLO", got["rt"])

	require.NoError(t, p.Close())
	assert.True(t, client.disconnected)
}

func TestPublishErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		client *fakeClient
		err    error
	}{
		{name: "offline", client: &fakeClient{}, err: ErrNotConnected},
		{name: "timeout", client: &fakeClient{connected: true, pending: true}, err: ErrTimeout},
		{name: "rejected", client: &fakeClient{connected: true, err: errBroker}, err: errBroker},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := New(tt.client, cfg, WithTimeout(time.Millisecond))
			require.ErrorIs(t, p.Publish(rds.Snapshot{PI: 0x1234}), tt.err)
		})
	}
}

var errBroker = errors.New("not authorized")

func TestWants(t *testing.T) {
	t.Parallel()

	assert.True(t, Wants(rds.Update{Fields: rds.FieldPS}))
	assert.True(t, Wants(rds.Update{Fields: rds.FieldTP | rds.FieldTime}))
	assert.False(t, Wants(rds.Update{Fields: rds.FieldTP | rds.FieldPTY | rds.FieldTA}))
	assert.False(t, Wants(rds.Update{Events: rds.EventGroup}))
}

func TestDial(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		client       *fakeClient
		err          error
		disconnected bool
	}{
		{name: "connected", client: &fakeClient{}},
		{name: "timeout", client: &fakeClient{pending: true}, err: ErrTimeout, disconnected: true},
		{name: "refused", client: &fakeClient{err: errors.New("not authorized")}, disconnected: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := New(nil, cfg)
			err := p.dial(tt.client)
			switch {
			case tt.err != nil:
				require.ErrorIs(t, err, tt.err)
			case tt.disconnected:
				require.Error(t, err)
			default:
				require.NoError(t, err)
			}
			assert.Equal(t, tt.disconnected, tt.client.disconnected)
		})
	}
}
