package mqtt

import (
	"errors"
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type doneToken struct{ err error }

func (t doneToken) Wait() bool                     { return true }
func (t doneToken) WaitTimeout(time.Duration) bool { return true }
func (t doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t doneToken) Error() error { return t.err }

// fakePaho records subscribe calls; unimplemented methods panic through the nil embedded interface
type fakePaho struct {
	mqtt.Client

	mu           sync.Mutex
	subscribed   []string
	unsubscribed []string
	handlers     map[string]mqtt.MessageHandler
	subErr       error
}

func (f *fakePaho) Subscribe(topic string, _ byte, cb mqtt.MessageHandler) mqtt.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscribed = append(f.subscribed, topic)
	if f.handlers == nil {
		f.handlers = map[string]mqtt.MessageHandler{}
	}
	f.handlers[topic] = cb
	return doneToken{err: f.subErr}
}

func (f *fakePaho) Unsubscribe(topics ...string) mqtt.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unsubscribed = append(f.unsubscribed, topics...)
	return doneToken{}
}

type fakeMessage struct {
	mqtt.Message
	topic   string
	payload []byte
}

func (m fakeMessage) Topic() string   { return m.topic }
func (m fakeMessage) Payload() []byte { return m.payload }

func newTestClient(p *fakePaho) *Client {
	return &Client{client: p, logger: zap.NewNop(), subs: map[string]subscription{}}
}

func TestClient_SubscribeDispatchesPayload(t *testing.T) {
	p := &fakePaho{}
	c := newTestClient(p)

	var gotTopic string
	var gotPayload []byte
	require.NoError(t, c.Subscribe("bsc-care/+/recording", 1, func(topic string, payload []byte) error {
		gotTopic, gotPayload = topic, payload
		return errors.New("logged only")
	}))

	p.handlers["bsc-care/+/recording"](p, fakeMessage{topic: "bsc-care/u1/recording", payload: []byte(`{}`)})

	assert.Equal(t, "bsc-care/u1/recording", gotTopic)
	assert.Equal(t, []byte(`{}`), gotPayload)
}

func TestClient_ResubscribeAfterReconnect(t *testing.T) {
	p := &fakePaho{}
	c := newTestClient(p)
	noop := func(string, []byte) error { return nil }

	require.NoError(t, c.Subscribe("bsc-care/+/recording", 1, noop))
	require.NoError(t, c.Subscribe("bsc-care/+/status", 0, noop))
	require.NoError(t, c.Unsubscribe("bsc-care/+/status"))

	c.resubscribe()

	assert.Equal(t, []string{"bsc-care/+/recording", "bsc-care/+/status", "bsc-care/+/recording"}, p.subscribed)
	assert.Equal(t, []string{"bsc-care/+/status"}, p.unsubscribed)
}

func TestClient_SubscribeError(t *testing.T) {
	p := &fakePaho{subErr: errors.New("not authorized")}
	c := newTestClient(p)

	err := c.Subscribe("bsc-care/+/recording", 1, func(string, []byte) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bsc-care/+/recording")
}
