package sink

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/require"
)

var sample = Reading{
	Time:         time.Date(2025, 3, 14, 7, 30, 0, 0, time.UTC),
	Model:        "Oria-WA150KM",
	ID:           60,
	Channel:      2,
	TemperatureC: -18.5,
}

func TestJSONWriter(t *testing.T) {
	var buf bytes.Buffer
	s := NewJSONWriter(&buf)
	require.NoError(t, s.Emit(context.Background(), sample))
	require.Equal(t, `{"time":"2025-03-14 07:30:00","model":"Oria-WA150KM","id":60,"channel":2,"temperature_C":-18.5}`+"\n", buf.String())
}

type fakeToken struct {
	err  error
	done chan struct{}
}

func newFakeToken(err error) *fakeToken {
	t := &fakeToken{err: err, done: make(chan struct{})}
	close(t.done)
	return t
}

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{}          { return t.done }
func (t *fakeToken) Error() error                   { return t.err }

type fakePublisher struct {
	topics   []string
	payloads [][]byte
	err      error
	pending  bool
}

func (p *fakePublisher) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	p.topics = append(p.topics, topic)
	p.payloads = append(p.payloads, payload.([]byte))
	if p.pending {
		return &fakeToken{done: make(chan struct{})}
	}
	return newFakeToken(p.err)
}

func TestMQTTEmit(t *testing.T) {
	pub := &fakePublisher{}
	s := NewMQTT(pub, "")
	require.NoError(t, s.Emit(context.Background(), sample))
	require.Equal(t, []string{"rtl_433/Oria-WA150KM/2/60"}, pub.topics)
	require.JSONEq(t, `{"time":"2025-03-14 07:30:00","model":"Oria-WA150KM","id":60,"channel":2,"temperature_C":-18.5}`, string(pub.payloads[0]))
}

func TestMQTTEmitError(t *testing.T) {
	pub := &fakePublisher{err: errors.New("not connected")}
	s := NewMQTT(pub, "sensors")
	err := s.Emit(context.Background(), sample)
	require.ErrorContains(t, err, "sensors/Oria-WA150KM/2/60")
	require.ErrorContains(t, err, "not connected")
}

func TestMQTTEmitCancelledWhilePending(t *testing.T) {
	pub := &fakePublisher{pending: true}
	s := NewMQTT(pub, "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := s.Emit(ctx, sample)
	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, pub.topics, 1)
}

func TestDialMQTTRequiresBroker(t *testing.T) {
	_, err := DialMQTT(MQTTConfig{})
	require.Error(t, err)
}

func TestMulti(t *testing.T) {
	var got []Reading
	ok := Func(func(_ context.Context, r Reading) error {
		got = append(got, r)
		return nil
	})
	failing := Func(func(context.Context, Reading) error { return errors.New("boom") })
	m := Multi{ok, failing, ok}
	err := m.Emit(context.Background(), sample)
	require.ErrorContains(t, err, "func: boom")
	require.Len(t, got, 2)
}
