package bus

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Disabled(t *testing.T) {
	b, err := New(Config{Enabled: false})
	require.NoError(t, err)
	assert.Nil(t, b)
}

func TestSubject(t *testing.T) {
	b := &Bus{prefix: "newsletter"}
	assert.Equal(t, "newsletter.subscriptions.registered", b.Subject("subscriptions.registered"))

	var nilBus *Bus
	assert.Equal(t, "x", nilBus.Subject("x"))
}

func TestNilBus(t *testing.T) {
	var b *Bus
	require.Error(t, b.Publish(context.Background(), "x", 1))
	require.Error(t, b.Ping(context.Background()))
	b.Close()
}

func TestNew_Unreachable(t *testing.T) {
	_, err := New(Config{Enabled: true, URL: "nats://127.0.0.1:1"})
	require.Error(t, err)
}
