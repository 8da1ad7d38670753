package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublishReachesSubscribers(t *testing.T) {
	b := NewBus()
	var got []interface{}
	unsub := b.Subscribe("price.saved", func(p interface{}) { got = append(got, p) })

	b.Publish("price.saved", 1)
	b.Publish("other", 2)
	assert.Equal(t, []interface{}{1}, got)

	unsub()
	unsub()
	b.Publish("price.saved", 3)
	assert.Equal(t, []interface{}{1}, got)
	assert.Zero(t, b.Subscribers("price.saved"))
}

func TestPanickingHandlerDoesNotStopOthers(t *testing.T) {
	b := NewBus()
	called := false
	b.Subscribe("t", func(interface{}) { panic("boom") })
	b.Subscribe("t", func(interface{}) { called = true })

	assert.NotPanics(t, func() { b.Publish("t", nil) })
	assert.True(t, called)
}

func TestUnsubscribeKeepsOtherHandlers(t *testing.T) {
	b := NewBus()
	first := b.Subscribe("t", func(interface{}) {})
	b.Subscribe("t", func(interface{}) {})

	first()
	assert.Equal(t, 1, b.Subscribers("t"))
}
