package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_DropsWhenFull(t *testing.T) {
	b := NewBus()
	slow, _ := b.Subscribe(1)
	fast, _ := b.Subscribe(8)

	for i := range 3 {
		b.Publish(Event{Kind: EventScoreUpdated, Seq: uint64(i + 1)})
	}

	require.Len(t, slow, 1)
	assert.Equal(t, uint64(1), (<-slow).Seq)
	assert.Len(t, fast, 3)
}

func TestBus_Unsubscribe(t *testing.T) {
	b := NewBus()
	ch, unsubscribe := b.Subscribe(4)
	assert.Equal(t, 1, b.Subscribers())

	unsubscribe()
	unsubscribe()
	assert.Equal(t, 0, b.Subscribers())

	_, open := <-ch
	assert.False(t, open)

	b.Publish(Event{Kind: EventScoreUpdated})
}

func TestBus_Close(t *testing.T) {
	b := NewBus()
	ch, unsubscribe := b.Subscribe(4)

	b.Close()
	b.Close()
	unsubscribe()

	_, open := <-ch
	assert.False(t, open)

	late, _ := b.Subscribe(4)
	_, open = <-late
	assert.False(t, open)
	b.Publish(Event{Kind: EventScoreUpdated})
}
