package mqtt

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func msg(i int) bufferedMsg {
	return bufferedMsg{topic: TopicEvents, payload: []byte(fmt.Sprint(i))}
}

func payloads(msgs []bufferedMsg) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = string(m.payload)
	}
	return out
}

func TestRingBufferEmptyDrain(t *testing.T) {
	r := newRingBuffer(3)
	msgs, dropped := r.drainAll()
	assert.Nil(t, msgs)
	assert.Zero(t, dropped)
}

func TestRingBufferFIFO(t *testing.T) {
	r := newRingBuffer(3)
	r.push(msg(1))
	r.push(msg(2))
	assert.Equal(t, 2, r.len())

	msgs, dropped := r.drainAll()
	assert.Equal(t, []string{"1", "2"}, payloads(msgs))
	assert.Zero(t, dropped)
	assert.Zero(t, r.len())
}

func TestRingBufferOverflowDropsOldest(t *testing.T) {
	r := newRingBuffer(3)
	for i := 1; i <= 3; i++ {
		assert.False(t, r.push(msg(i)))
	}
	assert.True(t, r.push(msg(4)))
	assert.True(t, r.push(msg(5)))
	assert.Equal(t, 3, r.len())

	msgs, dropped := r.drainAll()
	assert.Equal(t, []string{"3", "4", "5"}, payloads(msgs))
	assert.Equal(t, 2, dropped)
}

func TestRingBufferMultipleCycles(t *testing.T) {
	r := newRingBuffer(2)
	for cycle := 0; cycle < 3; cycle++ {
		r.push(msg(cycle * 10))
		r.push(msg(cycle*10 + 1))
		msgs, _ := r.drainAll()
		require.Len(t, msgs, 2)
		assert.Equal(t, fmt.Sprint(cycle*10), string(msgs[0].payload))
	}
}

func TestRingBufferPreservesFields(t *testing.T) {
	r := newRingBuffer(1)
	r.push(bufferedMsg{topic: TopicSystem, payload: []byte("x"), qos: 1, retained: true})
	msgs, _ := r.drainAll()
	require.Len(t, msgs, 1)
	assert.Equal(t, bufferedMsg{topic: TopicSystem, payload: []byte("x"), qos: 1, retained: true}, msgs[0])
}

func TestRingBufferMinimumCapacity(t *testing.T) {
	r := newRingBuffer(0)
	r.push(msg(1))
	assert.True(t, r.push(msg(2)))
	msgs, _ := r.drainAll()
	assert.Equal(t, []string{"2"}, payloads(msgs))
}
