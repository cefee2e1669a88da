package frame_test

import (
	"testing"

	"github.com/aretw0/hostbridge/pkg/adapters/frame"
	"github.com/aretw0/hostbridge/pkg/ports"
	"github.com/stretchr/testify/assert"
)

var _ ports.FrameScheduler = (*frame.Queue)(nil)

func TestQueue_NeverRunsSynchronously(t *testing.T) {
	q := frame.NewQueue()
	ran := false

	q.RequestFrame(func() { ran = true })
	assert.False(t, ran)
	assert.Equal(t, 1, q.Pending())

	assert.Equal(t, 1, q.Flush())
	assert.True(t, ran)
	assert.Equal(t, 0, q.Pending())
	assert.Equal(t, uint64(1), q.Frames())
}

func TestQueue_RunsInRequestOrder(t *testing.T) {
	q := frame.NewQueue()
	var got []int
	for i := range 3 {
		q.RequestFrame(func() { got = append(got, i) })
	}
	q.Flush()
	assert.Equal(t, []int{0, 1, 2}, got)
}

func TestQueue_NestedRequestWaitsForNextFrame(t *testing.T) {
	q := frame.NewQueue()
	var order []string

	q.RequestFrame(func() {
		order = append(order, "outer")
		q.RequestFrame(func() { order = append(order, "inner") })
	})

	assert.Equal(t, 1, q.Flush())
	assert.Equal(t, []string{"outer"}, order)

	assert.Equal(t, 1, q.Flush())
	assert.Equal(t, []string{"outer", "inner"}, order)
}

func TestQueue_IgnoresNil(t *testing.T) {
	q := frame.NewQueue()
	q.RequestFrame(nil)
	assert.Equal(t, 0, q.Pending())
	assert.Equal(t, 0, q.Flush())
}
