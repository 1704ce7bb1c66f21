package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFanoutPublishesToEveryone(t *testing.T) {
	a, b := &Recorder{}, &Recorder{}
	f := Fanout{a, nil, b}

	f.Publish(context.Background(), New(MessageNew, "hi", 2))

	assert.Equal(t, []string{MessageNew}, a.Types())
	assert.Equal(t, []string{MessageNew}, b.Types())
	assert.Equal(t, []uint{2}, a.Events[0].Recipients)
	assert.False(t, a.Events[0].OccurredAt.IsZero())
}

func TestNopDiscards(t *testing.T) {
	assert.NotPanics(t, func() {
		Nop{}.Publish(context.Background(), New(PostCreated, nil))
	})
}
