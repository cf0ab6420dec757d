package loop

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoopRunsClosuresInOrder(t *testing.T) {
	l := New(8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	var got []int
	for i := 0; i < 5; i++ {
		i := i
		l.Post(func() { got = append(got, i) })
	}
	require.True(t, l.Call(func() {}))
	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)
}

func TestLoopSerializesConcurrentPosters(t *testing.T) {
	l := New(4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				l.Post(func() { counter++ })
			}
		}()
	}
	wg.Wait()

	var final int
	require.True(t, l.Call(func() { final = counter }))
	assert.Equal(t, 1000, final)
}

func TestLoopStopDropsPosts(t *testing.T) {
	l := New(1)
	l.Stop()

	done := make(chan struct{})
	go func() {
		l.Post(func() { t.Error("closure must not run after stop") })
		l.Post(func() {})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Post blocked on a stopped loop")
	}
	assert.False(t, l.Call(func() {}))
}

func TestLoopRunReturnsOnCancel(t *testing.T) {
	l := New(1)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- l.Run(ctx) }()

	cancel()
	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	<-l.Done()
}

func TestInlinePoster(t *testing.T) {
	ran := false
	Inline.Post(func() { ran = true })
	assert.True(t, ran)
}
