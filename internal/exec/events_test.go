package exec

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSinkFunc(t *testing.T) {
	var got Event
	var s Sink = SinkFunc(func(e Event) { got = e })

	s.Emit(Event{Kind: Stderr, Text: "x"})
	assert.Equal(t, "x", got.Text)
	assert.Equal(t, "stderr", got.Kind.String())
}

func TestStream_DeliversInOrderAndCloses(t *testing.T) {
	s := NewStream(4)

	var wg sync.WaitGroup
	var got []string
	wg.Add(1)
	go func() {
		defer wg.Done()
		for e := range s.Events() {
			got = append(got, e.Text)
		}
	}()

	for _, text := range []string{"a", "b", "c", "d", "e", "f"} {
		s.Emit(Event{Kind: Stdout, Text: text})
	}
	s.Close()
	wg.Wait()

	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f"}, got)
}

func TestStream_EmitAfterCloseIsDropped(t *testing.T) {
	s := NewStream(1)
	s.Close()
	s.Close()

	done := make(chan struct{})
	go func() {
		s.Emit(Event{Text: "late"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Emit blocked on a closed stream")
	}
	_, ok := <-s.Events()
	require.False(t, ok)
}
