package watch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDebounceCollapsesBursts(t *testing.T) {
	in := make(chan string, 10)
	out := Debounce(in, 50*time.Millisecond)

	for i := 0; i < 5; i++ {
		in <- "docs"
	}
	in <- "photos"

	var got []string
	timeout := time.After(2 * time.Second)
	for len(got) < 2 {
		select {
		case key := <-out:
			got = append(got, key)
		case <-timeout:
			t.Fatalf("timed out, got %v", got)
		}
	}

	assert.ElementsMatch(t, []string{"docs", "photos"}, got)

	close(in)
	_, ok := <-out
	assert.False(t, ok)
}

func TestDebounceFlushesOnClose(t *testing.T) {
	in := make(chan string, 1)
	out := Debounce(in, time.Hour)

	in <- "docs"
	close(in)

	select {
	case key := <-out:
		assert.Equal(t, "docs", key)
	case <-time.After(2 * time.Second):
		t.Fatal("pending key not flushed")
	}
}

func TestWithin(t *testing.T) {
	assert.True(t, within("/a/b", "/a/b"))
	assert.True(t, within("/a/b", "/a/b/c"))
	assert.False(t, within("/a/b", "/a/bc"))
	assert.False(t, within("/a/b", "/a"))
	assert.True(t, within("/a/b", "/a/b/..c"))
}
