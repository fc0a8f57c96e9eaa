package pipeline

import (
	"math/rand"
	"sync"
	"testing"
)

// ========================================
// Reorder Buffer Tests
// ========================================

func frameAt(index int) *frameResult {
	return &frameResult{frame: &Frame{Index: index}}
}

func TestReorderBuffer_RestoresOrder(t *testing.T) {
	const n = 50
	buffer := newReorderBuffer(8)

	perm := rand.New(rand.NewSource(1)).Perm(n)
	var wg sync.WaitGroup
	for _, index := range perm {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			buffer.Put(frameAt(i))
		}(index)
	}
	go func() {
		wg.Wait()
		buffer.Close()
	}()

	for expected := 0; expected < n; expected++ {
		r := buffer.Next()
		if r == nil {
			t.Fatalf("Buffer closed early at index %d", expected)
		}
		if r.frame.Index != expected {
			t.Fatalf("Expected index %d, got %d", expected, r.frame.Index)
		}
	}
	if r := buffer.Next(); r != nil {
		t.Errorf("Expected nil after draining, got index %d", r.frame.Index)
	}
}

func TestReorderBuffer_NextIndexNeverBlocks(t *testing.T) {
	buffer := newReorderBuffer(1)

	// The next expected index must be accepted even at capacity 1.
	done := make(chan struct{})
	go func() {
		buffer.Put(frameAt(0))
		close(done)
	}()

	r := buffer.Next()
	<-done
	if r == nil || r.frame.Index != 0 {
		t.Fatalf("Expected index 0, got %v", r)
	}
}

func TestReorderBuffer_CloseReleasesConsumer(t *testing.T) {
	buffer := newReorderBuffer(8)

	buffer.Put(frameAt(0))
	buffer.Put(frameAt(1))
	// Index 2 never arrives.
	buffer.Close()

	if r := buffer.Next(); r == nil || r.frame.Index != 0 {
		t.Fatal("Expected buffered index 0 after close")
	}
	if r := buffer.Next(); r == nil || r.frame.Index != 1 {
		t.Fatal("Expected buffered index 1 after close")
	}
	if r := buffer.Next(); r != nil {
		t.Errorf("Expected nil at the gap after close, got index %d", r.frame.Index)
	}
}
