package utils

import (
	"strings"
	"sync"
	"testing"
)

func TestIDGeneratorUnique(t *testing.T) {
	g := NewIDGenerator()
	seen := make(map[string]bool)

	for i := 0; i < 1000; i++ {
		id := g.Generate()
		if seen[id] {
			t.Fatalf("duplicate ID generated: %s", id)
		}
		seen[id] = true
	}
}

func TestIDGeneratorConcurrent(t *testing.T) {
	g := NewIDGenerator()

	const workers = 10
	const perWorker = 100

	var mu sync.Mutex
	seen := make(map[string]bool)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				id := g.Generate()
				mu.Lock()
				if seen[id] {
					t.Errorf("duplicate ID generated: %s", id)
				}
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(seen) != workers*perWorker {
		t.Errorf("len(seen) = %d, want %d", len(seen), workers*perWorker)
	}
}

func TestGenerateWithPrefix(t *testing.T) {
	g := NewIDGenerator()
	id := g.GenerateWithPrefix("chk")
	if !strings.HasPrefix(id, "chk_") {
		t.Errorf("GenerateWithPrefix(chk) = %q, want chk_ prefix", id)
	}
}

func TestNewCheckIDAndTaskID(t *testing.T) {
	if id := NewCheckID(); !strings.HasPrefix(id, "chk_") {
		t.Errorf("NewCheckID() = %q, want chk_ prefix", id)
	}
	if id := NewTaskID(); !strings.HasPrefix(id, "task_") {
		t.Errorf("NewTaskID() = %q, want task_ prefix", id)
	}
}
