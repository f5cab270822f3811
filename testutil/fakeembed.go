package testutil

import (
	"context"
	"sync"
)

// FakeEmbedder returns canned vectors keyed by input text.
type FakeEmbedder struct {
	mu sync.Mutex
	// Vectors maps input text to its vector. Inputs without an entry get
	// Default.
	Vectors map[string][]float32
	Default []float32
	// Err, when set, fails every call.
	Err   error
	calls int
}

// NewFakeEmbedder returns an embedder that answers every input with vec.
func NewFakeEmbedder(vec []float32) *FakeEmbedder {
	return &FakeEmbedder{Default: vec}
}

func (e *FakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	if e.Err != nil {
		return nil, e.Err
	}
	if v, ok := e.Vectors[text]; ok {
		return v, nil
	}
	return e.Default, nil
}

// Calls reports how many Embed calls arrived, including failed ones.
func (e *FakeEmbedder) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}
