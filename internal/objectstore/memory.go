package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"zorvixe/pkg/platform/sentinel"
)

type memoryObject struct {
	data        []byte
	contentType string
}

// InMemory stores blobs in a map for tests and dev wiring.
type InMemory struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
}

// NewInMemory constructs an empty in-memory object store.
func NewInMemory() *InMemory {
	return &InMemory{objects: make(map[string]memoryObject)}
}

func (s *InMemory) Put(_ context.Context, key string, body io.Reader, _ int64, contentType string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("read object body: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = memoryObject{data: data, contentType: contentType}
	return nil
}

func (s *InMemory) Get(_ context.Context, key string) (*Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("object %s: %w", key, sentinel.ErrNotFound)
	}
	return &Object{
		Body:        io.NopCloser(bytes.NewReader(obj.data)),
		ContentType: obj.contentType,
		Size:        int64(len(obj.data)),
	}, nil
}

func (s *InMemory) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

// Len reports how many objects are stored, for test assertions.
func (s *InMemory) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
