package persistence

import (
	"context"
	"sync"

	"ariproxy/internal/metering"
	"ariproxy/pkg/health"
)

type recordingTeller struct {
	mu       sync.Mutex
	messages []metering.Message
}

func (r *recordingTeller) Tell(msg metering.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
}

func (r *recordingTeller) recorded() []metering.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]metering.Message(nil), r.messages...)
}

// scriptedStore returns putErr/getErr and counts calls.
type scriptedStore struct {
	mu     sync.Mutex
	putErr error
	getErr error
	puts   int
	gets   int
	closes int
	values map[string]string
}

func newScriptedStore() *scriptedStore {
	return &scriptedStore{values: make(map[string]string)}
}

func (s *scriptedStore) Put(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts++
	if s.putErr != nil {
		return s.putErr
	}
	s.values[key] = value
	return nil
}

func (s *scriptedStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets++
	if s.getErr != nil {
		return "", false, s.getErr
	}
	value, ok := s.values[key]
	return value, ok, nil
}

func (s *scriptedStore) CheckHealth(ctx context.Context) health.Report {
	return health.Healthy("persistence.scripted")
}

func (s *scriptedStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closes++
	return nil
}
