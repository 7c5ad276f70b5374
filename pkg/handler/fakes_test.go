package handler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Sternrassler/hierarchy-proxy/pkg/blob"
	"github.com/Sternrassler/hierarchy-proxy/pkg/upstream"
)

// recordingStore is a cache.Store that records every call.
type recordingStore struct {
	mu     sync.Mutex
	data   map[string]string
	ttls   map[string]time.Duration
	gets   int
	sets   int
	getErr error
	setErr error
}

func newRecordingStore() *recordingStore {
	return &recordingStore{
		data: make(map[string]string),
		ttls: make(map[string]time.Duration),
	}
}

func (s *recordingStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets++
	if s.getErr != nil {
		return "", false, s.getErr
	}
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *recordingStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets++
	if s.setErr != nil {
		return s.setErr
	}
	s.data[key] = value
	s.ttls[key] = ttl
	return nil
}

func (s *recordingStore) seed(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
}

func (s *recordingStore) value(key string) (string, time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, s.ttls[key], ok
}

func (s *recordingStore) calls() (gets, sets int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gets, s.sets
}

var errTestCacheDown = errors.New("cache down")

// failingPinger is a store whose Ping always fails.
type failingPinger struct {
	*recordingStore
}

func (failingPinger) Ping(context.Context) error {
	return errors.New("connection refused")
}

// fakeFetcher returns a fixed result and records requests.
type fakeFetcher struct {
	mu          sync.Mutex
	result      upstream.Result
	posts       int
	gets        int
	lastURL     string
	lastPayload any
}

func (f *fakeFetcher) PostJSON(_ context.Context, url string, payload any) upstream.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posts++
	f.lastURL = url
	f.lastPayload = payload
	return f.result
}

func (f *fakeFetcher) Get(_ context.Context, url string) upstream.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	f.lastURL = url
	return f.result
}

func (f *fakeFetcher) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.posts + f.gets
}

func succeed(body string) upstream.Result {
	return upstream.Success(200, []byte(body))
}

func fail() upstream.Result {
	return upstream.Failure(&upstream.FetchError{Method: "GET", URL: "http://upstream", Class: upstream.ErrorClassNetwork, Err: errors.New("connection reset")})
}

// fakeKeys records the reference it was asked to resolve.
type fakeKeys struct {
	gotPath string
	err     error
}

func (k *fakeKeys) KeyFromPath(_ context.Context, path string) (blob.Key, error) {
	k.gotPath = path
	if k.err != nil {
		return "", k.err
	}
	return blob.Key("key:" + path), nil
}

// fakeImages records the key it was asked to resolve.
type fakeImages struct {
	gotKey blob.Key
	url    string
	err    error
}

func (i *fakeImages) ServingURL(_ context.Context, key blob.Key) (string, error) {
	i.gotKey = key
	if i.err != nil {
		return "", i.err
	}
	return i.url, nil
}
