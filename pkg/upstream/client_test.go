package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClient_PostJSON(t *testing.T) {
	var gotBody map[string]any
	var gotContentType, gotUserAgent, gotMethod string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		gotUserAgent = r.Header.Get("User-Agent")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.Write([]byte(`{"result":{"id":"31"}}`))
	}))
	defer server.Close()

	c := New(Config{Timeout: time.Second, UserAgent: "test/1.0"})
	defer c.Close()

	payload := map[string]any{"data": map[string]string{"id": "31", "uid": "gae"}}
	res := c.PostJSON(context.Background(), server.URL, payload)

	if !res.OK() {
		t.Fatalf("PostJSON failed: %v", res.Err)
	}
	if res.Text() != `{"result":{"id":"31"}}` {
		t.Errorf("Body = %q", res.Text())
	}
	if res.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", res.StatusCode)
	}
	if gotMethod != http.MethodPost {
		t.Errorf("method = %s, want POST", gotMethod)
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", gotContentType)
	}
	if gotUserAgent != "test/1.0" {
		t.Errorf("User-Agent = %q, want test/1.0", gotUserAgent)
	}
	data, _ := gotBody["data"].(map[string]any)
	if data["id"] != "31" || data["uid"] != "gae" {
		t.Errorf("payload = %v", gotBody)
	}
}

func TestClient_Get(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"depth":0}`))
	}))
	defer server.Close()

	c := New(Config{Timeout: time.Second})
	res := c.Get(context.Background(), server.URL+"/c/31?abracadabra=1")

	if !res.OK() {
		t.Fatalf("Get failed: %v", res.Err)
	}
	if res.Text() != `{"depth":0}` {
		t.Errorf("Body = %q", res.Text())
	}
	if gotQuery != "abracadabra=1" {
		t.Errorf("query = %q", gotQuery)
	}
}

func TestClient_NonSuccessStatus(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantClass ErrorClass
	}{
		{"not found", http.StatusNotFound, ErrorClassClient},
		{"server error", http.StatusInternalServerError, ErrorClassServer},
		{"bad gateway", http.StatusBadGateway, ErrorClassServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"error":"nope"}`))
			}))
			defer server.Close()

			res := New(Config{Timeout: time.Second}).Get(context.Background(), server.URL)
			if res.OK() {
				t.Fatal("expected failure")
			}
			if !errors.Is(res.Err, ErrUpstream) {
				t.Errorf("expected ErrUpstream, got %v", res.Err)
			}

			var fe *FetchError
			if !errors.As(res.Err, &fe) {
				t.Fatalf("expected *FetchError, got %T", res.Err)
			}
			if fe.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", fe.StatusCode, tt.status)
			}
			if fe.Class != tt.wantClass {
				t.Errorf("Class = %s, want %s", fe.Class, tt.wantClass)
			}
		})
	}
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	c := New(Config{Timeout: 50 * time.Millisecond})
	start := time.Now()
	res := c.Get(context.Background(), server.URL)

	if res.OK() {
		t.Fatal("expected timeout failure")
	}
	if time.Since(start) > 2*time.Second {
		t.Errorf("timeout not enforced, took %v", time.Since(start))
	}

	var fe *FetchError
	if !errors.As(res.Err, &fe) {
		t.Fatalf("expected *FetchError, got %T", res.Err)
	}
	if fe.Class != ErrorClassTimeout {
		t.Errorf("Class = %s, want %s", fe.Class, ErrorClassTimeout)
	}
}

func TestClient_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	res := New(Config{Timeout: time.Second}).Get(context.Background(), url)
	if res.OK() {
		t.Fatal("expected failure against closed server")
	}

	var fe *FetchError
	if !errors.As(res.Err, &fe) {
		t.Fatalf("expected *FetchError, got %T", res.Err)
	}
	if fe.Class != ErrorClassNetwork {
		t.Errorf("Class = %s, want %s", fe.Class, ErrorClassNetwork)
	}
}

func TestClient_PostJSON_MarshalError(t *testing.T) {
	res := New(Config{}).PostJSON(context.Background(), "http://127.0.0.1:1", make(chan int))
	if res.OK() {
		t.Fatal("expected marshal failure")
	}
}
