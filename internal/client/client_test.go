package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestClient_Arithmetic(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/arithmetic" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("expr"); got != "king - man + woman" {
			t.Errorf("expr = %q", got)
		}
		if got := r.URL.Query().Get("n"); got != "3" {
			t.Errorf("n = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"expression":"king - man + woman","results":[{"word":"queen","similarity":0.91},{"word":"princess","similarity":0.8}]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL + "/"})
	res, err := c.Arithmetic(context.Background(), "king - man + woman", 3)
	if err != nil {
		t.Fatalf("Arithmetic failed: %v", err)
	}
	if len(res) != 2 || res[0].Word != "queen" || res[0].Similarity != 0.91 {
		t.Fatalf("unexpected results: %+v", res)
	}
}

func TestClient_Info(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"model_type":"fallback","dimensions":10,"vocab_size":23}`))
	}))
	defer srv.Close()

	info, err := NewClient(Config{BaseURL: srv.URL}).Info(context.Background())
	if err != nil {
		t.Fatalf("Info failed: %v", err)
	}
	if info.ModelType != "fallback" || info.Dimensions != 10 || info.VocabSize != 23 {
		t.Fatalf("unexpected info: %+v", info)
	}
}

func TestClient_DetailError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail":"Word 'unknownword' not in vocabulary"}`))
	}))
	defer srv.Close()

	_, err := NewClient(Config{BaseURL: srv.URL}).Arithmetic(context.Background(), "king - unknownword", 5)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest || err.Error() != "Word 'unknownword' not in vocabulary" {
		t.Fatalf("unexpected error: %+v", apiErr)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("client errors must not be retried, got %d calls", calls)
	}
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"results":[{"word":"cat","similarity":0.99}]}`))
	}))
	defer srv.Close()

	res, err := NewClient(Config{BaseURL: srv.URL, MaxRetries: 3}).Arithmetic(context.Background(), "dog", 1)
	if err != nil {
		t.Fatalf("Arithmetic failed: %v", err)
	}
	if len(res) != 1 || res[0].Word != "cat" || atomic.LoadInt32(&calls) != 3 {
		t.Fatalf("unexpected results after %d calls: %+v", calls, res)
	}
}

func TestClient_RetriesExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "0")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"detail":"Model not loaded"}`))
	}))
	defer srv.Close()

	_, err := NewClient(Config{BaseURL: srv.URL, MaxRetries: 1}).Info(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusServiceUnavailable || apiErr.Detail != "Model not loaded" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClient_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := NewClient(Config{BaseURL: srv.URL, MaxRetries: 10}).Info(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestRetryDelay(t *testing.T) {
	if retryDelay(0) != 200*time.Millisecond || retryDelay(1) != 400*time.Millisecond {
		t.Fatalf("unexpected backoff: %v %v", retryDelay(0), retryDelay(1))
	}
	if retryDelay(10) != 5*time.Second {
		t.Fatalf("backoff not capped: %v", retryDelay(10))
	}
}

func TestClient_Similar(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/similar" || r.URL.Query().Get("word") != "dog" {
			t.Errorf("unexpected request: %s", r.URL)
		}
		_, _ = w.Write([]byte(`{"word":"dog","similar":[{"word":"cat","similarity":0.98}]}`))
	}))
	defer srv.Close()

	res, err := NewClient(Config{BaseURL: srv.URL}).Similar(context.Background(), "dog", 1)
	if err != nil {
		t.Fatalf("Similar failed: %v", err)
	}
	if len(res) != 1 || res[0].Word != "cat" {
		t.Fatalf("unexpected results: %+v", res)
	}
}
