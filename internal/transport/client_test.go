package transport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientStream(t *testing.T) {
	t.Run("posts message and session id and returns the body", func(t *testing.T) {
		var got Request
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("expected POST, got %s", r.Method)
			}
			if r.URL.Path != "/chat" {
				t.Errorf("expected /chat, got %s", r.URL.Path)
			}
			if ct := r.Header.Get("Content-Type"); ct != "application/json" {
				t.Errorf("expected application/json, got %s", ct)
			}
			if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
				t.Errorf("decoding request: %v", err)
			}
			w.Write([]byte(`{"text":"hi"}` + "\n"))
		}))
		defer server.Close()

		client := NewClient(server.URL)
		body, err := client.Stream(context.Background(), Request{Message: "hello", SessionID: "s1"})
		if err != nil {
			t.Fatalf("Stream() error = %v", err)
		}
		defer body.Close()

		if got.Message != "hello" || got.SessionID != "s1" {
			t.Errorf("unexpected request payload: %+v", got)
		}

		data, err := io.ReadAll(body)
		if err != nil {
			t.Fatalf("reading body: %v", err)
		}
		if string(data) != `{"text":"hi"}`+"\n" {
			t.Errorf("unexpected body %q", data)
		}
	})

	t.Run("non-2xx status returns StatusError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		}))
		defer server.Close()

		client := NewClient(server.URL)
		_, err := client.Stream(context.Background(), Request{Message: "hello", SessionID: "s1"})

		var statusErr *StatusError
		if !errors.As(err, &statusErr) {
			t.Fatalf("expected *StatusError, got %v", err)
		}
		if statusErr.StatusCode != http.StatusServiceUnavailable {
			t.Errorf("expected status 503, got %d", statusErr.StatusCode)
		}
		if statusErr.Body != "service unavailable" {
			t.Errorf("unexpected body %q", statusErr.Body)
		}
	})

	t.Run("unreachable server returns an error", func(t *testing.T) {
		client := NewClient("http://127.0.0.1:1")
		if _, err := client.Stream(context.Background(), Request{Message: "hello", SessionID: "s1"}); err == nil {
			t.Error("expected an error")
		}
	})

	t.Run("cancelled context aborts the request", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		defer server.Close()

		client := NewClient(server.URL)
		if _, err := client.Stream(ctx, Request{Message: "hello", SessionID: "s1"}); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("trailing slash on base url is tolerated", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/chat" {
				t.Errorf("expected /chat, got %s", r.URL.Path)
			}
		}))
		defer server.Close()

		client := NewClient(server.URL + "/")
		body, err := client.Stream(context.Background(), Request{Message: "hello", SessionID: "s1"})
		if err != nil {
			t.Fatalf("Stream() error = %v", err)
		}
		body.Close()
	})
}
