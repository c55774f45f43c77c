package agent

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/askdokita/dokita/internal/events"
	"github.com/askdokita/dokita/internal/pubsub"
	"github.com/askdokita/dokita/internal/session"
	"github.com/askdokita/dokita/internal/transport"
)

func newTestAgent(serverURL string) (*Agent, *session.Service, *pubsub.Broker[events.StreamEvent]) {
	svc := session.NewService(session.NewMemoryStore(), nil)
	broker := pubsub.NewBroker[events.StreamEvent]("stream")
	ag := New(transport.NewClient(serverURL), svc, broker)
	return ag, svc, broker
}

func lastMessage(t *testing.T, svc *session.Service, id string) session.Message {
	t.Helper()

	sess, err := svc.Get(id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(sess.Messages) == 0 {
		t.Fatal("session has no messages")
	}
	return sess.Messages[len(sess.Messages)-1]
}

func waitEvent(t *testing.T, sub <-chan pubsub.Event[events.StreamEvent], eventType events.StreamEventType) pubsub.Event[events.StreamEvent] {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case event := <-sub:
			if event.Payload.Type == eventType {
				return event
			}
		case <-deadline:
			t.Fatalf("timeout waiting for %s event", eventType)
		}
	}
}

func TestSend(t *testing.T) {
	t.Run("folds fragments into observable prefixes", func(t *testing.T) {
		proceed := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			flusher := w.(http.Flusher)
			for i, chunk := range []string{`{"text":"Hel"}`, `{"text":"lo, "}`, `{"text":"world"}`} {
				if i > 0 {
					<-proceed
				}
				w.Write([]byte(chunk + "\n"))
				flusher.Flush()
			}
			<-proceed
			w.Write([]byte(`{"grounding":true}` + "\n"))
			flusher.Flush()
		}))
		defer server.Close()

		ag, svc, broker := newTestAgent(server.URL)
		defer broker.Shutdown()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		sub := broker.Subscribe(ctx)

		id := svc.ActiveID()
		errCh := make(chan error, 1)
		go func() { errCh <- ag.Send(context.Background(), id, "hello") }()

		for _, prefix := range []string{"Hel", "Hello, ", "Hello, world"} {
			waitEvent(t, sub, events.StreamEventTextDelta)
			if got := lastMessage(t, svc, id).Content; got != prefix {
				t.Errorf("expected observable prefix %q, got %q", prefix, got)
			}
			proceed <- struct{}{}
		}

		waitEvent(t, sub, events.StreamEventComplete)
		if err := <-errCh; err != nil {
			t.Fatalf("Send() error = %v", err)
		}

		sess, _ := svc.Get(id)
		if len(sess.Messages) != 2 {
			t.Fatalf("expected 2 messages, got %d", len(sess.Messages))
		}
		if sess.Messages[0].Role != session.RoleUser || sess.Messages[0].Content != "hello" {
			t.Errorf("unexpected user message: %+v", sess.Messages[0])
		}
		if sess.Messages[1].Role != session.RoleAssistant || sess.Messages[1].Content != "Hello, world" {
			t.Errorf("unexpected assistant message: %+v", sess.Messages[1])
		}
	})

	t.Run("empty prompt is rejected", func(t *testing.T) {
		ag, svc, broker := newTestAgent("http://127.0.0.1:1")
		defer broker.Shutdown()

		err := ag.Send(context.Background(), svc.ActiveID(), "")
		if !errors.Is(err, ErrEmptyPrompt) {
			t.Errorf("expected ErrEmptyPrompt, got %v", err)
		}

		sess, _ := svc.Get(svc.ActiveID())
		if len(sess.Messages) != 0 {
			t.Error("rejected send must not touch the session")
		}
	})

	t.Run("non-2xx response writes the failure notice", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
		}))
		defer server.Close()

		ag, svc, broker := newTestAgent(server.URL)
		defer broker.Shutdown()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		sub := broker.Subscribe(ctx)

		id := svc.ActiveID()
		err := ag.Send(context.Background(), id, "hello")

		var statusErr *transport.StatusError
		if !errors.As(err, &statusErr) {
			t.Fatalf("expected *transport.StatusError, got %v", err)
		}

		sess, _ := svc.Get(id)
		if len(sess.Messages) != 2 {
			t.Fatalf("expected user message and notice, got %d messages", len(sess.Messages))
		}
		if got := sess.Messages[1].Content; got != FailureNotice {
			t.Errorf("expected failure notice, got %q", got)
		}

		waitEvent(t, sub, events.StreamEventError)
	})

	t.Run("mid-stream failure replaces partial content with the notice", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"text":"partial"}` + "\n"))
			w.(http.Flusher).Flush()
			panic(http.ErrAbortHandler)
		}))
		defer server.Close()

		ag, svc, broker := newTestAgent(server.URL)
		defer broker.Shutdown()

		id := svc.ActiveID()
		if err := ag.Send(context.Background(), id, "hello"); err == nil {
			t.Fatal("expected an error")
		}

		if got := lastMessage(t, svc, id).Content; got != FailureNotice {
			t.Errorf("expected failure notice, got %q", got)
		}
	})

	t.Run("second send to a busy session is rejected", func(t *testing.T) {
		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"text":"a"}` + "\n"))
			w.(http.Flusher).Flush()
			<-release
		}))
		defer server.Close()

		ag, svc, broker := newTestAgent(server.URL)
		defer broker.Shutdown()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		sub := broker.Subscribe(ctx)

		id := svc.ActiveID()
		errCh := make(chan error, 1)
		go func() { errCh <- ag.Send(context.Background(), id, "first") }()

		waitEvent(t, sub, events.StreamEventTextDelta)

		if err := ag.Send(context.Background(), id, "second"); !errors.Is(err, ErrSessionBusy) {
			t.Errorf("expected ErrSessionBusy, got %v", err)
		}

		close(release)
		if err := <-errCh; err != nil {
			t.Fatalf("first Send() error = %v", err)
		}
		if ag.IsBusy(id) {
			t.Error("session should be idle again")
		}
	})

	t.Run("cancel aborts the stream and frees the session", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"text":"a"}` + "\n"))
			w.(http.Flusher).Flush()
			<-r.Context().Done()
		}))
		defer server.Close()

		ag, svc, broker := newTestAgent(server.URL)
		defer broker.Shutdown()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		sub := broker.Subscribe(ctx)

		id := svc.ActiveID()
		errCh := make(chan error, 1)
		go func() { errCh <- ag.Send(context.Background(), id, "hello") }()

		waitEvent(t, sub, events.StreamEventTextDelta)
		ag.Cancel(id)

		if err := <-errCh; !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		waitEvent(t, sub, events.StreamEventCancelled)
		if ag.IsBusy(id) {
			t.Error("session should be idle after cancel")
		}
	})

	t.Run("mid-stream session deletion still ends with a terminal event", func(t *testing.T) {
		proceed := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			flusher := w.(http.Flusher)
			w.Write([]byte(`{"text":"a"}` + "\n"))
			flusher.Flush()
			<-proceed
			w.Write([]byte(`{"text":"b"}` + "\n"))
			flusher.Flush()
		}))
		defer server.Close()

		ag, svc, broker := newTestAgent(server.URL)
		defer broker.Shutdown()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		sub := broker.Subscribe(ctx)

		id := svc.ActiveID()
		errCh := make(chan error, 1)
		go func() { errCh <- ag.Send(context.Background(), id, "hello") }()

		waitEvent(t, sub, events.StreamEventTextDelta)
		svc.DeleteSession(id)
		proceed <- struct{}{}

		if err := <-errCh; !errors.Is(err, session.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		waitEvent(t, sub, events.StreamEventError)
		if ag.IsBusy(id) {
			t.Error("session should be idle after the aborted stream")
		}
	})

	t.Run("unknown session returns ErrNotFound", func(t *testing.T) {
		ag, _, broker := newTestAgent("http://127.0.0.1:1")
		defer broker.Shutdown()

		if err := ag.Send(context.Background(), "nope", "hello"); !errors.Is(err, session.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}
