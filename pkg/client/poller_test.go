package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestPollerLoadsCenterAndStopsOnCancel(t *testing.T) {
	var polls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/realtime/alerts", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&polls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"alerts":[{"id":1,"severity":"warning","title":"Spend anomaly","acknowledged":false}]}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c := New(&Config{
		BaseURL:         server.URL,
		CredentialsFile: filepath.Join(t.TempDir(), "session.json"),
	})

	center := NewNotificationCenter()
	poller := NewAlertPoller(c, center, 10*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		poller.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for atomic.LoadInt32(&polls) < 2 {
		select {
		case <-deadline:
			t.Fatal("poller never completed two cycles")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop after cancellation")
	}

	if got := center.UnreadCount(); got != 1 {
		t.Fatalf("expected 1 unread after polling, got %d", got)
	}

	// No further polls after teardown
	settled := atomic.LoadInt32(&polls)
	time.Sleep(50 * time.Millisecond)
	if got := atomic.LoadInt32(&polls); got != settled {
		t.Fatalf("poller kept polling after cancellation: %d -> %d", settled, got)
	}
}

func TestPollerSurvivesFetchFailures(t *testing.T) {
	var polls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/realtime/alerts", func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&polls, 1)
		if n == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"alerts":[{"id":2,"severity":"info","title":"Recovered","acknowledged":false}]}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c := New(&Config{
		BaseURL:         server.URL,
		CredentialsFile: filepath.Join(t.TempDir(), "session.json"),
	})

	center := NewNotificationCenter()
	poller := NewAlertPoller(c, center, 10*time.Millisecond, nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	done := make(chan struct{})
	go func() {
		poller.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for center.UnreadCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("center never recovered after a failed poll")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	<-done

	list := center.Notifications()
	if len(list) != 1 || list[0].ID != 2 {
		t.Fatalf("unexpected center contents: %+v", list)
	}
}
