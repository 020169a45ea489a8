package events

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func receive(t *testing.T, ch chan []byte) string {
	t.Helper()
	select {
	case msg := <-ch:
		return string(msg)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
	return ""
}

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker()
	defer b.Close()
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.Unsubscribe(ch)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsub")
	}
}

func TestPublishDelivery(t *testing.T) {
	b := NewBroker()
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish(Event{Type: TypeDocumentSaved, Data: DocumentSaved{Bytes: 42}})

	s := receive(t, ch)
	if !strings.Contains(s, "event: document.saved") {
		t.Errorf("missing event type in %q", s)
	}
	if !strings.Contains(s, `"bytes":42`) {
		t.Errorf("missing data in %q", s)
	}
}

func TestSubscribe_ReplaysLastSyncStatus(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	b.Publish(Event{Type: TypeSyncStatus, Data: SyncStatus{Status: "syncing"}})
	b.Publish(Event{Type: TypeSyncStatus, Data: SyncStatus{Status: "synced"}})
	b.Publish(Event{Type: TypeDocumentSaved, Data: DocumentSaved{}})
	time.Sleep(50 * time.Millisecond)

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	s := receive(t, ch)
	if !strings.Contains(s, "event: sync.status") || !strings.Contains(s, `"status":"synced"`) {
		t.Errorf("replayed = %q, want last sync.status", s)
	}
	select {
	case extra := <-ch:
		t.Errorf("unexpected extra message %q", extra)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSSEHandler(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	req = req.WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	// Give handler time to subscribe.
	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client from handler")
	}

	b.Publish(Event{Type: TypeShareSent, Data: ShareEvent{ID: "s1"}})
	time.Sleep(50 * time.Millisecond)

	cancel()
	<-done

	body := w.Body.String()
	if !strings.Contains(body, "event: share.sent") {
		t.Errorf("handler output missing event: %q", body)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content-type = %q", ct)
	}

	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 0 {
		t.Errorf("client not cleaned up after disconnect")
	}
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	b := NewBroker()
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// Fill buffer (capacity 64) and then one more should not block.
	for i := 0; i < 70; i++ {
		b.Publish(Event{Type: "test", Data: map[string]int{"i": i}})
	}
}

func TestCloseClosesSubscribersAndStopsOperations(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe()

	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}

	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after close")
	}
	b.Publish(Event{Type: TypeDocumentSaved})
}

func TestRecorderAndFanout(t *testing.T) {
	var a, c Recorder
	f := Fanout{&a, &c, Discard}
	f.Publish(Event{Type: TypeSyncStatus, Data: SyncStatus{Status: "local_only"}})
	f.Publish(Event{Type: TypeDocumentSaved})

	if got := strings.Join(a.Types(), ","); got != "sync.status,document.saved" {
		t.Errorf("types = %s", got)
	}
	e, ok := c.Last(TypeSyncStatus)
	if !ok || e.Data.(SyncStatus).Status != "local_only" {
		t.Errorf("last = %+v %v", e, ok)
	}
	if _, ok := c.Last(TypeShareDeclined); ok {
		t.Error("unexpected share.declined")
	}
}
