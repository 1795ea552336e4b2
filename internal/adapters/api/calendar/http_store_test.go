package calendar

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rohis/internal/adapters/backend"
)

// TestHTTPStore_Events verifies the month is sent 1-based with the year.
func TestHTTPStore_Events(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("month") != "3" || q.Get("year") != "2024" {
			t.Errorf("query = %s", r.URL.RawQuery)
		}
		_, _ = io.WriteString(w, `{"events":[{"id":"s-1","title":"Kajian","date":"2024-03-10","type":"session"}]}`)
	}))
	defer srv.Close()

	events, err := NewHTTPStore(backend.NewClient(srv.URL, nil)).Events(context.Background(), 2024, time.March)
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if len(events) != 1 || events[0].ID != "s-1" || !events[0].IsSession() {
		t.Errorf("events = %+v", events)
	}
}

// TestHTTPStore_Hijri verifies the hijri field is returned as-is.
func TestHTTPStore_Hijri(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"hijri":"1 Ramadan 1445"}`)
	}))
	defer srv.Close()

	got, err := NewHTTPStore(backend.NewClient(srv.URL, nil)).Hijri(context.Background())
	if err != nil || got != "1 Ramadan 1445" {
		t.Errorf("Hijri() = %q, %v", got, err)
	}
}
