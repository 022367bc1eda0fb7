package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"connectivity-monitor/internal/models"
)

type fakeStatus struct{ s models.Status }

func (f fakeStatus) Status() models.Status { return f.s }

type fakeStore struct {
	downtimes []models.Downtime
	err       error
	limit     int
}

func (f *fakeStore) GetDowntimes(limit int) ([]models.Downtime, error) {
	f.limit = limit
	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.downtimes) {
		return f.downtimes[:limit], nil
	}
	return f.downtimes, nil
}

func TestHandleStatus(t *testing.T) {
	start := time.Unix(1_700_000_000, 0).UTC()
	s := New("127.0.0.1:0", fakeStatus{models.Status{
		Down:        true,
		NoResponses: 2,
		Limit:       3,
		WindowStart: &start,
		Addresses:   []string{"1.1.1.1"},
	}}, &fakeStore{})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status code = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var got models.Status
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if !got.Down || got.NoResponses != 2 || got.WindowStart == nil || !got.WindowStart.Equal(start) {
		t.Errorf("decoded status = %+v", got)
	}
}

func TestHandleDowntimes(t *testing.T) {
	store := &fakeStore{downtimes: []models.Downtime{
		{ID: 2, Duration: "0 hours, 1 minutes, 0 seconds"},
		{ID: 1, Duration: "0 hours, 0 minutes, 30 seconds"},
	}}
	s := New("127.0.0.1:0", fakeStatus{}, store)

	tests := []struct {
		name      string
		query     string
		wantCode  int
		wantLimit int
		wantLen   int
	}{
		{name: "default limit", query: "", wantCode: http.StatusOK, wantLimit: defaultDowntimeLimit, wantLen: 2},
		{name: "explicit limit", query: "?limit=1", wantCode: http.StatusOK, wantLimit: 1, wantLen: 1},
		{name: "capped limit", query: "?limit=100000", wantCode: http.StatusOK, wantLimit: maxDowntimeLimit, wantLen: 2},
		{name: "not a number", query: "?limit=abc", wantCode: http.StatusBadRequest},
		{name: "zero", query: "?limit=0", wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store.limit = 0
			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/downtimes"+tt.query, nil))

			if rec.Code != tt.wantCode {
				t.Fatalf("status code = %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.wantCode != http.StatusOK {
				return
			}
			if store.limit != tt.wantLimit {
				t.Errorf("store queried with limit %d, want %d", store.limit, tt.wantLimit)
			}
			var got []models.Downtime
			if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
				t.Fatal(err)
			}
			if len(got) != tt.wantLen {
				t.Errorf("got %d downtimes, want %d", len(got), tt.wantLen)
			}
		})
	}
}

func TestHandleDowntimesEmptyAndFailing(t *testing.T) {
	store := &fakeStore{}
	s := New("127.0.0.1:0", fakeStatus{}, store)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/downtimes", nil))
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Errorf("empty result encoded as %q, want []", body)
	}

	store.err = errors.New("database is locked")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/downtimes", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status code = %d, want 500", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	s := New("127.0.0.1:0", fakeStatus{}, &fakeStore{})
	for _, path := range []string{"/api/status", "/api/downtimes"} {
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("POST %s = %d, want 405", path, rec.Code)
		}
	}
}

func TestStreamDeliversResults(t *testing.T) {
	s := New("127.0.0.1:0", fakeStatus{}, &fakeStore{})
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(5 * time.Second)
	for s.Hub().Len() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	addr := netip.MustParseAddr("192.0.2.7")
	s.Hub().Observe(models.NewTimeout(addr))

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var got struct {
		Kind string `json:"kind"`
		Addr string `json:"address"`
	}
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if got.Kind != "timeout" || got.Addr != addr.String() {
		t.Errorf("streamed event = %+v", got)
	}

	// Closing the hub ends the stream
	s.Hub().Close()
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("stream still open after hub close")
	}
	if n := s.Hub().Len(); n != 0 {
		t.Errorf("hub has %d clients after close", n)
	}
}
