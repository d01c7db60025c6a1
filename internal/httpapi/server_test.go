package httpapi

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/excoffierleonard/downdetector/internal/domain"
)

type fakeSource struct {
	states []domain.SiteState
}

func (f *fakeSource) States() []domain.SiteState { return f.states }

func testStates() []domain.SiteState {
	return []domain.SiteState{
		{
			Target:      domain.Target{URL: "https://a", Interval: time.Minute, Timeout: 5 * time.Second},
			Status:      domain.StatusUp,
			HTTPStatus:  200,
			LatencyMS:   12.5,
			LastChecked: time.Now().UTC(),
		},
		{
			Target:     domain.Target{URL: "https://b"},
			Status:     domain.StatusDown,
			HTTPStatus: 503,
			Reason:     "503 Service Unavailable",
		},
		{
			Target: domain.Target{URL: "https://c"},
			Status: domain.StatusUnknown,
		},
	}
}

func TestHealthz(t *testing.T) {
	s := NewServer(zap.NewNop(), &fakeSource{})
	req := httptest.NewRequest("GET", "/healthz", nil)
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)

	if rr.Code != 200 || rr.Body.String() != "ok" {
		t.Fatalf("want 200 ok, got %d %q", rr.Code, rr.Body.String())
	}
}

func TestListSites(t *testing.T) {
	s := NewServer(zap.NewNop(), &fakeSource{states: testStates()})
	req := httptest.NewRequest("GET", "/api/sites", nil)
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)

	if rr.Code != 200 {
		t.Fatalf("want 200, got %d", rr.Code)
	}
	var got []domain.SiteState
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("want 3 sites, got %d", len(got))
	}
	if got[0].Target.URL != "https://a" || got[0].Status != domain.StatusUp {
		t.Fatalf("unexpected first site %+v", got[0])
	}
	if got[1].Reason != "503 Service Unavailable" {
		t.Fatalf("want reason carried through, got %+v", got[1])
	}
}

func TestSummary(t *testing.T) {
	s := NewServer(zap.NewNop(), &fakeSource{states: testStates()})
	req := httptest.NewRequest("GET", "/api/summary", nil)
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)

	if rr.Code != 200 {
		t.Fatalf("want 200, got %d", rr.Code)
	}
	var got summary
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Total != 3 || got.Up != 1 || got.Down != 1 || got.Unknown != 1 {
		t.Fatalf("unexpected summary %+v", got)
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	s := NewServer(zap.NewNop(), &fakeSource{})
	ctx, cancel := context.WithCancel(context.Background())

	errc := make(chan error, 1)
	go func() { errc <- s.Run(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errc:
		if err != nil {
			t.Fatalf("graceful shutdown should return nil, got %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}
