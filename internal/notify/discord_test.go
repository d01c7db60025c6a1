package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/excoffierleonard/downdetector/internal/domain"
)

// ---- shared helpers ----

func downEvent(url string) domain.Transition {
	return domain.Transition{
		ID:         "ev-1",
		URL:        url,
		From:       domain.StatusUp,
		To:         domain.StatusDown,
		Reason:     "503 Service Unavailable",
		OccurredAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func upEvent(url string) domain.Transition {
	return domain.Transition{
		ID:         "ev-2",
		URL:        url,
		From:       domain.StatusDown,
		To:         domain.StatusUp,
		OccurredAt: time.Date(2026, 3, 1, 12, 5, 0, 0, time.UTC),
	}
}

func contentServer(t *testing.T, got *string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		_ = json.NewDecoder(r.Body).Decode(&payload)
		*got = payload["content"]
		w.WriteHeader(204)
	}))
}

// ---- tests ----

func TestDiscord_DownAlertWithMention(t *testing.T) {
	var got string
	ts := contentServer(t, &got)
	defer ts.Close()

	d := NewDiscord(ts.URL, "123456")
	if err := d.Notify(context.Background(), downEvent("https://a")); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if !strings.HasPrefix(got, "<@123456> ") {
		t.Fatalf("want mention prefix, got %q", got)
	}
	if !strings.Contains(got, "https://a is DOWN!") {
		t.Fatalf("want down text, got %q", got)
	}
	if !strings.Contains(got, "503 Service Unavailable") {
		t.Fatalf("want reason included, got %q", got)
	}
	if !strings.Contains(got, "2026-03-01T12:00:00Z") {
		t.Fatalf("want timestamp, got %q", got)
	}
}

func TestDiscord_RecoveryWithoutMention(t *testing.T) {
	var got string
	ts := contentServer(t, &got)
	defer ts.Close()

	d := NewDiscord(ts.URL, "")
	if err := d.Notify(context.Background(), upEvent("https://a")); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if strings.Contains(got, "<@") {
		t.Fatalf("mention should be absent, got %q", got)
	}
	if !strings.Contains(got, "https://a is UP again") {
		t.Fatalf("want recovery text, got %q", got)
	}
}

func TestDiscord_Non2xx(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(429)
	}))
	defer ts.Close()

	d := NewDiscord(ts.URL, "")
	if err := d.Notify(context.Background(), downEvent("https://a")); err == nil {
		t.Fatal("expected error on non-2xx")
	}
}

func TestNew_NopWhenWebhookUnset(t *testing.T) {
	n := New("", "123")
	if _, ok := n.(Nop); !ok {
		t.Fatalf("want Nop, got %T", n)
	}
	// no webhook means success with zero network calls
	if err := n.Notify(context.Background(), downEvent("https://a")); err != nil {
		t.Fatalf("nop must always succeed, got %v", err)
	}
}

func TestNew_RetriedDiscordWhenWebhookSet(t *testing.T) {
	n := New("https://discord.com/api/webhooks/1/t", "123")
	r, ok := n.(*Retry)
	if !ok {
		t.Fatalf("want *Retry, got %T", n)
	}
	if _, ok := r.Inner.(*Discord); !ok {
		t.Fatalf("want Discord inner, got %T", r.Inner)
	}
}
