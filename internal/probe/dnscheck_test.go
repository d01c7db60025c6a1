package probe

import "testing"

func TestDNSClass_LiteralIP(t *testing.T) {
	// literal addresses resolve locally, no resolver round-trip
	if got := DNSClass("127.0.0.1"); got != "RESOLVES" {
		t.Fatalf("want RESOLVES for literal IP, got %q", got)
	}
}

func TestDNSClass_InvalidName(t *testing.T) {
	if got := DNSClass(""); got != "INVALID_NAME" {
		t.Fatalf("want INVALID_NAME for empty host, got %q", got)
	}
	if got := DNSClass("https://example.com"); got != "INVALID_NAME" {
		t.Fatalf("want INVALID_NAME when a scheme sneaks in, got %q", got)
	}
}
