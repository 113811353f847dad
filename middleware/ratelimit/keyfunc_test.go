package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDefaultKeyFunc_PrefersHeaderWhenSet(t *testing.T) {
	fn := DefaultKeyFunc("X-Client", false)

	r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	r.RemoteAddr = "10.0.0.1:1234"
	r.Header.Set("X-Client", " client-123 ")

	if got := fn(r); got != "client-123" {
		t.Fatalf("expected header key, got %q", got)
	}
}

func TestDefaultKeyFunc_TrustXForwardedForUsesLastHop(t *testing.T) {
	fn := DefaultKeyFunc("", true)

	r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	r.RemoteAddr = "10.0.0.9:5555"
	r.Header.Set("X-Forwarded-For", "1.2.3.4, 5.6.7.8")

	if got := fn(r); got != "5.6.7.8" {
		t.Fatalf("expected ip appended by the proxy, got %q", got)
	}
}

func TestDefaultKeyFunc_SpoofedLeftmostIsIgnored(t *testing.T) {
	fn := DefaultKeyFunc("", true, "10.0.0.0/8", "192.168.1.10")

	// cliente mandou "6.6.6.6"; o LB acrescentou o IP real e o proxy interno o do LB
	r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	r.RemoteAddr = "10.0.0.9:5555"
	r.Header.Set("X-Forwarded-For", "6.6.6.6, 203.0.113.7, 192.168.1.10, 10.1.2.3")

	if got := fn(r); got != "203.0.113.7" {
		t.Fatalf("expected rightmost untrusted ip, got %q", got)
	}

	// cada valor forjado vira uma identidade nova só se passar pelos proxies
	r.Header.Set("X-Forwarded-For", "7.7.7.7, 203.0.113.7, 10.1.2.3")
	if got := fn(r); got != "203.0.113.7" {
		t.Fatalf("spoofed leftmost changed the key: %q", got)
	}
}

func TestDefaultKeyFunc_MultipleXFFHeadersAreOneList(t *testing.T) {
	fn := DefaultKeyFunc("", true, "10.0.0.0/8")

	r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	r.RemoteAddr = "10.0.0.9:5555"
	r.Header.Add("X-Forwarded-For", "6.6.6.6")
	r.Header.Add("X-Forwarded-For", "203.0.113.7, 10.0.0.2")

	if got := fn(r); got != "203.0.113.7" {
		t.Fatalf("expected rightmost untrusted ip, got %q", got)
	}
}

func TestDefaultKeyFunc_AllHopsTrustedFallsBackToRemoteAddr(t *testing.T) {
	fn := DefaultKeyFunc("", true, "10.0.0.0/8")

	r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	r.RemoteAddr = "10.0.0.9:5555"
	r.Header.Set("X-Forwarded-For", "10.0.0.2, 10.0.0.3")

	if got := fn(r); got != "10.0.0.9" {
		t.Fatalf("expected remote host, got %q", got)
	}
}

func TestDefaultKeyFunc_TrustedProxyMatchesMappedIPv4(t *testing.T) {
	fn := DefaultKeyFunc("", true, "10.0.0.2")

	r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	r.RemoteAddr = "10.0.0.9:5555"
	r.Header.Set("X-Forwarded-For", "203.0.113.7, ::ffff:10.0.0.2")

	if got := fn(r); got != "203.0.113.7" {
		t.Fatalf("expected rightmost untrusted ip, got %q", got)
	}
}

func TestParseTrustedProxies(t *testing.T) {
	got, err := ParseTrustedProxies([]string{"10.0.0.0/8", " 192.168.1.10 ", "", "2001:db8::/32"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 prefixes, got %d", len(got))
	}
	if got[1].Bits() != 32 {
		t.Fatalf("expected single ip to become /32, got %s", got[1])
	}

	got, err = ParseTrustedProxies([]string{"10.0.0.0/8", "not-an-ip", "10.0.0.0/99"})
	if err == nil {
		t.Fatalf("expected error for invalid entries")
	}
	if len(got) != 1 {
		t.Fatalf("expected the valid entry to survive, got %d", len(got))
	}
}

func TestDefaultKeyFunc_FallbacksToRemoteAddrHost(t *testing.T) {
	fn := DefaultKeyFunc("", false)

	r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	r.RemoteAddr = "10.0.0.9:5555"

	if got := fn(r); got != "10.0.0.9" {
		t.Fatalf("expected remote host, got %q", got)
	}
}

func TestDefaultKeyFunc_UnknownWhenNoAddress(t *testing.T) {
	fn := DefaultKeyFunc("", true)

	r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	r.RemoteAddr = ""

	if got := fn(r); got != "unknown" {
		t.Fatalf("expected unknown, got %q", got)
	}
}

func TestDefaultKeyFunc_IgnoresXFFWhenNotTrusted(t *testing.T) {
	fn := DefaultKeyFunc("", false)

	r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	r.RemoteAddr = "[2001:db8::1]:443"
	r.Header.Set("X-Forwarded-For", "1.2.3.4")

	if got := fn(r); got != "2001:db8::1" {
		t.Fatalf("expected remote host, got %q", got)
	}
}
