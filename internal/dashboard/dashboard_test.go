package dashboard

import "testing"

func TestIsOriginAllowedEmptyOriginPasses(t *testing.T) {
	t.Parallel()
	if !isOriginAllowed("", nil, "localhost:8080") {
		t.Error("expected empty Origin to be allowed")
	}
}

func TestIsOriginAllowedLocalhost(t *testing.T) {
	t.Parallel()
	if !isOriginAllowed("http://localhost:3000", nil, "localhost:8080") {
		t.Error("expected localhost origin to be allowed")
	}
}

func TestIsOriginAllowedRejectsUnknownHost(t *testing.T) {
	t.Parallel()
	if isOriginAllowed("http://evil.example", nil, "localhost:8080") {
		t.Error("expected unrelated origin to be rejected")
	}
}

func TestIsOriginAllowedRespectsAllowList(t *testing.T) {
	t.Parallel()
	allowed := []string{"https://dashboard.example.com"}
	if !isOriginAllowed("https://dashboard.example.com", allowed, "localhost:8080") {
		t.Error("expected allow-listed origin to pass")
	}
	if isOriginAllowed("https://other.example.com", allowed, "localhost:8080") {
		t.Error("expected non-listed origin to be rejected when an allow-list is set")
	}
}
