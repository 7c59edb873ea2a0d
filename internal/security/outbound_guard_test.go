package security

import (
	"testing"
	"time"
)

// TestValidateURL_AllowsPublicHTTPS は公開APIのURLが許可されることを検証する。
func TestValidateURL_AllowsPublicHTTPS(t *testing.T) {
	guard := NewOutboundGuard()

	valid := []string{
		"https://api.polygon.io",
		"https://api.example.com/v2/quotes",
		"http://data.example.org",
	}
	for _, rawURL := range valid {
		if err := guard.ValidateURL(rawURL); err != nil {
			t.Errorf("ValidateURL(%q) = %v, want nil", rawURL, err)
		}
	}
}

// TestValidateURL_BlocksPrivateAndLoopback はプライベート・ループバック宛が拒否されることを検証する。
func TestValidateURL_BlocksPrivateAndLoopback(t *testing.T) {
	guard := NewOutboundGuard()

	blocked := []string{
		"http://10.0.0.5/quotes",
		"http://172.16.1.1",
		"http://192.168.1.10:8080",
		"http://127.0.0.1",
		"http://169.254.169.254/latest/meta-data/",
		"http://localhost:5432",
		"http://[::1]/",
	}
	for _, rawURL := range blocked {
		if err := guard.ValidateURL(rawURL); err == nil {
			t.Errorf("ValidateURL(%q) = nil, want error", rawURL)
		}
	}
}

// TestValidateURL_RejectsBadSchemes はhttp/https以外のスキームが拒否されることを検証する。
func TestValidateURL_RejectsBadSchemes(t *testing.T) {
	guard := NewOutboundGuard()

	bad := []string{
		"ftp://example.com",
		"file:///etc/passwd",
		"javascript:alert(1)",
		"",
		"://missing-scheme",
	}
	for _, rawURL := range bad {
		if err := guard.ValidateURL(rawURL); err == nil {
			t.Errorf("ValidateURL(%q) = nil, want error", rawURL)
		}
	}
}

// TestNewSafeClient_ReturnsClient はSSRF防止付きクライアントが生成されることを検証する。
func TestNewSafeClient_ReturnsClient(t *testing.T) {
	guard := NewOutboundGuard()

	client := guard.NewSafeClient(10 * time.Second)
	if client == nil {
		t.Fatal("expected non-nil http.Client")
	}
}

// TestOutboundGuard_ImplementsInterface は実装がインターフェースを満たすことを検証する。
func TestOutboundGuard_ImplementsInterface(t *testing.T) {
	var _ OutboundGuardService = NewOutboundGuard()
}
