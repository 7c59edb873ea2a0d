package security

import (
	"strings"
	"testing"
)

// TestSanitizeTitle_StripsAllHTML はタイトルから全タグが除去されることを検証する。
func TestSanitizeTitle_StripsAllHTML(t *testing.T) {
	s := NewContentSanitizer()

	got := s.SanitizeTitle(`<strong>My</strong> <script>alert(1)</script>Portfolio`)
	if strings.Contains(got, "<") {
		t.Errorf("title still contains markup: %q", got)
	}
	if !strings.Contains(got, "My") || !strings.Contains(got, "Portfolio") {
		t.Errorf("title text lost: %q", got)
	}
}

// TestSanitizeDescription_RemovesScript はscriptタグが除去されることを検証する。
func TestSanitizeDescription_RemovesScript(t *testing.T) {
	s := NewContentSanitizer()

	got := s.SanitizeDescription(`<p>hello</p><script>alert("xss")</script>`)
	if strings.Contains(got, "script") {
		t.Errorf("script survived sanitization: %q", got)
	}
	if !strings.Contains(got, "<p>hello</p>") {
		t.Errorf("allowed tag was removed: %q", got)
	}
}

// TestSanitizeDescription_RemovesEventAttributes はon*イベント属性が除去されることを検証する。
func TestSanitizeDescription_RemovesEventAttributes(t *testing.T) {
	s := NewContentSanitizer()

	got := s.SanitizeDescription(`<p onclick="alert(1)">text</p>`)
	if strings.Contains(got, "onclick") {
		t.Errorf("event attribute survived: %q", got)
	}
}

// TestSanitizeDescription_KeepsAllowedTags は許可タグが保持されることを検証する。
func TestSanitizeDescription_KeepsAllowedTags(t *testing.T) {
	s := NewContentSanitizer()

	input := `<ul><li><strong>bold</strong> and <em>italic</em></li></ul><pre><code>x := 1</code></pre>`
	got := s.SanitizeDescription(input)
	for _, tag := range []string{"<ul>", "<li>", "<strong>", "<em>", "<pre>", "<code>"} {
		if !strings.Contains(got, tag) {
			t.Errorf("allowed tag %s was removed: %q", tag, got)
		}
	}
}

// TestSanitizeDescription_LinksGetSafeRel はリンクに安全なrel属性が付与されることを検証する。
func TestSanitizeDescription_LinksGetSafeRel(t *testing.T) {
	s := NewContentSanitizer()

	got := s.SanitizeDescription(`<a href="https://example.com">site</a>`)
	if !strings.Contains(got, `href="https://example.com"`) {
		t.Errorf("href lost: %q", got)
	}
	if !strings.Contains(got, "noopener") || !strings.Contains(got, "noreferrer") {
		t.Errorf("rel attributes missing: %q", got)
	}
	if !strings.Contains(got, `target="_blank"`) {
		t.Errorf("target=_blank missing: %q", got)
	}
}

// TestSanitizeDescription_Idempotent は二重適用で出力が変わらないことを検証する。
func TestSanitizeDescription_Idempotent(t *testing.T) {
	s := NewContentSanitizer()

	input := `<p>desc</p><iframe src="https://evil.example"></iframe>`
	once := s.SanitizeDescription(input)
	twice := s.SanitizeDescription(once)
	if once != twice {
		t.Errorf("sanitization is not idempotent: %q vs %q", once, twice)
	}
}

// TestContentSanitizer_ImplementsInterface は実装がインターフェースを満たすことを検証する。
func TestContentSanitizer_ImplementsInterface(t *testing.T) {
	var _ ContentSanitizerService = NewContentSanitizer()
}
