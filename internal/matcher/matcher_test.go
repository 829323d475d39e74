package matcher

import (
	"path/filepath"
	"testing"

	"github.com/xxxsen/vlink/internal/pattern"
	"go.uber.org/zap"
)

func newTestMatcher(t *testing.T) *Matcher {
	t.Helper()
	store := pattern.NewStore(filepath.Join(t.TempDir(), "url_patterns.json"))
	return NewMatcher(store)
}

func TestMatchService(t *testing.T) {
	m := newTestMatcher(t)

	tests := []struct {
		name    string
		url     string
		service string
		matched bool
	}{
		{"youtube watch", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "YouTube", true},
		{"youtube short link", "https://youtu.be/dQw4w9WgXcQ", "YouTube", true},
		{"youtube wrong service", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "VK", false},
		{"youtube unknown path", "https://youtube.com/not-a-real-path", "YouTube", false},
		{"vk video", "https://vk.com/video-123_456", "VK", true},
		{"substring must not match", "see https://youtu.be/dQw4w9WgXcQ please", "YouTube", false},
		{"unknown service name", "https://youtu.be/dQw4w9WgXcQ", "Nope", false},
	}
	for _, tt := range tests {
		if got := m.MatchService(tt.url, tt.service); got != tt.matched {
			t.Errorf("%s: MatchService(%s, %s) = %t, want %t", tt.name, tt.url, tt.service, got, tt.matched)
		}
	}
}

func TestMatchAny(t *testing.T) {
	m := newTestMatcher(t)

	service, ok := m.MatchAny("https://vimeo.com/12345678")
	if !ok || service != "Vimeo" {
		t.Fatalf("MatchAny = (%q, %t), want (Vimeo, true)", service, ok)
	}
	if _, ok := m.MatchAny("https://example.com/video/1"); ok {
		t.Fatal("expected no match for unknown url")
	}
}

func TestCompileIdempotent(t *testing.T) {
	m := newTestMatcher(t)
	m.Compile()
	before, okBefore := m.MatchAny("https://youtu.be/dQw4w9WgXcQ")
	m.Compile()
	after, okAfter := m.MatchAny("https://youtu.be/dQw4w9WgXcQ")
	if before != after || okBefore != okAfter {
		t.Fatalf("matching behaviour changed across Compile calls: (%q,%t) vs (%q,%t)",
			before, okBefore, after, okAfter)
	}
}

func TestCompileServiceFallback(t *testing.T) {
	// an uncompilable pattern breaks the combined form, the rest must
	// survive individually
	cs := compileService("test", []string{
		`^https?://good\.example/\d+$`,
		`^https?://broken\.example/[$`,
	}, zap.NewNop())
	if cs.combined != nil {
		t.Fatal("expected fallback variant")
	}
	if len(cs.fallback) != 1 {
		t.Fatalf("fallback length = %d, want 1", len(cs.fallback))
	}
	if !cs.match("https://good.example/42") {
		t.Fatal("surviving pattern should match")
	}
	if cs.match("https://broken.example/x") {
		t.Fatal("broken pattern should be degraded to no-match")
	}
}

func TestMatchedPattern(t *testing.T) {
	m := newTestMatcher(t)
	pat, ok := m.MatchedPattern("https://youtu.be/dQw4w9WgXcQ", "YouTube")
	if !ok {
		t.Fatal("expected a matched pattern")
	}
	if pat != `^https?://youtu\.be/[\w-]{11}(?:\?\S*)?$` {
		t.Fatalf("unexpected pattern %q", pat)
	}
	if _, ok := m.MatchedPattern("https://youtube.com/not-a-real-path", "YouTube"); ok {
		t.Fatal("expected no matched pattern")
	}
}
