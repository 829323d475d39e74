package classify

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xxxsen/vlink/internal/pattern"
)

func newTestClassifier(t *testing.T) (*Classifier, string) {
	t.Helper()
	dir := t.TempDir()
	store := pattern.NewStore(filepath.Join(dir, "url_patterns.json"))
	c := New(Options{
		Store:      store,
		CacheSize:  100,
		CacheTTL:   time.Minute,
		UnknownDir: dir,
	})
	return c, dir
}

func TestServiceName(t *testing.T) {
	c, _ := newTestClassifier(t)

	tests := []struct {
		name    string
		url     string
		service string
	}{
		{"youtube watch", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "YouTube"},
		{"youtube short", "https://youtu.be/dQw4w9WgXcQ", "YouTube"},
		{"vk video", "https://vk.com/video-123_456", "VK"},
		{"tiktok", "https://www.tiktok.com/@someone/video/123456", "TikTok"},
		{"bilibili", "https://www.bilibili.com/video/BV1xx411c7mD", "Bilibili"},
		{"domain known shape unknown", "https://youtube.com/not-a-real-path", "YouTube"},
		{"unsupported", "https://example.com/video/1", ServiceUnknown},
		{"empty", "", ServiceUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.service, c.ServiceName(tt.url), tt.name)
	}
}

func TestServiceNameDeterministic(t *testing.T) {
	c, _ := newTestClassifier(t)
	url := "https://youtube.com/not-a-real-path"
	first := c.ServiceName(url)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, c.ServiceName(url))
	}
}

func TestServiceNameSubstringFallback(t *testing.T) {
	c, dir := newTestClassifier(t)
	// host is not in the trie but the url embeds a known domain string
	service := c.ServiceName("https://proxy.example/fetch?target=rutube.ru/video/1")
	assert.Equal(t, "RuTube", service)

	data, err := os.ReadFile(filepath.Join(dir, "unknown_rutube_urls.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "proxy.example")
}

func TestValidate(t *testing.T) {
	c, _ := newTestClassifier(t)

	tests := []struct {
		name string
		url  string
		kind ErrorKind
		ok   bool
	}{
		{"valid youtube", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", 0, true},
		{"auto-corrected scheme", "youtube.com/watch?v=dQw4w9WgXcQ", 0, true},
		{"empty", "", KindEmptyInput, false},
		{"bad scheme", "ftp://youtube.com/watch?v=dQw4w9WgXcQ", KindMissingScheme, false},
		{"format mismatch", "https://youtube.com/not-a-real-path", KindFormatMismatch, false},
		{"unsupported", "https://example.com/video/1", KindUnsupportedService, false},
		{"unsupported after fix", "example.com/video/1", KindUnsupportedService, false},
	}
	for _, tt := range tests {
		err := c.Validate(tt.url)
		if tt.ok {
			assert.NoError(t, err, tt.name)
			continue
		}
		require.Error(t, err, tt.name)
		ve, isVE := err.(*ValidationError)
		require.True(t, isVE, tt.name)
		assert.Equal(t, tt.kind, ve.Kind, tt.name)
	}
}

func TestValidateFormatMismatchNamesService(t *testing.T) {
	c, _ := newTestClassifier(t)
	err := c.Validate("https://youtube.com/not-a-real-path")
	require.Error(t, err)
	ve := err.(*ValidationError)
	assert.Equal(t, KindFormatMismatch, ve.Kind)
	assert.Equal(t, "YouTube", ve.Service)
	assert.Contains(t, ve.Error(), "YouTube")
}

func TestLenientVsStrict(t *testing.T) {
	c, _ := newTestClassifier(t)
	url := "https://youtube.com/not-a-real-path"
	// best-effort label accepts the domain, strict validation rejects it
	assert.Equal(t, "YouTube", c.ServiceName(url))
	err := c.Validate(url)
	require.Error(t, err)
	assert.Equal(t, KindFormatMismatch, KindOf(err))
}

func TestUnknownFormatLogAppended(t *testing.T) {
	c, dir := newTestClassifier(t)
	c.ServiceName("https://youtube.com/not-a-real-path")
	c.ServiceName("https://youtube.com/another-bad-path")

	data, err := os.ReadFile(filepath.Join(dir, "unknown_youtube_urls.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "not-a-real-path")
	assert.Contains(t, string(data), "another-bad-path")
}

func TestInspect(t *testing.T) {
	c, _ := newTestClassifier(t)

	report := c.Inspect("https://youtu.be/dQw4w9WgXcQ")
	assert.True(t, report.Valid)
	assert.Equal(t, "YouTube", report.Service)
	assert.NotEmpty(t, report.MatchedPattern)

	report = c.Inspect("https://youtube.com/not-a-real-path")
	assert.False(t, report.Valid)
	assert.Equal(t, "YouTube", report.Service)
	assert.Contains(t, report.SuggestedPattern, `youtube\.com`)

	report = c.Inspect("")
	assert.False(t, report.Valid)
	assert.Equal(t, ServiceUnknown, report.Service)

	report = c.Inspect("youtube.com/watch")
	assert.False(t, report.Valid)
	assert.NotEmpty(t, report.Error)
}

func TestRegisterPattern(t *testing.T) {
	c, _ := newTestClassifier(t)
	require.NoError(t, c.RegisterPattern("YouTube", `^https?://youtu\.be/live/[\w-]+$`))
	require.Error(t, c.RegisterPattern("Nope", `^x$`))
}
