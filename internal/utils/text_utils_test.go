package utils

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestTruncateText(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	short := tp.TruncateText("hello", 100)
	assert.Equal(t, "hello", short)

	long := tp.TruncateText(strings.Repeat("a", 50), 10)
	assert.True(t, strings.HasPrefix(long, "aaaaaaaaaa"))
	assert.Contains(t, long, "Content truncated")

	// A multi-byte rune straddling the cut point is dropped, not split.
	multibyte := tp.TruncateText("aaaa日本語", 5)
	assert.True(t, utf8.ValidString(multibyte))
	assert.True(t, strings.HasPrefix(multibyte, "aaaa"))
}

func TestTruncateTextNoLimit(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())
	assert.Equal(t, "untouched", tp.TruncateText("untouched", 0))
}

func TestSanitizeUTF8(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	assert.Equal(t, "clean text", tp.SanitizeUTF8("clean text"))

	dirty := "abc\xffdef"
	clean := tp.SanitizeUTF8(dirty)
	assert.True(t, utf8.ValidString(clean))
	assert.Equal(t, "abcdef", clean)
}

func TestProcessText(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	out := tp.ProcessText("short and valid", 100)
	assert.Equal(t, "short and valid", out)

	out = tp.ProcessText(strings.Repeat("x", 20)+"\xff", 10)
	assert.True(t, utf8.ValidString(out))
	assert.Contains(t, out, "Content truncated")
}
