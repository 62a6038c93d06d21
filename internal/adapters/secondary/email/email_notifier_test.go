package email

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncatePreview(t *testing.T) {
	t.Run("short content passes through", func(t *testing.T) {
		assert.Equal(t, "refund please", truncatePreview("refund please"))
	})

	t.Run("long content is capped at the limit", func(t *testing.T) {
		long := strings.Repeat("a", previewLimit+50)
		assert.Equal(t, strings.Repeat("a", previewLimit), truncatePreview(long))
	})

	t.Run("multi-byte runes are never split", func(t *testing.T) {
		long := strings.Repeat("ä", previewLimit+1)

		got := truncatePreview(long)

		assert.True(t, utf8.ValidString(got))
		assert.Equal(t, previewLimit, utf8.RuneCountInString(got))
	})
}
