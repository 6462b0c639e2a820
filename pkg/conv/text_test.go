package conv

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOneLine(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{"newline", "a\nb", 10, "a b"},
		{"crlf", "a\r\nb", 10, "a b"},
		{"bare cr", "a\rb", 10, "a b"},
		{"exact length", "abcde", 5, "abcde"},
		{"cut on runes", strings.Repeat("歌", 60), 50, strings.Repeat("歌", 50) + "..."},
		{"no limit", "a\nb" + strings.Repeat("x", 100), 0, "a b" + strings.Repeat("x", 100)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OneLine(tt.in, tt.limit))
		})
	}
}
