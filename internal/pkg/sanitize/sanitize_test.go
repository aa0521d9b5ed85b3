package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Q3 Roadmap (final).pptx", "Q3-Roadmap-final-.pptx"},
		{"deck.pptx", "deck.pptx"},
		{"a  b.pptx", "a-b.pptx"},
		{"über deck.pptx", "-ber-deck.pptx"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FileName(tt.in), "input %q", tt.in)
	}
}

func TestFolderName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"My Deck!!.pptx", "My-Deck"},
		{"simple.pptx", "simple"},
		{"  spaced  out  .pptx", "spaced-out"},
		{"v2.1-release.pptx", "v2-1-release"},
		{"dir/inner deck.pptx", "inner-deck"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FolderName(tt.in), "input %q", tt.in)
	}
}

func TestUserKey(t *testing.T) {
	assert.Equal(t, "jane_doe_example_com", UserKey("Jane.Doe@example.com"))
	assert.Equal(t, "a_b_c", UserKey("a+b@c"))

	// Distinct addresses may fold to the same key.
	assert.Equal(t, UserKey("jane.doe@x.com"), UserKey("jane_doe@x.com"))
}
