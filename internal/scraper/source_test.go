package scraper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSourceName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"https://www.linkedin.com/company/foo-bar/posts/?feedView=all", "Foo Bar"},
		{"https://www.linkedin.com/in/jane-doe/recent-activity/all/", "Jane Doe"},
		{"https://www.linkedin.com/company/how-to-ai-guide/posts/?feedView=all&viewAsMember=true", "How To Ai Guide"},
		{"https://www.linkedin.com/in/midudev/recent-activity/all/", "Midudev"},
		{"https://www.linkedin.com/company/ai2go?trk=x", "Ai2Go"},
		{"https://www.linkedin.com/in/McDONALD-jr", "Mcdonald Jr"},
		{"https://www.linkedin.com/feed/", FallbackSourceName},
		{"https://www.linkedin.com/company/", FallbackSourceName},
		{"", FallbackSourceName},
	}

	for _, tt := range tests {
		result := SourceName(tt.input)
		assert.Equal(t, tt.expected, result, "SourceName(%q)", tt.input)
		// повторный вызов даёт тот же результат
		assert.Equal(t, result, SourceName(tt.input))
	}
}

func TestNamerFormat(t *testing.T) {
	at := time.Date(2026, 10, 15, 9, 5, 7, 0, time.UTC)

	name := NewNamer().Next("How To Ai Guide", 2, at)

	assert.Equal(t, "pub_How_To_Ai_Guide_2_20261015_090507.png", name)
}

func TestNamerUniqueForSharedDisplayNames(t *testing.T) {
	at := time.Date(2026, 10, 15, 9, 5, 7, 0, time.UTC)
	n := NewNamer()

	seen := map[string]bool{}
	for source := 0; source < 3; source++ {
		for idx := 1; idx <= 3; idx++ {
			name := n.Next("Foo Bar", idx, at)
			assert.False(t, seen[name], "duplicate %s", name)
			seen[name] = true
		}
	}
	assert.Len(t, seen, 9)
	assert.True(t, seen["pub_Foo_Bar_1_20261015_090507_2.png"])
}

func TestNamerReplacesUnsafeCharacters(t *testing.T) {
	at := time.Date(2026, 10, 15, 9, 5, 7, 0, time.UTC)

	assert.Equal(t, "pub_Jos__Mar_a_1_20261015_090507.png", NewNamer().Next("José María", 1, at))
}

func TestPlaceholderPost(t *testing.T) {
	p := PlaceholderPost()

	assert.Equal(t, "Sistema", p.Source)
	assert.Equal(t, PlaceholderText, p.Text)
	assert.Empty(t, p.Screenshot)
}
