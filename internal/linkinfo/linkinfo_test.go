package linkinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyKnownPlatforms(t *testing.T) {
	testCases := []struct {
		name     string
		url      string
		expected Info
	}{
		{
			name:     "youtube",
			url:      "https://www.youtube.com/watch?v=abc",
			expected: Info{Name: "YouTube", Icon: "youtube", Color: "#DC2626"},
		},
		{
			name:     "youtube short host",
			url:      "https://youtu.be/abc",
			expected: Info{Name: "YouTube", Icon: "youtube", Color: "#DC2626"},
		},
		{
			name:     "spotify",
			url:      "https://open.spotify.com/track/xyz",
			expected: Info{Name: "Spotify", Icon: "music", Color: "#22C55E"},
		},
		{
			name:     "github",
			url:      "https://github.com/some/repo",
			expected: Info{Name: "GitHub", Icon: "github", Color: "#1F2937"},
		},
		{
			name:     "twitter",
			url:      "https://twitter.com/someone",
			expected: Info{Name: "Twitter", Icon: "twitter", Color: "#60A5FA"},
		},
		{
			name:     "twitter rebranded host",
			url:      "https://x.com/someone",
			expected: Info{Name: "Twitter", Icon: "twitter", Color: "#60A5FA"},
		},
		{
			name:     "instagram",
			url:      "https://www.instagram.com/someone",
			expected: Info{Name: "Instagram", Icon: "instagram", Color: "#DB2777"},
		},
		{
			name:     "facebook",
			url:      "https://facebook.com/someone",
			expected: Info{Name: "Facebook", Icon: "facebook", Color: "#2563EB"},
		},
		{
			name:     "hostname matching is case-insensitive",
			url:      "https://GitHub.com/some/repo",
			expected: Info{Name: "GitHub", Icon: "github", Color: "#1F2937"},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.expected, Classify(testCase.url))
		})
	}
}

func TestClassifyFallsBackToGenericLink(t *testing.T) {
	testCases := []struct {
		name string
		url  string
	}{
		{name: "unrecognized hostname", url: "https://example.com/page"},
		{name: "malformed url", url: "::definitely not a url::"},
		{name: "empty string", url: ""},
		{name: "no hostname", url: "/relative/path"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, Generic, Classify(testCase.url))
		})
	}
}

func TestClassifyFirstMatchWins(t *testing.T) {
	// A hostname containing several platform substrings classifies by
	// rule order.
	assert.Equal(t, "YouTube", Classify("https://youtube.com.spotify.com/x").Name)
}
