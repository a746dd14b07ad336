// Package linkinfo classifies outbound URLs by hostname so the UI can
// render a recognizable icon, label and accent color per link.
package linkinfo

import (
	"net/url"
	"strings"
)

// Info describes how a link should be presented.
type Info struct {
	// Name is the display label, used when a link carries no title.
	Name string

	// Icon is the identifier of the icon glyph rendered next to the link.
	Icon string

	// Color is the CSS color of the icon.
	Color string
}

type rule struct {
	hosts []string
	info  Info
}

// Rules are matched in order against the hostname; the first match wins.
var rules = []rule{
	{hosts: []string{"youtube.com", "youtu.be"}, info: Info{Name: "YouTube", Icon: "youtube", Color: "#DC2626"}},
	{hosts: []string{"spotify.com"}, info: Info{Name: "Spotify", Icon: "music", Color: "#22C55E"}},
	{hosts: []string{"github.com"}, info: Info{Name: "GitHub", Icon: "github", Color: "#1F2937"}},
	{hosts: []string{"twitter.com", "x.com"}, info: Info{Name: "Twitter", Icon: "twitter", Color: "#60A5FA"}},
	{hosts: []string{"instagram.com"}, info: Info{Name: "Instagram", Icon: "instagram", Color: "#DB2777"}},
	{hosts: []string{"facebook.com"}, info: Info{Name: "Facebook", Icon: "facebook", Color: "#2563EB"}},
}

// Generic is the fallback classification for unrecognized or
// unparseable URLs.
var Generic = Info{Name: "Link", Icon: "link", Color: "#4B5563"}

// Classify maps a URL to its presentation info. A URL that cannot be
// parsed, or whose hostname matches no known platform, classifies as
// the generic link.
func Classify(rawURL string) Info {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Hostname() == "" {
		return Generic
	}

	hostname := strings.ToLower(parsed.Hostname())
	for _, r := range rules {
		for _, host := range r.hosts {
			if strings.Contains(hostname, host) {
				return r.info
			}
		}
	}

	return Generic
}
