package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	uaEdgeWin    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/119.0.0.0 Safari/537.36 Edg/119.0.2151.58"
	uaFirefoxWin = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:109.0) Gecko/20100101 Firefox/120.0"
	uaChromeWin  = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36"
	uaChromeNix  = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36"
	uaOperaWin   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36 OPR/105.0.0.0"
	uaSafariMac  = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15"
	uaChromeDroid = "Mozilla/5.0 (Linux; Android 14; Pixel 7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/128.0.0.0 Mobile Safari/537.36"
)

func TestParseBrowser(t *testing.T) {
	tests := []struct {
		name string
		ua   string
		want Browser
	}{
		{
			// Edge carries a Chrome token too; the brand token must win.
			name: "edge on windows",
			ua:   uaEdgeWin,
			want: Browser{Family: FamilyEdge, Version: 119, ChromiumVersion: 119},
		},
		{
			name: "firefox on windows",
			ua:   uaFirefoxWin,
			want: Browser{Family: FamilyFirefox, Version: 120, ChromiumVersion: -1},
		},
		{
			name: "chrome on windows",
			ua:   uaChromeWin,
			want: Browser{Family: FamilyChrome, Version: 119, ChromiumVersion: 119},
		},
		{
			name: "opera on windows",
			ua:   uaOperaWin,
			want: Browser{Family: FamilyOpera, Version: 105, ChromiumVersion: 119},
		},
		{
			// Safari's own token carries the WebKit build number.
			name: "safari on mac",
			ua:   uaSafariMac,
			want: Browser{Family: FamilySafari, Version: 605, ChromiumVersion: -1},
		},
		{
			name: "no recognizable token",
			ua:   "curl/8.4.0",
			want: Browser{Family: FamilyNone, Version: -1, ChromiumVersion: -1},
		},
		{
			name: "empty string",
			ua:   "",
			want: Browser{Family: FamilyNone, Version: -1, ChromiumVersion: -1},
		},
		{
			// A malformed version field degrades to -1 instead of
			// aborting identification.
			name: "unparseable firefox version",
			ua:   "Mozilla/5.0 (Windows NT 10.0) Gecko/20100101 Firefox/x.0",
			want: Browser{Family: FamilyFirefox, Version: -1, ChromiumVersion: -1},
		},
		{
			name: "truncated after token",
			ua:   "Firefox",
			want: Browser{Family: FamilyFirefox, Version: -1, ChromiumVersion: -1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseBrowser(tt.ua))
		})
	}
}

func TestParseBrowserChromiumInvariant(t *testing.T) {
	// ChromiumVersion >= 0 exactly for the Chromium families.
	uas := []string{uaEdgeWin, uaFirefoxWin, uaChromeWin, uaChromeNix, uaOperaWin, uaSafariMac, uaChromeDroid, "curl/8.4.0", ""}
	for _, ua := range uas {
		b := ParseBrowser(ua)
		chromiumFamily := b.Family == FamilyChrome || b.Family == FamilyEdge || b.Family == FamilyOpera
		assert.Equal(t, chromiumFamily, b.UsesChromium(), "ua: %s", ua)
	}
}

func TestParsePlatform(t *testing.T) {
	tests := []struct {
		name string
		ua   string
		want Platform
	}{
		{
			name: "windows",
			ua:   uaEdgeWin,
			want: Platform{Type: "Windows NT 10.0", OS: "Windows", OSVersion: "NT 10.0; Win64; x64"},
		},
		{
			name: "macintosh",
			ua:   uaSafariMac,
			want: Platform{Type: "Macintosh", OS: "Intel Mac OS X", OSVersion: "10_15_7"},
		},
		{
			name: "linux x11",
			ua:   uaChromeNix,
			want: Platform{Type: "Linux", OS: "Linux"},
		},
		{
			// Android is not a recognized desktop marker: best-effort
			// type plus a truthful mobile flag.
			name: "android falls back",
			ua:   uaChromeDroid,
			want: Platform{Type: "Mozilla/5.0", Mobile: true},
		},
		{
			name: "no parentheses falls back to first token",
			ua:   "curl/8.4.0 something",
			want: Platform{Type: "curl/8.4.0"},
		},
		{
			name: "empty string",
			ua:   "",
			want: Platform{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParsePlatform(tt.ua))
		})
	}
}

func TestParseNeverPanics(t *testing.T) {
	for _, ua := range []string{"", "(", ")", "(((", "Firefox/", "Chrome/.", "Mozilla/5.0 (", "x Safari"} {
		assert.NotPanics(t, func() { Parse(ua) }, "ua: %q", ua)
	}
}
