// Package identity implements the browser-identity emulation engine: a
// weighted catalog of real-world user-agent strings, a parser that
// decomposes one string into browser and platform facts, a client-hint
// brand synthesizer for Chromium-family browsers, and the header policy
// that assembles a consistent outbound header set from all of the above.
package identity

import (
	"strconv"
	"strings"

	"go.uber.org/zap"
)

var log = zap.NewNop()

// SetLogger routes the package's diagnostic output (unparseable platform
// sections, empty user-agents) to l. Diagnostics are never fatal.
func SetLogger(l *zap.Logger) {
	if l != nil {
		log = l
	}
}

// Family identifies a browser family detected in a user-agent string.
type Family int

const (
	FamilyNone Family = iota
	FamilyChrome
	FamilyEdge
	FamilyFirefox
	FamilyOpera
	FamilySafari
)

// familyTokens are the user-agent product tokens that identify each family.
// Edge and Opera use their Chromium-era tokens ("Edg", "OPR").
var familyTokens = map[Family]string{
	FamilyChrome:  "Chrome",
	FamilyEdge:    "Edg",
	FamilyFirefox: "Firefox",
	FamilyOpera:   "OPR",
	FamilySafari:  "Safari",
}

func (f Family) String() string {
	switch f {
	case FamilyChrome:
		return "chrome"
	case FamilyEdge:
		return "edge"
	case FamilyFirefox:
		return "firefox"
	case FamilyOpera:
		return "opera"
	case FamilySafari:
		return "safari"
	}
	return "none"
}

// Browser holds the browser facts parsed from a user-agent string.
type Browser struct {
	Family Family `json:"family"`
	// Version is the major version, or -1 when unknown.
	Version int `json:"version"`
	// ChromiumVersion is the major Chromium version, or -1 when the
	// browser is not Chromium-based.
	ChromiumVersion int `json:"chromium_version"`
}

// UsesChromium reports whether the browser is Chromium-based. Only
// Chromium-based browsers send sec-ch-ua client-hint headers.
func (b Browser) UsesChromium() bool { return b.ChromiumVersion >= 0 }

// Platform holds the platform facts parsed from a user-agent string.
// OS and OSVersion may be empty when the system-info section does not
// match a known pattern; Type always carries at least a best-effort guess
// for non-empty input.
type Platform struct {
	Type      string `json:"type"`
	OS        string `json:"os,omitempty"`
	OSVersion string `json:"os_version,omitempty"`
	Mobile    bool   `json:"mobile"`
}

// Parse decomposes a user-agent string into browser and platform facts.
// It never fails: unrecognized input degrades to FamilyNone / unknown
// versions with a diagnostic logged.
func Parse(ua string) (Browser, Platform) {
	return ParseBrowser(ua), ParsePlatform(ua)
}

// ParseBrowser detects the browser family and major versions.
//
// Order matters: Edge and Opera user-agents also carry a Chrome token
// (both are Chromium-based), so their brand tokens must win over the
// generic Chromium token. Firefox strings never contain Chrome or Safari
// tokens, so checking it first short-circuits the rest.
func ParseBrowser(ua string) Browser {
	b := Browser{Family: FamilyNone, Version: -1, ChromiumVersion: -1}

	if strings.Contains(ua, familyTokens[FamilyFirefox]) {
		b.Family = FamilyFirefox
		b.Version = majorAfter(ua, familyTokens[FamilyFirefox])
		return b
	}

	for _, f := range []Family{FamilyEdge, FamilyOpera} {
		if strings.Contains(ua, familyTokens[f]) {
			b.Family = f
			b.Version = majorAfter(ua, familyTokens[f])
			break
		}
	}

	if strings.Contains(ua, familyTokens[FamilyChrome]) {
		b.ChromiumVersion = majorAfter(ua, familyTokens[FamilyChrome])
		if b.Family == FamilyNone {
			// A bare Chrome token means Chrome itself.
			b.Family = FamilyChrome
			b.Version = b.ChromiumVersion
		}
	} else if b.Family == FamilyNone && strings.Contains(ua, familyTokens[FamilySafari]) {
		b.Family = FamilySafari
		b.Version = majorAfter(ua, familyTokens[FamilySafari])
	}

	return b
}

// majorAfter extracts the major version that follows token and its
// separator ("Chrome/119.0.0.0" -> 119). Returns -1 when the token is
// absent or the digits cannot be parsed; a malformed field never aborts
// identification.
func majorAfter(ua, token string) int {
	i := strings.Index(ua, token)
	if i < 0 {
		return -1
	}
	rest := ua[i+len(token):]
	if len(rest) < 2 {
		return -1
	}
	rest = rest[1:] // skip the "/" separator
	if j := strings.IndexByte(rest, '.'); j >= 0 {
		rest = rest[:j]
	}
	if j := strings.IndexByte(rest, ' '); j >= 0 {
		rest = rest[:j]
	}
	v, err := strconv.Atoi(rest)
	if err != nil {
		return -1
	}
	return v
}

// ParsePlatform extracts platform facts from the parenthesized system-info
// section of a user-agent string.
func ParsePlatform(ua string) Platform {
	var p Platform
	if ua == "" {
		log.Warn("empty user-agent string")
		return p
	}

	info := systemInfo(ua)
	switch {
	case strings.Contains(info, "Windows"):
		p.Type, _, _ = strings.Cut(info, ";")
		p.OS, p.OSVersion, _ = strings.Cut(info, " ")
	case strings.Contains(info, "Macintosh"):
		p.Type = "Macintosh"
		// "Macintosh; Intel Mac OS X 10_15_7" -> OS "Intel Mac OS X",
		// version "10_15_7".
		if _, rest, ok := strings.Cut(info, "; "); ok {
			if j := strings.LastIndexByte(rest, ' '); j >= 0 {
				p.OS, p.OSVersion = rest[:j], rest[j+1:]
			} else {
				p.OS = rest
			}
		}
	case strings.Contains(info, "X11"):
		p.Type = "Linux"
		if fields := strings.SplitN(info, " ", 3); len(fields) > 1 {
			p.OS = strings.Trim(fields[1], ";")
		}
	default:
		log.Warn("unrecognized system-info section", zap.String("system_info", info), zap.String("ua", ua))
		p.Type, _, _ = strings.Cut(ua, " ")
	}

	p.Mobile = strings.Contains(info, "Mobile") || strings.Contains(ua, " Mobile")
	return p
}

// systemInfo returns the text between the first "(" and the next ")".
// A user-agent without parentheses yields the whole string, which then
// falls through to the unrecognized-platform branch.
func systemInfo(ua string) string {
	if _, after, ok := strings.Cut(ua, "("); ok {
		if inner, _, ok := strings.Cut(after, ")"); ok {
			return inner
		}
		return after
	}
	return ua
}
