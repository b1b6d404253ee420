package identity

import (
	"net/http"
	"strings"
)

// ApplyHeaders augments h with the persona's identity headers.
//
// Keys the caller already set are left untouched ("set if absent"
// throughout), with one exception: a non-Chromium persona strips every
// pre-set sec-* header unconditionally, because a Firefox or Safari
// identity that sends sec-ch-ua is itself a fingerprinting tell.
// The operation is idempotent and cannot fail.
func (p *Persona) ApplyHeaders(h http.Header) {
	setIfAbsent(h, "Accept-Language", "en-US,en;q=0.9")
	setIfAbsent(h, "DNT", "1")
	setIfAbsent(h, "User-Agent", p.UserAgent)

	if !p.Browser.UsesChromium() {
		stripSecHeaders(h)
		return
	}

	mobile := "?0"
	if p.Platform.Mobile {
		mobile = "?1"
	}
	setIfAbsent(h, "Sec-Ch-Ua", p.Brands.Header())
	setIfAbsent(h, "Sec-Ch-Ua-Mobile", mobile)
	setIfAbsent(h, "Sec-Ch-Ua-Platform", `"`+p.Platform.Type+`"`)
}

func setIfAbsent(h http.Header, key, value string) {
	if h.Get(key) == "" {
		h.Set(key, value)
	}
}

func stripSecHeaders(h http.Header) {
	var doomed []string
	for k := range h {
		if strings.HasPrefix(strings.ToLower(k), "sec-") {
			doomed = append(doomed, k)
		}
	}
	for _, k := range doomed {
		h.Del(k)
	}
}
