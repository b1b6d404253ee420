package miner

import (
	"fmt"
	"net/http"

	"github.com/dk9977/maskedminers/internal/identity"
	"github.com/dk9977/maskedminers/internal/stealth"
	"golang.org/x/time/rate"
)

// MaskedTransport is an http.RoundTripper that applies the full masking
// pipeline: Persona headers → RobotsCheck → RateLimiter → HumanDelay →
// Proxy → Send.
//
// One transport carries exactly one Persona for its whole lifetime, so
// every request through it presents the same identity. Rotating identity
// means building a new transport with a new persona, never swapping the
// persona in place.
type MaskedTransport struct {
	Base        http.RoundTripper
	Persona     *identity.Persona
	Robots      *stealth.RobotsChecker
	Proxy       *stealth.ProxyRotator
	Delay       *stealth.HumanDelay
	RateLimiter *rate.Limiter
}

func (t *MaskedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// 1. Apply the persona's identity headers (set-if-absent; strips
	// sec-* for non-Chromium identities).
	t.Persona.ApplyHeaders(req.Header)

	// 2. Check robots.txt against the identity the site sees
	if t.Robots != nil {
		allowed, err := t.Robots.IsAllowed(t.Persona.UserAgent, req.URL.String())
		if err == nil && !allowed {
			return nil, fmt.Errorf("blocked by robots.txt: %s", req.URL.Path)
		}
	}

	// 3. Wait for rate limiter token
	if t.RateLimiter != nil {
		if err := t.RateLimiter.Wait(req.Context()); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	// 4. Apply human-like delay
	if t.Delay != nil {
		if err := t.Delay.Wait(req.Context()); err != nil {
			return nil, fmt.Errorf("delay: %w", err)
		}
	}

	// 5. Route through proxy if configured
	transport := t.Base
	if t.Proxy != nil {
		transport = t.Proxy.Next().Transport()
	}
	if transport == nil {
		transport = http.DefaultTransport
	}

	return transport.RoundTrip(req)
}
