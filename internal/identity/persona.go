package identity

import (
	"math/rand/v2"
	"time"
)

// Persona is one internally consistent emulated identity: a user-agent
// string drawn from the catalog, its parsed facts, and (for Chromium
// families) a synthesized client-hint brand list.
//
// A Persona is an immutable snapshot. Create one per logical session and
// reuse it for every request of that session so all of them present the
// same identity; never mutate it, and never share one across sessions
// that must look like distinct clients. Rotating identity means creating
// a new Persona.
type Persona struct {
	UserAgent string   `json:"user_agent"`
	Browser   Browser  `json:"browser"`
	Platform  Platform `json:"platform"`
	Brands    Brands   `json:"brands,omitempty"`
}

// NewPersona draws one entry from the catalog (loading the corpus file on
// first use), parses it, and synthesizes client hints when the identity
// is Chromium-based.
func NewPersona(cat *Catalog, rng *rand.Rand) (*Persona, error) {
	if cat.Len() == 0 {
		if err := cat.LoadFile(); err != nil {
			return nil, err
		}
	}
	entry, err := cat.Draw(rng)
	if err != nil {
		return nil, err
	}
	return FromUserAgent(entry.UA, rng), nil
}

// FromUserAgent builds a persona directly from a user-agent string,
// bypassing the catalog. Useful for pinning an identity or inspecting
// how a given string decomposes.
func FromUserAgent(ua string, rng *rand.Rand) *Persona {
	browser, platform := Parse(ua)
	return &Persona{
		UserAgent: ua,
		Browser:   browser,
		Platform:  platform,
		Brands:    SynthesizeBrands(browser, rng),
	}
}

// NewRand returns a freshly seeded random source suitable for persona
// draws and hint synthesis. Tests inject their own seeded source instead.
func NewRand() *rand.Rand {
	return rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64()))
}
