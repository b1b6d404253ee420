package identity

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// brandNames maps Chromium-based families to the display name they report
// in the sec-ch-ua brand list. Firefox and Safari never send one.
var brandNames = map[Family]string{
	FamilyChrome: "Google Chrome",
	FamilyEdge:   "Microsoft Edge",
	FamilyOpera:  "Opera",
}

// fillers are the characters Chromium intersperses into the grease brand
// label, observed across real sec-ch-ua values.
var fillers = []string{"", " ", "_", ";", "(", ")"}

// Brand is one client-hint brand/version pair.
type Brand struct {
	Name    string `json:"name"`
	Version int    `json:"version"`
}

// Brands is the ordered client-hint brand list. Order is randomized per
// synthesis call, mirroring the per-session brand shuffling Chromium
// performs to resist fingerprinting.
type Brands []Brand

// SynthesizeBrands builds the three-entry sec-ch-ua brand list for a
// Chromium-based browser: a randomized "Not A Brand" grease entry with a
// version in [1,100], the true brand with the browser's major version,
// and Chromium with the Chromium major version, uniformly shuffled.
// Returns nil for non-Chromium browsers.
func SynthesizeBrands(b Browser, rng *rand.Rand) Brands {
	if !b.UsesChromium() {
		return nil
	}

	grease := fillers[rng.IntN(len(fillers))] + "Not" +
		fillers[rng.IntN(len(fillers))] + "A" +
		fillers[rng.IntN(len(fillers))] + "Brand"

	brands := Brands{
		{Name: grease, Version: 1 + rng.IntN(100)},
		{Name: brandNames[b.Family], Version: b.Version},
		{Name: "Chromium", Version: b.ChromiumVersion},
	}
	rng.Shuffle(len(brands), func(i, j int) {
		brands[i], brands[j] = brands[j], brands[i]
	})
	return brands
}

// Header renders the brand list as a sec-ch-ua header value:
//
//	"Chromium"; v="119", " Not;A Brand"; v="42", "Google Chrome"; v="119"
func (bs Brands) Header() string {
	parts := make([]string, len(bs))
	for i, b := range bs {
		parts[i] = fmt.Sprintf(`"%s"; v="%d"`, b.Name, b.Version)
	}
	return strings.Join(parts, ", ")
}
