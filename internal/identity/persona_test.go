package identity

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPersonaLazyLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"ua": "`+uaChromeWin+`", "pct": 100}]`), 0o644))

	cat := NewCatalog(path)
	require.Equal(t, 0, cat.Len())

	p, err := NewPersona(cat, testRand())
	require.NoError(t, err)
	assert.Equal(t, 1, cat.Len(), "first draw loads the corpus file")
	assert.Equal(t, uaChromeWin, p.UserAgent)
	assert.Equal(t, FamilyChrome, p.Browser.Family)
	assert.Len(t, p.Brands, 3)
}

func TestNewPersonaMissingCorpus(t *testing.T) {
	cat := NewCatalog(filepath.Join(t.TempDir(), "missing.json"))
	_, err := NewPersona(cat, testRand())
	assert.Error(t, err)
}

func TestNewPersonaEmptyCorpus(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.json")
	require.NoError(t, os.WriteFile(path, []byte(`[]`), 0o644))

	_, err := NewPersona(NewCatalog(path), testRand())
	assert.ErrorIs(t, err, ErrEmptyCatalog)
}

func TestFromUserAgentConsistency(t *testing.T) {
	rng := testRand()
	for _, ua := range []string{uaChromeWin, uaEdgeWin, uaOperaWin, uaFirefoxWin, uaSafariMac} {
		p := FromUserAgent(ua, rng)
		assert.Equal(t, ua, p.UserAgent)
		if p.Browser.UsesChromium() {
			assert.Len(t, p.Brands, 3, "ua: %s", ua)
		} else {
			assert.Nil(t, p.Brands, "ua: %s", ua)
		}
	}
}

func TestNewRandIndependentSources(t *testing.T) {
	// Two sources must not be identically seeded.
	a, b := NewRand(), NewRand()
	same := true
	for range 8 {
		if a.Uint64() != b.Uint64() {
			same = false
			break
		}
	}
	assert.False(t, same)
}
