package identity

import (
	"encoding/json"
	"errors"
	"io"
	"math/rand/v2"
	"os"
	"sync"
	"time"
)

// ErrEmptyCatalog is returned by Draw when no entries are loaded.
var ErrEmptyCatalog = errors.New("identity: catalog has no entries")

// FormatError reports a corpus payload that could not be decoded into
// weighted user-agent records.
type FormatError struct {
	Err error
}

func (e *FormatError) Error() string { return "identity: decode corpus: " + e.Err.Error() }
func (e *FormatError) Unwrap() error { return e.Err }

// Entry is one weighted user-agent record. Weights are relative shares
// (the corpus source publishes usage percentages); they need not sum to 1.
type Entry struct {
	UA  string  `json:"ua"`
	Pct float64 `json:"pct"`
}

// Catalog is the weighted pool of known user-agent strings.
//
// One catalog instance is constructed at startup and passed by reference
// to persona construction; it is never package-global state. The internal
// RWMutex keeps concurrent draws memory-safe against a reload, but a
// refresh should still run only when no mining batch is in flight so that
// all requests of one batch draw from one corpus generation.
type Catalog struct {
	mu          sync.RWMutex
	path        string
	entries     []Entry
	total       float64
	refreshedAt time.Time
}

// NewCatalog creates a catalog backed by the corpus file at path.
// No entries are loaded until LoadFile (or Load) is called; persona
// construction triggers the first load lazily.
func NewCatalog(path string) *Catalog {
	return &Catalog{path: path}
}

// Load replaces all entries with records decoded from r.
// Returns a *FormatError when the payload cannot be decoded.
func (c *Catalog) Load(r io.Reader) error {
	var entries []Entry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return &FormatError{Err: err}
	}

	var total float64
	for _, e := range entries {
		if e.Pct > 0 {
			total += e.Pct
		}
	}

	c.mu.Lock()
	c.entries = entries
	c.total = total
	c.refreshedAt = time.Now()
	c.mu.Unlock()
	return nil
}

// LoadFile loads (or reloads) the corpus from the backing file.
func (c *Catalog) LoadFile() error {
	f, err := os.Open(c.path)
	if err != nil {
		return err
	}
	defer f.Close()
	return c.Load(f)
}

// Path returns the backing corpus file path.
func (c *Catalog) Path() string { return c.path }

// Len returns the number of loaded entries.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Draw selects one entry at random with probability proportional to its
// weight (selection with replacement). Entries with non-positive weight
// are never drawn unless the whole corpus has no positive weight, in
// which case the draw degrades to uniform.
func (c *Catalog) Draw(rng *rand.Rand) (Entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.entries) == 0 {
		return Entry{}, ErrEmptyCatalog
	}
	if c.total <= 0 {
		return c.entries[rng.IntN(len(c.entries))], nil
	}

	target := rng.Float64() * c.total
	for _, e := range c.entries {
		if e.Pct <= 0 {
			continue
		}
		target -= e.Pct
		if target < 0 {
			return e, nil
		}
	}
	// Floating-point slack lands on the last weighted entry.
	for i := len(c.entries) - 1; i >= 0; i-- {
		if c.entries[i].Pct > 0 {
			return c.entries[i], nil
		}
	}
	return c.entries[len(c.entries)-1], nil
}

// IsStale reports whether a corpus refresh is due: true when neither an
// in-process refresh nor the backing file's modification time is younger
// than maxAge. A missing backing file is always stale.
func (c *Catalog) IsStale(maxAge time.Duration) bool {
	c.mu.RLock()
	refreshedAt := c.refreshedAt
	c.mu.RUnlock()

	if !refreshedAt.IsZero() && time.Since(refreshedAt) < maxAge {
		return false
	}
	fi, err := os.Stat(c.path)
	if err != nil {
		return true
	}
	return time.Since(fi.ModTime()) >= maxAge
}

// MarkRefreshed resets the staleness clock without reloading from disk.
// The collector calls this after it has both rewritten the corpus file
// and handed the fresh payload to Load.
func (c *Catalog) MarkRefreshed() {
	c.mu.Lock()
	c.refreshedAt = time.Now()
	c.mu.Unlock()
}
