package httputil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeaderPresets(t *testing.T) {
	h := HTMLHeaders()
	assert.Equal(t, "text/html", h.Get("Accept"))
	assert.Equal(t, "gzip, deflate, br", h.Get("Accept-Encoding"))

	j := JSONHeaders()
	assert.Equal(t, "application/json", j.Get("Accept"))
	assert.Equal(t, "gzip, deflate, br", j.Get("Accept-Encoding"))

	// Each call returns a fresh header set.
	h.Set("Accept", "mutated")
	assert.Equal(t, "text/html", HTMLHeaders().Get("Accept"))
}
