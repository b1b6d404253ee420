package miner

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/dk9977/maskedminers/internal/httputil"
	"github.com/dk9977/maskedminers/internal/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPage = `<!DOCTYPE html>
<html>
<head><title> Market Listings </title></head>
<body>
<a href="/items/1">one</a>
<a href="/items/1">dup</a>
<a href="https://other.example/x">ext</a>
<a href="mailto:root@example.com">mail</a>
<a href="">empty</a>
</body>
</html>`

func newTestMiner(t *testing.T, ua string, opts Options) *Miner {
	t.Helper()
	persona := identity.FromUserAgent(ua, testRand())
	client := httputil.NewHTTPClient(&MaskedTransport{Persona: persona})
	return New(client, persona, opts)
}

func TestFetchPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(testPage))
	}))
	defer srv.Close()

	m := newTestMiner(t, uaChrome, Options{})
	page, doc, err := m.FetchPage(context.Background(), srv.URL+"/listings")
	require.NoError(t, err)
	require.NotNil(t, doc)

	assert.Equal(t, srv.URL+"/listings", page.URL)
	assert.Equal(t, http.StatusOK, page.StatusCode)
	assert.Equal(t, "text/html; charset=utf-8", page.ContentType)
	assert.Equal(t, "Market Listings", page.Title)
	assert.Equal(t, []string{srv.URL + "/items/1", "https://other.example/x"}, page.Links)
	assert.Equal(t, len(testPage), page.Bytes)
	assert.Equal(t, uaChrome, page.Identity)
	assert.False(t, page.FetchedAt.IsZero())
}

func TestFetchJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Write([]byte(`{"items": ["a", "b"], "total": 2}`))
	}))
	defer srv.Close()

	m := newTestMiner(t, uaChrome, Options{})
	var out struct {
		Items []string `json:"items"`
		Total int      `json:"total"`
	}
	require.NoError(t, m.FetchJSON(context.Background(), srv.URL, &out))
	assert.Equal(t, []string{"a", "b"}, out.Items)
	assert.Equal(t, 2, out.Total)
}

func TestFetchJSONBadPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>captcha</html>`))
	}))
	defer srv.Close()

	m := newTestMiner(t, uaChrome, Options{})
	var out map[string]any
	err := m.FetchJSON(context.Background(), srv.URL, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode JSON")
}

func TestPostForm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		assert.Equal(t, "search", r.PostForm.Get("action"))
		w.Write([]byte(`{"ok": true}`))
	}))
	defer srv.Close()

	m := newTestMiner(t, uaChrome, Options{})
	var out struct {
		OK bool `json:"ok"`
	}
	form := url.Values{"action": {"search"}}
	require.NoError(t, m.PostForm(context.Background(), srv.URL, form, &out))
	assert.True(t, out.OK)

	// nil target skips decoding
	require.NoError(t, m.PostForm(context.Background(), srv.URL, form, nil))
}

func TestMineAll(t *testing.T) {
	var mu sync.Mutex
	agents := map[string]bool{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		agents[r.Header.Get("User-Agent")] = true
		mu.Unlock()
		w.Write([]byte(`<html><head><title>` + r.URL.Path + `</title></head></html>`))
	}))
	defer srv.Close()

	m := newTestMiner(t, uaChrome, Options{MaxConcurrent: 2})
	urls := []string{srv.URL + "/a", srv.URL + "/b", srv.URL + "/c"}
	pages, err := m.MineAll(context.Background(), urls)
	require.NoError(t, err)
	require.Len(t, pages, 3)

	// Results keep input order regardless of completion order.
	for i, u := range urls {
		assert.Equal(t, u, pages[i].URL)
		assert.Equal(t, "/"+string('a'+byte(i)), pages[i].Title)
	}

	// Every request of the batch presented the same identity.
	assert.Len(t, agents, 1)
	assert.True(t, agents[uaChrome])
}

func TestMineAllPropagatesFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/bad" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`<html></html>`))
	}))
	defer srv.Close()

	m := newTestMiner(t, uaChrome, Options{Attempts: 1})
	_, err := m.MineAll(context.Background(), []string{srv.URL + "/ok", srv.URL + "/bad"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/bad")
}

func TestMineAllReportsProgress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html></html>`))
	}))
	defer srv.Close()

	var mu sync.Mutex
	var messages []string
	ctx := WithProgress(context.Background(), func(msg string) {
		mu.Lock()
		messages = append(messages, msg)
		mu.Unlock()
	})

	m := newTestMiner(t, uaChrome, Options{})
	_, err := m.MineAll(ctx, []string{srv.URL + "/a", srv.URL + "/b"})
	require.NoError(t, err)
	assert.Len(t, messages, 2)
}

func TestNewDefaults(t *testing.T) {
	m := New(http.DefaultClient, identity.FromUserAgent(uaChrome, testRand()), Options{})
	assert.Equal(t, 5, m.attempts)
	assert.Equal(t, 5, m.maxConcurrent)
	assert.NotNil(t, m.Persona())
}
