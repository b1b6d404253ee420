// Package miner fetches URLs while presenting one consistent browser
// identity per mining session. It is the glue between the identity
// engine and the HTTP transport: the engine decides what the headers
// say, the miner decides when and how requests go out.
package miner

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dk9977/maskedminers/internal/httputil"
	"github.com/dk9977/maskedminers/internal/identity"
	"github.com/dk9977/maskedminers/internal/models"
	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Miner mines URLs under a single persona. All requests issued by one
// Miner present the same identity; create a new Miner (with a new
// persona) to rotate.
type Miner struct {
	client        *http.Client
	persona       *identity.Persona
	limiter       *rate.Limiter
	attempts      int
	maxConcurrent int
}

// Options tunes a Miner. Zero values fall back to defaults.
type Options struct {
	Attempts      int           // total request attempts, default 5
	MaxConcurrent int           // concurrent fetches in MineAll, default 5
	Limiter       *rate.Limiter // batch pacing, optional
}

// New creates a Miner issuing requests through client under persona.
func New(client *http.Client, persona *identity.Persona, opts Options) *Miner {
	if opts.Attempts <= 0 {
		opts.Attempts = 5
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 5
	}
	return &Miner{
		client:        client,
		persona:       persona,
		limiter:       opts.Limiter,
		attempts:      opts.Attempts,
		maxConcurrent: opts.MaxConcurrent,
	}
}

// Persona returns the identity this miner presents.
func (m *Miner) Persona() *identity.Persona { return m.persona }

// FetchPage fetches one HTML page and returns its mined summary together
// with the parsed document.
func (m *Miner) FetchPage(ctx context.Context, pageURL string) (*models.Page, *html.Node, error) {
	start := time.Now()
	body, resp, err := m.get(ctx, pageURL, httputil.HTMLHeaders())
	if err != nil {
		return nil, nil, err
	}

	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return nil, nil, fmt.Errorf("parse HTML: %w", err)
	}

	page := &models.Page{
		URL:         pageURL,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Title:       pageTitle(doc),
		Links:       pageLinks(doc, pageURL),
		Bytes:       len(body),
		Identity:    m.persona.UserAgent,
		FetchedAt:   start,
		Elapsed:     time.Since(start).Seconds(),
	}
	return page, doc, nil
}

// FetchJSON fetches a JSON endpoint and decodes the response into v.
func (m *Miner) FetchJSON(ctx context.Context, endpoint string, v any) error {
	body, _, err := m.get(ctx, endpoint, httputil.JSONHeaders())
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode JSON from %s: %w", endpoint, err)
	}
	return nil
}

// PostForm sends a form-encoded POST under the persona and, when v is
// non-nil, decodes the JSON response into it.
func (m *Miner) PostForm(ctx context.Context, endpoint string, form url.Values, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	for k, vals := range httputil.JSONHeaders() {
		req.Header[k] = vals
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := httputil.DoWithRetry(m.client, req, m.attempts-1)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := httputil.ReadBody(resp)
	if err != nil {
		return err
	}
	if v == nil {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode JSON from %s: %w", endpoint, err)
	}
	return nil
}

// MineAll fetches multiple pages concurrently under the shared persona,
// bounded by the concurrency limit and the batch rate limiter.
func (m *Miner) MineAll(ctx context.Context, urls []string) ([]models.Page, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(m.maxConcurrent)

	pages := make([]models.Page, len(urls))
	for i, u := range urls {
		g.Go(func() error {
			if m.limiter != nil {
				if err := m.limiter.Wait(ctx); err != nil {
					return err
				}
			}
			page, _, err := m.FetchPage(ctx, u)
			if err != nil {
				return fmt.Errorf("mine %s: %w", u, err)
			}
			pages[i] = *page
			ReportProgress(ctx, fmt.Sprintf("Mined %s (%d bytes)", u, page.Bytes))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return pages, nil
}

func (m *Miner) get(ctx context.Context, rawURL string, base http.Header) ([]byte, *http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, nil, err
	}
	for k, vals := range base {
		req.Header[k] = vals
	}

	resp, err := httputil.DoWithRetry(m.client, req, m.attempts-1)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, err := httputil.ReadBody(resp)
	if err != nil {
		return nil, nil, err
	}
	return body, resp, nil
}

// pageTitle returns the text of the first <title> element.
func pageTitle(doc *html.Node) string {
	var title string
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "title" && n.FirstChild != nil {
			title = strings.TrimSpace(n.FirstChild.Data)
			return true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(doc)
	return title
}

// pageLinks collects absolute hrefs from anchor tags, resolved against
// the page URL.
func pageLinks(doc *html.Node, pageURL string) []string {
	base, err := url.Parse(pageURL)
	if err != nil {
		base = nil
	}

	seen := make(map[string]bool)
	var links []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key != "href" || attr.Val == "" {
					continue
				}
				ref, err := url.Parse(attr.Val)
				if err != nil {
					continue
				}
				if base != nil {
					ref = base.ResolveReference(ref)
				}
				if ref.Scheme != "http" && ref.Scheme != "https" {
					continue
				}
				s := ref.String()
				if !seen[s] {
					seen[s] = true
					links = append(links, s)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links
}
