// Package collector refreshes the user-agent corpus from its public
// source. The statistics page embeds a JSON export of the most common
// desktop user-agents; the collector extracts that payload, validates it,
// and rewrites the corpus file the identity catalog loads from.
package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dk9977/maskedminers/internal/httputil"
	"github.com/dk9977/maskedminers/internal/identity"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

const (
	// SourceURL publishes the most-common desktop user-agent statistics
	// with an embedded JSON export.
	SourceURL = "https://www.useragents.me/"

	// sectionID is the id of the page section wrapping the JSON/CSV
	// export regions.
	sectionID = "most-common-desktop-useragents-json-csv"

	// updaterAgent identifies the refresh job. The corpus update itself
	// runs unmasked; there is nothing to hide from the corpus source.
	updaterAgent = "maskedminers-updater/1.0"
)

var errPayloadNotFound = errors.New("collector: user-agent JSON payload not found in page")

// Collector downloads and persists the user-agent corpus.
type Collector struct {
	client  *http.Client
	catalog *identity.Catalog
	log     *zap.Logger

	source   string
	headless bool
}

// Options tunes a Collector.
type Options struct {
	// Source overrides the statistics page URL (tests point it at a
	// local server).
	Source string
	// Headless enables the rendered-page fallback when static
	// extraction fails.
	Headless bool
}

// New creates a collector that refreshes catalog's backing file.
func New(client *http.Client, catalog *identity.Catalog, log *zap.Logger, opts Options) *Collector {
	if opts.Source == "" {
		opts.Source = SourceURL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Collector{
		client:   client,
		catalog:  catalog,
		log:      log,
		source:   opts.Source,
		headless: opts.Headless,
	}
}

// RefreshIfStale refreshes the corpus when the catalog reports it stale
// (or unconditionally when force is set). Reports whether a refresh ran.
//
// A refresh replaces the process-wide catalog contents; run it only when
// no mining batch is in flight so every batch draws from one corpus
// generation.
func (c *Collector) RefreshIfStale(ctx context.Context, maxAge time.Duration, force bool) (bool, error) {
	if !force && !c.catalog.IsStale(maxAge) {
		return false, nil
	}
	if err := c.Refresh(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// Refresh downloads the statistics page, extracts the JSON payload,
// validates it, rewrites the corpus file, and reloads the catalog.
func (c *Collector) Refresh(ctx context.Context) error {
	payload, err := c.staticPayload(ctx)
	if err != nil && c.headless {
		c.log.Warn("static corpus extraction failed, falling back to headless render", zap.Error(err))
		payload, err = c.headlessPayload(ctx)
	}
	if err != nil {
		return err
	}

	// Validate before touching the corpus file: a payload that does not
	// decode must never clobber a working corpus.
	var entries []identity.Entry
	if err := json.Unmarshal([]byte(payload), &entries); err != nil {
		return &identity.FormatError{Err: err}
	}
	if len(entries) == 0 {
		return &identity.FormatError{Err: errors.New("payload decoded to zero entries")}
	}

	if err := writeFileAtomic(c.catalog.Path(), []byte(payload)); err != nil {
		return fmt.Errorf("persist corpus: %w", err)
	}

	if err := c.catalog.Load(strings.NewReader(payload)); err != nil {
		return err
	}
	c.catalog.MarkRefreshed()

	c.log.Info("user-agent corpus refreshed",
		zap.Int("entries", len(entries)),
		zap.String("path", c.catalog.Path()),
		zap.String("source", c.source))
	return nil
}

// staticPayload fetches the statistics page and extracts the JSON export
// from its DOM. When the document will not yield the payload through the
// parser (the source has been observed serving responses the DOM walk
// cannot place), a raw marker scan of the body runs as a fallback.
func (c *Collector) staticPayload(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.source, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", updaterAgent)
	req.Header.Set("Connection", "close")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch corpus source: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("corpus source status %d", resp.StatusCode)
	}

	body, err := httputil.ReadBody(resp)
	if err != nil {
		return "", fmt.Errorf("read corpus source: %w", err)
	}

	payload, err := extractPayload(body)
	if err != nil {
		return extractPayloadRaw(string(body))
	}
	return payload, nil
}

// extractPayload walks the parsed page for the export section and returns
// the textarea content of its "JSON" region.
func extractPayload(page []byte) (string, error) {
	doc, err := html.Parse(strings.NewReader(string(page)))
	if err != nil {
		return "", fmt.Errorf("parse corpus page: %w", err)
	}

	section := findByID(doc, sectionID)
	if section == nil {
		return "", errPayloadNotFound
	}

	var payload string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if payload != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "div" {
			if h3 := findElement(n, "h3"); h3 != nil && strings.TrimSpace(nodeText(h3)) == "JSON" {
				if ta := findElement(n, "textarea"); ta != nil {
					payload = strings.TrimSpace(nodeText(ta))
					return
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(section)

	if payload == "" {
		return "", errPayloadNotFound
	}
	return payload, nil
}

// extractPayloadRaw scans the raw body for the export markers. This is
// the degraded path for responses that defeat the DOM walk but still
// carry the payload.
func extractPayloadRaw(body string) (string, error) {
	_, rest, ok := strings.Cut(body, "<h3>JSON</h3>")
	if !ok {
		return "", errPayloadNotFound
	}
	_, rest, ok = strings.Cut(rest, "<textarea")
	if !ok {
		return "", errPayloadNotFound
	}
	_, rest, ok = strings.Cut(rest, ">")
	if !ok {
		return "", errPayloadNotFound
	}
	payload, _, ok := strings.Cut(rest, "</textarea>")
	if !ok {
		return "", errPayloadNotFound
	}
	return strings.TrimSpace(payload), nil
}

func findByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode {
		for _, attr := range n.Attr {
			if attr.Key == "id" && attr.Val == id {
				return n
			}
		}
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := findByID(child, id); found != nil {
			return found
		}
	}
	return nil
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := findElement(child, tag); found != nil {
			return found
		}
	}
	return nil
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return sb.String()
}

// writeFileAtomic writes data to path via a temp file and rename so a
// concurrent reader never observes a partial corpus.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".corpus-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
