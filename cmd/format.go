package cmd

import (
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"

	"github.com/dk9977/maskedminers/internal/identity"
	"github.com/dk9977/maskedminers/internal/models"
)

// printPagesTable prints mined pages in a human-friendly card layout.
func printPagesTable(pages []models.Page) {
	for i, p := range pages {
		if i > 0 {
			fmt.Fprintln(os.Stdout)
		}
		title := p.Title
		if title == "" {
			title = "(no title)"
		}
		fmt.Fprintf(os.Stdout, " %d. %s\n", i+1, truncate(title, 70))
		fmt.Fprintf(os.Stdout, "    %s\n", p.URL)
		fmt.Fprintf(os.Stdout, "    Status: %d  |  %d bytes  |  %.2fs\n", p.StatusCode, p.Bytes, p.Elapsed)
		fmt.Fprintf(os.Stdout, "    As: %s\n", truncate(p.Identity, 80))
		if len(p.Links) > 0 {
			fmt.Fprintf(os.Stdout, "    Links: %d\n", len(p.Links))
		}
	}
}

// printPersonaCard prints one persona with its parsed facts and the
// header set it would attach to a bare request.
func printPersonaCard(i int, p *identity.Persona) {
	if i > 0 {
		fmt.Fprintln(os.Stdout)
	}
	fmt.Fprintf(os.Stdout, " %d. %s\n", i+1, p.UserAgent)
	fmt.Fprintf(os.Stdout, "    Browser: %s %s  |  Chromium: %s\n",
		p.Browser.Family, versionString(p.Browser.Version), versionString(p.Browser.ChromiumVersion))
	platform := p.Platform.Type
	if p.Platform.OS != "" {
		platform += "  |  " + strings.TrimSpace(p.Platform.OS+" "+p.Platform.OSVersion)
	}
	fmt.Fprintf(os.Stdout, "    Platform: %s\n", platform)

	h := http.Header{}
	p.ApplyHeaders(h)
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Fprintln(os.Stdout, "    Headers:")
	for _, k := range keys {
		fmt.Fprintf(os.Stdout, "      %s: %s\n", k, h.Get(k))
	}
}

func versionString(v int) string {
	if v < 0 {
		return "-"
	}
	return fmt.Sprintf("%d", v)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
