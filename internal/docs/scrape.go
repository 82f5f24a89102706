package docs

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Refresher re-scrapes the live documentation site into the corpus format
// used by the system prompt. The embedded Corpus stays the fallback; a
// refresh replaces it only for the running process.
type Refresher struct {
	httpClient *http.Client
	baseURL    string
	pages      []string
}

// DefaultPages are the site sections folded into the corpus, in order.
var DefaultPages = []string{
	"/",
	"/getting-started",
	"/concepts/models",
	"/channels",
	"/gateway/configuration",
	"/tools",
	"/skills",
	"/webhooks",
	"/security",
}

func NewRefresher(baseURL string) *Refresher {
	return &Refresher{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		pages:      DefaultPages,
	}
}

// Refresh fetches every configured page and renders headings and
// paragraphs into one markdown document.
func (r *Refresher) Refresh(ctx context.Context) (string, error) {
	var b strings.Builder
	b.WriteString("# OpenClaw Documentation\n")

	for _, page := range r.pages {
		section, err := r.scrapePage(ctx, r.baseURL+page)
		if err != nil {
			return "", fmt.Errorf("scrape %s: %w", page, err)
		}
		if section != "" {
			b.WriteString("\n")
			b.WriteString(section)
		}
	}
	return b.String(), nil
}

func (r *Refresher) scrapePage(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse page: %w", err)
	}

	var b strings.Builder
	doc.Find("main h1, main h2, main h3, main p, main li, main code").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text == "" {
			return
		}
		switch goquery.NodeName(s) {
		case "h1":
			fmt.Fprintf(&b, "## %s\n", text)
		case "h2", "h3":
			fmt.Fprintf(&b, "### %s\n", text)
		case "li":
			fmt.Fprintf(&b, "- %s\n", text)
		case "code":
			// Inline snippets are already captured inside their parent
			// paragraph; only keep standalone blocks.
			if goquery.NodeName(s.Parent()) == "pre" {
				fmt.Fprintf(&b, "`%s`\n", text)
			}
		default:
			fmt.Fprintf(&b, "%s\n", text)
		}
	})
	return b.String(), nil
}
