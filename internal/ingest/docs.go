// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/pdiddy/modelcard/internal/httputil"
	"github.com/pdiddy/modelcard/pkg/types"
)

const (
	defaultMaxPages = 200
	maxPageBytes    = 5 << 20
)

// noiseTags are removed before conversion.
var noiseTags = map[string]bool{
	"script": true, "style": true, "noscript": true, "nav": true,
	"footer": true, "iframe": true, "form": true, "svg": true,
}

// DocsSource crawls a documentation site breadth-first. Only pages under
// the base URL are followed. MaxDepth counts levels including the base page.
type DocsSource struct {
	URL       string
	MaxDepth  int
	MaxPages  int
	Client    *http.Client
	UserAgent string
	Splitter  Splitter
	Logger    *zap.Logger
}

// NewDocsSource builds a DocsSource from ingest settings.
func NewDocsSource(docsURL string, cfg types.IngestConfig, client *http.Client, logger *zap.Logger) *DocsSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &DocsSource{
		URL:       docsURL,
		MaxDepth:  cfg.MaxDepth,
		Client:    client,
		UserAgent: cfg.UserAgent,
		Splitter:  NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap),
		Logger:    logger,
	}
}

// Name returns the source identifier.
func (d *DocsSource) Name() string { return "docs" }

type crawlItem struct {
	url   string
	depth int
}

// Fetch crawls the site and returns chunked markdown for every page.
// Failing to load the base page is an error; later page failures are
// logged and skipped.
func (d *DocsSource) Fetch(ctx context.Context) (Result, error) {
	if strings.TrimSpace(d.URL) == "" {
		return Result{}, fmt.Errorf("%w: missing documentation URL", ErrNotConfigured)
	}
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	maxDepth := d.MaxDepth
	if maxDepth <= 0 {
		maxDepth = 3
	}
	maxPages := d.MaxPages
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}

	base, err := url.Parse(strings.TrimSpace(d.URL))
	if err != nil || base.Host == "" {
		return Result{}, fmt.Errorf("documentation fetch failed: invalid URL %q", d.URL)
	}
	base.Fragment = ""
	prefix := base.String()

	conv := md.NewConverter("", true, nil)
	conv.Use(plugin.GitHubFlavored())

	var res Result
	visited := map[string]bool{prefix: true}
	queue := []crawlItem{{url: prefix, depth: 0}}
	pages := 0

	for len(queue) > 0 && pages < maxPages {
		item := queue[0]
		queue = queue[1:]

		body, ctype, err := httputil.Get(ctx, d.Client, item.url, d.UserAgent, maxPageBytes)
		if err != nil {
			if item.depth == 0 {
				return Result{}, fmt.Errorf("documentation fetch failed: %w", err)
			}
			logger.Warn("skipping documentation page", zap.String("url", item.url), zap.Error(err))
			continue
		}
		pages++

		text, links := body, []string(nil)
		if isHTML(ctype) {
			page, err := parsePage(body, item.url, conv)
			if err != nil {
				logger.Warn("could not convert page", zap.String("url", item.url), zap.Error(err))
				continue
			}
			text, links = []byte(page.markdown), page.links
		}
		res.Documents = append(res.Documents, d.Splitter.Documents(string(text), item.url)...)

		if item.depth+1 >= maxDepth {
			continue
		}
		for _, l := range links {
			if !strings.HasPrefix(l, prefix) || visited[l] {
				continue
			}
			visited[l] = true
			queue = append(queue, crawlItem{url: l, depth: item.depth + 1})
		}
	}

	logger.Info("ingested documentation",
		zap.String("url", prefix),
		zap.Int("pages", pages),
		zap.Int("passages", len(res.Documents)))
	return res, nil
}

func isHTML(ctype string) bool {
	return ctype == "" || strings.Contains(strings.ToLower(ctype), "html")
}

type page struct {
	markdown string
	links    []string
}

// parsePage collects absolute links, strips navigation noise and converts
// the remaining HTML to markdown.
func parsePage(body []byte, pageURL string, conv *md.Converter) (page, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return page{}, fmt.Errorf("parsing HTML: %w", err)
	}
	from, err := url.Parse(pageURL)
	if err != nil {
		return page{}, err
	}

	var p page
	var title string
	var noise []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case n.Data == "a":
				if l := resolveLink(from, attr(n, "href")); l != "" {
					p.links = append(p.links, l)
				}
			case n.Data == "title" && n.FirstChild != nil && title == "":
				title = strings.TrimSpace(n.FirstChild.Data)
			}
			if noiseTags[n.Data] {
				noise = append(noise, n)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	for _, n := range noise {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
	}

	var buf strings.Builder
	if err := html.Render(&buf, doc); err != nil {
		return page{}, fmt.Errorf("rendering HTML: %w", err)
	}
	markdown, err := conv.ConvertString(buf.String())
	if err != nil {
		return page{}, fmt.Errorf("converting to markdown: %w", err)
	}
	markdown = strings.TrimSpace(markdown)
	if title != "" && !strings.HasPrefix(markdown, "# ") {
		markdown = "# " + title + "\n\n" + markdown
	}
	p.markdown = markdown
	return p, nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// resolveLink returns href as an absolute http(s) URL without fragment, or
// "" when it cannot be followed.
func resolveLink(from *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	u = from.ResolveReference(u)
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	u.Fragment = ""
	return u.String()
}
