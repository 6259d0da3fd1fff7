package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/time/rate"
)

// Options configures a Client. Zero values fall back to the defaults below,
// except PostFetchDelay where zero disables the pause.
type Options struct {
	BaseURL           string
	Timeout           time.Duration
	UserAgent         string
	MaxBodyBytes      int64
	RequestsPerSecond float64
	Burst             int
	PostFetchDelay    time.Duration
	RespectRobots     bool
}

const (
	DefaultBaseURL        = "https://bulletin.vcu.edu"
	DefaultTimeout        = 5 * time.Second
	DefaultUserAgent      = "sylcheck/1.0 (+syllabus compliance checker)"
	DefaultMaxBodyBytes   = 8 << 20
	DefaultPostFetchDelay = 500 * time.Millisecond
)

func (o *Options) applyDefaults() {
	if o.BaseURL == "" {
		o.BaseURL = DefaultBaseURL
	}
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}
	if o.MaxBodyBytes <= 0 {
		o.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if o.RequestsPerSecond <= 0 {
		o.RequestsPerSecond = 2
	}
	if o.Burst <= 0 {
		o.Burst = 1
	}
	if o.PostFetchDelay < 0 {
		o.PostFetchDelay = 0
	}
}

// Client fetches course records from the catalog site.
type Client struct {
	http    *http.Client
	opts    Options
	cache   *Cache
	limiter *rate.Limiter
	robots  *robotsPolicy
	latency *LatencyStats
	log     *slog.Logger
}

// NewClient creates a catalog client backed by cache.
func NewClient(cache *Cache, opts Options, log *slog.Logger) *Client {
	opts.applyDefaults()
	if cache == nil {
		cache = NewCache(DefaultTTL, nil)
	}
	if log == nil {
		log = slog.Default()
	}
	hc := &http.Client{
		Timeout: opts.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 3 {
				return fmt.Errorf("stopped after 3 redirects")
			}
			return nil
		},
	}
	c := &Client{
		http:    hc,
		opts:    opts,
		cache:   cache,
		limiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), opts.Burst),
		latency: NewLatencyStats(time.Hour),
		log:     log.With("component", "catalog"),
	}
	if opts.RespectRobots {
		c.robots = newRobotsPolicy(hc, opts.UserAgent)
	}
	return c
}

// PageURL returns the catalog listing page for a course prefix.
func (c *Client) PageURL(prefix string) string {
	return c.opts.BaseURL + "/azcourses/" + strings.ToLower(prefix) + "/"
}

// Lookup returns the catalog record for a course. It never fails: every
// failure is reported through Record.Error and Record.ErrorKind.
// Successful and not-found results are cached; transport failures are not.
func (c *Client) Lookup(ctx context.Context, prefix, number string) Record {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	number = strings.TrimSpace(number)
	key := CacheKey(prefix, number)

	if rec, ok := c.cache.Get(key); ok {
		c.log.Debug("catalog cache hit", "course", key)
		return rec
	}

	pageURL := c.PageURL(prefix)
	if c.robots != nil && !c.robots.Allowed(ctx, pageURL) {
		c.log.Warn("catalog page disallowed by robots.txt", "url", pageURL)
		return failed(prefix, number, KindRobots, "Fetching %s is disallowed by robots.txt", pageURL)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return c.transportFailure(prefix, number, pageURL, err)
	}

	body, rec, ok := c.fetch(ctx, prefix, number, pageURL)
	if !ok {
		return rec
	}
	c.pause(ctx)

	rec, err := extractRecord(body, prefix, number)
	if err != nil {
		c.log.Warn("catalog page parse failed", "url", pageURL, "error", err)
		return failed(prefix, number, KindParse, "Parsing error: %v", err)
	}
	c.cache.Set(key, rec)
	if rec.Found {
		c.log.Info("catalog record resolved", "course", rec.Code(), "title", rec.Title)
	} else {
		c.log.Info("course not in catalog", "course", key)
	}
	return rec
}

// fetch downloads the listing page. On failure it returns the failure
// record and ok=false.
func (c *Client) fetch(ctx context.Context, prefix, number, pageURL string) ([]byte, Record, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, failed(prefix, number, KindNetwork, "Network error: %v", err), false
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	start := time.Now()
	resp, err := c.http.Do(req)
	c.latency.Record(time.Since(start))
	if err != nil {
		return nil, c.transportFailure(prefix, number, pageURL, err), false
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		c.log.Warn("catalog page missing", "url", pageURL)
		return nil, failed(prefix, number, KindHTTP, "URL not found - catalog structure may have changed: %s", pageURL), false
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		c.log.Warn("catalog http error", "url", pageURL, "status", resp.StatusCode)
		return nil, failed(prefix, number, KindHTTP, "HTTP error %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)), false
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.opts.MaxBodyBytes))
	if err != nil {
		return nil, c.transportFailure(prefix, number, pageURL, err), false
	}
	return body, Record{}, true
}

func (c *Client) transportFailure(prefix, number, pageURL string, err error) Record {
	if isTimeout(err) {
		c.log.Warn("catalog request timed out", "url", pageURL, "error", err)
		return failed(prefix, number, KindTimeout, "Request timed out - catalog server not responding")
	}
	c.log.Warn("catalog request failed", "url", pageURL, "error", err)
	return failed(prefix, number, KindNetwork, "Network error: %v", err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// pause is the courtesy delay after each fetch. It holds no lock and
// returns early when ctx is done.
func (c *Client) pause(ctx context.Context) {
	if c.opts.PostFetchDelay <= 0 {
		return
	}
	t := time.NewTimer(c.opts.PostFetchDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// Stats is the client's cache and latency summary.
type Stats struct {
	Entries int             `json:"entries"`
	Courses []string        `json:"courses"`
	Latency LatencySnapshot `json:"latency"`
}

func (c *Client) Stats() Stats {
	return Stats{
		Entries: c.cache.Len(),
		Courses: c.cache.Keys(),
		Latency: c.latency.Snapshot(),
	}
}

// ClearCache drops every cached record.
func (c *Client) ClearCache() {
	c.cache.Clear()
	c.log.Info("catalog cache cleared")
}

// extractRecord finds the course paragraph on a listing page. A page
// without the course yields a not-found record, not an error.
func extractRecord(body []byte, prefix, number string) (Record, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return Record{}, fmt.Errorf("parse html: %w", err)
	}
	paragraph := courseParagraph(doc, prefix, number)
	if paragraph == "" {
		return notFound(prefix, number), nil
	}
	return parseParagraph(paragraph, prefix, number), nil
}

// courseParagraph locates <strong>PREFIX NUMBER. ...</strong> and joins its
// enclosing <p> with the next sibling <p>, which holds the details.
func courseParagraph(doc *html.Node, prefix, number string) string {
	heading := regexp.MustCompile(`(?i)^` + regexp.QuoteMeta(prefix) + `\s+` + regexp.QuoteMeta(number) + `\.`)

	strong := findNode(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.DataAtom == atom.Strong && heading.MatchString(textContent(n))
	})
	if strong == nil {
		return ""
	}

	var p *html.Node
	for n := strong.Parent; n != nil; n = n.Parent {
		if n.Type == html.ElementNode && n.DataAtom == atom.P {
			p = n
			break
		}
	}
	if p == nil {
		return ""
	}

	text := textContent(p)
	for sib := p.NextSibling; sib != nil; sib = sib.NextSibling {
		if sib.Type == html.ElementNode && sib.DataAtom == atom.P {
			text += " " + textContent(sib)
			break
		}
	}
	return text
}

func findNode(n *html.Node, match func(*html.Node) bool) *html.Node {
	if match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findNode(c, match); found != nil {
			return found
		}
	}
	return nil
}

// textContent returns the whitespace-collapsed text of n. strings.Fields
// also splits on the non-breaking spaces catalog pages put between prefix
// and number.
func textContent(n *html.Node) string {
	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(buf.String()), " ")
}
