package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/temoto/robotstxt"
)

// robotsPolicy caches robots.txt per host.
type robotsPolicy struct {
	mu        sync.RWMutex
	hosts     map[string]*robotstxt.RobotsData
	client    *http.Client
	userAgent string
}

func newRobotsPolicy(client *http.Client, userAgent string) *robotsPolicy {
	return &robotsPolicy{
		hosts:     make(map[string]*robotstxt.RobotsData),
		client:    client,
		userAgent: userAgent,
	}
}

// Allowed reports whether rawURL may be fetched. A robots.txt that cannot
// be fetched allows everything; a 404 is cached as allow-all.
func (p *robotsPolicy) Allowed(ctx context.Context, rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	data, err := p.load(ctx, u)
	if err != nil {
		return true
	}
	return data.TestAgent(u.Path, p.userAgent)
}

func (p *robotsPolicy) load(ctx context.Context, u *url.URL) (*robotstxt.RobotsData, error) {
	p.mu.RLock()
	data, ok := p.hosts[u.Host]
	p.mu.RUnlock()
	if ok {
		return data, nil
	}

	robotsURL := fmt.Sprintf("%s://%s/robots.txt", u.Scheme, u.Host)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create robots request: %w", err)
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch robots.txt: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err = robotstxt.FromResponse(resp)
	if err != nil {
		return nil, fmt.Errorf("parse robots.txt: %w", err)
	}

	p.mu.Lock()
	p.hosts[u.Host] = data
	p.mu.Unlock()
	return data, nil
}
