package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

// robotsCache fetches and caches robots.txt groups per host. A host whose
// robots.txt cannot be retrieved or parsed is treated as allowing everything.
type robotsCache struct {
	client    *http.Client
	userAgent string

	mu     sync.Mutex
	groups map[string]*robotstxt.Group
}

func newRobotsCache(client *http.Client, userAgent string) *robotsCache {
	return &robotsCache{
		client:    client,
		userAgent: userAgent,
		groups:    make(map[string]*robotstxt.Group),
	}
}

// Allowed reports whether the user agent may fetch rawURL. The error is
// informational; on error the answer is always true.
func (c *robotsCache) Allowed(ctx context.Context, rawURL string) (bool, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return true, fmt.Errorf("parse url: %w", err)
	}

	group, err := c.group(ctx, u)
	if err != nil {
		return true, err
	}
	if group == nil {
		return true, nil
	}
	return group.Test(u.Path), nil
}

func (c *robotsCache) group(ctx context.Context, u *url.URL) (*robotstxt.Group, error) {
	host := u.Scheme + "://" + u.Host

	c.mu.Lock()
	group, ok := c.groups[host]
	c.mu.Unlock()
	if ok {
		return group, nil
	}

	group, err := c.fetchGroup(ctx, host)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.groups[host] = group
	c.mu.Unlock()
	return group, nil
}

func (c *robotsCache) fetchGroup(ctx context.Context, host string) (*robotstxt.Group, error) {
	reqCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, host+"/robots.txt", nil)
	if err != nil {
		return nil, fmt.Errorf("create robots request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch robots.txt: %w", err)
	}
	defer resp.Body.Close()

	robots, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil, fmt.Errorf("parse robots.txt: %w", err)
	}
	return robots.FindGroup(c.userAgent), nil
}
