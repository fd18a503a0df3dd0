package clients

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mwhite7112/woodpantry-brewlist/internal/pagescan"
)

// maxPageBytes bounds a fetched recipe page.
const maxPageBytes = 8 << 20

// PageClient fetches recipe web pages for recipe-id discovery. Only https
// pages on the configured hosts are fetched, redirects included.
type PageClient struct {
	http  *http.Client
	hosts []string
}

func NewPageClient(timeout time.Duration, hosts []string) *PageClient {
	c := &PageClient{hosts: hosts}
	c.http = &http.Client{Timeout: timeout, CheckRedirect: c.checkRedirect}
	return c
}

func (c *PageClient) checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= 5 {
		return errors.New("too many redirects")
	}
	_, err := pagescan.CheckPageURL(req.URL.String(), c.hosts)
	return err
}

// FetchPage returns the page body at pageURL.
func (c *PageClient) FetchPage(ctx context.Context, pageURL string) (io.ReadCloser, error) {
	u, err := pagescan.CheckPageURL(pageURL, c.hosts)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/html")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("page %s returned %d", u, resp.StatusCode)
	}
	return struct {
		io.Reader
		io.Closer
	}{io.LimitReader(resp.Body, maxPageBytes), resp.Body}, nil
}
