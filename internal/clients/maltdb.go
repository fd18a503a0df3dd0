package clients

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mwhite7112/woodpantry-brewlist/internal/maltdb"
)

// maxTableBytes bounds the reference table download.
const maxTableBytes = 4 << 20

var _ maltdb.Source = (*MaltDBClient)(nil)

// MaltDBClient loads the reference classification table from a URL serving
// the YAML (or JSON) document.
type MaltDBClient struct {
	url  string
	http *http.Client
}

func NewMaltDBClient(url string, timeout time.Duration) *MaltDBClient {
	return &MaltDBClient{url: url, http: &http.Client{Timeout: timeout}}
}

func (c *MaltDBClient) Load(ctx context.Context) (*maltdb.Table, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("malt table source returned %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxTableBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return maltdb.Parse(data)
}
