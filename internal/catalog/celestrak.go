package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/signalsfoundry/orbit-risk/model"
)

// Client fetches the active-satellite TLE catalog from a CelesTrak-style GP
// endpoint that serves name/line1/line2 triplets as plain text.
type Client struct {
	url  string
	http *http.Client
}

// NewClient constructs a catalog client for the given endpoint. A
// non-positive timeout disables the request deadline.
func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		url:  url,
		http: &http.Client{Timeout: timeout},
	}
}

// Fetch downloads and parses one full catalog generation.
func (c *Client) Fetch(ctx context.Context) ([]model.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build catalog request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch catalog: unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read catalog body: %w", err)
	}

	return ParseCatalog(string(body))
}

// ParseCatalog splits raw TLE text into records. The format is blocks of
// three lines: object name, element line 1, element line 2. A trailing
// partial block is dropped.
func ParseCatalog(raw string) ([]model.Record, error) {
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, strings.TrimSpace(line))
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("parse catalog: empty response")
	}

	records := make([]model.Record, 0, len(lines)/3)
	for i := 0; i+2 < len(lines); i += 3 {
		line1 := lines[i+1]
		line2 := lines[i+2]
		records = append(records, model.Record{
			Name:   lines[i],
			Number: catalogNumber(line1),
			Line1:  line1,
			Line2:  line2,
		})
	}
	return records, nil
}

// catalogNumber reads the NORAD catalog number from element line 1,
// columns 3-7. Zero means the field could not be read.
func catalogNumber(line1 string) int {
	if len(line1) < 7 {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(line1[2:7]))
	if err != nil {
		return 0
	}
	return n
}
