package citydata

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/MohammedBaz/MVPUrbanSprawl/internal/httputil"
)

// RawGitHubURL rewrites a github.com blob URL to its raw content
// equivalent. URLs already pointing at raw content pass through with the
// raw marker appended once.
func RawGitHubURL(url string) string {
	if strings.Contains(url, "?raw=1") {
		return url
	}
	if strings.Contains(url, "raw.githubusercontent.com") {
		return url + "?raw=1"
	}
	if strings.Contains(url, "github.com") && strings.Contains(url, "/blob/") {
		url = strings.Replace(url, "github.com", "raw.githubusercontent.com", 1)
		return strings.Replace(url, "/blob/", "/", 1) + "?raw=1"
	}
	return url
}

// Fetch downloads and parses the reference CSV from url.
func Fetch(ctx context.Context, client httputil.Client, url string) ([]CityRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, RawGitHubURL(url), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reference CSV: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d fetching reference CSV", resp.StatusCode)
	}

	records, err := ParseCSV(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse reference CSV from %s: %w", url, err)
	}
	return records, nil
}

// LoadFile parses the reference CSV from a local path.
func LoadFile(path string) ([]CityRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open reference CSV: %w", err)
	}
	defer f.Close()

	records, err := ParseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse reference CSV %s: %w", path, err)
	}
	return records, nil
}
