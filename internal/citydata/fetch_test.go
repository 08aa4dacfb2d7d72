package citydata

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/MohammedBaz/MVPUrbanSprawl/internal/httputil"
	"github.com/MohammedBaz/MVPUrbanSprawl/internal/testutil"
)

func TestRawGitHubURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"blob url rewritten",
			"https://github.com/MohammedBaz/MVPUrbanSprawl/blob/main/data.csv",
			"https://raw.githubusercontent.com/MohammedBaz/MVPUrbanSprawl/main/data.csv?raw=1",
		},
		{
			"raw url gets marker",
			"https://raw.githubusercontent.com/MohammedBaz/MVPUrbanSprawl/main/data.csv",
			"https://raw.githubusercontent.com/MohammedBaz/MVPUrbanSprawl/main/data.csv?raw=1",
		},
		{
			"already marked unchanged",
			"https://raw.githubusercontent.com/x/y/main/data.csv?raw=1",
			"https://raw.githubusercontent.com/x/y/main/data.csv?raw=1",
		},
		{
			"non-github unchanged",
			"https://example.com/data.csv",
			"https://example.com/data.csv",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RawGitHubURL(tt.in); got != tt.want {
				t.Errorf("RawGitHubURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFetch(t *testing.T) {
	mock := httputil.NewMockClient()
	mock.AddResponse(200, testutil.MetricsCSV)

	records, err := Fetch(context.Background(), mock, "https://example.com/metrics.csv")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("got %d records, want 3", len(records))
	}
}

func TestFetchErrors(t *testing.T) {
	t.Run("network error", func(t *testing.T) {
		mock := httputil.NewMockClient()
		mock.AddErrorResponse(errors.New("connection refused"))
		if _, err := Fetch(context.Background(), mock, "https://example.com/metrics.csv"); err == nil {
			t.Error("Fetch succeeded, want error")
		}
	})

	t.Run("non-200 status", func(t *testing.T) {
		mock := httputil.NewMockClient()
		mock.AddResponse(404, "not found")
		if _, err := Fetch(context.Background(), mock, "https://example.com/metrics.csv"); err == nil {
			t.Error("Fetch succeeded, want error")
		}
	})

	t.Run("bad body", func(t *testing.T) {
		mock := httputil.NewMockClient()
		mock.AddResponse(200, "not,a,reference\ntable,at,all\n")
		if _, err := Fetch(context.Background(), mock, "https://example.com/metrics.csv"); err == nil {
			t.Error("Fetch succeeded, want error")
		}
	})
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.csv")
	if err := os.WriteFile(path, []byte(testutil.MetricsCSV), 0644); err != nil {
		t.Fatal(err)
	}

	records, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("got %d records, want 3", len(records))
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Error("LoadFile succeeded on missing file")
	}
}
