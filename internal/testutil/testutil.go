// Package testutil provides shared test utilities and fixtures.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// AssertStatusCode checks that the response status code matches expected.
func AssertStatusCode(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("status code = %d, want %d", got, want)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// NewTestRequest creates a test HTTP request.
func NewTestRequest(method, path string) *http.Request {
	return httptest.NewRequest(method, path, nil)
}

// NewTestRecorder creates a test response recorder.
func NewTestRecorder() *httptest.ResponseRecorder {
	return httptest.NewRecorder()
}

// MetricsCSV is a small wide-format reference CSV used across package tests.
// Columns mirror the production saudi_cities dataset.
const MetricsCSV = `City,Built-up 2015 (km²),Population 2015,Built-up 2020 (km²),Population 2020,Built-up 2025 (km²),Population 2025
Riyadh,1533.0,6200000,1744.0,6900000,1973.0,7565000
Jeddah,821.0,4076000,902.0,4430000,1013.0,4697000
Abha,98.0,366000,112.0,1000000,131.0,1093705
`
