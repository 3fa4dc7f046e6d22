package utils

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetPublicIP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("203.0.113.7\n"))
	}))
	defer server.Close()

	ip, err := getPublicIP(context.Background(), server.URL)

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if ip != "203.0.113.7" {
		t.Errorf("expected 203.0.113.7, got %q", ip)
	}
}

func TestGetPublicIP_BadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusTooManyRequests)
	}))
	defer server.Close()

	if _, err := getPublicIP(context.Background(), server.URL); err == nil {
		t.Errorf("expected error for non-200 response")
	}
}
