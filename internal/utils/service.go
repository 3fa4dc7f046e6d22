package utils

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const publicIPURL = "https://ipinfo.io/ip"

var httpClient = &http.Client{Timeout: 10 * time.Second}

// GetPublicIP asks an external service for this machine's public address.
func GetPublicIP(ctx context.Context) (string, error) {
	return getPublicIP(ctx, publicIPURL)
}

func getPublicIP(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)

	if err != nil {
		return "", fmt.Errorf("failed to get public ip: %w", err)
	}

	resp, err := httpClient.Do(req)

	if err != nil {
		return "", fmt.Errorf("failed to get public ip: %w", err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to get public ip: %s", resp.Status)
	}

	publicIP, err := io.ReadAll(io.LimitReader(resp.Body, 256))

	if err != nil {
		return "", fmt.Errorf("failed to read public ip: %w", err)
	}

	return strings.TrimSpace(string(publicIP)), nil
}
