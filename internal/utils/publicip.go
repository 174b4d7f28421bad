package utils

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const ipifyURL = "https://api.ipify.org"

// PublicBaseURL discovers the public IP of this host and builds the base URL
// that download links are advertised under. Used when BASE_URL is not configured.
func PublicBaseURL(port string) (string, error) {
	client := &http.Client{Timeout: 10 * time.Second}

	resp, err := client.Get(ipifyURL)
	if err != nil {
		return "", fmt.Errorf("failed to discover public IP: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("public IP lookup returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64))
	if err != nil {
		return "", fmt.Errorf("failed to read public IP response: %w", err)
	}

	ip := strings.TrimSpace(string(body))
	if ip == "" {
		return "", fmt.Errorf("public IP lookup returned empty response")
	}

	return fmt.Sprintf("http://%s:%s", ip, port), nil
}
