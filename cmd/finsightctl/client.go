package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var apiClient = &http.Client{Timeout: 15 * time.Second}

// narrativeEnvelope matches the narrative field every analytic response
// carries.
type narrativeEnvelope struct {
	Narrative string `json:"narrative"`
	Error     string `json:"error"`
}

func apiNarrative(base, path string, params url.Values) (string, error) {
	target := strings.TrimRight(base, "/") + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	resp, err := apiClient.Get(target)
	if err != nil {
		return "", fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	return readNarrative(resp)
}

func apiAsk(base, question string) (string, error) {
	body, err := json.Marshal(map[string]string{"message": question})
	if err != nil {
		return "", err
	}

	target := strings.TrimRight(base, "/") + "/api/ask"
	resp, err := apiClient.Post(target, "application/json", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("request /api/ask: %w", err)
	}
	defer resp.Body.Close()

	return readNarrative(resp)
}

func readNarrative(resp *http.Response) (string, error) {
	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var envelope narrativeEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return "", fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode >= 400 {
		if envelope.Error != "" {
			return "", fmt.Errorf("server rejected the request: %s", envelope.Error)
		}
		return "", fmt.Errorf("server returned status %d", resp.StatusCode)
	}
	return envelope.Narrative, nil
}
