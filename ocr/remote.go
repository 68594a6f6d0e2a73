package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
)

// RemoteProvider implements recognition against a local or remote OCR
// service that accepts a PNG and returns positioned words.
type RemoteProvider struct {
	endpoint string
	client   *http.Client
}

// NewRemoteProvider creates a new remote recognition provider
func NewRemoteProvider(endpoint string) *RemoteProvider {
	return &RemoteProvider{
		endpoint: endpoint,
		client:   &http.Client{},
	}
}

// Name returns the provider name
func (p *RemoteProvider) Name() string {
	return "remote"
}

// Recognize sends the screenshot to the OCR endpoint
func (p *RemoteProvider) Recognize(ctx context.Context, img image.Image) ([]Word, error) {
	// Create multipart form data
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("image", "screenshot.png")
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if err := png.Encode(part, img); err != nil {
		return nil, fmt.Errorf("failed to encode screenshot: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OCR request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Words []Word `json:"words"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return result.Words, nil
}
