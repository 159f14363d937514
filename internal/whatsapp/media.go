package whatsapp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// MediaInfo describes a media object held by the Graph API
type MediaInfo struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	MimeType string `json:"mime_type"`
	FileSize int64  `json:"file_size"`
}

func (c *Client) RetrieveMedia(ctx context.Context, mediaID string) (MediaInfo, error) {
	resp, err := c.sendRequest(ctx, http.MethodGet, c.endpoint(mediaID), nil)
	if err != nil {
		return MediaInfo{}, err
	}
	var info MediaInfo
	if err := json.Unmarshal(resp, &info); err != nil {
		return MediaInfo{}, fmt.Errorf("whatsapp: decode media %s: %w", mediaID, err)
	}
	return info, nil
}

// DownloadMedia streams the bytes behind a media id. The caller closes
// the returned body.
func (c *Client) DownloadMedia(ctx context.Context, mediaID string) (io.ReadCloser, string, error) {
	info, err := c.RetrieveMedia(ctx, mediaID)
	if err != nil {
		return nil, "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, info.URL, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.Config.WhatsAppToken)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("whatsapp: download media %s: %w", mediaID, err)
	}
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, "", &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	mimeType := info.MimeType
	if mimeType == "" {
		mimeType = resp.Header.Get("Content-Type")
	}
	return resp.Body, mimeType, nil
}
