package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// UploadResult is the media host's record for one uploaded image.
type UploadResult struct {
	MediaId int64  `json:"id"`
	URL     string `json:"source_url"`
}

// Host is the media host contract consumed by the image ingestion pipeline.
type Host interface {
	Upload(ctx context.Context, data []byte, filename, contentType string) (*UploadResult, error)
}

// Client uploads media to a WordPress-style media endpoint using basic
// application-password authentication.
type Client struct {
	BaseURL    string
	Username   string
	Password   string
	HTTPClient *http.Client
}

var _ Host = &Client{}

// NewClient creates a media client. baseURL points at the API root, e.g.
// "https://shop.example.com/wp-json/wp/v2".
func NewClient(baseURL, username, password string) *Client {
	return &Client{
		BaseURL:  baseURL,
		Username: username,
		Password: password,
		HTTPClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Upload sends raw image bytes to the media host and returns the assigned
// media id and public URL.
func (c *Client) Upload(ctx context.Context, data []byte, filename, contentType string) (*UploadResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/media", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	auth := base64.StdEncoding.EncodeToString([]byte(c.Username + ":" + c.Password))
	req.Header.Set("Authorization", "Basic "+auth)

	res, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, fmt.Errorf(
			"media host error, got status %d with response body %s",
			res.StatusCode,
			string(resBody),
		)
	}

	var result UploadResult
	if err := json.Unmarshal(resBody, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
