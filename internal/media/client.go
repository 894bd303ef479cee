package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/postline/cli/internal/auth"
)

const (
	// DefaultBaseURL is the production Postline API endpoint.
	DefaultBaseURL = "https://app.postline.io/api"
)

// Client talks to the Postline media-upload API.
type Client struct {
	BaseURL    string
	Creds      *auth.Credentials
	HTTPClient *http.Client
}

// StartResponse is returned when creating an upload session.
type StartResponse struct {
	OK              bool   `json:"ok"`
	UploadSessionID string `json:"uploadSessionId"`
	Error           string `json:"error,omitempty"`
}

// ChunkResponse is returned after transmitting a chunk. StartOffset is the
// next offset the server expects; callers must adopt it verbatim.
type ChunkResponse struct {
	OK          bool   `json:"ok"`
	StartOffset int64  `json:"startOffset"`
	Error       string `json:"error,omitempty"`
}

// FinishResponse is returned after finalizing a session into a publishable
// media object.
type FinishResponse struct {
	OK     bool   `json:"ok"`
	PostID string `json:"postId,omitempty"`
	Error  string `json:"error,omitempty"`
}

// StatusResponse describes a session's server-side state, used when
// negotiating a resume.
type StatusResponse struct {
	OK          bool   `json:"ok"`
	StartOffset int64  `json:"startOffset"`
	FileSize    int64  `json:"fileSize"`
	FileName    string `json:"fileName,omitempty"`
	Error       string `json:"error,omitempty"`
}

// VerifyResponse is returned by the credentials verification endpoint.
type VerifyResponse struct {
	OK          bool   `json:"ok"`
	WorkspaceID string `json:"workspaceId,omitempty"`
	Error       string `json:"error,omitempty"`
}

// NewClient creates a media-upload API client.
func NewClient(baseURL string, creds *auth.Credentials) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL: baseURL,
		Creds:   creds,
		HTTPClient: &http.Client{
			Timeout: 300 * time.Second,
		},
	}
}

// StartSession creates a new resumable upload session for a file of the
// given name and size.
func (c *Client) StartSession(ctx context.Context, fileName string, totalSize int64, title, description string) (*StartResponse, error) {
	body := map[string]interface{}{
		"fileName":  fileName,
		"totalSize": totalSize,
	}
	if title != "" {
		body["title"] = title
	}
	if description != "" {
		body["description"] = description
	}

	respBody, err := c.doRequest(ctx, "POST", "/media-upload/start", body)
	if err != nil {
		return nil, err
	}

	var resp StartResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse start response: %w", err)
	}

	if !resp.OK {
		return nil, fmt.Errorf("start failed: %s", resp.Error)
	}
	if resp.UploadSessionID == "" {
		return nil, fmt.Errorf("start response is missing a session id")
	}

	return &resp, nil
}

// SendChunk transmits one byte range starting at startOffset and returns the
// server's next expected offset.
func (c *Client) SendChunk(ctx context.Context, sessionID string, startOffset int64, data []byte) (*ChunkResponse, error) {
	path := fmt.Sprintf("/media-upload/chunk/%s/%d", sessionID, startOffset)

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/octet-stream")
	req.ContentLength = int64(len(data))
	c.addAuth(req)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chunk upload failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("chunk upload failed (HTTP %d): %s", resp.StatusCode, string(respBody))
	}

	var chunkResp ChunkResponse
	if err := json.Unmarshal(respBody, &chunkResp); err != nil {
		return nil, fmt.Errorf("failed to parse chunk response: %w", err)
	}

	if !chunkResp.OK {
		return nil, fmt.Errorf("chunk rejected: %s", chunkResp.Error)
	}

	return &chunkResp, nil
}

// FinishSession turns a fully transferred session into a publishable media
// object.
func (c *Client) FinishSession(ctx context.Context, sessionID, title, description string) (*FinishResponse, error) {
	path := fmt.Sprintf("/media-upload/finish/%s", sessionID)

	body := map[string]interface{}{}
	if title != "" {
		body["title"] = title
	}
	if description != "" {
		body["description"] = description
	}

	respBody, err := c.doRequest(ctx, "POST", path, body)
	if err != nil {
		return nil, err
	}

	var resp FinishResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse finish response: %w", err)
	}

	if !resp.OK {
		return nil, fmt.Errorf("finish failed: %s", resp.Error)
	}

	return &resp, nil
}

// SessionStatus queries the server for a session's confirmed offset and file
// identity.
func (c *Client) SessionStatus(ctx context.Context, sessionID string) (*StatusResponse, error) {
	path := fmt.Sprintf("/media-upload/status/%s", sessionID)

	respBody, err := c.doRequest(ctx, "GET", path, nil)
	if err != nil {
		return nil, err
	}

	var resp StatusResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse status response: %w", err)
	}

	if !resp.OK {
		return nil, fmt.Errorf("status query failed: %s", resp.Error)
	}

	return &resp, nil
}

// VerifyAuth checks that the provided credentials are valid.
func (c *Client) VerifyAuth(ctx context.Context) (*VerifyResponse, error) {
	respBody, err := c.doRequest(ctx, "GET", "/cli/verify", nil)
	if err != nil {
		return nil, err
	}

	var resp VerifyResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse verify response: %w", err)
	}

	if !resp.OK {
		return nil, fmt.Errorf("auth verification failed: %s", resp.Error)
	}

	return &resp, nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.addAuth(req)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("API error (HTTP %d): %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}

func (c *Client) addAuth(req *http.Request) {
	req.Header.Set("User-Agent", "Postline-CLI/1.0")
	if c.Creds != nil {
		header := auth.GetAuthHeader(c.Creds)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
	}
}
