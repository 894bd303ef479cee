package media

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postline/cli/internal/auth"
)

func TestNewClientDefaults(t *testing.T) {
	client := NewClient("", nil)
	assert.Equal(t, DefaultBaseURL, client.BaseURL)
	require.NotNil(t, client.HTTPClient)
	assert.NotZero(t, client.HTTPClient.Timeout)
}

func TestSendChunkRequestShape(t *testing.T) {
	payload := patternBytes(64)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/media-upload/chunk/sess-1/128", r.URL.Path)
		assert.Equal(t, "application/octet-stream", r.Header.Get("Content-Type"))
		assert.Equal(t, "ApiKey ws-1:secret", r.Header.Get("Authorization"))
		assert.Equal(t, int64(64), r.ContentLength)

		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, payload, body)

		writeJSON(w, map[string]interface{}{"ok": true, "startOffset": 192})
	}))
	defer server.Close()

	client := NewClient(server.URL, &auth.Credentials{
		WorkspaceID: "ws-1",
		APIKey:      "secret",
		Method:      auth.DirectAPIKey,
	})

	resp, err := client.SendChunk(context.Background(), "sess-1", 128, payload)
	require.NoError(t, err)
	assert.Equal(t, int64(192), resp.StartOffset)
}

func TestSendChunkServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "session expired", http.StatusGone)
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	_, err := client.SendChunk(context.Background(), "sess-1", 0, []byte("abcd"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 410")
}

func TestSendChunkEnvelopeRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{"ok": false, "error": "offset conflict"})
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	_, err := client.SendChunk(context.Background(), "sess-1", 0, []byte("abcd"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "offset conflict")
}

func TestStartSessionOmitsEmptyMetadata(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, _ := io.ReadAll(r.Body)
		var req map[string]interface{}
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "clip.mp4", req["fileName"])
		assert.Equal(t, float64(2048), req["totalSize"])
		assert.NotContains(t, req, "title")
		assert.NotContains(t, req, "description")

		writeJSON(w, map[string]interface{}{"ok": true, "uploadSessionId": "sess-1"})
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	resp, err := client.StartSession(context.Background(), "clip.mp4", 2048, "", "")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", resp.UploadSessionID)
}

func TestStartSessionMissingID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{"ok": true})
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	_, err := client.StartSession(context.Background(), "clip.mp4", 2048, "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing a session id")
}

func TestSessionStatusQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/media-upload/status/sess-9", r.URL.Path)
		writeJSON(w, map[string]interface{}{
			"ok":          true,
			"startOffset": 4096,
			"fileSize":    8192,
			"fileName":    "clip.mp4",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	resp, err := client.SessionStatus(context.Background(), "sess-9")
	require.NoError(t, err)
	assert.Equal(t, int64(4096), resp.StartOffset)
	assert.Equal(t, int64(8192), resp.FileSize)
	assert.Equal(t, "clip.mp4", resp.FileName)
}

func TestFinishSessionForwardsMetadata(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/media-upload/finish/sess-1", r.URL.Path)

		body, _ := io.ReadAll(r.Body)
		var req map[string]interface{}
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "Launch day", req["title"])
		assert.Equal(t, "teaser cut", req["description"])

		writeJSON(w, map[string]interface{}{"ok": true, "postId": "post-1"})
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	resp, err := client.FinishSession(context.Background(), "sess-1", "Launch day", "teaser cut")
	require.NoError(t, err)
	assert.Equal(t, "post-1", resp.PostID)
}

func TestVerifyAuth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/cli/verify", r.URL.Path)
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		writeJSON(w, map[string]interface{}{"ok": true, "workspaceId": "ws-1"})
	}))
	defer server.Close()

	client := NewClient(server.URL, &auth.Credentials{Token: "tok-123", Method: auth.BearerToken})
	resp, err := client.VerifyAuth(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ws-1", resp.WorkspaceID)
}
