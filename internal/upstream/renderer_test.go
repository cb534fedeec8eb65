package upstream_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonw/screenshot-worker/internal/config"
	"github.com/simonw/screenshot-worker/internal/shot"
	"github.com/simonw/screenshot-worker/internal/upstream"
)

type capturedRequest struct {
	URL      string `json:"url"`
	Viewport struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	} `json:"viewport"`
	FullPage    bool `json:"fullPage"`
	GotoOptions struct {
		WaitUntil string `json:"waitUntil"`
		Timeout   int64  `json:"timeout"`
	} `json:"gotoOptions"`
	AddScriptTag []struct {
		Content string `json:"content"`
	} `json:"addScriptTag"`
	AddStyleTag []struct {
		Content string `json:"content"`
	} `json:"addStyleTag"`
}

func descriptor(t *testing.T, pairs map[string]string) *shot.Descriptor {
	t.Helper()

	values := url.Values{}
	for k, v := range pairs {
		values.Set(k, v)
	}
	desc, err := shot.ParseDescriptor(values)
	require.NoError(t, err)
	return desc
}

func newClient(endpoint string) *upstream.Client {
	return upstream.NewClient(&config.UpstreamConfig{
		Endpoint:          endpoint,
		Token:             "render-token",
		NavigationTimeout: 30 * time.Second,
	})
}

func TestRender_Success(t *testing.T) {
	var captured capturedRequest
	var authHeader, path string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		authHeader = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("fake-png-bytes"))
	}))
	defer server.Close()

	desc := descriptor(t, map[string]string{
		"url":     "https://example.com/",
		"version": "1",
		"w":       "1200",
		"h":       "800",
	})

	result, err := newClient(server.URL).Render(context.Background(), desc)
	require.NoError(t, err)

	assert.Equal(t, "/screenshot", path)
	assert.Equal(t, "Bearer render-token", authHeader)
	assert.Equal(t, []byte("fake-png-bytes"), result.Data)
	assert.Equal(t, "image/png", result.ContentType)

	assert.Equal(t, "https://example.com/", captured.URL)
	assert.Equal(t, 1200, captured.Viewport.Width)
	assert.Equal(t, 800, captured.Viewport.Height)
	assert.False(t, captured.FullPage)
	assert.Equal(t, "networkidle0", captured.GotoOptions.WaitUntil)
	assert.Equal(t, int64(30000), captured.GotoOptions.Timeout)
	assert.Empty(t, captured.AddScriptTag)
	assert.Empty(t, captured.AddStyleTag)
}

func TestRender_FullPageUsesDefaultViewportHeight(t *testing.T) {
	var captured capturedRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("png"))
	}))
	defer server.Close()

	desc := descriptor(t, map[string]string{
		"url":     "https://example.com/",
		"version": "1",
		"h":       "full",
	})

	_, err := newClient(server.URL).Render(context.Background(), desc)
	require.NoError(t, err)

	assert.True(t, captured.FullPage)
	assert.Equal(t, 800, captured.Viewport.Height)
}

func TestRender_InjectionForwardedOnlyWhenNonEmpty(t *testing.T) {
	var captured capturedRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte("png"))
	}))
	defer server.Close()

	desc := descriptor(t, map[string]string{
		"url":     "https://example.com/",
		"version": "1",
		"js":      "document.title='x'",
	})

	_, err := newClient(server.URL).Render(context.Background(), desc)
	require.NoError(t, err)

	require.Len(t, captured.AddScriptTag, 1)
	assert.Equal(t, "document.title='x'", captured.AddScriptTag[0].Content)
	assert.Empty(t, captured.AddStyleTag)
}

func TestRender_UpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "renderer exploded", http.StatusInternalServerError)
	}))
	defer server.Close()

	desc := descriptor(t, map[string]string{
		"url":     "https://example.com/",
		"version": "1",
	})

	_, err := newClient(server.URL).Render(context.Background(), desc)
	require.Error(t, err)

	var statusErr *upstream.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "renderer exploded")
}

func TestRender_DefaultContentType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header()["Content-Type"] = nil // suppress implicit detection
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("png"))
	}))
	defer server.Close()

	desc := descriptor(t, map[string]string{
		"url":     "https://example.com/",
		"version": "1",
	})

	result, err := newClient(server.URL).Render(context.Background(), desc)
	require.NoError(t, err)
	assert.Equal(t, "image/png", result.ContentType)
}
