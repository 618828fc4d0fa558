package timedtext

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Taichi-iskw/yt-search/internal/errors"
)

func TestHTTPFetcher_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
			_, _ = w.Write([]byte(`<transcript><text start="0" dur="1">hi</text></transcript>`))
		case "/missing":
			http.NotFound(w, r)
		case "/slow":
			time.Sleep(200 * time.Millisecond)
			_, _ = w.Write([]byte("late"))
		}
	}))
	defer srv.Close()

	f := NewHTTPFetcher(WithUserAgent("test-agent"), WithTimeout(50*time.Millisecond))
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		body, err := f.Fetch(ctx, srv.URL+"/ok")
		require.NoError(t, err)
		assert.Contains(t, string(body), "<transcript>")
	})

	t.Run("non-2xx status", func(t *testing.T) {
		body, err := f.Fetch(ctx, srv.URL+"/missing")
		require.Error(t, err)
		assert.Nil(t, body)
		assert.True(t, errors.HasCode(err, errors.CodeCaptionFetch))
		assert.Contains(t, err.Error(), "404")
	})

	t.Run("timeout", func(t *testing.T) {
		_, err := f.Fetch(ctx, srv.URL+"/slow")
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.CodeCaptionFetch))
	})

	t.Run("invalid url", func(t *testing.T) {
		_, err := f.Fetch(ctx, "://bad")
		assert.True(t, errors.HasCode(err, errors.CodeCaptionFetch))
	})
}

func TestHTTPFetcher_BodyLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 16)))
	}))
	defer srv.Close()

	tests := []struct {
		name     string
		maxBytes int64
		wantErr  bool
	}{
		{name: "body at the limit", maxBytes: 16},
		{name: "body over the limit", maxBytes: 15, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewHTTPFetcher()
			f.maxBytes = tt.maxBytes

			body, err := f.Fetch(context.Background(), srv.URL)
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, body)
				assert.True(t, errors.HasCode(err, errors.CodeCaptionFetch))
				assert.Contains(t, err.Error(), "exceeds 15 bytes")
				return
			}
			require.NoError(t, err)
			assert.Len(t, body, 16)
		})
	}
}

func TestHTTPFetcher_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewHTTPFetcher().Fetch(context.Background(), url)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeCaptionFetch))
}
