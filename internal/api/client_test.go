package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/uriel/internal/catalog"
	"github.com/pders01/uriel/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.TestConfig()
	cfg.API.BaseURL = srv.URL
	c, err := NewClient(cfg)
	require.NoError(t, err)
	return c
}

func TestNewClient(t *testing.T) {
	cfg := config.TestConfig()

	cfg.API.BaseURL = "http://localhost:8000/"
	c, err := NewClient(cfg)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000", c.BaseURL())

	cfg.API.BaseURL = "localhost:9000"
	c, err = NewClient(cfg)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000", c.BaseURL())

	cfg.API.BaseURL = "ftp://localhost"
	_, err = NewClient(cfg)
	assert.Error(t, err)

	cfg.API.BaseURL = ""
	_, err = NewClient(cfg)
	assert.Error(t, err)
}

func TestClient_List(t *testing.T) {
	var gotQuery url.Values
	var gotHeader http.Header
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/media", r.URL.Path)
		gotQuery = r.URL.Query()
		gotHeader = r.Header.Clone()
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[
			{"id":1,"title":"Neon Drift","kind":"movie","year":2022,"downloads":5,"tags":["cyberpunk"]},
			{"id":"b-2","title":"Blade Sakura","kind":"anime","downloads":3}
		]`)
	})

	params := catalog.BuildParams(catalog.FilterState{Tab: catalog.Tab(catalog.KindMovie), SearchText: "Drift"})
	items, err := c.List(context.Background(), params)
	require.NoError(t, err)

	assert.Equal(t, url.Values{"kind": {"movie"}, "q": {"Drift"}}, gotQuery)
	assert.Equal(t, "application/json", gotHeader.Get("Accept"))
	assert.Equal(t, "uriel-test/1.0", gotHeader.Get("User-Agent"))
	_, err = uuid.Parse(gotHeader.Get("X-Request-ID"))
	assert.NoError(t, err)

	require.Len(t, items, 2)
	assert.Equal(t, catalog.ItemID("1"), items[0].ID)
	assert.Equal(t, 5, items[0].Downloads)
	assert.Equal(t, catalog.ItemID("b-2"), items[1].ID)
	assert.Equal(t, catalog.KindAnime, items[1].Kind)
}

func TestClient_ListNoParams(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.RawQuery)
		_, _ = io.WriteString(w, `null`)
	})

	items, err := c.List(context.Background(), url.Values{})
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestClient_ListFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		status  int
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "database offline", http.StatusInternalServerError)
			},
			status: http.StatusInternalServerError,
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, `{"not":"a list"`)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.handler)

			items, err := c.List(context.Background(), nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, catalog.ErrFetchFailed))
			assert.NotNil(t, items)
			assert.Empty(t, items)

			var statusErr *StatusError
			if tt.status != 0 {
				require.True(t, errors.As(err, &statusErr))
				assert.Equal(t, tt.status, statusErr.Code)
				assert.Equal(t, "database offline", statusErr.Body)
			} else {
				assert.False(t, errors.As(err, &statusErr))
			}
		})
	}
}

func TestClient_ListUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	cfg := config.TestConfig()
	cfg.API.BaseURL = base
	cfg.API.HTTPTimeout = time.Second
	c, err := NewClient(cfg)
	require.NoError(t, err)

	items, err := c.List(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, catalog.ErrFetchFailed))
	assert.Empty(t, items)
}

func TestClient_Create(t *testing.T) {
	var got catalog.Draft
	var contentType string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/media", r.URL.Path)
		contentType = r.Header.Get("Content-Type")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":9}`)
	})

	year := 2021
	draft := catalog.Draft{
		Title:    "Blade Sakura",
		Kind:     catalog.KindAnime,
		Year:     &year,
		VideoURL: "https://samplelib.com/lib/preview/mp4/sample-5s.mp4",
		Tags:     []string{"samurai", "sci-fi"},
	}
	require.NoError(t, c.Create(context.Background(), draft))

	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, draft, got)
}

func TestClient_CreateWireFormat(t *testing.T) {
	var raw map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		w.WriteHeader(http.StatusCreated)
	})

	require.NoError(t, c.Create(context.Background(), catalog.Draft{
		Title:     "Neon Drift",
		Kind:      catalog.KindMovie,
		PosterURL: "p.jpg",
	}))

	assert.Equal(t, "Neon Drift", raw["title"])
	assert.Equal(t, "movie", raw["kind"])
	assert.Equal(t, "p.jpg", raw["poster_url"])
	assert.NotContains(t, raw, "year")
}

func TestClient_CreateFailures(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		called = true
		http.Error(w, "title exists", http.StatusConflict)
	})

	err := c.Create(context.Background(), catalog.Draft{Kind: catalog.KindMovie})
	require.Error(t, err)
	assert.True(t, errors.Is(err, catalog.ErrCreateFailed))
	assert.False(t, called, "invalid drafts must not reach the service")

	err = c.Create(context.Background(), catalog.Draft{Title: "Neon Drift", Kind: catalog.KindMovie})
	require.Error(t, err)
	assert.True(t, errors.Is(err, catalog.ErrCreateFailed))
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusConflict, statusErr.Code)
}

func TestClient_IncrementDownload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/media/42/download", r.URL.Path)
		_, _ = io.WriteString(w, `{"id":42,"title":"Neon Drift","downloads":6}`)
	})

	res, err := c.IncrementDownload(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, catalog.ItemID("42"), res.ID)
	require.NotNil(t, res.Downloads)
	assert.Equal(t, 6, *res.Downloads)
}

func TestClient_IncrementDownloadEscapesID(t *testing.T) {
	var rawPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		rawPath = r.URL.EscapedPath()
		_, _ = io.WriteString(w, `{}`)
	})

	res, err := c.IncrementDownload(context.Background(), "a/b c")
	require.NoError(t, err)
	assert.Equal(t, "/api/media/a%2Fb%20c/download", rawPath)
	assert.Nil(t, res.Downloads)
}

func TestClient_IncrementDownloadFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.NotFound(w, nil)
	})

	_, err := c.IncrementDownload(context.Background(), "404")
	require.Error(t, err)
	assert.True(t, errors.Is(err, catalog.ErrDownloadFailed))
	assert.True(t, strings.Contains(err.Error(), "HTTP 404"))
}

func TestClient_ContextCancel(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.List(ctx, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestStatusError(t *testing.T) {
	err := &StatusError{Method: "GET", Path: "/api/media", Code: 502}
	assert.Equal(t, "GET /api/media: HTTP 502", err.Error())

	err.Body = "bad gateway"
	assert.Equal(t, "GET /api/media: HTTP 502: bad gateway", err.Error())
}
