package scanhttp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/michael1026/reflectcheck/types/scan"
)

func testClient() *http.Client {
	return &http.Client{Transport: newTransport(nil, 5)}
}

func TestFetch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintf(w, "<p>%s|%s</p>", r.URL.Query().Get("q"), r.Header.Get("User-Agent"))
	}))
	defer ts.Close()

	page, err := Fetch(context.Background(), testClient(), ts.URL+"/?q=hi", map[string]string{"User-Agent": "probe"}, time.Second)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, page.StatusCode)
	assert.Equal(t, "<p>hi|probe</p>", page.Body)
}

func TestFetchTimeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()

	_, err := Fetch(context.Background(), testClient(), ts.URL, nil, 50*time.Millisecond)
	require.Error(t, err)
	assert.True(t, errors.Is(err, scan.ErrRequest))
}

func TestFetchCancelled(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	_, err := Fetch(ctx, testClient(), ts.URL, nil, 5*time.Second)
	require.Error(t, err)
	assert.True(t, errors.Is(err, scan.ErrRequest))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestFetchDecodeError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("broken \xc3\x28"))
	}))
	defer ts.Close()

	_, err := Fetch(context.Background(), testClient(), ts.URL, nil, time.Second)
	require.Error(t, err)
	assert.True(t, errors.Is(err, scan.ErrDecode))
}

func TestFetchSelfSignedCertificate(t *testing.T) {
	ts := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "ok")
	}))
	defer ts.Close()

	page, err := Fetch(context.Background(), testClient(), ts.URL, nil, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "ok", page.Body)
}

func TestFetchConnectionRefused(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	addr := ts.URL
	ts.Close()

	_, err := Fetch(context.Background(), testClient(), addr, nil, time.Second)
	require.Error(t, err)
	assert.True(t, errors.Is(err, scan.ErrRequest))
	assert.NotEmpty(t, err.Error())
}

func TestLoadUserAgents(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "agents.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`["UA-1", "UA-2", "UA-1", ""]`), 0644))
	pool, err := LoadUserAgents(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, 2, pool.Len())

	yamlPath := filepath.Join(dir, "agents.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("- UA-1\n- UA-2\n- UA-3\n"), 0644))
	pool, err = LoadUserAgents(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, 3, pool.Len())

	var cfgErr *scan.ConfigError
	_, err = LoadUserAgents(filepath.Join(dir, "missing.json"))
	assert.True(t, errors.As(err, &cfgErr))

	emptyPath := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(emptyPath, []byte(`[]`), 0644))
	_, err = LoadUserAgents(emptyPath)
	assert.True(t, errors.As(err, &cfgErr))
}

func TestRandomHeaders(t *testing.T) {
	pool, err := NewHeaderPool([]string{"UA-1", "UA-2"})
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		h := pool.Random()
		assert.Contains(t, []string{"UA-1", "UA-2"}, h["User-Agent"])
		assert.Contains(t, acceptValues, h["Accept"])
	}
}
