package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/sitescope"
	sitehttp "github.com/fwojciec/sitescope/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcher_FetchChain(t *testing.T) {
	t.Parallel()

	t.Run("returns body and status from server", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte("<html><body>Hello World</body></html>"))
		}))
		defer server.Close()

		result, err := sitehttp.NewFetcher().FetchChain(context.Background(), server.URL, "testbot")

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, result.Status)
		assert.Equal(t, server.URL, result.FinalURL)
		assert.Equal(t, "text/html; charset=utf-8", result.ContentType)
		assert.Equal(t, "<html><body>Hello World</body></html>", string(result.Body))
		assert.Empty(t, result.Redirects)
	})

	t.Run("follows redirect chain and records hops", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/a", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/b", http.StatusMovedPermanently)
		})
		mux.HandleFunc("/b", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/c", http.StatusFound)
		})
		mux.HandleFunc("/c", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html>done</html>"))
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		result, err := sitehttp.NewFetcher().FetchChain(context.Background(), server.URL+"/a", "testbot")

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, result.Status)
		assert.Equal(t, server.URL+"/c", result.FinalURL)
		require.Len(t, result.Redirects, 2)
		assert.Equal(t, sitescope.RedirectHop{From: server.URL + "/a", To: server.URL + "/b", Status: http.StatusMovedPermanently}, result.Redirects[0])
		assert.Equal(t, sitescope.RedirectHop{From: server.URL + "/b", To: server.URL + "/c", Status: http.StatusFound}, result.Redirects[1])
	})

	t.Run("treats redirect without location as final", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusMovedPermanently)
		}))
		defer server.Close()

		result, err := sitehttp.NewFetcher().FetchChain(context.Background(), server.URL, "testbot")

		require.NoError(t, err)
		assert.Equal(t, http.StatusMovedPermanently, result.Status)
		assert.Empty(t, result.Redirects)
	})

	t.Run("truncates chain at hop cap", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/next"+r.URL.Path, http.StatusFound)
		}))
		defer server.Close()

		result, err := sitehttp.NewFetcher().FetchChain(context.Background(), server.URL+"/start", "testbot")

		require.NoError(t, err)
		assert.Equal(t, http.StatusFound, result.Status)
		assert.Len(t, result.Redirects, 10)
	})

	t.Run("retries blocked status with fallback user agent", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("User-Agent") == sitehttp.FallbackUserAgent {
				w.Header().Set("Content-Type", "text/html")
				_, _ = w.Write([]byte("<html>ok</html>"))
				return
			}
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()

		result, err := sitehttp.NewFetcher().FetchChain(context.Background(), server.URL, "testbot")

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, result.Status)
		assert.Equal(t, server.URL, result.FinalURL)
		assert.Equal(t, "<html>ok</html>", string(result.Body))
	})

	t.Run("returns blocked result when fallback is also blocked", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()

		result, err := sitehttp.NewFetcher().FetchChain(context.Background(), server.URL, "testbot")

		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, result.Status)
	})

	t.Run("does not retry when caller already uses fallback user agent", func(t *testing.T) {
		t.Parallel()

		var requests atomic.Int64
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()

		result, err := sitehttp.NewFetcher().FetchChain(context.Background(), server.URL, sitehttp.FallbackUserAgent)

		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, result.Status)
		assert.Equal(t, int64(1), requests.Load())
	})

	t.Run("sends constant accept headers", func(t *testing.T) {
		t.Parallel()

		var accept, acceptLanguage, userAgent string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			accept = r.Header.Get("Accept")
			acceptLanguage = r.Header.Get("Accept-Language")
			userAgent = r.Header.Get("User-Agent")
		}))
		defer server.Close()

		_, err := sitehttp.NewFetcher().FetchChain(context.Background(), server.URL, "testbot")

		require.NoError(t, err)
		assert.Contains(t, accept, "text/html")
		assert.Contains(t, accept, "application/xml")
		assert.NotEmpty(t, acceptLanguage)
		assert.Equal(t, "testbot", userAgent)
	})

	t.Run("decodes non-UTF8 HTML bodies", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
			_, _ = w.Write([]byte{'c', 'a', 'f', 0xe9})
		}))
		defer server.Close()

		result, err := sitehttp.NewFetcher().FetchChain(context.Background(), server.URL, "testbot")

		require.NoError(t, err)
		assert.Equal(t, "café", string(result.Body))
	})

	t.Run("respects custom timeout option", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
			_, _ = w.Write([]byte("response"))
		}))
		defer server.Close()

		fetcher := sitehttp.NewFetcher(sitehttp.WithTimeout(10 * time.Millisecond))

		_, err := fetcher.FetchChain(context.Background(), server.URL, sitehttp.FallbackUserAgent)
		require.Error(t, err)
	})

	t.Run("returns error for non-existent host after fallback retry", func(t *testing.T) {
		t.Parallel()

		fetcher := sitehttp.NewFetcher(sitehttp.WithTimeout(100 * time.Millisecond))

		_, err := fetcher.FetchChain(context.Background(), "http://non-existent-host.invalid/page", "testbot")
		require.Error(t, err)
	})

	t.Run("invalid URL", func(t *testing.T) {
		t.Parallel()

		_, err := sitehttp.NewFetcher().FetchChain(context.Background(), "://bad", sitehttp.FallbackUserAgent)

		assert.Equal(t, sitescope.EINVALID, sitescope.ErrorCode(err))
	})
}

// Compile-time verification that Fetcher implements sitescope.Fetcher
var _ sitescope.Fetcher = (*sitehttp.Fetcher)(nil)
