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
)

func TestRobotsService_PolicyFor(t *testing.T) {
	t.Parallel()

	t.Run("applies allow and disallow rules", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/robots.txt", r.URL.Path)
			w.Header().Set("Content-Type", "text/plain")
			_, _ = w.Write([]byte("User-agent: *\nDisallow: /private/\n"))
		}))
		defer server.Close()

		policy := sitehttp.NewRobotsService(server.Client()).PolicyFor(context.Background(), server.URL+"/page", "testbot")

		assert.True(t, policy.Allowed("/page"))
		assert.True(t, policy.Allowed("/public/doc"))
		assert.False(t, policy.Allowed("/private/doc"))
	})

	t.Run("caches per origin", func(t *testing.T) {
		t.Parallel()

		var fetches atomic.Int64
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fetches.Add(1)
			_, _ = w.Write([]byte("User-agent: *\nDisallow: /private/\n"))
		}))
		defer server.Close()

		svc := sitehttp.NewRobotsService(server.Client())
		svc.PolicyFor(context.Background(), server.URL+"/a", "testbot")
		svc.PolicyFor(context.Background(), server.URL+"/b", "testbot")
		svc.PolicyFor(context.Background(), server.URL+"/c", "otherbot")

		assert.Equal(t, int64(1), fetches.Load())
	})

	t.Run("fails open when robots is missing", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.NotFoundHandler())
		defer server.Close()

		policy := sitehttp.NewRobotsService(server.Client()).PolicyFor(context.Background(), server.URL, "testbot")

		assert.True(t, policy.Allowed("/anything"))
		assert.Zero(t, policy.CrawlDelay())
		assert.Empty(t, policy.Sitemaps())
	})

	t.Run("fails open on server error", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		policy := sitehttp.NewRobotsService(server.Client()).PolicyFor(context.Background(), server.URL, "testbot")

		assert.True(t, policy.Allowed("/anything"))
	})

	t.Run("fails open on unreachable origin", func(t *testing.T) {
		t.Parallel()

		client := &http.Client{Timeout: 100 * time.Millisecond}
		policy := sitehttp.NewRobotsService(client).PolicyFor(context.Background(), "http://non-existent-host.invalid/page", "testbot")

		assert.True(t, policy.Allowed("/anything"))
	})

	t.Run("fails open on invalid URL", func(t *testing.T) {
		t.Parallel()

		policy := sitehttp.NewRobotsService(nil).PolicyFor(context.Background(), "://bad", "testbot")

		assert.True(t, policy.Allowed("/anything"))
	})

	t.Run("exposes crawl delay", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("User-agent: *\nCrawl-delay: 2\n"))
		}))
		defer server.Close()

		policy := sitehttp.NewRobotsService(server.Client()).PolicyFor(context.Background(), server.URL, "testbot")

		assert.Equal(t, 2*time.Second, policy.CrawlDelay())
	})

	t.Run("exposes declared sitemaps", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("User-agent: *\nAllow: /\n\nSitemap: https://example.com/sitemap.xml\nSitemap: https://example.com/news.xml\n"))
		}))
		defer server.Close()

		policy := sitehttp.NewRobotsService(server.Client()).PolicyFor(context.Background(), server.URL, "testbot")

		assert.Equal(t, []string{
			"https://example.com/sitemap.xml",
			"https://example.com/news.xml",
		}, policy.Sitemaps())
	})

	t.Run("matches the caller's user agent group", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("User-agent: badbot\nDisallow: /\n\nUser-agent: *\nAllow: /\n"))
		}))
		defer server.Close()

		svc := sitehttp.NewRobotsService(server.Client())

		assert.False(t, svc.PolicyFor(context.Background(), server.URL, "badbot/1.0").Allowed("/page"))
		assert.True(t, svc.PolicyFor(context.Background(), server.URL, "goodbot/1.0").Allowed("/page"))
	})
}

// Compile-time verification that RobotsService implements sitescope.RobotsService
var _ sitescope.RobotsService = (*sitehttp.RobotsService)(nil)
