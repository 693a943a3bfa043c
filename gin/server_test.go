package gin_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fwojciec/sitescope"
	singin "github.com/fwojciec/sitescope/gin"
	"github.com/fwojciec/sitescope/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestServer_Health(t *testing.T) {
	t.Parallel()

	srv := singin.NewServer(nil, nil, nil, sitescope.DefaultConfig(), discardLogger())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServer_Crawl(t *testing.T) {
	t.Parallel()

	t.Run("binds request and serializes result", func(t *testing.T) {
		t.Parallel()

		var got sitescope.CrawlRequest
		crawler := &mock.CrawlService{
			CrawlFn: func(ctx context.Context, req sitescope.CrawlRequest) (*sitescope.CrawlResult, error) {
				got = req
				return &sitescope.CrawlResult{
					StartURL: req.StartURL,
					Inventory: []sitescope.InventoryItem{
						{URL: "https://example.com", Key: "https://example.com", Status: 200, Provenance: sitescope.ProvenanceHTML},
					},
					StatusBuckets: map[string]int{"2xx": 1},
				}, nil
			},
		}
		srv := singin.NewServer(crawler, nil, nil, sitescope.DefaultConfig(), discardLogger())

		body := `{"startUrl":"https://example.com","maxDepth":1,"maxPages":10}`
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/crawl", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		srv.Handler().ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "https://example.com", got.StartURL)
		assert.Equal(t, 1, got.MaxDepth)
		assert.Equal(t, 10, got.MaxPages)

		var res sitescope.CrawlResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		require.Len(t, res.Inventory, 1)
		assert.Equal(t, sitescope.ProvenanceHTML, res.Inventory[0].Provenance)
		assert.Equal(t, 1, res.StatusBuckets["2xx"])
	})

	t.Run("substitutes configured defaults for absent fields", func(t *testing.T) {
		t.Parallel()

		var got sitescope.CrawlRequest
		crawler := &mock.CrawlService{
			CrawlFn: func(ctx context.Context, req sitescope.CrawlRequest) (*sitescope.CrawlResult, error) {
				got = req
				return &sitescope.CrawlResult{StartURL: req.StartURL}, nil
			},
		}
		cfg := sitescope.DefaultConfig()
		cfg.MaxDepth = 3
		cfg.MaxPages = 42
		cfg.UserAgent = "sitescope-test/1.0"
		srv := singin.NewServer(crawler, nil, nil, cfg, discardLogger())

		body := `{"startUrl":"https://example.com"}`
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/crawl", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		srv.Handler().ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 3, got.MaxDepth)
		assert.Equal(t, 42, got.MaxPages)
		assert.Equal(t, "sitescope-test/1.0", got.UserAgent)
		assert.True(t, got.RespectRobots)
	})

	t.Run("explicit respectRobots false overrides the default", func(t *testing.T) {
		t.Parallel()

		var got sitescope.CrawlRequest
		crawler := &mock.CrawlService{
			CrawlFn: func(ctx context.Context, req sitescope.CrawlRequest) (*sitescope.CrawlResult, error) {
				got = req
				return &sitescope.CrawlResult{StartURL: req.StartURL}, nil
			},
		}
		srv := singin.NewServer(crawler, nil, nil, sitescope.DefaultConfig(), discardLogger())

		body := `{"startUrl":"https://example.com","respectRobots":false}`
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/crawl", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		srv.Handler().ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.False(t, got.RespectRobots)
	})

	t.Run("returns 400 on malformed body", func(t *testing.T) {
		t.Parallel()

		srv := singin.NewServer(&mock.CrawlService{}, nil, nil, sitescope.DefaultConfig(), discardLogger())

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/crawl", strings.NewReader("{not json"))
		req.Header.Set("Content-Type", "application/json")
		srv.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("maps EINVALID to 400 with message", func(t *testing.T) {
		t.Parallel()

		crawler := &mock.CrawlService{
			CrawlFn: func(ctx context.Context, req sitescope.CrawlRequest) (*sitescope.CrawlResult, error) {
				return nil, sitescope.Errorf(sitescope.EINVALID, "start URL required")
			},
		}
		srv := singin.NewServer(crawler, nil, nil, sitescope.DefaultConfig(), discardLogger())

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/crawl", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		srv.Handler().ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "start URL required")
	})
}

func TestServer_Audit(t *testing.T) {
	t.Parallel()

	t.Run("returns one result per URL", func(t *testing.T) {
		t.Parallel()

		auditor := &mock.AuditService{
			AuditFn: func(ctx context.Context, req sitescope.AuditRequest) ([]sitescope.AuditResult, error) {
				results := make([]sitescope.AuditResult, len(req.URLs))
				for i, u := range req.URLs {
					results[i] = sitescope.AuditResult{URL: u, Status: 200}
				}
				return results, nil
			},
		}
		srv := singin.NewServer(nil, auditor, nil, sitescope.DefaultConfig(), discardLogger())

		body := `{"urls":["https://example.com/a","https://example.com/b"]}`
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/audit", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		srv.Handler().ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var results []sitescope.AuditResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
		require.Len(t, results, 2)
		assert.Equal(t, "https://example.com/a", results[0].URL)
	})
}

func TestServer_Runs(t *testing.T) {
	t.Parallel()

	t.Run("lists runs with kind filter", func(t *testing.T) {
		t.Parallel()

		var got sitescope.RunFilter
		runs := &mock.RunService{
			FindRunsFn: func(ctx context.Context, filter sitescope.RunFilter) ([]*sitescope.Run, error) {
				got = filter
				return []*sitescope.Run{{ID: "abc", Kind: sitescope.RunKindCrawl}}, nil
			},
		}
		srv := singin.NewServer(nil, nil, runs, sitescope.DefaultConfig(), discardLogger())

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/runs?kind=crawl", nil)
		srv.Handler().ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, got.Kind)
		assert.Equal(t, sitescope.RunKindCrawl, *got.Kind)
	})

	t.Run("maps ENOTFOUND to 404", func(t *testing.T) {
		t.Parallel()

		runs := &mock.RunService{
			FindRunByIDFn: func(ctx context.Context, id string) (*sitescope.Run, error) {
				return nil, sitescope.Errorf(sitescope.ENOTFOUND, "run %q not found", id)
			},
		}
		srv := singin.NewServer(nil, nil, runs, sitescope.DefaultConfig(), discardLogger())

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/runs/missing", nil)
		srv.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("delete returns 204", func(t *testing.T) {
		t.Parallel()

		runs := &mock.RunService{
			DeleteRunFn: func(ctx context.Context, id string) error {
				return nil
			},
		}
		srv := singin.NewServer(nil, nil, runs, sitescope.DefaultConfig(), discardLogger())

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/api/runs/abc", nil)
		srv.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("archive endpoints respond 404 when unconfigured", func(t *testing.T) {
		t.Parallel()

		srv := singin.NewServer(nil, nil, nil, sitescope.DefaultConfig(), discardLogger())

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/runs", nil)
		srv.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestServer_RequestLogging(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	srv := singin.NewServer(nil, nil, nil, sitescope.DefaultConfig(), logger)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	srv.Handler().ServeHTTP(rec, req)

	output := buf.String()
	assert.Contains(t, output, "method=GET")
	assert.Contains(t, output, "path=/health")
	assert.Contains(t, output, "status=200")
}
