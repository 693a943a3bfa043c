package sqlite_test

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/sitescope"
	"github.com/fwojciec/sitescope/sqlite"
	"github.com/stretchr/testify/require"
)

// BenchmarkWALMode compares write performance between WAL and rollback journal
// modes for an archiving workload: inserting many run records with JSON payloads.
func BenchmarkWALMode(b *testing.B) {
	b.Run("rollback_journal", func(b *testing.B) {
		benchmarkRunInserts(b, false)
	})

	b.Run("wal_mode", func(b *testing.B) {
		benchmarkRunInserts(b, true)
	})
}

func benchmarkRunInserts(b *testing.B, useWAL bool) {
	b.Helper()

	tmpDir := b.TempDir()
	dbPath := filepath.Join(tmpDir, "bench.db")

	db := sqlite.NewDB(dbPath)
	require.NoError(b, db.Open())

	if !useWAL {
		ctx := context.Background()
		_, err := db.ExecContext(ctx, "PRAGMA journal_mode = DELETE")
		require.NoError(b, err)
	}

	defer func() {
		db.Close()
		// Clean up WAL files if they exist
		os.Remove(dbPath + "-wal")
		os.Remove(dbPath + "-shm")
	}()

	ctx := context.Background()
	svc := sqlite.NewRunService(db)

	payload, err := json.Marshal(&sitescope.CrawlResult{
		StartURL: "https://example.com",
		Inventory: []sitescope.InventoryItem{
			{URL: "https://example.com", Key: "https://example.com", Status: 200, Provenance: sitescope.ProvenanceHTML},
			{URL: "https://example.com/about", Key: "https://example.com/about", Status: 200, Provenance: sitescope.ProvenanceBoth},
		},
		StatusBuckets: map[string]int{"0xx": 0, "2xx": 2, "3xx": 0, "4xx": 0, "5xx": 0},
	})
	require.NoError(b, err)

	// Reset timer to exclude setup time
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		run := &sitescope.Run{
			Kind:     sitescope.RunKindCrawl,
			StartURL: fmt.Sprintf("https://example.com/site%d", i),
			Pages:    2,
			Result:   payload,
		}
		if err := svc.CreateRun(ctx, run); err != nil {
			b.Fatal(err)
		}
	}
}
