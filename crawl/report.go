package crawl

import (
	"sort"
	"time"

	"github.com/fwojciec/sitescope"
)

// buildResult assembles the final CrawlResult from the run state: the
// sorted inventory, the edge list and the derived sitemap-coverage,
// status-histogram and duplicate-content reports.
func (r *run) buildResult(start time.Time, endpoints []string) *sitescope.CrawlResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	inventory := make([]sitescope.InventoryItem, 0, len(r.inventory))
	for _, item := range r.inventory {
		inventory = append(inventory, *item)
	}
	sort.Slice(inventory, func(i, j int) bool { return inventory[i].Key < inventory[j].Key })

	inbound := make(map[string]bool, len(r.edges))
	for _, e := range r.edges {
		inbound[e.To] = true
	}

	var orphans, linked []string
	for key := range r.fromSitemap {
		if !inbound[key] {
			orphans = append(orphans, key)
		}
	}
	for key := range inbound {
		if !r.fromSitemap[key] {
			linked = append(linked, key)
		}
	}
	sort.Strings(orphans)
	sort.Strings(linked)

	buckets := map[string]int{"0xx": 0, "2xx": 0, "3xx": 0, "4xx": 0, "5xx": 0}
	stats := sitescope.CrawlStats{
		PagesFetched: r.fetched,
		ElapsedMs:    time.Since(start).Milliseconds(),
	}
	for _, item := range inventory {
		buckets[bucketFor(item.Status)]++
		switch item.Provenance {
		case sitescope.ProvenanceSitemap:
			stats.FromSitemap++
		case sitescope.ProvenanceHTML:
			stats.FromHTML++
		case sitescope.ProvenanceBoth:
			stats.FromSitemap++
			stats.FromHTML++
		}
	}

	return &sitescope.CrawlResult{
		StartURL:           r.req.StartURL,
		Inventory:          inventory,
		Edges:              r.edges,
		SitemapEndpoints:   endpoints,
		Stats:              stats,
		OrphansInSitemap:   orphans,
		LinkedNotInSitemap: linked,
		StatusBuckets:      buckets,
		DuplicateContent:   duplicateGroups(inventory),
	}
}

// bucketFor maps an HTTP status to its histogram family. Unfetched and
// out-of-range statuses land in "0xx".
func bucketFor(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "2xx"
	case status >= 300 && status < 400:
		return "3xx"
	case status >= 400 && status < 500:
		return "4xx"
	case status >= 500 && status < 600:
		return "5xx"
	default:
		return "0xx"
	}
}

// duplicateGroups clusters inventory keys sharing a content hash. Only
// hashes seen on two or more pages produce a group; groups and their
// members are sorted for stable output.
func duplicateGroups(inventory []sitescope.InventoryItem) [][]string {
	byHash := make(map[string][]string)
	for _, item := range inventory {
		if item.ContentHash == "" {
			continue
		}
		byHash[item.ContentHash] = append(byHash[item.ContentHash], item.Key)
	}

	var groups [][]string
	for _, keys := range byHash {
		if len(keys) < 2 {
			continue
		}
		sort.Strings(keys)
		groups = append(groups, keys)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i][0] < groups[j][0] })
	return groups
}
