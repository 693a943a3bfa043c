// Package sitescope discovers and audits the URL surface of a website for
// SEO purposes. A crawl engine merges breadth-first HTML link discovery with
// sitemap declarations into one deduplicated inventory with provenance and
// redirect history, and an indexability auditor inspects canonical, robots
// and hreflang signals for a given list of URLs.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., http/, goquery/, sqlite/).
package sitescope
