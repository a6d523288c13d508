// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the ed-copilot pipeline:
// retrieved article metadata, conversation turns, and per-stage configuration.
package types

// ArticleSummary holds the metadata for one PubMed record. Summaries are the
// only article data the answer prompt ever sees unless abstract enrichment is
// turned on.
type ArticleSummary struct {
	// PMID is the PubMed accession, a 7-8 digit numeric string. Never empty
	// on a constructed summary.
	PMID string `json:"pmid" yaml:"pmid"`

	// Title is the article title with any trailing period removed. May be
	// empty; formatters must substitute a placeholder.
	Title string `json:"title" yaml:"title"`

	// Journal is the full journal name as returned by the source.
	Journal string `json:"journal" yaml:"journal"`

	// Year is the publication year, taken as the first token of the source's
	// pubdate field (e.g. "2021" from "2021 Mar 4").
	Year string `json:"year" yaml:"year"`

	// URL is the canonical PubMed page for the record.
	URL string `json:"url" yaml:"url"`
}
