// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubmed

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dmossmd/ed-copilot/pkg/types"
)

// FormatTable writes summaries as a human-readable table to w.
func FormatTable(summaries []types.ArticleSummary, w io.Writer) {
	if len(summaries) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-60s  %-30s  %-4s  %s\n",
		"Rank", "Title", "Journal", "Year", "PMID")
	fmt.Fprintln(w, strings.Repeat("-", 112))

	for i, s := range summaries {
		title := s.Title
		if title == "" {
			title = "(No title returned)"
		}
		fmt.Fprintf(w, "%-4d  %-60s  %-30s  %-4s  %s\n",
			i+1, truncate(title, 60), truncate(s.Journal, 30), s.Year, s.PMID)
	}

	fmt.Fprintf(w, "\n%d results\n", len(summaries))
}

// FormatJSON writes summaries as indented JSON to w.
func FormatJSON(summaries []types.ArticleSummary, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(summaries)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
