// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package evidence formats retrieved article metadata into the grounding
// context given to the completion service, and derives the allowed citation
// set from it. The allowed set is the single source of truth for what the
// generator may cite; it is exactly the identifiers of the selected
// summaries and is never widened downstream.
package evidence

import (
	"fmt"
	"strings"

	"github.com/dmossmd/ed-copilot/pkg/types"
)

// NoResultsText is the sentinel evidence block used when the search returned
// nothing.
const NoResultsText = "No PubMed results returned."

// ellipsis marks a truncated abstract.
const ellipsis = "..."

// Block is the assembled evidence: the formatted context text and the
// allowed citation set, in selection order.
type Block struct {
	Text    string
	Allowed []string
}

// HasCitations reports whether the block permits any citations.
func (b Block) HasCitations() bool {
	return len(b.Allowed) > 0
}

// AllowedSet returns the allowed citations as a lookup set.
func (b Block) AllowedSet() map[string]bool {
	set := make(map[string]bool, len(b.Allowed))
	for _, pmid := range b.Allowed {
		set[pmid] = true
	}
	return set
}

// Assemble selects the first maxItems summaries (retrieval order is
// relevance order; no re-ranking) and emits one formatted record per
// selection. When abstracts is non-nil and has text for a PMID, the record
// carries that abstract truncated to maxAbstractChars. An empty summary
// sequence yields the sentinel text and an empty allowed set.
func Assemble(summaries []types.ArticleSummary, abstracts map[string]string, maxItems, maxAbstractChars int) Block {
	if maxItems > 0 && len(summaries) > maxItems {
		summaries = summaries[:maxItems]
	}
	if len(summaries) == 0 {
		return Block{Text: NoResultsText}
	}

	var lines []string
	allowed := make([]string, 0, len(summaries))
	for _, s := range summaries {
		allowed = append(allowed, s.PMID)
		lines = append(lines, formatRecord(s))
		if text := abstracts[s.PMID]; text != "" {
			lines = append(lines, "  Abstract: "+truncateAbstract(text, maxAbstractChars))
		}
	}

	return Block{Text: strings.Join(lines, "\n"), Allowed: allowed}
}

func formatRecord(s types.ArticleSummary) string {
	title := s.Title
	if title == "" {
		title = "(No title returned)"
	}
	return fmt.Sprintf("- %s (%s, %s). PMID %s. %s", title, s.Journal, s.Year, s.PMID, s.URL)
}

// truncateAbstract bounds an abstract and appends the ellipsis marker when
// it was cut.
func truncateAbstract(text string, max int) string {
	if max <= 0 || len(text) <= max {
		return text
	}
	return text[:max] + ellipsis
}
