// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package chat holds per-session conversation state and runs the turn
// pipeline: normalize, search, summarize, optionally fetch abstracts,
// assemble evidence, generate. The session owns the transcript; turns are
// strictly sequential, so no locking is needed.
package chat

import (
	"regexp"

	"github.com/dmossmd/ed-copilot/pkg/types"
)

// Session is the append-only transcript for one chat session plus the last
// turn's extracted citations. Cleared only by explicit Reset.
type Session struct {
	turns []types.Turn

	// lastCitations is what the model actually cited on the most recent
	// turn, extracted textually. It may diverge from the allowed set; that
	// divergence is a quality signal, not an error.
	lastCitations []string
}

// NewSession returns an empty session.
func NewSession() *Session {
	return &Session{}
}

// Append adds one turn to the transcript.
func (s *Session) Append(role types.Role, content string) {
	s.turns = append(s.turns, types.Turn{Role: role, Content: content})
}

// Reset clears the transcript and any per-turn state.
func (s *Session) Reset() {
	s.turns = nil
	s.lastCitations = nil
}

// Len returns the transcript length.
func (s *Session) Len() int {
	return len(s.turns)
}

// Turns returns a copy of the full transcript.
func (s *Session) Turns() []types.Turn {
	out := make([]types.Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Recent returns a copy of the trailing n turns, fewer if the transcript is
// shorter. Bounding the window keeps prompt context from growing without
// limit.
func (s *Session) Recent(n int) []types.Turn {
	if n <= 0 || len(s.turns) == 0 {
		return nil
	}
	start := len(s.turns) - n
	if start < 0 {
		start = 0
	}
	out := make([]types.Turn, len(s.turns)-start)
	copy(out, s.turns[start:])
	return out
}

// LastCitations returns the PMIDs extracted from the most recent answer.
func (s *Session) LastCitations() []string {
	return s.lastCitations
}

// pmidRe matches standalone 7-8 digit runs, the shape of a PubMed accession.
var pmidRe = regexp.MustCompile(`\b\d{7,8}\b`)

// ExtractPMIDs returns every standalone 7-8 digit run in text, de-duplicated
// preserving first occurrence. Extraction is purely textual and independent
// of the allowed citation set: it reflects what the model actually wrote.
func ExtractPMIDs(text string) []string {
	seen := make(map[string]bool)
	var pmids []string
	for _, m := range pmidRe.FindAllString(text, -1) {
		if seen[m] {
			continue
		}
		seen[m] = true
		pmids = append(pmids, m)
	}
	return pmids
}
