// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package query turns a free-text clinical question into PubMed search terms.
// It expands common ED abbreviations, strips filler words, and builds an
// ordered ladder of candidate term strings from most specific to most
// permissive so that one missing or misspelled token cannot void the whole
// search.
package query

import (
	"fmt"
	"regexp"
	"strings"
)

// stopwords are generic clinical and grammatical filler that carry no search
// signal on PubMed.
var stopwords = map[string]bool{
	"adult": true, "peds": true, "pediatric": true, "initial": true,
	"management": true, "workup": true, "labs": true, "lab": true,
	"treatment": true, "treatments": true, "criteria": true,
	"admission": true, "disposition": true, "dx": true, "ddx": true,
	"ed": true, "em": true, "er": true, "the": true, "a": true, "an": true,
	"and": true, "or": true, "to": true, "for": true, "of": true,
	"with": true, "without": true, "in": true, "on": true, "at": true,
	"by": true, "from": true, "vs": true, "versus": true,
	"suspected": true, "possible": true, "patient": true, "patients": true,
	"male": true, "female": true, "man": true, "woman": true,
	"yo": true, "y/o": true, "year": true, "old": true, "consider": true,
}

// abbreviation holds one whole-word expansion. Kept as an ordered slice so
// the compiled patterns are deterministic; entries apply independently.
type abbreviation struct {
	short string
	long  string
	re    *regexp.Regexp
}

var abbreviations = compileAbbreviations(map[string]string{
	"dka":  "diabetic ketoacidosis",
	"pe":   "pulmonary embolism",
	"acs":  "acute coronary syndrome",
	"afib": "atrial fibrillation",
	"ich":  "intracerebral hemorrhage",
	"tbi":  "traumatic brain injury",
	"uti":  "urinary tract infection",
	"copd": "chronic obstructive pulmonary disease",
	"chf":  "congestive heart failure",
	"svt":  "supraventricular tachycardia",
	"gib":  "gastrointestinal bleeding",
})

func compileAbbreviations(table map[string]string) []abbreviation {
	out := make([]abbreviation, 0, len(table))
	for short, long := range table {
		out = append(out, abbreviation{
			short: short,
			long:  long,
			re:    regexp.MustCompile(`\b` + regexp.QuoteMeta(short) + `\b`),
		})
	}
	return out
}

// nonAlnumRe strips everything outside lowercase letters, digits, and
// whitespace after the working text has been lowercased.
var nonAlnumRe = regexp.MustCompile(`[^a-z0-9\s]`)

// maxKeyTerms bounds the key-term set used to build field queries.
const maxKeyTerms = 5

// KeyTerms returns the bounded, de-duplicated, stopword-filtered token set
// for a question, in first-seen order. An empty or filler-only question
// yields nil.
func KeyTerms(question string) []string {
	working := expand(strings.ToLower(strings.TrimSpace(question)))
	cleaned := nonAlnumRe.ReplaceAllString(working, " ")

	seen := make(map[string]bool)
	var terms []string
	for _, tok := range strings.Fields(cleaned) {
		if stopwords[tok] || seen[tok] {
			continue
		}
		seen[tok] = true
		terms = append(terms, tok)
		if len(terms) == maxKeyTerms {
			break
		}
	}
	return terms
}

// expand applies every abbreviation to the lowercased text as a whole-word
// substitution.
func expand(lower string) string {
	for _, a := range abbreviations {
		lower = a.re.ReplaceAllString(lower, a.long)
	}
	return lower
}

// Normalize builds the ordered candidate PubMed term strings for a question,
// most specific first:
//
//  1. quoted original question OR a Title/Abstract conjunction of key terms
//  2. disjunction of individual key terms OR the raw key-term phrase
//  3. the quoted original question alone
//
// The retriever tries candidates in order until one returns results. An
// empty question yields nil; a question that survives filtering with no key
// terms yields only the quoted original.
func Normalize(question string) []string {
	q := strings.TrimSpace(question)
	if q == "" {
		return nil
	}

	phrase := fmt.Sprintf("%q", q)
	terms := KeyTerms(q)
	if len(terms) == 0 {
		return []string{phrase}
	}

	fielded := make([]string, len(terms))
	for i, t := range terms {
		fielded[i] = t + "[Title/Abstract]"
	}

	candidates := []string{
		fmt.Sprintf("(%s) OR (%s)", phrase, strings.Join(fielded, " AND ")),
		fmt.Sprintf("(%s) OR (%q)", strings.Join(terms, " OR "), strings.Join(terms, " ")),
		phrase,
	}
	return candidates
}
