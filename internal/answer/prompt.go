// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package answer

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// Mode selects the output template.
type Mode string

const (
	// ModeWorkup produces the bulleted workup/treatment/disposition answer.
	ModeWorkup Mode = "workup"

	// ModeDischarge produces patient-facing discharge instructions.
	ModeDischarge Mode = "discharge"
)

// ParseMode converts a user-supplied mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeWorkup:
		return ModeWorkup, nil
	case ModeDischarge:
		return ModeDischarge, nil
	}
	return "", fmt.Errorf("unknown mode %q (expected %q or %q)", s, ModeWorkup, ModeDischarge)
}

// Disclaimer is the fixed closing sentence of discharge instructions.
const Disclaimer = "This is not medical advice and is for demo only."

// systemPrompt fixes the assistant persona and the citation rules. The
// citation constraint is instruction-only: the model is told, not forced, to
// stay inside the allowed set.
const systemPrompt = "You are an emergency medicine attending helping another ED clinician on shift. " +
	"Be concise and practical. " +
	"Do not ask for or include PHI. " +
	"If critical details are missing, ask up to 3 clarifying questions first, then give a best-effort answer. " +
	"Only cite PMIDs that appear in Allowed PMIDs. " +
	"If Allowed PMIDs is not 'none', you MUST cite at least 1 PMID from it."

// SystemPrompt returns the system instruction for every generation request.
func SystemPrompt() string { return systemPrompt }

// promptData feeds the user-prompt templates.
type promptData struct {
	Question   string
	Evidence   string
	AllowedStr string
	Disclaimer string
}

var workupTmpl = template.Must(template.New("workup").Parse(`User question:
{{.Question}}

PubMed results (metadata only):
{{.Evidence}}

Allowed PMIDs: {{.AllowedStr}}
RULE: If Allowed PMIDs is not 'none', end with 'Citations: ' followed by 1-3 PMIDs from Allowed PMIDs.
Do not write 'none' if Allowed PMIDs is not 'none'.

Output (keep brief):
- Quick take (max 3 bullets)
- Workup (labs/imaging) (max 6 bullets)
- Treatment (max 6 bullets)
- Disposition (max 4 bullets)
- Citations: 1-3 PMIDs (required if Allowed PMIDs is not 'none')
`))

var dischargeTmpl = template.Must(template.New("discharge").Parse(`User question:
{{.Question}}

PubMed results (metadata only):
{{.Evidence}}

Allowed PMIDs: {{.AllowedStr}}
RULE: If Allowed PMIDs is not 'none', end with 'Citations: ' followed by 1-3 PMIDs from Allowed PMIDs.
Do not write 'none' if Allowed PMIDs is not 'none'.

Write patient-friendly discharge instructions at about an 8th-grade reading level.
Include: brief explanation, what to do at home, meds if relevant (general), red flags to return, follow-up.
Keep it brief.
End with: "{{.Disclaimer}}"
`))

// BuildUserPrompt renders the mode-specific user prompt: the question, the
// evidence block, and the allowed-PMID rule.
func BuildUserPrompt(question, evidenceText string, allowed []string, mode Mode) (string, error) {
	allowedStr := "none"
	if len(allowed) > 0 {
		allowedStr = strings.Join(allowed, ", ")
	}

	data := promptData{
		Question:   question,
		Evidence:   evidenceText,
		AllowedStr: allowedStr,
		Disclaimer: Disclaimer,
	}

	tmpl := workupTmpl
	if mode == ModeDischarge {
		tmpl = dischargeTmpl
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}
	return buf.String(), nil
}
