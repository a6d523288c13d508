// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package chat

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/dmossmd/ed-copilot/internal/answer"
	"github.com/dmossmd/ed-copilot/internal/evidence"
	"github.com/dmossmd/ed-copilot/internal/pubmed"
	"github.com/dmossmd/ed-copilot/pkg/types"
)

// eutilsTransport fakes the E-utilities endpoints by path, so the pipeline
// can run without touching package-level base URLs.
type eutilsTransport struct {
	idlist      []string
	searchCalls int
}

func (tr *eutilsTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var body string
	switch {
	case strings.Contains(req.URL.Path, "esearch"):
		tr.searchCalls++
		quoted := make([]string, len(tr.idlist))
		for i, id := range tr.idlist {
			quoted[i] = fmt.Sprintf("%q", id)
		}
		body = fmt.Sprintf(`{"esearchresult": {"idlist": [%s]}}`, strings.Join(quoted, ","))
	case strings.Contains(req.URL.Path, "esummary"):
		var records []string
		for _, id := range tr.idlist {
			records = append(records, fmt.Sprintf(
				`%q: {"title": "Article %s.", "fulljournalname": "J", "pubdate": "2021 Mar"}`, id, id))
		}
		body = fmt.Sprintf(`{"result": {%s}}`, strings.Join(records, ","))
	case strings.Contains(req.URL.Path, "efetch"):
		var articles strings.Builder
		for _, id := range tr.idlist {
			fmt.Fprintf(&articles, `<PubmedArticle><MedlineCitation><PMID>%s</PMID>
<Article><Abstract><AbstractText Label="BACKGROUND">About %s.</AbstractText></Abstract></Article>
</MedlineCitation></PubmedArticle>`, id, id)
		}
		body = "<PubmedArticleSet>" + articles.String() + "</PubmedArticleSet>"
	default:
		return &http.Response{StatusCode: http.StatusNotFound, Body: io.NopCloser(strings.NewReader("")), Request: req}, nil
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(body)),
		Request:    req,
	}, nil
}

type scriptedBackend struct {
	reply string
	err   error
}

func (b *scriptedBackend) Complete(_ context.Context, _ []answer.Message, _ int) (string, error) {
	return b.reply, b.err
}

func testPipeline(tr *eutilsTransport, backend answer.Backend, fetchAbstracts bool) *Pipeline {
	cfg := types.AppConfig{
		PubMed: types.PubMedConfig{
			HTTPConfig:       types.HTTPConfig{Timeout: 10 * time.Second, UserAgent: "test/0.1"},
			RetMax:           5,
			FetchAbstracts:   fetchAbstracts,
			MaxAbstractChars: 1200,
		},
		Answer: types.AnswerConfig{
			Model:              "gpt-4o-mini",
			Temperature:        0.2,
			WorkupMaxTokens:    450,
			DischargeMaxTokens: 350,
			HistoryWindow:      5,
		},
	}
	return &Pipeline{
		PubMed:  &pubmed.Client{HTTP: &http.Client{Transport: tr}, Cfg: cfg.PubMed},
		Backend: backend,
		Cfg:     cfg,
	}
}

func TestRunWorkupScenario(t *testing.T) {
	tr := &eutilsTransport{idlist: []string{"11111111", "22222222", "33333333"}}
	backend := &scriptedBackend{reply: `- Quick take
- Workup
- Treatment
- Disposition
Citations: 11111111`}

	p := testPipeline(tr, backend, false)
	session := NewSession()

	res, err := p.Run(context.Background(), session, "DKA initial management, potassium and insulin", answer.ModeWorkup, io.Discard)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if len(res.Summaries) > 5 {
		t.Errorf("retrieved %d summaries, want at most retmax", len(res.Summaries))
	}
	if len(res.Block.Allowed) != len(res.Summaries) {
		t.Errorf("allowed set size %d != evidence records %d", len(res.Block.Allowed), len(res.Summaries))
	}

	// At least one cited PMID comes from the allowed set.
	allowedSet := res.Block.AllowedSet()
	var cited bool
	for _, pmid := range res.Cited {
		if allowedSet[pmid] {
			cited = true
			break
		}
	}
	if !cited {
		t.Errorf("no cited PMID from allowed set: cited=%v allowed=%v", res.Cited, res.Block.Allowed)
	}

	// Transcript: user question then assistant answer.
	turns := session.Turns()
	if len(turns) != 2 {
		t.Fatalf("transcript length = %d, want 2", len(turns))
	}
	if turns[0].Role != types.RoleUser || turns[1].Role != types.RoleAssistant {
		t.Errorf("turn roles = %v, %v", turns[0].Role, turns[1].Role)
	}
}

func TestRunEmptyResultsScenario(t *testing.T) {
	tr := &eutilsTransport{idlist: nil}
	backend := &scriptedBackend{reply: "I have no PubMed grounding for this; based on general practice..."}

	p := testPipeline(tr, backend, false)
	session := NewSession()

	res, err := p.Run(context.Background(), session, "extremely obscure question", answer.ModeWorkup, io.Discard)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if res.Block.Text != evidence.NoResultsText {
		t.Errorf("evidence text = %q, want sentinel", res.Block.Text)
	}
	if res.Block.HasCitations() {
		t.Errorf("allowed = %v, want empty", res.Block.Allowed)
	}
	if len(res.Cited) != 0 {
		t.Errorf("answer cites %v with no allowed PMIDs", res.Cited)
	}
	// Every candidate is exhausted before giving up.
	if tr.searchCalls != 3 {
		t.Errorf("search calls = %d, want one per candidate", tr.searchCalls)
	}
}

func TestRunAbstractEnrichment(t *testing.T) {
	tr := &eutilsTransport{idlist: []string{"11111111"}}
	backend := &scriptedBackend{reply: "Citations: 11111111"}

	p := testPipeline(tr, backend, true)
	res, err := p.Run(context.Background(), NewSession(), "sepsis bundle", answer.ModeWorkup, io.Discard)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if !strings.Contains(res.Block.Text, "BACKGROUND: About 11111111.") {
		t.Errorf("evidence missing labeled abstract:\n%s", res.Block.Text)
	}
}

// failFetchTransport serves search and summary but fails efetch, so the turn
// must degrade to metadata-only evidence.
type failFetchTransport struct {
	eutilsTransport
}

func (tr *failFetchTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if strings.Contains(req.URL.Path, "efetch") {
		return &http.Response{StatusCode: http.StatusBadGateway, Body: io.NopCloser(strings.NewReader("")), Request: req}, nil
	}
	return tr.eutilsTransport.RoundTrip(req)
}

func TestRunAbstractFailureDegrades(t *testing.T) {
	tr := &failFetchTransport{eutilsTransport{idlist: []string{"11111111"}}}
	backend := &scriptedBackend{reply: "Citations: 11111111"}

	cfgPipeline := testPipeline(&tr.eutilsTransport, backend, true)
	cfgPipeline.PubMed.HTTP = &http.Client{Transport: tr}

	var warnings bytes.Buffer
	res, err := cfgPipeline.Run(context.Background(), NewSession(), "sepsis bundle", answer.ModeWorkup, &warnings)
	if err != nil {
		t.Fatalf("Run() must not fail when abstracts degrade: %v", err)
	}
	if strings.Contains(res.Block.Text, "Abstract:") {
		t.Error("evidence should be metadata-only after abstract failure")
	}
	if !strings.Contains(warnings.String(), "abstract fetch failed") {
		t.Errorf("missing degradation warning: %q", warnings.String())
	}
}

func TestRunGenerationFailureLeavesQuestionOnly(t *testing.T) {
	tr := &eutilsTransport{idlist: []string{"11111111"}}
	backend := &scriptedBackend{err: fmt.Errorf("auth failure")}

	p := testPipeline(tr, backend, false)
	session := NewSession()

	_, err := p.Run(context.Background(), session, "chest pain workup", answer.ModeWorkup, io.Discard)
	if !errors.Is(err, types.ErrGeneration) {
		t.Fatalf("Run() error = %v, want ErrGeneration", err)
	}

	turns := session.Turns()
	if len(turns) != 1 || turns[0].Role != types.RoleUser {
		t.Errorf("failed turn transcript = %v, want only the user question", turns)
	}
}

func TestClearChatAfterTwoTurns(t *testing.T) {
	tr := &eutilsTransport{idlist: []string{"11111111"}}
	backend := &scriptedBackend{reply: "Citations: 11111111"}
	p := testPipeline(tr, backend, false)
	session := NewSession()

	for _, q := range []string{"first question", "second question"} {
		if _, err := p.Run(context.Background(), session, q, answer.ModeWorkup, io.Discard); err != nil {
			t.Fatalf("Run(%q) error: %v", q, err)
		}
	}
	if session.Len() != 4 {
		t.Fatalf("transcript length = %d, want 4 before clear", session.Len())
	}

	session.Reset()
	if session.Len() != 0 {
		t.Errorf("transcript length after clear = %d, want 0", session.Len())
	}
	if session.LastCitations() != nil {
		t.Errorf("pending citation state survives clear: %v", session.LastCitations())
	}
}
