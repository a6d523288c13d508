// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package chat

import (
	"context"
	"fmt"
	"io"

	"github.com/dmossmd/ed-copilot/internal/answer"
	"github.com/dmossmd/ed-copilot/internal/evidence"
	"github.com/dmossmd/ed-copilot/internal/pubmed"
	"github.com/dmossmd/ed-copilot/internal/query"
	"github.com/dmossmd/ed-copilot/pkg/types"
)

// Pipeline wires the stages of one turn. All stages run sequentially and
// block until done or until the HTTP timeout elapses.
type Pipeline struct {
	PubMed  *pubmed.Client
	Backend answer.Backend
	Cfg     types.AppConfig
}

// TurnResult carries everything a surface needs to render one completed
// turn.
type TurnResult struct {
	// Summaries are the retrieved article records shown above the answer.
	Summaries []types.ArticleSummary

	// Block is the assembled evidence and its allowed citation set.
	Block evidence.Block

	// Answer is the generated text.
	Answer string

	// Cited is what the model actually cited, extracted from Answer.
	Cited []string
}

// Run executes one turn. The user question is appended to the transcript
// before the pipeline starts; the assistant turn is appended only when
// generation succeeds, so a failed turn leaves the question recorded with no
// reply. Warnings (abstract fetch degradation) go to warnW.
func (p *Pipeline) Run(ctx context.Context, session *Session, question string, mode answer.Mode, warnW io.Writer) (TurnResult, error) {
	prior := session.Recent(p.Cfg.Answer.HistoryWindow)
	session.Append(types.RoleUser, question)

	candidates := query.Normalize(question)

	pmids, err := p.PubMed.Search(ctx, candidates, p.Cfg.PubMed.RetMax)
	if err != nil {
		return TurnResult{}, err
	}

	summaries, err := p.PubMed.Summaries(ctx, pmids)
	if err != nil {
		return TurnResult{}, err
	}

	// Abstract enrichment is optional and degrades gracefully: on failure
	// the turn proceeds with metadata only.
	var abstracts map[string]string
	if p.Cfg.PubMed.FetchAbstracts && len(summaries) > 0 {
		ids := make([]string, len(summaries))
		for i, s := range summaries {
			ids[i] = s.PMID
		}
		abstracts, err = p.PubMed.Abstracts(ctx, ids)
		if err != nil {
			fmt.Fprintf(warnW, "warning: abstract fetch failed, continuing with metadata only: %v\n", err)
			abstracts = nil
		}
	}

	block := evidence.Assemble(summaries, abstracts, p.Cfg.PubMed.RetMax, p.Cfg.PubMed.MaxAbstractChars)

	text, err := answer.Generate(ctx, p.Backend, p.Cfg.Answer, prior, question, block.Text, block.Allowed, mode)
	if err != nil {
		return TurnResult{}, err
	}

	session.Append(types.RoleAssistant, text)
	session.lastCitations = ExtractPMIDs(text)

	return TurnResult{
		Summaries: summaries,
		Block:     block,
		Answer:    text,
		Cited:     session.lastCitations,
	}, nil
}
