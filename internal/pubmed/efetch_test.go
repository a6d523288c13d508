// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubmed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmossmd/ed-copilot/pkg/types"
)

const sampleEFetchXML = `<?xml version="1.0" ?>
<PubmedArticleSet>
  <PubmedArticle>
    <MedlineCitation>
      <PMID>12345678</PMID>
      <Article>
        <Abstract>
          <AbstractText Label="BACKGROUND">DKA is common.</AbstractText>
          <AbstractText Label="METHODS">Retrospective cohort.</AbstractText>
          <AbstractText Label="RESULTS">Early potassium repletion helped.</AbstractText>
        </Abstract>
      </Article>
    </MedlineCitation>
  </PubmedArticle>
  <PubmedArticle>
    <MedlineCitation>
      <PMID>23456789</PMID>
      <Article>
        <Abstract>
          <AbstractText>Single unlabeled paragraph.</AbstractText>
        </Abstract>
      </Article>
    </MedlineCitation>
  </PubmedArticle>
</PubmedArticleSet>`

func TestAbstracts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sampleEFetchXML)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, nil)
	abstracts, err := c.Abstracts(context.Background(), []string{"12345678", "23456789"})
	if err != nil {
		t.Fatalf("Abstracts() error: %v", err)
	}

	want := "BACKGROUND: DKA is common.\nMETHODS: Retrospective cohort.\nRESULTS: Early potassium repletion helped."
	if abstracts["12345678"] != want {
		t.Errorf("labeled abstract = %q, want %q", abstracts["12345678"], want)
	}
	if abstracts["23456789"] != "Single unlabeled paragraph." {
		t.Errorf("unlabeled abstract = %q", abstracts["23456789"])
	}
}

func TestAbstractsMapTotality(t *testing.T) {
	// The response covers only one of three requested PMIDs; every requested
	// PMID must still be a key in the result.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<?xml version="1.0" ?>
<PubmedArticleSet>
  <PubmedArticle>
    <MedlineCitation>
      <PMID>11111111</PMID>
      <Article><Abstract><AbstractText>Text.</AbstractText></Abstract></Article>
    </MedlineCitation>
  </PubmedArticle>
</PubmedArticleSet>`)
	}))
	defer srv.Close()

	requested := []string{"11111111", "22222222", "33333333"}
	c := newTestClient(t, srv, nil)
	abstracts, err := c.Abstracts(context.Background(), requested)
	if err != nil {
		t.Fatalf("Abstracts() error: %v", err)
	}

	for _, pmid := range requested {
		if _, ok := abstracts[pmid]; !ok {
			t.Errorf("requested PMID %s missing from result map", pmid)
		}
	}
	if abstracts["11111111"] != "Text." {
		t.Errorf("abstract = %q", abstracts["11111111"])
	}
	if abstracts["22222222"] != "" || abstracts["33333333"] != "" {
		t.Error("omitted PMIDs must map to empty strings")
	}
}

func TestAbstractsEmptyInput(t *testing.T) {
	c := &Client{Cfg: testCfg()}
	abstracts, err := c.Abstracts(context.Background(), nil)
	if err != nil {
		t.Fatalf("Abstracts() error: %v", err)
	}
	if len(abstracts) != 0 {
		t.Errorf("Abstracts(nil) = %v, want empty map", abstracts)
	}
}

func TestAbstractsMalformedXML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<PubmedArticleSet><unclosed>")
	}))
	defer srv.Close()

	c := newTestClient(t, srv, nil)
	_, err := c.Abstracts(context.Background(), []string{"12345678"})
	if !errors.Is(err, types.ErrRetrieval) {
		t.Errorf("Abstracts() error = %v, want ErrRetrieval", err)
	}
}

func TestJoinSegmentsSkipsEmpty(t *testing.T) {
	got := joinSegments([]abstractSegment{
		{Label: "BACKGROUND", Text: "  a  "},
		{Label: "", Text: "   "},
		{Label: "", Text: "b"},
	})
	if got != "BACKGROUND: a\nb" {
		t.Errorf("joinSegments() = %q", got)
	}
}
