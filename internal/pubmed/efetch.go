// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubmed

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/dmossmd/ed-copilot/internal/cache"
	"github.com/dmossmd/ed-copilot/internal/httputil"
	"github.com/dmossmd/ed-copilot/pkg/types"
)

// EFetch XML structures. EFetch has no JSON mode for PubMed records; the
// abstract lives under MedlineCitation/Article/Abstract as zero or more
// AbstractText segments, optionally labeled ("BACKGROUND", "METHODS", ...).
type efetchResponse struct {
	XMLName  xml.Name        `xml:"PubmedArticleSet"`
	Articles []pubmedArticle `xml:"PubmedArticle"`
}

type pubmedArticle struct {
	PMID     string            `xml:"MedlineCitation>PMID"`
	Segments []abstractSegment `xml:"MedlineCitation>Article>Abstract>AbstractText"`
}

type abstractSegment struct {
	Label string `xml:"Label,attr"`
	Text  string `xml:",chardata"`
}

// Abstracts issues one batched EFetch lookup and returns abstract text keyed
// by PMID. Labeled segments are prefixed with their label and newline-joined.
// Every requested PMID is present in the result, mapped to the empty string
// when the source has no abstract or omitted the record entirely.
func (c *Client) Abstracts(ctx context.Context, pmids []string) (map[string]string, error) {
	abstracts := make(map[string]string, len(pmids))
	for _, pmid := range pmids {
		abstracts[pmid] = ""
	}
	if len(pmids) == 0 {
		return abstracts, nil
	}

	joined := strings.Join(pmids, ",")
	key := cache.Key("efetch", joined)
	if cached, ok := c.Cache.Get(key); ok {
		var m map[string]string
		if err := json.Unmarshal(cached, &m); err == nil {
			return m, nil
		}
	}

	params := c.baseParams()
	params.Set("id", joined)
	params.Set("retmode", "xml")
	params.Set("rettype", "abstract")

	body, err := httputil.GetBytes(ctx, c.HTTP, efetchBase+"?"+params.Encode(), c.Cfg.UserAgent)
	if err != nil {
		return nil, fmt.Errorf("%w: pubmed abstracts: %v", types.ErrRetrieval, err)
	}

	var er efetchResponse
	if err := xml.Unmarshal(body, &er); err != nil {
		return nil, fmt.Errorf("%w: pubmed abstracts: parsing response: %v", types.ErrRetrieval, err)
	}

	for _, article := range er.Articles {
		if _, requested := abstracts[article.PMID]; !requested {
			continue
		}
		abstracts[article.PMID] = joinSegments(article.Segments)
	}

	if payload, err := json.Marshal(abstracts); err == nil {
		c.Cache.Put(key, payload)
	}
	return abstracts, nil
}

// joinSegments concatenates abstract segments into one string, keeping
// semantic labels as prefixes.
func joinSegments(segments []abstractSegment) string {
	var parts []string
	for _, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		if seg.Label != "" {
			text = seg.Label + ": " + text
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, "\n")
}
