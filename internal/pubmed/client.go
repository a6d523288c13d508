// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pubmed is a client for the NCBI E-utilities endpoints used by the
// retrieval stage: ESearch for PMIDs, ESummary for batched metadata, and
// EFetch for abstract text. Lookups go through an injected read-through
// cache and are never retried; an empty result set is a normal outcome, not
// a fault.
package pubmed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/dmossmd/ed-copilot/internal/cache"
	"github.com/dmossmd/ed-copilot/internal/httputil"
	"github.com/dmossmd/ed-copilot/pkg/types"
)

// E-utilities endpoints. Declared as vars so tests can substitute an
// httptest server.
var (
	esearchBase  = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esearch.fcgi"
	esummaryBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esummary.fcgi"
	efetchBase   = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/efetch.fcgi"
)

// articleURL is the canonical PubMed page for a PMID.
func articleURL(pmid string) string {
	return "https://pubmed.ncbi.nlm.nih.gov/" + pmid + "/"
}

// Client queries the PubMed E-utilities.
type Client struct {
	HTTP  *http.Client
	Cache *cache.Store
	Cfg   types.PubMedConfig
}

// NewClient builds a PubMed client from config. The cache may be nil to
// disable caching.
func NewClient(cfg types.PubMedConfig, store *cache.Store) *Client {
	return &Client{
		HTTP:  httputil.NewClient(cfg.HTTPConfig),
		Cache: store,
		Cfg:   cfg,
	}
}

// baseParams returns the query parameters common to every E-utilities call.
func (c *Client) baseParams() url.Values {
	params := url.Values{"db": {"pubmed"}}
	if c.Cfg.APIKey != "" {
		params.Set("api_key", c.Cfg.APIKey)
	}
	return params
}

// Search tries each candidate term in order, most specific first, and
// returns the PMID list from the first candidate with at least one hit. One
// ESearch call is issued per exhausted candidate. Exhausting every candidate
// returns (nil, nil): zero hits are not an error.
func (c *Client) Search(ctx context.Context, candidates []string, retmax int) ([]string, error) {
	if retmax <= 0 {
		retmax = c.Cfg.RetMax
	}
	for _, term := range candidates {
		pmids, err := c.searchOne(ctx, term, retmax)
		if err != nil {
			return nil, err
		}
		if len(pmids) > 0 {
			return pmids, nil
		}
	}
	return nil, nil
}

// esearchResponse is the ESearch JSON payload.
type esearchResponse struct {
	Result esearchResult `json:"esearchresult"`
}

type esearchResult struct {
	IDList []string `json:"idlist"`
}

func (c *Client) searchOne(ctx context.Context, term string, retmax int) ([]string, error) {
	key := cache.Key("esearch", term, strconv.Itoa(retmax))
	if cached, ok := c.Cache.Get(key); ok {
		var pmids []string
		if err := json.Unmarshal(cached, &pmids); err == nil {
			return pmids, nil
		}
	}

	params := c.baseParams()
	params.Set("term", term)
	params.Set("retmode", "json")
	params.Set("retmax", strconv.Itoa(retmax))
	params.Set("sort", "relevance")

	var er esearchResponse
	if err := httputil.GetJSON(ctx, c.HTTP, esearchBase+"?"+params.Encode(), c.Cfg.UserAgent, &er); err != nil {
		return nil, fmt.Errorf("%w: pubmed search: %v", types.ErrRetrieval, err)
	}

	pmids := er.Result.IDList
	if payload, err := json.Marshal(pmids); err == nil {
		c.Cache.Put(key, payload)
	}
	return pmids, nil
}

// esummaryResponse is the ESummary JSON payload. Result maps each PMID (and
// a "uids" index entry) to its record.
type esummaryResponse struct {
	Result map[string]json.RawMessage `json:"result"`
}

type esummaryItem struct {
	Title           string `json:"title"`
	FullJournalName string `json:"fulljournalname"`
	PubDate         string `json:"pubdate"`
}

// Summaries issues one batched ESummary lookup and returns a summary per
// PMID found in the response, preserving the input order. PMIDs absent from
// the payload are dropped, never synthesized.
func (c *Client) Summaries(ctx context.Context, pmids []string) ([]types.ArticleSummary, error) {
	if len(pmids) == 0 {
		return nil, nil
	}

	joined := strings.Join(pmids, ",")
	key := cache.Key("esummary", joined)
	if cached, ok := c.Cache.Get(key); ok {
		var summaries []types.ArticleSummary
		if err := json.Unmarshal(cached, &summaries); err == nil {
			return summaries, nil
		}
	}

	params := c.baseParams()
	params.Set("id", joined)
	params.Set("retmode", "json")

	var er esummaryResponse
	if err := httputil.GetJSON(ctx, c.HTTP, esummaryBase+"?"+params.Encode(), c.Cfg.UserAgent, &er); err != nil {
		return nil, fmt.Errorf("%w: pubmed summaries: %v", types.ErrRetrieval, err)
	}

	var summaries []types.ArticleSummary
	for _, pmid := range pmids {
		raw, ok := er.Result[pmid]
		if !ok {
			continue
		}
		var item esummaryItem
		if err := json.Unmarshal(raw, &item); err != nil {
			continue
		}
		summaries = append(summaries, types.ArticleSummary{
			PMID:    pmid,
			Title:   strings.TrimSuffix(strings.TrimSpace(item.Title), "."),
			Journal: item.FullJournalName,
			Year:    firstToken(item.PubDate),
			URL:     articleURL(pmid),
		})
	}

	if payload, err := json.Marshal(summaries); err == nil {
		c.Cache.Put(key, payload)
	}
	return summaries, nil
}

// firstToken returns the first whitespace-separated token of s, typically
// the year of a pubdate like "2021 Mar 4".
func firstToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
