// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmossmd/ed-copilot/internal/pubmed"
	"github.com/dmossmd/ed-copilot/internal/query"
)

var searchCmd = &cobra.Command{
	Use:   "search [question]",
	Short: "Search PubMed for articles related to a clinical question",
	Long: `Search normalizes a free-text clinical question into PubMed terms
(expanding common ED abbreviations, dropping filler words) and retrieves
matching article metadata. Candidate terms are tried from most specific to
most permissive until one yields results.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().Int("retmax", 0, "maximum number of results to pull (default 5)")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	searchCmd.Flags().Bool("abstracts", false, "also fetch article abstracts")
	searchCmd.Flags().String("save", "", "save the search and results to a YAML file")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")
	cfg := appConfig(cmd)

	if retmax, _ := cmd.Flags().GetInt("retmax"); retmax > 0 {
		cfg.PubMed.RetMax = retmax
	}

	cachePath, _ := cmd.Flags().GetString("cache")
	client, store, err := newRetriever(cfg.PubMed, cachePath)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	candidates := query.Normalize(question)

	pmids, err := client.Search(ctx, candidates, cfg.PubMed.RetMax)
	if err != nil {
		return err
	}
	summaries, err := client.Summaries(ctx, pmids)
	if err != nil {
		return err
	}

	var abstracts map[string]string
	if fetch, _ := cmd.Flags().GetBool("abstracts"); fetch && len(pmids) > 0 {
		abstracts, err = client.Abstracts(ctx, pmids)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: abstract fetch failed: %v\n", err)
			abstracts = nil
		}
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		if err := pubmed.FormatJSON(summaries, os.Stdout); err != nil {
			return err
		}
	} else {
		pubmed.FormatTable(summaries, os.Stdout)
	}

	if savePath, _ := cmd.Flags().GetString("save"); savePath != "" {
		sf := pubmed.SearchFile{
			Question:   question,
			Candidates: candidates,
			RetMax:     cfg.PubMed.RetMax,
			Results:    summaries,
			Abstracts:  abstracts,
			Timestamp:  time.Now(),
		}
		if err := pubmed.WriteSearchFile(savePath, sf); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Saved search to %s\n", savePath)
	}

	return nil
}
