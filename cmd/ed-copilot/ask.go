// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmossmd/ed-copilot/internal/answer"
	"github.com/dmossmd/ed-copilot/internal/chat"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer one clinical question grounded in PubMed metadata",
	Long: `Ask runs a single turn: search PubMed, assemble the retrieved metadata
into a grounding context, and generate an answer citing only the retrieved
PMIDs. Use --mode discharge for patient-friendly discharge instructions.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().String("mode", "workup", "output mode: workup or discharge")
	askCmd.Flags().Int("retmax", 0, "maximum number of PubMed results to pull (default 5)")
	askCmd.Flags().Bool("abstracts", false, "enrich evidence with article abstracts")
	askCmd.Flags().Bool("json", false, "output the full turn result as JSON")

	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")

	modeStr, _ := cmd.Flags().GetString("mode")
	mode, err := answer.ParseMode(modeStr)
	if err != nil {
		return err
	}

	pipeline, store, err := newPipeline(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	if retmax, _ := cmd.Flags().GetInt("retmax"); retmax > 0 {
		pipeline.Cfg.PubMed.RetMax = retmax
	}
	if fetch, _ := cmd.Flags().GetBool("abstracts"); fetch {
		pipeline.Cfg.PubMed.FetchAbstracts = true
	}

	session := chat.NewSession()
	res, err := pipeline.Run(context.Background(), session, question, mode, os.Stderr)
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Question string   `json:"question"`
			Answer   string   `json:"answer"`
			Allowed  []string `json:"allowed_pmids"`
			Cited    []string `json:"cited_pmids"`
		}{question, res.Answer, res.Block.Allowed, res.Cited})
	}

	if len(res.Summaries) > 0 {
		fmt.Println("Top PubMed results:")
		for i, s := range res.Summaries {
			title := s.Title
			if title == "" {
				title = "(No title returned)"
			}
			meta := joinNonEmpty(" - ", s.Journal, s.Year, "PMID "+s.PMID)
			fmt.Printf("%d. %s\n   %s\n", i+1, title, meta)
		}
		fmt.Println()
	} else {
		fmt.Println("No PubMed results found. Try fewer words or more general terms.")
		fmt.Println()
	}

	fmt.Println(res.Answer)

	if len(res.Cited) > 0 {
		fmt.Println("\nPMIDs cited:")
		for _, pmid := range res.Cited {
			fmt.Printf("  https://pubmed.ncbi.nlm.nih.gov/%s/\n", pmid)
		}
	}
	return nil
}

func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
