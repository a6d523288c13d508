// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmossmd/ed-copilot/internal/answer"
	"github.com/dmossmd/ed-copilot/internal/chat"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive PubMed-grounded chat session",
	Long: `Chat starts an interactive session. Type a free-text ED question per
line; each turn searches PubMed, shows the top hits, and prints a generated
answer with PMID citation links.

Commands inside the session:
  /mode workup|discharge   switch the output template
  /retmax N                change how many PubMed results to pull
  /abstracts on|off        toggle abstract enrichment
  /clear                   clear the transcript
  /quit                    exit`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().String("mode", "workup", "initial output mode: workup or discharge")
	chatCmd.Flags().Int("retmax", 0, "maximum number of PubMed results to pull (default 5)")
	chatCmd.Flags().Bool("abstracts", false, "enrich evidence with article abstracts")

	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
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

	in := bufio.NewScanner(os.Stdin)
	out := os.Stdout

	if !passcodeGate(pipeline.Cfg.Passcode, in, out) {
		return fmt.Errorf("incorrect passcode")
	}

	fmt.Fprintln(out, "ed-copilot prototype. Demo only, not for clinical use, no PHI.")
	fmt.Fprintln(out, "Ask an ED question, or /quit to exit.")

	session := chat.NewSession()
	for {
		fmt.Fprint(out, "\n> ")
		if !in.Scan() {
			return in.Err()
		}
		line := strings.TrimSpace(in.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			var done bool
			mode, done = handleCommand(line, mode, pipeline, session, out)
			if done {
				return nil
			}
			continue
		}

		runTurn(pipeline, session, line, mode, out)
	}
}

// passcodeGate prompts for the shared passcode when one is configured. The
// gate is a demo measure, not authentication.
func passcodeGate(passcode string, in *bufio.Scanner, out io.Writer) bool {
	if passcode == "" {
		return true
	}
	fmt.Fprint(out, "Passcode: ")
	if !in.Scan() {
		return false
	}
	return strings.TrimSpace(in.Text()) == passcode
}

// handleCommand processes a /command line. It returns the (possibly updated)
// mode and whether the session should end.
func handleCommand(line string, mode answer.Mode, pipeline *chat.Pipeline, session *chat.Session, out io.Writer) (answer.Mode, bool) {
	fields := strings.Fields(line)
	arg := ""
	if len(fields) > 1 {
		arg = fields[1]
	}

	switch fields[0] {
	case "/quit", "/exit":
		return mode, true
	case "/clear":
		session.Reset()
		fmt.Fprintln(out, "Chat cleared.")
	case "/mode":
		m, err := answer.ParseMode(arg)
		if err != nil {
			fmt.Fprintln(out, err)
			break
		}
		mode = m
		fmt.Fprintf(out, "Mode set to %s.\n", mode)
	case "/retmax":
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 {
			fmt.Fprintln(out, "usage: /retmax N (N >= 1)")
			break
		}
		pipeline.Cfg.PubMed.RetMax = n
		fmt.Fprintf(out, "Pulling up to %d PubMed results.\n", n)
	case "/abstracts":
		switch arg {
		case "on":
			pipeline.Cfg.PubMed.FetchAbstracts = true
			fmt.Fprintln(out, "Abstract enrichment on.")
		case "off":
			pipeline.Cfg.PubMed.FetchAbstracts = false
			fmt.Fprintln(out, "Abstract enrichment off.")
		default:
			fmt.Fprintln(out, "usage: /abstracts on|off")
		}
	default:
		fmt.Fprintf(out, "unknown command %s\n", fields[0])
	}
	return mode, false
}

// runTurn executes one question and renders the result. Failures are
// reported without corrupting the transcript: the question stays recorded,
// no assistant turn is appended.
func runTurn(pipeline *chat.Pipeline, session *chat.Session, question string, mode answer.Mode, out io.Writer) {
	fmt.Fprintln(out, "Searching PubMed...")
	res, err := pipeline.Run(context.Background(), session, question, mode, os.Stderr)
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}

	if len(res.Summaries) > 0 {
		fmt.Fprintln(out, "\nTop PubMed results:")
		for i, s := range res.Summaries {
			title := s.Title
			if title == "" {
				title = "(No title returned)"
			}
			fmt.Fprintf(out, "%d. %s\n   %s\n", i+1, title,
				joinNonEmpty(" - ", s.Journal, s.Year, "PMID "+s.PMID))
		}
	} else {
		fmt.Fprintln(out, "No PubMed results found. Try fewer words or more general terms.")
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, res.Answer)

	if len(res.Cited) > 0 {
		fmt.Fprintln(out, "\nPMIDs cited:")
		for _, pmid := range res.Cited {
			fmt.Fprintf(out, "  https://pubmed.ncbi.nlm.nih.gov/%s/\n", pmid)
		}
	}
}
