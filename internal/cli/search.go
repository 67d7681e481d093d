package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "search [message]",
		Short: "Show the memorized question closest to a message",
		Long:  "Score a message against every memorized question and show the best match, its score and whether it clears the threshold.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runSearch,
	}

	RootCmd.AddCommand(cmd)
}

type searchResult struct {
	Query     string  `json:"query"`
	Index     int     `json:"index"`
	Score     float64 `json:"score"`
	Threshold float64 `json:"threshold"`
	Match     bool    `json:"match"`
	Question  string  `json:"question,omitempty"`
	Response  string  `json:"response,omitempty"`
}

func runSearch(cmd *cobra.Command, args []string) {
	query := strings.Join(args, " ")

	cfg := loadConfig()
	logger := newLogger(cfg)
	s := openStore(cfg, logger)
	defer s.Close()

	scorer, threshold, err := newScorer(cfg)
	if err != nil {
		exitErr("build scorer", err)
	}

	entries, err := s.Entries(cmd.Context())
	if err != nil {
		exitErr("search", err)
	}
	questions := make([]string, len(entries))
	for i, e := range entries {
		questions[i] = e.Question
	}

	m, err := scorer.Best(cmd.Context(), query, questions)
	if err != nil {
		exitErr("search", err)
	}

	res := searchResult{Query: query, Index: m.Index, Score: m.Score, Threshold: threshold(len(entries))}
	if m.Index >= 0 {
		res.Question = entries[m.Index].Question
		res.Response = entries[m.Index].Response
		res.Match = m.Score > res.Threshold
	}

	if formatFlag == "text" {
		if m.Index < 0 {
			fmt.Println("memory is empty")
			return
		}
		fmt.Printf("[%.3f / %.2f] %s\n  -> %s\n", res.Score, res.Threshold, res.Question, res.Response)
		return
	}
	b, _ := json.MarshalIndent(res, "", "  ")
	fmt.Println(string(b))
}
