package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List memorized entries",
		Run:   runList,
	}

	cmd.Flags().IntP("limit", "l", 20, "Max results, newest first (0 for all)")
	cmd.Flags().Bool("questions-only", false, "Only output questions")

	RootCmd.AddCommand(cmd)
}

func runList(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")
	questionsOnly, _ := cmd.Flags().GetBool("questions-only")

	cfg := loadConfig()
	logger := newLogger(cfg)
	s := openStore(cfg, logger)
	defer s.Close()

	entries, err := s.Entries(cmd.Context())
	if err != nil {
		exitErr("list", err)
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}

	if questionsOnly || formatFlag == "text" {
		for _, e := range entries {
			if questionsOnly {
				fmt.Println(e.Question)
				continue
			}
			fmt.Printf("Q: %s\nR: %s\n\n", e.Question, e.Response)
		}
		return
	}

	b, _ := json.MarshalIndent(entries, "", "  ")
	fmt.Println(string(b))
}
