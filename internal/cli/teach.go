package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rcliao/monchatbot/internal/model"
	"github.com/rcliao/monchatbot/internal/store"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "teach",
		Short: "Memorize a question/response pair",
		Long:  "Append a question/response pair to the memory. The oldest entries are evicted past memory.max_size.",
		Run:   runTeach,
	}

	cmd.Flags().StringP("question", "q", "", "Question (required)")
	cmd.Flags().StringP("response", "r", "", "Response (required)")

	cmd.MarkFlagRequired("question")
	cmd.MarkFlagRequired("response")

	RootCmd.AddCommand(cmd)
}

func runTeach(cmd *cobra.Command, args []string) {
	question, _ := cmd.Flags().GetString("question")
	response, _ := cmd.Flags().GetString("response")
	if strings.TrimSpace(question) == "" || strings.TrimSpace(response) == "" {
		exitErr("teach", fmt.Errorf("question and response must not be blank"))
	}

	cfg := loadConfig()
	logger := newLogger(cfg)
	s := openStore(cfg, logger)
	defer s.Close()

	if err := s.Append(cmd.Context(), model.Entry{Question: question, Response: response}); err != nil {
		exitErr("teach", err)
	}
	// The JSON backend only logs write failures on Append.
	if js, ok := s.(*store.JSONStore); ok {
		if err := js.Persist(); err != nil {
			exitErr("persist", err)
		}
	}

	b, _ := json.Marshal(map[string]any{"ok": true, "entries": s.Len()})
	fmt.Println(string(b))
}
