package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "ask [message]",
		Short: "Ask the chatbot a question",
		Long: "Ask the chatbot a question. The message can be a positional arg or piped via stdin. " +
			"With --interactive, read one message per line until EOF.",
		Run: runAsk,
	}

	cmd.Flags().BoolP("interactive", "i", false, "Read messages line by line from stdin")

	RootCmd.AddCommand(cmd)
}

func runAsk(cmd *cobra.Command, args []string) {
	interactive, _ := cmd.Flags().GetBool("interactive")

	cfg := loadConfig()
	logger := newLogger(cfg)
	s := openStore(cfg, logger)
	defer s.Close()

	router, err := newRouter(cfg, s, nil, logger)
	if err != nil {
		exitErr("build router", err)
	}

	if interactive {
		scanner := bufio.NewScanner(os.Stdin)
		fmt.Print("> ")
		for scanner.Scan() {
			reply := router.Respond(cmd.Context(), scanner.Text())
			fmt.Println(reply.Text)
			fmt.Print("> ")
		}
		if err := scanner.Err(); err != nil {
			exitErr("read stdin", err)
		}
		fmt.Println()
		return
	}

	var message string
	if len(args) > 0 {
		message = strings.Join(args, " ")
	} else {
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) == 0 {
			b, err := io.ReadAll(os.Stdin)
			if err != nil {
				exitErr("read stdin", err)
			}
			message = string(b)
		}
	}

	reply := router.Respond(cmd.Context(), message)
	if formatFlag == "text" {
		fmt.Println(reply.Text)
		return
	}
	b, _ := json.MarshalIndent(map[string]string{
		"response": reply.Text,
		"stage":    string(reply.Stage),
	}, "", "  ")
	fmt.Println(string(b))
}
