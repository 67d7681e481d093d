package cli

import (
	"os"

	"github.com/rcliao/monchatbot/internal/store"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the memory as JSON",
		Long:  "Export the memory as a JSON array of {question, response} objects, oldest first.",
		Run:   runExport,
	}

	cmd.Flags().StringP("output", "o", "", "Output file (default: stdout)")

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	output, _ := cmd.Flags().GetString("output")

	cfg := loadConfig()
	logger := newLogger(cfg)
	s := openStore(cfg, logger)
	defer s.Close()

	w := os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			exitErr("create output", err)
		}
		defer f.Close()
		w = f
	}

	if err := store.Export(cmd.Context(), s, w); err != nil {
		exitErr("export", err)
	}
}
