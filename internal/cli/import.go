package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/rcliao/monchatbot/internal/store"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import entries from JSON",
		Long: "Import entries from a JSON array (file or stdin) in the format produced by export. " +
			"Entries are appended in order, so only the newest memory.max_size survive.",
		Args: cobra.MaximumNArgs(1),
		Run:  runImport,
	}

	RootCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) {
	var r io.Reader = os.Stdin
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			exitErr("open input", err)
		}
		defer f.Close()
		r = f
	}

	cfg := loadConfig()
	logger := newLogger(cfg)
	s := openStore(cfg, logger)
	defer s.Close()

	imported, err := store.Import(cmd.Context(), s, r)
	if err != nil {
		exitErr("import", err)
	}

	fmt.Printf(`{"ok":true,"imported":%d,"entries":%d}`+"\n", imported, s.Len())
}
