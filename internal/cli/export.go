package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/abysslabs/abyss/internal/session"
	"github.com/abysslabs/abyss/internal/store"
)

var exportOutputFile string

var exportCmd = &cobra.Command{
	Use:   "export [directory]",
	Short: "Export all conversations to a JSON file",
	Long: `Export the full conversation archive as pretty-printed JSON.

The file is named abyss-conversations-<date>.json and written to the given
directory (default: current directory).

Examples:
  abyss export
  abyss export ~/backups
  abyss export -o conversations.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutputFile, "output", "o", "", "write to this exact file instead")
}

func runExport(cmd *cobra.Command, args []string) error {
	mgr := session.NewManager(st, logger)
	if err := mgr.Hydrate(); err != nil {
		return err
	}

	data, err := mgr.ExportArchive()
	if errors.Is(err, store.ErrNoData) {
		fmt.Println("No conversations to export.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("export archive: %w", err)
	}

	path := exportOutputFile
	if path == "" {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create export directory: %w", err)
		}
		path = filepath.Join(dir, session.ExportFilename(time.Now()))
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write export file: %w", err)
	}

	fmt.Printf("Exported conversations to %s\n", path)
	return nil
}
