package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abysslabs/abyss/internal/session"
)

var clearForce bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Permanently delete all conversation history",
	Long: `Permanently delete all conversation history from this device.

This cannot be undone. Settings are kept. Requires confirmation unless
--force is used.`,
	Args: cobra.NoArgs,
	RunE: runClear,
}

func init() {
	clearCmd.Flags().BoolVarP(&clearForce, "force", "f", false, "skip confirmation")
}

func runClear(cmd *cobra.Command, args []string) error {
	if !clearForce {
		fmt.Print("Are you sure you want to permanently delete all conversation history? This cannot be undone. [y/N]: ")

		reader := bufio.NewReader(os.Stdin)
		response, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		response = strings.TrimSpace(strings.ToLower(response))

		if response != "y" && response != "yes" {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	mgr := session.NewManager(st, logger)
	if err := mgr.Hydrate(); err != nil {
		return err
	}
	if err := mgr.ClearAll(); err != nil {
		return fmt.Errorf("clear conversations: %w", err)
	}

	fmt.Println("All conversations have been cleared.")
	return nil
}
