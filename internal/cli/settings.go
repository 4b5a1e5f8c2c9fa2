package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/abysslabs/abyss/internal/models"
	"github.com/abysslabs/abyss/internal/session"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change settings",
	Args:  cobra.NoArgs,
	RunE:  runShowSettings,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting",
	Long: `Change a setting.

Keys:
  preserve-history  true|false   keep conversations on this device
  theme             dark|light   display theme

Examples:
  abyss settings set preserve-history false
  abyss settings set theme light`,
	Args: cobra.ExactArgs(2),
	RunE: runSetSetting,
}

func init() {
	settingsCmd.AddCommand(settingsSetCmd)
}

func runShowSettings(cmd *cobra.Command, args []string) error {
	settings, err := st.LoadSettings()
	if err != nil {
		return err
	}

	fmt.Printf("preserve-history: %t\n", settings.PreserveHistory)
	fmt.Printf("theme:            %s\n", settings.Theme)
	fmt.Println()
	fmt.Println("Conversations are stored locally on this device only.")
	fmt.Println()
	fmt.Println("Crisis resources:")
	fmt.Println("  National Suicide Prevention Lifeline: 988")
	fmt.Println("  Crisis Text Line: text HOME to 741741")
	fmt.Println("  International: https://findahelpline.com")
	return nil
}

func runSetSetting(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	mgr := session.NewManager(st, logger)
	if err := mgr.Hydrate(); err != nil {
		return err
	}

	switch key {
	case "preserve-history":
		preserve, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("preserve-history must be true or false, got %q", value)
		}
		if err := mgr.SetPreserveHistory(preserve); err != nil {
			return err
		}
	case "theme":
		if !models.ValidTheme(value) {
			return fmt.Errorf("theme must be %s or %s, got %q", models.ThemeDark, models.ThemeLight, value)
		}
		if err := mgr.SetTheme(value); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown setting %q", key)
	}

	fmt.Printf("%s set to %s\n", key, value)
	return nil
}
