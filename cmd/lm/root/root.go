package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/JackJJClark/LifeMaxxing-2.0-sub000/internal/ui"
)

const Version = "0.1.0"

// Persistent flags; empty values defer to the environment.
var globalFlags struct {
	dbPath   string
	store    string
	logLevel string
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "lm",
		Short:         "LifeMaxxing: local-first habit tracker with chests and arc quests",
		Long:          "LifeMaxxing turns logged effort on your habits into levels, reward chests and long-running arc quests.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       Version,
	}
	rootCmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&globalFlags.dbPath, "db", "", "SQLite database path (default ~/.lifemaxxing.db)")
	pf.StringVar(&globalFlags.store, "store", "", "Store backend (sqlite|memory); memory keeps nothing between invocations, so it suits only lm board")
	pf.StringVar(&globalFlags.logLevel, "log-level", "", "Log level (debug|info|warn|error)")

	rootCmd.AddCommand(
		newInitCmd(),
		newHabitCmd(),
		newLogCmd(),
		newHistoryCmd(),
		newChestsCmd(),
		newCombatCmd(),
		newInventoryCmd(),
		newEquipCmd(),
		newArcsCmd(),
		newMercyCmd(),
		newStatusCmd(),
		newExportCmd(),
		newImportCmd(),
		newAdminCmd(),
		newBoardCmd(),
	)
	return rootCmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		os.Exit(1)
	}
}
