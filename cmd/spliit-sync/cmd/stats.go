package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/actual-spliit/syncd/pkg/config"
	"github.com/actual-spliit/syncd/pkg/db"
)

// statsCmd represents the stats command.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Display mirror history statistics",
	Long: `Display statistics from the mirror history database.

Shows:
- Total deposit mirrors created in the splitter account
- Total expenses pushed to Spliit
- Total Spliit expenses mirrored back into Actual
- Time of the last mirror

Requires SYNC_DB_PATH to be configured; without it the daemon keeps no
history and there is nothing to report.

Example:
  spliit-sync stats`,
	Run: runStats,
}

func runStats(cmd *cobra.Command, args []string) {
	slog.Info("Loading configuration")

	cfg, err := config.Load(getConfigFile())
	exitOnError(err, "failed to load configuration")

	if cfg.Sync.DBPath == "" {
		exitOnError(fmt.Errorf("SYNC_DB_PATH is not set"), "mirror history is disabled")
	}

	slog.Debug("Opening database", "path", cfg.Sync.DBPath)
	conn, err := db.Open(cfg.Sync.DBPath)
	exitOnError(err, "failed to open database")
	defer conn.Close()

	history := db.NewMirrorHistory(conn)

	stats, err := history.GetStats()
	exitOnError(err, "failed to get statistics")

	fmt.Println("\n=== Mirror Statistics ===")
	fmt.Printf("Deposit mirrors:       %d\n", stats.TotalDeposits)
	fmt.Printf("Expenses pushed:       %d\n", stats.TotalSpliitPushes)
	fmt.Printf("Spliit mirrors:        %d\n", stats.TotalSpliitMirrors)

	if stats.LastMirror.Valid {
		fmt.Printf("Last mirror:           %s\n", stats.LastMirror.String)
	} else {
		fmt.Printf("Last mirror:           (never)\n")
	}

	fmt.Println()
}
