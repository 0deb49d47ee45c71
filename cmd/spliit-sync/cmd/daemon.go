package cmd

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/actual-spliit/syncd/pkg/actual"
	"github.com/actual-spliit/syncd/pkg/config"
	"github.com/actual-spliit/syncd/pkg/db"
	"github.com/actual-spliit/syncd/pkg/mapping"
	"github.com/actual-spliit/syncd/pkg/spliit"
	"github.com/actual-spliit/syncd/pkg/syncer"
)

// daemonCmd represents the daemon command.
var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the sync daemon",
	Long: `Run the bidirectional sync daemon.

This command:
1. Polls Actual Budget for trigger-tagged transactions and mirrors them
   as reimbursement deposits in the splitter account
2. Pushes shared expenses to the configured Spliit group
3. Polls Spliit for partner-paid expenses and mirrors the local share
   back into Actual

The daemon holds its poll cursors in memory only; idempotency comes from
checking the ledger for an existing mirror before creating one. Stop with
SIGINT or SIGTERM.

Example:
  spliit-sync daemon
  spliit-sync daemon --debug`,
	Run: runDaemon,
}

func runDaemon(cmd *cobra.Command, args []string) {
	slog.Info("Loading configuration")

	cfg, err := config.Load(getConfigFile())
	exitOnError(err, "failed to load configuration")

	if err := cfg.Validate(
		[]string{"actual", "baseUrl"},
		[]string{"actual", "password"},
		[]string{"actual", "budget"},
		[]string{"actual", "splitterPayeeId"},
		[]string{"actual", "splitterAccountId"},
	); err != nil {
		exitOnError(err, "invalid configuration")
	}

	if !debug {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: cfg.LogLevel,
		})))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	actualClient := actual.NewClient(actual.ClientConfig{
		BaseURL:  cfg.Actual.BaseURL,
		Password: cfg.Actual.Password,
		Budget:   cfg.Actual.Budget,
	})

	payees, err := actualClient.GetPayees(ctx)
	exitOnError(err, "failed to reach Actual Budget")
	if !payeeExists(payees, cfg.Actual.SplitterPayeeID) {
		slog.Warn("splitter payee not found in budget, mirrors will carry an unknown payee",
			"payee_id", cfg.Actual.SplitterPayeeID)
	}

	mapper, err := mapping.Load(cfg.Sync.CategoryMappingFile)
	exitOnError(err, "failed to load category mapping")
	slog.Info("Loaded category mapping", "path", cfg.Sync.CategoryMappingFile, "entries", mapper.Len())

	var history syncer.HistoryRecorder
	if cfg.Sync.DBPath != "" {
		conn, err := db.Open(cfg.Sync.DBPath)
		exitOnError(err, "failed to open history database")
		defer conn.Close()
		history = db.NewMirrorHistory(conn)
		slog.Info("Mirror history enabled", "path", conn.GetPath())
	}

	var spliitClient *spliit.Client
	if cfg.SpliitEnabled() {
		spliitClient = spliit.NewClient(spliit.ClientConfig{
			BaseURL: cfg.Spliit.BaseURL,
			GroupID: cfg.Spliit.GroupID,
			PayerID: cfg.Spliit.PayerID,
		})

		group, err := spliitClient.GetGroup(ctx)
		exitOnError(err, "failed to fetch Spliit group")
		slog.Info("Spliit integration enabled",
			"group", group.Name,
			"participants", len(group.Participants),
		)
	} else {
		slog.Info("Spliit integration disabled, running Actual-only")
	}

	// The consumer interface is satisfied by *spliit.Client; a typed nil
	// must not leak into the interface when Spliit is disabled.
	var spliitIface syncer.SpliitClient
	if spliitClient != nil {
		spliitIface = spliitClient
	}

	reconciler := syncer.NewReconciler(actualClient, spliitIface, mapper, history, syncer.ReconcilerConfig{
		SplitterAccountID: cfg.Actual.SplitterAccountID,
		SplitterPayeeID:   cfg.Actual.SplitterPayeeID,
	})

	pollers := []syncer.Poller{
		syncer.NewActualPoller(actualClient, reconciler, cfg.Actual.TriggerTag, cfg.Actual.PollInterval),
	}

	if spliitClient != nil {
		spliitPoller := syncer.NewSpliitPoller(spliitClient, reconciler, cfg.Spliit.PollInterval)
		if err := spliitPoller.Seed(ctx); err != nil {
			// Non-fatal: the existence checks absorb the larger first window.
			slog.Warn("failed to seed Spliit cursor", "error", err)
		}
		pollers = append(pollers, spliitPoller)
	}

	slog.Info("Starting sync daemon",
		"actual_interval", cfg.Actual.PollInterval,
		"spliit_interval", cfg.Spliit.PollInterval,
		"trigger_tag", cfg.Actual.TriggerTag,
	)

	syncer.NewDriver(pollers...).Run(ctx)

	slog.Info("Sync daemon stopped")
}

func payeeExists(payees []actual.Payee, id string) bool {
	for _, p := range payees {
		if p.ID == id {
			return true
		}
	}
	return false
}
