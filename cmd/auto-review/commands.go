package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/hochfrequenz/auto-reviewer/internal/agent"
	"github.com/hochfrequenz/auto-reviewer/internal/config"
	"github.com/hochfrequenz/auto-reviewer/internal/domain"
	"github.com/hochfrequenz/auto-reviewer/internal/gitops"
	"github.com/hochfrequenz/auto-reviewer/internal/modes"
	"github.com/hochfrequenz/auto-reviewer/internal/northstar"
	"github.com/hochfrequenz/auto-reviewer/internal/notify"
	"github.com/hochfrequenz/auto-reviewer/internal/orchestrator"
	"github.com/hochfrequenz/auto-reviewer/internal/prbot"
	"github.com/hochfrequenz/auto-reviewer/internal/prompts"
	"github.com/hochfrequenz/auto-reviewer/internal/runstore"
	"github.com/hochfrequenz/auto-reviewer/internal/schedule"
	"github.com/hochfrequenz/auto-reviewer/tui"
)

var (
	runOnce       bool
	runInterval   time.Duration
	runCron       string
	runModes      []string
	runNorthstar  bool
	runPromptFile string
	runProjectDir string
	runBaseBranch string
	runAutoMerge  bool
	runMaxIter    int

	historyLimit int
)

func init() {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run improvement cycles",
		RunE:  runRun,
	}
	runCmd.Flags().BoolVar(&runOnce, "once", false, "run a single cycle and exit")
	runCmd.Flags().DurationVar(&runInterval, "interval", 0, "run cycles on a fixed interval (e.g. 1h)")
	runCmd.Flags().StringVar(&runCron, "cron", "", "run cycles on a cron schedule (e.g. \"0 3 * * *\")")
	runCmd.Flags().StringSliceVar(&runModes, "mode", nil, "improvement mode(s), 'all', or 'interactive'")
	runCmd.Flags().BoolVar(&runNorthstar, "northstar", false, "iterate towards goals in NORTHSTAR.md")
	runCmd.Flags().StringVar(&runPromptFile, "prompt-file", "", "custom instruction file overriding all modes")
	runCmd.Flags().StringVar(&runProjectDir, "project-dir", "", "project checkout to operate on")
	runCmd.Flags().StringVar(&runBaseBranch, "base-branch", "", "base branch for PRs")
	runCmd.Flags().BoolVar(&runAutoMerge, "auto-merge", false, "merge approved PRs automatically")
	runCmd.Flags().IntVar(&runMaxIter, "max-iterations", 0, "max review/fix rounds per PR")
	rootCmd.AddCommand(runCmd)

	modesCmd := &cobra.Command{
		Use:   "modes",
		Short: "List available improvement modes",
		RunE:  runModesList,
	}
	rootCmd.AddCommand(modesCmd)

	initCmd := &cobra.Command{
		Use:   "init-northstar [DIR]",
		Short: "Create a NORTHSTAR.md goals template in the project",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runInitNorthstar,
	}
	rootCmd.AddCommand(initCmd)

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent run history",
		RunE:  runHistory,
	}
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "number of runs to show")
	rootCmd.AddCommand(historyCmd)
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if runProjectDir != "" {
		cfg.General.ProjectDir = config.ExpandPath(runProjectDir)
	}
	if runBaseBranch != "" {
		cfg.General.BaseBranch = runBaseBranch
	}
	if cmd.Flags().Changed("auto-merge") {
		cfg.Review.AutoMerge = runAutoMerge
	}
	if cmd.Flags().Changed("max-iterations") {
		cfg.Review.MaxIterations = runMaxIter
	}
	return cfg, nil
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.General.ProjectDir == "" {
		return fmt.Errorf("project directory not configured (use --project-dir or the config file)")
	}
	if _, err := os.Stat(cfg.General.ProjectDir); err != nil {
		return fmt.Errorf("project directory does not exist: %s", cfg.General.ProjectDir)
	}

	items, err := resolveWorkItems(cfg)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Println("No improvement modes selected.")
		return nil
	}

	logf := orchestrator.NewFileLogger(cfg.LogFile())

	repo := gitops.New(cfg.General.ProjectDir, cfg.General.BaseBranch)

	var store orchestrator.Store
	if cfg.General.DatabasePath != "" {
		s, err := runstore.New(config.ExpandPath(cfg.General.DatabasePath))
		if err != nil {
			logf("warning: opening run history database: %v", err)
		} else {
			defer s.Close()
			store = s
		}
	}

	orch := &orchestrator.Orchestrator{
		Repo:           repo,
		Agent:          agent.NewClaudeRunner(repo),
		Host:           prbot.New(cfg.General.ProjectDir, cfg.General.BaseBranch),
		Notifier:       buildNotifier(cfg),
		Store:          store,
		MaxIterations:  cfg.Review.MaxIterations,
		AutoMerge:      cfg.Review.AutoMerge,
		ImproveTimeout: cfg.Review.ImproveTimeout.Duration(),
		ReviewTimeout:  cfg.Review.ReviewTimeout.Duration(),
		FixTimeout:     cfg.Review.FixTimeout.Duration(),
		NorthstarPath:  northstarPath(cfg, items),
		Logf:           logf,
	}

	cycle := func(ctx context.Context) error {
		report := orch.RunCycle(ctx, items)
		logf("cycle finished: %d run(s), %d merged, %d failed",
			len(report.Results), report.Merged(), report.Failed())
		return ctx.Err()
	}

	sched := schedule.New(cfg.LockFile(), cycle)
	sched.Logf = logf

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case runCron != "":
		return sched.RunCron(ctx, runCron)
	case runInterval > 0:
		return sched.RunInterval(ctx, runInterval)
	default:
		if !runOnce {
			logf("no schedule given, running a single cycle")
		}
		return sched.RunOnce(ctx)
	}
}

// resolveWorkItems turns the CLI selection into the work item queue.
// The "interactive" token launches the TUI picker first.
func resolveWorkItems(cfg *config.Config) ([]domain.WorkItem, error) {
	selected := runModes
	for _, m := range selected {
		if m == "interactive" {
			picked, err := tui.Run()
			if err != nil {
				return nil, err
			}
			selected = picked
			break
		}
	}

	loader := prompts.DefaultLoader(cfg.General.ProjectDir)
	resolver := modes.NewResolver(loader)
	return resolver.Resolve(modes.Request{
		Modes:      selected,
		Northstar:  runNorthstar,
		PromptFile: runPromptFile,
		ProjectDir: cfg.General.ProjectDir,
	})
}

// northstarPath returns the goals document path when a northstar item is
// queued, enabling check-off after merges.
func northstarPath(cfg *config.Config, items []domain.WorkItem) string {
	for _, item := range items {
		if item.Mode == modes.ModeNorthstar {
			return filepath.Join(cfg.General.ProjectDir, northstar.FileName)
		}
	}
	return ""
}

func buildNotifier(cfg *config.Config) notify.Notifier {
	var notifiers []notify.Notifier
	if cfg.Notifications.TelegramBotToken != "" && cfg.Notifications.TelegramChatID != "" {
		notifiers = append(notifiers, notify.NewTelegramNotifier(
			cfg.Notifications.TelegramBotToken, cfg.Notifications.TelegramChatID))
	}
	if cfg.Notifications.SlackWebhook != "" {
		notifiers = append(notifiers, notify.NewSlackNotifier(cfg.Notifications.SlackWebhook))
	}
	if cfg.Notifications.Desktop {
		notifiers = append(notifiers, notify.NewDesktopNotifier(true))
	}
	if len(notifiers) == 0 {
		return notify.NoopNotifier{}
	}
	return notify.NewMultiNotifier(notifiers...)
}

func runModesList(cmd *cobra.Command, args []string) error {
	fmt.Print(modes.FormatList())
	return nil
}

func runInitNorthstar(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	path, err := northstar.Init(config.ExpandPath(dir))
	if err != nil {
		return err
	}
	fmt.Printf("Created %s - edit it to define your goals.\n", path)
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.General.DatabasePath == "" {
		return fmt.Errorf("database_path not configured")
	}

	store, err := runstore.New(config.ExpandPath(cfg.General.DatabasePath))
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.ListRecent(historyLimit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STARTED\tMODE\tOUTCOME\tITER\tPR")
	for _, r := range records {
		pr := r.PRURL
		if pr == "" {
			pr = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			r.StartedAt.Format("2006-01-02 15:04"), r.Mode, r.Outcome, r.Iterations, pr)
	}
	w.Flush()

	return nil
}
