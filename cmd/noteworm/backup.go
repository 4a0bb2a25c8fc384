package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/bamsammich/noteworm/internal/config"
	"github.com/bamsammich/noteworm/internal/engine"
	"github.com/bamsammich/noteworm/internal/event"
	"github.com/bamsammich/noteworm/internal/filter"
	"github.com/bamsammich/noteworm/internal/stats"
	"github.com/bamsammich/noteworm/internal/ui"
)

// ruleFlag is a repeatable pflag.Value that collects --protect or
// --exclude arguments in command-line order.
type ruleFlag struct {
	values []string
}

func (f *ruleFlag) String() string { return "" }
func (f *ruleFlag) Type() string   { return "string" }

func (f *ruleFlag) Set(val string) error {
	f.values = append(f.values, val)
	return nil
}

type backupOptions struct {
	source     string
	dest       string
	compare    string
	bwLimitStr string
	rulesFile  string
	protect    ruleFlag
	exclude    ruleFlag
	workers    int
	dryRun     bool
	lenient    bool
	keepGoing  bool
	verify     bool
}

func (a *app) backupCmd() *cobra.Command {
	var opts backupOptions

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Copy new and changed files to the destination and prune removed ones",
		Long: `Backup walks the source vault, copies every file whose destination copy is
missing or different, then deletes destination files that no longer exist in
the source. Paths under a protected prefix (.git by default) and paths matching
an exclude pattern are never deleted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runBackup(cmd, &opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.source, "source", "s", ".", "vault to back up")
	f.StringVarP(&opts.dest, "destination", "d", "", "backup directory (required unless set in config)")
	f.BoolVarP(&opts.dryRun, "dry-run", "n", false, "report what would change without writing")
	f.IntVarP(&opts.workers, "workers", "w", 0, "number of copy workers (default: min(NumCPU*2, 32))")
	f.StringVar(&opts.compare, "compare", string(engine.StrategyStream), "change detection: stream or digest")
	f.Var(&opts.protect, "protect", "never delete destination paths under PREFIX (repeatable; .git is always protected)")
	f.Var(&opts.exclude, "exclude", "ignore paths matching PATTERN on both sides (repeatable)")
	f.BoolVar(&opts.lenient, "lenient", false, "skip files that cannot be compared instead of failing")
	f.BoolVar(&opts.keepGoing, "keep-going", false, "continue past per-file failures and report them all")
	f.BoolVar(&opts.verify, "verify", false, "verify checksums after the run (BLAKE3)")
	f.StringVar(&opts.bwLimitStr, "bwlimit", "", "bandwidth limit (e.g. 10M, 1G)")
	f.StringVar(&opts.rulesFile, "rules", "", "read protect/exclude rules from FILE")

	return cmd
}

// applyConfigDefaults applies config file defaults for flags not explicitly set on the CLI.
func applyConfigDefaults(flags *pflag.FlagSet, defaults config.DefaultsConfig, opts *backupOptions) {
	if !flags.Changed("workers") && defaults.Workers != nil {
		opts.workers = *defaults.Workers
	}
	if !flags.Changed("compare") && defaults.Compare != nil {
		opts.compare = *defaults.Compare
	}
	if !flags.Changed("verify") && defaults.Verify != nil {
		opts.verify = *defaults.Verify
	}
	if !flags.Changed("lenient") && defaults.Lenient != nil {
		opts.lenient = *defaults.Lenient
	}
	if !flags.Changed("keep-going") && defaults.KeepGoing != nil {
		opts.keepGoing = *defaults.KeepGoing
	}
	if !flags.Changed("destination") && defaults.Destination != nil {
		opts.dest = *defaults.Destination
	}
	if !flags.Changed("bwlimit") && defaults.BWLimit != nil {
		opts.bwLimitStr = *defaults.BWLimit
	}
	if !flags.Changed("rules") && defaults.Rules != nil {
		opts.rulesFile = *defaults.Rules
	}
	if !flags.Changed("protect") {
		opts.protect.values = append(opts.protect.values, defaults.Protect...)
	}
	if !flags.Changed("exclude") {
		opts.exclude.values = append(opts.exclude.values, defaults.Exclude...)
	}
}

// buildRules assembles protect and exclude rules from the rules file and
// the flags, in that order.
func buildRules(opts *backupOptions) (*filter.Rules, error) {
	rules := filter.DefaultRules()
	if opts.rulesFile != "" {
		if err := rules.LoadFile(opts.rulesFile); err != nil {
			return nil, fmt.Errorf("load rules file: %w", err)
		}
	}
	for _, p := range opts.protect.values {
		if err := rules.AddProtect(p); err != nil {
			return nil, fmt.Errorf("invalid --protect: %w", err)
		}
	}
	for _, x := range opts.exclude.values {
		if err := rules.AddExclude(x); err != nil {
			return nil, fmt.Errorf("invalid --exclude: %w", err)
		}
	}
	return rules, nil
}

//nolint:revive // cognitive-complexity: the command wires config, rules, presenter and engine in sequence
func (a *app) runBackup(cmd *cobra.Command, opts *backupOptions) error {
	cfg, err := config.Load()
	if err != nil {
		slog.Warn("failed to load config", "path", config.Path(), "error", err)
	}
	applyConfigDefaults(cmd.Flags(), cfg.Defaults, opts)

	if opts.dest == "" {
		return errors.New("--destination is required (or set destination in the config file)")
	}

	strategy, err := engine.ParseStrategy(opts.compare)
	if err != nil {
		return fmt.Errorf("invalid --compare: %w", err)
	}

	var bwLimit int64
	if opts.bwLimitStr != "" {
		bwLimit, err = filter.ParseSize(opts.bwLimitStr)
		if err != nil {
			return fmt.Errorf("invalid --bwlimit: %w", err)
		}
	}

	rules, err := buildRules(opts)
	if err != nil {
		return err
	}

	theme, err := ui.DefaultTheme().WithOverrides(cfg.Theme.Copy, cfg.Theme.Skip, cfg.Theme.Delete, cfg.Theme.Fail)
	if err != nil {
		slog.Warn("ignoring theme", "error", err)
		theme = ui.DefaultTheme()
	}

	if opts.dryRun {
		slog.Info("dry run mode")
	}

	// Set up context with signal handling.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	collector := stats.NewCollector()
	events := make(chan event.Event, 256)

	// When --log is set, tee events through a logging goroutine that
	// writes structured records before forwarding to the presenter.
	presenterEvents := (<-chan event.Event)(events)
	if a.logFile != "" {
		teed := make(chan event.Event, 256)
		go func() {
			for ev := range events {
				ui.LogEvent(context.Background(), slog.Default(), ev)
				teed <- ev
			}
			close(teed)
		}()
		presenterEvents = teed
	}

	presenter := ui.NewPresenter(ui.Config{
		Writer:    a.stdout,
		ErrWriter: a.stderr,
		Stats:     collector,
		Theme:     theme,
		IsTTY:     isTerminal(a.stdout),
		Quiet:     a.quiet,
		Verbose:   a.verbose,
		NoColor:   a.noColor,
		DryRun:    opts.dryRun,
	})

	engineCfg := engine.Config{
		Events:    events,
		Stats:     collector,
		Rules:     rules,
		Src:       opts.source,
		Dst:       opts.dest,
		Compare:   strategy,
		Workers:   opts.workers,
		BWLimit:   bwLimit,
		DryRun:    opts.dryRun,
		Lenient:   opts.lenient,
		KeepGoing: opts.keepGoing,
		Verify:    opts.verify,
	}

	slog.Debug("starting backup",
		"source", opts.source,
		"destination", opts.dest,
		"compare", strategy,
		"workers", opts.workers,
		"protect", rules.Protects(),
		"exclude", rules.Excludes(),
		"dry_run", opts.dryRun,
	)

	// Presenter runs in the background, engine in the foreground.
	var presenterErr error
	var presenterWg sync.WaitGroup
	presenterWg.Add(1)
	go func() {
		defer presenterWg.Done()
		presenterErr = presenter.Run(presenterEvents)
	}()

	result := engine.Run(ctx, engineCfg)
	interrupted := ctx.Err() != nil
	stop()
	close(events)
	presenterWg.Wait()
	if presenterErr != nil {
		fmt.Fprintf(a.stderr, "presenter: %v\n", presenterErr)
	}

	if interrupted {
		if n := engine.CleanupTmpFiles(); n > 0 {
			slog.Debug("removed staging files", "count", n)
		}
	}

	if !a.quiet {
		if summary := presenter.Summary(); summary != "" {
			fmt.Fprintln(a.stderr, summary)
		}
	}

	if result.Err != nil {
		logFailure(result.Err)
		// A dry run writes nothing, so planned copies do not make it partial.
		if !opts.dryRun && result.Stats.FilesCopied > 0 {
			return &exitError{code: 1} // partial failure
		}
		return &exitError{code: 2} // total failure
	}
	return nil
}

// logFailure logs each joined error separately with its operation and path.
func logFailure(err error) {
	errs := []error{err}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	}
	for _, e := range errs {
		var ioErr *engine.IOError
		if errors.As(e, &ioErr) {
			slog.Error("backup failed", "op", ioErr.Op, "path", ioErr.Path, "error", ioErr.Err)
			continue
		}
		slog.Error("backup failed", "error", e)
	}
}

