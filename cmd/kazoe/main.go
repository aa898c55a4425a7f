// Package main provides the CLI entrypoint for kazoe.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/kazoe/internal/catalog"
	"github.com/verte-zerg/kazoe/internal/config"
	"github.com/verte-zerg/kazoe/internal/generator"
	"github.com/verte-zerg/kazoe/internal/modality"
	"github.com/verte-zerg/kazoe/internal/model"
	"github.com/verte-zerg/kazoe/internal/reading"
	"github.com/verte-zerg/kazoe/internal/session"
	"github.com/verte-zerg/kazoe/internal/settings"
	"github.com/verte-zerg/kazoe/internal/speech"
	"github.com/verte-zerg/kazoe/internal/stats"
	"github.com/verte-zerg/kazoe/internal/tui"
)

const (
	defaultAdvanceMS       = 800
	defaultSummaryMS       = 500
	defaultChallengeRounds = 10
	defaultMaxQuantity     = 5
	defaultDecoys          = 5
	defaultWeakTop         = 4
	defaultWeakFactor      = 2.0
	defaultStartTimeoutMS  = 1500
	defaultCacheSize       = 32
	defaultStatsWindow     = 5
)

var (
	practiceDataset    string
	practiceAdvanceMS  int
	practiceSummaryMS  int
	practiceRounds     int
	practiceMaxQty     int
	practiceDecoys     int
	practiceFocusWeak  bool
	practiceWeakTop    int
	practiceWeakFactor float64

	voiceCommand   string
	voicePlayer    string
	voiceEndpoint  string
	voiceTimeoutMS int
	voiceCacheSize int

	statsLast   int
	statsWindow int
	statsColor  bool

	resetChallenges bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "kazoe",
		Short:         "Japanese counter drill",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPlayCmd,
	}

	rootCmd.PersistentFlags().StringVar(&practiceDataset, "dataset", "", "counter dataset JSON (default: built-in)")
	rootCmd.Flags().IntVar(&practiceAdvanceMS, "advance-delay-ms", defaultAdvanceMS, "pause before the next round")
	rootCmd.Flags().IntVar(&practiceSummaryMS, "summary-delay-ms", defaultSummaryMS, "pause before the challenge score")
	rootCmd.Flags().IntVar(&practiceRounds, "challenge-rounds", defaultChallengeRounds, "rounds per challenge")
	rootCmd.Flags().IntVar(&practiceMaxQty, "max-quantity", defaultMaxQuantity, "largest quantity asked for item counters")
	rootCmd.Flags().IntVar(&practiceDecoys, "decoys", defaultDecoys, "extra items shown on the shelf")
	rootCmd.Flags().BoolVar(&practiceFocusWeak, "focus-weak", false, "ask weak counters more often")
	rootCmd.Flags().IntVar(&practiceWeakTop, "weak-top", defaultWeakTop, "number of weak counters to focus on")
	rootCmd.Flags().Float64Var(&practiceWeakFactor, "weak-factor", defaultWeakFactor, "extra weight for weak counters")
	rootCmd.Flags().StringVar(&voiceCommand, "voice-command", "", "speech command; the phrase is appended")
	rootCmd.Flags().StringVar(&voicePlayer, "voice-player", "", "audio player reading fallback audio from stdin")
	rootCmd.Flags().StringVar(&voiceEndpoint, "voice-endpoint", speech.DefaultEndpoint, "fallback text-to-speech endpoint")
	rootCmd.Flags().IntVar(&voiceTimeoutMS, "voice-timeout-ms", defaultStartTimeoutMS, "time the speech command gets to start")
	rootCmd.Flags().IntVar(&voiceCacheSize, "voice-cache", defaultCacheSize, "fallback audio phrases kept in memory")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newCountersCmd())
	rootCmd.AddCommand(newResetCmd())

	return rootCmd
}

func runPlayCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyPracticeConfig(cmd, fileCfg.Practice)
	applyVoiceConfig(cmd, fileCfg.Voice)

	cfg := model.Config{
		Dataset:         practiceDataset,
		AdvanceDelay:    time.Duration(practiceAdvanceMS) * time.Millisecond,
		SummaryDelay:    time.Duration(practiceSummaryMS) * time.Millisecond,
		ChallengeRounds: practiceRounds,
		MaxQuantity:     practiceMaxQty,
		Decoys:          practiceDecoys,
		FocusWeak:       practiceFocusWeak,
		WeakTop:         practiceWeakTop,
		WeakFactor:      practiceWeakFactor,
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}
	voiceCfg := model.VoiceConfig{
		Command:      voiceCommand,
		Player:       voicePlayer,
		Endpoint:     voiceEndpoint,
		StartTimeout: time.Duration(voiceTimeoutMS) * time.Millisecond,
		CacheSize:    voiceCacheSize,
	}

	a, err := openApp(ctx, fileCfg, cfg.Dataset)
	if err != nil {
		return err
	}
	defer a.Close()
	if a.loadErr != nil {
		logErrf("failed to load dataset: %v\n", a.loadErr)
	}
	seedPreferences(ctx, a, fileCfg.Voice)
	if cfg.FocusWeak && len(stats.SelectWeakCounters(a.tracker.All(), cfg.WeakTop)) == 0 {
		logErrln("no stats available for weak-counter focus yet; using normal generator")
	}

	fallback, err := speech.NewFallback(voiceCfg.Endpoint, voiceCfg.CacheSize, nil)
	if err != nil {
		a.log.WithError(err).Warn("fallback voice disabled")
		fallback = nil
	}
	speaker := speech.New(speech.Options{
		Command:      voiceCfg.Command,
		Player:       voiceCfg.Player,
		StartTimeout: voiceCfg.StartTimeout,
	}, fallback, a.log)

	m := tui.NewModel(tui.Options{
		Catalog:   a.catalog,
		Generator: generator.New(generator.Options{MaxQuantity: cfg.MaxQuantity, Decoys: cfg.Decoys}),
		Registry:  modality.NewRegistry(),
		Tracker:   a.tracker,
		Settings:  a.settings,
		History:   a.store,
		Voice:     speaker,
		Log:       a.log,
		Config:    cfg,
	})
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

var _ session.Voice = (*speech.Speaker)(nil)

// seedPreferences copies [voice] toggles from the config file into the
// persisted preferences when nothing was stored yet.
func seedPreferences(ctx context.Context, a *app, v config.VoiceConfig) {
	prefs := a.settings.Preferences()
	changed := false
	if v.Enabled != nil && !a.settings.Has(settings.KeyVoice) {
		prefs.Voice = *v.Enabled
		changed = true
	}
	if v.Fallback != nil && !a.settings.Has(settings.KeyFallbackVoice) {
		prefs.FallbackVoice = *v.Fallback
		changed = true
	}
	if !changed {
		return
	}
	if err := a.settings.SetPreferences(ctx, prefs); err != nil {
		a.log.WithError(err).Warn("failed to seed preferences")
	}
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show per-counter accuracy and challenge history",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N challenges")
	cmd.Flags().IntVar(&statsWindow, "window", defaultStatsWindow, "moving average window for the score trend")
	cmd.Flags().BoolVar(&statsColor, "color", false, "force colored output")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()
	a, err := loadApp(ctx, practiceDataset)
	if err != nil {
		return err
	}
	defer a.Close()
	if a.loadErr != nil {
		return fmt.Errorf("failed to load dataset: %w", a.loadErr)
	}

	out := cmd.OutOrStdout()
	set := a.settings.Enabled()
	rows := lo.Map(a.catalog.Counters(), func(c model.Counter, _ int) stats.CounterRow {
		return stats.CounterRow{Counter: c, Stats: a.tracker.Get(c.Key), Enabled: a.catalog.IsEnabled(set, c.Key)}
	})
	if err := stats.RenderCounterTable(out, rows, statsColor || stats.UseColor(out)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	records, err := a.store.ListChallenges(ctx, statsLast)
	if err != nil {
		return fmt.Errorf("failed to load challenges: %w", err)
	}
	if err := stats.RenderChallengeSummary(out, records, statsWindow); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newCountersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "counters",
		Short: "List, enable or disable counters",
		Args:  cobra.NoArgs,
		RunE:  runCountersListCmd,
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List counters",
		Args:  cobra.NoArgs,
		RunE:  runCountersListCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "enable <counter>...",
		Short: "Enable counters",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCountersChange(cmd, args, true)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "disable <counter>...",
		Short: "Disable counters",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCountersChange(cmd, args, false)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "all",
		Short: "Enable every counter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := context.Background()
			a, err := loadApp(ctx, practiceDataset)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.settings.SetEnabled(ctx, model.AllEnabled()); err != nil {
				return fmt.Errorf("failed to save enabled counters: %w", err)
			}
			logErrln("All counters enabled.")
			return nil
		},
	})
	return cmd
}

func runCountersListCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()
	a, err := loadApp(ctx, practiceDataset)
	if err != nil {
		return err
	}
	defer a.Close()
	if a.loadErr != nil {
		return fmt.Errorf("failed to load dataset: %w", a.loadErr)
	}
	set := a.settings.Enabled()
	rows := lo.Map(a.catalog.Counters(), func(c model.Counter, _ int) []string {
		on := ""
		if a.catalog.IsEnabled(set, c.Key) {
			on = "*"
		}
		return []string{on, c.Key, reading.CounterReading(c, 1), c.Category, string(catalog.ModalityOf(c).Kind)}
	})
	headers := []string{"On", "Counter", "Example", "Category", "Practice"}
	if err := stats.RenderTable(cmd.OutOrStdout(), headers, rows, nil); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func runCountersChange(_ *cobra.Command, keys []string, enable bool) error {
	ctx := context.Background()
	a, err := loadApp(ctx, practiceDataset)
	if err != nil {
		return err
	}
	defer a.Close()
	if a.loadErr != nil {
		return fmt.Errorf("failed to load dataset: %w", a.loadErr)
	}
	next, err := changeEnabled(a.catalog, a.settings.Enabled(), keys, enable)
	if err != nil {
		return err
	}
	if err := a.settings.SetEnabled(ctx, next); err != nil {
		return fmt.Errorf("failed to save enabled counters: %w", err)
	}
	logErrf("%d of %d counters enabled.\n", len(a.catalog.Active(next)), a.catalog.Len())
	return nil
}

// changeEnabled adds or removes keys from the enabled set. Unknown keys and
// disabling every counter are rejected.
func changeEnabled(cat *catalog.Catalog, set model.EnabledSet, keys []string, enable bool) (model.EnabledSet, error) {
	universe := cat.Keys()
	if unknown, _ := lo.Difference(keys, universe); len(unknown) > 0 {
		return set, fmt.Errorf("unknown counters: %s", strings.Join(unknown, ", "))
	}
	current := set.Keys
	if set.All {
		current = universe
	}
	var next []string
	if enable {
		next = lo.Union(current, keys)
	} else {
		next = lo.Without(current, keys...)
	}
	if len(next) == 0 {
		return set, settings.ErrLastCounter
	}
	return cat.Reconcile(next), nil
}

func newResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Zero per-counter statistics",
		Args:  cobra.NoArgs,
		RunE:  runResetCmd,
	}
	cmd.Flags().BoolVar(&resetChallenges, "challenges", false, "also delete challenge history")
	return cmd
}

func runResetCmd(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	a, err := loadApp(ctx, practiceDataset)
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.tracker.Reset(ctx); err != nil {
		return fmt.Errorf("failed to reset stats: %w", err)
	}
	logErrln("Counter statistics reset.")
	if resetChallenges {
		if err := a.store.ClearChallenges(ctx); err != nil {
			return fmt.Errorf("failed to clear challenges: %w", err)
		}
		logErrln("Challenge history cleared.")
	}
	return nil
}

func applyPracticeConfig(cmd *cobra.Command, p config.PracticeConfig) {
	applyStringConfig(cmd, "dataset", &practiceDataset, p.Dataset)
	applyIntConfig(cmd, "advance-delay-ms", &practiceAdvanceMS, p.AdvanceDelayMS)
	applyIntConfig(cmd, "summary-delay-ms", &practiceSummaryMS, p.SummaryDelayMS)
	applyIntConfig(cmd, "challenge-rounds", &practiceRounds, p.ChallengeRounds)
	applyIntConfig(cmd, "max-quantity", &practiceMaxQty, p.MaxQuantity)
	applyIntConfig(cmd, "decoys", &practiceDecoys, p.Decoys)
	applyBoolConfig(cmd, "focus-weak", &practiceFocusWeak, p.FocusWeak)
	applyIntConfig(cmd, "weak-top", &practiceWeakTop, p.WeakTop)
	applyFloatConfig(cmd, "weak-factor", &practiceWeakFactor, p.WeakFactor)
}

func applyVoiceConfig(cmd *cobra.Command, v config.VoiceConfig) {
	applyStringConfig(cmd, "voice-command", &voiceCommand, v.Command)
	applyStringConfig(cmd, "voice-player", &voicePlayer, v.Player)
	applyStringConfig(cmd, "voice-endpoint", &voiceEndpoint, v.Endpoint)
	applyIntConfig(cmd, "voice-timeout-ms", &voiceTimeoutMS, v.StartTimeoutMS)
	applyIntConfig(cmd, "voice-cache", &voiceCacheSize, v.CacheSize)
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# kazoe configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# dataset = ""              # Counter dataset JSON (empty: built-in)
# advance-delay-ms = %d    # Pause before the next round
# summary-delay-ms = %d    # Pause before the challenge score
# challenge-rounds = %d     # Rounds per challenge
# max-quantity = %d          # Largest quantity asked for item counters
# decoys = %d                # Extra items shown on the shelf
# focus-weak = false        # Ask weak counters more often
# weak-top = %d              # Number of weak counters to focus on
# weak-factor = %.1f        # Extra weight for weak counters

[voice]
# enabled = true            # Speak prompts (first run only; toggle with v)
# fallback = true           # Fetch audio when the command fails (toggle with b)
# command = "say -v Kyoko"  # Speech command; the phrase is appended
# player = "mpv --no-video -" # Player reading fallback audio from stdin
# endpoint = %q
# start-timeout-ms = %d
# cache-size = %d

[log]
# level = "info"            # debug, info, warn, error
# format = "text"           # text or json
`,
		defaultAdvanceMS,
		defaultSummaryMS,
		defaultChallengeRounds,
		defaultMaxQuantity,
		defaultDecoys,
		defaultWeakTop,
		defaultWeakFactor,
		speech.DefaultEndpoint,
		defaultStartTimeoutMS,
		defaultCacheSize,
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.AdvanceDelay <= 0 {
		return fmt.Errorf("--advance-delay-ms must be > 0")
	}
	if cfg.SummaryDelay <= 0 {
		return fmt.Errorf("--summary-delay-ms must be > 0")
	}
	if cfg.ChallengeRounds <= 0 {
		return fmt.Errorf("--challenge-rounds must be > 0")
	}
	if cfg.MaxQuantity <= 0 {
		return fmt.Errorf("--max-quantity must be > 0")
	}
	if cfg.Decoys < 0 {
		return fmt.Errorf("--decoys must be >= 0")
	}
	if cfg.WeakTop < 0 {
		return fmt.Errorf("--weak-top must be >= 0")
	}
	if cfg.WeakFactor < 0 {
		return fmt.Errorf("--weak-factor must be >= 0")
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
