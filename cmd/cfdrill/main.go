// Package main provides the CLI entrypoint for cfdrill.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/verte-zerg/cfdrill/internal/codeforces"
	"github.com/verte-zerg/cfdrill/internal/config"
	"github.com/verte-zerg/cfdrill/internal/history"
	"github.com/verte-zerg/cfdrill/internal/identity"
	"github.com/verte-zerg/cfdrill/internal/logger"
	"github.com/verte-zerg/cfdrill/internal/model"
	"github.com/verte-zerg/cfdrill/internal/store"
	"github.com/verte-zerg/cfdrill/internal/training"
	"github.com/verte-zerg/cfdrill/internal/upsolve"
)

const (
	defaultDurationMinutes = 120
	defaultMaxProblems     = 8
	defaultMinProblems     = 3
	defaultTimeoutSeconds  = 60
	defaultCacheMinutes    = 60
	defaultBackend         = "sqlite"
	defaultRedisPrefix     = "cfdrill:"
	defaultLogLevel        = "info"
	defaultLogFormat       = "console"
	defaultCurveWindow     = 5
	defaultWeakMinSessions = 2
)

var (
	trainingDuration    int
	trainingMaxProblems int
	trainingMinProblems int

	catalogBaseURL string
	catalogTimeout int
	catalogCache   int

	storageBackend string
	storagePath    string
	redisAddr      string
	redisPassword  string
	redisDB        int
	redisPrefix    string

	logLevel  string
	logFile   string
	logFormat string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "cfdrill",
		Short:         "Timed Codeforces training sessions with an upsolve backlog",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE:          runRootCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.IntVar(&trainingDuration, "duration", defaultDurationMinutes, "session length in minutes")
	flags.IntVar(&trainingMaxProblems, "max-problems", defaultMaxProblems, "problems per session")
	flags.IntVar(&trainingMinProblems, "min-problems", defaultMinProblems, "minimum matching problems required to start")
	flags.StringVar(&catalogBaseURL, "api", codeforces.DefaultBaseURL, "judge API base URL")
	flags.IntVar(&catalogTimeout, "timeout", defaultTimeoutSeconds, "judge API timeout in seconds")
	flags.IntVar(&catalogCache, "cache", defaultCacheMinutes, "minutes to reuse the fetched catalog (0 disables)")
	flags.StringVar(&storageBackend, "backend", defaultBackend, "storage backend (sqlite or redis)")
	flags.StringVar(&storagePath, "db", "", "sqlite database path")
	flags.StringVar(&redisAddr, "redis-addr", "", "redis address (host:port)")
	flags.StringVar(&redisPassword, "redis-password", "", "redis password")
	flags.IntVar(&redisDB, "redis-db", 0, "redis database number")
	flags.StringVar(&redisPrefix, "redis-prefix", defaultRedisPrefix, "redis key prefix")
	flags.StringVar(&logLevel, "log-level", defaultLogLevel, "log level (debug, info, warn, error)")
	flags.StringVar(&logFile, "log-file", "", "log file path")
	flags.StringVar(&logFormat, "log-format", defaultLogFormat, "log format (console or json)")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newLogoutCmd())
	rootCmd.AddCommand(newWhoamiCmd())
	rootCmd.AddCommand(newTagsCmd())
	rootCmd.AddCommand(newStartCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newSolveCmd())
	rootCmd.AddCommand(newEndCmd())
	rootCmd.AddCommand(newUpsolveCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newHistoryCmd())

	return rootCmd
}

func runRootCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if _, ok := a.engine.Active(); ok && isTerminal() {
		return runSessionTUI(cmd, a)
	}
	return printStatus(cmd, a)
}

// app holds the components every subcommand is built from.
type app struct {
	log      *zap.Logger
	kv       store.KV
	identity *identity.Provider
	backlog  *upsolve.Manager
	history  *history.Log
	engine   *training.Engine
}

type settings struct {
	Duration    time.Duration
	MaxProblems int
	MinProblems int
	BaseURL     string
	Timeout     time.Duration
	CacheTTL    time.Duration
	Backend     string
	DBPath      string
	Redis       store.RedisOptions
	LogLevel    string
	LogFile     string
	LogFormat   string
}

func openApp(cmd *cobra.Command) (*app, error) {
	s, err := loadSettings(cmd)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(s.LogLevel, s.LogFormat, s.LogFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open log: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	kv, err := openStore(ctx, s)
	if err != nil {
		_ = log.Sync()
		return nil, err
	}

	client := codeforces.New(
		codeforces.WithBaseURL(s.BaseURL),
		codeforces.WithTimeout(s.Timeout),
		codeforces.WithLogger(log.Named("codeforces")),
	)
	catalog := codeforces.NewCached(client, kv, s.CacheTTL, log.Named("catalog"))
	backlog := upsolve.New(kv, log.Named("upsolve"))
	hist := history.New(kv, log.Named("history"))
	engine := training.New(kv, catalog, backlog, hist,
		training.WithConfig(model.Config{
			Duration:    s.Duration,
			MaxProblems: s.MaxProblems,
			MinProblems: s.MinProblems,
		}),
		training.WithLogger(log.Named("training")),
	)

	a := &app{
		log:      log,
		kv:       kv,
		identity: identity.New(kv, client, log.Named("identity")),
		backlog:  backlog,
		history:  hist,
		engine:   engine,
	}

	summary, err := engine.Load(ctx)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if !summary.Empty() {
		logErrf("Your last session ran out of time: solved %d/%d.\n", summary.SolvedCount, summary.TotalCount)
		if summary.UnsolvedMovedToUpsolve {
			logErrln("Unsolved problems were moved to the upsolve backlog.")
		}
	}
	return a, nil
}

func (a *app) Close() {
	if cerr := a.kv.Close(); cerr != nil {
		logErrf("failed to close store: %v\n", cerr)
	}
	_ = a.log.Sync()
}

func openStore(ctx context.Context, s settings) (store.KV, error) {
	switch s.Backend {
	case "redis":
		r, err := store.OpenRedis(ctx, s.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to open redis: %w", err)
		}
		return r, nil
	default:
		st, err := store.Open(s.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open db: %w", err)
		}
		return st, nil
	}
}

func loadSettings(cmd *cobra.Command) (settings, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return settings{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "duration", &trainingDuration, fileCfg.Training.DurationMinutes)
	applyIntConfig(cmd, "max-problems", &trainingMaxProblems, fileCfg.Training.MaxProblems)
	applyIntConfig(cmd, "min-problems", &trainingMinProblems, fileCfg.Training.MinProblems)
	applyStringConfig(cmd, "api", &catalogBaseURL, fileCfg.Catalog.BaseURL)
	applyIntConfig(cmd, "timeout", &catalogTimeout, fileCfg.Catalog.TimeoutSeconds)
	applyIntConfig(cmd, "cache", &catalogCache, fileCfg.Catalog.CacheMinutes)
	applyStringConfig(cmd, "backend", &storageBackend, fileCfg.Storage.Backend)
	applyStringConfig(cmd, "db", &storagePath, fileCfg.Storage.Path)
	applyStringConfig(cmd, "redis-addr", &redisAddr, fileCfg.Storage.RedisAddr)
	applyStringConfig(cmd, "redis-password", &redisPassword, fileCfg.Storage.RedisPassword)
	applyIntConfig(cmd, "redis-db", &redisDB, fileCfg.Storage.RedisDB)
	applyStringConfig(cmd, "redis-prefix", &redisPrefix, fileCfg.Storage.RedisPrefix)
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)
	applyStringConfig(cmd, "log-file", &logFile, fileCfg.Log.File)
	applyStringConfig(cmd, "log-format", &logFormat, fileCfg.Log.Format)
	applyBoolConfig(cmd, "recommended", &startRecommended, fileCfg.Training.Recommended)

	s := settings{
		Duration:    time.Duration(trainingDuration) * time.Minute,
		MaxProblems: trainingMaxProblems,
		MinProblems: trainingMinProblems,
		BaseURL:     strings.TrimSpace(catalogBaseURL),
		Timeout:     time.Duration(catalogTimeout) * time.Second,
		CacheTTL:    time.Duration(catalogCache) * time.Minute,
		Backend:     strings.ToLower(strings.TrimSpace(storageBackend)),
		DBPath:      storagePath,
		Redis: store.RedisOptions{
			Addr:     redisAddr,
			Password: redisPassword,
			DB:       redisDB,
			Prefix:   redisPrefix,
		},
		LogLevel:  logLevel,
		LogFile:   logFile,
		LogFormat: logFormat,
	}
	if s.DBPath == "" {
		s.DBPath = config.DefaultDBPath()
	}
	if s.LogFile == "" {
		s.LogFile = config.DefaultLogPath()
	}
	if err := validateConfig(s); err != nil {
		return settings{}, err
	}
	return s, nil
}

func validateConfig(s settings) error {
	if s.Duration <= 0 {
		return fmt.Errorf("--duration must be > 0")
	}
	if s.MaxProblems <= 0 {
		return fmt.Errorf("--max-problems must be > 0")
	}
	if s.MinProblems <= 0 {
		return fmt.Errorf("--min-problems must be > 0")
	}
	if s.MinProblems > s.MaxProblems {
		return fmt.Errorf("--min-problems must be <= --max-problems")
	}
	if s.BaseURL == "" {
		return fmt.Errorf("--api must not be empty")
	}
	if s.Timeout <= 0 {
		return fmt.Errorf("--timeout must be > 0")
	}
	if s.CacheTTL < 0 {
		return fmt.Errorf("--cache must be >= 0")
	}
	switch s.Backend {
	case "sqlite":
	case "redis":
		if s.Redis.Addr == "" {
			return fmt.Errorf("--redis-addr must be set for the redis backend")
		}
		if s.Redis.DB < 0 {
			return fmt.Errorf("--redis-db must be >= 0")
		}
	default:
		return fmt.Errorf("--backend must be sqlite or redis")
	}
	if _, err := logger.ParseLevel(s.LogLevel); err != nil {
		return fmt.Errorf("--log-level must be debug, info, warn or error")
	}
	switch strings.ToLower(strings.TrimSpace(s.LogFormat)) {
	case "console", "json":
	default:
		return fmt.Errorf("--log-format must be console or json")
	}
	return nil
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
	return fmt.Sprintf(`# cfdrill configuration
# Uncomment a value to enable it. CLI flags override config values.

[training]
# duration-minutes = %d   # Session length
# max-problems = %d        # Problems per session
# min-problems = %d        # Minimum matching problems required to start
# recommended = false     # Use recommended tags when start gets no --tags

[catalog]
# base-url = %q
# timeout-seconds = %d    # Judge API timeout
# cache-minutes = %d      # Reuse the fetched problem set (0 disables)

[storage]
# backend = %q        # sqlite or redis
# path = %q
# redis-addr = "localhost:6379"
# redis-password = ""
# redis-db = 0
# redis-prefix = %q

[log]
# level = %q            # debug, info, warn, error
# file = %q
# format = %q        # console or json
`,
		defaultDurationMinutes,
		defaultMaxProblems,
		defaultMinProblems,
		codeforces.DefaultBaseURL,
		defaultTimeoutSeconds,
		defaultCacheMinutes,
		defaultBackend,
		config.DefaultDBPath(),
		defaultRedisPrefix,
		defaultLogLevel,
		config.DefaultLogPath(),
		defaultLogFormat,
	)
}

// withHint appends a next step to errors the user can act on.
func withHint(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, model.ErrCatalogUnavailable):
		return fmt.Errorf("%w\ncheck your internet connection and try again", err)
	case errors.Is(err, model.ErrInsufficientProblems):
		return fmt.Errorf("%w\nselect more tags or try: cfdrill start --recommended", err)
	case errors.Is(err, model.ErrSessionAlreadyActive):
		return fmt.Errorf("%w\nresume it with: cfdrill, or finish it with: cfdrill end", err)
	case errors.Is(err, model.ErrNoActiveSession):
		return fmt.Errorf("%w\nstart one with: cfdrill start --tags <tag,...>", err)
	case errors.Is(err, model.ErrNotBound):
		return fmt.Errorf("%w\nbind one with: cfdrill login <handle>", err)
	}
	return err
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd())) && term.IsTerminal(int(os.Stdin.Fd()))
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
