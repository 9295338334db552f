// Package cli implements the pcre command: matching and substitution over
// subjects given as arguments, files or standard input, plus an interactive
// pattern tester.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/coregx/pcre"
	"github.com/coregx/pcre/internal/logger"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Exit codes returned by Run.
const (
	ExitOK      = 0
	ExitNoMatch = 1
	ExitError   = 2
)

// ErrNoMatch is returned by the match and all commands when no subject
// matched.
var ErrNoMatch = errors.New("no match")

// App holds the I/O endpoints and configuration of one command invocation.
type App struct {
	Fs  afero.Fs
	In  io.Reader
	Out io.Writer
	Err io.Writer

	v       *viper.Viper
	log     *slog.Logger
	closers []io.Closer
}

// New returns an App reading files from fs.
func New(fs afero.Fs, in io.Reader, out, errOut io.Writer) *App {
	return &App{
		Fs:  fs,
		In:  in,
		Out: out,
		Err: errOut,
		v:   viper.New(),
		log: slog.New(slog.DiscardHandler),
	}
}

type commandLineFlag struct {
	name, shorthand, defaultValue, usage string
}

var (
	flagsFlag = commandLineFlag{
		name:      "flags",
		shorthand: "F",
		usage:     "pattern flags: any of imsxung",
	}
	outputFlag = commandLineFlag{
		name:         "output",
		shorthand:    "o",
		defaultValue: formatText,
		usage:        "output format: text, table, json or yaml",
	}
	colorFlag = commandLineFlag{
		name:         "color",
		defaultValue: "auto",
		usage:        "highlight matches: auto, always or never",
	}
	logLevelFlag = commandLineFlag{
		name:         "log-level",
		defaultValue: "warn",
		usage:        "log level: debug, info, warn or error",
	}
	logFileFlag = commandLineFlag{
		name:  "log-file",
		usage: "also write JSON logs to this file",
	}
	configFlag = commandLineFlag{
		name:      "config",
		shorthand: "c",
		usage:     "config file (default is ./pcre.yaml or $HOME/.config/pcre/pcre.yaml)",
	}
)

// Command builds the root command with every subcommand attached.
func (a *App) Command() *cobra.Command {
	root := &cobra.Command{
		Use:   "pcre",
		Short: "Match and substitute with Perl-compatible patterns",
		Long: `pcre matches and substitutes Perl-compatible regular expressions.

Subjects are taken from the command line, from --file (one subject per
line), or from standard input when neither is given.

Examples:
  pcre match '(?<user>\w+)@example\.com' alice@example.com
  pcre all -o json '\d+' 'a1b22c333'
  pcre sub --global '(\d+)' '[$1]' a1b22c
  pcre -F i --file app.log match 'timeout|refused'
  pcre repl`,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	pf := root.PersistentFlags()
	for _, flag := range []commandLineFlag{flagsFlag, outputFlag, colorFlag, logLevelFlag, logFileFlag, configFlag} {
		pf.StringP(flag.name, flag.shorthand, flag.defaultValue, flag.usage)
	}
	pf.StringSlice("file", nil, "read subjects from this file, one per line (repeatable)")
	pf.BoolP("quiet", "q", false, "do not log to stderr (--log-file still receives records)")

	for _, name := range []string{"flags", "output", "color", "log-level", "log-file", "config", "file", "quiet"} {
		_ = a.v.BindPFlag(name, pf.Lookup(name))
	}

	defaults := pcre.DefaultConfig()
	a.v.SetDefault("prefilter", defaults.EnablePrefilter)
	a.v.SetDefault("min-literal-len", defaults.MinLiteralLen)
	a.v.SetDefault("max-literals", defaults.MaxLiterals)
	a.v.SetDefault("cache-size", 64)

	root.AddCommand(a.matchCmd(), a.allCmd(), a.subCmd(), a.versionCmd(), a.replCmd())
	return root
}

// Run executes the command line args and returns the process exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	cmd := a.Command()
	cmd.SetArgs(args)
	cmd.SetIn(a.In)
	cmd.SetOut(a.Out)
	cmd.SetErr(a.Err)

	err := cmd.ExecuteContext(ctx)
	a.close()

	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrNoMatch):
		return ExitNoMatch
	}
	fmt.Fprintln(a.Err, "Error:", err)
	return ExitError
}

func (a *App) setup(cmd *cobra.Command, _ []string) error {
	if err := a.readConfig(); err != nil {
		return err
	}

	level, err := logger.ParseLevel(a.v.GetString("log-level"))
	if err != nil {
		return err
	}
	opts := []logger.Option{logger.WithLevel(level), logger.WithConsole(a.Err)}
	if a.v.GetBool("quiet") {
		opts = append(opts, logger.WithQuiet())
	}
	if path := a.v.GetString("log-file"); path != "" {
		f, err := a.Fs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		a.closers = append(a.closers, f)
		opts = append(opts, logger.WithWriter(f))
	}
	a.log = logger.New(opts...)

	if err := pcre.Init(cmd.Context()); err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	a.log.Debug("Library initialized", "engine", pcre.Version())
	return nil
}

func (a *App) readConfig() error {
	a.v.SetFs(a.Fs)
	if file := a.v.GetString("config"); file != "" {
		a.v.SetConfigFile(file)
	} else {
		a.v.SetConfigName("pcre")
		a.v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			a.v.AddConfigPath(filepath.Join(home, ".config", "pcre"))
		}
	}
	a.v.SetConfigType("yaml")
	a.v.SetEnvPrefix("PCRE")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}
	return nil
}

// patternConfig returns the library configuration for compiled patterns.
func (a *App) patternConfig() pcre.Config {
	return pcre.Config{
		EnablePrefilter: a.v.GetBool("prefilter"),
		MinLiteralLen:   a.v.GetInt("min-literal-len"),
		MaxLiterals:     a.v.GetInt("max-literals"),
		Logger:          a.log,
	}
}

func (a *App) compile(pattern string) (*pcre.Pattern, error) {
	return pcre.CompileWithConfig(pattern, a.v.GetString("flags"), a.patternConfig())
}

func (a *App) close() {
	for _, c := range a.closers {
		_ = c.Close()
	}
	a.closers = nil
}
