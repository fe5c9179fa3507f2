package main

import (
	"log/slog"
	"os"
	"strings"

	slogmulti "github.com/samber/slog-multi"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/vango-dev/vloop/internal/config"
	verrors "github.com/vango-dev/vloop/internal/errors"
)

// cli holds state shared by all commands. Settings are layered: vloop.json
// first, then VLOOP_* environment variables, then flags.
type cli struct {
	v       *viper.Viper
	cfg     *config.Config
	level   *slog.LevelVar
	logger  *slog.Logger
	logFile *os.File

	errFormat string
	noColor   bool
}

func newRootCmd() *cobra.Command {
	c := &cli{
		v:     viper.New(),
		level: new(slog.LevelVar),
	}
	c.v.SetEnvPrefix("VLOOP")
	c.v.AutomaticEnv()
	c.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	root := &cobra.Command{
		Use:   "vloop",
		Short: "A reactive update loop with a keyed tree reconciler",
		Long: `vloop runs reactive component trees.

State is observed; effects and components that read it re-run when
it changes, batched into one flush per update. The reconciler diffs
each new tree against the last one and applies the minimal set of
host operations, moving keyed children along their longest
increasing subsequence.

Settings come from vloop.json, VLOOP_* environment variables
(VLOOP_LOG_LEVEL, VLOOP_SERVE_ADDR, ...) and flags, in rising order
of precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.load()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.close()
		},
	}

	pf := root.PersistentFlags()
	pf.StringP("dir", "C", ".", "Directory containing vloop.json")
	pf.StringP("log-level", "l", "", "Log level: debug, info, warn, error")
	pf.String("log-file", "", "Also write JSON logs to this file")
	pf.Int("flush-limit", 0, "Maximum scheduler passes per flush")
	pf.StringVar(&c.errFormat, "error-format", formatPretty, "Error output: pretty, compact or json")
	pf.BoolVar(&c.noColor, "no-color", false, "Disable colored error output (also NO_COLOR)")
	c.bind("dir", pf.Lookup("dir"))
	c.bind("log.level", pf.Lookup("log-level"))
	c.bind("log.file", pf.Lookup("log-file"))
	c.bind("scheduler.flushLimit", pf.Lookup("flush-limit"))

	root.AddCommand(
		demoCmd(c),
		serveCmd(c),
		benchCmd(c),
		errorsCmd(c),
		versionCmd(),
	)
	return root
}

func (c *cli) bind(key string, flag *pflag.Flag) {
	if err := c.v.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}

// load reads vloop.json, applies environment and flag overrides, validates
// the result and installs the logger.
func (c *cli) load() error {
	setColor(c.noColor)
	if !validFormat(c.errFormat) {
		return verrors.New("E505").WithField("format", c.errFormat)
	}
	cfg, err := config.Load(c.v.GetString("dir"))
	if err != nil {
		return err
	}
	c.override(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.cfg = cfg
	return c.setupLogging()
}

func (c *cli) override(cfg *config.Config) {
	setString := func(key string, dst *string) {
		if c.v.IsSet(key) {
			*dst = c.v.GetString(key)
		}
	}
	setInt := func(key string, dst *int) {
		if c.v.IsSet(key) {
			*dst = c.v.GetInt(key)
		}
	}
	setString("log.level", &cfg.Log.Level)
	setString("log.file", &cfg.Log.File)
	setInt("scheduler.flushLimit", &cfg.Scheduler.FlushLimit)
	setString("serve.addr", &cfg.Serve.Addr)
	setString("serve.metricsPath", &cfg.Serve.MetricsPath)
	setString("serve.tick", &cfg.Serve.Tick)
	setInt("demo.items", &cfg.Demo.Items)
	setInt("demo.steps", &cfg.Demo.Steps)
}

// setupLogging fans log records out to a text handler on stderr and, when
// log.file is set, a JSON handler on that file.
func (c *cli) setupLogging() error {
	c.level.Set(c.cfg.SlogLevel())
	opts := &slog.HandlerOptions{Level: c.level}

	handlers := []slog.Handler{slog.NewTextHandler(os.Stderr, opts)}
	if path := c.cfg.Log.File; path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return verrors.Newf(verrors.CategoryConfig, "cannot open log file %s", path).Wrap(err)
		}
		c.logFile = f
		handlers = append(handlers, slog.NewJSONHandler(f, opts))
	}

	c.logger = slog.New(slogmulti.Fanout(handlers...))
	slog.SetDefault(c.logger)
	return nil
}

func (c *cli) close() error {
	if c.logFile == nil {
		return nil
	}
	err := c.logFile.Close()
	c.logFile = nil
	return err
}
