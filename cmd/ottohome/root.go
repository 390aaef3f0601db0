package main

import (
	"fmt"
	"io"
	stdlog "log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/hammamikhairi/ottohome/internal/config"
	"github.com/hammamikhairi/ottohome/internal/logger"
	"github.com/hammamikhairi/ottohome/internal/recipe"
)

// app holds what every subcommand needs once the root has parsed flags.
var app struct {
	cfg      *config.Config
	log      *logger.Logger
	closeLog func()
}

var rootCmd = &cobra.Command{
	Use:           "ottohome",
	Short:         "OttoHome is a smart home assistant you talk to",
	Long:          `OttoHome understands a fixed set of home commands ("turn on the light in the kitchen", "set thermostat to 24 degrees") and can walk you through a handful of recipes.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if app.closeLog != nil {
			app.closeLog()
		}
	},
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", config.DefaultPath, "YAML config file (optional)")
	pf.Bool("verbose", false, "enable debug logging")
	pf.Bool("quiet", false, "disable all logging")
	pf.String("log-file", "", `file to write logs to ("stderr" for console)`)
}

func setup(cmd *cobra.Command) error {
	_ = godotenv.Load()

	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadOptional(path)
	if err != nil {
		return err
	}
	if f := cmd.Flags(); f.Changed("log-file") {
		cfg.Log.File, _ = f.GetString("log-file")
	}

	level := cfg.LogLevel()
	if v, _ := cmd.Flags().GetBool("verbose"); v {
		level = logger.LevelVerbose
	}
	if q, _ := cmd.Flags().GetBool("quiet"); q {
		level = logger.LevelOff
	}

	// Logs go to a file by default so the chat UI stays clean.
	var out io.Writer = os.Stderr
	if cfg.Log.File != "" && cfg.Log.File != "stderr" {
		if dir := filepath.Dir(cfg.Log.File); dir != "." {
			_ = os.MkdirAll(dir, 0o755)
		}
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v (logging to stderr)\n", cfg.Log.File, err)
		} else {
			out = f
			app.closeLog = func() { f.Close() }
		}
	}

	// Third-party libraries (whisper) log through the standard logger.
	stdlog.SetOutput(out)
	stdlog.SetFlags(stdlog.Ltime)

	app.cfg = cfg
	app.log = logger.New(level, out)
	app.log.Debug("config: %s (log level %s)", path, level)
	return nil
}

// catalog returns the built-in recipes plus any from the configured file.
func catalog() (*recipe.MemoryCatalog, error) {
	c := recipe.NewMemoryCatalog(app.log)
	if file := app.cfg.Recipes.File; file != "" {
		n, err := c.LoadFile(file)
		if err != nil {
			return nil, fmt.Errorf("loading recipes: %w", err)
		}
		app.log.Info("loaded %d recipes from %s", n, file)
	}
	return c, nil
}
