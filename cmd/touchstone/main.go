// Command touchstone runs the demo split-testing server and the admin
// commands for inspecting and reshaping test state.
//
// Usage:
//
//	touchstone serve                        # start the demo server
//	touchstone serve --config config.yaml   # with a config file
//	touchstone report <test>                # ranked form statistics
//	touchstone keys <test>                  # list a test's store keys
//	touchstone rename <old> <new>           # move a test's state
//	touchstone delete <test>                # drop a test's state
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/taoensso/touchstone"
	"github.com/taoensso/touchstone/config"
	"github.com/taoensso/touchstone/store"
	"github.com/taoensso/touchstone/types"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		runServe(os.Args[2:])
	case "report":
		runReport(os.Args[2:])
	case "keys":
		runKeys(os.Args[2:])
	case "rename":
		runRename(os.Args[2:])
	case "delete":
		runDelete(os.Args[2:])
	case "version":
		printVersion()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func runServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := initLogger(cfg.Log)
	defer logger.Sync()

	logger.Info("Starting touchstone",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit),
	)

	st, err := store.NewRedis(cfg.Redis, logger)
	if err != nil {
		logger.Fatal("Failed to connect store", zap.Error(err))
	}

	server := NewServer(cfg, st, logger)
	if err := server.Start(); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
	server.WaitForShutdown()

	logger.Info("touchstone stopped")
}

// openEngine connects the admin commands to the store. The returned cleanup
// closes the connection.
func openEngine(configPath string) (*touchstone.Engine, func()) {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := initLogger(cfg.Log)

	st, err := store.NewRedis(cfg.Redis, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect store: %v\n", err)
		os.Exit(1)
	}
	eng := touchstone.New(st, config.NewResolver(cfg), touchstone.WithLogger(logger))
	return eng, func() {
		st.Close()
		logger.Sync()
	}
}

func runReport(args []string) {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	fs.Parse(args)
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: touchstone report [--config <path>] <test>")
		os.Exit(1)
	}

	eng, done := openEngine(*configPath)
	defer done()

	snap, err := eng.Snapshot(context.Background(), fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Report failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Test %s: %d prospects, total score %.3f\n",
		snap.TestID, snap.TotalProspects, snap.TotalScore)
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FORM\tPROSPECTS\tSCORE\tMEAN")
	for _, f := range snap.Forms {
		fmt.Fprintf(w, "%s\t%d\t%.3f\t%.4f\n", f.FormID, f.Prospects, f.Score, f.MeanScore)
	}
	w.Flush()
}

func runKeys(args []string) {
	fs := flag.NewFlagSet("keys", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	fs.Parse(args)
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: touchstone keys [--config <path>] <test>")
		os.Exit(1)
	}

	eng, done := openEngine(*configPath)
	defer done()

	keys, err := eng.ListTestKeys(context.Background(), fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Listing keys failed: %v\n", err)
		os.Exit(1)
	}
	for _, k := range keys {
		fmt.Println(k)
	}
}

func runRename(args []string) {
	fs := flag.NewFlagSet("rename", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	fs.Parse(args)
	if fs.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "Usage: touchstone rename [--config <path>] <old> <new>")
		os.Exit(1)
	}

	eng, done := openEngine(*configPath)
	defer done()

	err := eng.RenameTest(context.Background(), fs.Arg(0), fs.Arg(1))
	var conflict *types.RenameConflict
	switch {
	case err == nil:
		fmt.Printf("Renamed %s -> %s\n", fs.Arg(0), fs.Arg(1))
	case errors.As(err, &conflict):
		fmt.Fprintf(os.Stderr, "Partial rename %s -> %s; keys left in place:\n", fs.Arg(0), fs.Arg(1))
		for _, k := range conflict.Failed {
			fmt.Fprintf(os.Stderr, "  %s\n", k)
		}
		os.Exit(1)
	default:
		fmt.Fprintf(os.Stderr, "Rename failed: %v\n", err)
		os.Exit(1)
	}
}

func runDelete(args []string) {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	fs.Parse(args)
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: touchstone delete [--config <path>] <test>")
		os.Exit(1)
	}

	eng, done := openEngine(*configPath)
	defer done()

	if err := eng.DeleteTest(context.Background(), fs.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "Delete failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Deleted %s\n", fs.Arg(0))
}

func printVersion() {
	fmt.Printf("touchstone %s\n", Version)
	fmt.Printf("  Build Time: %s\n", BuildTime)
	fmt.Printf("  Git Commit: %s\n", GitCommit)
}

func printUsage() {
	fmt.Println(`touchstone - split-testing engine

Usage:
  touchstone <command> [options]

Commands:
  serve     Start the demo HTTP server
  report    Print ranked statistics for a test
  keys      List a test's store keys
  rename    Move a test's state to a new id
  delete    Drop all of a test's state
  version   Show version information
  help      Show this help message

Options (all commands):
  --config <path>   Path to configuration file (YAML)

Examples:
  touchstone serve --config /etc/touchstone/config.yaml
  touchstone report landing:signup
  touchstone rename landing:signup landing:signup-v2
  touchstone delete landing:signup`)
}

func initLogger(cfg config.LogConfig) *zap.Logger {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var encoderConfig zapcore.EncoderConfig
	encoding := "json"
	if cfg.Format == "console" {
		encoding = "console"
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		encoderConfig = zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	zapConfig := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      cfg.Format == "console",
		Encoding:         encoding,
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := zapConfig.Build(
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	return logger
}
