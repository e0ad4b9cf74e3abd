package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"pdp-recon/internal/app"
	"pdp-recon/internal/config"
	"pdp-recon/internal/logger"
)

const (
	appName    = "PDP Recon"
	appVersion = "1.0.0"
	appDesc    = "Validates storefront product pages against the product workbook and writes findings back"
)

// Modes
const (
	modeSetup     = "setup"
	modeCheck     = "check"
	modeReconcile = "reconcile"
	modeRun       = "run"
	modeReset     = "reset"
	modeReport    = "report"
	modeServe     = "serve"
)

var (
	configPath   string
	verbose      bool
	showVersion  bool
	showConfig   bool
	mode         string
	observations string
	formats      string
	waitOnExit   bool
)

func init() {
	flag.StringVar(&configPath, "config", "config.yaml", "Path to configuration file")
	flag.StringVar(&configPath, "c", "config.yaml", "Path to configuration file (shorthand)")
	flag.BoolVar(&verbose, "verbose", false, "Enable verbose logging (DEBUG level)")
	flag.BoolVar(&verbose, "v", false, "Enable verbose logging (shorthand)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showConfig, "print-config", false, "Print the effective configuration")
	flag.StringVar(&mode, "mode", modeRun, "One of setup, check, reconcile, run, reset, report, serve")
	flag.StringVar(&observations, "observations", "", "Override checks.observations (JSON or YAML page snapshots)")
	flag.StringVar(&formats, "format", "", "Comma-separated report formats (excel,html,word,json,yaml); defaults to output.formats")
	flag.BoolVar(&waitOnExit, "wait", false, "Wait for Enter before exiting")
}

func main() {
	// CRITICAL: a panic still reaches the exit prompt and a non-zero code
	exitCode := func() (code int) {
		defer func() {
			if r := recover(); r != nil {
				fmt.Printf("\n❌ PANIC: %v\n", r)
				code = 1
			}
		}()
		return run()
	}()

	if waitOnExit {
		waitForEnter()
	}
	os.Exit(exitCode)
}

func run() int {
	flag.Parse()

	if showVersion {
		fmt.Printf("%s v%s\n%s\n", appName, appVersion, appDesc)
		return 0
	}

	printBanner()

	// 1. Initialize
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("❌ Failed to load configuration: %v\n", err)
		return 1
	}
	if showConfig {
		cfg.Print()
	}

	logPath := filepath.Join(cfg.Output.Dir, "pdp_recon.log")
	if err := logger.Init(os.Stdout, logPath, verbose); err != nil {
		fmt.Printf("❌ Failed to initialize logger: %v\n", err)
		return 1
	}
	defer logger.Close()
	logger.SetWorker(cfg.Run.WorkerIndex)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(cfg, os.Stdout, appVersion)
	if err != nil {
		logger.Error("Invalid configuration: %v", err)
		return 2
	}
	defer a.Close()

	if err := dispatch(ctx, a, cfg); err != nil {
		logger.Error("%s failed: %v", mode, err)
		return 1
	}

	logger.Info("✅ %s complete. Log: %s", mode, logger.GetLogFilePath())
	return 0
}

func dispatch(ctx context.Context, a *app.App, cfg *config.Config) error {
	var targetFormats []string
	if formats != "" {
		targetFormats = strings.Split(formats, ",")
	}

	switch mode {
	case modeSetup:
		hm, err := a.Setup(ctx)
		if err != nil {
			return err
		}
		logger.Info("Header map ready (%d headers)", len(hm))
		return nil
	case modeCheck:
		summary, err := a.Check(ctx, observations)
		if err != nil {
			return err
		}
		return summary.Err()
	case modeReconcile:
		_, err := a.Reconcile(ctx)
		return err
	case modeRun:
		return a.Run(ctx, observations, targetFormats)
	case modeReset:
		_, err := a.Reset(ctx)
		return err
	case modeReport:
		return a.Report(ctx, targetFormats)
	case modeServe:
		return a.Serve(ctx)
	}
	return fmt.Errorf("unknown mode %q", mode)
}

// waitForEnter pauses execution and waits for user to press Enter
// This prevents the console window from closing immediately when double-clicked
func waitForEnter() {
	fmt.Println("\n==========================================")
	fmt.Println("Execution Finished. Press 'Enter' to exit.")
	fmt.Println("==========================================")
	bufio.NewReader(os.Stdin).ReadBytes('\n')
}

func printBanner() {
	banner := `
╔═══════════════════════════════════════════════════════════╗
║                      PDP RECON v1.0.0                     ║
║      Product Page Validation & Workbook Reconciliation    ║
╚═══════════════════════════════════════════════════════════╝
`
	fmt.Println(banner)
}
