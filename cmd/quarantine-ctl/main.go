package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/mikey/file-warden/internal/adapters/sniff"
	"github.com/mikey/file-warden/internal/config"
	"github.com/mikey/file-warden/internal/core"
	"github.com/mikey/file-warden/internal/factory"
	"github.com/mikey/file-warden/internal/logging"
	"github.com/mikey/file-warden/internal/quarantine"
	"github.com/mikey/file-warden/internal/report"
)

var (
	// Action flags (exactly one must be set)
	list    = flag.Bool("list", false, "List quarantined files")
	restore = flag.String("restore", "", "Restore the named file from quarantine")
	remove  = flag.String("delete", "", "Permanently delete the named file from quarantine")
	rescan  = flag.String("rescan", "", "Re-scan the named file in place")
	scan    = flag.String("scan", "", "Run a security scan over a folder")

	// Restore flags
	dest = flag.String("dest", "", "Destination folder for restore")

	// Scanner flags
	engine       = flag.String("engine", "auto", "Scan engine (clamd, clamscan, auto)")
	clamdAddress = flag.String("clamd-address", "localhost:3310", "Address of the clamd daemon")
	clamscanPath = flag.String("clamscan-path", "clamscan", "Path to the clamscan binary")
	scanTimeout  = flag.String("scan-timeout", "30s", "Per-file scan timeout")

	// General flags
	quarantineDir = flag.String("quarantine-dir", "quarantine", "Quarantine directory")
	verbose       = flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog       = flag.Bool("json-log", false, "Output logs in JSON format")
	configFile    = flag.String("config", "", "Path to config file (overrides command line flags)")
)

func main() {
	flag.Parse()

	logger, err := logging.InitConsoleLogger(*verbose, *jsonLog)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	var cfg *config.Config
	if *configFile != "" {
		cfg, err = config.New()
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}
	} else {
		cfg = createConfigFromFlags()
	}

	fs := afero.NewOsFs()
	store, err := quarantine.NewStore(fs, cfg.GetQuarantine().Dir, logger)
	if err != nil {
		logger.Fatal("Failed to open quarantine store", zap.Error(err))
	}

	ctx := context.Background()
	if err := dispatch(ctx, fs, cfg, store, logger); err != nil {
		logger.Fatal("Command failed", zap.Error(err))
	}
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags() *config.Config {
	v := config.NewEmptyViper()
	v.Set("security.engine", *engine)
	v.Set("security.clamd_address", *clamdAddress)
	v.Set("security.clamscan_path", *clamscanPath)
	v.Set("security.scan_timeout", *scanTimeout)
	v.Set("quarantine.dir", *quarantineDir)
	return config.NewFromViper(v)
}

func dispatch(ctx context.Context, fs afero.Fs, cfg *config.Config, store *quarantine.Store, logger *zap.Logger) error {
	switch {
	case *list:
		return runList(store)
	case *restore != "":
		return runRestore(store)
	case *remove != "":
		return runDelete(store)
	case *rescan != "":
		return runRescan(ctx, cfg, store, logger)
	case *scan != "":
		return runScan(ctx, fs, cfg, store, logger)
	default:
		flag.Usage()
		return fmt.Errorf("no action given")
	}
}

func runList(store *quarantine.Store) error {
	names, err := store.List()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Println("Quarantine is empty")
		return nil
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}

func runRestore(store *quarantine.Store) error {
	if *dest == "" {
		return fmt.Errorf("-restore requires -dest")
	}
	path, err := store.Restore(*restore, *dest)
	if err != nil {
		return err
	}
	fmt.Printf("Restored to %s\n", path)
	return nil
}

func runDelete(store *quarantine.Store) error {
	deleted, err := store.Delete(*remove)
	if err != nil {
		return err
	}
	if deleted {
		fmt.Printf("Deleted %s\n", *remove)
	} else {
		fmt.Printf("%s was not in quarantine\n", *remove)
	}
	return nil
}

func runRescan(ctx context.Context, cfg *config.Config, store *quarantine.Store, logger *zap.Logger) error {
	scanner, err := factory.NewScannerFactory(cfg, logger).CreateScanner()
	if err != nil {
		return err
	}

	verdict, err := store.Rescan(ctx, *rescan, scanner)
	if err != nil {
		return err
	}
	fmt.Printf("Status: %s\nDetail: %s\nEngine: %s\n", verdict.Status, verdict.Detail, verdict.Engine)
	return nil
}

func runScan(ctx context.Context, fs afero.Fs, cfg *config.Config, store *quarantine.Store, logger *zap.Logger) error {
	scanner, err := factory.NewScannerFactory(cfg, logger).CreateScanner()
	if err != nil {
		return err
	}

	svc := core.NewSecurityScanService(fs, scanner, sniff.NewDetector(logger), store, logger,
		cfg.GetOrganizer().MimeExpectations)

	progress := func(percent int, message string) {
		fmt.Printf("[%3d%%] %s\n", percent, message)
	}
	verdicts, checks, err := svc.ScanFolder(ctx, *scan, progress)
	if err != nil {
		return err
	}

	rep := report.BuildScanReport(verdicts, checks, *scan)
	fmt.Printf("\n%s\n\n%s", rep.Subject, rep.Body)

	notifier, err := factory.NewNotifierFactory(cfg, logger).CreateNotifier()
	if err != nil {
		logger.Error("Failed to create notifier", zap.Error(err))
		return nil
	}
	if err := notifier.Send(ctx, rep); err != nil {
		logger.Error("Failed to send scan report", zap.Error(err))
	}
	return nil
}
