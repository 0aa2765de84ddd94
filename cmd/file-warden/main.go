package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/mikey/file-warden/internal/core"
	"github.com/mikey/file-warden/internal/di"
	"github.com/mikey/file-warden/internal/duplicates"
	"github.com/mikey/file-warden/internal/ports"
	"github.com/mikey/file-warden/internal/report"
)

var (
	folder         = flag.String("folder", "", "Folder to organize (required)")
	findDuplicates = flag.Bool("find-duplicates", false, "Report duplicate files instead of organizing")
)

func main() {
	flag.Parse()

	if *folder == "" {
		fmt.Fprintln(os.Stderr, "usage: file-warden -folder <path> [-find-duplicates]")
		os.Exit(2)
	}

	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	fs afero.Fs,
	organizer *core.OrganizerService,
	cache core.VerdictCache,
	notifier ports.Notifier,
) error {
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Stop the cache if needed
	defer func() {
		if stopper, ok := cache.(interface{ Stop() }); ok {
			stopper.Stop()
		}
	}()

	if *findDuplicates {
		return runDuplicates(fs, logger)
	}

	progress := func(percent int, message string) {
		fmt.Printf("[%3d%%] %s\n", percent, message)
	}

	result, err := organizer.Organize(ctx, *folder, progress)
	if err != nil {
		logger.Error("Run did not complete", zap.Error(err))
		return err
	}

	printResult(result)

	summary := report.BuildSummaryReport(result.Analytics)
	if err := notifier.Send(ctx, summary); err != nil {
		// A failed notification never fails the run itself.
		logger.Error("Failed to send summary report", zap.Error(err))
	}

	return nil
}

func runDuplicates(fs afero.Fs, logger *zap.Logger) error {
	detector := duplicates.NewDetector(fs, logger)
	sets, err := detector.FindDuplicates(*folder)
	if err != nil {
		return err
	}

	if len(sets) == 0 {
		fmt.Println("No duplicate files found")
		return nil
	}

	fmt.Printf("Duplicate files found (%d sets):\n", len(sets))
	i := 0
	for _, paths := range sets {
		i++
		fmt.Printf("\nSet %d:\n", i)
		for _, p := range paths {
			fmt.Printf("  - %s\n", p)
		}
	}
	fmt.Printf("\nWasted space: %.2f KB\n", float64(detector.WastedBytes(sets))/1024)
	return nil
}

func printResult(result *core.RunResult) {
	for _, entry := range result.Logs {
		fmt.Println(entry)
	}

	a := result.Analytics
	fmt.Printf("\n=== Run Summary ===\n")
	fmt.Printf("Total files: %d\n", a.TotalFiles)
	fmt.Printf("Total size: %.2f MB\n", float64(a.TotalSizeBytes)/(1024*1024))
	fmt.Printf("Time taken: %.2f sec\n", a.TimeTaken.Seconds())
	for category, count := range a.Categories {
		fmt.Printf("  %s: %d\n", category, count)
	}
	if a.Security.Scanned > 0 {
		fmt.Printf("Security: scanned=%d infected=%d quarantined=%d clean=%d\n",
			a.Security.Scanned, a.Security.Infected,
			a.Security.Quarantined, a.Security.Clean)
	}
}
