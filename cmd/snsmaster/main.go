package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/snstools/snsmaster/internal/config"
	"github.com/snstools/snsmaster/internal/history"
	"github.com/snstools/snsmaster/internal/ingest"
	"github.com/snstools/snsmaster/internal/mapping"
	"github.com/snstools/snsmaster/internal/pipeline"
	"github.com/snstools/snsmaster/internal/report"
	"github.com/snstools/snsmaster/internal/server"
	"github.com/spf13/cobra"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "snsmaster",
	Short:   "Unify organic social and paid-ad exports into one master dataset",
	Long:    "snsmaster ingests heterogeneous marketing exports, reconciles organic posts with ad line items, derives marketing metrics, and writes summary tables plus a data-quality report.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(suggestCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(serveCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("snsmaster", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/snsmaster/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to point at your export directory and mapping config.")
		return nil
	},
}

// --- run command ---

var (
	dryRun     bool
	inputDir   string
	outputDir  string
	mappingDir string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: load -> map -> normalize -> join -> enrich -> report",
	RunE: func(cmd *cobra.Command, args []string) error {
		if inputDir != "" {
			cfg.Input.Dir = inputDir
		}
		if outputDir != "" {
			cfg.Output.Dir = outputDir
		}
		if mappingDir != "" {
			cfg.Mapping.Dir = mappingDir
		}

		if dryRun {
			pipe := pipeline.New(cfg, nil, nil)
			printSteps(pipe.DryRun())
			return nil
		}

		logger, closer, err := pipeline.OpenRunLog(cfg.Output.Dir)
		if err != nil {
			return err
		}
		defer closer.Close()

		db, err := openHistory()
		if err != nil {
			return err
		}
		defer db.Close()

		result := pipeline.New(cfg, db, logger).Run()
		printSteps(result)
		for _, step := range result.Steps {
			if step.Err != nil {
				return fmt.Errorf("pipeline failed at %s: %w", step.Name, step.Err)
			}
		}

		printRunSummary(result)
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be done without executing")
	runCmd.Flags().StringVar(&inputDir, "input", "", "Override input directory")
	runCmd.Flags().StringVar(&outputDir, "output", "", "Override output directory")
	runCmd.Flags().StringVar(&mappingDir, "mapping-dir", "", "Override mapping config directory")
}

func printSteps(result *pipeline.Result) {
	for i, step := range result.Steps {
		fmt.Printf("\nStep %d/%d: %s\n", i+1, len(result.Steps), step.Name)
		if step.Err != nil {
			fmt.Printf("  Error: %v\n", step.Err)
		} else {
			fmt.Printf("  %s\n", step.Summary)
		}
	}
}

// printRunSummary prints the artifact list and the settings a human should
// look at next, mirroring what operators actually triage after a run.
func printRunSummary(result *pipeline.Result) {
	artifacts := []string{
		report.MasterFile,
		report.ParquetPlaceholder,
		report.SummaryByDate,
		report.SummaryByPlatform,
		report.SummaryByCampaign,
		report.TopPostsFile,
		report.ErrorRowsFile,
		report.UnknownFilesFile,
		report.QualityReportFile,
		report.RunLogFile,
	}
	fmt.Println("\n成果物一覧:")
	for _, a := range artifacts {
		fmt.Printf("- %s\n", filepath.Join(result.OutputDir, a))
	}
	if result.Quality != nil {
		fmt.Printf("unknownファイル件数: %d\n", len(result.Quality.Unknown))
		fmt.Printf("unmatched件数: %d\n", result.Quality.Unmatched)
	}
	fmt.Println("次に人が調整すべき設定トップ3:")
	fmt.Println("1) mapping.date")
	fmt.Println("2) mapping.post_id")
	fmt.Println("3) mapping.campaign_name")
}

// --- suggest command ---

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Suggest a header mapping from the input files without running the pipeline",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := log.New(os.Stderr, "", log.LstdFlags)
		files := ingest.LoadAll(cfg.Input.Dir, logger)
		cols := ingest.AllColumns(files)
		if len(cols) == 0 {
			fmt.Printf("No columns observed under %s\n", cfg.Input.Dir)
			return nil
		}

		sg := mapping.Suggest(cols)
		target := filepath.Join(cfg.Mapping.Dir, mapping.SuggestedFile)
		if err := mapping.WriteFile(target, sg); err != nil {
			return fmt.Errorf("writing suggestion: %w", err)
		}

		fmt.Printf("Observed %d columns across %d files.\n\n", len(cols), len(files))
		keys := make([]string, 0, len(sg))
		for k := range sg {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("  %s: %s\n", k, sg[k])
		}
		fmt.Printf("\nWrote %s\n", target)
		fmt.Println("Review it, then copy it to mapping.yaml (or set mapping.apply_suggested).")
		return nil
	},
}

// --- status command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show run history and aggregate stats",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openHistory()
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.GetStats()
		if err != nil {
			return fmt.Errorf("getting stats: %w", err)
		}

		fmt.Println("Runs:")
		fmt.Printf("  Total: %d\n", stats.TotalRuns)
		fmt.Printf("  Rows written: %d\n", stats.TotalOutputRows)
		fmt.Printf("  Error rows: %d\n", stats.TotalErrorRows)
		if stats.LastRunAt != "" {
			fmt.Printf("  Last run: %s\n", stats.LastRunAt)
		}

		runs, err := db.ListRuns(10)
		if err != nil {
			return err
		}
		if len(runs) > 0 {
			fmt.Println("\nRecent runs:")
			for _, r := range runs {
				fmt.Printf("  [%d] %s  files=%d rows=%d errors=%d unmatched=%d\n",
					r.ID, r.StartedAt, r.TotalFiles, r.OutputRows, r.ErrorRows, r.UnmatchedRows)
			}
		}
		return nil
	},
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local web server over run history",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openHistory()
		if err != nil {
			return err
		}
		defer db.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		fmt.Printf("Starting server at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(db, port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to run server on (default from config)")
}

func openHistory() (*history.DB, error) {
	dataDir := cfg.GetDataDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return history.Open(filepath.Join(dataDir, "snsmaster.db"))
}
