// Package pipeline orchestrates the reconciliation run: load, map,
// normalize, join, enrich, report.
package pipeline

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/snstools/snsmaster/internal/classify"
	"github.com/snstools/snsmaster/internal/config"
	"github.com/snstools/snsmaster/internal/history"
	"github.com/snstools/snsmaster/internal/ingest"
	"github.com/snstools/snsmaster/internal/join"
	"github.com/snstools/snsmaster/internal/mapping"
	"github.com/snstools/snsmaster/internal/metrics"
	"github.com/snstools/snsmaster/internal/normalize"
	"github.com/snstools/snsmaster/internal/report"
	"github.com/snstools/snsmaster/internal/schema"
)

// StepResult holds the result of a single pipeline step.
type StepResult struct {
	Name    string
	Summary string
	Err     error
}

// Result holds the results of a full pipeline run.
type Result struct {
	Steps     []StepResult
	Quality   *report.Summary
	OutputDir string
	RunID     int64
}

// Pipeline orchestrates the 6-step reconciliation pipeline.
type Pipeline struct {
	cfg    *config.Config
	hist   *history.DB
	logger *log.Logger
}

// New creates a new pipeline. The history store may be nil, in which case
// the run is not recorded.
func New(cfg *config.Config, hist *history.DB, logger *log.Logger) *Pipeline {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Pipeline{cfg: cfg, hist: hist, logger: logger}
}

// OpenRunLog creates the per-run log file inside the output directory and
// returns a logger writing to both the file and stderr.
func OpenRunLog(outputDir string) (*log.Logger, io.Closer, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.Create(filepath.Join(outputDir, report.RunLogFile))
	if err != nil {
		return nil, nil, fmt.Errorf("creating run log: %w", err)
	}
	return log.New(io.MultiWriter(f, os.Stderr), "", log.LstdFlags), f, nil
}

// Run executes the full 6-step pipeline. Malformed files and rows are
// captured as data along the way; only output-side failures abort the run.
func (p *Pipeline) Run() *Result {
	start := time.Now()
	r := &Result{OutputDir: p.cfg.Output.Dir}

	// Step 1: Load
	p.logger.Printf("Step 1/6: Loading input files...")
	files := ingest.LoadAll(p.cfg.Input.Dir, p.logger)
	success, failed := 0, 0
	for _, f := range files {
		if f.Status == ingest.StatusSuccess {
			success++
		} else {
			failed++
		}
	}
	r.Steps = append(r.Steps, StepResult{
		Name:    "Load",
		Summary: fmt.Sprintf("Loaded %d files (%d ok, %d failed)", len(files), success, failed),
	})

	// Step 2: Map
	p.logger.Printf("Step 2/6: Resolving field mapping...")
	cols := ingest.AllColumns(files)
	fieldMap, err := mapping.Load(p.cfg.Mapping.Dir, p.cfg.ApplySuggestedMapping(), cols, p.logger)
	if err != nil {
		r.Steps = append(r.Steps, StepResult{Name: "Map", Err: err})
		return r
	}
	r.Steps = append(r.Steps, StepResult{
		Name:    "Map",
		Summary: fmt.Sprintf("Mapped %d of %d canonical fields from %d observed columns", len(fieldMap), len(schema.Fields), len(cols)),
	})

	// Step 3: Classify + Normalize
	p.logger.Printf("Step 3/6: Classifying and normalizing rows...")
	organic, ads, errRows, unknown, inputRows := p.normalizeFiles(files, fieldMap)
	r.Steps = append(r.Steps, StepResult{
		Name: "Normalize",
		Summary: fmt.Sprintf("%d organic rows, %d ad rows, %d error rows, %d unknown files",
			len(organic), len(ads), len(errRows), len(unknown)),
	})

	// Step 4: Join
	p.logger.Printf("Step 4/6: Joining organic rows against ads...")
	joined := join.Join(organic, ads)
	unmatched := 0
	for i := range joined {
		if joined[i].JoinConfidence == join.ConfidenceUnmatched {
			unmatched++
		}
	}
	r.Steps = append(r.Steps, StepResult{
		Name:    "Join",
		Summary: fmt.Sprintf("Joined %d rows (%d unmatched)", len(joined), unmatched),
	})

	// Step 5: Enrich
	p.logger.Printf("Step 5/6: Computing derived metrics...")
	final := metrics.EnrichAll(joined)
	r.Steps = append(r.Steps, StepResult{
		Name:    "Enrich",
		Summary: fmt.Sprintf("Enriched %d rows with %d derived metrics", len(final), len(schema.DerivedFields)),
	})

	// Step 6: Report
	p.logger.Printf("Step 6/6: Writing output artifacts...")
	quality := report.Summarize(len(files), success, failed, inputRows, final, errRows, unknown)
	r.Quality = quality
	if err := report.WriteOutputs(p.cfg.Output.Dir, final, errRows, unknown); err != nil {
		r.Steps = append(r.Steps, StepResult{Name: "Report", Err: err})
		return r
	}
	if err := report.WriteQualityReport(p.cfg.Output.Dir, quality); err != nil {
		r.Steps = append(r.Steps, StepResult{Name: "Report", Err: err})
		return r
	}
	r.Steps = append(r.Steps, StepResult{
		Name:    "Report",
		Summary: fmt.Sprintf("Wrote %d rows to %s", len(final), p.cfg.Output.Dir),
	})

	if p.hist != nil {
		id, err := p.hist.InsertRun(history.Run{
			InputDir:       p.cfg.Input.Dir,
			TotalFiles:     len(files),
			FailedFiles:    failed,
			UnknownFiles:   len(unknown),
			InputRows:      inputRows,
			OutputRows:     len(final),
			ErrorRows:      len(errRows),
			UnmatchedRows:  unmatched,
			DuplicateKeys:  quality.DuplicatePostKeys,
			DurationMS:     time.Since(start).Milliseconds(),
			ReportMarkdown: report.RenderQualityReport(quality),
		})
		if err != nil {
			p.logger.Printf("Recording run failed: %v", err)
		} else {
			r.RunID = id
		}
	}
	return r
}

// normalizeFiles classifies each loaded file and normalizes its rows into
// the organic or ad pool. Failed loads and unknown classifications are
// reported, never fatal.
func (p *Pipeline) normalizeFiles(files []ingest.RawFile, fieldMap map[string]string) (organic, ads []schema.Record, errRows []schema.ErrorRow, unknown []report.UnknownFile, inputRows int) {
	for _, rec := range files {
		if rec.Status != ingest.StatusSuccess {
			unknown = append(unknown, report.UnknownFile{
				Path:   rec.Path,
				Reason: "load_failed: " + rec.Err,
			})
			continue
		}
		inputRows += len(rec.Rows)

		var columns []string
		if len(rec.Rows) > 0 {
			columns = rec.Rows[0].Columns()
		}
		cls := classify.Classify(columns)
		p.logger.Printf("Classified file=%s as %s (%s)", rec.Path, cls.FileType, cls.Reason)
		if cls.FileType == classify.TypeUnknown {
			unknown = append(unknown, report.UnknownFile{Path: rec.Path, Reason: cls.Reason})
			continue
		}

		valid, errs := normalize.Rows(rec.Rows, fieldMap, rec.Path)
		errRows = append(errRows, errs...)
		if cls.FileType == classify.TypeOrganic {
			organic = append(organic, valid...)
		} else {
			ads = append(ads, valid...)
		}
	}
	return organic, ads, errRows, unknown, inputRows
}

// DryRun reports what a run would process without writing anything.
func (p *Pipeline) DryRun() *Result {
	r := &Result{OutputDir: p.cfg.Output.Dir}

	paths := ingest.Discover(p.cfg.Input.Dir)
	r.Steps = append(r.Steps, StepResult{
		Name:    "Load",
		Summary: fmt.Sprintf("[dry-run] %d input files discovered in %s", len(paths), p.cfg.Input.Dir),
	})

	primary := filepath.Join(p.cfg.Mapping.Dir, mapping.PrimaryFile)
	if _, err := os.Stat(primary); err == nil {
		r.Steps = append(r.Steps, StepResult{
			Name:    "Map",
			Summary: fmt.Sprintf("[dry-run] Would use existing %s", primary),
		})
	} else if p.cfg.ApplySuggestedMapping() {
		r.Steps = append(r.Steps, StepResult{
			Name:    "Map",
			Summary: "[dry-run] Would suggest a mapping and promote it to mapping.yaml",
		})
	} else {
		r.Steps = append(r.Steps, StepResult{
			Name:    "Map",
			Summary: "[dry-run] Would suggest a mapping; run would use an empty mapping",
		})
	}

	r.Steps = append(r.Steps, StepResult{
		Name:    "Report",
		Summary: fmt.Sprintf("[dry-run] Would write artifacts to %s", p.cfg.Output.Dir),
	})
	return r
}
