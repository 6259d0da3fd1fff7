package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/dgallion1/sylcheck/internal/checker"
	"github.com/dgallion1/sylcheck/internal/parser"
)

const urlDisplayLimit = 70

func (a *app) batchCmd() *cobra.Command {
	var (
		reportPath  string
		concurrency int
		noProgress  bool
	)
	cmd := &cobra.Command{
		Use:   "batch <dir|file>...",
		Short: "Check many syllabi and summarize common gaps",
		Long: `Batch checks every supported file given, or found directly inside a
given directory, then prints an aggregate analysis: average score, the
required items missed most often, items detected with low confidence and
suggested rule improvements.

Example:
  sylcheck batch test_samples/
  sylcheck batch a.pdf b.docx --report analysis.json --concurrency 8`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := collectFiles(args)
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				return fmt.Errorf("no supported files found (%s)", strings.Join(parser.Extensions(), ", "))
			}

			chk, cfg, err := a.newChecker(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("concurrency") {
				concurrency = cfg.MaxConcurrency
			}

			w := cmd.OutOrStdout()
			errw := cmd.ErrOrStderr()
			fmt.Fprintf(errw, "Checking %d file(s) with %d workers\n", len(paths), concurrency)

			var progress func(checker.BatchResult)
			if !noProgress {
				bar := newProgressBar(errw, len(paths))
				progress = func(checker.BatchResult) {
					if err := bar.Add(1); err != nil {
						slog.Warn("failed to update progress bar", "error", err)
					}
				}
				defer func() { _ = bar.Finish() }()
			}

			results := chk.CheckBatch(cmd.Context(), paths, concurrency, progress)
			analysis := checker.Analyze(results, time.Now())
			renderAnalysis(w, analysis)

			if reportPath != "" {
				if err := saveReport(reportPath, analysis); err != nil {
					return err
				}
				fmt.Fprintf(w, "\n[SAVED] Detailed JSON report saved to: %s\n", reportPath)
			}
			if analysis.TotalFiles == 0 {
				return fmt.Errorf("no file could be checked")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&reportPath, "report", "", "write the analysis as JSON to this file")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "number of files checked at once")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "disable the progress bar")
	return cmd
}

func newProgressBar(w io.Writer, total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Checking syllabi...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(w)
		}),
	)
}

// collectFiles expands directories to the supported files directly inside
// them. Files named explicitly are kept as given so unsupported ones are
// reported as failures.
func collectFiles(args []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", arg, err)
		}
		if !info.IsDir() {
			out = append(out, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("read dir %s: %w", arg, err)
		}
		for _, e := range entries {
			if e.IsDir() || !parser.IsSupportedExtension(e.Name()) {
				continue
			}
			out = append(out, filepath.Join(arg, e.Name()))
		}
	}
	return out, nil
}

func saveReport(path string, analysis checker.Analysis) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close report: %w", closeErr)
		}
	}()
	if err := writeJSON(f, analysis); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func renderAnalysis(w io.Writer, a checker.Analysis) {
	section(w, "COMPREHENSIVE ANALYSIS REPORT", "=")
	fmt.Fprintf(w, "Total Files Analyzed: %d\n", a.TotalFiles)
	fmt.Fprintf(w, "Average Score: %.1f%%\n", a.AverageScore)

	if len(a.Files) > 0 {
		fmt.Fprintln(w)
		for _, f := range a.Files {
			fmt.Fprintf(w, "  %-40s %5.1f%%  [%s]\n", f.Filename, f.Score, f.Status)
		}
	}
	if len(a.Failures) > 0 {
		fmt.Fprintln(w, "\nFailed files:")
		for _, f := range a.Failures {
			fmt.Fprintf(w, "  [ERROR] %s: %s\n", f.Filename, f.Error)
		}
	}

	if len(a.Missing) > 0 {
		section(w, "MOST COMMONLY MISSING REQUIRED ITEMS", "=")
		for _, st := range a.Missing {
			fmt.Fprintf(w, "[X] %s\n", st.Name)
			fmt.Fprintf(w, "   Missing in %d/%d files (%.0f%%)\n", st.Count, a.TotalFiles, 100*float64(st.Count)/float64(a.TotalFiles))
			fmt.Fprintf(w, "   Average confidence when checked: %.1f%%\n", st.AverageConfidence)
			fmt.Fprintf(w, "   Files: %s\n\n", strings.Join(st.Files, ", "))
		}
	}

	if len(a.LowConfidence) > 0 {
		section(w, "ITEMS WITH LOW CONFIDENCE (Possible False Positives)", "=")
		for _, st := range a.LowConfidence {
			fmt.Fprintf(w, "[!] %s\n", st.Name)
			fmt.Fprintf(w, "   Low confidence in %d/%d files\n", st.Count, a.TotalFiles)
			fmt.Fprintf(w, "   Average confidence: %.1f%%\n", st.AverageConfidence)
			fmt.Fprintf(w, "   Files: %s\n\n", strings.Join(st.Files, ", "))
		}
	}

	section(w, "RULE IMPROVEMENT RECOMMENDATIONS", "=")
	if len(a.Recommendations) == 0 {
		fmt.Fprintln(w, "[OK] No major issues detected.")
	}
	for i, rec := range a.Recommendations {
		fmt.Fprintf(w, "%d. [%s] %s\n", i+1, rec.Priority, rec.Item)
		fmt.Fprintf(w, "   Issue: %s\n", rec.Issue)
		fmt.Fprintf(w, "   Suggestion: %s\n\n", rec.Suggestion)
	}

	section(w, "URL DETECTION ANALYSIS", "=")
	fmt.Fprintf(w, "Total URLs found across all files: %d\n", a.TotalURLs)
	for _, f := range a.Files {
		fmt.Fprintf(w, "\n%s: %d URLs\n", f.Filename, f.URLsFound)
		for _, u := range f.SampleURLs {
			if len(u) > urlDisplayLimit {
				u = u[:urlDisplayLimit] + "..."
			}
			fmt.Fprintf(w, "  - %s\n", u)
		}
		if f.URLsFound > len(f.SampleURLs) {
			fmt.Fprintf(w, "  ... and %d more\n", f.URLsFound-len(f.SampleURLs))
		}
	}
}
