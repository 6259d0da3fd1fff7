package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/sylcheck/internal/checker"
)

const rule = "============================================================"

func section(w io.Writer, title string, ch string) {
	line := strings.Repeat(ch, len(rule))
	fmt.Fprintf(w, "\n%s\n %s\n%s\n\n", line, title, line)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// confidenceBar draws confidence as 20 cells, one per 5 points.
func confidenceBar(conf float64) string {
	n := min(max(int(conf/5), 0), 20)
	return strings.Repeat("|", n) + strings.Repeat(".", 20-n)
}

func passFail(found bool) string {
	if found {
		return "[PASS]"
	}
	return "[FAIL]"
}

// formatCount prints whole counts without decimals.
func formatCount(v float64) string {
	if v == float64(int(v)) {
		return fmt.Sprintf("%d", int(v))
	}
	return fmt.Sprintf("%.2f", v)
}

// renderReport writes the human readable summary of one report.
func renderReport(w io.Writer, rep *checker.Report) {
	fmt.Fprintf(w, "%s\n", rep.Filename)
	fmt.Fprintf(w, "Required items:    %s/%d (%.1f%%) %s\n",
		formatCount(rep.Required.Found), rep.Required.Total, rep.Required.Percentage, checker.Status(rep.Required.Percentage))
	fmt.Fprintf(w, "Recommended items: %s/%d\n", formatCount(rep.Recommended.Found), rep.Recommended.Total)

	bv := rep.BulletinValidation
	switch {
	case !bv.Enabled:
		fmt.Fprintf(w, "Catalog:           disabled\n")
	case bv.CourseCode == "":
		fmt.Fprintf(w, "Catalog:           no course code detected\n")
	case bv.BulletinDataFound:
		fmt.Fprintf(w, "Catalog:           %s %q\n", bv.CourseCode, bv.OfficialTitle)
	default:
		fmt.Fprintf(w, "Catalog:           %s lookup failed: %s\n", bv.CourseCode, bv.Error)
	}

	fmt.Fprintln(w)
	for _, it := range rep.Required.Items {
		fmt.Fprintf(w, "  %s %-55s %5.1f%%\n", passFail(it.Found), it.Name, it.Confidence)
	}
	fmt.Fprintln(w)
	for _, it := range rep.Recommended.Items {
		fmt.Fprintf(w, "  %s %-55s %5.1f%%  (recommended)\n", passFail(it.Found), it.Name, it.Confidence)
	}
}

func renderItems(w io.Writer, items []checker.ItemResult, hintMissing bool) {
	for _, it := range items {
		fmt.Fprintf(w, "\n%s %s\n", passFail(it.Found), it.Name)
		fmt.Fprintf(w, "   Confidence: [%s] %.1f%%\n", confidenceBar(it.Confidence), it.Confidence)
		if it.Catalog != nil {
			fmt.Fprintf(w, "   Catalog: %s (%.1f%%)", it.Catalog.Method, it.Catalog.Confidence)
			if it.Catalog.Note != "" {
				fmt.Fprintf(w, " %s", it.Catalog.Note)
			}
			fmt.Fprintln(w)
		}
		for _, sub := range it.SubItems {
			fmt.Fprintf(w, "   %s %s (weight %.2f, %s)\n", passFail(sub.Found), sub.Name, sub.Weight, sub.Method)
		}
		if len(it.Evidence) > 0 {
			fmt.Fprintf(w, "   Matches found:\n")
			for _, ev := range it.Evidence {
				fmt.Fprintf(w, "      - %s\n", ev)
			}
		} else if hintMissing && !it.Found {
			fmt.Fprintf(w, "     Not detected - consider adding clearer labels\n")
		}
	}
}
