package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dgallion1/sylcheck/internal/detect"
	"github.com/dgallion1/sylcheck/internal/parser"
)

const (
	previewChars   = 200
	debugURLLimit  = 10
	libraryURLHint = "https://www.library.vcu.edu/"
)

func (a *app) debugCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "debug <file>",
		Short: "Check one syllabus and print detailed detection information",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			w := cmd.OutOrStdout()

			info, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("file not found: %s", path)
			}
			chk, cfg, err := a.newChecker(cmd)
			if err != nil {
				return err
			}

			section(w, "VCU SYLLABUS CHECKER - DEBUG MODE", "=")
			fmt.Fprintf(w, "File: %s\n", path)
			fmt.Fprintf(w, "Size: %d bytes\n", info.Size())

			section(w, "Extracting Text", "-")
			doc, err := parser.NewExtractor(cfg.ParserOptions()).ExtractFile(path)
			if err != nil {
				return fmt.Errorf("extract text: %w", err)
			}
			fmt.Fprintf(w, "Successfully extracted %d characters (%s)\n", len(doc.Text), doc.Format)
			fmt.Fprintf(w, "First %d characters:\n   %s...\n", previewChars, preview(doc.Text, previewChars))

			section(w, "Extracting URLs", "-")
			urls := detect.ExtractURLs(doc.Text)
			fmt.Fprintf(w, "Found %d URLs:\n", len(urls))
			for i, u := range urls[:min(len(urls), debugURLLimit)] {
				fmt.Fprintf(w, "   %d. %s\n", i+1, u)
			}
			if len(urls) > debugURLLimit {
				fmt.Fprintf(w, "   ... and %d more\n", len(urls)-debugURLLimit)
			}

			rep, err := chk.CheckText(cmd.Context(), doc.Text)
			if err != nil {
				return err
			}
			rep.Filename = path
			rep.Format = doc.Format

			section(w, "Overall Summary", "=")
			fmt.Fprintf(w, "Required Items Found: %s/%d\n", formatCount(rep.Required.Found), rep.Required.Total)
			fmt.Fprintf(w, "Compliance Score: %.1f%%\n", rep.Required.Percentage)
			fmt.Fprintf(w, "Recommended Items: %s/%d\n", formatCount(rep.Recommended.Found), rep.Recommended.Total)
			if bv := rep.BulletinValidation; bv.CourseCode != "" {
				fmt.Fprintf(w, "Course Code: %s (catalog data found: %v)\n", bv.CourseCode, bv.BulletinDataFound)
				if bv.Error != "" {
					fmt.Fprintf(w, "Catalog Error: %s\n", bv.Error)
				}
			}

			section(w, "Required Items - Detailed Breakdown", "=")
			renderItems(w, rep.Required.Items, true)
			section(w, "Recommended Items - Detailed Breakdown", "=")
			renderItems(w, rep.Recommended.Items, false)

			section(w, "Recommendations", "=")
			missing := rep.Missing()
			weak := rep.LowConfidenceItems()
			if len(missing) > 0 {
				fmt.Fprintln(w, "Missing Required Items:")
				for _, it := range missing {
					fmt.Fprintf(w, "   - %s\n     Add this section with a clear header or keywords\n", it.Name)
				}
			}
			if len(weak) > 0 {
				fmt.Fprintln(w, "\nLow Confidence Items (may need clearer formatting):")
				for _, it := range weak {
					fmt.Fprintf(w, "   - %s (%.1f%%)\n     Consider using clearer section headers\n", it.Name, it.Confidence)
				}
			}
			if len(missing) == 0 && len(weak) == 0 {
				fmt.Fprintln(w, "Excellent! All required items are clearly present!")
			}

			section(w, "URL Verification", "=")
			verifyURL(w, urls, "provost", "VCU Provost/Syllabus Policy Link", "Link to VCU Syllabus Policy Statements")
			fmt.Fprintln(w)
			verifyURL(w, urls, "library.vcu.edu", "VCU Libraries Link", libraryURLHint)

			section(w, "Debug Complete", "=")
			return nil
		},
	}
}

func verifyURL(w io.Writer, urls []string, needle, label, hint string) {
	for _, u := range urls {
		if strings.Contains(strings.ToLower(u), needle) {
			fmt.Fprintf(w, "Found %s\n   Found: %s\n", label, u)
			return
		}
	}
	fmt.Fprintf(w, "Not Found %s\n     Add: %s\n", label, hint)
}

func preview(text string, n int) string {
	text = strings.ReplaceAll(text, "\n", " ")
	r := []rune(text)
	if len(r) > n {
		r = r[:n]
	}
	return string(r)
}
