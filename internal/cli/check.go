package cli

import (
	"github.com/spf13/cobra"
)

func (a *app) checkCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "check <file>",
		Short: "Check one syllabus",
		Long: `Check one syllabus for required and recommended items.

Example:
  sylcheck check syllabus.pdf
  sylcheck check syllabus.docx --json > report.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chk, _, err := a.newChecker(cmd)
			if err != nil {
				return err
			}
			rep, err := chk.Check(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), rep)
			}
			renderReport(cmd.OutOrStdout(), rep)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}
