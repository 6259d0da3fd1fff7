package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dgallion1/sylcheck/internal/rules"
)

type requirementDoc struct {
	ID       string   `yaml:"id"`
	Name     string   `yaml:"name"`
	Catalog  string   `yaml:"catalog_check,omitempty"`
	SubItems []string `yaml:"sub_items,omitempty"`
}

func describeRules(entries []rules.Entry) []requirementDoc {
	out := make([]requirementDoc, 0, len(entries))
	for _, e := range entries {
		doc := requirementDoc{ID: e.ID, Name: e.Rule.Label()}
		switch r := e.Rule.(type) {
		case *rules.Flat:
			doc.Catalog = string(r.Catalog)
		case *rules.Composite:
			for _, sub := range r.SubItems {
				item := fmt.Sprintf("%s (%.0f%%)", sub.Name, sub.Weight*100)
				if sub.UseCatalogTitle {
					item += " [catalog title]"
				}
				doc.SubItems = append(doc.SubItems, item)
			}
		}
		out = append(out, doc)
	}
	return out
}

func (a *app) requirementsCmd() *cobra.Command {
	var asYAML bool
	cmd := &cobra.Command{
		Use:   "requirements",
		Short: "List the required and recommended syllabus items",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			required := describeRules(rules.Required())
			recommended := describeRules(rules.Recommended())
			if asYAML {
				enc := yaml.NewEncoder(w)
				enc.SetIndent(2)
				defer enc.Close()
				return enc.Encode(map[string]any{
					"required":    required,
					"recommended": recommended,
				})
			}

			fmt.Fprintf(w, "Required (%d):\n", len(required))
			for i, r := range required {
				fmt.Fprintf(w, "  %2d. %s\n", i+1, r.Name)
				for _, sub := range r.SubItems {
					fmt.Fprintf(w, "        - %s\n", sub)
				}
			}
			fmt.Fprintf(w, "\nRecommended (%d):\n", len(recommended))
			for i, r := range recommended {
				fmt.Fprintf(w, "  %2d. %s\n", i+1, r.Name)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "print the rule table as YAML")
	return cmd
}
