package rules

import (
	"regexp"
	"strings"
)

// Rule is a single checkable syllabus element. It is implemented by *Flat
// and *Composite only.
type Rule interface {
	Label() string
	isRule()
}

// CatalogField marks a flat rule whose verdict can be cross-checked against
// the official course catalog.
type CatalogField string

const (
	CatalogNone          CatalogField = ""
	CatalogDescription   CatalogField = "description"
	CatalogPrerequisites CatalogField = "prerequisites"
)

// Flat is a requirement expressed as one set of patterns and keywords.
type Flat struct {
	Name string

	PrimaryPatterns []*regexp.Regexp
	TextPatterns    []*regexp.Regexp // prose mentions for link-style items
	URLPatterns     []*regexp.Regexp // matched against extracted URLs only
	RequiredPhrases []*regexp.Regexp // all must match or confidence is capped
	ContextKeywords []string         // lower-case, whole-word matched

	MinMatches    int
	MinTextLength int
	CheckURLs     bool

	Catalog CatalogField
}

func (f *Flat) Label() string { return f.Name }
func (*Flat) isRule()         {}

// SubItem is one weighted part of a composite rule.
type SubItem struct {
	ID     string
	Name   string
	Weight float64

	// UseCatalogTitle defers this sub-item to the catalog title check when
	// a catalog record resolved. Flat is used otherwise.
	UseCatalogTitle bool
	Flat            *Flat
}

// Composite is a requirement built from weighted sub-items.
type Composite struct {
	Name     string
	SubItems []SubItem
}

func (c *Composite) Label() string { return c.Name }
func (*Composite) isRule()         {}

// Entry binds a rule to its stable identifier.
type Entry struct {
	ID   string
	Rule Rule
}

// Patterns compiles case-insensitive regular expressions. It panics on an
// invalid pattern, so it is meant for package-level rule tables.
func Patterns(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, e := range exprs {
		out = append(out, regexp.MustCompile("(?i)"+e))
	}
	return out
}

// Keywords lower-cases context keywords.
func Keywords(words ...string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		out = append(out, strings.ToLower(w))
	}
	return out
}

// Required returns the required rules in declaration order.
func Required() []Entry { return required }

// Recommended returns the recommended rules in declaration order.
func Recommended() []Entry { return recommended }

// Lookup finds a rule by ID in either table.
func Lookup(id string) (Rule, bool) {
	for _, tbl := range [][]Entry{required, recommended} {
		for _, e := range tbl {
			if e.ID == id {
				return e.Rule, true
			}
		}
	}
	return nil, false
}

// TotalWeight sums the sub-item weights of a composite rule.
func (c *Composite) TotalWeight() float64 {
	var sum float64
	for _, s := range c.SubItems {
		sum += s.Weight
	}
	return sum
}
