package query

import (
	"fmt"
	"strconv"
	"strings"

	"jobmate/board-client/internal/model"
)

// Category names a facet.
type Category string

const (
	CategoryLocation Category = "Location"
	CategoryIndustry Category = "Industry"
	CategorySalary   Category = "Salary"
	CategoryCompany  Category = "Company"
)

// Categories lists the facets in display order.
var Categories = []Category{CategoryLocation, CategoryIndustry, CategorySalary, CategoryCompany}

// ParseCategory converts a raw string to a Category, case-insensitively.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if strings.EqualFold(string(c), s) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown facet category %q", s)
}

// Facets maps each category to its distinct values in first-seen order.
type Facets map[Category][]string

// valueOf returns the facet value of j for c, or "" when j has none.
func valueOf(j model.Job, c Category) string {
	switch c {
	case CategoryLocation:
		return j.Location
	case CategoryIndustry:
		return j.Title
	case CategorySalary:
		if j.Salary == 0 {
			return ""
		}
		return strconv.FormatFloat(j.Salary, 'f', -1, 64)
	case CategoryCompany:
		return j.CompanyName()
	}
	return ""
}

// BuildFacets collects the distinct non-empty values of every category.
// A job without a company reference contributes nothing to Company.
func BuildFacets(jobs []model.Job) Facets {
	f := make(Facets, len(Categories))
	for _, c := range Categories {
		seen := make(map[string]struct{})
		values := []string{}
		for _, j := range jobs {
			v := valueOf(j, c)
			if v == "" {
				continue
			}
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			values = append(values, v)
		}
		f[c] = values
	}
	return f
}

// Selection is a single chosen facet value. The zero value selects nothing.
type Selection struct {
	Category Category
	Value    string
}

// IsZero reports whether no facet is selected. A selection missing either
// its category or its value selects nothing.
func (s Selection) IsZero() bool { return s.Category == "" || s.Value == "" }

// FilterByFacet keeps the jobs whose value for sel.Category equals sel.Value,
// ignoring case. An empty selection keeps everything.
func FilterByFacet(jobs []model.Job, sel Selection) []model.Job {
	out := make([]model.Job, 0, len(jobs))
	for _, j := range jobs {
		if sel.IsZero() || strings.EqualFold(valueOf(j, sel.Category), sel.Value) {
			out = append(out, j)
		}
	}
	return out
}

// State is the browsing session's search string and facet selection.
type State struct {
	Search string
	Facet  Selection
}

// Apply narrows jobs by title search, then by facet.
func (s State) Apply(jobs []model.Job) []model.Job {
	return FilterByFacet(FilterByTitle(jobs, s.Search), s.Facet)
}

// Clear resets both the search string and the facet selection.
func (s *State) Clear() {
	*s = State{}
}
