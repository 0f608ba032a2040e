package domain

import (
	"cmp"
	"fmt"
	"slices"
	"time"
)

// Check is one named group of catalog consistency checks.
type Check struct {
	Name   string
	Errors []string
}

func (c *Check) errorf(format string, args ...any) {
	c.Errors = append(c.Errors, fmt.Sprintf(format, args...))
}

// Passed reports whether the check found no problems.
func (c *Check) Passed() bool { return len(c.Errors) == 0 }

// CheckCatalog verifies the ordering, uniqueness, and cross-reference rules a
// generated catalog must satisfy. It is used against documents read back from
// disk, so it assumes nothing about how c was produced.
func CheckCatalog(c Catalog) []*Check {
	return []*Check{
		checkGeneratedAt(c),
		checkIndicators(c.Indicators),
		checkCICs(c.CICs),
		checkCrossReferences(c),
	}
}

func checkGeneratedAt(c Catalog) *Check {
	ch := &Check{Name: "generated_at timestamp"}
	if _, err := time.Parse(GeneratedAtLayout, c.GeneratedAt); err != nil {
		ch.errorf("generated_at %q is not YYYY-MM-DDTHH:MM:SSZ", c.GeneratedAt)
	}
	return ch
}

func checkIndicators(inds []Indicator) *Check {
	ch := &Check{Name: "indicator ordering and uniqueness"}
	seen := make(map[string]bool, len(inds))
	for i, ind := range inds {
		if ind.ID == "" {
			ch.errorf("indicators[%d]: empty id", i)
		}
		if seen[ind.ID] {
			ch.errorf("indicators[%d]: duplicate id %s", i, ind.ID)
		}
		seen[ind.ID] = true

		if i > 0 && compareIndicators(inds[i-1], ind) > 0 {
			ch.errorf("indicators[%d]: %s sorts before %s", i, ind.ID, inds[i-1].ID)
		}

		if !slices.IsSortedFunc(ind.Datasets, func(a, b Dataset) int { return cmp.Compare(a.Name, b.Name) }) {
			ch.errorf("indicator %s: datasets not sorted by name", ind.ID)
		}
		dsSeen := make(map[string]bool, len(ind.Datasets))
		for _, ds := range ind.Datasets {
			if dsSeen[ds.ID] {
				ch.errorf("indicator %s: dataset %s listed twice", ind.ID, ds.ID)
			}
			dsSeen[ds.ID] = true
		}

		if ind.CICIDs != nil && len(ind.CICIDs) == 0 {
			ch.errorf("indicator %s: cic_ids present but empty", ind.ID)
		}
		if hasDuplicates(ind.CICIDs) {
			ch.errorf("indicator %s: duplicate cic_ids", ind.ID)
		}
	}
	return ch
}

func checkCICs(cics []CIC) *Check {
	ch := &Check{Name: "CIC ordering and counts"}
	seen := make(map[string]bool, len(cics))
	for i, cic := range cics {
		if cic.ID == "" {
			ch.errorf("cics[%d]: empty id", i)
		}
		if seen[cic.ID] {
			ch.errorf("cics[%d]: duplicate id %s", i, cic.ID)
		}
		seen[cic.ID] = true

		if cic.Name == "" {
			ch.errorf("cic %s: empty display name", cic.ID)
		}
		if i > 0 && cics[i-1].Name > cic.Name {
			ch.errorf("cics[%d]: %q sorts before %q", i, cic.Name, cics[i-1].Name)
		}
		if !slices.IsSorted(cic.IndicatorIDs) {
			ch.errorf("cic %s: indicator_ids not sorted", cic.ID)
		}
		if hasDuplicates(cic.IndicatorIDs) {
			ch.errorf("cic %s: duplicate indicator_ids", cic.ID)
		}
		if cic.IndicatorCount != len(cic.IndicatorIDs) {
			ch.errorf("cic %s: indicator_count %d != %d indicator_ids",
				cic.ID, cic.IndicatorCount, len(cic.IndicatorIDs))
		}
	}
	return ch
}

// checkCrossReferences verifies that every indicator->CIC edge appears on the
// CIC side and vice versa. Links may name CICs or indicators that have no row
// of their own; those dangling ends are not checked.
func checkCrossReferences(c Catalog) *Check {
	ch := &Check{Name: "indicator/CIC cross-references"}

	byCIC := make(map[string]map[string]bool, len(c.CICs))
	for _, cic := range c.CICs {
		set := make(map[string]bool, len(cic.IndicatorIDs))
		for _, id := range cic.IndicatorIDs {
			set[id] = true
		}
		byCIC[cic.ID] = set
	}

	indicators := make(map[string]bool, len(c.Indicators))
	edges := make(map[string]map[string]bool)
	for _, ind := range c.Indicators {
		indicators[ind.ID] = true
		for _, cicID := range ind.CICIDs {
			if edges[cicID] == nil {
				edges[cicID] = make(map[string]bool)
			}
			edges[cicID][ind.ID] = true

			set, ok := byCIC[cicID]
			if ok && !set[ind.ID] {
				ch.errorf("indicator %s lists %s but %s does not list it", ind.ID, cicID, cicID)
			}
		}
	}

	for _, cic := range c.CICs {
		for _, indID := range cic.IndicatorIDs {
			if indicators[indID] && !edges[cic.ID][indID] {
				ch.errorf("cic %s lists %s but the indicator does not list it", cic.ID, indID)
			}
		}
	}
	return ch
}

func compareIndicators(a, b Indicator) int {
	if c := cmp.Compare(a.Category, b.Category); c != 0 {
		return c
	}
	return cmp.Compare(a.Indicator, b.Indicator)
}

func hasDuplicates(ids []string) bool {
	return len(dedupe(ids)) != len(ids)
}
