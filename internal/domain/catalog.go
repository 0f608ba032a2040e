package domain

import (
	"cmp"
	"slices"
	"strings"
)

// GeneratedAtLayout formats generated_at: UTC, second precision, literal Z.
const GeneratedAtLayout = "2006-01-02T15:04:05Z"

// Dataset is a dataset as embedded in an indicator.
type Dataset struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Source      string `json:"source"`
	Citation    string `json:"citation"`
	License     string `json:"license"`
}

// Indicator is an indicator enriched with its datasets and CIC ids.
type Indicator struct {
	ID          string    `json:"id"`
	Indicator   string    `json:"indicator"`
	Category    string    `json:"category"`
	Source      string    `json:"source"`
	Description string    `json:"description"`
	Datasets    []Dataset `json:"datasets"`
	CICIDs      []string  `json:"cic_ids,omitempty"`
}

// CIC is a Climate Impact Chain with the indicators that reference it.
type CIC struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Area           string   `json:"area"`
	Impact         string   `json:"impact"`
	Description    string   `json:"description"`
	IndicatorIDs   []string `json:"indicator_ids"`
	IndicatorCount int      `json:"indicator_count"`
}

// Catalog is the document consumed by the dashboard.
type Catalog struct {
	GeneratedAt string      `json:"generated_at"`
	Indicators  []Indicator `json:"indicators"`
	CICs        []CIC       `json:"cics"`
}

// JoinStats counts references the join could not resolve.
type JoinStats struct {
	// UnknownDatasets counts distinct indicator->dataset links whose dataset id
	// has no row in datasets.csv.
	UnknownDatasets int
}

// index holds the lookup tables built from the input rows.
type index struct {
	datasetByID         map[string]Dataset
	datasetsByIndicator map[string][]string
	cicsByIndicator     map[string][]string
	indicatorsByCIC     map[string][]string
}

func buildIndex(t Tables) index {
	idx := index{
		datasetByID:         make(map[string]Dataset, len(t.Datasets)),
		datasetsByIndicator: make(map[string][]string),
		cicsByIndicator:     make(map[string][]string),
		indicatorsByCIC:     make(map[string][]string),
	}

	for _, ds := range t.Datasets {
		idx.datasetByID[ds.ID] = Dataset(ds)
	}
	for _, lk := range t.DatasetLinks {
		idx.datasetsByIndicator[lk.IndicatorID] = append(idx.datasetsByIndicator[lk.IndicatorID], lk.DatasetID)
	}
	for _, lk := range t.CICLinks {
		idx.cicsByIndicator[lk.IndicatorID] = append(idx.cicsByIndicator[lk.IndicatorID], lk.CICID)
	}
	for ind, cics := range idx.cicsByIndicator {
		for _, cic := range cics {
			idx.indicatorsByCIC[cic] = append(idx.indicatorsByCIC[cic], ind)
		}
	}
	return idx
}

// BuildCatalog joins the input tables into a sorted catalog stamped with the
// current time.
func BuildCatalog(t Tables) (Catalog, JoinStats) {
	idx := buildIndex(t)
	var stats JoinStats

	indicators := make([]Indicator, 0, len(t.Indicators))
	for _, row := range t.Indicators {
		ind, unknown := composeIndicator(row, idx)
		stats.UnknownDatasets += unknown
		indicators = append(indicators, ind)
	}
	SortIndicators(indicators)

	cics := make([]CIC, 0, len(t.CICs))
	for _, row := range t.CICs {
		cics = append(cics, composeCIC(row, idx))
	}
	SortCICs(cics)

	return Catalog{
		GeneratedAt: clock.Now().UTC().Format(GeneratedAtLayout),
		Indicators:  indicators,
		CICs:        cics,
	}, stats
}

// composeIndicator returns the enriched indicator and the number of its
// dataset links that did not resolve.
func composeIndicator(row IndicatorRow, idx index) (Indicator, int) {
	datasets := make([]Dataset, 0)
	unknown := 0
	for _, id := range dedupe(idx.datasetsByIndicator[row.ID]) {
		ds, ok := idx.datasetByID[id]
		if !ok {
			unknown++
			continue
		}
		datasets = append(datasets, ds)
	}
	slices.SortStableFunc(datasets, func(a, b Dataset) int {
		return cmp.Compare(a.Name, b.Name)
	})

	ind := Indicator{
		ID:          row.ID,
		Indicator:   row.Name,
		Category:    row.Category,
		Source:      row.Source,
		Description: row.Description,
		Datasets:    datasets,
	}
	if cics := dedupe(idx.cicsByIndicator[row.ID]); len(cics) > 0 {
		ind.CICIDs = cics
	}
	return ind, unknown
}

func composeCIC(row CICRow, idx index) CIC {
	ids := dedupe(idx.indicatorsByCIC[row.ID])
	slices.Sort(ids)

	return CIC{
		ID:             row.ID,
		Name:           FirstNonEmpty(row.Name, row.Impact, row.Area, row.ID),
		Area:           row.Area,
		Impact:         row.Impact,
		Description:    row.Description,
		IndicatorIDs:   ids,
		IndicatorCount: len(ids),
	}
}

// SortIndicators orders indicators by category, then display name. Equal keys
// keep their input order.
func SortIndicators(inds []Indicator) {
	slices.SortStableFunc(inds, compareIndicators)
}

// SortCICs orders CICs by display name. Equal names keep their input order.
func SortCICs(cics []CIC) {
	slices.SortStableFunc(cics, func(a, b CIC) int {
		return cmp.Compare(a.Name, b.Name)
	})
}

// FirstNonEmpty returns the first candidate that is non-empty after trimming,
// or "" if none is. Candidates are listed in precedence order.
func FirstNonEmpty(candidates ...string) string {
	for _, c := range candidates {
		if s := strings.TrimSpace(c); s != "" {
			return s
		}
	}
	return ""
}

// dedupe returns ids without repeats, keeping first-seen order. The result is
// never nil.
func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
